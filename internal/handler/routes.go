package handler

import (
	"net/http"

	"github.com/abdoir/affinity-server/internal/config"
	"github.com/abdoir/affinity-server/internal/domain"
	"github.com/abdoir/affinity-server/internal/service"
)

// RegisterRoutes sets up all HTTP routes on the given mux.
func RegisterRoutes(
	mux *http.ServeMux,
	auth *service.AuthService,
	profiles *service.ProfileService,
	admin *service.AdminService,
	browser *service.BrowserService,
	predictor domain.PredictionClient,
	limiter *service.RateLimiter,
	cfg *config.Config,
) {
	// Outside production, unexpected errors include their detail in the
	// response body.
	verbose := cfg.IsDevelopment()

	authH := NewAuthHandler(auth, verbose)
	profileH := NewProfileHandler(profiles, verbose)
	adminH := NewAdminHandler(admin, verbose)
	browserH := NewBrowserHandler(browser)
	predictH := NewPredictHandler(predictor, verbose)

	withAuth := func(h http.HandlerFunc) http.Handler {
		return RequireAuth(auth, h)
	}
	withAdmin := func(h http.HandlerFunc) http.Handler {
		return RequireAuth(auth, RequireAdmin(h))
	}
	withBrowser := func(h http.HandlerFunc) http.Handler {
		return RequireAuth(auth, RequireAdmin(RequireSecretKey(cfg.DBSecretKey, h)))
	}

	mux.HandleFunc("GET /health", Health(cfg.Env))

	// Registration and login share a per-IP rate limit.
	mux.Handle("POST /auth/register", RateLimit(limiter, http.HandlerFunc(authH.HandleRegister)))
	mux.Handle("POST /auth/login", RateLimit(limiter, http.HandlerFunc(authH.HandleLogin)))

	mux.Handle("GET /auth/me", withAuth(authH.HandleMe))
	mux.Handle("PUT /auth/update-profile", withAuth(profileH.HandleUpdateProfile))
	mux.Handle("POST /auth/upload-profile-image", withAuth(profileH.HandleUploadAvatar))
	mux.Handle("DELETE /auth/delete-profile-image", withAuth(profileH.HandleDeleteAvatar))

	mux.HandleFunc("GET /uploads/profiles/{filename}", profileH.HandleServeAvatar)

	mux.Handle("GET /auth/admin/users", withAdmin(adminH.HandleListUsers))
	mux.Handle("POST /auth/admin/users", withAdmin(adminH.HandleCreateUser))
	mux.Handle("DELETE /auth/admin/users/{id}", withAdmin(adminH.HandleDeleteUser))
	mux.Handle("PATCH /auth/admin/users/{id}/admin-status", withAdmin(adminH.HandleSetAdminStatus))

	mux.Handle("GET /database/tables", withBrowser(browserH.HandleTables))
	mux.Handle("GET /database/tables/{table}/schema", withBrowser(browserH.HandleSchema))
	mux.Handle("GET /database/tables/{table}/rows", withBrowser(browserH.HandleRows))
	mux.Handle("POST /database/query", withBrowser(browserH.HandleQuery))
	mux.Handle("POST /database/tables/{table}/rows", withBrowser(browserH.HandleInsertRow))
	mux.Handle("PUT /database/tables/{table}/rows/{id}", withBrowser(browserH.HandleUpdateRow))
	mux.Handle("DELETE /database/tables/{table}/rows/{id}", withBrowser(browserH.HandleDeleteRow))
	mux.Handle("POST /database/execute", withBrowser(browserH.HandleExecute))
	mux.Handle("POST /database/clear-all", withBrowser(browserH.HandleClearAll))

	mux.HandleFunc("POST /predict", predictH.HandlePredict)
}
