package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/abdoir/affinity-server/internal/adapter/inference"
	"github.com/abdoir/affinity-server/internal/config"
	"github.com/abdoir/affinity-server/internal/domain"
	"github.com/abdoir/affinity-server/internal/handler"
	"github.com/abdoir/affinity-server/internal/repository/postgres"
	"github.com/abdoir/affinity-server/internal/repository/sqlite"
	"github.com/abdoir/affinity-server/internal/service"
	"github.com/abdoir/affinity-server/internal/storage/disk"
	"github.com/abdoir/affinity-server/internal/storage/s3"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("database migrations applied")

	files, err := openFileStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to open file store", "error", err)
		os.Exit(1)
	}

	authService := service.NewAuthService(store.Users(), cfg.JWTSecret, cfg.BcryptCost, cfg.TokenTTL)
	profileService := service.NewProfileService(store.Users(), files)
	adminService := service.NewAdminService(store.Users(), files, cfg.BcryptCost)
	browserService := service.NewBrowserService(store.Browser(), cfg.AllowUnsafeDBOps)
	predictClient := inference.New(cfg.InferenceURL, cfg.InferenceTimeout)

	limiter := service.NewRateLimiter(cfg.AuthRatePerSecond, cfg.AuthRateBurst)
	defer limiter.Stop()

	if err := seedAdmin(ctx, adminService, cfg); err != nil {
		slog.Error("failed to seed admin account", "error", err)
		os.Exit(1)
	}

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, authService, profileService, adminService, browserService,
		predictClient, limiter, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler.CORS(cfg.CORSAllowedOrigin, handler.SecurityHeaders(mux)),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	go func() {
		slog.Info("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// openStore selects the database backend: PostgreSQL when DATABASE_URL is
// set, the embedded SQLite store otherwise.
func openStore(ctx context.Context, cfg *config.Config) (domain.Store, error) {
	if cfg.DatabaseURL != "" {
		slog.Info("using postgres backend")
		return postgres.New(ctx, cfg.DatabaseURL)
	}
	slog.Info("using sqlite backend", "path", cfg.DatabasePath)
	return sqlite.New(cfg.DatabasePath)
}

// openFileStore selects the avatar storage backend.
func openFileStore(ctx context.Context, cfg *config.Config) (domain.FileStore, error) {
	if cfg.AvatarStorage == "s3" {
		slog.Info("using s3 avatar storage", "bucket", cfg.S3Bucket)
		return s3.New(ctx, s3.Config{
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			UseSSL:          cfg.S3UseSSL,
		})
	}
	slog.Info("using disk avatar storage", "dir", cfg.UploadDir)
	return disk.New(cfg.UploadDir)
}

// seedAdmin creates the initial admin account when the admin environment
// variables are set. Safe to run on every startup.
func seedAdmin(ctx context.Context, admin *service.AdminService, cfg *config.Config) error {
	if cfg.AdminUsername == "" || cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	created, err := admin.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword)
	if err != nil {
		return err
	}
	if created {
		slog.Info("admin account seeded", "email", cfg.AdminEmail)
	}
	return nil
}
