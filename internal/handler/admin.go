package handler

import (
	"net/http"
	"strconv"

	"github.com/abdoir/affinity-server/internal/service"
)

// AdminHandler serves the admin-only user management endpoints.
type AdminHandler struct {
	admin   *service.AdminService
	verbose bool
}

func NewAdminHandler(admin *service.AdminService, verbose bool) *AdminHandler {
	return &AdminHandler{admin: admin, verbose: verbose}
}

// HandleListUsers returns every user account, newest first.
func (h *AdminHandler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.admin.ListUsers(r.Context())
	if err != nil {
		writeServiceError(w, "list users", err, h.verbose)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": toUserDTOs(users)})
}

type createUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	IsAdmin  bool   `json:"is_admin"`
}

// HandleCreateUser creates an account on behalf of an admin, optionally
// with admin rights.
func (h *AdminHandler) HandleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.admin.CreateUser(r.Context(), req.Username, req.Email, req.Password, req.IsAdmin)
	if err != nil {
		writeServiceError(w, "create user", err, h.verbose)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "User created successfully",
		"user":    toUserDTO(user),
	})
}

// HandleDeleteUser removes another user's account.
func (h *AdminHandler) HandleDeleteUser(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())

	targetID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	if err := h.admin.DeleteUser(r.Context(), targetID, claims.UserID); err != nil {
		writeServiceError(w, "delete user", err, h.verbose)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "User deleted successfully"})
}

type setAdminRequest struct {
	IsAdmin bool `json:"is_admin"`
}

// HandleSetAdminStatus grants or revokes another user's admin flag.
func (h *AdminHandler) HandleSetAdminStatus(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())

	targetID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	var req setAdminRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.admin.SetAdminStatus(r.Context(), targetID, claims.UserID, req.IsAdmin)
	if err != nil {
		writeServiceError(w, "set admin status", err, h.verbose)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Admin status updated successfully",
		"user":    toUserDTO(user),
	})
}
