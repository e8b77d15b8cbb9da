package handler

import (
	"io"
	"net/http"

	"github.com/abdoir/affinity-server/internal/domain"
	"github.com/abdoir/affinity-server/internal/service"
)

// maxUploadBytes caps the whole multipart request body. The image itself
// is limited further in the profile service.
const maxUploadBytes = 10 << 20

// ProfileHandler serves profile updates and avatar management for the
// authenticated user.
type ProfileHandler struct {
	profiles *service.ProfileService
	verbose  bool
}

func NewProfileHandler(profiles *service.ProfileService, verbose bool) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, verbose: verbose}
}

type updateProfileRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Bio      *string `json:"bio"`
}

// HandleUpdateProfile applies a partial update to the caller's profile.
// Absent fields are left untouched.
func (h *ProfileHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())

	var req updateProfileRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.profiles.UpdateProfile(r.Context(), claims.UserID, domain.ProfileUpdate{
		Username: req.Username,
		Email:    req.Email,
		Bio:      req.Bio,
	})
	if err != nil {
		writeServiceError(w, "update profile", err, h.verbose)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Profile updated successfully",
		"user":    toUserDTO(user),
	})
}

// HandleUploadAvatar accepts a multipart upload under the profile_image
// field, sniffs the content type server-side, and replaces any previous
// avatar.
func (h *ProfileHandler) HandleUploadAvatar(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, _, err := r.FormFile("profile_image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No image file provided")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read uploaded file")
		return
	}

	// The client-supplied Content-Type header is ignored; the bytes decide.
	contentType := http.DetectContentType(data)

	filename, err := h.profiles.UploadAvatar(r.Context(), claims.UserID, contentType, data)
	if err != nil {
		writeServiceError(w, "upload avatar", err, h.verbose)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":       "Profile image uploaded successfully",
		"profile_image": filename,
	})
}

// HandleDeleteAvatar removes the caller's avatar file and clears the
// reference.
func (h *ProfileHandler) HandleDeleteAvatar(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())

	if err := h.profiles.DeleteAvatar(r.Context(), claims.UserID); err != nil {
		writeServiceError(w, "delete avatar", err, h.verbose)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Profile image deleted successfully"})
}

// HandleServeAvatar streams a stored avatar by filename. Public, like any
// static uploads directory.
func (h *ProfileHandler) HandleServeAvatar(w http.ResponseWriter, r *http.Request) {
	filename := r.PathValue("filename")

	data, contentType, err := h.profiles.Avatar(r.Context(), filename)
	if err != nil {
		writeServiceError(w, "serve avatar", err, h.verbose)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
