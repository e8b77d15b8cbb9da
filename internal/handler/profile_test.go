package handler_test

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/abdoir/affinity-server/internal/handler"
	"github.com/abdoir/affinity-server/internal/repository/sqlite"
	"github.com/abdoir/affinity-server/internal/service"
	"github.com/abdoir/affinity-server/internal/storage/disk"
)

func newUploadHandler(t *testing.T) (http.Handler, string) {
	t.Helper()

	db, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("sqlite.New: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	files, err := disk.New(t.TempDir())
	if err != nil {
		t.Fatalf("disk.New: %v", err)
	}

	auth := service.NewAuthService(db.Users(), "upload-test-secret-0123456789abcdef", 4, time.Hour)
	profiles := service.NewProfileService(db.Users(), files)
	profileH := handler.NewProfileHandler(profiles, false)

	_, token, err := auth.Register(context.Background(), "uploader", "uploader@example.com", "password123")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	return handler.RequireAuth(auth, http.HandlerFunc(profileH.HandleUploadAvatar)), token
}

func TestProfileHandler_UploadAvatar_RejectsOversizedBody(t *testing.T) {
	h, token := newUploadHandler(t)

	// One byte over the request cap. The form parser must refuse the body
	// before it is buffered in full.
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("profile_image", "huge.png")
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	fw.Write(bytes.Repeat([]byte{0xab}, 10<<20+1))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/auth/upload-profile-image", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for oversized upload, got %d", rec.Code)
	}
}

func TestProfileHandler_UploadAvatar_MissingField(t *testing.T) {
	h, token := newUploadHandler(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("something_else", "value")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/auth/upload-profile-image", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without a profile_image field, got %d", rec.Code)
	}
}
