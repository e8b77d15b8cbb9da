package handler

import (
	"net/http"
	"time"
)

// Health reports server liveness.
func Health(env string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":    "OK",
			"message":   "Server is running",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"env":       env,
		})
	}
}
