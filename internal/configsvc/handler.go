// Package configsvc serves runtime configuration to advisor clients.
// Deployments point clients at this service so the backend base URL can
// change without shipping a new build.
package configsvc

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Handler resolves the advertised API base URL.
type Handler struct {
	apiURL string
}

// NewHandler creates a Handler advertising the given base URL. An empty
// URL is allowed; lookups then report a configuration error.
func NewHandler(apiURL string) *Handler {
	return &Handler{apiURL: apiURL}
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// RegisterRoutes attaches the lookup endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/api/get-api-url", h.GetAPIURL)
}

// GetAPIURL returns the backend base URL clients should call.
func (h *Handler) GetAPIURL(w http.ResponseWriter, r *http.Request) {
	if h.apiURL == "" {
		slog.Error("API URL requested but not configured")
		Error(w, http.StatusInternalServerError, "API URL is not configured on the server.")
		return
	}
	JSON(w, http.StatusOK, map[string]string{"apiUrl": h.apiURL})
}
