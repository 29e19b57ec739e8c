package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func corsHandler(origins []string) http.Handler {
	return CORS(origins)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestCORSAllowedOrigin(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/get-api-url", nil)
	r.Header.Set("Origin", "https://dashboard.example.com")

	corsHandler([]string{"https://dashboard.example.com"}).ServeHTTP(w, r)

	resp := w.Result()
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "https://dashboard.example.com" {
		t.Errorf("Expected origin to be echoed, got %q", got)
	}
	if got := resp.Header.Get("Access-Control-Allow-Credentials"); got != "" {
		t.Errorf("Expected no credentials header, got %q", got)
	}
}

func TestCORSDisallowedOrigin(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/get-api-url", nil)
	r.Header.Set("Origin", "https://evil.example.com")

	corsHandler([]string{"https://dashboard.example.com"}).ServeHTTP(w, r)

	resp := w.Result()
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Expected no CORS headers for a disallowed origin, got %q", got)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected the request itself to pass through, got %d", resp.StatusCode)
	}
}

func TestCORSPreflight(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodOptions, "/api/get-api-url", nil)
	r.Header.Set("Origin", "https://dashboard.example.com")

	corsHandler([]string{"*"}).ServeHTTP(w, r)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected preflight 200, got %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Methods"); got != "GET, OPTIONS" {
		t.Errorf("Expected GET-only methods, got %q", got)
	}
}
