package configsvc

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGetAPIURL(t *testing.T) {
	h := NewHandler("https://backend.example.com")
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/get-api-url", nil)

	h.GetAPIURL(w, r)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	var got map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if got["apiUrl"] != "https://backend.example.com" {
		t.Errorf("Expected apiUrl to round-trip, got %q", got["apiUrl"])
	}
}

func TestGetAPIURLUnconfigured(t *testing.T) {
	h := NewHandler("")
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/get-api-url", nil)

	h.GetAPIURL(w, r)

	resp := w.Result()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("Expected status 500, got %d", resp.StatusCode)
	}

	var got map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if got["error"] != "API URL is not configured on the server." {
		t.Errorf("Expected configuration error message, got %q", got["error"])
	}
}

func TestJSON(t *testing.T) {
	w := httptest.NewRecorder()
	data := map[string]string{"foo": "bar"}

	JSON(w, http.StatusOK, data)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected application/json, got %q", ct)
	}

	var got map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if got["foo"] != "bar" {
		t.Errorf("Expected foo=bar, got %v", got["foo"])
	}
}
