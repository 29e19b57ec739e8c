package gateway

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ashureev/agri-advisor/internal/domain"
)

func TestLoginSendsFormEncoding(t *testing.T) {
	var gotContentType, gotBody string
	c, store, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		data, _ := io.ReadAll(r.Body)
		gotBody = string(data)
		w.Write([]byte(`{"access_token": "abc123", "token_type": "bearer"}`))
	})
	store.token = ""

	token, err := c.Login(context.Background(), "farmer@example.com", "secret")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if token != "abc123" {
		t.Errorf("Expected token abc123, got %q", token)
	}
	if gotContentType != "application/x-www-form-urlencoded" {
		t.Errorf("Expected form encoding, got %q", gotContentType)
	}
	if !strings.Contains(gotBody, "username=farmer%40example.com") {
		t.Errorf("Expected username field in body, got %q", gotBody)
	}
}

func TestVerifyEmailUsesQueryParams(t *testing.T) {
	var gotQuery string
	c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.WriteHeader(http.StatusOK)
	})

	if err := c.VerifyEmail(context.Background(), 42, "123456"); err != nil {
		t.Fatalf("VerifyEmail failed: %v", err)
	}
	if !strings.Contains(gotQuery, "user_id=42") || !strings.Contains(gotQuery, "code=123456") {
		t.Errorf("Expected user_id and code in query, got %q", gotQuery)
	}
}

func TestDiagnoseSendsMultipart(t *testing.T) {
	imagePath := filepath.Join(t.TempDir(), "leaf.jpg")
	if err := os.WriteFile(imagePath, []byte("jpegdata"), 0600); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}

	var gotContentType string
	var gotLatitude, gotLanguage string
	var gotImage []byte
	c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("Failed to parse multipart form: %v", err)
			return
		}
		gotLatitude = r.FormValue("latitude")
		gotLanguage = r.FormValue("language")
		file, _, err := r.FormFile("image")
		if err != nil {
			t.Errorf("Missing image part: %v", err)
			return
		}
		defer file.Close()
		gotImage, _ = io.ReadAll(file)
		w.Write([]byte(`{"disease_name": "Leaf blight", "confidence": 0.91}`))
	})

	report, err := c.Diagnose(context.Background(), domain.DiagnosisRequest{
		ImagePath: imagePath,
		Latitude:  1.55,
		Longitude: 110.33,
		Language:  "ms",
	})
	if err != nil {
		t.Fatalf("Diagnose failed: %v", err)
	}

	if !strings.HasPrefix(gotContentType, "multipart/form-data") {
		t.Errorf("Expected multipart content type, got %q", gotContentType)
	}
	if gotLatitude != "1.55" {
		t.Errorf("Expected latitude 1.55, got %q", gotLatitude)
	}
	if gotLanguage != "ms" {
		t.Errorf("Expected language ms, got %q", gotLanguage)
	}
	if string(gotImage) != "jpegdata" {
		t.Errorf("Expected image bytes to round-trip, got %q", string(gotImage))
	}
	if report.DiseaseName != "Leaf blight" {
		t.Errorf("Expected disease 'Leaf blight', got %q", report.DiseaseName)
	}
}

func TestDiagnosisHistoryEmptyBody(t *testing.T) {
	c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	history, err := c.DiagnosisHistory(context.Background())
	if err != nil {
		t.Fatalf("DiagnosisHistory failed: %v", err)
	}
	if history != nil {
		t.Errorf("Expected nil history for 204, got %v", history)
	}
}

func TestUpdateSubscriptionSendsPlan(t *testing.T) {
	var gotMethod, gotPath, gotBody string
	c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		data, _ := io.ReadAll(r.Body)
		gotBody = string(data)
		w.Write([]byte(`{"id": 7, "email": "farmer@example.com", "subscription_tier": "tier_15"}`))
	})

	user, err := c.UpdateSubscription(context.Background(), domain.Tier15)
	if err != nil {
		t.Fatalf("UpdateSubscription failed: %v", err)
	}

	if gotMethod != http.MethodPut || gotPath != "/users/me/subscription" {
		t.Errorf("Expected PUT /users/me/subscription, got %s %s", gotMethod, gotPath)
	}
	if !strings.Contains(gotBody, `"plan":"tier_15"`) {
		t.Errorf("Expected plan field in body, got %q", gotBody)
	}
	if user.SubscriptionTier != domain.Tier15 {
		t.Errorf("Expected tier_15, got %q", user.SubscriptionTier)
	}
}
