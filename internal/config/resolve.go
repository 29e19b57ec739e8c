package config

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// apiURLResponse matches the config-lookup service payload.
type apiURLResponse struct {
	APIURL string `json:"apiUrl"`
	Error  string `json:"error,omitempty"`
}

// ResolveBaseURL fills in cfg.BaseURL if it is not already set.
// Resolution order: explicit AGRI_API_URL, then a lookup against the
// config service when one is configured, then the built-in default.
// The result is fixed for the lifetime of the process.
func ResolveBaseURL(ctx context.Context, cfg *Config) error {
	if cfg.BaseURL != "" {
		return nil
	}

	if cfg.ConfigSvcURL != "" {
		url, err := lookupAPIURL(ctx, cfg.ConfigSvcURL)
		if err != nil {
			return fmt.Errorf("config service lookup: %w", err)
		}
		cfg.BaseURL = strings.TrimRight(url, "/")
		slog.Info("Backend URL resolved via config service", "base_url", cfg.BaseURL)
		return nil
	}

	cfg.BaseURL = defaultBaseURL
	slog.Info("Backend URL defaulted", "base_url", cfg.BaseURL)
	return nil
}

func lookupAPIURL(ctx context.Context, svcURL string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, svcURL+"/api/get-api-url", nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request config service: %w", err)
	}
	defer resp.Body.Close()

	var payload apiURLResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode config response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if payload.Error != "" {
			return "", fmt.Errorf("config service: %s", payload.Error)
		}
		return "", fmt.Errorf("config service returned status %d", resp.StatusCode)
	}
	if payload.APIURL == "" {
		return "", fmt.Errorf("config service returned empty apiUrl")
	}
	return payload.APIURL, nil
}
