package views

import (
	"context"
	"errors"
	"testing"

	"github.com/ashureev/agri-advisor/internal/config"
)

func TestSplitIDPayload(t *testing.T) {
	id, text, err := splitIDPayload("12: pepper vines look healthy")
	if err != nil {
		t.Fatalf("splitIDPayload failed: %v", err)
	}
	if id != 12 {
		t.Errorf("Expected ID 12, got %d", id)
	}
	if text != "pepper vines look healthy" {
		t.Errorf("Expected trimmed text, got %q", text)
	}

	for _, input := range []string{"no separator", "abc: text", "5:", "5:   "} {
		if _, _, err := splitIDPayload(input); err == nil {
			t.Errorf("Expected %q to fail", input)
		}
	}
}

func TestParseProductInput(t *testing.T) {
	product, err := parseProductInput("Black Pepper; 24.50; 10")
	if err != nil {
		t.Fatalf("parseProductInput failed: %v", err)
	}
	if product.Name != "Black Pepper" {
		t.Errorf("Expected trimmed name, got %q", product.Name)
	}
	if product.Price != 24.50 {
		t.Errorf("Expected price 24.50, got %f", product.Price)
	}
	if product.Quantity != 10 {
		t.Errorf("Expected quantity 10, got %d", product.Quantity)
	}

	for _, input := range []string{"only two; parts", "name; -1; 5", "name; 2.50; -3", "; 2.50; 3"} {
		if _, err := parseProductInput(input); err == nil {
			t.Errorf("Expected %q to fail", input)
		}
	}
}

func TestConfigLocator(t *testing.T) {
	unset := NewConfigLocator(&config.Config{})
	if _, _, err := unset.Locate(context.Background()); !errors.Is(err, ErrNoLocation) {
		t.Fatalf("Expected ErrNoLocation for unset coordinates, got %v", err)
	}

	set := NewConfigLocator(&config.Config{Latitude: 1.55, Longitude: 110.33})
	lat, lon, err := set.Locate(context.Background())
	if err != nil {
		t.Fatalf("Locate failed: %v", err)
	}
	if lat != 1.55 || lon != 110.33 {
		t.Errorf("Expected configured coordinates, got %f,%f", lat, lon)
	}
}
