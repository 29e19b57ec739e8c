package views

import (
	"context"
	"errors"

	"github.com/ashureev/agri-advisor/internal/config"
)

// ErrNoLocation is returned when no farm coordinates are available for a
// diagnosis submission.
var ErrNoLocation = errors.New("unable to retrieve your location; set AGRI_LATITUDE and AGRI_LONGITUDE")

// Locator supplies the coordinates attached to a diagnosis submission.
type Locator interface {
	Locate(ctx context.Context) (latitude, longitude float64, err error)
}

// ConfigLocator reads the farm coordinates from configuration.
type ConfigLocator struct {
	cfg *config.Config
}

// NewConfigLocator creates a locator backed by the loaded configuration.
func NewConfigLocator(cfg *config.Config) *ConfigLocator {
	return &ConfigLocator{cfg: cfg}
}

// Locate returns the configured coordinates. Unset coordinates are an
// error surfaced inline by the diagnosis view, never a crash.
func (l *ConfigLocator) Locate(_ context.Context) (float64, float64, error) {
	if l.cfg.Latitude == 0 && l.cfg.Longitude == 0 {
		return 0, 0, ErrNoLocation
	}
	return l.cfg.Latitude, l.cfg.Longitude, nil
}
