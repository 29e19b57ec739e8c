package views

import (
	"github.com/ashureev/agri-advisor/internal/app"
	"github.com/ashureev/agri-advisor/internal/config"
)

// RegisterAll binds every dashboard renderer into the registry.
func RegisterAll(registry *app.Registry, cfg *config.Config) {
	registry.Register(app.ViewDiagnosis, NewDiagnosis(NewConfigLocator(cfg), cfg.Language))
	registry.Register(app.ViewHistory, NewHistory())
	registry.Register(app.ViewPosts, NewPosts())
	registry.Register(app.ViewChat, NewChat())
	registry.Register(app.ViewShopping, NewShopping())
	registry.Register(app.ViewProfile, NewProfile())
	registry.Register(app.ViewBusinessProfile, NewBusinessProfile())
}
