package routes

import (
	"drawing-prompter/internal/api"
	v1 "drawing-prompter/internal/api/routes/v1"

	"github.com/gofiber/fiber/v2"
)

func Register(app *fiber.App, svc *api.Services) {
	// API v1 group
	apiGroup := app.Group("/api")
	v1Group := apiGroup.Group("/v1")

	// Register v1 routes
	v1.RegisterRoutes(v1Group, svc)

	// Unversioned paths the drawing page has always called
	v1.RegisterSuggestionRoutes(apiGroup, svc)

	// The drawing page itself
	if svc.Config.PublicDir != "" {
		app.Static("/", svc.Config.PublicDir)
	}
}
