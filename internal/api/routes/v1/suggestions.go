package v1

import (
	"drawing-prompter/internal/api"
	"drawing-prompter/internal/handlers"
	"drawing-prompter/internal/logging"

	"github.com/gofiber/fiber/v2"
)

func RegisterSuggestionRoutes(r fiber.Router, svc *api.Services) {
	suggestionHandler := handlers.NewSuggestionHandler(svc.Generator, logging.Component("suggestions"))

	r.Post("/suggestions", suggestionHandler.GetSuggestions)
	r.Get("/prompts", suggestionHandler.GetPrompts)
}
