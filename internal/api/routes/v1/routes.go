package v1

import (
	"drawing-prompter/internal/api"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *api.Services) {
	registerHealth(r)
	RegisterSuggestionRoutes(r, svc)
	registerGallery(r, svc)
	registerThemes(r, svc)
	registerCanvas(r, svc)
}

func registerHealth(r fiber.Router) {
	r.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "ok",
		})
	})
}
