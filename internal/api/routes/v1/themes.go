package v1

import (
	"drawing-prompter/internal/api"
	"drawing-prompter/internal/handlers"
	"drawing-prompter/internal/logging"

	"github.com/gofiber/fiber/v2"
)

func registerThemes(r fiber.Router, svc *api.Services) {
	themeHandler := handlers.NewThemeHandler(svc.Themes, logging.Component("themes"))

	r.Get("/themes", themeHandler.GetAllThemes)
	r.Post("/themes/reset", themeHandler.ResetLocks)
	r.Post("/themes/:themeId/apply", themeHandler.ApplyTheme)
	r.Post("/themes/:themeId/unlock", themeHandler.UnlockTheme)
}
