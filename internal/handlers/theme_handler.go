package handlers

import (
	"errors"

	"drawing-prompter/internal/theme"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

type ThemeHandler struct {
	registry *theme.Registry
	logger   zerolog.Logger
}

func NewThemeHandler(registry *theme.Registry, logger zerolog.Logger) *ThemeHandler {
	return &ThemeHandler{registry: registry, logger: logger}
}

func (h *ThemeHandler) GetAllThemes(c *fiber.Ctx) error {
	themes, err := h.registry.List(c.UserContext())
	if err != nil {
		h.logger.Error().Err(err).Msg("error listing themes")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get themes",
		})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"themes": themes,
	})
}

func (h *ThemeHandler) ApplyTheme(c *fiber.Ctx) error {
	t, err := h.registry.Apply(c.UserContext(), c.Params("themeId"))
	if err != nil {
		return h.themeError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"theme":   t,
		"message": "Tema " + t.Name + " aplicado",
	})
}

func (h *ThemeHandler) UnlockTheme(c *fiber.Ctx) error {
	var dto struct {
		Password string `json:"password"`
	}
	if err := c.BodyParser(&dto); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	t, err := h.registry.Unlock(c.UserContext(), c.Params("themeId"), dto.Password)
	if err != nil {
		return h.themeError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"theme":   t,
		"message": "🎉 ¡Tema " + t.Name + " desbloqueado!",
	})
}

func (h *ThemeHandler) ResetLocks(c *fiber.Ctx) error {
	reverted, err := h.registry.ResetLocks(c.UserContext())
	if err != nil {
		h.logger.Error().Err(err).Msg("error resetting theme locks")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to reset themes",
		})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"reverted": reverted,
		"message":  "Temas bloqueados de nuevo",
	})
}

func (h *ThemeHandler) themeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, theme.ErrUnknownTheme):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Theme not found",
		})
	case errors.Is(err, theme.ErrThemeLocked):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Theme is locked",
		})
	case errors.Is(err, theme.ErrWrongPassword):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Contraseña incorrecta",
		})
	}
	h.logger.Error().Err(err).Msg("theme store error")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Failed to update theme",
	})
}
