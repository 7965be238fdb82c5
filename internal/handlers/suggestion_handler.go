package handlers

import (
	"context"

	"drawing-prompter/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// Suggester is implemented by ideas.Generator.
type Suggester interface {
	Generate(ctx context.Context, prefs models.Preferences) []models.Suggestion
	Fallback(prefs models.Preferences) []models.Suggestion
	Prompts(ctx context.Context) ([]string, models.Source)
}

type SuggestionHandler struct {
	gen    Suggester
	logger zerolog.Logger
}

func NewSuggestionHandler(gen Suggester, logger zerolog.Logger) *SuggestionHandler {
	return &SuggestionHandler{gen: gen, logger: logger}
}

// GetSuggestions answers the ideas form with three suggestions. An empty
// body is treated as a form with nothing selected.
func (h *SuggestionHandler) GetSuggestions(c *fiber.Ctx) (err error) {
	var req models.SuggestionRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request body",
			})
		}
	}

	defer func() {
		if r := recover(); r != nil {
			h.logger.Error().Interface("panic", r).Msg("suggestion generation failed, using fallback")
			err = c.Status(fiber.StatusOK).JSON(models.SuggestionResponse{
				Suggestions: h.gen.Fallback(req.Answers),
			})
		}
	}()

	suggestions := h.gen.Generate(c.UserContext(), req.Answers)
	return c.Status(fiber.StatusOK).JSON(models.SuggestionResponse{
		Suggestions: suggestions,
	})
}

// GetPrompts lists the live prompts, or the whole catalog when too few
// could be gathered.
func (h *SuggestionHandler) GetPrompts(c *fiber.Ctx) error {
	prompts, source := h.gen.Prompts(c.UserContext())
	if prompts == nil {
		prompts = []string{}
	}
	return c.Status(fiber.StatusOK).JSON(models.PromptsResponse{
		Prompts: prompts,
		Source:  source,
	})
}
