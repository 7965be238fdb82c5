package handlers

import (
	"encoding/json"
	"errors"
	"io"

	"drawing-prompter/internal/canvas"
	"drawing-prompter/internal/repo"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// maxUploadBytes bounds an uploaded drawing.
const maxUploadBytes = 16 << 20

type GalleryHandler struct {
	repo     repo.GalleryRepoInterface
	notifier GalleryNotifier
	logger   zerolog.Logger
}

func NewGalleryHandler(repo repo.GalleryRepoInterface, notifier GalleryNotifier, logger zerolog.Logger) *GalleryHandler {
	return &GalleryHandler{
		repo:     repo,
		notifier: notifier,
		logger:   logger,
	}
}

// function to list the gallery, newest first
func (h *GalleryHandler) GetAllDrawings(c *fiber.Ctx) error {
	drawings, err := h.repo.ListDrawings(c.UserContext())
	if err != nil {
		h.logger.Error().Err(err).Msg("error listing drawings")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get drawings",
		})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"drawings": drawings,
	})
}

// function to save an uploaded drawing
func (h *GalleryHandler) SaveDrawing(c *fiber.Ctx) error {
	file, err := c.FormFile("image")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No image provided",
		})
	}
	if file.Size > maxUploadBytes {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
			"error": "Image too large",
		})
	}

	f, err := file.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid image upload",
		})
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid image upload",
		})
	}

	img, err := canvas.DecodeImage(data)
	if errors.Is(err, canvas.ErrImageTooLarge) {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
			"error": "Image dimensions too large",
		})
	}
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Image must be a PNG or JPEG",
		})
	}

	drawing, err := saveToGallery(c.UserContext(), h.repo, img, json.RawMessage(c.FormValue("prompt")))
	if errors.Is(err, ErrInvalidPrompt) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid prompt JSON",
		})
	}
	if err != nil {
		h.logger.Error().Err(err).Msg("error saving drawing")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save drawing",
		})
	}

	h.notify(GalleryActionSaved, drawing.UUID)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"uuid":    drawing.UUID.String(),
		"drawing": drawing,
		"message": "Drawing saved successfully",
	})
}

// function to serve a drawing's PNG
func (h *GalleryHandler) GetDrawingImage(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("drawingId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid drawing ID",
		})
	}

	data, err := h.repo.GetDrawingImage(c.UserContext(), id)
	if errors.Is(err, repo.ErrDrawingNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Drawing not found",
		})
	}
	if err != nil {
		h.logger.Error().Err(err).Str("drawing", id.String()).Msg("error reading drawing image")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get drawing",
		})
	}

	c.Set(fiber.HeaderContentType, "image/png")
	return c.Status(fiber.StatusOK).Send(data)
}

// function to delete a drawing
func (h *GalleryHandler) DeleteDrawing(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("drawingId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid drawing ID",
		})
	}

	err = h.repo.DeleteDrawing(c.UserContext(), id)
	if errors.Is(err, repo.ErrDrawingNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Drawing not found",
		})
	}
	if err != nil {
		h.logger.Error().Err(err).Str("drawing", id.String()).Msg("error deleting drawing")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete drawing",
		})
	}

	h.notify(GalleryActionDeleted, id)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Drawing deleted successfully",
	})
}

func (h *GalleryHandler) notify(action string, id uuid.UUID) {
	if h.notifier != nil {
		h.notifier.BroadcastGalleryUpdated(action, id.String())
	}
}
