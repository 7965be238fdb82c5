package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"image"

	"drawing-prompter/internal/canvas"
	"drawing-prompter/internal/models"
	"drawing-prompter/internal/repo"

	"gorm.io/datatypes"
)

// Gallery change actions sent in gallery_updated messages.
const (
	GalleryActionSaved   = "saved"
	GalleryActionDeleted = "deleted"
)

var ErrInvalidPrompt = errors.New("prompt must be valid JSON")

// GalleryNotifier is told about every gallery change. The websocket hub
// implements it.
type GalleryNotifier interface {
	BroadcastGalleryUpdated(action, id string)
}

// saveToGallery composites img onto white, builds its thumbnail and stores
// both with the optional prompt.
func saveToGallery(ctx context.Context, gallery repo.GalleryRepoInterface, img image.Image, prompt json.RawMessage) (models.Drawing, error) {
	if string(prompt) == "null" {
		prompt = nil
	}
	if len(prompt) > 0 && !json.Valid(prompt) {
		return models.Drawing{}, ErrInvalidPrompt
	}

	flat := canvas.OnWhite(img)
	data, err := canvas.EncodePNG(flat)
	if err != nil {
		return models.Drawing{}, err
	}
	thumb, err := canvas.EncodePNG(canvas.Thumbnail(flat))
	if err != nil {
		return models.Drawing{}, err
	}

	drawing := models.Drawing{
		Thumbnail: canvas.PNGDataURL(thumb),
		Width:     flat.Bounds().Dx(),
		Height:    flat.Bounds().Dy(),
	}
	if len(prompt) > 0 {
		drawing.Prompt = datatypes.JSON(prompt)
	}
	if _, err := gallery.SaveDrawing(ctx, &drawing, data); err != nil {
		return models.Drawing{}, err
	}
	return drawing, nil
}
