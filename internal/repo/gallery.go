package repo

import (
	"context"
	"errors"

	"drawing-prompter/internal/models"

	"github.com/google/uuid"
)

// DefaultMaxDrawings is the gallery capacity when none is configured.
const DefaultMaxDrawings = 50

var ErrDrawingNotFound = errors.New("drawing not found")

type GalleryRepoInterface interface {
	// SaveDrawing stores the PNG and its entry, filling in UUID, ImageKey
	// and CreatedAt. The oldest entries beyond capacity are evicted.
	SaveDrawing(ctx context.Context, drawing *models.Drawing, png []byte) (uuid.UUID, error)
	// ListDrawings returns entries newest first.
	ListDrawings(ctx context.Context) ([]models.Drawing, error)
	GetDrawing(ctx context.Context, id uuid.UUID) (models.Drawing, error)
	GetDrawingImage(ctx context.Context, id uuid.UUID) ([]byte, error)
	DeleteDrawing(ctx context.Context, id uuid.UUID) error
}

func imageKey(id uuid.UUID) string {
	return id.String() + ".png"
}
