package repo

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"drawing-prompter/internal/libraries"
	"drawing-prompter/internal/models"

	"github.com/google/uuid"
)

// GalleryKey is the local store key holding the entry list.
const GalleryKey = "myDrawings"

// KV is the slice of the local store the gallery needs.
type KV interface {
	GetJSON(ctx context.Context, key string, v any) (bool, error)
	SetJSON(ctx context.Context, key string, v any) error
}

// LocalGalleryRepo keeps the entry list as one JSON value in the local store,
// newest first, with the PNGs in an image store.
type LocalGalleryRepo struct {
	mu     sync.Mutex
	store  KV
	images libraries.ImageStore
	max    int
	now    func() time.Time
}

// NewLocalGalleryRepository returns a gallery holding at most max entries.
// max <= 0 means unbounded.
func NewLocalGalleryRepository(store KV, images libraries.ImageStore, max int) GalleryRepoInterface {
	return &LocalGalleryRepo{store: store, images: images, max: max, now: time.Now}
}

func (r *LocalGalleryRepo) load(ctx context.Context) ([]models.Drawing, error) {
	var drawings []models.Drawing
	if _, err := r.store.GetJSON(ctx, GalleryKey, &drawings); err != nil {
		return nil, fmt.Errorf("load gallery: %w", err)
	}
	return drawings, nil
}

func (r *LocalGalleryRepo) SaveDrawing(ctx context.Context, drawing *models.Drawing, png []byte) (uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	drawings, err := r.load(ctx)
	if err != nil {
		return uuid.Nil, err
	}

	id := uuid.New()
	drawing.UUID = id
	drawing.ImageKey = imageKey(id)
	drawing.CreatedAt = r.now().UTC()
	if err := r.images.Put(ctx, drawing.ImageKey, png); err != nil {
		return uuid.Nil, err
	}

	drawings = append([]models.Drawing{*drawing}, drawings...)
	var evicted []models.Drawing
	if r.max > 0 && len(drawings) > r.max {
		evicted = drawings[r.max:]
		drawings = drawings[:r.max]
	}
	if err := r.store.SetJSON(ctx, GalleryKey, drawings); err != nil {
		_ = r.images.Delete(ctx, drawing.ImageKey)
		return uuid.Nil, fmt.Errorf("save gallery: %w", err)
	}
	for _, d := range evicted {
		_ = r.images.Delete(ctx, d.ImageKey)
	}
	return id, nil
}

func (r *LocalGalleryRepo) ListDrawings(ctx context.Context) ([]models.Drawing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	drawings, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	if drawings == nil {
		drawings = []models.Drawing{}
	}
	return drawings, nil
}

func (r *LocalGalleryRepo) GetDrawing(ctx context.Context, id uuid.UUID) (models.Drawing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	drawings, err := r.load(ctx)
	if err != nil {
		return models.Drawing{}, err
	}
	for _, d := range drawings {
		if d.UUID == id {
			return d, nil
		}
	}
	return models.Drawing{}, ErrDrawingNotFound
}

func (r *LocalGalleryRepo) GetDrawingImage(ctx context.Context, id uuid.UUID) ([]byte, error) {
	d, err := r.GetDrawing(ctx, id)
	if err != nil {
		return nil, err
	}
	data, err := r.images.Get(ctx, d.ImageKey)
	if errors.Is(err, libraries.ErrImageNotFound) {
		return nil, ErrDrawingNotFound
	}
	return data, err
}

func (r *LocalGalleryRepo) DeleteDrawing(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	drawings, err := r.load(ctx)
	if err != nil {
		return err
	}
	idx := -1
	for i, d := range drawings {
		if d.UUID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrDrawingNotFound
	}
	removed := drawings[idx]
	drawings = append(drawings[:idx], drawings[idx+1:]...)
	if err := r.store.SetJSON(ctx, GalleryKey, drawings); err != nil {
		return fmt.Errorf("save gallery: %w", err)
	}
	return r.images.Delete(ctx, removed.ImageKey)
}
