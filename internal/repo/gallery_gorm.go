package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"drawing-prompter/internal/libraries"
	"drawing-prompter/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GalleryRepo keeps entries in Postgres and the PNGs in an image store.
type GalleryRepo struct {
	db     *gorm.DB
	images libraries.ImageStore
	max    int
}

func NewGalleryRepository(db *gorm.DB, images libraries.ImageStore, max int) GalleryRepoInterface {
	return &GalleryRepo{db: db, images: images, max: max}
}

func (r *GalleryRepo) SaveDrawing(ctx context.Context, drawing *models.Drawing, png []byte) (uuid.UUID, error) {
	id := uuid.New()
	drawing.UUID = id
	drawing.ImageKey = imageKey(id)
	drawing.CreatedAt = time.Now().UTC()

	if err := r.images.Put(ctx, drawing.ImageKey, png); err != nil {
		return uuid.Nil, err
	}
	if err := r.db.WithContext(ctx).Create(drawing).Error; err != nil {
		_ = r.images.Delete(ctx, drawing.ImageKey)
		return uuid.Nil, fmt.Errorf("create drawing: %w", err)
	}
	if err := r.evict(ctx); err != nil {
		return id, err
	}
	return id, nil
}

// evict removes entries beyond capacity, oldest first.
func (r *GalleryRepo) evict(ctx context.Context) error {
	if r.max <= 0 {
		return nil
	}
	var stale []models.Drawing
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(r.max).
		Find(&stale).Error
	if err != nil {
		return fmt.Errorf("find stale drawings: %w", err)
	}
	for _, d := range stale {
		if err := r.db.WithContext(ctx).Delete(&models.Drawing{}, "uuid = ?", d.UUID).Error; err != nil {
			return fmt.Errorf("evict drawing: %w", err)
		}
		_ = r.images.Delete(ctx, d.ImageKey)
	}
	return nil
}

func (r *GalleryRepo) ListDrawings(ctx context.Context) ([]models.Drawing, error) {
	drawings := []models.Drawing{}
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&drawings).Error
	return drawings, err
}

func (r *GalleryRepo) GetDrawing(ctx context.Context, id uuid.UUID) (models.Drawing, error) {
	var d models.Drawing
	err := r.db.WithContext(ctx).First(&d, "uuid = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Drawing{}, ErrDrawingNotFound
	}
	return d, err
}

func (r *GalleryRepo) GetDrawingImage(ctx context.Context, id uuid.UUID) ([]byte, error) {
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

func (r *GalleryRepo) DeleteDrawing(ctx context.Context, id uuid.UUID) error {
	d, err := r.GetDrawing(ctx, id)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Delete(&models.Drawing{}, "uuid = ?", id).Error; err != nil {
		return fmt.Errorf("delete drawing: %w", err)
	}
	return r.images.Delete(ctx, d.ImageKey)
}
