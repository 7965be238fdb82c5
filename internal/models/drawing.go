package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Drawing is a gallery entry. The PNG itself lives in an image store under
// ImageKey; Thumbnail is a small PNG data URL for listings.
type Drawing struct {
	UUID      uuid.UUID      `gorm:"type:uuid;primaryKey" json:"uuid"`
	ImageKey  string         `gorm:"not null" json:"image_key"`
	Thumbnail string         `json:"thumbnail"`
	Width     int            `gorm:"not null" json:"width"`
	Height    int            `gorm:"not null" json:"height"`
	Prompt    datatypes.JSON `json:"prompt,omitempty"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
}
