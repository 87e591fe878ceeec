package models

import (
	"time"

	"gorm.io/gorm"
)

type Blog struct {
	ID       string `gorm:"type:uuid;primaryKey" json:"id"`
	Title    string `gorm:"size:200;not null" json:"title"`
	Body     string `gorm:"type:text;not null" json:"body"`
	ImageKey string `gorm:"size:255" json:"image_key"`

	UserID string `gorm:"type:uuid;not null;index" json:"user_id"`
	User   *User  `gorm:"constraint:OnDelete:CASCADE;" json:"author,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *Blog) BeforeCreate(tx *gorm.DB) error {
	newID(&b.ID)
	return nil
}
