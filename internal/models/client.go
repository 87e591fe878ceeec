package models

import (
	"time"

	"gorm.io/gorm"
)

// Client is an office client record, independent from appointment slots.
type Client struct {
	ID string `gorm:"type:uuid;primaryKey" json:"id"`

	FirstName string  `gorm:"size:100;not null" json:"first_name"`
	LastName  string  `gorm:"size:100;not null" json:"last_name"`
	DNI       string  `gorm:"column:dni;size:20;uniqueIndex;not null" json:"dni"`
	Email     *string `gorm:"size:100" json:"email"`
	Phone     *string `gorm:"size:20" json:"phone"`

	Cases []Case `gorm:"foreignKey:ClientID" json:"cases,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Client) BeforeCreate(tx *gorm.DB) error {
	newID(&c.ID)
	return nil
}
