package models

import (
	"time"

	"gorm.io/gorm"
)

// Appointment is one generated slot. Client fields stay nil until a client
// reserves it; Token is only set while a reservation awaits its decision.
type Appointment struct {
	ID string `gorm:"type:uuid;primaryKey" json:"id"`

	Date      time.Time `gorm:"type:date;not null;index" json:"date"`
	StartTime string    `gorm:"size:5;not null" json:"start_time"`
	EndTime   string    `gorm:"size:5;not null" json:"end_time"`

	FullName  *string `gorm:"size:100" json:"full_name"`
	Email     *string `gorm:"size:100" json:"email"`
	Cellphone *string `gorm:"size:20" json:"cellphone"`
	Reason    *string `gorm:"type:text" json:"reason"`

	State string  `gorm:"size:20;not null;default:'null';index" json:"state"`
	Token *string `gorm:"type:text" json:"-"`

	UserID string `gorm:"type:uuid;not null;index" json:"user_id"`

	AvailabilityID string `gorm:"type:uuid;not null;index" json:"availability_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) error {
	newID(&a.ID)
	return nil
}
