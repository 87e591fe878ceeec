package models

import (
	"time"

	"gorm.io/gorm"
)

// Availability is a staff member's bookable window(s) for one date.
// Times are stored as "15:04" strings.
type Availability struct {
	ID     string `gorm:"type:uuid;primaryKey" json:"id"`
	UserID string `gorm:"type:uuid;not null;uniqueIndex:idx_availability_user_date" json:"user_id"`
	User   User   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	Date time.Time `gorm:"type:date;not null;uniqueIndex:idx_availability_user_date" json:"date"`

	StartTime         string  `gorm:"size:5;not null" json:"start_time"`
	EndTime           string  `gorm:"size:5;not null" json:"end_time"`
	StartTimeOptional *string `gorm:"size:5" json:"start_time_optional"`
	EndTimeOptional   *string `gorm:"size:5" json:"end_time_optional"`

	Appointments []Appointment `gorm:"foreignKey:AvailabilityID;constraint:OnDelete:CASCADE;" json:"appointments,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a *Availability) BeforeCreate(tx *gorm.DB) error {
	newID(&a.ID)
	return nil
}
