package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	CaseStateNull    = "null"
	CaseStatePending = "pending"
	CaseStateInitial = "initial"
	CaseStateProcess = "process"
	CaseStateFinish  = "finish"
	CaseStateCancel  = "cancel"
)

var CaseStates = []string{
	CaseStateNull,
	CaseStatePending,
	CaseStateInitial,
	CaseStateProcess,
	CaseStateFinish,
	CaseStateCancel,
}

type Case struct {
	ID     string `gorm:"type:uuid;primaryKey" json:"id"`
	Detail string `gorm:"type:text;not null" json:"detail"`
	State  string `gorm:"size:20;not null;default:'null'" json:"state"`

	ClientID string  `gorm:"type:uuid;not null;index" json:"client_id"`
	Client   *Client `gorm:"constraint:OnDelete:CASCADE;" json:"client,omitempty"`

	Users []User `gorm:"many2many:user_cases;" json:"users,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Case) BeforeCreate(tx *gorm.DB) error {
	newID(&c.ID)
	return nil
}

func IsCaseState(s string) bool {
	for _, st := range CaseStates {
		if st == s {
			return true
		}
	}
	return false
}
