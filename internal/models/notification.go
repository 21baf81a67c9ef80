package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	NotificationSent    = "sent"
	NotificationFailed  = "failed"
	NotificationSkipped = "skipped"
)

// Notification records one push dispatch attempt to one recipient.
type Notification struct {
	gorm.Model

	PartyID uint   `gorm:"index"`
	UserID  uint   `gorm:"not null;index"`
	Title   string `gorm:"not null"`
	Body    string
	Status  string `gorm:"not null"`
	Payload datatypes.JSON
	SentAt  *time.Time

	// Relationships
	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
