package models

import (
	"time"

	"gorm.io/gorm"
)

type Party struct {
	gorm.Model

	Name        string    `gorm:"not null"`
	Date        time.Time `gorm:"not null;index"`
	Location    string    `gorm:"not null"`
	Description string
	CreatorID   uint `gorm:"not null;index"`

	// Set once the upcoming-party reminder has gone out.
	ReminderSent bool `gorm:"not null;default:false"`

	// Relationships
	Creator        User            `gorm:"foreignKey:CreatorID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Participations []Participation `gorm:"foreignKey:PartyID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Items          []Item          `gorm:"foreignKey:PartyID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
