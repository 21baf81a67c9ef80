package models

import "gorm.io/gorm"

// Participation is the membership edge between a user and a party.
type Participation struct {
	gorm.Model

	UserID  uint `gorm:"not null;uniqueIndex:idx_user_party"`
	PartyID uint `gorm:"not null;uniqueIndex:idx_user_party"`

	// Relationships
	User  User  `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Party Party `gorm:"foreignKey:PartyID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
