package models

import "gorm.io/gorm"

// Categories an item may carry. The engine validates against this set; the
// check constraint below is a second line of defense only.
var ItemCategories = []string{
	"Drinks",
	"Food",
	"Desserts",
	"Snacks",
	"Decorations",
	"Utensils",
	"Other",
}

type Item struct {
	gorm.Model

	PartyID     uint   `gorm:"not null;index"`
	UserID      uint   `gorm:"not null;index"` // the bringer
	Name        string `gorm:"not null"`
	Quantity    int    `gorm:"not null;check:positive_quantity,quantity > 0"`
	Category    string `gorm:"check:valid_category,category IN ('Drinks','Food','Desserts','Snacks','Decorations','Utensils','Other') OR category = ''"`
	Description string

	// Relationships
	Party Party `gorm:"foreignKey:PartyID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	User  User  `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}

// ValidCategory reports whether c names a known category. The empty string
// is allowed: category is optional.
func ValidCategory(c string) bool {
	if c == "" {
		return true
	}
	for _, known := range ItemCategories {
		if c == known {
			return true
		}
	}
	return false
}
