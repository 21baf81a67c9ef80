package middleware

import (
	"github.com/fiesta-dev/fiesta/internal/models"
	"github.com/fiesta-dev/fiesta/internal/planner"
)

func plannerIdentity(user models.User) planner.Identity {
	return planner.Identity{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
	}
}
