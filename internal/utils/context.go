package utils

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/fiesta-dev/fiesta/internal/planner"
	"github.com/fiesta-dev/fiesta/internal/types"
)

// CurrentIdentity returns the authenticated actor set by the auth middleware.
func CurrentIdentity(ctx *gin.Context) (planner.Identity, error) {
	value, exists := ctx.Get(types.ContextIdentityKey)

	if !exists {
		return planner.Identity{}, fmt.Errorf("user not authenticated")
	}

	identity, ok := value.(planner.Identity)

	if !ok {
		return planner.Identity{}, fmt.Errorf("invalid identity type in context")
	}

	return identity, nil
}
