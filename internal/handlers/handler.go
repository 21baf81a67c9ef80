package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/fiesta-dev/fiesta/internal/auth"
	"github.com/fiesta-dev/fiesta/internal/notify"
	"github.com/fiesta-dev/fiesta/internal/planner"
)

// Handler carries the dependencies for all HTTP handlers. Everything is
// injected; there is no package-level state.
type Handler struct {
	Conn   *gorm.DB
	Engine *planner.Engine
	JWT    *auth.JWTManager
	Hub    *notify.Hub
}

func New(conn *gorm.DB, engine *planner.Engine, jwtManager *auth.JWTManager, hub *notify.Hub) *Handler {
	return &Handler{Conn: conn, Engine: engine, JWT: jwtManager, Hub: hub}
}

// engineError maps an engine failure onto the HTTP error taxonomy:
// validation 400, not-found 404, forbidden 403, conflict 409, anything else
// a logged generic 500.
func engineError(ctx *gin.Context, err error) {
	var validationErr *planner.ValidationError

	switch {
	case errors.As(err, &validationErr):
		ctx.JSON(http.StatusBadRequest, gin.H{"errors": validationErr.Fields})
	case errors.Is(err, planner.ErrNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, planner.ErrForbidden):
		ctx.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, planner.ErrConflict):
		ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		slog.Error("Request failed", "method", ctx.Request.Method, "path", ctx.FullPath(), "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// uintParam parses a numeric path parameter.
func uintParam(ctx *gin.Context, name string) (uint, bool) {
	raw := ctx.Param(name)
	value, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return uint(value), true
}
