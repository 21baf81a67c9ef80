package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fiesta-dev/fiesta/internal/utils"
)

type AddParticipantRequest struct {
	UserID uint `json:"userId" binding:"required"`
}

func (h *Handler) AddParticipant(ctx *gin.Context) {
	actor, err := utils.CurrentIdentity(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	partyID, ok := uintParam(ctx, "party_id")
	if !ok {
		return
	}

	var req AddParticipantRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	participant, err := h.Engine.AddParticipant(ctx.Request.Context(), actor, partyID, req.UserID)
	if err != nil {
		engineError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"participant": participant})
}

func (h *Handler) RemoveParticipant(ctx *gin.Context) {
	actor, err := utils.CurrentIdentity(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	partyID, ok := uintParam(ctx, "party_id")
	if !ok {
		return
	}

	userID, ok := uintParam(ctx, "user_id")
	if !ok {
		return
	}

	if err := h.Engine.RemoveParticipant(ctx.Request.Context(), actor, partyID, userID); err != nil {
		engineError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
