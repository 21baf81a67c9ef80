package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fiesta-dev/fiesta/internal/planner"
	"github.com/fiesta-dev/fiesta/internal/utils"
)

type CreatePartyRequest struct {
	Name        string `json:"name" binding:"required"`
	Date        string `json:"date" binding:"required"`
	Location    string `json:"location" binding:"required"`
	Description string `json:"description"`
}

type UpdatePartyRequest struct {
	Name        *string `json:"name"`
	Date        *string `json:"date"`
	Location    *string `json:"location"`
	Description *string `json:"description"`
}

func (h *Handler) CreateParty(ctx *gin.Context) {
	actor, err := utils.CurrentIdentity(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req CreatePartyRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	date, err := time.Parse(time.RFC3339, req.Date)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"date": "date must be ISO-8601"}})
		return
	}

	party, err := h.Engine.CreateParty(ctx.Request.Context(), actor, planner.CreatePartyInput{
		Name:        req.Name,
		Date:        date,
		Location:    req.Location,
		Description: req.Description,
	})
	if err != nil {
		engineError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, party)
}

func (h *Handler) ListParties(ctx *gin.Context) {
	actor, err := utils.CurrentIdentity(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	parties, err := h.Engine.ListParties(ctx.Request.Context(), actor)
	if err != nil {
		engineError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, parties)
}

func (h *Handler) GetParty(ctx *gin.Context) {
	actor, err := utils.CurrentIdentity(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	partyID, ok := uintParam(ctx, "party_id")
	if !ok {
		return
	}

	party, err := h.Engine.GetParty(ctx.Request.Context(), actor, partyID)
	if err != nil {
		engineError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, party)
}

func (h *Handler) UpdateParty(ctx *gin.Context) {
	actor, err := utils.CurrentIdentity(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	partyID, ok := uintParam(ctx, "party_id")
	if !ok {
		return
	}

	var req UpdatePartyRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	input := planner.UpdatePartyInput{
		Name:        req.Name,
		Location:    req.Location,
		Description: req.Description,
	}

	if req.Date != nil {
		date, err := time.Parse(time.RFC3339, *req.Date)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"date": "date must be ISO-8601"}})
			return
		}
		input.Date = &date
	}

	party, err := h.Engine.UpdateParty(ctx.Request.Context(), actor, partyID, input)
	if err != nil {
		engineError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, party)
}

func (h *Handler) DeleteParty(ctx *gin.Context) {
	actor, err := utils.CurrentIdentity(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	partyID, ok := uintParam(ctx, "party_id")
	if !ok {
		return
	}

	if err := h.Engine.DeleteParty(ctx.Request.Context(), actor, partyID); err != nil {
		engineError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
