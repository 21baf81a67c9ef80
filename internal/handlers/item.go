package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fiesta-dev/fiesta/internal/planner"
	"github.com/fiesta-dev/fiesta/internal/utils"
)

type AddItemRequest struct {
	Name        string `json:"name" binding:"required"`
	Quantity    int    `json:"quantity" binding:"required"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

type UpdateItemRequest struct {
	Name     *string `json:"name"`
	Quantity *int    `json:"quantity"`
}

func (h *Handler) AddItem(ctx *gin.Context) {
	actor, err := utils.CurrentIdentity(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	partyID, ok := uintParam(ctx, "party_id")
	if !ok {
		return
	}

	var req AddItemRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	item, err := h.Engine.AddItem(ctx.Request.Context(), actor, partyID, planner.AddItemInput{
		Name:        req.Name,
		Quantity:    req.Quantity,
		Category:    req.Category,
		Description: req.Description,
	})
	if err != nil {
		engineError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, item)
}

func (h *Handler) UpdateItem(ctx *gin.Context) {
	actor, err := utils.CurrentIdentity(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	partyID, ok := uintParam(ctx, "party_id")
	if !ok {
		return
	}

	itemID, ok := uintParam(ctx, "item_id")
	if !ok {
		return
	}

	var req UpdateItemRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	item, err := h.Engine.UpdateItem(ctx.Request.Context(), actor, partyID, itemID, planner.UpdateItemInput{
		Name:     req.Name,
		Quantity: req.Quantity,
	})
	if err != nil {
		engineError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, item)
}

func (h *Handler) DeleteItem(ctx *gin.Context) {
	actor, err := utils.CurrentIdentity(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	partyID, ok := uintParam(ctx, "party_id")
	if !ok {
		return
	}

	itemID, ok := uintParam(ctx, "item_id")
	if !ok {
		return
	}

	if err := h.Engine.DeleteItem(ctx.Request.Context(), actor, partyID, itemID); err != nil {
		engineError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
