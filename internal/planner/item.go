package planner

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fiesta-dev/fiesta/internal/models"
	"gorm.io/gorm"
)

const maxItemDescription = 500

type AddItemInput struct {
	Name        string
	Quantity    int
	Category    string
	Description string
}

type UpdateItemInput struct {
	Name     *string
	Quantity *int
}

func (in *AddItemInput) validate() error {
	fields := make(map[string]string)
	if strings.TrimSpace(in.Name) == "" {
		fields["name"] = "name is required"
	}
	if in.Quantity <= 0 {
		fields["quantity"] = "quantity must be greater than 0"
	}
	if !models.ValidCategory(in.Category) {
		fields["category"] = "unknown category"
	}
	if len(in.Description) > maxItemDescription {
		fields["description"] = fmt.Sprintf("description cannot exceed %d characters", maxItemDescription)
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// AddItem records a commitment to bring something. Only current
// participants of the party may add items; the membership check runs inside
// the insert transaction so nothing is written for a non-participant.
func (e *Engine) AddItem(ctx context.Context, actor Identity, partyID uint, in AddItemInput) (*ItemView, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	item := models.Item{
		PartyID:     partyID,
		UserID:      actor.ID,
		Name:        strings.TrimSpace(in.Name),
		Quantity:    in.Quantity,
		Category:    in.Category,
		Description: in.Description,
	}

	var party models.Party

	err := e.conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Participation{}).
			Where("party_id = ? AND user_id = ?", partyID, actor.ID).
			Count(&count).Error; err != nil {
			return fmt.Errorf("check membership: %w", err)
		}
		if count == 0 {
			return forbidden("add item: not a participant")
		}

		if err := tx.Create(&item).Error; err != nil {
			return fmt.Errorf("create item: %w", err)
		}

		if err := tx.First(&party, partyID).Error; err != nil {
			return fmt.Errorf("fetch party: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.notifier.PartyEvent(partyID, actor.ID,
		"New item",
		fmt.Sprintf("%s is bringing %d %s to %q", actor.Name, item.Quantity, item.Name, party.Name))

	return &ItemView{
		ID:          item.ID,
		Name:        item.Name,
		Quantity:    item.Quantity,
		Category:    item.Category,
		Description: item.Description,
		UserID:      item.UserID,
		BroughtBy:   actor.Name,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}, nil
}

// UpdateItem applies a partial name/quantity update. Only the bringer may
// touch an item; the party creator and fellow participants are rejected.
func (e *Engine) UpdateItem(ctx context.Context, actor Identity, partyID, itemID uint, in UpdateItemInput) (*ItemView, error) {
	fields := make(map[string]string)
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		fields["name"] = "name cannot be empty"
	}
	if in.Quantity != nil && *in.Quantity <= 0 {
		fields["quantity"] = "quantity must be greater than 0"
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	var item models.Item

	err := e.conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND party_id = ?", itemID, partyID).First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("item")
			}
			return fmt.Errorf("fetch item: %w", err)
		}
		if item.UserID != actor.ID {
			return forbidden("update item")
		}

		updates := make(map[string]interface{})
		if in.Name != nil {
			updates["name"] = strings.TrimSpace(*in.Name)
		}
		if in.Quantity != nil {
			updates["quantity"] = *in.Quantity
		}
		if len(updates) == 0 {
			return nil
		}

		if err := tx.Model(&item).Updates(updates).Error; err != nil {
			return fmt.Errorf("update item: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var party models.Party
	if err := e.conn.WithContext(ctx).First(&party, partyID).Error; err == nil {
		e.notifier.PartyEvent(partyID, actor.ID,
			"Item updated",
			fmt.Sprintf("%s updated their item in %q", actor.Name, party.Name))
	}

	return &ItemView{
		ID:          item.ID,
		Name:        item.Name,
		Quantity:    item.Quantity,
		Category:    item.Category,
		Description: item.Description,
		UserID:      item.UserID,
		BroughtBy:   actor.Name,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}, nil
}

// DeleteItem removes an item. Bringer only.
func (e *Engine) DeleteItem(ctx context.Context, actor Identity, partyID, itemID uint) error {
	var item models.Item

	if err := e.conn.WithContext(ctx).Where("id = ? AND party_id = ?", itemID, partyID).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("item")
		}
		return fmt.Errorf("fetch item: %w", err)
	}
	if item.UserID != actor.ID {
		return forbidden("delete item")
	}

	if err := e.conn.WithContext(ctx).Unscoped().Delete(&item).Error; err != nil {
		return fmt.Errorf("delete item: %w", err)
	}

	var party models.Party
	if err := e.conn.WithContext(ctx).First(&party, partyID).Error; err == nil {
		e.notifier.PartyEvent(partyID, actor.ID,
			"Item removed",
			fmt.Sprintf("An item was removed from the party %q", party.Name))
	}

	return nil
}
