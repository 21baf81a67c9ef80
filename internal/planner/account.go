package planner

import (
	"context"
	"fmt"

	"github.com/fiesta-dev/fiesta/internal/models"
	"gorm.io/gorm"
)

// RegisterPushToken stores the actor's device token, making them a delivery
// candidate for party notifications.
func (e *Engine) RegisterPushToken(ctx context.Context, actor Identity, token string) error {
	if token == "" {
		return &ValidationError{Fields: map[string]string{"token": "token is required"}}
	}
	if err := e.conn.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", actor.ID).
		Update("push_token", token).Error; err != nil {
		return fmt.Errorf("store push token: %w", err)
	}
	return nil
}

// DeleteAccount removes the actor and every dependent row in one
// transaction: their items, their participations, the parties they created
// (with those parties' items and participations), and finally the user row.
// Credential verification is the caller's responsibility.
func (e *Engine) DeleteAccount(ctx context.Context, actor Identity) error {
	return e.conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("user_id = ?", actor.ID).Delete(&models.Item{}).Error; err != nil {
			return fmt.Errorf("delete items: %w", err)
		}
		if err := tx.Unscoped().Where("user_id = ?", actor.ID).Delete(&models.Participation{}).Error; err != nil {
			return fmt.Errorf("delete participations: %w", err)
		}

		var ownedIDs []uint
		if err := tx.Model(&models.Party{}).
			Where("creator_id = ?", actor.ID).
			Pluck("id", &ownedIDs).Error; err != nil {
			return fmt.Errorf("list owned parties: %w", err)
		}
		for _, partyID := range ownedIDs {
			if err := deletePartyAggregate(tx, partyID); err != nil {
				return err
			}
		}

		if err := tx.Unscoped().Where("user_id = ?", actor.ID).Delete(&models.Notification{}).Error; err != nil {
			return fmt.Errorf("delete notifications: %w", err)
		}
		if err := tx.Unscoped().Delete(&models.User{}, actor.ID).Error; err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		return nil
	})
}
