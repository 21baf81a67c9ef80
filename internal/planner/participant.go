package planner

import (
	"context"
	"errors"
	"fmt"

	"github.com/fiesta-dev/fiesta/internal/models"
	"gorm.io/gorm"
)

// AddParticipant enrolls a user in a party. Any authenticated caller may
// propose an addition; the party and target user must exist and the pair
// must not already be enrolled. Note the caller itself need not be a
// participant, matching the behavior this engine was specified against.
func (e *Engine) AddParticipant(ctx context.Context, actor Identity, partyID, userID uint) (*ParticipantView, error) {
	var (
		party models.Party
		user  models.User
	)

	err := e.conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&party, partyID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("party")
			}
			return fmt.Errorf("fetch party: %w", err)
		}

		if err := tx.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("user")
			}
			return fmt.Errorf("fetch user: %w", err)
		}

		var count int64
		if err := tx.Model(&models.Participation{}).
			Where("party_id = ? AND user_id = ?", partyID, userID).
			Count(&count).Error; err != nil {
			return fmt.Errorf("check membership: %w", err)
		}
		if count > 0 {
			return fmt.Errorf("user is already a participant: %w", ErrConflict)
		}

		participation := models.Participation{UserID: userID, PartyID: partyID}
		if err := tx.Create(&participation).Error; err != nil {
			return fmt.Errorf("create participation: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.notifier.PartyEvent(party.ID, actor.ID,
		"New participant",
		fmt.Sprintf("%s joined the party %q", user.Name, party.Name))

	return &ParticipantView{ID: user.ID, Name: user.Name, Email: user.Email}, nil
}

// RemoveParticipant drops a membership edge. Users may remove themselves;
// the creator may remove anyone. The creator removing themself is allowed
// and does not demote creatorship: management rights stay keyed on
// creator_id while viewing and item rights follow membership.
func (e *Engine) RemoveParticipant(ctx context.Context, actor Identity, partyID, userID uint) error {
	if userID != actor.ID {
		var party models.Party
		if err := e.conn.WithContext(ctx).First(&party, partyID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("party")
			}
			return fmt.Errorf("fetch party: %w", err)
		}
		if party.CreatorID != actor.ID {
			return forbidden("remove participant")
		}
	}

	res := e.conn.WithContext(ctx).Unscoped().
		Where("party_id = ? AND user_id = ?", partyID, userID).
		Delete(&models.Participation{})
	if res.Error != nil {
		return fmt.Errorf("delete participation: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound("participant")
	}
	return nil
}
