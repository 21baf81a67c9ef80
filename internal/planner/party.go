package planner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fiesta-dev/fiesta/internal/models"
	"gorm.io/gorm"
)

type CreatePartyInput struct {
	Name        string
	Date        time.Time
	Location    string
	Description string
}

type UpdatePartyInput struct {
	Name        *string
	Date        *time.Time
	Location    *string
	Description *string
}

type ParticipantView struct {
	ID       uint      `json:"id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	JoinedAt time.Time `json:"joined_at"`
}

type ItemView struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Quantity    int       `json:"quantity"`
	Category    string    `json:"category,omitempty"`
	Description string    `json:"description,omitempty"`
	UserID      uint      `json:"user_id"`
	BroughtBy   string    `json:"brought_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type PartyView struct {
	ID           uint              `json:"id"`
	Name         string            `json:"name"`
	Date         time.Time         `json:"date"`
	Location     string            `json:"location"`
	Description  string            `json:"description,omitempty"`
	CreatorID    uint              `json:"creator_id"`
	CreatorName  string            `json:"creator_name"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
	Items        []ItemView        `json:"items"`
	Participants []ParticipantView `json:"participants"`
}

func (in *CreatePartyInput) validate() error {
	fields := make(map[string]string)
	if strings.TrimSpace(in.Name) == "" {
		fields["name"] = "name is required"
	}
	if strings.TrimSpace(in.Location) == "" {
		fields["location"] = "location is required"
	}
	if !in.Date.After(time.Now()) {
		fields["date"] = "date must be in the future"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// CreateParty creates a party and atomically enrolls the creator as its
// first participant: a committed party is never observable without one.
func (e *Engine) CreateParty(ctx context.Context, actor Identity, in CreatePartyInput) (*PartyView, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	party := models.Party{
		Name:        strings.TrimSpace(in.Name),
		Date:        in.Date,
		Location:    strings.TrimSpace(in.Location),
		Description: in.Description,
		CreatorID:   actor.ID,
	}

	err := e.conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&party).Error; err != nil {
			return fmt.Errorf("create party: %w", err)
		}
		participation := models.Participation{
			UserID:  actor.ID,
			PartyID: party.ID,
		}
		if err := tx.Create(&participation).Error; err != nil {
			return fmt.Errorf("enroll creator: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return e.loadPartyView(ctx, party.ID)
}

// ListParties returns every party the actor created or participates in,
// ordered by date, with aggregated items and participants.
func (e *Engine) ListParties(ctx context.Context, actor Identity) ([]PartyView, error) {
	var parties []models.Party

	err := e.partyQuery(ctx).
		Where("creator_id = ? OR id IN (SELECT party_id FROM participations WHERE user_id = ?)", actor.ID, actor.ID).
		Order("date").
		Find(&parties).Error
	if err != nil {
		return nil, fmt.Errorf("list parties: %w", err)
	}

	views := make([]PartyView, 0, len(parties))
	for i := range parties {
		views = append(views, buildPartyView(&parties[i]))
	}
	return views, nil
}

// GetParty returns the full party view. A missing party is reported before
// authorization so a 404 is distinguishable from a 403.
func (e *Engine) GetParty(ctx context.Context, actor Identity, partyID uint) (*PartyView, error) {
	var party models.Party

	if err := e.partyQuery(ctx).First(&party, partyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("party")
		}
		return nil, fmt.Errorf("fetch party: %w", err)
	}

	if !e.canView(actor, &party) {
		return nil, forbidden("view party")
	}

	view := buildPartyView(&party)
	return &view, nil
}

// UpdateParty applies a partial update. Only the creator may update; absent
// fields keep their values.
func (e *Engine) UpdateParty(ctx context.Context, actor Identity, partyID uint, in UpdatePartyInput) (*PartyView, error) {
	fields := make(map[string]string)
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		fields["name"] = "name cannot be empty"
	}
	if in.Location != nil && strings.TrimSpace(*in.Location) == "" {
		fields["location"] = "location cannot be empty"
	}
	if in.Date != nil && !in.Date.After(time.Now()) {
		fields["date"] = "date must be in the future"
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	var party models.Party

	err := e.conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&party, partyID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("party")
			}
			return fmt.Errorf("fetch party: %w", err)
		}
		if party.CreatorID != actor.ID {
			return forbidden("update party")
		}

		updates := make(map[string]interface{})
		if in.Name != nil {
			updates["name"] = strings.TrimSpace(*in.Name)
		}
		if in.Date != nil {
			updates["date"] = *in.Date
		}
		if in.Location != nil {
			updates["location"] = strings.TrimSpace(*in.Location)
		}
		if in.Description != nil {
			updates["description"] = *in.Description
		}
		if len(updates) == 0 {
			return nil
		}

		if err := tx.Model(&party).Updates(updates).Error; err != nil {
			return fmt.Errorf("update party: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.notifier.PartyEvent(party.ID, actor.ID,
		"Party updated",
		fmt.Sprintf("The party %q has been updated", party.Name))

	return e.loadPartyView(ctx, party.ID)
}

// DeleteParty removes the party aggregate: its items, its participations and
// the party row, all in one transaction. Creator only.
func (e *Engine) DeleteParty(ctx context.Context, actor Identity, partyID uint) error {
	return e.conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var party models.Party
		if err := tx.First(&party, partyID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("party")
			}
			return fmt.Errorf("fetch party: %w", err)
		}
		if party.CreatorID != actor.ID {
			return forbidden("delete party")
		}
		return deletePartyAggregate(tx, party.ID)
	})
}

// deletePartyAggregate removes everything hanging off a party. Deletes are
// unscoped: the cascade must leave no rows behind, soft-deleted or not.
func deletePartyAggregate(tx *gorm.DB, partyID uint) error {
	if err := tx.Unscoped().Where("party_id = ?", partyID).Delete(&models.Item{}).Error; err != nil {
		return fmt.Errorf("delete party items: %w", err)
	}
	if err := tx.Unscoped().Where("party_id = ?", partyID).Delete(&models.Participation{}).Error; err != nil {
		return fmt.Errorf("delete party participations: %w", err)
	}
	if err := tx.Unscoped().Delete(&models.Party{}, partyID).Error; err != nil {
		return fmt.Errorf("delete party: %w", err)
	}
	return nil
}

// canView: creators and current participants may read a party.
func (e *Engine) canView(actor Identity, party *models.Party) bool {
	if party.CreatorID == actor.ID {
		return true
	}
	for _, p := range party.Participations {
		if p.UserID == actor.ID {
			return true
		}
	}
	return false
}

func (e *Engine) partyQuery(ctx context.Context) *gorm.DB {
	return e.conn.WithContext(ctx).
		Preload("Creator").
		Preload("Participations.User").
		Preload("Items.User")
}

func (e *Engine) loadPartyView(ctx context.Context, partyID uint) (*PartyView, error) {
	var party models.Party
	if err := e.partyQuery(ctx).First(&party, partyID).Error; err != nil {
		return nil, fmt.Errorf("reload party: %w", err)
	}
	view := buildPartyView(&party)
	return &view, nil
}

func buildPartyView(party *models.Party) PartyView {
	view := PartyView{
		ID:           party.ID,
		Name:         party.Name,
		Date:         party.Date,
		Location:     party.Location,
		Description:  party.Description,
		CreatorID:    party.CreatorID,
		CreatorName:  party.Creator.Name,
		CreatedAt:    party.CreatedAt,
		UpdatedAt:    party.UpdatedAt,
		Items:        make([]ItemView, 0, len(party.Items)),
		Participants: make([]ParticipantView, 0, len(party.Participations)),
	}

	for _, item := range party.Items {
		view.Items = append(view.Items, ItemView{
			ID:          item.ID,
			Name:        item.Name,
			Quantity:    item.Quantity,
			Category:    item.Category,
			Description: item.Description,
			UserID:      item.UserID,
			BroughtBy:   item.User.Name,
			CreatedAt:   item.CreatedAt,
			UpdatedAt:   item.UpdatedAt,
		})
	}

	for _, p := range party.Participations {
		view.Participants = append(view.Participants, ParticipantView{
			ID:       p.UserID,
			Name:     p.User.Name,
			Email:    p.User.Email,
			JoinedAt: p.CreatedAt,
		})
	}

	return view
}
