// Package notify delivers best-effort notifications for party mutations:
// a push message to every participant of the party except the actor, plus a
// refresh event on the party's WebSocket feed. Delivery failures are logged
// and swallowed; they never affect the mutation that triggered them.
package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/fiesta-dev/fiesta/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const dispatchTimeout = 15 * time.Second

// Dispatcher computes recipient sets and fans out to push and WebSocket.
type Dispatcher struct {
	conn *gorm.DB
	push *PushClient
	hub  *Hub
}

func NewDispatcher(conn *gorm.DB, push *PushClient, hub *Hub) *Dispatcher {
	return &Dispatcher{conn: conn, push: push, hub: hub}
}

// PartyEvent dispatches asynchronously; it returns before delivery happens.
// An actorID of 0 addresses every participant (used by reminders).
func (d *Dispatcher) PartyEvent(partyID, actorID uint, title, body string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		defer cancel()
		d.DispatchNow(ctx, partyID, actorID, title, body)
	}()
}

// DispatchNow performs one dispatch synchronously.
func (d *Dispatcher) DispatchNow(ctx context.Context, partyID, actorID uint, title, body string) {
	var recipients []models.User

	err := d.conn.WithContext(ctx).
		Joins("JOIN participations ON participations.user_id = users.id").
		Where("participations.party_id = ? AND users.id != ?", partyID, actorID).
		Find(&recipients).Error
	if err != nil {
		slog.Error("Failed to load notification recipients", "party_id", partyID, "error", err)
		return
	}

	if d.hub != nil {
		d.hub.BroadcastRefresh(partyID, title, body)
	}

	if len(recipients) == 0 {
		return
	}

	payload, _ := json.Marshal(map[string]interface{}{
		"party_id": partyID,
		"title":    title,
		"body":     body,
	})

	tokens := make([]string, 0, len(recipients))
	tokenOwners := make(map[string]uint, len(recipients))
	for _, r := range recipients {
		if r.PushToken == "" {
			d.record(ctx, partyID, r.ID, title, body, models.NotificationSkipped, payload, nil)
			continue
		}
		tokens = append(tokens, r.PushToken)
		tokenOwners[r.PushToken] = r.ID
	}

	if len(tokens) == 0 || !d.push.Enabled() {
		return
	}

	results, err := d.push.Send(ctx, tokens, title, body)
	if err != nil {
		slog.Error("Push delivery failed", "party_id", partyID, "recipients", len(tokens), "error", err)
		for _, token := range tokens {
			d.record(ctx, partyID, tokenOwners[token], title, body, models.NotificationFailed, payload, nil)
		}
		return
	}

	now := time.Now()
	for _, res := range results {
		userID, ok := tokenOwners[res.Token]
		if !ok {
			continue
		}
		if res.OK {
			d.record(ctx, partyID, userID, title, body, models.NotificationSent, payload, &now)
		} else {
			slog.Warn("Push delivery rejected for token", "party_id", partyID, "user_id", userID, "error", res.Error)
			d.record(ctx, partyID, userID, title, body, models.NotificationFailed, payload, nil)
		}
	}
}

func (d *Dispatcher) record(ctx context.Context, partyID, userID uint, title, body, status string, payload datatypes.JSON, sentAt *time.Time) {
	notification := models.Notification{
		PartyID: partyID,
		UserID:  userID,
		Title:   title,
		Body:    body,
		Status:  status,
		Payload: payload,
		SentAt:  sentAt,
	}
	if err := d.conn.WithContext(ctx).Create(&notification).Error; err != nil {
		slog.Error("Failed to record notification", "party_id", partyID, "user_id", userID, "error", err)
	}
}
