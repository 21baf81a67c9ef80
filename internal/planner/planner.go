// Package planner holds the membership and ownership engine: every mutation
// of the party/participant/item graph goes through here, with authorization
// decided before anything is written and multi-statement changes wrapped in a
// single transaction.
package planner

import (
	"gorm.io/gorm"
)

// Identity is the authenticated actor for an operation. It is threaded
// explicitly through every engine call rather than carried in a request
// context.
type Identity struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Notifier receives party mutation events after they have committed.
// Delivery is best-effort and must never affect the calling operation.
type Notifier interface {
	PartyEvent(partyID, actorID uint, title, body string)
}

// NopNotifier discards all events.
type NopNotifier struct{}

func (NopNotifier) PartyEvent(partyID, actorID uint, title, body string) {}

// Engine enforces who may read and mutate parties, participants and items.
type Engine struct {
	conn     *gorm.DB
	notifier Notifier
}

// NewEngine creates an engine on the given database handle. A nil notifier
// disables dispatch.
func NewEngine(conn *gorm.DB, notifier Notifier) *Engine {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Engine{conn: conn, notifier: notifier}
}
