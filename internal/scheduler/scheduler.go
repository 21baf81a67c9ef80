// Package scheduler runs the upcoming-party reminder loop.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/fiesta-dev/fiesta/internal/models"
	"github.com/fiesta-dev/fiesta/internal/planner"
)

// reminderWindow is how far ahead of a party's start the reminder goes out.
const reminderWindow = 24 * time.Hour

// Scheduler periodically reminds participants of parties starting soon.
type Scheduler struct {
	conn     *gorm.DB
	notifier planner.Notifier
	interval time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
}

func New(conn *gorm.DB, notifier planner.Notifier, interval time.Duration) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		conn:     conn,
		notifier: notifier,
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start launches the reminder loop. It returns immediately.
func (s *Scheduler) Start() {
	slog.Info("Starting reminder scheduler", "interval", s.interval)

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				if err := s.RunOnce(s.ctx); err != nil {
					slog.Error("Reminder pass failed", "error", err)
				}
			}
		}
	}()
}

// Stop shuts down the loop.
func (s *Scheduler) Stop() {
	slog.Info("Stopping reminder scheduler")
	s.cancel()
}

// RunOnce sends a reminder for every party starting inside the window that
// has not been reminded yet, marking each before dispatch so a party is
// reminded at most once.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	now := time.Now()

	var parties []models.Party
	err := s.conn.WithContext(ctx).
		Where("reminder_sent = ? AND date > ? AND date <= ?", false, now, now.Add(reminderWindow)).
		Find(&parties).Error
	if err != nil {
		return fmt.Errorf("find upcoming parties: %w", err)
	}

	for i := range parties {
		party := &parties[i]

		res := s.conn.WithContext(ctx).Model(&models.Party{}).
			Where("id = ? AND reminder_sent = ?", party.ID, false).
			Update("reminder_sent", true)
		if res.Error != nil {
			slog.Error("Failed to mark reminder sent", "party_id", party.ID, "error", res.Error)
			continue
		}
		if res.RowsAffected == 0 {
			// Another pass got there first.
			continue
		}

		s.notifier.PartyEvent(party.ID, 0,
			"Party reminder",
			fmt.Sprintf("%q starts soon", party.Name))

		slog.Info("Reminder dispatched", "party_id", party.ID, "party", party.Name, "date", party.Date)
	}

	return nil
}
