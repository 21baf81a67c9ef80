package scheduler

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/fiesta-dev/fiesta/internal/models"
)

type countingNotifier struct {
	mu      sync.Mutex
	parties []uint
}

func (n *countingNotifier) PartyEvent(partyID, actorID uint, title, body string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.parties = append(n.parties, partyID)
}

func (n *countingNotifier) reminded() []uint {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]uint(nil), n.parties...)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	conn, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if err := conn.AutoMigrate(&models.User{}, &models.Party{}, &models.Participation{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return conn
}

func createParty(t *testing.T, conn *gorm.DB, name string, date time.Time) uint {
	t.Helper()
	user := models.User{Name: "Host", Email: name + "@example.com", PasswordHash: "x"}
	if err := conn.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	party := models.Party{Name: name, Date: date, Location: "Rooftop", CreatorID: user.ID}
	if err := conn.Create(&party).Error; err != nil {
		t.Fatalf("failed to create party: %v", err)
	}
	return party.ID
}

func TestRunOnceRemindsOnlyUpcomingParties(t *testing.T) {
	conn := newTestDB(t)
	notifier := &countingNotifier{}

	soonID := createParty(t, conn, "soon", time.Now().Add(2*time.Hour))
	createParty(t, conn, "distant", time.Now().Add(72*time.Hour))
	createParty(t, conn, "past", time.Now().Add(-2*time.Hour))

	s := New(conn, notifier, time.Minute)
	if err := s.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}

	reminded := notifier.reminded()
	if len(reminded) != 1 || reminded[0] != soonID {
		t.Errorf("expected reminder for party %d only, got %v", soonID, reminded)
	}

	var party models.Party
	if err := conn.First(&party, soonID).Error; err != nil {
		t.Fatalf("failed to reload party: %v", err)
	}
	if !party.ReminderSent {
		t.Error("expected reminder_sent to be set")
	}
}

func TestRunOnceRemindsAtMostOnce(t *testing.T) {
	conn := newTestDB(t)
	notifier := &countingNotifier{}

	createParty(t, conn, "soon", time.Now().Add(2*time.Hour))

	s := New(conn, notifier, time.Minute)
	for i := 0; i < 3; i++ {
		if err := s.RunOnce(context.Background()); err != nil {
			t.Fatalf("RunOnce failed: %v", err)
		}
	}

	if got := len(notifier.reminded()); got != 1 {
		t.Errorf("expected exactly one reminder, got %d", got)
	}
}

func TestStartStop(t *testing.T) {
	conn := newTestDB(t)
	notifier := &countingNotifier{}

	createParty(t, conn, "soon", time.Now().Add(2*time.Hour))

	s := New(conn, notifier, 10*time.Millisecond)
	s.Start()

	deadline := time.After(2 * time.Second)
	for len(notifier.reminded()) == 0 {
		select {
		case <-deadline:
			t.Fatal("scheduler never fired")
		case <-time.After(10 * time.Millisecond):
		}
	}
	s.Stop()

	if got := len(notifier.reminded()); got != 1 {
		t.Errorf("expected one reminder from the loop, got %d", got)
	}
}
