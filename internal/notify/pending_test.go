package notify

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"brokerage-app-server/internal/models"
)

func newTestMonitor(t *testing.T) (*PendingMonitor, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "notify.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := models.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewPendingMonitor(db, log), db
}

func seedPending(t *testing.T, db *gorm.DB, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		client := models.Client{FirstName: "Pending", Status: models.ClientPending}
		if err := db.Create(&client).Error; err != nil {
			t.Fatalf("seed pending client: %v", err)
		}
	}
}

func TestRecountSeedsFromDatabase(t *testing.T) {
	m, db := newTestMonitor(t)
	seedPending(t, db, 3)

	if err := m.Recount(); err != nil {
		t.Fatalf("recount: %v", err)
	}
	if got := m.PendingCount(models.RoleAdmin); got != 3 {
		t.Errorf("count = %d, want 3", got)
	}
}

// apply is the single-writer path behind the event channel; driving it
// directly keeps the test deterministic.
func TestApplyCountsEvents(t *testing.T) {
	m, _ := newTestMonitor(t)

	var alerted []string
	m.OnNewPending(func(c models.Client) { alerted = append(alerted, c.FirstName) })

	m.apply(ClientEvent{Type: EventPendingCreated, Client: models.Client{FirstName: "Maria"}})
	m.apply(ClientEvent{Type: EventPendingCreated, Client: models.Client{FirstName: "Jo"}})
	if got := m.PendingCount(models.RoleAdmin); got != 2 {
		t.Errorf("count = %d, want 2", got)
	}
	if len(alerted) != 2 || alerted[0] != "Maria" {
		t.Errorf("alerts = %v, want [Maria Jo]", alerted)
	}

	m.apply(ClientEvent{Type: EventPendingResolved})
	if got := m.PendingCount(models.RoleDeveloper); got != 1 {
		t.Errorf("count after resolve = %d, want 1", got)
	}
}

// A resolve with no matching create means the cache drifted; the monitor
// falls back to the database truth instead of going negative.
func TestApplyReconcilesOnUnderflow(t *testing.T) {
	m, db := newTestMonitor(t)
	seedPending(t, db, 2)

	m.apply(ClientEvent{Type: EventPendingResolved})
	if got := m.PendingCount(models.RoleAdmin); got != 2 {
		t.Errorf("count = %d, want 2 after reconciliation", got)
	}
}

func TestBrokersAlwaysSeeZero(t *testing.T) {
	m, db := newTestMonitor(t)
	seedPending(t, db, 5)
	if err := m.Recount(); err != nil {
		t.Fatalf("recount: %v", err)
	}

	if got := m.PendingCount(models.RoleBroker); got != 0 {
		t.Errorf("broker count = %d, want 0", got)
	}
	if got := m.PendingCount(models.RoleAdmin); got != 5 {
		t.Errorf("admin count = %d, want 5", got)
	}
}

func TestStartSubscribesAndSeeds(t *testing.T) {
	m, db := newTestMonitor(t)
	seedPending(t, db, 1)

	bus := &Bus{}
	if err := m.Start(bus); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer m.Stop()

	if got := m.PendingCount(models.RoleAdmin); got != 1 {
		t.Errorf("seeded count = %d, want 1", got)
	}
}
