package notify

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"brokerage-app-server/internal/models"
)

// PendingMonitor maintains the live count of clients waiting for broker
// assignment. A single goroutine consumes the event channel and is the
// only writer of the count; readers take lock-free snapshots.
type PendingMonitor struct {
	DB  *gorm.DB
	Log *logrus.Logger

	// RecountEvery sets the periodic reconciliation interval. Zero
	// disables the ticker (tests drive Recount directly).
	RecountEvery time.Duration

	count  atomic.Int64
	events chan ClientEvent
	done   chan struct{}

	mu        sync.Mutex
	callbacks []func(models.Client)
}

// NewPendingMonitor creates a monitor over db.
func NewPendingMonitor(db *gorm.DB, log *logrus.Logger) *PendingMonitor {
	return &PendingMonitor{
		DB:     db,
		Log:    log,
		events: make(chan ClientEvent, 64),
		done:   make(chan struct{}),
	}
}

// OnNewPending registers fn to be called for every newly created pending
// client. Callbacks run on the monitor goroutine and should return quickly.
func (m *PendingMonitor) OnNewPending(fn func(models.Client)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callbacks = append(m.callbacks, fn)
}

// Start seeds the count with a full recount, attaches the monitor to the
// bus and launches the consumer goroutine.
func (m *PendingMonitor) Start(bus *Bus) error {
	if err := m.Recount(); err != nil {
		return err
	}
	bus.Subscribe(func(ev ClientEvent) {
		select {
		case m.events <- ev:
		default:
			// Channel full: drop the event and let the periodic
			// recount reconcile. The feed is not gap-free anyway.
			m.Log.Warn("pending monitor event buffer full, dropped event")
		}
	})
	go m.run()
	return nil
}

// Stop terminates the consumer goroutine.
func (m *PendingMonitor) Stop() {
	close(m.done)
}

func (m *PendingMonitor) run() {
	var tick <-chan time.Time
	if m.RecountEvery > 0 {
		t := time.NewTicker(m.RecountEvery)
		defer t.Stop()
		tick = t.C
	}
	for {
		select {
		case ev := <-m.events:
			m.apply(ev)
		case <-tick:
			if err := m.Recount(); err != nil {
				m.Log.WithError(err).Warn("pending recount failed")
			}
		case <-m.done:
			return
		}
	}
}

func (m *PendingMonitor) apply(ev ClientEvent) {
	switch ev.Type {
	case EventPendingCreated:
		m.count.Add(1)
		m.Log.WithFields(logrus.Fields{
			"clientId": ev.Client.ID,
			"origin":   ev.Client.Origin,
		}).Info("new pending client")
		m.mu.Lock()
		callbacks := m.callbacks
		m.mu.Unlock()
		for _, fn := range callbacks {
			fn(ev.Client)
		}
	case EventPendingResolved:
		if m.count.Add(-1) < 0 {
			// Missed the matching create; fall back to the truth.
			if err := m.Recount(); err != nil {
				m.Log.WithError(err).Warn("pending recount failed")
			}
		}
	}
}

// Recount replaces the cached count with a full database count. Called on
// start, periodically, and whenever the cache is known to have drifted.
func (m *PendingMonitor) Recount() error {
	var n int64
	if err := m.DB.Model(&models.Client{}).
		Where("status = ?", models.ClientPending).
		Count(&n).Error; err != nil {
		return fmt.Errorf("count pending clients: %w", err)
	}
	m.count.Store(n)
	return nil
}

// PendingCount returns the cached count for the given role. Brokers never
// see unassigned intake and always get zero.
func (m *PendingMonitor) PendingCount(role models.Role) int64 {
	if role == models.RoleBroker {
		return 0
	}
	return m.count.Load()
}
