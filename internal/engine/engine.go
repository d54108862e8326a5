// Package engine implements the client pipeline and appointment scheduling
// core: pipeline status transitions, broker assignment, appointment
// lifecycle with time classification, and the denormalized scheduling
// status mirrored onto clients.
package engine

import (
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"brokerage-app-server/internal/models"
	"brokerage-app-server/internal/notify"
)

// Actor identifies the staff member performing an operation. Every engine
// call takes the actor explicitly; there is no ambient current-user state.
type Actor struct {
	ID   string
	Role models.Role
}

// Engine executes pipeline and scheduling operations against the database.
// Now is injectable so time classification is deterministic under test.
type Engine struct {
	DB  *gorm.DB
	Log *logrus.Logger
	Bus *notify.Bus
	Now func() time.Time
}

// New creates an Engine with the real clock.
func New(db *gorm.DB, log *logrus.Logger, bus *notify.Bus) *Engine {
	return &Engine{
		DB:  db,
		Log: log,
		Bus: bus,
		Now: time.Now,
	}
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *Engine) publish(ev notify.ClientEvent) {
	if e.Bus != nil {
		e.Bus.Publish(ev)
	}
}
