package engine_test

import (
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"brokerage-app-server/internal/engine"
	"brokerage-app-server/internal/models"
	"brokerage-app-server/internal/notify"
)

// The reference instant used across tests unless a test moves the clock.
var testNow = time.Date(2025, 3, 11, 9, 0, 0, 0, time.UTC)

type testEnv struct {
	DB     *gorm.DB
	Engine *engine.Engine
	Bus    *notify.Bus

	Admin  engine.Actor
	Dev    engine.Actor
	Broker engine.Actor // user "broker-7"
	Other  engine.Actor // user "broker-8"
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "brokerage.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := models.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	log := logrus.New()
	log.SetOutput(io.Discard)

	bus := &notify.Bus{}
	eng := engine.New(db, log, bus)
	eng.Now = func() time.Time { return testNow }

	env := &testEnv{
		DB:     db,
		Engine: eng,
		Bus:    bus,
		Admin:  engine.Actor{ID: "admin-1", Role: models.RoleAdmin},
		Dev:    engine.Actor{ID: "dev-1", Role: models.RoleDeveloper},
		Broker: engine.Actor{ID: "broker-7", Role: models.RoleBroker},
		Other:  engine.Actor{ID: "broker-8", Role: models.RoleBroker},
	}

	staff := []models.User{
		{BaseModel: models.BaseModel{ID: "admin-1"}, Email: "admin@office.test", Role: models.RoleAdmin},
		{BaseModel: models.BaseModel{ID: "dev-1"}, Email: "dev@office.test", Role: models.RoleDeveloper},
		{BaseModel: models.BaseModel{ID: "broker-7"}, Email: "b7@office.test", Role: models.RoleBroker},
		{BaseModel: models.BaseModel{ID: "broker-8"}, Email: "b8@office.test", Role: models.RoleBroker},
	}
	for i := range staff {
		if err := staff[i].SetPassword("password123"); err != nil {
			t.Fatalf("set password: %v", err)
		}
		if err := db.Create(&staff[i]).Error; err != nil {
			t.Fatalf("seed staff: %v", err)
		}
	}
	return env
}

// intakeClient creates a pending client through the engine.
func (env *testEnv) intakeClient(t *testing.T) *models.Client {
	t.Helper()
	client, err := env.Engine.CreatePendingClient(engine.ClientIntake{
		FirstName: "Maria",
		LastName:  "Santos",
		Origin:    "site",
	})
	if err != nil {
		t.Fatalf("intake client: %v", err)
	}
	return client
}

// assignedClient creates a client already assigned to broker-7 in status New.
func (env *testEnv) assignedClient(t *testing.T) *models.Client {
	t.Helper()
	client := env.intakeClient(t)
	client, err := env.Engine.AssignBroker(client.ID, "broker-7", env.Admin)
	if err != nil {
		t.Fatalf("assign broker: %v", err)
	}
	return client
}

// reload fetches the current client row.
func (env *testEnv) reloadClient(t *testing.T, id string) *models.Client {
	t.Helper()
	var client models.Client
	if err := env.DB.First(&client, "id = ?", id).Error; err != nil {
		t.Fatalf("reload client %s: %v", id, err)
	}
	return &client
}

func (env *testEnv) reloadAppointment(t *testing.T, id string) *models.Appointment {
	t.Helper()
	var appointment models.Appointment
	if err := env.DB.First(&appointment, "id = ?", id).Error; err != nil {
		t.Fatalf("reload appointment %s: %v", id, err)
	}
	return &appointment
}
