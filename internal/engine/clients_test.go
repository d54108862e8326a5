package engine_test

import (
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"brokerage-app-server/internal/engine"
	"brokerage-app-server/internal/models"
	"brokerage-app-server/internal/notify"
)

func TestCreatePendingClient(t *testing.T) {
	env := newTestEnv(t)

	var events []notify.ClientEvent
	env.Bus.Subscribe(func(ev notify.ClientEvent) { events = append(events, ev) })

	client, err := env.Engine.CreatePendingClient(engine.ClientIntake{
		FirstName: "Maria",
		Origin:    "site",
	})
	if err != nil {
		t.Fatalf("create pending client: %v", err)
	}
	if client.Status != models.ClientPending {
		t.Errorf("status = %s, want %s", client.Status, models.ClientPending)
	}
	if client.BrokerID != nil {
		t.Errorf("brokerID = %v, want nil", *client.BrokerID)
	}
	if len(events) != 1 || events[0].Type != notify.EventPendingCreated {
		t.Errorf("events = %+v, want one pending_created", events)
	}
}

func TestCreatePendingClientValidation(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.Engine.CreatePendingClient(engine.ClientIntake{})
	var validation *engine.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if validation.Field != "firstName" {
		t.Errorf("field = %s, want firstName", validation.Field)
	}
}

func TestCreateStaffClient(t *testing.T) {
	env := newTestEnv(t)

	client, err := env.Engine.CreateStaffClient(engine.ClientIntake{FirstName: "Jo"}, "broker-7", env.Admin)
	if err != nil {
		t.Fatalf("create staff client: %v", err)
	}
	if client.Status != models.ClientNew {
		t.Errorf("status = %s, want %s", client.Status, models.ClientNew)
	}
	if client.BrokerID == nil || *client.BrokerID != "broker-7" {
		t.Errorf("brokerID = %v, want broker-7", client.BrokerID)
	}
}

func TestCreateStaffClientRequiresBroker(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.Engine.CreateStaffClient(engine.ClientIntake{FirstName: "Jo"}, "", env.Admin)
	var validation *engine.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if validation.Field != "brokerId" {
		t.Errorf("field = %s, want brokerId", validation.Field)
	}
}

func TestCreateStaffClientBrokerGetsOwnBook(t *testing.T) {
	env := newTestEnv(t)

	// A broker creating a client gets it, even when naming someone else.
	client, err := env.Engine.CreateStaffClient(engine.ClientIntake{FirstName: "Jo"}, "broker-8", env.Broker)
	if err != nil {
		t.Fatalf("create staff client: %v", err)
	}
	if client.BrokerID == nil || *client.BrokerID != "broker-7" {
		t.Errorf("brokerID = %v, want broker-7 (the actor)", client.BrokerID)
	}
}

// Intake, assignment, and re-assignment of one client end to end.
func TestAssignBrokerFlow(t *testing.T) {
	env := newTestEnv(t)
	client := env.intakeClient(t)

	assigned, err := env.Engine.AssignBroker(client.ID, "broker-7", env.Admin)
	if err != nil {
		t.Fatalf("assign broker: %v", err)
	}
	if assigned.Status != models.ClientNew {
		t.Errorf("status = %s, want %s", assigned.Status, models.ClientNew)
	}
	if assigned.BrokerID == nil || *assigned.BrokerID != "broker-7" {
		t.Errorf("brokerID = %v, want broker-7", assigned.BrokerID)
	}

	// Second assignment: the client is no longer pending.
	_, err = env.Engine.AssignBroker(client.ID, "broker-8", env.Admin)
	var transition *engine.InvalidTransitionError
	if !errors.As(err, &transition) {
		t.Fatalf("err = %v, want InvalidTransitionError", err)
	}
	if transition.Current != models.ClientNew {
		t.Errorf("current = %s, want %s", transition.Current, models.ClientNew)
	}

	// The failed call left the row alone.
	after := env.reloadClient(t, client.ID)
	if *after.BrokerID != "broker-7" {
		t.Errorf("brokerID changed to %s on failed assign", *after.BrokerID)
	}
}

func TestAssignBrokerDeniedForBrokers(t *testing.T) {
	env := newTestEnv(t)
	client := env.intakeClient(t)

	_, err := env.Engine.AssignBroker(client.ID, "broker-7", env.Broker)
	var authorization *engine.AuthorizationError
	if !errors.As(err, &authorization) {
		t.Fatalf("err = %v, want AuthorizationError", err)
	}

	after := env.reloadClient(t, client.ID)
	if after.Status != models.ClientPending || after.BrokerID != nil {
		t.Errorf("denied assign mutated the client: %+v", after)
	}
}

func TestAssignBrokerUnknownBroker(t *testing.T) {
	env := newTestEnv(t)
	client := env.intakeClient(t)

	_, err := env.Engine.AssignBroker(client.ID, "nobody", env.Admin)
	var validation *engine.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
}

func TestSetClientStatusKanbanMoves(t *testing.T) {
	env := newTestEnv(t)
	client := env.assignedClient(t)

	// Any-to-any among working statuses: jump straight to bank review,
	// then back to in service.
	if _, err := env.Engine.SetClientStatus(client.ID, models.ClientBankReview, env.Admin); err != nil {
		t.Fatalf("to bank_review: %v", err)
	}
	updated, err := env.Engine.SetClientStatus(client.ID, models.ClientInService, env.Admin)
	if err != nil {
		t.Fatalf("back to in_service: %v", err)
	}
	if updated.Status != models.ClientInService {
		t.Errorf("status = %s, want %s", updated.Status, models.ClientInService)
	}
}

func TestSetClientStatusRejectsPendingTarget(t *testing.T) {
	env := newTestEnv(t)
	client := env.assignedClient(t)

	_, err := env.Engine.SetClientStatus(client.ID, models.ClientPending, env.Admin)
	var validation *engine.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
}

// Locked stages: a broker cannot move a client out of back-office review,
// an administrator performing the same move succeeds.
func TestSetClientStatusLockedStage(t *testing.T) {
	env := newTestEnv(t)
	client := env.assignedClient(t)

	if _, err := env.Engine.SetClientStatus(client.ID, models.ClientBankReview, env.Admin); err != nil {
		t.Fatalf("to bank_review: %v", err)
	}

	_, err := env.Engine.SetClientStatus(client.ID, models.ClientApproved, env.Broker)
	var authorization *engine.AuthorizationError
	if !errors.As(err, &authorization) {
		t.Fatalf("err = %v, want AuthorizationError", err)
	}
	if got := env.reloadClient(t, client.ID); got.Status != models.ClientBankReview {
		t.Errorf("denied move mutated status to %s", got.Status)
	}

	updated, err := env.Engine.SetClientStatus(client.ID, models.ClientApproved, env.Admin)
	if err != nil {
		t.Fatalf("admin move: %v", err)
	}
	if updated.Status != models.ClientApproved {
		t.Errorf("status = %s, want %s", updated.Status, models.ClientApproved)
	}
}

func TestSetClientStatusBrokerOwnership(t *testing.T) {
	env := newTestEnv(t)
	client := env.assignedClient(t) // belongs to broker-7

	// The owning broker can move it while unlocked.
	if _, err := env.Engine.SetClientStatus(client.ID, models.ClientInService, env.Broker); err != nil {
		t.Fatalf("owner move: %v", err)
	}

	// Another broker cannot.
	_, err := env.Engine.SetClientStatus(client.ID, models.ClientDocumentReview, env.Other)
	var authorization *engine.AuthorizationError
	if !errors.As(err, &authorization) {
		t.Fatalf("err = %v, want AuthorizationError", err)
	}
}

func TestDeleteClientCascade(t *testing.T) {
	env := newTestEnv(t)
	client := env.assignedClient(t)

	if err := env.DB.Create(&models.ClientDocument{ClientID: client.ID, Name: "contract.pdf"}).Error; err != nil {
		t.Fatalf("seed document: %v", err)
	}
	if _, err := env.Engine.CreateAppointment(engine.AppointmentInput{
		ClientID:    &client.ID,
		BrokerID:    "broker-7",
		ScheduledAt: testNow.Add(24 * time.Hour),
		Title:       "Visit",
	}, env.Admin); err != nil {
		t.Fatalf("seed appointment: %v", err)
	}

	// Still-scheduled appointments do not block deletion.
	if err := env.Engine.DeleteClient(client.ID, env.Admin); err != nil {
		t.Fatalf("delete client: %v", err)
	}

	var docs, appts, clients int64
	env.DB.Model(&models.ClientDocument{}).Where("client_id = ?", client.ID).Count(&docs)
	env.DB.Model(&models.Appointment{}).Where("client_id = ?", client.ID).Count(&appts)
	env.DB.Model(&models.Client{}).Where("id = ?", client.ID).Count(&clients)
	if docs != 0 || appts != 0 || clients != 0 {
		t.Errorf("cascade left rows: docs=%d appts=%d clients=%d", docs, appts, clients)
	}
}

func TestDeleteClientDeniedForBrokers(t *testing.T) {
	env := newTestEnv(t)
	client := env.assignedClient(t)

	err := env.Engine.DeleteClient(client.ID, env.Broker)
	var authorization *engine.AuthorizationError
	if !errors.As(err, &authorization) {
		t.Fatalf("err = %v, want AuthorizationError", err)
	}
	if env.reloadClient(t, client.ID) == nil {
		t.Error("client gone after denied delete")
	}
}

func TestGetClientNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.Engine.GetClient("missing", env.Admin)
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("err = %v, want gorm.ErrRecordNotFound", err)
	}
}

func TestListClientsBrokerScoped(t *testing.T) {
	env := newTestEnv(t)

	mine := env.assignedClient(t)
	other := env.intakeClient(t)
	if _, err := env.Engine.AssignBroker(other.ID, "broker-8", env.Admin); err != nil {
		t.Fatalf("assign other: %v", err)
	}

	clients, err := env.Engine.ListClients(engine.ClientFilter{}, env.Broker)
	if err != nil {
		t.Fatalf("list clients: %v", err)
	}
	if len(clients) != 1 || clients[0].ID != mine.ID {
		t.Errorf("broker sees %d clients, want only their own", len(clients))
	}

	all, err := env.Engine.ListClients(engine.ClientFilter{}, env.Admin)
	if err != nil {
		t.Fatalf("list clients as admin: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("admin sees %d clients, want 2", len(all))
	}
}
