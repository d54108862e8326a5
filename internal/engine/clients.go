package engine

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"brokerage-app-server/internal/authz"
	"brokerage-app-server/internal/models"
	"brokerage-app-server/internal/notify"
)

// ClientIntake carries the fields accepted from the public intake form and
// from staff when creating a client.
type ClientIntake struct {
	FirstName   string
	LastName    string
	Email       string
	PhoneNumber string
	Origin      string
	Notes       string
}

// CreatePendingClient inserts a client from public intake. No authorization
// is required; the status is forced to Pending and no broker is assigned.
func (e *Engine) CreatePendingClient(in ClientIntake) (*models.Client, error) {
	if in.FirstName == "" {
		return nil, &ValidationError{Field: "firstName", Reason: "is required"}
	}

	client := models.Client{
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		Email:       in.Email,
		PhoneNumber: in.PhoneNumber,
		Origin:      in.Origin,
		Notes:       in.Notes,
		Status:      models.ClientPending,
		BrokerID:    nil,
	}
	if err := e.DB.Create(&client).Error; err != nil {
		return nil, &TransientError{Op: "create pending client", Err: err}
	}

	e.publish(notify.ClientEvent{Type: notify.EventPendingCreated, Client: client})
	return &client, nil
}

// CreateStaffClient inserts a client created by staff directly, skipping
// intake. A broker must be assigned up front: broker actors get themselves,
// everyone else has to name one.
func (e *Engine) CreateStaffClient(in ClientIntake, brokerID string, actor Actor) (*models.Client, error) {
	if in.FirstName == "" {
		return nil, &ValidationError{Field: "firstName", Reason: "is required"}
	}
	if actor.Role == models.RoleBroker {
		brokerID = actor.ID
	}
	if brokerID == "" {
		return nil, &ValidationError{Field: "brokerId", Reason: "is required for staff-created clients"}
	}
	if err := e.verifyBroker(brokerID); err != nil {
		return nil, err
	}

	client := models.Client{
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		Email:       in.Email,
		PhoneNumber: in.PhoneNumber,
		Origin:      in.Origin,
		Notes:       in.Notes,
		Status:      models.ClientNew,
		BrokerID:    &brokerID,
	}
	if err := e.DB.Create(&client).Error; err != nil {
		return nil, &TransientError{Op: "create client", Err: err}
	}
	return &client, nil
}

// AssignBroker performs the intake handoff: a pending client gets a broker
// and moves to New. Only legal while the client is still Pending.
func (e *Engine) AssignBroker(clientID, brokerID string, actor Actor) (*models.Client, error) {
	if !authz.CanAssignBroker(actor.Role) {
		return nil, &AuthorizationError{Role: actor.Role, Op: "assign a broker"}
	}
	if brokerID == "" {
		return nil, &ValidationError{Field: "brokerId", Reason: "is required"}
	}

	client, err := e.getClient(clientID)
	if err != nil {
		return nil, err
	}
	if client.Status != models.ClientPending {
		return nil, &InvalidTransitionError{Current: client.Status, Attempted: models.ClientNew}
	}
	if err := e.verifyBroker(brokerID); err != nil {
		return nil, err
	}

	client.Status = models.ClientNew
	client.BrokerID = &brokerID
	if err := e.DB.Save(client).Error; err != nil {
		return nil, &TransientError{Op: "assign broker", Err: err}
	}

	e.Log.WithFields(logrus.Fields{
		"clientId": client.ID,
		"brokerId": brokerID,
		"actor":    actor.ID,
	}).Info("broker assigned to client")
	e.publish(notify.ClientEvent{Type: notify.EventPendingResolved, Client: *client})
	return client, nil
}

// SetClientStatus moves a client between kanban stages. Movement is
// any-to-any among the working statuses; the access policy gates who may
// move a card *out* of its current stage.
func (e *Engine) SetClientStatus(clientID string, newStatus models.ClientStatus, actor Actor) (*models.Client, error) {
	if !newStatus.IsWorking() {
		return nil, &ValidationError{Field: "status", Reason: fmt.Sprintf("%q is not a pipeline stage", newStatus)}
	}

	client, err := e.getClient(clientID)
	if err != nil {
		return nil, err
	}
	if client.Status == models.ClientPending {
		// Pending is only left through broker assignment.
		return nil, &InvalidTransitionError{Current: client.Status, Attempted: newStatus}
	}
	if !authz.CanMutatePipelineStatus(actor.Role, client.Status) {
		return nil, &AuthorizationError{Role: actor.Role, Op: fmt.Sprintf("move a client out of %s", client.Status)}
	}
	if err := e.requireClientOwnership(client, actor, "edit this client"); err != nil {
		return nil, err
	}

	previous := client.Status
	client.Status = newStatus
	if err := e.DB.Save(client).Error; err != nil {
		return nil, &TransientError{Op: "update client status", Err: err}
	}

	e.Log.WithFields(logrus.Fields{
		"clientId": client.ID,
		"from":     previous,
		"to":       newStatus,
		"actor":    actor.ID,
	}).Info("client pipeline status changed")
	return client, nil
}

// DeleteClient removes a client and everything hanging off it, in the
// order documents, appointments, client. A failure at any step aborts the
// whole transaction; there are no partial deletes.
func (e *Engine) DeleteClient(clientID string, actor Actor) error {
	if !authz.CanDeleteClient(actor.Role) {
		return &AuthorizationError{Role: actor.Role, Op: "delete a client"}
	}

	client, err := e.getClient(clientID)
	if err != nil {
		return err
	}

	err = e.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("client_id = ?", client.ID).Delete(&models.ClientDocument{}).Error; err != nil {
			return fmt.Errorf("delete documents: %w", err)
		}
		if err := tx.Where("client_id = ?", client.ID).Delete(&models.Appointment{}).Error; err != nil {
			return fmt.Errorf("delete appointments: %w", err)
		}
		if err := tx.Delete(&models.Client{}, "id = ?", client.ID).Error; err != nil {
			return fmt.Errorf("delete client: %w", err)
		}
		return nil
	})
	if err != nil {
		return &TransientError{Op: "delete client cascade", Err: err}
	}

	e.Log.WithFields(logrus.Fields{"clientId": client.ID, "actor": actor.ID}).Info("client deleted")
	if client.Status == models.ClientPending {
		e.publish(notify.ClientEvent{Type: notify.EventPendingResolved, Client: *client})
	}
	return nil
}

// GetClient fetches a client by id, enforcing broker scoping.
func (e *Engine) GetClient(clientID string, actor Actor) (*models.Client, error) {
	client, err := e.getClient(clientID)
	if err != nil {
		return nil, err
	}
	if err := e.requireClientOwnership(client, actor, "view this client"); err != nil {
		return nil, err
	}
	return client, nil
}

// ClientFilter narrows ListClients.
type ClientFilter struct {
	Status models.ClientStatus
	Origin string
}

// ListClients returns clients visible to the actor, newest first. Broker
// actors only see their own book.
func (e *Engine) ListClients(filter ClientFilter, actor Actor) ([]models.Client, error) {
	query := e.DB.Order("created_at desc")
	if actor.Role == models.RoleBroker {
		query = query.Where("broker_id = ?", actor.ID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Origin != "" {
		query = query.Where("origin = ?", filter.Origin)
	}

	var clients []models.Client
	if err := query.Find(&clients).Error; err != nil {
		return nil, &TransientError{Op: "list clients", Err: err}
	}
	return clients, nil
}

func (e *Engine) getClient(clientID string) (*models.Client, error) {
	var client models.Client
	if err := e.DB.First(&client, "id = ?", clientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, &TransientError{Op: "load client", Err: err}
	}
	return &client, nil
}

// requireClientOwnership denies broker actors access to clients assigned
// to someone else (or to nobody).
func (e *Engine) requireClientOwnership(client *models.Client, actor Actor, op string) error {
	if actor.Role != models.RoleBroker {
		return nil
	}
	if client.BrokerID == nil || *client.BrokerID != actor.ID {
		return &AuthorizationError{Role: actor.Role, Op: op}
	}
	return nil
}

// verifyBroker checks that brokerID names an existing broker account.
func (e *Engine) verifyBroker(brokerID string) error {
	var broker models.User
	err := e.DB.Where("id = ? AND role = ?", brokerID, models.RoleBroker).First(&broker).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &ValidationError{Field: "brokerId", Reason: "no such broker"}
	}
	if err != nil {
		return &TransientError{Op: "verify broker", Err: err}
	}
	return nil
}
