package engine

import (
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"brokerage-app-server/internal/authz"
	"brokerage-app-server/internal/models"
)

// AppointmentInput carries the fields for creating an appointment.
// ClientID may be nil for administrative tasks with no client attached.
type AppointmentInput struct {
	ClientID    *string
	BrokerID    string
	ScheduledAt time.Time
	Title       string
	Description string
}

// CreateAppointment schedules a new visit or task. The status is always
// Scheduled on creation. Broker actors can only schedule for themselves.
// For client-linked appointments the client's mirrored scheduling status
// is set to Awaiting in the same transaction as the insert, so the two
// writes commit or roll back together.
func (e *Engine) CreateAppointment(in AppointmentInput, actor Actor) (*models.Appointment, error) {
	if actor.Role == models.RoleBroker {
		if in.BrokerID != "" && in.BrokerID != actor.ID {
			return nil, &AuthorizationError{Role: actor.Role, Op: "schedule for another broker"}
		}
		in.BrokerID = actor.ID
	}
	if in.BrokerID == "" {
		return nil, &ValidationError{Field: "brokerId", Reason: "is required"}
	}
	if in.ScheduledAt.IsZero() {
		return nil, &ValidationError{Field: "scheduledAt", Reason: "is required"}
	}
	if in.Title == "" {
		return nil, &ValidationError{Field: "title", Reason: "is required"}
	}

	if in.ClientID != nil {
		client, err := e.getClient(*in.ClientID)
		if err != nil {
			return nil, err
		}
		if err := e.requireClientOwnership(client, actor, "schedule for this client"); err != nil {
			return nil, err
		}
	}

	appointment := models.Appointment{
		ClientID:    in.ClientID,
		BrokerID:    in.BrokerID,
		ScheduledAt: in.ScheduledAt,
		Status:      models.StatusScheduled,
		Title:       in.Title,
		Description: in.Description,
	}
	err := e.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&appointment).Error; err != nil {
			return err
		}
		if in.ClientID == nil {
			return nil
		}
		return mirrorInTx(tx, *in.ClientID, models.SchedulingAwaiting, e.now())
	})
	if err != nil {
		return nil, &TransientError{Op: "create appointment", Err: err}
	}

	e.Log.WithFields(logrus.Fields{
		"appointmentId": appointment.ID,
		"brokerId":      appointment.BrokerID,
		"scheduledAt":   appointment.ScheduledAt,
	}).Info("appointment scheduled")
	return &appointment, nil
}

// UpdateAppointmentStatus marks an appointment Completed or NotCompleted.
// Returning to Scheduled is only possible through a reschedule. On success
// the owning client's mirror is synced; if only the mirror write fails the
// updated appointment is returned together with a PartialSyncError.
func (e *Engine) UpdateAppointmentStatus(appointmentID string, newStatus models.AppointmentStatus, actor Actor) (*models.Appointment, error) {
	if !authz.CanUpdateAppointmentStatus(actor.Role) {
		return nil, &AuthorizationError{Role: actor.Role, Op: "update appointment status"}
	}
	if newStatus != models.StatusCompleted && newStatus != models.StatusNotCompleted {
		return nil, &ValidationError{Field: "status", Reason: "must be completed or not_completed; use reschedule to return to scheduled"}
	}

	appointment, err := e.getAppointment(appointmentID, actor)
	if err != nil {
		return nil, err
	}

	appointment.Status = newStatus
	if err := e.DB.Save(appointment).Error; err != nil {
		return nil, &TransientError{Op: "update appointment status", Err: err}
	}

	// The appointment row is committed and is now the source of truth;
	// a mirror failure must not look like a failed status update.
	if err := e.mirrorSchedulingStatus(appointment); err != nil {
		return appointment, err
	}
	return appointment, nil
}

// RescheduleAppointment moves an appointment to a new instant and forces
// its status back to Scheduled. This is the only way a completed or
// not-completed appointment becomes actionable again.
func (e *Engine) RescheduleAppointment(appointmentID string, newScheduledAt time.Time, actor Actor) (*models.Appointment, error) {
	if newScheduledAt.IsZero() {
		return nil, &ValidationError{Field: "newScheduledAt", Reason: "is required"}
	}

	appointment, err := e.getAppointment(appointmentID, actor)
	if err != nil {
		return nil, err
	}

	appointment.ScheduledAt = newScheduledAt
	appointment.Status = models.StatusScheduled
	if err := e.DB.Save(appointment).Error; err != nil {
		return nil, &TransientError{Op: "reschedule appointment", Err: err}
	}

	e.Log.WithFields(logrus.Fields{
		"appointmentId": appointment.ID,
		"scheduledAt":   newScheduledAt,
		"actor":         actor.ID,
	}).Info("appointment rescheduled")

	if err := e.mirrorSchedulingStatus(appointment); err != nil {
		return appointment, err
	}
	return appointment, nil
}

// ListOverdue returns Scheduled appointments whose instant has passed,
// ascending by scheduled time. brokerID narrows to one broker; broker
// actors are always narrowed to themselves.
func (e *Engine) ListOverdue(brokerID string, now time.Time, actor Actor) ([]models.Appointment, error) {
	query := e.DB.
		Where("status = ?", models.StatusScheduled).
		Where("scheduled_at < ?", now).
		Order("scheduled_at asc")
	query = scopeBroker(query, brokerID, actor)

	var appointments []models.Appointment
	if err := query.Find(&appointments).Error; err != nil {
		return nil, &TransientError{Op: "list overdue appointments", Err: err}
	}
	return appointments, nil
}

// ListUpcoming returns Scheduled appointments from now up to horizonDays
// ahead, ascending by scheduled time.
func (e *Engine) ListUpcoming(brokerID string, now time.Time, horizonDays int, actor Actor) ([]models.Appointment, error) {
	if horizonDays <= 0 {
		return nil, &ValidationError{Field: "horizonDays", Reason: "must be positive"}
	}
	query := e.DB.
		Where("status = ?", models.StatusScheduled).
		Where("scheduled_at >= ?", now).
		Where("scheduled_at < ?", now.AddDate(0, 0, horizonDays)).
		Order("scheduled_at asc")
	query = scopeBroker(query, brokerID, actor)

	var appointments []models.Appointment
	if err := query.Find(&appointments).Error; err != nil {
		return nil, &TransientError{Op: "list upcoming appointments", Err: err}
	}
	return appointments, nil
}

// ListAppointments returns every appointment visible to the actor,
// ascending by scheduled time.
func (e *Engine) ListAppointments(actor Actor) ([]models.Appointment, error) {
	query := e.DB.Order("scheduled_at asc")
	if actor.Role == models.RoleBroker {
		query = query.Where("broker_id = ?", actor.ID)
	}
	var appointments []models.Appointment
	if err := query.Find(&appointments).Error; err != nil {
		return nil, &TransientError{Op: "list appointments", Err: err}
	}
	return appointments, nil
}

// GetAppointment fetches one appointment, enforcing broker scoping.
func (e *Engine) GetAppointment(appointmentID string, actor Actor) (*models.Appointment, error) {
	return e.getAppointment(appointmentID, actor)
}

func (e *Engine) getAppointment(appointmentID string, actor Actor) (*models.Appointment, error) {
	var appointment models.Appointment
	if err := e.DB.First(&appointment, "id = ?", appointmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, &TransientError{Op: "load appointment", Err: err}
	}
	if actor.Role == models.RoleBroker && appointment.BrokerID != actor.ID {
		return nil, &AuthorizationError{Role: actor.Role, Op: "access this appointment"}
	}
	return &appointment, nil
}

func scopeBroker(query *gorm.DB, brokerID string, actor Actor) *gorm.DB {
	if actor.Role == models.RoleBroker {
		// Brokers see their own calendar regardless of the filter.
		return query.Where("broker_id = ?", actor.ID)
	}
	if brokerID != "" {
		return query.Where("broker_id = ?", brokerID)
	}
	return query
}
