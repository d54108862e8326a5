package engine

import (
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"brokerage-app-server/internal/models"
)

// The scheduling coordinator half of the engine: Client.SchedulingStatus
// must track the status of the client's most recent appointment. The
// backing store gives no cross-row atomicity for the update paths, so the
// appointment write lands first and the mirror follows; a mirror failure
// is reported as PartialSyncError rather than swallowed, and
// ResyncSchedulingStatus re-issues just the mirror step.

// mirrorSchedulingStatus pushes the appointment's status onto the owning
// client. No-op for appointments without a client.
func (e *Engine) mirrorSchedulingStatus(appointment *models.Appointment) error {
	if appointment.ClientID == nil {
		return nil
	}
	mirror := appointment.Status.MirrorStatus()
	err := mirrorInTx(e.DB, *appointment.ClientID, mirror, e.now())
	if err != nil {
		e.Log.WithError(err).WithFields(logrus.Fields{
			"appointmentId": appointment.ID,
			"clientId":      *appointment.ClientID,
		}).Warn("scheduling status mirror failed")
		return &PartialSyncError{
			AppointmentID: appointment.ID,
			ClientID:      *appointment.ClientID,
			Mirror:        mirror,
			Err:           err,
		}
	}
	return nil
}

// mirrorInTx writes the mirror field and bumps the client's last-modified
// marker, inside whatever transaction (or bare connection) db is.
func mirrorInTx(db *gorm.DB, clientID string, mirror models.SchedulingStatus, now time.Time) error {
	result := db.Model(&models.Client{}).
		Where("id = ?", clientID).
		Updates(map[string]interface{}{
			"scheduling_status": mirror,
			"updated_at":        now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ResyncSchedulingStatus recomputes a client's mirror from its most recent
// appointment. Callers use it to resolve a PartialSyncError without
// repeating the appointment write. Gated like the other client mutations:
// brokers may only resync their own clients.
func (e *Engine) ResyncSchedulingStatus(clientID string, actor Actor) (*models.Client, error) {
	client, err := e.getClient(clientID)
	if err != nil {
		return nil, err
	}
	if err := e.requireClientOwnership(client, actor, "resync this client"); err != nil {
		return nil, err
	}

	var latest models.Appointment
	err = e.DB.
		Where("client_id = ?", clientID).
		Order("created_at desc").
		First(&latest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// No appointments: the mirror is null.
		if client.SchedulingStatus == nil {
			return client, nil
		}
		result := e.DB.Model(&models.Client{}).
			Where("id = ?", clientID).
			Updates(map[string]interface{}{
				"scheduling_status": nil,
				"updated_at":        e.now(),
			})
		if result.Error != nil {
			return nil, &TransientError{Op: "clear scheduling status", Err: result.Error}
		}
		client.SchedulingStatus = nil
		return client, nil
	}
	if err != nil {
		return nil, &TransientError{Op: "load latest appointment", Err: err}
	}

	mirror := latest.Status.MirrorStatus()
	if err := mirrorInTx(e.DB, clientID, mirror, e.now()); err != nil {
		return nil, &TransientError{Op: "resync scheduling status", Err: err}
	}
	client.SchedulingStatus = &mirror
	return client, nil
}
