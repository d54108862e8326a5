package engine

import (
	"time"

	"brokerage-app-server/internal/models"
)

// TemporalClass is the derived urgency of an appointment relative to the
// current time. It is recomputed on every read and never persisted;
// storing it would go stale the moment the clock moves.
type TemporalClass string

const (
	ClassUpcoming TemporalClass = "upcoming"
	ClassDueToday TemporalClass = "due_today"
	ClassOverdue  TemporalClass = "overdue"
)

// Classify computes the temporal class of an appointment. Pure: now is an
// explicit parameter, never read internally.
//
// Only Scheduled appointments can be overdue or due. An appointment
// scheduled exactly at now is DueToday, not Overdue: ties favor the
// non-overdue class so an appointment does not flicker urgent on the poll
// that lands on its exact instant.
func Classify(status models.AppointmentStatus, scheduledAt, now time.Time) TemporalClass {
	if status != models.StatusScheduled {
		return ClassUpcoming
	}
	if scheduledAt.Before(now) {
		return ClassOverdue
	}
	if sameCalendarDay(scheduledAt, now) {
		return ClassDueToday
	}
	return ClassUpcoming
}

// sameCalendarDay compares the calendar date of t and now in now's
// location, so "today" follows the clock the caller passed in.
func sameCalendarDay(t, now time.Time) bool {
	y1, m1, d1 := t.In(now.Location()).Date()
	y2, m2, d2 := now.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// ClassifiedAppointment pairs an appointment with its temporal class for
// list responses.
type ClassifiedAppointment struct {
	models.Appointment
	TemporalClass TemporalClass `json:"temporalClass"`
}

// WithClass classifies a slice of appointments at one instant.
func WithClass(appointments []models.Appointment, now time.Time) []ClassifiedAppointment {
	out := make([]ClassifiedAppointment, len(appointments))
	for i, a := range appointments {
		out[i] = ClassifiedAppointment{
			Appointment:   a,
			TemporalClass: Classify(a.Status, a.ScheduledAt, now),
		}
	}
	return out
}
