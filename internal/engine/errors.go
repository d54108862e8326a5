package engine

import (
	"fmt"

	"brokerage-app-server/internal/models"
)

// The engine never writes HTTP responses itself; every operation returns a
// value or one of the error kinds below, and the handler layer maps the
// kind to a status code.

// ValidationError reports malformed or missing input. Field names the
// offending field so the UI can attach the message to it.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// AuthorizationError reports that the acting role lacks permission for the
// requested operation.
type AuthorizationError struct {
	Role models.Role
	Op   string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("role %s is not permitted to %s", e.Role, e.Op)
}

// InvalidTransitionError reports a state machine violation, naming the
// current and the attempted state.
type InvalidTransitionError struct {
	Current   models.ClientStatus
	Attempted models.ClientStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition client from %s to %s", e.Current, e.Attempted)
}

// PartialSyncError reports that the appointment write committed but the
// mirrored client update failed. The appointment is the source of truth;
// the caller can re-issue just the mirror step via ResyncSchedulingStatus
// instead of repeating the whole operation.
type PartialSyncError struct {
	AppointmentID string
	ClientID      string
	Mirror        models.SchedulingStatus
	Err           error
}

func (e *PartialSyncError) Error() string {
	return fmt.Sprintf("appointment %s updated but client %s scheduling status (%s) not mirrored: %v",
		e.AppointmentID, e.ClientID, e.Mirror, e.Err)
}

func (e *PartialSyncError) Unwrap() error { return e.Err }

// TransientError wraps a gateway-level failure (timeout, connectivity).
// Safe to retry for pure reads; the engine never retries writes itself.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }
