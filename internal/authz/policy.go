// Package authz holds the access policy for the back office: a handful of
// pure predicates over (role, status) consulted before every mutation.
// Keeping the rules in one place keeps the "any-to-any except locked
// stages for brokers" kanban rule auditable.
package authz

import (
	"brokerage-app-server/internal/models"
)

// lockedStages are pipeline stages reserved for back-office review.
// Brokers cannot move a client out of these stages.
var lockedStages = map[models.ClientStatus]bool{
	models.ClientBankReview:  true,
	models.ClientApproved:    true,
	models.ClientConditioned: true,
	models.ClientRejected:    true,
}

// CanMutatePipelineStatus reports whether role may change the pipeline
// status of a client currently in currentStatus.
func CanMutatePipelineStatus(role models.Role, currentStatus models.ClientStatus) bool {
	if role.IsBackOffice() {
		return true
	}
	if role == models.RoleBroker {
		return !lockedStages[currentStatus]
	}
	return false
}

// CanAssignBroker reports whether role may assign a broker to a pending client.
func CanAssignBroker(role models.Role) bool {
	return role.IsBackOffice()
}

// CanDeleteClient reports whether role may delete a client and its
// dependent records.
func CanDeleteClient(role models.Role) bool {
	return role.IsBackOffice()
}

// CanUpdateAppointmentStatus reports whether role may mark an appointment
// completed or not completed. Brokers are additionally limited to their
// own appointments; that ownership check lives with the appointment code
// since it needs the row.
func CanUpdateAppointmentStatus(role models.Role) bool {
	return role.IsBackOffice() || role == models.RoleBroker
}
