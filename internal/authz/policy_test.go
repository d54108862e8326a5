package authz_test

import (
	"testing"

	"brokerage-app-server/internal/authz"
	"brokerage-app-server/internal/models"
)

func TestCanMutatePipelineStatus(t *testing.T) {
	locked := []models.ClientStatus{
		models.ClientBankReview,
		models.ClientApproved,
		models.ClientConditioned,
		models.ClientRejected,
	}
	open := []models.ClientStatus{
		models.ClientNew,
		models.ClientInService,
		models.ClientDocumentReview,
		models.ClientSaleCompleted,
		models.ClientRescinded,
	}

	for _, role := range []models.Role{models.RoleAdmin, models.RoleDeveloper} {
		for _, status := range append(append([]models.ClientStatus{}, locked...), open...) {
			if !authz.CanMutatePipelineStatus(role, status) {
				t.Errorf("%s should mutate out of %s", role, status)
			}
		}
	}

	for _, status := range open {
		if !authz.CanMutatePipelineStatus(models.RoleBroker, status) {
			t.Errorf("broker should mutate out of %s", status)
		}
	}
	for _, status := range locked {
		if authz.CanMutatePipelineStatus(models.RoleBroker, status) {
			t.Errorf("broker must not mutate out of locked stage %s", status)
		}
	}

	if authz.CanMutatePipelineStatus("visitor", models.ClientNew) {
		t.Error("unknown role must be denied")
	}
}

func TestRoleGates(t *testing.T) {
	tests := []struct {
		role         models.Role
		assign       bool
		deleteClient bool
		updateAppt   bool
	}{
		{models.RoleAdmin, true, true, true},
		{models.RoleDeveloper, true, true, true},
		{models.RoleBroker, false, false, true},
		{"visitor", false, false, false},
	}
	for _, tt := range tests {
		if got := authz.CanAssignBroker(tt.role); got != tt.assign {
			t.Errorf("CanAssignBroker(%s) = %v, want %v", tt.role, got, tt.assign)
		}
		if got := authz.CanDeleteClient(tt.role); got != tt.deleteClient {
			t.Errorf("CanDeleteClient(%s) = %v, want %v", tt.role, got, tt.deleteClient)
		}
		if got := authz.CanUpdateAppointmentStatus(tt.role); got != tt.updateAppt {
			t.Errorf("CanUpdateAppointmentStatus(%s) = %v, want %v", tt.role, got, tt.updateAppt)
		}
	}
}
