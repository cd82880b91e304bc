// Copyright (c) 2026 CampusGate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package rbac_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/campusgate/internal/rbac"
)

/*
TestAuthorize_PolicyTable walks the decision table for every meaningful
(role, resource, operation) combination and asserts the expected answer.
*/
func TestAuthorize_PolicyTable(t *testing.T) {
	tests := []struct {
		name      string
		role      rbac.Role
		resource  rbac.Resource
		operation rbac.Operation
		allowed   bool
	}{
		// Staff: own-scoped reads plus the universal audit append.
		{"staff_reads_own_tutorials", rbac.RoleStaff, rbac.ResourceTutorials, rbac.OpReadOwn, true},
		{"staff_cannot_read_all_tutorials", rbac.RoleStaff, rbac.ResourceTutorials, rbac.OpReadAll, false},
		{"staff_cannot_write_tutorials", rbac.RoleStaff, rbac.ResourceTutorials, rbac.OpWrite, false},
		{"staff_reads_own_profile", rbac.RoleStaff, rbac.ResourceProfiles, rbac.OpReadOwn, true},
		{"staff_cannot_list_profiles", rbac.RoleStaff, rbac.ResourceProfiles, rbac.OpReadAll, false},
		{"staff_appends_audit_events", rbac.RoleStaff, rbac.ResourceAuditLog, rbac.OpWrite, true},
		{"staff_cannot_read_audit_log", rbac.RoleStaff, rbac.ResourceAuditLog, rbac.OpReadAll, false},

		// Students mirror staff exactly; only tutorial targeting differs.
		{"student_reads_own_tutorials", rbac.RoleStudent, rbac.ResourceTutorials, rbac.OpReadOwn, true},
		{"student_cannot_read_all_tutorials", rbac.RoleStudent, rbac.ResourceTutorials, rbac.OpReadAll, false},
		{"student_cannot_write_profiles", rbac.RoleStudent, rbac.ResourceProfiles, rbac.OpWrite, false},
		{"student_appends_audit_events", rbac.RoleStudent, rbac.ResourceAuditLog, rbac.OpWrite, true},
		{"student_cannot_read_audit_log", rbac.RoleStudent, rbac.ResourceAuditLog, rbac.OpReadAll, false},

		// Admin: full read/write but no profile deletion.
		{"admin_reads_all_tutorials", rbac.RoleAdmin, rbac.ResourceTutorials, rbac.OpReadAll, true},
		{"admin_writes_tutorials", rbac.RoleAdmin, rbac.ResourceTutorials, rbac.OpWrite, true},
		{"admin_lists_profiles", rbac.RoleAdmin, rbac.ResourceProfiles, rbac.OpReadAll, true},
		{"admin_writes_profiles", rbac.RoleAdmin, rbac.ResourceProfiles, rbac.OpWrite, true},
		{"admin_cannot_delete_profiles", rbac.RoleAdmin, rbac.ResourceProfiles, rbac.OpDelete, false},
		{"admin_reads_audit_log", rbac.RoleAdmin, rbac.ResourceAuditLog, rbac.OpReadAll, true},

		// Sudo inherits admin plus profile deletion.
		{"sudo_deletes_profiles", rbac.RoleSudo, rbac.ResourceProfiles, rbac.OpDelete, true},
		{"sudo_lists_profiles", rbac.RoleSudo, rbac.ResourceProfiles, rbac.OpReadAll, true},
		{"sudo_writes_tutorials", rbac.RoleSudo, rbac.ResourceTutorials, rbac.OpWrite, true},
		{"sudo_cannot_delete_tutorials", rbac.RoleSudo, rbac.ResourceTutorials, rbac.OpDelete, false},
		{"sudo_reads_audit_log", rbac.RoleSudo, rbac.ResourceAuditLog, rbac.OpReadAll, true},

		// Deny-by-default for anything outside the table.
		{"unknown_role_denied", rbac.Role("guest"), rbac.ResourceTutorials, rbac.OpReadOwn, false},
		{"empty_role_denied", rbac.Role(""), rbac.ResourceProfiles, rbac.OpReadOwn, false},
		{"unknown_resource_denied", rbac.RoleAdmin, rbac.Resource("grades"), rbac.OpReadAll, false},
		{"unknown_operation_denied", rbac.RoleAdmin, rbac.ResourceTutorials, rbac.Operation("export"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, rbac.Authorize(tt.role, tt.resource, tt.operation))
		})
	}
}
