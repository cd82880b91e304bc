// Copyright (c) 2026 CampusGate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package rbac_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/campusgate/internal/rbac"
)

/*
TestRole_IsPersisted checks the closed set of storable role values.
*/
func TestRole_IsPersisted(t *testing.T) {
	assert.True(t, rbac.RoleStaff.IsPersisted())
	assert.True(t, rbac.RoleStudent.IsPersisted())
	assert.True(t, rbac.RoleAdmin.IsPersisted())
	assert.False(t, rbac.RoleSudo.IsPersisted())
	assert.False(t, rbac.Role("root").IsPersisted())
	assert.False(t, rbac.Role("").IsPersisted())
}

/*
TestSanitizeForPersistence ensures the runtime-only role can never slip
through a write path, even when named explicitly.
*/
func TestSanitizeForPersistence(t *testing.T) {
	tests := []struct {
		name      string
		candidate rbac.Role
		want      rbac.Role
		ok        bool
	}{
		{"staff_passes", rbac.RoleStaff, rbac.RoleStaff, true},
		{"student_passes", rbac.RoleStudent, rbac.RoleStudent, true},
		{"admin_passes", rbac.RoleAdmin, rbac.RoleAdmin, true},
		{"sudo_rejected", rbac.RoleSudo, "", false},
		{"unknown_rejected", rbac.Role("superuser"), "", false},
		{"empty_rejected", rbac.Role(""), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := rbac.SanitizeForPersistence(tt.candidate)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

/*
TestParseRole verifies external input can only name persisted roles. The
string "sudo" is valid internally but must be unparseable from the outside.
*/
func TestParseRole(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want rbac.Role
		ok   bool
	}{
		{"staff", "staff", rbac.RoleStaff, true},
		{"student", "student", rbac.RoleStudent, true},
		{"admin", "admin", rbac.RoleAdmin, true},
		{"sudo_is_not_external_input", "sudo", "", false},
		{"uppercase_rejected", "Admin", "", false},
		{"unknown", "lecturer", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := rbac.ParseRole(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
