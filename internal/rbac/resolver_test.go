// Copyright (c) 2026 CampusGate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package rbac_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/campusgate/internal/platform/apperr"
	"github.com/taibuivan/campusgate/internal/rbac"
)

// recordedEvent captures a single Record call for assertions.
type recordedEvent struct {
	ActorID string
	Role    rbac.Role
	Action  string
	Detail  string
}

// fakeRecorder is an in-memory rbac.Recorder.
type fakeRecorder struct {
	events []recordedEvent
}

func (f *fakeRecorder) Record(_ context.Context, actorID string, actorRole rbac.Role, action, detail string) {
	f.events = append(f.events, recordedEvent{actorID, actorRole, action, detail})
}

/*
TestResolver_EffectiveRole covers the override computation: matching the
configured address elevates to sudo, everything else keeps the profile role.
*/
func TestResolver_EffectiveRole(t *testing.T) {
	tests := []struct {
		name          string
		sudoEnabled   bool
		overrideEmail string
		profileRole   rbac.Role
		identityEmail string
		want          rbac.Role
	}{
		{"override_match_elevates", true, "root@uni.edu", rbac.RoleStaff, "root@uni.edu", rbac.RoleSudo},
		{"match_is_case_insensitive", true, "root@uni.edu", rbac.RoleStudent, "Root@UNI.EDU", rbac.RoleSudo},
		{"match_ignores_whitespace", true, "root@uni.edu", rbac.RoleAdmin, "  root@uni.edu ", rbac.RoleSudo},
		{"non_match_keeps_profile_role", true, "root@uni.edu", rbac.RoleStaff, "alice@uni.edu", rbac.RoleStaff},
		{"flag_disabled_never_elevates", false, "root@uni.edu", rbac.RoleAdmin, "root@uni.edu", rbac.RoleAdmin},
		{"empty_override_never_elevates", true, "", rbac.RoleStudent, "", rbac.RoleStudent},
		{"no_profile_yields_empty_role", true, "root@uni.edu", rbac.Role(""), "bob@uni.edu", rbac.Role("")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver := rbac.NewResolver(tt.sudoEnabled, tt.overrideEmail, nil)
			assert.Equal(t, tt.want, resolver.EffectiveRole(tt.profileRole, tt.identityEmail))
		})
	}
}

/*
TestResolver_IsOverrideIdentity checks the raw identity comparison used by
the deletion guard on the override account.
*/
func TestResolver_IsOverrideIdentity(t *testing.T) {
	resolver := rbac.NewResolver(true, " Root@Uni.EDU ", nil)

	assert.True(t, resolver.IsOverrideIdentity("root@uni.edu"))
	assert.True(t, resolver.IsOverrideIdentity("ROOT@uni.edu"))
	assert.False(t, resolver.IsOverrideIdentity("admin@uni.edu"))

	disabled := rbac.NewResolver(false, "root@uni.edu", nil)
	assert.False(t, disabled.IsOverrideIdentity("root@uni.edu"))
}

/*
TestResolver_AssertNotPersistable verifies the persistence guard: sudo is
blocked with an audit event, persisted roles pass silently.
*/
func TestResolver_AssertNotPersistable(t *testing.T) {
	t.Run("sudo_blocked_and_audited", func(t *testing.T) {
		recorder := &fakeRecorder{}
		resolver := rbac.NewResolver(true, "root@uni.edu", recorder)

		err := resolver.AssertNotPersistable(context.Background(), "actor-1", rbac.RoleSudo)
		require.Error(t, err)

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "PERSISTENCE_BLOCKED", ae.Code)

		require.Len(t, recorder.events, 1)
		assert.Equal(t, "role_persist_blocked", recorder.events[0].Action)
		assert.Equal(t, "actor-1", recorder.events[0].ActorID)
		assert.Equal(t, rbac.RoleSudo, recorder.events[0].Role)
	})

	t.Run("persisted_roles_pass", func(t *testing.T) {
		recorder := &fakeRecorder{}
		resolver := rbac.NewResolver(true, "root@uni.edu", recorder)

		for _, role := range []rbac.Role{rbac.RoleStaff, rbac.RoleStudent, rbac.RoleAdmin} {
			assert.NoError(t, resolver.AssertNotPersistable(context.Background(), "actor-1", role))
		}
		assert.Empty(t, recorder.events)
	})

	t.Run("nil_recorder_still_blocks", func(t *testing.T) {
		resolver := rbac.NewResolver(false, "", nil)
		err := resolver.AssertNotPersistable(context.Background(), "actor-1", rbac.RoleSudo)
		require.Error(t, err)
	})
}
