// Copyright (c) 2026 CampusGate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/campusgate/internal/rbac"
	"github.com/taibuivan/campusgate/internal/session"
)

/*
TestDecide exercises the route guard verdict for every lifecycle state and
role/requirement pairing.
*/
func TestDecide(t *testing.T) {
	tests := []struct {
		name      string
		state     session.State
		effective rbac.Role
		required  []rbac.Role
		want      session.Decision
	}{
		// Verification still in flight: no verdict, show the placeholder.
		{"authenticating_waits", session.StateAuthenticating, "", []rbac.Role{rbac.RoleStaff}, session.DecisionWait},
		{"authenticating_waits_even_unguarded", session.StateAuthenticating, "", nil, session.DecisionWait},

		// Not signed in: back to the sign-in entry point.
		{"anonymous_redirects_to_login", session.StateAnonymous, "", []rbac.Role{rbac.RoleStaff}, session.DecisionRedirectLogin},
		{"verified_no_profile_redirects_to_login", session.StateVerifiedNoProfile, "", []rbac.Role{rbac.RoleStaff}, session.DecisionRedirectLogin},

		// Authenticated and the route has no role requirement.
		{"unguarded_route_renders", session.StateAuthenticated, rbac.RoleStudent, nil, session.DecisionRender},

		// Exact role match.
		{"staff_on_staff_route", session.StateAuthenticated, rbac.RoleStaff, []rbac.Role{rbac.RoleStaff}, session.DecisionRender},
		{"student_on_staff_route", session.StateAuthenticated, rbac.RoleStudent, []rbac.Role{rbac.RoleStaff}, session.DecisionRedirectFallback},
		{"student_on_multi_role_route", session.StateAuthenticated, rbac.RoleStudent, []rbac.Role{rbac.RoleStaff, rbac.RoleStudent}, session.DecisionRender},

		// Admin passes any route requiring a persisted role, nothing more.
		{"admin_on_staff_route", session.StateAuthenticated, rbac.RoleAdmin, []rbac.Role{rbac.RoleStaff}, session.DecisionRender},
		{"admin_on_student_route", session.StateAuthenticated, rbac.RoleAdmin, []rbac.Role{rbac.RoleStudent}, session.DecisionRender},
		{"admin_on_admin_route", session.StateAuthenticated, rbac.RoleAdmin, []rbac.Role{rbac.RoleAdmin}, session.DecisionRender},
		{"admin_on_sudo_only_route", session.StateAuthenticated, rbac.RoleAdmin, []rbac.Role{rbac.RoleSudo}, session.DecisionRedirectFallback},

		// Sudo passes everywhere.
		{"sudo_on_staff_route", session.StateAuthenticated, rbac.RoleSudo, []rbac.Role{rbac.RoleStaff}, session.DecisionRender},
		{"sudo_on_admin_route", session.StateAuthenticated, rbac.RoleSudo, []rbac.Role{rbac.RoleAdmin}, session.DecisionRender},
		{"sudo_on_sudo_route", session.StateAuthenticated, rbac.RoleSudo, []rbac.Role{rbac.RoleSudo}, session.DecisionRender},

		// An authenticated session with no resolvable role is still denied.
		{"empty_role_on_guarded_route", session.StateAuthenticated, "", []rbac.Role{rbac.RoleStaff}, session.DecisionRedirectFallback},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, session.Decide(tt.state, tt.effective, tt.required))
		})
	}
}
