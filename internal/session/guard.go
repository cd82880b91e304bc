// Copyright (c) 2026 CampusGate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import "github.com/taibuivan/campusgate/internal/rbac"

// # Navigation Targets

const (
	// PathSignIn is the sign-in entry point clients are redirected to.
	PathSignIn = "/login"

	// PathFallback is the fixed landing path for denied access. The
	// destination renders the access-denied signal carried alongside.
	PathFallback = "/"
)

// # Guard Decisions

// Decision is the route guard's verdict for a (state, role, route) triple.
type Decision string

const (
	// DecisionRender admits the request to the protected view.
	DecisionRender Decision = "render"

	// DecisionWait means verification is still in flight: render a loading
	// placeholder, no admit/deny verdict yet.
	DecisionWait Decision = "wait"

	// DecisionRedirectLogin sends the caller to [PathSignIn], preserving the
	// originally requested path for post-sign-in resumption.
	DecisionRedirectLogin Decision = "redirect_login"

	// DecisionRedirectFallback sends the caller to [PathFallback] with an
	// access-denied signal.
	DecisionRedirectFallback Decision = "redirect_fallback"
)

// Decide is the route guard: given the session state, the effective role, and
// the route's required roles, it returns the render-vs-redirect verdict.
//
// # Rules
//
//  1. Authenticating → wait; no decision can be made yet.
//  2. Anonymous or VerifiedNoProfile → redirect to sign-in. The caller
//     preserves the requested path so the journey resumes after sign-in.
//  3. A route with no required roles admits any authenticated session.
//  4. Sudo is admitted unconditionally.
//  5. Admin is admitted wherever the route requires any persisted role.
//     This deliberately does not extend to routes requiring only sudo, so a
//     future sudo-only route stays closed to admins.
//  6. Anything else: redirect to the fallback path with access denied.
func Decide(state State, effective rbac.Role, required []rbac.Role) Decision {
	if state == StateAuthenticating {
		return DecisionWait
	}

	if state != StateAuthenticated {
		return DecisionRedirectLogin
	}

	if len(required) == 0 {
		return DecisionRender
	}

	if effective == rbac.RoleSudo {
		return DecisionRender
	}

	requiresPersisted := false
	for _, role := range required {
		if role == effective {
			return DecisionRender
		}
		if role.IsPersisted() {
			requiresPersisted = true
		}
	}

	// Admin may act as any persisted role for access purposes.
	if effective == rbac.RoleAdmin && requiresPersisted {
		return DecisionRender
	}

	return DecisionRedirectFallback
}
