// Copyright (c) 2026 CampusGate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/campusgate/internal/audit"
	"github.com/taibuivan/campusgate/internal/platform/apperr"
	"github.com/taibuivan/campusgate/internal/rbac"
	"github.com/taibuivan/campusgate/internal/session"
)

// fakeRecorder collects audit events in memory.
type fakeRecorder struct {
	actions []string
	actors  []string
}

func (f *fakeRecorder) Record(_ context.Context, actorID string, _ rbac.Role, action, _ string) {
	f.actions = append(f.actions, action)
	f.actors = append(f.actors, actorID)
}

// manualTimer lets the test fire or inspect the bounded wait deterministically.
type manualTimer struct {
	fn      func()
	stopped bool
}

func (m *manualTimer) Stop() bool {
	m.stopped = true
	return true
}

// manualClock hands out manualTimers and remembers the latest one.
func manualClock() (*manualTimer, session.TimerFactory) {
	timer := &manualTimer{}
	factory := func(_ time.Duration, fn func()) session.Timer {
		timer.fn = fn
		timer.stopped = false
		return timer
	}
	return timer, factory
}

func newMachine(recorder *fakeRecorder, options ...session.Option) *session.Machine {
	return session.NewMachine(10*time.Second, recorder, options...)
}

/*
TestMachine_SuccessfulSignIn drives the happy path and asserts the terminal
state, the single login audit event, and the redirect to the resume path.
*/
func TestMachine_SuccessfulSignIn(t *testing.T) {
	recorder := &fakeRecorder{}
	timer, factory := manualClock()

	var redirects []string
	machine := newMachine(recorder,
		session.WithTimerFactory(factory),
		session.WithRedirect(func(target string) { redirects = append(redirects, target) }),
	)
	defer machine.Close()

	assert.Equal(t, session.StateAnonymous, machine.State())
	require.NoError(t, machine.Begin())
	assert.Equal(t, session.StateAuthenticating, machine.State())

	machine.Succeed(context.Background(), "user-1", "alice@uni.edu", rbac.RoleStaff, "/tutorials/setup-vpn")

	assert.Equal(t, session.StateAuthenticated, machine.State())
	assert.NoError(t, machine.Err())
	assert.True(t, timer.stopped, "bounded wait timer must be cancelled on success")

	identityID, email, role := machine.Identity()
	assert.Equal(t, "user-1", identityID)
	assert.Equal(t, "alice@uni.edu", email)
	assert.Equal(t, rbac.RoleStaff, role)

	assert.Equal(t, []string{audit.ActionLogin}, recorder.actions)
	assert.Equal(t, []string{"/tutorials/setup-vpn"}, redirects)
}

/*
TestMachine_DuplicateSuccessIsIdempotent delivers the success transition twice
and asserts exactly one audit event and one redirect.
*/
func TestMachine_DuplicateSuccessIsIdempotent(t *testing.T) {
	recorder := &fakeRecorder{}
	_, factory := manualClock()

	var redirects []string
	machine := newMachine(recorder,
		session.WithTimerFactory(factory),
		session.WithRedirect(func(target string) { redirects = append(redirects, target) }),
	)
	defer machine.Close()

	require.NoError(t, machine.Begin())
	machine.Succeed(context.Background(), "user-1", "alice@uni.edu", rbac.RoleStaff, "/dashboard")
	machine.Succeed(context.Background(), "user-1", "alice@uni.edu", rbac.RoleStaff, "/dashboard")

	assert.Equal(t, session.StateAuthenticated, machine.State())
	assert.Len(t, recorder.actions, 1)
	assert.Len(t, redirects, 1)
}

/*
TestMachine_FailureResetsToAnonymous checks a rejected credential: back to
anonymous, error surfaced, nothing audited.
*/
func TestMachine_FailureResetsToAnonymous(t *testing.T) {
	recorder := &fakeRecorder{}
	timer, factory := manualClock()

	machine := newMachine(recorder, session.WithTimerFactory(factory))
	defer machine.Close()

	require.NoError(t, machine.Begin())
	machine.Fail(apperr.CredentialRejected())

	assert.Equal(t, session.StateAnonymous, machine.State())
	assert.True(t, timer.stopped)

	ae := apperr.As(machine.Err())
	require.NotNil(t, ae)
	assert.Equal(t, "CREDENTIAL_REJECTED", ae.Code)
	assert.Empty(t, recorder.actions)
}

/*
TestMachine_VerifiedWithoutProfile covers the distinguished no-profile state:
not a login, not a credential failure, and no audit event.
*/
func TestMachine_VerifiedWithoutProfile(t *testing.T) {
	recorder := &fakeRecorder{}
	_, factory := manualClock()

	machine := newMachine(recorder, session.WithTimerFactory(factory))
	defer machine.Close()

	require.NoError(t, machine.Begin())
	machine.SucceedNoProfile("user-2", "bob@uni.edu")

	assert.Equal(t, session.StateVerifiedNoProfile, machine.State())

	ae := apperr.As(machine.Err())
	require.NotNil(t, ae)
	assert.Equal(t, "PROFILE_NOT_FOUND", ae.Code)
	assert.Empty(t, recorder.actions)
}

/*
TestMachine_BoundedWaitTimeout fires the wait timer while verification is
in flight, then delivers a late success and asserts it is ignored.
*/
func TestMachine_BoundedWaitTimeout(t *testing.T) {
	recorder := &fakeRecorder{}
	timer, factory := manualClock()

	machine := newMachine(recorder, session.WithTimerFactory(factory))
	defer machine.Close()

	require.NoError(t, machine.Begin())
	require.NotNil(t, timer.fn)
	timer.fn()

	assert.Equal(t, session.StateAnonymous, machine.State())
	ae := apperr.As(machine.Err())
	require.NotNil(t, ae)
	assert.Equal(t, "AUTH_TIMEOUT", ae.Code)

	// The verification result arrives after the deadline already passed.
	machine.Succeed(context.Background(), "user-1", "alice@uni.edu", rbac.RoleStaff, "/")

	assert.Equal(t, session.StateAnonymous, machine.State())
	assert.Empty(t, recorder.actions, "a late success must not count as a login")
}

/*
TestMachine_TimerFiringAfterSuccessIsHarmless simulates a stale timer firing
that races the cancellation on success.
*/
func TestMachine_TimerFiringAfterSuccessIsHarmless(t *testing.T) {
	recorder := &fakeRecorder{}
	timer, factory := manualClock()

	machine := newMachine(recorder, session.WithTimerFactory(factory))
	defer machine.Close()

	require.NoError(t, machine.Begin())
	machine.Succeed(context.Background(), "user-1", "alice@uni.edu", rbac.RoleAdmin, "/")
	timer.fn()

	assert.Equal(t, session.StateAuthenticated, machine.State())
	assert.NoError(t, machine.Err())
}

/*
TestMachine_SignOut verifies the logout audit event carries the actor and is
recorded before the session attributes are cleared.
*/
func TestMachine_SignOut(t *testing.T) {
	recorder := &fakeRecorder{}
	_, factory := manualClock()

	machine := newMachine(recorder, session.WithTimerFactory(factory))
	defer machine.Close()

	require.NoError(t, machine.Begin())
	machine.Succeed(context.Background(), "user-1", "alice@uni.edu", rbac.RoleStudent, "/")
	machine.SignOut(context.Background())

	assert.Equal(t, session.StateAnonymous, machine.State())
	require.Equal(t, []string{audit.ActionLogin, audit.ActionLogout}, recorder.actions)
	assert.Equal(t, "user-1", recorder.actors[1], "logout event must still name the actor")

	identityID, email, role := machine.Identity()
	assert.Empty(t, identityID)
	assert.Empty(t, email)
	assert.Empty(t, role)

	// Signing out twice is a no-op.
	machine.SignOut(context.Background())
	assert.Len(t, recorder.actions, 2)
}

/*
TestMachine_InvalidatePush covers the external invalidation push: the session
clears from any state, and a protected-area attempt redirects to sign-in.
*/
func TestMachine_InvalidatePush(t *testing.T) {
	t.Run("protected_area_redirects_to_sign_in", func(t *testing.T) {
		recorder := &fakeRecorder{}
		_, factory := manualClock()

		var redirects []string
		machine := newMachine(recorder,
			session.WithTimerFactory(factory),
			session.WithProtectedArea(),
			session.WithRedirect(func(target string) { redirects = append(redirects, target) }),
		)
		defer machine.Close()

		require.NoError(t, machine.Begin())
		machine.Succeed(context.Background(), "user-1", "alice@uni.edu", rbac.RoleStaff, "/dashboard")
		machine.Invalidate(context.Background())

		assert.Equal(t, session.StateAnonymous, machine.State())
		assert.Equal(t, []string{audit.ActionLogin, audit.ActionLogout}, recorder.actions)
		assert.Equal(t, []string{"/dashboard", session.PathSignIn}, redirects,
			"the login redirect must not consume the invalidation redirect")
	})

	t.Run("public_area_clears_without_redirect", func(t *testing.T) {
		recorder := &fakeRecorder{}
		_, factory := manualClock()

		var redirects []string
		machine := newMachine(recorder,
			session.WithTimerFactory(factory),
			session.WithRedirect(func(target string) { redirects = append(redirects, target) }),
		)
		defer machine.Close()

		require.NoError(t, machine.Begin())
		machine.Succeed(context.Background(), "user-1", "alice@uni.edu", rbac.RoleStaff, "")
		machine.Invalidate(context.Background())

		assert.Equal(t, session.StateAnonymous, machine.State())
		assert.Empty(t, redirects)
	})

	t.Run("anonymous_invalidation_is_silent", func(t *testing.T) {
		recorder := &fakeRecorder{}
		machine := newMachine(recorder)
		machine.Invalidate(context.Background())

		assert.Equal(t, session.StateAnonymous, machine.State())
		assert.Empty(t, recorder.actions)
	})
}

/*
TestMachine_BeginRejectsReuse ensures a machine covers exactly one attempt.
*/
func TestMachine_BeginRejectsReuse(t *testing.T) {
	_, factory := manualClock()
	machine := newMachine(nil, session.WithTimerFactory(factory))
	defer machine.Close()

	require.NoError(t, machine.Begin())

	err := machine.Begin()
	require.Error(t, err)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "CONFLICT", ae.Code)
}
