// Copyright (c) 2026 CampusGate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package session implements the authentication session lifecycle and the route
guard that consumes it.

# State Machine

A sign-in attempt moves through a small, strictly ordered machine:

	Anonymous → Authenticating → Authenticated
	                           → VerifiedNoProfile
	          ← (failure, timeout, sign-out, invalidation push)

VerifiedNoProfile is a distinguished terminal state: the external identity
verified but no application profile exists. It is surfaced explicitly and is
never conflated with a rejected credential.

# Concurrency

Multiple listeners (the caller, a push-invalidation subscriber, the bounded
wait timer) can drive the same machine. Every transition is serialized through
one mutex and applied in delivery order; terminal transitions are idempotent,
so a duplicate success emits exactly one login audit event and schedules
exactly one redirect, and a timeout that fires after success is a no-op.
*/
package session

import (
	"context"
	"sync"
	"time"

	"github.com/taibuivan/campusgate/internal/platform/apperr"
	"github.com/taibuivan/campusgate/internal/rbac"
)

// # Session States

// State identifies where a sign-in attempt is in its lifecycle.
type State string

const (
	// StateAnonymous is the initial state and the terminal state after
	// sign-out, failure, timeout, or invalidation.
	StateAnonymous State = "anonymous"

	// StateAuthenticating means a credential was submitted and external
	// verification is in flight. The bounded wait timer is running.
	StateAuthenticating State = "authenticating"

	// StateVerifiedNoProfile means the identity verified but no application
	// profile exists. An error state, shown explicitly, never a login.
	StateVerifiedNoProfile State = "verified_no_profile"

	// StateAuthenticated means identity and profile both resolved.
	StateAuthenticated State = "authenticated"
)

// # Timers

// Timer is the cancellable handle returned by a [TimerFactory].
type Timer interface {
	Stop() bool
}

// TimerFactory schedules fn after d. Production uses [time.AfterFunc];
// tests inject a manual trigger so the clock can be advanced deterministically.
type TimerFactory func(d time.Duration, fn func()) Timer

func realTimer(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// # The Machine

// Machine tracks one sign-in attempt from credential submission to a terminal
// state. One instance is created per attempt and driven by the auth service.
type Machine struct {
	mu sync.Mutex

	state       State
	identityID  string
	email       string
	profileRole rbac.Role
	lastErr     error

	// redirected guards against duplicate redirect delivery while the
	// session holds its current state; it resets when the session clears so
	// a later invalidation can still send the client to sign-in.
	redirected  bool
	inProtected bool

	waitTimeout time.Duration
	newTimer    TimerFactory
	timer       Timer

	recorder   rbac.Recorder
	onRedirect func(target string)
}

// Option customizes a [Machine] at construction.
type Option func(*Machine)

// WithTimerFactory replaces the wall-clock timer. Test hook.
func WithTimerFactory(factory TimerFactory) Option {
	return func(machine *Machine) { machine.newTimer = factory }
}

// WithRedirect sets the callback fired at most once when a transition requires
// the client to navigate (resume path on login, sign-in entry on invalidation).
func WithRedirect(fn func(target string)) Option {
	return func(machine *Machine) { machine.onRedirect = fn }
}

// WithProtectedArea marks the attempt as originating from a protected route,
// so an invalidation push triggers a redirect to the sign-in entry point.
func WithProtectedArea() Option {
	return func(machine *Machine) { machine.inProtected = true }
}

// NewMachine constructs a fresh machine in [StateAnonymous].
//
// # Parameters
//   - waitTimeout: The bounded wait for external verification. Once expired,
//     the attempt resets to Anonymous with a timeout-specific error.
//   - recorder: Best-effort audit sink for lifecycle transitions.
func NewMachine(waitTimeout time.Duration, recorder rbac.Recorder, options ...Option) *Machine {
	machine := &Machine{
		state:       StateAnonymous,
		waitTimeout: waitTimeout,
		newTimer:    realTimer,
		recorder:    recorder,
	}
	for _, option := range options {
		option(machine)
	}
	return machine
}

// # Transitions

// Begin applies "submit credential": Anonymous → Authenticating.
//
// It starts the bounded wait timer. Beginning from any other state is
// rejected so a machine is never reused across attempts.
func (machine *Machine) Begin() error {
	machine.mu.Lock()
	defer machine.mu.Unlock()

	if machine.state != StateAnonymous {
		return apperr.Conflict("Sign-in attempt already in progress")
	}

	machine.state = StateAuthenticating
	machine.lastErr = nil
	machine.timer = machine.newTimer(machine.waitTimeout, machine.expire)
	return nil
}

// Fail applies "external verification failed": Authenticating → Anonymous.
//
// The verification error is surfaced to the caller via [Machine.Err]. Not a
// login, so no audit event is emitted.
func (machine *Machine) Fail(err error) {
	machine.mu.Lock()
	defer machine.mu.Unlock()

	if machine.state != StateAuthenticating {
		return
	}

	machine.stopTimerLocked()
	machine.state = StateAnonymous
	machine.lastErr = err
}

// Succeed applies "verified, profile found": Authenticating → Authenticated.
//
// # Idempotence
//
// Only the first application has effect: it cancels the bounded wait timer,
// emits exactly one login audit event, and schedules exactly one redirect to
// resumePath. A second delivery — or a late delivery after timeout already
// reset the machine — is silently ignored.
func (machine *Machine) Succeed(ctx context.Context, identityID, email string, role rbac.Role, resumePath string) {
	machine.mu.Lock()
	defer machine.mu.Unlock()

	if machine.state != StateAuthenticating {
		return
	}

	machine.stopTimerLocked()
	machine.state = StateAuthenticated
	machine.identityID = identityID
	machine.email = email
	machine.profileRole = role
	machine.lastErr = nil

	if machine.recorder != nil {
		machine.recorder.Record(ctx, identityID, role, rbac.ActionLogin, "sign-in completed")
	}
	if resumePath != "" {
		machine.redirectLocked(resumePath)
	}
}

// SucceedNoProfile applies "verified, profile lookup failed":
// Authenticating → VerifiedNoProfile.
//
// A distinguished error state, not a silent failure: no login audit event is
// emitted, and [Machine.Err] reports the profile-not-found taxonomy error.
func (machine *Machine) SucceedNoProfile(identityID, email string) {
	machine.mu.Lock()
	defer machine.mu.Unlock()

	if machine.state != StateAuthenticating {
		return
	}

	machine.stopTimerLocked()
	machine.state = StateVerifiedNoProfile
	machine.identityID = identityID
	machine.email = email
	machine.lastErr = apperr.ProfileNotFound()
}

// SignOut applies "sign out invoked": Authenticated → Anonymous.
//
// The logout audit event is recorded BEFORE session state is cleared, so the
// trail still knows who the actor was.
func (machine *Machine) SignOut(ctx context.Context) {
	machine.mu.Lock()
	defer machine.mu.Unlock()

	if machine.state != StateAuthenticated {
		return
	}

	if machine.recorder != nil {
		machine.recorder.Record(ctx, machine.identityID, machine.profileRole, rbac.ActionLogout, "sign-out completed")
	}

	machine.clearLocked()
}

// Invalidate applies an external push of session invalidation (token expiry,
// remote sign-out): any state → Anonymous.
//
// When the active route belongs to a protected area, the redirect callback
// fires with the sign-in entry point.
func (machine *Machine) Invalidate(ctx context.Context) {
	machine.mu.Lock()
	defer machine.mu.Unlock()

	if machine.state == StateAuthenticated && machine.recorder != nil {
		machine.recorder.Record(ctx, machine.identityID, machine.profileRole, rbac.ActionLogout, "session invalidated by external push")
	}

	machine.stopTimerLocked()
	wasProtected := machine.inProtected
	machine.clearLocked()

	if wasProtected {
		machine.redirectLocked(PathSignIn)
	}
}

// expire is the bounded wait firing. A no-op unless still Authenticating:
// the timer is cancelled on every terminal transition, and this guard makes a
// stale firing harmless even if it races the cancellation.
func (machine *Machine) expire() {
	machine.mu.Lock()
	defer machine.mu.Unlock()

	if machine.state != StateAuthenticating {
		return
	}

	machine.state = StateAnonymous
	machine.lastErr = apperr.AuthTimeout()
}

// Close cancels the bounded wait timer. Called on teardown so an abandoned
// attempt cannot leak a timer or surface a stale error later.
func (machine *Machine) Close() {
	machine.mu.Lock()
	defer machine.mu.Unlock()
	machine.stopTimerLocked()
}

// # Snapshot Accessors

// State returns the current lifecycle state.
func (machine *Machine) State() State {
	machine.mu.Lock()
	defer machine.mu.Unlock()
	return machine.state
}

// Err returns the terminal error of the attempt, if any: credential
// rejection, profile-not-found, or timeout.
func (machine *Machine) Err() error {
	machine.mu.Lock()
	defer machine.mu.Unlock()
	return machine.lastErr
}

// Identity returns the verified identity attributes once a terminal
// verified state was reached.
func (machine *Machine) Identity() (identityID, email string, role rbac.Role) {
	machine.mu.Lock()
	defer machine.mu.Unlock()
	return machine.identityID, machine.email, machine.profileRole
}

// # Internal Helpers

func (machine *Machine) stopTimerLocked() {
	if machine.timer != nil {
		machine.timer.Stop()
		machine.timer = nil
	}
}

func (machine *Machine) clearLocked() {
	machine.state = StateAnonymous
	machine.identityID = ""
	machine.email = ""
	machine.profileRole = ""
	machine.lastErr = nil
	machine.redirected = false
}

func (machine *Machine) redirectLocked(target string) {
	if machine.redirected || machine.onRedirect == nil {
		return
	}
	machine.redirected = true
	machine.onRedirect(target)
}
