// Copyright (c) 2026 CampusGate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package rbac

import (
	"context"
	"strings"

	"github.com/taibuivan/campusgate/internal/platform/apperr"
)

// # Contracts & Types

// Recorder is the minimal audit trail contract the resolver needs.
//
// # Why an interface?
//
// Declaring it here keeps the rbac core free of storage dependencies; the
// audit service satisfies it, and tests inject an in-memory fake.
type Recorder interface {
	// Record appends one audit event. It is best-effort: implementations
	// must never return the failure to the action being audited.
	Record(ctx context.Context, actorID string, actorRole Role, action, detail string)
}

// # Action Tags

// Well-known action tags for the [Recorder] contract. Free-form tags are
// allowed; these cover the lifecycle transitions and privileged mutations the
// portal itself emits. They live here, beside the contract they parameterize,
// so recording callers never need to depend on the audit package.
const (
	ActionLogin              = "login"
	ActionLogout             = "logout"
	ActionMagicLinkRequested = "magic_link_requested"
	ActionProfileCreated     = "profile_created"
	ActionProfileUpdated     = "profile_updated"
	ActionProfileDeleted     = "profile_deleted"
	ActionTutorialCreated    = "tutorial_created"
	ActionTutorialUpdated    = "tutorial_updated"
	ActionTutorialDeleted    = "tutorial_deleted"
	ActionRolePersistBlocked = "role_persist_blocked"
)

// Resolver computes the effective role for a request.
//
// # Override Semantics
//
// When the sudo feature is enabled and the identity's email matches the
// configured override address, the resolver returns [RoleSudo] instead of the
// persisted role. The override is a pure runtime computation: it is never
// written back, and [Resolver.AssertNotPersistable] guards every role write
// path against it.
type Resolver struct {
	sudoEnabled   bool
	overrideEmail string // normalized at construction
	recorder      Recorder
}

// NewResolver constructs a [Resolver] from the immutable startup flags.
//
// # Parameters
//   - sudoEnabled: The sudo-enabled feature flag, read once at process start.
//   - overrideEmail: The configured super-admin address. Normalized here so
//     every later comparison is a plain equality check.
//   - recorder: Best-effort audit sink for blocked persistence attempts.
func NewResolver(sudoEnabled bool, overrideEmail string, recorder Recorder) *Resolver {
	return &Resolver{
		sudoEnabled:   sudoEnabled,
		overrideEmail: normalizeEmail(overrideEmail),
		recorder:      recorder,
	}
}

// # Role Resolution

// EffectiveRole computes the role used for authorization decisions.
//
// # Algorithm
//
//  1. If the sudo override is enabled and identityEmail matches the override
//     address (case- and whitespace-insensitive on both sides), return [RoleSudo].
//  2. Otherwise return the persisted profile role unchanged.
//  3. An identity without a profile has no role: the empty value is returned
//     and the policy table denies it everything.
func (resolver *Resolver) EffectiveRole(profileRole Role, identityEmail string) Role {
	if resolver.IsOverrideIdentity(identityEmail) {
		return RoleSudo
	}
	return profileRole
}

// IsOverrideIdentity reports whether the email belongs to the configured
// super-admin identity. Always false when the sudo feature is disabled.
func (resolver *Resolver) IsOverrideIdentity(identityEmail string) bool {
	if !resolver.sudoEnabled || resolver.overrideEmail == "" {
		return false
	}
	return normalizeEmail(identityEmail) == resolver.overrideEmail
}

// # Persistence Guard

// AssertNotPersistable rejects any attempt to write the runtime-only role.
//
// # Contract
//
// Every write path that would persist a role must call this guard first.
// A [RoleSudo] candidate is rejected with [apperr.PersistenceBlocked], and a
// "role_persist_blocked" audit event is emitted best-effort — a failing audit
// sink never blocks the rejection itself. Persisted roles pass untouched.
func (resolver *Resolver) AssertNotPersistable(ctx context.Context, actorID string, candidate Role) error {
	if candidate != RoleSudo {
		return nil
	}

	if resolver.recorder != nil {
		resolver.recorder.Record(ctx, actorID, RoleSudo, "role_persist_blocked",
			"attempt to persist the runtime-only sudo role was rejected")
	}

	return apperr.PersistenceBlocked("The sudo role is runtime-only and can never be stored")
}

// normalizeEmail lowers and trims an address for override comparison.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
