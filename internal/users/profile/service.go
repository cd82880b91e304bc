// Copyright (c) 2026 CampusGate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package profile

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/taibuivan/campusgate/internal/audit"
	"github.com/taibuivan/campusgate/internal/platform/apperr"
	"github.com/taibuivan/campusgate/internal/platform/sec"
	"github.com/taibuivan/campusgate/internal/rbac"
)

// # Service Layer

// SessionRevoker invalidates every refresh session a user holds. The auth
// session repository satisfies it; declaring the contract here keeps this
// package free of an import cycle with the auth package.
type SessionRevoker interface {
	RevokeAll(ctx context.Context, userID string) error
}

// Service orchestrates business logic for portal profiles.
//
// Every operation takes the caller's [sec.Principal] and consults the policy
// table before touching storage, so authorization cannot be bypassed by a
// routing mistake.
type Service struct {
	store    Store
	sessions SessionRevoker
	resolver *rbac.Resolver
	recorder rbac.Recorder
	logger   *slog.Logger
}

// NewService constructs a new [Service] with its dependencies.
func NewService(store Store, sessions SessionRevoker, resolver *rbac.Resolver, recorder rbac.Recorder, logger *slog.Logger) *Service {
	return &Service{
		store:    store,
		sessions: sessions,
		resolver: resolver,
		recorder: recorder,
		logger:   logger,
	}
}

// # Read Operations

/*
GetOwn retrieves the caller's own profile.

Parameters:
  - ctx: context.Context
  - caller: *sec.Principal

Returns:
  - *Profile: The caller's profile
  - error: Forbidden, not found, or storage failures
*/
func (service *Service) GetOwn(ctx context.Context, caller *sec.Principal) (*Profile, error) {
	if !rbac.Authorize(caller.Effective, rbac.ResourceProfiles, rbac.OpReadOwn) {
		return nil, apperr.Forbidden("Profile access denied")
	}

	return service.store.FindByID(ctx, caller.UserID)
}

/*
List returns a page of all profiles for administrators.

Parameters:
  - ctx: context.Context
  - caller: *sec.Principal
  - limit: int
  - offset: int

Returns:
  - []Profile: Page of profiles
  - int: Total count
  - error: Forbidden or storage failures
*/
func (service *Service) List(ctx context.Context, caller *sec.Principal, limit, offset int) ([]Profile, int, error) {
	if !rbac.Authorize(caller.Effective, rbac.ResourceProfiles, rbac.OpReadAll) {
		return nil, 0, apperr.Forbidden("User listing requires an administrator role")
	}

	return service.store.List(ctx, limit, offset)
}

// # Write Operations

// CreateInput holds the data for an administratively provisioned profile.
type CreateInput struct {
	ID          string // Identity ID the profile is keyed to.
	StaffNumber string
	Email       string
	DisplayName string
	Role        string
	AuthMethod  AuthMethod
}

/*
Create provisions a new profile for an existing identity.

Description: The candidate role passes the persistence guard and is
sanitized, so neither sudo nor an unknown value can ever reach storage.

Parameters:
  - ctx: context.Context
  - caller: *sec.Principal
  - input: CreateInput

Returns:
  - *Profile: Created entity
  - error: Forbidden, validation, or storage failures
*/
func (service *Service) Create(ctx context.Context, caller *sec.Principal, input CreateInput) (*Profile, error) {
	if !rbac.Authorize(caller.Effective, rbac.ResourceProfiles, rbac.OpWrite) {
		return nil, apperr.Forbidden("Profile creation requires an administrator role")
	}

	role, err := service.persistableRole(ctx, caller, input.Role)
	if err != nil {
		return nil, err
	}

	entity := &Profile{
		ID:          input.ID,
		StaffNumber: input.StaffNumber,
		Email:       input.Email,
		DisplayName: input.DisplayName,
		Role:        role,
		AuthMethod:  input.AuthMethod,
		IsActive:    true,
	}

	if err := service.store.Create(ctx, entity); err != nil {
		return nil, fmt.Errorf("profile_service_create_failed: %w", err)
	}

	service.record(ctx, caller, audit.ActionProfileCreated, "profile "+entity.ID+" created with role "+string(role))

	return entity, nil
}

// UpdateInput defines the mutable subset of profile fields. Nil pointers
// leave a field untouched.
type UpdateInput struct {
	StaffNumber *string
	DisplayName *string
	Role        *string
	IsActive    *bool
}

/*
Update applies a partial set of changes to a profile.

Description: Role changes pass [rbac.Resolver.AssertNotPersistable] first and
are then sanitized — the runtime-only sudo value is rejected with a distinct
error, never silently downgraded.

Parameters:
  - ctx: context.Context
  - caller: *sec.Principal
  - id: string
  - input: UpdateInput

Returns:
  - *Profile: The updated profile
  - error: Forbidden, validation, or storage failures
*/
func (service *Service) Update(ctx context.Context, caller *sec.Principal, id string, input UpdateInput) (*Profile, error) {
	if !rbac.Authorize(caller.Effective, rbac.ResourceProfiles, rbac.OpWrite) {
		return nil, apperr.Forbidden("Profile updates require an administrator role")
	}

	entity, err := service.store.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("profile_service_update_lookup_failed: %w", err)
	}
	wasActive := entity.IsActive

	// Apply delta updates
	if input.StaffNumber != nil {
		entity.StaffNumber = *input.StaffNumber
	}
	if input.DisplayName != nil {
		entity.DisplayName = *input.DisplayName
	}
	if input.IsActive != nil {
		entity.IsActive = *input.IsActive
	}
	if input.Role != nil {
		role, err := service.persistableRole(ctx, caller, *input.Role)
		if err != nil {
			return nil, err
		}
		entity.Role = role
	}

	if err := service.store.Update(ctx, entity); err != nil {
		return nil, fmt.Errorf("profile_service_update_failed: %w", err)
	}

	// Deactivation cuts off the refresh window immediately: a deactivated
	// user must not keep rotating tokens until their session expires.
	if wasActive && !entity.IsActive && service.sessions != nil {
		if err := service.sessions.RevokeAll(ctx, id); err != nil {
			return nil, fmt.Errorf("profile_service_revoke_sessions_failed: %w", err)
		}
	}

	service.record(ctx, caller, audit.ActionProfileUpdated, "profile "+id+" updated")
	service.logger.Info("profile_updated", slog.String("profile_id", id), slog.String("actor_id", caller.UserID))

	return entity, nil
}

/*
Delete permanently removes a profile.

Description: The policy table grants OpDelete to sudo only. One exception on
top of the table: the sudo override identity can never delete its own
profile-equivalent identity, so the portal cannot lock out its last
super-admin.

Parameters:
  - ctx: context.Context
  - caller: *sec.Principal
  - id: string

Returns:
  - error: Forbidden, not found, or storage failures
*/
func (service *Service) Delete(ctx context.Context, caller *sec.Principal, id string) error {
	if !rbac.Authorize(caller.Effective, rbac.ResourceProfiles, rbac.OpDelete) {
		return apperr.Forbidden("Profile deletion requires the super-admin override")
	}

	entity, err := service.store.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("profile_service_delete_lookup_failed: %w", err)
	}

	if service.resolver.IsOverrideIdentity(entity.Email) {
		return apperr.Forbidden("The super-admin override identity cannot be deleted")
	}

	if err := service.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("profile_service_delete_failed: %w", err)
	}

	service.record(ctx, caller, audit.ActionProfileDeleted, "profile "+id+" ("+entity.Email+") deleted")
	service.logger.Info("profile_deleted", slog.String("profile_id", id), slog.String("actor_id", caller.UserID))

	return nil
}

// # Helpers

// persistableRole validates a raw role candidate for storage: the guard
// rejects sudo with a distinct error and an audit record, sanitization
// rejects anything outside the persisted set.
func (service *Service) persistableRole(ctx context.Context, caller *sec.Principal, raw string) (rbac.Role, error) {
	candidate := rbac.Role(raw)

	if err := service.resolver.AssertNotPersistable(ctx, caller.UserID, candidate); err != nil {
		return "", err
	}

	role, ok := rbac.SanitizeForPersistence(candidate)
	if !ok {
		return "", apperr.ValidationError("Unknown role", apperr.FieldError{
			Field:   FieldRole,
			Message: "Must be one of: staff, student, admin",
		})
	}

	return role, nil
}

// record appends one best-effort audit event with the caller as actor.
func (service *Service) record(ctx context.Context, caller *sec.Principal, action, detail string) {
	if service.recorder != nil {
		service.recorder.Record(ctx, caller.UserID, caller.Effective, action, detail)
	}
}
