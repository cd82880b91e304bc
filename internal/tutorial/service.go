// Copyright (c) 2026 CampusGate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package tutorial

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/taibuivan/campusgate/internal/audit"
	"github.com/taibuivan/campusgate/internal/platform/apperr"
	"github.com/taibuivan/campusgate/internal/platform/sec"
	"github.com/taibuivan/campusgate/internal/rbac"
	"github.com/taibuivan/campusgate/pkg/slug"
)

// # Service Layer

// Service orchestrates the tutorial catalogue.
//
// The listing is policy-filtered at this layer: the store is asked for the
// caller's slice only, so a role with read_own never receives rows targeted
// at another audience no matter what the catalogue contains.
type Service struct {
	store    Store
	recorder rbac.Recorder
	logger   *slog.Logger
}

// NewService constructs a new [Service] with its dependencies.
func NewService(store Store, recorder rbac.Recorder, logger *slog.Logger) *Service {
	return &Service{
		store:    store,
		recorder: recorder,
		logger:   logger,
	}
}

// # Read Operations

/*
List returns the tutorials visible to the caller.

Description: Roles holding read_all (admin, sudo) receive the full
catalogue. Roles holding only read_own (staff, student) receive exactly the
rows targeted at their effective role. Everyone else is denied.

Parameters:
  - ctx: context.Context
  - caller: *sec.Principal
  - limit: int
  - offset: int

Returns:
  - []Tutorial: Visible page of the catalogue
  - int: Total visible count
  - error: Forbidden or storage failures
*/
func (service *Service) List(ctx context.Context, caller *sec.Principal, limit, offset int) ([]Tutorial, int, error) {
	if rbac.Authorize(caller.Effective, rbac.ResourceTutorials, rbac.OpReadAll) {
		return service.store.List(ctx, limit, offset)
	}

	if rbac.Authorize(caller.Effective, rbac.ResourceTutorials, rbac.OpReadOwn) {
		return service.store.ListByTarget(ctx, caller.Effective, limit, offset)
	}

	return nil, 0, apperr.Forbidden("Tutorial access denied")
}

/*
GetBySlug returns a single tutorial if the caller may see it.

Description: A read_own caller asking for a tutorial targeted at another
audience gets apperr.NotFound rather than Forbidden, so the response does
not reveal whether the slug exists outside their slice.

Parameters:
  - ctx: context.Context
  - caller: *sec.Principal
  - tutorialSlug: string

Returns:
  - *Tutorial: The requested tutorial
  - error: Forbidden, not found, or storage failures
*/
func (service *Service) GetBySlug(ctx context.Context, caller *sec.Principal, tutorialSlug string) (*Tutorial, error) {
	canReadAll := rbac.Authorize(caller.Effective, rbac.ResourceTutorials, rbac.OpReadAll)
	if !canReadAll && !rbac.Authorize(caller.Effective, rbac.ResourceTutorials, rbac.OpReadOwn) {
		return nil, apperr.Forbidden("Tutorial access denied")
	}

	entity, err := service.store.FindBySlug(ctx, tutorialSlug)
	if err != nil {
		return nil, err
	}

	if !canReadAll && entity.Target != caller.Effective {
		return nil, apperr.NotFound("Tutorial")
	}

	return entity, nil
}

// # Write Operations

// CreateInput holds the data for a new catalogue entry.
type CreateInput struct {
	Title       string
	URL         string
	Description string
	Target      string
}

/*
Create adds a catalogue entry, deriving its slug from the title.

Parameters:
  - ctx: context.Context
  - caller: *sec.Principal
  - input: CreateInput

Returns:
  - *Tutorial: Created entity
  - error: Forbidden, validation, or storage failures
*/
func (service *Service) Create(ctx context.Context, caller *sec.Principal, input CreateInput) (*Tutorial, error) {
	if !rbac.Authorize(caller.Effective, rbac.ResourceTutorials, rbac.OpWrite) {
		return nil, apperr.Forbidden("Tutorial management requires an administrator role")
	}

	target, err := audienceRole(input.Target)
	if err != nil {
		return nil, err
	}

	entity := &Tutorial{
		Slug:        slug.From(input.Title),
		Title:       input.Title,
		URL:         input.URL,
		Description: input.Description,
		Target:      target,
	}

	if err := service.store.Create(ctx, entity); err != nil {
		return nil, fmt.Errorf("tutorial_service_create_failed: %w", err)
	}

	service.record(ctx, caller, audit.ActionTutorialCreated, "tutorial "+entity.Slug+" created for "+string(target))

	return entity, nil
}

// UpdateInput defines the mutable subset of tutorial fields. Nil pointers
// leave a field untouched.
type UpdateInput struct {
	Title       *string
	URL         *string
	Description *string
	Target      *string
}

/*
Update applies a partial change set to a catalogue entry.

Description: The slug is permanent: it is derived from the title once at
creation and survives later title changes, so previously shared catalogue
URLs never break.

Parameters:
  - ctx: context.Context
  - caller: *sec.Principal
  - tutorialSlug: string
  - input: UpdateInput

Returns:
  - *Tutorial: The updated tutorial
  - error: Forbidden, validation, not found, or storage failures
*/
func (service *Service) Update(ctx context.Context, caller *sec.Principal, tutorialSlug string, input UpdateInput) (*Tutorial, error) {
	if !rbac.Authorize(caller.Effective, rbac.ResourceTutorials, rbac.OpWrite) {
		return nil, apperr.Forbidden("Tutorial management requires an administrator role")
	}

	entity, err := service.store.FindBySlug(ctx, tutorialSlug)
	if err != nil {
		return nil, fmt.Errorf("tutorial_service_update_lookup_failed: %w", err)
	}

	// Apply delta updates. The slug is fixed at creation so shared
	// catalogue URLs keep resolving across title changes.
	if input.Title != nil {
		entity.Title = *input.Title
	}
	if input.URL != nil {
		entity.URL = *input.URL
	}
	if input.Description != nil {
		entity.Description = *input.Description
	}
	if input.Target != nil {
		target, err := audienceRole(*input.Target)
		if err != nil {
			return nil, err
		}
		entity.Target = target
	}

	if err := service.store.Update(ctx, entity); err != nil {
		return nil, fmt.Errorf("tutorial_service_update_failed: %w", err)
	}

	service.record(ctx, caller, audit.ActionTutorialUpdated, "tutorial "+entity.Slug+" updated")

	return entity, nil
}

/*
Delete removes a catalogue entry.

Parameters:
  - ctx: context.Context
  - caller: *sec.Principal
  - tutorialSlug: string

Returns:
  - error: Forbidden, not found, or storage failures
*/
func (service *Service) Delete(ctx context.Context, caller *sec.Principal, tutorialSlug string) error {
	if !rbac.Authorize(caller.Effective, rbac.ResourceTutorials, rbac.OpWrite) {
		return apperr.Forbidden("Tutorial management requires an administrator role")
	}

	entity, err := service.store.FindBySlug(ctx, tutorialSlug)
	if err != nil {
		return fmt.Errorf("tutorial_service_delete_lookup_failed: %w", err)
	}

	if err := service.store.Delete(ctx, entity.ID); err != nil {
		return fmt.Errorf("tutorial_service_delete_failed: %w", err)
	}

	service.record(ctx, caller, audit.ActionTutorialDeleted, "tutorial "+entity.Slug+" deleted")
	service.logger.Info("tutorial_deleted", slog.String("tutorial_id", entity.ID), slog.String("actor_id", caller.UserID))

	return nil
}

// # Helpers

// audienceRole parses and narrows a raw role value to a valid tutorial
// audience. Admin and sudo are readers of everything, never a target.
func audienceRole(raw string) (rbac.Role, error) {
	role, ok := rbac.ParseRole(raw)
	if !ok || !AudienceRoles[role] {
		return "", apperr.ValidationError("Unknown audience", apperr.FieldError{
			Field:   FieldTarget,
			Message: "Must be one of: staff, student",
		})
	}
	return role, nil
}

func (service *Service) record(ctx context.Context, caller *sec.Principal, action, detail string) {
	if service.recorder == nil {
		return
	}
	service.recorder.Record(ctx, caller.UserID, caller.Effective, action, detail)
}
