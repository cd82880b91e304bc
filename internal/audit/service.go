// Copyright (c) 2026 CampusGate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package audit

import (
	"context"
	"log/slog"

	"github.com/taibuivan/campusgate/internal/platform/apperr"
	"github.com/taibuivan/campusgate/internal/rbac"
)

// Service orchestrates audit recording and admin reads.
//
// # Fire-and-Forget Contract
//
// Record is synchronous so call sites that need ordering ("record logout
// before clearing the session") simply call it first. Its failure path is
// internal: errors are logged and swallowed, never propagated, so a broken
// sink cannot roll back or block the action being audited. Tests assert this
// by injecting a failing [Store] and checking the primary action's outcome.
type Service struct {
	store Store
	log   *slog.Logger
}

// NewService constructs the audit [Service].
func NewService(store Store, log *slog.Logger) *Service {
	return &Service{store: store, log: log}
}

// Record appends one audit event, best-effort.
//
// It satisfies [rbac.Recorder]. A nil-safe no-op when the service itself is
// nil, so optional wiring in tests stays terse.
func (service *Service) Record(ctx context.Context, actorID string, actorRole rbac.Role, action, detail string) {
	if service == nil {
		return
	}

	event := &Event{
		ActorID:   actorID,
		ActorRole: actorRole,
		Action:    action,
		Detail:    detail,
	}

	if err := service.store.Append(ctx, event); err != nil {
		// Swallow by contract. The trail is advisory; the action is not.
		service.log.ErrorContext(ctx, "audit_sink_failure",
			slog.String("action", action),
			slog.String("actor_id", actorID),
			slog.Any("error", err),
		)
	}
}

/*
List returns a page of the audit trail for administrators.

Description: Enforces the policy table before touching the store, so a
non-admin effective role can never read the trail even if routing slips.

Parameters:
  - ctx: context.Context
  - callerRole: rbac.Role (effective role of the requester)
  - limit: int
  - offset: int

Returns:
  - []Event: Page of events, newest first
  - int: Total count
  - error: Forbidden or storage failures
*/
func (service *Service) List(ctx context.Context, callerRole rbac.Role, limit, offset int) ([]Event, int, error) {
	if !rbac.Authorize(callerRole, rbac.ResourceAuditLog, rbac.OpReadAll) {
		return nil, 0, apperr.Forbidden("Audit trail access requires an administrator role")
	}

	return service.store.List(ctx, limit, offset)
}
