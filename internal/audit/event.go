// Copyright (c) 2026 CampusGate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package audit implements the append-only action trail for the CampusGate portal.

Every privileged mutation and every authentication lifecycle transition records
one immutable event. Recording is best-effort by contract: a failing sink is
logged locally and swallowed, and never changes the outcome of the action
being audited.

# Architecture

  - Event: The immutable record (who, as which role, did what, when).
  - Recorder/Store: Domain-defined contracts for appending and reading.
  - Service: Orchestrates best-effort recording and admin reads.
*/
package audit

import (
	"time"

	"github.com/taibuivan/campusgate/internal/rbac"
)

// # Domain Entities

// Event is one immutable audit record.
//
// Events are never mutated or deleted by the application; retention and
// cleanup belong to the database operator.
type Event struct {
	ID        string    `json:"id"`
	ActorID   string    `json:"actor_id"`
	ActorRole rbac.Role `json:"actor_role"` // Role at the time of the action, sudo included.
	Action    string    `json:"action"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// # Action Tags

// Well-known action tags. Free-form tags are allowed; these cover the
// lifecycle transitions and privileged mutations the portal itself emits.
// The canonical definitions live in [rbac] beside the Recorder contract;
// these aliases keep the audit package's callers unchanged.
const (
	ActionLogin              = rbac.ActionLogin
	ActionLogout             = rbac.ActionLogout
	ActionMagicLinkRequested = rbac.ActionMagicLinkRequested
	ActionProfileCreated     = rbac.ActionProfileCreated
	ActionProfileUpdated     = rbac.ActionProfileUpdated
	ActionProfileDeleted     = rbac.ActionProfileDeleted
	ActionTutorialCreated    = rbac.ActionTutorialCreated
	ActionTutorialUpdated    = rbac.ActionTutorialUpdated
	ActionTutorialDeleted    = rbac.ActionTutorialDeleted
	ActionRolePersistBlocked = rbac.ActionRolePersistBlocked
)
