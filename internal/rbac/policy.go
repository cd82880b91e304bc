// Copyright (c) 2026 CampusGate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package rbac

// # Protected Resources

// Resource identifies a category of entities the policy table guards.
type Resource string

const (
	// ResourceProfiles is the application user listing (users.profile).
	ResourceProfiles Resource = "profiles"

	// ResourceTutorials is the tutorial link catalogue (core.tutorial).
	ResourceTutorials Resource = "tutorials"

	// ResourceAuditLog is the immutable action trail (system.auditlog).
	ResourceAuditLog Resource = "auditlog"
)

// # Operations

// Operation identifies what a caller wants to do with a resource.
type Operation string

const (
	// OpReadOwn reads only the rows belonging to (or targeted at) the caller.
	OpReadOwn Operation = "read_own"

	// OpReadAll reads every row regardless of ownership or targeting.
	OpReadAll Operation = "read_all"

	// OpWrite creates or mutates rows. For the audit log this means append-only.
	OpWrite Operation = "write"

	// OpDelete permanently removes rows. Only defined for profiles.
	OpDelete Operation = "delete"
)

// # Policy Table

// grant is the set of operations a role may perform on one resource.
type grant map[Operation]bool

// policy is the static decision table. Anything absent is a deny.
//
// # Policy Facts
//
//   - Staff and students read only tutorials targeted at their own role and
//     may never read or write the user list or read the audit log.
//   - Every authenticated role may append one audit event for its own
//     actions, so OpWrite on the audit log is granted universally.
//   - Admins read and write all tutorials and profiles and read the audit
//     log, but gain no delete right on profiles.
//   - Sudo inherits every admin grant and adds profile deletion. The
//     self-deletion exception is enforced by the profile service, not here,
//     because the table is a pure function of (role, resource, operation).
var policy = map[Role]map[Resource]grant{
	RoleStaff: {
		ResourceProfiles:  {OpReadOwn: true},
		ResourceTutorials: {OpReadOwn: true},
		ResourceAuditLog:  {OpWrite: true},
	},
	RoleStudent: {
		ResourceProfiles:  {OpReadOwn: true},
		ResourceTutorials: {OpReadOwn: true},
		ResourceAuditLog:  {OpWrite: true},
	},
	RoleAdmin: {
		ResourceProfiles:  {OpReadOwn: true, OpReadAll: true, OpWrite: true},
		ResourceTutorials: {OpReadOwn: true, OpReadAll: true, OpWrite: true},
		ResourceAuditLog:  {OpReadAll: true, OpWrite: true},
	},
	RoleSudo: {
		ResourceProfiles:  {OpReadOwn: true, OpReadAll: true, OpWrite: true, OpDelete: true},
		ResourceTutorials: {OpReadOwn: true, OpReadAll: true, OpWrite: true},
		ResourceAuditLog:  {OpReadAll: true, OpWrite: true},
	},
}

// Authorize answers whether role may perform operation on resource.
//
// # Contract
//
// Pure and total: every combination of inputs has a defined answer, and
// unknown roles, resources, or operations always resolve to deny. No I/O,
// no side effects.
func Authorize(role Role, resource Resource, operation Operation) bool {
	grants, ok := policy[role]
	if !ok {
		return false
	}
	byResource, ok := grants[resource]
	if !ok {
		return false
	}
	return byResource[operation]
}
