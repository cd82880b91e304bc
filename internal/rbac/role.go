// Copyright (c) 2026 CampusGate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package rbac implements role-based access control for the CampusGate portal.

It is the single source of truth for authorization decisions. All call sites
query the policy table instead of comparing role literals inline.

Architecture:

  - Role: The enumerated authorization level attached to a profile.
  - Policy Table: A static, total mapping of (role, resource, operation) to allow/deny.
  - Resolver: Computes the effective role for a request, including the
    runtime-only super-admin override.

The package has no storage or transport dependencies and is safe to use from
any layer.
*/
package rbac

// # User Roles

// Role represents the authorization level granted to a profile.
type Role string

const (
	// University staff member: sees staff-targeted tutorials only
	RoleStaff Role = "staff"

	// Enrolled student: sees student-targeted tutorials only
	RoleStudent Role = "student"

	// Portal administrator: manages users, tutorials, and the audit trail
	RoleAdmin Role = "admin"

	// RoleSudo is the runtime-only super-admin override.
	//
	// # Never Persisted
	//
	// This value is computed per request by the [Resolver] and must never be
	// written into a profile's role column. Every write path that stores a
	// role goes through [Resolver.AssertNotPersistable] or
	// [SanitizeForPersistence] first. This is the most important invariant
	// in the system.
	RoleSudo Role = "sudo"
)

// # Persistence Rules

// persistedRoles is the closed set of values legal to store in a profile.
var persistedRoles = map[Role]bool{
	RoleStaff:   true,
	RoleStudent: true,
	RoleAdmin:   true,
}

// IsPersisted reports whether the role is a legal value to store in a profile.
// It is false for [RoleSudo] and for anything unrecognized.
func (r Role) IsPersisted() bool {
	return persistedRoles[r]
}

// SanitizeForPersistence filters a candidate role before it is written to storage.
//
// # Returns
//   - The role unchanged and true when it is one of the three persisted values.
//   - An empty role and false for [RoleSudo] or any unrecognized value. The
//     sudo value itself is never returned to a caller intending to persist it.
func SanitizeForPersistence(candidate Role) (Role, bool) {
	if !candidate.IsPersisted() {
		return "", false
	}
	return candidate, true
}

// ParseRole maps a raw string onto a known [Role].
// It returns false for unknown values, including "sudo": external input can
// never name the runtime-only role.
func ParseRole(raw string) (Role, bool) {
	role := Role(raw)
	if !role.IsPersisted() {
		return "", false
	}
	return role, true
}
