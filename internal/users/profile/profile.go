// Copyright (c) 2026 CampusGate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package profile handles the application-level user records of the portal.

A Profile is keyed 1:1 to an identity by matching ID. The identity (credential
material, verification proof) belongs to the auth layer; the profile carries
everything the portal itself knows about a person: role, display name, staff
number, activity flags.

# Architecture

  - Entities: Profile.
  - Invariant: Profile.Role is always one of the persisted role values. The
    runtime-only sudo override can never be stored; all write paths go
    through the rbac persistence guard.
*/
package profile

import (
	"time"

	"github.com/taibuivan/campusgate/internal/rbac"
)

// # Domain Entities

// AuthMethod tags which authentication flow a profile was established with.
type AuthMethod string

const (
	AuthMethodPassword  AuthMethod = "password"
	AuthMethodMagicLink AuthMethod = "magic_link"
)

// Profile represents the portal's record for one identity.
type Profile struct {
	// ID matches the identity ID 1:1.
	ID string `json:"id"`

	// StaffNumber is the externally issued personnel or student number.
	StaffNumber string `json:"staff_number,omitempty"`

	Email       string     `json:"email"`
	DisplayName string     `json:"display_name"`
	Role        rbac.Role  `json:"role"`
	AuthMethod  AuthMethod `json:"auth_method"`
	IsActive    bool       `json:"is_active"`
	IsVerified  bool       `json:"is_verified"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// # Field Identifiers

// Global field names for validation in the profile domain.
const (
	FieldEmail       = "email"
	FieldDisplayName = "display_name"
	FieldRole        = "role"
	FieldStaffNumber = "staff_number"
	FieldIsActive    = "is_active"
)
