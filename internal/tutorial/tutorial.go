// Copyright (c) 2026 CampusGate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package tutorial implements the role-targeted tutorial catalogue.
//
// Each tutorial is an external link addressed at exactly one audience role.
// Staff and students only ever see the slice of the catalogue targeted at
// their own role; administrators manage and read the whole catalogue.
package tutorial

import (
	"time"

	"github.com/taibuivan/campusgate/internal/rbac"
)

// # Entity

// Tutorial is a single catalogue entry pointing at external course material.
type Tutorial struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Description string    `json:"description,omitempty"`
	Target      rbac.Role `json:"target"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// # Field Identifiers

const (
	FieldTitle  = "title"
	FieldURL    = "url"
	FieldTarget = "target"
)

// AudienceRoles are the roles a tutorial may be targeted at. Administrators
// are readers of everything rather than an audience, so they are not a valid
// target.
var AudienceRoles = map[rbac.Role]bool{
	rbac.RoleStaff:   true,
	rbac.RoleStudent: true,
}
