// Copyright (c) 2026 CampusGate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import "github.com/taibuivan/campusgate/internal/rbac"

// Principal is the per-request authenticated identity stored in context.
//
// # Effective vs Persisted
//
// Role is the persisted value carried by the access token. Effective is the
// role authorization decisions use, computed by [rbac.Resolver.EffectiveRole]
// when the request is authenticated — it may be the runtime-only sudo
// override and is therefore never written anywhere.
type Principal struct {
	UserID    string
	Email     string
	Role      rbac.Role // Persisted role from the token claims.
	Effective rbac.Role // Resolved role for this request; never persisted.
}

// FromClaims builds a [Principal] from verified token claims and the resolved
// effective role.
func FromClaims(claims *AuthClaims, effective rbac.Role) *Principal {
	return &Principal{
		UserID:    claims.UserID,
		Email:     claims.Email,
		Role:      rbac.Role(claims.Role),
		Effective: effective,
	}
}
