// Copyright (c) 2026 CampusGate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import "time"

// # Authentication Constraints

const (
	// AccessTokenTTL is the duration a JWT access token remains valid.
	// We keep it short (15m) to minimize the impact of a leaked token.
	AccessTokenTTL = 15 * time.Minute

	// RefreshTokenTTL is the duration a session/refresh token remains valid.
	// Long-lived (30 days) to provide a good user experience.
	RefreshTokenTTL = 30 * 24 * time.Hour

	// RefreshTokenLength is the byte length of the random secure token.
	RefreshTokenLength = 32

	// MagicLinkTokenTTL is the duration a magic-link token remains valid.
	// Short-lived (15 minutes): the link is expected to be clicked from the
	// same sitting as the request.
	MagicLinkTokenTTL = 15 * time.Minute

	// MagicLinkTokenLength is the byte length of the random magic-link token.
	MagicLinkTokenLength = 32
)
