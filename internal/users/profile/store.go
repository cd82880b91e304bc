// Copyright (c) 2026 CampusGate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package profile

import "context"

// # Profile Data Access

// Store defines the data access contract for profiles.
type Store interface {

	/*
		FindByID returns the profile keyed to the given identity ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *Profile: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindByID(context context.Context, id string) (*Profile, error)

	/*
		List returns profiles ordered by creation with the total count.

		Parameters:
		  - context: context.Context
		  - limit: int
		  - offset: int

		Returns:
		  - []Profile: Page of profiles
		  - int: Total profile count
		  - error: Database retrieval failures
	*/
	List(context context.Context, limit, offset int) ([]Profile, int, error)

	/*
		Create persists a brand-new profile.

		Parameters:
		  - context: context.Context
		  - profile: *Profile

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, profile *Profile) error

	/*
		Update persists changes to mutable profile fields.

		Parameters:
		  - context: context.Context
		  - profile: *Profile

		Returns:
		  - error: Persistence failures
	*/
	Update(context context.Context, profile *Profile) error

	/*
		Delete permanently removes a profile. The identity row cascades via
		the schema's foreign key, which in turn revokes its sessions.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - error: Persistence failures
	*/
	Delete(context context.Context, id string) error

	/*
		MarkVerified flips the email-verification flag after a confirmed
		sign-in with a verified address.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - error: Persistence failures
	*/
	MarkVerified(context context.Context, id string) error
}
