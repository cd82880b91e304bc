// Copyright (c) 2026 CampusGate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package tutorial

import (
	"context"

	"github.com/taibuivan/campusgate/internal/rbac"
)

// # Tutorial Data Access

// Store defines the data access contract for the tutorial catalogue.
type Store interface {

	/*
		FindBySlug returns a single tutorial by its URL slug.

		Parameters:
		  - context: context.Context
		  - slug: string

		Returns:
		  - *Tutorial: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindBySlug(context context.Context, slug string) (*Tutorial, error)

	/*
		List returns the full catalogue ordered by creation time.

		Parameters:
		  - context: context.Context
		  - limit: int
		  - offset: int

		Returns:
		  - []Tutorial: Page of tutorials
		  - int: Total catalogue count
		  - error: Database retrieval failures
	*/
	List(context context.Context, limit, offset int) ([]Tutorial, int, error)

	/*
		ListByTarget returns only the tutorials targeted at one audience role.

		Parameters:
		  - context: context.Context
		  - target: rbac.Role
		  - limit: int
		  - offset: int

		Returns:
		  - []Tutorial: Page of tutorials for the audience
		  - int: Total count for the audience
		  - error: Database retrieval failures
	*/
	ListByTarget(context context.Context, target rbac.Role, limit, offset int) ([]Tutorial, int, error)

	/*
		Create persists a new catalogue entry.

		Parameters:
		  - context: context.Context
		  - tutorial: *Tutorial

		Returns:
		  - error: Persistence failures (including slug collisions)
	*/
	Create(context context.Context, tutorial *Tutorial) error

	/*
		Update persists changes to an existing catalogue entry.

		Parameters:
		  - context: context.Context
		  - tutorial: *Tutorial

		Returns:
		  - error: apperr.NotFound or persistence failures
	*/
	Update(context context.Context, tutorial *Tutorial) error

	/*
		Delete removes a catalogue entry by ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - error: apperr.NotFound or persistence failures
	*/
	Delete(context context.Context, id string) error
}
