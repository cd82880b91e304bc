// Copyright (c) 2026 CampusGate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package audit

import "context"

// # Audit Data Access

// Store defines the data access contract for the audit trail.
//
// The contract is deliberately append-and-read only: no update or delete
// method exists, mirroring the immutability of the trail itself.
type Store interface {

	/*
		Append persists one new audit event.

		Parameters:
		  - context: context.Context
		  - event: *Event

		Returns:
		  - error: Persistence failures
	*/
	Append(context context.Context, event *Event) error

	/*
		List returns events newest-first with the total count for pagination.

		Parameters:
		  - context: context.Context
		  - limit: int
		  - offset: int

		Returns:
		  - []Event: Page of events
		  - int: Total event count
		  - error: Database retrieval failures
	*/
	List(context context.Context, limit, offset int) ([]Event, int, error)
}
