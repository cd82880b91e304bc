// Copyright (c) 2026 CampusGate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/campusgate/internal/platform/database/schema"
	"github.com/taibuivan/campusgate/pkg/uuid"
)

// # Postgres Store

// PostgresStore implements the [Store] interface on the system.auditlog table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL implementation of the audit [Store].
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

/*
Append persists one audit event into the system.auditlog table.

Description: Assigns a time-sortable ID and creation timestamp if unset.
The table carries no UPDATE or DELETE grants for the application role.

Parameters:
  - context: context.Context
  - event: *Event

Returns:
  - error: Database constraint violations or connectivity errors
*/
func (store *PostgresStore) Append(context context.Context, event *Event) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6);
	`,
		schema.SystemAuditLog.Table,
		schema.SystemAuditLog.ID,
		schema.SystemAuditLog.ActorID,
		schema.SystemAuditLog.ActorRole,
		schema.SystemAuditLog.Action,
		schema.SystemAuditLog.Detail,
		schema.SystemAuditLog.CreatedAt,
	)

	if event.ID == "" {
		event.ID = uuid.New()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	_, err := store.pool.Exec(context, query,
		event.ID,
		event.ActorID,
		event.ActorRole,
		event.Action,
		event.Detail,
		event.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("postgres_audit_store_append_failed: %w", err)
	}

	return nil
}

/*
List returns a page of audit events, newest first.

Parameters:
  - context: context.Context
  - limit: int
  - offset: int

Returns:
  - []Event: Hydrated page
  - int: Total row count
  - error: Database retrieval failures
*/
func (store *PostgresStore) List(context context.Context, limit, offset int) ([]Event, int, error) {
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s;`, schema.SystemAuditLog.Table)

	var total int
	if err := store.pool.QueryRow(context, countQuery).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_audit_store_count_failed: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s
		FROM %s
		ORDER BY %s DESC, %s DESC
		LIMIT $1 OFFSET $2;
	`,
		schema.SystemAuditLog.ID,
		schema.SystemAuditLog.ActorID,
		schema.SystemAuditLog.ActorRole,
		schema.SystemAuditLog.Action,
		schema.SystemAuditLog.Detail,
		schema.SystemAuditLog.CreatedAt,
		schema.SystemAuditLog.Table,
		schema.SystemAuditLog.CreatedAt,
		schema.SystemAuditLog.ID,
	)

	rows, err := store.pool.Query(context, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_audit_store_list_failed: %w", err)
	}
	defer rows.Close()

	events := make([]Event, 0, limit)
	for rows.Next() {
		var event Event
		if err := rows.Scan(
			&event.ID,
			&event.ActorID,
			&event.ActorRole,
			&event.Action,
			&event.Detail,
			&event.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("postgres_audit_store_scan_failed: %w", err)
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres_audit_store_rows_failed: %w", err)
	}

	return events, total, nil
}
