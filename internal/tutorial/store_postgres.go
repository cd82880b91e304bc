// Copyright (c) 2026 CampusGate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package tutorial

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/campusgate/internal/platform/apperr"
	"github.com/taibuivan/campusgate/internal/platform/database/schema"
	"github.com/taibuivan/campusgate/internal/rbac"
	"github.com/taibuivan/campusgate/pkg/uuid"
)

// # Postgres Store

// PostgresStore implements the [Store] interface on the core.tutorial table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL implementation of the tutorial [Store].
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// tutorialColumns matches the scan order in scanTutorial.
var tutorialColumns = strings.Join(schema.CoreTutorial.Columns(), ", ")

func scanTutorial(row pgx.Row) (*Tutorial, error) {
	entity := &Tutorial{}
	err := row.Scan(
		&entity.ID,
		&entity.Slug,
		&entity.Title,
		&entity.URL,
		&entity.Description,
		&entity.Target,
		&entity.CreatedAt,
		&entity.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return entity, nil
}

/*
FindBySlug retrieves a tutorial by its URL slug.

Parameters:
  - context: context.Context
  - slug: string

Returns:
  - *Tutorial: Hydrated entity
  - error: apperr.NotFound or database errors
*/
func (store *PostgresStore) FindBySlug(context context.Context, slug string) (*Tutorial, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		tutorialColumns, schema.CoreTutorial.Table, schema.CoreTutorial.Slug)

	entity, err := scanTutorial(store.pool.QueryRow(context, query, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Tutorial")
		}
		return nil, fmt.Errorf("postgres_tutorial_store_find_by_slug_failed: %w", err)
	}

	return entity, nil
}

/*
List returns a page of the full catalogue ordered by creation time.

Parameters:
  - context: context.Context
  - limit: int
  - offset: int

Returns:
  - []Tutorial: Page of tutorials
  - int: Total count
  - error: Database retrieval failures
*/
func (store *PostgresStore) List(context context.Context, limit, offset int) ([]Tutorial, int, error) {
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, schema.CoreTutorial.Table)

	var total int
	if err := store.pool.QueryRow(context, countQuery).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_tutorial_store_count_failed: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		ORDER BY %s ASC
		LIMIT $1 OFFSET $2`,
		tutorialColumns, schema.CoreTutorial.Table, schema.CoreTutorial.CreatedAt)

	rows, err := store.pool.Query(context, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_tutorial_store_list_failed: %w", err)
	}
	defer rows.Close()

	return collectTutorials(rows, limit, total)
}

/*
ListByTarget returns a page of tutorials for one audience role.

Parameters:
  - context: context.Context
  - target: rbac.Role
  - limit: int
  - offset: int

Returns:
  - []Tutorial: Page of tutorials targeted at the role
  - int: Total count for the role
  - error: Database retrieval failures
*/
func (store *PostgresStore) ListByTarget(context context.Context, target rbac.Role, limit, offset int) ([]Tutorial, int, error) {
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = $1`,
		schema.CoreTutorial.Table, schema.CoreTutorial.TargetRole)

	var total int
	if err := store.pool.QueryRow(context, countQuery, target).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_tutorial_store_target_count_failed: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1
		ORDER BY %s ASC
		LIMIT $2 OFFSET $3`,
		tutorialColumns, schema.CoreTutorial.Table,
		schema.CoreTutorial.TargetRole, schema.CoreTutorial.CreatedAt)

	rows, err := store.pool.Query(context, query, target, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_tutorial_store_list_by_target_failed: %w", err)
	}
	defer rows.Close()

	return collectTutorials(rows, limit, total)
}

func collectTutorials(rows pgx.Rows, limit, total int) ([]Tutorial, int, error) {
	tutorials := make([]Tutorial, 0, limit)
	for rows.Next() {
		entity, err := scanTutorial(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres_tutorial_store_scan_failed: %w", err)
		}
		tutorials = append(tutorials, *entity)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres_tutorial_store_rows_failed: %w", err)
	}

	return tutorials, total, nil
}

/*
Create inserts a new catalogue entry, assigning ID and timestamps.

Parameters:
  - context: context.Context
  - tutorial: *Tutorial

Returns:
  - error: Persistence failures
*/
func (store *PostgresStore) Create(context context.Context, tutorial *Tutorial) error {
	if tutorial.ID == "" {
		tutorial.ID = uuid.New()
	}
	now := time.Now()
	tutorial.CreatedAt = now
	tutorial.UpdatedAt = now

	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		schema.CoreTutorial.Table, tutorialColumns)

	_, err := store.pool.Exec(context, query,
		tutorial.ID,
		tutorial.Slug,
		tutorial.Title,
		tutorial.URL,
		tutorial.Description,
		tutorial.Target,
		tutorial.CreatedAt,
		tutorial.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres_tutorial_store_create_failed: %w", err)
	}

	return nil
}

/*
Update persists changes to an existing catalogue entry. The slug is fixed at
creation and is not part of the update set.

Parameters:
  - context: context.Context
  - tutorial: *Tutorial

Returns:
  - error: apperr.NotFound or persistence failures
*/
func (store *PostgresStore) Update(context context.Context, tutorial *Tutorial) error {
	tutorial.UpdatedAt = time.Now()

	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = $5, %s = $6
		WHERE %s = $1`,
		schema.CoreTutorial.Table,
		schema.CoreTutorial.Title, schema.CoreTutorial.URL,
		schema.CoreTutorial.Description, schema.CoreTutorial.TargetRole,
		schema.CoreTutorial.UpdatedAt,
		schema.CoreTutorial.ID)

	tag, err := store.pool.Exec(context, query,
		tutorial.ID,
		tutorial.Title,
		tutorial.URL,
		tutorial.Description,
		tutorial.Target,
		tutorial.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres_tutorial_store_update_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Tutorial")
	}

	return nil
}

/*
Delete removes a catalogue entry by ID.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: apperr.NotFound or persistence failures
*/
func (store *PostgresStore) Delete(context context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`,
		schema.CoreTutorial.Table, schema.CoreTutorial.ID)

	tag, err := store.pool.Exec(context, query, id)
	if err != nil {
		return fmt.Errorf("postgres_tutorial_store_delete_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Tutorial")
	}

	return nil
}
