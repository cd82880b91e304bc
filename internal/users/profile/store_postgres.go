// Copyright (c) 2026 CampusGate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package profile

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
)

// # Postgres Store

// PostgresStore implements the [Store] interface on the users.profile table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL implementation of the profile [Store].
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// profileColumns matches the scan order in scanProfile.
var profileColumns = strings.Join(schema.UserProfile.Columns(), ", ")

func scanProfile(row pgx.Row) (*Profile, error) {
	entity := &Profile{}
	err := row.Scan(
		&entity.ID,
		&entity.StaffNumber,
		&entity.Email,
		&entity.DisplayName,
		&entity.Role,
		&entity.AuthMethod,
		&entity.IsActive,
		&entity.IsVerified,
		&entity.CreatedAt,
		&entity.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return entity, nil
}

/*
FindByID retrieves a profile by its identity ID.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Profile: Hydrated entity
  - error: apperr.NotFound or database errors
*/
func (store *PostgresStore) FindByID(context context.Context, id string) (*Profile, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		profileColumns, schema.UserProfile.Table, schema.UserProfile.ID)

	entity, err := scanProfile(store.pool.QueryRow(context, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Profile")
		}
		return nil, fmt.Errorf("postgres_profile_store_find_by_id_failed: %w", err)
	}

	return entity, nil
}

/*
List returns a page of profiles ordered by creation time.

Parameters:
  - context: context.Context
  - limit: int
  - offset: int

Returns:
  - []Profile: Page of profiles
  - int: Total count
  - error: Database retrieval failures
*/
func (store *PostgresStore) List(context context.Context, limit, offset int) ([]Profile, int, error) {
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, schema.UserProfile.Table)

	var total int
	if err := store.pool.QueryRow(context, countQuery).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_profile_store_count_failed: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		ORDER BY %s ASC
		LIMIT $1 OFFSET $2`,
		profileColumns, schema.UserProfile.Table, schema.UserProfile.CreatedAt)

	rows, err := store.pool.Query(context, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_profile_store_list_failed: %w", err)
	}
	defer rows.Close()

	profiles := make([]Profile, 0, limit)
	for rows.Next() {
		entity, err := scanProfile(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres_profile_store_scan_failed: %w", err)
		}
		profiles = append(profiles, *entity)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres_profile_store_rows_failed: %w", err)
	}

	return profiles, total, nil
}

/*
Create persists a new profile row.

Parameters:
  - context: context.Context
  - profile: *Profile

Returns:
  - error: Database constraint violations or connectivity errors
*/
func (store *PostgresStore) Create(context context.Context, profile *Profile) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		schema.UserProfile.Table, profileColumns)

	now := time.Now()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now

	_, err := store.pool.Exec(context, query,
		profile.ID,
		profile.StaffNumber,
		profile.Email,
		profile.DisplayName,
		profile.Role,
		profile.AuthMethod,
		profile.IsActive,
		profile.IsVerified,
		profile.CreatedAt,
		profile.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("postgres_profile_store_create_failed: %w", err)
	}

	return nil
}

/*
Update persists mutable profile fields.

Parameters:
  - context: context.Context
  - profile: *Profile

Returns:
  - error: Persistence failures
*/
func (store *PostgresStore) Update(context context.Context, profile *Profile) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = $5, %s = $6, %s = $7
		WHERE %s = $1`,
		schema.UserProfile.Table,
		schema.UserProfile.StaffNumber, schema.UserProfile.DisplayName,
		schema.UserProfile.Role, schema.UserProfile.IsActive,
		schema.UserProfile.IsVerified, schema.UserProfile.UpdatedAt,
		schema.UserProfile.ID)

	profile.UpdatedAt = time.Now()

	tag, err := store.pool.Exec(context, query,
		profile.ID,
		profile.StaffNumber,
		profile.DisplayName,
		profile.Role,
		profile.IsActive,
		profile.IsVerified,
		profile.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("postgres_profile_store_update_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Profile")
	}

	return nil
}

/*
Delete permanently removes a profile and its backing identity.

Description: The only hard delete in the portal, reserved for explicit
super-admin action. The profile row and every refresh session cascade from
the identity via foreign keys.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: apperr.NotFound or execution failures
*/
func (store *PostgresStore) Delete(context context.Context, id string) error {
	// The profile is keyed to its identity row; deleting the identity
	// cascades to the profile and revokes every refresh session with it.
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`,
		schema.UserIdentity.Table, schema.UserIdentity.ID)

	tag, err := store.pool.Exec(context, query, id)
	if err != nil {
		return fmt.Errorf("postgres_profile_store_delete_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Profile")
	}

	return nil
}

/*
MarkVerified updates the profile's status to isverified = true.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: Persistence failures
*/
func (store *PostgresStore) MarkVerified(context context.Context, id string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = TRUE, %s = $2 WHERE %s = $1`,
		schema.UserProfile.Table, schema.UserProfile.IsVerified,
		schema.UserProfile.UpdatedAt, schema.UserProfile.ID)

	if _, err := store.pool.Exec(context, query, id, time.Now()); err != nil {
		return fmt.Errorf("postgres_profile_store_mark_verified_failed: %w", err)
	}

	return nil
}
