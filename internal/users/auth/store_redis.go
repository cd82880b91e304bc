// Copyright (c) 2026 CampusGate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/campusgate/internal/platform/apperr"
	"github.com/taibuivan/campusgate/internal/platform/constants"
)

// RedisMagicLinkRepository implements MagicLinkRepository using Redis.
//
// Tokens are volatile by nature: Redis expiry is the single source of truth
// for link validity, so an unclicked link disappears without any cleanup job.
type RedisMagicLinkRepository struct {
	client *redis.Client
}

// NewMagicLinkRepository creates a new Redis-backed MagicLinkRepository.
func NewMagicLinkRepository(client *redis.Client) *RedisMagicLinkRepository {
	return &RedisMagicLinkRepository{client: client}
}

/*
Set stores a magic-link token with its associated email and TTL.

Parameters:
  - context: context.Context
  - token: string
  - email: string
  - ttl: time.Duration

Returns:
  - error: Execution errors
*/
func (repository *RedisMagicLinkRepository) Set(context context.Context, token string, email string, ttl time.Duration) error {
	key := constants.RedisPrefixMagicLink + token

	if err := repository.client.Set(context, key, email, ttl).Err(); err != nil {
		return fmt.Errorf("redis_magic_link_set_failed: %w", err)
	}

	return nil
}

/*
Get retrieves the email for a given magic-link token.

Description: Returns apperr.NotFound if the token is absent or expired.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - string: Email the link was issued for
  - error: apperr.NotFound or connectivity errors
*/
func (repository *RedisMagicLinkRepository) Get(context context.Context, token string) (string, error) {
	key := constants.RedisPrefixMagicLink + token

	email, err := repository.client.Get(context, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", apperr.NotFound("Magic link is invalid or expired")
		}
		return "", fmt.Errorf("redis_magic_link_get_failed: %w", err)
	}

	return email, nil
}

/*
Delete removes a magic-link token after successful use.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - error: Execution errors
*/
func (repository *RedisMagicLinkRepository) Delete(context context.Context, token string) error {
	key := constants.RedisPrefixMagicLink + token

	if err := repository.client.Del(context, key).Err(); err != nil {
		return fmt.Errorf("redis_magic_link_delete_failed: %w", err)
	}

	return nil
}
