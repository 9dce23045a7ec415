package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fraud-assessment-service/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix = "fraud:session:"
	maxUpdateRetries = 5
)

type RedisSessionRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSessionRepository(client *redis.Client, ttl time.Duration) *RedisSessionRepository {
	return &RedisSessionRepository{client: client, ttl: ttl}
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}

func (r *RedisSessionRepository) Get(ctx context.Context, id string) (*models.AssessmentSession, error) {
	data, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session %s: %w", id, err)
	}
	return decodeSession(id, data)
}

// Save writes the session and refreshes its TTL.
func (r *RedisSessionRepository) Save(ctx context.Context, session *models.AssessmentSession) error {
	data, err := encodeSession(session)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, sessionKey(session.ID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session %s: %w", session.ID, err)
	}
	return nil
}

// Update runs fn inside WATCH/MULTI and retries when another client wrote
// the key in between.
func (r *RedisSessionRepository) Update(ctx context.Context, id string, fn UpdateFunc) (*models.AssessmentSession, error) {
	key := sessionKey(id)
	var updated *models.AssessmentSession

	txf := func(tx *redis.Tx) error {
		var current *models.AssessmentSession
		data, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
		case err != nil:
			return fmt.Errorf("failed to get session %s: %w", id, err)
		default:
			if current, err = decodeSession(id, data); err != nil {
				return err
			}
		}

		next, err := fn(current)
		if err != nil {
			return err
		}
		if data, err = encodeSession(next); err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, r.ttl)
			return nil
		})
		if err == nil {
			updated = next
		}
		return err
	}

	for range maxUpdateRetries {
		err := r.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return updated, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUpdateConflict, id)
}

func (r *RedisSessionRepository) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete session %s: %w", id, err)
	}
	return nil
}
