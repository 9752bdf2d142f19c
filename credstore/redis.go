package credstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "cred"

// Redis is a Store backed by a Redis instance, for deployments where several
// processes share one credential database.
type Redis struct {
	redis  redis.UniversalClient
	prefix string
}

// NewRedis creates a Redis-backed store. An empty prefix defaults to "cred".
func NewRedis(client redis.UniversalClient, prefix string) *Redis {
	if prefix == "" {
		prefix = redisKeyPrefix
	}
	return &Redis{redis: client, prefix: prefix}
}

func (s *Redis) key(username string) string {
	return s.prefix + ":" + username
}

// Add persists a new record, failing with ErrDuplicateUser if the username is
// already present. SetNX makes the duplicate check atomic.
func (s *Redis) Add(ctx context.Context, record *Record) error {
	encoded, err := encodeRecord(record)
	if err != nil {
		return err
	}

	created, err := s.redis.SetNX(ctx, s.key(record.Username), encoded, 0).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if !created {
		return ErrDuplicateUser
	}
	return nil
}

// Get returns the record for username or ErrNotFound.
func (s *Redis) Get(ctx context.Context, username string) (*Record, error) {
	data, err := s.redis.Get(ctx, s.key(username)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return decodeRecord(data)
}

// Update merges the supplied fields into an existing record under an
// optimistic transaction, retrying on concurrent writers.
func (s *Redis) Update(ctx context.Context, username string, fields Fields) (bool, error) {
	const maxRetries = 4
	key := s.key(username)

	for i := 0; i < maxRetries; i++ {
		var found bool
		err := s.redis.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, key).Bytes()
			if err != nil {
				return err
			}

			record, err := decodeRecord(data)
			if err != nil {
				return err
			}
			record.apply(fields)

			updated, err := encodeRecord(record)
			if err != nil {
				return err
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, updated, 0)
				return nil
			})
			if err == nil {
				found = true
			}
			return err
		}, key)

		if err == redis.TxFailedErr {
			continue
		}
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return false, nil
			}
			return false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		return found, nil
	}

	return false, fmt.Errorf("%w: update contention not resolved", ErrStoreUnavailable)
}

// Delete removes the record and reports whether one existed.
func (s *Redis) Delete(ctx context.Context, username string) (bool, error) {
	n, err := s.redis.Del(ctx, s.key(username)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return n > 0, nil
}
