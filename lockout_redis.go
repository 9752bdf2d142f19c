package authcore

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"
)

const lockoutRecordVersion1 = 1

// redisFailedAttemptStore shares failed-attempt state across processes via a
// Redis instance. Record mutation runs under an optimistic transaction so
// concurrent failures from different processes never double-issue a code.
type redisFailedAttemptStore struct {
	redis  redis.UniversalClient
	prefix string
}

func newRedisFailedAttemptStore(client redis.UniversalClient, prefix string) *redisFailedAttemptStore {
	return &redisFailedAttemptStore{redis: client, prefix: prefix}
}

func (s *redisFailedAttemptStore) key(username string) string {
	return s.prefix + ":" + username
}

func (s *redisFailedAttemptStore) Get(ctx context.Context, username string) (*lockoutRecord, error) {
	data, err := s.redis.Get(ctx, s.key(username)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrLockoutUnavailable, err)
	}

	record, err := decodeLockoutRecord(data)
	if err != nil {
		return nil, err
	}
	if record.ExpiresAt != 0 && time.Now().Unix() > record.ExpiresAt {
		_, _ = s.redis.Del(ctx, s.key(username)).Result()
		return nil, nil
	}
	return record, nil
}

func (s *redisFailedAttemptStore) RecordFailure(
	ctx context.Context,
	username string,
	threshold int,
	ttl time.Duration,
	newCode func() (string, error),
) (*lockoutRecord, bool, error) {
	const maxRetries = 4
	key := s.key(username)

	for i := 0; i < maxRetries; i++ {
		var (
			result  *lockoutRecord
			didLock bool
		)
		err := s.redis.Watch(ctx, func(tx *redis.Tx) error {
			record := &lockoutRecord{}
			data, err := tx.Get(ctx, key).Bytes()
			if err != nil && !errors.Is(err, redis.Nil) {
				return err
			}
			if err == nil {
				record, err = decodeLockoutRecord(data)
				if err != nil {
					return err
				}
				if record.ExpiresAt != 0 && time.Now().Unix() > record.ExpiresAt {
					record = &lockoutRecord{}
				}
			}

			if record.locked() {
				result = record
				return nil
			}

			record.Attempts++
			var keyTTL time.Duration
			if int(record.Attempts) >= threshold {
				code, err := newCode()
				if err != nil {
					return err
				}
				record.Code = code
				if ttl > 0 {
					record.ExpiresAt = time.Now().Add(ttl).Unix()
					keyTTL = ttl
				}
				didLock = true
			}

			updated, err := encodeLockoutRecord(record)
			if err != nil {
				return err
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, updated, keyTTL)
				return nil
			})
			if err == nil {
				result = record
			}
			return err
		}, key)

		if errors.Is(err, redis.TxFailedErr) {
			didLock = false
			continue
		}
		if err != nil {
			return nil, false, fmt.Errorf("%w: %v", ErrLockoutUnavailable, err)
		}
		return result, didLock, nil
	}

	return nil, false, fmt.Errorf("%w: failure contention not resolved", ErrLockoutUnavailable)
}

func (s *redisFailedAttemptStore) Reset(ctx context.Context, username string) error {
	if err := s.redis.Del(ctx, s.key(username)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrLockoutUnavailable, err)
	}
	return nil
}

func encodeLockoutRecord(record *lockoutRecord) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte(lockoutRecordVersion1)

	if err := binary.Write(&buf, binary.BigEndian, record.Attempts); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, record.ExpiresAt); err != nil {
		return nil, err
	}

	if len(record.Code) > 65535 {
		return nil, errors.New("lockout code length exceeded")
	}
	if err := binary.Write(&buf, binary.BigEndian, uint16(len(record.Code))); err != nil {
		return nil, err
	}
	buf.WriteString(record.Code)

	return buf.Bytes(), nil
}

func decodeLockoutRecord(data []byte) (*lockoutRecord, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != lockoutRecordVersion1 {
		return nil, errors.New("invalid lockout record version")
	}

	record := &lockoutRecord{}
	if err := binary.Read(reader, binary.BigEndian, &record.Attempts); err != nil {
		return nil, err
	}
	if err := binary.Read(reader, binary.BigEndian, &record.ExpiresAt); err != nil {
		return nil, err
	}

	var codeLen uint16
	if err := binary.Read(reader, binary.BigEndian, &codeLen); err != nil {
		return nil, err
	}
	code := make([]byte, codeLen)
	if _, err := io.ReadFull(reader, code); err != nil {
		return nil, err
	}
	record.Code = string(code)

	return record, nil
}
