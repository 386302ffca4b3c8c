package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"wfconsole/internal/config"
	"wfconsole/internal/entity"

	"github.com/redis/go-redis/v9"
)

const _otpKeyPrefix = "otp:"

// RedisCodeStore backs pending verification codes with a shared TTL store so
// codes survive restarts and are visible to every replica.
type RedisCodeStore struct {
	client *redis.Client
}

func NewRedisCodeStore(cfg *config.Redis) (*RedisCodeStore, error) {
	const op = "store.redis.NewRedisCodeStore"

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%s: ping: %w", op, err)
	}

	return &RedisCodeStore{client: client}, nil
}

func (s *RedisCodeStore) Close() error {
	return s.client.Close()
}

func (s *RedisCodeStore) Put(
	ctx context.Context,
	key string,
	record *entity.OTPRecord,
	ttl time.Duration,
) error {
	const op = "store.redis.Put"

	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("%s: marshal record: %w", op, err)
	}

	if err := s.client.Set(ctx, _otpKeyPrefix+key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("%s: set: %w", op, err)
	}
	return nil
}

func (s *RedisCodeStore) Get(ctx context.Context, key string) (*entity.OTPRecord, error) {
	const op = "store.redis.Get"

	payload, err := s.client.Get(ctx, _otpKeyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, entity.ErrDataNotFound
		}
		return nil, fmt.Errorf("%s: get: %w", op, err)
	}

	var record entity.OTPRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, fmt.Errorf("%s: unmarshal record: %w", op, err)
	}
	return &record, nil
}

func (s *RedisCodeStore) Delete(ctx context.Context, key string) error {
	const op = "store.redis.Delete"

	if err := s.client.Del(ctx, _otpKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("%s: del: %w", op, err)
	}
	return nil
}

func (s *RedisCodeStore) IncrementAttempts(ctx context.Context, key string) (int, error) {
	const op = "store.redis.IncrementAttempts"

	record, err := s.Get(ctx, key)
	if err != nil {
		if errors.Is(err, entity.ErrDataNotFound) {
			return 0, fmt.Errorf("%s: %w", op, entity.ErrDataNotFound)
		}
		return 0, err
	}

	record.Attempts++

	payload, err := json.Marshal(record)
	if err != nil {
		return 0, fmt.Errorf("%s: marshal record: %w", op, err)
	}

	// KeepTTL so the attempt counter never extends the code's lifetime.
	if err := s.client.Set(ctx, _otpKeyPrefix+key, payload, redis.KeepTTL).Err(); err != nil {
		return 0, fmt.Errorf("%s: set: %w", op, err)
	}

	return record.Attempts, nil
}
