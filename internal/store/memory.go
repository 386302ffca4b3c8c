package store

import (
	"context"
	"fmt"
	"time"

	"wfconsole/internal/entity"
	"wfconsole/pkg/cache"
)

// MemoryCodeStore keeps pending verification codes in the process-local TTL
// cache. Codes do not survive a restart and are not shared between replicas;
// suitable for single-instance deployments and tests.
type MemoryCodeStore struct {
	cache cache.Cache[string, *entity.OTPRecord]
}

func NewMemoryCodeStore(c cache.Cache[string, *entity.OTPRecord]) *MemoryCodeStore {
	return &MemoryCodeStore{cache: c}
}

func (s *MemoryCodeStore) Put(
	_ context.Context,
	key string,
	record *entity.OTPRecord,
	ttl time.Duration,
) error {
	s.cache.Put(key, record, ttl)
	return nil
}

func (s *MemoryCodeStore) Get(_ context.Context, key string) (*entity.OTPRecord, error) {
	record, ok := s.cache.Get(key)
	if !ok {
		return nil, entity.ErrDataNotFound
	}
	return record, nil
}

func (s *MemoryCodeStore) Delete(_ context.Context, key string) error {
	s.cache.Remove(key)
	return nil
}

func (s *MemoryCodeStore) IncrementAttempts(_ context.Context, key string) (int, error) {
	const op = "store.memory.IncrementAttempts"

	record, ok := s.cache.Get(key)
	if !ok {
		return 0, fmt.Errorf("%s: %w", op, entity.ErrDataNotFound)
	}

	record.Attempts++
	s.cache.Put(key, record, time.Until(record.ExpiresAt))

	return record.Attempts, nil
}
