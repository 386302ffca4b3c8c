package store_test

import (
	"context"
	"testing"
	"time"

	"wfconsole/internal/entity"
	"wfconsole/internal/store"
	"wfconsole/pkg/cache"
	mock_logger "wfconsole/pkg/logger/mock"
	mock_metric "wfconsole/pkg/metric/mock"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
)

func newMemoryStore(t *testing.T) *store.MemoryCodeStore {
	t.Helper()
	ctrl := gomock.NewController(t)

	mockLogger := mock_logger.NewMockLogger(ctrl)
	mockMetrics := mock_metric.NewMockCache(ctrl)
	mockMetrics.EXPECT().Hit(gomock.Any()).AnyTimes()
	mockMetrics.EXPECT().Miss(gomock.Any()).AnyTimes()
	mockMetrics.EXPECT().Eviction(gomock.Any(), gomock.Any()).AnyTimes()

	c, err := cache.NewLRUCache[string, *entity.OTPRecord]("otp", 100, mockLogger, mockMetrics)
	require.NoError(t, err)

	return store.NewMemoryCodeStore(c)
}

func TestMemoryCodeStore_PutGet(t *testing.T) {
	ctx := context.Background()
	s := newMemoryStore(t)

	record := &entity.OTPRecord{
		Code:      "123456",
		ExpiresAt: time.Now().Add(5 * time.Minute),
	}
	require.NoError(t, s.Put(ctx, "919876543210", record, 5*time.Minute))

	got, err := s.Get(ctx, "919876543210")
	require.NoError(t, err)
	require.Equal(t, record.Code, got.Code)

	_, err = s.Get(ctx, "unknown")
	require.ErrorIs(t, err, entity.ErrDataNotFound)
}

func TestMemoryCodeStore_Delete(t *testing.T) {
	ctx := context.Background()
	s := newMemoryStore(t)

	record := &entity.OTPRecord{
		Code:      "123456",
		ExpiresAt: time.Now().Add(5 * time.Minute),
	}
	require.NoError(t, s.Put(ctx, "919876543210", record, 5*time.Minute))
	require.NoError(t, s.Delete(ctx, "919876543210"))

	_, err := s.Get(ctx, "919876543210")
	require.ErrorIs(t, err, entity.ErrDataNotFound)

	// Deleting an absent key is not an error.
	require.NoError(t, s.Delete(ctx, "919876543210"))
}

func TestMemoryCodeStore_IncrementAttempts(t *testing.T) {
	ctx := context.Background()
	s := newMemoryStore(t)

	record := &entity.OTPRecord{
		Code:      "123456",
		ExpiresAt: time.Now().Add(5 * time.Minute),
	}
	require.NoError(t, s.Put(ctx, "919876543210", record, 5*time.Minute))

	for want := 1; want <= 3; want++ {
		attempts, err := s.IncrementAttempts(ctx, "919876543210")
		require.NoError(t, err)
		require.Equal(t, want, attempts)
	}

	got, err := s.Get(ctx, "919876543210")
	require.NoError(t, err)
	require.Equal(t, 3, got.Attempts)

	_, err = s.IncrementAttempts(ctx, "unknown")
	require.ErrorIs(t, err, entity.ErrDataNotFound)
}
