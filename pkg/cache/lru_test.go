package cache_test

import (
	"sync"
	"testing"
	"time"

	"wfconsole/pkg/cache"
	mock_logger "wfconsole/pkg/logger/mock"
	mock_metric "wfconsole/pkg/metric/mock"

	"github.com/golang/mock/gomock"
)

const _testCacheName = "test"

func newTestCache(t *testing.T, capacity int) *cache.LRUCache[int, string] {
	t.Helper()
	ctrl := gomock.NewController(t)

	mockLogger := mock_logger.NewMockLogger(ctrl)
	mockMetrics := mock_metric.NewMockCache(ctrl)

	mockMetrics.EXPECT().Hit(gomock.Any()).AnyTimes()
	mockMetrics.EXPECT().Miss(gomock.Any()).AnyTimes()
	mockMetrics.EXPECT().Eviction(gomock.Any(), gomock.Any()).AnyTimes()
	mockMetrics.EXPECT().Size(gomock.Any(), gomock.Any()).AnyTimes()

	c, err := cache.NewLRUCache[int, string](_testCacheName, capacity, mockLogger, mockMetrics)
	if err != nil {
		t.Fatalf("NewLRUCache() error = %v", err)
	}
	return c
}

type cacheOperation struct {
	op    string
	key   int
	value string
	ttl   time.Duration
}

func TestLRUCache_GetPut(t *testing.T) {
	key1, key2, key3 := 1, 2, 3
	value1, value2, value3 := "one", "two", "three"

	testCases := []struct {
		desc     string
		capacity int
		ops      []cacheOperation
		results  map[int]struct {
			value string
			ok    bool
		}
		len int
	}{
		{
			desc:     "BasicGetPut",
			capacity: 2,
			ops: []cacheOperation{
				{"put", key1, value1, 0},
				{"put", key2, value2, 0},
			},
			results: map[int]struct {
				value string
				ok    bool
			}{
				key1: {value1, true},
				key2: {value2, true},
			},
			len: 2,
		},
		{
			desc:     "LRUEviction",
			capacity: 2,
			ops: []cacheOperation{
				{"put", key1, value1, 0},
				{"put", key2, value2, 0},
				{"get", key1, "", 0},
				{"put", key3, value3, 0},
			},
			results: map[int]struct {
				value string
				ok    bool
			}{
				key1: {value1, true},
				key2: {"", false},
				key3: {value3, true},
			},
			len: 2,
		},
		{
			desc:     "UpdateExistingKey",
			capacity: 2,
			ops: []cacheOperation{
				{"put", key1, value1, 0},
				{"put", key2, value2, 0},
				{"put", key1, value3, 0},
			},
			results: map[int]struct {
				value string
				ok    bool
			}{
				key1: {value3, true},
			},
			len: 2,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			t.Parallel()

			c := newTestCache(t, tc.capacity)

			for _, op := range tc.ops {
				switch op.op {
				case "put":
					c.Put(op.key, op.value, op.ttl)
				case "get":
					c.Get(op.key)
				}
			}

			for key, want := range tc.results {
				got, ok := c.Get(key)
				if got != want.value || ok != want.ok {
					t.Errorf("Get(%d) = %q, %v; want %q, %v",
						key, got, ok, want.value, want.ok)
				}
			}

			if c.Len() != tc.len {
				t.Errorf("Len() = %d; want %d", c.Len(), tc.len)
			}
		})
	}
}

func TestLRUCache_TTL(t *testing.T) {
	testCases := []struct {
		desc  string
		ttl   time.Duration
		sleep time.Duration
		ok    bool
	}{
		{"TTLNotExpired", 200 * time.Millisecond, 100 * time.Millisecond, true},
		{"TTLExpired", 100 * time.Millisecond, 200 * time.Millisecond, false},
		{"NoTTL", 0, 300 * time.Millisecond, true},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			t.Parallel()

			c := newTestCache(t, 1)
			c.Put(1, "one", tc.ttl)
			time.Sleep(tc.sleep)

			if _, ok := c.Get(1); ok != tc.ok {
				t.Errorf("Get() ok = %v; want %v", ok, tc.ok)
			}
		})
	}
}

func TestLRUCache_Remove(t *testing.T) {
	t.Parallel()

	c := newTestCache(t, 2)
	c.Put(1, "one", 0)

	if !c.Remove(1) {
		t.Error("Remove(1) = false; want true")
	}
	if c.Remove(1) {
		t.Error("Remove(1) second call = true; want false")
	}
	if c.Has(1) {
		t.Error("Has(1) = true after Remove")
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d; want 0", c.Len())
	}
}

func TestLRUCache_Has(t *testing.T) {
	testCases := []struct {
		desc     string
		insert   bool
		ttl      time.Duration
		sleep    time.Duration
		expected bool
	}{
		{"ValidKey", true, 0, 0, true},
		{"ExpiredKey", true, 100 * time.Millisecond, 200 * time.Millisecond, false},
		{"NonExistentKey", false, 0, 0, false},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			t.Parallel()

			c := newTestCache(t, 1)
			if tc.insert {
				c.Put(1, "one", tc.ttl)
			}

			time.Sleep(tc.sleep)
			if got := c.Has(1); got != tc.expected {
				t.Errorf("Has() = %v; want %v", got, tc.expected)
			}
		})
	}
}

func TestLRUCache_OnEvicted(t *testing.T) {
	testCases := []struct {
		desc        string
		capacity    int
		ops         []int
		wantPurge   bool
		evictedKeys []int
		finalLen    int
	}{
		{
			desc:        "SingleEviction",
			capacity:    2,
			ops:         []int{1, 2, 3},
			evictedKeys: []int{1},
			finalLen:    2,
		},
		{
			desc:        "MultipleEvictions",
			capacity:    1,
			ops:         []int{1, 2, 3},
			evictedKeys: []int{1, 2},
			finalLen:    1,
		},
		{
			desc:        "PurgeEvictions",
			capacity:    2,
			ops:         []int{1, 2},
			wantPurge:   true,
			evictedKeys: []int{1, 2},
			finalLen:    0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			t.Parallel()

			var (
				mu          sync.Mutex
				evictedKeys []int
			)

			c := newTestCache(t, tc.capacity)
			c.SetOnEvicted(func(key int, _ string) {
				mu.Lock()
				defer mu.Unlock()
				evictedKeys = append(evictedKeys, key)
			})

			for _, key := range tc.ops {
				c.Put(key, "value", 0)
			}

			if tc.wantPurge {
				c.Purge()
			}

			mu.Lock()
			defer mu.Unlock()

			if len(evictedKeys) != len(tc.evictedKeys) {
				t.Fatalf("Evicted count = %d; want %d",
					len(evictedKeys), len(tc.evictedKeys))
			}

			for i, key := range evictedKeys {
				if key != tc.evictedKeys[i] {
					t.Errorf("evictedKeys[%d] = %d; want %d", i, key, tc.evictedKeys[i])
				}
			}

			if c.Len() != tc.finalLen {
				t.Errorf("Final Len() = %d; want %d", c.Len(), tc.finalLen)
			}
		})
	}
}

func TestLRUCache_NewLRUCache(t *testing.T) {
	testCases := []struct {
		desc      string
		capacity  int
		wantError bool
	}{
		{"NegativeCapacity", -1, true},
		{"ZeroCapacity", 0, true},
		{"PositiveCapacity", 10, false},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)

			mockLogger := mock_logger.NewMockLogger(ctrl)
			mockMetrics := mock_metric.NewMockCache(ctrl)

			_, err := cache.NewLRUCache[int, string](
				_testCacheName, tc.capacity, mockLogger, mockMetrics)
			if (err != nil) != tc.wantError {
				t.Errorf("NewLRUCache() error = %v, wantError %v", err, tc.wantError)
			}
		})
	}
}
