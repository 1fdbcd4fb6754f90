package cache

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingCache struct {
	getErr error
	setErr error
}

func (f failingCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, f.getErr
}

func (f failingCache) Set(context.Context, string, []byte, time.Duration) error {
	return f.setErr
}

// memoryHook answers GET and SET from a map so RedisCache can be exercised
// without a server. Other commands fall through to the network.
type memoryHook struct {
	data map[string]string
	args [][]interface{}
}

func (h *memoryHook) DialHook(next redis.DialHook) redis.DialHook { return next }

func (h *memoryHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

func (h *memoryHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		args := cmd.Args()
		h.args = append(h.args, args)
		switch c := cmd.(type) {
		case *redis.StringCmd:
			val, ok := h.data[fmt.Sprint(args[1])]
			if !ok {
				c.SetErr(redis.Nil)
				return redis.Nil
			}
			c.SetVal(val)
			return nil
		case *redis.StatusCmd:
			if cmd.Name() != "set" {
				return next(ctx, cmd)
			}
			value, ok := args[2].([]byte)
			if !ok {
				value = []byte(fmt.Sprint(args[2]))
			}
			h.data[fmt.Sprint(args[1])] = string(value)
			c.SetVal("OK")
			return nil
		}
		return next(ctx, cmd)
	}
}

func TestKey(t *testing.T) {
	a := Key("mortgage", []byte(`{"loanAmount":500000}`))
	b := Key("mortgage", []byte(`{"loanAmount":500000}`))
	c := Key("mortgage", []byte(`{"loanAmount":400000}`))
	d := Key("tax", []byte(`{"loanAmount":500000}`))

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.NotEqual(t, a, d)
	assert.Contains(t, a, "mortgage:")
}

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewMemoryCache(0)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	require.NoError(t, c.Set(ctx, "forever", []byte("x"), 0))

	val, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), val)

	now = now.Add(time.Minute)
	_, ok, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok, "entry should expire at its deadline")

	_, ok, _ = c.Get(ctx, "forever")
	assert.True(t, ok)
}

func TestMemoryCacheEviction(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(2)

	require.NoError(t, c.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), 0))
	require.NoError(t, c.Set(ctx, "c", []byte("3"), 0))

	assert.Equal(t, 2, c.Len())
	_, ok, _ := c.Get(ctx, "c")
	assert.True(t, ok, "newest entry must be kept")

	// Overwriting an existing key never evicts.
	require.NoError(t, c.Set(ctx, "c", []byte("4"), 0))
	assert.Equal(t, 2, c.Len())
}

func TestMemoryCacheCopiesValue(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(0)
	buf := []byte("abc")
	require.NoError(t, c.Set(ctx, "k", buf, 0))
	buf[0] = 'z'

	val, _, _ := c.Get(ctx, "k")
	assert.Equal(t, "abc", string(val))
}

func TestFetch(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(0)
	calls := 0
	compute := func() (map[string]float64, error) {
		calls++
		return map[string]float64{"repaymentAmount": 2997.75}, nil
	}

	first, err := Fetch(ctx, c, "k", time.Minute, compute)
	require.NoError(t, err)
	assert.Equal(t, Miss, first.Outcome)

	second, err := Fetch(ctx, c, "k", time.Minute, compute)
	require.NoError(t, err)
	assert.Equal(t, Hit, second.Outcome)
	assert.Equal(t, first.Value, second.Value)
	assert.Equal(t, 1, calls)
}

func TestFetchComputeError(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(0)
	boom := errors.New("boom")

	_, err := Fetch(ctx, c, "k", time.Minute, func() (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, c.Len(), "failed computations must not be cached")
}

func TestFetchDegradesOnCacheFailure(t *testing.T) {
	ctx := context.Background()
	unavailable := errors.New("connection refused")

	tests := []struct {
		name  string
		cache Cache
	}{
		{"get fails", failingCache{getErr: unavailable}},
		{"set fails", failingCache{setErr: unavailable}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Fetch(ctx, tt.cache, "k", time.Minute, func() (int, error) { return 42, nil })
			require.NoError(t, err)
			assert.Equal(t, 42, got.Value)
			assert.Equal(t, Error, got.Outcome)
			assert.ErrorIs(t, got.CacheErr, unavailable)
		})
	}
}

func TestRedisCacheUnavailable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := NewRedisCache(ctx, RedisConfig{Addr: "127.0.0.1:1"}, "test:")
	assert.Error(t, err)

	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	c := NewRedisCacheWithClient(client, "test:")
	defer func() { _ = c.Close() }()

	_, ok, err := c.Get(ctx, "k")
	assert.Error(t, err)
	assert.False(t, ok)
	assert.Error(t, c.Set(ctx, "k", []byte("v"), time.Minute))
}

func TestRedisCacheGetSet(t *testing.T) {
	ctx := context.Background()
	hook := &memoryHook{data: map[string]string{}}
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	client.AddHook(hook)
	c := NewRedisCacheWithClient(client, "propertycalc:")
	defer func() { _ = c.Close() }()

	_, ok, err := c.Get(ctx, "tax:1")
	require.NoError(t, err, "a missing key is a miss, not an error")
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "tax:1", []byte(`{"taxPaid":4288}`), time.Minute))
	assert.Equal(t, `{"taxPaid":4288}`, hook.data["propertycalc:tax:1"], "keys are stored under the prefix")

	val, ok, err := c.Get(ctx, "tax:1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte(`{"taxPaid":4288}`), val)

	setArgs := hook.args[1]
	require.Len(t, setArgs, 5)
	assert.Equal(t, "ex", setArgs[3])
	assert.EqualValues(t, 60, setArgs[4])
}

func TestFetchThroughRedisCache(t *testing.T) {
	ctx := context.Background()
	hook := &memoryHook{data: map[string]string{}}
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	client.AddHook(hook)
	c := NewRedisCacheWithClient(client, "test:")
	defer func() { _ = c.Close() }()

	calls := 0
	compute := func() (float64, error) {
		calls++
		return 520000, nil
	}

	first, err := Fetch(ctx, c, "borrowing:abc", 0, compute)
	require.NoError(t, err)
	assert.Equal(t, Miss, first.Outcome)

	second, err := Fetch(ctx, c, "borrowing:abc", 0, compute)
	require.NoError(t, err)
	assert.Equal(t, Hit, second.Outcome)
	assert.Equal(t, 520000.0, second.Value)
	assert.Equal(t, 1, calls)
	assert.Contains(t, hook.data, "test:borrowing:abc")
}
