package loader

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time { return f.t }

func countingLoader(calls *int, err error) Loader[string] {
	return NewFunctionLoader(func(ctx context.Context, key string) (string, error) {
		*calls++
		if err != nil {
			return "", err
		}
		return "value-" + key, nil
	})
}

func TestCachedLoaderHitAndExpiry(t *testing.T) {
	calls := 0
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	cl := NewCachedLoader(countingLoader(&calls, nil), time.Minute)
	cl.now = clock.now

	v, _, err := cl.Load(context.Background(), "7")
	require.NoError(t, err)
	assert.Equal(t, "value-7", v)

	v, ttl, err := cl.Load(context.Background(), "7")
	require.NoError(t, err)
	assert.Equal(t, "value-7", v)
	assert.Equal(t, time.Minute, ttl)
	assert.Equal(t, 1, calls)

	clock.t = clock.t.Add(2 * time.Minute)
	_, _, err = cl.Load(context.Background(), "7")
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestCachedLoaderDoesNotCacheErrors(t *testing.T) {
	calls := 0
	boom := errors.New("boom")
	cl := NewCachedLoader(countingLoader(&calls, boom), time.Minute)

	for i := 0; i < 2; i++ {
		_, _, err := cl.Load(context.Background(), "1")
		assert.ErrorIs(t, err, boom)
	}
	assert.Equal(t, 2, calls)
	assert.Equal(t, 0, cl.Len())
}

func TestCachedLoaderZeroTTLDisablesCaching(t *testing.T) {
	calls := 0
	cl := NewCachedLoader(countingLoader(&calls, nil), 0)

	_, _, _ = cl.Load(context.Background(), "1")
	_, _, _ = cl.Load(context.Background(), "1")
	assert.Equal(t, 2, calls)
}

func TestCachedLoaderInvalidate(t *testing.T) {
	calls := 0
	cl := NewCachedLoader(countingLoader(&calls, nil), time.Hour)

	_, _, _ = cl.Load(context.Background(), "1")
	_, _, _ = cl.Load(context.Background(), "2")
	assert.Equal(t, 2, cl.Len())

	cl.Invalidate("1")
	assert.Equal(t, 1, cl.Len())
	_, _, _ = cl.Load(context.Background(), "1")
	assert.Equal(t, 3, calls)

	cl.Purge()
	assert.Equal(t, 0, cl.Len())
}

func TestBackendTTLOverrides(t *testing.T) {
	backend := LoaderFunc[int](func(ctx context.Context, key string) (int, time.Duration, error) {
		return 42, 5 * time.Second, nil
	})
	cl := NewCachedLoader[int](backend, time.Hour)

	_, ttl, err := cl.Load(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, ttl)
}

func TestCachedLoaderSweepsExpiredOnWrite(t *testing.T) {
	calls := 0
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	cl := NewCachedLoader(countingLoader(&calls, nil), time.Minute)
	cl.now = clock.now
	ctx := context.Background()

	for _, k := range []string{"a", "b", "c"} {
		_, _, err := cl.Load(ctx, k)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, cl.Len())

	clock.t = clock.t.Add(2 * time.Minute)
	_, _, err := cl.Load(ctx, "d")
	require.NoError(t, err)
	assert.Equal(t, 1, cl.Len(), "expired keys are dropped when a new key is written")
}

func TestCachedLoaderMaxEntries(t *testing.T) {
	calls := 0
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	cl := NewCachedLoader(countingLoader(&calls, nil), time.Minute)
	cl.now = clock.now
	cl.MaxEntries = 2
	ctx := context.Background()

	for _, k := range []string{"a", "b", "c"} {
		_, _, err := cl.Load(ctx, k)
		require.NoError(t, err)
		clock.t = clock.t.Add(time.Second)
	}
	assert.Equal(t, 2, cl.Len())
	assert.Equal(t, 3, calls)

	// "a" expired soonest and was evicted; "c" is still cached
	_, _, err := cl.Load(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	_, _, err = cl.Load(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 4, calls)
	assert.Equal(t, 2, cl.Len())
}
