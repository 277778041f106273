package throttle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHostLimiter_FirstCallImmediate(t *testing.T) {
	h := NewHostLimiter(time.Hour)

	start := time.Now()
	require.NoError(t, h.Wait(context.Background(), "acme.com"))
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestHostLimiter_SpacesSameHost(t *testing.T) {
	h := NewHostLimiter(50 * time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	require.NoError(t, h.Wait(ctx, "acme.com"))
	require.NoError(t, h.Wait(ctx, "acme.com"))
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestHostLimiter_HostsIndependent(t *testing.T) {
	h := NewHostLimiter(time.Hour)
	ctx := context.Background()

	require.NoError(t, h.Wait(ctx, "a.com"))
	start := time.Now()
	require.NoError(t, h.Wait(ctx, "b.com"))
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestHostLimiter_ContextCanceled(t *testing.T) {
	h := NewHostLimiter(time.Hour)
	require.NoError(t, h.Wait(context.Background(), "acme.com"))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := h.Wait(ctx, "acme.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "throttle: wait acme.com")
}

func TestHostLimiter_Disabled(t *testing.T) {
	h := NewHostLimiter(0)
	ctx := context.Background()
	for range 5 {
		require.NoError(t, h.Wait(ctx, "acme.com"))
	}
}

func TestSleep(t *testing.T) {
	require.NoError(t, Sleep(context.Background(), 0))
	require.NoError(t, Sleep(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, Sleep(ctx, time.Hour))
}

func TestNoDelay(t *testing.T) {
	start := time.Now()
	require.NoError(t, NoDelay.Sleep(context.Background(), time.Hour))
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}
