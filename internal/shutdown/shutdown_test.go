package shutdown

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	h := New(5 * time.Second)

	assert.Equal(t, 5*time.Second, h.timeout)
	assert.False(t, h.IsShuttingDown())
	assert.Empty(t, h.hooks)
}

func TestShutdown_RunsHooksInReverseOrder(t *testing.T) {
	h := New(time.Second)

	var mu sync.Mutex
	var order []string
	record := func(name string) Hook {
		return func(ctx context.Context) error {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, name)
			return nil
		}
	}

	h.Register("database", record("database"))
	h.Register("http", record("http"))

	require.NoError(t, h.Shutdown())
	assert.Equal(t, []string{"http", "database"}, order)
	assert.True(t, h.IsShuttingDown())
}

func TestShutdown_JoinsErrors(t *testing.T) {
	h := New(time.Second)
	dbErr := errors.New("close failed")
	httpErr := errors.New("server busy")

	h.Register("database", func(ctx context.Context) error { return dbErr })
	h.Register("http", func(ctx context.Context) error { return httpErr })

	err := h.Shutdown()
	require.Error(t, err)
	assert.ErrorIs(t, err, dbErr)
	assert.ErrorIs(t, err, httpErr)
	assert.Contains(t, err.Error(), "database")
}

func TestShutdown_OnlyOnce(t *testing.T) {
	h := New(time.Second)
	calls := 0
	h.Register("counter", func(ctx context.Context) error {
		calls++
		return nil
	})

	require.NoError(t, h.Shutdown())
	require.NoError(t, h.Shutdown())
	assert.Equal(t, 1, calls)
}

func TestShutdown_Timeout(t *testing.T) {
	h := New(20 * time.Millisecond)
	ran := false

	h.Register("late", func(ctx context.Context) error {
		ran = true
		return nil
	})
	h.Register("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	err := h.Shutdown()
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, ran, "hooks after the deadline are skipped")
}

func TestShutdownChan(t *testing.T) {
	h := New(time.Second)

	select {
	case <-h.ShutdownChan():
		t.Fatal("channel closed before shutdown")
	default:
	}

	require.NoError(t, h.Shutdown())

	select {
	case <-h.ShutdownChan():
	case <-time.After(time.Second):
		t.Fatal("channel not closed after shutdown")
	}
}

func TestWait_ContextDone(t *testing.T) {
	h := New(time.Second)
	called := false
	h.Register("hook", func(ctx context.Context) error {
		called = true
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, h.Wait(ctx))
	assert.True(t, called)
}

func TestWait_TriggerShutdown(t *testing.T) {
	h := New(time.Second)
	done := make(chan error, 1)

	go func() { done <- h.Wait(context.Background()) }()

	// Wait installs its signal handler asynchronously; retry until it is seen
	deadline := time.After(2 * time.Second)
	for {
		h.TriggerShutdown()
		select {
		case err := <-done:
			require.NoError(t, err)
			assert.True(t, h.IsShuttingDown())
			return
		case <-deadline:
			t.Fatal("wait did not return")
		case <-time.After(10 * time.Millisecond):
		}
	}
}
