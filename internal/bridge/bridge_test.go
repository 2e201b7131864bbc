package bridge_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/mmilitzer/dark-mode-notify/internal/appearance"
	"github.com/mmilitzer/dark-mode-notify/internal/bridge"
	"github.com/mmilitzer/dark-mode-notify/internal/bridge/bridgetest"
	"github.com/mmilitzer/dark-mode-notify/internal/kvo"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu  sync.Mutex
	got []appearance.Appearance
}

func (r *recorder) record(a appearance.Appearance) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, a)
}

func (r *recorder) values() []appearance.Appearance {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]appearance.Appearance(nil), r.got...)
}

func runAsync(ctx context.Context, host bridge.Host, opts bridge.Options, cb func(appearance.Appearance)) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- bridge.Run(ctx, host, opts, cb)
	}()
	return errCh
}

func TestRunTriggersInitiallyThenOnTransitions(t *testing.T) {
	t.Parallel()

	host := bridgetest.NewHost(appearance.Dark)
	rec := &recorder{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := runAsync(ctx, host, bridge.Options{TriggerInitially: true}, rec.record)
	<-host.Running()

	require.Equal(t, []appearance.Appearance{appearance.Dark}, rec.values())

	host.Set(appearance.Light)
	host.Set(appearance.Dark)
	require.Equal(t, []appearance.Appearance{appearance.Dark, appearance.Light, appearance.Dark}, rec.values())

	cancel()
	require.NoError(t, <-errCh)

	stats := host.Source.Stats()
	require.Equal(t, 1, stats.Created)
	require.Equal(t, 1, stats.Removed, "stopping the loop must unregister the observer")
	require.Equal(t, 1, stats.Released)
	require.Equal(t, 1, host.Backgrounds())
}

func TestRunOnlyChangesWithoutTransition(t *testing.T) {
	t.Parallel()

	host := bridgetest.NewHost(appearance.Dark)
	rec := &recorder{}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	require.NoError(t, bridge.Run(ctx, host, bridge.Options{}, rec.record))
	require.Empty(t, rec.values())
	require.Equal(t, 0, host.Source.Stats().Registered)
}

func TestRunInvalidTarget(t *testing.T) {
	t.Parallel()

	host := bridgetest.NewHost(appearance.Dark).WithoutTarget()
	rec := &recorder{}

	err := bridge.Run(context.Background(), host, bridge.Options{TriggerInitially: true}, rec.record)
	require.ErrorIs(t, err, kvo.ErrInvalidTarget)
	require.Empty(t, rec.values(), "startup failure must not invoke the callback")

	select {
	case <-host.Running():
		t.Fatal("run loop must not start after a failed observe")
	default:
	}
}

func TestRunStopFromCallback(t *testing.T) {
	t.Parallel()

	host := bridgetest.NewHost(appearance.Light)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calls := 0
	err := bridge.Run(ctx, host, bridge.Options{TriggerInitially: true}, func(appearance.Appearance) {
		calls++
		cancel()
	})
	require.NoError(t, err)
	require.Equal(t, 1, calls)

	stats := host.Source.Stats()
	require.Equal(t, 1, stats.Removed, "run-once mode goes through the same teardown")
	require.Equal(t, 1, stats.Released)
}

func TestRunStopAfterTransitionFromCallback(t *testing.T) {
	t.Parallel()

	host := bridgetest.NewHost(appearance.Light)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rec := &recorder{}
	errCh := runAsync(ctx, host, bridge.Options{}, func(a appearance.Appearance) {
		rec.record(a)
		cancel()
	})
	<-host.Running()

	host.Set(appearance.Dark)
	require.NoError(t, <-errCh)
	require.Equal(t, []appearance.Appearance{appearance.Dark}, rec.values())
}
