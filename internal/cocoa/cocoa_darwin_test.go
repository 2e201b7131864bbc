//go:build darwin

package cocoa

import (
	"testing"

	"github.com/mmilitzer/dark-mode-notify/internal/appearance"
	"github.com/mmilitzer/dark-mode-notify/internal/bridge"
	"github.com/mmilitzer/dark-mode-notify/internal/kvo"
	"github.com/mmilitzer/dark-mode-notify/internal/transport"
	"github.com/stretchr/testify/require"
)

func TestObserveNSAppRegistersAndTearsDown(t *testing.T) {
	app := Shared()
	target := app.Target()
	require.NotNil(t, target)

	observersBefore := liveObservers()

	sub, err := kvo.Observe(target, bridge.KeyPath, kvo.OptionNew, func(appearance.Appearance) {})
	require.NoError(t, err)
	require.Equal(t, observersBefore+1, liveObservers())
	require.True(t, transport.Default.Live(sub.Handle()))

	sub.Close()
	require.Equal(t, observersBefore, liveObservers(), "the proxy must be deallocated on close")
	require.False(t, transport.Default.Live(sub.Handle()))
}

func TestWeakRefLoadsLiveApp(t *testing.T) {
	target := Shared().Target()
	require.NotNil(t, target)

	weak := target.Weak()
	defer weak.Free()

	src, release := weak.Load()
	require.NotNil(t, src)
	release()
}
