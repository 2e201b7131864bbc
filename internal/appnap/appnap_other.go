//go:build !darwin

package appnap

// App Nap is macOS only.
func beginActivity(string) (end func(), err error) {
	return func() {}, nil
}
