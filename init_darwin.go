//go:build darwin

package main

import "runtime"

func init() {
	// AppKit's run loop has to own the main thread.
	runtime.LockOSThread()
}
