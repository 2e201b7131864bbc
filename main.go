// Command dark-mode-notify watches for macOS light/dark mode changes.
//
// It prints "light" or "dark" as the system appearance changes, or runs a
// command with the appearance as its last argument. See -h for the flags.
package main

import (
	"context"
	"os"

	"github.com/mmilitzer/dark-mode-notify/internal/cli"
	"github.com/mmilitzer/dark-mode-notify/internal/cocoa"
)

func main() {
	os.Exit(cli.Run(context.Background(), os.Args[1:], cocoa.Shared(), os.Stdin, os.Stdout, os.Stderr))
}
