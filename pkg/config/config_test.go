package config

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestParseDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Parse("test", []string{"-config", filepath.Join(t.TempDir(), "missing.toml")}, io.Discard)
	require.NoError(t, err)
	require.False(t, cfg.Exit)
	require.False(t, cfg.OnlyChanges)
	require.Empty(t, cfg.Command)
	require.True(t, cfg.TriggerInitially())
}

func TestParseShortAndLongFlags(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "missing.toml")

	for _, tt := range []struct {
		name string
		args []string
		want Config
	}{
		{
			name: "short",
			args: []string{"-e", "-o", "-c", "notify-send"},
			want: Config{Exit: true, OnlyChanges: true, Command: "notify-send"},
		},
		{
			name: "long",
			args: []string{"--exit", "--only-changes"},
			want: Config{Exit: true, OnlyChanges: true},
		},
	} {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg, err := Parse("test", append(tt.args, "-config", missing), io.Discard)
			require.NoError(t, err)
			require.Equal(t, tt.want.Exit, cfg.Exit)
			require.Equal(t, tt.want.OnlyChanges, cfg.OnlyChanges)
			require.Equal(t, tt.want.Command, cfg.Command)
		})
	}
}

func TestTriggerInitially(t *testing.T) {
	t.Parallel()

	require.True(t, (&Config{}).TriggerInitially())
	require.False(t, (&Config{OnlyChanges: true}).TriggerInitially())
	require.True(t, (&Config{OnlyChanges: true, Exit: true}).TriggerInitially(), "--exit needs a value even with --only-changes")
}

func TestParseConfigFile(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), `
c = "say"
only-changes = true
debug = true
`)

	cfg, err := Parse("test", []string{"-config", path}, io.Discard)
	require.NoError(t, err)
	require.Equal(t, "say", cfg.Command)
	require.True(t, cfg.OnlyChanges)
	require.True(t, cfg.Debug)
}

func TestFlagsOverrideConfigFile(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), `c = "say"`)

	cfg, err := Parse("test", []string{"-config", path, "-c", "notify-send"}, io.Discard)
	require.NoError(t, err)
	require.Equal(t, "notify-send", cfg.Command)
	require.True(t, cfg.CommandPinned)
}

func TestCommandFromFileIsNotPinned(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), `c = "say"`)

	cfg, err := Parse("test", []string{"-config", path, "-o"}, io.Discard)
	require.NoError(t, err)
	require.Equal(t, "say", cfg.Command)
	require.False(t, cfg.CommandPinned)
}

func TestCommandPinnedByEnvironment(t *testing.T) {
	path := writeFile(t, t.TempDir(), `c = "say"`)

	for _, tt := range []struct {
		name       string
		env        string
		wantCmd    string
		wantPinned bool
	}{
		{name: "set", env: "notify-send", wantCmd: "notify-send", wantPinned: true},
		{name: "empty", env: "", wantCmd: "say", wantPinned: false},
	} {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvPrefix+"_C", tt.env)

			cfg, err := Parse("test", []string{"-config", path}, io.Discard)
			require.NoError(t, err)
			require.Equal(t, tt.wantCmd, cfg.Command)
			require.Equal(t, tt.wantPinned, cfg.CommandPinned)
		})
	}
}

func TestParseUnknownConfigKey(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), `colour = "blue"`)

	_, err := Parse("test", []string{"-config", path}, io.Discard)
	require.Error(t, err)
}

func TestParseBadFlag(t *testing.T) {
	t.Parallel()

	_, err := Parse("test", []string{"--frobnicate"}, io.Discard)
	require.Error(t, err)
}

func TestTOMLParser(t *testing.T) {
	t.Parallel()

	got := map[string]string{}
	err := TOMLParser(strings.NewReader(`
b = "two"
a = true
n = 3
`), func(name, value string) error {
		got[name] = value
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, map[string]string{"a": "true", "b": "two", "n": "3"}, got)
}

func TestTOMLParserRejectsTables(t *testing.T) {
	t.Parallel()

	err := TOMLParser(strings.NewReader("[section]\nkey = 1\n"), func(string, string) error { return nil })
	require.Error(t, err)
}

func TestLoadCommand(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	cmd, err := LoadCommand(filepath.Join(dir, "missing.toml"))
	require.NoError(t, err)
	require.Empty(t, cmd)

	path := writeFile(t, dir, `c = "notify-send"`)
	cmd, err = LoadCommand(path)
	require.NoError(t, err)
	require.Equal(t, "notify-send", cmd)

	writeFile(t, dir, `c = `)
	_, err = LoadCommand(path)
	require.Error(t, err)
}
