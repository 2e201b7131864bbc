package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"
	"github.com/peterbourgon/ff/v3"
)

// EnvPrefix is prepended to upper-cased flag names when reading the environment.
const EnvPrefix = "DARK_MODE_NOTIFY"

// Config holds every option of the watcher.
type Config struct {
	Exit          bool   // act once on the current value, then quit
	Command       string // run "sh -c '<Command> <appearance>'" instead of printing
	OnlyChanges   bool   // skip the startup invocation
	ConfigFile    string
	LogDir        string
	Debug         bool
	NoQuit        bool // don't listen for "quit" on stdin
	PreventAppNap bool

	// CommandPinned is set when -c came from the command line or the
	// environment. Edits to the config file then leave the command alone.
	CommandPinned bool
}

// TriggerInitially reports whether the current appearance should be acted
// on before the first change. --exit always needs a value to act on.
func (c *Config) TriggerInitially() bool {
	return !c.OnlyChanges || c.Exit
}

// DefaultPath is ~/.dark-mode-notify/config.toml, or "" if there is no home.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".dark-mode-notify", "config.toml")
}

// DefaultLogDir is where logs go when no directory is configured.
func DefaultLogDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, "Library", "Logs", "DarkModeNotify")
}

// NewFlagSet binds every option in cfg to a flag set named name.
func NewFlagSet(name string, cfg *Config) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)

	fs.BoolVar(&cfg.Exit, "e", false, "get the current appearance, print it or run the command once, and exit")
	fs.BoolVar(&cfg.Exit, "exit", false, "same as -e")
	fs.StringVar(&cfg.Command, "c", "", "run `command` with the appearance appended instead of printing")
	fs.BoolVar(&cfg.OnlyChanges, "o", false, "don't act on the initial value, only on actual changes")
	fs.BoolVar(&cfg.OnlyChanges, "only-changes", false, "same as -o")
	fs.StringVar(&cfg.ConfigFile, "config", DefaultPath(), "toml config `file`")
	fs.StringVar(&cfg.LogDir, "log-dir", DefaultLogDir(), "directory for the rotating log file")
	fs.BoolVar(&cfg.Debug, "debug", false, "log debug output to stderr")
	fs.BoolVar(&cfg.NoQuit, "no-quit", false, `don't exit when "quit" is typed on stdin`)
	fs.BoolVar(&cfg.PreventAppNap, "prevent-app-nap", false, "keep macOS from throttling the watcher in the background")

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), `Usage: %s [flags]

Watches for macOS light/dark mode changes and prints "light" or "dark" as it
changes. By default it also prints the current appearance at startup.
Use Ctrl-C or type "quit<enter>" to quit.

Every flag can also be set as %s_<FLAG> in the environment or as a key in the
config file.

`, name, EnvPrefix)
		fs.PrintDefaults()
	}

	return fs
}

// Parse reads options from args, then the environment, then the config file.
// Flags win over the environment, which wins over the file.
func Parse(name string, args []string, stderr io.Writer) (*Config, error) {
	cfg := &Config{}
	fs := NewFlagSet(name, cfg)
	fs.SetOutput(stderr)

	err := ff.Parse(fs, args,
		ff.WithEnvVarPrefix(EnvPrefix),
		ff.WithConfigFileFlag("config"),
		ff.WithConfigFileParser(TOMLParser),
		ff.WithAllowMissingConfigFile(true),
	)
	if err != nil {
		return nil, err
	}

	// ff skips empty environment values, so an empty variable pins nothing.
	inEnv := os.Getenv(EnvPrefix+"_C") != ""
	cfg.CommandPinned = inEnv || setInArgs(name, args, "c")
	return cfg, nil
}

// setInArgs reports whether flag was given explicitly in args, which ff has
// already validated.
func setInArgs(name string, args []string, flagName string) bool {
	probe := NewFlagSet(name, &Config{})
	probe.SetOutput(io.Discard)
	if err := probe.Parse(args); err != nil {
		return false
	}

	found := false
	probe.Visit(func(f *flag.Flag) {
		if f.Name == flagName {
			found = true
		}
	})
	return found
}

// TOMLParser is an ff.ConfigFileParser for flat toml files:
//
//	c = "notify-send"
//	only-changes = true
func TOMLParser(r io.Reader, set func(name, value string) error) error {
	var values map[string]any
	if _, err := toml.NewDecoder(r).Decode(&values); err != nil {
		return fmt.Errorf("decoding toml: %w", err)
	}

	// Deterministic order keeps error messages stable.
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		var value string
		switch v := values[k].(type) {
		case string:
			value = v
		case bool, int64, float64:
			value = fmt.Sprint(v)
		default:
			return fmt.Errorf("config key %q: unsupported value of type %T", k, v)
		}
		if err := set(k, value); err != nil {
			return fmt.Errorf("config key %q: %w", k, err)
		}
	}
	return nil
}

// commandFile is the subset of the config file that can change while running.
type commandFile struct {
	Command string `toml:"c"`
}

// LoadCommand re-reads the command from the config file at path.
// A missing file yields an empty command.
func LoadCommand(path string) (string, error) {
	var f commandFile
	if _, err := toml.DecodeFile(path, &f); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return f.Command, nil
}
