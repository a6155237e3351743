package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/atomicstack/eman/internal/app"
	"github.com/atomicstack/eman/internal/backend"
)

// Config captures runtime configuration for the application.
type Config struct {
	App     app.Config
	Logging Logging
	Flags   map[string]string
	Args    []string
}

type Logging struct {
	FilePath string
	Trace    bool
}

const (
	envInterval   = "EMAN_INTERVAL"
	envWidth      = "EMAN_WIDTH"
	envHeight     = "EMAN_HEIGHT"
	envShowFooter = "EMAN_FOOTER"
	envRoot       = "EMAN_ROOT"
	envSelection  = "EMAN_SELECTION"
	envTrace      = "EMAN_TRACE"
	envLogFile    = "EMAN_LOG_FILE"
)

const defaultInterval = 100 * time.Millisecond

// Load parses configuration from CLI arguments and environment variables.
func Load() (Config, error) {
	return LoadArgs(os.Args[1:], os.Environ())
}

// LoadArgs allows tests to supply specific args/environment.
func LoadArgs(args []string, environ []string) (Config, error) {
	env := parseEnv(environ)

	fs := flag.NewFlagSet("eman", flag.ContinueOnError)
	fs.SetOutput(new(strings.Builder))

	interval := fs.Duration("interval", envOrDuration(env, envInterval, defaultInterval), "how often the object lists are re-walked")
	width := fs.Int("width", envOrInt(env, envWidth, 0), "desired viewport width in cells (0 uses terminal width)")
	height := fs.Int("height", envOrInt(env, envHeight, 0), "desired viewport height in rows (0 uses terminal height)")
	footer := fs.Bool("footer", envOrBool(env, envShowFooter, true), "show the key help row")
	root := fs.String("root", envOrDefault(env, envRoot, app.RootMenu), "initial screen: menu, maps or programs")
	selection := fs.String("selection", envOrDefault(env, envSelection, app.SelectionIndex), "how the cursor survives a refresh: index or id")
	trace := fs.Bool("trace", envOrBool(env, envTrace, false), "enable verbose JSON trace logging")
	logFile := fs.String("log-file", envOrDefault(env, envLogFile, ""), "path to the log file")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if *width < 0 {
		return Config{}, fmt.Errorf("width must be >= 0 (got %d)", *width)
	}
	if *height < 0 {
		return Config{}, fmt.Errorf("height must be >= 0 (got %d)", *height)
	}

	cfg := Config{
		App: app.Config{
			Interval:   *interval,
			Width:      *width,
			Height:     *height,
			ShowFooter: *footer,
			Root:       strings.ToLower(strings.TrimSpace(*root)),
			Selection:  strings.ToLower(strings.TrimSpace(*selection)),
		},
		Logging: Logging{
			FilePath: *logFile,
			Trace:    *trace,
		},
		Flags: map[string]string{
			"interval":  interval.String(),
			"width":     strconv.Itoa(*width),
			"height":    strconv.Itoa(*height),
			"footer":    strconv.FormatBool(*footer),
			"root":      *root,
			"selection": *selection,
			"trace":     strconv.FormatBool(*trace),
			"logFile":   *logFile,
		},
		Args: append([]string(nil), args...),
	}

	return cfg, nil
}

func parseEnv(environ []string) map[string]string {
	values := make(map[string]string, len(environ))
	for _, entry := range environ {
		key, value, ok := strings.Cut(entry, "=")
		if !ok || key == "" {
			continue
		}
		values[key] = value
	}
	return values
}

func envOrDefault(env map[string]string, key, fallback string) string {
	if v, ok := env[key]; ok {
		return v
	}
	return fallback
}

func envOrInt(env map[string]string, key string, fallback int) int {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrBool(env map[string]string, key string, fallback bool) bool {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrDuration(env map[string]string, key string, fallback time.Duration) time.Duration {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		return fallback
	}
	return parsed
}

// MustLoad returns configuration or exits.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(2)
	}
	return cfg
}

// Validate rejects option values the application cannot act on.
func Validate(cfg Config) error {
	if cfg.App.Interval < backend.MinInterval {
		return fmt.Errorf("interval must be >= %s (got %s)", backend.MinInterval, cfg.App.Interval)
	}
	switch cfg.App.Root {
	case app.RootMenu, app.RootMaps, app.RootPrograms:
	default:
		return fmt.Errorf("root must be one of %s, %s or %s (got %q)", app.RootMenu, app.RootMaps, app.RootPrograms, cfg.App.Root)
	}
	switch cfg.App.Selection {
	case app.SelectionIndex, app.SelectionID:
	default:
		return fmt.Errorf("selection must be %s or %s (got %q)", app.SelectionIndex, app.SelectionID, cfg.App.Selection)
	}
	return nil
}
