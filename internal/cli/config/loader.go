package config

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	intconfig "github.com/leapstack-labs/sqlprism/internal/config"
	"github.com/spf13/pflag"
)

// EnvPrefix is the prefix of environment variables read as configuration.
const EnvPrefix = "SQLPRISM_"

// loggerKey is used to store logger in context.
type loggerKey struct{}

// configKey is used to store config in context.
type configKey struct{}

// configFileUsed tracks the config file read by the last load.
var configFileUsed string

// flagKeys maps flag names to config keys. Flags not listed here are
// command options, not configuration.
var flagKeys = map[string]string{
	"indent":       "indent",
	"output":       "output",
	"verbose":      "verbose",
	"jobs":         "jobs",
	"class-prefix": "class_prefix",
	"port":         "server.port",
	"history-file": "repl.history_file",
}

// envSections are the nested config sections reachable from env vars.
var envSections = []string{"server_", "repl_", "vocabulary_"}

// envKey transforms SQLPRISM_SERVER_PORT -> server.port and
// SQLPRISM_CLASS_PREFIX -> class_prefix.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	for _, section := range envSections {
		if strings.HasPrefix(key, section) {
			return strings.TrimSuffix(section, "_") + "." + strings.TrimPrefix(key, section)
		}
	}
	return key
}

// LoadConfig loads configuration from defaults, the config file,
// environment variables, and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")
	configFileUsed = ""

	// 1. Load defaults
	if err := k.Load(confmap.Provider(intconfig.Defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Find and load config file
	projectRoot, cfgPath := resolveConfigFile(cfgFile)
	if cfgPath != "" {
		if err := k.Load(file.Provider(cfgPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", cfgPath, err)
		}
		configFileUsed = cfgPath
	}

	// 3. Load environment variables (SQLPRISM_ prefix)
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Load flags (highest priority)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.ProjectRoot = projectRoot

	if cfg.REPL.HistoryFile != "" && !filepath.IsAbs(cfg.REPL.HistoryFile) {
		cfg.REPL.HistoryFile = filepath.Join(projectRoot, cfg.REPL.HistoryFile)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// resolveConfigFile returns the project root and config file path.
// An explicit path wins; otherwise the config is searched upward from the
// working directory.
func resolveConfigFile(explicit string) (root, path string) {
	if explicit != "" {
		if abs, err := filepath.Abs(explicit); err == nil {
			return filepath.Dir(abs), abs
		}
		return filepath.Dir(explicit), explicit
	}

	cwd, err := os.Getwd()
	if err != nil || cwd == "" {
		cwd = "."
	}
	if found := intconfig.FindProjectRoot(cwd); found != "" {
		return found, intconfig.FindConfigFile(found)
	}
	return cwd, ""
}

// GetConfigFileUsed returns the path to the config file being used, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}

// Default returns a configuration holding only the built-in defaults.
func Default() *Config {
	cwd, _ := os.Getwd()
	return &Config{
		Indent:      intconfig.DefaultIndent,
		Output:      intconfig.DefaultOutput,
		Jobs:        intconfig.DefaultJobs,
		ClassPrefix: intconfig.DefaultClassPrefix,
		Server: ServerConfig{
			Port:              intconfig.DefaultPort,
			ReadHeaderTimeout: intconfig.DefaultReadHeaderTimeout,
			CacheTTL:          intconfig.DefaultCacheTTL,
		},
		REPL:        REPLConfig{HistoryFile: intconfig.DefaultHistoryFile},
		ProjectRoot: cwd,
	}
}

// NewLogger returns a text logger writing to w. Verbose enables debug.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// WithLogger stores logger in ctx.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
			return l
		}
	}
	// Return discard logger as safe fallback
	return slog.New(slog.DiscardHandler)
}

// WithConfig stores cfg in ctx.
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext retrieves the config from the command context, falling back
// to the built-in defaults.
func FromContext(ctx context.Context) *Config {
	if ctx != nil {
		if c, ok := ctx.Value(configKey{}).(*Config); ok {
			return c
		}
	}
	return Default()
}
