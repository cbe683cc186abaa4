package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	intconfig "github.com/leapstack-labs/sqlprism/internal/config"
	"github.com/leapstack-labs/sqlprism/internal/testutil"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestConfig_Validate tests the Validate method of Config.
func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(c *Config)
		wantErr   bool
		errSubstr string
	}{
		{
			name:   "defaults",
			modify: func(_ *Config) {},
		},
		{
			name:   "tab indent",
			modify: func(c *Config) { c.Indent = "\t" },
		},
		{
			name:      "empty indent",
			modify:    func(c *Config) { c.Indent = "" },
			wantErr:   true,
			errSubstr: "indent must not be empty",
		},
		{
			name:      "indent with text",
			modify:    func(c *Config) { c.Indent = "->" },
			wantErr:   true,
			errSubstr: "only spaces and tabs",
		},
		{
			name:      "unknown output",
			modify:    func(c *Config) { c.Output = "markdown" },
			wantErr:   true,
			errSubstr: "unknown output mode",
		},
		{
			name:      "zero jobs",
			modify:    func(c *Config) { c.Jobs = 0 },
			wantErr:   true,
			errSubstr: "jobs must be at least 1",
		},
		{
			name:      "port out of range",
			modify:    func(c *Config) { c.Server.Port = 70000 },
			wantErr:   true,
			errSubstr: "port out of range",
		},
		{
			name:      "negative timeout",
			modify:    func(c *Config) { c.Server.ReadHeaderTimeout = -time.Second },
			wantErr:   true,
			errSubstr: "read_header_timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errSubstr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func newFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("indent", "", "")
	flags.StringP("output", "o", "", "")
	flags.BoolP("verbose", "v", false, "")
	flags.Int("jobs", 0, "")
	flags.String("class-prefix", "", "")
	flags.Int("port", 0, "")
	flags.String("history-file", "", "")
	flags.Bool("write", false, "")
	return flags
}

func TestLoadConfig_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	cfg, err := LoadConfig("", newFlags())
	require.NoError(t, err)

	assert.Equal(t, intconfig.DefaultIndent, cfg.Indent)
	assert.Equal(t, intconfig.OutputAuto, cfg.Output)
	assert.Equal(t, intconfig.DefaultJobs, cfg.Jobs)
	assert.Equal(t, intconfig.DefaultClassPrefix, cfg.ClassPrefix)
	assert.Equal(t, intconfig.DefaultPort, cfg.Server.Port)
	assert.Equal(t, intconfig.DefaultReadHeaderTimeout, cfg.Server.ReadHeaderTimeout)
	assert.Equal(t, intconfig.DefaultCacheTTL, cfg.Server.CacheTTL)
	assert.Equal(t, filepath.Join(cfg.ProjectRoot, intconfig.DefaultHistoryFile), cfg.REPL.HistoryFile)
	assert.False(t, cfg.Verbose)
	assert.Empty(t, GetConfigFileUsed())
}

func TestLoadConfig_Precedence(t *testing.T) {
	dir := t.TempDir()
	content := `indent: "\t"
output: html
jobs: 2
class_prefix: "hl-"
vocabulary:
  keywords: [qualify]
  functions: [my_udf]
server:
  port: 9000
  read_header_timeout: 3s
  cache_ttl: 0s
`
	cfgPath := filepath.Join(dir, intconfig.ConfigFileName)
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o600))
	t.Chdir(dir)

	t.Setenv("SQLPRISM_JOBS", "6")
	t.Setenv("SQLPRISM_SERVER_PORT", "9100")

	flags := newFlags()
	require.NoError(t, flags.Parse([]string{"--port", "9200", "--write"}))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)

	// file
	assert.Equal(t, "\t", cfg.Indent)
	assert.Equal(t, intconfig.OutputHTML, cfg.Output)
	assert.Equal(t, "hl-", cfg.ClassPrefix)
	assert.Equal(t, 3*time.Second, cfg.Server.ReadHeaderTimeout)
	assert.Zero(t, cfg.Server.CacheTTL)
	assert.Equal(t, []string{"qualify"}, cfg.Vocabulary.Keywords)
	assert.Equal(t, []string{"my_udf"}, cfg.Vocabulary.Functions)
	// env over file
	assert.Equal(t, 6, cfg.Jobs)
	// flag over env
	assert.Equal(t, 9200, cfg.Server.Port)

	assert.Equal(t, cfgPath, GetConfigFileUsed())
	assert.Equal(t, dir, cfg.ProjectRoot)
}

func TestLoadConfig_UnchangedFlagsDoNotOverride(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, intconfig.ConfigFileName), []byte("output: plain\n"), 0o600))
	t.Chdir(dir)

	cfg, err := LoadConfig("", newFlags())
	require.NoError(t, err)
	assert.Equal(t, intconfig.OutputPlain, cfg.Output)
}

func TestLoadConfig_ExplicitFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("output: ansi\nrepl:\n  history_file: /tmp/h\n"), 0o600))

	cfg, err := LoadConfig(cfgPath, nil)
	require.NoError(t, err)
	assert.Equal(t, intconfig.OutputANSI, cfg.Output)
	assert.Equal(t, "/tmp/h", cfg.REPL.HistoryFile)
	assert.Equal(t, dir, cfg.ProjectRoot)
}

func TestLoadConfig_Invalid(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	flags := newFlags()
	require.NoError(t, flags.Parse([]string{"--output", "markdown"}))

	_, err := LoadConfig("", flags)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestEnvKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"SQLPRISM_INDENT", "indent"},
		{"SQLPRISM_CLASS_PREFIX", "class_prefix"},
		{"SQLPRISM_SERVER_PORT", "server.port"},
		{"SQLPRISM_SERVER_READ_HEADER_TIMEOUT", "server.read_header_timeout"},
		{"SQLPRISM_REPL_HISTORY_FILE", "repl.history_file"},
		{"SQLPRISM_VOCABULARY_KEYWORDS", "vocabulary.keywords"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, envKey(tt.in))
		})
	}
}

func TestBuildVocabulary(t *testing.T) {
	cfg := Default()
	assert.Same(t, cfg.BuildVocabulary(), cfg.BuildVocabulary())

	cfg.Vocabulary.Keywords = []string{"qualify"}
	v := cfg.BuildVocabulary()
	assert.True(t, v.IsKeyword("QUALIFY"))
	assert.True(t, v.IsKeyword("select"))
}

func TestGetLogger(t *testing.T) {
	assert.NotNil(t, GetLogger(context.Background()))

	logger := testutil.NewTestLogger(t)
	ctx := WithLogger(context.Background(), logger)
	assert.Same(t, logger, GetLogger(ctx))
}

func TestFromContext(t *testing.T) {
	assert.Equal(t, intconfig.DefaultIndent, FromContext(context.Background()).Indent)

	cfg := Default()
	cfg.Indent = "\t"
	assert.Same(t, cfg, FromContext(WithConfig(context.Background(), cfg)))
}
