// Package config provides configuration management for the sqlprism CLI.
//
// Values are layered with koanf: built-in defaults, then sqlprism.yaml, then
// SQLPRISM_* environment variables, then explicitly set flags.
package config

import (
	"time"

	"github.com/leapstack-labs/sqlprism/pkg/token"
)

// Config holds all CLI configuration options.
type Config struct {
	Indent      string           `koanf:"indent"`
	Output      string           `koanf:"output"`
	Verbose     bool             `koanf:"verbose"`
	Jobs        int              `koanf:"jobs"`
	ClassPrefix string           `koanf:"class_prefix"`
	Vocabulary  VocabularyConfig `koanf:"vocabulary"`
	Server      ServerConfig     `koanf:"server"`
	REPL        REPLConfig       `koanf:"repl"`

	// ProjectRoot is the directory holding the config file, or the working
	// directory when none was found.
	ProjectRoot string `koanf:"-"`
}

// VocabularyConfig lists words added to the built-in vocabulary.
type VocabularyConfig struct {
	Keywords  []string `koanf:"keywords"`
	Functions []string `koanf:"functions"`
}

// ServerConfig holds configuration for the HTTP API.
type ServerConfig struct {
	Port              int           `koanf:"port"`
	ReadHeaderTimeout time.Duration `koanf:"read_header_timeout"`
	CacheTTL          time.Duration `koanf:"cache_ttl"`
}

// REPLConfig holds configuration for the interactive shell.
type REPLConfig struct {
	HistoryFile string `koanf:"history_file"`
}

// BuildVocabulary returns the built-in vocabulary extended with any
// configured words.
func (c *Config) BuildVocabulary() *token.Vocabulary {
	return token.Default.With(c.Vocabulary.Keywords, c.Vocabulary.Functions)
}
