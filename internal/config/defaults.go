// Package config provides shared configuration defaults and config file
// discovery for sqlprism. It is decoupled from CLI concerns so the server
// and REPL can use the same defaults.
package config

import "time"

// Default configuration values.
const (
	DefaultIndent            = "  "
	DefaultOutput            = "auto"
	DefaultJobs              = 4
	DefaultClassPrefix       = "sql-"
	DefaultPort              = 8765
	DefaultReadHeaderTimeout = 10 * time.Second
	DefaultCacheTTL          = 10 * time.Minute
	DefaultHistoryFile       = ".sqlprism_history"
)

// Output modes for highlighted text.
const (
	OutputAuto  = "auto"  // ansi on a terminal, html otherwise
	OutputHTML  = "html"  // <span class="sql-..."> markup
	OutputANSI  = "ansi"  // terminal colors
	OutputPlain = "plain" // classified but unwrapped
)

// OutputModes lists the accepted output modes.
func OutputModes() []string {
	return []string{OutputAuto, OutputHTML, OutputANSI, OutputPlain}
}

// Defaults returns the default configuration as a flat koanf map.
func Defaults() map[string]interface{} {
	return map[string]interface{}{
		"indent":                     DefaultIndent,
		"output":                     DefaultOutput,
		"verbose":                    false,
		"jobs":                       DefaultJobs,
		"class_prefix":               DefaultClassPrefix,
		"server.port":                DefaultPort,
		"server.read_header_timeout": DefaultReadHeaderTimeout.String(),
		"server.cache_ttl":           DefaultCacheTTL.String(),
		"repl.history_file":          DefaultHistoryFile,
	}
}
