package config

import (
	"fmt"
	"slices"
	"strings"

	intconfig "github.com/leapstack-labs/sqlprism/internal/config"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Indent == "" {
		return fmt.Errorf("indent must not be empty")
	}
	if strings.Trim(c.Indent, " \t") != "" {
		return fmt.Errorf("indent must contain only spaces and tabs, got %q", c.Indent)
	}
	if !slices.Contains(intconfig.OutputModes(), c.Output) {
		return fmt.Errorf("unknown output mode %q (want one of %s)", c.Output, strings.Join(intconfig.OutputModes(), ", "))
	}
	if c.Jobs < 1 {
		return fmt.Errorf("jobs must be at least 1, got %d", c.Jobs)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port out of range: %d", c.Server.Port)
	}
	if c.Server.ReadHeaderTimeout < 0 {
		return fmt.Errorf("server read_header_timeout must not be negative")
	}
	if c.Server.CacheTTL < 0 {
		return fmt.Errorf("server cache_ttl must not be negative")
	}
	return nil
}
