package commands

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/leapstack-labs/sqlprism/internal/cli/config"
	"github.com/leapstack-labs/sqlprism/internal/testutil"
	"github.com/spf13/cobra"
)

// executeCommand runs cmd with cfg and a test logger in its context.
func executeCommand(t *testing.T, cmd *cobra.Command, cfg *config.Config, stdin string, args ...string) (string, string, error) {
	t.Helper()
	if cfg == nil {
		cfg = config.Default()
	}
	ctx := config.WithConfig(context.Background(), cfg)
	ctx = config.WithLogger(ctx, testutil.NewTestLogger(t))

	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	err := cmd.ExecuteContext(ctx)
	return out.String(), errOut.String(), err
}

// plainConfig returns the default config with plain highlight output.
func plainConfig() *config.Config {
	cfg := config.Default()
	cfg.Output = "plain"
	return cfg
}
