// Package cli provides the command-line interface for sqlprism.
package cli

import (
	"context"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/leapstack-labs/sqlprism/internal/cli/commands"
	"github.com/leapstack-labs/sqlprism/internal/cli/config"
	intconfig "github.com/leapstack-labs/sqlprism/internal/config"
	"github.com/spf13/cobra"
)

// Build information, set with -ldflags "-X".
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "sqlprism",
		Short: "sqlprism - SQL formatter and syntax highlighter",
		Long: `sqlprism reformats SQL text and highlights it for terminals and web pages.

It works lexically, never parsing the statement, so it accepts any dialect
and never rejects malformed SQL. Markup already embedded in the input is
preserved byte for byte.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if skipsConfig(cmd) {
				return nil
			}

			cfg, err := config.LoadConfig(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}

			logger := config.NewLogger(cmd.ErrOrStderr(), cfg.Verbose)
			if configFile := config.GetConfigFileUsed(); configFile != "" {
				logger.Debug("using config file", "path", configFile)
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx = config.WithConfig(ctx, cfg)
			ctx = config.WithLogger(ctx, logger)
			cmd.SetContext(ctx)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Set version template
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{.Name}} {{.Version}}
commit %s, built %s
`, GitCommit, BuildDate))

	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./sqlprism.yaml)")
	rootCmd.PersistentFlags().String("indent", "", "Indent for list items (default two spaces)")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Highlight output mode (auto|html|ansi|plain)")
	rootCmd.PersistentFlags().String("class-prefix", "", "Class name prefix for html output (default \"sql-\")")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")

	// Register completion for output flag
	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return intconfig.OutputModes(), cobra.ShellCompDirectiveNoFileComp
	})

	// Add subcommands
	rootCmd.AddCommand(commands.NewVersionCommand(commands.BuildInfo{
		Version:   Version,
		Commit:    GitCommit,
		BuildDate: BuildDate,
	}))
	rootCmd.AddCommand(commands.NewFormatCommand())
	rootCmd.AddCommand(commands.NewHighlightCommand())
	rootCmd.AddCommand(commands.NewVocabCommand())
	rootCmd.AddCommand(commands.NewREPLCommand())
	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the root command with ctx, which long-running
// commands (serve, format --watch) stop on.
func ExecuteContext(ctx context.Context) error {
	rootCmd := NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	generators := map[string]func(cmd *cobra.Command, w io.Writer) error{
		"bash": func(cmd *cobra.Command, w io.Writer) error { return cmd.Root().GenBashCompletionV2(w, true) },
		"zsh":  func(cmd *cobra.Command, w io.Writer) error { return cmd.Root().GenZshCompletion(w) },
		"fish": func(cmd *cobra.Command, w io.Writer) error { return cmd.Root().GenFishCompletion(w, true) },
		"powershell": func(cmd *cobra.Command, w io.Writer) error {
			return cmd.Root().GenPowerShellCompletionWithDesc(w)
		},
	}
	shells := slices.Sorted(maps.Keys(generators))

	return &cobra.Command{
		Use:   "completion [" + strings.Join(shells, "|") + "]",
		Short: "Generate shell completion scripts",
		Long: `Print a completion script for the given shell to stdout.

  source <(sqlprism completion bash)
  sqlprism completion zsh > "${fpath[1]}/_sqlprism"
  sqlprism completion fish | source`,
		DisableFlagsInUseLine: true,
		ValidArgs:             shells,
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return generators[args[0]](cmd, cmd.OutOrStdout())
		},
	}
}

// skipsConfig reports whether cmd runs without loading configuration.
func skipsConfig(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "help", "completion", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
		return true
	}
	return false
}
