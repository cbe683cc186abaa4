package commands

import (
	"github.com/spf13/cobra"
)

// HighlightOptions holds options for the highlight command.
type HighlightOptions struct {
	Format bool
}

// NewHighlightCommand creates the highlight command.
func NewHighlightCommand() *cobra.Command {
	opts := &HighlightOptions{}

	cmd := &cobra.Command{
		Use:   "highlight [file]",
		Short: "Syntax-highlight SQL",
		Long: `Classify SQL into comments, strings, numbers, keywords and functions and
render each class distinctly.

Output modes (--output):
  auto   ansi on a terminal, html otherwise
  html   <span class="sql-keyword">...</span> wrappers
  ansi   terminal colors
  plain  the input unchanged

HTML tags and <!-- comments --> already present in the input are passed
through untouched. With no file argument, SQL is read from stdin.`,
		Example: `  # Colorize a query in the terminal
  sqlprism highlight query.sql

  # Produce HTML for a web page, formatting first
  sqlprism highlight --format -o html query.sql > query.html`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHighlight(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.Format, "format", "f", false, "Format the SQL before highlighting")

	return cmd
}

func runHighlight(cmd *cobra.Command, args []string, opts *HighlightOptions) error {
	cc := NewCommandContext(cmd)

	path := ""
	if len(args) > 0 {
		path = args[0]
	}
	sql, err := readInput(cmd, path)
	if err != nil {
		return err
	}

	if opts.Format {
		if sql, err = cc.Formatter().Format(sql); err != nil {
			return err
		}
	}

	out, err := cc.Highlighter(cc.Cfg.Output, cmd.OutOrStdout()).Highlight(sql)
	if err != nil {
		return err
	}
	writeResult(cmd.OutOrStdout(), out)
	return nil
}
