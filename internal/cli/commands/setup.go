package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/leapstack-labs/sqlprism/internal/cli/config"
	intconfig "github.com/leapstack-labs/sqlprism/internal/config"
	"github.com/leapstack-labs/sqlprism/pkg/format"
	"github.com/leapstack-labs/sqlprism/pkg/highlight"
	"github.com/leapstack-labs/sqlprism/pkg/token"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg    *config.Config
	Logger *slog.Logger
	Vocab  *token.Vocabulary
}

// NewCommandContext builds a CommandContext from the command's context.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := config.FromContext(cmd.Context())
	return &CommandContext{
		Cfg:    cfg,
		Logger: config.GetLogger(cmd.Context()),
		Vocab:  cfg.BuildVocabulary(),
	}
}

// Formatter returns a formatter using the configured indent and vocabulary.
func (c *CommandContext) Formatter() *format.Formatter {
	return format.New(format.WithIndent(c.Cfg.Indent), format.WithVocabulary(c.Vocab))
}

// Highlighter returns a highlighter rendering for w in the given output
// mode.
func (c *CommandContext) Highlighter(mode string, w io.Writer) *highlight.Highlighter {
	return highlight.New(
		highlight.WithVocabulary(c.Vocab),
		highlight.WithRenderer(newRenderer(ResolveOutput(mode, w), c.Cfg.ClassPrefix, w)),
	)
}

// ResolveOutput maps the auto mode to ansi on a terminal and html
// otherwise. Other modes are returned unchanged.
func ResolveOutput(mode string, w io.Writer) string {
	if mode != intconfig.OutputAuto {
		return mode
	}
	if isTerminal(w) {
		return intconfig.OutputANSI
	}
	return intconfig.OutputHTML
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func newRenderer(mode, prefix string, w io.Writer) highlight.Renderer {
	switch mode {
	case intconfig.OutputANSI:
		if isTerminal(w) {
			return highlight.NewANSIRenderer(w)
		}
		// Forced colors when piped.
		return highlight.NewANSIRendererWithProfile(termenv.ANSI256)
	case intconfig.OutputPlain:
		return highlight.PlainRenderer{}
	default:
		return highlight.HTMLRenderer{Prefix: prefix}
	}
}

// readInput reads the named file, or stdin when path is "" or "-".
func readInput(cmd *cobra.Command, path string) (string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // user-supplied input path
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

// writeResult writes s ending in a newline, or nothing when s is empty.
func writeResult(w io.Writer, s string) {
	if s == "" {
		return
	}
	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	_, _ = io.WriteString(w, s)
}
