package commands

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	intconfig "github.com/leapstack-labs/sqlprism/internal/config"
	"github.com/leapstack-labs/sqlprism/pkg/format"
	"github.com/spf13/cobra"
)

const (
	replPrompt         = "sqlprism> "
	replContinuePrompt = "    ...> "
)

// NewREPLCommand creates the repl command.
func NewREPLCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Interactive formatting shell",
		Long: `Start an interactive shell. Each statement terminated by a semicolon is
formatted and highlighted. Type .help for commands.`,
		Args: cobra.NoArgs,
		RunE: runREPL,
	}
	cmd.Flags().String("history-file", "", "Path to the REPL history file")
	return cmd
}

func runREPL(cmd *cobra.Command, _ []string) error {
	cc := NewCommandContext(cmd)
	session := newREPLSession(cc, cmd.OutOrStdout(), cmd.ErrOrStderr())

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          replPrompt,
		HistoryFile:     cc.Cfg.REPL.HistoryFile,
		AutoComplete:    newREPLCompleter(cc),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "sqlprism REPL")
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(cmd.OutOrStdout())

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			session.reset()
			rl.SetPrompt(session.prompt())
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}

		if session.handleLine(line) {
			break
		}
		rl.SetPrompt(session.prompt())
	}
	return nil
}

// replSession holds the state of one interactive session.
type replSession struct {
	cc        *CommandContext
	out       io.Writer
	errOut    io.Writer
	formatter *format.Formatter
	mode      string
	pending   strings.Builder
}

func newREPLSession(cc *CommandContext, out, errOut io.Writer) *replSession {
	return &replSession{
		cc:        cc,
		out:       out,
		errOut:    errOut,
		formatter: cc.Formatter(),
		mode:      ResolveOutput(cc.Cfg.Output, out),
	}
}

func (s *replSession) prompt() string {
	if s.pending.Len() > 0 {
		return replContinuePrompt
	}
	return replPrompt
}

func (s *replSession) reset() {
	s.pending.Reset()
}

// handleLine processes one input line and reports whether the session
// should end.
func (s *replSession) handleLine(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}

	if s.pending.Len() == 0 && strings.HasPrefix(line, ".") {
		return s.handleDotCommand(line)
	}

	// Accumulate multi-line SQL until semicolon
	s.pending.WriteString(line)
	if !strings.HasSuffix(line, ";") {
		s.pending.WriteString("\n")
		return false
	}

	statement := strings.TrimSuffix(s.pending.String(), ";")
	s.reset()
	if err := s.render(statement); err != nil {
		_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
	}
	return false
}

func (s *replSession) render(statement string) error {
	formatted, err := s.formatter.Format(statement)
	if err != nil {
		return err
	}
	out, err := s.cc.Highlighter(s.mode, s.out).Highlight(formatted)
	if err != nil {
		return err
	}
	writeResult(s.out, out)
	_, _ = fmt.Fprintln(s.out)
	return nil
}

func (s *replSession) handleDotCommand(line string) bool {
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])

	switch command {
	case ".quit", ".exit":
		return true

	case ".help":
		printREPLHelp(s.out)

	case ".mode":
		if len(parts) < 2 {
			_, _ = fmt.Fprintf(s.out, "mode: %s\n", s.mode)
			return false
		}
		mode := strings.ToLower(parts[1])
		if !slices.Contains(intconfig.OutputModes(), mode) {
			_, _ = fmt.Fprintf(s.errOut, "Unknown mode: %s (want %s)\n", mode, strings.Join(intconfig.OutputModes(), ", "))
			return false
		}
		s.mode = ResolveOutput(mode, s.out)
		_, _ = fmt.Fprintf(s.out, "mode: %s\n", s.mode)

	case ".indent":
		if len(parts) < 2 {
			_, _ = fmt.Fprintf(s.out, "indent: %q\n", s.formatter.Indent())
			return false
		}
		indent, err := parseIndent(parts[1])
		if err != nil {
			_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
			return false
		}
		s.formatter = format.New(format.WithIndent(indent), format.WithVocabulary(s.cc.Vocab))
		_, _ = fmt.Fprintf(s.out, "indent: %q\n", indent)

	case ".clear":
		_, _ = fmt.Fprint(s.out, "\033[H\033[2J")

	default:
		_, _ = fmt.Fprintf(s.errOut, "Unknown command: %s (type .help for commands)\n", command)
	}
	return false
}

// parseIndent accepts "tab" or a number of spaces.
func parseIndent(arg string) (string, error) {
	if strings.EqualFold(arg, "tab") {
		return "\t", nil
	}
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > 16 {
		return "", fmt.Errorf("indent must be 'tab' or 1-16 spaces, got %q", arg)
	}
	return strings.Repeat(" ", n), nil
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  .help            Show this help message
  .mode [mode]     Show or set output mode (auto, html, ansi, plain)
  .indent [n|tab]  Show or set the indent (spaces or tab)
  .clear           Clear the screen
  .quit / .exit    Exit the REPL

Tips:
  - Statements must end with a semicolon (;)
  - Use arrow keys to navigate history
  - Tab completion works for keywords and functions
`
	_, _ = fmt.Fprintln(w, help)
}

// newREPLCompleter creates a readline completer for dot-commands and the
// vocabulary.
func newREPLCompleter(cc *CommandContext) *readline.PrefixCompleter {
	items := []readline.PrefixCompleterInterface{
		readline.PcItem(".help"),
		readline.PcItem(".mode",
			readline.PcItem(intconfig.OutputAuto),
			readline.PcItem(intconfig.OutputHTML),
			readline.PcItem(intconfig.OutputANSI),
			readline.PcItem(intconfig.OutputPlain),
		),
		readline.PcItem(".indent", readline.PcItem("tab")),
		readline.PcItem(".clear"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	}
	for _, kw := range cc.Vocab.Keywords() {
		items = append(items, readline.PcItem(kw))
	}
	for _, fn := range cc.Vocab.Functions() {
		items = append(items, readline.PcItem(fn+"("))
	}
	return readline.NewPrefixCompleter(items...)
}
