package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/leapstack-labs/sqlprism/internal/diff"
	"github.com/leapstack-labs/sqlprism/internal/watch"
	"github.com/leapstack-labs/sqlprism/pkg/format"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// ErrUnformatted is returned by format --check when a file would change.
var ErrUnformatted = errors.New("files are not formatted")

// diffContext is the number of unchanged lines shown around each change.
const diffContext = 3

// FormatOptions holds options for the format command.
type FormatOptions struct {
	Write bool
	Check bool
	Diff  bool
	Watch bool
}

// NewFormatCommand creates the format command.
func NewFormatCommand() *cobra.Command {
	opts := &FormatOptions{}

	cmd := &cobra.Command{
		Use:     "format [files...]",
		Aliases: []string{"fmt"},
		Short:   "Reformat SQL statements",
		Long: `Reformat SQL so each major clause starts on its own line, parenthesized
lists and comma-separated items are indented, and keywords are uppercased.

With no arguments, SQL is read from stdin and written to stdout. Directories
are searched recursively for .sql files.`,
		Example: `  # Format stdin
  echo "select a,b from t" | sqlprism format

  # Rewrite files in place
  sqlprism format -w queries/

  # Fail if anything would change, showing what
  sqlprism format --check --diff queries/

  # Keep files formatted while editing
  sqlprism format -w --watch queries/`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFormat(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.Write, "write", "w", false, "Write result to source files instead of stdout")
	cmd.Flags().BoolVar(&opts.Check, "check", false, "Exit with an error if any file would be reformatted")
	cmd.Flags().BoolVar(&opts.Diff, "diff", false, "With --check, print a diff of each file that would change")
	cmd.Flags().BoolVar(&opts.Watch, "watch", false, "Re-format files when they change")
	cmd.Flags().Int("jobs", 0, "Number of files formatted concurrently")

	return cmd
}

// fileResult is the outcome of formatting one file.
type fileResult struct {
	Path   string
	Mode   fs.FileMode
	Before string
	After  string
}

// Changed reports whether formatting would alter the file.
func (r fileResult) Changed() bool {
	return r.Before != r.After
}

func runFormat(cmd *cobra.Command, args []string, opts *FormatOptions) error {
	cc := NewCommandContext(cmd)
	f := cc.Formatter()

	if len(args) == 0 {
		if opts.Write || opts.Check || opts.Watch {
			return fmt.Errorf("--write, --check and --watch require file arguments")
		}
		input, err := readInput(cmd, "")
		if err != nil {
			return err
		}
		out, err := f.Format(input)
		if err != nil {
			return err
		}
		writeResult(cmd.OutOrStdout(), out)
		return nil
	}

	if opts.Diff && !opts.Check {
		return fmt.Errorf("--diff requires --check")
	}
	if opts.Check && (opts.Write || opts.Watch) {
		return fmt.Errorf("--check cannot be combined with --write or --watch")
	}

	files, err := expandPaths(args)
	if err != nil {
		return err
	}
	cc.Logger.Debug("formatting files", "count", len(files), "jobs", cc.Cfg.Jobs)

	results, err := formatFiles(cmd.Context(), f, files, cc.Cfg.Jobs)
	if err != nil {
		return err
	}

	if opts.Check {
		return reportCheck(cmd.OutOrStdout(), results, opts.Diff)
	}

	for _, r := range results {
		if err := emit(cmd, cc, r, opts.Write); err != nil {
			return err
		}
	}

	if !opts.Watch {
		return nil
	}

	w := watch.New(watch.WithLogger(cc.Logger))
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Watching %d path(s) for changes...\n", len(args))
	return w.Run(cmd.Context(), args, func(path string) {
		r, err := formatFile(f, path)
		if err == nil {
			err = emit(cmd, cc, r, opts.Write)
		}
		if err != nil {
			cc.Logger.Error("format failed", "file", path, "error", err)
		}
	})
}

// formatFiles formats files concurrently, at most jobs at a time. Results
// keep the order of files.
func formatFiles(ctx context.Context, f *format.Formatter, files []string, jobs int) ([]fileResult, error) {
	results := make([]fileResult, len(files))

	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(max(jobs, 1))
	for i, path := range files {
		eg.Go(func() error {
			if err := egctx.Err(); err != nil {
				return err
			}
			r, err := formatFile(f, path)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func formatFile(f *format.Formatter, path string) (fileResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return fileResult{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	data, err := os.ReadFile(path) //nolint:gosec // user-supplied input path
	if err != nil {
		return fileResult{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	out, err := f.Format(string(data))
	if err != nil {
		return fileResult{}, fmt.Errorf("%s: %w", path, err)
	}
	if out != "" {
		out += "\n"
	}

	return fileResult{
		Path:   path,
		Mode:   info.Mode().Perm(),
		Before: string(data),
		After:  out,
	}, nil
}

// emit writes a result back to its file when write is set and the content
// changed, or prints it otherwise.
func emit(cmd *cobra.Command, cc *CommandContext, r fileResult, write bool) error {
	if !write {
		_, err := io.WriteString(cmd.OutOrStdout(), r.After)
		return err
	}
	if !r.Changed() {
		cc.Logger.Debug("already formatted", "file", r.Path)
		return nil
	}
	if err := os.WriteFile(r.Path, []byte(r.After), r.Mode); err != nil {
		return fmt.Errorf("failed to write %s: %w", r.Path, err)
	}
	cc.Logger.Info("formatted", "file", r.Path)
	return nil
}

// reportCheck lists files that would change, with diffs when requested.
func reportCheck(w io.Writer, results []fileResult, showDiff bool) error {
	changed := 0
	for _, r := range results {
		if !r.Changed() {
			continue
		}
		changed++
		if showDiff {
			if err := diff.Write(w, r.Path, diff.Lines(r.Before, r.After), diffContext); err != nil {
				return err
			}
			continue
		}
		_, _ = fmt.Fprintln(w, r.Path)
	}

	if changed > 0 {
		return fmt.Errorf("%d file(s) would be reformatted: %w", changed, ErrUnformatted)
	}
	return nil
}

// expandPaths replaces directories with the .sql files beneath them.
// Duplicates are dropped; explicit files are kept whatever their extension.
func expandPaths(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", arg, err)
		}
		if !info.IsDir() {
			files = append(files, filepath.Clean(arg))
			continue
		}

		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && filepath.Ext(path) == ".sql" {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", arg, err)
		}
	}

	seen := make(map[string]bool, len(files))
	files = slices.DeleteFunc(files, func(p string) bool {
		if seen[p] {
			return true
		}
		seen[p] = true
		return false
	})
	return files, nil
}
