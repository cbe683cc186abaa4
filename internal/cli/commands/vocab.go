package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/sqlprism/pkg/token"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Vocabulary listing formats.
const (
	vocabFormatTable = "table"
	vocabFormatJSON  = "json"
	vocabFormatYAML  = "yaml"
)

// VocabOptions holds options for the vocab command.
type VocabOptions struct {
	Format string
	Class  string
}

// vocabListing is the machine-readable vocabulary listing.
type vocabListing struct {
	Keywords  []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	Functions []string `json:"functions,omitempty" yaml:"functions,omitempty"`
}

// NewVocabCommand creates the vocab command.
func NewVocabCommand() *cobra.Command {
	opts := &VocabOptions{}

	cmd := &cobra.Command{
		Use:   "vocab",
		Short: "List recognized keywords and functions",
		Long: `List the keywords and function names used for highlighting and keyword
uppercasing, including any added under vocabulary in sqlprism.yaml.`,
		Example: `  sqlprism vocab
  sqlprism vocab --class function --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runVocab(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Format, "format", vocabFormatTable, "Listing format (table|json|yaml)")
	cmd.Flags().StringVar(&opts.Class, "class", "", "Only list one class (keyword|function)")

	_ = cmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{vocabFormatTable, vocabFormatJSON, vocabFormatYAML}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("class", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{token.Keyword.String(), token.Function.String()}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runVocab(cmd *cobra.Command, opts *VocabOptions) error {
	cc := NewCommandContext(cmd)

	var listing vocabListing
	switch opts.Class {
	case "":
		listing = vocabListing{Keywords: cc.Vocab.Keywords(), Functions: cc.Vocab.Functions()}
	case token.Keyword.String():
		listing.Keywords = cc.Vocab.Keywords()
	case token.Function.String():
		listing.Functions = cc.Vocab.Functions()
	default:
		return fmt.Errorf("unknown class %q (want keyword or function)", opts.Class)
	}

	w := cmd.OutOrStdout()
	switch opts.Format {
	case vocabFormatTable:
		renderVocabTable(w, listing)
		return nil
	case vocabFormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(listing)
	case vocabFormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(listing); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q (want table, json or yaml)", opts.Format)
	}
}

func renderVocabTable(w io.Writer, listing vocabListing) {
	titleCaser := cases.Title(language.English)

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Word", "Class"})

	n := 0
	add := func(words []string, class token.Class) {
		sorted := slices.Clone(words)
		slices.Sort(sorted)
		for _, word := range sorted {
			n++
			t.AppendRow(table.Row{n, word, titleCaser.String(class.String())})
		}
	}
	add(listing.Keywords, token.Keyword)
	add(listing.Functions, token.Function)

	t.Render()
	_, _ = fmt.Fprintf(w, "(%d keywords, %d functions)\n", len(listing.Keywords), len(listing.Functions))
}
