package commands

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// BuildInfo describes the running binary.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// NewVersionCommand creates the version command.
func NewVersionCommand(info BuildInfo) *cobra.Command {
	var asJSON, short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display sqlprism version and build information.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info.GoVersion = runtime.Version()
			info.Platform = runtime.GOOS + "/" + runtime.GOARCH

			out := cmd.OutOrStdout()
			switch {
			case short:
				_, err := fmt.Fprintln(out, info.Version)
				return err
			case asJSON:
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			}

			_, _ = fmt.Fprintf(out, "sqlprism v%s\n", info.Version)
			_, _ = fmt.Fprintf(out, "commit %s, built %s\n", info.Commit, info.BuildDate)
			_, err := fmt.Fprintf(out, "%s %s\n", info.GoVersion, info.Platform)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print build information as JSON")
	cmd.Flags().BoolVar(&short, "short", false, "Print only the version number")
	cmd.MarkFlagsMutuallyExclusive("json", "short")
	return cmd
}
