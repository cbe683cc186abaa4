package commands

import (
	"github.com/leapstack-labs/sqlprism/internal/server"
	"github.com/spf13/cobra"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the formatting API over HTTP",
		Long: `Start an HTTP server exposing the formatter and highlighter.

Endpoints:
  POST /api/format      {"sql": "...", "indent": "  "}
  POST /api/highlight   {"sql": "..."}
  GET  /api/vocabulary
  GET  /healthz

Transform endpoints answer {"success": true, "result": "..."} or
{"success": false, "error": "..."}.`,
		Example: `  sqlprism serve --port 8765
  curl -s localhost:8765/api/format -d '{"sql": "select a,b from t"}'`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}
	cmd.Flags().Int("port", 0, "Port to listen on")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cc := NewCommandContext(cmd)

	srv := server.New(server.Config{
		Port:              cc.Cfg.Server.Port,
		ReadHeaderTimeout: cc.Cfg.Server.ReadHeaderTimeout,
		CacheTTL:          cc.Cfg.Server.CacheTTL,
		Indent:            cc.Cfg.Indent,
		ClassPrefix:       cc.Cfg.ClassPrefix,
		Vocabulary:        cc.Vocab,
		Logger:            cc.Logger,
	})
	return srv.Serve(cmd.Context())
}
