package cli

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/ironsheep/image-stitch/internal/config"
	"github.com/ironsheep/image-stitch/internal/server"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP tool server on stdin/stdout",
		Long: `Serve image stitching tools over the Model Context Protocol (JSON-RPC 2.0,
one message per line on stdin/stdout). Logs go to stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// stdout carries the protocol
			log.SetOutput(os.Stderr)
			log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
			if config.Debug() {
				log.Printf("image-stitch MCP server %s (built %s, commit %s)", version, date, commit)
			}

			srv := server.New()
			srv.SetVersion(version)
			return srv.RunIO(cmd.Context(), os.Stdin, os.Stdout)
		},
	}
}
