// Package cli implements the image-stitch command-line interface.
//
// Commands:
//   - stitch: compose images and save the result (single file or numbered batch export)
//   - preview: compose images and write a scaled preview
//   - watch: recompose a directory every time its images change
//   - serve: run the MCP tool server on stdin/stdout
//
// All commands accept --verbose (-v) for debug logging; setting
// IMAGE_STITCH_LOG_LEVEL=debug has the same effect. Loggers are carried in the
// command context.
package cli

import (
	"context"
	"fmt"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/ironsheep/image-stitch/internal/config"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// SetVersion sets the version information displayed by --version.
// main calls it with values injected via ldflags at build time.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the image-stitch CLI with the given context.
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   "image-stitch",
		Short: "Concatenate images vertically or horizontally",
		Long: `image-stitch joins a list of images into one, stacked top to bottom or
side by side. Images are scaled proportionally to a common width (vertical)
or height (horizontal), optionally separated by spacing over a background
colour.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose || config.Debug() {
				level = charmlog.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(cmd.ErrOrStderr(), level))
			cmd.SetContext(ctx)
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("image-stitch %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newStitchCmd())
	root.AddCommand(newPreviewCmd())
	root.AddCommand(newWatchCmd())
	root.AddCommand(newServeCmd())

	return root
}
