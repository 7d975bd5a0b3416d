package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ironsheep/image-stitch/internal/imaging"
)

func newStitchCmd() *cobra.Command {
	var opts stitchOpts

	cmd := &cobra.Command{
		Use:   "stitch [files or directories...]",
		Short: "Compose images into one and save it",
		Long: `Compose the given images, in order, into a single image.

Directories are expanded recursively in name order. With --dir the result is
saved as the next free numbered file (1.png, 2.png, ...); otherwise it is
written to --output (default stitched.png).`,
		Example: `  image-stitch stitch a.png b.jpg -o out.png
  image-stitch stitch shots/ -d horizontal -r min -s 10 -b "#202020"
  image-stitch stitch --drop "{/tmp/my shot.png} /tmp/b.png" --dir out --format jpg`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			cfg, err := opts.resolve(cmd)
			if err != nil {
				return err
			}
			layout, err := cfg.Layout.Compile()
			if err != nil {
				return err
			}
			paths, err := opts.inputs(args)
			if err != nil {
				return err
			}
			logger.Debug("Layout", "direction", layout.Direction, "reference", layout.ReferenceEdge,
				"spacing", layout.Spacing, "background", imaging.ColorHex(layout.Background))

			out, err := newSink(cfg, opts.output)
			if err != nil {
				return err
			}

			result, err := composeFiles(ctx, imaging.NewImageCache(), paths, layout)
			if err != nil {
				return err
			}

			path, err := out.write(result.Image)
			if err != nil {
				return err
			}
			logger.Info("Saved", "path", path)
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	opts.bindLayout(cmd)
	opts.bindExport(cmd)
	return cmd
}
