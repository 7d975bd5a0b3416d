package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ironsheep/image-stitch/internal/imaging"
)

func newPreviewCmd() *cobra.Command {
	var (
		opts     stitchOpts
		scale    float64
		fitWidth int
	)

	cmd := &cobra.Command{
		Use:   "preview [files or directories...]",
		Short: "Compose images and write a scaled preview",
		Long: `Compose the given images like stitch, then write a scaled copy for quick
inspection. The scale is clamped to 5%-300%. --fit-width picks the scale that
fits the result into a view of that many pixels.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

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

			result, err := composeFiles(ctx, imaging.NewImageCache(), paths, layout)
			if err != nil {
				return err
			}

			if fitWidth > 0 {
				scale = imaging.FitWidthScale(result.Width, fitWidth)
			}
			scale = imaging.ClampPreviewScale(scale)
			scaled := imaging.ScalePreview(result.Image, scale)

			if err := imaging.Save(scaled, opts.output, 0); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d×%d @ %d%%\n", opts.output, result.Width, result.Height, int(scale*100))
			return nil
		},
	}

	opts.bindLayout(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "preview.png", "preview output file")
	cmd.Flags().Float64Var(&scale, "scale", 0.5, "preview scale factor")
	cmd.Flags().IntVar(&fitWidth, "fit-width", 0, "scale to fit a view this many pixels wide")
	return cmd
}
