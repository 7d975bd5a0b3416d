package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ironsheep/image-stitch/internal/imaging"
	"github.com/ironsheep/image-stitch/internal/watch"
)

func newWatchCmd() *cobra.Command {
	var (
		opts  stitchOpts
		delay time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch <directory>",
		Short: "Recompose a directory whenever its images change",
		Long: `Watch a directory and compose every image in it (name order) on start and
after each change. Output goes to --output or, with --dir, to numbered files.
The output location must be outside the watched directory.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			dir := args[0]

			cfg, err := opts.resolve(cmd)
			if err != nil {
				return err
			}
			layout, err := cfg.Layout.Compile()
			if err != nil {
				return err
			}
			out, err := newSink(cfg, opts.output)
			if err != nil {
				return err
			}
			target := out.output
			if out.exporter != nil {
				target = cfg.Export.Dir
			}
			if inside(dir, target) {
				return fmt.Errorf("output %s is inside the watched directory %s", target, dir)
			}

			w, err := watch.New(dir, delay, logger)
			if err != nil {
				return err
			}

			cache := imaging.NewImageCache()
			return w.Run(ctx, func(ctx context.Context, images, changed []string) {
				for _, p := range changed {
					cache.Evict(p)
				}
				result, err := composeFiles(ctx, cache, images, layout)
				if err != nil {
					logger.Error("Compose failed", "err", err)
					return
				}
				path, err := out.write(result.Image)
				if err != nil {
					logger.Error("Save failed", "err", err)
					return
				}
				logger.Info("Saved", "path", path)
			})
		},
	}

	opts.bindLayout(cmd)
	opts.bindExport(cmd)
	cmd.Flags().DurationVar(&delay, "delay", watch.DefaultDelay, "debounce window for file events")
	return cmd
}

// inside reports whether target is dir or lies beneath it.
func inside(dir, target string) bool {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return false
	}
	absTarget, err := filepath.Abs(target)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(absDir, absTarget)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
