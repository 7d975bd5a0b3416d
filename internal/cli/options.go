package cli

import (
	"context"
	"fmt"
	"image"

	"github.com/spf13/cobra"

	"github.com/ironsheep/image-stitch/internal/config"
	"github.com/ironsheep/image-stitch/internal/imaging"
)

// stitchOpts holds the layout and export flags shared by stitch, preview and watch.
// Values only override the preset when the flag was set explicitly.
type stitchOpts struct {
	configPath string // YAML preset file
	direction  string // "vertical" or "horizontal"
	reference  string // "max" or "min"
	spacing    int    // pixels between images
	background string // background colour
	keepSize   bool   // disable proportional scaling
	drop       string // drag-and-drop payload, split by imaging.SplitDropList

	output    string // single output file
	dir       string // numbered batch export directory
	format    string // batch export format
	start     int    // first batch index
	autoReset bool   // reset batch index to 1 after each export
	quality   int    // JPEG/WebP quality
}

func (o *stitchOpts) bindLayout(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&o.configPath, "config", "c", "", "YAML preset file")
	f.StringVarP(&o.direction, "direction", "d", "vertical", "stacking direction: vertical or horizontal")
	f.StringVarP(&o.reference, "reference", "r", "max", "common edge length: max or min of the inputs")
	f.IntVarP(&o.spacing, "spacing", "s", 0, "pixels between consecutive images")
	f.StringVarP(&o.background, "background", "b", "#FFFFFF", "background colour (#RGB, #RRGGBB, #RRGGBBAA or a name)")
	f.BoolVar(&o.keepSize, "keep-size", false, "do not scale images to a common edge")
	f.StringVar(&o.drop, "drop", "", "drag-and-drop payload: space separated paths, {braced} when they contain spaces")
}

func (o *stitchOpts) bindExport(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&o.output, "output", "o", "", "output file (format from extension)")
	f.StringVar(&o.dir, "dir", "", "export into this directory as 1.png, 2.png, ...")
	f.StringVar(&o.format, "format", "png", "format for --dir export: png, jpg, webp, bmp, tiff, gif")
	f.IntVar(&o.start, "start", 1, "first index tried for --dir export")
	f.BoolVar(&o.autoReset, "auto-reset", false, "restart numbering at 1 after each export")
	f.IntVar(&o.quality, "quality", imaging.DefaultQuality, "JPEG/WebP quality (1-100)")
}

// resolve loads the preset (if any) and applies explicitly set flags on top.
func (o *stitchOpts) resolve(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		loaded, err := config.Load(o.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	f := cmd.Flags()
	set := func(name string, apply func()) {
		if fl := f.Lookup(name); fl != nil && fl.Changed {
			apply()
		}
	}
	set("direction", func() { cfg.Layout.Direction = o.direction })
	set("reference", func() { cfg.Layout.ReferenceEdge = o.reference })
	set("spacing", func() { cfg.Layout.Spacing = o.spacing })
	set("background", func() { cfg.Layout.Background = o.background })
	set("keep-size", func() { cfg.Layout.KeepOriginalSize = o.keepSize })
	set("dir", func() { cfg.Export.Dir = o.dir })
	set("format", func() { cfg.Export.Format = o.format })
	set("start", func() { cfg.Export.StartIndex = o.start })
	set("auto-reset", func() { cfg.Export.AutoReset = o.autoReset })
	set("quality", func() { cfg.Export.Quality = o.quality })

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// inputs merges positional arguments with the --drop payload and expands directories.
func (o *stitchOpts) inputs(args []string) ([]string, error) {
	paths := append([]string{}, args...)
	if o.drop != "" {
		paths = append(paths, imaging.SplitDropList(o.drop)...)
	}
	return imaging.ExpandPaths(paths)
}

// composeFiles loads paths through cache and composes them.
func composeFiles(ctx context.Context, cache *imaging.ImageCache, paths []string, layout imaging.LayoutConfig) (*imaging.CompositionResult, error) {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	images, err := imaging.LoadAll(cache, paths)
	if err != nil {
		return nil, err
	}
	for i, img := range images {
		b := img.Bounds()
		logger.Debug("Loaded image", "index", i, "path", paths[i], "width", b.Dx(), "height", b.Dy())
	}

	result, err := imaging.Compose(images, layout)
	if err != nil {
		return nil, fmt.Errorf("failed to compose images: %w", err)
	}
	prog.done("Composed images", "count", len(images), "width", result.Width, "height", result.Height)
	return result, nil
}

// sink writes compositions either to one file or as a numbered batch.
type sink struct {
	output    string
	quality   int
	exporter  *imaging.Exporter
	autoReset bool
}

// newSink picks batch export when a directory is configured and no explicit
// output file was given; otherwise it writes to output (default "stitched.<format>").
func newSink(cfg *config.Config, output string) (*sink, error) {
	s := &sink{output: output, quality: cfg.Export.Quality, autoReset: cfg.Export.AutoReset}
	if output != "" || cfg.Export.Dir == "" {
		if s.output == "" {
			format, _ := imaging.ParseFormat(cfg.Export.Format)
			s.output = "stitched." + format.String()
		}
		return s, nil
	}

	format, err := imaging.ParseFormat(cfg.Export.Format)
	if err != nil {
		return nil, err
	}
	exp, err := imaging.NewExporter(cfg.Export.Dir, format, cfg.Export.StartIndex, cfg.Export.Quality)
	if err != nil {
		return nil, err
	}
	s.exporter = exp
	return s, nil
}

// write saves img and returns the path written.
func (s *sink) write(img image.Image) (string, error) {
	if s.exporter == nil {
		if err := imaging.Save(img, s.output, s.quality); err != nil {
			return "", err
		}
		return s.output, nil
	}

	path, err := s.exporter.Save(img)
	if err != nil {
		return "", err
	}
	if s.autoReset {
		s.exporter.Reset()
	}
	return path, nil
}
