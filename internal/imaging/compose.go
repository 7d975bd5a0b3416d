package imaging

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"strings"

	"github.com/disintegration/imaging"
)

// Errors returned by Plan and Compose. Callers should match them with errors.Is;
// the returned error carries details about the offending input.
var (
	// ErrEmptyInput is returned when no images are supplied.
	ErrEmptyInput = errors.New("no images to compose")

	// ErrInvalidImage is returned for a nil image or one with zero width or height.
	ErrInvalidImage = errors.New("invalid image")

	// ErrInvalidConfig is returned for an unknown direction or reference edge,
	// or a negative spacing.
	ErrInvalidConfig = errors.New("invalid layout config")

	// ErrCanvasTooLarge is returned when the canvas would exceed MaxCanvasPixels.
	ErrCanvasTooLarge = errors.New("canvas too large")
)

// MaxCanvasPixels bounds the area of a composed canvas (1 GiB as NRGBA).
const MaxCanvasPixels = 1 << 28

// Direction is the axis along which images are concatenated.
type Direction int

const (
	// Vertical stacks images top to bottom. All images share a common width.
	Vertical Direction = iota
	// Horizontal places images left to right. All images share a common height.
	Horizontal
)

// String returns the lower-case name used by flags, config files and tools.
func (d Direction) String() string {
	switch d {
	case Vertical:
		return "vertical"
	case Horizontal:
		return "horizontal"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// ParseDirection parses "vertical" or "horizontal" (case-insensitive).
// The short forms "v" and "h" are accepted as well.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "vertical", "v":
		return Vertical, nil
	case "horizontal", "h":
		return Horizontal, nil
	default:
		return 0, fmt.Errorf("%w: unknown direction %q", ErrInvalidConfig, s)
	}
}

// ReferenceEdge selects which input edge length becomes the common target.
type ReferenceEdge int

const (
	// EdgeMax scales every image to the largest cross-axis length.
	EdgeMax ReferenceEdge = iota
	// EdgeMin scales every image to the smallest cross-axis length.
	EdgeMin
)

// String returns "max" or "min".
func (e ReferenceEdge) String() string {
	switch e {
	case EdgeMax:
		return "max"
	case EdgeMin:
		return "min"
	default:
		return fmt.Sprintf("ReferenceEdge(%d)", int(e))
	}
}

// ParseReferenceEdge parses "max" or "min" (case-insensitive).
func ParseReferenceEdge(s string) (ReferenceEdge, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "max":
		return EdgeMax, nil
	case "min":
		return EdgeMin, nil
	default:
		return 0, fmt.Errorf("%w: unknown reference edge %q", ErrInvalidConfig, s)
	}
}

// LayoutConfig controls how Compose arranges its inputs.
//
// The zero value is a valid configuration: vertical stacking, scaled to the
// widest image, no spacing, transparent background.
type LayoutConfig struct {
	// Direction is the stacking axis.
	Direction Direction

	// ReferenceEdge picks the common cross-axis length (max or min of inputs).
	ReferenceEdge ReferenceEdge

	// Spacing is the number of pixels inserted between consecutive images
	// along the stacking axis. Must be >= 0.
	Spacing int

	// Background fills every canvas pixel not covered by an image.
	Background color.NRGBA

	// KeepOriginalSize disables proportional scaling. Images keep their size,
	// the cross axis becomes the largest input cross-axis length and
	// ReferenceEdge is ignored.
	KeepOriginalSize bool
}

// Validate reports whether the enum values and spacing are usable.
func (c LayoutConfig) Validate() error {
	if c.Direction != Vertical && c.Direction != Horizontal {
		return fmt.Errorf("%w: unknown direction %d", ErrInvalidConfig, int(c.Direction))
	}
	if c.ReferenceEdge != EdgeMax && c.ReferenceEdge != EdgeMin {
		return fmt.Errorf("%w: unknown reference edge %d", ErrInvalidConfig, int(c.ReferenceEdge))
	}
	if c.Spacing < 0 {
		return fmt.Errorf("%w: spacing must be >= 0, got %d", ErrInvalidConfig, c.Spacing)
	}
	return nil
}

// Placement describes where one input image lands on the canvas.
type Placement struct {
	// Index is the position of the image in the input sequence.
	Index int `json:"index"`

	// X and Y are the top-left corner of the image on the canvas.
	X int `json:"x"`
	Y int `json:"y"`

	// Width and Height are the image's size after scaling.
	Width  int `json:"width"`
	Height int `json:"height"`

	// Scale is the factor applied to the original image (1 when unscaled).
	Scale float64 `json:"scale"`
}

// Rect returns the destination rectangle on the canvas.
func (p Placement) Rect() image.Rectangle {
	return image.Rect(p.X, p.Y, p.X+p.Width, p.Y+p.Height)
}

// LayoutPlan is the geometry of a composition, computed without touching pixels.
type LayoutPlan struct {
	// Reference is the common cross-axis length every image is scaled to.
	Reference int `json:"reference"`

	// Width and Height are the canvas dimensions.
	Width  int `json:"width"`
	Height int `json:"height"`

	// Placements lists each image in input order.
	Placements []Placement `json:"placements"`
}

// CompositionResult is the composed canvas plus the geometry used to build it.
type CompositionResult struct {
	// Image is the new canvas. The caller owns it.
	Image *image.NRGBA

	// Width and Height are the canvas dimensions in pixels.
	Width  int
	Height int

	// Placements lists each image in input order.
	Placements []Placement
}

// Plan computes the canvas size and per-image placement for the given input
// sizes.
//
// Parameters:
//   - sizes: Width (X) and height (Y) of each input, in order.
//   - cfg: Layout configuration.
//
// Returns:
//   - *LayoutPlan: Reference edge, canvas size and placements.
//   - error: ErrEmptyInput, ErrInvalidImage, ErrInvalidConfig or
//     ErrCanvasTooLarge when Width × Height would exceed MaxCanvasPixels.
//
// # Scaling
//
// For vertical stacking every image is scaled to the reference width R and its
// height becomes round(h × R / w). Horizontal stacking is the transpose. The
// cross-axis size is exactly R by construction; the stacking-axis size is
// rounded half away from zero and never drops below 1 pixel, so images may
// drift by ±1px from their exact aspect ratio.
//
// The canvas length along the stacking axis is the sum of scaled lengths plus
// Spacing × (N-1).
func Plan(sizes []image.Point, cfg LayoutConfig) (*LayoutPlan, error) {
	if len(sizes) == 0 {
		return nil, ErrEmptyInput
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	for i, sz := range sizes {
		if sz.X <= 0 || sz.Y <= 0 {
			return nil, fmt.Errorf("%w: image %d has size %dx%d", ErrInvalidImage, i, sz.X, sz.Y)
		}
	}

	vertical := cfg.Direction == Vertical

	// cross returns the cross-axis length, stack the stacking-axis length.
	cross := func(sz image.Point) int {
		if vertical {
			return sz.X
		}
		return sz.Y
	}
	stack := func(sz image.Point) int {
		if vertical {
			return sz.Y
		}
		return sz.X
	}

	ref := cross(sizes[0])
	for _, sz := range sizes[1:] {
		c := cross(sz)
		if cfg.KeepOriginalSize || cfg.ReferenceEdge == EdgeMax {
			if c > ref {
				ref = c
			}
		} else if c < ref {
			ref = c
		}
	}

	// limit is the longest stacking axis that keeps the area within bounds.
	// Checking every step against it also keeps cursor from overflowing.
	limit := MaxCanvasPixels / ref
	tooLarge := func() error {
		return fmt.Errorf("%w: exceeds %d pixels with a %d pixel cross axis", ErrCanvasTooLarge, MaxCanvasPixels, ref)
	}

	placements := make([]Placement, len(sizes))
	cursor := 0
	for i, sz := range sizes {
		crossLen, stackLen, scale := cross(sz), stack(sz), 1.0
		if !cfg.KeepOriginalSize && crossLen != ref {
			scale = float64(ref) / float64(crossLen)
			if float64(stackLen)*scale > float64(limit) {
				return nil, tooLarge()
			}
			stackLen = scaledLength(stackLen, scale)
			crossLen = ref
		}
		if stackLen > limit {
			return nil, tooLarge()
		}

		p := Placement{Index: i, Scale: scale}
		if vertical {
			p.X, p.Y, p.Width, p.Height = 0, cursor, crossLen, stackLen
		} else {
			p.X, p.Y, p.Width, p.Height = cursor, 0, stackLen, crossLen
		}
		placements[i] = p

		cursor += stackLen
		if i < len(sizes)-1 {
			if cfg.Spacing > limit {
				return nil, tooLarge()
			}
			cursor += cfg.Spacing
		}
		if cursor > limit {
			return nil, tooLarge()
		}
	}

	plan := &LayoutPlan{Reference: ref, Placements: placements}
	if vertical {
		plan.Width, plan.Height = ref, cursor
	} else {
		plan.Width, plan.Height = cursor, ref
	}
	return plan, nil
}

// makeOpaque forces every alpha value of img to 255 in place.
func makeOpaque(img *image.NRGBA) {
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xff
	}
}

// scaledLength applies scale to n, rounding half away from zero, minimum 1.
func scaledLength(n int, scale float64) int {
	v := int(math.Round(float64(n) * scale))
	if v < 1 {
		return 1
	}
	return v
}

// Compose concatenates images into a single canvas.
//
// Parameters:
//   - images: Ordered, non-empty sequence of images. They are only read.
//   - cfg: Direction, reference edge, spacing, background and scaling mode.
//
// Returns:
//   - *CompositionResult: The new canvas and the placement of each image.
//   - error: ErrEmptyInput, ErrInvalidImage, ErrInvalidConfig or
//     ErrCanvasTooLarge. On error no canvas is allocated.
//
// The canvas is filled with cfg.Background, then each image (resampled with a
// Lanczos filter when its cross-axis size differs from the reference) is
// copied into place. Pixels are copied, not blended. With an opaque background
// the finished canvas is made fully opaque, keeping the colour values of
// transparent input pixels; with a translucent background transparent regions
// of an input stay transparent.
//
// Compose keeps no state between calls and may run concurrently on disjoint
// inputs.
func Compose(images []image.Image, cfg LayoutConfig) (*CompositionResult, error) {
	if len(images) == 0 {
		return nil, ErrEmptyInput
	}

	sizes := make([]image.Point, len(images))
	for i, img := range images {
		if img == nil {
			return nil, fmt.Errorf("%w: image %d is nil", ErrInvalidImage, i)
		}
		sizes[i] = img.Bounds().Size()
	}

	plan, err := Plan(sizes, cfg)
	if err != nil {
		return nil, err
	}

	canvas := imaging.New(plan.Width, plan.Height, cfg.Background)
	for _, p := range plan.Placements {
		src := images[p.Index]
		if p.Width != sizes[p.Index].X || p.Height != sizes[p.Index].Y {
			src = imaging.Resize(src, p.Width, p.Height, imaging.Lanczos)
		}
		draw.Draw(canvas, p.Rect(), src, src.Bounds().Min, draw.Src)
	}
	if cfg.Background.A == 0xff {
		makeOpaque(canvas)
	}

	return &CompositionResult{
		Image:      canvas,
		Width:      plan.Width,
		Height:     plan.Height,
		Placements: plan.Placements,
	}, nil
}
