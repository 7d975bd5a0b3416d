package imaging

import (
	"errors"
	"image"
	"image/color"
	"math"
	"testing"
)

var (
	red   = color.NRGBA{255, 0, 0, 255}
	blue  = color.NRGBA{0, 0, 255, 255}
	green = color.NRGBA{0, 255, 0, 255}
	white = color.NRGBA{255, 255, 255, 255}
)

// solidImage creates an opaque NRGBA image filled with c.
func solidImage(width, height int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestCompose_VerticalMaxWidth(t *testing.T) {
	images := []image.Image{
		solidImage(100, 50, red),
		solidImage(200, 100, blue),
		solidImage(150, 30, green),
	}

	result, err := Compose(images, LayoutConfig{Direction: Vertical, ReferenceEdge: EdgeMax})
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}

	if result.Width != 200 {
		t.Errorf("width: got %d, want 200", result.Width)
	}
	// 100x50 -> 200x100, 200x100 unchanged, 150x30 -> 200x40
	if result.Height != 240 {
		t.Errorf("height: got %d, want 240", result.Height)
	}
	if b := result.Image.Bounds(); b.Dx() != result.Width || b.Dy() != result.Height {
		t.Errorf("canvas bounds %v do not match reported size %dx%d", b, result.Width, result.Height)
	}
}

func TestCompose_VerticalMinWidth(t *testing.T) {
	images := []image.Image{
		solidImage(100, 50, red),
		solidImage(200, 100, blue),
	}

	result, err := Compose(images, LayoutConfig{Direction: Vertical, ReferenceEdge: EdgeMin})
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}

	if result.Width != 100 {
		t.Errorf("width: got %d, want 100", result.Width)
	}
	// 100x50 unchanged, 200x100 -> 100x50
	if result.Height != 100 {
		t.Errorf("height: got %d, want 100", result.Height)
	}
}

func TestCompose_Horizontal(t *testing.T) {
	images := []image.Image{
		solidImage(50, 100, red),
		solidImage(100, 200, blue),
	}

	tests := []struct {
		name          string
		edge          ReferenceEdge
		wantW, wantH  int
		secondOffsetX int
	}{
		{"max height", EdgeMax, 100 + 100 + 4, 200, 104},
		{"min height", EdgeMin, 50 + 50 + 4, 100, 54},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := LayoutConfig{Direction: Horizontal, ReferenceEdge: tt.edge, Spacing: 4}
			result, err := Compose(images, cfg)
			if err != nil {
				t.Fatalf("Compose failed: %v", err)
			}
			if result.Width != tt.wantW || result.Height != tt.wantH {
				t.Errorf("size: got %dx%d, want %dx%d", result.Width, result.Height, tt.wantW, tt.wantH)
			}
			if got := result.Placements[1].X; got != tt.secondOffsetX {
				t.Errorf("second image X: got %d, want %d", got, tt.secondOffsetX)
			}
			for _, p := range result.Placements {
				if p.Y != 0 || p.Height != tt.wantH {
					t.Errorf("placement %d: got y=%d h=%d, want y=0 h=%d", p.Index, p.Y, p.Height, tt.wantH)
				}
			}
		})
	}
}

func TestCompose_SpacingExample(t *testing.T) {
	images := []image.Image{
		solidImage(100, 50, red),
		solidImage(200, 100, blue),
	}

	result, err := Compose(images, LayoutConfig{Direction: Vertical, ReferenceEdge: EdgeMax, Spacing: 10})
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}

	if result.Width != 200 || result.Height != 210 {
		t.Fatalf("size: got %dx%d, want 200x210", result.Width, result.Height)
	}

	want := []image.Rectangle{
		image.Rect(0, 0, 200, 100),
		image.Rect(0, 110, 200, 210),
	}
	for i, p := range result.Placements {
		if p.Rect() != want[i] {
			t.Errorf("placement %d: got %v, want %v", i, p.Rect(), want[i])
		}
	}
	if result.Placements[0].Scale != 2.0 {
		t.Errorf("first image scale: got %v, want 2", result.Placements[0].Scale)
	}
	if result.Placements[1].Scale != 1.0 {
		t.Errorf("second image scale: got %v, want 1", result.Placements[1].Scale)
	}
}

func TestCompose_SingleImageIdentity(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 100, 200))
	for y := 0; y < 200; y++ {
		for x := 0; x < 100; x++ {
			src.SetNRGBA(x, y, color.NRGBA{uint8(x), uint8(y), uint8(x + y), 255})
		}
	}

	result, err := Compose([]image.Image{src}, LayoutConfig{Direction: Vertical, ReferenceEdge: EdgeMax})
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}

	if result.Width != 100 || result.Height != 200 {
		t.Fatalf("size: got %dx%d, want 100x200", result.Width, result.Height)
	}
	for y := 0; y < 200; y++ {
		for x := 0; x < 100; x++ {
			if got, want := result.Image.NRGBAAt(x, y), src.NRGBAAt(x, y); got != want {
				t.Fatalf("pixel (%d,%d): got %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestCompose_BackgroundOnlyInGaps(t *testing.T) {
	images := []image.Image{
		solidImage(40, 20, red),
		solidImage(80, 40, blue),
	}

	cfg := LayoutConfig{Direction: Vertical, ReferenceEdge: EdgeMax, Spacing: 6, Background: green}
	result, err := Compose(images, cfg)
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}

	// 40x20 -> 80x40, gap rows 40..45, second image 46..85
	if result.Width != 80 || result.Height != 86 {
		t.Fatalf("size: got %dx%d, want 80x86", result.Width, result.Height)
	}

	for x := 0; x < result.Width; x++ {
		for _, y := range []int{0, 39} {
			if got := result.Image.NRGBAAt(x, y); got != red {
				t.Errorf("pixel (%d,%d) in first image: got %v, want red", x, y, got)
			}
		}
		for y := 40; y < 46; y++ {
			if got := result.Image.NRGBAAt(x, y); got != green {
				t.Errorf("pixel (%d,%d) in gap: got %v, want background", x, y, got)
			}
		}
		for _, y := range []int{46, 85} {
			if got := result.Image.NRGBAAt(x, y); got != blue {
				t.Errorf("pixel (%d,%d) in second image: got %v, want blue", x, y, got)
			}
		}
	}
}

func TestCompose_StackingLengthProperty(t *testing.T) {
	sizes := [][2]int{{37, 91}, {120, 33}, {64, 64}, {7, 300}, {255, 17}}

	for _, dir := range []Direction{Vertical, Horizontal} {
		for _, edge := range []ReferenceEdge{EdgeMax, EdgeMin} {
			for _, spacing := range []int{0, 1, 13} {
				images := make([]image.Image, len(sizes))
				for i, s := range sizes {
					images[i] = solidImage(s[0], s[1], red)
				}
				cfg := LayoutConfig{Direction: dir, ReferenceEdge: edge, Spacing: spacing}

				result, err := Compose(images, cfg)
				if err != nil {
					t.Fatalf("%s/%s/%d: Compose failed: %v", dir, edge, spacing, err)
				}

				sum := 0
				for _, p := range result.Placements {
					if dir == Vertical {
						sum += p.Height
						if p.Width != result.Width {
							t.Errorf("%s/%s: placement %d width %d != canvas width %d", dir, edge, p.Index, p.Width, result.Width)
						}
					} else {
						sum += p.Width
						if p.Height != result.Height {
							t.Errorf("%s/%s: placement %d height %d != canvas height %d", dir, edge, p.Index, p.Height, result.Height)
						}
					}
				}
				want := sum + spacing*(len(sizes)-1)
				got := result.Height
				if dir == Horizontal {
					got = result.Width
				}
				if got != want {
					t.Errorf("%s/%s/%d: stacking length got %d, want %d", dir, edge, spacing, got, want)
				}
			}
		}
	}
}

func TestCompose_KeepOriginalSize(t *testing.T) {
	images := []image.Image{
		solidImage(100, 50, red),
		solidImage(200, 100, blue),
	}

	cfg := LayoutConfig{Direction: Vertical, KeepOriginalSize: true, Background: white}
	result, err := Compose(images, cfg)
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}

	if result.Width != 200 || result.Height != 150 {
		t.Fatalf("size: got %dx%d, want 200x150", result.Width, result.Height)
	}
	if got := result.Image.NRGBAAt(50, 25); got != red {
		t.Errorf("first image pixel: got %v, want red", got)
	}
	if got := result.Image.NRGBAAt(150, 25); got != white {
		t.Errorf("uncovered pixel: got %v, want background", got)
	}
	if result.Placements[0].Width != 100 || result.Placements[0].Scale != 1 {
		t.Errorf("first placement should be unscaled, got %+v", result.Placements[0])
	}
}

func TestCompose_SubImageBounds(t *testing.T) {
	base := solidImage(100, 100, blue)
	for y := 10; y < 60; y++ {
		for x := 10; x < 60; x++ {
			base.SetNRGBA(x, y, red)
		}
	}
	sub := base.SubImage(image.Rect(10, 10, 60, 60))

	result, err := Compose([]image.Image{sub}, LayoutConfig{})
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}
	if result.Width != 50 || result.Height != 50 {
		t.Fatalf("size: got %dx%d, want 50x50", result.Width, result.Height)
	}
	if got := result.Image.NRGBAAt(0, 0); got != red {
		t.Errorf("origin pixel: got %v, want red", got)
	}
}

func TestCompose_Errors(t *testing.T) {
	valid := solidImage(10, 10, red)

	tests := []struct {
		name    string
		images  []image.Image
		cfg     LayoutConfig
		wantErr error
	}{
		{"nil slice", nil, LayoutConfig{}, ErrEmptyInput},
		{"empty slice", []image.Image{}, LayoutConfig{}, ErrEmptyInput},
		{"zero width", []image.Image{valid, image.NewNRGBA(image.Rect(0, 0, 0, 10))}, LayoutConfig{}, ErrInvalidImage},
		{"zero height", []image.Image{image.NewNRGBA(image.Rect(0, 0, 10, 0))}, LayoutConfig{}, ErrInvalidImage},
		{"nil image", []image.Image{valid, nil}, LayoutConfig{}, ErrInvalidImage},
		{"bad direction", []image.Image{valid}, LayoutConfig{Direction: Direction(9)}, ErrInvalidConfig},
		{"bad edge", []image.Image{valid}, LayoutConfig{ReferenceEdge: ReferenceEdge(-1)}, ErrInvalidConfig},
		{"negative spacing", []image.Image{valid}, LayoutConfig{Spacing: -1}, ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Compose(tt.images, tt.cfg)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got error %v, want %v", err, tt.wantErr)
			}
			if result != nil {
				t.Error("result should be nil on error")
			}
		})
	}
}

// holeImage is a 2x2 image that is fully transparent except for an opaque
// red pixel at (0,0). The transparent pixels keep a colour value.
func holeImage() *image.NRGBA {
	img := solidImage(2, 2, color.NRGBA{10, 20, 30, 0})
	img.SetNRGBA(0, 0, red)
	return img
}

func TestCompose_OpaqueBackgroundFlattensAlpha(t *testing.T) {
	result, err := Compose([]image.Image{holeImage()}, LayoutConfig{Background: white})
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}

	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			if a := result.Image.NRGBAAt(x, y).A; a != 255 {
				t.Errorf("pixel (%d,%d): alpha %d, want 255", x, y, a)
			}
		}
	}
	if got := result.Image.NRGBAAt(1, 1); got != (color.NRGBA{10, 20, 30, 255}) {
		t.Errorf("transparent pixel should keep its colour: got %v", got)
	}
	if got := result.Image.NRGBAAt(0, 0); got != red {
		t.Errorf("opaque pixel: got %v, want red", got)
	}
}

func TestCompose_TranslucentBackgroundKeepsAlpha(t *testing.T) {
	bg := color.NRGBA{255, 255, 255, 128}
	result, err := Compose([]image.Image{holeImage(), solidImage(2, 2, blue)}, LayoutConfig{Background: bg, Spacing: 1})
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}

	if got := result.Image.NRGBAAt(1, 1); got.A != 0 {
		t.Errorf("transparent input pixel: alpha %d, want 0", got.A)
	}
	if got := result.Image.NRGBAAt(0, 2); got != bg {
		t.Errorf("gap pixel: got %v, want %v", got, bg)
	}
	if got := result.Image.NRGBAAt(0, 3); got != blue {
		t.Errorf("second image: got %v, want blue", got)
	}
}

func TestPlan_CanvasTooLarge(t *testing.T) {
	tests := []struct {
		name  string
		sizes []image.Point
		cfg   LayoutConfig
	}{
		{"scaled up overflow", []image.Point{{1, 3000000}, {3000000, 1}}, LayoutConfig{}},
		{"long strip", []image.Point{{20000, 10000}, {20000, 10000}}, LayoutConfig{}},
		{"huge spacing", []image.Point{{10, 10}, {10, 10}}, LayoutConfig{Spacing: math.MaxInt}},
		{"huge cross axis", []image.Point{{MaxCanvasPixels + 1, 1}}, LayoutConfig{}},
		{"keep size", []image.Point{{1, MaxCanvasPixels}, {2, 1}}, LayoutConfig{KeepOriginalSize: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := Plan(tt.sizes, tt.cfg)
			if !errors.Is(err, ErrCanvasTooLarge) {
				t.Errorf("got %v, want ErrCanvasTooLarge", err)
			}
			if plan != nil {
				t.Error("plan should be nil on error")
			}
		})
	}
}

func TestPlan_CanvasAtLimit(t *testing.T) {
	plan, err := Plan([]image.Point{{16384, 8192}, {16384, 8192}}, LayoutConfig{})
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if plan.Width*plan.Height != MaxCanvasPixels {
		t.Errorf("area: got %d, want %d", plan.Width*plan.Height, MaxCanvasPixels)
	}
}

func TestPlan_MatchesCompose(t *testing.T) {
	sizes := []image.Point{{30, 10}, {10, 30}, {20, 20}}
	cfg := LayoutConfig{Direction: Horizontal, ReferenceEdge: EdgeMin, Spacing: 2}

	plan, err := Plan(sizes, cfg)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}

	// min height 10: 30x10, 10x30 -> 3x10, 20x20 -> 10x10
	if plan.Reference != 10 {
		t.Errorf("reference: got %d, want 10", plan.Reference)
	}
	if plan.Width != 30+3+10+2*2 || plan.Height != 10 {
		t.Errorf("size: got %dx%d, want 47x10", plan.Width, plan.Height)
	}

	images := []image.Image{solidImage(30, 10, red), solidImage(10, 30, red), solidImage(20, 20, red)}
	result, err := Compose(images, cfg)
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}
	for i := range plan.Placements {
		if plan.Placements[i] != result.Placements[i] {
			t.Errorf("placement %d: plan %+v, compose %+v", i, plan.Placements[i], result.Placements[i])
		}
	}
}

func TestScaledLength(t *testing.T) {
	tests := []struct {
		n     int
		scale float64
		want  int
	}{
		{50, 2.0, 100},
		{5, 0.5, 3}, // 2.5 rounds away from zero
		{7, 0.5, 4}, // 3.5
		{3, 0.1, 1}, // 0.3 clamps to 1
		{1, 0.01, 1},
		{91, 37.0 / 120.0, 28},
	}

	for _, tt := range tests {
		if got := scaledLength(tt.n, tt.scale); got != tt.want {
			t.Errorf("scaledLength(%d, %v): got %d, want %d", tt.n, tt.scale, got, tt.want)
		}
	}
}

func TestParseDirection(t *testing.T) {
	tests := []struct {
		in      string
		want    Direction
		wantErr bool
	}{
		{"vertical", Vertical, false},
		{"Horizontal", Horizontal, false},
		{" v ", Vertical, false},
		{"h", Horizontal, false},
		{"diagonal", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDirection(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error: got %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("error should wrap ErrInvalidConfig, got %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseReferenceEdge(t *testing.T) {
	for _, s := range []string{"max", "MAX"} {
		if got, err := ParseReferenceEdge(s); err != nil || got != EdgeMax {
			t.Errorf("ParseReferenceEdge(%q) = %v, %v", s, got, err)
		}
	}
	if got, err := ParseReferenceEdge("min"); err != nil || got != EdgeMin {
		t.Errorf("ParseReferenceEdge(min) = %v, %v", got, err)
	}
	if _, err := ParseReferenceEdge("median"); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
	if EdgeMin.String() != "min" || Horizontal.String() != "horizontal" {
		t.Error("String() mismatch")
	}
}
