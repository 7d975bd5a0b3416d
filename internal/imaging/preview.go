package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"

	"github.com/anthonynsimon/bild/transform"
)

// Preview scale limits.
const (
	MinPreviewScale = 0.05
	MaxPreviewScale = 3.0
)

// PreviewResult contains a scaled-down (or up) rendering of a composition
type PreviewResult struct {
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	SourceWidth  int    `json:"source_width"`
	SourceHeight int    `json:"source_height"`
	Percent      int    `json:"percent"`
	ImageBase64  string `json:"image_base64"`
	MimeType     string `json:"mime_type"`
}

// ClampPreviewScale limits scale to [MinPreviewScale, MaxPreviewScale]
func ClampPreviewScale(scale float64) float64 {
	if scale < MinPreviewScale {
		return MinPreviewScale
	}
	if scale > MaxPreviewScale {
		return MaxPreviewScale
	}
	return scale
}

// FitWidthScale returns the scale that fits an image of imgWidth into a view
// of viewWidth, leaving a 2% margin
func FitWidthScale(imgWidth, viewWidth int) float64 {
	if imgWidth < 1 {
		imgWidth = 1
	}
	if viewWidth < 1 {
		viewWidth = 1
	}
	return ClampPreviewScale(float64(viewWidth) * 0.98 / float64(imgWidth))
}

// ScalePreview resizes img by scale for display. A bilinear filter is used
// since previews are regenerated on every change and need to be fast.
func ScalePreview(img image.Image, scale float64) *image.RGBA {
	scale = ClampPreviewScale(scale)
	b := img.Bounds()
	w := max(1, int(float64(b.Dx())*scale))
	h := max(1, int(float64(b.Dy())*scale))
	return transform.Resize(img, w, h, transform.Linear)
}

// Preview scales img and returns it as a base64 PNG
func Preview(img image.Image, scale float64) (*PreviewResult, error) {
	scale = ClampPreviewScale(scale)
	scaled := ScalePreview(img, scale)

	encoded, err := EncodePNGBase64(scaled)
	if err != nil {
		return nil, err
	}

	b := img.Bounds()
	return &PreviewResult{
		Width:        scaled.Bounds().Dx(),
		Height:       scaled.Bounds().Dy(),
		SourceWidth:  b.Dx(),
		SourceHeight: b.Dy(),
		Percent:      int(scale * 100),
		ImageBase64:  encoded,
		MimeType:     "image/png",
	}, nil
}

// EncodePNGBase64 encodes img as a base64 PNG string
func EncodePNGBase64(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
