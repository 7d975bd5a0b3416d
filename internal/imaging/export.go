package imaging

import (
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

// DefaultQuality is the JPEG/WebP quality used when none is configured.
const DefaultQuality = 95

// ErrUnsupportedFormat is returned for output extensions that cannot be encoded.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Format is an output image format.
type Format int

// Supported output formats.
const (
	PNG Format = iota
	JPEG
	WebP
	BMP
	TIFF
	GIF
)

var formatNames = map[Format]string{
	PNG:  "png",
	JPEG: "jpg",
	WebP: "webp",
	BMP:  "bmp",
	TIFF: "tiff",
	GIF:  "gif",
}

var formatExts = map[string]Format{
	"png":  PNG,
	"jpg":  JPEG,
	"jpeg": JPEG,
	"webp": WebP,
	"bmp":  BMP,
	"tif":  TIFF,
	"tiff": TIFF,
	"gif":  GIF,
}

// String returns the canonical file extension without the dot.
func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// ParseFormat parses an extension such as "png", ".JPG" or "tiff".
func ParseFormat(ext string) (Format, error) {
	ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
	if f, ok := formatExts[ext]; ok {
		return f, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
}

// FormatFromPath returns the format implied by the file extension of path.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

// Encode writes img to w in the given format.
//
// JPEG has no alpha channel, so the image is made opaque first by discarding
// alpha (colour values are kept as-is, not composited onto a backdrop).
// quality applies to JPEG and WebP; values outside 1-100 select DefaultQuality.
func Encode(w io.Writer, img image.Image, format Format, quality int) error {
	if quality < 1 || quality > 100 {
		quality = DefaultQuality
	}

	switch format {
	case JPEG:
		return imaging.Encode(w, dropAlpha(img), imaging.JPEG, imaging.JPEGQuality(quality))
	case WebP:
		return webp.Encode(w, img, &webp.Options{Quality: float32(quality)})
	case PNG:
		return imaging.Encode(w, img, imaging.PNG)
	case BMP:
		return imaging.Encode(w, img, imaging.BMP)
	case TIFF:
		return imaging.Encode(w, img, imaging.TIFF)
	case GIF:
		return imaging.Encode(w, img, imaging.GIF)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// Save encodes img into the file at path, choosing the format from its extension.
//
// The file is written to a temporary sibling and renamed into place, so a
// failed encode never leaves a truncated image behind.
func Save(img image.Image, path string, quality int) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := Encode(tmp, img, format, quality); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to encode %s: %w", format, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move output into place: %w", err)
	}
	return nil
}

// dropAlpha returns an opaque copy of img with the alpha channel forced to 255.
func dropAlpha(img image.Image) *image.NRGBA {
	dst := imaging.Clone(img)
	makeOpaque(dst)
	return dst
}

// NextPath returns the first "<dir>/<n>.<ext>" with n >= start that does not
// exist yet, along with n.
//
// start must be >= 1. An unrecognised extension falls back to png.
func NextPath(dir string, start int, ext string) (string, int, error) {
	if start < 1 {
		return "", 0, fmt.Errorf("start index must be >= 1, got %d", start)
	}
	format, err := ParseFormat(ext)
	if err != nil {
		format = PNG
	}

	for n := start; ; n++ {
		path := filepath.Join(dir, strconv.Itoa(n)+"."+format.String())
		_, err := os.Stat(path)
		if errors.Is(err, os.ErrNotExist) {
			return path, n, nil
		}
		if err != nil {
			return "", 0, fmt.Errorf("failed to check %s: %w", path, err)
		}
	}
}

// Exporter saves compositions into a fixed directory with auto-incrementing
// numeric filenames (1.png, 2.png, ...), skipping names that already exist.
//
// Exporter is safe for concurrent use; each Save reserves its own index.
type Exporter struct {
	mu      sync.Mutex
	dir     string
	format  Format
	quality int
	next    int
}

// NewExporter creates an exporter writing into dir, which must exist.
// start is the first index to try and must be >= 1.
func NewExporter(dir string, format Format, start, quality int) (*Exporter, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("output directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("output directory %s is not a directory", dir)
	}
	if start < 1 {
		return nil, fmt.Errorf("start index must be >= 1, got %d", start)
	}
	if _, ok := formatNames[format]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	return &Exporter{dir: dir, format: format, quality: quality, next: start}, nil
}

// Next returns the index the next Save will try first.
func (e *Exporter) Next() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.next
}

// Save writes img to the next free numbered path and returns that path.
// The index only advances when the write succeeds.
func (e *Exporter) Save(img image.Image) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	path, n, err := NextPath(e.dir, e.next, e.format.String())
	if err != nil {
		return "", err
	}
	if err := Save(img, path, e.quality); err != nil {
		return "", err
	}
	e.next = n + 1
	return path, nil
}

// Reset sets the next index back to 1.
func (e *Exporter) Reset() {
	e.mu.Lock()
	e.next = 1
	e.mu.Unlock()
}
