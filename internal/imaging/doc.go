// Package imaging provides the image stitching core: loading inputs, laying
// them out along one axis, compositing them onto a single canvas, previewing
// and exporting the result.
//
// All operations work with standard Go image.Image types and use a coordinate
// system where (0,0) is at the top-left corner, X increases rightward, and Y
// increases downward.
//
// # Layout
//
// Compose concatenates an ordered list of images either vertically (top to
// bottom) or horizontally (left to right):
//
//   - Stacking axis: the axis images are concatenated along (height for
//     vertical, width for horizontal).
//   - Cross axis: the perpendicular axis. Every image is scaled, keeping its
//     aspect ratio, so its cross-axis length equals the reference edge.
//   - Reference edge: the max or min of the input cross-axis lengths.
//
// The canvas measures the reference edge along the cross axis and the sum of
// scaled stacking-axis lengths plus Spacing × (N-1) along the stacking axis.
// Plan computes this geometry from sizes alone.
//
// # Thread Safety
//
// ImageCache and Exporter are safe for concurrent use. Plan and Compose keep no
// state and can be called concurrently on different inputs.
//
// # Error Handling
//
// Layout failures are reported with sentinel errors that callers match with
// errors.Is:
//   - ErrEmptyInput: no images supplied
//   - ErrInvalidImage: a nil or zero-area image
//   - ErrInvalidConfig: unknown direction or reference edge, negative spacing
//   - ErrCanvasTooLarge: the canvas would exceed MaxCanvasPixels
//
// A failing call produces no output. Loading and export errors wrap the
// underlying I/O or codec error.
//
// # Formats
//
// Inputs may be PNG, JPEG, GIF, BMP, TIFF or WebP. JPEG inputs are rotated
// according to their EXIF orientation. Outputs may be any of the same formats;
// JPEG output discards alpha.
package imaging
