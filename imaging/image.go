package imaging

import (
	"bytes"
	stdimage "image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"fmt"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"
)

// Image is a decoded, sanitised submission: the pixel buffer re-encoded as
// PNG plus the metadata the rest of the pipeline needs. Once an Image exists
// the original upload bytes are discarded.
type Image struct {
	Bytes       []byte
	Width       int
	Height      int
	ContentType string
}

// MaxDimension is the largest width or height accepted for a submission,
// per the §6 "Maximum dimensions: 4096x4096" boundary.
const MaxDimension = 4096

// ErrUnsupportedType is returned when the sniffed content type is not one of
// the accepted formats.
var ErrUnsupportedType = fmt.Errorf("imaging: unsupported content type")

// ErrTooLarge is returned when the upload exceeds the byte cap passed to
// Sanitize or either dimension exceeds MaxDimension.
var ErrTooLarge = fmt.Errorf("imaging: image exceeds the byte cap or %dx%d", MaxDimension, MaxDimension)

// ErrDecodeFailed wraps an underlying codec decode error.
type ErrDecodeFailed struct{ Err error }

func (e *ErrDecodeFailed) Error() string { return fmt.Sprintf("imaging: decode: %v", e.Err) }
func (e *ErrDecodeFailed) Unwrap() error { return e.Err }

// decoders maps a sniffed content type to a stdlib-compatible decode func.
// JPEG, PNG, and GIF come from the standard library; WebP, BMP, and TIFF are
// golang.org/x/image codecs (a direct dependency carried over from the
// teacher, which used the same package for PDF-embedded raster images).
var decoders = map[string]func([]byte) (stdimage.Image, error){
	"image/jpeg": func(b []byte) (stdimage.Image, error) { return jpeg.Decode(bytes.NewReader(b)) },
	"image/png":  func(b []byte) (stdimage.Image, error) { return png.Decode(bytes.NewReader(b)) },
	"image/gif":  func(b []byte) (stdimage.Image, error) { return gif.Decode(bytes.NewReader(b)) },
	"image/webp": func(b []byte) (stdimage.Image, error) { return webp.Decode(bytes.NewReader(b)) },
	"image/bmp":  func(b []byte) (stdimage.Image, error) { return bmp.Decode(bytes.NewReader(b)) },
	"image/tiff": func(b []byte) (stdimage.Image, error) { return tiff.Decode(bytes.NewReader(b)) },
}

// SniffContentType identifies the image format from its magic bytes. Unlike
// net/http.DetectContentType this recognises TIFF's two byte orders and
// returns the exact set of identifiers Sanitize understands.
func SniffContentType(b []byte) (string, bool) {
	switch {
	case len(b) >= 3 && b[0] == 0xFF && b[1] == 0xD8 && b[2] == 0xFF:
		return "image/jpeg", true
	case len(b) >= 8 && bytes.Equal(b[:8], []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}):
		return "image/png", true
	case len(b) >= 6 && (bytes.Equal(b[:6], []byte("GIF87a")) || bytes.Equal(b[:6], []byte("GIF89a"))):
		return "image/gif", true
	case len(b) >= 12 && bytes.Equal(b[:4], []byte("RIFF")) && bytes.Equal(b[8:12], []byte("WEBP")):
		return "image/webp", true
	case len(b) >= 2 && b[0] == 'B' && b[1] == 'M':
		return "image/bmp", true
	case len(b) >= 4 && (bytes.Equal(b[:4], []byte{0x49, 0x49, 0x2A, 0x00}) || bytes.Equal(b[:4], []byte{0x4D, 0x4D, 0x00, 0x2A})):
		return "image/tiff", true
	default:
		return "", false
	}
}
