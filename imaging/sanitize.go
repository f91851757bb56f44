package imaging

import (
	"bytes"
	stdimage "image"
	"image/png"
)

// Sanitize decodes raw upload bytes, verifies the magic number matches one of
// the accepted content types and that neither dimension exceeds
// MaxDimension, then re-encodes the decoded pixel buffer as PNG. Re-encoding
// from the decoded buffer — rather than passing the original bytes through —
// strips embedded metadata (EXIF, ICC profiles, XMP) and defeats polyglot
// files that are simultaneously valid as some other format, since only the
// pixels the codec actually produced survive.
//
// maxBytes enforces the configured submission cap; a zero value disables the
// check (useful for internal callers operating on already-bounded data).
func Sanitize(raw []byte, maxBytes int) (Image, error) {
	if maxBytes > 0 && len(raw) > maxBytes {
		return Image{}, ErrTooLarge
	}
	contentType, ok := SniffContentType(raw)
	if !ok {
		return Image{}, ErrUnsupportedType
	}
	decode, ok := decoders[contentType]
	if !ok {
		return Image{}, ErrUnsupportedType
	}
	decoded, err := decode(raw)
	if err != nil {
		return Image{}, &ErrDecodeFailed{Err: err}
	}
	bounds := decoded.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width > MaxDimension || height > MaxDimension {
		return Image{}, ErrTooLarge
	}

	// Re-encode through a freshly allocated RGBA buffer so no auxiliary
	// chunks (tEXt, iCCP, EXIF-in-APP1, ...) from the original container
	// survive into the sanitised image.
	clean := stdimage.NewRGBA(stdimage.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			clean.Set(x, y, decoded.At(bounds.Min.X+x, bounds.Min.Y+y))
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, clean); err != nil {
		return Image{}, &ErrDecodeFailed{Err: err}
	}

	return Image{
		Bytes:       buf.Bytes(),
		Width:       width,
		Height:      height,
		ContentType: "image/png",
	}, nil
}
