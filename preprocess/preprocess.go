package preprocess

import (
	stdimage "image"

	"github.com/screen2deck/screen2deck/imaging"
)

// Preprocessor produces the ordered list of Variants from a sanitised
// Image. The ordering is load-bearing: strategy.Strategy iterates the slice
// in order and stops at the first variant whose OCR run clears the
// early-stop confidence threshold.
type Preprocessor struct {
	cfg Config
}

// New constructs a Preprocessor. A zero Config selects DefaultConfig.
func New(cfg Config) *Preprocessor {
	if cfg.MaxHeight == 0 {
		cfg.MaxHeight = DefaultConfig().MaxHeight
	}
	if cfg.SuperresMinWidth == 0 {
		cfg.SuperresMinWidth = DefaultConfig().SuperresMinWidth
	}
	return &Preprocessor{cfg: cfg}
}

// Variants returns [original, denoised, binarised, sharpened], with
// superres prepended when enabled and img.Width is below the configured
// minimum. Per §4.3, images taller than MaxHeight are downscaled to it
// before any further derivation; images are never upscaled except by the
// explicit super-resolution path.
func (p *Preprocessor) Variants(img imaging.Image) ([]Variant, error) {
	decoded, err := decodePNG(img.Bytes)
	if err != nil {
		return nil, err
	}

	base := stdimage.Image(decoded)
	width, height := img.Width, img.Height
	if height > p.cfg.MaxHeight {
		width = width * p.cfg.MaxHeight / height
		height = p.cfg.MaxHeight
		base = resize(decoded, width, height)
	}

	variants := make([]Variant, 0, 5)

	if p.cfg.EnableSuperres && img.Width < p.cfg.SuperresMinWidth {
		sr, err := p.superres(base, width, height)
		if err != nil {
			return nil, err
		}
		variants = append(variants, sr)
	}

	originalBytes, err := encodePNG(base)
	if err != nil {
		return nil, err
	}
	variants = append(variants, Variant{Kind: KindOriginal, Bytes: originalBytes, Width: width, Height: height})

	gray := toGray(base)

	denoised := boxBlur(gray, 1)
	denoisedBytes, err := encodePNG(grayToRGBA(denoised))
	if err != nil {
		return nil, err
	}
	variants = append(variants, Variant{Kind: KindDenoised, Bytes: denoisedBytes, Width: width, Height: height})

	binarised := adaptiveThreshold(gray, 25, 8)
	binarisedBytes, err := encodePNG(grayToRGBA(binarised))
	if err != nil {
		return nil, err
	}
	variants = append(variants, Variant{Kind: KindBinarised, Bytes: binarisedBytes, Width: width, Height: height})

	sharpened := unsharpMask(gray, 2, 1.0)
	sharpenedBytes, err := encodePNG(grayToRGBA(sharpened))
	if err != nil {
		return nil, err
	}
	variants = append(variants, Variant{Kind: KindSharpened, Bytes: sharpenedBytes, Width: width, Height: height})

	return variants, nil
}

// superres performs the 4x cubic upscale followed by an unsharp-mask pass,
// per §4.3's "4x linear upscaling using a cubic-interpolation kernel
// followed by an unsharp-mask step."
func (p *Preprocessor) superres(base stdimage.Image, width, height int) (Variant, error) {
	upW, upH := width*4, height*4
	upscaled := resize(base, upW, upH)
	gray := toGray(upscaled)
	sharpened := unsharpMask(gray, 3, 1.2)
	b, err := encodePNG(grayToRGBA(sharpened))
	if err != nil {
		return Variant{}, err
	}
	return Variant{Kind: KindSuperres, Bytes: b, Width: upW, Height: upH}, nil
}
