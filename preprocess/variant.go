package preprocess

// VariantKind tags which derivation of the source image a Variant carries.
type VariantKind string

const (
	KindOriginal  VariantKind = "original"
	KindDenoised  VariantKind = "denoised"
	KindBinarised VariantKind = "binarised"
	KindSharpened VariantKind = "sharpened"
	KindSuperres  VariantKind = "superres"
)

// Variant is a transient derivative of an Image produced for OCR
// consumption. Variants are never persisted.
type Variant struct {
	Kind   VariantKind
	Bytes  []byte
	Width  int
	Height int
}

// Config controls which variants Preprocessor.Variants produces.
type Config struct {
	// EnableSuperres is the master switch for the super-resolution variant
	// (config key enable_superres).
	EnableSuperres bool
	// SuperresMinWidth is the width below which, when EnableSuperres is set,
	// a superres variant is prepended (config key superres_min_width).
	SuperresMinWidth int
	// MaxHeight is the downscale target for images taller than it. Zero
	// selects the spec default of 1500px.
	MaxHeight int
}

// DefaultConfig returns the §6 configuration defaults relevant to
// preprocessing.
func DefaultConfig() Config {
	return Config{
		EnableSuperres:   false,
		SuperresMinWidth: 1200,
		MaxHeight:        1500,
	}
}
