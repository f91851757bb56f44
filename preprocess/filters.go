package preprocess

import (
	"bytes"
	stdimage "image"
	"image/color"
	"image/png"
	"math"

	"golang.org/x/image/draw"
)

func decodePNG(b []byte) (*stdimage.RGBA, error) {
	img, err := png.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	rgba, ok := img.(*stdimage.RGBA)
	if ok {
		return rgba, nil
	}
	bounds := img.Bounds()
	out := stdimage.NewRGBA(bounds)
	draw.Draw(out, bounds, img, bounds.Min, draw.Src)
	return out, nil
}

func encodePNG(img stdimage.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// resize scales src to exactly w x h using a cubic (Catmull-Rom) kernel, the
// same interpolation golang.org/x/image/draw exposes for PDF raster
// resampling in the teacher and reused here for both the 1500px downscale
// cap and the 4x super-resolution upscale.
func resize(src stdimage.Image, w, h int) *stdimage.RGBA {
	dst := stdimage.NewRGBA(stdimage.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst
}

func toGray(src stdimage.Image) *stdimage.Gray {
	bounds := src.Bounds()
	gray := stdimage.NewGray(bounds)
	draw.Draw(gray, bounds, src, bounds.Min, draw.Src)
	return gray
}

func grayToRGBA(g *stdimage.Gray) *stdimage.RGBA {
	bounds := g.Bounds()
	out := stdimage.NewRGBA(bounds)
	draw.Draw(out, bounds, g, bounds.Min, draw.Src)
	return out
}

// boxBlur approximates a non-local-means filter with a separable box blur of
// the given radius. A true non-local-means implementation was not available
// as a library anywhere in the retrieved corpus (see DESIGN.md); this is a
// deliberately cheap stand-in that still removes the speckle noise that
// trips up OCR on low-quality screenshots.
func boxBlur(g *stdimage.Gray, radius int) *stdimage.Gray {
	if radius <= 0 {
		return g
	}
	bounds := g.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	tmp := stdimage.NewGray(bounds)
	out := stdimage.NewGray(bounds)

	// Horizontal pass.
	for y := 0; y < h; y++ {
		var sum, count int
		for x := -radius; x <= radius; x++ {
			px := clamp(x, 0, w-1)
			sum += int(g.GrayAt(bounds.Min.X+px, bounds.Min.Y+y).Y)
			count++
		}
		for x := 0; x < w; x++ {
			tmp.SetGray(bounds.Min.X+x, bounds.Min.Y+y, color.Gray{Y: uint8(sum / count)})
			leave := clamp(x-radius, 0, w-1)
			enter := clamp(x+radius+1, 0, w-1)
			sum += int(g.GrayAt(bounds.Min.X+enter, bounds.Min.Y+y).Y)
			sum -= int(g.GrayAt(bounds.Min.X+leave, bounds.Min.Y+y).Y)
		}
	}
	// Vertical pass.
	for x := 0; x < w; x++ {
		var sum, count int
		for y := -radius; y <= radius; y++ {
			py := clamp(y, 0, h-1)
			sum += int(tmp.GrayAt(bounds.Min.X+x, bounds.Min.Y+py).Y)
			count++
		}
		for y := 0; y < h; y++ {
			out.SetGray(bounds.Min.X+x, bounds.Min.Y+y, color.Gray{Y: uint8(sum / count)})
			leave := clamp(y-radius, 0, h-1)
			enter := clamp(y+radius+1, 0, h-1)
			sum += int(tmp.GrayAt(bounds.Min.X+x, bounds.Min.Y+enter).Y)
			sum -= int(tmp.GrayAt(bounds.Min.X+x, bounds.Min.Y+leave).Y)
		}
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// adaptiveThreshold binarises a grayscale image using a local-mean threshold
// computed from an integral image: a pixel becomes white unless it is more
// than `bias` darker than the mean of its surrounding window, dark otherwise.
// This is the standard constant-time adaptive-threshold construction and
// needs no third-party dependency beyond the stdlib image types.
func adaptiveThreshold(g *stdimage.Gray, window int, bias int) *stdimage.Gray {
	bounds := g.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	integral := make([]int64, (w+1)*(h+1))
	idx := func(x, y int) int { return y*(w+1) + x }
	for y := 0; y < h; y++ {
		var rowSum int64
		for x := 0; x < w; x++ {
			rowSum += int64(g.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y)
			integral[idx(x+1, y+1)] = integral[idx(x+1, y)] + rowSum
		}
	}
	sum := func(x0, y0, x1, y1 int) int64 {
		x0, y0 = clamp(x0, 0, w), clamp(y0, 0, h)
		x1, y1 = clamp(x1, 0, w), clamp(y1, 0, h)
		return integral[idx(x1, y1)] - integral[idx(x0, y1)] - integral[idx(x1, y0)] + integral[idx(x0, y0)]
	}

	radius := window / 2
	out := stdimage.NewGray(bounds)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			x0, y0, x1, y1 := x-radius, y-radius, x+radius+1, y+radius+1
			count := int64(clamp(x1, 0, w) - clamp(x0, 0, w)) * int64(clamp(y1, 0, h)-clamp(y0, 0, h))
			if count <= 0 {
				count = 1
			}
			mean := sum(x0, y0, x1, y1) / count
			v := int64(g.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y)
			if v >= mean-int64(bias) {
				out.SetGray(bounds.Min.X+x, bounds.Min.Y+y, color.Gray{Y: 255})
			} else {
				out.SetGray(bounds.Min.X+x, bounds.Min.Y+y, color.Gray{Y: 0})
			}
		}
	}
	return out
}

// unsharpMask sharpens g by adding back amount*(g - blur(g)).
func unsharpMask(g *stdimage.Gray, radius int, amount float64) *stdimage.Gray {
	blurred := boxBlur(g, radius)
	bounds := g.Bounds()
	out := stdimage.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			orig := float64(g.GrayAt(x, y).Y)
			blur := float64(blurred.GrayAt(x, y).Y)
			v := orig + amount*(orig-blur)
			out.SetGray(x, y, color.Gray{Y: uint8(clampFloat(v, 0, 255))})
		}
	}
	return out
}

func clampFloat(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
