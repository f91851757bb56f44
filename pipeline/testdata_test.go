package pipeline

import (
	"bytes"
	stdimage "image"
	"image/color"
	"image/png"

	"github.com/screen2deck/screen2deck/imaging"
)

func testImage() imaging.Image {
	img := stdimage.NewRGBA(stdimage.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 200, B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	png.Encode(&buf, img)
	return imaging.Image{Bytes: buf.Bytes(), Width: 4, Height: 4, ContentType: "image/png"}
}
