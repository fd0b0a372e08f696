package imageio

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

// ErrSizeMismatch is returned when a pixel buffer does not match its dimensions
var ErrSizeMismatch = errors.New("pixel buffer does not match image size")

// ToImage wraps a row-major RGB buffer (top row first) as an RGBA image
func ToImage(pixels []byte, width, height int) (*image.RGBA, error) {
	if width <= 0 || height <= 0 || len(pixels) != width*height*3 {
		return nil, fmt.Errorf("%w: %d bytes for %dx%d", ErrSizeMismatch, len(pixels), width, height)
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := 3 * (y*width + x)
			img.SetRGBA(x, y, color.RGBA{R: pixels[i], G: pixels[i+1], B: pixels[i+2], A: 255})
		}
	}
	return img, nil
}

// toRGB flattens any image back into a row-major RGB buffer
func toRGB(img image.Image) ([]byte, int, int) {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	pixels := make([]byte, 0, width*height*3)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
			pixels = append(pixels, c.R, c.G, c.B)
		}
	}
	return pixels, width, height
}
