package imageio

import (
	"image"

	"github.com/fogleman/gg"
	"github.com/nfnt/resize"
)

// captionHeight is the height in pixels of the caption bar
const captionHeight = 18

// Caption draws text on a translucent bar along the bottom of img
func Caption(img image.Image, text string) image.Image {
	if text == "" {
		return img
	}

	dc := gg.NewContextForImage(img)
	width := float64(dc.Width())
	height := float64(dc.Height())

	dc.SetRGBA(0, 0, 0, 0.6)
	dc.DrawRectangle(0, height-captionHeight, width, captionHeight)
	dc.Fill()

	// Default face is the 7x13 bitmap font
	dc.SetRGB(1, 1, 1)
	dc.DrawStringAnchored(text, 4, height-captionHeight/2, 0, 0.5)

	return dc.Image()
}

// Rescale scales img by factor with bilinear filtering. Factors <= 0 or 1
// return img unchanged.
func Rescale(img image.Image, factor float64) image.Image {
	if factor <= 0 || factor == 1 {
		return img
	}

	bounds := img.Bounds()
	width := max(1, uint(float64(bounds.Dx())*factor))
	height := max(1, uint(float64(bounds.Dy())*factor))
	return resize.Resize(width, height, img, resize.Bilinear)
}
