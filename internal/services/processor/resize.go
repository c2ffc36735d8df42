package processor

import (
	"image"

	"github.com/disintegration/imaging"
)

// fitImage shrinks img so its longest side is at most maxDimension. Smaller
// images and an unbounded profile are returned unchanged.
func fitImage(img image.Image, maxDimension int) image.Image {
	if maxDimension <= 0 {
		return img
	}
	bounds := img.Bounds()
	if bounds.Dx() <= maxDimension && bounds.Dy() <= maxDimension {
		return img
	}
	return imaging.Fit(img, maxDimension, maxDimension, imaging.Lanczos)
}
