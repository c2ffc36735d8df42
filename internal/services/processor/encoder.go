package processor

import (
	"image"
	"image/png"
	"io"

	"github.com/disintegration/imaging"
)

func encodeImage(w io.Writer, img image.Image, format imaging.Format, profile Profile) error {
	switch format {
	case imaging.JPEG:
		return imaging.Encode(w, img, format, imaging.JPEGQuality(profile.JPEGQuality))
	case imaging.PNG:
		return imaging.Encode(w, img, format, imaging.PNGCompressionLevel(png.BestCompression))
	default:
		return imaging.Encode(w, img, format)
	}
}
