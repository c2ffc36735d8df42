package processor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// ImageTransformer re-encodes raster images in process.
type ImageTransformer struct{}

func NewImageTransformer() *ImageTransformer {
	return &ImageTransformer{}
}

func (t *ImageTransformer) Name() string {
	return "imaging"
}

func (t *ImageTransformer) Transform(ctx context.Context, inputPath, outputPath string, profile Profile) error {
	format, err := imaging.FormatFromFilename(outputPath)
	if err != nil {
		return fmt.Errorf("unsupported output format %q: %w", filepath.Ext(outputPath), err)
	}

	img, err := imaging.Open(inputPath, imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("failed to decode image: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	processed := fitImage(img, profile.MaxDimension)

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}

	if err := encodeImage(out, processed, format, profile); err != nil {
		out.Close()
		return fmt.Errorf("failed to encode image: %w", err)
	}

	return out.Close()
}
