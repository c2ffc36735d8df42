package inspector

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/phambaophuc/filekit-workers/internal/models"
	_ "golang.org/x/image/webp"
)

// ImageInspector validates raster images by decoding their header. A decodable
// image always counts as a single page.
type ImageInspector struct{}

func NewImageInspector() *ImageInspector {
	return &ImageInspector{}
}

func (i *ImageInspector) Inspect(_ context.Context, path string) models.InspectionResult {
	return inspectWith(path, decodeImagePages)
}

func decodeImagePages(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, err
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return 0, fmt.Errorf("invalid image dimensions %dx%d", cfg.Width, cfg.Height)
	}
	return 1, nil
}
