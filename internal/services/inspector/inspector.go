// Package inspector decides whether an input file is well-formed and reports
// its page count and raw size.
package inspector

import (
	"context"
	"os"

	"github.com/phambaophuc/filekit-workers/internal/models"
	"github.com/phambaophuc/filekit-workers/pkg/utils"
)

// Inspector inspects one file. Failures are reported as corruption, never as errors.
type Inspector interface {
	Inspect(ctx context.Context, path string) models.InspectionResult
}

// PageCounter opens a structured file and returns its page count.
type PageCounter func(path string) (int, error)

// rawSize returns the on-disk size and whether the file could be stat'ed at all.
func rawSize(path string) (int64, bool) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return 0, false
	}
	return info.Size(), true
}

// inspectWith runs a single parse attempt and turns any failure, panics included,
// into a corrupted verdict.
func inspectWith(path string, count PageCounter) (result models.InspectionResult) {
	size, ok := rawSize(path)
	result = models.InspectionResult{SizeBytes: size, Verified: true}
	if !ok {
		result.IsCorrupted = true
		return result
	}

	defer func() {
		if r := recover(); r != nil {
			result.IsCorrupted = true
			result.PageCount = 0
		}
	}()

	pages, err := count(path)
	if err != nil {
		result.IsCorrupted = true
		return result
	}

	result.PageCount = pages
	return result
}

// Unavailable is the degraded capability used when no parser is present:
// it never flags corruption and cannot count pages.
type Unavailable struct{}

func (Unavailable) Inspect(_ context.Context, path string) models.InspectionResult {
	size, _ := rawSize(path)
	return models.InspectionResult{
		IsCorrupted: false,
		PageCount:   0,
		SizeBytes:   size,
		Verified:    false,
	}
}

// Dispatch routes image files to the image inspector and everything else to the
// document inspector.
type Dispatch struct {
	Document Inspector
	Image    Inspector
}

func NewDispatch(document, image Inspector) *Dispatch {
	return &Dispatch{Document: document, Image: image}
}

func (d *Dispatch) Inspect(ctx context.Context, path string) models.InspectionResult {
	if utils.IsImageExt(utils.Ext(path, "")) && d.Image != nil {
		return d.Image.Inspect(ctx, path)
	}
	if d.Document == nil {
		return Unavailable{}.Inspect(ctx, path)
	}
	return d.Document.Inspect(ctx, path)
}
