package inspector

import (
	"context"
	"os"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/phambaophuc/filekit-workers/internal/models"
)

var disableConfigDir sync.Once

type PDFInspector struct {
	countPages PageCounter
}

// NewPDFInspector returns an inspector backed by pdfcpu. pdfcpu's user config
// directory is disabled so inspection never writes outside the input file.
func NewPDFInspector() *PDFInspector {
	disableConfigDir.Do(api.DisableConfigDir)
	return NewPDFInspectorWith(countPDFPages)
}

func NewPDFInspectorWith(counter PageCounter) *PDFInspector {
	return &PDFInspector{countPages: counter}
}

func (p *PDFInspector) Inspect(_ context.Context, path string) models.InspectionResult {
	return inspectWith(path, p.countPages)
}

func countPDFPages(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	return api.PageCount(f, model.NewDefaultConfiguration())
}
