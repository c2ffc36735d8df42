// Package compression implements the batch preview and batch compression
// flows on top of inspection, transformation and the output tree.
package compression

import (
	"context"
	"fmt"
	"os"

	"github.com/phambaophuc/filekit-workers/internal/config"
	apperrors "github.com/phambaophuc/filekit-workers/internal/errors"
	"github.com/phambaophuc/filekit-workers/internal/metrics"
	"github.com/phambaophuc/filekit-workers/internal/models"
	"github.com/phambaophuc/filekit-workers/internal/services/inspector"
	"go.uber.org/zap"
)

// Transformer produces one compressed rendition of a file.
type Transformer interface {
	ResolvePreset(name string) (models.Preset, error)
	Transform(ctx context.Context, inputPath, outputPath, preset string) (models.TransformResult, error)
}

// OutputStore lays out committed outputs and mirrors them.
type OutputStore interface {
	PrepareJobDir(jobID string) (string, error)
	OutputPath(jobID string, index int, ext string) (string, error)
	MirrorOutputs(ctx context.Context, jobID string, paths []string) error
}

type Service struct {
	inspector    inspector.Inspector
	transformer  Transformer
	outputs      OutputStore
	scratchDir   string
	concurrency  int
	maxFiles     int
	exposeStatus bool
	metrics      *metrics.Metrics
	logger       *zap.Logger
}

func NewService(
	insp inspector.Inspector,
	transformer Transformer,
	outputs OutputStore,
	cfg *config.Config,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Service {
	if m == nil {
		m = metrics.Nop()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	scratch := cfg.Storage.ScratchDir
	if scratch == "" {
		scratch = os.TempDir()
	}

	concurrency := cfg.Compression.PreviewConcurrency
	if concurrency < 1 {
		concurrency = 1
	}

	return &Service{
		inspector:    insp,
		transformer:  transformer,
		outputs:      outputs,
		scratchDir:   scratch,
		concurrency:  concurrency,
		maxFiles:     cfg.Compression.MaxBatchFiles,
		exposeStatus: cfg.Compression.ExposeTransformStatus,
		metrics:      m,
		logger:       logger,
	}
}

const errNoFiles = "No files provided"

// checkBatch rejects empty batches and, when a limit is configured, batches
// larger than it.
func (s *Service) checkBatch(op string, n int) error {
	if n == 0 {
		return apperrors.New(apperrors.KindValidation, op, errNoFiles)
	}
	if s.maxFiles > 0 && n > s.maxFiles {
		return apperrors.New(apperrors.KindValidation, op, fmt.Sprintf("Too many files: max %d", s.maxFiles))
	}
	return nil
}
