package processor

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/phambaophuc/filekit-workers/internal/config"
	apperrors "github.com/phambaophuc/filekit-workers/internal/errors"
	"github.com/phambaophuc/filekit-workers/internal/metrics"
	"github.com/phambaophuc/filekit-workers/internal/models"
	"github.com/phambaophuc/filekit-workers/pkg/utils"
	"go.uber.org/zap"
)

// Transformer writes a compressed rendition of inputPath to outputPath.
type Transformer interface {
	Name() string
	Transform(ctx context.Context, inputPath, outputPath string, profile Profile) error
}

// Processor runs one transformation per call and degrades to a byte copy when
// the underlying tool cannot produce an output.
type Processor struct {
	document Transformer
	image    Transformer
	timeout  time.Duration
	strict   bool
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

func NewProcessor(cfg config.CompressionConfig, m *metrics.Metrics, logger *zap.Logger) *Processor {
	return NewProcessorWith(
		NewGhostscriptTransformer(cfg.GhostscriptPath),
		NewImageTransformer(),
		cfg, m, logger,
	)
}

func NewProcessorWith(document, image Transformer, cfg config.CompressionConfig, m *metrics.Metrics, logger *zap.Logger) *Processor {
	if m == nil {
		m = metrics.Nop()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{
		document: document,
		image:    image,
		timeout:  cfg.TransformTimeout,
		strict:   cfg.StrictPresets(),
		metrics:  m,
		logger:   logger,
	}
}

// ResolvePreset applies the configured preset policy to name.
func (p *Processor) ResolvePreset(name string) (models.Preset, error) {
	preset, known, err := ResolvePreset(name, p.strict)
	if err != nil {
		return "", err
	}
	if !known {
		p.logger.Warn("Unknown preset, using default",
			zap.String("preset", name),
			zap.String("default", string(preset)),
		)
	}
	return preset, nil
}

// Transform compresses inputPath into outputPath. A tool that is missing, exits
// non-zero, times out or writes nothing yields a copy of the input and the
// copied-fallback status. Cancellation of ctx is returned as an error.
func (p *Processor) Transform(ctx context.Context, inputPath, outputPath, presetName string) (models.TransformResult, error) {
	const op = "processor.Transform"

	preset, err := p.ResolvePreset(presetName)
	if err != nil {
		return models.TransformResult{}, err
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), utils.DefaultDirPermissions); err != nil {
		return models.TransformResult{}, apperrors.Wrap(apperrors.KindStorage, op, "failed to create output directory", err)
	}

	transformer := p.transformerFor(inputPath)
	start := time.Now()

	toolErr := p.run(ctx, transformer, inputPath, outputPath, ProfileFor(preset))
	if ctx.Err() != nil {
		p.metrics.ObserveTransform(string(preset), transformer.Name(), "cancelled", time.Since(start).Seconds())
		return models.TransformResult{}, apperrors.Wrap(apperrors.KindTransform, op, "transformation cancelled", ctx.Err())
	}

	status := models.TransformCompressed
	if toolErr != nil {
		p.logger.Warn("Transformation failed, copying input",
			zap.String("input", inputPath),
			zap.String("transformer", transformer.Name()),
			zap.String("preset", string(preset)),
			zap.Error(toolErr),
		)

		_ = os.Remove(outputPath)
		if err := utils.CopyFile(inputPath, outputPath); err != nil {
			return models.TransformResult{}, apperrors.Wrap(apperrors.KindStorage, op, "failed to copy input to output", err)
		}
		status = models.TransformCopiedFallback
	}

	size, err := utils.FileSize(outputPath)
	if err != nil {
		return models.TransformResult{}, apperrors.Wrap(apperrors.KindStorage, op, "failed to stat output", err)
	}

	p.metrics.ObserveTransform(string(preset), transformer.Name(), string(status), time.Since(start).Seconds())

	return models.TransformResult{SizeBytes: size, Status: status}, nil
}

func (p *Processor) run(ctx context.Context, t Transformer, inputPath, outputPath string, profile Profile) error {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	if err := t.Transform(ctx, inputPath, outputPath, profile); err != nil {
		return err
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return os.ErrNotExist
	}
	return nil
}

func (p *Processor) transformerFor(inputPath string) Transformer {
	if utils.IsImageExt(utils.Ext(inputPath, "")) && p.image != nil {
		return p.image
	}
	return p.document
}
