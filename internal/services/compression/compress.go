package compression

import (
	"context"
	"os"

	apperrors "github.com/phambaophuc/filekit-workers/internal/errors"
	"github.com/phambaophuc/filekit-workers/internal/models"
	"github.com/phambaophuc/filekit-workers/internal/services/storage"
	"github.com/phambaophuc/filekit-workers/pkg/utils"
	"go.uber.org/zap"
)

// Compress writes one compressed output per file under the job directory and
// reports the sizes. A missing input aborts the whole batch.
func (s *Service) Compress(ctx context.Context, req models.CompressRequest) ([]models.CompressFileResult, error) {
	const op = "compression.Compress"

	if err := s.checkBatch(op, len(req.Files)); err != nil {
		return nil, err
	}

	if err := storage.ValidateJobID(req.JobID); err != nil {
		return nil, err
	}

	preset, ok := models.ParsePreset(req.Preset)
	if !ok {
		return nil, apperrors.New(apperrors.KindValidation, op, "Invalid preset: "+req.Preset)
	}

	for _, file := range req.Files {
		if err := checkInput(op, file.InputPath); err != nil {
			return nil, err
		}
	}

	if _, err := s.outputs.PrepareJobDir(req.JobID); err != nil {
		return nil, err
	}

	results := make([]models.CompressFileResult, 0, len(req.Files))
	committed := make([]string, 0, len(req.Files))

	for index, file := range req.Files {
		if err := ctx.Err(); err != nil {
			return nil, apperrors.Wrap(apperrors.KindTransform, op, "compression cancelled", err)
		}

		// Inputs may disappear after the upfront check.
		if err := checkInput(op, file.InputPath); err != nil {
			return nil, err
		}

		originalSize, err := utils.FileSize(file.InputPath)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.KindValidation, op, "File not found: "+file.InputPath, err)
		}

		outputPath, err := s.outputs.OutputPath(req.JobID, index, utils.Ext(file.InputPath, ".pdf"))
		if err != nil {
			return nil, err
		}

		res, err := s.transformer.Transform(ctx, file.InputPath, outputPath, string(preset))
		if err != nil {
			return nil, err
		}

		result := models.CompressFileResult{
			InputPath:      file.InputPath,
			OutputPath:     utils.ToSlash(outputPath),
			OriginalSize:   originalSize,
			CompressedSize: res.SizeBytes,
		}
		if s.exposeStatus {
			result.Status = res.Status
		}

		results = append(results, result)
		committed = append(committed, outputPath)
	}

	// Mirror failures are logged by the store and never fail the batch.
	_ = s.outputs.MirrorOutputs(ctx, req.JobID, committed)

	s.metrics.AddBatchFiles("compress", len(results))
	s.logger.Info("Batch compressed",
		zap.String("job_id", req.JobID),
		zap.String("preset", string(preset)),
		zap.Int("files", len(results)),
	)

	return results, nil
}

func checkInput(op, path string) error {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return apperrors.New(apperrors.KindValidation, op, "File not found: "+path)
	}
	return nil
}
