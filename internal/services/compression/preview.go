package compression

import (
	"context"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	apperrors "github.com/phambaophuc/filekit-workers/internal/errors"
	"github.com/phambaophuc/filekit-workers/internal/models"
	"github.com/phambaophuc/filekit-workers/pkg/utils"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Preview estimates the compressed size of every file under every requested
// preset by running the real transformation into scratch files. Results keep
// the input order; corrupted files carry no estimates.
func (s *Service) Preview(ctx context.Context, req models.PreviewRequest) ([]models.PreviewFileResult, error) {
	const op = "compression.Preview"

	if err := s.checkBatch(op, len(req.Files)); err != nil {
		return nil, err
	}

	presets, err := s.requestedPresets(req.Presets)
	if err != nil {
		return nil, err
	}

	results := make([]models.PreviewFileResult, len(req.Files))

	inspectGroup, inspectCtx := errgroup.WithContext(ctx)
	inspectGroup.SetLimit(s.concurrency)

	for i, file := range req.Files {
		i, file := i, file
		inspectGroup.Go(func() error {
			info := s.inspector.Inspect(inspectCtx, file.InputPath)
			results[i] = models.PreviewFileResult{
				InputPath:    file.InputPath,
				OriginalSize: info.SizeBytes,
				IsCorrupted:  info.IsCorrupted,
				Presets:      map[string]models.PresetEstimate{},
			}
			return nil
		})
	}
	_ = inspectGroup.Wait()

	estimates := make([][]int64, len(req.Files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, file := range req.Files {
		i, file := i, file
		if results[i].IsCorrupted {
			continue
		}
		estimates[i] = make([]int64, len(presets))
		for j, preset := range presets {
			j, preset := j, preset
			g.Go(func() error {
				size, err := s.estimate(gctx, file.InputPath, preset)
				if err != nil {
					return err
				}
				estimates[i][j] = size
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, apperrors.Wrap(apperrors.KindTransform, op, "preview estimation failed", err)
	}

	for i := range results {
		if estimates[i] == nil {
			continue
		}
		for j, preset := range presets {
			results[i].Presets[preset] = models.PresetEstimate{EstimatedSize: estimates[i][j]}
		}
	}

	s.metrics.AddBatchFiles("preview", len(req.Files))
	s.logger.Info("Preview completed",
		zap.String("session_id", req.SessionID),
		zap.Int("files", len(req.Files)),
		zap.Int("presets", len(presets)),
	)

	return results, nil
}

// requestedPresets drops duplicate names, keeping first occurrences in order.
// Unknown names are checked against the preset policy up front.
func (s *Service) requestedPresets(names []string) ([]string, error) {
	seen := make(map[string]struct{}, len(names))
	presets := make([]string, 0, len(names))

	for _, name := range names {
		if _, ok := seen[name]; ok {
			continue
		}
		if _, err := s.transformer.ResolvePreset(name); err != nil {
			return nil, err
		}
		seen[name] = struct{}{}
		presets = append(presets, name)
	}

	return presets, nil
}

// estimate measures one transformation in a scratch file that is removed
// before returning, whatever the outcome.
func (s *Service) estimate(ctx context.Context, inputPath, preset string) (int64, error) {
	scratch := filepath.Join(s.scratchDir, "preview-"+uuid.NewString()+utils.Ext(inputPath, ".pdf"))

	defer func() {
		if err := os.Remove(scratch); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("Failed to remove scratch file",
				zap.String("path", scratch),
				zap.Error(err),
			)
		}
	}()

	res, err := s.transformer.Transform(ctx, inputPath, scratch, preset)
	if err != nil {
		return 0, err
	}

	return res.SizeBytes, nil
}
