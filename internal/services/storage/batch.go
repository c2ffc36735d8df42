package storage

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
)

const mirrorWorkers = 5

// MirrorOutputs uploads the committed outputs of jobID to every mirror. Failures
// are logged and returned in aggregate; they never touch the local outputs.
func (s *StorageService) MirrorOutputs(ctx context.Context, jobID string, paths []string) error {
	if len(s.mirrors) == 0 || len(paths) == 0 {
		return nil
	}

	type upload struct {
		mirror Mirror
		path   string
	}

	uploads := make([]upload, 0, len(paths)*len(s.mirrors))
	for _, m := range s.mirrors {
		for _, p := range paths {
			uploads = append(uploads, upload{mirror: m, path: p})
		}
	}

	errs := make([]error, len(uploads))

	numWorkers := mirrorWorkers
	if len(uploads) < numWorkers {
		numWorkers = len(uploads)
	}

	jobs := make(chan int, len(uploads))
	var wg sync.WaitGroup

	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				u := uploads[i]
				errs[i] = u.mirror.Upload(ctx, MirrorKey(jobID, u.path), u.path)
			}
		}()
	}

	for i := range uploads {
		jobs <- i
	}
	close(jobs)

	wg.Wait()

	var failed []string
	for i, err := range errs {
		if err == nil {
			continue
		}
		s.logger.Warn("Mirror upload failed",
			zap.String("mirror", uploads[i].mirror.Name()),
			zap.String("job_id", jobID),
			zap.String("path", uploads[i].path),
			zap.Error(err),
		)
		failed = append(failed, fmt.Sprintf("%s %s: %v", uploads[i].mirror.Name(), uploads[i].path, err))
	}

	if len(failed) > 0 {
		return fmt.Errorf("failed to mirror %d files: %s", len(failed), strings.Join(failed, "; "))
	}

	return nil
}
