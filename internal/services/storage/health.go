package storage

import (
	"context"
	"os"

	"github.com/google/uuid"
	"github.com/phambaophuc/filekit-workers/pkg/utils"
)

// HealthCheck checks that the output root is writable and every mirror is reachable.
func (s *StorageService) HealthCheck(ctx context.Context) map[string]string {
	status := make(map[string]string)

	if err := s.checkWritable(); err != nil {
		status["output_root"] = "unhealthy: " + err.Error()
	} else {
		status["output_root"] = "healthy"
	}

	for _, m := range s.mirrors {
		if err := m.HealthCheck(ctx); err != nil {
			status[m.Name()] = "unhealthy: " + err.Error()
		} else {
			status[m.Name()] = "healthy"
		}
	}

	return status
}

func (s *StorageService) checkWritable() error {
	if err := os.MkdirAll(s.root, utils.DefaultDirPermissions); err != nil {
		return err
	}
	f, err := os.CreateTemp(s.root, ".health-"+uuid.NewString())
	if err != nil {
		return err
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}
