package jobs

import (
	"context"
	"sync"

	"github.com/phambaophuc/filekit-workers/internal/models"
)

type memoryStore struct {
	mu   sync.RWMutex
	jobs map[string]*models.ProcessingJob
}

// NewMemory returns a process-local store. Records do not survive a restart.
func NewMemory() Store {
	return &memoryStore{jobs: make(map[string]*models.ProcessingJob)}
}

func (s *memoryStore) Create(_ context.Context, job *models.ProcessingJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[job.ID]; ok {
		return alreadyExists(job.ID)
	}
	s.jobs[job.ID] = clone(job)
	return nil
}

func (s *memoryStore) Get(_ context.Context, id string) (*models.ProcessingJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, notFound(id)
	}
	return clone(job), nil
}

func (s *memoryStore) Transition(_ context.Context, id string, next models.JobStatus, mutate func(*models.ProcessingJob)) (*models.ProcessingJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.jobs[id]
	if !ok {
		return nil, notFound(id)
	}

	job := clone(current)
	if err := applyTransition(job, next, mutate); err != nil {
		return nil, err
	}
	s.jobs[id] = job
	return clone(job), nil
}

func (s *memoryStore) Ping(context.Context) error {
	return nil
}

func (s *memoryStore) Close() error {
	return nil
}

func clone(job *models.ProcessingJob) *models.ProcessingJob {
	c := *job
	c.Files = append([]models.FileInput(nil), job.Files...)
	c.Results = append([]models.CompressFileResult(nil), job.Results...)
	return &c
}
