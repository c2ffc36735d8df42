package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/phambaophuc/filekit-workers/internal/config"
	apperrors "github.com/phambaophuc/filekit-workers/internal/errors"
	"github.com/phambaophuc/filekit-workers/pkg/utils"
	"go.uber.org/zap"
)

// StorageService owns the output tree on shared storage and fans committed
// outputs out to the configured mirrors.
type StorageService struct {
	root    string
	mirrors []Mirror
	logger  *zap.Logger
}

func NewStorageService(cfg *config.Config, logger *zap.Logger) (*StorageService, error) {
	mirrors := make([]Mirror, 0, 2)

	if cfg.Supabase.URL != "" && cfg.Supabase.BUCKET != "" {
		mirrors = append(mirrors, NewSupabaseMirror(cfg.Supabase))
	}

	if cfg.S3.Bucket != "" {
		s3Mirror, err := NewS3Mirror(cfg.S3)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.KindConfig, "storage.NewStorageService", "failed to init s3 mirror", err)
		}
		mirrors = append(mirrors, s3Mirror)
	}

	return NewStorageServiceWith(cfg.Storage.OutputRoot, logger, mirrors...), nil
}

func NewStorageServiceWith(root string, logger *zap.Logger, mirrors ...Mirror) *StorageService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StorageService{
		root:    root,
		mirrors: mirrors,
		logger:  logger,
	}
}

func (s *StorageService) Root() string {
	return s.root
}

// ValidateJobID rejects identifiers that would escape the output root, span
// more than one directory level or carry an output-file template (%).
func ValidateJobID(jobID string) error {
	const op = "storage.ValidateJobID"

	if strings.TrimSpace(jobID) == "" {
		return apperrors.New(apperrors.KindValidation, op, "job_id is required")
	}
	if jobID == "." || jobID == ".." || strings.ContainsAny(jobID, `/\%`) || strings.ContainsRune(jobID, 0) {
		return apperrors.New(apperrors.KindValidation, op, "invalid job_id: "+jobID)
	}
	return nil
}

// JobDir returns the directory holding every output of jobID.
func (s *StorageService) JobDir(jobID string) (string, error) {
	if err := ValidateJobID(jobID); err != nil {
		return "", err
	}

	dir := filepath.Join(s.root, jobID)

	// Security: prevent directory traversal
	if filepath.Dir(filepath.Clean(dir)) != filepath.Clean(s.root) {
		return "", apperrors.New(apperrors.KindValidation, "storage.JobDir", "invalid job_id: path traversal detected")
	}

	return dir, nil
}

// PrepareJobDir creates the job directory. Calling it again is a no-op.
func (s *StorageService) PrepareJobDir(jobID string) (string, error) {
	dir, err := s.JobDir(jobID)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, utils.DefaultDirPermissions); err != nil {
		return "", apperrors.Wrap(apperrors.KindStorage, "storage.PrepareJobDir", "failed to create job directory", err)
	}
	return dir, nil
}

// OutputName is the deterministic file name of the index-th output.
func OutputName(index int, ext string) string {
	return fmt.Sprintf("file-%d-compressed%s", index, ext)
}

// OutputPath returns the output location of the index-th file of jobID.
func (s *StorageService) OutputPath(jobID string, index int, ext string) (string, error) {
	dir, err := s.JobDir(jobID)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, OutputName(index, ext)), nil
}
