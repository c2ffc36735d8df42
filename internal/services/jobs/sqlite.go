package jobs

import (
	"context"
	"errors"
	"time"

	apperrors "github.com/phambaophuc/filekit-workers/internal/errors"
	"github.com/phambaophuc/filekit-workers/internal/models"
	"gorm.io/gorm"
)

type jobRecord struct {
	ID        string                      `gorm:"primaryKey;size:64"`
	Tool      string                      `gorm:"size:64"`
	Status    string                      `gorm:"size:16;index"`
	Preset    string                      `gorm:"size:32"`
	Files     []models.FileInput          `gorm:"serializer:json"`
	Results   []models.CompressFileResult `gorm:"serializer:json"`
	Error     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (jobRecord) TableName() string {
	return "processing_jobs"
}

func recordFrom(job *models.ProcessingJob) *jobRecord {
	return &jobRecord{
		ID:        job.ID,
		Tool:      job.Tool,
		Status:    string(job.Status),
		Preset:    job.Preset,
		Files:     job.Files,
		Results:   job.Results,
		Error:     job.Error,
		CreatedAt: job.CreatedAt,
		UpdatedAt: job.UpdatedAt,
	}
}

func (r *jobRecord) toModel() *models.ProcessingJob {
	return &models.ProcessingJob{
		ID:        r.ID,
		Tool:      r.Tool,
		Status:    models.JobStatus(r.Status),
		Preset:    r.Preset,
		Files:     r.Files,
		Results:   r.Results,
		Error:     r.Error,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type sqliteStore struct {
	db *gorm.DB
}

// NewSQLite migrates the jobs table and returns a gorm-backed store.
func NewSQLite(db *gorm.DB) (Store, error) {
	if err := db.AutoMigrate(&jobRecord{}); err != nil {
		return nil, apperrors.Wrap(apperrors.KindStorage, "jobs.NewSQLite", "failed to migrate jobs table", err)
	}
	return &sqliteStore{db: db}, nil
}

func (s *sqliteStore) Create(ctx context.Context, job *models.ProcessingJob) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&jobRecord{}).Where("id = ?", job.ID).Count(&count).Error; err != nil {
			return apperrors.Wrap(apperrors.KindStorage, "jobs.Create", "failed to check job", err)
		}
		if count > 0 {
			return alreadyExists(job.ID)
		}
		if err := tx.Create(recordFrom(job)).Error; err != nil {
			return apperrors.Wrap(apperrors.KindStorage, "jobs.Create", "failed to store job", err)
		}
		return nil
	})
}

func (s *sqliteStore) Get(ctx context.Context, id string) (*models.ProcessingJob, error) {
	rec, err := s.find(s.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	return rec.toModel(), nil
}

func (s *sqliteStore) find(db *gorm.DB, id string) (*jobRecord, error) {
	var rec jobRecord
	if err := db.Where("id = ?", id).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(id)
		}
		return nil, apperrors.Wrap(apperrors.KindStorage, "jobs.Get", "failed to read job", err)
	}
	return &rec, nil
}

func (s *sqliteStore) Transition(ctx context.Context, id string, next models.JobStatus, mutate func(*models.ProcessingJob)) (*models.ProcessingJob, error) {
	var updated *models.ProcessingJob

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec, err := s.find(tx, id)
		if err != nil {
			return err
		}

		job := rec.toModel()
		if err := applyTransition(job, next, mutate); err != nil {
			return err
		}

		if err := tx.Save(recordFrom(job)).Error; err != nil {
			return apperrors.Wrap(apperrors.KindStorage, "jobs.Transition", "failed to update job", err)
		}
		updated = job
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *sqliteStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *sqliteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
