package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/phambaophuc/filekit-workers/internal/config"
	"github.com/phambaophuc/filekit-workers/pkg/utils"
	storage_go "github.com/supabase-community/storage-go"
)

// Mirror copies a committed output to an object store.
type Mirror interface {
	Name() string
	Upload(ctx context.Context, key, localPath string) error
	HealthCheck(ctx context.Context) error
}

// MirrorKey is the object key of an output inside a mirror.
func MirrorKey(jobID, localPath string) string {
	return path.Join(jobID, filepath.Base(localPath))
}

type SupabaseMirror struct {
	sbClient *storage_go.Client
	bucket   string
}

func NewSupabaseMirror(cfg config.SupabaseConfig) *SupabaseMirror {
	return &SupabaseMirror{
		sbClient: storage_go.NewClient(cfg.URL+"/storage/v1", cfg.KEY, nil),
		bucket:   cfg.BUCKET,
	}
}

func (m *SupabaseMirror) Name() string {
	return "supabase"
}

// Upload uploads the file to Supabase Storage, replacing any earlier object.
func (m *SupabaseMirror) Upload(ctx context.Context, key, localPath string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open output: %w", err)
	}
	defer f.Close()

	contentType := utils.ContentTypeFor(utils.Ext(localPath, ""))
	upsert := true

	_, err = m.sbClient.UploadFile(m.bucket, key, f, storage_go.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return fmt.Errorf("failed to upload to supabase: %w", err)
	}
	return nil
}

func (m *SupabaseMirror) HealthCheck(ctx context.Context) error {
	_, err := m.sbClient.ListFiles(m.bucket, "", storage_go.FileSearchOptions{})
	return err
}
