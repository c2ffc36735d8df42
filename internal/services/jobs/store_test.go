package jobs

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/phambaophuc/filekit-workers/internal/config"
	apperrors "github.com/phambaophuc/filekit-workers/internal/errors"
	"github.com/phambaophuc/filekit-workers/internal/models"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newMiniredisStore(t *testing.T) (Store, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedis(client, time.Hour)
	t.Cleanup(func() { store.Close() })
	return store, mr
}

func newTestSQLiteStore(t *testing.T) Store {
	t.Helper()
	dsn := fmt.Sprintf("file:jobs-%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	store, err := NewSQLite(db)
	if err != nil {
		t.Fatalf("NewSQLite error: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func backends(t *testing.T) map[string]Store {
	redisStore, _ := newMiniredisStore(t)
	return map[string]Store{
		"memory": NewMemory(),
		"redis":  redisStore,
		"sqlite": newTestSQLiteStore(t),
	}
}

func sampleRequest(id string) models.CompressRequest {
	return models.CompressRequest{
		JobID:  id,
		Preset: "max",
		Files:  []models.FileInput{{InputPath: "tmp/uploads/s1/file-0.pdf"}},
	}
}

func TestStoreLifecycle(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			job := NewJob(sampleRequest("job-" + name))

			if err := store.Create(ctx, job); err != nil {
				t.Fatalf("Create error: %v", err)
			}

			got, err := store.Get(ctx, job.ID)
			if err != nil {
				t.Fatalf("Get error: %v", err)
			}
			if got.Status != models.StatusQueued || got.Tool != models.ToolCompressBatch {
				t.Fatalf("unexpected job: %+v", got)
			}
			if len(got.Files) != 1 || got.Files[0].InputPath != "tmp/uploads/s1/file-0.pdf" {
				t.Fatalf("files not persisted: %+v", got.Files)
			}

			if _, err := store.Transition(ctx, job.ID, models.StatusProcessing, nil); err != nil {
				t.Fatalf("Transition to processing: %v", err)
			}

			results := []models.CompressFileResult{{
				InputPath:      "tmp/uploads/s1/file-0.pdf",
				OutputPath:     "tmp/uploads/job/file-0-compressed.pdf",
				OriginalSize:   100,
				CompressedSize: 60,
			}}
			done, err := store.Transition(ctx, job.ID, models.StatusDone, func(j *models.ProcessingJob) {
				j.Results = results
			})
			if err != nil {
				t.Fatalf("Transition to done: %v", err)
			}
			if done.Status != models.StatusDone {
				t.Errorf("status = %s", done.Status)
			}

			got, err = store.Get(ctx, job.ID)
			if err != nil {
				t.Fatalf("Get after done: %v", err)
			}
			if len(got.Results) != 1 || got.Results[0] != results[0] {
				t.Errorf("results not persisted: %+v", got.Results)
			}

			_, err = store.Transition(ctx, job.ID, models.StatusProcessing, nil)
			if !apperrors.IsKind(err, apperrors.KindConflict) {
				t.Errorf("expected conflict leaving a terminal state, got %v", err)
			}
		})
	}
}

func TestStoreErrors(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			if _, err := store.Get(ctx, "nope"); !apperrors.IsKind(err, apperrors.KindNotFound) {
				t.Errorf("Get unknown: expected not found, got %v", err)
			}
			if _, err := store.Transition(ctx, "nope", models.StatusProcessing, nil); !apperrors.IsKind(err, apperrors.KindNotFound) {
				t.Errorf("Transition unknown: expected not found, got %v", err)
			}

			job := NewJob(sampleRequest("dup-" + name))
			if err := store.Create(ctx, job); err != nil {
				t.Fatalf("Create error: %v", err)
			}
			if err := store.Create(ctx, job); !apperrors.IsKind(err, apperrors.KindConflict) {
				t.Errorf("duplicate Create: expected conflict, got %v", err)
			}

			if _, err := store.Transition(ctx, job.ID, models.StatusDone, nil); !apperrors.IsKind(err, apperrors.KindConflict) {
				t.Errorf("queued -> done: expected conflict, got %v", err)
			}

			failed, err := store.Transition(ctx, job.ID, models.StatusFailed, func(j *models.ProcessingJob) {
				j.Error = "boom"
			})
			if err != nil {
				t.Fatalf("queued -> failed: %v", err)
			}
			if failed.Error != "boom" {
				t.Errorf("error message not stored: %+v", failed)
			}

			if err := store.Ping(ctx); err != nil {
				t.Errorf("Ping error: %v", err)
			}
		})
	}
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	job := NewJob(sampleRequest("copy"))
	if err := store.Create(ctx, job); err != nil {
		t.Fatal(err)
	}

	got, _ := store.Get(ctx, "copy")
	got.Files[0].InputPath = "mutated"
	got.Status = models.StatusDone

	again, _ := store.Get(ctx, "copy")
	if again.Files[0].InputPath != "tmp/uploads/s1/file-0.pdf" || again.Status != models.StatusQueued {
		t.Errorf("store state leaked through returned pointer: %+v", again)
	}
}

func TestRedisStoreKeyAndTTL(t *testing.T) {
	store, mr := newMiniredisStore(t)
	if err := store.Create(context.Background(), NewJob(sampleRequest("ttl"))); err != nil {
		t.Fatal(err)
	}

	if !mr.Exists("job:ttl") {
		t.Fatal("expected job:ttl key")
	}
	if ttl := mr.TTL("job:ttl"); ttl != time.Hour {
		t.Errorf("TTL = %v, want 1h", ttl)
	}

	mr.FastForward(2 * time.Hour)
	if _, err := store.Get(context.Background(), "ttl"); !apperrors.IsKind(err, apperrors.KindNotFound) {
		t.Errorf("expected expired job to be gone, got %v", err)
	}
}

func TestNewJobGeneratesID(t *testing.T) {
	job := NewJob(models.CompressRequest{Preset: "balanced"})
	if job.ID == "" {
		t.Error("expected generated id")
	}
	if job.Status != models.StatusQueued {
		t.Errorf("status = %s", job.Status)
	}
}

func TestFactory(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	defer mr.Close()

	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr bool
	}{
		{"memory", func(c *config.Config) { c.Jobs.Store = config.JobStoreMemory }, false},
		{"redis", func(c *config.Config) {
			c.Jobs.Store = config.JobStoreRedis
			c.Redis.Addr = mr.Addr()
		}, false},
		{"sqlite", func(c *config.Config) {
			c.Jobs.Store = config.JobStoreSQLite
			c.Jobs.SQLitePath = filepath.Join(t.TempDir(), "db", "jobs.db")
		}, false},
		{"unknown", func(c *config.Config) { c.Jobs.Store = "etcd" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{}
			tt.mutate(cfg)

			store, err := New(cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if store != nil {
				store.Close()
			}
		})
	}
}
