package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/phambaophuc/filekit-workers/internal/config"
	"github.com/phambaophuc/filekit-workers/internal/http/handlers"
	"github.com/phambaophuc/filekit-workers/internal/metrics"
	"github.com/phambaophuc/filekit-workers/internal/models"
	"github.com/phambaophuc/filekit-workers/internal/services/compression"
	"github.com/phambaophuc/filekit-workers/internal/services/inspector"
	"github.com/phambaophuc/filekit-workers/internal/services/jobs"
	"github.com/phambaophuc/filekit-workers/internal/services/processor"
	"github.com/phambaophuc/filekit-workers/internal/services/storage"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

type testServer struct {
	engine *gin.Engine
	root   string
	inputs string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	base := t.TempDir()
	cfg := &config.Config{}
	cfg.Server.ServiceName = "pdf-worker"
	cfg.Storage.OutputRoot = filepath.Join(base, "uploads")
	cfg.Storage.ScratchDir = t.TempDir()
	cfg.Compression.GhostscriptPath = filepath.Join(base, "no-such-gs")
	cfg.Compression.TransformTimeout = 5 * time.Second
	cfg.Compression.PreviewConcurrency = 2

	logger := zap.NewNop()
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	// Page counting is faked; the real parser is covered in the inspector package.
	insp := inspector.NewDispatch(
		inspector.NewPDFInspectorWith(func(string) (int, error) { return 2, nil }),
		inspector.NewImageInspector(),
	)
	proc := processor.NewProcessor(cfg.Compression, m, logger)
	outputs := storage.NewStorageServiceWith(cfg.Storage.OutputRoot, logger)
	svc := compression.NewService(insp, proc, outputs, cfg, m, logger)
	store := jobs.NewMemory()

	router := NewRouter(
		handlers.NewCompressionHandler(svc, logger),
		handlers.NewJobHandler(nil, store, logger),
		handlers.NewHealthHandler(cfg.Server.ServiceName, outputs, store, nil),
		m,
		reg,
		[]string{"*"},
		logger,
	)

	inputs := filepath.Join(base, "inputs")
	if err := os.MkdirAll(inputs, 0755); err != nil {
		t.Fatal(err)
	}

	return &testServer{engine: router.SetupRoutes(), root: cfg.Storage.OutputRoot, inputs: inputs}
}

func (s *testServer) do(method, path, contentType, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	return rec
}

func TestCompressBatchWithoutGhostscript(t *testing.T) {
	s := newTestServer(t)
	input := filepath.Join(s.inputs, "a.pdf")
	if err := os.WriteFile(input, bytes.Repeat([]byte("x"), 100000), 0644); err != nil {
		t.Fatal(err)
	}

	body := `{"job_id":"job1","preset":"max","files":[{"input_path":"` + input + `"}]}`
	rec := s.do(http.MethodPost, "/compress-batch", "application/json", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp models.CompressResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.OK || len(resp.Files) != 1 {
		t.Fatalf("unexpected response: %s", rec.Body.String())
	}
	got := resp.Files[0]
	if !strings.HasSuffix(got.OutputPath, "/job1/file-0-compressed.pdf") {
		t.Errorf("output_path = %q", got.OutputPath)
	}
	if got.OriginalSize != 100000 || got.CompressedSize != 100000 {
		t.Errorf("sizes = %d/%d", got.OriginalSize, got.CompressedSize)
	}
	if strings.Contains(rec.Body.String(), `"status"`) {
		t.Error("transform status must be hidden by default")
	}
	if _, err := os.Stat(filepath.Join(s.root, "job1", "file-0-compressed.pdf")); err != nil {
		t.Errorf("output not written: %v", err)
	}
}

func TestCompressBatchMissingInput(t *testing.T) {
	s := newTestServer(t)
	missing := filepath.Join(s.inputs, "nope.pdf")

	rec := s.do(http.MethodPost, "/compress-batch", "application/json",
		`{"job_id":"job1","preset":"max","files":[{"input_path":"`+missing+`"}]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	want := `{"ok":false,"error":"File not found: ` + missing + `"}`
	if rec.Body.String() != want {
		t.Errorf("body = %s, want %s", rec.Body.String(), want)
	}
}

func TestPreviewEmptyFiles(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/compress-batch-preview", "application/json",
		`{"session_id":"s1","files":[],"presets":["balanced"]}`)
	if rec.Code != http.StatusBadRequest || rec.Body.String() != `{"ok":false,"error":"No files provided"}` {
		t.Errorf("got %d %s", rec.Code, rec.Body.String())
	}
}

func TestMultipartRejected(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/compress-batch", "multipart/form-data; boundary=x", "--x--")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestOperationalEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/health", "", "")
	if rec.Code != http.StatusOK || rec.Body.String() != `{"ok":true,"service":"pdf-worker"}` {
		t.Errorf("health = %d %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("security headers missing")
	}

	rec = s.do(http.MethodGet, "/health/ready", "", "")
	if rec.Code != http.StatusOK {
		t.Errorf("ready = %d %s", rec.Code, rec.Body.String())
	}

	rec = s.do(http.MethodPost, "/jobs/compress-batch", "application/json", `{"preset":"max","files":[{"input_path":"a.pdf"}]}`)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("enqueue without queue = %d, want 503", rec.Code)
	}

	rec = s.do(http.MethodGet, "/metrics", "", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "filekit_http_requests_total") {
		t.Errorf("metrics endpoint missing request counter:\n%s", rec.Body.String())
	}
}
