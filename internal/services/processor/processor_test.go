package processor

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/phambaophuc/filekit-workers/internal/config"
	apperrors "github.com/phambaophuc/filekit-workers/internal/errors"
	"github.com/phambaophuc/filekit-workers/internal/models"
)

// fakeGhostscript writes an executable shell script standing in for gs.
func fakeGhostscript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script stand-in requires a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "gs")
	script := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(path, []byte(script), 0755); err != nil {
		t.Fatalf("write fake gs: %v", err)
	}
	return path
}

const writeTinyOutput = `for arg in "$@"; do
  case "$arg" in
    -sOutputFile=*) out="${arg#-sOutputFile=}" ;;
  esac
done
echo "$@" > "$out.args"
printf 'tiny' > "$out"`

func newTestProcessor(gsPath string, timeout time.Duration, policy string) *Processor {
	cfg := config.CompressionConfig{
		GhostscriptPath:  gsPath,
		TransformTimeout: timeout,
		PresetPolicy:     policy,
	}
	return NewProcessor(cfg, nil, nil)
}

func writeInput(t *testing.T, name string, size int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, bytes.Repeat([]byte("p"), size), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func assertSameBytes(t *testing.T, a, b string) {
	t.Helper()
	left, err := os.ReadFile(a)
	if err != nil {
		t.Fatal(err)
	}
	right, err := os.ReadFile(b)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(left, right) {
		t.Errorf("%s and %s differ", a, b)
	}
}

func TestResolvePreset(t *testing.T) {
	tests := []struct {
		name    string
		strict  bool
		want    models.Preset
		known   bool
		wantErr bool
	}{
		{"balanced", false, models.PresetBalanced, true, false},
		{"strong", true, models.PresetStrong, true, false},
		{"max", false, models.PresetMax, true, false},
		{"ultra", false, models.PresetBalanced, false, false},
		{"ultra", true, "", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, known, err := ResolvePreset(tt.name, tt.strict)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !apperrors.IsKind(err, apperrors.KindValidation) {
				t.Errorf("expected validation error, got %v", err)
			}
			if got != tt.want || known != tt.known {
				t.Errorf("got (%q, %v), want (%q, %v)", got, known, tt.want, tt.known)
			}
		})
	}
}

func TestProfileFor(t *testing.T) {
	tests := map[models.Preset]string{
		models.PresetBalanced: "/printer",
		models.PresetStrong:   "/ebook",
		models.PresetMax:      "/screen",
		"unknown":             "/printer",
	}
	for preset, want := range tests {
		if got := ProfileFor(preset).PDFSettings; got != want {
			t.Errorf("ProfileFor(%q).PDFSettings = %q, want %q", preset, got, want)
		}
	}
}

func TestGhostscriptArgs(t *testing.T) {
	const prefix = "-dBATCH -dNOPAUSE -dSAFER -dQUIET -sDEVICE=pdfwrite -dPDFSETTINGS=/ebook "

	tests := []struct {
		name   string
		input  string
		output string
		want   string
	}{
		{"plain paths", "in.pdf", "out/file.pdf", "-sOutputFile=out/file.pdf in.pdf"},
		{"percent in output dir", "in.pdf", "scratch%d/rep%d/file-0-compressed.pdf", "-sOutputFile=scratch%%d/rep%%d/file-0-compressed.pdf in.pdf"},
		{"input looks like a switch", "-dNOSAFER.pdf", "out/file.pdf", "-sOutputFile=out/file.pdf ./-dNOSAFER.pdf"},
		{"absolute input untouched", "/data/-x.pdf", "out/file.pdf", "-sOutputFile=out/file.pdf /data/-x.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := ghostscriptArgs(tt.input, tt.output, ProfileFor(models.PresetStrong))
			if got := strings.Join(args, " "); got != prefix+tt.want {
				t.Errorf("args = %q, want %q", got, prefix+tt.want)
			}
		})
	}
}

func TestTransform_Compressed(t *testing.T) {
	gs := fakeGhostscript(t, writeTinyOutput)
	p := newTestProcessor(gs, 10*time.Second, config.PresetPolicyDefault)

	input := writeInput(t, "doc.pdf", 1000)
	output := filepath.Join(t.TempDir(), "nested", "job", "file-0-compressed.pdf")

	res, err := p.Transform(context.Background(), input, output, "strong")
	if err != nil {
		t.Fatalf("Transform() error: %v", err)
	}
	if res.Status != models.TransformCompressed {
		t.Errorf("Status = %q, want compressed", res.Status)
	}
	if res.SizeBytes != 4 {
		t.Errorf("SizeBytes = %d, want 4", res.SizeBytes)
	}

	args, err := os.ReadFile(output + ".args")
	if err != nil {
		t.Fatalf("read recorded args: %v", err)
	}
	if !strings.Contains(string(args), "-dPDFSETTINGS=/ebook") {
		t.Errorf("recorded args %q missing /ebook", args)
	}
}

func TestTransform_UnknownPresetUsesPrinter(t *testing.T) {
	gs := fakeGhostscript(t, writeTinyOutput)
	p := newTestProcessor(gs, 10*time.Second, config.PresetPolicyDefault)

	input := writeInput(t, "doc.pdf", 10)
	output := filepath.Join(t.TempDir(), "out.pdf")

	if _, err := p.Transform(context.Background(), input, output, "ultra"); err != nil {
		t.Fatalf("Transform() error: %v", err)
	}
	args, err := os.ReadFile(output + ".args")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(args), "-dPDFSETTINGS=/printer") {
		t.Errorf("recorded args %q missing /printer", args)
	}
}

func TestTransform_StrictPolicyRejectsUnknownPreset(t *testing.T) {
	p := newTestProcessor("gs", time.Second, config.PresetPolicyStrict)

	input := writeInput(t, "doc.pdf", 10)
	outDir := filepath.Join(t.TempDir(), "job")

	_, err := p.Transform(context.Background(), input, filepath.Join(outDir, "out.pdf"), "ultra")
	if !apperrors.IsKind(err, apperrors.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, statErr := os.Stat(outDir); !os.IsNotExist(statErr) {
		t.Error("output directory must not be created for a rejected preset")
	}
}

func TestTransform_FallbackCases(t *testing.T) {
	tests := []struct {
		name    string
		script  string
		missing bool
		timeout time.Duration
	}{
		{name: "tool missing", missing: true, timeout: time.Second},
		{name: "non-zero exit", script: "echo boom >&2\nexit 3", timeout: 5 * time.Second},
		{name: "no output written", script: "exit 0", timeout: 5 * time.Second},
		{name: "timeout", script: "exec sleep 5", timeout: 200 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gs := filepath.Join(t.TempDir(), "does-not-exist", "gs")
			if !tt.missing {
				gs = fakeGhostscript(t, tt.script)
			}
			p := newTestProcessor(gs, tt.timeout, config.PresetPolicyDefault)

			input := writeInput(t, "doc.pdf", 4096)
			output := filepath.Join(t.TempDir(), "job", "file-0-compressed.pdf")

			res, err := p.Transform(context.Background(), input, output, "max")
			if err != nil {
				t.Fatalf("Transform() error: %v", err)
			}
			if res.Status != models.TransformCopiedFallback {
				t.Errorf("Status = %q, want copied-fallback", res.Status)
			}
			if res.SizeBytes != 4096 {
				t.Errorf("SizeBytes = %d, want 4096", res.SizeBytes)
			}
			assertSameBytes(t, input, output)
		})
	}
}

func TestTransform_CancelledContext(t *testing.T) {
	gs := fakeGhostscript(t, writeTinyOutput)
	p := newTestProcessor(gs, time.Second, config.PresetPolicyDefault)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	input := writeInput(t, "doc.pdf", 10)
	_, err := p.Transform(ctx, input, filepath.Join(t.TempDir(), "out.pdf"), "balanced")
	if !apperrors.IsKind(err, apperrors.KindTransform) {
		t.Fatalf("expected transform error, got %v", err)
	}
}

func TestTransform_Image(t *testing.T) {
	p := newTestProcessor("gs", 10*time.Second, config.PresetPolicyDefault)

	img := image.NewNRGBA(image.Rect(0, 0, 3200, 800))
	for x := 0; x < 3200; x += 7 {
		img.Set(x, x%800, color.NRGBA{R: uint8(x), G: 90, B: 30, A: 255})
	}
	input := filepath.Join(t.TempDir(), "wide.png")
	f, err := os.Create(input)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	f.Close()

	output := filepath.Join(t.TempDir(), "file-0-compressed.png")
	res, err := p.Transform(context.Background(), input, output, "max")
	if err != nil {
		t.Fatalf("Transform() error: %v", err)
	}
	if res.Status != models.TransformCompressed {
		t.Fatalf("Status = %q, want compressed", res.Status)
	}

	out, err := os.Open(output)
	if err != nil {
		t.Fatal(err)
	}
	defer out.Close()
	cfg, err := png.DecodeConfig(out)
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if cfg.Width != 1600 || cfg.Height != 400 {
		t.Errorf("output is %dx%d, want 1600x400", cfg.Width, cfg.Height)
	}
}

func TestTransform_UndecodableImageFallsBack(t *testing.T) {
	p := newTestProcessor("gs", time.Second, config.PresetPolicyDefault)

	input := writeInput(t, "photo.jpg", 64)
	output := filepath.Join(t.TempDir(), "file-0-compressed.jpg")

	res, err := p.Transform(context.Background(), input, output, "strong")
	if err != nil {
		t.Fatalf("Transform() error: %v", err)
	}
	if res.Status != models.TransformCopiedFallback || res.SizeBytes != 64 {
		t.Errorf("got %+v, want copied-fallback of 64 bytes", res)
	}
	assertSameBytes(t, input, output)
}
