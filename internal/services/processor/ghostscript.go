package processor

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// GhostscriptTransformer rewrites documents through Ghostscript's pdfwrite device.
type GhostscriptTransformer struct {
	binary string
}

func NewGhostscriptTransformer(binary string) *GhostscriptTransformer {
	if binary == "" {
		binary = "gs"
	}
	return &GhostscriptTransformer{binary: binary}
}

func (g *GhostscriptTransformer) Name() string {
	return "ghostscript"
}

func (g *GhostscriptTransformer) Transform(ctx context.Context, inputPath, outputPath string, profile Profile) error {
	cmd := exec.CommandContext(ctx, g.binary, ghostscriptArgs(inputPath, outputPath, profile)...)
	// Do not wait on grandchildren still holding the output pipe after a kill.
	cmd.WaitDelay = 2 * time.Second

	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ghostscript failed: %w, output: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

func ghostscriptArgs(inputPath, outputPath string, profile Profile) []string {
	return []string{
		"-dBATCH",
		"-dNOPAUSE",
		"-dSAFER",
		"-dQUIET",
		"-sDEVICE=pdfwrite",
		"-dPDFSETTINGS=" + profile.PDFSettings,
		"-sOutputFile=" + escapeOutputFile(outputPath),
		positionalPath(inputPath),
	}
}

// escapeOutputFile doubles % so Ghostscript does not expand it as a page template.
func escapeOutputFile(path string) string {
	return strings.ReplaceAll(path, "%", "%%")
}

// positionalPath keeps a file name starting with "-" from being read as a switch.
func positionalPath(path string) string {
	if strings.HasPrefix(path, "-") {
		return "./" + path
	}
	return path
}
