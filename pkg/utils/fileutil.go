package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const DefaultDirPermissions = 0o755

var imageExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// CopyFile copies src to dst byte-for-byte, creating dst's directory when needed.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source: %w", err)
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), DefaultDirPermissions); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create destination: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy data: %w", err)
	}

	return out.Close()
}

// FileSize returns the size in bytes of the file at path.
func FileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// Exists reports whether a regular file or directory exists at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ToSlash normalises both OS and Windows separators to '/'.
func ToSlash(path string) string {
	return strings.ReplaceAll(filepath.ToSlash(path), `\`, "/")
}

// Ext returns the lower-cased extension of path, or fallback when it has none.
func Ext(path, fallback string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" || ext == "." {
		return fallback
	}
	return ext
}

// IsImageExt reports whether ext names a raster image format the workers understand.
func IsImageExt(ext string) bool {
	_, ok := imageExtensions[strings.ToLower(ext)]
	return ok
}

// ContentTypeFor returns the MIME type used when mirroring a file with the given extension.
func ContentTypeFor(ext string) string {
	ext = strings.ToLower(ext)
	if ct, ok := imageExtensions[ext]; ok {
		return ct
	}
	if ext == ".pdf" {
		return "application/pdf"
	}
	return "application/octet-stream"
}
