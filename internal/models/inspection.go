package models

type InspectionResult struct {
	IsCorrupted bool  `json:"is_corrupted"`
	PageCount   int   `json:"page_count"`
	SizeBytes   int64 `json:"size_bytes"`
	// Verified is false when no parser was available to judge the file.
	Verified bool `json:"verified"`
}

type TransformStatus string

const (
	TransformCompressed     TransformStatus = "compressed"
	TransformCopiedFallback TransformStatus = "copied-fallback"
)

type TransformResult struct {
	SizeBytes int64
	Status    TransformStatus
}
