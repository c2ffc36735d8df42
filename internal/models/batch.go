package models

type FileInput struct {
	InputPath string `json:"input_path"`
}

type PreviewRequest struct {
	SessionID string      `json:"session_id"`
	Files     []FileInput `json:"files"`
	Presets   []string    `json:"presets"`
}

type PresetEstimate struct {
	EstimatedSize int64 `json:"estimated_size"`
}

type PreviewFileResult struct {
	InputPath    string                    `json:"input_path"`
	OriginalSize int64                     `json:"original_size"`
	IsCorrupted  bool                      `json:"is_corrupted"`
	Presets      map[string]PresetEstimate `json:"presets"`
}

type PreviewResponse struct {
	OK    bool                `json:"ok"`
	Files []PreviewFileResult `json:"files"`
}

type CompressRequest struct {
	JobID  string      `json:"job_id"`
	Preset string      `json:"preset"`
	Files  []FileInput `json:"files"`
}

type CompressFileResult struct {
	InputPath      string          `json:"input_path"`
	OutputPath     string          `json:"output_path"`
	OriginalSize   int64           `json:"original_size"`
	CompressedSize int64           `json:"compressed_size"`
	Status         TransformStatus `json:"status,omitempty"`
}

type CompressResponse struct {
	OK    bool                 `json:"ok"`
	Files []CompressFileResult `json:"files"`
}
