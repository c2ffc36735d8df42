package models

import "time"

type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusProcessing JobStatus = "processing"
	StatusDone       JobStatus = "done"
	StatusFailed     JobStatus = "failed"
)

const ToolCompressBatch = "pdf.compress.batch"

// CanTransition reports whether a job may move from s to next.
func (s JobStatus) CanTransition(next JobStatus) bool {
	switch s {
	case StatusQueued:
		return next == StatusProcessing || next == StatusFailed
	case StatusProcessing:
		return next == StatusDone || next == StatusFailed
	default:
		return false
	}
}

func (s JobStatus) Terminal() bool {
	return s == StatusDone || s == StatusFailed
}

type ProcessingJob struct {
	ID        string               `json:"id"`
	Tool      string               `json:"tool"`
	Status    JobStatus            `json:"status"`
	Preset    string               `json:"preset"`
	Files     []FileInput          `json:"files"`
	Results   []CompressFileResult `json:"results,omitempty"`
	Error     string               `json:"error,omitempty"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
}

// CompressRequest rebuilds the batch request carried by the job.
func (j *ProcessingJob) CompressRequest() CompressRequest {
	return CompressRequest{
		JobID:  j.ID,
		Preset: j.Preset,
		Files:  j.Files,
	}
}

type EnqueueResponse struct {
	OK    bool   `json:"ok"`
	JobID string `json:"job_id"`
}

type JobResponse struct {
	OK  bool           `json:"ok"`
	Job *ProcessingJob `json:"job"`
}
