package models

import (
	"time"
)

// FileRecord is the enriched metadata for a single scanned file.
// It is constructed once by the metadata extractor and never mutated
// afterwards; the result sink and the analytics consumers only read it.
type FileRecord struct {
	Path           string       `json:"path"`
	Name           string       `json:"name"`
	Size           int64        `json:"size"`
	CreatedTime    time.Time    `json:"created_time"`
	ModifiedTime   time.Time    `json:"modified_time"`
	AccessedTime   time.Time    `json:"accessed_time"`
	FileType       string       `json:"file_type"`
	MimeType       string       `json:"mime_type"`
	Hash           string       `json:"hash,omitempty"`
	PerceptualHash string       `json:"perceptual_hash,omitempty"`
	IsDirectory    bool         `json:"is_directory"`
	VideoMetadata  *VideoRecord `json:"video_metadata,omitempty"`
	AudioMetadata  *AudioRecord `json:"audio_metadata,omitempty"`
}

// VideoRecord holds stream and format attributes probed from a video file.
// Every numeric field is a pointer: a nil field means the attribute could
// not be probed, which is not the same thing as zero.
type VideoRecord struct {
	Width         *int                `json:"width,omitempty"`
	Height        *int                `json:"height,omitempty"`
	Duration      *float64            `json:"duration,omitempty"`
	Bitrate       *int64              `json:"bitrate,omitempty"`
	Codec         string              `json:"codec,omitempty"`
	FPS           *float64            `json:"fps,omitempty"`
	FileSize      *int64              `json:"file_size,omitempty"`
	IsLowQuality  *bool               `json:"is_low_quality,omitempty"`
	Screenshots   []string            `json:"video_screenshots,omitempty"`
	QualityResult *VideoQualityResult `json:"video_quality_result,omitempty"`
}

// VideoQualityDetails are the normalized per-metric ratios that fed the
// overall quality score. Each value is raw-metric / normalization-constant,
// clamped to <=1.0 before weighting.
type VideoQualityDetails struct {
	Blur        float64 `json:"blur"`
	Contrast    float64 `json:"contrast"`
	EdgeDensity float64 `json:"edge_density"`
	Temporal    float64 `json:"temporal"`
}

// Quality categories produced by the frame quality scorer.
const (
	QualityHigh    = "High Quality"
	QualityMedium  = "Medium Quality"
	QualityLow     = "Low Quality"
	QualityUnknown = "Unknown"
)

// VideoQualityResult is the outcome of the frame-sampling quality analysis.
type VideoQualityResult struct {
	Score    float64             `json:"score"`
	Category string              `json:"category"`
	Details  VideoQualityDetails `json:"details"`
}

// AudioRecord holds best-effort tag metadata for audio files. The whole
// record is nil when the tags cannot be read.
type AudioRecord struct {
	Title  string `json:"title,omitempty"`
	Artist string `json:"artist,omitempty"`
	Album  string `json:"album,omitempty"`
	Genre  string `json:"genre,omitempty"`
	Year   int    `json:"year,omitempty"`
}

// Scan status values reported in a ProgressSnapshot.
const (
	StatusInProgress = "in_progress"
	StatusComplete   = "complete"
	StatusError      = "error"
)

// ProgressSnapshot is a derived, read-only view of a scan session. The
// timing fields are only populated once at least one file has been
// processed.
type ProgressSnapshot struct {
	TotalFiles             int     `json:"total_files"`
	ProcessedFiles         int     `json:"processed_files"`
	ProgressPercentage     float64 `json:"progress_percentage"`
	Status                 string  `json:"status"`
	ElapsedTime            string  `json:"elapsed_time,omitempty"`
	EstimatedTimeRemaining string  `json:"estimated_time_remaining,omitempty"`
	FilesPerSecond         float64 `json:"files_per_second,omitempty"`
	Error                  string  `json:"error,omitempty"`
}
