package media

import (
	"github.com/mantonx/diskexplorer/internal/models"
)

// QualityThresholds configures the low-quality heuristic. Zero values are
// replaced by the defaults from DefaultThresholds.
type QualityThresholds struct {
	MinHeight        int     // resolution floor
	MinFPS           float64 // frame rate floor
	AbsoluteBitrate  int64   // bits/sec; below this is the heavy penalty
	MinByteRate      int64   // bytes/sec of file content
	MinAspectRatio   float64
	MaxAspectRatio   float64
	LowQualityCutoff int // score below this => low quality
}

// DefaultThresholds returns the stock heuristic thresholds.
func DefaultThresholds() QualityThresholds {
	return QualityThresholds{
		MinHeight:        480,
		MinFPS:           24,
		AbsoluteBitrate:  500_000,
		MinByteRate:      100 * 1024,
		MinAspectRatio:   0.5,
		MaxAspectRatio:   2.5,
		LowQualityCutoff: 40,
	}
}

// modernCodecs are exempt from the codec penalty.
var modernCodecs = map[string]bool{
	"h264": true,
	"hevc": true,
	"h265": true,
	"vp9":  true,
	"av1":  true,
}

// expectedBitrate returns the bitrate floor for the resolution bucket the
// given height falls into.
func expectedBitrate(height int) int64 {
	switch {
	case height <= 240:
		return 300_000
	case height <= 360:
		return 500_000
	case height <= 480:
		return 800_000
	case height <= 720:
		return 1_500_000
	default:
		return 3_000_000
	}
}

// QualityScore scores a probed video out of 100. Unprobeable fields are
// skipped rather than penalized: absence means unknown, not bad.
func (a *Analyzer) QualityScore(rec *models.VideoRecord) int {
	t := a.thresholds
	score := 100

	if rec.Height != nil && *rec.Height < t.MinHeight {
		score -= 20
	}

	if rec.Bitrate != nil {
		switch {
		case *rec.Bitrate < t.AbsoluteBitrate:
			score -= 30
		case rec.Height != nil && *rec.Bitrate < expectedBitrate(*rec.Height):
			score -= 20
		}
	}

	if rec.FPS != nil && *rec.FPS < t.MinFPS {
		score -= 10
	}

	if rec.FileSize != nil && rec.Duration != nil && *rec.Duration > 0 {
		byteRate := int64(float64(*rec.FileSize) / *rec.Duration)
		if byteRate < t.MinByteRate {
			score -= 20
		}
	}

	if rec.Codec != "" && !modernCodecs[rec.Codec] {
		score -= 10
	}

	if rec.Width != nil && rec.Height != nil && *rec.Height > 0 {
		ratio := float64(*rec.Width) / float64(*rec.Height)
		if ratio < t.MinAspectRatio || ratio > t.MaxAspectRatio {
			score -= 5
		}
	}

	return score
}

// IsLowQuality reports whether the record's quality score falls below the
// configured cutoff.
func (a *Analyzer) IsLowQuality(rec *models.VideoRecord) bool {
	if rec == nil {
		return false
	}
	return a.QualityScore(rec) < a.thresholds.LowQualityCutoff
}
