package media

import (
	"testing"

	"github.com/mantonx/diskexplorer/internal/models"
	"github.com/stretchr/testify/assert"
)

func testAnalyzer() *Analyzer {
	return NewAnalyzer("ffmpeg", "ffprobe", "", 3, DefaultThresholds())
}

func videoRec(width, height int, bitrate int64, fps float64, codec string) *models.VideoRecord {
	duration := 60.0
	// file size consistent with the bitrate, so the byte-rate check is
	// neutral unless a test overrides it
	fileSize := int64(duration * float64(bitrate) / 8)
	if fileSize < 100*1024*60 {
		fileSize = 100 * 1024 * 60
	}
	return &models.VideoRecord{
		Width:    &width,
		Height:   &height,
		Bitrate:  &bitrate,
		FPS:      &fps,
		Codec:    codec,
		Duration: &duration,
		FileSize: &fileSize,
	}
}

func TestQualityScorePerfect(t *testing.T) {
	a := testAnalyzer()
	rec := videoRec(1920, 1080, 8_000_000, 30, "h264")
	assert.Equal(t, 100, a.QualityScore(rec))
	assert.False(t, a.IsLowQuality(rec))
}

func TestQualityScoreLowResolution(t *testing.T) {
	a := testAnalyzer()
	rec := videoRec(640, 360, 6_000_000, 30, "h264")
	assert.Equal(t, 80, a.QualityScore(rec))
}

func TestQualityScoreAbsoluteBitrateWins(t *testing.T) {
	a := testAnalyzer()

	// below the absolute floor: heavy penalty, never both penalties
	rec := videoRec(1920, 1080, 400_000, 30, "h264")
	fileSize := int64(8_000_000 * 60 / 8)
	rec.FileSize = &fileSize
	assert.Equal(t, 70, a.QualityScore(rec))

	// above the floor but under the 1080p expectation: lighter penalty
	rec = videoRec(1920, 1080, 2_000_000, 30, "h264")
	rec.FileSize = &fileSize
	assert.Equal(t, 80, a.QualityScore(rec))
}

func TestQualityScoreLowFrameRate(t *testing.T) {
	a := testAnalyzer()
	rec := videoRec(1920, 1080, 8_000_000, 15, "h264")
	assert.Equal(t, 90, a.QualityScore(rec))
}

func TestQualityScoreLegacyCodec(t *testing.T) {
	a := testAnalyzer()
	rec := videoRec(1920, 1080, 8_000_000, 30, "mpeg4")
	assert.Equal(t, 90, a.QualityScore(rec))
}

func TestQualityScoreByteRate(t *testing.T) {
	a := testAnalyzer()
	rec := videoRec(1920, 1080, 8_000_000, 30, "h264")
	tiny := int64(1024) // 1KB over 60s is far below the floor
	rec.FileSize = &tiny
	assert.Equal(t, 80, a.QualityScore(rec))
}

func TestQualityScoreExtremeAspectRatio(t *testing.T) {
	a := testAnalyzer()
	rec := videoRec(4000, 1080, 8_000_000, 30, "h264")
	assert.Equal(t, 95, a.QualityScore(rec))
}

func TestQualityScoreUnknownFieldsNotPenalized(t *testing.T) {
	a := testAnalyzer()
	assert.Equal(t, 100, a.QualityScore(&models.VideoRecord{}))
}

func TestIsLowQualityCutoff(t *testing.T) {
	a := testAnalyzer()

	// 240p, tiny bitrate, slideshow frame rate, legacy codec: 100-20-30-10-10
	rec := videoRec(320, 240, 100_000, 10, "mpeg2video")
	fileSize := int64(100 * 1024 * 60)
	rec.FileSize = &fileSize
	assert.Equal(t, 30, a.QualityScore(rec))
	assert.True(t, a.IsLowQuality(rec))

	assert.False(t, a.IsLowQuality(nil))
}

func TestQualityScoreMonotonicInBitrate(t *testing.T) {
	a := testAnalyzer()
	fileSize := int64(100 * 1024 * 1024)

	prev := 101
	for _, bitrate := range []int64{10_000_000, 4_000_000, 2_000_000, 600_000, 400_000, 100_000} {
		rec := videoRec(1920, 1080, bitrate, 30, "h264")
		rec.FileSize = &fileSize
		score := a.QualityScore(rec)
		assert.LessOrEqual(t, score, prev, "bitrate %d", bitrate)
		prev = score
	}
}

func TestExpectedBitrateBuckets(t *testing.T) {
	assert.Equal(t, int64(300_000), expectedBitrate(240))
	assert.Equal(t, int64(500_000), expectedBitrate(360))
	assert.Equal(t, int64(800_000), expectedBitrate(480))
	assert.Equal(t, int64(1_500_000), expectedBitrate(720))
	assert.Equal(t, int64(3_000_000), expectedBitrate(1080))
	assert.Equal(t, int64(3_000_000), expectedBitrate(2160))
}
