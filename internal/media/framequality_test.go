package media

import (
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/mantonx/diskexplorer/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uniformImage(w, h int, c color.Gray) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray(x, y, c)
		}
	}
	return img
}

func checkerImage(w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x+y)%2 == 0 {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return img
}

func TestUniformFrameScoresZeroMetrics(t *testing.T) {
	img := uniformImage(60, 60, color.Gray{Y: 128})
	m, roi := computeFrameMetrics(img, 1.0, nil)

	assert.InDelta(t, 0, m.blur, 0.0001)
	assert.InDelta(t, 0, m.contrast, 0.0001)
	assert.InDelta(t, 0, m.edgeDensity, 0.0001)
	assert.InDelta(t, 0, m.temporal, 0.0001)
	require.NotNil(t, roi)
	assert.Equal(t, 60, roi.w)
}

func TestCheckerFrameIsSharpAndEdgy(t *testing.T) {
	flat, _ := computeFrameMetrics(uniformImage(60, 60, color.Gray{Y: 128}), 1.0, nil)
	busy, _ := computeFrameMetrics(checkerImage(60, 60), 1.0, nil)

	assert.Greater(t, busy.blur, flat.blur)
	assert.Greater(t, busy.contrast, flat.contrast)
}

func TestTemporalDifference(t *testing.T) {
	_, first := computeFrameMetrics(uniformImage(60, 60, color.Gray{Y: 0}), 1.0, nil)

	// identical frame: no motion
	same, _ := computeFrameMetrics(uniformImage(60, 60, color.Gray{Y: 0}), 1.0, first)
	assert.InDelta(t, 0, same.temporal, 0.0001)

	// full black-to-white flip: maximal motion
	flipped, _ := computeFrameMetrics(uniformImage(60, 60, color.Gray{Y: 255}), 1.0, first)
	assert.InDelta(t, 255, flipped.temporal, 0.5)
}

func TestCropROI(t *testing.T) {
	img := uniformImage(100, 100, color.Gray{Y: 10})
	roi := cropROI(img, 0.3)

	b := roi.Bounds()
	assert.Equal(t, 30, b.Dx())
	assert.Equal(t, 30, b.Dy())
}

func TestAggregateMetricsNoSamples(t *testing.T) {
	result := aggregateMetrics(nil)
	require.NotNil(t, result)
	assert.Equal(t, 0.0, result.Score)
	assert.Equal(t, models.QualityUnknown, result.Category)
	assert.Zero(t, result.Details)
}

func TestAggregateMetricsClampsAtFullMarks(t *testing.T) {
	samples := []frameMetrics{{
		blur:        900, // 3x the norm, must clamp to 1.0
		contrast:    100,
		edgeDensity: 0.5,
		temporal:    0,
	}}
	result := aggregateMetrics(samples)
	assert.InDelta(t, 100, result.Score, 0.0001)
	assert.Equal(t, models.QualityHigh, result.Category)
	assert.InDelta(t, 3.0, result.Details.Blur, 0.0001)
}

func TestClassifyScore(t *testing.T) {
	assert.Equal(t, models.QualityHigh, classifyScore(75))
	assert.Equal(t, models.QualityMedium, classifyScore(74.9))
	assert.Equal(t, models.QualityMedium, classifyScore(55))
	assert.Equal(t, models.QualityLow, classifyScore(54.9))
	assert.Equal(t, models.QualityLow, classifyScore(0))
}

func TestAnalyzeUnopenableVideo(t *testing.T) {
	f := NewFrameQualityAnalyzer("/nonexistent/ffmpeg", "/nonexistent/ffprobe", 1.0, 0.3)
	_, err := f.Analyze(context.Background(), "/some/video.mp4")
	assert.ErrorIs(t, err, ErrCannotOpen)
}

func TestAnalyzeZeroExtractableFrames(t *testing.T) {
	dir := t.TempDir()
	ffprobe := stubTool(t, dir, "ffprobe", stubProbeJSON)
	ffmpeg := stubFailingTool(t, dir, "ffmpeg")

	f := NewFrameQualityAnalyzer(ffmpeg, ffprobe, 1.0, 0.3)
	result, err := f.Analyze(context.Background(), "/some/video.mp4")
	require.NoError(t, err)

	assert.Equal(t, 0.0, result.Score)
	assert.Equal(t, models.QualityUnknown, result.Category)
}

func TestNewFrameQualityAnalyzerDefaults(t *testing.T) {
	f := NewFrameQualityAnalyzer("ffmpeg", "ffprobe", 0, 0)
	assert.Equal(t, 1.0, f.SampleInterval)
	assert.Equal(t, 0.3, f.ROICoverage)

	f = NewFrameQualityAnalyzer("ffmpeg", "ffprobe", 2.5, 1.5)
	assert.Equal(t, 2.5, f.SampleInterval)
	assert.Equal(t, 0.3, f.ROICoverage)
}
