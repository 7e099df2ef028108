package media

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	_ "image/jpeg"
	_ "image/png"

	"github.com/hashicorp/go-hclog"
	"github.com/mantonx/diskexplorer/internal/logger"
	"github.com/mantonx/diskexplorer/internal/models"
)

// ErrCannotOpen is returned when a video container cannot be decoded at all.
var ErrCannotOpen = errors.New("cannot open video")

// Metric normalization constants and weights. Blur, contrast and edge
// density are divided by their constant; temporal is inverted (lower
// frame-to-frame difference means a more stable, higher-scoring video).
const (
	blurNorm     = 300.0
	contrastNorm = 50.0
	edgeNorm     = 0.2
	temporalNorm = 30.0

	blurWeight     = 0.4
	contrastWeight = 0.3
	edgeWeight     = 0.2
	temporalWeight = 0.1
)

// FrameQualityAnalyzer samples frames from a local video at a fixed time
// interval and scores sharpness, contrast, edge density and temporal
// stability on a centered region of interest.
type FrameQualityAnalyzer struct {
	ffmpegPath  string
	ffprobePath string

	// SampleInterval is the time in seconds between sampled frames.
	SampleInterval float64
	// ROICoverage is the fraction (0-1) of each frame dimension used as
	// the centered region of interest.
	ROICoverage float64

	log hclog.Logger
}

// NewFrameQualityAnalyzer creates a frame quality analyzer.
func NewFrameQualityAnalyzer(ffmpegPath, ffprobePath string, sampleInterval, roiCoverage float64) *FrameQualityAnalyzer {
	if sampleInterval <= 0 {
		sampleInterval = 1.0
	}
	if roiCoverage <= 0 || roiCoverage > 1 {
		roiCoverage = 0.3
	}
	return &FrameQualityAnalyzer{
		ffmpegPath:     ffmpegPath,
		ffprobePath:    ffprobePath,
		SampleInterval: sampleInterval,
		ROICoverage:    roiCoverage,
		log:            logger.Named("framequality"),
	}
}

// frameMetrics holds the raw metric values for one sampled frame.
type frameMetrics struct {
	blur        float64
	contrast    float64
	edgeDensity float64
	temporal    float64
}

// Analyze samples the video and returns its quality result. A container
// that cannot be probed fails with ErrCannotOpen; a video from which zero
// frames can be extracted yields a zero-valued result with category
// Unknown rather than an error.
func (f *FrameQualityAnalyzer) Analyze(ctx context.Context, path string) (*models.VideoQualityResult, error) {
	probe, err := probeFile(ctx, f.ffprobePath, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrCannotOpen, path)
	}

	stream := probe.firstVideoStream()
	if stream == nil {
		return nil, fmt.Errorf("%w: no video stream in %s", ErrCannotOpen, path)
	}

	fps, err := parseFrameRate(stream.RFrameRate)
	if err != nil || fps <= 0 {
		fps = 25 // assume a sane rate when the stream does not report one
	}

	duration, _ := strconv.ParseFloat(probe.Format.Duration, 64)
	totalFrames := 0
	if n, err := strconv.Atoi(stream.NbFrames); err == nil && n > 0 {
		totalFrames = n
	} else if duration > 0 {
		totalFrames = int(duration * fps)
	}

	sampleStep := int(math.Max(1, math.Round(fps*f.SampleInterval)))

	tmpDir, err := os.MkdirTemp("", "framequality-")
	if err != nil {
		return nil, fmt.Errorf("failed to create frame dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	var samples []frameMetrics
	var prev *grayFrame

	for frameIdx := 0; frameIdx < totalFrames; frameIdx += sampleStep {
		timestamp := float64(frameIdx) / fps
		framePath := filepath.Join(tmpDir, fmt.Sprintf("frame_%d.png", frameIdx))

		if err := extractFrame(ctx, f.ffmpegPath, path, timestamp, framePath); err != nil {
			f.log.Debug("frame extraction stopped", "path", path, "frame", frameIdx, "error", err)
			break
		}

		img, err := decodeImage(framePath)
		if err != nil {
			f.log.Debug("frame decode failed", "path", path, "frame", frameIdx, "error", err)
			break
		}
		os.Remove(framePath)

		metrics, roi := computeFrameMetrics(img, f.ROICoverage, prev)
		samples = append(samples, metrics)
		prev = roi
	}

	return aggregateMetrics(samples), nil
}

// extractFrame pulls a single frame at the given timestamp to outFile.
func extractFrame(ctx context.Context, ffmpegPath, videoPath string, timestamp float64, outFile string) error {
	cmd := exec.CommandContext(ctx, ffmpegPath,
		"-ss", fmt.Sprintf("%.3f", timestamp),
		"-i", videoPath,
		"-vframes", "1",
		"-f", "image2",
		"-y",
		outFile)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg frame extraction failed: %w", err)
	}
	if _, err := os.Stat(outFile); err != nil {
		return fmt.Errorf("frame file not produced: %w", err)
	}
	return nil
}

func decodeImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	return img, err
}

// grayFrame is a dense luminance plane (0-255) used for the blur, edge
// and temporal metrics.
type grayFrame struct {
	w, h int
	pix  []float64
}

func (g *grayFrame) at(x, y int) float64 { return g.pix[y*g.w+x] }

// computeFrameMetrics crops the centered ROI out of the frame and computes
// the four raw metrics. It returns the grayscale ROI so the caller can use
// it as the reference for the next frame's temporal difference.
func computeFrameMetrics(img image.Image, roiCoverage float64, prev *grayFrame) (frameMetrics, *grayFrame) {
	roi := cropROI(img, roiCoverage)
	gray, lightness := convertPlanes(roi)

	m := frameMetrics{
		blur:        laplacianVariance(gray),
		contrast:    stddev(lightness),
		edgeDensity: sobelEdgeDensity(gray),
	}
	if prev != nil && prev.w == gray.w && prev.h == gray.h {
		m.temporal = meanAbsDiff(gray, prev)
	}
	return m, gray
}

// cropROI returns the centered sub-image covering roiCoverage of each
// dimension.
func cropROI(img image.Image, coverage float64) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	x1 := b.Min.X + int(float64(w)*(0.5-coverage/2))
	x2 := b.Min.X + int(float64(w)*(0.5+coverage/2))
	y1 := b.Min.Y + int(float64(h)*(0.5-coverage/2))
	y2 := b.Min.Y + int(float64(h)*(0.5+coverage/2))
	if x2 <= x1 {
		x2 = x1 + 1
	}
	if y2 <= y1 {
		y2 = y1 + 1
	}

	type subImager interface {
		SubImage(image.Rectangle) image.Image
	}
	if s, ok := img.(subImager); ok {
		return s.SubImage(image.Rect(x1, y1, x2, y2))
	}
	return img
}

// convertPlanes produces the grayscale luminance plane and the perceptual
// lightness plane (CIE L*, rescaled to 0-255) in one pass over the ROI.
func convertPlanes(img image.Image) (*grayFrame, []float64) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	gray := &grayFrame{w: w, h: h, pix: make([]float64, w*h)}
	lightness := make([]float64, 0, w*h)

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r16, g16, b16, _ := img.At(x, y).RGBA()
			r := float64(r16) / 257.0
			g := float64(g16) / 257.0
			bl := float64(b16) / 257.0

			gray.pix[(y-b.Min.Y)*w+(x-b.Min.X)] = 0.299*r + 0.587*g + 0.114*bl
			lightness = append(lightness, lStar(r, g, bl)*2.55)
		}
	}
	return gray, lightness
}

// lStar computes CIE L* (0-100) from 8-bit sRGB components.
func lStar(r, g, b float64) float64 {
	lin := func(c float64) float64 {
		c /= 255.0
		if c <= 0.04045 {
			return c / 12.92
		}
		return math.Pow((c+0.055)/1.055, 2.4)
	}
	y := 0.2126*lin(r) + 0.7152*lin(g) + 0.0722*lin(b)
	if y > 0.008856 {
		return 116*math.Cbrt(y) - 16
	}
	return 903.3 * y
}

// laplacianVariance returns the variance of the 4-neighbor Laplacian
// response, the sharpness proxy: blurry frames have a flat response.
func laplacianVariance(g *grayFrame) float64 {
	if g.w < 3 || g.h < 3 {
		return 0
	}

	var sum, sumSq float64
	n := 0
	for y := 1; y < g.h-1; y++ {
		for x := 1; x < g.w-1; x++ {
			lap := 4*g.at(x, y) - g.at(x-1, y) - g.at(x+1, y) - g.at(x, y-1) - g.at(x, y+1)
			sum += lap
			sumSq += lap * lap
			n++
		}
	}
	mean := sum / float64(n)
	return sumSq/float64(n) - mean*mean
}

// sobelEdgeDensity returns the fraction of interior pixels whose Sobel
// gradient magnitude exceeds the strong-edge threshold.
func sobelEdgeDensity(g *grayFrame) float64 {
	if g.w < 3 || g.h < 3 {
		return 0
	}

	const threshold = 200.0
	edges := 0
	n := 0
	for y := 1; y < g.h-1; y++ {
		for x := 1; x < g.w-1; x++ {
			gx := -g.at(x-1, y-1) + g.at(x+1, y-1) +
				-2*g.at(x-1, y) + 2*g.at(x+1, y) +
				-g.at(x-1, y+1) + g.at(x+1, y+1)
			gy := -g.at(x-1, y-1) - 2*g.at(x, y-1) - g.at(x+1, y-1) +
				g.at(x-1, y+1) + 2*g.at(x, y+1) + g.at(x+1, y+1)
			if math.Hypot(gx, gy) > threshold {
				edges++
			}
			n++
		}
	}
	return float64(edges) / float64(n)
}

func meanAbsDiff(cur, prev *grayFrame) float64 {
	var sum float64
	for i := range cur.pix {
		sum += math.Abs(cur.pix[i] - prev.pix[i])
	}
	return sum / float64(len(cur.pix))
}

func stddev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var sumSq float64
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)))
}

// aggregateMetrics averages the per-frame metrics, normalizes them and
// weight-sums into the final 0-100 score. Zero samples produce the
// zero-valued Unknown result by contract.
func aggregateMetrics(samples []frameMetrics) *models.VideoQualityResult {
	if len(samples) == 0 {
		return &models.VideoQualityResult{
			Score:    0,
			Category: models.QualityUnknown,
			Details:  models.VideoQualityDetails{},
		}
	}

	var blur, contrast, edge, temporal float64
	for _, s := range samples {
		blur += s.blur
		contrast += s.contrast
		edge += s.edgeDensity
		temporal += s.temporal
	}
	n := float64(len(samples))

	details := models.VideoQualityDetails{
		Blur:        blur / n / blurNorm,
		Contrast:    contrast / n / contrastNorm,
		EdgeDensity: edge / n / edgeNorm,
		Temporal:    1 - (temporal / n / temporalNorm),
	}

	score := 100 * (blurWeight*math.Min(details.Blur, 1.0) +
		contrastWeight*math.Min(details.Contrast, 1.0) +
		edgeWeight*math.Min(details.EdgeDensity, 1.0) +
		temporalWeight*math.Min(details.Temporal, 1.0))

	return &models.VideoQualityResult{
		Score:    score,
		Category: classifyScore(score),
		Details:  details,
	}
}

func classifyScore(score float64) string {
	switch {
	case score >= 75:
		return models.QualityHigh
	case score >= 55:
		return models.QualityMedium
	default:
		return models.QualityLow
	}
}
