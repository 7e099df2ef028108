package media

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/mantonx/diskexplorer/internal/logger"
	"github.com/mantonx/diskexplorer/internal/models"
)

// ffprobeOutput represents the JSON output from ffprobe. All numeric
// format fields arrive as strings and are parsed individually so one bad
// field never discards the rest of the probe.
type ffprobeOutput struct {
	Streams []ffprobeStream `json:"streams"`
	Format  ffprobeFormat   `json:"format"`
}

type ffprobeStream struct {
	CodecType  string `json:"codec_type"`
	CodecName  string `json:"codec_name"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	RFrameRate string `json:"r_frame_rate"`
	NbFrames   string `json:"nb_frames"`
}

type ffprobeFormat struct {
	Duration string `json:"duration"`
	BitRate  string `json:"bit_rate"`
	Size     string `json:"size"`
}

// Analyzer probes video files through external ffprobe/ffmpeg binaries and
// derives the low-quality heuristic. Tool paths come from configuration;
// there is no hidden global lookup.
type Analyzer struct {
	ffmpegPath      string
	ffprobePath     string
	screenshotDir   string
	screenshotCount int
	thresholds      QualityThresholds
	log             interface {
		Debug(msg string, args ...interface{})
		Warn(msg string, args ...interface{})
	}
}

// NewAnalyzer creates a video analyzer. screenshotDir is the root directory
// screenshots are written under, one subdirectory per video.
func NewAnalyzer(ffmpegPath, ffprobePath, screenshotDir string, screenshotCount int, thresholds QualityThresholds) *Analyzer {
	if screenshotCount <= 0 {
		screenshotCount = defaultScreenshotCount
	}
	return &Analyzer{
		ffmpegPath:      ffmpegPath,
		ffprobePath:     ffprobePath,
		screenshotDir:   screenshotDir,
		screenshotCount: screenshotCount,
		thresholds:      thresholds,
		log:             logger.Named("video"),
	}
}

// probeFile runs ffprobe once and parses its JSON output.
func probeFile(ctx context.Context, ffprobePath, path string) (*ffprobeOutput, error) {
	cmd := exec.CommandContext(ctx, ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path)

	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe failed for %s: %w", path, err)
	}

	var probe ffprobeOutput
	if err := json.Unmarshal(output, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output for %s: %w", path, err)
	}
	return &probe, nil
}

func (a *Analyzer) probeRaw(ctx context.Context, path string) (*ffprobeOutput, error) {
	return probeFile(ctx, a.ffprobePath, path)
}

// firstVideoStream returns the first stream with codec_type "video".
func (o *ffprobeOutput) firstVideoStream() *ffprobeStream {
	for i := range o.Streams {
		if o.Streams[i].CodecType == "video" {
			return &o.Streams[i]
		}
	}
	return nil
}

// Probe extracts a VideoRecord from the file at path. Any probe failure is
// recoverable by contract: the caller gets nil and treats the file as a
// plain, non-enriched record.
func (a *Analyzer) Probe(ctx context.Context, path string) *models.VideoRecord {
	probe, err := a.probeRaw(ctx, path)
	if err != nil {
		a.log.Debug("probe failed", "path", path, "error", err)
		return nil
	}

	stream := probe.firstVideoStream()
	if stream == nil {
		a.log.Debug("no video stream", "path", path)
		return nil
	}

	rec := &models.VideoRecord{Codec: stream.CodecName}
	if stream.Width > 0 {
		rec.Width = intPtr(stream.Width)
	}
	if stream.Height > 0 {
		rec.Height = intPtr(stream.Height)
	}
	if fps, err := parseFrameRate(stream.RFrameRate); err == nil && fps > 0 {
		rec.FPS = floatPtr(fps)
	}
	if d, err := strconv.ParseFloat(probe.Format.Duration, 64); err == nil && d > 0 {
		rec.Duration = floatPtr(d)
	}
	if br, err := strconv.ParseInt(probe.Format.BitRate, 10, 64); err == nil && br > 0 {
		rec.Bitrate = int64Ptr(br)
	}
	if sz, err := strconv.ParseInt(probe.Format.Size, 10, 64); err == nil && sz > 0 {
		rec.FileSize = int64Ptr(sz)
	}

	low := a.IsLowQuality(rec)
	rec.IsLowQuality = &low
	return rec
}

// Enrich probes the file and, when generateArtifacts is set, also produces
// sampled screenshots and the frame-sampling quality result. Artifact
// failures are logged and leave the probed record intact.
func (a *Analyzer) Enrich(ctx context.Context, path string, generateArtifacts bool, scorer *FrameQualityAnalyzer) *models.VideoRecord {
	rec := a.Probe(ctx, path)
	if rec == nil || !generateArtifacts {
		return rec
	}

	shots, err := a.GenerateScreenshots(ctx, path, a.screenshotCount)
	if err != nil {
		a.log.Warn("screenshot generation failed", "path", path, "error", err)
	} else {
		rec.Screenshots = shots
	}

	if scorer != nil {
		result, err := scorer.Analyze(ctx, path)
		if err != nil {
			a.log.Warn("frame quality analysis failed", "path", path, "error", err)
		} else {
			rec.QualityResult = result
		}
	}
	return rec
}

// parseFrameRate parses ffprobe's textual "numerator/denominator" frame
// rate form, e.g. "30000/1001".
func parseFrameRate(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("empty frame rate")
	}

	parts := strings.SplitN(raw, "/", 2)
	num, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid frame rate %q: %w", raw, err)
	}
	if len(parts) == 1 {
		return num, nil
	}

	den, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid frame rate %q: %w", raw, err)
	}
	if den == 0 {
		return 0, nil
	}
	return num / den, nil
}

func intPtr(v int) *int           { return &v }
func int64Ptr(v int64) *int64     { return &v }
func floatPtr(v float64) *float64 { return &v }
