package media

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

const defaultScreenshotCount = 3

// ErrVideoTooShort is returned when a video is too short to pick sample
// timestamps from (the first and last second are never sampled).
var ErrVideoTooShort = errors.New("video too short for screenshots")

// GenerateScreenshots extracts n single frames at pseudo-random timestamps
// into a per-video directory. A slot whose file already exists is reused,
// so re-running a scan does not re-invoke ffmpeg for captured frames. A
// path is recorded only when the frame file was actually produced.
func (a *Analyzer) GenerateScreenshots(ctx context.Context, path string, n int) ([]string, error) {
	probe, err := a.probeRaw(ctx, path)
	if err != nil {
		return nil, err
	}

	var duration float64
	if _, err := fmt.Sscanf(probe.Format.Duration, "%f", &duration); err != nil {
		return nil, fmt.Errorf("no usable duration for %s", path)
	}
	if duration <= 1 {
		return nil, ErrVideoTooShort
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	outDir := filepath.Join(a.screenshotDir, stem)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create screenshot dir: %w", err)
	}

	var shots []string
	for i := 0; i < n; i++ {
		outFile := filepath.Join(outDir, fmt.Sprintf("screenshot_%d.jpg", i))
		if _, err := os.Stat(outFile); err == nil {
			shots = append(shots, outFile)
			continue
		}

		// Timestamp strictly inside (1s, duration-1s).
		ts := 1 + rand.Float64()*(duration-2)

		if err := a.captureFrame(ctx, path, ts, outFile); err != nil {
			a.log.Warn("frame capture failed", "path", path, "timestamp", ts, "error", err)
			continue
		}
		if _, err := os.Stat(outFile); err == nil {
			shots = append(shots, outFile)
		}
	}
	return shots, nil
}

// captureFrame extracts one frame at the given timestamp to outFile.
func (a *Analyzer) captureFrame(ctx context.Context, path string, timestamp float64, outFile string) error {
	cmd := exec.CommandContext(ctx, a.ffmpegPath,
		"-ss", fmt.Sprintf("%.3f", timestamp),
		"-i", path,
		"-vframes", "1",
		"-q:v", "2",
		"-y",
		outFile)

	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg frame capture failed: %w (%s)", err, truncate(string(output), 200))
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
