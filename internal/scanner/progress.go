package scanner

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mantonx/diskexplorer/internal/logger"
	"github.com/mantonx/diskexplorer/internal/models"
)

// Session tracks one traversal-and-enrichment run. Counters are mutated
// only by the scan orchestrator; everything else observes the session
// through Snapshot copies, never the live value.
type Session struct {
	mu        sync.RWMutex
	publishMu sync.Mutex

	id             string
	totalFiles     int
	processedFiles int
	startTime      time.Time
	lastError      string
	outputFile     string
	progressFile   string
}

// NewSession creates a session writing results to outputFile and progress
// snapshots to progressFile.
func NewSession(id, outputFile, progressFile string) *Session {
	return &Session{
		id:           id,
		outputFile:   outputFile,
		progressFile: progressFile,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.id
}

// OutputFile returns the result store path for this session.
func (s *Session) OutputFile() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.outputFile
}

// Reset zeroes the counters, clears the error and stamps a new start time.
// Called once at the beginning of every scan invocation.
func (s *Session) Reset(totalFiles int) {
	s.mu.Lock()
	s.totalFiles = totalFiles
	s.processedFiles = 0
	s.startTime = time.Now()
	s.lastError = ""
	s.mu.Unlock()
	s.Publish()
}

// IncProcessed counts one file as processed, success or handled failure
// alike, and republishes the snapshot so pollers stay current.
func (s *Session) IncProcessed() {
	s.mu.Lock()
	s.processedFiles++
	s.mu.Unlock()
	s.Publish()
}

// SetError records the last error for the session.
func (s *Session) SetError(err error) {
	s.mu.Lock()
	s.lastError = err.Error()
	s.mu.Unlock()
	s.Publish()
}

// Snapshot derives the read-only progress view. Percentage is 0 when no
// files were found; the timing fields appear only once at least one file
// has been processed; an error status overrides completion.
func (s *Session) Snapshot() models.ProgressSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := models.ProgressSnapshot{
		TotalFiles:     s.totalFiles,
		ProcessedFiles: s.processedFiles,
		Status:         models.StatusInProgress,
	}
	if s.totalFiles > 0 {
		pct := float64(s.processedFiles) / float64(s.totalFiles) * 100
		snap.ProgressPercentage = math.Round(pct*100) / 100
	}

	if !s.startTime.IsZero() {
		elapsed := time.Since(s.startTime)
		snap.ElapsedTime = elapsed.Truncate(time.Millisecond).String()

		if s.processedFiles > 0 && elapsed > 0 {
			rate := float64(s.processedFiles) / elapsed.Seconds()
			snap.FilesPerSecond = math.Round(rate*100) / 100

			remaining := s.totalFiles - s.processedFiles
			if rate > 0 && remaining > 0 {
				eta := time.Duration(float64(remaining)/rate) * time.Second
				snap.EstimatedTimeRemaining = eta.Truncate(time.Second).String()
			}
		}
	}

	switch {
	case s.lastError != "":
		snap.Status = models.StatusError
		snap.Error = s.lastError
	case s.processedFiles >= s.totalFiles:
		snap.Status = models.StatusComplete
	}
	return snap
}

// Publish persists the current snapshot to the progress side file so an
// external poller always observes a recent state without touching the
// orchestrator. The snapshot is written to a temp file and renamed into
// place, so a concurrent reader sees either the previous snapshot or the
// new one, never a torn write. Failures are logged, never fatal to the scan.
func (s *Session) Publish() {
	if s.progressFile == "" {
		return
	}

	snap := s.Snapshot()
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		logger.Error("failed to encode progress snapshot: %v", err)
		return
	}

	s.publishMu.Lock()
	defer s.publishMu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.progressFile), 0o755); err != nil {
		logger.Error("failed to create progress dir: %v", err)
		return
	}

	tmp := s.progressFile + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		logger.Error("failed to write progress file: %v", err)
		return
	}
	if err := os.Rename(tmp, s.progressFile); err != nil {
		logger.Error("failed to publish progress file: %v", err)
	}
}
