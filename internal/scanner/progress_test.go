package scanner

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/mantonx/diskexplorer/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionSnapshotPercentage(t *testing.T) {
	s := NewSession("test", "", "")

	s.Reset(4)
	snap := s.Snapshot()
	assert.Equal(t, models.StatusInProgress, snap.Status)
	assert.Equal(t, 0.0, snap.ProgressPercentage)

	s.IncProcessed()
	s.IncProcessed()
	snap = s.Snapshot()
	assert.Equal(t, 2, snap.ProcessedFiles)
	assert.Equal(t, 50.0, snap.ProgressPercentage)
	assert.Equal(t, models.StatusInProgress, snap.Status)
	assert.NotEmpty(t, snap.ElapsedTime)
	assert.Greater(t, snap.FilesPerSecond, 0.0)
}

func TestSessionSnapshotComplete(t *testing.T) {
	s := NewSession("test", "", "")
	s.Reset(2)
	s.IncProcessed()
	s.IncProcessed()

	snap := s.Snapshot()
	assert.Equal(t, models.StatusComplete, snap.Status)
	assert.Equal(t, 100.0, snap.ProgressPercentage)
	assert.Empty(t, snap.EstimatedTimeRemaining)
}

func TestSessionSnapshotEmptyScan(t *testing.T) {
	s := NewSession("test", "", "")
	s.Reset(0)

	snap := s.Snapshot()
	assert.Equal(t, models.StatusComplete, snap.Status)
	assert.Equal(t, 0.0, snap.ProgressPercentage)
}

func TestSessionErrorOverridesCompletion(t *testing.T) {
	s := NewSession("test", "", "")
	s.Reset(1)
	s.IncProcessed()
	s.SetError(errors.New("disk on fire"))

	snap := s.Snapshot()
	assert.Equal(t, models.StatusError, snap.Status)
	assert.Equal(t, "disk on fire", snap.Error)
}

// An external poller must never observe an empty or half-written progress
// file while counters are being bumped from many goroutines at once.
func TestSessionPublishIsAtomic(t *testing.T) {
	progressFile := filepath.Join(t.TempDir(), "progress.json")
	s := NewSession("test", "", progressFile)
	s.Reset(960)

	var torn atomic.Int64
	pollerDone := make(chan struct{})
	go func() {
		defer close(pollerDone)
		for i := 0; i < 2000; i++ {
			data, err := os.ReadFile(progressFile)
			if err != nil || len(data) == 0 {
				torn.Add(1)
				continue
			}
			var snap models.ProgressSnapshot
			if json.Unmarshal(data, &snap) != nil {
				torn.Add(1)
			}
		}
	}()

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 120; i++ {
				s.IncProcessed()
			}
		}()
	}
	wg.Wait()
	<-pollerDone

	assert.Zero(t, torn.Load())
	assert.Equal(t, 960, s.Snapshot().ProcessedFiles)
}

func TestSessionPublishesProgressFile(t *testing.T) {
	progressFile := filepath.Join(t.TempDir(), "progress.json")
	s := NewSession("test", "", progressFile)

	s.Reset(3)
	s.IncProcessed()

	data, err := os.ReadFile(progressFile)
	require.NoError(t, err)

	var snap models.ProgressSnapshot
	require.NoError(t, json.Unmarshal(data, &snap))
	assert.Equal(t, 3, snap.TotalFiles)
	assert.Equal(t, 1, snap.ProcessedFiles)
	assert.Equal(t, models.StatusInProgress, snap.Status)
}
