package scanner

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/google/uuid"
	"github.com/mantonx/diskexplorer/internal/config"
	"github.com/mantonx/diskexplorer/internal/logger"
	"github.com/mantonx/diskexplorer/internal/media"
	"github.com/mantonx/diskexplorer/internal/models"
)

// ErrScanInProgress is returned when a scan is started while another one
// is still running; each session needs its own result store.
var ErrScanInProgress = errors.New("a scan is already in progress")

// ScanOptions control one scan invocation.
type ScanOptions struct {
	ExcludeDirs            []string // nil = defaults
	ExcludePatterns        []string // nil = defaults
	IncludeHash            bool
	GenerateVideoArtifacts bool
}

// FileScanner is the scan orchestrator. It drives enumeration, fans
// extraction out to a bounded worker pool in batches, tracks progress and
// feeds completed records to the result sink. One scan runs at a time.
type FileScanner struct {
	extractor      *Extractor
	monitor        *LoadMonitor
	dataDir        string
	flushSize      int
	baseWorkers    int
	loadScoreLimit int

	mu      sync.Mutex
	session *Session
	running bool
	watcher *RootWatcher
}

// New builds the orchestrator and its collaborators from configuration.
func New(cfg *config.Config) *FileScanner {
	thresholds := media.DefaultThresholds()
	if cfg.LowQualityCutoff > 0 {
		thresholds.LowQualityCutoff = cfg.LowQualityCutoff
	}

	analyzer := media.NewAnalyzer(
		cfg.FFmpegPath,
		cfg.FFprobePath,
		filepath.Join(cfg.DataDir, "screenshots"),
		cfg.ScreenshotCount,
		thresholds,
	)
	scorer := media.NewFrameQualityAnalyzer(
		cfg.FFmpegPath,
		cfg.FFprobePath,
		cfg.SampleInterval,
		cfg.ROICoverage,
	)

	workers := cfg.MaxWorkers
	if workers <= 0 {
		workers = runtime.NumCPU()
		if workers > 4 {
			workers = 4
		}
	}

	flushSize := cfg.FlushSize
	if flushSize <= 0 {
		flushSize = 50
	}

	return &FileScanner{
		extractor:      NewExtractor(analyzer, scorer),
		monitor:        NewLoadMonitor(),
		dataDir:        cfg.DataDir,
		flushSize:      flushSize,
		baseWorkers:    workers,
		loadScoreLimit: cfg.LoadScoreLimit,
	}
}

// StartScan launches a scan of root in the background and returns the new
// session's id. Fails with ErrScanInProgress while another scan runs.
func (fs *FileScanner) StartScan(ctx context.Context, root string, opts ScanOptions) (string, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if fs.running {
		return "", ErrScanInProgress
	}

	id := uuid.NewString()
	session := NewSession(id,
		filepath.Join(fs.dataDir, fmt.Sprintf("results-%s.json", id)),
		filepath.Join(fs.dataDir, "progress.json"))

	sink, err := NewResultSink(session.OutputFile())
	if err != nil {
		return "", err
	}

	fs.session = session
	fs.running = true
	if fs.watcher != nil {
		fs.watcher.Close()
		fs.watcher = nil
	}

	go fs.run(ctx, root, opts, session, sink)
	return id, nil
}

// run executes one full scan session.
func (fs *FileScanner) run(ctx context.Context, root string, opts ScanOptions, session *Session, sink *ResultSink) {
	defer func() {
		fs.mu.Lock()
		fs.running = false
		fs.mu.Unlock()
		session.Publish()
	}()

	logger.Info("scan started: root=%s session=%s", root, session.ID())

	var pending []*models.FileRecord
	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		if err := sink.Append(pending); err != nil {
			return err
		}
		pending = pending[:0]
		return nil
	}

	err := fs.stream(ctx, root, opts, session, func(rec *models.FileRecord) error {
		pending = append(pending, rec)
		if len(pending) >= fs.flushSize {
			return flush()
		}
		return nil
	})
	if err == nil {
		err = flush()
	}
	if err != nil {
		// Enumeration or store failure is fatal to the session.
		session.SetError(err)
		logger.Error("scan failed: session=%s error=%v", session.ID(), err)
		return
	}

	snap := session.Snapshot()
	logger.Info("scan finished: session=%s processed=%d status=%s",
		session.ID(), snap.ProcessedFiles, snap.Status)

	if watcher, werr := WatchRoot(root); werr != nil {
		logger.Warn("failed to watch %s: %v", root, werr)
	} else {
		fs.mu.Lock()
		fs.watcher = watcher
		fs.mu.Unlock()
	}
}

// stream enumerates root and pushes every successfully extracted record to
// emit in batch-major order. Per-file failures are logged and omitted;
// only enumeration errors and emit errors propagate. When session is
// non-nil its counters track the pass.
func (fs *FileScanner) stream(ctx context.Context, root string, opts ScanOptions, session *Session, emit func(*models.FileRecord) error) error {
	enumerator := NewEnumerator(opts.ExcludeDirs, opts.ExcludePatterns)
	files, err := enumerator.Enumerate(root)
	if err != nil {
		return err
	}

	if session != nil {
		session.Reset(len(files))
	}

	extractOpts := ExtractOptions{
		IncludeHash:            opts.IncludeHash,
		GenerateVideoArtifacts: opts.GenerateVideoArtifacts,
	}

	// Batches are sized so roughly ten of them cover the candidate list,
	// clamped to [100, 1000]; all extractions within a batch run
	// concurrently and are joined before the next batch starts.
	batchSize := batchSizeFor(len(files))

	for start := 0; start < len(files); start += batchSize {
		end := start + batchSize
		if end > len(files) {
			end = len(files)
		}
		batch := files[start:end]

		workers := fs.monitor.RecommendedWorkers(fs.baseWorkers, fs.loadScoreLimit)
		results := make([]*models.FileRecord, len(batch))
		sem := make(chan struct{}, workers)
		var wg sync.WaitGroup

		for i, path := range batch {
			wg.Add(1)
			sem <- struct{}{}
			go func(i int, path string) {
				defer wg.Done()
				defer func() { <-sem }()

				rec, err := fs.extractor.Extract(ctx, path, extractOpts)
				if err != nil {
					logger.Warn("skipping %s: %v", path, err)
				} else {
					results[i] = rec
				}
				if session != nil {
					session.IncProcessed()
				}
			}(i, path)
		}
		wg.Wait()

		for _, rec := range results {
			if rec == nil {
				continue
			}
			if err := emit(rec); err != nil {
				return err
			}
		}
	}
	return nil
}

func batchSizeFor(total int) int {
	size := total / 10
	if size < 100 {
		size = 100
	}
	if size > 1000 {
		size = 1000
	}
	return size
}

// Progress returns the latest progress snapshot. Before any scan has been
// started it reports an empty, complete session.
func (fs *FileScanner) Progress() models.ProgressSnapshot {
	fs.mu.Lock()
	session := fs.session
	fs.mu.Unlock()

	if session == nil {
		return models.ProgressSnapshot{Status: models.StatusComplete}
	}
	return session.Snapshot()
}

// Results reads back the records persisted by the most recent session.
func (fs *FileScanner) Results() ([]*models.FileRecord, error) {
	fs.mu.Lock()
	session := fs.session
	fs.mu.Unlock()

	if session == nil {
		return nil, errors.New("no scan has been run")
	}
	return ReadResults(session.OutputFile())
}

// ResultsStale reports whether the last scanned root changed after its
// scan completed.
func (fs *FileScanner) ResultsStale() bool {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.watcher != nil && fs.watcher.Stale()
}

// DataDir returns the directory holding persisted scan state.
func (fs *FileScanner) DataDir() string { return fs.dataDir }
