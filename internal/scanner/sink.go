package scanner

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/mantonx/diskexplorer/internal/models"
)

// ResultSink maintains one physical file holding a JSON array of
// FileRecords. The sink is single-writer per session; it owns the file
// layout completely (it tracks the offset of the closing bracket itself
// instead of inspecting trailing text), so the store parses as valid JSON
// before and after every operation.
type ResultSink struct {
	mu         sync.Mutex
	path       string
	entries    int
	tailOffset int64 // byte offset of the closing ']'
}

// NewResultSink initializes the store at path as an empty JSON array,
// replacing any previous contents.
func NewResultSink(path string) (*ResultSink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create result dir: %w", err)
	}

	s := &ResultSink{path: path}
	if err := s.reset(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the location of the physical store.
func (s *ResultSink) Path() string { return s.path }

func (s *ResultSink) reset() error {
	if err := os.WriteFile(s.path, []byte("[\n]"), 0o644); err != nil {
		return fmt.Errorf("failed to initialize result file: %w", err)
	}
	s.entries = 0
	s.tailOffset = 2
	return nil
}

// Replace atomically rewrites the whole array with the given records.
func (s *ResultSink) Replace(records []*models.FileRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	body, err := encodeRecords(records)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	buf.WriteString("[\n")
	buf.Write(body)
	if len(records) > 0 {
		buf.WriteString("\n")
	}
	buf.WriteString("]")

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write result file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace result file: %w", err)
	}

	s.entries = len(records)
	s.tailOffset = int64(buf.Len()) - 1
	return nil
}

// Append extends the array without re-reading or re-encoding prior
// entries. An empty record set is a no-op.
func (s *ResultSink) Append(records []*models.FileRecord) error {
	if len(records) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.OpenFile(s.path, os.O_RDWR, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open result file: %w", err)
	}
	defer file.Close()

	// Guard against external tampering: the tracked offset must still
	// point at the closing bracket.
	closer := make([]byte, 1)
	if _, err := file.ReadAt(closer, s.tailOffset); err != nil || closer[0] != ']' {
		return fmt.Errorf("result file %s no longer matches sink state", s.path)
	}

	body, err := encodeRecords(records)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if s.entries > 0 {
		buf.WriteString(",\n")
	}
	buf.Write(body)
	buf.WriteString("\n]")

	if _, err := file.WriteAt(buf.Bytes(), s.tailOffset); err != nil {
		return fmt.Errorf("failed to append results: %w", err)
	}
	newLen := s.tailOffset + int64(buf.Len())
	if err := file.Truncate(newLen); err != nil {
		return fmt.Errorf("failed to truncate result file: %w", err)
	}

	s.entries += len(records)
	s.tailOffset = newLen - 1
	return nil
}

// encodeRecords marshals records as comma-separated, newline-joined array
// elements without the surrounding brackets.
func encodeRecords(records []*models.FileRecord) ([]byte, error) {
	var buf bytes.Buffer
	for i, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			return nil, fmt.Errorf("failed to encode record %s: %w", rec.Path, err)
		}
		if i > 0 {
			buf.WriteString(",\n")
		}
		buf.Write(data)
	}
	return buf.Bytes(), nil
}

// ReadResults parses the records currently persisted in a result file.
func ReadResults(path string) ([]*models.FileRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read result file: %w", err)
	}

	var records []*models.FileRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("result file %s is not a valid JSON array: %w", path, err)
	}
	return records, nil
}
