package scanner

import (
	"context"
	"crypto/md5"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/mantonx/diskexplorer/internal/logger"
	"github.com/mantonx/diskexplorer/internal/media"
	"github.com/mantonx/diskexplorer/internal/models"
)

const hashChunkSize = 8192

// videoExtensions is the recognized video set that triggers delegation to
// the video analyzer.
var videoExtensions = map[string]bool{
	".mp4": true, ".avi": true, ".mov": true, ".mkv": true,
	".wmv": true, ".flv": true, ".webm": true, ".m4v": true,
}

// audioExtensions triggers best-effort tag enrichment.
var audioExtensions = map[string]bool{
	".mp3": true, ".flac": true, ".ogg": true, ".m4a": true,
	".wav": true, ".aac": true,
}

// ExtractOptions control what the extractor computes per file.
type ExtractOptions struct {
	IncludeHash            bool
	GenerateVideoArtifacts bool
}

// Extractor builds one FileRecord per path. Every step is individually
// recoverable: a hash or probe failure yields a null sub-field, never a
// failed record, so one bad file cannot abort a batch.
type Extractor struct {
	video  *media.Analyzer
	scorer *media.FrameQualityAnalyzer
}

// NewExtractor creates a metadata extractor delegating video enrichment to
// the given analyzer and frame scorer.
func NewExtractor(video *media.Analyzer, scorer *media.FrameQualityAnalyzer) *Extractor {
	return &Extractor{video: video, scorer: scorer}
}

// Extract returns the enriched record for path, or (nil, nil) when the
// entry is not a regular file and should be skipped. Only a failed stat is
// reported as an error; the caller logs it and omits the file.
func (x *Extractor) Extract(ctx context.Context, path string, opts ExtractOptions) (*models.FileRecord, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return nil, nil
	}

	created, modified, accessed := statTimes(info)
	ext := strings.ToLower(filepath.Ext(path))

	record := &models.FileRecord{
		Path:         path,
		Name:         info.Name(),
		Size:         info.Size(),
		CreatedTime:  created,
		ModifiedTime: modified,
		AccessedTime: accessed,
		FileType:     ext,
		MimeType:     sniffMimeType(path),
		IsDirectory:  false,
	}

	if opts.IncludeHash {
		if hash, err := computeFileHash(path); err != nil {
			logger.Warn("failed to hash %s: %v", path, err)
		} else {
			record.Hash = hash
		}
	}

	switch {
	case videoExtensions[ext]:
		// A nil result means unprobeable; the file stays in the results
		// as a plain record.
		record.VideoMetadata = x.video.Enrich(ctx, path, opts.GenerateVideoArtifacts, x.scorer)
	case audioExtensions[ext]:
		record.AudioMetadata = media.ReadAudioTags(path)
	}

	return record, nil
}

// sniffMimeType detects the content type from file contents, falling back
// to application/octet-stream when the file cannot be read.
func sniffMimeType(path string) string {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return "application/octet-stream"
	}
	return mtype.String()
}

// computeFileHash streams the file through MD5 in fixed-size chunks.
func computeFileHash(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hasher := md5.New()
	buffer := make([]byte, hashChunkSize)
	for {
		n, err := file.Read(buffer)
		if n > 0 {
			hasher.Write(buffer[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
	}
	return fmt.Sprintf("%x", hasher.Sum(nil)), nil
}
