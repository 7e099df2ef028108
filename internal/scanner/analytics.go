package scanner

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mantonx/diskexplorer/internal/models"
)

const topFileCount = 10

// Insights aggregates disk usage statistics for a directory tree.
type Insights struct {
	TotalSize        int64                `json:"total_size"`
	FileCount        int                  `json:"file_count"`
	FileTypeCount    map[string]int       `json:"file_type_count"`
	LargestFiles     []*models.FileRecord `json:"largest_files"`
	OldestFiles      []*models.FileRecord `json:"oldest_files"`
	LowQualityVideos []*models.FileRecord `json:"low_quality_videos"`
}

// AgingMode selects which timestamp the aging filter compares.
const (
	AgingByAccessed = "accessed"
	AgingByModified = "modified"
)

// SearchFilters describe a filtered search pass.
type SearchFilters struct {
	MinSize           *int64     `json:"min_size,omitempty"`
	MaxSize           *int64     `json:"max_size,omitempty"`
	FileTypes         []string   `json:"file_types,omitempty"`
	CreatedBefore     *time.Time `json:"created_before,omitempty"`
	ModifiedBefore    *time.Time `json:"modified_before,omitempty"`
	LowQualityVideos  bool       `json:"low_quality_videos,omitempty"`
	TopN              int        `json:"top_n,omitempty"`
	IncludeDuplicates bool       `json:"include_duplicates,omitempty"`
}

// GetInsights re-drives a fresh enrichment pass over root and reduces the
// record stream into aggregate insights. Top lists are tracked as bounded
// candidate lists, re-sorted and truncated whenever they overflow.
func (fs *FileScanner) GetInsights(ctx context.Context, root string) (*Insights, error) {
	insights := &Insights{FileTypeCount: make(map[string]int)}

	opts := ScanOptions{IncludeHash: true}
	err := fs.stream(ctx, root, opts, nil, func(rec *models.FileRecord) error {
		insights.TotalSize += rec.Size
		insights.FileCount++
		insights.FileTypeCount[strings.ToLower(rec.FileType)]++

		insights.LargestFiles = append(insights.LargestFiles, rec)
		if len(insights.LargestFiles) > topFileCount {
			sortBySizeDesc(insights.LargestFiles)
			insights.LargestFiles = insights.LargestFiles[:topFileCount]
		}

		insights.OldestFiles = append(insights.OldestFiles, rec)
		if len(insights.OldestFiles) > topFileCount {
			sortByModifiedAsc(insights.OldestFiles)
			insights.OldestFiles = insights.OldestFiles[:topFileCount]
		}

		if isLowQualityVideo(rec) {
			insights.LowQualityVideos = append(insights.LowQualityVideos, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sortBySizeDesc(insights.LargestFiles)
	sortByModifiedAsc(insights.OldestFiles)
	return insights, nil
}

// FindDuplicates groups files by content hash and keeps only groups with
// more than one member. Files without a hash cannot be grouped and are
// ignored.
func (fs *FileScanner) FindDuplicates(ctx context.Context, root string) (map[string][]*models.FileRecord, error) {
	byHash := make(map[string][]*models.FileRecord)

	opts := ScanOptions{IncludeHash: true}
	err := fs.stream(ctx, root, opts, nil, func(rec *models.FileRecord) error {
		if rec.Hash != "" {
			byHash[rec.Hash] = append(byHash[rec.Hash], rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	duplicates := make(map[string][]*models.FileRecord)
	for hash, group := range byHash {
		if len(group) > 1 {
			duplicates[hash] = group
		}
	}
	return duplicates, nil
}

// FindAgingFiles returns records whose selected timestamp (accessed or
// modified, per mode) is older than now minus the given number of days.
func (fs *FileScanner) FindAgingFiles(ctx context.Context, root string, days int, mode string) ([]*models.FileRecord, error) {
	cutoff := time.Now().AddDate(0, 0, -days)
	var aging []*models.FileRecord

	err := fs.stream(ctx, root, ScanOptions{}, nil, func(rec *models.FileRecord) error {
		lastUsed := rec.ModifiedTime
		if mode == AgingByAccessed {
			lastUsed = rec.AccessedTime
		}
		if lastUsed.Before(cutoff) {
			aging = append(aging, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return aging, nil
}

// Search re-drives an enrichment pass, applies the filters, optionally
// keeps only the top-N largest and/or duplicate-hash members, and persists
// the outcome under a session-scoped output name. It returns the matched
// records and the path they were persisted to.
func (fs *FileScanner) Search(ctx context.Context, root string, filters SearchFilters) ([]*models.FileRecord, string, error) {
	// Duplicate grouping needs hashes; plain filtering does not.
	opts := ScanOptions{IncludeHash: filters.IncludeDuplicates}

	fileTypes := make(map[string]bool, len(filters.FileTypes))
	for _, t := range filters.FileTypes {
		t = strings.ToLower(t)
		if !strings.HasPrefix(t, ".") {
			t = "." + t
		}
		fileTypes[t] = true
	}

	var results []*models.FileRecord
	err := fs.stream(ctx, root, opts, nil, func(rec *models.FileRecord) error {
		if filters.MinSize != nil && rec.Size < *filters.MinSize {
			return nil
		}
		if filters.MaxSize != nil && rec.Size > *filters.MaxSize {
			return nil
		}
		if len(fileTypes) > 0 && !fileTypes[strings.ToLower(rec.FileType)] {
			return nil
		}
		if filters.CreatedBefore != nil && rec.CreatedTime.After(*filters.CreatedBefore) {
			return nil
		}
		if filters.ModifiedBefore != nil && rec.ModifiedTime.After(*filters.ModifiedBefore) {
			return nil
		}
		if filters.LowQualityVideos && !isLowQualityVideo(rec) {
			return nil
		}
		results = append(results, rec)
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	if filters.TopN > 0 {
		sortBySizeDesc(results)
		if len(results) > filters.TopN {
			results = results[:filters.TopN]
		}
	}

	if filters.IncludeDuplicates {
		byHash := make(map[string][]*models.FileRecord)
		for _, rec := range results {
			if rec.Hash != "" {
				byHash[rec.Hash] = append(byHash[rec.Hash], rec)
			}
		}
		var dups []*models.FileRecord
		for _, group := range byHash {
			if len(group) > 1 {
				dups = append(dups, group...)
			}
		}
		results = dups
	}

	outputFile := filepath.Join(fs.dataDir, fmt.Sprintf("search-%s.json", uuid.NewString()))
	sink, err := NewResultSink(outputFile)
	if err != nil {
		return nil, "", err
	}
	if err := sink.Replace(results); err != nil {
		return nil, "", err
	}
	return results, outputFile, nil
}

func isLowQualityVideo(rec *models.FileRecord) bool {
	return rec.VideoMetadata != nil &&
		rec.VideoMetadata.IsLowQuality != nil &&
		*rec.VideoMetadata.IsLowQuality
}

func sortBySizeDesc(records []*models.FileRecord) {
	sort.Slice(records, func(i, j int) bool {
		return records[i].Size > records[j].Size
	})
}

func sortByModifiedAsc(records []*models.FileRecord) {
	sort.Slice(records, func(i, j int) bool {
		return records[i].ModifiedTime.Before(records[j].ModifiedTime)
	})
}
