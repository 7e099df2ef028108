package media

import (
	"os"

	"github.com/dhowden/tag"
	"github.com/mantonx/diskexplorer/internal/models"
)

// ReadAudioTags reads best-effort tag metadata from an audio file. Any
// failure (unreadable file, no tags, unsupported container) returns nil;
// the file is still recorded without audio enrichment.
func ReadAudioTags(path string) *models.AudioRecord {
	file, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer file.Close()

	meta, err := tag.ReadFrom(file)
	if err != nil {
		return nil
	}

	return &models.AudioRecord{
		Title:  meta.Title(),
		Artist: meta.Artist(),
		Album:  meta.Album(),
		Genre:  meta.Genre(),
		Year:   meta.Year(),
	}
}
