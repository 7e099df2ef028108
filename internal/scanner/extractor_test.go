package scanner

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/mantonx/diskexplorer/internal/media"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestExtractor() *Extractor {
	analyzer := media.NewAnalyzer("/nonexistent/ffmpeg", "/nonexistent/ffprobe",
		"", 3, media.DefaultThresholds())
	return NewExtractor(analyzer, nil)
}

func TestExtractRegularFile(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "hello.txt")
	writeFile(t, path, "hello")

	x := newTestExtractor()
	record, err := x.Extract(context.Background(), path, ExtractOptions{IncludeHash: true})
	require.NoError(t, err)
	require.NotNil(t, record)

	assert.Equal(t, path, record.Path)
	assert.Equal(t, "hello.txt", record.Name)
	assert.Equal(t, int64(5), record.Size)
	assert.Equal(t, ".txt", record.FileType)
	assert.Equal(t, "5d41402abc4b2a76b9719d911017c592", record.Hash)
	assert.False(t, record.IsDirectory)
	assert.False(t, record.ModifiedTime.IsZero())
	assert.False(t, record.AccessedTime.IsZero())
	assert.Nil(t, record.VideoMetadata)
	assert.Nil(t, record.AudioMetadata)
}

func TestExtractWithoutHash(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "hello.txt")
	writeFile(t, path, "hello")

	x := newTestExtractor()
	record, err := x.Extract(context.Background(), path, ExtractOptions{})
	require.NoError(t, err)
	assert.Empty(t, record.Hash)
}

func TestExtractSkipsDirectories(t *testing.T) {
	x := newTestExtractor()
	record, err := x.Extract(context.Background(), t.TempDir(), ExtractOptions{})
	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestExtractMissingFile(t *testing.T) {
	x := newTestExtractor()
	_, err := x.Extract(context.Background(), filepath.Join(t.TempDir(), "gone.txt"), ExtractOptions{})
	assert.Error(t, err)
}

func TestExtractUnprobeableVideo(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "clip.mkv")
	writeFile(t, path, "garbage")

	x := newTestExtractor()
	record, err := x.Extract(context.Background(), path, ExtractOptions{})
	require.NoError(t, err)
	assert.Nil(t, record.VideoMetadata)
}

func TestExtractUnreadableAudioTags(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "song.mp3")
	writeFile(t, path, "not an mp3")

	x := newTestExtractor()
	record, err := x.Extract(context.Background(), path, ExtractOptions{})
	require.NoError(t, err)
	assert.Nil(t, record.AudioMetadata)
}
