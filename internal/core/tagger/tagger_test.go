package tagger

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-flac/flacvorbis"
	"github.com/go-flac/go-flac"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aria-downloader/internal/shared"
)

// writeTestFLAC writes a FLAC file with a bare STREAMINFO block and no
// audio frames, which is enough structure for the tag rewriter.
func writeTestFLAC(t *testing.T, path string) {
	t.Helper()
	var buf bytes.Buffer
	buf.WriteString("fLaC")
	buf.WriteByte(0x80) // STREAMINFO, last-metadata-block flag set
	buf.Write([]byte{0x00, 0x00, 0x22})
	buf.Write(make([]byte, 34))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
}

func jpegBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 8)), nil))
	return buf.Bytes()
}

// inspect parses the file and returns its vorbis comment along with the
// comment and picture block counts.
func inspect(t *testing.T, path string) (*flacvorbis.MetaDataBlockVorbisComment, int, int) {
	t.Helper()
	f, err := flac.ParseFile(path)
	require.NoError(t, err)

	var comment *flacvorbis.MetaDataBlockVorbisComment
	comments, pictures := 0, 0
	for _, block := range f.Meta {
		switch block.Type {
		case flac.VorbisComment:
			comments++
			parsed, err := flacvorbis.ParseFromMetaDataBlock(*block)
			require.NoError(t, err)
			comment = parsed
		case flac.Picture:
			pictures++
		}
	}
	return comment, comments, pictures
}

func field(t *testing.T, comment *flacvorbis.MetaDataBlockVorbisComment, name string) string {
	t.Helper()
	values, err := comment.Get(name)
	require.NoError(t, err)
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func testAlbum() *shared.Album {
	return &shared.Album{
		ID:          "alb1",
		Title:       "Blue Train",
		Artist:      "John Coltrane",
		Genre:       "Jazz",
		Label:       "Blue Note",
		ReleaseDate: "1958-01-15",
		UPC:         "123456789012",
		TotalTracks: 5,
		TotalDiscs:  1,
	}
}

func testTrack() shared.Track {
	return shared.Track{
		ID:          "101",
		Title:       "Moment's Notice",
		Artist:      "John Coltrane",
		Composer:    "John Coltrane",
		ISRC:        "USBN15800102",
		Copyright:   "(C) 1958 Blue Note Records",
		TrackNumber: 3,
		DiscNumber:  1,
		Duration:    546,
		AlbumID:     "alb1",
	}
}

func TestTagWritesMetadata(t *testing.T) {
	path := filepath.Join(t.TempDir(), "track.flac")
	writeTestFLAC(t, path)

	warnings := shared.NewWarningCollector(shared.WarningsSummary)
	tg := New(false)
	err := tg.Tag(context.Background(), path, testTrack(), testAlbum(), jpegBytes(t), warnings)
	require.NoError(t, err)

	comment, comments, pictures := inspect(t, path)
	require.Equal(t, 1, comments)
	assert.Equal(t, 1, pictures)

	assert.Equal(t, "Moment's Notice", field(t, comment, flacvorbis.FIELD_TITLE))
	assert.Equal(t, "John Coltrane", field(t, comment, flacvorbis.FIELD_ARTIST))
	assert.Equal(t, "Blue Train", field(t, comment, flacvorbis.FIELD_ALBUM))
	assert.Equal(t, "John Coltrane", field(t, comment, "ALBUMARTIST"))
	assert.Equal(t, "3", field(t, comment, flacvorbis.FIELD_TRACKNUMBER))
	assert.Equal(t, "5", field(t, comment, "TOTALTRACKS"))
	assert.Equal(t, "1", field(t, comment, "DISCNUMBER"))
	assert.Equal(t, "1958-01-15", field(t, comment, flacvorbis.FIELD_DATE))
	assert.Equal(t, "1958", field(t, comment, "YEAR"))
	assert.Equal(t, "Jazz", field(t, comment, "GENRE"))
	assert.Equal(t, "Blue Note", field(t, comment, "LABEL"))
	assert.Equal(t, "123456789012", field(t, comment, "UPC"))
	assert.Equal(t, "USBN15800102", field(t, comment, "ISRC"))
	assert.Equal(t, "546", field(t, comment, "LENGTH"))
	assert.False(t, warnings.HasWarnings())
}

func TestTagReplacesExistingBlocks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "track.flac")
	writeTestFLAC(t, path)

	tg := New(false)
	require.NoError(t, tg.Tag(context.Background(), path, testTrack(), testAlbum(), jpegBytes(t), nil))

	// Retag with a different title; old blocks must not pile up.
	retitled := testTrack()
	retitled.Title = "Lazy Bird"
	require.NoError(t, tg.Tag(context.Background(), path, retitled, testAlbum(), jpegBytes(t), nil))

	comment, comments, pictures := inspect(t, path)
	assert.Equal(t, 1, comments)
	assert.Equal(t, 1, pictures)
	assert.Equal(t, "Lazy Bird", field(t, comment, flacvorbis.FIELD_TITLE))
}

func TestTagWithoutCover(t *testing.T) {
	path := filepath.Join(t.TempDir(), "track.flac")
	writeTestFLAC(t, path)

	tg := New(false)
	require.NoError(t, tg.Tag(context.Background(), path, testTrack(), testAlbum(), nil, nil))

	_, comments, pictures := inspect(t, path)
	assert.Equal(t, 1, comments)
	assert.Equal(t, 0, pictures)
}

func TestTagDefaultsForSparseTrack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "track.flac")
	writeTestFLAC(t, path)

	track := shared.Track{Title: "Untitled", Artist: "Unknown Artist", AlbumTitle: "Some Album"}
	tg := New(false)
	require.NoError(t, tg.Tag(context.Background(), path, track, nil, nil, nil))

	comment, _, _ := inspect(t, path)
	assert.Equal(t, "Some Album", field(t, comment, flacvorbis.FIELD_ALBUM))
	assert.Equal(t, "Unknown Artist", field(t, comment, "ALBUMARTIST"))
	assert.Equal(t, "1", field(t, comment, flacvorbis.FIELD_TRACKNUMBER))
	assert.Equal(t, "1", field(t, comment, "DISCNUMBER"))
}

func TestTagMissingFile(t *testing.T) {
	tg := New(false)
	err := tg.Tag(context.Background(), filepath.Join(t.TempDir(), "missing.flac"), testTrack(), nil, nil, nil)
	require.Error(t, err)
}
