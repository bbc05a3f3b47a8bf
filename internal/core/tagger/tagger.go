// Package tagger writes metadata into ripped FLAC files: vorbis
// comments, embedded cover art and, when enabled, MusicBrainz
// identifiers looked up by ISRC.
package tagger

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-flac/flacpicture"
	"github.com/go-flac/flacvorbis"
	"github.com/go-flac/go-flac"

	"aria-downloader/internal/api/musicbrainz"
	"aria-downloader/internal/shared"
)

// Tagger rewrites FLAC metadata blocks. MusicBrainz lookups are cached
// per album so a full album rip costs one release search at most.
type Tagger struct {
	mb *musicbrainz.Client

	mu       sync.Mutex
	releases map[string]*musicbrainz.Release // album ID -> release, nil after a failed lookup
}

// New creates a Tagger. With enrich set, tags gain MUSICBRAINZ_*
// identifiers resolved over the MusicBrainz API.
func New(enrich bool) *Tagger {
	t := &Tagger{
		releases: make(map[string]*musicbrainz.Release),
	}
	if enrich {
		t.mb = musicbrainz.NewClient()
	}
	return t
}

// Tag replaces the vorbis comment and picture blocks of the FLAC file
// at path. coverData may be nil, in which case no picture is embedded.
// Lookup failures degrade to warnings; only file errors are returned.
func (t *Tagger) Tag(ctx context.Context, path string, track shared.Track, album *shared.Album, coverData []byte, warnings *shared.WarningCollector) error {
	f, err := flac.ParseFile(path)
	if err != nil {
		return fmt.Errorf("failed to parse FLAC file: %w", err)
	}

	// Drop existing comment and picture blocks so reruns stay clean.
	var kept []*flac.MetaDataBlock
	for _, block := range f.Meta {
		if block.Type != flac.VorbisComment && block.Type != flac.Picture {
			kept = append(kept, block)
		}
	}
	f.Meta = kept

	comment := flacvorbis.New()

	addField(comment, flacvorbis.FIELD_TITLE, track.Title)
	addField(comment, flacvorbis.FIELD_ARTIST, track.Artist)
	addField(comment, flacvorbis.FIELD_ALBUM, albumTitle(track, album))
	addField(comment, "ALBUMARTIST", albumArtist(track, album))

	trackNumber := track.TrackNumber
	if trackNumber == 0 {
		trackNumber = 1
	}
	addField(comment, flacvorbis.FIELD_TRACKNUMBER, fmt.Sprintf("%d", trackNumber))

	discNumber := track.DiscNumber
	if discNumber == 0 {
		discNumber = 1
	}
	addField(comment, "DISCNUMBER", fmt.Sprintf("%d", discNumber))

	if album != nil {
		if album.TotalTracks > 0 {
			addField(comment, "TOTALTRACKS", fmt.Sprintf("%d", album.TotalTracks))
		}
		totalDiscs := album.TotalDiscs
		if totalDiscs == 0 {
			totalDiscs = 1
		}
		addField(comment, "TOTALDISCS", fmt.Sprintf("%d", totalDiscs))

		if album.ReleaseDate != "" {
			addField(comment, flacvorbis.FIELD_DATE, album.ReleaseDate)
			addField(comment, "ORIGINALDATE", album.ReleaseDate)
			addField(comment, "YEAR", album.Year())
		}
		if album.Genre != "" && album.Genre != "Unknown" {
			addField(comment, "GENRE", album.Genre)
		}
		addField(comment, "LABEL", album.Label)
		if album.UPC != "" {
			addField(comment, "UPC", album.UPC)
			addField(comment, "CATALOGNUMBER", album.UPC)
		}
	}

	addField(comment, "COMPOSER", track.Composer)
	addField(comment, "ISRC", track.ISRC)
	addField(comment, "COPYRIGHT", track.Copyright)
	if track.Duration > 0 {
		addField(comment, "LENGTH", fmt.Sprintf("%d", track.Duration))
	}

	t.addMusicBrainzTags(ctx, comment, track, album, warnings)

	vorbisCommentBlock := comment.Marshal()
	f.Meta = append(f.Meta, &vorbisCommentBlock)

	if err := addCoverArt(f, coverData); err != nil {
		if warnings != nil {
			warnings.AddTaggingWarning(track.Title, fmt.Sprintf("could not embed cover: %v", err))
		}
	}

	if err := f.Save(path); err != nil {
		return fmt.Errorf("failed to save FLAC file with metadata: %w", err)
	}

	return nil
}

// addField adds a field to vorbis comment only if value is not empty
func addField(comment *flacvorbis.MetaDataBlockVorbisComment, field, value string) {
	if value != "" {
		comment.Add(field, value)
	}
}

func albumTitle(track shared.Track, album *shared.Album) string {
	if album != nil && album.Title != "" {
		return album.Title
	}
	if track.AlbumTitle != "" {
		return track.AlbumTitle
	}
	return "Unknown Album"
}

func albumArtist(track shared.Track, album *shared.Album) string {
	if album != nil && album.Artist != "" {
		return album.Artist
	}
	return track.Artist
}

// addMusicBrainzTags resolves MusicBrainz identifiers, preferring a
// single ISRC lookup which carries track, artist and release IDs at
// once. Failures are reported as warnings and never block tagging.
func (t *Tagger) addMusicBrainzTags(ctx context.Context, comment *flacvorbis.MetaDataBlockVorbisComment, track shared.Track, album *shared.Album, warnings *shared.WarningCollector) {
	if t.mb == nil {
		return
	}

	if track.ISRC != "" {
		rec, err := t.mb.SearchRecordingByISRC(ctx, track.ISRC)
		if err == nil {
			addField(comment, "MUSICBRAINZ_TRACKID", rec.ID)
			if len(rec.ArtistCredit) > 0 {
				addField(comment, "MUSICBRAINZ_ARTISTID", rec.ArtistCredit[0].Artist.ID)
			}
			if len(rec.Releases) > 0 {
				release := rec.Releases[0]
				addField(comment, "MUSICBRAINZ_ALBUMID", release.ID)
				addField(comment, "MUSICBRAINZ_RELEASEGROUPID", release.ReleaseGroup.ID)
				if len(release.ArtistCredit) > 0 {
					addField(comment, "MUSICBRAINZ_ALBUMARTISTID", release.ArtistCredit[0].Artist.ID)
				}
			}
			return
		}
		// Fall through to the title-based lookups.
	}

	rec, err := t.mb.SearchRecording(ctx, track.Artist, albumTitle(track, album), track.Title)
	if err != nil {
		if warnings != nil {
			warnings.AddTaggingWarning(track.Title, fmt.Sprintf("musicbrainz lookup failed: %v", err))
		}
	} else {
		addField(comment, "MUSICBRAINZ_TRACKID", rec.ID)
		if len(rec.ArtistCredit) > 0 {
			addField(comment, "MUSICBRAINZ_ARTISTID", rec.ArtistCredit[0].Artist.ID)
		}
	}

	if album == nil {
		return
	}
	if release := t.cachedRelease(ctx, album); release != nil {
		addField(comment, "MUSICBRAINZ_ALBUMID", release.ID)
		addField(comment, "MUSICBRAINZ_RELEASEGROUPID", release.ReleaseGroup.ID)
		if len(release.ArtistCredit) > 0 {
			addField(comment, "MUSICBRAINZ_ALBUMARTISTID", release.ArtistCredit[0].Artist.ID)
		}
	}
}

// cachedRelease looks up the MusicBrainz release for an album once,
// caching hits and misses alike.
func (t *Tagger) cachedRelease(ctx context.Context, album *shared.Album) *musicbrainz.Release {
	t.mu.Lock()
	release, attempted := t.releases[album.ID]
	t.mu.Unlock()
	if attempted {
		return release
	}

	release, err := t.mb.SearchRelease(ctx, album.Artist, album.Title)
	if err != nil {
		release = nil
	}

	t.mu.Lock()
	t.releases[album.ID] = release
	t.mu.Unlock()
	return release
}

// addCoverArt embeds the image as the front cover picture block.
func addCoverArt(f *flac.File, coverData []byte) error {
	if len(coverData) == 0 {
		return nil
	}

	picture, err := flacpicture.NewFromImageData(
		flacpicture.PictureTypeFrontCover,
		"Front Cover",
		coverData,
		detectImageFormat(coverData),
	)
	if err != nil {
		return fmt.Errorf("failed to create picture metadata: %w", err)
	}

	pictureBlock := picture.Marshal()
	f.Meta = append(f.Meta, &pictureBlock)
	return nil
}

// detectImageFormat sniffs the MIME type from the image bytes.
func detectImageFormat(data []byte) string {
	if len(data) >= 4 && data[0] == 0x89 && data[1] == 0x50 && data[2] == 0x4E && data[3] == 0x47 {
		return "image/png"
	}
	// Everything the artwork pipeline produces is JPEG.
	return "image/jpeg"
}
