package qobuz

import (
	"strconv"

	"aria-downloader/internal/shared"
)

// Wire structures for the Qobuz API (api.qobuz.com/api.json/0.2).
// Track IDs are numeric on the wire; everything downstream uses strings.

type loginResponse struct {
	UserAuthToken string `json:"user_auth_token"`
	User          struct {
		ID          int64  `json:"id"`
		DisplayName string `json:"display_name"`
	} `json:"user"`
}

type apiImage struct {
	Large     string `json:"large"`
	Small     string `json:"small"`
	Thumbnail string `json:"thumbnail"`
}

type apiGenre struct {
	Name string `json:"name"`
}

type apiArtist struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type apiLabel struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type apiTrack struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Version     string `json:"version"`
	TrackNumber int    `json:"track_number"`
	MediaNumber int    `json:"media_number"`
	Duration    int    `json:"duration"`
	ISRC        string `json:"isrc"`
	Copyright   string `json:"copyright"`
	Streamable  bool   `json:"streamable"`
	Performer   *struct {
		Name string `json:"name"`
	} `json:"performer"`
	Composer *struct {
		Name string `json:"name"`
	} `json:"composer"`
	Album *apiAlbum `json:"album"`
}

type apiTrackList struct {
	Items  []apiTrack `json:"items"`
	Total  int        `json:"total"`
	Offset int        `json:"offset"`
	Limit  int        `json:"limit"`
}

type apiAlbum struct {
	ID                  string       `json:"id"`
	Title               string       `json:"title"`
	Version             string       `json:"version"`
	Artist              apiArtist    `json:"artist"`
	Genre               apiGenre     `json:"genre"`
	Label               apiLabel     `json:"label"`
	ReleaseDateOriginal string       `json:"release_date_original"`
	UPC                 string       `json:"upc"`
	TracksCount         int          `json:"tracks_count"`
	MediaCount          int          `json:"media_count"`
	Image               apiImage     `json:"image"`
	Tracks              apiTrackList `json:"tracks"`
	Streamable          bool         `json:"streamable"`
}

type apiAlbumList struct {
	Items  []apiAlbum `json:"items"`
	Total  int        `json:"total"`
	Offset int        `json:"offset"`
	Limit  int        `json:"limit"`
}

type artistResponse struct {
	ID     int64        `json:"id"`
	Name   string       `json:"name"`
	Albums apiAlbumList `json:"albums"`
}

type labelResponse struct {
	ID     int64        `json:"id"`
	Name   string       `json:"name"`
	Albums apiAlbumList `json:"albums"`
}

type searchResponse struct {
	Albums apiAlbumList `json:"albums"`
	Tracks apiTrackList `json:"tracks"`
}

type fileURLResponse struct {
	URL          string  `json:"url"`
	FormatID     int     `json:"format_id"`
	MimeType     string  `json:"mime_type"`
	SamplingRate float64 `json:"sampling_rate"`
	BitDepth     int     `json:"bit_depth"`
	Sample       bool    `json:"sample"`
}

func formatInt(id int64) string {
	return strconv.FormatInt(id, 10)
}

// fullTitle joins a title with its version suffix ("Remastered" etc.).
func fullTitle(title, version string) string {
	if version == "" {
		return title
	}
	return title + " (" + version + ")"
}

func (t *apiTrack) toShared(albumID string) shared.Track {
	track := shared.Track{
		ID:          formatInt(t.ID),
		Title:       fullTitle(t.Title, t.Version),
		ISRC:        t.ISRC,
		Copyright:   t.Copyright,
		TrackNumber: t.TrackNumber,
		DiscNumber:  t.MediaNumber,
		Duration:    t.Duration,
		Streamable:  t.Streamable,
		AlbumID:     albumID,
	}
	if t.Performer != nil {
		track.Artist = t.Performer.Name
	}
	if t.Composer != nil {
		track.Composer = t.Composer.Name
	}
	if t.Album != nil {
		if track.AlbumID == "" {
			track.AlbumID = t.Album.ID
		}
		track.AlbumTitle = fullTitle(t.Album.Title, t.Album.Version)
		if track.Artist == "" {
			track.Artist = t.Album.Artist.Name
		}
	}
	return track
}

func (a *apiAlbum) toShared() *shared.Album {
	album := &shared.Album{
		ID:          a.ID,
		Title:       fullTitle(a.Title, a.Version),
		Artist:      a.Artist.Name,
		Genre:       a.Genre.Name,
		Label:       a.Label.Name,
		ReleaseDate: a.ReleaseDateOriginal,
		UPC:         a.UPC,
		TotalTracks: a.TracksCount,
		TotalDiscs:  a.MediaCount,
		Covers:      shared.CoversFromQobuz(a.Image.Large, a.Image.Small, a.Image.Thumbnail),
	}
	if album.TotalDiscs == 0 {
		album.TotalDiscs = 1
	}
	for i := range a.Tracks.Items {
		album.Tracks = append(album.Tracks, a.Tracks.Items[i].toShared(a.ID))
	}
	if album.TotalTracks == 0 {
		album.TotalTracks = len(album.Tracks)
	}
	return album
}

func albumIDs(list apiAlbumList) []string {
	ids := make([]string, 0, len(list.Items))
	for i := range list.Items {
		ids = append(ids, list.Items[i].ID)
	}
	return ids
}
