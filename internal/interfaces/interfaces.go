package interfaces

import (
	"context"

	"aria-downloader/internal/core/downloader"
	"aria-downloader/internal/shared"
)

// Client defines the streaming-service operations the media layer needs.
// Implementations live under internal/api.
type Client interface {
	// Source returns the service name, used in logs and the database.
	Source() string

	// Search performs a search query and returns results
	Search(ctx context.Context, query, searchType string, limit int) (*shared.SearchResults, error)

	// GetAlbum retrieves detailed album information by ID, tracks included
	GetAlbum(ctx context.Context, albumID string) (*shared.Album, error)

	// GetTrack retrieves track information by ID
	GetTrack(ctx context.Context, trackID string) (*shared.Track, error)

	// GetArtist retrieves artist information and discography by ID
	GetArtist(ctx context.Context, artistID string) (*shared.Artist, error)

	// GetLabel retrieves a label's catalog by ID
	GetLabel(ctx context.Context, labelID string) (*shared.Label, error)

	// GetDownloadable resolves a track into something that can be fetched
	GetDownloadable(ctx context.Context, trackID string, quality int) (downloader.Downloadable, error)
}
