package media

import (
	"context"
	"fmt"

	"aria-downloader/internal/shared"
)

// PendingArtist resolves to the artist's discography.
type PendingArtist struct {
	deps *Deps
	id   string
}

// NewPendingArtist builds a pending artist for the given service ID.
func NewPendingArtist(deps *Deps, id string) *PendingArtist {
	return &PendingArtist{deps: deps, id: id}
}

func (p *PendingArtist) ID() string { return "artist " + p.id }

func (p *PendingArtist) Resolve(ctx context.Context) (Media, error) {
	artist, err := p.deps.Client.GetArtist(ctx, p.id)
	if err != nil {
		return nil, fmt.Errorf("failed to get artist info: %w", err)
	}
	shared.ColorInfo.Printf("🎤 Found artist: %s (%d albums)\n", artist.Name, len(artist.AlbumIDs))
	return &AlbumList{deps: p.deps, name: artist.Name, albumIDs: artist.AlbumIDs}, nil
}

// AlbumList is a resolved collection of albums: an artist discography or
// a label catalog. Member albums rip in chunks so a large catalog never
// opens an unbounded burst of connections.
type AlbumList struct {
	deps     *Deps
	name     string
	albumIDs []string
}

func (l *AlbumList) Rip(ctx context.Context) (*shared.DownloadStats, error) {
	if len(l.albumIDs) == 0 {
		shared.ColorWarning.Printf("⚠️ No albums found for %s\n", l.name)
		return &shared.DownloadStats{}, nil
	}
	pendings := make([]Pending, 0, len(l.albumIDs))
	for _, id := range l.albumIDs {
		pendings = append(pendings, NewPendingAlbum(l.deps, id))
	}
	return RipAll(ctx, pendings, DefaultAlbumChunkSize), nil
}
