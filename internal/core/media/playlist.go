package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"aria-downloader/internal/shared"
)

// Playlist rips a list of tracks converted from another service into one
// flat folder under playlists/. Tracks that cannot be matched on the
// source service count as failed; they never abort the playlist.
type Playlist struct {
	deps    *Deps
	name    string
	sources []shared.SpotifyTrack
}

// NewPlaylist builds a playlist rip from converted track listings.
func NewPlaylist(deps *Deps, name string, sources []shared.SpotifyTrack) *Playlist {
	return &Playlist{deps: deps, name: name, sources: sources}
}

func (p *Playlist) Rip(ctx context.Context) (*shared.DownloadStats, error) {
	folder := filepath.Join(p.deps.Config.DownloadLocation, "playlists", shared.SanitizeFileName(p.name))
	if err := os.MkdirAll(folder, 0755); err != nil {
		return nil, fmt.Errorf("failed to create playlist directory: %w", err)
	}

	shared.ColorInfo.Printf("🎧 %s: matching %d track(s)\n", p.name, len(p.sources))

	stats := &shared.DownloadStats{}
	pendings := make([]Pending, 0, len(p.sources))
	for _, source := range p.sources {
		id, err := p.match(ctx, source)
		if err != nil {
			p.deps.Warnings.AddTrackDownloadWarning(source.Artist, source.Name, err.Error())
			stats.FailedCount++
			stats.FailedItems = append(stats.FailedItems, fmt.Sprintf("%s - %s: %v", source.Artist, source.Name, err))
			continue
		}
		pendings = append(pendings, &PendingSingle{deps: p.deps, id: id, folder: folder, forPlaylist: true})
	}

	stats.Merge(RipAll(ctx, pendings, p.deps.Config.Parallelism))
	return stats, nil
}

// match finds the service's own track ID for a converted listing.
func (p *Playlist) match(ctx context.Context, source shared.SpotifyTrack) (string, error) {
	query := fmt.Sprintf("%s %s", source.Artist, source.Name)
	results, err := p.deps.Client.Search(ctx, query, "track", 1)
	if err != nil {
		return "", err
	}
	if len(results.Tracks) == 0 {
		return "", fmt.Errorf("no match found")
	}
	return results.Tracks[0].ID, nil
}
