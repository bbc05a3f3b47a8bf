package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cheggaaa/pb/v3"

	"aria-downloader/internal/config"
	"aria-downloader/internal/core/artwork"
	"aria-downloader/internal/core/downloader"
	"aria-downloader/internal/shared"
)

// PendingAlbum is an album known only by ID.
type PendingAlbum struct {
	deps *Deps
	id   string
}

// NewPendingAlbum builds a pending album for the given service ID.
func NewPendingAlbum(deps *Deps, id string) *PendingAlbum {
	return &PendingAlbum{deps: deps, id: id}
}

func (p *PendingAlbum) ID() string { return "album " + p.id }

func (p *PendingAlbum) Resolve(ctx context.Context) (Media, error) {
	album, err := p.deps.Client.GetAlbum(ctx, p.id)
	if err != nil {
		return nil, fmt.Errorf("failed to get album info: %w", err)
	}
	return &Album{deps: p.deps, album: album}, nil
}

// Album is a resolved album with full track metadata.
type Album struct {
	deps  *Deps
	album *shared.Album
}

// Rip creates the album folder, fetches cover art once and rips all
// tracks with bounded parallelism. The returned stats count tracks.
func (a *Album) Rip(ctx context.Context) (*shared.DownloadStats, error) {
	album := a.album
	folder := albumFolder(a.deps.Config, album)
	if err := os.MkdirAll(folder, 0755); err != nil {
		return nil, fmt.Errorf("failed to create album directory: %w", err)
	}

	shared.ColorInfo.Printf("💿 %s - %s (%d tracks)\n", album.Artist, album.Title, len(album.Tracks))

	embedPath, err := fetchArtwork(ctx, a.deps, folder, album, false)
	if err != nil {
		return nil, err
	}

	var pool *pb.Pool
	if shared.IsTerminal() {
		var poolErr error
		pool, poolErr = pb.StartPool()
		if poolErr != nil {
			shared.ColorError.Printf("❌ Failed to start progress bar pool: %v\n", poolErr)
			pool = nil
		}
	}

	pendings := make([]Pending, 0, len(album.Tracks))
	for i, track := range album.Tracks {
		if track.TrackNumber == 0 {
			track.TrackNumber = i + 1
		}
		var bar *pb.ProgressBar
		if pool != nil {
			bar = downloader.NewProgressBar(trackBarPrefix(track.TrackNumber, track.Title))
			pool.Add(bar)
		}
		pendings = append(pendings, &PendingTrack{
			deps:      a.deps,
			track:     track,
			album:     album,
			folder:    folder,
			embedPath: embedPath,
			bar:       bar,
		})
	}

	stats := RipAll(ctx, pendings, a.deps.Config.Parallelism)

	if pool != nil {
		pool.Stop()
	}

	return stats, nil
}

// albumFolder expands the configured folder mask under the download root.
func albumFolder(cfg *config.Config, album *shared.Album) string {
	expanded := shared.ExpandMask(cfg.NamingMasks.AlbumFolderMask, map[string]string{
		"artist": album.Artist,
		"album":  album.Title,
		"year":   album.Year(),
		"genre":  album.Genre,
	})
	return filepath.Join(cfg.DownloadLocation, filepath.FromSlash(expanded))
}

// fetchArtwork runs the artwork pipeline for an album folder. A missing
// cover is degraded-but-continuable unless an embedded cover is declared
// mandatory by configuration.
func fetchArtwork(ctx context.Context, deps *Deps, folder string, album *shared.Album, forPlaylist bool) (string, error) {
	opts := deps.Config.Artwork
	embedPath, _, err := artwork.Download(ctx, deps.HTTP, folder, album.Covers, opts, deps.Registry, forPlaylist)
	if err != nil {
		if opts.Embed && opts.EmbedMandatory {
			return "", fmt.Errorf("cover art for %s: %w", album.Title, err)
		}
		deps.Warnings.AddCoverArtProcessWarning(album.Title, err.Error())
		return "", nil
	}
	if opts.Embed && opts.EmbedMandatory && embedPath == "" {
		return "", fmt.Errorf("no embeddable cover art for %s", album.Title)
	}
	if opts.Embed && embedPath == "" && album.Covers != nil && !album.Covers.Empty() {
		deps.Warnings.AddCoverArtDownloadWarning(album.Title, "cover art could not be fetched")
	}
	return embedPath, nil
}
