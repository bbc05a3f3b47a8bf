package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cheggaaa/pb/v3"

	"aria-downloader/internal/core/downloader"
	"aria-downloader/internal/shared"
)

// PendingTrack is a track inside an album rip. The parent album already
// holds full metadata, so resolution never touches the network.
type PendingTrack struct {
	deps      *Deps
	track     shared.Track
	album     *shared.Album
	folder    string
	embedPath string
	bar       *pb.ProgressBar
}

func (p *PendingTrack) ID() string { return p.track.Title }

func (p *PendingTrack) Resolve(ctx context.Context) (Media, error) {
	return &Track{
		deps:      p.deps,
		track:     p.track,
		album:     p.album,
		folder:    p.folder,
		embedPath: p.embedPath,
		bar:       p.bar,
	}, nil
}

// PendingSingle is a standalone track known only by ID; the track
// command and playlist rips use it. Resolution fetches the track and its
// album and runs the artwork pipeline for the destination folder.
type PendingSingle struct {
	deps        *Deps
	id          string
	folder      string // destination override, used by playlists
	forPlaylist bool
}

// NewPendingSingle builds a standalone pending track.
func NewPendingSingle(deps *Deps, id string) *PendingSingle {
	return &PendingSingle{deps: deps, id: id}
}

func (p *PendingSingle) ID() string { return "track " + p.id }

func (p *PendingSingle) Resolve(ctx context.Context) (Media, error) {
	track, err := p.deps.Client.GetTrack(ctx, p.id)
	if err != nil {
		return nil, fmt.Errorf("failed to get track info: %w", err)
	}

	var album *shared.Album
	if track.AlbumID != "" {
		album, err = p.deps.Client.GetAlbum(ctx, track.AlbumID)
		if err != nil {
			p.deps.Warnings.AddAlbumFetchWarning(track.AlbumTitle, track.AlbumID, err.Error())
			album = nil
		}
	}

	folder := p.folder
	if folder == "" {
		if album != nil {
			folder = albumFolder(p.deps.Config, album)
		} else {
			folder = filepath.Join(p.deps.Config.DownloadLocation, shared.SanitizeFileName(track.Artist))
		}
	}
	if err := os.MkdirAll(folder, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	var embedPath string
	if album != nil {
		embedPath, err = fetchArtwork(ctx, p.deps, folder, album, p.forPlaylist)
		if err != nil {
			return nil, err
		}
	}

	return &Track{
		deps:        p.deps,
		track:       *track,
		album:       album,
		folder:      folder,
		embedPath:   embedPath,
		forPlaylist: p.forPlaylist,
	}, nil
}

// Track is a resolved track ready to rip.
type Track struct {
	deps        *Deps
	track       shared.Track
	album       *shared.Album
	folder      string
	embedPath   string
	forPlaylist bool
	bar         *pb.ProgressBar
}

// Rip downloads the audio, tags it and records the track in the dedup
// database. Tracks seen before, in the database or on disk, surface
// ErrAlreadyDownloaded.
func (t *Track) Rip(ctx context.Context) (*shared.DownloadStats, error) {
	key := t.dedupKey()
	if t.deps.DB.Downloaded(key) {
		t.deps.Warnings.AddTrackSkippedWarning(t.track.Title)
		return nil, shared.ErrAlreadyDownloaded
	}

	dl, err := t.deps.Client.GetDownloadable(ctx, t.track.ID, t.deps.Config.Quality)
	if err != nil {
		_ = t.deps.DB.SetFailed(t.deps.Client.Source(), "track", t.track.ID)
		t.deps.Warnings.AddTrackDownloadWarning(t.track.Artist, t.track.Title, err.Error())
		return nil, fmt.Errorf("failed to resolve stream: %w", err)
	}

	path := filepath.Join(t.folder, t.fileName()+"."+dl.Extension())
	if shared.FileExists(path) {
		t.deps.Warnings.AddTrackSkippedWarning(path)
		return nil, shared.ErrAlreadyDownloaded
	}

	bar := t.bar
	var ownBar bool
	if bar == nil && shared.IsTerminal() {
		bar = downloader.NewProgressBar(trackBarPrefix(t.trackNumber(), t.track.Title))
		bar.Start()
		ownBar = true
	}

	err = dl.Download(ctx, path, bar)
	if ownBar {
		bar.Finish()
	}
	if err != nil {
		_ = t.deps.DB.SetFailed(t.deps.Client.Source(), "track", t.track.ID)
		t.deps.Warnings.AddTrackDownloadWarning(t.track.Artist, t.track.Title, err.Error())
		return nil, err
	}

	var coverData []byte
	if t.embedPath != "" {
		coverData, err = os.ReadFile(t.embedPath)
		if err != nil {
			t.deps.Warnings.AddCoverArtProcessWarning(t.albumTitle(), err.Error())
			coverData = nil
		}
	}

	if err := t.deps.Tagger.Tag(ctx, path, t.track, t.album, coverData, t.deps.Warnings); err != nil {
		t.deps.Warnings.AddTaggingWarning(t.track.Title, err.Error())
	}

	if err := t.deps.DB.SetDownloaded(key); err != nil {
		shared.ColorWarning.Printf("⚠️ Could not record download of %s: %v\n", t.track.Title, err)
	}

	if t.bar == nil {
		shared.ColorSuccess.Printf("✅ Downloaded: %s\n", path)
	}

	return &shared.DownloadStats{SuccessCount: 1}, nil
}

func (t *Track) dedupKey() string {
	return t.deps.Client.Source() + ":" + t.track.ID
}

func (t *Track) trackNumber() int {
	if t.track.TrackNumber > 0 {
		return t.track.TrackNumber
	}
	return 1
}

func (t *Track) discNumber() int {
	if t.track.DiscNumber > 0 {
		return t.track.DiscNumber
	}
	return 1
}

func (t *Track) albumTitle() string {
	if t.album != nil {
		return t.album.Title
	}
	return t.track.AlbumTitle
}

// fileName derives the audio file name without its extension. Album rips
// follow the configured file mask; playlist folders mix artists, so the
// mask gives way to an artist-title form.
func (t *Track) fileName() string {
	if t.forPlaylist {
		return shared.SanitizeFileName(fmt.Sprintf("%s - %s", t.track.Artist, t.track.Title))
	}
	return shared.ExpandMask(t.deps.Config.NamingMasks.FileMask, map[string]string{
		"track_number": fmt.Sprintf("%02d", t.trackNumber()),
		"disc_number":  fmt.Sprintf("%d", t.discNumber()),
		"title":        t.track.Title,
		"artist":       t.track.Artist,
	})
}

func trackBarPrefix(number int, title string) string {
	return fmt.Sprintf("Track %-2d: %-40s", number, shared.TruncateString(title, 40))
}
