package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"aria-downloader/internal/config"
	"aria-downloader/internal/core/media"
	"aria-downloader/internal/core/search"
	"aria-downloader/internal/core/updater"
	"aria-downloader/internal/services"
	"aria-downloader/internal/shared"
)

// version is injected at build time via -ldflags "-X main.version=...".
var version = "dev"

var (
	configPath       string
	noColor          bool
	debug            bool
	downloadLocation string
	quality          int
	searchType       string
	searchLimit      int
)

var rootCmd = &cobra.Command{
	Use:     "aria",
	Version: version,
	Short:   "A concurrent FLAC downloader for the Qobuz streaming service.",
	Long: fmt.Sprintf(`Aria (v%s)

A concurrent, high-quality FLAC downloader for the Qobuz streaming service.
It allows you to:
- Download albums, individual tracks, artist discographies and label catalogs.
- Convert Spotify playlists by matching their tracks on Qobuz.
- Tag every rip with full metadata, embedded cover art and MusicBrainz IDs.

Downloads are tracked in a local database so already ripped items are skipped.`, version),
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		shared.InitializeColors(noColor)
		if debug {
			shared.EnableDebug()
		}
	},
}

var albumCmd = &cobra.Command{
	Use:   "album [album_id...]",
	Short: "Download one or more albums by ID.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := setup(context.Background())
		if err != nil {
			return err
		}
		defer svc.Close()

		shared.ColorInfo.Println("🎵 Starting album download for ID:", strings.Join(args, ", "))
		deps := svc.MediaDeps()
		pendings := make([]media.Pending, 0, len(args))
		for _, id := range args {
			pendings = append(pendings, media.NewPendingAlbum(deps, id))
		}
		stats := media.RipAll(context.Background(), pendings, media.DefaultAlbumChunkSize)
		finishRip(svc, stats)
		return nil
	},
}

var trackCmd = &cobra.Command{
	Use:   "track [track_id...]",
	Short: "Download one or more tracks by ID.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := setup(context.Background())
		if err != nil {
			return err
		}
		defer svc.Close()

		shared.ColorInfo.Println("🎵 Starting track download for ID:", strings.Join(args, ", "))
		deps := svc.MediaDeps()
		pendings := make([]media.Pending, 0, len(args))
		for _, id := range args {
			pendings = append(pendings, media.NewPendingSingle(deps, id))
		}
		stats := media.RipAll(context.Background(), pendings, svc.Config.Parallelism)
		finishRip(svc, stats)
		return nil
	},
}

var artistCmd = &cobra.Command{
	Use:   "artist [artist_id]",
	Short: "Download an artist's entire discography.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := setup(context.Background())
		if err != nil {
			return err
		}
		defer svc.Close()

		shared.ColorInfo.Println("🎵 Starting artist discography download for ID:", args[0])
		pending := media.NewPendingArtist(svc.MediaDeps(), args[0])
		stats := media.RipAll(context.Background(), []media.Pending{pending}, 1)
		finishRip(svc, stats)
		return nil
	},
}

var labelCmd = &cobra.Command{
	Use:   "label [label_id]",
	Short: "Download a record label's entire catalog.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := setup(context.Background())
		if err != nil {
			return err
		}
		defer svc.Close()

		shared.ColorInfo.Println("🎵 Starting label catalog download for ID:", args[0])
		pending := media.NewPendingLabel(svc.MediaDeps(), args[0])
		stats := media.RipAll(context.Background(), []media.Pending{pending}, 1)
		finishRip(svc, stats)
		return nil
	},
}

var playlistCmd = &cobra.Command{
	Use:   "playlist [spotify_url]",
	Short: "Convert a Spotify playlist or album by matching its tracks on Qobuz.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := setup(context.Background())
		if err != nil {
			return err
		}
		defer svc.Close()

		if svc.Spotify == nil {
			return fmt.Errorf("spotify client id/secret are not configured in %s", svc.ConfigPath)
		}

		ctx := context.Background()
		if err := svc.Spotify.Authenticate(ctx); err != nil {
			return fmt.Errorf("failed to authenticate with Spotify: %w", err)
		}

		url := args[0]
		var (
			sources []shared.SpotifyTrack
			name    string
		)
		if strings.Contains(url, "/album/") {
			sources, name, err = svc.Spotify.GetAlbumTracks(ctx, url)
		} else {
			sources, name, err = svc.Spotify.GetPlaylistTracks(ctx, url)
		}
		if err != nil {
			return fmt.Errorf("failed to fetch playlist: %w", err)
		}
		if len(sources) == 0 {
			shared.ColorWarning.Println("⚠️ Playlist has no tracks.")
			return nil
		}

		shared.ColorInfo.Println("🎵 Starting playlist conversion for:", name)
		stats, err := media.NewPlaylist(svc.MediaDeps(), name, sources).Rip(ctx)
		if err != nil {
			return err
		}
		if svc.Navidrome != nil && stats.SuccessCount > 0 && navidromeScan(svc) {
			if err := svc.Navidrome.SyncPlaylist(name, navidromeTracks(sources), svc.Warnings); err != nil {
				shared.ColorWarning.Printf("⚠️ Navidrome playlist sync failed: %v\n", err)
			}
		}
		printSummary(svc, stats)
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search Qobuz for albums or tracks and rip a selection.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := setup(context.Background())
		if err != nil {
			return err
		}
		defer svc.Close()

		ctx := context.Background()
		query := args[0]
		shared.ColorInfo.Printf("🔎 Searching for '%s' (type: %s)...\n", query, searchType)
		results, err := svc.Client.Search(ctx, query, searchType, searchLimit)
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}

		entries := search.Entries(results)
		if len(entries) == 0 {
			shared.ColorWarning.Println("No results found.")
			return nil
		}

		chosen, err := search.Choose(entries)
		if err != nil {
			return err
		}
		if len(chosen) == 0 {
			return nil
		}

		deps := svc.MediaDeps()
		pendings := make([]media.Pending, 0, len(chosen))
		for _, entry := range chosen {
			if entry.Kind == "album" {
				pendings = append(pendings, media.NewPendingAlbum(deps, entry.ID))
			} else {
				pendings = append(pendings, media.NewPendingSingle(deps, entry.ID))
			}
		}
		stats := media.RipAll(ctx, pendings, media.DefaultAlbumChunkSize)
		finishRip(svc, stats)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and check for updates.",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("aria-downloader %s\n", version)
		updater.CheckForUpdates(loadConfigQuiet(), version)
	},
}

// setup loads (or interactively creates) the configuration, assembles the
// service container and logs in to Qobuz.
func setup(ctx context.Context) (*services.Container, error) {
	cfg, path := loadOrCreateConfig()

	if cfg.QobuzEmail == "" || cfg.QobuzPassword == "" || cfg.QobuzAppID == "" || cfg.QobuzSecret == "" {
		return nil, fmt.Errorf("qobuz credentials are incomplete; edit %s or delete it to run setup again", path)
	}

	svc, err := services.New(cfg, path)
	if err != nil {
		return nil, err
	}

	if err := svc.Client.Login(ctx, cfg.QobuzEmail, cfg.QobuzPassword); err != nil {
		svc.Close()
		return nil, fmt.Errorf("failed to log in to Qobuz: %w", err)
	}

	updater.CheckForUpdates(cfg, version)
	return svc, nil
}

// loadOrCreateConfig reads the config file, prompting for credentials on
// first run. Command-line flags override whatever was loaded.
func loadOrCreateConfig() (*config.Config, string) {
	path := configPath
	if path == "" {
		path = config.GetDefaultConfigPath()
	}

	cfg := config.NewDefaultConfig()
	if !shared.FileExists(path) {
		shared.ColorInfo.Println("✨ Welcome to Aria! Let's set up your configuration.")
		cfg.QobuzEmail = shared.GetUserInput("Enter your Qobuz email", "")
		cfg.QobuzPassword = shared.GetUserInput("Enter your Qobuz password (or its MD5 hash)", "")
		cfg.QobuzAppID = shared.GetUserInput("Enter your Qobuz app ID", "")
		cfg.QobuzSecret = shared.GetUserInput("Enter your Qobuz app secret", "")
		cfg.DownloadLocation = shared.GetUserInput("Enter download location", cfg.DownloadLocation)

		if err := config.SaveConfig(path, cfg); err != nil {
			shared.ColorError.Printf("❌ Failed to save initial config: %v\n", err)
		} else {
			shared.ColorSuccess.Println("✅ Configuration saved to", path)
		}
	} else if err := config.LoadConfig(path, cfg); err != nil {
		shared.ColorError.Printf("❌ Failed to load config from %s: %v\n", path, err)
	}

	if downloadLocation != "" {
		cfg.DownloadLocation = downloadLocation
	}
	if quality != 0 {
		if quality >= 1 && quality <= 4 {
			cfg.Quality = quality
		} else {
			shared.ColorWarning.Printf("⚠️ Invalid quality %d (expected 1-4), using %d.\n", quality, cfg.Quality)
		}
	}
	return cfg, path
}

// loadConfigQuiet loads the config without first-run prompts, falling back
// to defaults when no file exists yet.
func loadConfigQuiet() *config.Config {
	path := configPath
	if path == "" {
		path = config.GetDefaultConfigPath()
	}
	cfg := config.NewDefaultConfig()
	if shared.FileExists(path) {
		if err := config.LoadConfig(path, cfg); err != nil {
			shared.ColorWarning.Printf("⚠️ Failed to load config from %s: %v\n", path, err)
		}
	}
	return cfg
}

// finishRip runs the post-rip hooks shared by the plain download commands.
func finishRip(svc *services.Container, stats *shared.DownloadStats) {
	if svc.Navidrome != nil && stats.SuccessCount > 0 {
		navidromeScan(svc)
	}
	printSummary(svc, stats)
}

// navidromeScan authenticates against the configured Navidrome server and
// asks it to rescan the library. Failures are warnings, never fatal.
func navidromeScan(svc *services.Container) bool {
	if err := svc.Navidrome.Authenticate(); err != nil {
		shared.ColorWarning.Printf("⚠️ Navidrome authentication failed: %v\n", err)
		return false
	}
	if err := svc.Navidrome.StartScan(); err != nil {
		shared.ColorWarning.Printf("⚠️ Navidrome scan request failed: %v\n", err)
		return false
	}
	shared.ColorInfo.Println("🔄 Triggered Navidrome library scan")
	return true
}

// navidromeTracks converts playlist sources into the track shape the
// library sync matches against.
func navidromeTracks(sources []shared.SpotifyTrack) []shared.Track {
	tracks := make([]shared.Track, 0, len(sources))
	for _, source := range sources {
		tracks = append(tracks, shared.Track{
			Title:      source.Name,
			Artist:     source.Artist,
			AlbumTitle: source.AlbumName,
		})
	}
	return tracks
}

// printSummary prints collected warnings followed by the download totals.
func printSummary(svc *services.Container, stats *shared.DownloadStats) {
	svc.Warnings.PrintSummary()

	shared.ColorInfo.Printf("\n📊 Download Summary:\n")
	shared.ColorSuccess.Printf("✅ Successfully downloaded: %d items\n", stats.SuccessCount)
	if stats.SkippedCount > 0 {
		shared.ColorWarning.Printf("⭐ Skipped (already exist): %d items\n", stats.SkippedCount)
	}
	if len(stats.FailedItems) > 0 {
		shared.ColorError.Printf("❌ Failed to download: %d items\n", len(stats.FailedItems))
		for _, msg := range stats.FailedItems {
			shared.ColorError.Printf("   - %s\n", msg)
		}
	}
	shared.ColorSuccess.Printf("📁 Files saved under: %s\n", svc.Config.DownloadLocation)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the config file")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&downloadLocation, "download-location", "", "Directory to save downloads")
	rootCmd.PersistentFlags().IntVar(&quality, "quality", 0, "Stream quality: 1=MP3 320, 2=FLAC 16/44, 3=FLAC 24/96, 4=FLAC 24/192")

	searchCmd.Flags().StringVar(&searchType, "type", "all", "Type of content to search for (album, track, all)")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 10, "Maximum number of results per category")

	rootCmd.AddCommand(albumCmd)
	rootCmd.AddCommand(trackCmd)
	rootCmd.AddCommand(artistCmd)
	rootCmd.AddCommand(labelCmd)
	rootCmd.AddCommand(playlistCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
