// Package services assembles the application's collaborators from
// configuration: the streaming client, dedup database, artwork registry,
// tagger and the optional Spotify and Navidrome integrations.
package services

import (
	"fmt"
	"net/http"

	"aria-downloader/internal/api/navidrome"
	"aria-downloader/internal/api/qobuz"
	"aria-downloader/internal/api/spotify"
	"aria-downloader/internal/config"
	"aria-downloader/internal/core/artwork"
	"aria-downloader/internal/core/media"
	"aria-downloader/internal/core/tagger"
	"aria-downloader/internal/db"
	"aria-downloader/internal/shared"
)

// Container holds everything the command layer needs for one run.
// Spotify and Navidrome are nil unless configured.
type Container struct {
	Config     *config.Config
	ConfigPath string
	Client     *qobuz.Client
	DB         db.Database
	Registry   *artwork.Registry
	Warnings   *shared.WarningCollector
	Tagger     *tagger.Tagger
	Spotify    *spotify.Client
	Navidrome  *navidrome.Client
	HTTP       *http.Client
}

// New assembles a container from loaded configuration.
func New(cfg *config.Config, configPath string) (*Container, error) {
	httpClient := &http.Client{Timeout: config.RequestTimeout}

	var database db.Database = db.Dummy{}
	if !cfg.DisableDatabase {
		sqlite, err := db.New(cfg.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open download database: %w", err)
		}
		database = sqlite
	}

	c := &Container{
		Config:     cfg,
		ConfigPath: configPath,
		Client:     qobuz.NewClient(cfg.QobuzAppID, cfg.QobuzSecret, httpClient),
		DB:         database,
		Registry:   artwork.NewRegistry(),
		Warnings:   shared.NewWarningCollector(cfg.WarningBehavior),
		Tagger:     tagger.New(!cfg.DisableMusicBrainz),
		HTTP:       httpClient,
	}

	if cfg.SpotifyClientID != "" && cfg.SpotifyClientSecret != "" {
		c.Spotify = spotify.NewClient(cfg.SpotifyClientID, cfg.SpotifyClientSecret)
	}
	if cfg.NavidromeURL != "" {
		c.Navidrome = navidrome.NewClient(cfg.NavidromeURL, cfg.NavidromeUsername, cfg.NavidromePassword)
	}

	return c, nil
}

// MediaDeps bundles the collaborators the media layer rips with.
func (c *Container) MediaDeps() *media.Deps {
	return &media.Deps{
		Client:   c.Client,
		Config:   c.Config,
		DB:       c.DB,
		Tagger:   c.Tagger,
		Registry: c.Registry,
		Warnings: c.Warnings,
		HTTP:     c.HTTP,
	}
}

// Close removes scratch directories and closes the database. Safe to
// defer right after New.
func (c *Container) Close() {
	c.Registry.Teardown()
	if err := c.DB.Close(); err != nil {
		shared.ColorWarning.Printf("⚠️ Failed to close download database: %v\n", err)
	}
}
