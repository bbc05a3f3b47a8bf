package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	RequestTimeout = 10 * time.Minute

	DefaultParallelism    = 5
	DefaultQuality        = 3 // FLAC up to 24bit/96kHz
	DefaultWarningMode    = "summary"
	defaultConfigDirName  = "aria-downloader"
	defaultConfigFileName = "config.json"
	defaultDatabaseName   = "downloads.db"
)

// NamingOptions defines the configurable naming masks
type NamingOptions struct {
	AlbumFolderMask string `json:"album_folder_mask"`
	FileMask        string `json:"file_mask"`
}

// GetDefaultNamingMasks returns the default naming masks
func GetDefaultNamingMasks() NamingOptions {
	return NamingOptions{
		AlbumFolderMask: "{artist}/{artist} - {album} ({year})",
		FileMask:        "{track_number} - {title}",
	}
}

// ArtworkOptions controls cover art fetching for every rip.
// A max width of 0 (or below) leaves images at their source resolution.
type ArtworkOptions struct {
	SaveArtwork    bool   `json:"save_artwork"`    // keep cover.jpg next to the tracks
	Embed          bool   `json:"embed"`           // embed a cover into each file
	EmbedSize      string `json:"embed_size"`      // original, large, small or thumbnail
	SavedMaxWidth  int    `json:"saved_max_width"`
	EmbedMaxWidth  int    `json:"embed_max_width"`
	EmbedMandatory bool   `json:"embed_mandatory"` // fail the rip when no cover could be embedded
}

// Configuration structure
type Config struct {
	QobuzEmail          string         `json:"QobuzEmail"`
	QobuzPassword       string         `json:"QobuzPassword"`
	QobuzAppID          string         `json:"QobuzAppID"`
	QobuzSecret         string         `json:"QobuzSecret"`
	DownloadLocation    string         `json:"DownloadLocation"`
	Parallelism         int            `json:"Parallelism"`
	Quality             int            `json:"Quality"` // 1=MP3 320, 2=FLAC 16/44, 3=FLAC 24/96, 4=FLAC 24/192
	Artwork             ArtworkOptions `json:"artwork"`
	NamingMasks         NamingOptions  `json:"naming"`
	DatabasePath        string         `json:"DatabasePath"`
	DisableDatabase     bool           `json:"DisableDatabase"`
	SpotifyClientID     string         `json:"SpotifyClientID"`
	SpotifyClientSecret string         `json:"SpotifyClientSecret"`
	NavidromeURL        string         `json:"NavidromeURL"`
	NavidromeUsername   string         `json:"NavidromeUsername"`
	NavidromePassword   string         `json:"NavidromePassword"`
	MaxRetryAttempts    int            `json:"MaxRetryAttempts"`
	WarningBehavior     string         `json:"WarningBehavior"` // "immediate", "summary", or "silent"
	DisableMusicBrainz  bool           `json:"DisableMusicBrainz"`
	DisableUpdateCheck  bool           `json:"DisableUpdateCheck"`
	UpdateRepo          string         `json:"UpdateRepo"`
}

// GetDefaultConfigPath returns the per-user config file location.
func GetDefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", defaultConfigDirName, defaultConfigFileName)
	}
	return filepath.Join(dir, defaultConfigDirName, defaultConfigFileName)
}

// ApplyDefaults fills zero-valued fields with sensible defaults.
func (cfg *Config) ApplyDefaults() {
	if cfg.DownloadLocation == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		cfg.DownloadLocation = filepath.Join(home, "Music")
	}
	if cfg.Parallelism <= 0 {
		cfg.Parallelism = DefaultParallelism
	}
	if cfg.Quality <= 0 || cfg.Quality > 4 {
		cfg.Quality = DefaultQuality
	}
	if cfg.Artwork.EmbedSize == "" {
		cfg.Artwork.EmbedSize = "large"
	}
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = filepath.Join(filepath.Dir(GetDefaultConfigPath()), defaultDatabaseName)
	}
	if cfg.MaxRetryAttempts <= 0 {
		cfg.MaxRetryAttempts = 3
	}
	if cfg.WarningBehavior == "" {
		cfg.WarningBehavior = DefaultWarningMode
	}

	defaults := GetDefaultNamingMasks()
	if cfg.NamingMasks.AlbumFolderMask == "" {
		cfg.NamingMasks.AlbumFolderMask = defaults.AlbumFolderMask
	}
	if cfg.NamingMasks.FileMask == "" {
		cfg.NamingMasks.FileMask = defaults.FileMask
	}
}

// NewDefaultConfig returns a config with every default applied, including
// artwork handling turned on.
func NewDefaultConfig() *Config {
	cfg := &Config{
		Artwork: ArtworkOptions{
			SaveArtwork: true,
			Embed:       true,
		},
	}
	cfg.ApplyDefaults()
	return cfg
}

// CreateDirIfNotExists creates a directory if it does not exist
func CreateDirIfNotExists(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return os.MkdirAll(dir, 0755)
	}
	return nil
}

// LoadConfig loads configuration from a JSON file
func LoadConfig(filePath string, config *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := json.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	config.ApplyDefaults()
	return nil
}

// SaveConfig saves configuration to a JSON file
func SaveConfig(filePath string, config *Config) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	dir := filepath.Dir(filePath)
	if err := CreateDirIfNotExists(dir); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
