// Package spotify converts public Spotify playlists, albums and tracks
// into plain name/artist pairs that can be searched on Qobuz.
package spotify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2/clientcredentials"

	"aria-downloader/internal/shared"
)

// Client wraps the Spotify Web API with client-credentials auth. Only
// public content is reachable this way, which is all conversion needs.
type Client struct {
	ID     string
	Secret string
	client *spotify.Client
}

func NewClient(id, secret string) *Client {
	return &Client{ID: id, Secret: secret}
}

// Authenticate obtains an app token and prepares the API client.
func (s *Client) Authenticate(ctx context.Context) error {
	if s.ID == "" || s.Secret == "" {
		return fmt.Errorf("spotify client ID and secret are not configured")
	}

	config := &clientcredentials.Config{
		ClientID:     s.ID,
		ClientSecret: s.Secret,
		TokenURL:     spotifyauth.TokenURL,
	}
	token, err := config.Token(ctx)
	if err != nil {
		return fmt.Errorf("spotify authentication failed: %w", err)
	}

	httpClient := spotifyauth.New().Client(ctx, token)
	s.client = spotify.New(httpClient)
	return nil
}

// resourceID extracts the ID from an open.spotify.com URL or a
// spotify:<kind>:<id> URI, checking it names the expected kind.
func resourceID(rawURL, kind string) (spotify.ID, error) {
	if strings.HasPrefix(rawURL, "spotify:") {
		parts := strings.Split(rawURL, ":")
		if len(parts) != 3 || parts[1] != kind || parts[2] == "" {
			return "", fmt.Errorf("invalid spotify %s URI: %s", kind, rawURL)
		}
		return spotify.ID(parts[2]), nil
	}

	parts := strings.Split(rawURL, "/")
	if len(parts) < 5 || parts[3] != kind {
		return "", fmt.Errorf("invalid spotify %s URL: %s", kind, rawURL)
	}
	id := strings.Split(parts[4], "?")[0]
	if id == "" {
		return "", fmt.Errorf("invalid spotify %s URL: %s", kind, rawURL)
	}
	return spotify.ID(id), nil
}

func firstArtist(artists []spotify.SimpleArtist) string {
	if len(artists) == 0 {
		return ""
	}
	return artists[0].Name
}

// GetPlaylistTracks fetches every track of a playlist, following page
// links, and returns them with the playlist's name.
func (s *Client) GetPlaylistTracks(ctx context.Context, playlistURL string) ([]shared.SpotifyTrack, string, error) {
	playlistID, err := resourceID(playlistURL, "playlist")
	if err != nil {
		return nil, "", err
	}

	shared.ColorInfo.Printf("🎧 Fetching Spotify playlist %s...\n", playlistID)

	playlist, err := s.client.GetPlaylist(ctx, playlistID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch playlist: %w", err)
	}

	var tracks []shared.SpotifyTrack
	page := &playlist.Tracks
	for {
		for _, item := range page.Tracks {
			// Podcast episodes come through as zero-value tracks.
			if item.Track.Name == "" {
				continue
			}
			tracks = append(tracks, shared.SpotifyTrack{
				Name:        item.Track.Name,
				Artist:      firstArtist(item.Track.Artists),
				AlbumName:   item.Track.Album.Name,
				AlbumArtist: firstArtist(item.Track.Album.Artists),
			})
		}

		err := s.client.NextPage(ctx, page)
		if errors.Is(err, spotify.ErrNoMorePages) {
			break
		}
		if err != nil {
			return nil, "", fmt.Errorf("failed to fetch playlist page: %w", err)
		}
	}

	return tracks, playlist.Name, nil
}

// GetAlbumTracks fetches the track list of an album with its name.
func (s *Client) GetAlbumTracks(ctx context.Context, albumURL string) ([]shared.SpotifyTrack, string, error) {
	albumID, err := resourceID(albumURL, "album")
	if err != nil {
		return nil, "", err
	}

	album, err := s.client.GetAlbum(ctx, albumID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch album: %w", err)
	}

	albumArtist := firstArtist(album.Artists)

	var tracks []shared.SpotifyTrack
	page := &album.Tracks
	for {
		for _, track := range page.Tracks {
			tracks = append(tracks, shared.SpotifyTrack{
				Name:        track.Name,
				Artist:      firstArtist(track.Artists),
				AlbumName:   album.Name,
				AlbumArtist: albumArtist,
			})
		}

		err := s.client.NextPage(ctx, page)
		if errors.Is(err, spotify.ErrNoMorePages) {
			break
		}
		if err != nil {
			return nil, "", fmt.Errorf("failed to fetch album page: %w", err)
		}
	}

	return tracks, album.Name, nil
}

// GetTrack fetches a single track by URL.
func (s *Client) GetTrack(ctx context.Context, trackURL string) (*shared.SpotifyTrack, error) {
	trackID, err := resourceID(trackURL, "track")
	if err != nil {
		return nil, err
	}

	track, err := s.client.GetTrack(ctx, trackID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch track: %w", err)
	}

	return &shared.SpotifyTrack{
		Name:        track.Name,
		Artist:      firstArtist(track.Artists),
		AlbumName:   track.Album.Name,
		AlbumArtist: firstArtist(track.Album.Artists),
	}, nil
}
