// Package navidrome keeps a Navidrome server in step with finished
// rips: it can trigger a library scan and mirror playlists server-side
// over the Subsonic API.
package navidrome

import (
	"crypto/md5"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	subsonic "github.com/delucks/go-subsonic"

	"aria-downloader/internal/shared"
)

const (
	subsonicAPIVersion = "1.16.1"
	clientName         = "aria-downloader"
)

// Authenticate verifies the credentials against the server and prepares
// the salted token used for raw REST calls.
func (n *Client) Authenticate() error {
	if n.URL == "" || n.Username == "" || n.Password == "" {
		return fmt.Errorf("navidrome URL, username and password are not configured")
	}

	n.URL = strings.TrimSuffix(n.URL, "/")
	n.salt = randomSalt()
	n.token = saltedToken(n.Password, n.salt)

	n.client = subsonic.Client{
		Client:       http.DefaultClient,
		BaseUrl:      n.URL,
		User:         n.Username,
		ClientName:   clientName,
		PasswordAuth: true,
	}
	if err := n.client.Authenticate(n.Password); err != nil {
		return fmt.Errorf("navidrome authentication failed: %w", err)
	}
	return nil
}

// StartScan asks the server to rescan its music library.
func (n *Client) StartScan() error {
	if _, err := n.restCall("startScan", nil); err != nil {
		return fmt.Errorf("failed to start library scan: %w", err)
	}
	return nil
}

// SearchTrack locates a track on the server. The album's track list is
// checked first for an exact title match, then a fuzzy search is used
// as fallback. A nil result with nil error means the track is not
// indexed yet.
func (n *Client) SearchTrack(trackName, artistName, albumName string) (*subsonic.Child, error) {
	album, err := n.SearchAlbum(albumName, artistName)
	if err == nil && album != nil {
		albumData, err := n.client.GetAlbum(album.ID)
		if err == nil {
			for _, song := range albumData.Song {
				if strings.EqualFold(song.Title, trackName) {
					return song, nil
				}
			}
		}
	}

	combinedQuery := fmt.Sprintf("%s %s", trackName, artistName)
	searchResult, err := n.client.Search2(combinedQuery, map[string]string{"songCount": "5"})
	if err != nil {
		return nil, fmt.Errorf("navidrome search for %q failed: %w", combinedQuery, err)
	}
	if searchResult == nil || len(searchResult.Song) == 0 {
		return nil, nil
	}

	for _, song := range searchResult.Song {
		if strings.EqualFold(song.Title, trackName) && strings.EqualFold(song.Artist, artistName) {
			return song, nil
		}
	}
	// No exact match, take the first hit as best guess.
	return searchResult.Song[0], nil
}

// SearchAlbum finds an album by exact title and artist match.
func (n *Client) SearchAlbum(albumName, artistName string) (*subsonic.Child, error) {
	searchResult, err := n.client.Search2(albumName, map[string]string{"albumCount": "5"})
	if err != nil {
		return nil, fmt.Errorf("navidrome search for album %q failed: %w", albumName, err)
	}
	if searchResult == nil {
		return nil, nil
	}

	for _, album := range searchResult.Album {
		if strings.EqualFold(album.Title, albumName) && strings.EqualFold(album.Artist, artistName) {
			return album, nil
		}
	}
	return nil, nil
}

// SyncPlaylist mirrors a ripped playlist on the server: the playlist is
// created if missing, and every track that can be located is added.
// Tracks not yet indexed are reported through the warning collector.
func (n *Client) SyncPlaylist(name string, tracks []shared.Track, warnings *shared.WarningCollector) error {
	playlistID, err := n.findOrCreatePlaylist(name)
	if err != nil {
		return err
	}

	existing, err := n.playlistTitles(playlistID)
	if err != nil {
		return err
	}

	var trackIDs []string
	for _, track := range tracks {
		if _, ok := existing[strings.ToLower(track.Title)]; ok {
			continue
		}
		song, err := n.SearchTrack(track.Title, track.Artist, track.AlbumTitle)
		if err != nil {
			return err
		}
		if song == nil {
			warnings.AddLibrarySyncWarning(track.Title, "not found on navidrome, run a scan and sync again")
			continue
		}
		trackIDs = append(trackIDs, song.ID)
	}

	if len(trackIDs) == 0 {
		return nil
	}

	params := url.Values{}
	params.Set("playlistId", playlistID)
	for _, id := range trackIDs {
		params.Add("songIdToAdd", id)
	}
	if _, err := n.restCall("updatePlaylist", params); err != nil {
		return fmt.Errorf("failed to add tracks to playlist %q: %w", name, err)
	}

	shared.ColorInfo.Printf("🎶 Synced %d track(s) to Navidrome playlist '%s'\n", len(trackIDs), name)
	return nil
}

// findOrCreatePlaylist returns the ID of the named playlist, creating
// it when it does not exist yet.
func (n *Client) findOrCreatePlaylist(name string) (string, error) {
	id, err := n.lookupPlaylist(name)
	if err != nil {
		return "", err
	}
	if id != "" {
		return id, nil
	}

	params := url.Values{}
	params.Set("name", name)
	if _, err := n.restCall("createPlaylist", params); err != nil {
		return "", fmt.Errorf("failed to create playlist %q: %w", name, err)
	}

	id, err = n.lookupPlaylist(name)
	if err != nil {
		return "", err
	}
	if id == "" {
		return "", fmt.Errorf("playlist %q missing after creation", name)
	}
	return id, nil
}

func (n *Client) lookupPlaylist(name string) (string, error) {
	playlists, err := n.client.GetPlaylists(map[string]string{})
	if err != nil {
		return "", fmt.Errorf("failed to list playlists: %w", err)
	}
	for _, playlist := range playlists {
		if playlist.Name == name {
			return playlist.ID, nil
		}
	}
	return "", nil
}

// playlistTitles returns the lowercased titles already in a playlist.
func (n *Client) playlistTitles(playlistID string) (map[string]struct{}, error) {
	playlist, err := n.client.GetPlaylist(playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch playlist entries: %w", err)
	}

	titles := make(map[string]struct{}, len(playlist.Entry))
	for _, entry := range playlist.Entry {
		titles[strings.ToLower(entry.Title)] = struct{}{}
	}
	return titles, nil
}

// subsonicEnvelope is the generic wrapper every REST response carries.
type subsonicEnvelope struct {
	SubsonicResponse struct {
		Status string `json:"status"`
		Error  struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	} `json:"subsonic-response"`
}

// restCall performs a raw Subsonic REST request for the endpoints the
// client library does not cover.
func (n *Client) restCall(endpoint string, params url.Values) ([]byte, error) {
	if params == nil {
		params = url.Values{}
	}
	params.Set("u", n.Username)
	params.Set("t", n.token)
	params.Set("s", n.salt)
	params.Set("v", subsonicAPIVersion)
	params.Set("c", clientName)
	params.Set("f", "json")

	callURL := fmt.Sprintf("%s/rest/%s.view?%s", n.URL, endpoint, params.Encode())
	resp, err := http.Get(callURL)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &shared.HTTPError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Message:    string(body),
		}
	}

	var envelope subsonicEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if envelope.SubsonicResponse.Status == "failed" {
		return nil, fmt.Errorf("%s failed: %s (code %d)", endpoint,
			envelope.SubsonicResponse.Error.Message, envelope.SubsonicResponse.Error.Code)
	}

	return body, nil
}

// saltedToken builds the Subsonic auth token, md5(password + salt).
func saltedToken(password, salt string) string {
	hasher := md5.New()
	hasher.Write([]byte(password + salt))
	return hex.EncodeToString(hasher.Sum(nil))
}

func randomSalt() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "ariasalt"
	}
	return hex.EncodeToString(b)
}
