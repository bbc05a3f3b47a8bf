// Package musicbrainz looks up MusicBrainz identifiers so they can be
// written into the tags of ripped files.
package musicbrainz

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"aria-downloader/internal/shared"
)

const (
	defaultBaseURL      = "https://musicbrainz.org/ws/2/"
	defaultTimeout      = 30 * time.Second
	defaultRateLimit    = 1100 * time.Millisecond // MusicBrainz asks for at most 1 req/sec
	defaultBurstLimit   = 1
	defaultMaxRetries   = 3
	defaultInitialDelay = 2 * time.Second
	defaultMaxDelay     = 60 * time.Second
)

// Client is a rate-limited MusicBrainz API client.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
}

func NewClient() *Client {
	return &Client{
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		rateLimiter: rate.NewLimiter(rate.Every(defaultRateLimit), defaultBurstLimit),
	}
}

// get makes a single GET request to the MusicBrainz API.
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	reqURL, err := url.Parse(c.baseURL + path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", shared.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
			return nil, &shared.HTTPError{
				StatusCode: http.StatusGatewayTimeout,
				Status:     "Gateway Timeout",
				Message:    err.Error(),
			}
		}
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		message := string(body)
		if len(message) > 200 {
			message = message[:200] + "..."
		}
		return nil, &shared.HTTPError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Message:    message,
		}
	}

	return body, nil
}

func (c *Client) getWithRetry(ctx context.Context, path string) ([]byte, error) {
	var result []byte

	retryErr := shared.RetryWithBackoffForHTTP(
		defaultMaxRetries,
		defaultInitialDelay,
		defaultMaxDelay,
		func() error {
			var err error
			result, err = c.get(ctx, path)
			return err
		},
	)
	if retryErr != nil {
		return nil, retryErr
	}
	return result, nil
}

// SearchRecordingByISRC finds a recording by its ISRC. The result
// carries the recording, artist and release identifiers in one call.
func (c *Client) SearchRecordingByISRC(ctx context.Context, isrc string) (*Recording, error) {
	if isrc == "" {
		return nil, fmt.Errorf("ISRC cannot be empty")
	}

	query := fmt.Sprintf("isrc:%q", isrc)
	path := fmt.Sprintf("recording?query=%s&inc=artists+releases+release-groups&limit=1", url.QueryEscape(query))

	body, err := c.getWithRetry(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to search recording by ISRC %s: %w", isrc, err)
	}

	var searchResult struct {
		Recordings []Recording `json:"recordings"`
	}
	if err := json.Unmarshal(body, &searchResult); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ISRC search result: %w", err)
	}
	if len(searchResult.Recordings) == 0 {
		return nil, fmt.Errorf("no recording found for ISRC %s", isrc)
	}

	return &searchResult.Recordings[0], nil
}

// SearchRecording finds a recording by artist, album and title. Used
// when a track has no ISRC.
func (c *Client) SearchRecording(ctx context.Context, artist, album, title string) (*Recording, error) {
	if artist == "" || title == "" {
		return nil, fmt.Errorf("artist and title cannot be empty")
	}

	query := fmt.Sprintf("artist:%q AND recording:%q", artist, title)
	if album != "" {
		query = fmt.Sprintf("artist:%q AND release:%q AND recording:%q", artist, album, title)
	}
	path := fmt.Sprintf("recording?query=%s&limit=1", url.QueryEscape(query))

	body, err := c.getWithRetry(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to search recording: %w", err)
	}

	var searchResult struct {
		Recordings []Recording `json:"recordings"`
	}
	if err := json.Unmarshal(body, &searchResult); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recording search result: %w", err)
	}
	if len(searchResult.Recordings) == 0 {
		return nil, fmt.Errorf("no recording found for %s - %s", artist, title)
	}

	return &searchResult.Recordings[0], nil
}

// SearchRelease finds a release by artist and album title.
func (c *Client) SearchRelease(ctx context.Context, artist, album string) (*Release, error) {
	if artist == "" || album == "" {
		return nil, fmt.Errorf("artist and album cannot be empty")
	}

	query := fmt.Sprintf("artist:%q AND release:%q", artist, album)
	path := fmt.Sprintf("release?query=%s&limit=1", url.QueryEscape(query))

	body, err := c.getWithRetry(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to search release: %w", err)
	}

	var searchResult struct {
		Releases []Release `json:"releases"`
	}
	if err := json.Unmarshal(body, &searchResult); err != nil {
		return nil, fmt.Errorf("failed to unmarshal release search result: %w", err)
	}
	if len(searchResult.Releases) == 0 {
		return nil, fmt.Errorf("no release found for %s - %s", artist, album)
	}

	return &searchResult.Releases[0], nil
}

// Data types

// Artist represents a MusicBrainz artist
type Artist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ArtistCredit represents artist credit information
type ArtistCredit struct {
	Artist Artist `json:"artist"`
}

// ReleaseGroup represents a MusicBrainz release group
type ReleaseGroup struct {
	ID string `json:"id"`
}

// Release represents a MusicBrainz release (album)
type Release struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Date         string         `json:"date"`
	ArtistCredit []ArtistCredit `json:"artist-credit"`
	ReleaseGroup ReleaseGroup   `json:"release-group"`
}

// Recording represents a MusicBrainz recording (track)
type Recording struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	ArtistCredit []ArtistCredit `json:"artist-credit"`
	Releases     []Release      `json:"releases"`
	Length       int            `json:"length"` // milliseconds
}
