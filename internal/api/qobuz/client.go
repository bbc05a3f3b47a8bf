package qobuz

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"aria-downloader/internal/core/downloader"
	"aria-downloader/internal/shared"
)

// Retry and rate limiting configuration
const (
	apiBase = "https://www.qobuz.com/api.json/0.2/"

	defaultRateLimit  = 250 * time.Millisecond // 4 req/sec
	defaultBurstLimit = 8

	maxRetries     = 5
	baseRetryDelay = 1 * time.Second
	maxRetryDelay  = 30 * time.Second

	// Page size for artist and label discography requests.
	discographyPageSize = 100
)

// Fibonacci sequence for backoff delays
var fibonacciSequence = []int{1, 2, 3, 5, 8, 13, 21, 34}

// formatIDs maps the configured quality level to a Qobuz format_id.
var formatIDs = map[int]int{
	1: 5,  // MP3 320
	2: 6,  // FLAC 16bit/44.1kHz
	3: 7,  // FLAC up to 24bit/96kHz
	4: 27, // FLAC up to 24bit/192kHz
}

var md5HexPattern = regexp.MustCompile(`^[a-f0-9]{32}$`)

// Client talks to the Qobuz API. Call Login before any catalog or
// download method; the other methods reuse the session token it stores.
type Client struct {
	endpoint  string
	appID     string
	secret    string
	authToken string
	client    *http.Client
	limiter   *rate.Limiter
}

// NewClient creates an API client for the given app credentials.
func NewClient(appID, secret string, httpClient *http.Client) *Client {
	return &Client{
		endpoint: apiBase,
		appID:    appID,
		secret:   secret,
		client:   httpClient,
		limiter:  rate.NewLimiter(rate.Every(defaultRateLimit), defaultBurstLimit),
	}
}

// Source returns the service name, used in logs and the database.
func (c *Client) Source() string {
	return "qobuz"
}

// Login authenticates with email and password and stores the session
// token for subsequent requests. The password may be given in plain
// text or already MD5-hashed, as Qobuz expects it on the wire.
func (c *Client) Login(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return fmt.Errorf("qobuz email and password are not configured")
	}
	if c.appID == "" {
		return fmt.Errorf("qobuz app id is not configured")
	}

	if !md5HexPattern.MatchString(password) {
		sum := md5.Sum([]byte(password))
		password = hex.EncodeToString(sum[:])
	}

	resp, err := c.Request(ctx, "user/login", []shared.QueryParam{
		{Name: "email", Value: email},
		{Name: "password", Value: password},
		{Name: "app_id", Value: c.appID},
	})
	if err != nil {
		var httpErr *shared.HTTPError
		if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusUnauthorized {
			return fmt.Errorf("qobuz rejected the credentials, check email and password: %w", err)
		}
		return fmt.Errorf("failed to log in: %w", err)
	}
	defer resp.Body.Close()

	var login loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&login); err != nil {
		return fmt.Errorf("failed to decode login response: %w", err)
	}
	if login.UserAuthToken == "" {
		return fmt.Errorf("login response carried no auth token: %w", shared.ErrMalformedResponse)
	}

	c.authToken = login.UserAuthToken
	return nil
}

// LoggedIn reports whether a session token is held.
func (c *Client) LoggedIn() bool {
	return c.authToken != ""
}

// Request makes a GET request against the API with rate limiting and
// retry handling. The caller owns the response body.
func (c *Client) Request(ctx context.Context, path string, params []shared.QueryParam) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait failed: %w", err)
	}

	u, err := c.buildURL(path, params)
	if err != nil {
		return nil, err
	}

	// Query parameters carry credentials, log the path only.
	shared.Debugf("GET %s", path)
	return c.requestWithRetry(ctx, u.String())
}

func (c *Client) buildURL(path string, params []shared.QueryParam) (*url.URL, error) {
	u, err := url.Parse(c.endpoint + strings.TrimPrefix(path, "/"))
	if err != nil {
		return nil, fmt.Errorf("error parsing URL: %w", err)
	}

	if len(params) > 0 {
		q := u.Query()
		for _, param := range params {
			q.Add(param.Name, param.Value)
		}
		u.RawQuery = q.Encode()
	}

	return u, nil
}

// fibonacciDelay calculates a retry delay with gradual backoff.
func fibonacciDelay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt >= len(fibonacciSequence) {
		attempt = len(fibonacciSequence) - 1
	}
	delay := baseRetryDelay * time.Duration(fibonacciSequence[attempt])
	if delay > maxRetryDelay {
		delay = maxRetryDelay
	}
	return delay
}

// addJitter adds random jitter to prevent thundering herd effect
func addJitter(delay time.Duration) time.Duration {
	if delay <= 0 {
		return delay
	}
	jitter := time.Duration(rand.Int63n(int64(delay / 4)))
	return delay + jitter
}

func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

func (c *Client) requestWithRetry(ctx context.Context, url string) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		resp, err := c.executeRequest(ctx, url)
		if err != nil {
			lastErr = err
		} else if resp.StatusCode == http.StatusOK {
			return resp, nil
		} else {
			lastErr = responseError(resp)
			resp.Body.Close()
			if !retryableStatus(resp.StatusCode) {
				return nil, lastErr
			}
			if resp.StatusCode == http.StatusTooManyRequests && attempt < maxRetries-1 {
				shared.ColorWarning.Printf("⚠️ Rate limit hit (429), retrying (attempt %d/%d)\n", attempt+1, maxRetries)
			}
		}

		if attempt < maxRetries-1 {
			if err := waitWithContext(ctx, addJitter(fibonacciDelay(attempt))); err != nil {
				return nil, err
			}
		}
	}

	return nil, fmt.Errorf("request failed after %d attempts: %w", maxRetries, lastErr)
}

func (c *Client) executeRequest(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("User-Agent", shared.UserAgent)
	req.Header.Set("X-App-Id", c.appID)
	if c.authToken != "" {
		req.Header.Set("X-User-Auth-Token", c.authToken)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error executing request: %w", err)
	}

	return resp, nil
}

// responseError drains a non-200 response into an HTTPError.
func responseError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	msg := strings.TrimSpace(string(body))

	var apiErr struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
		msg = apiErr.Message
	}

	return &shared.HTTPError{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Message:    msg,
	}
}

// waitWithContext waits for the delay, respecting context cancellation.
func waitWithContext(ctx context.Context, delay time.Duration) error {
	select {
	case <-time.After(delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ============================================================================
// CATALOG METHODS
// ============================================================================

// GetAlbum retrieves album information, tracks included.
func (c *Client) GetAlbum(ctx context.Context, albumID string) (*shared.Album, error) {
	resp, err := c.Request(ctx, "album/get", []shared.QueryParam{
		{Name: "album_id", Value: albumID},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get album: %w", err)
	}
	defer resp.Body.Close()

	var album apiAlbum
	if err := json.NewDecoder(resp.Body).Decode(&album); err != nil {
		return nil, fmt.Errorf("failed to decode album response: %w", err)
	}
	if album.ID == "" {
		return nil, fmt.Errorf("album response carried no id: %w", shared.ErrMalformedResponse)
	}

	return album.toShared(), nil
}

// GetTrack retrieves track information. The response embeds the parent
// album, so AlbumID and AlbumTitle come back filled in.
func (c *Client) GetTrack(ctx context.Context, trackID string) (*shared.Track, error) {
	resp, err := c.Request(ctx, "track/get", []shared.QueryParam{
		{Name: "track_id", Value: trackID},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get track: %w", err)
	}
	defer resp.Body.Close()

	var wire apiTrack
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("failed to decode track response: %w", err)
	}
	if wire.ID == 0 {
		return nil, fmt.Errorf("track response carried no id: %w", shared.ErrMalformedResponse)
	}

	track := wire.toShared("")
	if track.TrackNumber == 0 {
		track.TrackNumber = 1
	}
	if track.DiscNumber == 0 {
		track.DiscNumber = 1
	}
	return &track, nil
}

// GetArtist retrieves an artist and the IDs of every album in their
// discography, paging until the catalog is exhausted.
func (c *Client) GetArtist(ctx context.Context, artistID string) (*shared.Artist, error) {
	var artist *shared.Artist

	for offset := 0; ; {
		var page artistResponse
		if err := c.getDiscographyPage(ctx, "artist/get", "artist_id", artistID, offset, &page); err != nil {
			return nil, fmt.Errorf("failed to get artist: %w", err)
		}

		if artist == nil {
			artist = &shared.Artist{ID: formatInt(page.ID), Name: page.Name}
		}
		artist.AlbumIDs = append(artist.AlbumIDs, albumIDs(page.Albums)...)

		offset += len(page.Albums.Items)
		if len(page.Albums.Items) == 0 || offset >= page.Albums.Total {
			break
		}
	}

	return artist, nil
}

// GetLabel retrieves a label's album catalog, paged like an artist's.
func (c *Client) GetLabel(ctx context.Context, labelID string) (*shared.Label, error) {
	var label *shared.Label

	for offset := 0; ; {
		var page labelResponse
		if err := c.getDiscographyPage(ctx, "label/get", "label_id", labelID, offset, &page); err != nil {
			return nil, fmt.Errorf("failed to get label: %w", err)
		}

		if label == nil {
			label = &shared.Label{ID: formatInt(page.ID), Name: page.Name}
		}
		label.AlbumIDs = append(label.AlbumIDs, albumIDs(page.Albums)...)

		offset += len(page.Albums.Items)
		if len(page.Albums.Items) == 0 || offset >= page.Albums.Total {
			break
		}
	}

	return label, nil
}

func (c *Client) getDiscographyPage(ctx context.Context, path, idParam, id string, offset int, out interface{}) error {
	resp, err := c.Request(ctx, path, []shared.QueryParam{
		{Name: idParam, Value: id},
		{Name: "extra", Value: "albums"},
		{Name: "limit", Value: strconv.Itoa(discographyPageSize)},
		{Name: "offset", Value: strconv.Itoa(offset)},
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode discography response: %w", err)
	}
	return nil
}

// Search queries the catalog. searchType is "album", "track" or "all".
func (c *Client) Search(ctx context.Context, query, searchType string, limit int) (*shared.SearchResults, error) {
	if limit <= 0 {
		limit = 10
	}

	resp, err := c.Request(ctx, "catalog/search", []shared.QueryParam{
		{Name: "query", Value: query},
		{Name: "limit", Value: strconv.Itoa(limit)},
	})
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	defer resp.Body.Close()

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	results := &shared.SearchResults{}
	if searchType == "album" || searchType == "all" {
		for i := range sr.Albums.Items {
			results.Albums = append(results.Albums, *sr.Albums.Items[i].toShared())
		}
	}
	if searchType == "track" || searchType == "all" {
		for i := range sr.Tracks.Items {
			results.Tracks = append(results.Tracks, sr.Tracks.Items[i].toShared(""))
		}
	}

	return results, nil
}

// ============================================================================
// DOWNLOAD METHODS
// ============================================================================

// GetDownloadable resolves a track into a fetchable stream at the given
// quality level (1=MP3 320 up to 4=FLAC 24bit/192kHz). Tracks the
// subscription cannot stream surface ErrNotStreamable.
func (c *Client) GetDownloadable(ctx context.Context, trackID string, quality int) (downloader.Downloadable, error) {
	formatID, ok := formatIDs[quality]
	if !ok {
		return nil, fmt.Errorf("invalid quality level %d (want 1-4)", quality)
	}
	if c.secret == "" {
		return nil, fmt.Errorf("qobuz secret is not configured, cannot sign download requests")
	}

	resp, err := c.Request(ctx, "track/getFileUrl", c.signedFileURLParams(trackID, formatID))
	if err != nil {
		var httpErr *shared.HTTPError
		if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusBadRequest {
			return nil, fmt.Errorf("file URL request rejected, the app secret is likely invalid: %w", err)
		}
		return nil, fmt.Errorf("failed to get file URL: %w", err)
	}
	defer resp.Body.Close()

	var fileURL fileURLResponse
	if err := json.NewDecoder(resp.Body).Decode(&fileURL); err != nil {
		return nil, fmt.Errorf("failed to decode file URL response: %w", err)
	}

	if fileURL.Sample || fileURL.URL == "" {
		return nil, fmt.Errorf("track %s: %w", trackID, shared.ErrNotStreamable)
	}

	ext := "flac"
	returnedFormat := fileURL.FormatID
	if returnedFormat == 0 {
		returnedFormat = formatID
	}
	if returnedFormat == 5 {
		ext = "mp3"
	}

	return downloader.NewBasicDownloadable(c.client, fileURL.URL, ext), nil
}

// signedFileURLParams builds the signed query for track/getFileUrl. The
// signature is the MD5 of the concatenated request fields plus the app
// secret, with the timestamp that goes out in request_ts.
func (c *Client) signedFileURLParams(trackID string, formatID int) []shared.QueryParam {
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	raw := fmt.Sprintf("trackgetFileUrlformat_id%dintentstreamtrack_id%s%s%s", formatID, trackID, ts, c.secret)
	sum := md5.Sum([]byte(raw))

	return []shared.QueryParam{
		{Name: "request_ts", Value: ts},
		{Name: "request_sig", Value: hex.EncodeToString(sum[:])},
		{Name: "track_id", Value: trackID},
		{Name: "format_id", Value: strconv.Itoa(formatID)},
		{Name: "intent", Value: "stream"},
	}
}
