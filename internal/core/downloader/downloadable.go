package downloader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/cheggaaa/pb/v3"

	"aria-downloader/internal/shared"
)

// Downloadable is a remote object that knows how to fetch itself to a
// local path. API clients hand these out so the media layer never sees
// stream URLs directly.
type Downloadable interface {
	// Download streams the object to path. A nil bar disables progress
	// reporting.
	Download(ctx context.Context, path string, bar *pb.ProgressBar) error

	// Extension returns the file extension (without dot) of the payload.
	Extension() string
}

// BasicDownloadable fetches a plain URL over HTTP.
type BasicDownloadable struct {
	Client *http.Client
	URL    string
	Ext    string
}

// NewBasicDownloadable builds a Downloadable for a direct URL.
func NewBasicDownloadable(client *http.Client, url, ext string) *BasicDownloadable {
	return &BasicDownloadable{Client: client, URL: url, Ext: ext}
}

func (d *BasicDownloadable) Extension() string {
	return d.Ext
}

// Download fetches the URL to path, verifying the byte count against
// Content-Length when the server provides one. Partial files are removed
// on failure.
func (d *BasicDownloadable) Download(ctx context.Context, path string, bar *pb.ProgressBar) error {
	req, err := http.NewRequestWithContext(ctx, "GET", d.URL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", shared.UserAgent)

	resp, err := d.Client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &shared.HTTPError{StatusCode: resp.StatusCode, Status: resp.Status, Message: "download failed"}
	}

	expectedSize := resp.ContentLength
	body := resp.Body
	if bar != nil {
		if expectedSize <= 0 {
			bar.Set("indeterminate", true) // Force spinner for unknown size
		} else {
			bar.SetTotal(expectedSize)
		}
		body = bar.NewProxyReader(resp.Body)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer out.Close()

	bytesWritten, err := io.Copy(out, body)
	if err != nil {
		// Clean up the file on error to prevent partial files
		os.Remove(path)
		return fmt.Errorf("failed to write file: %w", err)
	}

	if expectedSize > 0 && bytesWritten != expectedSize {
		os.Remove(path)
		return fmt.Errorf("incomplete download: expected %d bytes, got %d bytes", expectedSize, bytesWritten)
	}

	shared.Debugf("downloaded %d bytes to %s", bytesWritten, path)
	return nil
}

// NewProgressBar builds a track-style progress bar with the shared
// template. Callers add it to a pool before downloads start.
func NewProgressBar(prefix string) *pb.ProgressBar {
	bar := pb.New(0)
	bar.SetTemplateString(`{{ string . "prefix" }} {{ bar . }} {{ percent . }} | {{ speed . "%s/s" }} | ETA {{ rtime . "%s" }}`)
	bar.Set("prefix", prefix)
	return bar
}
