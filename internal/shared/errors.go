package shared

import "errors"

// Sentinel errors surfaced by the media layer. Callers distinguish skips
// from real failures with errors.Is.
var (
	// ErrAlreadyDownloaded marks an item the download database has seen
	// before. Counted as skipped, never as failed.
	ErrAlreadyDownloaded = errors.New("already downloaded")

	// ErrNotStreamable marks a track the service refuses to stream
	// (region locks, takedowns, sample-only entries).
	ErrNotStreamable = errors.New("track is not streamable")

	// ErrMalformedResponse marks an API payload missing fields required
	// to build a usable item.
	ErrMalformedResponse = errors.New("malformed API response")
)
