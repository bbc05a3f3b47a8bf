// Package media implements the two-phase download model: a Pending item
// knows only its identifier, resolving it yields a Media that can rip
// itself to disk. RipAll drives collections of pending items in chunks.
package media

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"aria-downloader/internal/config"
	"aria-downloader/internal/core/artwork"
	"aria-downloader/internal/core/tagger"
	"aria-downloader/internal/db"
	"aria-downloader/internal/interfaces"
	"aria-downloader/internal/shared"
)

// DefaultAlbumChunkSize bounds how many albums resolve and rip at once.
// Track-level fan-out inside an album uses config.Parallelism instead.
const DefaultAlbumChunkSize = 10

// Pending is an item that has not been fetched yet: an identifier plus
// shared context. Resolving contacts the service and either yields a
// Media ready to rip or fails without affecting sibling items.
type Pending interface {
	// ID identifies the item in logs and failure summaries.
	ID() string

	Resolve(ctx context.Context) (Media, error)
}

// Media is a fully materialized item. Rip downloads it (and any children)
// to disk and reports what happened. A nil error implies non-nil stats.
type Media interface {
	Rip(ctx context.Context) (*shared.DownloadStats, error)
}

// Deps bundles the collaborators every media item needs. One Deps value
// is built at startup and shared read-only by all items in a run.
type Deps struct {
	Client   interfaces.Client
	Config   *config.Config
	DB       db.Database
	Tagger   *tagger.Tagger
	Registry *artwork.Registry
	Warnings *shared.WarningCollector
	HTTP     *http.Client
}

// RipAll resolves and rips items in chunks of at most chunkSize. Every
// item in a chunk runs concurrently; the next chunk starts only after
// the current one has fully drained. A failed item is logged and counted
// but never cancels its siblings or later chunks. ErrAlreadyDownloaded
// counts as skipped, not failed.
func RipAll(ctx context.Context, items []Pending, chunkSize int) *shared.DownloadStats {
	if chunkSize <= 0 {
		chunkSize = DefaultAlbumChunkSize
	}

	var mu sync.Mutex
	stats := &shared.DownloadStats{}

	for start := 0; start < len(items); start += chunkSize {
		end := start + chunkSize
		if end > len(items) {
			end = len(items)
		}

		var wg sync.WaitGroup
		for _, item := range items[start:end] {
			wg.Add(1)
			go func(item Pending) {
				defer wg.Done()

				itemStats, err := ripOne(ctx, item)

				mu.Lock()
				defer mu.Unlock()
				switch {
				case errors.Is(err, shared.ErrAlreadyDownloaded):
					stats.SkippedCount++
				case err != nil:
					shared.ColorError.Printf("❌ %s: %v\n", item.ID(), err)
					stats.FailedCount++
					stats.FailedItems = append(stats.FailedItems, fmt.Sprintf("%s: %v", item.ID(), err))
				default:
					stats.Merge(itemStats)
				}
			}(item)
		}
		wg.Wait()
	}

	return stats
}

func ripOne(ctx context.Context, item Pending) (*shared.DownloadStats, error) {
	m, err := item.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	return m.Rip(ctx)
}
