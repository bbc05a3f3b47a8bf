// Package artwork fetches, resizes and tracks cover art for rips. The
// entry point is Download, which turns a cover catalog plus the artwork
// config into at most one batch of image downloads and reports where the
// saved and embeddable covers ended up.
package artwork

import (
	"context"
	"fmt"
	"hash/fnv"
	"net/http"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"aria-downloader/internal/config"
	"aria-downloader/internal/core/downloader"
	"aria-downloader/internal/shared"
)

// Download fetches the covers the options call for and records their
// local paths in the catalog. It returns the path to embed into tracks
// and the path of the permanently saved cover; either is "" when that
// side is inactive or the artwork could not be fetched. Fetch failures
// are soft (logged, both paths empty, catalog untouched); a failed
// resize is returned as an error since embedding an oversized cover is
// worse than embedding none.
//
// In playlist context covers are embedded but never saved next to the
// files, since the folder is shared by unrelated releases.
func Download(ctx context.Context, client *http.Client, folder string, covers *shared.CoverCatalog, opts config.ArtworkOptions, reg *Registry, forPlaylist bool) (string, string, error) {
	saveArtwork := opts.SaveArtwork && !forPlaylist
	embed := opts.Embed

	if (!saveArtwork && !embed) || covers == nil || covers.Empty() {
		return "", "", nil
	}

	var tasks []downloader.Task
	savedCoverPath := prepareSavedCover(folder, covers, saveArtwork, &tasks)
	embedCoverPath, err := prepareEmbedCover(folder, covers, opts.EmbedSize, embed, reg, &tasks)
	if err != nil {
		return "", "", err
	}

	if len(tasks) > 0 {
		if err := downloader.ExecuteBatch(ctx, client, tasks); err != nil {
			shared.ColorWarning.Printf("⚠️ Failed to download artwork: %v\n", err)
			return "", "", nil
		}
	}

	// Resize before the catalog learns the new paths, so a failed
	// resize leaves it untouched.
	var g errgroup.Group
	if saveArtwork && savedCoverPath != "" && opts.SavedMaxWidth > 0 {
		path := savedCoverPath
		g.Go(func() error { return Downscale(ctx, path, opts.SavedMaxWidth) })
	}
	if embed && embedCoverPath != "" && opts.EmbedMaxWidth > 0 {
		path := embedCoverPath
		g.Go(func() error { return Downscale(ctx, path, opts.EmbedMaxWidth) })
	}
	if err := g.Wait(); err != nil {
		return "", "", err
	}

	if saveArtwork && savedCoverPath != "" {
		covers.SetLargestPath(savedCoverPath)
	}
	if embed && embedCoverPath != "" {
		covers.SetPath(opts.EmbedSize, embedCoverPath)
	}

	return embedCoverPath, savedCoverPath, nil
}

// prepareSavedCover picks the destination for the saved cover and queues
// its download unless the largest variant is already on disk.
func prepareSavedCover(folder string, covers *shared.CoverCatalog, saveArtwork bool, tasks *[]downloader.Task) string {
	if !saveArtwork {
		return ""
	}
	largest, ok := covers.Largest()
	if !ok {
		return ""
	}
	if largest.Path != "" {
		return largest.Path
	}
	if largest.URL == "" {
		return ""
	}
	path := filepath.Join(folder, "cover.jpg")
	*tasks = append(*tasks, downloader.Task{URL: largest.URL, Path: path})
	return path
}

// prepareEmbedCover picks the scratch location for the embeddable cover
// and queues its download unless the chosen variant is already on disk.
// The scratch directory is registered for removal at teardown.
func prepareEmbedCover(folder string, covers *shared.CoverCatalog, embedSize string, embed bool, reg *Registry, tasks *[]downloader.Task) (string, error) {
	if !embed {
		return "", nil
	}
	variant, ok := covers.Get(embedSize)
	if !ok {
		return "", nil
	}
	if variant.Path != "" {
		return variant.Path, nil
	}
	if variant.URL == "" {
		return "", nil
	}

	embedDir := filepath.Join(folder, "__artwork")
	if err := os.MkdirAll(embedDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create artwork directory: %w", err)
	}
	reg.Register(embedDir)

	h := fnv.New64a()
	h.Write([]byte(variant.URL))
	path := filepath.Join(embedDir, fmt.Sprintf("cover%x.jpg", h.Sum64()))
	*tasks = append(*tasks, downloader.Task{URL: variant.URL, Path: path})
	return path, nil
}
