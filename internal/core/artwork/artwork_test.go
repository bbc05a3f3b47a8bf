package artwork

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aria-downloader/internal/config"
	"aria-downloader/internal/shared"
)

// coverServer serves generated JPEGs and counts how often each path is hit.
type coverServer struct {
	*httptest.Server
	mu   sync.Mutex
	hits map[string]int
}

func newCoverServer(t *testing.T) *coverServer {
	t.Helper()
	cs := &coverServer{hits: make(map[string]int)}

	var large, small bytes.Buffer
	require.NoError(t, jpeg.Encode(&large, image.NewRGBA(image.Rect(0, 0, 600, 400)), nil))
	require.NoError(t, jpeg.Encode(&small, image.NewRGBA(image.Rect(0, 0, 300, 200)), nil))

	mux := http.NewServeMux()
	serve := func(pattern string, body []byte, status int) {
		mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
			cs.mu.Lock()
			cs.hits[r.URL.Path]++
			cs.mu.Unlock()
			w.WriteHeader(status)
			w.Write(body)
		})
	}
	serve("/large.jpg", large.Bytes(), http.StatusOK)
	serve("/small.jpg", small.Bytes(), http.StatusOK)
	serve("/corrupt.jpg", []byte("definitely not a jpeg"), http.StatusOK)
	serve("/missing.jpg", nil, http.StatusNotFound)

	cs.Server = httptest.NewServer(mux)
	t.Cleanup(cs.Close)
	return cs
}

func (cs *coverServer) totalHits() int {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	total := 0
	for _, n := range cs.hits {
		total += n
	}
	return total
}

func (cs *coverServer) catalog(large, small string) *shared.CoverCatalog {
	toURL := func(p string) string {
		if p == "" {
			return ""
		}
		return cs.URL + p
	}
	return shared.NewCoverCatalog("", toURL(large), toURL(small), "")
}

func TestDownloadEmptyCatalogDoesNothing(t *testing.T) {
	server := newCoverServer(t)
	folder := t.TempDir()
	opts := config.ArtworkOptions{SaveArtwork: true, Embed: true, EmbedSize: "large"}

	embedPath, savedPath, err := Download(context.Background(), server.Client(), folder,
		shared.NewCoverCatalog("", "", "", ""), opts, NewRegistry(), false)

	require.NoError(t, err)
	assert.Empty(t, embedPath)
	assert.Empty(t, savedPath)
	assert.Zero(t, server.totalHits(), "no requests expected for an empty catalog")

	entries, err := os.ReadDir(folder)
	require.NoError(t, err)
	assert.Empty(t, entries, "no files expected for an empty catalog")
}

func TestDownloadInactiveOptionsDoNothing(t *testing.T) {
	server := newCoverServer(t)
	opts := config.ArtworkOptions{EmbedSize: "large"} // neither save nor embed

	embedPath, savedPath, err := Download(context.Background(), server.Client(), t.TempDir(),
		server.catalog("/large.jpg", "/small.jpg"), opts, NewRegistry(), false)

	require.NoError(t, err)
	assert.Empty(t, embedPath)
	assert.Empty(t, savedPath)
	assert.Zero(t, server.totalHits())
}

func TestDownloadSaveAndEmbed(t *testing.T) {
	server := newCoverServer(t)
	folder := t.TempDir()
	covers := server.catalog("/large.jpg", "/small.jpg")
	opts := config.ArtworkOptions{SaveArtwork: true, Embed: true, EmbedSize: "small"}
	reg := NewRegistry()

	embedPath, savedPath, err := Download(context.Background(), server.Client(), folder, covers, opts, reg, false)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(folder, "cover.jpg"), savedPath)
	assert.FileExists(t, savedPath)

	require.NotEmpty(t, embedPath)
	assert.True(t, strings.HasPrefix(embedPath, filepath.Join(folder, "__artwork")),
		"embed cover belongs in the scratch dir, got %s", embedPath)
	assert.FileExists(t, embedPath)

	largest, ok := covers.Largest()
	require.True(t, ok)
	assert.Equal(t, savedPath, largest.Path)
	smallVariant, ok := covers.Get(shared.CoverSmall)
	require.True(t, ok)
	assert.Equal(t, embedPath, smallVariant.Path)

	// Teardown removes the scratch dir but leaves the saved cover.
	reg.Teardown()
	assert.NoFileExists(t, embedPath)
	assert.FileExists(t, savedPath)
}

func TestDownloadPlaylistContextSuppressesSave(t *testing.T) {
	server := newCoverServer(t)
	folder := t.TempDir()
	covers := server.catalog("/large.jpg", "/small.jpg")
	opts := config.ArtworkOptions{SaveArtwork: true, Embed: true, EmbedSize: "large"}

	embedPath, savedPath, err := Download(context.Background(), server.Client(), folder, covers, opts, NewRegistry(), true)
	require.NoError(t, err)

	assert.Empty(t, savedPath)
	assert.NoFileExists(t, filepath.Join(folder, "cover.jpg"))
	assert.FileExists(t, embedPath, "embedding still happens for playlists")
}

func TestDownloadPlaylistSaveOnlyIsInactive(t *testing.T) {
	server := newCoverServer(t)
	opts := config.ArtworkOptions{SaveArtwork: true, EmbedSize: "large"}

	embedPath, savedPath, err := Download(context.Background(), server.Client(), t.TempDir(),
		server.catalog("/large.jpg", "/small.jpg"), opts, NewRegistry(), true)

	require.NoError(t, err)
	assert.Empty(t, embedPath)
	assert.Empty(t, savedPath)
	assert.Zero(t, server.totalHits())
}

func TestDownloadBatchFailureLeavesCatalogUntouched(t *testing.T) {
	server := newCoverServer(t)
	folder := t.TempDir()
	covers := server.catalog("/missing.jpg", "/small.jpg")
	opts := config.ArtworkOptions{SaveArtwork: true, Embed: true, EmbedSize: "small"}

	embedPath, savedPath, err := Download(context.Background(), server.Client(), folder, covers, opts, NewRegistry(), false)

	require.NoError(t, err, "fetch failures are soft")
	assert.Empty(t, embedPath)
	assert.Empty(t, savedPath)

	largest, ok := covers.Largest()
	require.True(t, ok)
	assert.Empty(t, largest.Path, "failed batch must not update the catalog")
	smallVariant, _ := covers.Get(shared.CoverSmall)
	assert.Empty(t, smallVariant.Path)
}

func TestDownloadReusesExistingPath(t *testing.T) {
	server := newCoverServer(t)
	folder := t.TempDir()
	covers := server.catalog("/large.jpg", "")

	existing := filepath.Join(folder, "already-here.jpg")
	require.NoError(t, os.WriteFile(existing, []byte("jpeg"), 0644))
	largest, ok := covers.Largest()
	require.True(t, ok)
	largest.Path = existing

	opts := config.ArtworkOptions{SaveArtwork: true}
	_, savedPath, err := Download(context.Background(), server.Client(), folder, covers, opts, NewRegistry(), false)

	require.NoError(t, err)
	assert.Equal(t, existing, savedPath)
	assert.Zero(t, server.totalHits(), "a cover already on disk must not be re-downloaded")
}

func TestDownloadDownscaleFailureIsHard(t *testing.T) {
	server := newCoverServer(t)
	folder := t.TempDir()
	covers := server.catalog("/corrupt.jpg", "")
	opts := config.ArtworkOptions{SaveArtwork: true, SavedMaxWidth: 100}

	_, _, err := Download(context.Background(), server.Client(), folder, covers, opts, NewRegistry(), false)

	require.Error(t, err, "an undecodable cover with a resize bound must fail the pipeline")
	largest, ok := covers.Largest()
	require.True(t, ok)
	assert.Empty(t, largest.Path, "catalog must stay untouched after a failed resize")
}

func TestDownloadAppliesResizeBounds(t *testing.T) {
	server := newCoverServer(t)
	folder := t.TempDir()
	covers := server.catalog("/large.jpg", "")
	opts := config.ArtworkOptions{SaveArtwork: true, SavedMaxWidth: 150}

	_, savedPath, err := Download(context.Background(), server.Client(), folder, covers, opts, NewRegistry(), false)
	require.NoError(t, err)

	w, h := imageDims(t, savedPath)
	assert.Equal(t, 150, w)
	assert.Equal(t, 100, h)
}
