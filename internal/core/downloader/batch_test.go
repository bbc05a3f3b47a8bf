package downloader

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newArtServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/good/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("image-bytes"))
	})
	mux.HandleFunc("/missing/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestExecuteBatchEmpty(t *testing.T) {
	if err := ExecuteBatch(context.Background(), http.DefaultClient, nil); err != nil {
		t.Fatalf("empty batch should succeed, got %v", err)
	}
}

func TestExecuteBatchAllSucceed(t *testing.T) {
	server := newArtServer(t)
	dir := t.TempDir()

	tasks := []Task{
		{URL: server.URL + "/good/a.jpg", Path: filepath.Join(dir, "a.jpg")},
		{URL: server.URL + "/good/b.jpg", Path: filepath.Join(dir, "b.jpg")},
	}
	if err := ExecuteBatch(context.Background(), server.Client(), tasks); err != nil {
		t.Fatalf("ExecuteBatch: %v", err)
	}
	for _, task := range tasks {
		data, err := os.ReadFile(task.Path)
		if err != nil {
			t.Fatalf("reading %s: %v", task.Path, err)
		}
		if string(data) != "image-bytes" {
			t.Errorf("%s: unexpected contents %q", task.Path, data)
		}
	}
}

func TestExecuteBatchAllOrNothing(t *testing.T) {
	server := newArtServer(t)
	dir := t.TempDir()

	tasks := []Task{
		{URL: server.URL + "/good/a.jpg", Path: filepath.Join(dir, "a.jpg")},
		{URL: server.URL + "/missing/b.jpg", Path: filepath.Join(dir, "b.jpg")},
	}
	err := ExecuteBatch(context.Background(), server.Client(), tasks)
	if err == nil {
		t.Fatal("batch with a failing task should fail")
	}
	if !strings.Contains(err.Error(), "/missing/b.jpg") {
		t.Errorf("error should name the failing URL, got %v", err)
	}
	// The failed task must not leave a partial file behind.
	if _, statErr := os.Stat(filepath.Join(dir, "b.jpg")); !os.IsNotExist(statErr) {
		t.Error("failed download left a file behind")
	}
}

func TestBasicDownloadableVerifiesSize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "100")
		w.Write([]byte("short"))
	}))
	t.Cleanup(server.Close)

	path := filepath.Join(t.TempDir(), "cover.jpg")
	d := NewBasicDownloadable(server.Client(), server.URL, "jpg")
	if err := d.Download(context.Background(), path, nil); err == nil {
		t.Fatal("expected size mismatch error")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("incomplete file should have been removed")
	}
}
