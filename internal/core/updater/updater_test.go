package updater

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestIsNewerVersion(t *testing.T) {
	tests := []struct {
		latest  string
		current string
		want    bool
	}{
		{"v1.2.0", "v1.1.0", true},
		{"v1.1.0", "v1.1.0", false},
		{"v1.0.9", "v1.1.0", false},
		{"v2.0.0", "v1.9.9", true},
		{"1.2.0", "v1.1.0", true}, // tag without v prefix
		{"not-a-version", "v1.0.0", false},
		{"v1.0.0", "garbage", false},
	}

	for _, tt := range tests {
		if got := isNewerVersion(tt.latest, tt.current); got != tt.want {
			t.Errorf("isNewerVersion(%q, %q) = %v, want %v", tt.latest, tt.current, got, tt.want)
		}
	}
}

func TestLatestRelease(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/aria-music/aria-downloader/releases/latest", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"tag_name": "v1.4.2", "html_url": "https://github.com/aria-music/aria-downloader/releases/tag/v1.4.2"}`)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	tag, url, err := latestRelease(server.URL, "aria-music/aria-downloader")
	if err != nil {
		t.Fatalf("latestRelease returned error: %v", err)
	}
	if tag != "v1.4.2" {
		t.Errorf("tag = %q, want v1.4.2", tag)
	}
	if url == "" {
		t.Error("expected a release URL")
	}
}

func TestLatestReleaseErrors(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(server.Close)

	if _, _, err := latestRelease(server.URL, "nobody/nothing"); err == nil {
		t.Error("expected error for 404 response")
	}

	empty := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	}))
	t.Cleanup(empty.Close)

	if _, _, err := latestRelease(empty.URL, "nobody/nothing"); err == nil {
		t.Error("expected error for response without tag")
	}
}
