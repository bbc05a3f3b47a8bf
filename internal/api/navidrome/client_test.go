package navidrome

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSaltedToken(t *testing.T) {
	// Known-answer vector from the Subsonic API documentation.
	got := saltedToken("sesame", "c19b2d")
	want := "26719a1196d2a940705a59634eb18eab"
	if got != want {
		t.Errorf("saltedToken = %q, want %q", got, want)
	}
}

func TestRandomSalt(t *testing.T) {
	a, b := randomSalt(), randomSalt()
	if len(a) != 16 {
		t.Errorf("salt length = %d, want 16 hex chars", len(a))
	}
	if a == b {
		t.Error("two salts should not collide")
	}
}

func TestAuthenticateUnconfigured(t *testing.T) {
	n := NewClient("", "", "")
	if err := n.Authenticate(); err == nil {
		t.Fatal("expected error for missing credentials")
	}
}

func newRESTClient(server *httptest.Server) *Client {
	n := NewClient(server.URL, "admin", "sesame")
	n.salt = "c19b2d"
	n.token = saltedToken(n.Password, n.salt)
	return n
}

func TestStartScanSendsAuthParams(t *testing.T) {
	var gotQuery map[string]string
	mux := http.NewServeMux()
	mux.HandleFunc("/rest/startScan.view", func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{}
		for key := range r.URL.Query() {
			gotQuery[key] = r.URL.Query().Get(key)
		}
		fmt.Fprint(w, `{"subsonic-response": {"status": "ok", "version": "1.16.1"}}`)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	n := newRESTClient(server)
	if err := n.StartScan(); err != nil {
		t.Fatalf("StartScan: %v", err)
	}

	want := map[string]string{
		"u": "admin",
		"t": saltedToken("sesame", "c19b2d"),
		"s": "c19b2d",
		"v": "1.16.1",
		"c": "aria-downloader",
		"f": "json",
	}
	for key, value := range want {
		if gotQuery[key] != value {
			t.Errorf("query param %s = %q, want %q", key, gotQuery[key], value)
		}
	}
}

func TestRestCallSubsonicError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/rest/startScan.view", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"subsonic-response": {"status": "failed", "error": {"code": 40, "message": "Wrong username or password."}}}`)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	n := newRESTClient(server)
	err := n.StartScan()
	if err == nil {
		t.Fatal("expected error for failed envelope")
	}
	if !strings.Contains(err.Error(), "Wrong username or password.") {
		t.Errorf("error should carry the server message, got %v", err)
	}
	if !strings.Contains(err.Error(), "code 40") {
		t.Errorf("error should carry the error code, got %v", err)
	}
}

func TestRestCallHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	n := newRESTClient(server)
	if err := n.StartScan(); err == nil {
		t.Fatal("expected error for HTTP 500")
	}
}
