package db

import (
	"path/filepath"
	"testing"
)

func TestDownloadedRoundTrip(t *testing.T) {
	d, err := New(filepath.Join(t.TempDir(), "downloads.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer d.Close()

	if d.Downloaded("12345") {
		t.Error("fresh database should not know any track")
	}
	if err := d.SetDownloaded("12345"); err != nil {
		t.Fatalf("SetDownloaded: %v", err)
	}
	if !d.Downloaded("12345") {
		t.Error("track should be marked downloaded")
	}
	if d.Downloaded("67890") {
		t.Error("unrelated track should stay unknown")
	}

	// Marking twice must not error.
	if err := d.SetDownloaded("12345"); err != nil {
		t.Fatalf("second SetDownloaded: %v", err)
	}
}

func TestSetFailed(t *testing.T) {
	d, err := New(filepath.Join(t.TempDir(), "downloads.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer d.Close()

	if err := d.SetFailed("qobuz", "track", "999"); err != nil {
		t.Fatalf("SetFailed: %v", err)
	}
	// Same item failing again replaces the row instead of erroring.
	if err := d.SetFailed("qobuz", "track", "999"); err != nil {
		t.Fatalf("repeat SetFailed: %v", err)
	}
}

func TestDummyNeverRemembers(t *testing.T) {
	var d Database = Dummy{}
	if err := d.SetDownloaded("1"); err != nil {
		t.Fatal(err)
	}
	if d.Downloaded("1") {
		t.Error("Dummy must never report a track as downloaded")
	}
}
