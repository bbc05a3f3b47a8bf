package search

import (
	"reflect"
	"testing"

	"aria-downloader/internal/shared"
)

func TestEntriesOrdersAlbumsFirst(t *testing.T) {
	results := &shared.SearchResults{
		Albums: []shared.Album{
			{ID: "a1", Title: "Blue Train", Artist: "John Coltrane", ReleaseDate: "1958-01-01"},
		},
		Tracks: []shared.Track{
			{ID: "t1", Title: "Giant Steps", Artist: "John Coltrane", AlbumTitle: "Giant Steps"},
			{ID: "t2", Title: "Naima", Artist: "John Coltrane", AlbumTitle: "Giant Steps"},
		},
	}

	entries := Entries(results)
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Kind != "album" || entries[0].ID != "a1" {
		t.Errorf("expected album first, got %+v", entries[0])
	}
	if entries[1].Kind != "track" || entries[2].Kind != "track" {
		t.Errorf("expected tracks after albums, got %+v / %+v", entries[1], entries[2])
	}
	if want := "Blue Train - John Coltrane (1958) [id a1]"; entries[0].Label != want {
		t.Errorf("album label = %q, want %q", entries[0].Label, want)
	}
	if want := "Giant Steps - John Coltrane (Giant Steps) [id t1]"; entries[1].Label != want {
		t.Errorf("track label = %q, want %q", entries[1].Label, want)
	}
}

func TestEntriesEmptyResults(t *testing.T) {
	if entries := Entries(&shared.SearchResults{}); len(entries) != 0 {
		t.Errorf("expected no entries, got %d", len(entries))
	}
}

func TestParseSelection(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		max     int
		want    []int
		wantErr bool
	}{
		{name: "single number", input: "3", max: 5, want: []int{3}},
		{name: "comma list", input: "1, 3, 5", max: 5, want: []int{1, 3, 5}},
		{name: "range", input: "2-4", max: 5, want: []int{2, 3, 4}},
		{name: "mixed", input: "1,3-4", max: 5, want: []int{1, 3, 4}},
		{name: "reversed range swaps", input: "4-2", max: 5, want: []int{2, 3, 4}},
		{name: "out of range dropped", input: "1, 7, 9", max: 5, want: []int{1}},
		{name: "duplicates collapse", input: "2,2,1-2", max: 5, want: []int{2, 1}},
		{name: "empty parts skipped", input: "1,,2", max: 5, want: []int{1, 2}},
		{name: "garbage", input: "one", max: 5, wantErr: true},
		{name: "bad range", input: "1-2-3", max: 5, wantErr: true},
		{name: "bad range end", input: "1-x", max: 5, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSelection(tt.input, tt.max)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseSelection(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
