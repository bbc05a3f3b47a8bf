package spotify

import "testing"

func TestResourceID(t *testing.T) {
	tests := []struct {
		name    string
		rawURL  string
		kind    string
		want    string
		wantErr bool
	}{
		{
			name:   "playlist URL",
			rawURL: "https://open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M",
			kind:   "playlist",
			want:   "37i9dQZF1DXcBWIGoYBM5M",
		},
		{
			name:   "URL with query string",
			rawURL: "https://open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M?si=abc123",
			kind:   "playlist",
			want:   "37i9dQZF1DXcBWIGoYBM5M",
		},
		{
			name:   "spotify URI",
			rawURL: "spotify:album:4aawyAB9vmqN3uQ7FjRGTy",
			kind:   "album",
			want:   "4aawyAB9vmqN3uQ7FjRGTy",
		},
		{
			name:    "wrong kind",
			rawURL:  "https://open.spotify.com/album/4aawyAB9vmqN3uQ7FjRGTy",
			kind:    "playlist",
			wantErr: true,
		},
		{
			name:    "too short",
			rawURL:  "https://open.spotify.com/",
			kind:    "playlist",
			wantErr: true,
		},
		{
			name:    "empty id",
			rawURL:  "spotify:track:",
			kind:    "track",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resourceID(tt.rawURL, tt.kind)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("resourceID(%q) expected error, got %q", tt.rawURL, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("resourceID(%q) returned error: %v", tt.rawURL, err)
			}
			if string(got) != tt.want {
				t.Errorf("resourceID(%q) = %q, want %q", tt.rawURL, got, tt.want)
			}
		})
	}
}
