package shared

// Music data structures. These are assembled from service responses by the
// API client packages and consumed everywhere else.

type Track struct {
	ID          string
	Title       string
	Artist      string
	Composer    string
	ISRC        string
	Copyright   string
	TrackNumber int
	DiscNumber  int
	Duration    int // seconds
	Streamable  bool
	AlbumID     string
	AlbumTitle  string // for search results without full album context
}

type Album struct {
	ID          string
	Title       string
	Artist      string
	Genre       string
	Label       string
	ReleaseDate string // YYYY-MM-DD
	UPC         string
	TotalTracks int
	TotalDiscs  int
	Covers      *CoverCatalog
	Tracks      []Track
}

// Year returns the release year portion of ReleaseDate, or "" if unknown.
func (a *Album) Year() string {
	if len(a.ReleaseDate) < 4 {
		return ""
	}
	return a.ReleaseDate[:4]
}

// Artist is an artist page: the name plus the IDs of its albums.
type Artist struct {
	ID       string
	Name     string
	AlbumIDs []string
}

// Label is a record label page, shaped like an artist page.
type Label struct {
	ID       string
	Name     string
	AlbumIDs []string
}

type SearchResults struct {
	Albums []Album
	Tracks []Track
}

// Query parameter structure
type QueryParam struct {
	Name  string
	Value string
}

// Download statistics
type DownloadStats struct {
	SuccessCount int
	SkippedCount int
	FailedCount  int
	FailedItems  []string
}

// Merge folds another run's counters into s.
func (s *DownloadStats) Merge(other *DownloadStats) {
	s.SuccessCount += other.SuccessCount
	s.SkippedCount += other.SkippedCount
	s.FailedCount += other.FailedCount
	s.FailedItems = append(s.FailedItems, other.FailedItems...)
}

// Spotify types
type SpotifyTrack struct {
	Name        string
	Artist      string
	AlbumName   string
	AlbumArtist string
}
