package shared

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Warning behavior modes, set via config.
const (
	WarningsImmediate = "immediate"
	WarningsSummary   = "summary"
	WarningsSilent    = "silent"
)

// WarningType represents different types of warnings
type WarningType int

const (
	CoverArtDownloadWarning WarningType = iota
	CoverArtProcessWarning
	TaggingWarning
	TrackDownloadWarning
	AlbumFetchWarning
	TrackSkippedWarning
	LibrarySyncWarning
)

// Warning represents a single warning with context
type Warning struct {
	Type    WarningType
	Message string
	Context string // Track/Album context
	Details string // Additional details like error message
}

// WarningCollector collects warnings during download operations. Adds may
// come from concurrent track downloads.
type WarningCollector struct {
	mu       sync.Mutex
	warnings []Warning
	behavior string
}

// NewWarningCollector creates a new warning collector
func NewWarningCollector(behavior string) *WarningCollector {
	return &WarningCollector{
		warnings: make([]Warning, 0),
		behavior: behavior,
	}
}

// AddWarning adds a warning to the collector
func (wc *WarningCollector) AddWarning(warningType WarningType, context, message, details string) {
	if wc.behavior == WarningsSilent {
		return
	}

	warning := Warning{
		Type:    warningType,
		Message: message,
		Context: context,
		Details: details,
	}
	wc.mu.Lock()
	wc.warnings = append(wc.warnings, warning)
	wc.mu.Unlock()

	if wc.behavior == WarningsImmediate {
		if details != "" {
			ColorWarning.Printf("⚠️ %s: %s (%s)\n", message, context, details)
		} else {
			ColorWarning.Printf("⚠️ %s: %s\n", message, context)
		}
	}
}

// AddCoverArtDownloadWarning adds a cover art download warning
func (wc *WarningCollector) AddCoverArtDownloadWarning(album, details string) {
	wc.AddWarning(CoverArtDownloadWarning, album, "Could not download cover art", details)
}

// AddCoverArtProcessWarning adds a cover art resize/processing warning
func (wc *WarningCollector) AddCoverArtProcessWarning(album, details string) {
	wc.AddWarning(CoverArtProcessWarning, album, "Could not process cover art", details)
}

// AddTaggingWarning adds a metadata tagging warning
func (wc *WarningCollector) AddTaggingWarning(trackTitle, details string) {
	wc.AddWarning(TaggingWarning, trackTitle, "Failed to tag file", details)
}

// AddTrackDownloadWarning adds a track download warning
func (wc *WarningCollector) AddTrackDownloadWarning(artist, title, details string) {
	context := fmt.Sprintf("%s - %s", artist, title)
	wc.AddWarning(TrackDownloadWarning, context, "Failed to download track", details)
}

// AddAlbumFetchWarning adds an album fetch warning
func (wc *WarningCollector) AddAlbumFetchWarning(title, id, details string) {
	context := fmt.Sprintf("%s (ID: %s)", title, id)
	wc.AddWarning(AlbumFetchWarning, context, "Could not fetch album info", details)
}

// AddTrackSkippedWarning adds a track skipped warning
func (wc *WarningCollector) AddTrackSkippedWarning(trackPath string) {
	wc.AddWarning(TrackSkippedWarning, trackPath, "Track already downloaded", "")
}

// AddLibrarySyncWarning adds a media server sync warning
func (wc *WarningCollector) AddLibrarySyncWarning(server, details string) {
	wc.AddWarning(LibrarySyncWarning, server, "Library sync failed", details)
}

// HasWarnings returns true if there are any warnings
func (wc *WarningCollector) HasWarnings() bool {
	wc.mu.Lock()
	defer wc.mu.Unlock()
	return len(wc.warnings) > 0
}

// GetWarningCount returns the total number of warnings
func (wc *WarningCollector) GetWarningCount() int {
	wc.mu.Lock()
	defer wc.mu.Unlock()
	return len(wc.warnings)
}

// GetWarningsByType returns warnings grouped by type
func (wc *WarningCollector) GetWarningsByType() map[WarningType][]Warning {
	wc.mu.Lock()
	defer wc.mu.Unlock()
	grouped := make(map[WarningType][]Warning)
	for _, warning := range wc.warnings {
		grouped[warning.Type] = append(grouped[warning.Type], warning)
	}
	return grouped
}

// PrintSummary prints a formatted summary of all warnings
func (wc *WarningCollector) PrintSummary() {
	if wc.behavior != WarningsSummary || !wc.HasWarnings() {
		return
	}

	ColorWarning.Printf("\n⚠️  Warning Summary (%d warnings):\n", wc.GetWarningCount())
	ColorWarning.Println(strings.Repeat("─", 50))

	grouped := wc.GetWarningsByType()

	// Sort warning types for consistent output
	var types []WarningType
	for warningType := range grouped {
		types = append(types, warningType)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	for _, warningType := range types {
		wc.printWarningTypeSection(warningType, grouped[warningType])
	}
}

// printWarningTypeSection prints warnings for a specific type
func (wc *WarningCollector) printWarningTypeSection(warningType WarningType, warnings []Warning) {
	if len(warnings) == 0 {
		return
	}

	sectionTitle := wc.getWarningTypeTitle(warningType)
	ColorWarning.Printf("\n%s (%d):\n", sectionTitle, len(warnings))

	// Group similar warnings to avoid repetition
	contextCounts := make(map[string]int)
	for _, warning := range warnings {
		contextCounts[warning.Context]++
	}

	var contexts []string
	for context := range contextCounts {
		contexts = append(contexts, context)
	}
	sort.Strings(contexts)

	for _, context := range contexts {
		count := contextCounts[context]
		if count > 1 {
			ColorWarning.Printf("  • %s (×%d)\n", context, count)
		} else {
			ColorWarning.Printf("  • %s\n", context)
		}
	}
}

// getWarningTypeTitle returns a human-readable title for a warning type
func (wc *WarningCollector) getWarningTypeTitle(warningType WarningType) string {
	switch warningType {
	case CoverArtDownloadWarning:
		return "Cover Art Download Failures"
	case CoverArtProcessWarning:
		return "Cover Art Processing Failures"
	case TaggingWarning:
		return "Tagging Failures"
	case TrackDownloadWarning:
		return "Track Download Failures"
	case AlbumFetchWarning:
		return "Album Fetch Failures"
	case TrackSkippedWarning:
		return "Skipped Tracks"
	case LibrarySyncWarning:
		return "Library Sync Failures"
	default:
		return "Other Warnings"
	}
}
