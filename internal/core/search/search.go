// Package search drives the interactive search flow: it flattens service
// results into a numbered listing, prompts for a selection and hands the
// picked entries back so the caller can rip them.
package search

import (
	"fmt"
	"strconv"
	"strings"

	"aria-downloader/internal/shared"
)

// Entry is one selectable search result.
type Entry struct {
	Kind  string // "album" or "track"
	ID    string
	Label string
}

// Entries flattens search results into display order, albums first.
func Entries(results *shared.SearchResults) []Entry {
	var entries []Entry
	for _, album := range results.Albums {
		entries = append(entries, Entry{
			Kind:  "album",
			ID:    album.ID,
			Label: fmt.Sprintf("%s - %s (%s) [id %s]", album.Title, album.Artist, album.Year(), album.ID),
		})
	}
	for _, track := range results.Tracks {
		entries = append(entries, Entry{
			Kind:  "track",
			ID:    track.ID,
			Label: fmt.Sprintf("%s - %s (%s) [id %s]", track.Title, track.Artist, track.AlbumTitle, track.ID),
		})
	}
	return entries
}

// Choose prints the numbered entries and prompts for a selection. An empty
// answer or 'q' selects nothing.
func Choose(entries []Entry) ([]Entry, error) {
	shared.ColorInfo.Printf("Found %d results:\n", len(entries))

	lastKind := ""
	for i, entry := range entries {
		if entry.Kind != lastKind {
			if entry.Kind == "album" {
				shared.ColorInfo.Println("\n--- Albums ---")
			} else {
				shared.ColorInfo.Println("\n--- Tracks ---")
			}
			lastKind = entry.Kind
		}
		fmt.Printf("%d. %s\n", i+1, entry.Label)
	}

	input := shared.GetUserInput("\nEnter numbers to download (e.g., '1,3,5-7' or 'q' to quit)", "")
	if input == "" || input == "q" {
		return nil, nil
	}

	indices, err := ParseSelection(input, len(entries))
	if err != nil {
		return nil, fmt.Errorf("invalid selection: %w", err)
	}

	chosen := make([]Entry, 0, len(indices))
	for _, index := range indices {
		chosen = append(chosen, entries[index-1])
	}
	return chosen, nil
}

// ParseSelection parses input like "1-7, 10, 12-15" into unique 1-based
// indices. Numbers outside 1..max are dropped, reversed ranges are swapped.
func ParseSelection(input string, max int) ([]int, error) {
	selected := make(map[int]bool)
	var result []int

	add := func(n int) {
		if n >= 1 && n <= max && !selected[n] {
			selected[n] = true
			result = append(result, n)
		}
	}

	for _, part := range strings.Split(input, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if strings.Contains(part, "-") {
			rangeParts := strings.Split(part, "-")
			if len(rangeParts) != 2 {
				return nil, fmt.Errorf("invalid range format: %s", part)
			}
			start, err := strconv.Atoi(strings.TrimSpace(rangeParts[0]))
			if err != nil {
				return nil, fmt.Errorf("invalid start of range: %s", rangeParts[0])
			}
			end, err := strconv.Atoi(strings.TrimSpace(rangeParts[1]))
			if err != nil {
				return nil, fmt.Errorf("invalid end of range: %s", rangeParts[1])
			}
			if start > end {
				start, end = end, start
			}
			for i := start; i <= end; i++ {
				add(i)
			}
		} else {
			num, err := strconv.Atoi(part)
			if err != nil {
				return nil, fmt.Errorf("invalid number: %s", part)
			}
			add(num)
		}
	}

	return result, nil
}
