package structure

import (
	"slices"

	"github.com/dgallion1/deckgen/internal/deck"
)

// Merge concatenates the chapters of every successful result in chunk order.
// Results may arrive in any order; Index is the sole ordering key. Chapters
// are not deduplicated, so content repeated in overlapping chunks can appear
// twice. The returned slice is empty, never nil, when no chunk succeeded.
func Merge(results []Result) []deck.Chapter {
	ordered := slices.Clone(results)
	slices.SortStableFunc(ordered, func(a, b Result) int { return a.Index - b.Index })

	merged := make([]deck.Chapter, 0)
	for _, r := range ordered {
		if r.Status != StatusOK {
			continue
		}
		merged = append(merged, r.Chapters...)
	}
	return merged
}

// Tally counts results by status.
func Tally(results []Result) (ok, empty, failed int) {
	for _, r := range results {
		switch r.Status {
		case StatusOK:
			ok++
		case StatusEmpty:
			empty++
		default:
			failed++
		}
	}
	return ok, empty, failed
}
