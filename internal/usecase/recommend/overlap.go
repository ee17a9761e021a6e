package recommend

import (
	"fmt"

	"github.com/shelfmind/shelfmind/internal/domain/book"
)

// overlapReason returns a metadata-specific explanation when the candidate
// shares an author or genre with one of the anchor books, or "" when nothing
// more specific than the similarity band applies. Author overlap wins over
// genre overlap: it is the stronger signal.
func overlapReason(candidate *book.Record, anchors []book.Record) string {
	if candidate.Author() != "" {
		for i := range anchors {
			if anchors[i].Author() == candidate.Author() {
				return fmt.Sprintf("Also by %s", candidate.Author())
			}
		}
	}

	if g := candidate.GenrePrimary(); g != "" {
		for i := range anchors {
			if anchors[i].HasGenre(g) {
				return fmt.Sprintf("Shares the %s shelf with %s", g, anchors[i].Title())
			}
		}
	}
	return ""
}
