// Package dedup finds and removes documents whose indexed vocabularies are
// identical, ignoring word order, repetition and frequencies.
package dedup

import (
	"slices"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/index"
)

// Index is the part of the engine duplicate detection needs.
type Index interface {
	DocumentIDs() []int
	GetWordFrequencies(id int) (index.WordFrequencies, error)
	RemoveDocument(id int) bool
}

// FindDuplicates scans documents in ascending id order and returns, in that
// order, every document whose vocabulary equals that of a document with a
// smaller id.
func FindDuplicates(idx Index) ([]int, error) {
	ids := idx.DocumentIDs()
	slices.Sort(ids)
	seen := make(map[string]struct{}, len(ids))
	var duplicates []int
	for _, id := range ids {
		freqs, err := idx.GetWordFrequencies(id)
		if err != nil {
			return nil, err
		}
		key := vocabularyKey(freqs)
		if _, ok := seen[key]; ok {
			duplicates = append(duplicates, id)
			continue
		}
		seen[key] = struct{}{}
	}
	return duplicates, nil
}

// RemoveDuplicates removes every document FindDuplicates reports, after the
// scan completes, and returns the removed ids in ascending order.
func RemoveDuplicates(idx Index) ([]int, error) {
	duplicates, err := FindDuplicates(idx)
	if err != nil {
		return nil, err
	}
	removed := duplicates[:0]
	for _, id := range duplicates {
		if idx.RemoveDocument(id) {
			removed = append(removed, id)
		}
	}
	return removed, nil
}

// vocabularyKey joins the sorted terms with NUL, which no valid term
// contains.
func vocabularyKey(freqs index.WordFrequencies) string {
	terms := make([]string, 0, len(freqs))
	for term := range freqs {
		terms = append(terms, term)
	}
	slices.Sort(terms)
	return strings.Join(terms, "\x00")
}
