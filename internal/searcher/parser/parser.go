// Package parser turns a raw query string into the set of words that must
// contribute to relevance and the set of words that exclude a document.
package parser

import (
	"slices"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/tokenizer"
	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
)

// MinusMarker prefixes a word that excludes documents containing it.
const MinusMarker = "-"

// QueryPlan holds the parsed query. Terms and ExcludeTerms are sorted,
// disjoint and free of duplicates and stop words. A word given both plain
// and with the minus marker is only an exclusion.
type QueryPlan struct {
	Terms        []string
	ExcludeTerms []string
	RawQuery     string
}

func Parse(query string, stopWords tokenizer.StopWords) (*QueryPlan, error) {
	plan := &QueryPlan{
		Terms:        make([]string, 0),
		ExcludeTerms: make([]string, 0),
		RawQuery:     query,
	}
	for _, word := range tokenizer.SplitIntoWords(query) {
		term, exclude, err := parseWord(word)
		if err != nil {
			return nil, err
		}
		if stopWords.Contains(term) {
			continue
		}
		if exclude {
			plan.ExcludeTerms = append(plan.ExcludeTerms, term)
		} else {
			plan.Terms = append(plan.Terms, term)
		}
	}
	plan.ExcludeTerms = dedupe(plan.ExcludeTerms)
	plan.Terms = slices.DeleteFunc(dedupe(plan.Terms), func(term string) bool {
		_, excluded := slices.BinarySearch(plan.ExcludeTerms, term)
		return excluded
	})
	return plan, nil
}

func parseWord(word string) (term string, exclude bool, err error) {
	term = word
	if strings.HasPrefix(term, MinusMarker) {
		exclude = true
		term = term[len(MinusMarker):]
	}
	if term == "" {
		return "", false, apperrors.InvalidArgumentf("query word %q has no text after the minus sign", word)
	}
	if strings.HasPrefix(term, MinusMarker) {
		return "", false, apperrors.InvalidArgumentf("query word %q has more than one minus sign", word)
	}
	if !tokenizer.IsValidWord(term) {
		return "", false, apperrors.InvalidArgumentf("query word %q contains control characters", word)
	}
	return term, exclude, nil
}

func dedupe(terms []string) []string {
	slices.Sort(terms)
	return slices.Compact(terms)
}
