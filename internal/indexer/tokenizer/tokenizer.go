// Package tokenizer splits document and query text into words and holds the
// stop-word set excluded from indexing and matching. Words are
// case-sensitive and split on the space character only; a word containing a
// control character is invalid.
package tokenizer

import (
	"slices"
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
)

// SplitIntoWords breaks text into the non-empty runs between space
// characters. Other whitespace is part of a word, which makes tabs and
// newlines invalid word content.
func SplitIntoWords(text string) []string {
	words := strings.FieldsFunc(text, func(r rune) bool {
		return r == ' '
	})
	return words
}

// IsValidWord reports whether word has no control characters (0x00-0x1F).
func IsValidWord(word string) bool {
	for i := 0; i < len(word); i++ {
		if word[i] < ' ' {
			return false
		}
	}
	return true
}

// StopWords is an immutable set of words established at construction.
type StopWords struct {
	words map[string]struct{}
}

// NewStopWords builds a set from pre-tokenized words. Empty strings are
// dropped and duplicates collapse; a word with a control character is an
// error.
func NewStopWords(words []string) (StopWords, error) {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		if w == "" {
			continue
		}
		if !IsValidWord(w) {
			return StopWords{}, apperrors.InvalidArgumentf("stop word %q contains control characters", w)
		}
		set[w] = struct{}{}
	}
	return StopWords{words: set}, nil
}

// ParseStopWords builds a set from space-delimited text.
func ParseStopWords(text string) (StopWords, error) {
	return NewStopWords(SplitIntoWords(text))
}

// Contains reports whether word is a stop word.
func (s StopWords) Contains(word string) bool {
	_, ok := s.words[word]
	return ok
}

func (s StopWords) Len() int {
	return len(s.words)
}

// Words returns the stop words in ascending order.
func (s StopWords) Words() []string {
	out := make([]string, 0, len(s.words))
	for w := range s.words {
		out = append(out, w)
	}
	slices.Sort(out)
	return out
}

// SplitNoStop tokenizes text, validates every word and drops stop words.
// Validation covers stop words too, so the whole text is rejected if any
// word is invalid.
func (s StopWords) SplitNoStop(text string) ([]string, error) {
	words := SplitIntoWords(text)
	out := make([]string, 0, len(words))
	for _, w := range words {
		if !IsValidWord(w) {
			return nil, apperrors.InvalidArgumentf("word %q contains control characters", w)
		}
		if s.Contains(w) {
			continue
		}
		out = append(out, w)
	}
	return out, nil
}
