package parser

import (
	"testing"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/tokenizer"
	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stopWords(t *testing.T, text string) tokenizer.StopWords {
	t.Helper()
	sw, err := tokenizer.ParseStopWords(text)
	require.NoError(t, err)
	return sw
}

func TestParse(t *testing.T) {
	sw := stopWords(t, "and in on")
	tests := []struct {
		name    string
		query   string
		terms   []string
		exclude []string
	}{
		{"empty", "", []string{}, []string{}},
		{"plus only", "curly cat", []string{"cat", "curly"}, []string{}},
		{"minus", "cat -dog", []string{"cat"}, []string{"dog"}},
		{"dedupe", "cat cat -dog -dog", []string{"cat"}, []string{"dog"}},
		{"stop words dropped", "cat and in -on", []string{"cat"}, []string{}},
		{"only minus", "-rat", []string{}, []string{"rat"}},
		{"same word both sides", "cat -cat", []string{}, []string{"cat"}},
		{"case sensitive", "Cat cat", []string{"Cat", "cat"}, []string{}},
		{"inner dash kept", "well-groomed", []string{"well-groomed"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := Parse(tt.query, sw)
			require.NoError(t, err)
			assert.Equal(t, tt.terms, plan.Terms)
			assert.Equal(t, tt.exclude, plan.ExcludeTerms)
			assert.Equal(t, tt.query, plan.RawQuery)
		})
	}
}

func TestParseInvalid(t *testing.T) {
	sw := stopWords(t, "and")
	for _, query := range []string{"cat -", "--dog", "cat -\x01rat", "c\x1fat"} {
		t.Run(query, func(t *testing.T) {
			plan, err := Parse(query, sw)
			assert.Nil(t, plan)
			assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
		})
	}
}

func TestExclusionWinsOverPlusTerm(t *testing.T) {
	tests := []struct {
		query       string
		wantTerms   []string
		wantExclude []string
	}{
		{"-dog", []string{}, []string{"dog"}},
		{"cat -cat", []string{}, []string{"cat"}},
		{"cat dog -cat rat -cat", []string{"dog", "rat"}, []string{"cat"}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			plan, err := Parse(tt.query, tokenizer.StopWords{})
			require.NoError(t, err)
			assert.Equal(t, tt.wantTerms, plan.Terms)
			assert.Equal(t, tt.wantExclude, plan.ExcludeTerms)
		})
	}
}
