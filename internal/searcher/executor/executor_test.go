package executor

import (
	"testing"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/ranker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixture() (*index.InvertedIndex, *index.DocumentStore) {
	ii := index.NewInvertedIndex()
	store := index.NewDocumentStore()
	add := func(id int, status index.Status, rating int, freqs index.WordFrequencies) {
		store.Add(index.Document{ID: id, Status: status, Rating: rating}, freqs)
		ii.AddDocument(id, freqs)
	}
	add(0, index.StatusActual, 5, index.WordFrequencies{"white": 0.5, "cat": 0.5})
	add(1, index.StatusActual, 2, index.WordFrequencies{"fluffy": 0.5, "cat": 0.5})
	add(2, index.StatusBanned, 9, index.WordFrequencies{"groomed": 0.5, "dog": 0.5})
	add(3, index.StatusActual, 1, index.WordFrequencies{"fluffy": 0.5, "dog": 0.5})
	return ii, store
}

func plan(t *testing.T, q string) *parser.QueryPlan {
	t.Helper()
	p, err := parser.Parse(q, tokenizer.StopWords{})
	require.NoError(t, err)
	return p
}

func byID(docs []ranker.ScoredDoc) map[int]ranker.ScoredDoc {
	out := make(map[int]ranker.ScoredDoc, len(docs))
	for _, d := range docs {
		out[d.ID] = d
	}
	return out
}

func TestExecuteScoresTFIDF(t *testing.T) {
	ii, store := fixture()
	got := byID(Execute(plan(t, "fluffy cat"), ii, store, nil))

	require.Len(t, got, 3)
	idf := ranker.ComputeIDF(4, 2)
	assert.InDelta(t, 0.5*idf+0.5*idf, got[1].Relevance, 1e-9)
	assert.InDelta(t, 0.5*idf, got[0].Relevance, 1e-9)
	assert.InDelta(t, 0.5*idf, got[3].Relevance, 1e-9)
	assert.Equal(t, 2, got[1].Rating)
}

func TestExecuteMinusTermsExclude(t *testing.T) {
	ii, store := fixture()
	got := byID(Execute(plan(t, "fluffy cat -dog"), ii, store, nil))
	assert.Len(t, got, 2)
	assert.NotContains(t, got, 3)
}

func TestExecutePredicate(t *testing.T) {
	ii, store := fixture()
	got := Execute(plan(t, "dog"), ii, store, WithStatus(index.StatusBanned))
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].ID)

	got = Execute(plan(t, "fluffy cat dog"), ii, store, func(id int, _ index.Status, _ int) bool { return id%2 == 0 })
	assert.ElementsMatch(t, []int{0, 2}, ids(got))
}

func TestExecuteUnknownTerms(t *testing.T) {
	ii, store := fixture()
	assert.Empty(t, Execute(plan(t, "parrot -cat"), ii, store, Any))
}

func ids(docs []ranker.ScoredDoc) []int {
	out := make([]int, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.ID)
	}
	return out
}
