// Package indexer holds the search engine core: it ingests documents into an
// inverted index and a document store kept consistent with each other, and
// answers ranked and matching queries over them.
//
// An Engine is not safe for concurrent use; callers serialize access.
package indexer

import (
	"context"
	"slices"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/ranker"
	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/tracing"
)

type Engine struct {
	stopWords tokenizer.StopWords
	index     *index.InvertedIndex
	store     *index.DocumentStore
}

// Stats is a point-in-time summary of the engine's contents.
type Stats struct {
	Documents int `json:"documents"`
	Terms     int `json:"terms"`
	StopWords int `json:"stop_words"`
}

func NewEngine(stopWords tokenizer.StopWords) *Engine {
	return &Engine{
		stopWords: stopWords,
		index:     index.NewInvertedIndex(),
		store:     index.NewDocumentStore(),
	}
}

// NewEngineFromText builds an engine whose stop words are the
// space-delimited words of text.
func NewEngineFromText(stopWordsText string) (*Engine, error) {
	sw, err := tokenizer.ParseStopWords(stopWordsText)
	if err != nil {
		return nil, err
	}
	return NewEngine(sw), nil
}

// NewEngineFromWords builds an engine from a pre-tokenized stop-word list.
func NewEngineFromWords(stopWords []string) (*Engine, error) {
	sw, err := tokenizer.NewStopWords(stopWords)
	if err != nil {
		return nil, err
	}
	return NewEngine(sw), nil
}

// AddDocument indexes text under id. It fails with ErrInvalidArgument, and
// leaves the engine untouched, if id is negative or already live, if status
// is not one of the four known statuses or if any word of text contains a
// control character.
func (e *Engine) AddDocument(id int, text string, status index.Status, ratings []int) error {
	if id < 0 {
		return apperrors.InvalidArgumentf("document id %d is negative", id)
	}
	if !status.Valid() {
		return apperrors.InvalidArgumentf("document %d has unknown status %d", id, int(status))
	}
	if e.store.Has(id) {
		return apperrors.InvalidArgumentf("document id %d already exists", id)
	}
	words, err := e.stopWords.SplitNoStop(text)
	if err != nil {
		return err
	}
	freqs := make(index.WordFrequencies, len(words))
	if len(words) > 0 {
		inv := 1.0 / float64(len(words))
		for _, w := range words {
			freqs[w] += inv
		}
	}
	e.store.Add(index.Document{
		ID:     id,
		Rating: averageRating(ratings),
		Status: status,
	}, freqs)
	e.index.AddDocument(id, freqs)
	return nil
}

// RemoveDocument deletes a live document from the store and the index.
// Removing an id that is not live is a no-op and returns false.
func (e *Engine) RemoveDocument(id int) bool {
	freqs, ok := e.store.Remove(id)
	if !ok {
		return false
	}
	e.index.RemoveDocument(id, freqs)
	return true
}

func (e *Engine) GetDocumentCount() int {
	return e.store.Len()
}

// DocumentIDs returns the live document ids in insertion order.
func (e *Engine) DocumentIDs() []int {
	return e.store.IDs()
}

// GetDocumentID returns the id at position i of the insertion order.
func (e *Engine) GetDocumentID(i int) (int, error) {
	id, ok := e.store.At(i)
	if !ok {
		return 0, apperrors.NotFoundf("no document at position %d of %d", i, e.store.Len())
	}
	return id, nil
}

// Document returns the metadata of a live document.
func (e *Engine) Document(id int) (index.Document, error) {
	doc, ok := e.store.Get(id)
	if !ok {
		return index.Document{}, apperrors.NotFoundf("document %d", id)
	}
	return doc, nil
}

// GetWordFrequencies returns the term frequencies of a live document. The
// map is owned by the engine and must not be modified.
func (e *Engine) GetWordFrequencies(id int) (index.WordFrequencies, error) {
	freqs, ok := e.store.Frequencies(id)
	if !ok {
		return nil, apperrors.NotFoundf("document %d", id)
	}
	return freqs, nil
}

// StopWords returns the engine's stop-word set.
func (e *Engine) StopWords() tokenizer.StopWords {
	return e.stopWords
}

func (e *Engine) Stats() Stats {
	return Stats{
		Documents: e.store.Len(),
		Terms:     e.index.TermCount(),
		StopWords: e.stopWords.Len(),
	}
}

// ParseQuery parses rawQuery with the engine's stop words.
func (e *Engine) ParseQuery(rawQuery string) (*parser.QueryPlan, error) {
	return parser.Parse(rawQuery, e.stopWords)
}

// FindTopDocumentsFunc returns at most ranker.MaxResultDocumentCount
// documents ranked by TF-IDF relevance, considering only documents accepted
// by pred.
func (e *Engine) FindTopDocumentsFunc(rawQuery string, pred executor.Predicate) ([]ranker.ScoredDoc, error) {
	plan, err := e.ParseQuery(rawQuery)
	if err != nil {
		return nil, err
	}
	return e.FindTopDocumentsPlan(context.Background(), plan, pred), nil
}

// FindTopDocumentsPlan ranks an already parsed plan. When ctx carries a
// tracing span, the execute and rank steps are recorded under it.
func (e *Engine) FindTopDocumentsPlan(ctx context.Context, plan *parser.QueryPlan, pred executor.Predicate) []ranker.ScoredDoc {
	_, execSpan := tracing.StartChild(ctx, "execute")
	matched := executor.Execute(plan, e.index, e.store, pred)
	execSpan.SetAttr("candidates", len(matched))
	execSpan.End()

	_, rankSpan := tracing.StartChild(ctx, "rank")
	top := ranker.Rank(matched, ranker.MaxResultDocumentCount)
	rankSpan.SetAttr("returned", len(top))
	rankSpan.End()
	return top
}

// FindTopDocumentsWithStatus ranks only documents with the given status.
func (e *Engine) FindTopDocumentsWithStatus(rawQuery string, status index.Status) ([]ranker.ScoredDoc, error) {
	return e.FindTopDocumentsFunc(rawQuery, executor.WithStatus(status))
}

// FindTopDocuments ranks only ACTUAL documents.
func (e *Engine) FindTopDocuments(rawQuery string) ([]ranker.ScoredDoc, error) {
	return e.FindTopDocumentsWithStatus(rawQuery, index.StatusActual)
}

// MatchDocument returns the plus terms of rawQuery present in document id,
// sorted, or no terms if any minus term is present, along with the
// document's status.
func (e *Engine) MatchDocument(rawQuery string, id int) ([]string, index.Status, error) {
	doc, ok := e.store.Get(id)
	if !ok {
		return nil, 0, apperrors.NotFoundf("document %d", id)
	}
	plan, err := e.ParseQuery(rawQuery)
	if err != nil {
		return nil, 0, err
	}
	matched := make([]string, 0, len(plan.Terms))
	for _, term := range plan.ExcludeTerms {
		if e.index.Contains(term, id) {
			return matched, doc.Status, nil
		}
	}
	for _, term := range plan.Terms {
		if e.index.Contains(term, id) {
			matched = append(matched, term)
		}
	}
	slices.Sort(matched)
	return matched, doc.Status, nil
}

// averageRating is the floor of the mean of ratings, or 0 for none.
func averageRating(ratings []int) int {
	if len(ratings) == 0 {
		return 0
	}
	var sum int64
	for _, r := range ratings {
		sum += int64(r)
	}
	n := int64(len(ratings))
	avg := sum / n
	if sum%n != 0 && sum < 0 {
		avg--
	}
	return int(avg)
}
