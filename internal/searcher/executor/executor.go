// Package executor evaluates a parsed query against the inverted index and
// document store, producing unsorted TF-IDF scored candidates.
package executor

import (
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/ranker"
)

// Predicate decides whether a document may contribute to a query's results.
type Predicate func(id int, status index.Status, rating int) bool

// WithStatus accepts documents whose status equals status.
func WithStatus(status index.Status) Predicate {
	return func(_ int, docStatus index.Status, _ int) bool {
		return docStatus == status
	}
}

// Any accepts every document.
func Any(int, index.Status, int) bool { return true }

// Execute scores every document matching at least one plus term and passing
// pred, then drops every document holding a minus term.
func Execute(plan *parser.QueryPlan, ii *index.InvertedIndex, store *index.DocumentStore, pred Predicate) []ranker.ScoredDoc {
	if pred == nil {
		pred = Any
	}
	totalDocs := store.Len()
	relevance := make(map[int]float64)
	for _, term := range plan.Terms {
		postings := ii.Postings(term)
		if len(postings) == 0 {
			continue
		}
		idf := ranker.ComputeIDF(totalDocs, ii.DocFreq(term))
		for docID, tf := range postings {
			doc, ok := store.Get(docID)
			if !ok {
				continue
			}
			if pred(docID, doc.Status, doc.Rating) {
				relevance[docID] += tf * idf
			}
		}
	}
	for _, term := range plan.ExcludeTerms {
		for docID := range ii.Postings(term) {
			delete(relevance, docID)
		}
	}
	result := make([]ranker.ScoredDoc, 0, len(relevance))
	for docID, score := range relevance {
		doc, _ := store.Get(docID)
		result = append(result, ranker.ScoredDoc{
			ID:        docID,
			Relevance: score,
			Rating:    doc.Rating,
		})
	}
	return result
}
