package ranker

import (
	"math"
	"sort"
)

const (
	// MaxResultDocumentCount caps how many documents a query returns.
	MaxResultDocumentCount = 5
	// RelevanceEpsilon is the distance below which two relevances tie.
	RelevanceEpsilon = 1e-6
)

type ScoredDoc struct {
	ID        int     `json:"id"`
	Relevance float64 `json:"relevance"`
	Rating    int     `json:"rating"`
}

// Less orders a before b: higher relevance first, relevances within
// RelevanceEpsilon fall back to higher rating, then lower id.
func Less(a, b ScoredDoc) bool {
	if math.Abs(a.Relevance-b.Relevance) >= RelevanceEpsilon {
		return a.Relevance > b.Relevance
	}
	if a.Rating != b.Rating {
		return a.Rating > b.Rating
	}
	return a.ID < b.ID
}

// Rank sorts docs in place and truncates them to limit. A non-positive
// limit keeps everything.
func Rank(docs []ScoredDoc, limit int) []ScoredDoc {
	sort.SliceStable(docs, func(i, j int) bool {
		return Less(docs[i], docs[j])
	})
	if limit > 0 && len(docs) > limit {
		docs = docs[:limit]
	}
	return docs
}

// ComputeIDF returns ln(totalDocs/docFreq), or 0 when either count is not
// positive.
func ComputeIDF(totalDocs int, docFreq int) float64 {
	if totalDocs <= 0 || docFreq <= 0 {
		return 0
	}
	return math.Log(float64(totalDocs) / float64(docFreq))
}
