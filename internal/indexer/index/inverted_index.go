package index

// InvertedIndex maps each term to the documents containing it and the
// term's frequency in each of them. A term is present only while at least
// one document holds it.
type InvertedIndex struct {
	index map[string]map[int]float64
}

func NewInvertedIndex() *InvertedIndex {
	return &InvertedIndex{
		index: make(map[string]map[int]float64),
	}
}

// AddDocument records every term of freqs under docID.
func (m *InvertedIndex) AddDocument(docID int, freqs WordFrequencies) {
	for term, freq := range freqs {
		docs, exists := m.index[term]
		if !exists {
			docs = make(map[int]float64)
			m.index[term] = docs
		}
		docs[docID] = freq
	}
}

// RemoveDocument drops docID from the posting list of every given term and
// drops terms left without postings.
func (m *InvertedIndex) RemoveDocument(docID int, terms WordFrequencies) {
	for term := range terms {
		docs, exists := m.index[term]
		if !exists {
			continue
		}
		delete(docs, docID)
		if len(docs) == 0 {
			delete(m.index, term)
		}
	}
}

// Postings returns the raw doc->frequency map for term, or nil. Callers must
// not modify it.
func (m *InvertedIndex) Postings(term string) map[int]float64 {
	return m.index[term]
}

// DocFreq returns how many documents contain term.
func (m *InvertedIndex) DocFreq(term string) int {
	return len(m.index[term])
}

// Contains reports whether docID has a posting for term.
func (m *InvertedIndex) Contains(term string, docID int) bool {
	_, ok := m.index[term][docID]
	return ok
}

// TermCount returns the number of distinct indexed terms.
func (m *InvertedIndex) TermCount() int {
	return len(m.index)
}
