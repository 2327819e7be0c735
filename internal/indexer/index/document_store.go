package index

import "slices"

type storedDocument struct {
	meta  Document
	freqs WordFrequencies
}

// DocumentStore owns live documents: their metadata, their own
// term-frequency maps and the order in which they were added.
type DocumentStore struct {
	docs map[int]*storedDocument
	ids  []int
}

func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		docs: make(map[int]*storedDocument),
	}
}

// Add stores a document. The caller guarantees the id is not live.
func (s *DocumentStore) Add(doc Document, freqs WordFrequencies) {
	s.docs[doc.ID] = &storedDocument{meta: doc, freqs: freqs}
	s.ids = append(s.ids, doc.ID)
}

// Remove deletes a document and returns its frequency map.
func (s *DocumentStore) Remove(id int) (WordFrequencies, bool) {
	stored, ok := s.docs[id]
	if !ok {
		return nil, false
	}
	delete(s.docs, id)
	if i := slices.Index(s.ids, id); i >= 0 {
		s.ids = slices.Delete(s.ids, i, i+1)
	}
	return stored.freqs, true
}

func (s *DocumentStore) Has(id int) bool {
	_, ok := s.docs[id]
	return ok
}

func (s *DocumentStore) Get(id int) (Document, bool) {
	stored, ok := s.docs[id]
	if !ok {
		return Document{}, false
	}
	return stored.meta, true
}

// Frequencies returns the document's own term-frequency map. Callers must
// not modify it.
func (s *DocumentStore) Frequencies(id int) (WordFrequencies, bool) {
	stored, ok := s.docs[id]
	if !ok {
		return nil, false
	}
	return stored.freqs, true
}

// IDs returns live document ids in insertion order.
func (s *DocumentStore) IDs() []int {
	return slices.Clone(s.ids)
}

// At returns the id at position i of the insertion order.
func (s *DocumentStore) At(i int) (int, bool) {
	if i < 0 || i >= len(s.ids) {
		return 0, false
	}
	return s.ids[i], true
}

func (s *DocumentStore) Len() int {
	return len(s.docs)
}
