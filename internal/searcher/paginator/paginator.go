// Package paginator slices an already-ranked result list into fixed-size
// pages. It never reorders items.
package paginator

import "iter"

// Page is a view of consecutive items of the paginated slice.
type Page[T any] struct {
	Number int `json:"page"`
	Items  []T `json:"items"`
}

func (p Page[T]) Len() int {
	return len(p.Items)
}

// Pages yields the pages of items in order, numbering them from 1. The last
// page may be shorter. A non-positive pageSize yields nothing. Ranging over
// the sequence again starts from the first page.
func Pages[T any](items []T, pageSize int) iter.Seq[Page[T]] {
	return func(yield func(Page[T]) bool) {
		if pageSize <= 0 {
			return
		}
		number := 1
		for start := 0; start < len(items); start += pageSize {
			end := min(start+pageSize, len(items))
			if !yield(Page[T]{Number: number, Items: items[start:end:end]}) {
				return
			}
			number++
		}
	}
}

// Paginate collects Pages into a slice.
func Paginate[T any](items []T, pageSize int) []Page[T] {
	var pages []Page[T]
	for p := range Pages(items, pageSize) {
		pages = append(pages, p)
	}
	return pages
}

// Count returns how many pages Pages would yield.
func Count(total, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}
