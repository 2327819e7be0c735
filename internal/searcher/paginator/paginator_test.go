package paginator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	tests := []struct {
		name string
		size int
		want [][]int
	}{
		{"exact", 5, [][]int{{1, 2, 3, 4, 5}}},
		{"uneven", 2, [][]int{{1, 2}, {3, 4}, {5}}},
		{"size one", 1, [][]int{{1}, {2}, {3}, {4}, {5}}},
		{"larger than input", 10, [][]int{{1, 2, 3, 4, 5}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pages := Paginate(items, tt.size)
			assert.Len(t, pages, len(tt.want))
			assert.Equal(t, len(tt.want), Count(len(items), tt.size))
			for i, p := range pages {
				assert.Equal(t, i+1, p.Number)
				assert.Equal(t, tt.want[i], p.Items)
				assert.Equal(t, len(tt.want[i]), p.Len())
			}
		})
	}
}

func TestPaginateDegenerate(t *testing.T) {
	assert.Empty(t, Paginate([]int{1, 2}, 0))
	assert.Empty(t, Paginate([]int{1, 2}, -3))
	assert.Empty(t, Paginate([]int{}, 2))
	assert.Zero(t, Count(0, 2))
	assert.Zero(t, Count(3, 0))
}

func TestPagesRestartAndStop(t *testing.T) {
	seq := Pages([]string{"a", "b", "c"}, 2)

	var first int
	for range seq {
		first++
		break
	}
	assert.Equal(t, 1, first)

	var all []Page[string]
	for p := range seq {
		all = append(all, p)
	}
	assert.Len(t, all, 2)
	assert.Equal(t, []string{"c"}, all[1].Items)
}

func TestPageItemsDoNotAliasAppends(t *testing.T) {
	items := []int{1, 2, 3, 4}
	pages := Paginate(items, 2)
	_ = append(pages[0].Items, 99)
	assert.Equal(t, []int{1, 2, 3, 4}, items)
}
