package paginator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_ThirteenItems(t *testing.T) {
	first := New(13, PostsPerPage, "")
	assert.Equal(t, 1, first.Number)
	assert.Equal(t, 2, first.TotalPages)
	assert.Equal(t, 0, first.Offset())
	assert.Equal(t, 10, first.Limit())
	assert.True(t, first.HasNext())
	assert.False(t, first.HasPrevious())

	second := New(13, PostsPerPage, "2")
	assert.Equal(t, 2, second.Number)
	assert.Equal(t, 10, second.Offset())
	assert.False(t, second.HasNext())
	assert.True(t, second.HasPrevious())
	assert.Equal(t, 1, second.PreviousNumber())
	assert.Equal(t, 0, second.NextNumber())
}

func TestNew_TotalPages(t *testing.T) {
	cases := map[int]int{0: 1, 1: 1, 10: 1, 11: 2, 20: 2, 21: 3, 100: 10}
	for count, want := range cases {
		assert.Equal(t, want, New(count, PostsPerPage, "1").TotalPages, "count=%d", count)
	}
}

func TestNew_Clamping(t *testing.T) {
	assert.Equal(t, 2, New(13, PostsPerPage, "99").Number)
	// Ноль и отрицательные номера тоже вне диапазона: отдаётся последняя страница
	assert.Equal(t, 2, New(13, PostsPerPage, "0").Number)
	assert.Equal(t, 2, New(13, PostsPerPage, "-3").Number)
	assert.Equal(t, 1, New(13, PostsPerPage, "abc").Number)
	assert.Equal(t, 1, New(13, PostsPerPage, "").Number)
	assert.Equal(t, 1, New(0, PostsPerPage, "5").Number)
	assert.Equal(t, 1, New(0, PostsPerPage, "0").Number)
}

func TestSlice(t *testing.T) {
	items := make([]int, 13)
	for i := range items {
		items[i] = i
	}

	p1 := New(len(items), PostsPerPage, "1")
	assert.Len(t, Slice(items, p1.Offset(), p1.Limit()), 10)

	p2 := New(len(items), PostsPerPage, "2")
	page := Slice(items, p2.Offset(), p2.Limit())
	assert.Equal(t, []int{10, 11, 12}, page)

	assert.Empty(t, Slice(items, 20, 10))
	assert.Empty(t, Slice([]int{}, 0, 10))
}
