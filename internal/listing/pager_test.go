package listing

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTotalPages(t *testing.T) {
	tests := []struct {
		count, size, want int
	}{
		{0, 5, 1},
		{1, 5, 1},
		{5, 5, 1},
		{6, 5, 2},
		{11, 5, 3},
		{12, 5, 3},
		{16, 5, 4},
		{3, 0, 1},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d/%d", tt.count, tt.size), func(t *testing.T) {
			assert.Equal(t, tt.want, TotalPages(tt.count, tt.size))
		})
	}
}

func TestClampPage(t *testing.T) {
	assert.Equal(t, 1, ClampPage(0, 3))
	assert.Equal(t, 1, ClampPage(-4, 3))
	assert.Equal(t, 2, ClampPage(2, 3))
	assert.Equal(t, 3, ClampPage(9, 3))
	assert.Equal(t, 1, ClampPage(9, 0))
}

func TestPageBounds(t *testing.T) {
	start, end := PageBounds(3, 5, 12)
	assert.Equal(t, 10, start)
	assert.Equal(t, 12, end)

	start, end = PageBounds(1, 5, 0)
	assert.Equal(t, 0, start)
	assert.Equal(t, 0, end)

	start, end = PageBounds(4, 5, 12)
	assert.Equal(t, 12, start)
	assert.Equal(t, 12, end)
}

func pagerString(items []PageItem) string {
	s := ""
	for i, it := range items {
		if i > 0 {
			s += " "
		}
		if it.Gap {
			s += "…"
		} else {
			s += fmt.Sprint(it.Number)
		}
	}
	return s
}

func TestPageList(t *testing.T) {
	tests := []struct {
		cur, total int
		want       string
	}{
		{1, 1, "1"},
		{3, 7, "1 2 3 4 5 6 7"},
		{2, 10, "1 2 3 4 … 9 10"},
		{4, 10, "1 2 3 4 … 9 10"},
		{5, 10, "1 … 4 5 6 … 10"},
		{7, 10, "1 2 … 7 8 9 10"},
		{10, 10, "1 2 … 7 8 9 10"},
		{99, 10, "1 2 … 7 8 9 10"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d of %d", tt.cur, tt.total), func(t *testing.T) {
			assert.Equal(t, tt.want, pagerString(PageList(tt.cur, tt.total)))
		})
	}
}
