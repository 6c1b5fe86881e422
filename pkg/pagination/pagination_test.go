package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromRequest(t *testing.T) {
	tests := []struct {
		query   string
		page    int
		perPage int
		offset  int
	}{
		{"", 1, 20, 0},
		{"?page=3&per_page=50", 3, 50, 100},
		{"?page=-1", 1, 20, 0},
		{"?page=abc", 1, 20, 0},
		{"?per_page=200", 1, 20, 0},
		{"?per_page=100", 1, 100, 0},
		{"?per_page=0", 1, 20, 0},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/products"+tt.query, nil)
			p := FromRequest(req)
			assert.Equal(t, tt.page, p.Page)
			assert.Equal(t, tt.perPage, p.PerPage)
			assert.Equal(t, tt.offset, p.Offset)
		})
	}
}

func TestNewResult(t *testing.T) {
	r := NewResult([]string{"a", "b"}, 5, Params{Page: 2, PerPage: 2, Offset: 2})

	assert.Equal(t, 3, r.TotalPages)
	assert.True(t, r.HasNext)
	assert.True(t, r.HasPrev)
}

func TestNewResult_NilData(t *testing.T) {
	r := NewResult[int](nil, 0, DefaultParams())

	assert.NotNil(t, r.Data)
	assert.Empty(t, r.Data)
	assert.Equal(t, 0, r.TotalPages)
	assert.False(t, r.HasNext)
}

func TestSlice(t *testing.T) {
	all := []int{1, 2, 3, 4, 5, 6}

	first := Slice(all, Params{Page: 1, PerPage: 4, Offset: 0})
	assert.Equal(t, []int{1, 2, 3, 4}, first.Data)
	assert.Equal(t, 6, first.TotalCount)
	assert.True(t, first.HasNext)

	last := Slice(all, Params{Page: 2, PerPage: 4, Offset: 4})
	assert.Equal(t, []int{5, 6}, last.Data)
	assert.False(t, last.HasNext)

	beyond := Slice(all, Params{Page: 9, PerPage: 4, Offset: 32})
	assert.Empty(t, beyond.Data)
	assert.Equal(t, 2, beyond.TotalPages)
}
