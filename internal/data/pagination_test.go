package data

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePagination(t *testing.T) {
	tests := []struct {
		query string
		want  Pagination
		err   error
	}{
		{"", Pagination{Page: 1, PageSize: 5}, nil},
		{"page=3&page_size=10", Pagination{Page: 3, PageSize: 10}, nil},
		{"page_size=1000", Pagination{Page: 1, PageSize: 100}, nil},
		{"page_size=0", Pagination{Page: 1, PageSize: 5}, nil},
		{"page_size=abc", Pagination{Page: 1, PageSize: 5}, nil},
		{"page=0", Pagination{}, ErrInvalidPage},
		{"page=last", Pagination{}, ErrInvalidPage},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			qs, err := url.ParseQuery(tt.query)
			require.NoError(t, err)

			got, err := ParsePagination(qs)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPagination_Check(t *testing.T) {
	p := Pagination{PageSize: 5}

	for page, want := range map[int]error{1: nil, 3: nil, 4: ErrInvalidPage} {
		p.Page = page
		assert.Equal(t, want, p.Check(12), "page %d", page)
	}

	p.Page = 1
	assert.NoError(t, p.Check(0), "an empty catalog still has a first page")
	p.Page = 2
	assert.ErrorIs(t, p.Check(0), ErrInvalidPage)
}

func TestCalculateMetadata(t *testing.T) {
	base, err := url.Parse("http://localhost:4000/v1/books?genre=Mystery&page=2&page_size=5")
	require.NoError(t, err)

	meta := CalculateMetadata(base, Pagination{Page: 2, PageSize: 5}, 12)

	assert.Equal(t, 12, meta.Count)
	require.NotNil(t, meta.Next)
	require.NotNil(t, meta.Previous)
	assert.Equal(t, "http://localhost:4000/v1/books?genre=Mystery&page=3&page_size=5", *meta.Next)
	assert.Equal(t, "http://localhost:4000/v1/books?genre=Mystery&page_size=5", *meta.Previous)

	last := CalculateMetadata(base, Pagination{Page: 3, PageSize: 5}, 12)
	assert.Nil(t, last.Next)

	first := CalculateMetadata(base, Pagination{Page: 1, PageSize: 5}, 3)
	assert.Nil(t, first.Next)
	assert.Nil(t, first.Previous)
}
