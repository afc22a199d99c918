// internal/data/pagination.go
package data

import (
	"net/url"
	"strconv"
)

const (
	DefaultPageSize = 5
	MaxPageSize     = 100
)

// Pagination holds the page window requested by a client.
type Pagination struct {
	Page     int // 1-indexed
	PageSize int
}

// ParsePagination reads "page" and "page_size" from qs. A missing page means
// the first page; a page that is not a positive integer is ErrInvalidPage.
// A missing or unusable page_size falls back to DefaultPageSize and large
// values are capped at MaxPageSize.
func ParsePagination(qs url.Values) (Pagination, error) {
	p := Pagination{Page: 1, PageSize: DefaultPageSize}

	if s := qs.Get("page"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return p, ErrInvalidPage
		}
		p.Page = n
	}

	if s := qs.Get("page_size"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			p.PageSize = min(n, MaxPageSize)
		}
	}
	return p, nil
}

func (p Pagination) limit() int  { return p.PageSize }
func (p Pagination) offset() int { return (p.Page - 1) * p.PageSize }

// lastPage is the highest valid page number for total records. An empty
// result set still has a (blank) first page.
func (p Pagination) lastPage(total int) int {
	if total == 0 {
		return 1
	}
	return (total + p.PageSize - 1) / p.PageSize
}

// Check returns ErrInvalidPage when p lies beyond the last page for total.
func (p Pagination) Check(total int) error {
	if p.Page > p.lastPage(total) {
		return ErrInvalidPage
	}
	return nil
}

// PageMetadata contains the navigation information returned alongside
// list responses. Nil links are encoded as JSON null.
type PageMetadata struct {
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Count    int     `json:"count"`
}

// CalculateMetadata builds navigation links relative to base, the URL of
// the current request.
func CalculateMetadata(base *url.URL, p Pagination, total int) PageMetadata {
	meta := PageMetadata{Count: total}

	if p.Page < p.lastPage(total) {
		next := pageLink(base, p.Page+1)
		meta.Next = &next
	}
	if p.Page > 1 {
		prev := pageLink(base, p.Page-1)
		meta.Previous = &prev
	}
	return meta
}

func pageLink(base *url.URL, page int) string {
	u := *base
	qs := u.Query()
	if page == 1 {
		qs.Del("page")
	} else {
		qs.Set("page", strconv.Itoa(page))
	}
	u.RawQuery = qs.Encode()
	return u.String()
}
