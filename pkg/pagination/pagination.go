package pagination

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

const (
	DefaultLimit = 20
	MaxLimit     = 500
)

// Params holds pagination and ordering parameters extracted from a request.
type Params struct {
	Limit  int
	Offset int
	Sort   string // field name, empty for the dataset's natural order
	Desc   bool
}

// FromContext extracts ?limit, ?offset and ?sort. A leading "-" on sort
// requests descending order.
func FromContext(c echo.Context) Params {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	if offset < 0 {
		offset = 0
	}

	p := Params{Limit: limit, Offset: offset}
	if s := strings.TrimSpace(c.QueryParam("sort")); s != "" {
		p.Sort, p.Desc = strings.TrimPrefix(s, "-"), strings.HasPrefix(s, "-")
	}
	return p
}

// Response wraps a paginated API response.
type Response struct {
	Data    interface{} `json:"data"`
	Total   int         `json:"total"`
	Limit   int         `json:"limit"`
	Offset  int         `json:"offset"`
	HasMore bool        `json:"has_more"`
	Links   *Links      `json:"links,omitempty"`
}

func NewResponse(data interface{}, total, limit, offset int) *Response {
	return &Response{
		Data:    data,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: offset+limit < total,
	}
}

// HasNext returns true if there are more results after the current page.
func (p Params) HasNext(total int) bool {
	return p.Offset+p.Limit < total
}

// HasPrevious returns true if there are results before the current page.
func (p Params) HasPrevious() bool {
	return p.Offset > 0
}

// NextOffset returns the offset for the next page.
func (p Params) NextOffset() int {
	return p.Offset + p.Limit
}

// PreviousOffset returns the offset for the previous page, never negative.
func (p Params) PreviousOffset() int {
	prev := p.Offset - p.Limit
	if prev < 0 {
		return 0
	}
	return prev
}

// Links are navigation URLs for a page of results.
type Links struct {
	Self string `json:"self"`
	Next string `json:"next,omitempty"`
	Prev string `json:"prev,omitempty"`
}

func (p Params) url(basePath string, offset int) string {
	u := fmt.Sprintf("%s?offset=%d&limit=%d", basePath, offset, p.Limit)
	if p.Sort != "" {
		sort := p.Sort
		if p.Desc {
			sort = "-" + sort
		}
		u += "&sort=" + sort
	}
	return u
}

// Links builds self/next/prev URLs for basePath.
func (p Params) Links(basePath string, total int) *Links {
	l := &Links{Self: p.url(basePath, p.Offset)}
	if p.HasNext(total) {
		l.Next = p.url(basePath, p.NextOffset())
	}
	if p.HasPrevious() {
		l.Prev = p.url(basePath, p.PreviousOffset())
	}
	return l
}

// Page is NewResponse with links attached.
func (p Params) Page(data interface{}, total int, basePath string) *Response {
	r := NewResponse(data, total, p.Limit, p.Offset)
	r.Links = p.Links(basePath, total)
	return r
}
