// Package paging holds the page-number arithmetic shared by the REST client,
// the navigation state and the paged table view.
package paging

import (
	"math"
	"strconv"
	"strings"
)

// DefaultPageSize is the number of rows every list screen requests.
const DefaultPageSize = 10

// Request identifies one page of a collection. Page is 1-based.
type Request struct {
	Page int
}

// Result is one page of a server-side collection together with the total
// number of items the server holds.
type Result[T any] struct {
	Items []T
	Count int
}

// Normalize coerces a raw page value coming from navigation state into a
// Request. Missing, non-integer and sub-1 values all become page 1.
func Normalize(raw any) Request {
	page := 1
	switch v := raw.(type) {
	case int:
		page = v
	case int64:
		page = int(v)
	case float64:
		switch {
		case v >= float64(math.MaxInt):
			page = math.MaxInt
		case v == math.Trunc(v) && !math.IsInf(v, 0) && !math.IsNaN(v):
			page = int(v)
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			page = n
		}
	case []string:
		if len(v) > 0 {
			return Normalize(v[0])
		}
	}
	if page < 1 {
		page = 1
	}
	return Request{Page: page}
}

// Offset returns the number of items to skip for this page. It saturates at
// math.MaxInt, so a far-off page reads as past the end.
func (r Request) Offset(pageSize int) int {
	if r.Page < 1 || pageSize <= 0 {
		return 0
	}
	if r.Page-1 > math.MaxInt/pageSize {
		return math.MaxInt
	}
	return (r.Page - 1) * pageSize
}

// TotalPages returns how many pages are needed to show count items.
// An empty collection still has one (empty) page.
func TotalPages(count, pageSize int) int {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if count <= 0 {
		return 1
	}
	return (count + pageSize - 1) / pageSize
}

// Clamp keeps page inside [1, total].
func Clamp(page, total int) int {
	if total < 1 {
		total = 1
	}
	if page < 1 {
		return 1
	}
	if page > total {
		return total
	}
	return page
}

// Ellipsis marks a gap in the slice returned by Window.
const Ellipsis = 0

// Window returns the page numbers a bounded pager shows: the first and last
// page, the current page with `siblings` neighbours on each side, and
// Ellipsis entries where pages are skipped.
func Window(current, total, siblings int) []int {
	if total < 1 {
		total = 1
	}
	if siblings < 0 {
		siblings = 0
	}
	current = Clamp(current, total)

	// first, last, current and two gaps
	slots := siblings*2 + 5
	if total <= slots {
		return span(1, total)
	}

	left := max(current-siblings, 1)
	right := min(current+siblings, total)
	leftGap := left > 2
	rightGap := right < total-1
	edge := 3 + 2*siblings

	switch {
	case !leftGap && rightGap:
		return append(span(1, edge), Ellipsis, total)
	case leftGap && !rightGap:
		return append([]int{1, Ellipsis}, span(total-edge+1, total)...)
	default:
		out := []int{1, Ellipsis}
		out = append(out, span(left, right)...)
		return append(out, Ellipsis, total)
	}
}

func span(from, to int) []int {
	out := make([]int, 0, to-from+1)
	for i := from; i <= to; i++ {
		out = append(out, i)
	}
	return out
}
