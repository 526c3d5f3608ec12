// Package listctl drives a remote-backed, paginated, searchable selection
// list: page tracking, replace-vs-append of results, already-added marking
// and stale response detection.
//
// All transitions are pure methods on State. They return the next State and,
// where a trigger needs data, the FetchRequest to issue. Running the fetch is
// the caller's job (the picker does it inside a tea.Cmd).
package listctl

import "context"

// DefaultPageSize matches the page size the web UI requests for list sections.
const DefaultPageSize = 10

// Item is a single selectable list row.
type Item struct {
	ID          int64
	Name        string
	Owner       string
	Description string
	Kind        string // widget type or filter object type
	Shared      bool

	// AlreadyAdded is derived from the caller's selected set on every
	// successful fetch. It is never sent back to the server.
	AlreadyAdded bool
}

// Pagination is the page metadata returned with every list response.
type Pagination struct {
	TotalElements int
	TotalPages    int
}

// FetchRequest describes one page to load.
type FetchRequest struct {
	Seq      uint64 // Monotonically increasing, for stale response detection
	Page     int    // 1-based
	PageSize int
	Term     string // Empty means "no search"
	Concat   bool   // Append the result instead of replacing the list
}

// FetchResponse carries one page back from a Fetcher.
type FetchResponse struct {
	Content []Item
	Page    Pagination
}

// Fetcher loads a page of items. Implementations pick their endpoint based on
// whether req.Term is empty.
type Fetcher interface {
	Fetch(ctx context.Context, req FetchRequest) (FetchResponse, error)
}

// FetcherFunc adapts a plain function to Fetcher.
type FetcherFunc func(ctx context.Context, req FetchRequest) (FetchResponse, error)

// Fetch implements Fetcher.
func (f FetcherFunc) Fetch(ctx context.Context, req FetchRequest) (FetchResponse, error) {
	return f(ctx, req)
}

// Selected is the read-only set of ids already chosen elsewhere (for example
// the widgets already on a dashboard).
type Selected map[int64]struct{}

// NewSelected builds a Selected set from ids.
func NewSelected(ids ...int64) Selected {
	s := make(Selected, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports whether id is in the set. A nil set contains nothing.
func (s Selected) Has(id int64) bool {
	_, ok := s[id]
	return ok
}

// IDs returns the ids in the set in no particular order.
func (s Selected) IDs() []int64 {
	ids := make([]int64, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	return ids
}
