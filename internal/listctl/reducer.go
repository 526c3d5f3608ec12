package listctl

// Options configures a new State.
type Options struct {
	PageSize int

	// Dedupe drops items whose id is already in the list when appending a
	// page. Off by default: overlapping concat requests can produce
	// duplicates, and whether that should be hidden is a product decision.
	Dedupe bool
}

// State is the local list state owned by one picker. The zero value is not
// usable; build it with New.
type State struct {
	Page       int
	PageSize   int
	SearchTerm string
	Items      []Item
	Pagination Pagination
	Loading    bool

	// known is false until the first successful fetch. Before that the
	// totals are meaningless and must not mark the list as exhausted.
	known  bool
	seq    uint64
	dedupe bool

	// fetched counts rows received for the current term, before
	// de-duplication, so dropped duplicates cannot hold off exhaustion.
	fetched int
}

// New returns an idle State on page 1.
func New(opts Options) State {
	size := opts.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	return State{
		Page:     1,
		PageSize: size,
		dedupe:   opts.Dedupe,
	}
}

// Mount performs the implicit initial load: page 1, no search term.
func (s State) Mount() (State, FetchRequest) {
	return s.Search("")
}

// Search resets to page 1 and requests a replacement list for term. It is not
// guarded by Loading: a newer search supersedes whatever is in flight.
func (s State) Search(term string) (State, FetchRequest) {
	s.Page = 1
	s.SearchTerm = term
	s.Loading = true
	s.seq++
	return s, FetchRequest{
		Seq:      s.seq,
		Page:     s.Page,
		PageSize: s.PageSize,
		Term:     term,
		Concat:   false,
	}
}

// LoadMore requests the next page. ok is false (and the state unchanged) while
// a fetch is in flight or once every page has been loaded.
func (s State) LoadMore() (next State, req FetchRequest, ok bool) {
	if s.Loading || s.Exhausted() {
		return s, FetchRequest{}, false
	}
	s.Page++
	s.Loading = true
	s.seq++
	return s, FetchRequest{
		Seq:      s.seq,
		Page:     s.Page,
		PageSize: s.PageSize,
		Term:     s.SearchTerm,
		Concat:   true,
	}, true
}

// Exhausted reports whether the last known page has been loaded.
func (s State) Exhausted() bool {
	if !s.known {
		return false
	}
	return s.fetched >= s.Pagination.TotalElements && s.Page >= s.Pagination.TotalPages
}

// Succeed applies a successful response. Responses to anything but the most
// recently issued request are discarded and applied is false.
func (s State) Succeed(req FetchRequest, resp FetchResponse, selected Selected) (next State, applied bool) {
	if req.Seq != s.seq {
		return s, false
	}

	var items []Item
	if req.Concat {
		items = make([]Item, 0, len(s.Items)+len(resp.Content))
		items = append(items, s.Items...)
		items = append(items, resp.Content...)
		if s.dedupe {
			items = DedupeByID(items)
		}
		s.fetched += len(resp.Content)
	} else {
		items = make([]Item, len(resp.Content))
		copy(items, resp.Content)
		s.fetched = len(resp.Content)
	}

	s.Items = MarkAlreadyAdded(items, selected)
	s.Pagination = resp.Page
	s.known = true
	s.Loading = false
	return s, true
}

// Fail settles the current request without touching the items. Failures of
// superseded requests are discarded so they cannot clear Loading for a newer
// fetch.
func (s State) Fail(req FetchRequest) (next State, applied bool) {
	if req.Seq != s.seq {
		return s, false
	}
	s.Loading = false
	return s, true
}

// Seq returns the sequence number of the most recently issued request.
func (s State) Seq() uint64 {
	return s.seq
}

// MarkAlreadyAdded sets AlreadyAdded on every item, true exactly when its id
// is in selected. It writes into items in place and returns it.
func MarkAlreadyAdded(items []Item, selected Selected) []Item {
	for i := range items {
		items[i].AlreadyAdded = selected.Has(items[i].ID)
	}
	return items
}

// DedupeByID removes later occurrences of an id, keeping the first one and
// the original order.
func DedupeByID(items []Item) []Item {
	seen := make(map[int64]struct{}, len(items))
	out := items[:0]
	for _, it := range items {
		if _, dup := seen[it.ID]; dup {
			continue
		}
		seen[it.ID] = struct{}{}
		out = append(out, it)
	}
	return out
}
