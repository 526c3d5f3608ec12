package listctl

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func items(ids ...int64) []Item {
	out := make([]Item, len(ids))
	for i, id := range ids {
		out[i] = Item{ID: id}
	}
	return out
}

func ids(list []Item) []int64 {
	out := make([]int64, len(list))
	for i, it := range list {
		out[i] = it.ID
	}
	return out
}

// loaded mounts a fresh state and applies resp to the initial request.
func loaded(t *testing.T, opts Options, resp FetchResponse, sel Selected) State {
	t.Helper()
	s, req := New(opts).Mount()
	s, applied := s.Succeed(req, resp, sel)
	require.True(t, applied)
	return s
}

func TestNew_Defaults(t *testing.T) {
	s := New(Options{})
	assert.Equal(t, 1, s.Page)
	assert.Equal(t, DefaultPageSize, s.PageSize)
	assert.False(t, s.Loading)
	assert.Empty(t, s.Items)
	assert.False(t, s.Exhausted(), "unknown totals must not read as exhausted")
}

func TestMount_IssuesFirstPage(t *testing.T) {
	s, req := New(Options{PageSize: 10}).Mount()

	assert.True(t, s.Loading)
	assert.Equal(t, 1, s.Page)
	want := FetchRequest{Seq: 1, Page: 1, PageSize: 10, Term: "", Concat: false}
	if diff := cmp.Diff(want, req); diff != "" {
		t.Errorf("mount request mismatch (-want +got):\n%s", diff)
	}
}

func TestScenario_EmptySearchSinglePage(t *testing.T) {
	s, req := New(Options{PageSize: 10}).Mount()
	assert.Equal(t, 1, req.Page)
	assert.Equal(t, 10, req.PageSize)
	assert.Empty(t, req.Term)

	s, applied := s.Succeed(req, FetchResponse{
		Content: items(1, 2),
		Page:    Pagination{TotalElements: 2, TotalPages: 1},
	}, nil)
	require.True(t, applied)

	assert.Equal(t, []int64{1, 2}, ids(s.Items))
	assert.False(t, s.Loading)

	next, _, ok := s.LoadMore()
	assert.False(t, ok)
	assert.Equal(t, s, next)
}

func TestSearch_ResetsPageAndReplacesItems(t *testing.T) {
	s := loaded(t, Options{PageSize: 2}, FetchResponse{
		Content: items(1, 2),
		Page:    Pagination{TotalElements: 6, TotalPages: 3},
	}, nil)

	s, req, ok := s.LoadMore()
	require.True(t, ok)
	s, _ = s.Succeed(req, FetchResponse{
		Content: items(3, 4),
		Page:    Pagination{TotalElements: 6, TotalPages: 3},
	}, nil)
	require.Equal(t, 2, s.Page)
	require.Len(t, s.Items, 4)

	s, req = s.Search("bug")
	assert.Equal(t, 1, s.Page)
	assert.Equal(t, "bug", s.SearchTerm)
	assert.True(t, s.Loading)
	assert.False(t, req.Concat)
	assert.Equal(t, "bug", req.Term)
	assert.Equal(t, 1, req.Page)

	s, applied := s.Succeed(req, FetchResponse{
		Content: items(9),
		Page:    Pagination{TotalElements: 1, TotalPages: 1},
	}, nil)
	require.True(t, applied)
	assert.Equal(t, []int64{9}, ids(s.Items))
}

func TestSearch_NotGuardedByLoading(t *testing.T) {
	s, first := New(Options{}).Mount()
	require.True(t, s.Loading)

	s, second := s.Search("b")
	assert.True(t, s.Loading)
	assert.Greater(t, second.Seq, first.Seq)
}

func TestLoadMore_NoOpWhileLoading(t *testing.T) {
	s, _ := New(Options{}).Mount()

	next, req, ok := s.LoadMore()
	assert.False(t, ok)
	assert.Equal(t, FetchRequest{}, req)
	assert.Equal(t, s, next)
}

func TestLoadMore_ExhaustionGuard(t *testing.T) {
	tests := []struct {
		name   string
		page   Pagination
		count  int
		wantOK bool
	}{
		{name: "all items and pages loaded", page: Pagination{TotalElements: 3, TotalPages: 1}, count: 3, wantOK: false},
		{name: "more pages remain", page: Pagination{TotalElements: 30, TotalPages: 3}, count: 10, wantOK: true},
		{name: "items short but last page reached", page: Pagination{TotalElements: 12, TotalPages: 1}, count: 10, wantOK: true},
		{name: "empty result", page: Pagination{TotalElements: 0, TotalPages: 0}, count: 0, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := make([]Item, tt.count)
			for i := range content {
				content[i] = Item{ID: int64(i + 1)}
			}
			s := loaded(t, Options{PageSize: 10}, FetchResponse{Content: content, Page: tt.page}, nil)

			next, req, ok := s.LoadMore()
			assert.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, 2, next.Page)
				assert.Equal(t, 2, req.Page)
				assert.True(t, req.Concat)
				assert.True(t, next.Loading)
			} else {
				assert.Equal(t, s, next)
			}
		})
	}
}

func TestLoadMore_CarriesSearchTerm(t *testing.T) {
	s, req := New(Options{PageSize: 1}).Search("smoke")
	s, _ = s.Succeed(req, FetchResponse{Content: items(1), Page: Pagination{TotalElements: 2, TotalPages: 2}}, nil)

	_, req, ok := s.LoadMore()
	require.True(t, ok)
	assert.Equal(t, "smoke", req.Term)
}

func TestSucceed_ConcatAppendsWithoutDedupe(t *testing.T) {
	s := loaded(t, Options{PageSize: 2}, FetchResponse{
		Content: items(1, 2),
		Page:    Pagination{TotalElements: 4, TotalPages: 2},
	}, nil)
	prior := len(s.Items)

	s, req, ok := s.LoadMore()
	require.True(t, ok)

	content := items(2, 3)
	s, _ = s.Succeed(req, FetchResponse{Content: content, Page: Pagination{TotalElements: 4, TotalPages: 2}}, nil)

	assert.Len(t, s.Items, prior+len(content))
	assert.Equal(t, []int64{1, 2, 2, 3}, ids(s.Items))
}

func TestSucceed_ConcatWithDedupe(t *testing.T) {
	s := loaded(t, Options{PageSize: 2, Dedupe: true}, FetchResponse{
		Content: items(1, 2),
		Page:    Pagination{TotalElements: 4, TotalPages: 2},
	}, nil)

	s, req, _ := s.LoadMore()
	s, _ = s.Succeed(req, FetchResponse{Content: items(2, 3), Page: Pagination{TotalElements: 4, TotalPages: 2}}, nil)

	assert.Equal(t, []int64{1, 2, 3}, ids(s.Items))
}

func TestLoadMore_ExhaustedAfterDedupedLastPage(t *testing.T) {
	total := Pagination{TotalElements: 4, TotalPages: 2}
	s := loaded(t, Options{PageSize: 2, Dedupe: true}, FetchResponse{Content: items(1, 2), Page: total}, nil)

	s, req, ok := s.LoadMore()
	require.True(t, ok)
	s, _ = s.Succeed(req, FetchResponse{Content: items(2, 3), Page: total}, nil)
	require.Len(t, s.Items, 3)

	assert.True(t, s.Exhausted())
	next, _, ok := s.LoadMore()
	assert.False(t, ok)
	assert.Equal(t, 2, next.Page)
	assert.Equal(t, s.Seq(), next.Seq())
}

func TestLoadMore_SearchResetsFetchedCount(t *testing.T) {
	total := Pagination{TotalElements: 3, TotalPages: 2}
	s := loaded(t, Options{PageSize: 2, Dedupe: true}, FetchResponse{Content: items(1, 2), Page: total}, nil)
	s, req, _ := s.LoadMore()
	s, _ = s.Succeed(req, FetchResponse{Content: items(3), Page: total}, nil)
	require.True(t, s.Exhausted())

	s, req = s.Search("x")
	s, _ = s.Succeed(req, FetchResponse{Content: items(7, 8), Page: Pagination{TotalElements: 5, TotalPages: 3}}, nil)

	assert.False(t, s.Exhausted())
	_, _, ok := s.LoadMore()
	assert.True(t, ok)
}

func TestSucceed_MarksAlreadyAddedExactly(t *testing.T) {
	sel := NewSelected(2, 4)
	s := loaded(t, Options{PageSize: 3}, FetchResponse{
		Content: items(1, 2, 3),
		Page:    Pagination{TotalElements: 6, TotalPages: 2},
	}, sel)

	s, req, _ := s.LoadMore()
	s, _ = s.Succeed(req, FetchResponse{Content: items(4, 5, 6), Page: Pagination{TotalElements: 6, TotalPages: 2}}, sel)

	for _, it := range s.Items {
		assert.Equal(t, sel.Has(it.ID), it.AlreadyAdded, "item %d", it.ID)
	}
}

func TestSucceed_RecomputesAlreadyAddedAgainstNewSelection(t *testing.T) {
	s := loaded(t, Options{PageSize: 2}, FetchResponse{
		Content: items(1, 2),
		Page:    Pagination{TotalElements: 4, TotalPages: 2},
	}, NewSelected(1))
	require.True(t, s.Items[0].AlreadyAdded)

	// The selection changed between fetches; earlier rows follow it.
	s, req, _ := s.LoadMore()
	s, _ = s.Succeed(req, FetchResponse{Content: items(3, 4), Page: Pagination{TotalElements: 4, TotalPages: 2}}, NewSelected(3))

	got := map[int64]bool{}
	for _, it := range s.Items {
		got[it.ID] = it.AlreadyAdded
	}
	assert.Equal(t, map[int64]bool{1: false, 2: false, 3: true, 4: false}, got)
}

func TestSucceed_DoesNotAliasPreviousState(t *testing.T) {
	s := loaded(t, Options{PageSize: 2}, FetchResponse{
		Content: items(1, 2),
		Page:    Pagination{TotalElements: 4, TotalPages: 2},
	}, nil)
	before := s

	s, req, _ := s.LoadMore()
	_, _ = s.Succeed(req, FetchResponse{Content: items(3, 4)}, NewSelected(1))

	assert.False(t, before.Items[0].AlreadyAdded)
	assert.Len(t, before.Items, 2)
}

func TestSucceed_StaleResponseDiscarded(t *testing.T) {
	s, slow := New(Options{}).Mount()
	s, fresh := s.Search("bug")

	next, applied := s.Succeed(slow, FetchResponse{Content: items(7), Page: Pagination{TotalElements: 1, TotalPages: 1}}, nil)
	assert.False(t, applied)
	assert.Equal(t, s, next)
	assert.True(t, next.Loading)

	next, applied = next.Succeed(fresh, FetchResponse{Content: items(8), Page: Pagination{TotalElements: 1, TotalPages: 1}}, nil)
	assert.True(t, applied)
	assert.Equal(t, []int64{8}, ids(next.Items))
}

func TestFail_ClearsLoadingKeepsItems(t *testing.T) {
	s := loaded(t, Options{PageSize: 2}, FetchResponse{
		Content: items(1, 2),
		Page:    Pagination{TotalElements: 4, TotalPages: 2},
	}, nil)

	s, req, ok := s.LoadMore()
	require.True(t, ok)

	s, applied := s.Fail(req)
	assert.True(t, applied)
	assert.False(t, s.Loading)
	assert.Equal(t, []int64{1, 2}, ids(s.Items))
}

func TestFail_BeforeFirstSuccessLeavesEmpty(t *testing.T) {
	s, req := New(Options{}).Mount()
	s, applied := s.Fail(req)

	assert.True(t, applied)
	assert.False(t, s.Loading)
	assert.Empty(t, s.Items)

	// The user can re-trigger by scrolling: unknown totals do not block it.
	_, _, ok := s.LoadMore()
	assert.True(t, ok)
}

func TestFail_StaleFailureDoesNotClearLoading(t *testing.T) {
	s, old := New(Options{}).Mount()
	s, _ = s.Search("x")

	next, applied := s.Fail(old)
	assert.False(t, applied)
	assert.True(t, next.Loading)
}

func TestDedupeByID_KeepsFirst(t *testing.T) {
	in := []Item{{ID: 1, Name: "a"}, {ID: 2}, {ID: 1, Name: "b"}, {ID: 3}, {ID: 2}}
	out := DedupeByID(in)
	assert.Equal(t, []int64{1, 2, 3}, ids(out))
	assert.Equal(t, "a", out[0].Name)
}

func TestSelected(t *testing.T) {
	var none Selected
	assert.False(t, none.Has(1))

	s := NewSelected(3, 5)
	assert.True(t, s.Has(3))
	assert.False(t, s.Has(4))
	assert.ElementsMatch(t, []int64{3, 5}, s.IDs())
}
