package rpapi

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/runger/rpick/internal/listctl"
)

// pageInfo is the paging block of every list response.
type pageInfo struct {
	Number        int `json:"number"`
	Size          int `json:"size"`
	TotalElements int `json:"totalElements"`
	TotalPages    int `json:"totalPages"`
}

// SharedWidget is one entry of the shared-widget listing.
type SharedWidget struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Owner       string `json:"owner"`
	Description string `json:"description"`
	WidgetType  string `json:"widgetType"`
	Share       bool   `json:"share"`
}

// Filter is one entry of the filter listing.
type Filter struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Owner       string `json:"owner"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Share       bool   `json:"share"`
}

type widgetPage struct {
	Content []SharedWidget `json:"content"`
	Page    pageInfo       `json:"page"`
}

type filterPage struct {
	Content []Filter `json:"content"`
	Page    pageInfo `json:"page"`
}

func pageQuery(req listctl.FetchRequest) url.Values {
	q := url.Values{}
	q.Set(PageKey, strconv.Itoa(req.Page))
	q.Set(SizeKey, strconv.Itoa(req.PageSize))
	return q
}

func toPagination(p pageInfo) listctl.Pagination {
	return listctl.Pagination{TotalElements: p.TotalElements, TotalPages: p.TotalPages}
}

// WidgetSource lists the project's shared widgets. A non-empty term switches
// to the search endpoint.
type WidgetSource struct {
	Client *Client
}

// Fetch implements listctl.Fetcher.
func (s WidgetSource) Fetch(ctx context.Context, req listctl.FetchRequest) (listctl.FetchResponse, error) {
	q := pageQuery(req)
	path := "widget/shared"
	if req.Term != "" {
		path = "widget/shared/search"
		q.Set("term", req.Term)
	}

	var page widgetPage
	if err := s.Client.do(ctx, http.MethodGet, s.Client.projectURL(path, q), nil, &page); err != nil {
		return listctl.FetchResponse{}, err
	}

	items := make([]listctl.Item, len(page.Content))
	for i, w := range page.Content {
		items[i] = listctl.Item{
			ID:          w.ID,
			Name:        w.Name,
			Owner:       w.Owner,
			Description: w.Description,
			Kind:        w.WidgetType,
			Shared:      w.Share,
		}
	}
	return listctl.FetchResponse{Content: items, Page: toPagination(page.Page)}, nil
}

// FilterSource lists the project's filters sorted by name. A non-empty term
// narrows by name substring.
type FilterSource struct {
	Client *Client
}

// Fetch implements listctl.Fetcher.
func (s FilterSource) Fetch(ctx context.Context, req listctl.FetchRequest) (listctl.FetchResponse, error) {
	q := pageQuery(req)
	q.Set(SortKey, "name,ASC")
	if req.Term != "" {
		q.Set("filter.cnt.name", req.Term)
	}

	var page filterPage
	if err := s.Client.do(ctx, http.MethodGet, s.Client.projectURL("filter", q), nil, &page); err != nil {
		return listctl.FetchResponse{}, err
	}

	items := make([]listctl.Item, len(page.Content))
	for i, f := range page.Content {
		items[i] = listctl.Item{
			ID:          f.ID,
			Name:        f.Name,
			Owner:       f.Owner,
			Description: f.Description,
			Kind:        f.Type,
			Shared:      f.Share,
		}
	}
	return listctl.FetchResponse{Content: items, Page: toPagination(page.Page)}, nil
}

var (
	_ listctl.Fetcher = WidgetSource{}
	_ listctl.Fetcher = FilterSource{}
)
