package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/mattn/go-runewidth"

	"github.com/runger/rpick/internal/listctl"
	"github.com/runger/rpick/internal/picker"
)

// listAll pages through f the same way the picker does, stopping after limit
// items (0 means no limit), an empty page, or the last page.
func listAll(ctx context.Context, f listctl.Fetcher, opts listctl.Options, term string, selected listctl.Selected, limit int) (listctl.State, error) {
	st, req := listctl.New(opts).Search(term)
	for {
		resp, err := f.Fetch(ctx, req)
		if err != nil {
			return st, err
		}
		st, _ = st.Succeed(req, resp, selected)

		if limit > 0 && len(st.Items) >= limit {
			st.Items = st.Items[:limit]
			return st, nil
		}
		if len(resp.Content) == 0 {
			return st, nil
		}

		next, nextReq, ok := st.LoadMore()
		if !ok {
			return st, nil
		}
		st, req = next, nextReq
	}
}

// listedItem is the --json shape of a row.
type listedItem struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Owner        string `json:"owner,omitempty"`
	Description  string `json:"description,omitempty"`
	Kind         string `json:"kind,omitempty"`
	Shared       bool   `json:"shared"`
	AlreadyAdded bool   `json:"alreadyAdded"`
}

// writeJSON prints items as one indented JSON array.
func writeJSON(out io.Writer, items []listctl.Item) error {
	rows := make([]listedItem, 0, len(items))
	for _, it := range items {
		rows = append(rows, listedItem{
			ID:           it.ID,
			Name:         it.Name,
			Owner:        it.Owner,
			Description:  it.Description,
			Kind:         it.Kind,
			Shared:       it.Shared,
			AlreadyAdded: it.AlreadyAdded,
		})
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

// writePlain prints one aligned row per item: id, name, owner. Rows already
// on the target are marked with a trailing "(added)".
func writePlain(out io.Writer, items []listctl.Item, width int) {
	idWidth := 2
	for _, it := range items {
		if w := len(strconv.FormatInt(it.ID, 10)); w > idWidth {
			idWidth = w
		}
	}
	nameWidth := width - idWidth - 2 - 24
	if nameWidth < 16 {
		nameWidth = 16
	}

	for _, it := range items {
		name := picker.Truncate(picker.Clean(it.Name), nameWidth)
		line := fmt.Sprintf("%*d  %s", idWidth, it.ID, runewidth.FillRight(name, nameWidth))
		if it.Owner != "" {
			line += "  " + colorDim + picker.Clean(it.Owner) + colorReset
		}
		if it.AlreadyAdded {
			line += " " + colorYellow + "(added)" + colorReset
		}
		fmt.Fprintln(out, line)
	}
}
