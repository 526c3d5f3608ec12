// Package storage keeps a local SQLite history of items picked with rpick.
package storage

import (
	"context"
	"errors"
	"time"
)

// Store defines the history operations the CLI needs.
type Store interface {
	RecordPick(ctx context.Context, p *Pick) error
	RecentPicks(ctx context.Context, q PickQuery) ([]Pick, error)
	PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	Close() error
}

// Pick actions.
const (
	ActionPrint = "print"
	ActionAdd   = "add"
	ActionExec  = "exec"
)

// Pick is one item chosen in a picker run.
type Pick struct {
	ID             int64
	SessionID      string // One per rpick invocation
	Source         string // "widgets" or "filters"
	Endpoint       string
	Project        string
	ItemID         int64
	ItemName       string
	Term           string // Search term active when the item was picked
	Action         string
	TargetID       *int64 // Dashboard the widget was added to, if any
	PickedAtUnixMs int64
}

// PickQuery filters RecentPicks. Zero fields match everything.
type PickQuery struct {
	Source  string
	Project string
	Limit   int
}

// DefaultRecentLimit bounds RecentPicks when the query sets no limit.
const DefaultRecentLimit = 20

var (
	errPickRequired    = errors.New("pick is required")
	errSourceRequired  = errors.New("source is required")
	errProjectRequired = errors.New("project is required")
)
