package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// RecordPick inserts p and sets p.ID. A zero PickedAtUnixMs is stamped with
// the current time and an empty Action defaults to ActionPrint.
func (s *SQLiteStore) RecordPick(ctx context.Context, p *Pick) error {
	if p == nil {
		return errPickRequired
	}
	if p.Source == "" {
		return errSourceRequired
	}
	if p.Project == "" {
		return errProjectRequired
	}
	if p.PickedAtUnixMs == 0 {
		p.PickedAtUnixMs = time.Now().UnixMilli()
	}
	if p.Action == "" {
		p.Action = ActionPrint
	}

	var target sql.NullInt64
	if p.TargetID != nil {
		target = sql.NullInt64{Int64: *p.TargetID, Valid: true}
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO picks (
			session_id, source, endpoint, project, item_id, item_name,
			term, action, target_id, picked_at_unix_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.SessionID, p.Source, p.Endpoint, p.Project, p.ItemID, p.ItemName,
		p.Term, p.Action, target, p.PickedAtUnixMs)
	if err != nil {
		return fmt.Errorf("failed to record pick: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read pick id: %w", err)
	}
	p.ID = id
	return nil
}

// RecentPicks returns picks newest first.
func (s *SQLiteStore) RecentPicks(ctx context.Context, q PickQuery) ([]Pick, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	var where []string
	var args []any
	if q.Source != "" {
		where = append(where, "source = ?")
		args = append(args, q.Source)
	}
	if q.Project != "" {
		where = append(where, "project = ?")
		args = append(args, q.Project)
	}

	query := `
		SELECT id, session_id, source, endpoint, project, item_id, item_name,
		       term, action, target_id, picked_at_unix_ms
		FROM picks`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY picked_at_unix_ms DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query picks: %w", err)
	}
	defer rows.Close()

	var picks []Pick
	for rows.Next() {
		var p Pick
		var target sql.NullInt64
		if err := rows.Scan(
			&p.ID,
			&p.SessionID,
			&p.Source,
			&p.Endpoint,
			&p.Project,
			&p.ItemID,
			&p.ItemName,
			&p.Term,
			&p.Action,
			&target,
			&p.PickedAtUnixMs,
		); err != nil {
			return nil, fmt.Errorf("failed to scan pick: %w", err)
		}
		if target.Valid {
			p.TargetID = &target.Int64
		}
		picks = append(picks, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate picks: %w", err)
	}
	return picks, nil
}

// PruneOlderThan deletes picks made before cutoff and returns how many went.
func (s *SQLiteStore) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM picks WHERE picked_at_unix_ms < ?`, cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to prune picks: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count pruned picks: %w", err)
	}
	return n, nil
}

var _ Store = (*SQLiteStore)(nil)
