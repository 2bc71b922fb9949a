package corpus

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/phonlab/tgkit/internal/tg"
)

// Occurrence is one label hit in the corpus.
type Occurrence struct {
	Path  string  `json:"path"`
	Tier  string  `json:"tier"`
	Kind  string  `json:"kind"`
	Start float64 `json:"start"`
	// End is meaningful for interval hits only; point hits carry Start.
	End   float64 `json:"end,omitempty"`
	Label string  `json:"label"`
}

// IndexFile stores a snapshot of grid under path, replacing any earlier
// snapshot of the same path. The whole upsert runs in one transaction
// so readers never observe a half-indexed file.
func (s *Store) IndexFile(ctx context.Context, path string, grid *tg.Textgrid) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("index %s: %w", path, err)
	}
	defer tx.Rollback()

	// Cascades clear old tiers and entries.
	if _, err := tx.ExecContext(ctx, `DELETE FROM files WHERE path = ?`, path); err != nil {
		return fmt.Errorf("index %s: %w", path, err)
	}

	var fileID int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO files (path, min_time, max_time)
		VALUES (?, ?, ?)
		RETURNING id
	`, path, grid.MinTime(), grid.MaxTime()).Scan(&fileID)
	if err != nil {
		return fmt.Errorf("index %s: %w", path, err)
	}

	for position, name := range grid.TierNames() {
		tier, _ := grid.Tier(name)
		if err := indexTier(ctx, tx, fileID, position, tier); err != nil {
			return fmt.Errorf("index %s: tier %q: %w", path, name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("index %s: %w", path, err)
	}
	return nil
}

func indexTier(ctx context.Context, tx *sql.Tx, fileID int64, position int, tier tg.Tier) error {
	minTime, maxTime := tier.Bounds()

	kind := "point"
	if _, ok := tier.(*tg.IntervalTier); ok {
		kind = "interval"
	}

	var tierID int64
	err := tx.QueryRowContext(ctx, `
		INSERT INTO tiers (file_id, name, kind, position, min_time, max_time)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id
	`, fileID, tier.Name(), kind, position, minTime, maxTime).Scan(&tierID)
	if err != nil {
		return err
	}

	switch t := tier.(type) {
	case *tg.IntervalTier:
		for _, e := range t.Entries() {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO entries (tier_id, start_time, end_time, label)
				VALUES (?, ?, ?, ?)
			`, tierID, e.Start, e.End, e.Label)
			if err != nil {
				return err
			}
		}
	case *tg.PointTier:
		for _, e := range t.Entries() {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO entries (tier_id, start_time, end_time, label)
				VALUES (?, ?, NULL, ?)
			`, tierID, e.Time, e.Label)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// SearchLabel returns every occurrence of label across the corpus.
// With substring set, any label containing the query matches. Results
// are ordered by path, tier position, and entry start so repeated
// searches are stable.
func (s *Store) SearchLabel(ctx context.Context, label string, substring bool) ([]Occurrence, error) {
	where := "e.label = ?"
	arg := any(label)
	if substring {
		where = `e.label LIKE ? ESCAPE '\'`
		arg = "%" + escapeLike(label) + "%"
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT f.path, t.name, t.kind, e.start_time, e.end_time, e.label
		FROM entries e
		JOIN tiers t ON t.id = e.tier_id
		JOIN files f ON f.id = t.file_id
		WHERE `+where+`
		ORDER BY f.path, t.position, e.start_time, e.label
	`, arg)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", label, err)
	}
	defer rows.Close()

	var hits []Occurrence
	for rows.Next() {
		var (
			hit Occurrence
			end sql.NullFloat64
		)
		if err := rows.Scan(&hit.Path, &hit.Tier, &hit.Kind, &hit.Start, &end, &hit.Label); err != nil {
			return nil, fmt.Errorf("search %q: %w", label, err)
		}
		if end.Valid {
			hit.End = end.Float64
		}
		hits = append(hits, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search %q: %w", label, err)
	}
	return hits, nil
}

// Files returns the indexed paths in order.
func (s *Store) Files(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT path FROM files ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("list files: %w", err)
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

// escapeLike protects LIKE metacharacters in a user query.
func escapeLike(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '%', '_', '\\':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}
