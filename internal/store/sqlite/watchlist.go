package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"stocktracker/internal/model"
)

// ErrDuplicate marks an insert that hit a uniqueness constraint.
var ErrDuplicate = errors.New("sqlite: already exists")

// AddToWatchlist inserts a symbol; ErrDuplicate when it is already present.
func (s *Store) AddToWatchlist(ctx context.Context, symbol string) (model.WatchlistEntry, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO watchlists (symbol, added_at) VALUES (?, ?)`,
		symbol, now.Unix(),
	)
	if err != nil {
		return model.WatchlistEntry{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.WatchlistEntry{}, err
	}
	if n == 0 {
		return model.WatchlistEntry{}, ErrDuplicate
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.WatchlistEntry{}, err
	}
	return model.WatchlistEntry{ID: id, Symbol: symbol, AddedAt: now}, nil
}

// Watchlist returns all entries, oldest first.
func (s *Store) Watchlist(ctx context.Context) ([]model.WatchlistEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, symbol, added_at FROM watchlists ORDER BY added_at, id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []model.WatchlistEntry{}
	for rows.Next() {
		var e model.WatchlistEntry
		var added int64
		if err := rows.Scan(&e.ID, &e.Symbol, &added); err != nil {
			return nil, err
		}
		e.AddedAt = time.Unix(added, 0).UTC()
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// RemoveFromWatchlist deletes a symbol. sql.ErrNoRows when it was not there.
func (s *Store) RemoveFromWatchlist(ctx context.Context, symbol string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM watchlists WHERE symbol = ?`, symbol)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
