package sqlite

import (
	"context"
	"database/sql"
	"time"

	"stocktracker/internal/model"
)

// CreateAlert persists a new active alert.
func (s *Store) CreateAlert(ctx context.Context, symbol, alertType string, target float64) (model.Alert, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO alerts (symbol, alert_type, target_value, active, created_at) VALUES (?, ?, ?, 1, ?)`,
		symbol, alertType, target, now.Unix(),
	)
	if err != nil {
		return model.Alert{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Alert{}, err
	}
	return model.Alert{
		ID:          id,
		Symbol:      symbol,
		Type:        alertType,
		TargetValue: target,
		Active:      true,
		CreatedAt:   now,
	}, nil
}

// Alerts returns all alerts, newest first.
func (s *Store) Alerts(ctx context.Context) ([]model.Alert, error) {
	return s.queryAlerts(ctx,
		`SELECT id, symbol, alert_type, target_value, active, created_at, triggered_at
		 FROM alerts ORDER BY created_at DESC, id DESC`)
}

// ActiveAlerts returns alerts that have not yet triggered.
func (s *Store) ActiveAlerts(ctx context.Context) ([]model.Alert, error) {
	return s.queryAlerts(ctx,
		`SELECT id, symbol, alert_type, target_value, active, created_at, triggered_at
		 FROM alerts WHERE active = 1 ORDER BY symbol, id`)
}

func (s *Store) queryAlerts(ctx context.Context, query string) ([]model.Alert, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	alerts := []model.Alert{}
	for rows.Next() {
		var a model.Alert
		var created int64
		var triggered sql.NullInt64
		if err := rows.Scan(&a.ID, &a.Symbol, &a.Type, &a.TargetValue, &a.Active, &created, &triggered); err != nil {
			return nil, err
		}
		a.CreatedAt = time.Unix(created, 0).UTC()
		if triggered.Valid {
			t := time.Unix(triggered.Int64, 0).UTC()
			a.TriggeredAt = &t
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

// DeleteAlert removes an alert by id. sql.ErrNoRows when it does not exist.
func (s *Store) DeleteAlert(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM alerts WHERE id = ?`, id)
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

// MarkTriggered deactivates an alert and stamps the trigger time.
func (s *Store) MarkTriggered(ctx context.Context, id int64, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE alerts SET active = 0, triggered_at = ? WHERE id = ?`,
		at.Unix(), id,
	)
	return err
}
