package sqlite

import (
	"context"
	"log"
	"time"

	"stocktracker/internal/metrics"
	"stocktracker/internal/model"
)

const (
	defaultBatchSize  = 100
	defaultFlushDelay = 200 * time.Millisecond
)

// PricePoint is one persisted price observation.
type PricePoint struct {
	TS     time.Time `json:"ts"`
	Price  float64   `json:"price"`
	Volume int64     `json:"volume"`
}

// RunPriceRecorder reads quotes from quoteCh and inserts them in batched
// transactions. Flushes every defaultBatchSize quotes OR every
// defaultFlushDelay, whichever first. Quotes without a price are skipped.
// Blocks until ctx is cancelled or quoteCh is closed.
func (s *Store) RunPriceRecorder(ctx context.Context, quoteCh <-chan model.Quote, mets *metrics.Metrics) {
	batch := make([]model.Quote, 0, defaultBatchSize)
	timer := time.NewTimer(defaultFlushDelay)
	defer timer.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		start := time.Now()
		if err := s.insertBatch(batch); err != nil {
			log.Printf("[sqlite] price batch insert error: %v", err)
		} else {
			mets.SQLiteCommitDur.Observe(time.Since(start).Seconds())
			mets.PricesRecorded.Add(float64(len(batch)))
		}
		batch = batch[:0]
	}

	for {
		select {
		case <-ctx.Done():
			flush()
			return

		case q, ok := <-quoteCh:
			if !ok {
				flush()
				return
			}
			if !q.Price.Valid {
				continue
			}
			batch = append(batch, q)
			if len(batch) >= defaultBatchSize {
				flush()
				timer.Reset(defaultFlushDelay)
			}

		case <-timer.C:
			flush()
			timer.Reset(defaultFlushDelay)
		}
	}
}

func (s *Store) insertBatch(quotes []model.Quote) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO stock_prices (symbol, ts, price, volume)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, q := range quotes {
		_, err := stmt.Exec(q.Symbol, q.Timestamp.Unix(), q.Price.Float64, q.Volume)
		if err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

// RecentPrices returns up to limit observations for symbol, newest first.
func (s *Store) RecentPrices(ctx context.Context, symbol string, limit int) ([]PricePoint, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT ts, price, volume FROM stock_prices WHERE symbol = ? ORDER BY ts DESC LIMIT ?`,
		symbol, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []PricePoint
	for rows.Next() {
		var ts int64
		var p PricePoint
		if err := rows.Scan(&ts, &p.Price, &p.Volume); err != nil {
			return nil, err
		}
		p.TS = time.Unix(ts, 0).UTC()
		points = append(points, p)
	}
	return points, rows.Err()
}
