// Package snapshot persists aggregated analytics totals to PostgreSQL so the
// analytics service can resume its counters after a restart.
package snapshot

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/analytics"
	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
)

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Store writes snapshots into a table shaped like:
//
//	CREATE TABLE analytics_snapshots (
//	    id          BIGSERIAL PRIMARY KEY,
//	    data        JSONB NOT NULL,
//	    captured_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
//	);
type Store struct {
	db     *sql.DB
	table  string
	now    func() time.Time
	logger *slog.Logger
}

func NewStore(db *sql.DB, table string) (*Store, error) {
	if !tableName.MatchString(table) {
		return nil, apperrors.InvalidArgumentf("snapshot table %q is not a plain identifier", table)
	}
	return &Store{
		db:     db,
		table:  table,
		now:    time.Now,
		logger: slog.Default().With("component", "analytics-snapshots"),
	}, nil
}

func (s *Store) Save(ctx context.Context, stats analytics.AggregatedStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("marshaling stats: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (data, captured_at) VALUES ($1, $2)`, s.table),
		data, s.now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("saving analytics snapshot: %w", err)
	}
	s.logger.Debug("analytics snapshot saved", "total_searches", stats.TotalSearches)
	return nil
}

// Latest returns the newest snapshot, or nil when none exist.
func (s *Store) Latest(ctx context.Context) (*analytics.AggregatedStats, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT data FROM %s ORDER BY captured_at DESC LIMIT 1`, s.table),
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying latest snapshot: %w", err)
	}
	return decode(data)
}

// List returns up to limit snapshots, newest first. Corrupt rows are skipped.
func (s *Store) List(ctx context.Context, limit int) ([]analytics.AggregatedStats, error) {
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT data FROM %s ORDER BY captured_at DESC LIMIT $1`, s.table),
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	defer rows.Close()

	snapshots := make([]analytics.AggregatedStats, 0, limit)
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scanning snapshot row: %w", err)
		}
		stats, err := decode(data)
		if err != nil {
			s.logger.Warn("skipping corrupt snapshot", "error", err)
			continue
		}
		snapshots = append(snapshots, *stats)
	}
	return snapshots, rows.Err()
}

// Saver is what Run persists through; *Store implements it.
type Saver interface {
	Save(ctx context.Context, stats analytics.AggregatedStats) error
}

// Run saves source() every interval until ctx is done, then saves once more
// with a fresh deadline.
func Run(ctx context.Context, saver Saver, source func() analytics.AggregatedStats, interval time.Duration) {
	logger := slog.Default().With("component", "analytics-snapshots")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := saver.Save(ctx, source()); err != nil {
				logger.Error("periodic snapshot failed", "error", err)
			}
		case <-ctx.Done():
			finalCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := saver.Save(finalCtx, source()); err != nil {
				logger.Error("final snapshot failed", "error", err)
			}
			return
		}
	}
}

func decode(data []byte) (*analytics.AggregatedStats, error) {
	var stats analytics.AggregatedStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, fmt.Errorf("unmarshaling snapshot: %w", err)
	}
	return &stats, nil
}
