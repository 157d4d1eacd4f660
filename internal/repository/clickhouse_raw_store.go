package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"StressPulse/internal/domain/models"
	domrepo "StressPulse/internal/domain/repository"
	pkgch "StressPulse/pkg/clickhouse"
	applogger "StressPulse/pkg/logger"
)

// CHRawStore implements RawDataStore backed by ClickHouse. One row per
// (indicator, date); Value is Nullable so missing readings survive the
// round trip.
type CHRawStore struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

func NewCHRawStore(ch *pkgch.Client, database string) *CHRawStore {
	return &CHRawStore{db: ch.DB(), table: database + ".rt_indicator_obs"}
}

// SetLogger injects a structured logger.
func (s *CHRawStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHRawStore) GetSeries(ctx context.Context, code string, from, to time.Time) (models.IndicatorSeries, error) {
	start := time.Now()
	q := fmt.Sprintf(`
        SELECT d, value
        FROM %s
        WHERE code = ? AND d >= ? AND d <= ?
        ORDER BY d ASC
    `, s.table)
	rows, err := s.db.QueryContext(ctx, q, code, from, to)
	if err != nil {
		s.logErr("raw_store get_series query error", code, err)
		return models.IndicatorSeries{}, fmt.Errorf("get series %s: %w", code, err)
	}
	defer rows.Close()

	series := models.IndicatorSeries{Code: code}
	for rows.Next() {
		var (
			d time.Time
			v sql.NullFloat64
		)
		if err := rows.Scan(&d, &v); err != nil {
			s.logErr("raw_store get_series scan error", code, err)
			return models.IndicatorSeries{}, fmt.Errorf("scan observation: %w", err)
		}
		obs := models.Observation{Date: d}
		if v.Valid {
			obs.Value = models.Float(v.Float64)
		}
		series.Observations = append(series.Observations, obs)
	}
	if err := rows.Err(); err != nil {
		s.logErr("raw_store get_series rows error", code, err)
		return models.IndicatorSeries{}, fmt.Errorf("rows: %w", err)
	}
	if s.l != nil {
		s.l.Debug("raw_store get_series ok",
			applogger.String("code", code),
			applogger.Int("rows", len(series.Observations)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return series, nil
}

func (s *CHRawStore) StoreObservations(ctx context.Context, code string, obs []models.Observation) error {
	if len(obs) == 0 {
		return nil
	}
	const chunkSize = 2000
	for start := 0; start < len(obs); start += chunkSize {
		end := start + chunkSize
		if end > len(obs) {
			end = len(obs)
		}
		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*3)
		for _, o := range obs[start:end] {
			values = append(values, "(?, ?, ?)")
			var v interface{}
			if o.Value != nil {
				v = *o.Value
			}
			args = append(args, code, o.Date, v)
		}
		q := fmt.Sprintf("INSERT INTO %s (code, d, value) VALUES %s", s.table, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			s.logErr("raw_store insert error", code, err)
			return fmt.Errorf("store observations %s: %w", code, err)
		}
	}
	return nil
}

func (s *CHRawStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *CHRawStore) Close() error {
	return nil // connection pool is owned by pkg/clickhouse
}

func (s *CHRawStore) logErr(msg, code string, err error) {
	if s.l != nil {
		s.l.Error(msg, applogger.String("code", code), applogger.Error(err))
	}
}

var _ domrepo.RawDataStore = (*CHRawStore)(nil)
