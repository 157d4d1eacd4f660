package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"StressPulse/internal/domain/models"
	domrepo "StressPulse/internal/domain/repository"
	pkgch "StressPulse/pkg/clickhouse"
	applogger "StressPulse/pkg/logger"
)

// CHFeatureStore implements FeatureStore backed by ClickHouse: one table
// for daily stress index points, one for quality findings.
type CHFeatureStore struct {
	db            *sql.DB
	pointsTable   string
	findingsTable string
	l             *applogger.Logger
}

func NewCHFeatureStore(ch *pkgch.Client, database string) *CHFeatureStore {
	return &CHFeatureStore{
		db:            ch.DB(),
		pointsTable:   database + ".stress_index_points",
		findingsTable: database + ".dq_findings",
	}
}

// SetLogger injects a structured logger.
func (s *CHFeatureStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHFeatureStore) PutStressPoint(ctx context.Context, p models.StressIndexPoint) error {
	q := fmt.Sprintf(`
        INSERT INTO %s (d, raw_composite, smoothed_composite, macd_line, macd_signal, level, uncovered_weight, weights_fallback)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)
    `, s.pointsTable)
	var line, signal interface{}
	if p.MACDLine != nil {
		line = *p.MACDLine
	}
	if p.MACDSignal != nil {
		signal = *p.MACDSignal
	}
	fallback := uint8(0)
	if p.WeightsFallback {
		fallback = 1
	}
	if _, err := s.db.ExecContext(ctx, q,
		p.Date, p.RawComposite, p.SmoothedComposite, line, signal,
		string(p.Level), p.UncoveredWeight, fallback,
	); err != nil {
		if s.l != nil {
			s.l.Error("feature_store put_stress_point error", applogger.Error(err))
		}
		return fmt.Errorf("put stress point: %w", err)
	}
	return nil
}

func (s *CHFeatureStore) PutFindings(ctx context.Context, findings []models.Finding) error {
	if len(findings) == 0 {
		return nil
	}
	q := fmt.Sprintf(`
        INSERT INTO %s (code, d, rule_type, severity, status, detail)
        VALUES (?, ?, ?, ?, ?, ?)
    `, s.findingsTable)
	for _, f := range findings {
		if _, err := s.db.ExecContext(ctx, q,
			f.IndicatorCode, f.Date, string(f.RuleType), string(f.Severity), string(f.Status), f.Detail,
		); err != nil {
			if s.l != nil {
				s.l.Error("feature_store put_findings error",
					applogger.String("code", f.IndicatorCode),
					applogger.Error(err),
				)
			}
			return fmt.Errorf("put finding %s/%s: %w", f.IndicatorCode, f.RuleType, err)
		}
	}
	return nil
}

func (s *CHFeatureStore) GetLatestStressPoint(ctx context.Context) (*models.StressIndexPoint, error) {
	q := fmt.Sprintf(`
        SELECT d, raw_composite, smoothed_composite, macd_line, macd_signal, level, uncovered_weight, weights_fallback
        FROM %s
        ORDER BY d DESC
        LIMIT 1
    `, s.pointsTable)
	row := s.db.QueryRowContext(ctx, q)
	p, err := scanStressPoint(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get latest stress point: %w", err)
	}
	return p, nil
}

func (s *CHFeatureStore) GetStressHistory(ctx context.Context, from, to time.Time) ([]models.StressIndexPoint, error) {
	q := fmt.Sprintf(`
        SELECT d, raw_composite, smoothed_composite, macd_line, macd_signal, level, uncovered_weight, weights_fallback
        FROM %s
        WHERE d >= ? AND d <= ?
        ORDER BY d ASC
    `, s.pointsTable)
	rows, err := s.db.QueryContext(ctx, q, from, to)
	if err != nil {
		return nil, fmt.Errorf("get stress history: %w", err)
	}
	defer rows.Close()

	out := make([]models.StressIndexPoint, 0, 256)
	for rows.Next() {
		p, err := scanStressPoint(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan stress point: %w", err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func (s *CHFeatureStore) GetFindings(ctx context.Context, code string, from, to time.Time) ([]models.Finding, error) {
	q := fmt.Sprintf(`
        SELECT code, d, rule_type, severity, status, detail
        FROM %s
        WHERE code = ? AND d >= ? AND d <= ?
        ORDER BY d ASC
    `, s.findingsTable)
	rows, err := s.db.QueryContext(ctx, q, code, from, to)
	if err != nil {
		return nil, fmt.Errorf("get findings %s: %w", code, err)
	}
	defer rows.Close()

	out := make([]models.Finding, 0, 64)
	for rows.Next() {
		var (
			f                         models.Finding
			ruleType, severity, state string
		)
		if err := rows.Scan(&f.IndicatorCode, &f.Date, &ruleType, &severity, &state, &f.Detail); err != nil {
			return nil, fmt.Errorf("scan finding: %w", err)
		}
		f.RuleType = models.RuleType(ruleType)
		f.Severity = models.Severity(severity)
		f.Status = models.FindingStatus(state)
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func (s *CHFeatureStore) Close() error {
	return nil // connection pool is owned by pkg/clickhouse
}

func scanStressPoint(scan func(dest ...interface{}) error) (*models.StressIndexPoint, error) {
	var (
		p            models.StressIndexPoint
		line, signal sql.NullFloat64
		level        string
		fallback     uint8
	)
	if err := scan(&p.Date, &p.RawComposite, &p.SmoothedComposite, &line, &signal, &level, &p.UncoveredWeight, &fallback); err != nil {
		return nil, err
	}
	if line.Valid {
		p.MACDLine = models.Float(line.Float64)
	}
	if signal.Valid {
		p.MACDSignal = models.Float(signal.Float64)
	}
	p.Level = models.StressLevel(level)
	p.WeightsFallback = fallback == 1
	return &p, nil
}

var _ domrepo.FeatureStore = (*CHFeatureStore)(nil)
