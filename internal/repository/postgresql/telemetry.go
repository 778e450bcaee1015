package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/telemetry"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type sampleRepository struct {
	db *database.DB
}

func NewSampleRepository(db *database.DB) telemetry.SampleRepository {
	return &sampleRepository{db: db}
}

const sampleColumns = `id, company_id, employee_id, session_id, recorded_at, cognitive_state,
	active_seconds, idle_seconds, away_seconds, focus_score, raw_signals, client_timestamp`

func scanSample(row pgx.Row) (telemetry.Sample, error) {
	var s telemetry.Sample
	err := row.Scan(
		&s.ID, &s.CompanyID, &s.EmployeeID, &s.SessionID, &s.RecordedAt, &s.CognitiveState,
		&s.ActiveSeconds, &s.IdleSeconds, &s.AwaySeconds, &s.FocusScore, &s.RawSignals, &s.ClientTime,
	)
	return s, err
}

func (r *sampleRepository) Insert(ctx context.Context, s telemetry.Sample) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO prana_samples (` + sampleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := q.Exec(ctx, query,
		s.ID, s.CompanyID, s.EmployeeID, s.SessionID, s.RecordedAt, s.CognitiveState,
		s.ActiveSeconds, s.IdleSeconds, s.AwaySeconds, s.FocusScore, s.RawSignals, s.ClientTime,
	)
	if err != nil {
		return fmt.Errorf("failed to insert telemetry sample: %w", err)
	}
	return nil
}

func (r *sampleRepository) Latest(ctx context.Context, companyID, employeeID string) (telemetry.Sample, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + sampleColumns + `
		FROM prana_samples
		WHERE company_id = $1 AND employee_id = $2
		ORDER BY recorded_at DESC
		LIMIT 1
	`

	s, err := scanSample(q.QueryRow(ctx, query, companyID, employeeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return telemetry.Sample{}, telemetry.ErrNoSamples
		}
		return telemetry.Sample{}, fmt.Errorf("failed to get latest telemetry sample: %w", err)
	}
	return s, nil
}

func (r *sampleRepository) LatestPerEmployeeSince(ctx context.Context, companyID string, since time.Time) ([]telemetry.Sample, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT DISTINCT ON (employee_id) ` + sampleColumns + `
		FROM prana_samples
		WHERE company_id = $1 AND recorded_at >= $2
		ORDER BY employee_id, recorded_at DESC
	`

	rows, err := q.Query(ctx, query, companyID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query live telemetry: %w", err)
	}
	defer rows.Close()

	var samples []telemetry.Sample
	for rows.Next() {
		s, err := scanSample(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan telemetry sample: %w", err)
		}
		samples = append(samples, s)
	}
	return samples, rows.Err()
}

func (r *sampleRepository) Summarize(ctx context.Context, companyID, employeeID string, start, end time.Time) (telemetry.Aggregate, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT cognitive_state, COUNT(*), COALESCE(SUM(focus_score), 0)::float8,
			COALESCE(SUM(active_seconds), 0), COALESCE(SUM(idle_seconds), 0), COALESCE(SUM(away_seconds), 0)
		FROM prana_samples
		WHERE company_id = $1 AND employee_id = $2 AND recorded_at >= $3 AND recorded_at < $4
		GROUP BY cognitive_state
	`

	rows, err := q.Query(ctx, query, companyID, employeeID, start, end)
	if err != nil {
		return telemetry.Aggregate{}, fmt.Errorf("failed to summarize telemetry: %w", err)
	}
	defer rows.Close()

	acc := newAggregator()
	for rows.Next() {
		var p partial
		if err := rows.Scan(&p.state, &p.count, &p.focusSum, &p.active, &p.idle, &p.away); err != nil {
			return telemetry.Aggregate{}, fmt.Errorf("failed to scan telemetry summary: %w", err)
		}
		acc.add(p)
	}
	if err := rows.Err(); err != nil {
		return telemetry.Aggregate{}, err
	}
	return acc.result(), nil
}

func (r *sampleRepository) SummarizeDaily(ctx context.Context, companyID, employeeID string, start, end time.Time, timezone string) ([]telemetry.DailyAggregate, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT (recorded_at AT TIME ZONE $5)::date AS day, cognitive_state, COUNT(*),
			COALESCE(SUM(focus_score), 0)::float8,
			COALESCE(SUM(active_seconds), 0), COALESCE(SUM(idle_seconds), 0), COALESCE(SUM(away_seconds), 0)
		FROM prana_samples
		WHERE company_id = $1 AND employee_id = $2 AND recorded_at >= $3 AND recorded_at < $4
		GROUP BY day, cognitive_state
		ORDER BY day
	`

	rows, err := q.Query(ctx, query, companyID, employeeID, start, end, timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize telemetry by day: %w", err)
	}
	defer rows.Close()

	var (
		days []telemetry.DailyAggregate
		cur  *aggregator
		day  time.Time
	)
	flush := func() {
		if cur != nil {
			days = append(days, telemetry.DailyAggregate{Date: day, Aggregate: cur.result()})
		}
	}
	for rows.Next() {
		var d time.Time
		var p partial
		if err := rows.Scan(&d, &p.state, &p.count, &p.focusSum, &p.active, &p.idle, &p.away); err != nil {
			return nil, fmt.Errorf("failed to scan daily telemetry summary: %w", err)
		}
		if cur == nil || !d.Equal(day) {
			flush()
			cur, day = newAggregator(), d
		}
		cur.add(p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	flush()
	return days, nil
}

// partial is one (state) group of a summary query.
type partial struct {
	state    telemetry.CognitiveState
	count    int64
	focusSum float64
	active   int64
	idle     int64
	away     int64
}

type aggregator struct {
	agg      telemetry.Aggregate
	focusSum float64
}

func newAggregator() *aggregator {
	return &aggregator{agg: telemetry.Aggregate{States: map[telemetry.CognitiveState]int64{}}}
}

func (a *aggregator) add(p partial) {
	a.agg.Packets += p.count
	a.agg.ActiveSeconds += p.active
	a.agg.IdleSeconds += p.idle
	a.agg.AwaySeconds += p.away
	a.agg.States[p.state] += p.count
	a.focusSum += p.focusSum
}

func (a *aggregator) result() telemetry.Aggregate {
	if a.agg.Packets > 0 {
		a.agg.AverageFocus = a.focusSum / float64(a.agg.Packets)
	}
	return a.agg
}
