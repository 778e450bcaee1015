package telemetry

import (
	"context"
	"time"
)

type SampleRepository interface {
	Insert(ctx context.Context, sample Sample) error

	// Latest returns the newest sample of an employee, or ErrNoSamples.
	Latest(ctx context.Context, companyID, employeeID string) (Sample, error)

	// LatestPerEmployeeSince returns the newest sample of every employee that
	// reported at or after since.
	LatestPerEmployeeSince(ctx context.Context, companyID string, since time.Time) ([]Sample, error)

	// Summarize aggregates samples with recorded_at in [start, end).
	Summarize(ctx context.Context, companyID, employeeID string, start, end time.Time) (Aggregate, error)

	// SummarizeDaily is Summarize grouped by calendar day in the given time zone.
	SummarizeDaily(ctx context.Context, companyID, employeeID string, start, end time.Time, timezone string) ([]DailyAggregate, error)
}
