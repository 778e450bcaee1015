package telemetry

import "context"

type TelemetryService interface {
	Ingest(ctx context.Context, req IngestRequest) (SampleResponse, error)
	LiveStatus(ctx context.Context, employeeID string) (LiveStatusResponse, error)
	TeamLive(ctx context.Context) ([]LiveStatusResponse, error)
	Summary(ctx context.Context, req SummaryRequest) (SummaryResponse, error)
	DailySummaries(ctx context.Context, req SummaryRequest) ([]DailySummaryResponse, error)
}
