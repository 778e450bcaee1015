package payroll

import (
	"context"
	"io"
)

type PayrollService interface {
	// Holiday credits
	SetHolidayCredit(ctx context.Context, req SetHolidayCreditRequest) (HolidayCreditResponse, error)
	ListHolidayCredits(ctx context.Context, startDate, endDate string) ([]HolidayCreditResponse, error)
	DeleteHolidayCredit(ctx context.Context, id string) error

	// Computation
	ComputeMonthly(ctx context.Context, req ComputeSalaryRequest) (SalaryComputationResponse, error)
	ComputeAll(ctx context.Context, req ComputeAllRequest) (ComputeAllResponse, error)

	// Confirmed salaries
	ConfirmSalary(ctx context.Context, req ConfirmSalaryRequest) (ConfirmedSalaryResponse, error)
	UpdateConfirmed(ctx context.Context, req UpdateConfirmedRequest) (ConfirmedSalaryResponse, error)
	GetConfirmed(ctx context.Context, id string) (ConfirmedSalaryResponse, error)
	ListConfirmed(ctx context.Context, filter ConfirmedFilter) (ListConfirmedResponse, error)
	DeleteConfirmed(ctx context.Context, id string) error

	// Buckets
	ArchiveBucket(ctx context.Context, req ArchiveBucketRequest) (BucketResponse, error)
	ListBuckets(ctx context.Context) ([]BucketResponse, error)
	ListHistory(ctx context.Context, filter HistoryFilter) (ListHistoryResponse, error)

	// RenderConfirmedReport writes a print formatted HTML summary of the
	// confirmed salaries of a period.
	RenderConfirmedReport(ctx context.Context, req ReportRequest, w io.Writer) error
}
