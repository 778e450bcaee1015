package payroll

import (
	"context"
	"time"
)

// PayrollRepository defines data access for holiday credits, confirmed
// salaries and the archived salary history. All methods are company scoped.
type PayrollRepository interface {
	// Holiday credits
	UpsertHolidayCredit(ctx context.Context, credit HolidayCredit) (HolidayCredit, error)
	ListHolidayCredits(ctx context.Context, companyID string, start, end time.Time) ([]HolidayCredit, error)
	DeleteHolidayCredit(ctx context.Context, id string, companyID string) error

	// Confirmed salaries
	CreateConfirmed(ctx context.Context, record ConfirmedSalaryRecord) (ConfirmedSalaryRecord, error)
	GetConfirmedByID(ctx context.Context, id string, companyID string) (ConfirmedSalaryRecord, error)
	ListConfirmed(ctx context.Context, companyID string, filter ConfirmedFilter) ([]ConfirmedSalaryRecord, int64, error)
	UpdateConfirmed(ctx context.Context, record ConfirmedSalaryRecord) error
	DeleteConfirmed(ctx context.Context, id string, companyID string) error

	// Buckets. The three calls below are meant to run in one transaction.
	LockConfirmed(ctx context.Context, companyID string, ids []string) ([]ConfirmedSalaryRecord, error)
	LockAllConfirmed(ctx context.Context, companyID string) ([]ConfirmedSalaryRecord, error)
	CreateBucket(ctx context.Context, bucket SalaryBucket) (SalaryBucket, error)
	CopyToHistory(ctx context.Context, bucketID string, companyID string, ids []string) (int64, error)
	DeleteConfirmedByIDs(ctx context.Context, companyID string, ids []string) (int64, error)

	ListBuckets(ctx context.Context, companyID string) ([]SalaryBucket, error)
	ListHistory(ctx context.Context, companyID string, filter HistoryFilter) ([]SalaryHistoryRecord, int64, error)
}
