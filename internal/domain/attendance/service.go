package attendance

import (
	"context"
	"io"
	"time"
)

// Service defines business logic for attendance capture and reconciliation.
type Service interface {
	// RecordAppPunch stores a start/end-day action and reconciles the day.
	RecordAppPunch(ctx context.Context, req AppPunchRequest) (DailyRecordResponse, error)

	// ImportBiometric upserts parsed device rows, one transaction per row.
	ImportBiometric(ctx context.Context, req ImportBiometricRequest) (ImportBiometricResponse, error)

	// ImportBiometricFile parses a CSV/XLSX/XLS device log and imports its rows.
	ImportBiometricFile(ctx context.Context, filename string, r io.Reader, replace bool) (ImportBiometricResponse, error)

	// Reconcile re-runs reconciliation for a single day.
	Reconcile(ctx context.Context, employeeID string, date time.Time) (DailyRecordResponse, error)

	// ReconcileRange re-runs reconciliation for every stored day in the range.
	ReconcileRange(ctx context.Context, req ReconcileRequest) (ReconcileResponse, error)

	GetRecord(ctx context.Context, id string) (DailyRecordResponse, error)
	ListRecords(ctx context.Context, filter RecordFilter) (ListRecordResponse, error)

	// ListReviewQueue lists mismatched and unreconcilable days awaiting a reviewer.
	ListReviewQueue(ctx context.Context, filter RecordFilter) (ListRecordResponse, error)

	OverrideRecord(ctx context.Context, req OverrideRequest) (DailyRecordResponse, error)
	PurgeRecord(ctx context.Context, id string) error
}
