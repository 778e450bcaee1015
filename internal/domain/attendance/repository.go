package attendance

import (
	"context"
	"time"
)

// DayKey addresses one employee's day.
type DayKey struct {
	EmployeeID string
	Date       time.Time
}

// Repository defines data access for daily attendance records.
// All methods take companyID to keep tenants apart.
type Repository interface {
	// UpsertAppPunch stores the app-side punch. A nil side keeps what is stored;
	// biometric columns are never touched.
	UpsertAppPunch(ctx context.Context, companyID, employeeID string, date time.Time, punch Punch, inLocation *string) error

	// UpsertBiometricPunch stores the device-side punch; app columns are never touched.
	// A nil side keeps the stored value unless replace is set, in which case
	// the stored pair is overwritten as sent.
	UpsertBiometricPunch(ctx context.Context, companyID, employeeID string, date time.Time, punch Punch, replace bool) error

	// GetForUpdate loads and row-locks a day. Must run inside a transaction.
	GetForUpdate(ctx context.Context, companyID, employeeID string, date time.Time) (DailyRecord, error)

	// SaveReconciliation persists final times, case, remarks, review flag and status.
	SaveReconciliation(ctx context.Context, record DailyRecord) error

	// SaveOverride persists a manual override of the final times.
	SaveOverride(ctx context.Context, record DailyRecord) error

	GetByID(ctx context.Context, id string, companyID string) (DailyRecord, error)
	List(ctx context.Context, filter RecordFilter, companyID string) ([]DailyRecord, int64, error)

	// ListForPeriod returns an employee's days in [start, end], ordered by date.
	ListForPeriod(ctx context.Context, companyID, employeeID string, start, end time.Time) ([]DailyRecord, error)

	// ListDayKeys returns the days stored in [start, end], optionally for one employee.
	ListDayKeys(ctx context.Context, companyID string, employeeID *string, start, end time.Time) ([]DayKey, error)

	Delete(ctx context.Context, id string, companyID string) error
}
