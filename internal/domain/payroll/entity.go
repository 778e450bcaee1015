package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// HolidayCredit credits paid hours for a date regardless of attendance.
type HolidayCredit struct {
	ID        string
	CompanyID string
	Date      time.Time
	Hours     decimal.Decimal
	Label     string
	CreatedAt time.Time
}

// MonthlySalaryComputation is derived on demand and never a source of truth.
type MonthlySalaryComputation struct {
	EmployeeID           string
	EmployeeName         string
	PeriodStart          time.Time
	PeriodEnd            time.Time
	WorkingHours         decimal.Decimal
	HolidayHours         decimal.Decimal
	TotalCumulativeHours decimal.Decimal
	RegularHours         decimal.Decimal
	OvertimeHours        decimal.Decimal
	HourlyRate           decimal.Decimal
	CalculatedSalary     decimal.Decimal
	PayableDays          int
	HolidayDays          int
	PendingReviewDates   []time.Time
}

// ConfirmedSalaryRecord is a computation approved by a human.
// CalculatedSalary and HourlyRate are frozen at confirmation time;
// ConfirmedSalary and PerHourRate are the editable side.
type ConfirmedSalaryRecord struct {
	ID                   string
	CompanyID            string
	EmployeeID           string
	PeriodStart          time.Time
	PeriodEnd            time.Time
	WorkingHours         decimal.Decimal
	HolidayHours         decimal.Decimal
	TotalCumulativeHours decimal.Decimal
	HourlyRate           decimal.Decimal
	CalculatedSalary     decimal.Decimal
	PerHourRate          decimal.Decimal
	ConfirmedSalary      decimal.Decimal
	ConfirmedBy          string
	ConfirmationNotes    *string
	ConfirmedAt          time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time

	// Joined fields
	EmployeeName *string
	EmployeeCode *string
}

// SalaryBucket is one archival batch of confirmed records.
type SalaryBucket struct {
	ID          string
	CompanyID   string
	Label       string
	RecordCount int
	TotalAmount decimal.Decimal
	ArchivedBy  string
	ArchivedAt  time.Time
}

// SalaryHistoryRecord is a confirmed record after it was moved into a bucket.
type SalaryHistoryRecord struct {
	ConfirmedSalaryRecord
	BucketID   string
	ArchivedAt time.Time
}
