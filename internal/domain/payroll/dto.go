package payroll

import (
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== HOLIDAY CREDIT DTOs ==========

type HolidayOverride struct {
	Date  string          `json:"date"` // YYYY-MM-DD
	Hours decimal.Decimal `json:"hours"`
}

type SetHolidayCreditRequest struct {
	Date  string           `json:"date"`
	Hours *decimal.Decimal `json:"hours,omitempty"` // defaults to the configured holiday hours
	Label string           `json:"label"`
}

func (r *SetHolidayCreditRequest) Validate() error {
	var errs validator.ValidationErrors

	if _, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{Field: "date", Message: "must be in YYYY-MM-DD format"})
	}
	if r.Hours != nil && (r.Hours.IsNegative() || r.Hours.GreaterThan(decimal.NewFromInt(24))) {
		errs = append(errs, validator.ValidationError{Field: "hours", Message: "must be between 0 and 24"})
	}

	return errs.Err()
}

type HolidayCreditResponse struct {
	ID    string          `json:"id"`
	Date  string          `json:"date"`
	Hours decimal.Decimal `json:"hours"`
	Label string          `json:"label"`
}

// ========== COMPUTATION DTOs ==========

type ComputeSalaryRequest struct {
	EmployeeID       string            `json:"employee_id"`
	StartDate        string            `json:"start_date"`
	EndDate          string            `json:"end_date"`
	HolidayOverrides []HolidayOverride `json:"holiday_overrides,omitempty"`
}

func (r *ComputeSalaryRequest) Validate() error {
	_, _, errs := validator.ValidateDateRange(r.StartDate, r.EndDate)

	if !validator.IsValidUUID(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "must be a valid UUID"})
	}
	errs = append(errs, validateOverrides(r.HolidayOverrides)...)

	return errs.Err()
}

type ComputeAllRequest struct {
	StartDate        string            `json:"start_date"`
	EndDate          string            `json:"end_date"`
	HolidayOverrides []HolidayOverride `json:"holiday_overrides,omitempty"`
}

func (r *ComputeAllRequest) Validate() error {
	_, _, errs := validator.ValidateDateRange(r.StartDate, r.EndDate)
	errs = append(errs, validateOverrides(r.HolidayOverrides)...)
	return errs.Err()
}

func validateOverrides(overrides []HolidayOverride) validator.ValidationErrors {
	var errs validator.ValidationErrors
	for i, o := range overrides {
		field := "holiday_overrides[" + validator.Itoa(i) + "]"
		if _, ok := validator.IsValidDate(o.Date); !ok {
			errs = append(errs, validator.ValidationError{Field: field + ".date", Message: "must be in YYYY-MM-DD format"})
		}
		if o.Hours.IsNegative() || o.Hours.GreaterThan(decimal.NewFromInt(24)) {
			errs = append(errs, validator.ValidationError{Field: field + ".hours", Message: "must be between 0 and 24"})
		}
	}
	return errs
}

type SalaryComputationResponse struct {
	EmployeeID           string          `json:"employee_id"`
	EmployeeName         string          `json:"employee_name"`
	PeriodStart          string          `json:"period_start"`
	PeriodEnd            string          `json:"period_end"`
	WorkingHours         decimal.Decimal `json:"working_hours"`
	HolidayHours         decimal.Decimal `json:"holiday_hours"`
	TotalCumulativeHours decimal.Decimal `json:"total_cumulative_hours"`
	RegularHours         decimal.Decimal `json:"regular_hours"`
	OvertimeHours        decimal.Decimal `json:"overtime_hours"`
	HourlyRate           decimal.Decimal `json:"hourly_rate"`
	CalculatedSalary     decimal.Decimal `json:"calculated_salary"`
	PayableDays          int             `json:"payable_days"`
	HolidayDays          int             `json:"holiday_days"`
	PendingReviewDates   []string        `json:"pending_review_dates"`
}

type ComputeAllResponse struct {
	PeriodStart      string                      `json:"period_start"`
	PeriodEnd        string                      `json:"period_end"`
	TotalEmployees   int                         `json:"total_employees"`
	TotalHours       decimal.Decimal             `json:"total_hours"`
	TotalCalculated  decimal.Decimal             `json:"total_calculated"`
	PendingReviewFor int                         `json:"pending_review_for"`
	Computations     []SalaryComputationResponse `json:"computations"`
}

// ========== CONFIRMED SALARY DTOs ==========

type ConfirmSalaryRequest struct {
	ComputeSalaryRequest
	ConfirmedSalary *decimal.Decimal `json:"confirmed_salary,omitempty"` // defaults to the calculated salary
	Notes           *string          `json:"notes,omitempty"`
}

func (r *ConfirmSalaryRequest) Validate() error {
	var errs validator.ValidationErrors
	if err := r.ComputeSalaryRequest.Validate(); err != nil {
		errs = err.(validator.ValidationErrors)
	}
	if r.ConfirmedSalary != nil && r.ConfirmedSalary.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "confirmed_salary", Message: "must be non-negative"})
	}
	return errs.Err()
}

// UpdateConfirmedRequest edits the human side of a confirmed record. A new
// per_hour_rate re-derives confirmed_salary unless confirmed_salary is sent too.
type UpdateConfirmedRequest struct {
	ID              string           `json:"-"`
	ConfirmedSalary *decimal.Decimal `json:"confirmed_salary,omitempty"`
	PerHourRate     *decimal.Decimal `json:"per_hour_rate,omitempty"`
	Notes           *string          `json:"notes,omitempty"`
}

func (r *UpdateConfirmedRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.ConfirmedSalary == nil && r.PerHourRate == nil && r.Notes == nil {
		errs = append(errs, validator.ValidationError{Field: "confirmed_salary", Message: "at least one of confirmed_salary, per_hour_rate or notes is required"})
	}
	if r.ConfirmedSalary != nil && r.ConfirmedSalary.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "confirmed_salary", Message: "must be non-negative"})
	}
	if r.PerHourRate != nil && r.PerHourRate.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "per_hour_rate", Message: "must be non-negative"})
	}

	return errs.Err()
}

type ConfirmedSalaryResponse struct {
	ID                   string          `json:"id"`
	EmployeeID           string          `json:"employee_id"`
	EmployeeName         string          `json:"employee_name,omitempty"`
	EmployeeCode         string          `json:"employee_code,omitempty"`
	PeriodStart          string          `json:"period_start"`
	PeriodEnd            string          `json:"period_end"`
	WorkingHours         decimal.Decimal `json:"working_hours"`
	HolidayHours         decimal.Decimal `json:"holiday_hours"`
	TotalCumulativeHours decimal.Decimal `json:"total_cumulative_hours"`
	HourlyRate           decimal.Decimal `json:"hourly_rate"`
	CalculatedSalary     decimal.Decimal `json:"calculated_salary"`
	PerHourRate          decimal.Decimal `json:"per_hour_rate"`
	ConfirmedSalary      decimal.Decimal `json:"confirmed_salary"`
	ConfirmedBy          string          `json:"confirmed_by"`
	ConfirmationNotes    *string         `json:"confirmation_notes,omitempty"`
	ConfirmedAt          string          `json:"confirmed_at"`
	UpdatedAt            string          `json:"updated_at"`
}

type ConfirmedFilter struct {
	EmployeeID *string `json:"employee_id,omitempty"`
	StartDate  *string `json:"start_date,omitempty"` // period_start >= start_date
	EndDate    *string `json:"end_date,omitempty"`   // period_end <= end_date
	Page       int     `json:"page"`
	Limit      int     `json:"limit"`
}

func (f *ConfirmedFilter) Validate() error {
	page, limit, errs := validator.Pagination(f.Page, f.Limit, 50, 500)
	f.Page, f.Limit = page, limit

	if f.StartDate != nil && *f.StartDate != "" {
		if _, ok := validator.IsValidDate(*f.StartDate); !ok {
			errs = append(errs, validator.ValidationError{Field: "start_date", Message: "must be in YYYY-MM-DD format"})
		}
	}
	if f.EndDate != nil && *f.EndDate != "" {
		if _, ok := validator.IsValidDate(*f.EndDate); !ok {
			errs = append(errs, validator.ValidationError{Field: "end_date", Message: "must be in YYYY-MM-DD format"})
		}
	}

	return errs.Err()
}

type ListConfirmedResponse struct {
	Records         []ConfirmedSalaryResponse `json:"records"`
	TotalConfirmed  decimal.Decimal           `json:"total_confirmed"` // of this page
	TotalCalculated decimal.Decimal           `json:"total_calculated"`
	Pagination      validator.PageInfo        `json:"-"`
}

// ========== BUCKET DTOs ==========

type ArchiveBucketRequest struct {
	RecordIDs []string `json:"record_ids,omitempty"`
	All       bool     `json:"all"`
	Label     string   `json:"label"`
}

func (r *ArchiveBucketRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Label) {
		errs = append(errs, validator.ValidationError{Field: "label", Message: "is required"})
	}
	if r.All && len(r.RecordIDs) > 0 {
		errs = append(errs, validator.ValidationError{Field: "record_ids", Message: "must be empty when all is true"})
	}
	if !r.All && len(r.RecordIDs) == 0 {
		errs = append(errs, validator.ValidationError{Field: "record_ids", Message: "at least one record is required"})
	}
	seen := map[string]bool{}
	for _, id := range r.RecordIDs {
		if !validator.IsValidUUID(id) {
			errs = append(errs, validator.ValidationError{Field: "record_ids", Message: "must contain valid UUIDs"})
			break
		}
		if seen[id] {
			errs = append(errs, validator.ValidationError{Field: "record_ids", Message: "must not contain duplicates"})
			break
		}
		seen[id] = true
	}

	return errs.Err()
}

type BucketResponse struct {
	ID          string          `json:"id"`
	Label       string          `json:"label"`
	RecordCount int             `json:"record_count"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	ArchivedBy  string          `json:"archived_by"`
	ArchivedAt  string          `json:"archived_at"`
}

type HistoryFilter struct {
	EmployeeID *string `json:"employee_id,omitempty"`
	BucketID   *string `json:"bucket_id,omitempty"`
	Page       int     `json:"page"`
	Limit      int     `json:"limit"`
}

func (f *HistoryFilter) Validate() error {
	page, limit, errs := validator.Pagination(f.Page, f.Limit, 50, 500)
	f.Page, f.Limit = page, limit

	if f.BucketID != nil && !validator.IsValidUUID(*f.BucketID) {
		errs = append(errs, validator.ValidationError{Field: "bucket_id", Message: "must be a valid UUID"})
	}
	if f.EmployeeID != nil && !validator.IsValidUUID(*f.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "must be a valid UUID"})
	}

	return errs.Err()
}

type SalaryHistoryResponse struct {
	ConfirmedSalaryResponse
	BucketID   string `json:"bucket_id"`
	ArchivedAt string `json:"archived_at"`
}

type ListHistoryResponse struct {
	Records    []SalaryHistoryResponse `json:"records"`
	Pagination validator.PageInfo      `json:"-"`
}

// ========== REPORT DTOs ==========

type ReportRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

func (r *ReportRequest) Validate() error {
	_, _, errs := validator.ValidateDateRange(r.StartDate, r.EndDate)
	return errs.Err()
}
