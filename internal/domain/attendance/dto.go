package attendance

import (
	"strings"

	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/validator"
)

// ========================================
// PUNCH DTOs
// ========================================

const (
	ActionStartDay = "start_day"
	ActionEndDay   = "end_day"
)

// AppPunchRequest is the app's own start/end-day action. The punch is always
// stamped with the server clock; corrections go through an override.
type AppPunchRequest struct {
	EmployeeID string   `json:"-"`
	Action     string   `json:"action"` // start_day, end_day
	Latitude   *float64 `json:"latitude,omitempty"`
	Longitude  *float64 `json:"longitude,omitempty"`
}

func (r *AppPunchRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs.Add("employee_id", "employee_id is required")
	}

	if !validator.IsInSlice(r.Action, []string{ActionStartDay, ActionEndDay}) {
		errs.Add("action", "action must be one of: start_day, end_day")
	}

	if (r.Latitude == nil) != (r.Longitude == nil) {
		errs.Add("latitude", "latitude and longitude must be sent together")
	}
	if r.Latitude != nil && !validator.IsInRange(*r.Latitude, -90, 90) {
		errs.Add("latitude", "latitude must be between -90 and 90")
	}
	if r.Longitude != nil && !validator.IsInRange(*r.Longitude, -180, 180) {
		errs.Add("longitude", "longitude must be between -180 and 180")
	}

	return errs.Err()
}

// BiometricRow is one parsed line of a biometric device log.
type BiometricRow struct {
	Line        int    `json:"line,omitempty"`
	Name        string `json:"name"`
	BiometricID string `json:"biometric_id"`
	Date        string `json:"date"`     // YYYY-MM-DD
	TimeIn      string `json:"time_in"`  // HH:MM[:SS], may be empty
	TimeOut     string `json:"time_out"` // HH:MM[:SS], may be empty
}

func (r *BiometricRow) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.BiometricID) {
		errs.Add("biometric_id", "biometric_id is required")
	}
	if _, ok := validator.IsValidDate(r.Date); !ok {
		errs.Add("date", "date must be in YYYY-MM-DD format")
	}
	if r.TimeIn != "" {
		if _, ok := validator.IsValidClock(r.TimeIn); !ok {
			errs.Add("time_in", "time_in must be in HH:MM or HH:MM:SS format")
		}
	}
	if r.TimeOut != "" {
		if _, ok := validator.IsValidClock(r.TimeOut); !ok {
			errs.Add("time_out", "time_out must be in HH:MM or HH:MM:SS format")
		}
	}
	if r.TimeIn == "" && r.TimeOut == "" {
		errs.Add("time_in", "row must carry time_in or time_out")
	}

	return errs.Err()
}

type ImportBiometricRequest struct {
	Rows []BiometricRow `json:"rows"`
	// Replace makes each row authoritative for its day, so a blank time
	// clears a previously imported one.
	Replace bool `json:"replace"`
}

func (r *ImportBiometricRequest) Validate() error {
	var errs validator.ValidationErrors
	if len(r.Rows) == 0 {
		errs.Add("rows", "at least one row is required")
	}
	return errs.Err()
}

type RowError struct {
	Line        int    `json:"line"`
	BiometricID string `json:"biometric_id,omitempty"`
	Message     string `json:"message"`
}

type ImportBiometricResponse struct {
	Received int        `json:"received"`
	Imported int        `json:"imported"`
	Failed   []RowError `json:"failed"`
}

// ========================================
// RECONCILIATION DTOs
// ========================================

type ReconcileRequest struct {
	EmployeeID *string `json:"employee_id,omitempty"`
	StartDate  string  `json:"start_date"`
	EndDate    string  `json:"end_date"`
}

func (r *ReconcileRequest) Validate() error {
	_, _, errs := validator.ValidateDateRange(r.StartDate, r.EndDate)
	return errs.Err()
}

type ReconcileResponse struct {
	Processed int               `json:"processed"`
	Skipped   int               `json:"skipped_overridden"`
	Cases     map[MergeCase]int `json:"cases"`
}

// OverrideRequest lets an admin fix the final times of a day by hand.
type OverrideRequest struct {
	ID       string  `json:"-"`
	FinalIn  string  `json:"final_in"`  // RFC3339
	FinalOut string  `json:"final_out"` // RFC3339
	Status   *string `json:"status,omitempty"`
	Notes    string  `json:"notes"`
}

func (r *OverrideRequest) Validate() error {
	var errs validator.ValidationErrors

	in, okIn := validator.IsValidDateTime(r.FinalIn)
	if !okIn {
		errs.Add("final_in", "final_in must be an RFC3339 date time")
	}
	out, okOut := validator.IsValidDateTime(r.FinalOut)
	if !okOut {
		errs.Add("final_out", "final_out must be an RFC3339 date time")
	}
	if okIn && okOut && out.Before(in) {
		errs.Add("final_out", "final_out must not be before final_in")
	}
	if r.Status != nil && !validator.IsInSlice(strings.ToLower(*r.Status), validStatuses) {
		errs.Add("status", "status must be one of: "+strings.Join(validStatuses, ", "))
	}
	if validator.IsEmpty(r.Notes) {
		errs.Add("notes", "notes are required for a manual override")
	}

	return errs.Err()
}

// ========================================
// READ DTOs
// ========================================

type PunchResponse struct {
	In  *string `json:"in"`
	Out *string `json:"out"`
}

type FinalTimesResponse struct {
	In          *string  `json:"in"`
	Out         *string  `json:"out"`
	WorkedHours *float64 `json:"worked_hours"`
}

type DailyRecordResponse struct {
	ID             string             `json:"id"`
	EmployeeID     string             `json:"employee_id"`
	EmployeeName   string             `json:"employee_name,omitempty"`
	Date           string             `json:"date"`
	AppPunch       PunchResponse      `json:"app_punch"`
	AppInLocation  *string            `json:"app_in_location,omitempty"`
	BiometricPunch PunchResponse      `json:"biometric_punch"`
	FinalTimes     FinalTimesResponse `json:"final_times"`
	MergeCase      MergeCase          `json:"merge_case"`
	Remarks        string             `json:"remarks"`
	NeedsReview    bool               `json:"needs_review"`
	Status         Status             `json:"status"`
	ManualOverride bool               `json:"manual_override"`
	OverriddenBy   *string            `json:"overridden_by,omitempty"`
	OverrideNotes  *string            `json:"override_notes,omitempty"`
	UpdatedAt      string             `json:"updated_at"`
}

type RecordFilter struct {
	EmployeeID  *string `json:"employee_id,omitempty"`
	StartDate   *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate     *string `json:"end_date,omitempty"`   // YYYY-MM-DD
	MergeCase   *string `json:"merge_case,omitempty"`
	Status      *string `json:"status,omitempty"`
	NeedsReview *bool   `json:"needs_review,omitempty"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`

	// Sorting
	SortBy    string `json:"sort_by"`    // date, employee_name, merge_case, worked_hours
	SortOrder string `json:"sort_order"` // asc, desc
}

func (f *RecordFilter) Validate() error {
	page, limit, errs := validator.Pagination(f.Page, f.Limit, 20, 100)
	f.Page, f.Limit = page, limit

	if f.StartDate != nil && *f.StartDate != "" {
		if _, valid := validator.IsValidDate(*f.StartDate); !valid {
			errs.Add("start_date", "start_date must be in YYYY-MM-DD format")
		}
	}
	if f.EndDate != nil && *f.EndDate != "" {
		if _, valid := validator.IsValidDate(*f.EndDate); !valid {
			errs.Add("end_date", "end_date must be in YYYY-MM-DD format")
		}
	}
	if f.MergeCase != nil && !MergeCase(*f.MergeCase).Valid() {
		errs.Add("merge_case", "merge_case must be one of: BOTH_MATCHED, BOTH_MISMATCH, WF_ONLY, BIO_ONLY, NO_OUT, INCOMPLETE")
	}
	if f.Status != nil && !validator.IsInSlice(*f.Status, validStatuses) {
		errs.Add("status", "status must be one of: "+strings.Join(validStatuses, ", "))
	}

	if f.SortBy != "" {
		validSortFields := []string{"date", "employee_name", "merge_case", "worked_hours"}
		if !validator.IsInSlice(f.SortBy, validSortFields) {
			errs.Add("sort_by", "sort_by must be one of: date, employee_name, merge_case, worked_hours")
		}
	} else {
		f.SortBy = "date"
	}

	if f.SortOrder != "" {
		if !validator.IsInSlice(strings.ToLower(f.SortOrder), []string{"asc", "desc"}) {
			errs.Add("sort_order", "sort_order must be one of: asc, desc")
		}
	} else {
		f.SortOrder = "desc" // newest first
	}

	return errs.Err()
}

type ListRecordResponse struct {
	Records    []DailyRecordResponse `json:"records"`
	Pagination validator.PageInfo    `json:"-"`
}
