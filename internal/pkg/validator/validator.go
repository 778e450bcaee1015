package validator

import (
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"
)

type ValidationError struct {
	Field   string
	Message string
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	var msgs []string
	for _, err := range v {
		msgs = append(msgs, err.Field+": "+err.Message)
	}
	return strings.Join(msgs, "; ")
}

func (v ValidationErrors) ToMap() map[string]string {
	result := make(map[string]string)
	for _, err := range v {
		result[err.Field] = err.Message
	}
	return result
}

// Add appends a field error.
func (v *ValidationErrors) Add(field, message string) {
	*v = append(*v, ValidationError{Field: field, Message: message})
}

// Err returns v as an error, or nil when no field failed.
func (v ValidationErrors) Err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// IsEmpty checks if a string is empty after trimming whitespace.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

// UUID validation, any version.
var uuidRegex = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

func IsValidUUID(uuid string) bool {
	return uuidRegex.MatchString(strings.ToLower(uuid))
}

// Date validation
func IsValidDate(dateStr string) (time.Time, bool) {
	date, err := time.Parse("2006-01-02", dateStr)
	return date, err == nil
}

// IsValidClock checks a wall clock time in HH:MM or HH:MM:SS form.
func IsValidClock(s string) (time.Time, bool) {
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// IsValidDateTime checks if a string is a valid ISO8601 timestamp.
// Accepts formats like: "2024-01-15T10:30:00Z" or "2024-01-15T10:30:00+07:00"
func IsValidDateTime(dateTimeStr string) (time.Time, bool) {
	t, err := time.Parse(time.RFC3339Nano, dateTimeStr)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Slice contains check
func IsInSlice(value string, slice []string) bool {
	return slices.Contains(slice, value)
}

// IsInRange reports whether lo <= f <= hi.
func IsInRange(f, lo, hi float64) bool {
	return f >= lo && f <= hi
}

// ValidateDateRange parses start and end and checks that end is not before start.
// Errors are attributed to the start_date and end_date fields.
func ValidateDateRange(start, end string) (time.Time, time.Time, ValidationErrors) {
	var errs ValidationErrors
	s, okStart := IsValidDate(start)
	if !okStart {
		errs.Add("start_date", "start_date must be in YYYY-MM-DD format")
	}
	e, okEnd := IsValidDate(end)
	if !okEnd {
		errs.Add("end_date", "end_date must be in YYYY-MM-DD format")
	}
	if okStart && okEnd && e.Before(s) {
		errs.Add("end_date", "end_date must not be before start_date")
	}
	return s, e, errs
}

// Pagination normalises page and limit, defaulting to page 1 and the given limit.
func Pagination(page, limit, defaultLimit, maxLimit int) (int, int, ValidationErrors) {
	var errs ValidationErrors
	if page < 0 {
		errs.Add("page", "page must be a positive number")
	}
	if page == 0 {
		page = 1
	}
	if limit < 0 {
		errs.Add("limit", "limit must be a positive number")
	}
	if limit == 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		errs.Add("limit", "limit must not exceed "+Itoa(maxLimit))
	}
	return page, limit, errs
}

// PageInfo locates one page within a listing.
type PageInfo struct {
	Page       int
	Limit      int
	TotalItems int64
}

// Itoa converts an integer to a string.
func Itoa(i int) string {
	return strconv.Itoa(i)
}
