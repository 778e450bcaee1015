package attendance

import (
	"time"
)

// MergeCase classifies how the app and biometric punches of a day were merged.
type MergeCase string

const (
	CaseBothMatched  MergeCase = "BOTH_MATCHED"
	CaseBothMismatch MergeCase = "BOTH_MISMATCH"
	CaseWFOnly       MergeCase = "WF_ONLY"
	CaseBioOnly      MergeCase = "BIO_ONLY"
	CaseNoOut        MergeCase = "NO_OUT"
	CaseIncomplete   MergeCase = "INCOMPLETE"
)

// Remarks are the short review labels attached to each merge case.
const (
	RemarkMatched        = "MATCHED"
	RemarkBioMissing     = "BIO_MISSING"
	RemarkWFMissing      = "WF_MISSING"
	RemarkNoPunchOut     = "NO_PUNCH_OUT"
	RemarkIncompleteData = "INCOMPLETE_DATA"
)

func (c MergeCase) Payable() bool {
	return c != CaseNoOut && c != CaseIncomplete
}

func (c MergeCase) Valid() bool {
	switch c {
	case CaseBothMatched, CaseBothMismatch, CaseWFOnly, CaseBioOnly, CaseNoOut, CaseIncomplete:
		return true
	}
	return false
}

type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusHalfDay Status = "half_day"
	StatusLate    Status = "late"
	StatusOnLeave Status = "on_leave"
	StatusHoliday Status = "holiday"
)

var validStatuses = []string{
	string(StatusPresent), string(StatusAbsent), string(StatusHalfDay),
	string(StatusLate), string(StatusOnLeave), string(StatusHoliday),
}

// TieBreakSource names the punch source that wins when both are usable.
type TieBreakSource string

const (
	TieBreakBiometric TieBreakSource = "biometric"
	TieBreakApp       TieBreakSource = "app"
)

// PunchSource identifies where a punch came from.
type PunchSource string

const (
	SourceApp       PunchSource = "app"
	SourceBiometric PunchSource = "biometric"
)

// Punch is an in/out pair from a single source. Either side may be missing.
type Punch struct {
	In  *time.Time
	Out *time.Time
}

// Complete reports whether both sides of the pair are recorded.
func (p Punch) Complete() bool {
	return p.In != nil && p.Out != nil
}

// FinalTimes is the reconciled, authoritative record of a day.
type FinalTimes struct {
	In          *time.Time
	Out         *time.Time
	WorkedHours *float64
}

// DailyRecord is one employee's attendance for one calendar day.
type DailyRecord struct {
	ID             string
	CompanyID      string
	EmployeeID     string
	Date           time.Time
	AppPunch       Punch
	AppInLocation  *string
	BiometricPunch Punch
	Final          FinalTimes
	MergeCase      MergeCase
	Remarks        string
	NeedsReview    bool
	Status         Status
	ManualOverride bool
	OverriddenBy   *string
	OverrideNotes  *string
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// Joined fields
	EmployeeName *string
}

// Reconciliation is the outcome of merging both punch sources for a day.
type Reconciliation struct {
	Final       FinalTimes
	MergeCase   MergeCase
	Remarks     string
	NeedsReview bool
}
