package telemetry

import (
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/validator"
)

// IngestRequest is one periodic packet flushed by the browser agent.
type IngestRequest struct {
	SessionID      string     `json:"session_id"`
	CognitiveState string     `json:"cognitive_state"`
	ActiveSeconds  int        `json:"active_seconds"`
	IdleSeconds    int        `json:"idle_seconds"`
	AwaySeconds    int        `json:"away_seconds"`
	FocusScore     *float64   `json:"focus_score"`
	RawSignals     RawSignals `json:"raw_signals"`
	Timestamp      *string    `json:"timestamp,omitempty"` // RFC3339, kept for audit only
}

func (r *IngestRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.SessionID) {
		errs.Add("session_id", "session_id is required")
	}
	if validator.IsEmpty(r.CognitiveState) {
		errs.Add("cognitive_state", "cognitive_state is required")
	} else if !CognitiveState(r.CognitiveState).Valid() {
		errs.Add("cognitive_state", "cognitive_state must be one of: deep_focus, focused, neutral, distracted, fatigued, idle, away")
	}
	if r.FocusScore == nil {
		errs.Add("focus_score", "focus_score is required")
	} else if !validator.IsInRange(*r.FocusScore, 0, 100) {
		errs.Add("focus_score", "focus_score must be between 0 and 100")
	}
	if r.ActiveSeconds < 0 || r.IdleSeconds < 0 || r.AwaySeconds < 0 {
		errs.Add("seconds", "active, idle and away seconds must be non-negative")
	}
	s := r.RawSignals
	if s.Clicks < 0 || s.KeyPresses < 0 || s.ScrollEvents < 0 || s.TabSwitches < 0 || s.MouseVelocity < 0 {
		errs.Add("raw_signals", "counters must be non-negative")
	}
	if r.Timestamp != nil {
		if _, ok := validator.IsValidDateTime(*r.Timestamp); !ok {
			errs.Add("timestamp", "timestamp must be RFC3339")
		}
	}

	return errs.Err()
}

type SampleResponse struct {
	ID             string  `json:"id"`
	EmployeeID     string  `json:"employee_id"`
	SessionID      string  `json:"session_id"`
	RecordedAt     string  `json:"recorded_at"`
	ClientTime     *string `json:"client_timestamp,omitempty"`
	CognitiveState string  `json:"cognitive_state"`
	FocusScore     float64 `json:"focus_score"`
	Tier           Tier    `json:"tier"`
}

type LiveStatusResponse struct {
	EmployeeID     string   `json:"employee_id"`
	Live           bool     `json:"live"`
	LastSeenAt     *string  `json:"last_seen_at,omitempty"`
	CognitiveState *string  `json:"cognitive_state,omitempty"`
	FocusScore     *float64 `json:"focus_score,omitempty"`
	Tier           *Tier    `json:"tier,omitempty"`
}

// SummaryRequest selects an employee and a date range. EmployeeID defaults to
// the caller's own employee.
type SummaryRequest struct {
	EmployeeID string `json:"employee_id"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
}

func (r *SummaryRequest) Validate() error {
	_, _, errs := validator.ValidateDateRange(r.StartDate, r.EndDate)
	if r.EmployeeID != "" && !validator.IsValidUUID(r.EmployeeID) {
		errs.Add("employee_id", "employee_id must be a valid UUID")
	}
	return errs.Err()
}

type AggregateResponse struct {
	Packets       int64            `json:"packets"`
	AverageFocus  float64          `json:"average_focus"`
	Tier          Tier             `json:"tier,omitempty"`
	ActiveSeconds int64            `json:"active_seconds"`
	IdleSeconds   int64            `json:"idle_seconds"`
	AwaySeconds   int64            `json:"away_seconds"`
	States        map[string]int64 `json:"states"`
}

type SummaryResponse struct {
	EmployeeID string `json:"employee_id"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	AggregateResponse
	Live LiveStatusResponse `json:"live"`
}

type DailySummaryResponse struct {
	Date string `json:"date"`
	AggregateResponse
}
