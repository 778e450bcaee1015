package telemetry

import "time"

// CognitiveState is the client-side classification of a telemetry window.
type CognitiveState string

const (
	StateDeepFocus  CognitiveState = "deep_focus"
	StateFocused    CognitiveState = "focused"
	StateNeutral    CognitiveState = "neutral"
	StateDistracted CognitiveState = "distracted"
	StateFatigued   CognitiveState = "fatigued"
	StateIdle       CognitiveState = "idle"
	StateAway       CognitiveState = "away"
)

var cognitiveStates = []CognitiveState{
	StateDeepFocus, StateFocused, StateNeutral, StateDistracted, StateFatigued, StateIdle, StateAway,
}

func (s CognitiveState) Valid() bool {
	for _, v := range cognitiveStates {
		if s == v {
			return true
		}
	}
	return false
}

// Tier is the productivity band of a focus score.
type Tier string

const (
	TierHigh    Tier = "High"
	TierMedium  Tier = "Medium"
	TierLow     Tier = "Low"
	TierVeryLow Tier = "Very Low"
)

// RawSignals are the browser counters a sample was derived from. They are
// stored for audit only.
type RawSignals struct {
	Clicks              int       `json:"clicks"`
	KeyPresses          int       `json:"key_presses"`
	ScrollEvents        int       `json:"scroll_events"`
	MouseVelocity       float64   `json:"mouse_velocity"`
	TabSwitches         int       `json:"tab_switches"`
	InactivityDurations []float64 `json:"inactivity_durations"`
}

// Sample is one ingested telemetry packet. Samples are append-only.
type Sample struct {
	ID             string
	CompanyID      string
	EmployeeID     string
	SessionID      string
	RecordedAt     time.Time // server receive time
	ClientTime     *time.Time
	CognitiveState CognitiveState
	ActiveSeconds  int
	IdleSeconds    int
	AwaySeconds    int
	FocusScore     float64
	RawSignals     RawSignals
}

// Aggregate is the roll-up of the samples of one employee over a period.
type Aggregate struct {
	Packets       int64
	AverageFocus  float64
	ActiveSeconds int64
	IdleSeconds   int64
	AwaySeconds   int64
	States        map[CognitiveState]int64
}

type DailyAggregate struct {
	Date time.Time
	Aggregate
}
