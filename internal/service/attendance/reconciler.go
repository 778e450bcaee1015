package attendance

import (
	"fmt"
	"math"
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/attendance"
)

// ReconcileConfig parameterises the reconciler. It is built from config at
// start-up and never read from globals.
type ReconcileConfig struct {
	Tolerance    time.Duration
	TieBreak     attendance.TieBreakSource
	ShiftStart   time.Duration // offset from local midnight
	LateGrace    time.Duration
	HalfDayHours float64
	Location     *time.Location
}

// Reconciler merges the app and biometric punches of a day. It holds no
// state besides its configuration and is safe for concurrent use.
type Reconciler struct {
	cfg ReconcileConfig
}

func NewReconciler(cfg ReconcileConfig) *Reconciler {
	if cfg.TieBreak == "" {
		cfg.TieBreak = attendance.TieBreakBiometric
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Reconciler{cfg: cfg}
}

// MismatchRemark is the remark for days whose sources disagree, e.g. MISMATCH_20+.
func (r *Reconciler) MismatchRemark() string {
	return fmt.Sprintf("MISMATCH_%d+", int(r.cfg.Tolerance/time.Minute))
}

// Reconcile classifies a day. Cases are checked in a fixed precedence order:
// both sources, app only, biometric only, dangling punch-in, nothing usable.
func (r *Reconciler) Reconcile(app, bio attendance.Punch) attendance.Reconciliation {
	switch {
	case app.Complete() && bio.Complete():
		winner := bio
		if r.cfg.TieBreak == attendance.TieBreakApp {
			winner = app
		}
		if r.withinTolerance(*app.In, *bio.In) && r.withinTolerance(*app.Out, *bio.Out) {
			return attendance.Reconciliation{
				Final:     finalFrom(winner),
				MergeCase: attendance.CaseBothMatched,
				Remarks:   attendance.RemarkMatched,
			}
		}
		return attendance.Reconciliation{
			Final:       finalFrom(winner),
			MergeCase:   attendance.CaseBothMismatch,
			Remarks:     r.MismatchRemark(),
			NeedsReview: true,
		}

	case app.Complete():
		return attendance.Reconciliation{
			Final:     finalFrom(app),
			MergeCase: attendance.CaseWFOnly,
			Remarks:   attendance.RemarkBioMissing,
		}

	case bio.Complete():
		return attendance.Reconciliation{
			Final:     finalFrom(bio),
			MergeCase: attendance.CaseBioOnly,
			Remarks:   attendance.RemarkWFMissing,
		}

	case (app.In != nil || bio.In != nil) && app.Out == nil && bio.Out == nil:
		in := bio.In
		if in == nil || (r.cfg.TieBreak == attendance.TieBreakApp && app.In != nil) {
			in = app.In
		}
		return attendance.Reconciliation{
			Final:       attendance.FinalTimes{In: in},
			MergeCase:   attendance.CaseNoOut,
			Remarks:     attendance.RemarkNoPunchOut,
			NeedsReview: true,
		}
	}

	// Only an out, or an in from one source with an out from the other.
	return attendance.Reconciliation{
		MergeCase:   attendance.CaseIncomplete,
		Remarks:     attendance.RemarkIncompleteData,
		NeedsReview: true,
	}
}

// DeriveStatus returns the day status for a reconciled record. Leave and
// holiday are set by an admin and survive reconciliation.
func (r *Reconciler) DeriveStatus(current attendance.Status, date time.Time, final attendance.FinalTimes) attendance.Status {
	if current == attendance.StatusOnLeave || current == attendance.StatusHoliday {
		return current
	}
	if final.In == nil {
		return attendance.StatusAbsent
	}
	if final.WorkedHours != nil && *final.WorkedHours < r.cfg.HalfDayHours {
		return attendance.StatusHalfDay
	}

	y, m, d := date.Date()
	shiftStart := time.Date(y, m, d, 0, 0, 0, 0, r.cfg.Location).Add(r.cfg.ShiftStart)
	if final.In.After(shiftStart.Add(r.cfg.LateGrace)) {
		return attendance.StatusLate
	}
	return attendance.StatusPresent
}

func (r *Reconciler) withinTolerance(a, b time.Time) bool {
	diff := a.Sub(b)
	if diff < 0 {
		diff = -diff
	}
	return diff <= r.cfg.Tolerance
}

func finalFrom(p attendance.Punch) attendance.FinalTimes {
	hours := WorkedHours(*p.In, *p.Out)
	return attendance.FinalTimes{In: p.In, Out: p.Out, WorkedHours: &hours}
}

// WorkedHours returns out-in in hours, rounded to two decimals and never negative.
func WorkedHours(in, out time.Time) float64 {
	h := out.Sub(in).Hours()
	if h < 0 {
		return 0
	}
	return math.Round(h*100) / 100
}
