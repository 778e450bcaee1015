package attendance

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/attendance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

func at(clock string) *time.Time {
	d, err := time.Parse("15:04", clock)
	if err != nil {
		panic(err)
	}
	t := day.Add(time.Duration(d.Hour())*time.Hour + time.Duration(d.Minute())*time.Minute)
	return &t
}

func newTestReconciler(tieBreak attendance.TieBreakSource) *Reconciler {
	return NewReconciler(ReconcileConfig{
		Tolerance:    20 * time.Minute,
		TieBreak:     tieBreak,
		ShiftStart:   9 * time.Hour,
		LateGrace:    15 * time.Minute,
		HalfDayHours: 4.5,
		Location:     time.UTC,
	})
}

func TestReconcile_Cases(t *testing.T) {
	r := newTestReconciler(attendance.TieBreakBiometric)

	tests := []struct {
		name       string
		app        attendance.Punch
		bio        attendance.Punch
		wantCase   attendance.MergeCase
		wantRemark string
		wantIn     *time.Time
		wantOut    *time.Time
		wantHours  *float64
		wantReview bool
	}{
		{
			name:       "both within tolerance takes biometric",
			app:        attendance.Punch{In: at("09:00"), Out: at("17:30")},
			bio:        attendance.Punch{In: at("09:15"), Out: at("17:35")},
			wantCase:   attendance.CaseBothMatched,
			wantRemark: attendance.RemarkMatched,
			wantIn:     at("09:15"),
			wantOut:    at("17:35"),
			wantHours:  ptr(8.33),
		},
		{
			name:       "out differs by two hours",
			app:        attendance.Punch{In: at("09:00"), Out: at("18:00")},
			bio:        attendance.Punch{In: at("09:00"), Out: at("20:00")},
			wantCase:   attendance.CaseBothMismatch,
			wantRemark: "MISMATCH_20+",
			wantIn:     at("09:00"),
			wantOut:    at("20:00"),
			wantHours:  ptr(11.0),
			wantReview: true,
		},
		{
			name:       "exactly at tolerance still matches",
			app:        attendance.Punch{In: at("08:40"), Out: at("17:00")},
			bio:        attendance.Punch{In: at("09:00"), Out: at("17:20")},
			wantCase:   attendance.CaseBothMatched,
			wantRemark: attendance.RemarkMatched,
			wantIn:     at("09:00"),
			wantOut:    at("17:20"),
			wantHours:  ptr(8.33),
		},
		{
			name:       "app only",
			app:        attendance.Punch{In: at("09:00"), Out: at("17:00")},
			bio:        attendance.Punch{},
			wantCase:   attendance.CaseWFOnly,
			wantRemark: attendance.RemarkBioMissing,
			wantIn:     at("09:00"),
			wantOut:    at("17:00"),
			wantHours:  ptr(8.0),
		},
		{
			name:       "biometric only",
			app:        attendance.Punch{},
			bio:        attendance.Punch{In: at("08:55"), Out: at("17:10")},
			wantCase:   attendance.CaseBioOnly,
			wantRemark: attendance.RemarkWFMissing,
			wantIn:     at("08:55"),
			wantOut:    at("17:10"),
			wantHours:  ptr(8.25),
		},
		{
			name:       "biometric complete wins over dangling app punch",
			app:        attendance.Punch{In: at("09:00")},
			bio:        attendance.Punch{In: at("09:05"), Out: at("17:05")},
			wantCase:   attendance.CaseBioOnly,
			wantRemark: attendance.RemarkWFMissing,
			wantIn:     at("09:05"),
			wantOut:    at("17:05"),
			wantHours:  ptr(8.0),
		},
		{
			name:       "punch in without any punch out",
			app:        attendance.Punch{In: at("09:10")},
			bio:        attendance.Punch{In: at("09:02")},
			wantCase:   attendance.CaseNoOut,
			wantRemark: attendance.RemarkNoPunchOut,
			wantIn:     at("09:02"),
			wantReview: true,
		},
		{
			name:       "in from one source and out from the other",
			app:        attendance.Punch{In: at("09:00")},
			bio:        attendance.Punch{Out: at("17:00")},
			wantCase:   attendance.CaseIncomplete,
			wantRemark: attendance.RemarkIncompleteData,
			wantReview: true,
		},
		{
			name:       "nothing recorded",
			wantCase:   attendance.CaseIncomplete,
			wantRemark: attendance.RemarkIncompleteData,
			wantReview: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Reconcile(tt.app, tt.bio)

			assert.Equal(t, tt.wantCase, got.MergeCase)
			assert.Equal(t, tt.wantRemark, got.Remarks)
			assert.Equal(t, tt.wantReview, got.NeedsReview)
			assert.Equal(t, tt.wantIn, got.Final.In)
			assert.Equal(t, tt.wantOut, got.Final.Out)
			if tt.wantHours == nil {
				assert.Nil(t, got.Final.WorkedHours)
			} else {
				require.NotNil(t, got.Final.WorkedHours)
				assert.InDelta(t, *tt.wantHours, *got.Final.WorkedHours, 1e-9)
			}
		})
	}
}

func TestReconcile_AppTieBreak(t *testing.T) {
	r := newTestReconciler(attendance.TieBreakApp)

	got := r.Reconcile(
		attendance.Punch{In: at("09:00"), Out: at("18:00")},
		attendance.Punch{In: at("09:00"), Out: at("20:00")},
	)

	assert.Equal(t, attendance.CaseBothMismatch, got.MergeCase)
	assert.Equal(t, at("18:00"), got.Final.Out)
	assert.True(t, got.NeedsReview)
}

func TestReconcile_MismatchRemarkFollowsTolerance(t *testing.T) {
	r := NewReconciler(ReconcileConfig{Tolerance: 10 * time.Minute})

	got := r.Reconcile(
		attendance.Punch{In: at("09:00"), Out: at("17:00")},
		attendance.Punch{In: at("09:15"), Out: at("17:00")},
	)

	assert.Equal(t, attendance.CaseBothMismatch, got.MergeCase)
	assert.Equal(t, "MISMATCH_10+", got.Remarks)
}

func TestReconcile_WorkedHoursNeverNegative(t *testing.T) {
	r := newTestReconciler(attendance.TieBreakBiometric)

	got := r.Reconcile(attendance.Punch{}, attendance.Punch{In: at("17:00"), Out: at("09:00")})

	require.NotNil(t, got.Final.WorkedHours)
	assert.Equal(t, 0.0, *got.Final.WorkedHours)
}

func TestReconcile_WorkedHoursNilExactlyWhenUnpayable(t *testing.T) {
	r := newTestReconciler(attendance.TieBreakBiometric)
	punches := []attendance.Punch{
		{},
		{In: at("09:00")},
		{Out: at("17:00")},
		{In: at("09:00"), Out: at("17:00")},
		{In: at("09:30"), Out: at("19:00")},
	}

	for _, app := range punches {
		for _, bio := range punches {
			got := r.Reconcile(app, bio)
			assert.Equal(t, !got.MergeCase.Payable(), got.Final.WorkedHours == nil,
				"case %s", got.MergeCase)
		}
	}
}

func TestDeriveStatus(t *testing.T) {
	r := newTestReconciler(attendance.TieBreakBiometric)

	full := attendance.FinalTimes{In: at("09:05"), Out: at("17:05"), WorkedHours: ptr(8.0)}
	late := attendance.FinalTimes{In: at("09:30"), Out: at("17:30"), WorkedHours: ptr(8.0)}
	short := attendance.FinalTimes{In: at("09:00"), Out: at("12:00"), WorkedHours: ptr(3.0)}

	assert.Equal(t, attendance.StatusPresent, r.DeriveStatus(attendance.StatusAbsent, day, full))
	assert.Equal(t, attendance.StatusLate, r.DeriveStatus(attendance.StatusAbsent, day, late))
	assert.Equal(t, attendance.StatusHalfDay, r.DeriveStatus(attendance.StatusPresent, day, short))
	assert.Equal(t, attendance.StatusAbsent, r.DeriveStatus(attendance.StatusPresent, day, attendance.FinalTimes{}))
	assert.Equal(t, attendance.StatusOnLeave, r.DeriveStatus(attendance.StatusOnLeave, day, full))
	assert.Equal(t, attendance.StatusHoliday, r.DeriveStatus(attendance.StatusHoliday, day, attendance.FinalTimes{}))
}

func ptr[T any](v T) *T { return &v }
