package postgresql_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/telemetry"
	"github.com/cmlabs-hris/workforce-backend-go/internal/repository/postgresql"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

func clock(h, m int) *time.Time {
	t := day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
	return &t
}

func createEmployee(t *testing.T, repo employee.EmployeeRepository, code string) employee.Employee {
	t.Helper()
	bio := "bio-" + code
	emp, err := repo.Create(context.Background(), employee.Employee{
		CompanyID:    testCompanyID,
		EmployeeCode: code,
		FullName:     "Employee " + code,
		BiometricID:  &bio,
		HourlyRate:   decimal.NewFromInt(25),
		IsActive:     true,
	})
	require.NoError(t, err)
	return emp
}

func TestEmployeeRepository_UniqueConstraints(t *testing.T) {
	setup := NewTestDatabase(t)
	repo := postgresql.NewEmployeeRepository(setup.DB)
	ctx := context.Background()

	emp := createEmployee(t, repo, "E001")

	_, err := repo.Create(ctx, employee.Employee{CompanyID: testCompanyID, EmployeeCode: "E001", FullName: "dup"})
	assert.ErrorIs(t, err, employee.ErrEmployeeCodeExists)

	_, err = repo.Create(ctx, employee.Employee{CompanyID: testCompanyID, EmployeeCode: "E002", FullName: "dup", BiometricID: emp.BiometricID})
	assert.ErrorIs(t, err, employee.ErrBiometricIDExists)

	found, err := repo.GetByBiometricID(ctx, *emp.BiometricID, testCompanyID)
	require.NoError(t, err)
	assert.Equal(t, emp.ID, found.ID)
	assert.Equal(t, "25.00", found.HourlyRate.StringFixed(2))
}

func TestAttendanceRepository_SourcesDoNotClobber(t *testing.T) {
	setup := NewTestDatabase(t)
	emp := createEmployee(t, postgresql.NewEmployeeRepository(setup.DB), "E001")
	repo := postgresql.NewAttendanceRepository(setup.DB)
	ctx := context.Background()

	loc := "Office"
	require.NoError(t, repo.UpsertAppPunch(ctx, testCompanyID, emp.ID, day, attendance.Punch{In: clock(9, 0)}, &loc))
	require.NoError(t, repo.UpsertBiometricPunch(ctx, testCompanyID, emp.ID, day, attendance.Punch{In: clock(9, 2), Out: clock(17, 22)}, false))
	require.NoError(t, repo.UpsertAppPunch(ctx, testCompanyID, emp.ID, day, attendance.Punch{Out: clock(17, 20)}, nil))

	rec, err := repo.GetForUpdate(ctx, testCompanyID, emp.ID, day)
	require.NoError(t, err)
	assert.True(t, rec.AppPunch.In.Equal(*clock(9, 0)))
	assert.True(t, rec.AppPunch.Out.Equal(*clock(17, 20)))
	assert.True(t, rec.BiometricPunch.In.Equal(*clock(9, 2)))
	require.NotNil(t, rec.AppInLocation)
	assert.Equal(t, "Office", *rec.AppInLocation)

	hours := 8.33
	rec.Final = attendance.FinalTimes{In: clock(9, 2), Out: clock(17, 22), WorkedHours: &hours}
	rec.MergeCase, rec.Remarks, rec.Status = attendance.CaseBothMatched, attendance.RemarkMatched, attendance.StatusPresent
	require.NoError(t, repo.SaveReconciliation(ctx, rec))

	days, err := repo.ListForPeriod(ctx, testCompanyID, emp.ID, day, day)
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, attendance.CaseBothMatched, days[0].MergeCase)
	assert.InDelta(t, 8.33, *days[0].Final.WorkedHours, 0.001)

	keys, err := repo.ListDayKeys(ctx, testCompanyID, nil, day, day)
	require.NoError(t, err)
	assert.Len(t, keys, 1)

	require.NoError(t, repo.Delete(ctx, rec.ID, testCompanyID))
	assert.ErrorIs(t, repo.Delete(ctx, rec.ID, testCompanyID), attendance.ErrRecordNotFound)
}

func TestAttendanceRepository_BiometricReplace(t *testing.T) {
	setup := NewTestDatabase(t)
	emp := createEmployee(t, postgresql.NewEmployeeRepository(setup.DB), "E001")
	repo := postgresql.NewAttendanceRepository(setup.DB)
	ctx := context.Background()

	require.NoError(t, repo.UpsertBiometricPunch(ctx, testCompanyID, emp.ID, day, attendance.Punch{In: clock(9, 0), Out: clock(23, 0)}, false))
	require.NoError(t, repo.UpsertBiometricPunch(ctx, testCompanyID, emp.ID, day, attendance.Punch{In: clock(9, 0)}, false))

	rec, err := repo.GetForUpdate(ctx, testCompanyID, emp.ID, day)
	require.NoError(t, err)
	require.NotNil(t, rec.BiometricPunch.Out)

	require.NoError(t, repo.UpsertBiometricPunch(ctx, testCompanyID, emp.ID, day, attendance.Punch{In: clock(9, 5)}, true))

	rec, err = repo.GetForUpdate(ctx, testCompanyID, emp.ID, day)
	require.NoError(t, err)
	assert.True(t, rec.BiometricPunch.In.Equal(*clock(9, 5)))
	assert.Nil(t, rec.BiometricPunch.Out)
}

func TestPayrollRepository_BucketMoveRollsBack(t *testing.T) {
	setup := NewTestDatabase(t)
	empRepo := postgresql.NewEmployeeRepository(setup.DB)
	repo := postgresql.NewPayrollRepository(setup.DB)
	tx := postgresql.NewTxManager(setup.DB)
	ctx := context.Background()

	var ids []string
	for _, code := range []string{"E001", "E002", "E003"} {
		emp := createEmployee(t, empRepo, code)
		rec, err := repo.CreateConfirmed(ctx, payroll.ConfirmedSalaryRecord{
			CompanyID:            testCompanyID,
			EmployeeID:           emp.ID,
			PeriodStart:          day,
			PeriodEnd:            day.AddDate(0, 0, 27),
			WorkingHours:         decimal.NewFromInt(160),
			HolidayHours:         decimal.Zero,
			TotalCumulativeHours: decimal.NewFromInt(160),
			HourlyRate:           decimal.NewFromInt(25),
			CalculatedSalary:     decimal.NewFromInt(4000),
			PerHourRate:          decimal.NewFromInt(25),
			ConfirmedSalary:      decimal.NewFromInt(4000),
			ConfirmedBy:          "manager-1",
			ConfirmedAt:          time.Now(),
		})
		require.NoError(t, err)
		ids = append(ids, rec.ID)
	}

	errAbort := errors.New("abort")
	err := tx.WithinTx(ctx, func(txCtx context.Context) error {
		locked, err := repo.LockAllConfirmed(txCtx, testCompanyID)
		require.NoError(t, err)
		require.Len(t, locked, 3)

		bucket, err := repo.CreateBucket(txCtx, payroll.SalaryBucket{
			ID: uuid.NewString(), CompanyID: testCompanyID, Label: "aborted", RecordCount: 3,
			TotalAmount: decimal.NewFromInt(12000), ArchivedBy: "manager-1", ArchivedAt: time.Now(),
		})
		require.NoError(t, err)

		moved, err := repo.CopyToHistory(txCtx, bucket.ID, testCompanyID, ids)
		require.NoError(t, err)
		assert.EqualValues(t, 3, moved)
		return errAbort
	})
	require.ErrorIs(t, err, errAbort)

	_, total, err := repo.ListConfirmed(ctx, testCompanyID, payroll.ConfirmedFilter{Page: 1, Limit: 50})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)

	buckets, err := repo.ListBuckets(ctx, testCompanyID)
	require.NoError(t, err)
	assert.Empty(t, buckets)
}

func TestSampleRepository_Summaries(t *testing.T) {
	setup := NewTestDatabase(t)
	emp := createEmployee(t, postgresql.NewEmployeeRepository(setup.DB), "E001")
	repo := postgresql.NewSampleRepository(setup.DB)
	ctx := context.Background()

	for i, s := range []struct {
		state telemetry.CognitiveState
		score float64
	}{{telemetry.StateFocused, 80}, {telemetry.StateFocused, 60}, {telemetry.StateIdle, 10}} {
		require.NoError(t, repo.Insert(ctx, telemetry.Sample{
			ID:             uuid.NewString(),
			CompanyID:      testCompanyID,
			EmployeeID:     emp.ID,
			SessionID:      "s1",
			RecordedAt:     day.Add(time.Duration(9+i) * time.Hour),
			CognitiveState: s.state,
			ActiveSeconds:  20,
			FocusScore:     s.score,
			RawSignals:     telemetry.RawSignals{Clicks: 3},
		}))
	}

	agg, err := repo.Summarize(ctx, testCompanyID, emp.ID, day, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.EqualValues(t, 3, agg.Packets)
	assert.InDelta(t, 50.0, agg.AverageFocus, 0.001)
	assert.EqualValues(t, 60, agg.ActiveSeconds)
	assert.EqualValues(t, 2, agg.States[telemetry.StateFocused])

	latest, err := repo.Latest(ctx, testCompanyID, emp.ID)
	require.NoError(t, err)
	assert.Equal(t, telemetry.StateIdle, latest.CognitiveState)
	assert.Equal(t, 3, latest.RawSignals.Clicks)

	daily, err := repo.SummarizeDaily(ctx, testCompanyID, emp.ID, day, day.AddDate(0, 0, 1), "UTC")
	require.NoError(t, err)
	require.Len(t, daily, 1)
	assert.EqualValues(t, 3, daily[0].Packets)
}
