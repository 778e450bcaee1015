package attendance

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/biometric"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/validator"
	"github.com/go-chi/jwtauth/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("github.com/cmlabs-hris/workforce-backend-go/internal/service/attendance")

// LocationLabeler turns coordinates into a stored label. Implementations must
// not fail; they fall back to raw coordinates.
type LocationLabeler interface {
	Label(ctx context.Context, lat, lng float64) string
}

type AttendanceServiceImpl struct {
	tx           database.Transactor
	repo         attendance.Repository
	employeeRepo employee.EmployeeRepository
	reconciler   *Reconciler
	labeler      LocationLabeler
	parser       *biometric.Parser
	loc          *time.Location
	now          func() time.Time
}

func NewAttendanceService(
	tx database.Transactor,
	repo attendance.Repository,
	employeeRepo employee.EmployeeRepository,
	reconciler *Reconciler,
	labeler LocationLabeler,
	parser *biometric.Parser,
	loc *time.Location,
) attendance.Service {
	if loc == nil {
		loc = time.UTC
	}
	return &AttendanceServiceImpl{
		tx:           tx,
		repo:         repo,
		employeeRepo: employeeRepo,
		reconciler:   reconciler,
		labeler:      labeler,
		parser:       parser,
		loc:          loc,
		now:          time.Now,
	}
}

// Helper to get company_id and user_id from JWT context
func getClaimsFromContext(ctx context.Context) (companyID, userID string, err error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", "", fmt.Errorf("failed to extract claims from context: %w", err)
	}

	companyID, ok := claims["company_id"].(string)
	if !ok || companyID == "" {
		return "", "", fmt.Errorf("company_id claim is missing or invalid")
	}

	userID, _ = claims["user_id"].(string)

	return companyID, userID, nil
}

// calendarDay returns the local calendar day of t as a midnight UTC date.
func (s *AttendanceServiceImpl) calendarDay(t time.Time) time.Time {
	y, m, d := t.In(s.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// atClock places a HH:MM[:SS] clock on a calendar day in the company zone.
func (s *AttendanceServiceImpl) atClock(date time.Time, clock string) (*time.Time, bool) {
	if clock == "" {
		return nil, true
	}
	c, ok := validator.IsValidClock(clock)
	if !ok {
		return nil, false
	}
	y, m, d := date.Date()
	t := time.Date(y, m, d, c.Hour(), c.Minute(), c.Second(), 0, s.loc)
	return &t, true
}

// reconcileDay re-derives the final times of one day. It must run inside a
// transaction. Manually overridden days are returned untouched.
func (s *AttendanceServiceImpl) reconcileDay(ctx context.Context, companyID, employeeID string, date time.Time) (attendance.DailyRecord, bool, error) {
	rec, err := s.repo.GetForUpdate(ctx, companyID, employeeID, date)
	if err != nil {
		return attendance.DailyRecord{}, false, err
	}
	if rec.ManualOverride {
		return rec, true, nil
	}

	result := s.reconciler.Reconcile(rec.AppPunch, rec.BiometricPunch)
	rec.Final = result.Final
	rec.MergeCase = result.MergeCase
	rec.Remarks = result.Remarks
	rec.NeedsReview = result.NeedsReview
	rec.Status = s.reconciler.DeriveStatus(rec.Status, rec.Date, result.Final)

	if err := s.repo.SaveReconciliation(ctx, rec); err != nil {
		return attendance.DailyRecord{}, false, fmt.Errorf("failed to save reconciliation: %w", err)
	}
	return rec, false, nil
}

// ========== PUNCHES ==========

// RecordAppPunch implements attendance.Service.
func (s *AttendanceServiceImpl) RecordAppPunch(ctx context.Context, req attendance.AppPunchRequest) (attendance.DailyRecordResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.DailyRecordResponse{}, err
	}

	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return attendance.DailyRecordResponse{}, err
	}

	if _, err := s.employeeRepo.GetByID(ctx, req.EmployeeID, companyID); err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return attendance.DailyRecordResponse{}, attendance.ErrEmployeeNotFound
		}
		return attendance.DailyRecordResponse{}, fmt.Errorf("failed to get employee: %w", err)
	}

	ts := s.now().UTC()
	date := s.calendarDay(ts)

	var punch attendance.Punch
	var location *string
	switch req.Action {
	case attendance.ActionStartDay:
		punch.In = &ts
		if req.Latitude != nil && req.Longitude != nil && s.labeler != nil {
			label := s.labeler.Label(ctx, *req.Latitude, *req.Longitude)
			location = &label
		}
	case attendance.ActionEndDay:
		punch.Out = &ts
	}

	var rec attendance.DailyRecord
	err = s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		if punch.Out != nil {
			current, err := s.repo.GetForUpdate(txCtx, companyID, req.EmployeeID, date)
			switch {
			case err == nil:
				if current.AppPunch.In != nil && punch.Out.Before(*current.AppPunch.In) {
					return attendance.ErrPunchOutBeforeIn
				}
			case !errors.Is(err, attendance.ErrRecordNotFound):
				return fmt.Errorf("failed to load attendance day: %w", err)
			}
		}

		if err := s.repo.UpsertAppPunch(txCtx, companyID, req.EmployeeID, date, punch, location); err != nil {
			return fmt.Errorf("failed to store app punch: %w", err)
		}

		rec, _, err = s.reconcileDay(txCtx, companyID, req.EmployeeID, date)
		return err
	})
	if err != nil {
		return attendance.DailyRecordResponse{}, err
	}

	return s.mapRecordToResponse(rec), nil
}

// ImportBiometric implements attendance.Service.
func (s *AttendanceServiceImpl) ImportBiometric(ctx context.Context, req attendance.ImportBiometricRequest) (attendance.ImportBiometricResponse, error) {
	ctx, span := tracer.Start(ctx, "attendance.ImportBiometric")
	defer span.End()

	if err := req.Validate(); err != nil {
		return attendance.ImportBiometricResponse{}, err
	}

	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return attendance.ImportBiometricResponse{}, err
	}

	resp := attendance.ImportBiometricResponse{
		Received: len(req.Rows),
		Failed:   []attendance.RowError{},
	}
	employees := map[string]string{}

	for i, row := range req.Rows {
		line := row.Line
		if line == 0 {
			line = i + 1
		}
		if err := s.importRow(ctx, companyID, row, req.Replace, employees); err != nil {
			var vErrs validator.ValidationErrors
			switch {
			case errors.As(err, &vErrs), errors.Is(err, attendance.ErrUnknownBiometricID), errors.Is(err, attendance.ErrPunchOutBeforeIn):
			default:
				slog.Error("failed to import biometric row", "line", line, "biometric_id", row.BiometricID, "error", err)
			}
			resp.Failed = append(resp.Failed, attendance.RowError{
				Line:        line,
				BiometricID: row.BiometricID,
				Message:     err.Error(),
			})
			continue
		}
		resp.Imported++
	}

	span.SetAttributes(
		attribute.Int("biometric.received", resp.Received),
		attribute.Int("biometric.imported", resp.Imported),
		attribute.Int("biometric.failed", len(resp.Failed)),
	)
	return resp, nil
}

// importRow upserts one device row in its own transaction and reconciles the day.
func (s *AttendanceServiceImpl) importRow(ctx context.Context, companyID string, row attendance.BiometricRow, replace bool, employees map[string]string) error {
	if err := row.Validate(); err != nil {
		return err
	}

	employeeID, ok := employees[row.BiometricID]
	if !ok {
		emp, err := s.employeeRepo.GetByBiometricID(ctx, row.BiometricID, companyID)
		if err != nil {
			if errors.Is(err, employee.ErrEmployeeNotFound) {
				return attendance.ErrUnknownBiometricID
			}
			return fmt.Errorf("failed to get employee by biometric id: %w", err)
		}
		employeeID = emp.ID
		employees[row.BiometricID] = employeeID
	}

	date, _ := validator.IsValidDate(row.Date)
	in, _ := s.atClock(date, row.TimeIn)
	out, _ := s.atClock(date, row.TimeOut)
	if in != nil && out != nil && out.Before(*in) {
		return attendance.ErrPunchOutBeforeIn
	}

	return s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.UpsertBiometricPunch(txCtx, companyID, employeeID, date, attendance.Punch{In: in, Out: out}, replace); err != nil {
			return fmt.Errorf("failed to store biometric punch: %w", err)
		}
		_, _, err := s.reconcileDay(txCtx, companyID, employeeID, date)
		return err
	})
}

// ImportBiometricFile implements attendance.Service.
func (s *AttendanceServiceImpl) ImportBiometricFile(ctx context.Context, filename string, r io.Reader, replace bool) (attendance.ImportBiometricResponse, error) {
	if !biometric.Supported(filename) {
		return attendance.ImportBiometricResponse{}, attendance.ErrUnsupportedUploadType
	}

	parsed, err := s.parser.Parse(r, filename)
	if err != nil {
		if errors.Is(err, biometric.ErrEmptyLog) || errors.Is(err, biometric.ErrMissingColumns) {
			var errs validator.ValidationErrors
			errs.Add("file", err.Error())
			return attendance.ImportBiometricResponse{}, errs
		}
		return attendance.ImportBiometricResponse{}, fmt.Errorf("failed to parse biometric log: %w", err)
	}

	resp := attendance.ImportBiometricResponse{Failed: []attendance.RowError{}}
	if len(parsed.Rows) > 0 {
		rows := make([]attendance.BiometricRow, 0, len(parsed.Rows))
		for _, row := range parsed.Rows {
			rows = append(rows, attendance.BiometricRow{
				Line:        row.Line,
				Name:        row.Name,
				BiometricID: row.BiometricID,
				Date:        row.Date,
				TimeIn:      row.TimeIn,
				TimeOut:     row.TimeOut,
			})
		}
		resp, err = s.ImportBiometric(ctx, attendance.ImportBiometricRequest{Rows: rows, Replace: replace})
		if err != nil {
			return attendance.ImportBiometricResponse{}, err
		}
	}

	for _, pe := range parsed.Errors {
		resp.Failed = append(resp.Failed, attendance.RowError{Line: pe.Line, Message: pe.Message})
	}
	resp.Received += len(parsed.Errors)

	return resp, nil
}

// ========== RECONCILIATION ==========

// Reconcile implements attendance.Service.
func (s *AttendanceServiceImpl) Reconcile(ctx context.Context, employeeID string, date time.Time) (attendance.DailyRecordResponse, error) {
	ctx, span := tracer.Start(ctx, "attendance.Reconcile")
	defer span.End()

	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return attendance.DailyRecordResponse{}, err
	}

	var rec attendance.DailyRecord
	err = s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		rec, _, err = s.reconcileDay(txCtx, companyID, employeeID, s.calendarDay(date))
		return err
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return attendance.DailyRecordResponse{}, err
	}

	span.SetAttributes(attribute.String("attendance.merge_case", string(rec.MergeCase)))
	return s.mapRecordToResponse(rec), nil
}

// ReconcileRange implements attendance.Service.
func (s *AttendanceServiceImpl) ReconcileRange(ctx context.Context, req attendance.ReconcileRequest) (attendance.ReconcileResponse, error) {
	ctx, span := tracer.Start(ctx, "attendance.ReconcileRange")
	defer span.End()

	start, end, errs := validator.ValidateDateRange(req.StartDate, req.EndDate)
	if req.EmployeeID != nil && !validator.IsValidUUID(*req.EmployeeID) {
		errs.Add("employee_id", "employee_id must be a valid UUID")
	}
	if err := errs.Err(); err != nil {
		return attendance.ReconcileResponse{}, err
	}

	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return attendance.ReconcileResponse{}, err
	}

	keys, err := s.repo.ListDayKeys(ctx, companyID, req.EmployeeID, start, end)
	if err != nil {
		return attendance.ReconcileResponse{}, fmt.Errorf("failed to list attendance days: %w", err)
	}

	resp := attendance.ReconcileResponse{Cases: map[attendance.MergeCase]int{}}
	for _, key := range keys {
		var rec attendance.DailyRecord
		var skipped bool
		err := s.tx.WithinTx(ctx, func(txCtx context.Context) error {
			var err error
			rec, skipped, err = s.reconcileDay(txCtx, companyID, key.EmployeeID, key.Date)
			return err
		})
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			return resp, fmt.Errorf("failed to reconcile %s on %s: %w", key.EmployeeID, key.Date.Format("2006-01-02"), err)
		}
		if skipped {
			resp.Skipped++
			continue
		}
		resp.Processed++
		resp.Cases[rec.MergeCase]++
	}

	span.SetAttributes(
		attribute.Int("attendance.processed", resp.Processed),
		attribute.Int("attendance.skipped", resp.Skipped),
	)
	return resp, nil
}

// ========== READS ==========

// GetRecord implements attendance.Service.
func (s *AttendanceServiceImpl) GetRecord(ctx context.Context, id string) (attendance.DailyRecordResponse, error) {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return attendance.DailyRecordResponse{}, err
	}

	rec, err := s.repo.GetByID(ctx, id, companyID)
	if err != nil {
		return attendance.DailyRecordResponse{}, err
	}
	return s.mapRecordToResponse(rec), nil
}

// ListRecords implements attendance.Service.
func (s *AttendanceServiceImpl) ListRecords(ctx context.Context, filter attendance.RecordFilter) (attendance.ListRecordResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListRecordResponse{}, err
	}

	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return attendance.ListRecordResponse{}, err
	}

	records, total, err := s.repo.List(ctx, filter, companyID)
	if err != nil {
		return attendance.ListRecordResponse{}, fmt.Errorf("failed to list attendance records: %w", err)
	}

	responses := make([]attendance.DailyRecordResponse, 0, len(records))
	for _, rec := range records {
		responses = append(responses, s.mapRecordToResponse(rec))
	}

	return attendance.ListRecordResponse{
		Records:    responses,
		Pagination: validator.PageInfo{Page: filter.Page, Limit: filter.Limit, TotalItems: total},
	}, nil
}

// ListReviewQueue implements attendance.Service.
func (s *AttendanceServiceImpl) ListReviewQueue(ctx context.Context, filter attendance.RecordFilter) (attendance.ListRecordResponse, error) {
	needsReview := true
	filter.NeedsReview = &needsReview
	if filter.SortOrder == "" {
		filter.SortOrder = "asc" // oldest first
	}
	return s.ListRecords(ctx, filter)
}

// ========== ADMIN ==========

// OverrideRecord implements attendance.Service.
func (s *AttendanceServiceImpl) OverrideRecord(ctx context.Context, req attendance.OverrideRequest) (attendance.DailyRecordResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.DailyRecordResponse{}, err
	}

	companyID, userID, err := getClaimsFromContext(ctx)
	if err != nil {
		return attendance.DailyRecordResponse{}, err
	}

	in, _ := validator.IsValidDateTime(req.FinalIn)
	out, _ := validator.IsValidDateTime(req.FinalOut)
	in, out = in.UTC(), out.UTC()

	var rec attendance.DailyRecord
	err = s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.GetByID(txCtx, req.ID, companyID)
		if err != nil {
			return err
		}
		rec, err = s.repo.GetForUpdate(txCtx, companyID, existing.EmployeeID, existing.Date)
		if err != nil {
			return err
		}

		hours := WorkedHours(in, out)
		rec.Final = attendance.FinalTimes{In: &in, Out: &out, WorkedHours: &hours}
		rec.NeedsReview = false
		rec.ManualOverride = true
		rec.OverriddenBy = &userID
		rec.OverrideNotes = &req.Notes
		if req.Status != nil {
			rec.Status = attendance.Status(*req.Status)
		} else {
			rec.Status = s.reconciler.DeriveStatus(rec.Status, rec.Date, rec.Final)
		}

		if err := s.repo.SaveOverride(txCtx, rec); err != nil {
			return fmt.Errorf("failed to save override: %w", err)
		}
		return nil
	})
	if err != nil {
		return attendance.DailyRecordResponse{}, err
	}

	slog.Info("attendance day overridden", "record_id", rec.ID, "employee_id", rec.EmployeeID, "by", userID)
	return s.mapRecordToResponse(rec), nil
}

// PurgeRecord implements attendance.Service.
func (s *AttendanceServiceImpl) PurgeRecord(ctx context.Context, id string) error {
	companyID, userID, err := getClaimsFromContext(ctx)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id, companyID); err != nil {
		if errors.Is(err, attendance.ErrRecordNotFound) {
			return attendance.ErrRecordNotFound
		}
		return fmt.Errorf("failed to delete attendance record: %w", err)
	}

	slog.Info("attendance day purged", "record_id", id, "by", userID)
	return nil
}

// ========== MAPPING ==========

func (s *AttendanceServiceImpl) formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	v := t.In(s.loc).Format(time.RFC3339)
	return &v
}

func (s *AttendanceServiceImpl) mapRecordToResponse(rec attendance.DailyRecord) attendance.DailyRecordResponse {
	resp := attendance.DailyRecordResponse{
		ID:         rec.ID,
		EmployeeID: rec.EmployeeID,
		Date:       rec.Date.Format("2006-01-02"),
		AppPunch: attendance.PunchResponse{
			In:  s.formatTime(rec.AppPunch.In),
			Out: s.formatTime(rec.AppPunch.Out),
		},
		AppInLocation: rec.AppInLocation,
		BiometricPunch: attendance.PunchResponse{
			In:  s.formatTime(rec.BiometricPunch.In),
			Out: s.formatTime(rec.BiometricPunch.Out),
		},
		FinalTimes: attendance.FinalTimesResponse{
			In:          s.formatTime(rec.Final.In),
			Out:         s.formatTime(rec.Final.Out),
			WorkedHours: rec.Final.WorkedHours,
		},
		MergeCase:      rec.MergeCase,
		Remarks:        rec.Remarks,
		NeedsReview:    rec.NeedsReview,
		Status:         rec.Status,
		ManualOverride: rec.ManualOverride,
		OverriddenBy:   rec.OverriddenBy,
		OverrideNotes:  rec.OverrideNotes,
		UpdatedAt:      rec.UpdatedAt.Format(time.RFC3339),
	}
	if rec.EmployeeName != nil {
		resp.EmployeeName = *rec.EmployeeName
	}
	return resp
}
