package payroll

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/document"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/validator"
	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("github.com/cmlabs-hris/workforce-backend-go/internal/service/payroll")

// AttendanceReader is the slice of the attendance store the calculator reads.
type AttendanceReader interface {
	ListForPeriod(ctx context.Context, companyID, employeeID string, start, end time.Time) ([]attendance.DailyRecord, error)
}

type Options struct {
	DefaultHolidayHours decimal.Decimal
	ComputeConcurrency  int
}

type PayrollServiceImpl struct {
	tx             database.Transactor
	payrollRepo    payroll.PayrollRepository
	employeeRepo   employee.EmployeeRepository
	attendanceRepo AttendanceReader
	calculator     *Calculator
	renderer       *document.Renderer
	opts           Options
	now            func() time.Time
}

func NewPayrollService(
	tx database.Transactor,
	payrollRepo payroll.PayrollRepository,
	employeeRepo employee.EmployeeRepository,
	attendanceRepo AttendanceReader,
	calculator *Calculator,
	renderer *document.Renderer,
	opts Options,
) payroll.PayrollService {
	if opts.ComputeConcurrency <= 0 {
		opts.ComputeConcurrency = 4
	}
	return &PayrollServiceImpl{
		tx:             tx,
		payrollRepo:    payrollRepo,
		employeeRepo:   employeeRepo,
		attendanceRepo: attendanceRepo,
		calculator:     calculator,
		renderer:       renderer,
		opts:           opts,
		now:            time.Now,
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

// ========== HOLIDAY CREDITS ==========

func (s *PayrollServiceImpl) SetHolidayCredit(ctx context.Context, req payroll.SetHolidayCreditRequest) (payroll.HolidayCreditResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.HolidayCreditResponse{}, err
	}

	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.HolidayCreditResponse{}, err
	}

	date, _ := validator.IsValidDate(req.Date)
	hours := s.opts.DefaultHolidayHours
	if req.Hours != nil {
		hours = *req.Hours
	}

	credit, err := s.payrollRepo.UpsertHolidayCredit(ctx, payroll.HolidayCredit{
		CompanyID: companyID,
		Date:      date,
		Hours:     hours.Round(2),
		Label:     req.Label,
	})
	if err != nil {
		return payroll.HolidayCreditResponse{}, fmt.Errorf("failed to save holiday credit: %w", err)
	}

	return mapHolidayCredit(credit), nil
}

func (s *PayrollServiceImpl) ListHolidayCredits(ctx context.Context, startDate, endDate string) ([]payroll.HolidayCreditResponse, error) {
	start, end, errs := validator.ValidateDateRange(startDate, endDate)
	if err := errs.Err(); err != nil {
		return nil, err
	}

	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}

	credits, err := s.payrollRepo.ListHolidayCredits(ctx, companyID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list holiday credits: %w", err)
	}

	resp := make([]payroll.HolidayCreditResponse, 0, len(credits))
	for _, c := range credits {
		resp = append(resp, mapHolidayCredit(c))
	}
	return resp, nil
}

func (s *PayrollServiceImpl) DeleteHolidayCredit(ctx context.Context, id string) error {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return err
	}
	return s.payrollRepo.DeleteHolidayCredit(ctx, id, companyID)
}

// holidayHours merges stored credits with per-request overrides. An override
// replaces the stored credit of the same date.
func (s *PayrollServiceImpl) holidayHours(ctx context.Context, companyID string, start, end time.Time, overrides []payroll.HolidayOverride) (map[string]decimal.Decimal, error) {
	credits, err := s.payrollRepo.ListHolidayCredits(ctx, companyID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list holiday credits: %w", err)
	}

	hours := make(map[string]decimal.Decimal, len(credits)+len(overrides))
	for _, c := range credits {
		hours[c.Date.Format("2006-01-02")] = c.Hours
	}
	for _, o := range overrides {
		hours[o.Date] = o.Hours
	}
	return hours, nil
}

// ========== COMPUTATION ==========

func (s *PayrollServiceImpl) computeFor(ctx context.Context, companyID string, emp employee.Employee, start, end time.Time, holidays map[string]decimal.Decimal) (payroll.MonthlySalaryComputation, error) {
	days, err := s.attendanceRepo.ListForPeriod(ctx, companyID, emp.ID, start, end)
	if err != nil {
		return payroll.MonthlySalaryComputation{}, fmt.Errorf("failed to list attendance for %s: %w", emp.ID, err)
	}

	comp := s.calculator.Compute(CalculationInput{
		PeriodStart: start,
		PeriodEnd:   end,
		HourlyRate:  emp.HourlyRate,
		Days:        days,
		Holidays:    holidays,
	})
	comp.EmployeeID = emp.ID
	comp.EmployeeName = emp.FullName
	return comp, nil
}

func (s *PayrollServiceImpl) getEmployee(ctx context.Context, id, companyID string) (employee.Employee, error) {
	emp, err := s.employeeRepo.GetByID(ctx, id, companyID)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return employee.Employee{}, payroll.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}
	return emp, nil
}

func (s *PayrollServiceImpl) ComputeMonthly(ctx context.Context, req payroll.ComputeSalaryRequest) (payroll.SalaryComputationResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.SalaryComputationResponse{}, err
	}

	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.SalaryComputationResponse{}, err
	}

	start, _ := validator.IsValidDate(req.StartDate)
	end, _ := validator.IsValidDate(req.EndDate)

	emp, err := s.getEmployee(ctx, req.EmployeeID, companyID)
	if err != nil {
		return payroll.SalaryComputationResponse{}, err
	}

	holidays, err := s.holidayHours(ctx, companyID, start, end, req.HolidayOverrides)
	if err != nil {
		return payroll.SalaryComputationResponse{}, err
	}

	comp, err := s.computeFor(ctx, companyID, emp, start, end, holidays)
	if err != nil {
		return payroll.SalaryComputationResponse{}, err
	}

	return mapComputation(comp), nil
}

func (s *PayrollServiceImpl) ComputeAll(ctx context.Context, req payroll.ComputeAllRequest) (payroll.ComputeAllResponse, error) {
	ctx, span := tracer.Start(ctx, "payroll.ComputeAll")
	defer span.End()

	if err := req.Validate(); err != nil {
		return payroll.ComputeAllResponse{}, err
	}

	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.ComputeAllResponse{}, err
	}

	start, _ := validator.IsValidDate(req.StartDate)
	end, _ := validator.IsValidDate(req.EndDate)

	employees, err := s.employeeRepo.ListActive(ctx, companyID)
	if err != nil {
		return payroll.ComputeAllResponse{}, fmt.Errorf("failed to list active employees: %w", err)
	}

	holidays, err := s.holidayHours(ctx, companyID, start, end, req.HolidayOverrides)
	if err != nil {
		return payroll.ComputeAllResponse{}, err
	}

	results := make([]payroll.MonthlySalaryComputation, len(employees))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.ComputeConcurrency)
	for i, emp := range employees {
		g.Go(func() error {
			comp, err := s.computeFor(gCtx, companyID, emp, start, end, holidays)
			if err != nil {
				return err
			}
			results[i] = comp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return payroll.ComputeAllResponse{}, err
	}

	resp := payroll.ComputeAllResponse{
		PeriodStart:     req.StartDate,
		PeriodEnd:       req.EndDate,
		TotalEmployees:  len(results),
		TotalHours:      decimal.Zero,
		TotalCalculated: decimal.Zero,
		Computations:    make([]payroll.SalaryComputationResponse, 0, len(results)),
	}
	for _, comp := range results {
		resp.TotalHours = resp.TotalHours.Add(comp.TotalCumulativeHours)
		resp.TotalCalculated = resp.TotalCalculated.Add(comp.CalculatedSalary)
		if len(comp.PendingReviewDates) > 0 {
			resp.PendingReviewFor++
		}
		resp.Computations = append(resp.Computations, mapComputation(comp))
	}

	span.SetAttributes(attribute.Int("payroll.employees", resp.TotalEmployees))
	return resp, nil
}

// ========== CONFIRMED SALARIES ==========

func (s *PayrollServiceImpl) ConfirmSalary(ctx context.Context, req payroll.ConfirmSalaryRequest) (payroll.ConfirmedSalaryResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.ConfirmedSalaryResponse{}, err
	}

	companyID, userID, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.ConfirmedSalaryResponse{}, err
	}

	start, _ := validator.IsValidDate(req.StartDate)
	end, _ := validator.IsValidDate(req.EndDate)

	emp, err := s.getEmployee(ctx, req.EmployeeID, companyID)
	if err != nil {
		return payroll.ConfirmedSalaryResponse{}, err
	}

	holidays, err := s.holidayHours(ctx, companyID, start, end, req.HolidayOverrides)
	if err != nil {
		return payroll.ConfirmedSalaryResponse{}, err
	}

	comp, err := s.computeFor(ctx, companyID, emp, start, end, holidays)
	if err != nil {
		return payroll.ConfirmedSalaryResponse{}, err
	}
	if len(comp.PendingReviewDates) > 0 {
		slog.Warn("confirming salary with days pending review",
			"employee_id", emp.ID,
			"pending_days", len(comp.PendingReviewDates),
		)
	}

	confirmed := comp.CalculatedSalary
	if req.ConfirmedSalary != nil {
		confirmed = req.ConfirmedSalary.Round(2)
	}

	now := s.now().UTC()
	record, err := s.payrollRepo.CreateConfirmed(ctx, payroll.ConfirmedSalaryRecord{
		CompanyID:            companyID,
		EmployeeID:           emp.ID,
		PeriodStart:          start,
		PeriodEnd:            end,
		WorkingHours:         comp.WorkingHours,
		HolidayHours:         comp.HolidayHours,
		TotalCumulativeHours: comp.TotalCumulativeHours,
		HourlyRate:           comp.HourlyRate,
		CalculatedSalary:     comp.CalculatedSalary,
		PerHourRate:          comp.HourlyRate,
		ConfirmedSalary:      confirmed,
		ConfirmedBy:          userID,
		ConfirmationNotes:    req.Notes,
		ConfirmedAt:          now,
	})
	if err != nil {
		if errors.Is(err, payroll.ErrConfirmedRecordExists) {
			return payroll.ConfirmedSalaryResponse{}, err
		}
		return payroll.ConfirmedSalaryResponse{}, fmt.Errorf("failed to confirm salary: %w", err)
	}
	record.EmployeeName = &emp.FullName
	record.EmployeeCode = &emp.EmployeeCode

	return mapConfirmed(record), nil
}

// UpdateConfirmed edits the human side of a confirmed record. The calculated
// salary and the rate it was computed with are never touched.
func (s *PayrollServiceImpl) UpdateConfirmed(ctx context.Context, req payroll.UpdateConfirmedRequest) (payroll.ConfirmedSalaryResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.ConfirmedSalaryResponse{}, err
	}

	companyID, userID, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.ConfirmedSalaryResponse{}, err
	}

	var record payroll.ConfirmedSalaryRecord
	err = s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		record, err = s.payrollRepo.GetConfirmedByID(txCtx, req.ID, companyID)
		if err != nil {
			return err
		}

		if req.PerHourRate != nil {
			record.PerHourRate = req.PerHourRate.Round(2)
			record.ConfirmedSalary = SalaryFor(record.PerHourRate, record.TotalCumulativeHours)
		}
		if req.ConfirmedSalary != nil {
			record.ConfirmedSalary = req.ConfirmedSalary.Round(2)
		}
		if req.Notes != nil {
			record.ConfirmationNotes = req.Notes
		}
		record.UpdatedAt = s.now().UTC()

		return s.payrollRepo.UpdateConfirmed(txCtx, record)
	})
	if err != nil {
		if errors.Is(err, payroll.ErrConfirmedRecordNotFound) {
			return payroll.ConfirmedSalaryResponse{}, err
		}
		return payroll.ConfirmedSalaryResponse{}, fmt.Errorf("failed to update confirmed salary: %w", err)
	}

	slog.Info("confirmed salary edited", "record_id", record.ID, "by", userID)
	return mapConfirmed(record), nil
}

func (s *PayrollServiceImpl) GetConfirmed(ctx context.Context, id string) (payroll.ConfirmedSalaryResponse, error) {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.ConfirmedSalaryResponse{}, err
	}

	record, err := s.payrollRepo.GetConfirmedByID(ctx, id, companyID)
	if err != nil {
		return payroll.ConfirmedSalaryResponse{}, err
	}
	return mapConfirmed(record), nil
}

func (s *PayrollServiceImpl) ListConfirmed(ctx context.Context, filter payroll.ConfirmedFilter) (payroll.ListConfirmedResponse, error) {
	if err := filter.Validate(); err != nil {
		return payroll.ListConfirmedResponse{}, err
	}

	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.ListConfirmedResponse{}, err
	}

	records, total, err := s.payrollRepo.ListConfirmed(ctx, companyID, filter)
	if err != nil {
		return payroll.ListConfirmedResponse{}, fmt.Errorf("failed to list confirmed salaries: %w", err)
	}

	resp := payroll.ListConfirmedResponse{
		Records:         make([]payroll.ConfirmedSalaryResponse, 0, len(records)),
		TotalConfirmed:  decimal.Zero,
		TotalCalculated: decimal.Zero,
		Pagination:      validator.PageInfo{Page: filter.Page, Limit: filter.Limit, TotalItems: total},
	}
	for _, r := range records {
		resp.Records = append(resp.Records, mapConfirmed(r))
		resp.TotalConfirmed = resp.TotalConfirmed.Add(r.ConfirmedSalary)
		resp.TotalCalculated = resp.TotalCalculated.Add(r.CalculatedSalary)
	}
	return resp, nil
}

func (s *PayrollServiceImpl) DeleteConfirmed(ctx context.Context, id string) error {
	companyID, userID, err := getClaimsFromContext(ctx)
	if err != nil {
		return err
	}

	if err := s.payrollRepo.DeleteConfirmed(ctx, id, companyID); err != nil {
		if errors.Is(err, payroll.ErrConfirmedRecordNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete confirmed salary: %w", err)
	}

	slog.Info("confirmed salary deleted", "record_id", id, "by", userID)
	return nil
}

// ========== BUCKETS ==========

// ArchiveBucket moves confirmed records into salary history as one unit of
// work. Any count mismatch rolls the whole bucket back.
func (s *PayrollServiceImpl) ArchiveBucket(ctx context.Context, req payroll.ArchiveBucketRequest) (payroll.BucketResponse, error) {
	ctx, span := tracer.Start(ctx, "payroll.ArchiveBucket")
	defer span.End()

	if err := req.Validate(); err != nil {
		return payroll.BucketResponse{}, err
	}

	companyID, userID, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.BucketResponse{}, err
	}

	var bucket payroll.SalaryBucket
	err = s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		var records []payroll.ConfirmedSalaryRecord
		var err error
		if req.All {
			records, err = s.payrollRepo.LockAllConfirmed(txCtx, companyID)
		} else {
			records, err = s.payrollRepo.LockConfirmed(txCtx, companyID, req.RecordIDs)
		}
		if err != nil {
			return fmt.Errorf("failed to lock confirmed salaries: %w", err)
		}
		if len(records) == 0 {
			return payroll.ErrBucketEmpty
		}
		if !req.All && len(records) != len(req.RecordIDs) {
			return payroll.ErrConfirmedRecordNotFound
		}

		ids := make([]string, 0, len(records))
		total := decimal.Zero
		for _, r := range records {
			ids = append(ids, r.ID)
			total = total.Add(r.ConfirmedSalary)
		}

		bucketID, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate bucket id: %w", err)
		}

		bucket, err = s.payrollRepo.CreateBucket(txCtx, payroll.SalaryBucket{
			ID:          bucketID.String(),
			CompanyID:   companyID,
			Label:       req.Label,
			RecordCount: len(ids),
			TotalAmount: total,
			ArchivedBy:  userID,
			ArchivedAt:  s.now().UTC(),
		})
		if err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}

		moved, err := s.payrollRepo.CopyToHistory(txCtx, bucket.ID, companyID, ids)
		if err != nil {
			return fmt.Errorf("failed to copy salaries to history: %w", err)
		}
		if moved != int64(len(ids)) {
			return fmt.Errorf("%w: copied %d of %d", payroll.ErrBucketIncomplete, moved, len(ids))
		}

		cleared, err := s.payrollRepo.DeleteConfirmedByIDs(txCtx, companyID, ids)
		if err != nil {
			return fmt.Errorf("failed to clear confirmed salaries: %w", err)
		}
		if cleared != int64(len(ids)) {
			return fmt.Errorf("%w: cleared %d of %d", payroll.ErrBucketIncomplete, cleared, len(ids))
		}
		return nil
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		if errors.Is(err, payroll.ErrBucketIncomplete) {
			slog.Error("salary bucket rolled back", "company_id", companyID, "error", err)
		}
		return payroll.BucketResponse{}, err
	}

	span.SetAttributes(
		attribute.String("payroll.bucket_id", bucket.ID),
		attribute.Int("payroll.bucket_records", bucket.RecordCount),
	)
	slog.Info("salary bucket archived", "bucket_id", bucket.ID, "records", bucket.RecordCount, "by", userID)
	return mapBucket(bucket), nil
}

func (s *PayrollServiceImpl) ListBuckets(ctx context.Context) ([]payroll.BucketResponse, error) {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}

	buckets, err := s.payrollRepo.ListBuckets(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list buckets: %w", err)
	}

	resp := make([]payroll.BucketResponse, 0, len(buckets))
	for _, b := range buckets {
		resp = append(resp, mapBucket(b))
	}
	return resp, nil
}

func (s *PayrollServiceImpl) ListHistory(ctx context.Context, filter payroll.HistoryFilter) (payroll.ListHistoryResponse, error) {
	if err := filter.Validate(); err != nil {
		return payroll.ListHistoryResponse{}, err
	}

	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.ListHistoryResponse{}, err
	}

	records, total, err := s.payrollRepo.ListHistory(ctx, companyID, filter)
	if err != nil {
		return payroll.ListHistoryResponse{}, fmt.Errorf("failed to list salary history: %w", err)
	}

	resp := payroll.ListHistoryResponse{
		Records:    make([]payroll.SalaryHistoryResponse, 0, len(records)),
		Pagination: validator.PageInfo{Page: filter.Page, Limit: filter.Limit, TotalItems: total},
	}
	for _, r := range records {
		resp.Records = append(resp.Records, payroll.SalaryHistoryResponse{
			ConfirmedSalaryResponse: mapConfirmed(r.ConfirmedSalaryRecord),
			BucketID:                r.BucketID,
			ArchivedAt:              r.ArchivedAt.Format(time.RFC3339),
		})
	}
	return resp, nil
}

// ========== REPORT ==========

func (s *PayrollServiceImpl) RenderConfirmedReport(ctx context.Context, req payroll.ReportRequest, w io.Writer) error {
	if err := req.Validate(); err != nil {
		return err
	}

	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return err
	}

	start, _ := validator.IsValidDate(req.StartDate)
	end, _ := validator.IsValidDate(req.EndDate)

	report := document.ConfirmedSalaryReport{
		Title:           "Confirmed salaries",
		PeriodStart:     start,
		PeriodEnd:       end,
		GeneratedAt:     s.now(),
		TotalHours:      decimal.Zero,
		TotalCalculated: decimal.Zero,
		TotalConfirmed:  decimal.Zero,
	}

	filter := payroll.ConfirmedFilter{StartDate: &req.StartDate, EndDate: &req.EndDate, Page: 1, Limit: 500}
	for {
		records, total, err := s.payrollRepo.ListConfirmed(ctx, companyID, filter)
		if err != nil {
			return fmt.Errorf("failed to list confirmed salaries: %w", err)
		}
		for _, r := range records {
			line := document.SalaryLine{
				PeriodStart:      r.PeriodStart,
				PeriodEnd:        r.PeriodEnd,
				WorkingHours:     r.WorkingHours,
				HolidayHours:     r.HolidayHours,
				TotalHours:       r.TotalCumulativeHours,
				PerHourRate:      r.PerHourRate,
				CalculatedSalary: r.CalculatedSalary,
				ConfirmedSalary:  r.ConfirmedSalary,
				Adjusted:         !r.ConfirmedSalary.Equal(r.CalculatedSalary),
				ConfirmedBy:      r.ConfirmedBy,
			}
			if r.EmployeeCode != nil {
				line.EmployeeCode = *r.EmployeeCode
			}
			if r.EmployeeName != nil {
				line.EmployeeName = *r.EmployeeName
			}
			if r.ConfirmationNotes != nil {
				line.Notes = *r.ConfirmationNotes
			}
			report.Lines = append(report.Lines, line)
			report.TotalHours = report.TotalHours.Add(r.TotalCumulativeHours)
			report.TotalCalculated = report.TotalCalculated.Add(r.CalculatedSalary)
			report.TotalConfirmed = report.TotalConfirmed.Add(r.ConfirmedSalary)
		}
		if len(records) == 0 || int64(filter.Page*filter.Limit) >= total {
			break
		}
		filter.Page++
	}

	return s.renderer.RenderConfirmedSalaries(w, report)
}

// ========== MAPPING ==========

func mapHolidayCredit(c payroll.HolidayCredit) payroll.HolidayCreditResponse {
	return payroll.HolidayCreditResponse{
		ID:    c.ID,
		Date:  c.Date.Format("2006-01-02"),
		Hours: c.Hours,
		Label: c.Label,
	}
}

func mapComputation(c payroll.MonthlySalaryComputation) payroll.SalaryComputationResponse {
	pending := make([]string, 0, len(c.PendingReviewDates))
	for _, d := range c.PendingReviewDates {
		pending = append(pending, d.Format("2006-01-02"))
	}
	return payroll.SalaryComputationResponse{
		EmployeeID:           c.EmployeeID,
		EmployeeName:         c.EmployeeName,
		PeriodStart:          c.PeriodStart.Format("2006-01-02"),
		PeriodEnd:            c.PeriodEnd.Format("2006-01-02"),
		WorkingHours:         c.WorkingHours,
		HolidayHours:         c.HolidayHours,
		TotalCumulativeHours: c.TotalCumulativeHours,
		RegularHours:         c.RegularHours,
		OvertimeHours:        c.OvertimeHours,
		HourlyRate:           c.HourlyRate,
		CalculatedSalary:     c.CalculatedSalary,
		PayableDays:          c.PayableDays,
		HolidayDays:          c.HolidayDays,
		PendingReviewDates:   pending,
	}
}

func mapConfirmed(r payroll.ConfirmedSalaryRecord) payroll.ConfirmedSalaryResponse {
	resp := payroll.ConfirmedSalaryResponse{
		ID:                   r.ID,
		EmployeeID:           r.EmployeeID,
		PeriodStart:          r.PeriodStart.Format("2006-01-02"),
		PeriodEnd:            r.PeriodEnd.Format("2006-01-02"),
		WorkingHours:         r.WorkingHours,
		HolidayHours:         r.HolidayHours,
		TotalCumulativeHours: r.TotalCumulativeHours,
		HourlyRate:           r.HourlyRate,
		CalculatedSalary:     r.CalculatedSalary,
		PerHourRate:          r.PerHourRate,
		ConfirmedSalary:      r.ConfirmedSalary,
		ConfirmedBy:          r.ConfirmedBy,
		ConfirmationNotes:    r.ConfirmationNotes,
		ConfirmedAt:          r.ConfirmedAt.Format(time.RFC3339),
		UpdatedAt:            r.UpdatedAt.Format(time.RFC3339),
	}
	if r.EmployeeName != nil {
		resp.EmployeeName = *r.EmployeeName
	}
	if r.EmployeeCode != nil {
		resp.EmployeeCode = *r.EmployeeCode
	}
	return resp
}

func mapBucket(b payroll.SalaryBucket) payroll.BucketResponse {
	return payroll.BucketResponse{
		ID:          b.ID,
		Label:       b.Label,
		RecordCount: b.RecordCount,
		TotalAmount: b.TotalAmount,
		ArchivedBy:  b.ArchivedBy,
		ArchivedAt:  b.ArchivedAt.Format(time.RFC3339),
	}
}
