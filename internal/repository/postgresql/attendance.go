package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.Repository {
	return &attendanceRepository{db: db}
}

const dailyRecordColumns = `
	a.id, a.company_id, a.employee_id, a.date,
	a.app_in, a.app_out, a.app_in_location,
	a.bio_in, a.bio_out,
	a.final_in, a.final_out, a.worked_hours,
	a.merge_case, a.remarks, a.needs_review, a.status,
	a.manual_override, a.overridden_by, a.override_notes,
	a.created_at, a.updated_at,
	e.full_name AS employee_name`

func scanDailyRecord(row pgx.Row) (attendance.DailyRecord, error) {
	var rec attendance.DailyRecord
	err := row.Scan(
		&rec.ID, &rec.CompanyID, &rec.EmployeeID, &rec.Date,
		&rec.AppPunch.In, &rec.AppPunch.Out, &rec.AppInLocation,
		&rec.BiometricPunch.In, &rec.BiometricPunch.Out,
		&rec.Final.In, &rec.Final.Out, &rec.Final.WorkedHours,
		&rec.MergeCase, &rec.Remarks, &rec.NeedsReview, &rec.Status,
		&rec.ManualOverride, &rec.OverriddenBy, &rec.OverrideNotes,
		&rec.CreatedAt, &rec.UpdatedAt,
		&rec.EmployeeName,
	)
	return rec, err
}

// UpsertAppPunch implements attendance.Repository.
func (r *attendanceRepository) UpsertAppPunch(ctx context.Context, companyID, employeeID string, date time.Time, punch attendance.Punch, inLocation *string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendance_days (company_id, employee_id, date, app_in, app_out, app_in_location)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (company_id, employee_id, date) DO UPDATE SET
			app_in = COALESCE(EXCLUDED.app_in, attendance_days.app_in),
			app_out = COALESCE(EXCLUDED.app_out, attendance_days.app_out),
			app_in_location = COALESCE(EXCLUDED.app_in_location, attendance_days.app_in_location),
			updated_at = NOW()
	`

	if _, err := q.Exec(ctx, query, companyID, employeeID, date, punch.In, punch.Out, inLocation); err != nil {
		return fmt.Errorf("failed to upsert app punch: %w", err)
	}
	return nil
}

// UpsertBiometricPunch implements attendance.Repository.
func (r *attendanceRepository) UpsertBiometricPunch(ctx context.Context, companyID, employeeID string, date time.Time, punch attendance.Punch, replace bool) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendance_days (company_id, employee_id, date, bio_in, bio_out)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (company_id, employee_id, date) DO UPDATE SET
			bio_in = CASE WHEN $6::boolean THEN EXCLUDED.bio_in ELSE COALESCE(EXCLUDED.bio_in, attendance_days.bio_in) END,
			bio_out = CASE WHEN $6::boolean THEN EXCLUDED.bio_out ELSE COALESCE(EXCLUDED.bio_out, attendance_days.bio_out) END,
			updated_at = NOW()
	`

	if _, err := q.Exec(ctx, query, companyID, employeeID, date, punch.In, punch.Out, replace); err != nil {
		return fmt.Errorf("failed to upsert biometric punch: %w", err)
	}
	return nil
}

// GetForUpdate implements attendance.Repository.
func (r *attendanceRepository) GetForUpdate(ctx context.Context, companyID, employeeID string, date time.Time) (attendance.DailyRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + dailyRecordColumns + `
		FROM attendance_days a
		JOIN employees e ON e.id = a.employee_id
		WHERE a.company_id = $1 AND a.employee_id = $2 AND a.date = $3
		FOR UPDATE OF a
	`

	rec, err := scanDailyRecord(q.QueryRow(ctx, query, companyID, employeeID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.DailyRecord{}, attendance.ErrRecordNotFound
		}
		return attendance.DailyRecord{}, fmt.Errorf("failed to lock attendance day: %w", err)
	}
	return rec, nil
}

// SaveReconciliation implements attendance.Repository.
func (r *attendanceRepository) SaveReconciliation(ctx context.Context, rec attendance.DailyRecord) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE attendance_days SET
			final_in = $1, final_out = $2, worked_hours = $3,
			merge_case = $4, remarks = $5, needs_review = $6, status = $7,
			updated_at = NOW()
		WHERE id = $8 AND company_id = $9 AND manual_override = FALSE
	`

	_, err := q.Exec(ctx, query,
		rec.Final.In, rec.Final.Out, rec.Final.WorkedHours,
		rec.MergeCase, rec.Remarks, rec.NeedsReview, rec.Status,
		rec.ID, rec.CompanyID,
	)
	if err != nil {
		return fmt.Errorf("failed to save reconciliation: %w", err)
	}
	return nil
}

// SaveOverride implements attendance.Repository.
func (r *attendanceRepository) SaveOverride(ctx context.Context, rec attendance.DailyRecord) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE attendance_days SET
			final_in = $1, final_out = $2, worked_hours = $3,
			needs_review = $4, status = $5,
			manual_override = TRUE, overridden_by = $6, override_notes = $7,
			updated_at = NOW()
		WHERE id = $8 AND company_id = $9
	`

	tag, err := q.Exec(ctx, query,
		rec.Final.In, rec.Final.Out, rec.Final.WorkedHours,
		rec.NeedsReview, rec.Status,
		rec.OverriddenBy, rec.OverrideNotes,
		rec.ID, rec.CompanyID,
	)
	if err != nil {
		return fmt.Errorf("failed to save override: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrRecordNotFound
	}
	return nil
}

// GetByID implements attendance.Repository.
func (r *attendanceRepository) GetByID(ctx context.Context, id string, companyID string) (attendance.DailyRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + dailyRecordColumns + `
		FROM attendance_days a
		JOIN employees e ON e.id = a.employee_id
		WHERE a.id = $1 AND a.company_id = $2
	`

	rec, err := scanDailyRecord(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.DailyRecord{}, attendance.ErrRecordNotFound
		}
		return attendance.DailyRecord{}, fmt.Errorf("failed to get attendance day: %w", err)
	}
	return rec, nil
}

// List implements attendance.Repository.
func (r *attendanceRepository) List(ctx context.Context, filter attendance.RecordFilter, companyID string) ([]attendance.DailyRecord, int64, error) {
	q := GetQuerier(ctx, r.db)

	// Build WHERE clause
	baseWhere := "a.company_id = $1"
	args := []interface{}{companyID}
	argIdx := 2

	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		baseWhere += fmt.Sprintf(" AND a.employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.StartDate != nil && *filter.StartDate != "" {
		baseWhere += fmt.Sprintf(" AND a.date >= $%d", argIdx)
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		baseWhere += fmt.Sprintf(" AND a.date <= $%d", argIdx)
		args = append(args, *filter.EndDate)
		argIdx++
	}
	if filter.MergeCase != nil && *filter.MergeCase != "" {
		baseWhere += fmt.Sprintf(" AND a.merge_case = $%d", argIdx)
		args = append(args, *filter.MergeCase)
		argIdx++
	}
	if filter.Status != nil && *filter.Status != "" {
		baseWhere += fmt.Sprintf(" AND a.status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.NeedsReview != nil {
		baseWhere += fmt.Sprintf(" AND a.needs_review = $%d", argIdx)
		args = append(args, *filter.NeedsReview)
		argIdx++
	}

	countQuery := `
		SELECT COUNT(*)
		FROM attendance_days a
		WHERE ` + baseWhere
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendance days: %w", err)
	}

	// Build ORDER BY
	orderByField := "a.date"
	switch filter.SortBy {
	case "employee_name":
		orderByField = "e.full_name"
	case "merge_case":
		orderByField = "a.merge_case"
	case "worked_hours":
		orderByField = "a.worked_hours"
	}
	sortOrder := "DESC"
	if strings.ToLower(filter.SortOrder) == "asc" {
		sortOrder = "ASC"
	}

	selectQuery := fmt.Sprintf(`
		SELECT %s
		FROM attendance_days a
		JOIN employees e ON e.id = a.employee_id
		WHERE %s
		ORDER BY %s %s, a.employee_id
		LIMIT $%d OFFSET $%d
	`, dailyRecordColumns, baseWhere, orderByField, sortOrder, argIdx, argIdx+1)

	limit := filter.Limit
	if limit == 0 {
		limit = 20
	}
	offset := (filter.Page - 1) * limit
	args = append(args, limit, offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query attendance days: %w", err)
	}
	defer rows.Close()

	var records []attendance.DailyRecord
	for rows.Next() {
		rec, err := scanDailyRecord(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan attendance day: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate attendance days: %w", err)
	}

	return records, total, nil
}

// ListForPeriod implements attendance.Repository.
func (r *attendanceRepository) ListForPeriod(ctx context.Context, companyID, employeeID string, start, end time.Time) ([]attendance.DailyRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + dailyRecordColumns + `
		FROM attendance_days a
		JOIN employees e ON e.id = a.employee_id
		WHERE a.company_id = $1 AND a.employee_id = $2 AND a.date BETWEEN $3 AND $4
		ORDER BY a.date
	`

	rows, err := q.Query(ctx, query, companyID, employeeID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance period: %w", err)
	}
	defer rows.Close()

	var records []attendance.DailyRecord
	for rows.Next() {
		rec, err := scanDailyRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance day: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ListDayKeys implements attendance.Repository.
func (r *attendanceRepository) ListDayKeys(ctx context.Context, companyID string, employeeID *string, start, end time.Time) ([]attendance.DayKey, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT employee_id, date
		FROM attendance_days
		WHERE company_id = $1 AND date BETWEEN $2 AND $3
		  AND ($4::uuid IS NULL OR employee_id = $4::uuid)
		ORDER BY date, employee_id
	`

	rows, err := q.Query(ctx, query, companyID, start, end, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance day keys: %w", err)
	}

	keys, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (attendance.DayKey, error) {
		var k attendance.DayKey
		err := row.Scan(&k.EmployeeID, &k.Date)
		return k, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan attendance day keys: %w", err)
	}
	return keys, nil
}

// Delete implements attendance.Repository.
func (r *attendanceRepository) Delete(ctx context.Context, id string, companyID string) error {
	q := GetQuerier(ctx, r.db)

	query := `DELETE FROM attendance_days WHERE id = $1 AND company_id = $2`

	commandTag, err := q.Exec(ctx, query, id, companyID)
	if err != nil {
		return fmt.Errorf("failed to delete attendance day: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return attendance.ErrRecordNotFound
	}

	return nil
}
