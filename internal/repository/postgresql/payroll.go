package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type payrollRepository struct {
	db *database.DB
}

func NewPayrollRepository(db *database.DB) payroll.PayrollRepository {
	return &payrollRepository{db: db}
}

// ========== HOLIDAY CREDITS ==========

func (r *payrollRepository) UpsertHolidayCredit(ctx context.Context, credit payroll.HolidayCredit) (payroll.HolidayCredit, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO holiday_credits (company_id, date, hours, label)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT ON CONSTRAINT uk_holiday_credit_date DO UPDATE SET
			hours = EXCLUDED.hours,
			label = EXCLUDED.label
		RETURNING id, company_id, date, hours, label, created_at
	`

	var c payroll.HolidayCredit
	err := q.QueryRow(ctx, query, credit.CompanyID, credit.Date, credit.Hours, credit.Label).Scan(
		&c.ID, &c.CompanyID, &c.Date, &c.Hours, &c.Label, &c.CreatedAt,
	)
	if err != nil {
		return payroll.HolidayCredit{}, fmt.Errorf("failed to upsert holiday credit: %w", err)
	}
	return c, nil
}

func (r *payrollRepository) ListHolidayCredits(ctx context.Context, companyID string, start, end time.Time) ([]payroll.HolidayCredit, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, date, hours, label, created_at
		FROM holiday_credits
		WHERE company_id = $1 AND date BETWEEN $2 AND $3
		ORDER BY date
	`

	rows, err := q.Query(ctx, query, companyID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query holiday credits: %w", err)
	}
	defer rows.Close()

	var credits []payroll.HolidayCredit
	for rows.Next() {
		var c payroll.HolidayCredit
		if err := rows.Scan(&c.ID, &c.CompanyID, &c.Date, &c.Hours, &c.Label, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan holiday credit: %w", err)
		}
		credits = append(credits, c)
	}
	return credits, rows.Err()
}

func (r *payrollRepository) DeleteHolidayCredit(ctx context.Context, id string, companyID string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM holiday_credits WHERE id = $1 AND company_id = $2`, id, companyID)
	if err != nil {
		return fmt.Errorf("failed to delete holiday credit: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrHolidayCreditNotFound
	}
	return nil
}

// ========== CONFIRMED SALARIES ==========

const confirmedColumns = `
	c.id, c.company_id, c.employee_id, c.period_start, c.period_end,
	c.working_hours, c.holiday_hours, c.total_cumulative_hours,
	c.hourly_rate, c.calculated_salary, c.per_hour_rate, c.confirmed_salary,
	c.confirmed_by, c.confirmation_notes, c.confirmed_at, c.created_at, c.updated_at,
	e.full_name, e.employee_code`

func scanConfirmed(row pgx.Row) (payroll.ConfirmedSalaryRecord, error) {
	var c payroll.ConfirmedSalaryRecord
	err := row.Scan(
		&c.ID, &c.CompanyID, &c.EmployeeID, &c.PeriodStart, &c.PeriodEnd,
		&c.WorkingHours, &c.HolidayHours, &c.TotalCumulativeHours,
		&c.HourlyRate, &c.CalculatedSalary, &c.PerHourRate, &c.ConfirmedSalary,
		&c.ConfirmedBy, &c.ConfirmationNotes, &c.ConfirmedAt, &c.CreatedAt, &c.UpdatedAt,
		&c.EmployeeName, &c.EmployeeCode,
	)
	return c, err
}

func (r *payrollRepository) CreateConfirmed(ctx context.Context, record payroll.ConfirmedSalaryRecord) (payroll.ConfirmedSalaryRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO confirmed_salaries (
			company_id, employee_id, period_start, period_end,
			working_hours, holiday_hours, total_cumulative_hours,
			hourly_rate, calculated_salary, per_hour_rate, confirmed_salary,
			confirmed_by, confirmation_notes, confirmed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		record.CompanyID, record.EmployeeID, record.PeriodStart, record.PeriodEnd,
		record.WorkingHours, record.HolidayHours, record.TotalCumulativeHours,
		record.HourlyRate, record.CalculatedSalary, record.PerHourRate, record.ConfirmedSalary,
		record.ConfirmedBy, record.ConfirmationNotes, record.ConfirmedAt,
	).Scan(&record.ID, &record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "uk_confirmed_employee_period") {
			return payroll.ConfirmedSalaryRecord{}, payroll.ErrConfirmedRecordExists
		}
		return payroll.ConfirmedSalaryRecord{}, fmt.Errorf("failed to create confirmed salary: %w", err)
	}
	return record, nil
}

func (r *payrollRepository) GetConfirmedByID(ctx context.Context, id string, companyID string) (payroll.ConfirmedSalaryRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + confirmedColumns + `
		FROM confirmed_salaries c
		JOIN employees e ON e.id = c.employee_id
		WHERE c.id = $1 AND c.company_id = $2
	`

	rec, err := scanConfirmed(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.ConfirmedSalaryRecord{}, payroll.ErrConfirmedRecordNotFound
		}
		return payroll.ConfirmedSalaryRecord{}, fmt.Errorf("failed to get confirmed salary: %w", err)
	}
	return rec, nil
}

func (r *payrollRepository) ListConfirmed(ctx context.Context, companyID string, filter payroll.ConfirmedFilter) ([]payroll.ConfirmedSalaryRecord, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseWhere := "c.company_id = $1"
	args := []interface{}{companyID}
	argIdx := 2

	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		baseWhere += fmt.Sprintf(" AND c.employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.StartDate != nil && *filter.StartDate != "" {
		baseWhere += fmt.Sprintf(" AND c.period_start >= $%d", argIdx)
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		baseWhere += fmt.Sprintf(" AND c.period_end <= $%d", argIdx)
		args = append(args, *filter.EndDate)
		argIdx++
	}

	var total int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM confirmed_salaries c WHERE "+baseWhere, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count confirmed salaries: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM confirmed_salaries c
		JOIN employees e ON e.id = c.employee_id
		WHERE %s
		ORDER BY c.period_start DESC, e.employee_code
		LIMIT $%d OFFSET $%d
	`, confirmedColumns, baseWhere, argIdx, argIdx+1)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query confirmed salaries: %w", err)
	}
	defer rows.Close()

	var records []payroll.ConfirmedSalaryRecord
	for rows.Next() {
		rec, err := scanConfirmed(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan confirmed salary: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// UpdateConfirmed writes only the editable side of the record.
func (r *payrollRepository) UpdateConfirmed(ctx context.Context, record payroll.ConfirmedSalaryRecord) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE confirmed_salaries SET
			per_hour_rate = $1, confirmed_salary = $2, confirmation_notes = $3, updated_at = NOW()
		WHERE id = $4 AND company_id = $5
	`

	tag, err := q.Exec(ctx, query, record.PerHourRate, record.ConfirmedSalary, record.ConfirmationNotes, record.ID, record.CompanyID)
	if err != nil {
		return fmt.Errorf("failed to update confirmed salary: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrConfirmedRecordNotFound
	}
	return nil
}

func (r *payrollRepository) DeleteConfirmed(ctx context.Context, id string, companyID string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM confirmed_salaries WHERE id = $1 AND company_id = $2`, id, companyID)
	if err != nil {
		return fmt.Errorf("failed to delete confirmed salary: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrConfirmedRecordNotFound
	}
	return nil
}

// ========== BUCKETS ==========

func (r *payrollRepository) lockConfirmed(ctx context.Context, where string, args ...any) ([]payroll.ConfirmedSalaryRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + confirmedColumns + `
		FROM confirmed_salaries c
		JOIN employees e ON e.id = c.employee_id
		WHERE ` + where + `
		ORDER BY c.id
		FOR UPDATE OF c
	`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to lock confirmed salaries: %w", err)
	}
	defer rows.Close()

	var records []payroll.ConfirmedSalaryRecord
	for rows.Next() {
		rec, err := scanConfirmed(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan confirmed salary: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *payrollRepository) LockConfirmed(ctx context.Context, companyID string, ids []string) ([]payroll.ConfirmedSalaryRecord, error) {
	return r.lockConfirmed(ctx, "c.company_id = $1 AND c.id = ANY($2::uuid[])", companyID, ids)
}

func (r *payrollRepository) LockAllConfirmed(ctx context.Context, companyID string) ([]payroll.ConfirmedSalaryRecord, error) {
	return r.lockConfirmed(ctx, "c.company_id = $1", companyID)
}

func (r *payrollRepository) CreateBucket(ctx context.Context, bucket payroll.SalaryBucket) (payroll.SalaryBucket, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO salary_buckets (id, company_id, label, record_count, total_amount, archived_by, archived_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, company_id, label, record_count, total_amount, archived_by, archived_at
	`

	var b payroll.SalaryBucket
	err := q.QueryRow(ctx, query,
		bucket.ID, bucket.CompanyID, bucket.Label, bucket.RecordCount, bucket.TotalAmount, bucket.ArchivedBy, bucket.ArchivedAt,
	).Scan(&b.ID, &b.CompanyID, &b.Label, &b.RecordCount, &b.TotalAmount, &b.ArchivedBy, &b.ArchivedAt)
	if err != nil {
		return payroll.SalaryBucket{}, fmt.Errorf("failed to create salary bucket: %w", err)
	}
	return b, nil
}

// CopyToHistory copies the records into salary_history keeping their IDs.
func (r *payrollRepository) CopyToHistory(ctx context.Context, bucketID string, companyID string, ids []string) (int64, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO salary_history (
			id, bucket_id, company_id, employee_id, period_start, period_end,
			working_hours, holiday_hours, total_cumulative_hours,
			hourly_rate, calculated_salary, per_hour_rate, confirmed_salary,
			confirmed_by, confirmation_notes, confirmed_at, archived_at
		)
		SELECT
			c.id, $1, c.company_id, c.employee_id, c.period_start, c.period_end,
			c.working_hours, c.holiday_hours, c.total_cumulative_hours,
			c.hourly_rate, c.calculated_salary, c.per_hour_rate, c.confirmed_salary,
			c.confirmed_by, c.confirmation_notes, c.confirmed_at, b.archived_at
		FROM confirmed_salaries c
		JOIN salary_buckets b ON b.id = $1
		WHERE c.company_id = $2 AND c.id = ANY($3::uuid[])
	`

	tag, err := q.Exec(ctx, query, bucketID, companyID, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to copy salaries to history: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *payrollRepository) DeleteConfirmedByIDs(ctx context.Context, companyID string, ids []string) (int64, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM confirmed_salaries WHERE company_id = $1 AND id = ANY($2::uuid[])`, companyID, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to delete confirmed salaries: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *payrollRepository) ListBuckets(ctx context.Context, companyID string) ([]payroll.SalaryBucket, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, label, record_count, total_amount, archived_by, archived_at
		FROM salary_buckets
		WHERE company_id = $1
		ORDER BY archived_at DESC
	`

	rows, err := q.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query salary buckets: %w", err)
	}
	defer rows.Close()

	var buckets []payroll.SalaryBucket
	for rows.Next() {
		var b payroll.SalaryBucket
		if err := rows.Scan(&b.ID, &b.CompanyID, &b.Label, &b.RecordCount, &b.TotalAmount, &b.ArchivedBy, &b.ArchivedAt); err != nil {
			return nil, fmt.Errorf("failed to scan salary bucket: %w", err)
		}
		buckets = append(buckets, b)
	}
	return buckets, rows.Err()
}

func (r *payrollRepository) ListHistory(ctx context.Context, companyID string, filter payroll.HistoryFilter) ([]payroll.SalaryHistoryRecord, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseWhere := "h.company_id = $1"
	args := []interface{}{companyID}
	argIdx := 2

	if filter.EmployeeID != nil {
		baseWhere += fmt.Sprintf(" AND h.employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.BucketID != nil {
		baseWhere += fmt.Sprintf(" AND h.bucket_id = $%d", argIdx)
		args = append(args, *filter.BucketID)
		argIdx++
	}

	var total int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM salary_history h WHERE "+baseWhere, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count salary history: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT
			h.id, h.company_id, h.employee_id, h.period_start, h.period_end,
			h.working_hours, h.holiday_hours, h.total_cumulative_hours,
			h.hourly_rate, h.calculated_salary, h.per_hour_rate, h.confirmed_salary,
			h.confirmed_by, h.confirmation_notes, h.confirmed_at, h.confirmed_at, h.archived_at,
			e.full_name, e.employee_code,
			h.bucket_id, h.archived_at
		FROM salary_history h
		LEFT JOIN employees e ON e.id = h.employee_id
		WHERE %s
		ORDER BY h.archived_at DESC, h.period_start DESC
		LIMIT $%d OFFSET $%d
	`, baseWhere, argIdx, argIdx+1)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query salary history: %w", err)
	}
	defer rows.Close()

	var records []payroll.SalaryHistoryRecord
	for rows.Next() {
		var h payroll.SalaryHistoryRecord
		c := &h.ConfirmedSalaryRecord
		err := rows.Scan(
			&c.ID, &c.CompanyID, &c.EmployeeID, &c.PeriodStart, &c.PeriodEnd,
			&c.WorkingHours, &c.HolidayHours, &c.TotalCumulativeHours,
			&c.HourlyRate, &c.CalculatedSalary, &c.PerHourRate, &c.ConfirmedSalary,
			&c.ConfirmedBy, &c.ConfirmationNotes, &c.ConfirmedAt, &c.CreatedAt, &c.UpdatedAt,
			&c.EmployeeName, &c.EmployeeCode,
			&h.BucketID, &h.ArchivedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan salary history: %w", err)
		}
		records = append(records, h)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return records, total, nil
}
