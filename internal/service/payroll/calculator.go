package payroll

import (
	"sort"
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

// Calculator derives period hours and pay from reconciled days. It is pure
// and safe for concurrent use.
type Calculator struct {
	standardDailyHours decimal.Decimal
}

func NewCalculator(standardDailyHours decimal.Decimal) *Calculator {
	return &Calculator{standardDailyHours: standardDailyHours}
}

// CalculationInput is everything one employee's period computation needs.
type CalculationInput struct {
	PeriodStart time.Time
	PeriodEnd   time.Time
	HourlyRate  decimal.Decimal
	Days        []attendance.DailyRecord
	// Holidays maps YYYY-MM-DD to credited hours. Dates outside the period are ignored.
	Holidays map[string]decimal.Decimal
}

func (c *Calculator) Compute(in CalculationInput) payroll.MonthlySalaryComputation {
	out := payroll.MonthlySalaryComputation{
		PeriodStart:        in.PeriodStart,
		PeriodEnd:          in.PeriodEnd,
		HourlyRate:         in.HourlyRate,
		WorkingHours:       decimal.Zero,
		HolidayHours:       decimal.Zero,
		RegularHours:       decimal.Zero,
		OvertimeHours:      decimal.Zero,
		PendingReviewDates: []time.Time{},
	}

	for _, day := range in.Days {
		if day.Date.Before(in.PeriodStart) || day.Date.After(in.PeriodEnd) {
			continue
		}
		if day.Final.WorkedHours == nil {
			out.PendingReviewDates = append(out.PendingReviewDates, day.Date)
			continue
		}

		worked := decimal.NewFromFloat(*day.Final.WorkedHours).Round(2)
		out.WorkingHours = out.WorkingHours.Add(worked)
		out.PayableDays++

		if c.standardDailyHours.IsPositive() && worked.GreaterThan(c.standardDailyHours) {
			out.RegularHours = out.RegularHours.Add(c.standardDailyHours)
			out.OvertimeHours = out.OvertimeHours.Add(worked.Sub(c.standardDailyHours))
		} else {
			out.RegularHours = out.RegularHours.Add(worked)
		}
	}

	for date, hours := range in.Holidays {
		d, err := time.Parse("2006-01-02", date)
		if err != nil || d.Before(in.PeriodStart) || d.After(in.PeriodEnd) {
			continue
		}
		out.HolidayHours = out.HolidayHours.Add(hours)
		out.HolidayDays++
	}

	sort.Slice(out.PendingReviewDates, func(i, j int) bool {
		return out.PendingReviewDates[i].Before(out.PendingReviewDates[j])
	})

	out.TotalCumulativeHours = out.WorkingHours.Add(out.HolidayHours)
	out.CalculatedSalary = SalaryFor(in.HourlyRate, out.TotalCumulativeHours)
	return out
}

// SalaryFor returns rate × hours rounded to two decimals.
func SalaryFor(rate, hours decimal.Decimal) decimal.Decimal {
	return rate.Mul(hours).Round(2)
}
