// Package document renders print formatted HTML reports from embedded templates.
package document

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/shopspring/decimal"
)

//go:embed templates/*.html
var templateFS embed.FS

// Renderer executes the embedded report templates.
type Renderer struct {
	templates *template.Template
}

func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"money": func(d decimal.Decimal) string { return d.StringFixed(2) },
		"hours": func(d decimal.Decimal) string { return d.StringFixed(2) },
		"date":  func(t time.Time) string { return t.Format("02 Jan 2006") },
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse report templates: %w", err)
	}
	return &Renderer{templates: tmpl}, nil
}

// SalaryLine is one confirmed salary in a report.
type SalaryLine struct {
	EmployeeCode     string
	EmployeeName     string
	PeriodStart      time.Time
	PeriodEnd        time.Time
	WorkingHours     decimal.Decimal
	HolidayHours     decimal.Decimal
	TotalHours       decimal.Decimal
	PerHourRate      decimal.Decimal
	CalculatedSalary decimal.Decimal
	ConfirmedSalary  decimal.Decimal
	Adjusted         bool
	ConfirmedBy      string
	Notes            string
}

type ConfirmedSalaryReport struct {
	Title           string
	PeriodStart     time.Time
	PeriodEnd       time.Time
	GeneratedAt     time.Time
	Lines           []SalaryLine
	TotalHours      decimal.Decimal
	TotalCalculated decimal.Decimal
	TotalConfirmed  decimal.Decimal
}

func (r *Renderer) RenderConfirmedSalaries(w io.Writer, data ConfirmedSalaryReport) error {
	if err := r.templates.ExecuteTemplate(w, "confirmed_salaries.html", data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}
	return nil
}
