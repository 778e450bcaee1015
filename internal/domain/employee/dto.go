package employee

import (
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type CreateEmployeeRequest struct {
	EmployeeCode string          `json:"employee_code"`
	FullName     string          `json:"full_name"`
	BiometricID  *string         `json:"biometric_id,omitempty"`
	Department   *string         `json:"department,omitempty"`
	HourlyRate   decimal.Decimal `json:"hourly_rate"`
}

func (r *CreateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.EmployeeCode) {
		errs.Add("employee_code", "employee_code is required")
	}
	if validator.IsEmpty(r.FullName) {
		errs.Add("full_name", "full_name is required")
	}
	if r.BiometricID != nil && validator.IsEmpty(*r.BiometricID) {
		errs.Add("biometric_id", "biometric_id must not be blank")
	}
	if r.HourlyRate.IsNegative() {
		errs.Add("hourly_rate", "hourly_rate must be non-negative")
	}
	return errs.Err()
}

type UpdateEmployeeRequest struct {
	ID          string           `json:"-"`
	FullName    *string          `json:"full_name,omitempty"`
	BiometricID *string          `json:"biometric_id,omitempty"`
	Department  *string          `json:"department,omitempty"`
	HourlyRate  *decimal.Decimal `json:"hourly_rate,omitempty"`
	IsActive    *bool            `json:"is_active,omitempty"`
}

func (r *UpdateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors
	if r.FullName != nil && validator.IsEmpty(*r.FullName) {
		errs.Add("full_name", "full_name must not be blank")
	}
	if r.HourlyRate != nil && r.HourlyRate.IsNegative() {
		errs.Add("hourly_rate", "hourly_rate must be non-negative")
	}
	return errs.Err()
}

type EmployeeResponse struct {
	ID           string          `json:"id"`
	EmployeeCode string          `json:"employee_code"`
	FullName     string          `json:"full_name"`
	BiometricID  *string         `json:"biometric_id,omitempty"`
	Department   *string         `json:"department,omitempty"`
	HourlyRate   decimal.Decimal `json:"hourly_rate"`
	IsActive     bool            `json:"is_active"`
}
