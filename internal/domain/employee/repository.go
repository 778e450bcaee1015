package employee

import "context"

// EmployeeRepository is the subset of employee data the attendance and salary
// modules need. All lookups are scoped to a company.
type EmployeeRepository interface {
	Create(ctx context.Context, newEmployee Employee) (Employee, error)
	GetByID(ctx context.Context, id string, companyID string) (Employee, error)
	GetByBiometricID(ctx context.Context, biometricID string, companyID string) (Employee, error)
	ListActive(ctx context.Context, companyID string) ([]Employee, error)
	Update(ctx context.Context, e Employee) error
}
