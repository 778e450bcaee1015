package employee

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/validator"
	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCompanyID = "0191e5a4-8c1a-7a3e-9f00-000000000001"

type fakeEmployeeRepo struct {
	byID map[string]employee.Employee
}

func newFakeEmployeeRepo() *fakeEmployeeRepo {
	return &fakeEmployeeRepo{byID: map[string]employee.Employee{}}
}

func (f *fakeEmployeeRepo) Create(ctx context.Context, e employee.Employee) (employee.Employee, error) {
	for _, existing := range f.byID {
		if existing.CompanyID != e.CompanyID {
			continue
		}
		if existing.EmployeeCode == e.EmployeeCode {
			return employee.Employee{}, employee.ErrEmployeeCodeExists
		}
		if e.BiometricID != nil && existing.BiometricID != nil && *existing.BiometricID == *e.BiometricID {
			return employee.Employee{}, employee.ErrBiometricIDExists
		}
	}
	e.ID = uuid.NewString()
	f.byID[e.ID] = e
	return e, nil
}

func (f *fakeEmployeeRepo) GetByID(ctx context.Context, id string, companyID string) (employee.Employee, error) {
	e, ok := f.byID[id]
	if !ok || e.CompanyID != companyID {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func (f *fakeEmployeeRepo) GetByBiometricID(ctx context.Context, biometricID string, companyID string) (employee.Employee, error) {
	for _, e := range f.byID {
		if e.CompanyID == companyID && e.BiometricID != nil && *e.BiometricID == biometricID {
			return e, nil
		}
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (f *fakeEmployeeRepo) ListActive(ctx context.Context, companyID string) ([]employee.Employee, error) {
	var out []employee.Employee
	for _, e := range f.byID {
		if e.CompanyID == companyID && e.IsActive {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEmployeeRepo) Update(ctx context.Context, e employee.Employee) error {
	if _, ok := f.byID[e.ID]; !ok {
		return employee.ErrEmployeeNotFound
	}
	f.byID[e.ID] = e
	return nil
}

func authContext(t *testing.T) context.Context {
	t.Helper()
	ja := jwtauth.New("HS256", []byte("test-secret"), nil)
	token, _, err := ja.Encode(map[string]interface{}{
		"user_id":    "owner-1",
		"company_id": testCompanyID,
		"role":       "owner",
	})
	require.NoError(t, err)
	return jwtauth.NewContext(context.Background(), token, nil)
}

func strPtr(s string) *string { return &s }

func TestEmployeeService_CreateAndGet(t *testing.T) {
	svc := NewEmployeeService(newFakeEmployeeRepo())
	ctx := authContext(t)

	created, err := svc.Create(ctx, employee.CreateEmployeeRequest{
		EmployeeCode: " E001 ",
		FullName:     "Asha Rao",
		BiometricID:  strPtr("101"),
		HourlyRate:   decimal.RequireFromString("25.005"),
	})
	require.NoError(t, err)
	assert.Equal(t, "E001", created.EmployeeCode)
	assert.Equal(t, "25.01", created.HourlyRate.StringFixed(2))
	assert.True(t, created.IsActive)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	_, err = svc.Create(ctx, employee.CreateEmployeeRequest{EmployeeCode: "E002", FullName: "Ravi", BiometricID: strPtr("101")})
	assert.ErrorIs(t, err, employee.ErrBiometricIDExists)
}

func TestEmployeeService_CreateValidation(t *testing.T) {
	svc := NewEmployeeService(newFakeEmployeeRepo())

	_, err := svc.Create(authContext(t), employee.CreateEmployeeRequest{HourlyRate: decimal.NewFromInt(-1)})

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	fields := verrs.ToMap()
	assert.Contains(t, fields, "employee_code")
	assert.Contains(t, fields, "full_name")
	assert.Contains(t, fields, "hourly_rate")
}

func TestEmployeeService_UpdateAndDeactivate(t *testing.T) {
	svc := NewEmployeeService(newFakeEmployeeRepo())
	ctx := authContext(t)

	created, err := svc.Create(ctx, employee.CreateEmployeeRequest{
		EmployeeCode: "E001",
		FullName:     "Asha Rao",
		BiometricID:  strPtr("101"),
		HourlyRate:   decimal.NewFromInt(25),
	})
	require.NoError(t, err)

	rate := decimal.NewFromInt(30)
	inactive := false
	updated, err := svc.Update(ctx, employee.UpdateEmployeeRequest{
		ID:          created.ID,
		BiometricID: strPtr(""),
		HourlyRate:  &rate,
		IsActive:    &inactive,
	})
	require.NoError(t, err)
	assert.Nil(t, updated.BiometricID)
	assert.Equal(t, "30.00", updated.HourlyRate.StringFixed(2))

	active, err := svc.ListActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestEmployeeService_GetUnknown(t *testing.T) {
	svc := NewEmployeeService(newFakeEmployeeRepo())

	_, err := svc.Get(authContext(t), uuid.NewString())
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)

	_, err = svc.Get(context.Background(), uuid.NewString())
	assert.Error(t, err)
}
