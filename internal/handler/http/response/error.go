package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/telemetry"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrWrongTokenUse):
		Unauthorized(w, err.Error())

	// User domain errors
	case errors.Is(err, user.ErrInsufficientPermissions):
		Forbidden(w, err.Error())
	case errors.Is(err, user.ErrCompanyIDRequired):
		Forbidden(w, "Token is not scoped to a company")

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrEmployeeCodeExists):
		Conflict(w, "Employee code already exists")
	case errors.Is(err, employee.ErrBiometricIDExists):
		Conflict(w, "Biometric ID already enrolled in this company")

	// Attendance domain errors
	case errors.Is(err, attendance.ErrRecordNotFound):
		NotFound(w, "Attendance record not found")
	case errors.Is(err, attendance.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, attendance.ErrUnknownBiometricID),
		errors.Is(err, attendance.ErrPunchOutBeforeIn),
		errors.Is(err, attendance.ErrUnsupportedUploadType):
		BadRequest(w, err.Error(), nil)

	// Payroll domain errors
	case errors.Is(err, payroll.ErrConfirmedRecordNotFound):
		NotFound(w, "Confirmed salary record not found")
	case errors.Is(err, payroll.ErrHolidayCreditNotFound):
		NotFound(w, "Holiday credit not found")
	case errors.Is(err, payroll.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, payroll.ErrConfirmedRecordExists):
		Conflict(w, "Salary already confirmed for this employee and period")
	case errors.Is(err, payroll.ErrBucketEmpty):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, payroll.ErrBucketIncomplete):
		Conflict(w, "Salary records changed during archiving, nothing was moved")

	// Telemetry domain errors
	case errors.Is(err, telemetry.ErrEmployeeScope):
		Forbidden(w, err.Error())
	case errors.Is(err, telemetry.ErrNoEmployee):
		Forbidden(w, err.Error())
	case errors.Is(err, telemetry.ErrNoSamples):
		NotFound(w, "No activity recorded")

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
