package attendance

import "errors"

// Attendance domain errors
var (
	ErrRecordNotFound        = errors.New("attendance record not found")
	ErrEmployeeNotFound      = errors.New("employee not found")
	ErrUnknownBiometricID    = errors.New("no employee is enrolled with this biometric id")
	ErrPunchOutBeforeIn      = errors.New("punch out is before punch in")
	ErrUnsupportedUploadType = errors.New("unsupported biometric log file type")
)
