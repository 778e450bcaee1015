package employee

import "errors"

var (
	ErrEmployeeNotFound   = errors.New("employee not found")
	ErrEmployeeCodeExists = errors.New("employee code already exists")
	ErrBiometricIDExists  = errors.New("biometric id already enrolled in this company")
)
