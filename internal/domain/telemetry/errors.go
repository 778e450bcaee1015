package telemetry

import "errors"

var (
	ErrNoSamples     = errors.New("no telemetry samples found")
	ErrEmployeeScope = errors.New("employees may only view their own activity")
	ErrNoEmployee    = errors.New("token is not bound to an employee")
)
