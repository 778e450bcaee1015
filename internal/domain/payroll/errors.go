package payroll

import "errors"

var (
	ErrConfirmedRecordNotFound = errors.New("confirmed salary record not found")
	ErrConfirmedRecordExists   = errors.New("salary already confirmed for this employee and period")
	ErrHolidayCreditNotFound   = errors.New("holiday credit not found")
	ErrBucketEmpty             = errors.New("no confirmed salary records to archive")
	ErrBucketIncomplete        = errors.New("bucket archive moved a different number of records than requested")
	ErrEmployeeNotFound        = errors.New("employee not found")
)
