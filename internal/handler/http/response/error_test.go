package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/telemetry"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleError_StatusCodes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
		code string
	}{
		{"validation", validator.ValidationErrors{{Field: "focus_score", Message: "is required"}}, http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"wrapped validation", fmt.Errorf("ingest: %w", validator.ValidationErrors{{Field: "x", Message: "y"}}), http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"invalid token", auth.ErrInvalidToken, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"employee scope", telemetry.ErrEmployeeScope, http.StatusForbidden, "FORBIDDEN"},
		{"record not found", attendance.ErrRecordNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"employee code exists", employee.ErrEmployeeCodeExists, http.StatusConflict, "CONFLICT"},
		{"confirmed exists", fmt.Errorf("confirm: %w", payroll.ErrConfirmedRecordExists), http.StatusConflict, "CONFLICT"},
		{"bucket empty", payroll.ErrBucketEmpty, http.StatusBadRequest, "BAD_REQUEST"},
		{"bucket incomplete", fmt.Errorf("%w: copied 3 of 4", payroll.ErrBucketIncomplete), http.StatusConflict, "CONFLICT"},
		{"punch out before in", attendance.ErrPunchOutBeforeIn, http.StatusBadRequest, "BAD_REQUEST"},
		{"unknown", errors.New("connection reset"), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			HandleError(rec, tt.err)

			assert.Equal(t, tt.want, rec.Code)

			var body Response
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.False(t, body.Success)
			require.NotNil(t, body.Error)
			assert.Equal(t, tt.code, body.Error.Code)
		})
	}
}

func TestHandleError_ValidationDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleError(rec, validator.ValidationErrors{
		{Field: "session_id", Message: "session_id is required"},
		{Field: "focus_score", Message: "focus_score must be between 0 and 100"},
	})

	var body Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "session_id is required", body.Error.Details["session_id"])
	assert.Contains(t, body.Error.Details, "focus_score")
}
