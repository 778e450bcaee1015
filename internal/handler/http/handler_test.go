package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/telemetry"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/workforce-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/sse"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	handlerTestSecret    = "test-secret-key-for-jwt"
	handlerTestCompanyID = "0191e5a4-8c1a-7a3e-9f00-000000000001"
	handlerTestEmployee  = "0191e5a4-8c1a-7a3e-9f00-000000000101"
	handlerTestColleague = "0191e5a4-8c1a-7a3e-9f00-000000000102"
)

// ===== FAKES =====

type fakeAttendanceService struct {
	attendance.Service
	mu      sync.Mutex
	punches []attendance.AppPunchRequest
	uploads []string
	replace []bool
}

func (f *fakeAttendanceService) ImportBiometricFile(ctx context.Context, filename string, r io.Reader, replace bool) (attendance.ImportBiometricResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads = append(f.uploads, filename)
	f.replace = append(f.replace, replace)
	return attendance.ImportBiometricResponse{Received: 1, Imported: 1, Failed: []attendance.RowError{}}, nil
}

func (f *fakeAttendanceService) RecordAppPunch(ctx context.Context, req attendance.AppPunchRequest) (attendance.DailyRecordResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.DailyRecordResponse{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.punches = append(f.punches, req)
	return attendance.DailyRecordResponse{
		EmployeeID: req.EmployeeID,
		MergeCase:  attendance.CaseIncomplete,
	}, nil
}

func (f *fakeAttendanceService) ListRecords(ctx context.Context, filter attendance.RecordFilter) (attendance.ListRecordResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListRecordResponse{}, err
	}
	resp := attendance.ListRecordResponse{
		Pagination: validator.PageInfo{Page: filter.Page, Limit: filter.Limit},
	}
	if filter.EmployeeID != nil {
		resp.Records = []attendance.DailyRecordResponse{{EmployeeID: *filter.EmployeeID}}
		resp.Pagination.TotalItems = 1
	}
	return resp, nil
}

type fakePayrollService struct {
	payroll.PayrollService
}

func (f *fakePayrollService) ListConfirmed(ctx context.Context, filter payroll.ConfirmedFilter) (payroll.ListConfirmedResponse, error) {
	if err := filter.Validate(); err != nil {
		return payroll.ListConfirmedResponse{}, err
	}
	return payroll.ListConfirmedResponse{
		Records:    []payroll.ConfirmedSalaryResponse{{ID: "rec-1"}},
		Pagination: validator.PageInfo{Page: filter.Page, Limit: filter.Limit, TotalItems: 120},
	}, nil
}

func (f *fakePayrollService) ArchiveBucket(ctx context.Context, req payroll.ArchiveBucketRequest) (payroll.BucketResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.BucketResponse{}, err
	}
	return payroll.BucketResponse{Label: req.Label, RecordCount: len(req.RecordIDs)}, nil
}

func (f *fakePayrollService) RenderConfirmedReport(ctx context.Context, req payroll.ReportRequest, w io.Writer) error {
	if err := req.Validate(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "<html><body>Confirmed salaries "+req.StartDate+"</body></html>")
	return err
}

type fakeTelemetryService struct {
	telemetry.TelemetryService
}

func (f *fakeTelemetryService) Ingest(ctx context.Context, req telemetry.IngestRequest) (telemetry.SampleResponse, error) {
	if err := req.Validate(); err != nil {
		return telemetry.SampleResponse{}, err
	}
	return telemetry.SampleResponse{SessionID: req.SessionID, FocusScore: *req.FocusScore}, nil
}

type fakeEmployeeService struct {
	employee.EmployeeService
}

func (f *fakeEmployeeService) ListActive(ctx context.Context) ([]employee.EmployeeResponse, error) {
	return []employee.EmployeeResponse{{ID: handlerTestEmployee, FullName: "Asha Rao", IsActive: true}}, nil
}

// ===== SETUP =====

type handlerEnv struct {
	jwt        jwt.Service
	hub        *sse.Hub
	attendance *fakeAttendanceService
	router     http.Handler
}

func newHandlerEnv(t *testing.T) *handlerEnv {
	t.Helper()

	env := &handlerEnv{
		jwt:        jwt.NewJWTService(handlerTestSecret, "1h"),
		hub:        sse.NewHub(),
		attendance: &fakeAttendanceService{},
	}

	prana := NewPranaHandler(&fakeTelemetryService{}, env.jwt, env.hub).(*pranaHandlerImpl)
	prana.keepalive = 50 * time.Millisecond

	env.router = NewRouter(
		RouterOptions{
			AllowedOrigins: []string{"http://localhost:3000"},
			Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		},
		env.jwt,
		NewAttendanceHandler(env.attendance, 1<<20),
		NewPayrollHandler(&fakePayrollService{}),
		prana,
		NewEmployeeHandler(&fakeEmployeeService{}),
	)
	return env
}

func (e *handlerEnv) token(t *testing.T, role user.Role, employeeID *string) string {
	t.Helper()
	token, _, err := e.jwt.GenerateAccessToken(jwt.Claims{
		UserID:     "user-1",
		CompanyID:  handlerTestCompanyID,
		EmployeeID: employeeID,
		Role:       role,
	})
	require.NoError(t, err)
	return token
}

func (e *handlerEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var resp response.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func strPtr(s string) *string { return &s }

// ===== HANDLER TESTS =====

func TestAttendanceHandler_Punch_UsesTokenEmployee(t *testing.T) {
	env := newHandlerEnv(t)
	token := env.token(t, user.RoleEmployee, strPtr(handlerTestEmployee))

	rec := env.do(t, http.MethodPost, "/api/v1/attendance/punch", token, map[string]interface{}{
		"action":    "start_day",
		"timestamp": "2024-03-04T09:05:00Z",
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Len(t, env.attendance.punches, 1)
	assert.Equal(t, handlerTestEmployee, env.attendance.punches[0].EmployeeID)
}

func TestAttendanceHandler_Punch_RequiresEmployeeClaim(t *testing.T) {
	env := newHandlerEnv(t)
	token := env.token(t, user.RoleOwner, nil)

	rec := env.do(t, http.MethodPost, "/api/v1/attendance/punch", token, map[string]interface{}{"action": "start_day"})

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, env.attendance.punches)
}

func TestAttendanceHandler_Punch_InvalidAction(t *testing.T) {
	env := newHandlerEnv(t)
	token := env.token(t, user.RoleEmployee, strPtr(handlerTestEmployee))

	rec := env.do(t, http.MethodPost, "/api/v1/attendance/punch", token, map[string]interface{}{"action": "lunch"})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Contains(t, resp.Error.Details, "action")
}

func TestAttendanceHandler_GetMyAttendance_ScopedToCaller(t *testing.T) {
	env := newHandlerEnv(t)
	token := env.token(t, user.RoleEmployee, strPtr(handlerTestEmployee))

	rec := env.do(t, http.MethodGet, "/api/v1/attendance/my?employee_id="+handlerTestColleague, token, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), handlerTestEmployee)
	assert.NotContains(t, rec.Body.String(), handlerTestColleague)
}

func TestAttendanceHandler_List_PaginationInMeta(t *testing.T) {
	env := newHandlerEnv(t)
	token := env.token(t, user.RoleEmployee, strPtr(handlerTestEmployee))

	rec := env.do(t, http.MethodGet, "/api/v1/attendance/my?page=2&limit=10", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data []attendance.DailyRecordResponse `json:"data"`
		Meta response.Meta                    `json:"meta"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, response.Meta{Page: 2, Limit: 10, TotalItems: 1, TotalPages: 1}, body.Meta)
}

func TestPayrollHandler_ListConfirmed_PaginationInMeta(t *testing.T) {
	env := newHandlerEnv(t)
	token := env.token(t, user.RoleOwner, nil)

	rec := env.do(t, http.MethodGet, "/api/v1/salary/confirmed?limit=50", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data map[string]json.RawMessage `json:"data"`
		Meta response.Meta              `json:"meta"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Contains(t, body.Data, "records")
	assert.Contains(t, body.Data, "total_confirmed")
	assert.NotContains(t, body.Data, "page")
	assert.Equal(t, response.Meta{Page: 1, Limit: 50, TotalItems: 120, TotalPages: 3}, body.Meta)
}

func TestAttendanceHandler_UploadBiometric_ReplaceMode(t *testing.T) {
	env := newHandlerEnv(t)
	token := env.token(t, user.RoleOwner, nil)

	upload := func(replace string) int {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		if replace != "" {
			require.NoError(t, mw.WriteField("replace", replace))
		}
		part, err := mw.CreateFormFile("file", "march.csv")
		require.NoError(t, err)
		_, err = part.Write([]byte("Name,Biometric ID,Date,Time In,Time Out\nA,101,2024-03-04,09:00,\n"))
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/attendance/biometric/upload", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)
		return rec.Code
	}

	require.Equal(t, http.StatusOK, upload(""))
	require.Equal(t, http.StatusOK, upload("true"))

	assert.Equal(t, []string{"march.csv", "march.csv"}, env.attendance.uploads)
	assert.Equal(t, []bool{false, true}, env.attendance.replace)
}

func TestRouter_Permissions(t *testing.T) {
	env := newHandlerEnv(t)
	employeeToken := env.token(t, user.RoleEmployee, strPtr(handlerTestEmployee))
	managerToken := env.token(t, user.RoleManager, strPtr(handlerTestColleague))
	ownerToken := env.token(t, user.RoleOwner, nil)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   interface{}
		want   int
	}{
		{"no token", http.MethodGet, "/api/v1/attendance", "", nil, http.StatusUnauthorized},
		{"employee lists company attendance", http.MethodGet, "/api/v1/attendance", employeeToken, nil, http.StatusForbidden},
		{"manager lists company attendance", http.MethodGet, "/api/v1/attendance", managerToken, nil, http.StatusOK},
		{"employee lists confirmed salaries", http.MethodGet, "/api/v1/salary/confirmed", employeeToken, nil, http.StatusForbidden},
		{"manager lists confirmed salaries", http.MethodGet, "/api/v1/salary/confirmed", managerToken, nil, http.StatusOK},
		{"manager archives", http.MethodPost, "/api/v1/salary/buckets", managerToken, map[string]interface{}{"all": true, "label": "March"}, http.StatusForbidden},
		{"owner archives", http.MethodPost, "/api/v1/salary/buckets", ownerToken, map[string]interface{}{"all": true, "label": "March"}, http.StatusCreated},
		{"manager lists employees", http.MethodGet, "/api/v1/employees", managerToken, nil, http.StatusForbidden},
		{"owner lists employees", http.MethodGet, "/api/v1/employees", ownerToken, nil, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, tt.method, tt.path, tt.token, tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestPayrollHandler_Report_HTML(t *testing.T) {
	env := newHandlerEnv(t)
	token := env.token(t, user.RoleManager, nil)

	rec := env.do(t, http.MethodGet, "/api/v1/salary/report?start_date=2024-03-01&end_date=2024-03-31", token, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "Confirmed salaries 2024-03-01")
}

func TestPayrollHandler_Report_InvalidRange(t *testing.T) {
	env := newHandlerEnv(t)
	token := env.token(t, user.RoleManager, nil)

	rec := env.do(t, http.MethodGet, "/api/v1/salary/report?start_date=2024-03-31&end_date=2024-03-01", token, nil)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestPranaHandler_Ingest(t *testing.T) {
	env := newHandlerEnv(t)
	token := env.token(t, user.RoleEmployee, strPtr(handlerTestEmployee))

	t.Run("accepted", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/v1/prana/packets", token, map[string]interface{}{
			"session_id":      "s-1",
			"cognitive_state": "focused",
			"focus_score":     72.5,
			"active_seconds":  25,
		})
		assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	})

	t.Run("missing focus score", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/v1/prana/packets", token, map[string]interface{}{
			"session_id":      "s-1",
			"cognitive_state": "focused",
		})
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		resp := decodeResponse(t, rec)
		assert.Contains(t, resp.Error.Details, "focus_score")
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/prana/packets", strings.NewReader("{"))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestPranaHandler_Stream(t *testing.T) {
	env := newHandlerEnv(t)
	server := httptest.NewServer(env.router)
	defer server.Close()

	// Stream token is issued against the caller's access token.
	rec := env.do(t, http.MethodPost, "/api/v1/prana/stream-token", env.token(t, user.RoleEmployee, strPtr(handlerTestEmployee)), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var tokenResp struct {
		Data streamTokenResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&tokenResp))
	require.NotEmpty(t, tokenResp.Data.Token)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/api/v1/prana/stream?token="+tokenResp.Data.Token, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	nextEvent := func() (string, string) {
		var name, data string
		for {
			line, err := reader.ReadString('\n')
			require.NoError(t, err)
			line = strings.TrimRight(line, "\n")
			switch {
			case strings.HasPrefix(line, "event: "):
				name = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: "):
				data = strings.TrimPrefix(line, "data: ")
			case line == "" && name != "":
				return name, data
			}
		}
	}

	name, _ := nextEvent()
	require.Equal(t, "connected", name)
	require.Eventually(t, func() bool { return env.hub.SubscriberCount(handlerTestCompanyID) == 1 }, time.Second, 10*time.Millisecond)

	// A colleague's packet is not shown to an employee stream.
	env.hub.Publish(handlerTestCompanyID, sse.Event{Event: "prana.sample", Data: telemetry.SampleResponse{EmployeeID: handlerTestColleague, SessionID: "other"}})
	env.hub.Publish(handlerTestCompanyID, sse.Event{Event: "prana.sample", Data: telemetry.SampleResponse{EmployeeID: handlerTestEmployee, SessionID: "mine"}})

	for {
		name, data := nextEvent()
		if name == "ping" {
			continue
		}
		assert.Equal(t, "prana.sample", name)
		assert.Contains(t, data, `"session_id":"mine"`)
		break
	}
}

func TestPranaHandler_Stream_RejectsAccessToken(t *testing.T) {
	env := newHandlerEnv(t)
	token := env.token(t, user.RoleOwner, nil)

	rec := env.do(t, http.MethodGet, "/api/v1/prana/stream?token="+token, "", nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
