package http

import (
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

type AttendanceHandler interface {
	Punch(w http.ResponseWriter, r *http.Request)
	ImportBiometric(w http.ResponseWriter, r *http.Request)
	UploadBiometric(w http.ResponseWriter, r *http.Request)
	Reconcile(w http.ResponseWriter, r *http.Request)
	ReconcileDay(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	GetMyAttendance(w http.ResponseWriter, r *http.Request)
	ReviewQueue(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Override(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.Service
	maxUploadSize     int64
}

func NewAttendanceHandler(attendanceService attendance.Service, maxUploadSize int64) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
		maxUploadSize:     maxUploadSize,
	}
}

// Punch records the caller's start_day or end_day action.
func (h *attendanceHandlerImpl) Punch(w http.ResponseWriter, r *http.Request) {
	var req attendance.AppPunchRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	employeeID, err := employeeIDFromClaims(r)
	if err != nil {
		response.Forbidden(w, err.Error())
		return
	}
	req.EmployeeID = employeeID

	result, err := h.attendanceService.RecordAppPunch(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Punch recorded", result)
}

// ImportBiometric implements AttendanceHandler.
func (h *attendanceHandlerImpl) ImportBiometric(w http.ResponseWriter, r *http.Request) {
	var req attendance.ImportBiometricRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.attendanceService.ImportBiometric(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// UploadBiometric accepts a device log as multipart field "file".
func (h *attendanceHandlerImpl) UploadBiometric(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		slog.Error("Failed to parse multipart form", "error", err)
		response.BadRequest(w, "Failed to parse form data", nil)
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		if err == http.ErrMissingFile {
			response.BadRequest(w, "Biometric log file is required", nil)
			return
		}
		slog.Error("Failed to get file from form", "error", err)
		response.BadRequest(w, "Invalid file upload", nil)
		return
	}
	defer file.Close()

	replace := r.FormValue("replace") == "true"

	result, err := h.attendanceService.ImportBiometricFile(r.Context(), filepath.Base(fileHeader.Filename), file, replace)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Reconcile re-runs reconciliation over a date range.
func (h *attendanceHandlerImpl) Reconcile(w http.ResponseWriter, r *http.Request) {
	var req attendance.ReconcileRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.attendanceService.ReconcileRange(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

type reconcileDayRequest struct {
	EmployeeID string `json:"employee_id"`
	Date       string `json:"date"`
}

// ReconcileDay re-runs reconciliation for one employee day.
func (h *attendanceHandlerImpl) ReconcileDay(w http.ResponseWriter, r *http.Request) {
	var req reconcileDayRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	var errs validator.ValidationErrors
	if !validator.IsValidUUID(req.EmployeeID) {
		errs.Add("employee_id", "employee_id must be a valid UUID")
	}
	date, ok := validator.IsValidDate(req.Date)
	if !ok {
		errs.Add("date", "date must be in YYYY-MM-DD format")
	}
	if err := errs.Err(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.Reconcile(r.Context(), req.EmployeeID, date)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func recordFilterFromQuery(r *http.Request) attendance.RecordFilter {
	return attendance.RecordFilter{
		EmployeeID:  queryString(r, "employee_id"),
		StartDate:   queryString(r, "start_date"),
		EndDate:     queryString(r, "end_date"),
		MergeCase:   queryString(r, "merge_case"),
		Status:      queryString(r, "status"),
		NeedsReview: queryBool(r, "needs_review"),
		Page:        queryInt(r, "page", 1),
		Limit:       queryInt(r, "limit", 20),
		SortBy:      r.URL.Query().Get("sort_by"),
		SortOrder:   r.URL.Query().Get("sort_order"),
	}
}

// List implements AttendanceHandler.
func (h *attendanceHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter := recordFilterFromQuery(r)

	results, err := h.attendanceService.ListRecords(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, results.Records, response.PageMeta(results.Pagination))
}

// GetMyAttendance lists the caller's own days.
func (h *attendanceHandlerImpl) GetMyAttendance(w http.ResponseWriter, r *http.Request) {
	employeeID, err := employeeIDFromClaims(r)
	if err != nil {
		response.Forbidden(w, err.Error())
		return
	}

	filter := recordFilterFromQuery(r)
	filter.EmployeeID = &employeeID

	results, err := h.attendanceService.ListRecords(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, results.Records, response.PageMeta(results.Pagination))
}

// ReviewQueue implements AttendanceHandler.
func (h *attendanceHandlerImpl) ReviewQueue(w http.ResponseWriter, r *http.Request) {
	filter := recordFilterFromQuery(r)

	results, err := h.attendanceService.ListReviewQueue(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, results.Records, response.PageMeta(results.Pagination))
}

// Get implements AttendanceHandler.
func (h *attendanceHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	result, err := h.attendanceService.GetRecord(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Override implements AttendanceHandler.
func (h *attendanceHandlerImpl) Override(w http.ResponseWriter, r *http.Request) {
	var req attendance.OverrideRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")

	result, err := h.attendanceService.OverrideRecord(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance overridden successfully", result)
}

// Delete implements AttendanceHandler.
func (h *attendanceHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.attendanceService.PurgeRecord(r.Context(), id); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance deleted successfully", nil)
}
