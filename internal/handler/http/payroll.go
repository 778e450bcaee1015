package http

import (
	"bytes"
	"net/http"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/workforce-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type PayrollHandler interface {
	// Holiday credits
	SetHolidayCredit(w http.ResponseWriter, r *http.Request)
	ListHolidayCredits(w http.ResponseWriter, r *http.Request)
	DeleteHolidayCredit(w http.ResponseWriter, r *http.Request)

	// Computation
	Compute(w http.ResponseWriter, r *http.Request)
	ComputeAll(w http.ResponseWriter, r *http.Request)

	// Confirmed salaries
	Confirm(w http.ResponseWriter, r *http.Request)
	ListConfirmed(w http.ResponseWriter, r *http.Request)
	GetConfirmed(w http.ResponseWriter, r *http.Request)
	UpdateConfirmed(w http.ResponseWriter, r *http.Request)
	DeleteConfirmed(w http.ResponseWriter, r *http.Request)

	// Buckets
	ArchiveBucket(w http.ResponseWriter, r *http.Request)
	ListBuckets(w http.ResponseWriter, r *http.Request)
	ListHistory(w http.ResponseWriter, r *http.Request)

	Report(w http.ResponseWriter, r *http.Request)
}

type payrollHandlerImpl struct {
	payrollService payroll.PayrollService
}

func NewPayrollHandler(payrollService payroll.PayrollService) PayrollHandler {
	return &payrollHandlerImpl{payrollService: payrollService}
}

// ========== HOLIDAY CREDITS ==========

func (h *payrollHandlerImpl) SetHolidayCredit(w http.ResponseWriter, r *http.Request) {
	var req payroll.SetHolidayCreditRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.payrollService.SetHolidayCredit(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) ListHolidayCredits(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	result, err := h.payrollService.ListHolidayCredits(r.Context(), query.Get("start_date"), query.Get("end_date"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) DeleteHolidayCredit(w http.ResponseWriter, r *http.Request) {
	if err := h.payrollService.DeleteHolidayCredit(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Holiday credit deleted successfully", nil)
}

// ========== COMPUTATION ==========

func (h *payrollHandlerImpl) Compute(w http.ResponseWriter, r *http.Request) {
	var req payroll.ComputeSalaryRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.payrollService.ComputeMonthly(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) ComputeAll(w http.ResponseWriter, r *http.Request) {
	var req payroll.ComputeAllRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.payrollService.ComputeAll(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ========== CONFIRMED SALARIES ==========

func (h *payrollHandlerImpl) Confirm(w http.ResponseWriter, r *http.Request) {
	var req payroll.ConfirmSalaryRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.payrollService.ConfirmSalary(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Salary confirmed", result)
}

func (h *payrollHandlerImpl) ListConfirmed(w http.ResponseWriter, r *http.Request) {
	filter := payroll.ConfirmedFilter{
		EmployeeID: queryString(r, "employee_id"),
		StartDate:  queryString(r, "start_date"),
		EndDate:    queryString(r, "end_date"),
		Page:       queryInt(r, "page", 1),
		Limit:      queryInt(r, "limit", 50),
	}

	result, err := h.payrollService.ListConfirmed(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result, response.PageMeta(result.Pagination))
}

func (h *payrollHandlerImpl) GetConfirmed(w http.ResponseWriter, r *http.Request) {
	result, err := h.payrollService.GetConfirmed(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) UpdateConfirmed(w http.ResponseWriter, r *http.Request) {
	var req payroll.UpdateConfirmedRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")

	result, err := h.payrollService.UpdateConfirmed(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Confirmed salary updated", result)
}

func (h *payrollHandlerImpl) DeleteConfirmed(w http.ResponseWriter, r *http.Request) {
	if err := h.payrollService.DeleteConfirmed(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Confirmed salary deleted", nil)
}

// ========== BUCKETS ==========

func (h *payrollHandlerImpl) ArchiveBucket(w http.ResponseWriter, r *http.Request) {
	var req payroll.ArchiveBucketRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.payrollService.ArchiveBucket(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Salary records archived", result)
}

func (h *payrollHandlerImpl) ListBuckets(w http.ResponseWriter, r *http.Request) {
	result, err := h.payrollService.ListBuckets(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) ListHistory(w http.ResponseWriter, r *http.Request) {
	filter := payroll.HistoryFilter{
		EmployeeID: queryString(r, "employee_id"),
		BucketID:   queryString(r, "bucket_id"),
		Page:       queryInt(r, "page", 1),
		Limit:      queryInt(r, "limit", 50),
	}

	result, err := h.payrollService.ListHistory(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.Records, response.PageMeta(result.Pagination))
}

// ========== REPORT ==========

// Report renders the confirmed salaries of a period as printable HTML.
func (h *payrollHandlerImpl) Report(w http.ResponseWriter, r *http.Request) {
	req := payroll.ReportRequest{
		StartDate: r.URL.Query().Get("start_date"),
		EndDate:   r.URL.Query().Get("end_date"),
	}

	// Buffered so a failed render can still produce a JSON error.
	var buf bytes.Buffer
	if err := h.payrollService.RenderConfirmedReport(r.Context(), req, &buf); err != nil {
		response.HandleError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
