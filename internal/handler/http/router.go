package http

import (
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/workforce-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type RouterOptions struct {
	AllowedOrigins []string
	Logger         *slog.Logger
	LogLevel       slog.Level
}

func NewRouter(
	opts RouterOptions,
	JWTService jwt.Service,
	attendanceHandler AttendanceHandler,
	payrollHandler PayrollHandler,
	pranaHandler PranaHandler,
	employeeHandler EmployeeHandler,
) *chi.Mux {
	r := chi.NewRouter()

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  opts.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		// Authenticated by the short-lived token in the query string.
		r.Get("/prana/stream", pranaHandler.Stream)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired)
			r.Use(middleware.RequireCompany)
			r.Use(chiMiddleware.AllowContentType("application/json", "multipart/form-data"))

			r.Route("/employees", func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionEmployeeManage))
				r.Get("/", employeeHandler.ListEmployees)
				r.Post("/", employeeHandler.CreateEmployee)
				r.Get("/{id}", employeeHandler.GetEmployee)
				r.Put("/{id}", employeeHandler.UpdateEmployee)
				r.Post("/{id}/inactivate", employeeHandler.InactivateEmployee)
			})

			r.Route("/attendance", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionAttendancePunch))
					r.Post("/punch", attendanceHandler.Punch)
					r.Get("/my", attendanceHandler.GetMyAttendance)
				})

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionAttendanceImport))
					r.Post("/biometric", attendanceHandler.ImportBiometric)
					r.Post("/biometric/upload", attendanceHandler.UploadBiometric)
				})

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionAttendanceViewAll))
					r.Get("/", attendanceHandler.List)
					r.Get("/{id}", attendanceHandler.Get)
				})

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionAttendanceReview))
					r.Get("/review", attendanceHandler.ReviewQueue)
					r.Post("/reconcile", attendanceHandler.Reconcile)
					r.Post("/reconcile/day", attendanceHandler.ReconcileDay)
					r.Put("/{id}/override", attendanceHandler.Override)
					r.Delete("/{id}", attendanceHandler.Delete)
				})
			})

			r.Route("/salary", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionSalaryCompute))
					r.Post("/compute", payrollHandler.Compute)
					r.Post("/compute-all", payrollHandler.ComputeAll)
					r.Get("/holidays", payrollHandler.ListHolidayCredits)
					r.Post("/holidays", payrollHandler.SetHolidayCredit)
					r.Delete("/holidays/{id}", payrollHandler.DeleteHolidayCredit)
				})

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionSalaryConfirm))
					r.Post("/confirmed", payrollHandler.Confirm)
					r.Get("/confirmed", payrollHandler.ListConfirmed)
					r.Get("/confirmed/{id}", payrollHandler.GetConfirmed)
					r.Put("/confirmed/{id}", payrollHandler.UpdateConfirmed)
					r.Delete("/confirmed/{id}", payrollHandler.DeleteConfirmed)
					r.Get("/buckets", payrollHandler.ListBuckets)
					r.Get("/history", payrollHandler.ListHistory)
					r.Get("/report", payrollHandler.Report)
				})

				// Moving records into history is irreversible.
				r.With(middleware.RequirePermission(user.PermissionSalaryArchive)).Post("/buckets", payrollHandler.ArchiveBucket)
			})

			r.Route("/prana", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionActivityReport))
					r.Post("/packets", pranaHandler.Ingest)
					r.Get("/summary", pranaHandler.Summary)
					r.Get("/summary/daily", pranaHandler.DailySummaries)
					r.Get("/live/{employeeId}", pranaHandler.LiveStatus)
					r.Post("/stream-token", pranaHandler.GetStreamToken)
				})

				r.With(middleware.RequirePermission(user.PermissionActivityViewAll)).Get("/live", pranaHandler.TeamLive)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "route not found", http.StatusNotFound)
	})

	return r
}
