package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/config"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/attendance"
	appHTTP "github.com/cmlabs-hris/workforce-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/biometric"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/document"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/geo"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/jwt"
	appOtel "github.com/cmlabs-hris/workforce-backend-go/internal/pkg/otel"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/sse"
	"github.com/cmlabs-hris/workforce-backend-go/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/workforce-backend-go/internal/service/attendance"
	employeeService "github.com/cmlabs-hris/workforce-backend-go/internal/service/employee"
	payrollService "github.com/cmlabs-hris/workforce-backend-go/internal/service/payroll"
	telemetryService "github.com/cmlabs-hris/workforce-backend-go/internal/service/telemetry"
	"github.com/go-chi/httplog/v3"
	"github.com/shopspring/decimal"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func newLogger(cfg *config.Config) (*slog.Logger, slog.Level) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.App.LogLevel)); err != nil {
		level = slog.LevelInfo
	}

	logFormat := httplog.SchemaECS.Concise(cfg.App.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "workforce-api"),
		slog.String("env", cfg.App.Env),
	)
	return logger, level
}

func run(ctx context.Context, cfg *config.Config) error {
	logger, level := newLogger(cfg)
	slog.SetDefault(logger)

	shutdownTracing, err := appOtel.Setup(ctx, appOtel.Options{
		Enabled:     cfg.OTel.Enabled,
		Endpoint:    cfg.OTel.Endpoint,
		ServiceName: cfg.OTel.ServiceName,
		Environment: cfg.App.Env,
	})
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			slog.Error("Failed to flush traces", "error", err)
		}
	}()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	loc := cfg.Location()
	shiftStart, _ := time.Parse("15:04", cfg.Reconcile.ShiftStart)

	// Repositories
	txManager := postgresql.NewTxManager(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	payrollRepo := postgresql.NewPayrollRepository(db)
	sampleRepo := postgresql.NewSampleRepository(db)

	// Supporting packages
	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	hub := sse.NewHub()

	var geocoder geo.Geocoder
	if cfg.Geocoder.URL != "" {
		geocoder = geo.NewHTTPGeocoder(cfg.Geocoder.URL, cfg.Geocoder.UserAgent, &http.Client{Timeout: cfg.Geocoder.Timeout})
	}
	labeler := geo.NewLabeler(geocoder, cfg.Geocoder.Timeout)

	renderer, err := document.NewRenderer()
	if err != nil {
		return err
	}

	// Services
	reconciler := attendanceService.NewReconciler(attendanceService.ReconcileConfig{
		Tolerance:    time.Duration(cfg.Reconcile.ToleranceMinutes) * time.Minute,
		TieBreak:     attendance.TieBreakSource(strings.ToLower(cfg.Reconcile.TieBreak)),
		ShiftStart:   time.Duration(shiftStart.Hour())*time.Hour + time.Duration(shiftStart.Minute())*time.Minute,
		LateGrace:    time.Duration(cfg.Reconcile.LateGraceMinutes) * time.Minute,
		HalfDayHours: cfg.Reconcile.HalfDayHours,
		Location:     loc,
	})
	attendanceSvc := attendanceService.NewAttendanceService(
		txManager,
		attendanceRepo,
		employeeRepo,
		reconciler,
		labeler,
		biometric.NewParser(cfg.Biometric.DayFirst),
		loc,
	)
	payrollSvc := payrollService.NewPayrollService(
		txManager,
		payrollRepo,
		employeeRepo,
		attendanceRepo,
		payrollService.NewCalculator(decimal.NewFromFloat(cfg.Payroll.StandardDailyHours)),
		renderer,
		payrollService.Options{
			DefaultHolidayHours: decimal.NewFromFloat(cfg.Payroll.DefaultHolidayHours),
			ComputeConcurrency:  cfg.Payroll.ComputeConcurrency,
		},
	)
	telemetrySvc := telemetryService.NewTelemetryService(sampleRepo, hub, cfg.Prana.LiveWindow, loc)
	employeeSvc := employeeService.NewEmployeeService(employeeRepo)

	// Handlers
	router := appHTTP.NewRouter(
		appHTTP.RouterOptions{
			AllowedOrigins: cfg.CORS.AllowedOrigins,
			Logger:         logger,
			LogLevel:       level,
		},
		JWTService,
		appHTTP.NewAttendanceHandler(attendanceSvc, cfg.Biometric.MaxUploadSize),
		appHTTP.NewPayrollHandler(payrollSvc),
		appHTTP.NewPranaHandler(telemetrySvc, JWTService, hub),
		appHTTP.NewEmployeeHandler(employeeSvc),
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		// Request contexts end with the process so open SSE streams return.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
