package telemetry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/telemetry"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/sse"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/validator"
	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

// EventSample is the SSE event name of a freshly ingested sample.
const EventSample = "prana.sample"

var tracer = otel.Tracer("github.com/cmlabs-hris/workforce-backend-go/internal/service/telemetry")

// Publisher fans events out to live subscribers of a topic.
type Publisher interface {
	Publish(topic string, event sse.Event)
}

type TelemetryServiceImpl struct {
	repo       telemetry.SampleRepository
	publisher  Publisher
	liveWindow time.Duration
	loc        *time.Location
	now        func() time.Time
}

func NewTelemetryService(repo telemetry.SampleRepository, publisher Publisher, liveWindow time.Duration, loc *time.Location) telemetry.TelemetryService {
	if loc == nil {
		loc = time.UTC
	}
	return &TelemetryServiceImpl{
		repo:       repo,
		publisher:  publisher,
		liveWindow: liveWindow,
		loc:        loc,
		now:        time.Now,
	}
}

type caller struct {
	companyID  string
	employeeID string
	role       string
}

func getClaimsFromContext(ctx context.Context) (caller, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return caller{}, fmt.Errorf("failed to extract claims from context: %w", err)
	}

	companyID, ok := claims["company_id"].(string)
	if !ok || companyID == "" {
		return caller{}, fmt.Errorf("company_id claim is missing or invalid")
	}

	c := caller{companyID: companyID}
	c.employeeID, _ = claims["employee_id"].(string)
	c.role, _ = claims["role"].(string)
	return c, nil
}

// subject resolves whose activity is requested. Managers and owners may read
// anyone in the company, everyone else only themselves.
func (c caller) subject(employeeID string) (string, error) {
	if employeeID == "" {
		if c.employeeID == "" {
			return "", telemetry.ErrNoEmployee
		}
		return c.employeeID, nil
	}
	if employeeID != c.employeeID && c.role != "owner" && c.role != "manager" {
		return "", telemetry.ErrEmployeeScope
	}
	return employeeID, nil
}

func (s *TelemetryServiceImpl) Ingest(ctx context.Context, req telemetry.IngestRequest) (telemetry.SampleResponse, error) {
	ctx, span := tracer.Start(ctx, "telemetry.Ingest")
	defer span.End()

	if err := req.Validate(); err != nil {
		return telemetry.SampleResponse{}, err
	}

	c, err := getClaimsFromContext(ctx)
	if err != nil {
		return telemetry.SampleResponse{}, err
	}
	if c.employeeID == "" {
		return telemetry.SampleResponse{}, telemetry.ErrNoEmployee
	}

	// The live window and every summary are keyed on receive time; the
	// client's own clock is only stored.
	var clientTime *time.Time
	if req.Timestamp != nil {
		t, _ := validator.IsValidDateTime(*req.Timestamp)
		t = t.UTC()
		clientTime = &t
	}

	id, err := uuid.NewV7()
	if err != nil {
		return telemetry.SampleResponse{}, fmt.Errorf("failed to generate sample id: %w", err)
	}

	sample := telemetry.Sample{
		ID:             id.String(),
		CompanyID:      c.companyID,
		EmployeeID:     c.employeeID,
		SessionID:      req.SessionID,
		RecordedAt:     s.now().UTC(),
		ClientTime:     clientTime,
		CognitiveState: telemetry.CognitiveState(req.CognitiveState),
		ActiveSeconds:  req.ActiveSeconds,
		IdleSeconds:    req.IdleSeconds,
		AwaySeconds:    req.AwaySeconds,
		FocusScore:     *req.FocusScore,
		RawSignals:     req.RawSignals,
	}

	if err := s.repo.Insert(ctx, sample); err != nil {
		return telemetry.SampleResponse{}, fmt.Errorf("failed to store telemetry sample: %w", err)
	}

	resp := mapSample(sample)
	span.SetAttributes(
		attribute.String("telemetry.employee_id", sample.EmployeeID),
		attribute.String("telemetry.state", req.CognitiveState),
	)

	if s.publisher != nil {
		s.publisher.Publish(c.companyID, sse.Event{Event: EventSample, Data: resp})
	}
	return resp, nil
}

func (s *TelemetryServiceImpl) LiveStatus(ctx context.Context, employeeID string) (telemetry.LiveStatusResponse, error) {
	c, err := getClaimsFromContext(ctx)
	if err != nil {
		return telemetry.LiveStatusResponse{}, err
	}
	subject, err := c.subject(employeeID)
	if err != nil {
		return telemetry.LiveStatusResponse{}, err
	}
	return s.liveStatus(ctx, c.companyID, subject)
}

func (s *TelemetryServiceImpl) liveStatus(ctx context.Context, companyID, employeeID string) (telemetry.LiveStatusResponse, error) {
	latest, err := s.repo.Latest(ctx, companyID, employeeID)
	if err != nil {
		if errors.Is(err, telemetry.ErrNoSamples) {
			return telemetry.LiveStatusResponse{EmployeeID: employeeID}, nil
		}
		return telemetry.LiveStatusResponse{}, fmt.Errorf("failed to get latest sample: %w", err)
	}
	return s.toLiveStatus(latest), nil
}

// toLiveStatus reports the sample as live only when it falls inside the live
// window. A stale sample still exposes when the employee was last seen.
func (s *TelemetryServiceImpl) toLiveStatus(sample telemetry.Sample) telemetry.LiveStatusResponse {
	lastSeen := sample.RecordedAt.In(s.loc).Format(time.RFC3339)
	resp := telemetry.LiveStatusResponse{
		EmployeeID: sample.EmployeeID,
		LastSeenAt: &lastSeen,
	}
	if s.now().Sub(sample.RecordedAt) > s.liveWindow {
		return resp
	}

	state := string(sample.CognitiveState)
	score := sample.FocusScore
	tier := ProductivityTier(score)
	resp.Live = true
	resp.CognitiveState = &state
	resp.FocusScore = &score
	resp.Tier = &tier
	return resp
}

func (s *TelemetryServiceImpl) TeamLive(ctx context.Context) ([]telemetry.LiveStatusResponse, error) {
	c, err := getClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}

	samples, err := s.repo.LatestPerEmployeeSince(ctx, c.companyID, s.now().Add(-s.liveWindow))
	if err != nil {
		return nil, fmt.Errorf("failed to list live samples: %w", err)
	}

	resp := make([]telemetry.LiveStatusResponse, 0, len(samples))
	for _, sample := range samples {
		resp = append(resp, s.toLiveStatus(sample))
	}
	return resp, nil
}

// window turns an inclusive date range into a half-open instant range in the
// company time zone.
func (s *TelemetryServiceImpl) window(startDate, endDate string) (time.Time, time.Time) {
	start, _ := time.ParseInLocation("2006-01-02", startDate, s.loc)
	end, _ := time.ParseInLocation("2006-01-02", endDate, s.loc)
	return start, end.AddDate(0, 0, 1)
}

func (s *TelemetryServiceImpl) Summary(ctx context.Context, req telemetry.SummaryRequest) (telemetry.SummaryResponse, error) {
	if err := req.Validate(); err != nil {
		return telemetry.SummaryResponse{}, err
	}

	c, err := getClaimsFromContext(ctx)
	if err != nil {
		return telemetry.SummaryResponse{}, err
	}
	subject, err := c.subject(req.EmployeeID)
	if err != nil {
		return telemetry.SummaryResponse{}, err
	}

	start, end := s.window(req.StartDate, req.EndDate)

	var (
		agg  telemetry.Aggregate
		live telemetry.LiveStatusResponse
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		agg, err = s.repo.Summarize(gCtx, c.companyID, subject, start, end)
		if err != nil {
			return fmt.Errorf("failed to summarize telemetry: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		live, err = s.liveStatus(gCtx, c.companyID, subject)
		return err
	})
	if err := g.Wait(); err != nil {
		slog.Error("telemetry summary failed", "employee_id", subject, "error", err)
		return telemetry.SummaryResponse{}, err
	}

	return telemetry.SummaryResponse{
		EmployeeID:        subject,
		StartDate:         req.StartDate,
		EndDate:           req.EndDate,
		AggregateResponse: mapAggregate(agg),
		Live:              live,
	}, nil
}

func (s *TelemetryServiceImpl) DailySummaries(ctx context.Context, req telemetry.SummaryRequest) ([]telemetry.DailySummaryResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	c, err := getClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}
	subject, err := c.subject(req.EmployeeID)
	if err != nil {
		return nil, err
	}

	start, end := s.window(req.StartDate, req.EndDate)
	days, err := s.repo.SummarizeDaily(ctx, c.companyID, subject, start, end, s.loc.String())
	if err != nil {
		return nil, fmt.Errorf("failed to summarize telemetry by day: %w", err)
	}

	resp := make([]telemetry.DailySummaryResponse, 0, len(days))
	for _, d := range days {
		resp = append(resp, telemetry.DailySummaryResponse{
			Date:              d.Date.Format("2006-01-02"),
			AggregateResponse: mapAggregate(d.Aggregate),
		})
	}
	return resp, nil
}

func mapSample(s telemetry.Sample) telemetry.SampleResponse {
	var clientTime *string
	if s.ClientTime != nil {
		v := s.ClientTime.Format(time.RFC3339)
		clientTime = &v
	}
	return telemetry.SampleResponse{
		ID:             s.ID,
		EmployeeID:     s.EmployeeID,
		SessionID:      s.SessionID,
		RecordedAt:     s.RecordedAt.Format(time.RFC3339),
		ClientTime:     clientTime,
		CognitiveState: string(s.CognitiveState),
		FocusScore:     s.FocusScore,
		Tier:           ProductivityTier(s.FocusScore),
	}
}

func mapAggregate(a telemetry.Aggregate) telemetry.AggregateResponse {
	states := make(map[string]int64, len(a.States))
	for k, v := range a.States {
		states[string(k)] = v
	}
	resp := telemetry.AggregateResponse{
		Packets:       a.Packets,
		AverageFocus:  math.Round(a.AverageFocus*100) / 100,
		ActiveSeconds: a.ActiveSeconds,
		IdleSeconds:   a.IdleSeconds,
		AwaySeconds:   a.AwaySeconds,
		States:        states,
	}
	if a.Packets > 0 {
		resp.Tier = ProductivityTier(a.AverageFocus)
	}
	return resp
}
