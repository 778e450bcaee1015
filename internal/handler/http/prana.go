package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/telemetry"
	"github.com/cmlabs-hris/workforce-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/sse"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
)

// Subscriber hands out live event channels per topic.
type Subscriber interface {
	Subscribe(topic string) (chan sse.Event, func())
}

type PranaHandler interface {
	Ingest(w http.ResponseWriter, r *http.Request)
	LiveStatus(w http.ResponseWriter, r *http.Request)
	TeamLive(w http.ResponseWriter, r *http.Request)
	Summary(w http.ResponseWriter, r *http.Request)
	DailySummaries(w http.ResponseWriter, r *http.Request)
	GetStreamToken(w http.ResponseWriter, r *http.Request)
	Stream(w http.ResponseWriter, r *http.Request)
}

type pranaHandlerImpl struct {
	telemetryService telemetry.TelemetryService
	jwtService       jwt.Service
	subscriber       Subscriber
	keepalive        time.Duration
}

func NewPranaHandler(telemetryService telemetry.TelemetryService, jwtService jwt.Service, subscriber Subscriber) PranaHandler {
	return &pranaHandlerImpl{
		telemetryService: telemetryService,
		jwtService:       jwtService,
		subscriber:       subscriber,
		keepalive:        30 * time.Second,
	}
}

// Ingest stores one activity packet from the browser agent.
func (h *pranaHandlerImpl) Ingest(w http.ResponseWriter, r *http.Request) {
	var req telemetry.IngestRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.telemetryService.Ingest(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Packet accepted", result)
}

// LiveStatus implements PranaHandler.
func (h *pranaHandlerImpl) LiveStatus(w http.ResponseWriter, r *http.Request) {
	result, err := h.telemetryService.LiveStatus(r.Context(), chi.URLParam(r, "employeeId"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// TeamLive implements PranaHandler.
func (h *pranaHandlerImpl) TeamLive(w http.ResponseWriter, r *http.Request) {
	result, err := h.telemetryService.TeamLive(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func summaryRequestFromQuery(r *http.Request) telemetry.SummaryRequest {
	query := r.URL.Query()
	return telemetry.SummaryRequest{
		EmployeeID: query.Get("employee_id"),
		StartDate:  query.Get("start_date"),
		EndDate:    query.Get("end_date"),
	}
}

// Summary implements PranaHandler.
func (h *pranaHandlerImpl) Summary(w http.ResponseWriter, r *http.Request) {
	result, err := h.telemetryService.Summary(r.Context(), summaryRequestFromQuery(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// DailySummaries implements PranaHandler.
func (h *pranaHandlerImpl) DailySummaries(w http.ResponseWriter, r *http.Request) {
	result, err := h.telemetryService.DailySummaries(r.Context(), summaryRequestFromQuery(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

type streamTokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}

// GetStreamToken generates a short-lived token for the live stream
func (h *pranaHandlerImpl) GetStreamToken(w http.ResponseWriter, r *http.Request) {
	_, claimsMap, err := jwtauth.FromContext(r.Context())
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	claims, err := jwt.ClaimsFromMap(claimsMap)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	token, expiresIn, err := h.jwtService.GenerateSSEToken(claims)
	if err != nil {
		response.InternalServerError(w, "Failed to generate stream token")
		return
	}

	response.Success(w, streamTokenResponse{
		Token:     token,
		ExpiresIn: expiresIn,
	})
}

// visible reports whether a live event may be shown to the stream owner.
// Managers see the whole company, employees only their own packets.
func visible(claims jwt.Claims, event sse.Event) bool {
	if claims.Role.IsManager() {
		return true
	}
	sample, ok := event.Data.(telemetry.SampleResponse)
	if !ok || claims.EmployeeID == nil {
		return false
	}
	return sample.EmployeeID == *claims.EmployeeID
}

// Stream handles the SSE connection for live activity updates
func (h *pranaHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	// EventSource cannot send an Authorization header.
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		http.Error(w, "Missing token", http.StatusUnauthorized)
		return
	}

	claims, err := h.jwtService.ValidateSSEToken(tokenStr)
	if err != nil {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	events, cleanup := h.subscriber.Subscribe(claims.CompanyID)
	defer cleanup()

	fmt.Fprintf(w, "event: connected\ndata: {\"status\":\"connected\",\"company_id\":\"%s\"}\n\n", claims.CompanyID)
	flusher.Flush()

	keepalive := time.NewTicker(h.keepalive)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			if !visible(claims, event) {
				continue
			}
			data, err := json.Marshal(event.Data)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Event, data)
			flusher.Flush()

		case <-keepalive.C:
			fmt.Fprintf(w, "event: ping\ndata: {\"timestamp\":%d}\n\n", time.Now().Unix())
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
