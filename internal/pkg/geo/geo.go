package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"
)

// Geocoder resolves coordinates to a human readable place name.
type Geocoder interface {
	Reverse(ctx context.Context, lat, lng float64) (string, error)
}

// CalculateHaversineDistance returns the distance between two coordinates in meters.
func CalculateHaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadius = 6371000

	dLat := (lat2 - lat1) * (math.Pi / 180.0)
	dLon := (lon2 - lon1) * (math.Pi / 180.0)

	lat1Rad := lat1 * (math.Pi / 180.0)
	lat2Rad := lat2 * (math.Pi / 180.0)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadius * c
}

// Coordinates formats a point the way it is stored when no label is available.
func Coordinates(lat, lng float64) string {
	return fmt.Sprintf("%.6f,%.6f", lat, lng)
}

type cachedLabel struct {
	lat, lng float64
	label    string
}

// Labeler turns punch coordinates into a location label. Lookups never fail:
// any geocoder error or timeout falls back to raw coordinates.
type Labeler struct {
	geocoder Geocoder
	timeout  time.Duration

	// Points within cacheRadius of a previous lookup reuse its label.
	cacheRadius float64
	maxCached   int

	mu    sync.Mutex
	cache []cachedLabel
}

// NewLabeler returns a Labeler. A nil geocoder always yields coordinates.
func NewLabeler(geocoder Geocoder, timeout time.Duration) *Labeler {
	return &Labeler{
		geocoder:    geocoder,
		timeout:     timeout,
		cacheRadius: 100,
		maxCached:   256,
	}
}

func (l *Labeler) Label(ctx context.Context, lat, lng float64) string {
	if l == nil || l.geocoder == nil {
		return Coordinates(lat, lng)
	}

	if label, ok := l.lookupCache(lat, lng); ok {
		return label
	}

	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	label, err := l.geocoder.Reverse(ctx, lat, lng)
	if err != nil || label == "" {
		slog.Warn("reverse geocoding failed, storing coordinates", "lat", lat, "lng", lng, "error", err)
		return Coordinates(lat, lng)
	}

	l.store(lat, lng, label)
	return label
}

func (l *Labeler) lookupCache(lat, lng float64) (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, c := range l.cache {
		if CalculateHaversineDistance(lat, lng, c.lat, c.lng) <= l.cacheRadius {
			return c.label, true
		}
	}
	return "", false
}

func (l *Labeler) store(lat, lng float64, label string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.cache) >= l.maxCached {
		l.cache = l.cache[1:]
	}
	l.cache = append(l.cache, cachedLabel{lat: lat, lng: lng, label: label})
}

// ========== HTTP reverse geocoder ==========

// HTTPGeocoder calls a Nominatim compatible /reverse endpoint.
type HTTPGeocoder struct {
	baseURL   string
	userAgent string
	client    *http.Client
}

func NewHTTPGeocoder(baseURL, userAgent string, client *http.Client) *HTTPGeocoder {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPGeocoder{baseURL: baseURL, userAgent: userAgent, client: client}
}

var errEmptyAddress = errors.New("geocoder returned no address")

func (g *HTTPGeocoder) Reverse(ctx context.Context, lat, lng float64) (string, error) {
	q := url.Values{}
	q.Set("format", "jsonv2")
	q.Set("lat", strconv.FormatFloat(lat, 'f', 6, 64))
	q.Set("lon", strconv.FormatFloat(lng, 'f', 6, 64))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/reverse?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("build geocoder request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if g.userAgent != "" {
		req.Header.Set("User-Agent", g.userAgent)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("geocoder request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("geocoder returned status %d", resp.StatusCode)
	}

	var body struct {
		DisplayName string `json:"display_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode geocoder response: %w", err)
	}
	if body.DisplayName == "" {
		return "", errEmptyAddress
	}
	return body.DisplayName, nil
}
