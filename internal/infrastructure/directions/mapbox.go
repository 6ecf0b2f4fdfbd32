// Package directions implements ports.DirectionsProvider against the
// Mapbox Directions v5 HTTP API.
package directions

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/feedr/routing-api/internal/api/metrics"
	"github.com/feedr/routing-api/internal/core/domain"
	"github.com/feedr/routing-api/internal/core/ports"
)

const defaultBaseURL = "https://api.mapbox.com/directions/v5/mapbox"

// Config captures the settings for the Mapbox client. All values are
// injected explicitly; the client never reads process environment.
type Config struct {
	AccessToken string
	BaseURL     string        // defaults to the public Mapbox endpoint
	Profile     string        // default routing profile, defaults to driving-traffic
	Timeout     time.Duration // per-request timeout, defaults to 10s
}

// MapboxClient issues directions requests and normalizes responses.
// It performs no retries: a transient failure surfaces immediately as
// *domain.ProviderError and retry policy stays with the caller.
type MapboxClient struct {
	httpClient *http.Client
	token      string
	baseURL    string
	profile    string

	// now is the clock ETAs are derived from; overridable in tests.
	now func() time.Time
}

func NewMapboxClient(cfg Config) *MapboxClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	profile := cfg.Profile
	if profile == "" {
		profile = ports.ProfileDrivingTraffic
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &MapboxClient{
		httpClient: &http.Client{Timeout: timeout},
		token:      cfg.AccessToken,
		baseURL:    strings.TrimRight(baseURL, "/"),
		profile:    profile,
		now:        time.Now,
	}
}

// --- Response types ---
// Decoded explicitly so a malformed provider payload fails here, as a
// ProviderError, instead of surfacing downstream.

type mapboxResponse struct {
	Routes  []mapboxRoute `json:"routes"`
	Code    string        `json:"code"`
	Message string        `json:"message"`
}

type mapboxRoute struct {
	Distance        float64         `json:"distance"`
	Duration        float64         `json:"duration"`
	DurationTypical float64         `json:"duration_typical"`
	Geometry        json.RawMessage `json:"geometry"`
	Legs            []mapboxLeg     `json:"legs"`
}

type mapboxLeg struct {
	Steps []mapboxStep `json:"steps"`
}

type mapboxStep struct {
	Distance float64        `json:"distance"`
	Duration float64        `json:"duration"`
	Maneuver mapboxManeuver `json:"maneuver"`
}

type mapboxManeuver struct {
	Instruction string `json:"instruction"`
	Type        string `json:"type"`
}

// Route issues one directions request through the ordered waypoint list.
func (c *MapboxClient) Route(ctx context.Context, waypoints []domain.Coordinate, opts ports.RouteOptions) (*domain.OptimizedRoute, error) {
	if len(waypoints) < 2 {
		return nil, fmt.Errorf("route: need at least 2 waypoints, got %d: %w", len(waypoints), domain.ErrInvalidCoordinate)
	}
	if len(waypoints) > domain.MaxWaypoints {
		return nil, domain.ErrTooManyWaypoints
	}
	for _, w := range waypoints {
		if !w.Valid() {
			return nil, domain.ErrInvalidCoordinate
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.requestURL(waypoints, opts), nil)
	if err != nil {
		return nil, fmt.Errorf("route: create request: %w", err)
	}

	issuedAt := c.now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(issuedAt, "error")
		metrics.ProviderErrorsTotal.WithLabelValues("request_failed").Inc()
		return nil, &domain.ProviderError{Reason: "request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.observe(issuedAt, "error")
		metrics.ProviderErrorsTotal.WithLabelValues("http_error").Inc()
		return nil, &domain.ProviderError{Reason: resp.Status}
	}

	var body mapboxResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		c.observe(issuedAt, "error")
		metrics.ProviderErrorsTotal.WithLabelValues("malformed_response").Inc()
		return nil, &domain.ProviderError{Reason: "malformed response", Err: err}
	}
	if len(body.Routes) == 0 {
		c.observe(issuedAt, "error")
		metrics.ProviderErrorsTotal.WithLabelValues("no_route").Inc()
		reason := "no routes found"
		if body.Message != "" {
			reason = body.Message
		}
		return nil, &domain.ProviderError{Reason: reason}
	}

	c.observe(issuedAt, "ok")
	return c.normalize(body.Routes[0], waypoints, issuedAt), nil
}

// observe records the round-trip duration against the real clock; the
// injected clock only anchors ETA derivation.
func (c *MapboxClient) observe(issuedAt time.Time, outcome string) {
	metrics.ProviderRequestDuration.WithLabelValues(outcome).Observe(time.Since(issuedAt).Seconds())
}

// requestURL builds GET {base}/{profile}/{lng,lat;lng,lat;…}?….
// Mapbox encodes coordinates longitude-first; Coordinate stores
// latitude-first, so the order is swapped here and only here.
func (c *MapboxClient) requestURL(waypoints []domain.Coordinate, opts ports.RouteOptions) string {
	coords := make([]string, len(waypoints))
	for i, w := range waypoints {
		coords[i] = formatFloat(w.Longitude) + "," + formatFloat(w.Latitude)
	}

	profile := opts.Profile
	if profile == "" {
		profile = c.profile
	}

	params := url.Values{}
	params.Set("access_token", c.token)
	params.Set("alternatives", strconv.FormatBool(opts.Alternatives))
	params.Set("steps", strconv.FormatBool(opts.Steps))
	params.Set("geometries", "geojson")
	params.Set("overview", "full")
	params.Set("annotations", "duration,distance")

	return c.baseURL + "/" + profile + "/" + strings.Join(coords, ";") + "?" + params.Encode()
}

// normalize maps the first route candidate into the domain type. Steps are
// concatenated across legs in waypoint order, and the ETA is derived as
// request-issue time plus the total route duration.
func (c *MapboxClient) normalize(route mapboxRoute, waypoints []domain.Coordinate, issuedAt time.Time) *domain.OptimizedRoute {
	var steps []domain.RouteStep
	for _, leg := range route.Legs {
		for _, s := range leg.Steps {
			steps = append(steps, domain.RouteStep{
				Instruction: s.Maneuver.Instruction,
				Distance:    s.Distance,
				Duration:    s.Duration,
				Maneuver:    s.Maneuver.Type,
			})
		}
	}

	// Non-traffic profiles omit duration_typical; fall back to the
	// nominal duration.
	durationInTraffic := route.DurationTypical
	if durationInTraffic == 0 {
		durationInTraffic = route.Duration
	}

	wp := make([]domain.Coordinate, len(waypoints))
	copy(wp, waypoints)

	return &domain.OptimizedRoute{
		Distance:          route.Distance,
		Duration:          route.Duration,
		DurationInTraffic: durationInTraffic,
		Geometry:          route.Geometry,
		Steps:             steps,
		Waypoints:         wp,
		ETA:               issuedAt.Add(time.Duration(route.Duration * float64(time.Second))),
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
