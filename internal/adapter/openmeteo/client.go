package openmeteo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/wetland-risk-monitor/internal/domain"
	"github.com/couchcryptid/wetland-risk-monitor/internal/observability"
	"github.com/jonboulle/clockwork"
)

// DefaultBaseURL is the public Open-Meteo API host.
const DefaultBaseURL = "https://api.open-meteo.com"

const dailyFields = "precipitation_sum,temperature_2m_max,temperature_2m_min"

// Client implements domain.WeatherFetcher using the Open-Meteo forecast API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	clock      clockwork.Clock
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an Open-Meteo client. The timeout bounds the whole
// request including reading the body.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		clock:   clockwork.NewRealClock(),
		metrics: metrics,
		logger:  logger,
	}
}

// Fetch retrieves current weather and today's daily readings for a coordinate
// pair. Every failure is returned as a *domain.FetchError.
func (c *Client) Fetch(ctx context.Context, lat, lon float64) (domain.WeatherSnapshot, error) {
	if !domain.ValidCoordinates(lat, lon) {
		return domain.WeatherSnapshot{}, &domain.FetchError{
			Kind: domain.FetchInvalidCoordinates,
			Lat:  lat,
			Lon:  lon,
			Err:  errors.New("latitude must be in [-90,90] and longitude in [-180,180]"),
		}
	}

	params := url.Values{
		"latitude":        {strconv.FormatFloat(lat, 'f', 4, 64)},
		"longitude":       {strconv.FormatFloat(lon, 'f', 4, 64)},
		"current_weather": {"true"},
		"daily":           {dailyFields},
		"timezone":        {"auto"},
	}
	fullURL := c.baseURL + "/v1/forecast?" + params.Encode()

	start := time.Now()
	snap, err := c.doRequest(ctx, fullURL, lat, lon)
	c.metrics.ForecastAPIDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		c.metrics.ForecastRequests.WithLabelValues("error").Inc()
		c.logger.Warn("forecast request failed", "lat", lat, "lon", lon, "error", err)
		return domain.WeatherSnapshot{}, err
	}
	c.metrics.ForecastRequests.WithLabelValues("success").Inc()
	return snap, nil
}

func (c *Client) doRequest(ctx context.Context, fullURL string, lat, lon float64) (domain.WeatherSnapshot, error) {
	fail := func(kind domain.FetchErrorKind, err error) (domain.WeatherSnapshot, error) {
		return domain.WeatherSnapshot{}, &domain.FetchError{Kind: kind, Lat: lat, Lon: lon, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fail(domain.FetchNetwork, fmt.Errorf("create request: %w", err))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fail(transportKind(err), fmt.Errorf("forecast request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fail(domain.FetchStatus, fmt.Errorf("open-meteo API error: status %d: %s", resp.StatusCode, errorReason(body)))
	}

	var fr forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&fr); err != nil {
		return fail(transportKindOr(err, domain.FetchPayload), fmt.Errorf("decode response: %w", err))
	}

	snap, err := fr.snapshot(lat, lon)
	if err != nil {
		return fail(domain.FetchPayload, err)
	}
	snap.FetchedAt = c.clock.Now().UTC()
	return snap, nil
}

// transportKind separates timeouts from other transport failures.
func transportKind(err error) domain.FetchErrorKind {
	return transportKindOr(err, domain.FetchNetwork)
}

func transportKindOr(err error, fallback domain.FetchErrorKind) domain.FetchErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.FetchTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return domain.FetchTimeout
	}
	return fallback
}

// errorReason extracts Open-Meteo's {"error":true,"reason":"..."} message,
// falling back to the raw body.
func errorReason(body []byte) string {
	var e struct {
		Reason string `json:"reason"`
	}
	if json.Unmarshal(body, &e) == nil && e.Reason != "" {
		return e.Reason
	}
	return string(body)
}

// Open-Meteo API response types.

type forecastResponse struct {
	Timezone       string          `json:"timezone"`
	CurrentWeather *currentWeather `json:"current_weather"`
	Daily          *daily          `json:"daily"`
}

type currentWeather struct {
	Temperature *float64 `json:"temperature"`
}

// daily holds parallel arrays indexed by day; index 0 is today. Values are
// pointers so a null reading is distinguishable from zero.
type daily struct {
	Time             []string   `json:"time"`
	PrecipitationSum []*float64 `json:"precipitation_sum"`
	Temperature2mMax []*float64 `json:"temperature_2m_max"`
	Temperature2mMin []*float64 `json:"temperature_2m_min"`
}

func (fr forecastResponse) snapshot(lat, lon float64) (domain.WeatherSnapshot, error) {
	if fr.CurrentWeather == nil {
		return domain.WeatherSnapshot{}, errors.New("response has no current_weather")
	}
	if fr.CurrentWeather.Temperature == nil {
		return domain.WeatherSnapshot{}, errors.New("current_weather has no temperature")
	}
	d := fr.Daily
	if d == nil || len(d.Time) == 0 || len(d.PrecipitationSum) == 0 ||
		len(d.Temperature2mMax) == 0 || len(d.Temperature2mMin) == 0 {
		return domain.WeatherSnapshot{}, errors.New("response has no daily readings for today")
	}

	precip, err := today("precipitation_sum", d.PrecipitationSum)
	if err != nil {
		return domain.WeatherSnapshot{}, err
	}
	maxTemp, err := today("temperature_2m_max", d.Temperature2mMax)
	if err != nil {
		return domain.WeatherSnapshot{}, err
	}
	minTemp, err := today("temperature_2m_min", d.Temperature2mMin)
	if err != nil {
		return domain.WeatherSnapshot{}, err
	}

	return domain.WeatherSnapshot{
		Lat:             lat,
		Lon:             lon,
		CurrentTempC:    *fr.CurrentWeather.Temperature,
		Date:            d.Time[0],
		MaxTempC:        maxTemp,
		MinTempC:        minTemp,
		PrecipitationMM: precip,
		Timezone:        fr.Timezone,
	}, nil
}

// today returns element 0 of a daily series, rejecting a null reading.
func today(field string, series []*float64) (float64, error) {
	if series[0] == nil {
		return 0, fmt.Errorf("daily %s is null for today", field)
	}
	return *series[0], nil
}
