package domain

import (
	"context"
	"fmt"
	"time"
)

// WeatherSnapshot is the set of readings retrieved for one site at one evaluation.
type WeatherSnapshot struct {
	Lat             float64   `json:"lat"`
	Lon             float64   `json:"lon"`
	CurrentTempC    float64   `json:"current_temp_c"`
	Date            string    `json:"date"` // site-local YYYY-MM-DD of the daily readings
	MaxTempC        float64   `json:"max_temp_c"`
	MinTempC        float64   `json:"min_temp_c"`
	PrecipitationMM float64   `json:"precipitation_mm"`
	Timezone        string    `json:"timezone,omitempty"` // IANA name resolved by the provider
	FetchedAt       time.Time `json:"fetched_at"`
}

// WeatherFetcher retrieves a snapshot for a coordinate pair.
// Implementations return a *FetchError on failure.
type WeatherFetcher interface {
	Fetch(ctx context.Context, lat, lon float64) (WeatherSnapshot, error)
}

// FetchErrorKind classifies why a fetch failed.
type FetchErrorKind string

const (
	FetchInvalidCoordinates FetchErrorKind = "invalid_coordinates"
	FetchNetwork            FetchErrorKind = "network"
	FetchTimeout            FetchErrorKind = "timeout"
	FetchStatus             FetchErrorKind = "status"
	FetchPayload            FetchErrorKind = "payload"
)

// FetchError is the single failure mode of a weather fetch.
type FetchError struct {
	Kind FetchErrorKind
	Lat  float64
	Lon  float64
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch weather (%.4f,%.4f): %s: %v", e.Lat, e.Lon, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ValidCoordinates reports whether lat/lon fall within WGS-84 bounds.
func ValidCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
