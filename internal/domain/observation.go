// Package domain holds the canonical, provider-agnostic weather data model:
// observations, station metadata, alerts, the externally visible weather-risk
// document, fire-index results, the upstream provider contracts, and the
// error kinds the rest of the service keys on.
//
// # Nullable fields
//
// RAWS-style stations report a varying sensor set, and the two upstream
// networks expose different subsets of it. Any reading an upstream may omit
// is a pointer: nil means "not reported", which downstream code must treat
// as unknown rather than zero. Only temperature, humidity, and sustained
// wind speed are ever required, and that requirement is enforced by the
// transformer, not here, so partial observations can still flow through
// history series.
package domain

import "time"

// Observation is the canonical view of one station reading, already
// normalized to imperial units by the source adapter that produced it.
type Observation struct {
	StationID   string   `json:"station_id"`
	StationName string   `json:"station_name,omitempty"`
	Latitude    float64  `json:"latitude"`
	Longitude   float64  `json:"longitude"`
	ElevationFt *float64 `json:"elevation_ft,omitempty"`
	State       string   `json:"state,omitempty"`
	Timezone    string   `json:"timezone,omitempty"`

	ObservedAt time.Time `json:"observed_at"`

	TempF           *float64 `json:"temp_f,omitempty"`
	HumidityPct     *float64 `json:"humidity_pct,omitempty"`
	WindMph         *float64 `json:"wind_mph,omitempty"`
	GustMph         *float64 `json:"gust_mph,omitempty"`
	WindDirDeg      *float64 `json:"wind_dir_deg,omitempty"`
	PrecipIn        *float64 `json:"precip_in,omitempty"`
	FuelMoisturePct *float64 `json:"fuel_moisture_pct,omitempty"`
	SolarWm2        *float64 `json:"solar_wm2,omitempty"`
	PressureMb      *float64 `json:"pressure_mb,omitempty"`

	// Source names the provider that actually served this observation.
	// Set by the coordinator after failover resolves.
	Source string `json:"source,omitempty"`
}

// StationMeta describes one station returned by a radius search.
type StationMeta struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Latitude    float64  `json:"latitude"`
	Longitude   float64  `json:"longitude"`
	ElevationFt *float64 `json:"elevation_ft,omitempty"`
	State       string   `json:"state,omitempty"`
	DistanceMi  float64  `json:"distance_mi"`
}

// Alert is one active hazard product from the alerts provider.
type Alert struct {
	ID          string    `json:"id"`
	Event       string    `json:"event"`
	Headline    string    `json:"headline,omitempty"`
	Description string    `json:"description,omitempty"`
	Severity    string    `json:"severity,omitempty"`
	OnsetAt     time.Time `json:"onset_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}
