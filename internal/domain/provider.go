package domain

import (
	"context"
	"time"
)

// SearchQuery parameterizes a station radius search.
type SearchQuery struct {
	Latitude    float64
	Longitude   float64
	RadiusMiles float64
	Limit       int
}

// HistoryQuery parameterizes a historical time-series fetch. Variables, when
// non-empty, restricts the series to the named canonical fields.
type HistoryQuery struct {
	StationID string
	Start     time.Time
	End       time.Time
	Variables []string
}

// Provider abstracts one upstream observation network. The coordinator holds
// providers in priority order and fails over strictly sequentially, so
// implementations never need to coordinate with each other.
type Provider interface {
	Name() string
	CurrentObservation(ctx context.Context, stationID string) (Observation, error)
	SearchStations(ctx context.Context, q SearchQuery) ([]StationMeta, error)
	History(ctx context.Context, q HistoryQuery) ([]Observation, error)
}

// AlertsProvider serves active hazard alerts for a point. It is best-effort:
// the coordinator swallows its failures, so implementations should classify
// errors but never need to guarantee availability.
type AlertsProvider interface {
	Name() string
	ActiveAlerts(ctx context.Context, lat, lon float64) ([]Alert, error)
}
