// Package tools implements the callable operation surface: thin input
// validation and orchestration glue over the coordinator and transformer,
// with a uniform error contract.
package tools

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/tyson-swetnam/raws-mcp/internal/domain"
	"github.com/tyson-swetnam/raws-mcp/internal/fireweather"
	"github.com/tyson-swetnam/raws-mcp/internal/transform"
)

// trendWindow is how far back the current-conditions tool reaches when asked
// to include trend analysis.
const trendWindow = 6 * time.Hour

// DataSource is the coordinator surface the tools depend on.
type DataSource interface {
	CurrentObservation(ctx context.Context, stationID string) (domain.Observation, error)
	SearchStations(ctx context.Context, q domain.SearchQuery) ([]domain.StationMeta, error)
	History(ctx context.Context, q domain.HistoryQuery) ([]domain.Observation, error)
	ActiveAlerts(ctx context.Context, lat, lon float64) []domain.Alert
}

// Flags enables or disables optional tool features at startup.
type Flags struct {
	AlertsEnabled      bool
	FireIndicesEnabled bool
}

// Service wires the tool operations together. All methods return either a
// payload or a *ToolError; no other error type crosses this boundary.
type Service struct {
	source      DataSource
	transformer *transform.Transformer
	flags       Flags
	clock       clockwork.Clock
	logger      *slog.Logger
}

// NewService creates the tool service.
func NewService(source DataSource, transformer *transform.Transformer, flags Flags, clk clockwork.Clock, logger *slog.Logger) *Service {
	return &Service{
		source:      source,
		transformer: transformer,
		flags:       flags,
		clock:       clk,
		logger:      logger,
	}
}

// CurrentConditionsRequest is the input to the current-conditions tool.
type CurrentConditionsRequest struct {
	StationID          string `json:"station_id"`
	IncludeFireIndices bool   `json:"include_fire_indices,omitempty"`
	IncludeTrends      bool   `json:"include_trends,omitempty"`
}

// CurrentConditionsResponse pairs the risk document with optionally computed
// fire indices.
type CurrentConditionsResponse struct {
	Document    domain.WeatherRiskDocument `json:"document"`
	FireIndices *domain.FireIndexResult    `json:"fire_indices,omitempty"`
}

// CurrentConditions fetches, enriches, and transforms the latest observation
// for a station. Alerts and trend history are best-effort: their absence
// never fails the request.
func (s *Service) CurrentConditions(ctx context.Context, req CurrentConditionsRequest) (*CurrentConditionsResponse, *ToolError) {
	if req.IncludeFireIndices && !s.flags.FireIndicesEnabled {
		return nil, featureDisabled("fire indices")
	}

	stationID, terr := normalizeStationID(req.StationID)
	if terr != nil {
		return nil, terr
	}

	obs, err := s.source.CurrentObservation(ctx, stationID)
	if err != nil {
		return nil, fromUpstream(err, map[string]any{"station_id": stationID})
	}

	var alerts []domain.Alert
	if s.flags.AlertsEnabled && obs.Latitude != 0 && obs.Longitude != 0 {
		alerts = s.source.ActiveAlerts(ctx, obs.Latitude, obs.Longitude)
	}

	var history []domain.Observation
	if req.IncludeTrends {
		now := s.clock.Now().UTC()
		series, err := s.source.History(ctx, domain.HistoryQuery{
			StationID: stationID,
			Start:     now.Add(-trendWindow),
			End:       now,
		})
		if err != nil {
			// Trend analysis is supplementary; degrade to no history.
			s.logger.Warn("trend history fetch failed", "station", stationID, "error", err)
		} else {
			history = series
		}
	}

	doc, err := s.transformer.RiskDocument(obs, alerts, history)
	if err != nil {
		return nil, fromUpstream(err, map[string]any{"station_id": stationID})
	}

	resp := &CurrentConditionsResponse{Document: doc}
	if req.IncludeFireIndices {
		result := computeIndices(obs.TempF, obs.HumidityPct, obs.WindMph, obs.FuelMoisturePct)
		resp.FireIndices = &result
	}
	return resp, nil
}

// SearchStationsRequest is the input to the station-search tool.
type SearchStationsRequest struct {
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	RadiusMiles float64 `json:"radius_miles,omitempty"`
	Limit       int     `json:"limit,omitempty"`
}

// SearchStations lists stations near a point, sorted ascending by distance.
func (s *Service) SearchStations(ctx context.Context, req SearchStationsRequest) ([]domain.StationMeta, *ToolError) {
	if terr := validateCoordinates(req.Latitude, req.Longitude); terr != nil {
		return nil, terr
	}
	radius, terr := normalizeRadius(req.RadiusMiles)
	if terr != nil {
		return nil, terr
	}

	stations, err := s.source.SearchStations(ctx, domain.SearchQuery{
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		RadiusMiles: radius,
		Limit:       normalizeLimit(req.Limit),
	})
	if err != nil {
		return nil, fromUpstream(err, map[string]any{
			"latitude": req.Latitude, "longitude": req.Longitude, "radius_miles": radius,
		})
	}
	return stations, nil
}

// HistoryRequest is the input to the historical-series tool. Times are
// RFC 3339 strings.
type HistoryRequest struct {
	StationID string   `json:"station_id"`
	StartTime string   `json:"start_time"`
	EndTime   string   `json:"end_time"`
	Variables []string `json:"variables,omitempty"`
}

// History returns an ordered time series of partial observations.
func (s *Service) History(ctx context.Context, req HistoryRequest) ([]domain.Observation, *ToolError) {
	stationID, terr := normalizeStationID(req.StationID)
	if terr != nil {
		return nil, terr
	}
	start, end, terr := parseDateRange(req.StartTime, req.EndTime, s.clock.Now().UTC())
	if terr != nil {
		return nil, terr
	}

	series, err := s.source.History(ctx, domain.HistoryQuery{
		StationID: stationID,
		Start:     start,
		End:       end,
		Variables: req.Variables,
	})
	if err != nil {
		return nil, fromUpstream(err, map[string]any{"station_id": stationID})
	}
	if len(series) == 0 {
		return nil, &ToolError{
			Code:    CodeNoData,
			Message: "no observations recorded in the requested window",
			Status:  http.StatusNotFound,
			Details: map[string]any{"station_id": stationID},
		}
	}
	return series, nil
}

// FireIndicesRequest is the input to the fire-index calculator tool.
// Elevation defaults to 5000 ft, typical for RAWS sites, when omitted.
type FireIndicesRequest struct {
	TemperatureF    float64  `json:"temperature_f"`
	HumidityPct     float64  `json:"humidity_pct"`
	WindMph         float64  `json:"wind_mph"`
	FuelMoisturePct *float64 `json:"fuel_moisture_pct,omitempty"`
	ElevationFt     *float64 `json:"elevation_ft,omitempty"`
}

// FireIndicesResponse echoes the effective inputs next to the computed
// result, so callers can see which defaults and estimates applied.
type FireIndicesResponse struct {
	Result domain.FireIndexResult `json:"result"`
	Inputs struct {
		TemperatureF    float64  `json:"temperature_f"`
		HumidityPct     float64  `json:"humidity_pct"`
		WindMph         float64  `json:"wind_mph"`
		FuelMoisturePct *float64 `json:"fuel_moisture_pct,omitempty"`
		ElevationFt     float64  `json:"elevation_ft"`
	} `json:"inputs"`
}

// FireIndices computes the fire-weather indices for explicitly supplied
// conditions.
func (s *Service) FireIndices(_ context.Context, req FireIndicesRequest) (*FireIndicesResponse, *ToolError) {
	if !s.flags.FireIndicesEnabled {
		return nil, featureDisabled("fire indices")
	}
	if terr := validateFireInputs(req.TemperatureF, req.HumidityPct, req.WindMph, req.FuelMoisturePct, req.ElevationFt); terr != nil {
		return nil, terr
	}

	resp := &FireIndicesResponse{
		Result: computeIndices(&req.TemperatureF, &req.HumidityPct, &req.WindMph, req.FuelMoisturePct),
	}
	resp.Inputs.TemperatureF = req.TemperatureF
	resp.Inputs.HumidityPct = req.HumidityPct
	resp.Inputs.WindMph = req.WindMph
	resp.Inputs.FuelMoisturePct = req.FuelMoisturePct
	resp.Inputs.ElevationFt = defaultElevationFt
	if req.ElevationFt != nil {
		resp.Inputs.ElevationFt = *req.ElevationFt
	}
	return resp, nil
}

// computeIndices runs every calculator over one set of conditions, falling
// back to the equilibrium-moisture estimate when no fuel-moisture sensor
// value is available.
func computeIndices(tempF, humidityPct, windMph, fuelMoisturePct *float64) domain.FireIndexResult {
	fuel := fuelMoisturePct
	estimated := false
	if fuel == nil {
		fuel = fireweather.EquilibriumMoistureContent(tempF, humidityPct)
		estimated = fuel != nil
	}

	result := domain.FireIndexResult{
		Fosberg:               fireweather.Fosberg(tempF, humidityPct, windMph),
		Haines:                fireweather.HainesApprox(tempF, humidityPct),
		Chandler:              fireweather.Chandler(tempF, humidityPct, fuel),
		FuelMoistureEstimated: estimated,
	}

	if humidityPct != nil && windMph != nil {
		result.RedFlag = fireweather.IsRedFlag(*humidityPct, *windMph, true)
		result.DangerClass = string(fireweather.Classify(*humidityPct, *windMph, fuel, result.Chandler))
	}
	if tempF != nil && humidityPct != nil && windMph != nil {
		result.IgnitionProbabilityPct = fireweather.IgnitionProbability(*tempF, *humidityPct, *windMph)
	}

	result.Interpretation = domain.FireIndexInterpretation{
		Fosberg:  fireweather.FosbergInterpretation(result.Fosberg),
		Haines:   fireweather.HainesInterpretation(result.Haines),
		Chandler: fireweather.ChandlerInterpretation(result.Chandler),
		Danger:   fireweather.DangerInterpretation(fireweather.DangerClass(result.DangerClass), result.RedFlag),
	}
	return result
}
