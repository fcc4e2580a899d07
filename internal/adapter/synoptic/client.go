// Package synoptic implements the primary observation provider against the
// Synoptic Data API (the modern front end to the MesoWest/RAWS networks).
// Responses arrive in metric units and are normalized to the canonical
// imperial observation shape here, at the adapter edge.
package synoptic

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/tyson-swetnam/raws-mcp/internal/adapter/httpclient"
	"github.com/tyson-swetnam/raws-mcp/internal/domain"
	"github.com/tyson-swetnam/raws-mcp/internal/units"
)

const providerName = "synoptic"

// Client implements domain.Provider using the Synoptic Data API.
type Client struct {
	token   string
	baseURL string
	http    *httpclient.Client
}

// New creates a Synoptic client. baseURL is overridable for tests; empty
// selects the production endpoint.
func New(token, baseURL string, http *httpclient.Client) *Client {
	if baseURL == "" {
		baseURL = "https://api.synopticdata.com/v2"
	}
	return &Client{
		token:   token,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    http,
	}
}

// Name identifies this provider in failover logs and source tags.
func (c *Client) Name() string { return providerName }

// CurrentObservation fetches the latest reading for one station.
func (c *Client) CurrentObservation(ctx context.Context, stationID string) (domain.Observation, error) {
	params := url.Values{
		"token": {c.token},
		"stid":  {stationID},
	}

	var resp latestResponse
	if err := c.http.GetJSON(ctx, c.baseURL+"/stations/latest?"+params.Encode(), nil, &resp); err != nil {
		return domain.Observation{}, fmt.Errorf("synoptic latest %s: %w", stationID, err)
	}

	if err := resp.Summary.check(); err != nil {
		return domain.Observation{}, fmt.Errorf("synoptic latest %s: %w", stationID, err)
	}
	if len(resp.Station) == 0 {
		return domain.Observation{}, fmt.Errorf("synoptic latest %s: %w", stationID, domain.ErrStationNotFound)
	}

	return adaptLatest(resp.Station[0]), nil
}

// SearchStations finds stations within the query radius, sorted ascending by
// great-circle distance from the query point. Distance is computed locally so
// the ordering guarantee never depends on the provider.
func (c *Client) SearchStations(ctx context.Context, q domain.SearchQuery) ([]domain.StationMeta, error) {
	params := url.Values{
		"token":  {c.token},
		"radius": {fmt.Sprintf("%.4f,%.4f,%.1f", q.Latitude, q.Longitude, q.RadiusMiles)},
		"limit":  {fmt.Sprintf("%d", q.Limit)},
	}

	var resp metadataResponse
	if err := c.http.GetJSON(ctx, c.baseURL+"/stations/metadata?"+params.Encode(), nil, &resp); err != nil {
		return nil, fmt.Errorf("synoptic metadata search: %w", err)
	}

	if err := resp.Summary.check(); err != nil {
		return nil, fmt.Errorf("synoptic metadata search: %w", err)
	}

	stations := make([]domain.StationMeta, 0, len(resp.Station))
	for _, s := range resp.Station {
		meta := adaptMetadata(s)
		meta.DistanceMi = units.RoundTo(units.HaversineMiles(q.Latitude, q.Longitude, meta.Latitude, meta.Longitude), 1)
		stations = append(stations, meta)
	}

	sort.Slice(stations, func(i, j int) bool {
		return stations[i].DistanceMi < stations[j].DistanceMi
	})
	if q.Limit > 0 && len(stations) > q.Limit {
		stations = stations[:q.Limit]
	}
	return stations, nil
}

// History fetches a time series for one station and maps it to an ordered
// slice of partial observations.
func (c *Client) History(ctx context.Context, q domain.HistoryQuery) ([]domain.Observation, error) {
	params := url.Values{
		"token": {c.token},
		"stid":  {q.StationID},
		"start": {q.Start.UTC().Format("200601021504")},
		"end":   {q.End.UTC().Format("200601021504")},
	}
	if vars := synopticVars(q.Variables); vars != "" {
		params.Set("vars", vars)
	}

	var resp timeseriesResponse
	if err := c.http.GetJSON(ctx, c.baseURL+"/stations/timeseries?"+params.Encode(), nil, &resp); err != nil {
		return nil, fmt.Errorf("synoptic timeseries %s: %w", q.StationID, err)
	}

	if err := resp.Summary.check(); err != nil {
		return nil, fmt.Errorf("synoptic timeseries %s: %w", q.StationID, err)
	}
	if len(resp.Station) == 0 {
		return nil, fmt.Errorf("synoptic timeseries %s: %w", q.StationID, domain.ErrStationNotFound)
	}

	series := adaptTimeseries(resp.Station[0])
	if len(series) == 0 {
		return nil, fmt.Errorf("synoptic timeseries %s: %w", q.StationID, domain.ErrNoData)
	}
	return series, nil
}

// synopticVars maps canonical variable names onto Synoptic's sensor names.
// Unknown names are dropped rather than passed through, so a typo narrows
// the series instead of failing the provider call.
func synopticVars(variables []string) string {
	if len(variables) == 0 {
		return ""
	}

	mapping := map[string]string{
		"temperature":    "air_temp",
		"humidity":       "relative_humidity",
		"wind_speed":     "wind_speed",
		"wind_gust":      "wind_gust",
		"wind_direction": "wind_direction",
		"precip":         "precip_accum",
		"fuel_moisture":  "fuel_moisture",
		"solar":          "solar_radiation",
		"pressure":       "pressure",
	}

	out := make([]string, 0, len(variables))
	for _, v := range variables {
		if mapped, ok := mapping[strings.ToLower(strings.TrimSpace(v))]; ok {
			out = append(out, mapped)
		}
	}
	return strings.Join(out, ",")
}

// --- Synoptic API response types ---

type summary struct {
	ResponseCode    int    `json:"RESPONSE_CODE"`
	ResponseMessage string `json:"RESPONSE_MESSAGE"`
}

// check maps Synoptic's in-band response codes onto domain errors. Code 1 is
// success; code 2 means the query matched nothing.
func (s summary) check() error {
	switch s.ResponseCode {
	case 1:
		return nil
	case 2:
		return domain.ErrNoData
	default:
		return fmt.Errorf("%w: response code %d: %s", domain.ErrUnavailable, s.ResponseCode, s.ResponseMessage)
	}
}

type latestResponse struct {
	Summary summary         `json:"SUMMARY"`
	Station []latestStation `json:"STATION"`
}

type latestStation struct {
	STID      string                `json:"STID"`
	Name      string                `json:"NAME"`
	Latitude  string                `json:"LATITUDE"`
	Longitude string                `json:"LONGITUDE"`
	Elevation string                `json:"ELEVATION"` // feet
	State     string                `json:"STATE"`
	Timezone  string                `json:"TIMEZONE"`
	Obs       map[string]sensorRead `json:"OBSERVATIONS"`
}

type sensorRead struct {
	Value    *float64 `json:"value"`
	DateTime string   `json:"date_time"`
}

type metadataResponse struct {
	Summary summary           `json:"SUMMARY"`
	Station []metadataStation `json:"STATION"`
}

type metadataStation struct {
	STID      string `json:"STID"`
	Name      string `json:"NAME"`
	Latitude  string `json:"LATITUDE"`
	Longitude string `json:"LONGITUDE"`
	Elevation string `json:"ELEVATION"`
	State     string `json:"STATE"`
}

type timeseriesResponse struct {
	Summary summary             `json:"SUMMARY"`
	Station []timeseriesStation `json:"STATION"`
}

type timeseriesStation struct {
	STID      string        `json:"STID"`
	Name      string        `json:"NAME"`
	Latitude  string        `json:"LATITUDE"`
	Longitude string        `json:"LONGITUDE"`
	Elevation string        `json:"ELEVATION"`
	State     string        `json:"STATE"`
	Timezone  string        `json:"TIMEZONE"`
	Obs       seriesColumns `json:"OBSERVATIONS"`
}

type seriesColumns struct {
	DateTime      []string   `json:"date_time"`
	AirTemp       []*float64 `json:"air_temp_set_1"`
	Humidity      []*float64 `json:"relative_humidity_set_1"`
	WindSpeed     []*float64 `json:"wind_speed_set_1"`
	WindGust      []*float64 `json:"wind_gust_set_1"`
	WindDirection []*float64 `json:"wind_direction_set_1"`
	PrecipAccum   []*float64 `json:"precip_accum_set_1"`
	FuelMoisture  []*float64 `json:"fuel_moisture_set_1"`
	Solar         []*float64 `json:"solar_radiation_set_1"`
	Pressure      []*float64 `json:"pressure_set_1"`
}

func parseObservedAt(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}
