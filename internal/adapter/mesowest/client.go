// Package mesowest implements the backup observation provider against the
// legacy MesoWest API. It requests english units directly, so unlike the
// Synoptic adapter no metric conversion happens here; the two networks also
// cover overlapping but not identical station sets, which is why a
// not-found from one still warrants trying the other.
package mesowest

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

const providerName = "mesowest"

// Client implements domain.Provider using the legacy MesoWest API.
type Client struct {
	token   string
	baseURL string
	http    *httpclient.Client
}

// New creates a MesoWest client. baseURL is overridable for tests; empty
// selects the production endpoint.
func New(token, baseURL string, http *httpclient.Client) *Client {
	if baseURL == "" {
		baseURL = "https://api.mesowest.net/v2"
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
		"units": {"english"},
	}

	var resp stationsResponse
	if err := c.http.GetJSON(ctx, c.baseURL+"/stations/latest?"+params.Encode(), nil, &resp); err != nil {
		return domain.Observation{}, fmt.Errorf("mesowest latest %s: %w", stationID, err)
	}
	if err := resp.check(); err != nil {
		return domain.Observation{}, fmt.Errorf("mesowest latest %s: %w", stationID, err)
	}

	return adaptStation(resp.Stations[0]), nil
}

// SearchStations finds stations within the query radius. Distance is
// computed locally and the result sorted ascending.
func (c *Client) SearchStations(ctx context.Context, q domain.SearchQuery) ([]domain.StationMeta, error) {
	params := url.Values{
		"token":  {c.token},
		"radius": {fmt.Sprintf("%.4f,%.4f,%.1f", q.Latitude, q.Longitude, q.RadiusMiles)},
		"limit":  {fmt.Sprintf("%d", q.Limit)},
	}

	var resp stationsResponse
	if err := c.http.GetJSON(ctx, c.baseURL+"/stations/metadata?"+params.Encode(), nil, &resp); err != nil {
		return nil, fmt.Errorf("mesowest metadata search: %w", err)
	}
	if resp.Summary.ResponseCode != codeOK {
		return nil, fmt.Errorf("mesowest metadata search: %w", classifyCode(resp.Summary))
	}

	stations := make([]domain.StationMeta, 0, len(resp.Stations))
	for _, s := range resp.Stations {
		meta := domain.StationMeta{
			ID:          s.ID,
			Name:        s.Name,
			Latitude:    s.Latitude,
			Longitude:   s.Longitude,
			ElevationFt: s.ElevationFt,
			State:       s.State,
		}
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

// History fetches a time series of readings for one station.
func (c *Client) History(ctx context.Context, q domain.HistoryQuery) ([]domain.Observation, error) {
	params := url.Values{
		"token": {c.token},
		"stid":  {q.StationID},
		"start": {q.Start.UTC().Format("200601021504")},
		"end":   {q.End.UTC().Format("200601021504")},
		"units": {"english"},
	}

	var resp historyResponse
	if err := c.http.GetJSON(ctx, c.baseURL+"/stations/timeseries?"+params.Encode(), nil, &resp); err != nil {
		return nil, fmt.Errorf("mesowest timeseries %s: %w", q.StationID, err)
	}
	if resp.Summary.ResponseCode != codeOK {
		return nil, fmt.Errorf("mesowest timeseries %s: %w", q.StationID, classifyCode(resp.Summary))
	}
	if len(resp.Stations) == 0 || len(resp.Stations[0].Series) == 0 {
		return nil, fmt.Errorf("mesowest timeseries %s: %w", q.StationID, domain.ErrNoData)
	}

	st := resp.Stations[0]
	series := make([]domain.Observation, 0, len(st.Series))
	for _, row := range st.Series {
		observedAt, err := time.Parse(time.RFC3339, row.DateTime)
		if err != nil {
			continue
		}
		obs := adaptReadings(st.station, row.readings)
		obs.ObservedAt = observedAt.UTC()
		series = append(series, obs)
	}

	sort.Slice(series, func(i, j int) bool {
		return series[i].ObservedAt.Before(series[j].ObservedAt)
	})
	return series, nil
}

// --- legacy MesoWest API response types ---

const codeOK = 1

type apiSummary struct {
	ResponseCode    int    `json:"response_code"`
	ResponseMessage string `json:"response_message"`
}

func classifyCode(s apiSummary) error {
	if s.ResponseCode == 2 {
		return domain.ErrNoData
	}
	return fmt.Errorf("%w: response code %d: %s", domain.ErrUnavailable, s.ResponseCode, s.ResponseMessage)
}

type station struct {
	ID          string   `json:"stid"`
	Name        string   `json:"name"`
	Latitude    float64  `json:"latitude"`
	Longitude   float64  `json:"longitude"`
	ElevationFt *float64 `json:"elevation"`
	State       string   `json:"state"`
	Timezone    string   `json:"timezone"`
}

type readings struct {
	TempF        *float64 `json:"air_temp"`
	HumidityPct  *float64 `json:"relative_humidity"`
	WindMph      *float64 `json:"wind_speed"`
	GustMph      *float64 `json:"wind_gust"`
	WindDirDeg   *float64 `json:"wind_direction"`
	PrecipIn     *float64 `json:"precip_accum"`
	FuelMoisture *float64 `json:"fuel_moisture"`
	SolarWm2     *float64 `json:"solar_radiation"`
	PressureMb   *float64 `json:"pressure"`
}

type latestStation struct {
	station
	DateTime string `json:"date_time"`
	readings
}

type stationsResponse struct {
	Summary  apiSummary      `json:"summary"`
	Stations []latestStation `json:"stations"`
}

func (r stationsResponse) check() error {
	if r.Summary.ResponseCode != codeOK {
		return classifyCode(r.Summary)
	}
	if len(r.Stations) == 0 {
		return domain.ErrStationNotFound
	}
	return nil
}

type seriesRow struct {
	DateTime string `json:"date_time"`
	readings
}

type historyStation struct {
	station
	Series []seriesRow `json:"series"`
}

type historyResponse struct {
	Summary  apiSummary       `json:"summary"`
	Stations []historyStation `json:"stations"`
}

// adaptStation maps a latest-observation station block onto the canonical
// observation. Values are already imperial.
func adaptStation(s latestStation) domain.Observation {
	obs := adaptReadings(s.station, s.readings)
	if t, err := time.Parse(time.RFC3339, s.DateTime); err == nil {
		obs.ObservedAt = t.UTC()
	}
	return obs
}

func adaptReadings(st station, r readings) domain.Observation {
	return domain.Observation{
		StationID:       st.ID,
		StationName:     st.Name,
		Latitude:        st.Latitude,
		Longitude:       st.Longitude,
		ElevationFt:     st.ElevationFt,
		State:           st.State,
		Timezone:        st.Timezone,
		TempF:           r.TempF,
		HumidityPct:     r.HumidityPct,
		WindMph:         r.WindMph,
		GustMph:         r.GustMph,
		WindDirDeg:      r.WindDirDeg,
		PrecipIn:        r.PrecipIn,
		FuelMoisturePct: r.FuelMoisture,
		SolarWm2:        r.SolarWm2,
		PressureMb:      r.PressureMb,
	}
}
