package tools

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tyson-swetnam/raws-mcp/internal/domain"
	"github.com/tyson-swetnam/raws-mcp/internal/transform"
)

func ptr(v float64) *float64 { return &v }

// fakeSource scripts the coordinator surface.
type fakeSource struct {
	obs    domain.Observation
	obsErr error

	stations    []domain.StationMeta
	stationsErr error

	series    []domain.Observation
	seriesErr error

	alerts []domain.Alert

	lastStationID string
	lastSearch    domain.SearchQuery
	lastHistory   domain.HistoryQuery
	alertCalls    int
	historyCalls  int
}

func (f *fakeSource) CurrentObservation(_ context.Context, stationID string) (domain.Observation, error) {
	f.lastStationID = stationID
	return f.obs, f.obsErr
}

func (f *fakeSource) SearchStations(_ context.Context, q domain.SearchQuery) ([]domain.StationMeta, error) {
	f.lastSearch = q
	return f.stations, f.stationsErr
}

func (f *fakeSource) History(_ context.Context, q domain.HistoryQuery) ([]domain.Observation, error) {
	f.historyCalls++
	f.lastHistory = q
	return f.series, f.seriesErr
}

func (f *fakeSource) ActiveAlerts(_ context.Context, _, _ float64) []domain.Alert {
	f.alertCalls++
	return f.alerts
}

func usableObservation() domain.Observation {
	return domain.Observation{
		StationID:   "QLDA3",
		StationName: "LADDER",
		Latitude:    32.44,
		Longitude:   -110.76,
		Source:      "synoptic",
		ObservedAt:  time.Date(2024, 6, 15, 21, 0, 0, 0, time.UTC),
		TempF:       ptr(88.2),
		HumidityPct: ptr(12.5),
		WindMph:     ptr(28.3),
		GustMph:     ptr(42.7),
		WindDirDeg:  ptr(310),
	}
}

func newTestService(source *fakeSource, flags Flags, clk clockwork.Clock) *Service {
	logger := slog.New(slog.DiscardHandler)
	return NewService(source, transform.New(logger, clk), flags, clk, logger)
}

func allFlags() Flags {
	return Flags{AlertsEnabled: true, FireIndicesEnabled: true}
}

func TestCurrentConditions(t *testing.T) {
	source := &fakeSource{obs: usableObservation()}
	svc := newTestService(source, allFlags(), clockwork.NewFakeClock())

	resp, terr := svc.CurrentConditions(context.Background(), CurrentConditionsRequest{StationID: "raws:qlda3"})
	require.Nil(t, terr)

	assert.Equal(t, "QLDA3", source.lastStationID, "prefix stripped and uppercased before upstream call")
	assert.Equal(t, "LADDER (QLDA3)", resp.Document.Location)
	assert.Nil(t, resp.FireIndices)
	assert.Equal(t, 1, source.alertCalls)
	assert.Zero(t, source.historyCalls, "history is fetched only when trends are requested")
}

func TestCurrentConditionsInvalidStationID(t *testing.T) {
	svc := newTestService(&fakeSource{}, allFlags(), clockwork.NewFakeClock())

	tests := []string{"", "ab", "toolongid", "bad id", "QLD-3"}
	for _, id := range tests {
		t.Run(id, func(t *testing.T) {
			_, terr := svc.CurrentConditions(context.Background(), CurrentConditionsRequest{StationID: id})
			require.NotNil(t, terr)
			assert.Equal(t, CodeInvalidStationID, terr.Code)
			assert.Equal(t, 400, terr.Status)
		})
	}
}

func TestCurrentConditionsStationNotFound(t *testing.T) {
	source := &fakeSource{obsErr: domain.ErrStationNotFound}
	svc := newTestService(source, allFlags(), clockwork.NewFakeClock())

	_, terr := svc.CurrentConditions(context.Background(), CurrentConditionsRequest{StationID: "XXXX"})
	require.NotNil(t, terr)
	assert.Equal(t, CodeStationNotFound, terr.Code)
	assert.Equal(t, 404, terr.Status)
	assert.Equal(t, "XXXX", terr.Details["station_id"])
}

func TestCurrentConditionsWithFireIndices(t *testing.T) {
	source := &fakeSource{obs: usableObservation()}
	svc := newTestService(source, allFlags(), clockwork.NewFakeClock())

	resp, terr := svc.CurrentConditions(context.Background(), CurrentConditionsRequest{
		StationID:          "QLDA3",
		IncludeFireIndices: true,
	})
	require.Nil(t, terr)
	require.NotNil(t, resp.FireIndices)

	assert.True(t, resp.FireIndices.RedFlag, "12.5%% humidity with 28 mph winds is a red flag")
	assert.NotNil(t, resp.FireIndices.Fosberg)
	assert.True(t, resp.FireIndices.FuelMoistureEstimated, "no sensor value means the EMC estimate applies")
}

func TestCurrentConditionsFireIndicesDisabled(t *testing.T) {
	source := &fakeSource{obs: usableObservation()}
	svc := newTestService(source, Flags{AlertsEnabled: true}, clockwork.NewFakeClock())

	_, terr := svc.CurrentConditions(context.Background(), CurrentConditionsRequest{
		StationID:          "QLDA3",
		IncludeFireIndices: true,
	})
	require.NotNil(t, terr)
	assert.Equal(t, CodeFeatureDisabled, terr.Code)
}

func TestCurrentConditionsAlertsDisabled(t *testing.T) {
	source := &fakeSource{obs: usableObservation()}
	svc := newTestService(source, Flags{FireIndicesEnabled: true}, clockwork.NewFakeClock())

	_, terr := svc.CurrentConditions(context.Background(), CurrentConditionsRequest{StationID: "QLDA3"})
	require.Nil(t, terr)
	assert.Zero(t, source.alertCalls)
}

func TestCurrentConditionsTrendsBestEffort(t *testing.T) {
	clk := clockwork.NewFakeClockAt(time.Date(2024, 6, 15, 21, 0, 0, 0, time.UTC))

	t.Run("history feeds extreme-change detection", func(t *testing.T) {
		source := &fakeSource{obs: usableObservation()}
		source.series = []domain.Observation{
			{ObservedAt: clk.Now().Add(-2 * time.Hour), WindMph: ptr(5)},
			{ObservedAt: clk.Now().Add(-1 * time.Hour), WindMph: ptr(25)},
		}
		svc := newTestService(source, allFlags(), clk)

		resp, terr := svc.CurrentConditions(context.Background(), CurrentConditionsRequest{
			StationID:     "QLDA3",
			IncludeTrends: true,
		})
		require.Nil(t, terr)
		assert.Equal(t, 1, source.historyCalls)
		assert.Equal(t, clk.Now().UTC().Add(-6*time.Hour), source.lastHistory.Start)

		found := false
		for _, ch := range resp.Document.ExtremeChanges {
			if ch.Parameter == "wind" && ch.TimeFrame != "current" {
				found = true
			}
		}
		assert.True(t, found, "the 20 mph rise within one hour must be flagged")
	})

	t.Run("history failure degrades silently", func(t *testing.T) {
		source := &fakeSource{obs: usableObservation(), seriesErr: domain.ErrUnavailable}
		svc := newTestService(source, allFlags(), clk)

		resp, terr := svc.CurrentConditions(context.Background(), CurrentConditionsRequest{
			StationID:     "QLDA3",
			IncludeTrends: true,
		})
		require.Nil(t, terr)
		require.NotNil(t, resp)
	})
}

func TestCurrentConditionsMissingRequiredField(t *testing.T) {
	obs := usableObservation()
	obs.HumidityPct = nil
	source := &fakeSource{obs: obs}
	svc := newTestService(source, allFlags(), clockwork.NewFakeClock())

	_, terr := svc.CurrentConditions(context.Background(), CurrentConditionsRequest{StationID: "QLDA3"})
	require.NotNil(t, terr)
	assert.Equal(t, CodeMissingField, terr.Code)
	assert.Equal(t, 422, terr.Status)
}

func TestSearchStations(t *testing.T) {
	source := &fakeSource{stations: []domain.StationMeta{{ID: "QLDA3", DistanceMi: 3.1}}}
	svc := newTestService(source, allFlags(), clockwork.NewFakeClock())

	stations, terr := svc.SearchStations(context.Background(), SearchStationsRequest{
		Latitude:  32.44,
		Longitude: -110.76,
	})
	require.Nil(t, terr)
	require.Len(t, stations, 1)

	assert.Equal(t, 50.0, source.lastSearch.RadiusMiles, "radius defaults to 50 miles")
	assert.Equal(t, 10, source.lastSearch.Limit, "limit defaults to 10")
}

func TestSearchStationsValidation(t *testing.T) {
	svc := newTestService(&fakeSource{}, allFlags(), clockwork.NewFakeClock())

	tests := []struct {
		name string
		req  SearchStationsRequest
		code string
	}{
		{"latitude too high", SearchStationsRequest{Latitude: 91, Longitude: 0}, CodeInvalidLatitude},
		{"latitude too low", SearchStationsRequest{Latitude: -91, Longitude: 0}, CodeInvalidLatitude},
		{"longitude too high", SearchStationsRequest{Latitude: 0, Longitude: 181}, CodeInvalidLongitude},
		{"radius negative", SearchStationsRequest{Latitude: 32, Longitude: -110, RadiusMiles: -1}, CodeInvalidRadius},
		{"radius too large", SearchStationsRequest{Latitude: 32, Longitude: -110, RadiusMiles: 501}, CodeInvalidRadius},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, terr := svc.SearchStations(context.Background(), tt.req)
			require.NotNil(t, terr)
			assert.Equal(t, tt.code, terr.Code)
		})
	}
}

func TestSearchStationsLimitClamped(t *testing.T) {
	source := &fakeSource{}
	svc := newTestService(source, allFlags(), clockwork.NewFakeClock())

	_, terr := svc.SearchStations(context.Background(), SearchStationsRequest{
		Latitude: 32.44, Longitude: -110.76, Limit: 200,
	})
	require.Nil(t, terr)
	assert.Equal(t, 50, source.lastSearch.Limit)
}

func TestHistory(t *testing.T) {
	clk := clockwork.NewFakeClockAt(time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC))
	source := &fakeSource{series: []domain.Observation{{StationID: "QLDA3"}}}
	svc := newTestService(source, allFlags(), clk)

	series, terr := svc.History(context.Background(), HistoryRequest{
		StationID: "QLDA3",
		StartTime: "2024-06-15T00:00:00Z",
		EndTime:   "2024-06-16T00:00:00Z",
		Variables: []string{"temperature", "wind_speed"},
	})
	require.Nil(t, terr)
	require.Len(t, series, 1)
	assert.Equal(t, []string{"temperature", "wind_speed"}, source.lastHistory.Variables)
}

func TestHistoryDateRangeValidation(t *testing.T) {
	clk := clockwork.NewFakeClockAt(time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC))
	svc := newTestService(&fakeSource{}, allFlags(), clk)

	tests := []struct {
		name       string
		start, end string
		code       string
	}{
		{"unparseable start", "yesterday", "2024-06-16T00:00:00Z", CodeInvalidStartTime},
		{"unparseable end", "2024-06-15T00:00:00Z", "tomorrow", CodeInvalidEndTime},
		{"end before start", "2024-06-16T00:00:00Z", "2024-06-15T00:00:00Z", CodeInvalidDateRange},
		{"end equals start", "2024-06-15T00:00:00Z", "2024-06-15T00:00:00Z", CodeInvalidDateRange},
		{"end in the future", "2024-06-15T00:00:00Z", "2024-07-01T00:00:00Z", CodeInvalidDateRange},
		{"span over one year", "2023-01-01T00:00:00Z", "2024-06-01T00:00:00Z", CodeInvalidDateRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, terr := svc.History(context.Background(), HistoryRequest{
				StationID: "QLDA3",
				StartTime: tt.start,
				EndTime:   tt.end,
			})
			require.NotNil(t, terr)
			assert.Equal(t, tt.code, terr.Code)
		})
	}
}

func TestHistoryNoData(t *testing.T) {
	clk := clockwork.NewFakeClockAt(time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC))
	svc := newTestService(&fakeSource{}, allFlags(), clk)

	_, terr := svc.History(context.Background(), HistoryRequest{
		StationID: "QLDA3",
		StartTime: "2024-06-15T00:00:00Z",
		EndTime:   "2024-06-16T00:00:00Z",
	})
	require.NotNil(t, terr)
	assert.Equal(t, CodeNoData, terr.Code)
}

func TestFireIndices(t *testing.T) {
	svc := newTestService(&fakeSource{}, allFlags(), clockwork.NewFakeClock())

	resp, terr := svc.FireIndices(context.Background(), FireIndicesRequest{
		TemperatureF: 95,
		HumidityPct:  8,
		WindMph:      30,
	})
	require.Nil(t, terr)

	assert.True(t, resp.Result.RedFlag)
	assert.Equal(t, "Extreme", resp.Result.DangerClass)
	assert.True(t, resp.Result.FuelMoistureEstimated)
	require.NotNil(t, resp.Result.Fosberg)
	require.NotNil(t, resp.Result.Haines)
	require.NotNil(t, resp.Result.Chandler)
	assert.NotEmpty(t, resp.Result.Interpretation.Danger)
	assert.Equal(t, 5000.0, resp.Inputs.ElevationFt, "elevation defaults when omitted")
}

func TestFireIndicesSensorFuelMoisture(t *testing.T) {
	svc := newTestService(&fakeSource{}, allFlags(), clockwork.NewFakeClock())

	resp, terr := svc.FireIndices(context.Background(), FireIndicesRequest{
		TemperatureF:    95,
		HumidityPct:     8,
		WindMph:         30,
		FuelMoisturePct: ptr(12),
		ElevationFt:     ptr(7200),
	})
	require.Nil(t, terr)
	assert.False(t, resp.Result.FuelMoistureEstimated)
	assert.Equal(t, 7200.0, resp.Inputs.ElevationFt)
}

func TestFireIndicesValidation(t *testing.T) {
	svc := newTestService(&fakeSource{}, allFlags(), clockwork.NewFakeClock())

	tests := []struct {
		name string
		req  FireIndicesRequest
		code string
	}{
		{"temperature too high", FireIndicesRequest{TemperatureF: 150, HumidityPct: 20, WindMph: 10}, CodeInvalidTemp},
		{"temperature too low", FireIndicesRequest{TemperatureF: -100, HumidityPct: 20, WindMph: 10}, CodeInvalidTemp},
		{"humidity over 100", FireIndicesRequest{TemperatureF: 80, HumidityPct: 101, WindMph: 10}, CodeInvalidHumidity},
		{"negative wind", FireIndicesRequest{TemperatureF: 80, HumidityPct: 20, WindMph: -1}, CodeInvalidWindSpeed},
		{"fuel moisture over 60", FireIndicesRequest{TemperatureF: 80, HumidityPct: 20, WindMph: 10, FuelMoisturePct: ptr(61)}, CodeInvalidFuelMoist},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, terr := svc.FireIndices(context.Background(), tt.req)
			require.NotNil(t, terr)
			assert.Equal(t, tt.code, terr.Code)
		})
	}
}

func TestFireIndicesFeatureDisabled(t *testing.T) {
	svc := newTestService(&fakeSource{}, Flags{AlertsEnabled: true}, clockwork.NewFakeClock())

	_, terr := svc.FireIndices(context.Background(), FireIndicesRequest{
		TemperatureF: 95, HumidityPct: 8, WindMph: 30,
	})
	require.NotNil(t, terr)
	assert.Equal(t, CodeFeatureDisabled, terr.Code)
	assert.Equal(t, 403, terr.Status)
}

func TestNormalizeStationID(t *testing.T) {
	tests := []struct {
		in   string
		out  string
		fail bool
	}{
		{"QLDA3", "QLDA3", false},
		{"qlda3", "QLDA3", false},
		{"RAWS:QLDA3", "QLDA3", false},
		{"raws:qlda3", "QLDA3", false},
		{"  QLDA3 ", "QLDA3", false},
		{"ABCDEF", "ABCDEF", false},
		{"ABC", "", true},
		{"ABCDEFG", "", true},
		{"RAWS:", "", true},
		{"QL DA3", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, terr := normalizeStationID(tt.in)
			if tt.fail {
				require.NotNil(t, terr)
				return
			}
			require.Nil(t, terr)
			assert.Equal(t, tt.out, got)
		})
	}
}

func TestEnvelope(t *testing.T) {
	at := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	ok := Succeed("get_current_conditions", map[string]any{"k": "v"}, at, 42*time.Millisecond)
	assert.True(t, ok.Success)
	assert.Equal(t, int64(42), ok.Metadata.ElapsedMS)
	assert.Nil(t, ok.Err)

	fail := Fail(invalidInput(CodeInvalidRadius, "bad radius", nil))
	assert.False(t, fail.Success)
	assert.Nil(t, fail.Data)
	assert.Equal(t, CodeInvalidRadius, fail.Err.Code)
}
