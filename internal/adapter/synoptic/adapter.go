package synoptic

import (
	"strconv"

	"github.com/tyson-swetnam/raws-mcp/internal/domain"
	"github.com/tyson-swetnam/raws-mcp/internal/units"
)

// Synoptic sensor names for the latest-observation payload.
const (
	sensorAirTemp      = "air_temp_value_1"
	sensorHumidity     = "relative_humidity_value_1"
	sensorWindSpeed    = "wind_speed_value_1"
	sensorWindGust     = "wind_gust_value_1"
	sensorWindDir      = "wind_direction_value_1"
	sensorPrecipAccum  = "precip_accum_value_1"
	sensorFuelMoisture = "fuel_moisture_value_1"
	sensorSolar        = "solar_radiation_value_1"
	sensorPressure     = "pressure_value_1"
)

// adaptLatest maps one Synoptic latest-observation station block onto the
// canonical observation. Absent sensors stay nil; metric values convert to
// the canonical imperial units.
func adaptLatest(s latestStation) domain.Observation {
	obs := domain.Observation{
		StationID:   s.STID,
		StationName: s.Name,
		Latitude:    parseFloat(s.Latitude),
		Longitude:   parseFloat(s.Longitude),
		ElevationFt: parseFloatPtr(s.Elevation),
		State:       s.State,
		Timezone:    s.Timezone,
	}

	if r, ok := s.Obs[sensorAirTemp]; ok {
		obs.TempF = convert(r.Value, units.CToF)
		obs.ObservedAt = parseObservedAt(r.DateTime)
	}
	if r, ok := s.Obs[sensorHumidity]; ok {
		obs.HumidityPct = r.Value
		if obs.ObservedAt.IsZero() {
			obs.ObservedAt = parseObservedAt(r.DateTime)
		}
	}
	if r, ok := s.Obs[sensorWindSpeed]; ok {
		obs.WindMph = convert(r.Value, units.MpsToMph)
	}
	if r, ok := s.Obs[sensorWindGust]; ok {
		obs.GustMph = convert(r.Value, units.MpsToMph)
	}
	if r, ok := s.Obs[sensorWindDir]; ok {
		obs.WindDirDeg = r.Value
	}
	if r, ok := s.Obs[sensorPrecipAccum]; ok {
		obs.PrecipIn = convert(r.Value, units.MmToInches)
	}
	if r, ok := s.Obs[sensorFuelMoisture]; ok {
		obs.FuelMoisturePct = r.Value
	}
	if r, ok := s.Obs[sensorSolar]; ok {
		obs.SolarWm2 = r.Value
	}
	if r, ok := s.Obs[sensorPressure]; ok {
		// Synoptic reports pressure in Pascals.
		obs.PressureMb = convert(r.Value, func(pa float64) float64 { return pa / 100 })
	}

	return obs
}

func adaptMetadata(s metadataStation) domain.StationMeta {
	return domain.StationMeta{
		ID:          s.STID,
		Name:        s.Name,
		Latitude:    parseFloat(s.Latitude),
		Longitude:   parseFloat(s.Longitude),
		ElevationFt: parseFloatPtr(s.Elevation),
		State:       s.State,
	}
}

// adaptTimeseries flattens Synoptic's column-oriented series into ordered
// partial observations. Rows keep their upstream order, which Synoptic
// guarantees to be time-ascending.
func adaptTimeseries(s timeseriesStation) []domain.Observation {
	lat := parseFloat(s.Latitude)
	lon := parseFloat(s.Longitude)
	elev := parseFloatPtr(s.Elevation)

	series := make([]domain.Observation, 0, len(s.Obs.DateTime))
	for i, ts := range s.Obs.DateTime {
		observedAt := parseObservedAt(ts)
		if observedAt.IsZero() {
			continue
		}

		series = append(series, domain.Observation{
			StationID:       s.STID,
			StationName:     s.Name,
			Latitude:        lat,
			Longitude:       lon,
			ElevationFt:     elev,
			State:           s.State,
			Timezone:        s.Timezone,
			ObservedAt:      observedAt,
			TempF:           convert(column(s.Obs.AirTemp, i), units.CToF),
			HumidityPct:     column(s.Obs.Humidity, i),
			WindMph:         convert(column(s.Obs.WindSpeed, i), units.MpsToMph),
			GustMph:         convert(column(s.Obs.WindGust, i), units.MpsToMph),
			WindDirDeg:      column(s.Obs.WindDirection, i),
			PrecipIn:        convert(column(s.Obs.PrecipAccum, i), units.MmToInches),
			FuelMoisturePct: column(s.Obs.FuelMoisture, i),
			SolarWm2:        column(s.Obs.Solar, i),
			PressureMb:      convert(column(s.Obs.Pressure, i), func(pa float64) float64 { return pa / 100 }),
		})
	}
	return series
}

// column returns the i-th value of a sensor column, nil when the column is
// missing or shorter than the timestamp column.
func column(col []*float64, i int) *float64 {
	if i >= len(col) {
		return nil
	}
	return col[i]
}

// convert applies f to a nullable value, preserving nil.
func convert(v *float64, f func(float64) float64) *float64 {
	if v == nil {
		return nil
	}
	out := f(*v)
	return &out
}

func parseFloat(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

func parseFloatPtr(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
