package tools

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Input validation limits.
const (
	defaultRadiusMiles = 50.0
	maxRadiusMiles     = 500.0
	defaultSearchLimit = 10
	maxSearchLimit     = 50

	maxHistorySpan = 365 * 24 * time.Hour

	defaultElevationFt = 5000.0
)

var stationIDPattern = regexp.MustCompile(`^[A-Za-z0-9]{4,6}$`)

// validate holds the shared field validator for numeric range checks.
var validate = validator.New()

// normalizeStationID strips an optional provider-style "RAWS:" prefix,
// uppercases, and enforces the 4-6 alphanumeric shape all providers share.
func normalizeStationID(raw string) (string, *ToolError) {
	id := strings.TrimSpace(raw)
	if rest, ok := cutPrefixFold(id, "RAWS:"); ok {
		id = rest
	}
	id = strings.ToUpper(id)

	if !stationIDPattern.MatchString(id) {
		return "", invalidInput(CodeInvalidStationID,
			"station id must be 4-6 alphanumeric characters, optionally prefixed with RAWS:",
			map[string]any{"station_id": raw})
	}
	return id, nil
}

// cutPrefixFold is strings.CutPrefix with ASCII case folding on the prefix.
func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix) {
		return s[len(prefix):], true
	}
	return s, false
}

func validateCoordinates(lat, lon float64) *ToolError {
	if err := validate.Var(lat, "gte=-90,lte=90"); err != nil {
		return invalidInput(CodeInvalidLatitude,
			"latitude must be between -90 and 90 degrees",
			map[string]any{"latitude": lat})
	}
	if err := validate.Var(lon, "gte=-180,lte=180"); err != nil {
		return invalidInput(CodeInvalidLongitude,
			"longitude must be between -180 and 180 degrees",
			map[string]any{"longitude": lon})
	}
	return nil
}

// normalizeRadius applies the default for an unset radius and rejects
// non-positive or oversized values.
func normalizeRadius(radius float64) (float64, *ToolError) {
	if radius == 0 {
		return defaultRadiusMiles, nil
	}
	if radius < 0 || radius > maxRadiusMiles {
		return 0, invalidInput(CodeInvalidRadius,
			fmt.Sprintf("radius must be between 0 and %.0f miles", maxRadiusMiles),
			map[string]any{"radius_miles": radius})
	}
	return radius, nil
}

func normalizeLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultSearchLimit
	case limit > maxSearchLimit:
		return maxSearchLimit
	default:
		return limit
	}
}

// parseDateRange validates a history window: both bounds parse as RFC 3339,
// end is after start, end is not in the future, and the span is at most one
// year.
func parseDateRange(startRaw, endRaw string, now time.Time) (time.Time, time.Time, *ToolError) {
	start, err := time.Parse(time.RFC3339, startRaw)
	if err != nil {
		return time.Time{}, time.Time{}, invalidInput(CodeInvalidStartTime,
			"start time must be an RFC 3339 timestamp",
			map[string]any{"start_time": startRaw})
	}
	end, err := time.Parse(time.RFC3339, endRaw)
	if err != nil {
		return time.Time{}, time.Time{}, invalidInput(CodeInvalidEndTime,
			"end time must be an RFC 3339 timestamp",
			map[string]any{"end_time": endRaw})
	}

	start, end = start.UTC(), end.UTC()
	switch {
	case !end.After(start):
		return time.Time{}, time.Time{}, invalidInput(CodeInvalidDateRange,
			"end time must be after start time",
			map[string]any{"start_time": startRaw, "end_time": endRaw})
	case end.After(now):
		return time.Time{}, time.Time{}, invalidInput(CodeInvalidDateRange,
			"end time must not be in the future",
			map[string]any{"end_time": endRaw})
	case end.Sub(start) > maxHistorySpan:
		return time.Time{}, time.Time{}, invalidInput(CodeInvalidDateRange,
			"date range must not exceed one year",
			map[string]any{"start_time": startRaw, "end_time": endRaw})
	}
	return start, end, nil
}

// validateFireInputs range-checks the fire-index calculator inputs before
// any math runs. Fuel moisture and elevation are optional.
func validateFireInputs(tempF, humidityPct, windMph float64, fuelMoisturePct, elevationFt *float64) *ToolError {
	if err := validate.Var(tempF, "gte=-90,lte=140"); err != nil {
		return invalidInput(CodeInvalidTemp,
			"temperature must be between -90 and 140 degrees F",
			map[string]any{"temperature_f": tempF})
	}
	if err := validate.Var(humidityPct, "gte=0,lte=100"); err != nil {
		return invalidInput(CodeInvalidHumidity,
			"humidity must be between 0 and 100 percent",
			map[string]any{"humidity_pct": humidityPct})
	}
	if err := validate.Var(windMph, "gte=0,lte=200"); err != nil {
		return invalidInput(CodeInvalidWindSpeed,
			"wind speed must be between 0 and 200 mph",
			map[string]any{"wind_mph": windMph})
	}
	if fuelMoisturePct != nil {
		if err := validate.Var(*fuelMoisturePct, "gte=0,lte=60"); err != nil {
			return invalidInput(CodeInvalidFuelMoist,
				"fuel moisture must be between 0 and 60 percent",
				map[string]any{"fuel_moisture_pct": *fuelMoisturePct})
		}
	}
	if elevationFt != nil {
		if err := validate.Var(*elevationFt, "gte=-300,lte=15000"); err != nil {
			return invalidInput(CodeInvalidElevation,
				"elevation must be between -300 and 15000 feet",
				map[string]any{"elevation_ft": *elevationFt})
		}
	}
	return nil
}
