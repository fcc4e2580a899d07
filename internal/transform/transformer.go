// Package transform builds the externally visible WeatherRiskDocument from a
// canonical observation, optional provider alerts, and an optional historical
// series. The transformation is deterministic: same inputs, same document.
package transform

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/tyson-swetnam/raws-mcp/internal/domain"
	"github.com/tyson-swetnam/raws-mcp/internal/units"
)

// Threshold constants for warning and extreme-change detection.
const (
	redFlagHumidityPct = 15.0
	redFlagWindMph     = 25.0
	watchHumidityPct   = 25.0
	watchWindMph       = 15.0

	warningWindow = 6 * time.Hour

	pairGapMax      = 3 * time.Hour
	windRiseMph     = 15.0
	humidityDropPct = 20.0
	extremeGustMph  = 40.0
	extremeHumidity = 10.0
	lowFuelMoisture = 8.0
	rainWindowLabel = "next 24 hours"
)

// Transformer converts observations into risk documents. The injected clock
// anchors warning validity windows, so derived warnings are reproducible in
// tests.
type Transformer struct {
	clock  clockwork.Clock
	logger *slog.Logger
}

// New creates a Transformer.
func New(logger *slog.Logger, clk clockwork.Clock) *Transformer {
	return &Transformer{clock: clk, logger: logger}
}

// EstimateGust is the fallback used when a station reports sustained wind but
// no gust: 1.5x the sustained speed, rounded. Documents built on this
// estimate say so in their notes.
func EstimateGust(speedMph float64) float64 {
	return float64(units.Round(1.5 * speedMph))
}

// RiskDocument produces one WeatherRiskDocument. Temperature, humidity, and
// wind speed are required and cannot be estimated; their absence returns a
// MissingFieldError. Alerts and history are optional enrichments.
func (t *Transformer) RiskDocument(
	obs domain.Observation,
	alerts []domain.Alert,
	history []domain.Observation,
) (domain.WeatherRiskDocument, error) {
	switch {
	case obs.TempF == nil:
		return domain.WeatherRiskDocument{}, &domain.MissingFieldError{Field: "temperature"}
	case obs.HumidityPct == nil:
		return domain.WeatherRiskDocument{}, &domain.MissingFieldError{Field: "humidity"}
	case obs.WindMph == nil:
		return domain.WeatherRiskDocument{}, &domain.MissingFieldError{Field: "wind_speed"}
	}

	humidity := *obs.HumidityPct
	speed := *obs.WindMph

	gustEstimated := obs.GustMph == nil
	gust := EstimateGust(speed)
	if !gustEstimated {
		gust = *obs.GustMph
	}

	doc := domain.WeatherRiskDocument{
		Location: location(obs),
		AsOf:     observedAt(obs, t.clock),
		Temperature: domain.Measurement{
			Value: units.RoundTo(*obs.TempF, 1),
			Unit:  "F",
		},
		Humidity: domain.HumidityReport{
			Percent: float64(units.Round(humidity)),
		},
		Wind: domain.WindReport{
			SpeedMph:  float64(units.Round(speed)),
			GustMph:   float64(units.Round(gust)),
			Direction: units.DegreesToCardinal(obs.WindDirDeg),
		},
		RainProbability: rainProbability(humidity, obs.PrecipIn),
		RedFlagWarnings: t.warnings(alerts, humidity, speed, gust),
		ExtremeChanges:  extremeChanges(obs, gust, humidity, history),
		Sources:         attributions(obs),
	}

	doc.Notes = append(doc.Notes,
		"Rain probability is a heuristic estimate from current humidity and recent precipitation, not a forecast.")
	if gustEstimated {
		doc.Notes = append(doc.Notes,
			"Wind gust was not reported by the station and is estimated as 1.5x the sustained speed.")
	}

	if err := doc.Validate(); err != nil {
		// Validation failure here is a transformer defect, not bad input.
		t.logger.Error("risk document failed invariant validation",
			"station", obs.StationID, "error", err)
		return domain.WeatherRiskDocument{}, fmt.Errorf("risk document validation: %w", err)
	}
	return doc, nil
}

func location(obs domain.Observation) string {
	if obs.StationName != "" {
		return fmt.Sprintf("%s (%s)", obs.StationName, obs.StationID)
	}
	return obs.StationID
}

func observedAt(obs domain.Observation, clk clockwork.Clock) time.Time {
	if !obs.ObservedAt.IsZero() {
		return obs.ObservedAt
	}
	return clk.Now().UTC()
}

// rainProbability maps humidity bands to a base percentage; nonzero recent
// precipitation adds 20 points capped at 95 and raises confidence to medium.
func rainProbability(humidity float64, precipIn *float64) domain.RainProbability {
	var pct int
	switch {
	case humidity >= 90:
		pct = 80
	case humidity >= 80:
		pct = 60
	case humidity >= 70:
		pct = 40
	case humidity >= 60:
		pct = 25
	case humidity >= 40:
		pct = 15
	default:
		pct = 5
	}

	confidence := domain.ConfidenceLow
	if precipIn != nil && *precipIn > 0 {
		pct += 20
		if pct > 95 {
			pct = 95
		}
		confidence = domain.ConfidenceMedium
	}

	return domain.RainProbability{
		Percent:    pct,
		Window:     rainWindowLabel,
		Confidence: confidence,
	}
}

// warnings translates provider fire-weather alerts when present; provider
// alerts take precedence and suppress threshold detection entirely. Without
// them, local thresholds apply: the Red Flag tier tests the greater of
// sustained speed and gust, while the Watch tier tests sustained speed alone.
// That asymmetry is carried over from the upstream screening rules as
// observed, flagged rather than corrected.
func (t *Transformer) warnings(alerts []domain.Alert, humidity, speed, gust float64) []domain.RedFlagWarning {
	var out []domain.RedFlagWarning
	for _, a := range alerts {
		if a.Event != "Red Flag Warning" && a.Event != "Fire Weather Watch" {
			continue
		}
		tier := domain.TierRedFlag
		if a.Event == "Fire Weather Watch" {
			tier = domain.TierWatch
		}
		desc := a.Headline
		if desc == "" {
			desc = a.Event
		}
		out = append(out, domain.RedFlagWarning{
			Start:       a.OnsetAt,
			End:         a.ExpiresAt,
			Tier:        tier,
			Description: desc,
		})
	}
	if len(out) > 0 {
		return out
	}

	now := t.clock.Now().UTC()
	effectiveWind := speed
	if gust > effectiveWind {
		effectiveWind = gust
	}

	switch {
	case humidity < redFlagHumidityPct && effectiveWind > redFlagWindMph:
		return []domain.RedFlagWarning{{
			Start: now,
			End:   now.Add(warningWindow),
			Tier:  domain.TierRedFlag,
			Description: fmt.Sprintf(
				"Critical fire weather: humidity %.0f%% with winds to %.0f mph.", humidity, effectiveWind),
		}}
	case humidity < watchHumidityPct && speed > watchWindMph:
		return []domain.RedFlagWarning{{
			Start: now,
			End:   now.Add(warningWindow),
			Tier:  domain.TierWatch,
			Description: fmt.Sprintf(
				"Elevated fire weather: humidity %.0f%% with sustained winds of %.0f mph.", humidity, speed),
		}}
	}
	return nil
}

// extremeChanges scans consecutive-in-time history pairs for rapid swings and
// always checks the current snapshot for standalone extremes.
func extremeChanges(obs domain.Observation, gust, humidity float64, history []domain.Observation) []domain.ExtremeChange {
	var out []domain.ExtremeChange

	if len(history) > 1 {
		series := make([]domain.Observation, len(history))
		copy(series, history)
		sort.Slice(series, func(i, j int) bool {
			return series[i].ObservedAt.Before(series[j].ObservedAt)
		})

		for i := 1; i < len(series); i++ {
			prev, cur := series[i-1], series[i]
			gap := cur.ObservedAt.Sub(prev.ObservedAt)
			if gap <= 0 || gap > pairGapMax {
				continue
			}
			frame := fmt.Sprintf("over %s", gap.Round(time.Minute))

			if prev.WindMph != nil && cur.WindMph != nil {
				if rise := *cur.WindMph - *prev.WindMph; rise > windRiseMph {
					out = append(out, domain.ExtremeChange{
						Parameter:   "wind",
						Description: fmt.Sprintf("Wind speed rose %.0f mph", rise),
						Magnitude:   units.RoundTo(rise, 1),
						TimeFrame:   frame,
					})
				}
			}
			if prev.HumidityPct != nil && cur.HumidityPct != nil {
				if drop := *prev.HumidityPct - *cur.HumidityPct; drop > humidityDropPct {
					out = append(out, domain.ExtremeChange{
						Parameter:   "humidity",
						Description: fmt.Sprintf("Humidity dropped %.0f percentage points", drop),
						Magnitude:   units.RoundTo(drop, 1),
						TimeFrame:   frame,
					})
				}
			}
		}
	}

	if gust > extremeGustMph {
		out = append(out, domain.ExtremeChange{
			Parameter:   "wind",
			Description: fmt.Sprintf("Gusts of %.0f mph in current conditions", gust),
			Magnitude:   units.RoundTo(gust, 1),
			TimeFrame:   "current",
		})
	}
	if humidity < extremeHumidity {
		out = append(out, domain.ExtremeChange{
			Parameter:   "humidity",
			Description: fmt.Sprintf("Critically low humidity of %.0f%%", humidity),
			Magnitude:   units.RoundTo(humidity, 1),
			TimeFrame:   "current",
		})
	}
	if obs.FuelMoisturePct != nil && *obs.FuelMoisturePct < lowFuelMoisture {
		out = append(out, domain.ExtremeChange{
			Parameter:   "fuel_moisture",
			Description: fmt.Sprintf("Critically dry fuels at %.1f%% moisture", *obs.FuelMoisturePct),
			Magnitude:   units.RoundTo(*obs.FuelMoisturePct, 1),
			TimeFrame:   "current",
		})
	}

	return out
}

func attributions(obs domain.Observation) []domain.Attribution {
	station := obs.StationName
	if station == "" {
		station = obs.StationID
	}
	out := []domain.Attribution{{
		Name:     fmt.Sprintf("%s weather station", station),
		Category: "station",
	}}

	switch obs.Source {
	case "synoptic":
		out = append(out, domain.Attribution{
			Name:     "Synoptic Data",
			Category: "provider",
			URL:      "https://synopticdata.com",
		})
	case "mesowest":
		out = append(out, domain.Attribution{
			Name:     "MesoWest",
			Category: "provider",
			URL:      "https://mesowest.utah.edu",
		})
	default:
		if obs.Source != "" {
			out = append(out, domain.Attribution{Name: obs.Source, Category: "provider"})
		}
	}
	return out
}
