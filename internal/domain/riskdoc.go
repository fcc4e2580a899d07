package domain

import (
	"fmt"
	"time"
)

// Warning tiers and confidence labels used in the risk document.
const (
	TierRedFlag = "Red Flag"
	TierWatch   = "Watch"

	ConfidenceLow    = "low"
	ConfidenceMedium = "medium"
)

// Measurement is a value with its unit, for unambiguous external output.
type Measurement struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// HumidityReport carries the relative humidity block of the risk document.
type HumidityReport struct {
	Percent float64 `json:"percent"`
}

// WindReport carries the wind block of the risk document. Direction is a
// compass label, "Unknown" when the station reported no heading.
type WindReport struct {
	SpeedMph  float64 `json:"speed_mph"`
	GustMph   float64 `json:"gust_mph"`
	Direction string  `json:"direction"`
}

// RainProbability is a heuristic estimate derived from current humidity and
// recent precipitation. It is not a forecast and is labeled as such in the
// document notes.
type RainProbability struct {
	Percent    int    `json:"percent"`
	Window     string `json:"window"`
	Confidence string `json:"confidence"`
}

// RedFlagWarning is one fire-weather warning entry, either translated from a
// provider alert or derived from local thresholds.
type RedFlagWarning struct {
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Tier        string    `json:"tier"`
	Description string    `json:"description"`
}

// ExtremeChange flags a rapid swing between consecutive historical readings
// or an extreme value in the current snapshot.
type ExtremeChange struct {
	Parameter   string  `json:"parameter"`
	Description string  `json:"description"`
	Magnitude   float64 `json:"magnitude"`
	TimeFrame   string  `json:"time_frame"`
}

// Attribution credits one data source contributing to the document.
type Attribution struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	URL      string `json:"url,omitempty"`
}

// WeatherRiskDocument is the externally visible output of the schema
// transformer: one station's current conditions with derived fire-weather
// risk context.
type WeatherRiskDocument struct {
	Location        string           `json:"location"`
	AsOf            time.Time        `json:"as_of"`
	Temperature     Measurement      `json:"temperature"`
	Humidity        HumidityReport   `json:"humidity"`
	Wind            WindReport       `json:"wind"`
	RainProbability RainProbability  `json:"rain_probability"`
	RedFlagWarnings []RedFlagWarning `json:"red_flag_warnings"`
	ExtremeChanges  []ExtremeChange  `json:"extreme_changes"`
	Sources         []Attribution    `json:"data_sources"`
	Notes           []string         `json:"notes,omitempty"`
}

// Validate enforces the document invariants. A failure here is a defect in
// the transformer, not bad input: the transformer must never emit a document
// that fails validation.
func (d *WeatherRiskDocument) Validate() error {
	if d.Humidity.Percent < 0 || d.Humidity.Percent > 100 {
		return fmt.Errorf("humidity percent %v outside [0,100]", d.Humidity.Percent)
	}
	if d.Wind.SpeedMph < 0 {
		return fmt.Errorf("wind speed %v negative", d.Wind.SpeedMph)
	}
	if d.Wind.GustMph < 0 {
		return fmt.Errorf("wind gust %v negative", d.Wind.GustMph)
	}
	if d.RainProbability.Percent < 0 || d.RainProbability.Percent > 100 {
		return fmt.Errorf("rain probability %v outside [0,100]", d.RainProbability.Percent)
	}
	// Gust >= sustained speed is expected but deliberately not enforced:
	// a malformed upstream payload passes through as an accepted
	// data-quality risk rather than being silently corrected.
	return nil
}
