// Package fireweather implements the fire-danger calculations used by the
// risk document and the fire-indices tool: equilibrium moisture content,
// the Fosberg Fire Weather Index, an approximate Haines Index, the Chandler
// Burning Index, red-flag threshold tests, ignition probability, and danger
// classification.
//
// Every calculator treats a nil numeric input as "cannot compute" and returns
// nil rather than substituting zero; a zero-degree day and a missing sensor
// are very different fire situations.
package fireweather

import "math"

// DangerClass is one of five ordered fire-danger tiers.
type DangerClass string

const (
	DangerLow      DangerClass = "Low"
	DangerModerate DangerClass = "Moderate"
	DangerHigh     DangerClass = "High"
	DangerVeryHigh DangerClass = "Very High"
	DangerExtreme  DangerClass = "Extreme"
)

// EquilibriumMoistureContent returns the theoretical dead-fuel moisture
// percentage if fuels fully equilibrated with the current air temperature
// (Fahrenheit) and relative humidity. It uses the Simard piecewise empirical
// fit, with humidity clamped to [1,100] to avoid the formula's pathologies
// at zero. Returns nil if either input is nil.
func EquilibriumMoistureContent(tempF, humidityPct *float64) *float64 {
	if tempF == nil || humidityPct == nil {
		return nil
	}

	t := *tempF
	h := clamp(*humidityPct, 1, 100)

	var emc float64
	switch {
	case h < 10:
		emc = 0.03229 + 0.281073*h - 0.000578*h*t
	case h < 50:
		emc = 2.22749 + 0.160107*h - 0.01478*t
	default:
		emc = 21.0606 + 0.005565*h*h - 0.00035*h*t - 0.483199*h
	}

	if emc < 0 {
		emc = 0
	}
	return &emc
}

// Fosberg computes the Fosberg Fire Weather Index from temperature
// (Fahrenheit), relative humidity, and sustained wind speed (mph). The index
// combines a humidity-and-temperature-driven moisture damping coefficient
// with wind: eta * sqrt(1 + wind^2) / 0.3002. Typical values run 0-100,
// with extreme conditions exceeding 100. Returns nil if any input is nil.
func Fosberg(tempF, humidityPct, windMph *float64) *float64 {
	if windMph == nil {
		return nil
	}
	emc := EquilibriumMoistureContent(tempF, humidityPct)
	if emc == nil {
		return nil
	}

	m := *emc / 30.0
	eta := 1 - 2*m + 1.5*m*m - 0.5*m*m*m

	ffwi := eta * math.Sqrt(1+*windMph**windMph) / 0.3002
	if ffwi < 0 {
		ffwi = 0
	}
	return &ffwi
}

// HainesApprox computes an approximation of the Haines Index from surface
// readings alone. The true index needs upper-air soundings which RAWS
// stations cannot provide, so the 1-3 stability sub-score comes from surface
// temperature banding and the 1-3 moisture sub-score from humidity banding.
// The sum ranges 2 (very low potential) to 6 (high potential). Returns nil
// if either input is nil.
func HainesApprox(tempF, humidityPct *float64) *int {
	if tempF == nil || humidityPct == nil {
		return nil
	}

	stability := 1
	switch {
	case *tempF >= 90:
		stability = 3
	case *tempF >= 75:
		stability = 2
	}

	moisture := 1
	switch {
	case *humidityPct < 20:
		moisture = 3
	case *humidityPct < 45:
		moisture = 2
	}

	sum := stability + moisture
	return &sum
}

// Chandler computes the Chandler Burning Index from temperature (Fahrenheit),
// relative humidity, and 10-hour fuel moisture. The classical CBI formula
// uses temperature and humidity; fuel moisture (the sensor value when
// present, otherwise the EMC estimate) enters as a bounded dryness multiplier
// so parched fuels raise the index and saturated fuels damp it. Floored at 0.
// Returns nil if temperature or humidity is nil.
func Chandler(tempF, humidityPct, fuelMoisturePct *float64) *float64 {
	if tempF == nil || humidityPct == nil {
		return nil
	}

	tc := (*tempF - 32.0) * 5.0 / 9.0
	rh := clamp(*humidityPct, 0, 100)

	base := (((110 - 1.373*rh) - 0.54*(10.20-tc)) * (124 * math.Pow(10, -0.0142*rh))) / 60

	fm := fuelMoisturePct
	if fm == nil {
		fm = EquilibriumMoistureContent(tempF, humidityPct)
	}
	if fm != nil {
		base *= clamp(1.5-*fm/20.0, 0.5, 1.5)
	}

	if base < 0 {
		base = 0
	}
	return &base
}

// IsRedFlag reports whether humidity and wind meet red-flag thresholds.
// Strict mode requires humidity below 15% with wind above 25 mph. Relaxed
// mode additionally triggers on humidity below 20% with wind above 20 mph,
// so its true cases are a superset of strict mode's.
func IsRedFlag(humidityPct, windMph float64, strict bool) bool {
	if humidityPct < 15 && windMph > 25 {
		return true
	}
	if strict {
		return false
	}
	return humidityPct < 20 && windMph > 20
}

// Classify maps conditions to one of five danger tiers. Direct overrides
// force Extreme: humidity below 10%, fuel moisture below 5%, or strict
// red-flag conditions. Otherwise the tier bands on the Chandler value using
// its standard rating breakpoints. A nil Chandler value (missing inputs)
// classifies as Moderate, the neutral tier.
func Classify(humidityPct, windMph float64, fuelMoisturePct, chandler *float64) DangerClass {
	if humidityPct < 10 {
		return DangerExtreme
	}
	if fuelMoisturePct != nil && *fuelMoisturePct < 5 {
		return DangerExtreme
	}
	if IsRedFlag(humidityPct, windMph, true) {
		return DangerExtreme
	}

	if chandler == nil {
		return DangerModerate
	}
	switch {
	case *chandler < 50:
		return DangerLow
	case *chandler < 75:
		return DangerModerate
	case *chandler < 90:
		return DangerHigh
	case *chandler < 97.5:
		return DangerVeryHigh
	default:
		return DangerExtreme
	}
}

// IgnitionProbability scores the likelihood of ignition as an additive point
// total from temperature, humidity, and wind bands, capped at 100 percent.
func IgnitionProbability(tempF, humidityPct, windMph float64) int {
	score := 0

	switch {
	case tempF >= 100:
		score += 30
	case tempF >= 90:
		score += 25
	case tempF >= 80:
		score += 20
	case tempF >= 70:
		score += 10
	default:
		score += 5
	}

	switch {
	case humidityPct < 10:
		score += 40
	case humidityPct < 15:
		score += 35
	case humidityPct < 20:
		score += 30
	case humidityPct < 30:
		score += 20
	case humidityPct < 40:
		score += 10
	}

	switch {
	case windMph > 30:
		score += 30
	case windMph > 20:
		score += 25
	case windMph > 10:
		score += 15
	case windMph > 5:
		score += 5
	}

	if score > 100 {
		score = 100
	}
	return score
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
