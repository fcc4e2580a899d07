// Package units provides stateless conversions between the metric values
// reported by upstream weather APIs and the imperial units used throughout
// the canonical observation model, plus compass and rounding helpers.
package units

import "math"

// CToF converts degrees Celsius to degrees Fahrenheit.
func CToF(c float64) float64 {
	return c*9.0/5.0 + 32.0
}

// FToC converts degrees Fahrenheit to degrees Celsius.
func FToC(f float64) float64 {
	return (f - 32.0) * 5.0 / 9.0
}

// MpsToMph converts meters per second to miles per hour.
func MpsToMph(mps float64) float64 {
	return mps * 2.236936
}

// MetersToFeet converts meters to feet.
func MetersToFeet(m float64) float64 {
	return m * 3.28084
}

// FeetToMeters converts feet to meters.
func FeetToMeters(ft float64) float64 {
	return ft / 3.28084
}

// MmToInches converts millimeters to inches.
func MmToInches(mm float64) float64 {
	return mm / 25.4
}

// MilesToKm converts statute miles to kilometers.
func MilesToKm(mi float64) float64 {
	return mi * 1.609344
}

// Round rounds to the nearest integer, halves away from zero.
func Round(v float64) int {
	return int(math.Round(v))
}

// RoundTo rounds to the given number of decimal places.
func RoundTo(v float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(v*pow) / pow
}

const earthRadiusMiles = 3958.8

// HaversineMiles returns the great-circle distance in statute miles between
// two WGS-84 coordinate pairs.
func HaversineMiles(lat1, lon1, lat2, lon2 float64) float64 {
	const degToRad = math.Pi / 180.0

	dLat := (lat2 - lat1) * degToRad
	dLon := (lon2 - lon1) * degToRad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*degToRad)*math.Cos(lat2*degToRad)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	return 2 * earthRadiusMiles * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
