package units

import "math"

// CardinalUnknown is returned when no wind direction was reported. It is an
// explicit label so downstream output never carries a fabricated heading.
const CardinalUnknown = "Unknown"

// cardinals lists the 16 compass labels clockwise from north. Each label owns
// a 22.5 degree sector centered on its heading.
var cardinals = [16]string{
	"N", "NNE", "NE", "ENE",
	"E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW",
	"W", "WNW", "NW", "NNW",
}

// DegreesToCardinal maps a wind direction in degrees to one of 16 compass
// labels. Any real input is accepted: values are normalized modulo 360 first,
// so 0 and 360 both map to "N". A nil direction maps to CardinalUnknown.
func DegreesToCardinal(degrees *float64) string {
	if degrees == nil {
		return CardinalUnknown
	}

	d := math.Mod(*degrees, 360)
	if d < 0 {
		d += 360
	}

	idx := int(math.Round(d/22.5)) % 16
	return cardinals[idx]
}

// CardinalToDegrees returns the center heading of a compass label's sector.
// The second return is false for labels outside the 16-point rose, including
// CardinalUnknown.
func CardinalToDegrees(label string) (float64, bool) {
	for i, c := range cardinals {
		if c == label {
			return float64(i) * 22.5, true
		}
	}
	return 0, false
}
