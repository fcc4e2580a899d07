package fireweather

import "fmt"

// FosbergInterpretation renders a Fosberg value as a short operational reading.
func FosbergInterpretation(v *float64) string {
	if v == nil {
		return "Fosberg FFWI unavailable: temperature, humidity, or wind not reported."
	}
	switch {
	case *v < 25:
		return fmt.Sprintf("FFWI %.0f: low fire weather potential.", *v)
	case *v < 50:
		return fmt.Sprintf("FFWI %.0f: moderate fire weather potential.", *v)
	case *v < 75:
		return fmt.Sprintf("FFWI %.0f: high fire weather potential.", *v)
	default:
		return fmt.Sprintf("FFWI %.0f: extreme fire weather potential.", *v)
	}
}

// HainesInterpretation renders an approximate Haines value.
func HainesInterpretation(v *int) string {
	if v == nil {
		return "Haines Index unavailable: temperature or humidity not reported."
	}
	switch {
	case *v <= 3:
		return fmt.Sprintf("Haines %d (surface approximation): very low potential for large plume-driven fire growth.", *v)
	case *v == 4:
		return fmt.Sprintf("Haines %d (surface approximation): low potential for large fire growth.", *v)
	case *v == 5:
		return fmt.Sprintf("Haines %d (surface approximation): moderate potential for large fire growth.", *v)
	default:
		return fmt.Sprintf("Haines %d (surface approximation): high potential for large fire growth.", *v)
	}
}

// ChandlerInterpretation renders a Chandler Burning Index value.
func ChandlerInterpretation(v *float64) string {
	if v == nil {
		return "Chandler Burning Index unavailable: temperature or humidity not reported."
	}
	switch {
	case *v < 50:
		return fmt.Sprintf("CBI %.0f: low burning conditions.", *v)
	case *v < 75:
		return fmt.Sprintf("CBI %.0f: moderate burning conditions.", *v)
	case *v < 90:
		return fmt.Sprintf("CBI %.0f: high burning conditions.", *v)
	case *v < 97.5:
		return fmt.Sprintf("CBI %.0f: very high burning conditions.", *v)
	default:
		return fmt.Sprintf("CBI %.0f: extreme burning conditions.", *v)
	}
}

// DangerInterpretation renders the composite danger class with the red-flag
// state folded in.
func DangerInterpretation(class DangerClass, redFlag bool) string {
	s := fmt.Sprintf("Composite fire danger: %s.", class)
	if redFlag {
		s += " Red flag conditions present: low humidity combined with high wind."
	}
	return s
}
