// Package units provides shared constants and conversions between the SI
// quantities used internally and the foot-based quantities encounter
// configurations are quoted in.
package units

// MetersPerFoot is the international foot, exact by definition.
const MetersPerFoot = 0.3048

// FeetToMeters converts a length quoted in feet to metres.
func FeetToMeters(ft float64) float64 {
	return ft * MetersPerFoot
}

// MetersToFeet converts a length in metres to feet.
func MetersToFeet(m float64) float64 {
	return m / MetersPerFoot
}

// Display unit constants
const (
	Meters = "m"
	Feet   = "ft"
)

// ValidUnits contains all valid display unit values
var ValidUnits = []string{Meters, Feet}

// IsValid checks if the given unit is in the list of valid units
func IsValid(unit string) bool {
	for _, validUnit := range ValidUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// GetValidUnitsString returns a comma-separated string of valid units for error messages
func GetValidUnitsString() string {
	return "m, ft"
}

// ConvertLength converts a length from metres to the target display units.
// Generators work in metres throughout.
func ConvertLength(meters float64, targetUnits string) float64 {
	switch targetUnits {
	case Feet:
		return MetersToFeet(meters)
	case Meters:
		return meters
	default:
		return meters // default to metres if unknown unit
	}
}

// ConvertSpeed converts a speed from metres per second to the units matching
// the target length units (ft -> ft/s, m -> m/s).
func ConvertSpeed(speedMPS float64, targetUnits string) float64 {
	switch targetUnits {
	case Feet:
		return MetersToFeet(speedMPS)
	case Meters:
		return speedMPS
	default:
		return speedMPS
	}
}

// SpeedUnitLabel returns the display label for speeds in the target units.
func SpeedUnitLabel(targetUnits string) string {
	if targetUnits == Feet {
		return "ft/s"
	}
	return "m/s"
}
