package trajectory

import "github.com/airside-data/nearmiss.report/internal/geom"

// Flight pairs an aircraft's planned trajectory with its operational-intent
// envelope and physical dimensions. All fields are value-like; the only
// supported mutation is replacing Path wholesale (the opposite-direction
// generator swaps in a mirrored path).
type Flight struct {
	// Path is the planned trajectory.
	Path *FlightPath
	// OpIntent is the operational-intent envelope: the volume the operation
	// declares it will stay inside.
	OpIntent geom.Box
	// Size holds the aircraft bounding-box dimensions (length, wingspan,
	// height).
	Size geom.Vec3
}
