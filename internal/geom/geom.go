// Package geom provides the small geometric value types shared by the
// encounter generators: 3-component vectors and axis-aligned boxes in the
// local encounter frame (x longitudinal, y lateral, z vertical, metres).
package geom

// Vec3 is a 3-component vector. Value semantics throughout: operations
// return new vectors and never mutate the receiver.
type Vec3 struct {
	X float64
	Y float64
	Z float64
}

// Add returns the componentwise sum v + o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// Sub returns the componentwise difference v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

// Scale returns v with every component multiplied by s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Box is an axis-aligned box described by its lower and upper corners.
// A box built by BoxAround with non-negative sizes satisfies
// Lower <= Upper componentwise.
type Box struct {
	Lower Vec3
	Upper Vec3
}

// BoxAround returns the axis-aligned box of the given size centred on
// center, i.e. spanning center ± size/2 on each axis.
func BoxAround(center, size Vec3) Box {
	half := size.Scale(0.5)
	return Box{
		Lower: center.Sub(half),
		Upper: center.Add(half),
	}
}

// Contains reports whether p lies inside the box. Boundary points count as
// inside.
func (b Box) Contains(p Vec3) bool {
	return p.X >= b.Lower.X && p.X <= b.Upper.X &&
		p.Y >= b.Lower.Y && p.Y <= b.Upper.Y &&
		p.Z >= b.Lower.Z && p.Z <= b.Upper.Z
}

// Size returns the box extent along each axis.
func (b Box) Size() Vec3 {
	return b.Upper.Sub(b.Lower)
}

// Center returns the box midpoint.
func (b Box) Center() Vec3 {
	return b.Lower.Add(b.Upper).Scale(0.5)
}
