package world

import (
	"math"
	"math/rand"
)

// Vec3 is a position or direction in arena space. The ground plane is X/Z;
// Y is height and is ignored by all planar distance checks.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Rotation is a view orientation in radians.
type Rotation struct {
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
}

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

// PlanarDist returns the Euclidean distance on the ground plane.
func PlanarDist(a, b Vec3) float64 {
	dx := a.X - b.X
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dz*dz)
}

// PlanarLen returns the ground-plane length of a vector.
func (v Vec3) PlanarLen() float64 {
	return math.Sqrt(v.X*v.X + v.Z*v.Z)
}

// PlanarNormalized returns the vector scaled to unit planar length, Y zeroed.
// The zero vector is returned unchanged.
func (v Vec3) PlanarNormalized() Vec3 {
	l := v.PlanarLen()
	if l == 0 {
		return Vec3{}
	}
	return Vec3{X: v.X / l, Z: v.Z / l}
}

// PlanarDot returns the ground-plane dot product.
func PlanarDot(a, b Vec3) float64 {
	return a.X*b.X + a.Z*b.Z
}

// RandomPlanarDir returns a unit vector with a uniformly random heading.
func RandomPlanarDir(rng *rand.Rand) Vec3 {
	theta := rng.Float64() * 2 * math.Pi
	return Vec3{X: math.Cos(theta), Z: math.Sin(theta)}
}

// Finite reports whether all components are finite numbers. Client-supplied
// positions are discarded when this is false.
func (v Vec3) Finite() bool {
	return finite(v.X) && finite(v.Y) && finite(v.Z)
}

func (r Rotation) Finite() bool {
	return finite(r.Pitch) && finite(r.Yaw)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
