package world

import (
	"math"
	"math/rand"
)

// Obstacle is a static axis-aligned footprint on the ground plane.
type Obstacle struct {
	MinX float64 `json:"minX"`
	MinZ float64 `json:"minZ"`
	MaxX float64 `json:"maxX"`
	MaxZ float64 `json:"maxZ"`
}

// Contains reports whether the point lies inside the footprint expanded by
// margin on every side.
func (o Obstacle) Contains(p Vec3, margin float64) bool {
	return p.X >= o.MinX-margin && p.X <= o.MaxX+margin &&
		p.Z >= o.MinZ-margin && p.Z <= o.MaxZ+margin
}

// Center returns the footprint's midpoint on the ground plane.
func (o Obstacle) Center() Vec3 {
	return Vec3{X: (o.MinX + o.MaxX) / 2, Z: (o.MinZ + o.MaxZ) / 2}
}

// Arena is the circular play area of one match. SafeRadius only ever
// decreases once the shrink phase begins, floored at FinalRadius.
type Arena struct {
	InitialRadius float64
	FinalRadius   float64
	SafeRadius    float64
	Obstacles     []Obstacle
}

// InBounds reports whether the point lies inside the current safe radius.
func (a *Arena) InBounds(p Vec3) bool {
	return p.PlanarLen() <= a.SafeRadius
}

// Clamp pulls a point back onto the safe-radius boundary if it lies outside.
// Height is preserved.
func (a *Arena) Clamp(p Vec3) Vec3 {
	l := p.PlanarLen()
	if l <= a.SafeRadius || l == 0 {
		return p
	}
	s := a.SafeRadius / l
	return Vec3{X: p.X * s, Y: p.Y, Z: p.Z * s}
}

// SetSafeRadius applies a shrink step. The radius never grows and never
// drops below the final radius.
func (a *Arena) SetSafeRadius(r float64) {
	if r < a.FinalRadius {
		r = a.FinalRadius
	}
	if r < a.SafeRadius {
		a.SafeRadius = r
	}
}

// FullyShrunk reports whether the contraction has reached its floor.
func (a *Arena) FullyShrunk() bool {
	return a.SafeRadius <= a.FinalRadius
}

// BlockedByObstacle reports whether the point overlaps any obstacle footprint.
func (a *Arena) BlockedByObstacle(p Vec3, margin float64) bool {
	for _, o := range a.Obstacles {
		if o.Contains(p, margin) {
			return true
		}
	}
	return false
}

const placementRetries = 32

// RandomPosition returns a uniformly distributed in-bounds point,
// rejection-sampled against obstacle footprints. When the retry budget is
// exhausted the last candidate is nudged outward from the nearest obstacle
// until clear or a second budget is spent.
func (a *Arena) RandomPosition(rng *rand.Rand, margin float64) Vec3 {
	var p Vec3
	for i := 0; i < placementRetries; i++ {
		// sqrt for uniform density over the disc
		r := a.SafeRadius * math.Sqrt(rng.Float64())
		theta := rng.Float64() * 2 * math.Pi
		p = Vec3{X: r * math.Cos(theta), Z: r * math.Sin(theta)}
		if !a.BlockedByObstacle(p, margin) {
			return p
		}
	}
	return a.nudgeClear(p, margin)
}

// nudgeClear pushes a point away from the nearest obstacle center in small
// steps until it no longer overlaps, or the budget runs out.
func (a *Arena) nudgeClear(p Vec3, margin float64) Vec3 {
	nearest := a.nearestObstacle(p)
	if nearest == nil {
		return p
	}
	dir := p.Sub(nearest.Center()).PlanarNormalized()
	if dir.PlanarLen() == 0 {
		dir = Vec3{X: 1}
	}
	for i := 0; i < placementRetries; i++ {
		p = a.Clamp(p.Add(dir.Scale(1.0)))
		if !a.BlockedByObstacle(p, margin) {
			return p
		}
	}
	return p
}

func (a *Arena) nearestObstacle(p Vec3) *Obstacle {
	var nearest *Obstacle
	best := math.Inf(1)
	for i := range a.Obstacles {
		d := PlanarDist(p, a.Obstacles[i].Center())
		if d < best {
			best = d
			nearest = &a.Obstacles[i]
		}
	}
	return nearest
}
