package geometry

import (
	"math"

	"github.com/Alex1A1ndrA/KompGraf/pkg/core"
)

// Sphere represents a solid-colored, optionally mirrored sphere
type Sphere struct {
	Center core.Vec3
	Radius float64
	Color  core.Vec3 // Base color in [0,1]^3
	// Mirror blend factor in [0,1]; zero disables reflection
	Reflection float64
}

// NewSphere creates a new sphere
func NewSphere(center core.Vec3, radius float64, color core.Vec3, reflectivity float64) *Sphere {
	return &Sphere{
		Center:     center,
		Radius:     radius,
		Color:      color,
		Reflection: reflectivity,
	}
}

// Intersect tests if a ray intersects with the sphere.
// The ray direction is unit length, so the quadratic's leading coefficient is 1.
func (s *Sphere) Intersect(ray core.Ray) (float64, bool) {
	// Vector from sphere center to ray origin
	oc := ray.Origin.Subtract(s.Center)

	b := 2 * oc.Dot(ray.Direction)
	c := oc.Dot(oc) - s.Radius*s.Radius

	discriminant := b*b - 4*c
	if discriminant < 0 {
		return 0, false
	}

	sqrtD := math.Sqrt(discriminant)
	t0 := (-b - sqrtD) / 2
	t1 := (-b + sqrtD) / 2

	// Prefer the near root; fall back to the far one when the origin is
	// inside the sphere
	if t0 >= 0 {
		return t0, true
	}
	if t1 >= 0 {
		return t1, true
	}
	return 0, false
}

// NormalAt returns the outward normal (from center to point)
func (s *Sphere) NormalAt(point core.Vec3) core.Vec3 {
	return point.Subtract(s.Center).Normalize()
}

// ColorAt returns the sphere's uniform base color
func (s *Sphere) ColorAt(point core.Vec3) core.Vec3 {
	return s.Color
}

// IsReflective reports whether the sphere mirrors anything at all
func (s *Sphere) IsReflective() bool {
	return s.Reflection > 0
}

// Reflectivity returns the mirror blend factor
func (s *Sphere) Reflectivity() float64 {
	return s.Reflection
}

// SetReflectivity updates the mirror blend factor, clamped to [0,1].
// Must not be called while a frame is rendering.
func (s *Sphere) SetReflectivity(reflectivity float64) {
	s.Reflection = max(0, min(1, reflectivity))
}

func (s *Sphere) surface() {}
