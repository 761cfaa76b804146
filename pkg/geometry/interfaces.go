package geometry

import "github.com/Alex1A1ndrA/KompGraf/pkg/core"

// Surface is a shape that can be intersected, shaded and mirrored.
// The set of implementations is closed: *Sphere and *TexturedPlane.
type Surface interface {
	// Intersect returns the smallest non-negative ray parameter at which
	// the ray meets the surface
	Intersect(ray core.Ray) (float64, bool)

	// NormalAt returns the outward unit normal at a point on the surface
	NormalAt(point core.Vec3) core.Vec3

	// ColorAt returns the albedo in [0,1]^3 at a point on the surface
	ColorAt(point core.Vec3) core.Vec3

	IsReflective() bool
	Reflectivity() float64

	surface()
}

// Compile time checks for the closed variant set
var (
	_ Surface = (*Sphere)(nil)
	_ Surface = (*TexturedPlane)(nil)
)
