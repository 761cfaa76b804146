package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Alex1A1ndrA/KompGraf/pkg/core"
)

// Camera is a pinhole camera looking down -Z, optionally turned about +Y
type Camera struct {
	Position core.Vec3
	FOV      float64 // Vertical field of view in degrees
	Yaw      float64 // Degrees about +Y; positive turns the view to the left
}

// NewCamera creates a camera
func NewCamera(position core.Vec3, fov, yaw float64) Camera {
	return Camera{Position: position, FOV: fov, Yaw: yaw}
}

// Moved returns a copy of the camera translated by delta
func (c Camera) Moved(delta core.Vec3) Camera {
	c.Position = c.Position.Add(delta)
	return c
}

// Projection maps pixel coordinates of a fixed-size image to primary rays.
// It is computed once per frame and is safe for concurrent use.
type Projection struct {
	origin   core.Vec3
	width    float64
	height   float64
	aspect   float64
	scale    float64
	rotation r3.Rotation
}

// Project prepares the per-frame projection for a width x height image
func (c Camera) Project(width, height int) Projection {
	return Projection{
		origin:   c.Position,
		width:    float64(width),
		height:   float64(height),
		aspect:   float64(width) / float64(height),
		scale:    math.Tan(c.FOV * 0.5 * math.Pi / 180),
		rotation: r3.NewRotation(c.Yaw*math.Pi/180, r3.Vec{Y: 1}),
	}
}

// Ray returns the primary ray through the center of pixel (x, y).
// Row 0 is the top of the image.
func (p Projection) Ray(x, y int) core.Ray {
	px := (2*(float64(x)+0.5)/p.width - 1) * p.aspect * p.scale
	py := (1 - 2*(float64(y)+0.5)/p.height) * p.scale

	dir := p.rotation.Rotate(r3.Vec{X: px, Y: py, Z: -1})
	return core.NewRay(p.origin, core.NewVec3(dir.X, dir.Y, dir.Z))
}

// GetRay generates the primary ray for pixel (x, y) of a width x height image
func (c Camera) GetRay(x, y, width, height int) core.Ray {
	return c.Project(width, height).Ray(x, y)
}
