package geometry

import (
	"math"

	"github.com/Alex1A1ndrA/KompGraf/pkg/core"
	"github.com/Alex1A1ndrA/KompGraf/pkg/material"
)

const (
	// parallelEpsilon is the smallest |n·d| still treated as a crossing
	parallelEpsilon = 1e-6
	// axisAlignment is the |normal component| above which a plane counts as axis-aligned
	axisAlignment = 0.999
)

// TexturedPlane represents an infinite plane defined by a point and normal,
// colored by a tiling image texture
type TexturedPlane struct {
	Point      core.Vec3 // A point on the plane
	Normal     core.Vec3 // Unit normal
	Texture    *material.ImageTexture
	UVScale    float64 // World units to texture repeats
	Reflective bool
}

// NewTexturedPlane creates a new plane; the normal is normalized here
func NewTexturedPlane(point, normal core.Vec3, texture *material.ImageTexture, uvScale float64, reflective bool) *TexturedPlane {
	return &TexturedPlane{
		Point:      point,
		Normal:     normal.Normalize(),
		Texture:    texture,
		UVScale:    uvScale,
		Reflective: reflective,
	}
}

// Intersect tests if a ray intersects with the plane
func (p *TexturedPlane) Intersect(ray core.Ray) (float64, bool) {
	denominator := p.Normal.Dot(ray.Direction)

	// Ray parallel to the plane
	if math.Abs(denominator) < parallelEpsilon {
		return 0, false
	}

	// t = (point_on_plane - ray_origin) · normal / (ray_direction · normal)
	t := p.Point.Subtract(ray.Origin).Dot(p.Normal) / denominator
	if t < 0 {
		return 0, false
	}
	return t, true
}

// NormalAt returns the plane normal, which is the same everywhere
func (p *TexturedPlane) NormalAt(point core.Vec3) core.Vec3 {
	return p.Normal
}

// UV projects a point onto unwrapped texture coordinates.
// Horizontal planes map (x,z), planes facing ±Z map (x,y); any other
// orientation is unsupported and maps every point to (0,0).
func (p *TexturedPlane) UV(point core.Vec3) (float64, float64) {
	switch {
	case math.Abs(p.Normal.Y) > axisAlignment:
		return point.X * p.UVScale, point.Z * p.UVScale
	case math.Abs(p.Normal.Z) > axisAlignment:
		return point.X * p.UVScale, point.Y * p.UVScale
	default:
		return 0, 0
	}
}

// ColorAt samples the texture at the point's wrapped UV coordinates
func (p *TexturedPlane) ColorAt(point core.Vec3) core.Vec3 {
	return p.Texture.Evaluate(p.UV(point))
}

// IsReflective reports the plane's mirror flag
func (p *TexturedPlane) IsReflective() bool {
	return p.Reflective
}

// Reflectivity is always zero for planes: the flag alone triggers a bounce,
// and the bounce contributes nothing to the blend
func (p *TexturedPlane) Reflectivity() float64 {
	return 0
}

func (p *TexturedPlane) surface() {}
