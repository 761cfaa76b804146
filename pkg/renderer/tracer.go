package renderer

import (
	"github.com/Alex1A1ndrA/KompGraf/pkg/core"
	"github.com/Alex1A1ndrA/KompGraf/pkg/scene"
)

// DefaultMaxDepth is the reflection recursion limit used when neither the
// renderer config nor the scene asks for another
const DefaultMaxDepth = 5

// reflectionOffset moves reflected ray origins off the surface they leave
const reflectionOffset = 1e-4

// Trace returns the color seen along a ray, following at most depth
// reflections. Depth 0 is black; rays that hit nothing see the scene background.
func Trace(ray core.Ray, s *scene.Scene, depth int) core.Vec3 {
	color, _ := trace(ray, s, depth)
	return color
}

// trace also reports whether the ray itself hit a surface
func trace(ray core.Ray, s *scene.Scene, depth int) (core.Vec3, bool) {
	if depth <= 0 {
		return core.Vec3{}, false
	}

	surface, t, hit := s.FindNearest(ray)
	if !hit {
		return s.Background, false
	}

	point := ray.At(t)
	normal := surface.NormalAt(point)
	color := surface.ColorAt(point)

	if !surface.IsReflective() {
		return color, true
	}

	reflected := ray.Direction.Reflect(normal).Normalize()
	reflectedRay := core.NewRay(point.Add(reflected.Multiply(reflectionOffset)), reflected)
	reflectedColor, _ := trace(reflectedRay, s, depth-1)

	k := surface.Reflectivity()
	return color.Multiply(1 - k).Add(reflectedColor.Multiply(k)), true
}
