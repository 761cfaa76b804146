package scene

import (
	"github.com/Alex1A1ndrA/KompGraf/pkg/core"
	"github.com/Alex1A1ndrA/KompGraf/pkg/geometry"
)

// SkyColor is the background returned for rays that escape the scene
var SkyColor = core.NewVec3(0.5, 0.7, 1.0)

// Scene contains all the elements needed for rendering.
// It is read-only while a frame is in flight.
type Scene struct {
	Surfaces   []geometry.Surface // Owned by the scene; order breaks ties
	Background core.Vec3
	Camera     geometry.Camera // Recommended starting camera
	MaxDepth   int             // Recommended recursion depth, 0 = renderer default
}

// NewScene creates a scene with the sky background and the given surfaces
func NewScene(surfaces ...geometry.Surface) *Scene {
	return &Scene{
		Surfaces:   surfaces,
		Background: SkyColor,
		Camera:     geometry.NewCamera(core.NewVec3(0, 0, 0), 90, 0),
	}
}

// Add appends a surface to the scene
func (s *Scene) Add(surface geometry.Surface) {
	s.Surfaces = append(s.Surfaces, surface)
}

// FindNearest returns the surface with the smallest non-negative hit distance.
// When two surfaces report the same distance the one added first wins.
func (s *Scene) FindNearest(ray core.Ray) (geometry.Surface, float64, bool) {
	var nearest geometry.Surface
	nearestT := 0.0

	for _, surface := range s.Surfaces {
		t, isHit := surface.Intersect(ray)
		if !isHit || t < 0 {
			continue
		}
		if nearest == nil || t < nearestT {
			nearest = surface
			nearestT = t
		}
	}

	return nearest, nearestT, nearest != nil
}

// Spheres returns the scene's spheres in insertion order
func (s *Scene) Spheres() []*geometry.Sphere {
	var spheres []*geometry.Sphere
	for _, surface := range s.Surfaces {
		if sphere, ok := surface.(*geometry.Sphere); ok {
			spheres = append(spheres, sphere)
		}
	}
	return spheres
}

// Reflectivity returns the reflectivity of the first sphere, or 0 without spheres
func (s *Scene) Reflectivity() float64 {
	spheres := s.Spheres()
	if len(spheres) == 0 {
		return 0
	}
	return spheres[0].Reflectivity()
}

// SetReflectivity sets every sphere's reflectivity, clamped to [0,1].
// Only call between frames.
func (s *Scene) SetReflectivity(reflectivity float64) {
	for _, sphere := range s.Spheres() {
		sphere.SetReflectivity(reflectivity)
	}
}

// AdjustReflectivity shifts each sphere's reflectivity by delta, clamping
// each to [0,1]. Differences between spheres are kept until a clamp is hit.
// Only call between frames.
func (s *Scene) AdjustReflectivity(delta float64) {
	for _, sphere := range s.Spheres() {
		sphere.SetReflectivity(sphere.Reflectivity() + delta)
	}
}

// GetPrimitiveCount returns the total number of surfaces in the scene
func (s *Scene) GetPrimitiveCount() int {
	return len(s.Surfaces)
}
