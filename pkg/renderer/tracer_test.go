package renderer

import (
	"image/color"
	"math"
	"testing"

	"github.com/Alex1A1ndrA/KompGraf/pkg/core"
	"github.com/Alex1A1ndrA/KompGraf/pkg/geometry"
	"github.com/Alex1A1ndrA/KompGraf/pkg/material"
	"github.com/Alex1A1ndrA/KompGraf/pkg/scene"
)

func vecClose(a, b core.Vec3, tolerance float64) bool {
	return math.Abs(a.X-b.X) <= tolerance &&
		math.Abs(a.Y-b.Y) <= tolerance &&
		math.Abs(a.Z-b.Z) <= tolerance
}

func TestTrace_DepthZeroIsBlack(t *testing.T) {
	scenes := map[string]*scene.Scene{
		"default": scene.NewDefaultScene(scene.DefaultTextures(), scene.DefaultReflectivity),
		"empty":   scene.NewEmptyScene(),
	}
	rays := []core.Ray{
		core.NewRay(core.NewVec3(0, 1, 5), core.NewVec3(0, 0, -1)),
		core.NewRay(core.NewVec3(0, 1, 5), core.NewVec3(0, -1, -1)),
		core.NewRay(core.NewVec3(3, 3, 3), core.NewVec3(1, 2, 3)),
	}

	for name, s := range scenes {
		t.Run(name, func(t *testing.T) {
			for _, ray := range rays {
				for _, depth := range []int{0, -1} {
					if got := Trace(ray, s, depth); got != (core.Vec3{}) {
						t.Errorf("Trace(depth=%d) = %v, want black", depth, got)
					}
				}
			}
		})
	}
}

func TestTrace_EmptySceneReturnsBackground(t *testing.T) {
	s := scene.NewEmptyScene()
	directions := []core.Vec3{
		core.NewVec3(0, 0, -1),
		core.NewVec3(0, 1, 0),
		core.NewVec3(-1, -1, 0.5),
	}

	for _, d := range directions {
		got := Trace(core.NewRay(core.NewVec3(0, 0, 0), d), s, DefaultMaxDepth)
		if got != scene.SkyColor {
			t.Errorf("direction %v: expected background %v, got %v", d, scene.SkyColor, got)
		}
	}

	s.Background = core.NewVec3(0.1, 0.2, 0.3)
	if got := Trace(core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1)), s, 1); got != s.Background {
		t.Errorf("Expected custom background, got %v", got)
	}
}

func TestTrace_OpaqueSphere(t *testing.T) {
	red := core.NewVec3(1, 0, 0)
	sphere := geometry.NewSphere(core.NewVec3(0, 0, -5), 1, red, 0)
	s := scene.NewScene(sphere)

	camera := geometry.NewCamera(core.NewVec3(0, 0, 0), 90, 0)
	ray := camera.GetRay(1, 1, 3, 3)

	dist, hit := sphere.Intersect(ray)
	if !hit || math.Abs(dist-4) > 1e-9 {
		t.Fatalf("Expected hit at t=4, got t=%f hit=%v", dist, hit)
	}
	if got := Trace(ray, s, DefaultMaxDepth); got != red {
		t.Errorf("Expected exactly %v, got %v", red, got)
	}
}

func TestTrace_ReflectiveSphereIntoEmptyScene(t *testing.T) {
	red := core.NewVec3(1, 0, 0)
	s := scene.NewScene(geometry.NewSphere(core.NewVec3(0, 0, -5), 1, red, 0.5))

	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))
	got := Trace(ray, s, DefaultMaxDepth)

	expected := red.Multiply(0.5).Add(scene.SkyColor.Multiply(0.5))
	if !vecClose(got, expected, 1e-12) {
		t.Errorf("Expected %v, got %v", expected, got)
	}
}

func TestTrace_MirrorShowsWhatIsBehindCamera(t *testing.T) {
	green := core.NewVec3(0, 1, 0)
	mirror := geometry.NewSphere(core.NewVec3(0, 0, -5), 1, core.NewVec3(1, 1, 1), 1)
	behind := geometry.NewSphere(core.NewVec3(0, 0, 5), 1, green, 0)
	s := scene.NewScene(mirror, behind)

	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))

	tests := []struct {
		name     string
		depth    int
		expected core.Vec3
	}{
		{"one bounce allowed", 2, green},
		{"bounce cut off", 1, core.Vec3{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Trace(ray, s, tt.depth)
			if !vecClose(got, tt.expected, 1e-12) {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestTrace_ReflectionLaw(t *testing.T) {
	// A 45 degree ray off a perfect mirror sphere must leave at 45 degrees
	// and hit the marker sphere placed along the mirrored direction
	marker := core.NewVec3(0, 0, 1)
	mirror := geometry.NewSphere(core.NewVec3(0, -10, 0), 10, core.NewVec3(1, 1, 1), 1)
	target := geometry.NewSphere(core.NewVec3(5, 5, 0), 1, marker, 0)
	s := scene.NewScene(mirror, target)

	ray := core.NewRay(core.NewVec3(-5, 5, 0), core.NewVec3(1, -1, 0))
	normal := core.NewVec3(0, 1, 0)
	reflected := ray.Direction.Reflect(normal)

	if math.Abs(reflected.Dot(normal)+ray.Direction.Dot(normal)) > 1e-12 {
		t.Errorf("Expected reflected·n = -incoming·n, got %f and %f", reflected.Dot(normal), ray.Direction.Dot(normal))
	}
	if got := Trace(ray, s, DefaultMaxDepth); !vecClose(got, marker, 1e-12) {
		t.Errorf("Expected the mirror to show the marker %v, got %v", marker, got)
	}
}

func TestTrace_PlaneWithoutReflectivityKeepsTexture(t *testing.T) {
	texture := material.NewSolidTexture(color.RGBA{R: 51, G: 102, B: 204, A: 255})
	plane := geometry.NewTexturedPlane(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0), texture, 0.1, true)
	s := scene.NewScene(plane)

	got := Trace(core.NewRay(core.NewVec3(0, 1, 0), core.NewVec3(0, -1, -1)), s, DefaultMaxDepth)
	expected := core.NewVec3(0.2, 0.4, 0.8)
	if !vecClose(got, expected, 1e-12) {
		t.Errorf("Expected texture color %v, got %v", expected, got)
	}
}
