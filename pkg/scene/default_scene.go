package scene

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/image/colornames"

	"github.com/Alex1A1ndrA/KompGraf/pkg/core"
	"github.com/Alex1A1ndrA/KompGraf/pkg/geometry"
	"github.com/Alex1A1ndrA/KompGraf/pkg/material"
)

// ErrUnknownScene is returned for scene names that are not built in
var ErrUnknownScene = errors.New("unknown scene")

const (
	// DefaultReflectivity is the starting mirror blend of the room's sphere
	DefaultReflectivity = 0.5
	// DefaultUVScale tiles room textures once every ten world units
	DefaultUVScale = 0.1
)

// Textures holds the image textures used by the built-in room scenes
type Textures struct {
	Floor *material.ImageTexture
	Wall  *material.ImageTexture
}

// DefaultTextures returns procedural stand-ins for the floor and wall images
func DefaultTextures() Textures {
	return Textures{
		Floor: material.NewCheckerTexture(256, 256, 32, colornames.Burlywood, colornames.Saddlebrown),
		Wall:  material.NewCheckerTexture(256, 256, 64, colornames.Lightgray, colornames.Slategray),
	}
}

// NewDefaultScene creates the room: textured floor, textured back wall and a
// white mirror sphere resting on the floor
func NewDefaultScene(textures Textures, reflectivity float64) *Scene {
	floor := geometry.NewTexturedPlane(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0), textures.Floor, DefaultUVScale, false)
	wall := geometry.NewTexturedPlane(core.NewVec3(0, 0, -5), core.NewVec3(0, 0, 1), textures.Wall, DefaultUVScale, false)
	sphere := geometry.NewSphere(core.NewVec3(0, 1, 0), 1, core.NewVec3(1, 1, 1), reflectivity)

	s := NewScene(floor, wall, sphere)
	s.Camera = geometry.NewCamera(core.NewVec3(0, 1, 5), 90, 0)
	s.MaxDepth = 5
	return s
}

// NewMirrorFloorScene is the room with a reflective floor and a row of
// colored spheres of increasing reflectivity
func NewMirrorFloorScene(textures Textures) *Scene {
	floor := geometry.NewTexturedPlane(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0), textures.Floor, DefaultUVScale, true)
	wall := geometry.NewTexturedPlane(core.NewVec3(0, 0, -6), core.NewVec3(0, 0, 1), textures.Wall, DefaultUVScale, false)

	s := NewScene(floor, wall)
	colors := []core.Vec3{
		core.NewVec3(0.9, 0.2, 0.2),
		core.NewVec3(0.2, 0.9, 0.2),
		core.NewVec3(0.2, 0.2, 0.9),
	}
	for i, c := range colors {
		x := float64(i-1) * 2.2
		s.Add(geometry.NewSphere(core.NewVec3(x, 1, -1), 1, c, 0.3*float64(i+1)))
	}
	s.Camera = geometry.NewCamera(core.NewVec3(0, 2, 6), 70, 0)
	s.MaxDepth = 5
	return s
}

// NewEmptyScene has no surfaces; every ray sees the sky
func NewEmptyScene() *Scene {
	return NewScene()
}

// Create builds a named scene. Names ending in .json are loaded as scene files.
func Create(name string, textures Textures) (*Scene, error) {
	switch {
	case name == "default" || name == "room":
		return NewDefaultScene(textures, DefaultReflectivity), nil
	case name == "mirror-floor":
		return NewMirrorFloorScene(textures), nil
	case name == "empty":
		return NewEmptyScene(), nil
	case strings.HasSuffix(name, ".json"):
		config, err := LoadConfig(name)
		if err != nil {
			return nil, err
		}
		return config.Build()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownScene, name)
	}
}

// Names lists the built-in scene names
func Names() []string {
	var names []string
	for _, info := range BuiltInScenes() {
		names = append(names, info.ID)
	}
	return names
}
