package scene

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/colornames"

	"github.com/Alex1A1ndrA/KompGraf/pkg/core"
	"github.com/Alex1A1ndrA/KompGraf/pkg/geometry"
	"github.com/Alex1A1ndrA/KompGraf/pkg/loaders"
	"github.com/Alex1A1ndrA/KompGraf/pkg/material"
)

// ErrInvalidConfig wraps every validation failure of a scene file
var ErrInvalidConfig = errors.New("invalid scene config")

// CheckerTexture is the texture name that selects the procedural checkerboard
const CheckerTexture = "checker"

// Vec is a JSON [x, y, z] triple
type Vec [3]float64

// Vec3 converts to a core vector
func (v Vec) Vec3() core.Vec3 {
	return core.NewVec3(v[0], v[1], v[2])
}

// Color is a JSON color: either an [r, g, b] array in [0,1] or an SVG color name
type Color core.Vec3

// UnmarshalJSON accepts [r,g,b] or "name"
func (c *Color) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		rgba, ok := colornames.Map[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return fmt.Errorf("unknown color name %q", name)
		}
		*c = Color{
			X: float64(rgba.R) / 255.0,
			Y: float64(rgba.G) / 255.0,
			Z: float64(rgba.B) / 255.0,
		}
		return nil
	}

	var rgb [3]float64
	if err := json.Unmarshal(data, &rgb); err != nil {
		return fmt.Errorf("color must be [r,g,b] or a color name: %w", err)
	}
	*c = Color{X: rgb[0], Y: rgb[1], Z: rgb[2]}
	return nil
}

// Vec3 converts to a core vector
func (c Color) Vec3() core.Vec3 {
	return core.Vec3(c)
}

func (c Color) valid() bool {
	for _, v := range []float64{c.X, c.Y, c.Z} {
		if !(v >= 0 && v <= 1) {
			return false
		}
	}
	return true
}

// RGBA converts to an 8-bit color, clamping out-of-range channels
func (c Color) RGBA() (r, g, b, a uint32) {
	v := core.Vec3(c).Clamp(0, 1)
	r = uint32(v.X*255.0+0.5) * 0x101
	g = uint32(v.Y*255.0+0.5) * 0x101
	b = uint32(v.Z*255.0+0.5) * 0x101
	return r, g, b, 0xffff
}

// CameraCfg is the starting camera of a scene file
type CameraCfg struct {
	Position Vec     `json:"position"`
	FOV      float64 `json:"fov,omitempty"` // degrees, defaults to 90
	Yaw      float64 `json:"yaw,omitempty"` // degrees
}

// SphereCfg describes one sphere. Color channels and reflectivity are in [0,1].
type SphereCfg struct {
	Center       Vec     `json:"center"`
	Radius       float64 `json:"radius"`
	Color        *Color  `json:"color,omitempty"` // defaults to white
	Reflectivity float64 `json:"reflectivity,omitempty"`
}

// PlaneCfg describes one textured plane
type PlaneCfg struct {
	Point  Vec `json:"point"`
	Normal Vec `json:"normal"`
	// Texture is an image path relative to the scene file, or "checker"
	Texture    string  `json:"texture,omitempty"`
	Colors     []Color `json:"colors,omitempty"`    // checker colors
	CheckSize  int     `json:"checkSize,omitempty"` // checker square size in texels
	UVScale    float64 `json:"uvScale,omitempty"`   // defaults to 0.1
	Reflective bool    `json:"reflective,omitempty"`
}

// Config is the on-disk description of a scene
type Config struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Group       string `json:"group,omitempty"`

	Camera     CameraCfg   `json:"camera"`
	Background *Color      `json:"background,omitempty"`
	MaxDepth   int         `json:"maxDepth,omitempty"`
	Spheres    []SphereCfg `json:"spheres,omitempty"`
	Planes     []PlaneCfg  `json:"planes,omitempty"`

	baseDir string // directory texture paths are resolved against
}

// LoadConfig reads and validates a JSON scene file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene file: %w", err)
	}

	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.baseDir = filepath.Dir(path)
	return cfg, nil
}

// ParseConfig decodes and validates a JSON scene description, applying defaults
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	// Defaults / validation
	if cfg.Camera.FOV == 0 {
		cfg.Camera.FOV = 90
	}
	if cfg.Camera.FOV <= 0 || cfg.Camera.FOV >= 180 {
		return nil, fmt.Errorf("%w: fov must be in (0, 180), got %g", ErrInvalidConfig, cfg.Camera.FOV)
	}
	if cfg.Background != nil && !cfg.Background.valid() {
		return nil, fmt.Errorf("%w: background channels must be in [0, 1], got %v", ErrInvalidConfig, cfg.Background.Vec3())
	}
	if cfg.MaxDepth < 0 {
		return nil, fmt.Errorf("%w: maxDepth must not be negative, got %d", ErrInvalidConfig, cfg.MaxDepth)
	}

	for i, s := range cfg.Spheres {
		if s.Radius <= 0 {
			return nil, fmt.Errorf("%w: sphere %d: radius must be > 0, got %g", ErrInvalidConfig, i, s.Radius)
		}
		if s.Reflectivity < 0 || s.Reflectivity > 1 {
			return nil, fmt.Errorf("%w: sphere %d: reflectivity must be in [0, 1], got %g", ErrInvalidConfig, i, s.Reflectivity)
		}
		if s.Color != nil && !s.Color.valid() {
			return nil, fmt.Errorf("%w: sphere %d: color channels must be in [0, 1], got %v", ErrInvalidConfig, i, s.Color.Vec3())
		}
	}

	for i := range cfg.Planes {
		p := &cfg.Planes[i]
		if p.Normal.Vec3().LengthSquared() == 0 {
			return nil, fmt.Errorf("%w: plane %d: normal must be non-zero", ErrInvalidConfig, i)
		}
		if p.UVScale == 0 {
			p.UVScale = DefaultUVScale
		}
		if p.Texture == "" {
			p.Texture = CheckerTexture
		}
		if p.Texture == CheckerTexture && len(p.Colors) != 0 && len(p.Colors) != 2 {
			return nil, fmt.Errorf("%w: plane %d: checker needs exactly 2 colors, got %d", ErrInvalidConfig, i, len(p.Colors))
		}
		for _, c := range p.Colors {
			if !c.valid() {
				return nil, fmt.Errorf("%w: plane %d: color channels must be in [0, 1], got %v", ErrInvalidConfig, i, c.Vec3())
			}
		}
	}

	return &cfg, nil
}

// Build constructs the runtime scene, loading any texture files
func (c *Config) Build() (*Scene, error) {
	s := NewScene()
	s.Camera = geometry.NewCamera(c.Camera.Position.Vec3(), c.Camera.FOV, c.Camera.Yaw)
	s.MaxDepth = c.MaxDepth
	if c.Background != nil {
		s.Background = c.Background.Vec3()
	}

	// Textures shared between planes are decoded once
	textures := make(map[string]*material.ImageTexture)

	for i, p := range c.Planes {
		texture, err := c.planeTexture(p, textures)
		if err != nil {
			return nil, fmt.Errorf("plane %d: %w", i, err)
		}
		s.Add(geometry.NewTexturedPlane(p.Point.Vec3(), p.Normal.Vec3(), texture, p.UVScale, p.Reflective))
	}

	for _, sc := range c.Spheres {
		color := core.NewVec3(1, 1, 1)
		if sc.Color != nil {
			color = sc.Color.Vec3()
		}
		s.Add(geometry.NewSphere(sc.Center.Vec3(), sc.Radius, color, sc.Reflectivity))
	}

	return s, nil
}

func (c *Config) planeTexture(p PlaneCfg, cache map[string]*material.ImageTexture) (*material.ImageTexture, error) {
	if p.Texture == CheckerTexture {
		if len(p.Colors) == 2 {
			return material.NewCheckerTexture(256, 256, max(1, p.CheckSize), p.Colors[0], p.Colors[1]), nil
		}
		return DefaultTextures().Floor, nil
	}

	path := p.Texture
	if !filepath.IsAbs(path) {
		path = filepath.Join(c.baseDir, path)
	}
	if texture, ok := cache[path]; ok {
		return texture, nil
	}

	texture, err := loaders.LoadTexture(path)
	if err != nil {
		return nil, err
	}
	cache[path] = texture
	return texture, nil
}
