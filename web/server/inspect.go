package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/Alex1A1ndrA/KompGraf/pkg/core"
	"github.com/Alex1A1ndrA/KompGraf/pkg/geometry"
	"github.com/Alex1A1ndrA/KompGraf/pkg/renderer"
	"github.com/Alex1A1ndrA/KompGraf/pkg/scene"
)

// InspectResponse represents the JSON response for object inspection
type InspectResponse struct {
	Hit          bool                   `json:"hit"`
	GeometryType string                 `json:"geometryType,omitempty"`
	Point        [3]float64             `json:"point"`
	Normal       [3]float64             `json:"normal"`
	Distance     float64                `json:"distance"`
	Color        string                 `json:"color"`      // surface color at the hit point
	PixelColor   string                 `json:"pixelColor"` // traced color including reflections
	Reflectivity float64                `json:"reflectivity"`
	Properties   map[string]interface{} `json:"properties,omitempty"`
}

// InspectResult is the first surface hit by an inspection ray
type InspectResult struct {
	Hit      bool
	Surface  geometry.Surface
	Distance float64
	Point    core.Vec3
	Ray      core.Ray
}

// inspectPixel casts the primary ray through a pixel and returns the nearest surface
func inspectPixel(sceneObj *scene.Scene, camera geometry.Camera, width, height, pixelX, pixelY int) InspectResult {
	ray := camera.Project(width, height).Ray(pixelX, pixelY)

	surface, t, ok := sceneObj.FindNearest(ray)
	if !ok {
		return InspectResult{Ray: ray}
	}
	return InspectResult{
		Hit:      true,
		Surface:  surface,
		Distance: t,
		Point:    ray.At(t),
		Ray:      ray,
	}
}

// extractGeometryInfo extracts detailed geometry information
func extractGeometryInfo(surface geometry.Surface, point core.Vec3) (string, map[string]interface{}) {
	properties := make(map[string]interface{})

	switch geom := surface.(type) {
	case *geometry.Sphere:
		properties["center"] = vecArray(geom.Center)
		properties["radius"] = geom.Radius
		return "sphere", properties

	case *geometry.TexturedPlane:
		u, v := geom.UV(point)
		properties["point"] = vecArray(geom.Point)
		properties["normal"] = vecArray(geom.Normal)
		properties["uvScale"] = geom.UVScale
		properties["uv"] = [2]float64{u, v}
		properties["reflective"] = geom.Reflective
		if geom.Texture != nil {
			properties["textureSize"] = [2]int{geom.Texture.Width, geom.Texture.Height}
		}
		return "plane", properties

	default:
		return "unknown", properties
	}
}

func vecArray(v core.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

func hexColor(c core.Vec3) string {
	return fmt.Sprintf("#%02x%02x%02x", renderer.ToByte(c.X), renderer.ToByte(c.Y), renderer.ToByte(c.Z))
}

// handleInspect handles ray casting inspection requests. Pixel coordinates
// are px and py; x, y and z keep their camera meaning.
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")

	values := r.URL.Query()
	req, sceneObj, err := s.parseRenderRequest(values)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid scene parameters: "+err.Error())
		return
	}

	pixelX, err := strconv.Atoi(values.Get("px"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid px coordinate")
		return
	}
	pixelY, err := strconv.Atoi(values.Get("py"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid py coordinate")
		return
	}
	if pixelX < 0 || pixelX >= req.Width || pixelY < 0 || pixelY >= req.Height {
		writeJSONError(w, http.StatusBadRequest, "Pixel coordinates out of bounds")
		return
	}

	result := inspectPixel(sceneObj, req.Camera, req.Width, req.Height, pixelX, pixelY)

	depth := renderer.NewRenderer(renderer.Config{MaxDepth: req.MaxDepth}, nil).MaxDepthFor(sceneObj)
	response := InspectResponse{
		Hit:        result.Hit,
		PixelColor: hexColor(renderer.Trace(result.Ray, sceneObj, depth)),
	}
	if result.Hit {
		geometryType, properties := extractGeometryInfo(result.Surface, result.Point)
		response.GeometryType = geometryType
		response.Point = vecArray(result.Point)
		response.Normal = vecArray(result.Surface.NormalAt(result.Point))
		response.Distance = result.Distance
		response.Color = hexColor(result.Surface.ColorAt(result.Point))
		response.Reflectivity = result.Surface.Reflectivity()
		response.Properties = properties
	} else {
		response.Color = hexColor(sceneObj.Background)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}
