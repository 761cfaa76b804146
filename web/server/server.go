package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/image/colornames"

	"github.com/Alex1A1ndrA/KompGraf/pkg/core"
	"github.com/Alex1A1ndrA/KompGraf/pkg/geometry"
	"github.com/Alex1A1ndrA/KompGraf/pkg/renderer"
	"github.com/Alex1A1ndrA/KompGraf/pkg/scene"
)

const defaultScene = "default"

// Server handles web requests for the ray tracer
type Server struct {
	port      int
	textures  scene.Textures
	scenesDir string
	mux       *http.ServeMux
}

// NewServer creates a new web server. Textures are shared read-only by every
// request; scene files are discovered in scenesDir.
func NewServer(port int, textures scene.Textures, scenesDir string) *Server {
	s := &Server{port: port, textures: textures, scenesDir: scenesDir, mux: http.NewServeMux()}

	// Serve static files
	s.mux.Handle("/", http.FileServer(http.Dir("static/")))

	// API endpoints
	s.mux.HandleFunc("/api/render", s.handleRender)
	s.mux.HandleFunc("/api/render-stream", s.handleRenderStream)
	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.HandleFunc("/api/scene-config", s.handleSceneConfig)
	s.mux.HandleFunc("/api/scenes", s.handleScenes)
	s.mux.HandleFunc("/api/inspect", s.handleInspect)
	return s
}

// Handler returns the server's request router
func (s *Server) Handler() http.Handler {
	return s.mux
}

// RenderRequest represents a single-frame render request from the client
type RenderRequest struct {
	Scene        string
	Width        int
	Height       int
	MaxDepth     int // 0 = scene's recommendation
	Camera       geometry.Camera
	Reflectivity float64
	Background   core.Vec3
}

// Stats represents render statistics
type Stats struct {
	TotalPixels int   `json:"totalPixels"`
	Rows        int   `json:"rows"`
	Workers     int   `json:"workers"`
	MaxDepth    int   `json:"maxDepth"`
	Hits        int   `json:"hits"`
	ElapsedMs   int64 `json:"elapsedMs"`
}

// FrameUpdate is the frame event sent on the streaming endpoint
type FrameUpdate struct {
	RenderID  string `json:"renderId"`
	ImageData string `json:"imageData"` // Base64 encoded PNG
	Stats     Stats  `json:"stats"`
}

// Start starts the web server
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	log.Printf("Starting web server on http://localhost%s", addr)
	return http.ListenAndServe(addr, s.mux)
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleRender renders one frame and responds with it as a PNG
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	req, sceneObj, err := s.parseRenderRequest(r.URL.Query())
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	renderID := uuid.NewString()
	logger := NewWebLogger(renderID, nil)
	fb, stats, err := s.render(r, req, sceneObj, logger)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("Render error: %v", err))
		return
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, fb.Image()); err != nil {
		writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to encode image: %v", err))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("X-Render-Id", renderID)
	w.Header().Set("X-Render-Elapsed-Ms", strconv.FormatInt(stats.Elapsed.Milliseconds(), 10))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// handleRenderStream renders one frame and streams its console output and
// the finished image via SSE
func (s *Server) handleRenderStream(w http.ResponseWriter, r *http.Request) {
	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	req, sceneObj, err := s.parseRenderRequest(r.URL.Query())
	if err != nil {
		s.sendSSEError(w, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	renderID := uuid.NewString()
	consoleChan := make(chan ConsoleMessage, 100)
	logger := NewWebLogger(renderID, consoleChan)

	logger.Printf("Rendering %s at %dx%d\n", req.Scene, req.Width, req.Height)
	fb, stats, err := s.render(r, req, sceneObj, logger)
	s.flushConsole(w, consoleChan)
	if err != nil {
		s.sendSSEError(w, fmt.Sprintf("Render error: %v", err))
		return
	}

	imageData, err := s.imageToBase64PNG(fb.Image())
	if err != nil {
		s.sendSSEError(w, fmt.Sprintf("failed to encode image: %v", err))
		return
	}

	data, err := json.Marshal(FrameUpdate{
		RenderID:  renderID,
		ImageData: imageData,
		Stats:     toStats(stats),
	})
	if err != nil {
		s.sendSSEError(w, err.Error())
		return
	}
	s.sendSSEEvent(w, "frame", string(data))
	s.sendSSEEvent(w, "complete", "Rendering completed")
}

func (s *Server) render(r *http.Request, req *RenderRequest, sceneObj *scene.Scene, logger core.Logger) (*renderer.Framebuffer, renderer.RenderStats, error) {
	config := renderer.DefaultConfig()
	config.MaxDepth = req.MaxDepth
	return renderer.NewRenderer(config, logger).Render(r.Context(), sceneObj, req.Camera, req.Width, req.Height)
}

// flushConsole forwards buffered console messages as SSE events
func (s *Server) flushConsole(w http.ResponseWriter, consoleChan <-chan ConsoleMessage) {
	for {
		select {
		case msg := <-consoleChan:
			data, err := json.Marshal(msg)
			if err != nil {
				continue
			}
			s.sendSSEEvent(w, "console", string(data))
		default:
			return
		}
	}
}

// parseRenderRequest builds the request's scene and parses its parameters.
// Camera and material defaults come from the scene itself.
func (s *Server) parseRenderRequest(values url.Values) (*RenderRequest, *scene.Scene, error) {
	req := &RenderRequest{Scene: values.Get("scene")}
	if req.Scene == "" {
		req.Scene = defaultScene // Default scene
	}

	sceneObj, err := s.createScene(req.Scene)
	if err != nil {
		return nil, nil, err
	}

	cam := sceneObj.Camera
	var x, y, z float64
	if req.Width, err = parseIntParam(values, "width", 800, 16, 2000); err != nil {
		return nil, nil, err
	}
	if req.Height, err = parseIntParam(values, "height", 600, 16, 2000); err != nil {
		return nil, nil, err
	}
	if req.MaxDepth, err = parseIntParam(values, "depth", 0, 0, 50); err != nil {
		return nil, nil, err
	}
	if cam.FOV, err = parseFloatParam(values, "fov", cam.FOV, 1, 179); err != nil {
		return nil, nil, err
	}
	if cam.Yaw, err = parseFloatParam(values, "yaw", cam.Yaw, -360, 360); err != nil {
		return nil, nil, err
	}
	if x, err = parseFloatParam(values, "x", cam.Position.X, -100, 100); err != nil {
		return nil, nil, err
	}
	if y, err = parseFloatParam(values, "y", cam.Position.Y, -100, 100); err != nil {
		return nil, nil, err
	}
	if z, err = parseFloatParam(values, "z", cam.Position.Z, -100, 100); err != nil {
		return nil, nil, err
	}
	cam.Position = core.NewVec3(x, y, z)
	req.Camera = cam

	if req.Reflectivity, err = parseFloatParam(values, "reflectivity", sceneObj.Reflectivity(), 0, 1); err != nil {
		return nil, nil, err
	}
	if req.Background, err = parseColorParam(values, "background", sceneObj.Background); err != nil {
		return nil, nil, err
	}

	// The scene is private to this request
	if values.Get("reflectivity") != "" {
		sceneObj.SetReflectivity(req.Reflectivity)
	}
	sceneObj.Background = req.Background

	// Performance warning
	if req.Width*req.Height > 1920*1080 && req.MaxDepth > 10 {
		log.Printf("Render warning: Large image with deep reflections may render slowly")
	}

	return req, sceneObj, nil
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// parseFloatParam parses a float parameter from URL query with validation
func parseFloatParam(values url.Values, key string, defaultValue, min, max float64) (float64, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %f and %f, got: %f", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// parseColorParam parses an SVG color name from URL query
func parseColorParam(values url.Values, key string, defaultValue core.Vec3) (core.Vec3, error) {
	if value := values.Get(key); value != "" {
		c, ok := colornames.Map[strings.ToLower(value)]
		if !ok {
			return core.Vec3{}, fmt.Errorf("invalid %s: unknown color %s", key, value)
		}
		return core.NewVec3(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0), nil
	}
	return defaultValue, nil
}

// createScene creates a built-in or discovered scene. Arbitrary paths are not
// reachable over HTTP.
func (s *Server) createScene(sceneID string) (*scene.Scene, error) {
	info, ok := scene.FindScene(sceneID, s.scenesDir)
	if !ok {
		return nil, fmt.Errorf("%w: %q", scene.ErrUnknownScene, sceneID)
	}
	return info.Load(s.textures)
}

// handleScenes lists built-in scenes and discovered scene files
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")

	response, err := scene.ListAllScenes(s.scenesDir)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

func toStats(stats renderer.RenderStats) Stats {
	return Stats{
		TotalPixels: stats.TotalPixels,
		Rows:        stats.Rows,
		Workers:     stats.Workers,
		MaxDepth:    stats.MaxDepth,
		Hits:        stats.Hits,
		ElapsedMs:   stats.Elapsed.Milliseconds(),
	}
}

// imageToBase64PNG converts an image to base64-encoded PNG
func (s *Server) imageToBase64PNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// sendSSEError sends an error via SSE
func (s *Server) sendSSEError(w http.ResponseWriter, message string) error {
	return s.sendSSEEvent(w, "error", message)
}

// sendSSEEvent sends a generic SSE event
func (s *Server) sendSSEEvent(w http.ResponseWriter, event, data string) error {
	if flusher, ok := w.(http.Flusher); ok {
		fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
		flusher.Flush()
		return nil
	}
	return fmt.Errorf("streaming not supported")
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// handleSceneConfig returns the default configuration for a scene
func (s *Server) handleSceneConfig(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")

	sceneName := r.URL.Query().Get("scene")
	if sceneName == "" {
		sceneName = defaultScene // Default scene
	}

	sceneObj, err := s.createScene(sceneName)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, scene.ErrUnknownScene) {
			status = http.StatusBadRequest
		}
		writeJSONError(w, status, "Unknown scene: "+sceneName)
		return
	}

	cam := sceneObj.Camera
	response := map[string]interface{}{
		"scene": sceneName,
		"defaults": map[string]interface{}{
			"width":        800,
			"height":       600,
			"depth":        renderer.NewRenderer(renderer.DefaultConfig(), nil).MaxDepthFor(sceneObj),
			"fov":          cam.FOV,
			"yaw":          cam.Yaw,
			"x":            cam.Position.X,
			"y":            cam.Position.Y,
			"z":            cam.Position.Z,
			"reflectivity": sceneObj.Reflectivity(),
			"primitives":   sceneObj.GetPrimitiveCount(),
		},
		"limits": map[string]interface{}{
			"width":        map[string]int{"min": 16, "max": 2000},
			"height":       map[string]int{"min": 16, "max": 2000},
			"depth":        map[string]int{"min": 0, "max": 50},
			"fov":          map[string]float64{"min": 1, "max": 179},
			"yaw":          map[string]float64{"min": -360, "max": 360},
			"position":     map[string]float64{"min": -100, "max": 100},
			"reflectivity": map[string]float64{"min": 0, "max": 1},
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}
