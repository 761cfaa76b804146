package server

import (
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/Alex1A1ndrA/KompGraf/pkg/scene"
)

func newTestServer() *Server {
	return NewServer(0, scene.DefaultTextures(), "")
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestServer_Health(t *testing.T) {
	rec := get(t, newTestServer(), "/api/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("Expected status ok, got %v", body)
	}
}

func TestServer_RenderPNG(t *testing.T) {
	rec := get(t, newTestServer(), "/api/render?scene=default&width=32&height=24&reflectivity=0.3")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Expected image/png, got %s", ct)
	}
	if _, err := uuid.Parse(rec.Header().Get("X-Render-Id")); err != nil {
		t.Errorf("Expected a UUID render ID, got %q", rec.Header().Get("X-Render-Id"))
	}

	img, err := png.Decode(rec.Body)
	if err != nil {
		t.Fatalf("Response is not a PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 32 || b.Dy() != 24 {
		t.Errorf("Expected 32x24 image, got %v", b)
	}
}

func TestServer_RenderBackground(t *testing.T) {
	rec := get(t, newTestServer(), "/api/render?scene=empty&width=16&height=16&background=black")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	img, err := png.Decode(rec.Body)
	if err != nil {
		t.Fatalf("Response is not a PNG: %v", err)
	}
	r, g, b, a := img.At(8, 8).RGBA()
	if r != 0 || g != 0 || b != 0 || a != 0xffff {
		t.Errorf("Expected opaque black, got (%d,%d,%d,%d)", r, g, b, a)
	}
}

func TestServer_RenderInvalidRequests(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"width too small", "width", "1"},
		{"width too large", "width", "2001"},
		{"height not a number", "height", "tall"},
		{"depth negative", "depth", "-1"},
		{"fov out of range", "fov", "180"},
		{"reflectivity above one", "reflectivity", "1.5"},
		{"unknown background", "background", "notacolor"},
		{"unknown scene", "scene", "cornell-box"},
		{"scene file", "scene", "/etc/scene.json"},
	}

	s := newTestServer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values := url.Values{}
			values.Set("width", "16")
			values.Set("height", "16")
			values.Set(tt.key, tt.value)

			rec := get(t, s, "/api/render?"+values.Encode())
			if rec.Code != http.StatusBadRequest {
				t.Errorf("Expected 400 for %s=%s, got %d", tt.key, tt.value, rec.Code)
			}
			var body map[string]string
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil || body["error"] == "" {
				t.Errorf("Expected JSON error body, got %v (%v)", body, err)
			}
		})
	}
}

func TestServer_RenderStream(t *testing.T) {
	rec := get(t, newTestServer(), "/api/render-stream?scene=mirror-floor&width=16&height=16")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Expected text/event-stream, got %s", ct)
	}

	body := rec.Body.String()
	for _, event := range []string{"event: console", "event: frame", "event: complete"} {
		if !strings.Contains(body, event) {
			t.Errorf("Expected %q in stream", event)
		}
	}
	if strings.Contains(body, "event: error") {
		t.Errorf("Unexpected error event in stream: %s", body)
	}

	// Decode the frame event payload
	for _, line := range strings.Split(body, "\n") {
		if !strings.HasPrefix(line, "data: {\"renderId\"") || !strings.Contains(line, "imageData") {
			continue
		}
		var update FrameUpdate
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &update); err != nil {
			t.Fatalf("Invalid frame event: %v", err)
		}
		if update.Stats.TotalPixels != 16*16 || update.ImageData == "" {
			t.Errorf("Unexpected frame update stats %+v", update.Stats)
		}
		return
	}
	t.Error("No frame event payload found")
}

func TestServer_RenderStreamInvalid(t *testing.T) {
	rec := get(t, newTestServer(), "/api/render-stream?width=0")
	if !strings.Contains(rec.Body.String(), "event: error") {
		t.Errorf("Expected error event, got %q", rec.Body.String())
	}
}

func TestServer_SceneConfig(t *testing.T) {
	s := newTestServer()

	rec := get(t, s, "/api/scene-config?scene=default")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var body struct {
		Scene    string             `json:"scene"`
		Defaults map[string]float64 `json:"defaults"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if body.Scene != "default" {
		t.Errorf("Unexpected scene %q", body.Scene)
	}

	expected := map[string]float64{"fov": 90, "x": 0, "y": 1, "z": 5, "depth": 5, "reflectivity": 0.5, "primitives": 3}
	for key, want := range expected {
		if got := body.Defaults[key]; got != want {
			t.Errorf("defaults.%s: expected %v, got %v", key, want, got)
		}
	}

	if rec := get(t, s, "/api/scene-config?scene=nope"); rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown scene, got %d", rec.Code)
	}
}

func TestParseIntParam(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected int
		wantErr  bool
	}{
		{"default", "", 7, false},
		{"in range", "12", 12, false},
		{"below", "0", 0, true},
		{"above", "101", 0, true},
		{"garbage", "12px", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values := url.Values{}
			if tt.value != "" {
				values.Set("n", tt.value)
			}
			got, err := parseIntParam(values, "n", 7, 1, 100)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.expected {
				t.Errorf("Expected %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestServer_SceneFiles(t *testing.T) {
	dir := t.TempDir()
	content := `{"name": "Lone Sphere", "group": "Tests", "camera": {"position": [0, 0, 4]}, "spheres": [{"center": [0, 0, 0], "radius": 1, "color": "red"}]}`
	if err := os.WriteFile(filepath.Join(dir, "lone.json"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	s := NewServer(0, scene.DefaultTextures(), dir)

	rec := get(t, s, "/api/scenes")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var listing scene.ScenesResponse
	if err := json.NewDecoder(rec.Body).Decode(&listing); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if len(listing.Groups) != 2 || listing.Groups[1].Name != "Tests" || listing.Groups[1].Scenes[0].ID != "file:lone" {
		t.Fatalf("Unexpected listing %+v", listing)
	}

	rec = get(t, s, "/api/render?scene=file:lone&width=16&height=16")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	img, err := png.Decode(rec.Body)
	if err != nil {
		t.Fatalf("Response is not a PNG: %v", err)
	}
	if r, g, b, _ := img.At(8, 8).RGBA(); r == 0 || g != 0 || b != 0 {
		t.Errorf("Expected pure red sphere at center, got (%d,%d,%d)", r, g, b)
	}

	if rec := get(t, s, "/api/scene-config?scene=file:missing"); rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for missing scene file, got %d", rec.Code)
	}
}
