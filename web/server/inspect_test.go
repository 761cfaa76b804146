package server

import (
	"encoding/json"
	"net/http"
	"testing"
)

func TestServer_Inspect(t *testing.T) {
	tests := []struct {
		name         string
		query        string
		hit          bool
		geometryType string
	}{
		{"sphere at center", "scene=default&px=16&py=12", true, "sphere"},
		{"floor at bottom", "scene=default&px=16&py=23", true, "plane"},
		{"wall at top", "scene=default&px=16&py=0", true, "plane"},
		{"empty scene", "scene=empty&px=16&py=12", false, ""},
	}

	s := newTestServer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, s, "/api/inspect?width=32&height=24&"+tt.query)
			if rec.Code != http.StatusOK {
				t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
			}

			var response InspectResponse
			if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
				t.Fatalf("Invalid JSON: %v", err)
			}
			if response.Hit != tt.hit {
				t.Fatalf("Expected hit=%v, got %+v", tt.hit, response)
			}
			if response.GeometryType != tt.geometryType {
				t.Errorf("Expected geometry %q, got %q", tt.geometryType, response.GeometryType)
			}
			if response.Hit && response.Distance <= 0 {
				t.Errorf("Expected positive distance, got %v", response.Distance)
			}
			if len(response.PixelColor) != 7 || response.PixelColor[0] != '#' {
				t.Errorf("Expected hex pixel color, got %q", response.PixelColor)
			}
		})
	}
}

func TestServer_InspectSphereProperties(t *testing.T) {
	rec := get(t, newTestServer(), "/api/inspect?scene=default&width=32&height=24&px=16&py=12&reflectivity=0.25")
	var response InspectResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}

	if response.Reflectivity != 0.25 {
		t.Errorf("Expected reflectivity 0.25, got %v", response.Reflectivity)
	}
	if response.Color != "#ffffff" {
		t.Errorf("Expected white sphere, got %s", response.Color)
	}
	if radius, ok := response.Properties["radius"].(float64); !ok || radius != 1 {
		t.Errorf("Expected radius 1, got %v", response.Properties["radius"])
	}
}

func TestServer_InspectInvalid(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"missing px", "py=3"},
		{"garbage py", "px=3&py=top"},
		{"out of bounds", "px=32&py=0"},
		{"negative", "px=-1&py=0"},
		{"unknown scene", "scene=nope&px=0&py=0"},
	}

	s := newTestServer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, s, "/api/inspect?width=32&height=24&"+tt.query)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("Expected 400, got %d", rec.Code)
			}
		})
	}
}
