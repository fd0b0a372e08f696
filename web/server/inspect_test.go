package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"testing"
)

func TestHandleInspect(t *testing.T) {
	tests := []struct {
		name         string
		x, y         int
		hit          bool
		sphereIndex  int
		materialType string
	}{
		{"center sphere", 100, 50, true, 0, "lambertian"},
		{"sky", 100, 0, false, -1, ""},
		{"ground", 100, 99, true, 1, "lambertian"},
	}

	s := NewServer(0, testScenesDir)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, s, "/api/inspect?scene=simple&x="+strconv.Itoa(tt.x)+"&y="+strconv.Itoa(tt.y))
			if rec.Code != http.StatusOK {
				t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
			}

			var response InspectResponse
			if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if response.Hit != tt.hit || response.SphereIndex != tt.sphereIndex {
				t.Errorf("Expected hit=%v index=%d, got %+v", tt.hit, tt.sphereIndex, response)
			}
			if response.MaterialType != tt.materialType {
				t.Errorf("Expected material %q, got %q", tt.materialType, response.MaterialType)
			}
		})
	}
}

func TestHandleInspect_Errors(t *testing.T) {
	s := NewServer(0, testScenesDir)
	for _, target := range []string{
		"/api/inspect?scene=simple&x=abc&y=0",
		"/api/inspect?scene=simple&x=0",
		"/api/inspect?scene=simple&x=200&y=0",
		"/api/inspect?scene=simple&x=0&y=-1",
	} {
		if rec := get(t, s, target); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", target, rec.Code)
		}
	}
}

func TestExtractMaterialInfo_GlassShell(t *testing.T) {
	s := NewServer(0, testScenesDir)
	sceneObj, _, err := s.createScene(map[string][]string{"scene": {"materials"}})
	if err != nil {
		t.Fatalf("createScene() error: %v", err)
	}

	for i, sphere := range sceneObj.World.Spheres {
		if sphere.Radius >= 0 {
			continue
		}
		info, props := extractMaterialInfo(sphere.Material)
		if info != "dielectric" || props["refractiveIndex"] != float32(1.5) {
			t.Errorf("Sphere %d: expected glass shell, got %s %v", i, info, props)
		}
	}
}
