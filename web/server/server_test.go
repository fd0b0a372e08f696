package server

import (
	"bytes"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/df07/go-sphere-tracer/pkg/scene"
)

const testScenesDir = "../../scenes"

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	rec := get(t, NewServer(0, testScenesDir), "/api/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil || body["status"] != "ok" {
		t.Errorf("Unexpected health body %v (%v)", body, err)
	}
}

func TestHandleScenes(t *testing.T) {
	rec := get(t, NewServer(0, testScenesDir), "/api/scenes")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var response scene.ScenesResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode scenes: %v", err)
	}

	ids := make(map[string]bool)
	for _, group := range response.Groups {
		for _, info := range group.Scenes {
			ids[info.ID] = true
		}
	}
	for _, expected := range []string{"simple", "materials", "random", "file:../../scenes/glass-shell.json"} {
		if !ids[expected] {
			t.Errorf("Missing scene %q in %v", expected, ids)
		}
	}
}

func TestHandleRender(t *testing.T) {
	s := NewServer(0, testScenesDir)
	target := "/api/render?scene=simple&width=32&height=16&samples=1&seed=3"

	rec := get(t, s, target)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Expected image/png, got %q", ct)
	}

	body := rec.Body.Bytes()
	img, err := png.Decode(bytes.NewReader(body))
	if err != nil {
		t.Fatalf("Response is not a PNG: %v", err)
	}
	if img.Bounds().Dx() != 32 || img.Bounds().Dy() != 16 {
		t.Errorf("Expected 32x16 image, got %v", img.Bounds())
	}

	var stats Stats
	if err := json.Unmarshal([]byte(rec.Header().Get("X-Render-Stats")), &stats); err != nil {
		t.Fatalf("Failed to decode stats header: %v", err)
	}
	if stats.TotalPixels != 32*16 || stats.TotalSamples != 32*16 || stats.SamplesPerPixel != 1 {
		t.Errorf("Unexpected stats %+v", stats)
	}
	if rec.Header().Get("X-Render-Console") == "" {
		t.Error("Expected render log lines in the console header")
	}

	// Same request, same image
	again := get(t, s, target)
	if !bytes.Equal(body, again.Body.Bytes()) {
		t.Error("Seeded renders should be reproducible")
	}
	if rec.Header().Get("X-Render-Id") == again.Header().Get("X-Render-Id") {
		t.Error("Each render should get its own ID")
	}
}

func TestHandleRender_FileScene(t *testing.T) {
	rec := get(t, NewServer(0, testScenesDir), "/api/render?scene=file:../../scenes/glass-shell.json&width=16&height=16&samples=1")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandleRender_Errors(t *testing.T) {
	tests := []struct {
		name   string
		target string
		status int
	}{
		{"unknown scene", "/api/render?scene=cornell-box", http.StatusNotFound},
		{"unlisted file", "/api/render?scene=file:/etc/passwd.json", http.StatusNotFound},
		{"width too small", "/api/render?width=1", http.StatusBadRequest},
		{"bad samples", "/api/render?samples=lots", http.StatusBadRequest},
		{"bad seed", "/api/render?seed=x", http.StatusBadRequest},
	}

	s := NewServer(0, testScenesDir)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, s, tt.target)
			if rec.Code != tt.status {
				t.Errorf("Expected %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
		})
	}

	req := httptest.NewRequest(http.MethodPost, "/api/render", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405 for POST, got %d", rec.Code)
	}
}

func TestParseIntParam(t *testing.T) {
	values := map[string][]string{"n": {"12"}, "bad": {"x"}, "big": {"5000"}}

	if got, err := parseIntParam(values, "n", 1, 0, 100); err != nil || got != 12 {
		t.Errorf("Expected 12, got %d (%v)", got, err)
	}
	if got, err := parseIntParam(values, "missing", 7, 0, 100); err != nil || got != 7 {
		t.Errorf("Expected default 7, got %d (%v)", got, err)
	}
	if _, err := parseIntParam(values, "bad", 1, 0, 100); err == nil {
		t.Error("Expected error for non-numeric value")
	}
	if _, err := parseIntParam(values, "big", 1, 0, 100); err == nil {
		t.Error("Expected error for out of range value")
	}
}

func TestHandleSceneConfig(t *testing.T) {
	rec := get(t, NewServer(0, testScenesDir), "/api/scene-config?scene=simple")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var response struct {
		Scene    string `json:"scene"`
		Defaults struct {
			Width   int `json:"width"`
			Height  int `json:"height"`
			Spheres int `json:"spheres"`
		} `json:"defaults"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode config: %v", err)
	}
	if response.Scene != "simple" || response.Defaults.Width != 200 || response.Defaults.Height != 100 || response.Defaults.Spheres != 2 {
		t.Errorf("Unexpected scene config %+v", response)
	}

	if rec := get(t, NewServer(0, testScenesDir), "/api/scene-config?scene=nope"); rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown scene, got %d", rec.Code)
	}
}
