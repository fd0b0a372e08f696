package scene

import (
	"errors"
	"math/rand"
	"reflect"
	"testing"

	"github.com/df07/go-sphere-tracer/pkg/core"
	"github.com/df07/go-sphere-tracer/pkg/material"
	"github.com/df07/go-sphere-tracer/pkg/renderer"
)

func TestNames(t *testing.T) {
	expected := []string{"materials", "random", "simple"}
	if got := Names(); !reflect.DeepEqual(got, expected) {
		t.Errorf("Names() = %v, want %v", got, expected)
	}
}

func TestCreate(t *testing.T) {
	tests := []struct {
		name       string
		primitives int
		width      int
		height     int
	}{
		{"simple", 2, 200, 100},
		{"materials", 5, 400, 225},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Create(tt.name)
			if err != nil {
				t.Fatalf("Create(%q) error: %v", tt.name, err)
			}
			if s.Name != tt.name {
				t.Errorf("Expected name %q, got %q", tt.name, s.Name)
			}
			if s.GetPrimitiveCount() != tt.primitives {
				t.Errorf("Expected %d spheres, got %d", tt.primitives, s.GetPrimitiveCount())
			}
			if s.Width != tt.width || s.Height != tt.height {
				t.Errorf("Expected %dx%d, got %dx%d", tt.width, tt.height, s.Width, s.Height)
			}
		})
	}
}

func TestCreate_UnknownScene(t *testing.T) {
	_, err := Create("cornell-box")
	if !errors.Is(err, ErrUnknownScene) {
		t.Errorf("Expected ErrUnknownScene, got %v", err)
	}
}

func TestSimpleScene_MatchesClassicCamera(t *testing.T) {
	camera := NewSimpleScene().Camera()
	random := rand.New(rand.NewSource(1))

	// Corners of the classic viewport: lower left (-2,-1,-1) spanning 4 x 2
	corners := []struct {
		s, t     float32
		expected core.Vec3
	}{
		{0, 0, core.NewVec3(-2, -1, -1)},
		{1, 0, core.NewVec3(2, -1, -1)},
		{0, 1, core.NewVec3(-2, 1, -1)},
		{0.5, 0.5, core.NewVec3(0, 0, -1)},
	}

	for _, c := range corners {
		ray := camera.GetRay(c.s, c.t, random)
		d := ray.Direction.Subtract(c.expected)
		if d.Length() > 1e-5 {
			t.Errorf("GetRay(%f, %f) direction = %v, want %v", c.s, c.t, ray.Direction, c.expected)
		}
		if !ray.Origin.IsZero() {
			t.Errorf("Expected origin at zero, got %v", ray.Origin)
		}
	}
}

func TestSimpleScene_CameraOverrides(t *testing.T) {
	s := NewSimpleScene(renderer.CameraConfig{VFov: 60, Aperture: 0.5})
	if s.CameraConfig.VFov != 60 || s.CameraConfig.Aperture != 0.5 {
		t.Errorf("Overrides not applied: %+v", s.CameraConfig)
	}
	if s.CameraConfig.LookAt != core.NewVec3(0, 0, -1) {
		t.Errorf("Unset fields should keep defaults, got %+v", s.CameraConfig)
	}
}

func TestMaterialsScene_HasEveryMaterial(t *testing.T) {
	kinds := make(map[material.Kind]bool)
	shells := 0
	for _, sphere := range NewMaterialsScene().World.Spheres {
		kinds[sphere.Material.Kind] = true
		if sphere.Radius < 0 {
			shells++
		}
	}

	for _, kind := range []material.Kind{material.KindLambertian, material.KindMetal, material.KindDielectric} {
		if !kinds[kind] {
			t.Errorf("Missing %s material", kind)
		}
	}
	if shells != 1 {
		t.Errorf("Expected one hollow shell, got %d", shells)
	}
}

func TestRandomScene_Deterministic(t *testing.T) {
	a := NewRandomScene(5)
	b := NewRandomScene(5)
	if !reflect.DeepEqual(a.World.Spheres, b.World.Spheres) {
		t.Error("Same seed should produce the same layout")
	}

	c := NewRandomScene(6)
	if reflect.DeepEqual(a.World.Spheres, c.World.Spheres) {
		t.Error("Different seeds should produce different layouts")
	}

	// Ground, up to 22x22 small spheres and three feature spheres
	count := a.GetPrimitiveCount()
	if count < 4 || count > 22*22+4 {
		t.Errorf("Unexpected sphere count %d", count)
	}
	if a.SamplingConfig.SamplesPerPixel != 50 {
		t.Errorf("Expected 50 samples, got %d", a.SamplingConfig.SamplesPerPixel)
	}
}

func TestScene_Resize(t *testing.T) {
	s := NewSimpleScene()
	s.Resize(300, 300)
	if s.Width != 300 || s.Height != 300 || s.CameraConfig.AspectRatio != 1 {
		t.Errorf("Unexpected size %dx%d aspect %f", s.Width, s.Height, s.CameraConfig.AspectRatio)
	}

	// Invalid sizes are ignored
	s.Resize(0, 10)
	if s.Width != 300 || s.Height != 300 {
		t.Errorf("Invalid resize should be ignored, got %dx%d", s.Width, s.Height)
	}
}

func TestScene_NewRaytracer(t *testing.T) {
	s := NewSimpleScene()
	s.Resize(8, 4)
	s.SamplingConfig.SamplesPerPixel = 2

	pixels, stats := s.NewRaytracer(nil).Render()
	if len(pixels) != 8*4*3 {
		t.Fatalf("Expected %d bytes, got %d", 8*4*3, len(pixels))
	}
	if stats.TotalSamples != 8*4*2 {
		t.Errorf("Expected %d samples, got %d", 8*4*2, stats.TotalSamples)
	}
}
