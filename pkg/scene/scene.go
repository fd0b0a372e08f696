package scene

import (
	"github.com/df07/go-sphere-tracer/pkg/core"
	"github.com/df07/go-sphere-tracer/pkg/geometry"
	"github.com/df07/go-sphere-tracer/pkg/renderer"
)

// Scene contains all the elements needed for rendering
type Scene struct {
	Name           string
	World          *geometry.World // Spheres in the scene
	CameraConfig   renderer.CameraConfig
	SamplingConfig renderer.SamplingConfig
	Width          int // Default image width
	Height         int // Default image height
}

// newScene creates a scene with default sampling settings and an empty world
func newScene(name string, width, height int, cameraConfig renderer.CameraConfig) *Scene {
	return &Scene{
		Name:           name,
		World:          geometry.NewWorld(),
		CameraConfig:   cameraConfig,
		SamplingConfig: renderer.DefaultSamplingConfig(),
		Width:          width,
		Height:         height,
	}
}

// Resize changes the output size and keeps the camera aspect ratio in step with it
func (s *Scene) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	s.Width = width
	s.Height = height
	s.CameraConfig.AspectRatio = float32(width) / float32(height)
}

// Camera builds the camera described by the scene's camera configuration
func (s *Scene) Camera() *renderer.Camera {
	return renderer.NewCamera(s.CameraConfig)
}

// NewRaytracer creates a raytracer for the scene at its current size
func (s *Scene) NewRaytracer(logger core.Logger) *renderer.Raytracer {
	rt := renderer.NewRaytracer(s.World, s.Camera(), s.Width, s.Height)
	rt.SetSamplingConfig(s.SamplingConfig)
	rt.SetLogger(logger)
	return rt
}

// GetPrimitiveCount returns the total number of spheres in the scene
func (s *Scene) GetPrimitiveCount() int {
	return s.World.Len()
}
