package scene

import (
	"math/rand"

	"github.com/df07/go-sphere-tracer/pkg/core"
	"github.com/df07/go-sphere-tracer/pkg/geometry"
	"github.com/df07/go-sphere-tracer/pkg/material"
	"github.com/df07/go-sphere-tracer/pkg/renderer"
)

// RandomSceneSeed is the layout seed used by the registered random scene
const RandomSceneSeed = 1

// NewSimpleScene creates the two-sphere scene: a diffuse sphere resting on a
// huge diffuse ground sphere, seen through a 90 degree pinhole camera
func NewSimpleScene(cameraOverrides ...renderer.CameraConfig) *Scene {
	defaultCameraConfig := renderer.CameraConfig{
		LookFrom:    core.NewVec3(0, 0, 0),
		LookAt:      core.NewVec3(0, 0, -1),
		Up:          core.NewVec3(0, 1, 0),
		VFov:        90,
		AspectRatio: 2,
	}

	cameraConfig := defaultCameraConfig
	if len(cameraOverrides) > 0 {
		cameraConfig = renderer.MergeCameraConfig(defaultCameraConfig, cameraOverrides[0])
	}

	s := newScene("simple", 200, 100, cameraConfig)

	gray := material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))
	s.World.Add(geometry.NewSphere(core.NewVec3(0, 0, -1), 0.5, gray))
	s.World.Add(geometry.NewSphere(core.NewVec3(0, -100.5, -1), 100, gray))

	return s
}

// NewMaterialsScene creates a scene showing every material: a diffuse center
// sphere between a fuzzy gold metal and a glass sphere with a hollow shell
func NewMaterialsScene(cameraOverrides ...renderer.CameraConfig) *Scene {
	defaultCameraConfig := renderer.CameraConfig{
		LookFrom:      core.NewVec3(-2, 2, 1), // Above and to the left
		LookAt:        core.NewVec3(0, 0, -1), // Look at the center sphere
		Up:            core.NewVec3(0, 1, 0),
		VFov:          40,
		AspectRatio:   16.0 / 9.0,
		Aperture:      0.05, // Slight depth of field
		FocusDistance: 0.0,  // Auto-calculate focus distance
	}

	cameraConfig := defaultCameraConfig
	if len(cameraOverrides) > 0 {
		cameraConfig = renderer.MergeCameraConfig(defaultCameraConfig, cameraOverrides[0])
	}

	s := newScene("materials", 400, 225, cameraConfig)

	// Create materials
	lambertianGround := material.NewLambertian(core.NewVec3(0.8, 0.8, 0.0))
	lambertianBlue := material.NewLambertian(core.NewVec3(0.1, 0.2, 0.5))
	metalGold := material.NewMetal(core.NewVec3(0.8, 0.6, 0.2), 0.3)
	materialGlass := material.NewDielectric(1.5)

	// Hollow glass: an outer shell with an inward facing inner surface
	s.World.Add(geometry.NewSphere(core.NewVec3(0, 0, -1), 0.5, lambertianBlue))
	s.World.Add(geometry.NewSphere(core.NewVec3(0, -100.5, -1), 100, lambertianGround))
	s.World.Add(geometry.NewSphere(core.NewVec3(1, 0, -1), 0.5, metalGold))
	s.World.Add(geometry.NewSphere(core.NewVec3(-1, 0, -1), 0.5, materialGlass))
	s.World.Add(geometry.NewSphere(core.NewVec3(-1, 0, -1), -0.45, materialGlass))

	return s
}

// NewRandomScene creates a field of small random spheres around three large
// feature spheres. The layout depends only on seed.
func NewRandomScene(seed int64, cameraOverrides ...renderer.CameraConfig) *Scene {
	defaultCameraConfig := renderer.CameraConfig{
		LookFrom:      core.NewVec3(13, 2, 3),
		LookAt:        core.NewVec3(0, 0, 0),
		Up:            core.NewVec3(0, 1, 0),
		VFov:          20,
		AspectRatio:   3.0 / 2.0,
		Aperture:      0.1,
		FocusDistance: 10,
	}

	cameraConfig := defaultCameraConfig
	if len(cameraOverrides) > 0 {
		cameraConfig = renderer.MergeCameraConfig(defaultCameraConfig, cameraOverrides[0])
	}

	s := newScene("random", 600, 400, cameraConfig)
	s.SamplingConfig.SamplesPerPixel = 50

	random := rand.New(rand.NewSource(seed))
	s.World.Add(geometry.NewSphere(core.NewVec3(0, -1000, 0), 1000, material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))))

	clearing := core.NewVec3(4, 0.2, 0)
	for a := -11; a < 11; a++ {
		for b := -11; b < 11; b++ {
			center := core.NewVec3(float32(a)+0.9*random.Float32(), 0.2, float32(b)+0.9*random.Float32())
			if center.Subtract(clearing).Length() <= 0.9 {
				continue
			}

			var mat *material.Material
			switch chooseMat := random.Float32(); {
			case chooseMat < 0.8:
				albedo := core.NewVec3(
					random.Float32()*random.Float32(),
					random.Float32()*random.Float32(),
					random.Float32()*random.Float32(),
				)
				mat = material.NewLambertian(albedo)
			case chooseMat < 0.95:
				albedo := core.NewVec3(
					0.5*(1+random.Float32()),
					0.5*(1+random.Float32()),
					0.5*(1+random.Float32()),
				)
				mat = material.NewMetal(albedo, 0.5*random.Float32())
			default:
				mat = material.NewDielectric(1.5)
			}
			s.World.Add(geometry.NewSphere(center, 0.2, mat))
		}
	}

	s.World.Add(geometry.NewSphere(core.NewVec3(0, 1, 0), 1, material.NewDielectric(1.5)))
	s.World.Add(geometry.NewSphere(core.NewVec3(-4, 1, 0), 1, material.NewLambertian(core.NewVec3(0.4, 0.2, 0.1))))
	s.World.Add(geometry.NewSphere(core.NewVec3(4, 1, 0), 1, material.NewMetal(core.NewVec3(0.7, 0.6, 0.5), 0)))

	return s
}
