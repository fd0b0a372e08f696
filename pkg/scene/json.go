package scene

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/df07/go-sphere-tracer/pkg/core"
	"github.com/df07/go-sphere-tracer/pkg/geometry"
	"github.com/df07/go-sphere-tracer/pkg/material"
	"github.com/df07/go-sphere-tracer/pkg/renderer"
)

// ErrInvalidScene is returned for scene files that decode but describe an unusable scene
var ErrInvalidScene = errors.New("invalid scene")

// File is the on-disk JSON form of a scene
type File struct {
	Name        string       `json:"name,omitempty"`
	Description string       `json:"description,omitempty"`
	Group       string       `json:"group,omitempty"`
	Width       int          `json:"width,omitempty"`
	Height      int          `json:"height,omitempty"`
	Samples     int          `json:"samples,omitempty"`
	MaxDepth    int          `json:"maxDepth,omitempty"`
	Camera      FileCamera   `json:"camera"`
	Spheres     []FileSphere `json:"spheres"`
}

// FileCamera describes the camera of a scene file
type FileCamera struct {
	LookFrom      [3]float32  `json:"lookFrom"`
	LookAt        [3]float32  `json:"lookAt"`
	Up            *[3]float32 `json:"up,omitempty"`
	VFov          float32     `json:"vfov,omitempty"`
	Aperture      float32     `json:"aperture,omitempty"`
	FocusDistance float32     `json:"focusDistance,omitempty"`
}

// FileSphere describes one sphere of a scene file
type FileSphere struct {
	Center   [3]float32   `json:"center"`
	Radius   float32      `json:"radius"`
	Material FileMaterial `json:"material"`
}

// FileMaterial describes a sphere material. Fields that do not apply to the
// material type are ignored.
type FileMaterial struct {
	Type            string     `json:"type"`
	Albedo          [3]float32 `json:"albedo"`
	Fuzz            float32    `json:"fuzz,omitempty"`
	RefractiveIndex float32    `json:"refractiveIndex,omitempty"`
}

// Defaults for fields a scene file may leave out
const (
	defaultFileWidth  = 400
	defaultFileHeight = 200
	defaultFileVFov   = 90
)

// Load reads and validates a JSON scene file
func Load(path string) (*Scene, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open scene file: %w", err)
	}
	defer file.Close()

	s, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("failed to load scene %s: %w", path, err)
	}
	if s.Name == "" {
		name := filepath.Base(path)
		s.Name = strings.TrimSuffix(name, filepath.Ext(name))
	}
	return s, nil
}

// Parse decodes and validates a JSON scene from r
func Parse(r io.Reader) (*Scene, error) {
	var f File
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to decode scene: %w", err)
	}
	return f.Build()
}

// Build validates the file and converts it into a renderable scene
func (f File) Build() (*Scene, error) {
	cameraConfig, err := f.Camera.config()
	if err != nil {
		return nil, err
	}

	width, height := f.Width, f.Height
	if width <= 0 {
		width = defaultFileWidth
	}
	if height <= 0 {
		height = defaultFileHeight
	}

	s := newScene(f.Name, width, height, cameraConfig)
	s.Resize(width, height)
	if f.Samples > 0 {
		s.SamplingConfig.SamplesPerPixel = f.Samples
	}
	if f.MaxDepth > 0 {
		s.SamplingConfig.MaxDepth = f.MaxDepth
	}

	for i, sphere := range f.Spheres {
		if sphere.Radius == 0 {
			return nil, fmt.Errorf("%w: sphere %d has zero radius", ErrInvalidScene, i)
		}
		mat, err := sphere.Material.build()
		if err != nil {
			return nil, fmt.Errorf("%w: sphere %d: %v", ErrInvalidScene, i, err)
		}
		s.World.Add(geometry.NewSphere(vec(sphere.Center), sphere.Radius, mat))
	}

	return s, nil
}

func (c FileCamera) config() (renderer.CameraConfig, error) {
	lookFrom, lookAt := vec(c.LookFrom), vec(c.LookAt)
	if lookFrom == lookAt {
		return renderer.CameraConfig{}, fmt.Errorf("%w: camera lookFrom and lookAt are both %v", ErrInvalidScene, lookFrom)
	}

	up := core.NewVec3(0, 1, 0)
	if c.Up != nil {
		up = vec(*c.Up)
	}

	vfov := c.VFov
	if vfov <= 0 {
		vfov = defaultFileVFov
	}

	return renderer.CameraConfig{
		LookFrom:      lookFrom,
		LookAt:        lookAt,
		Up:            up,
		VFov:          vfov,
		Aperture:      c.Aperture,
		FocusDistance: c.FocusDistance,
	}, nil
}

func (m FileMaterial) build() (*material.Material, error) {
	kind, err := material.ParseKind(m.Type)
	if err != nil {
		return nil, err
	}

	switch kind {
	case material.KindMetal:
		return material.NewMetal(vec(m.Albedo), m.Fuzz), nil
	case material.KindDielectric:
		if m.RefractiveIndex <= 0 {
			return nil, fmt.Errorf("dielectric needs a positive refractiveIndex, got %g", m.RefractiveIndex)
		}
		return material.NewDielectric(m.RefractiveIndex), nil
	default:
		return material.NewLambertian(vec(m.Albedo)), nil
	}
}

func vec(a [3]float32) core.Vec3 {
	return core.NewVec3(a[0], a[1], a[2])
}
