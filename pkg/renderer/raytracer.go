package renderer

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/chewxy/math32"
	"github.com/df07/go-sphere-tracer/pkg/core"
	"github.com/df07/go-sphere-tracer/pkg/material"
)

// Default integration constants
const (
	DefaultMaxDepth = 50
	DefaultTMin     = 0.001
)

// ErrInvalidConfig is returned for configurations that cannot produce an image
var ErrInvalidConfig = errors.New("invalid render configuration")

// Hittable is anything a ray can be intersected against
type Hittable interface {
	Hit(ray core.Ray, tMin, tMax float32) (material.HitRecord, bool)
}

// SamplingConfig contains rendering configuration
type SamplingConfig struct {
	SamplesPerPixel int     // Number of rays per pixel
	MaxDepth        int     // Maximum ray bounce depth
	TMin            float32 // Self-intersection epsilon
	Seed            int64   // Base seed for the per-row random streams
	Workers         int     // Parallel workers, <= 0 means runtime.NumCPU()
}

// DefaultSamplingConfig returns sensible default values
func DefaultSamplingConfig() SamplingConfig {
	return SamplingConfig{
		SamplesPerPixel: 100,
		MaxDepth:        DefaultMaxDepth,
		TMin:            DefaultTMin,
		Seed:            42,
	}
}

// Validate reports whether the configuration can render a width x height image
func (c SamplingConfig) Validate(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: image size %dx%d must be positive", ErrInvalidConfig, width, height)
	}
	if c.SamplesPerPixel <= 0 {
		return fmt.Errorf("%w: samples per pixel %d must be positive", ErrInvalidConfig, c.SamplesPerPixel)
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("%w: max depth %d must not be negative", ErrInvalidConfig, c.MaxDepth)
	}
	return nil
}

// pathOutcome records how a traced path ended
type pathOutcome uint8

const (
	pathEscaped pathOutcome = iota
	pathAbsorbed
	pathDepthCapped
)

var (
	white   = core.NewVec3(1.0, 1.0, 1.0)
	skyBlue = core.NewVec3(0.5, 0.7, 1.0)
	black   = core.Vec3{}
)

// Raytracer handles the rendering process
type Raytracer struct {
	world  Hittable
	camera *Camera
	width  int
	height int
	config SamplingConfig
	logger core.Logger
}

// NewRaytracer creates a new raytracer
func NewRaytracer(world Hittable, camera *Camera, width, height int) *Raytracer {
	return &Raytracer{
		world:  world,
		camera: camera,
		width:  width,
		height: height,
		config: DefaultSamplingConfig(),
		logger: core.NopLogger{},
	}
}

// SetSamplingConfig updates the sampling configuration
func (rt *Raytracer) SetSamplingConfig(config SamplingConfig) {
	rt.config = config
}

// SetLogger sets the logger used for render progress
func (rt *Raytracer) SetLogger(logger core.Logger) {
	if logger == nil {
		logger = core.NopLogger{}
	}
	rt.logger = logger
}

// BackgroundGradient returns the sky color for a ray that escaped the scene
func BackgroundGradient(r core.Ray) core.Vec3 {
	unitDirection := r.Direction.Normalize()

	// Use the y-component to create a gradient (map from -1,1 to 0,1)
	t := 0.5 * (unitDirection.Y + 1.0)
	return white.Lerp(skyBlue, t)
}

// RayColor returns the color carried back along a camera ray
func (rt *Raytracer) RayColor(r core.Ray, random *rand.Rand) core.Vec3 {
	color, _, _ := rt.trace(r, random)
	return color
}

// trace follows a path bounce by bounce, multiplying the attenuation of every
// scatter event into a running throughput
func (rt *Raytracer) trace(r core.Ray, random *rand.Rand) (core.Vec3, pathOutcome, int) {
	throughput := white
	tMax := math32.Inf(1)

	for depth := 0; ; depth++ {
		hit, isHit := rt.world.Hit(r, rt.config.TMin, tMax)
		if !isHit {
			return throughput.MultiplyVec(BackgroundGradient(r)), pathEscaped, depth + 1
		}

		// If we've exceeded the ray bounce limit, no more light is gathered
		if depth >= rt.config.MaxDepth {
			return black, pathDepthCapped, depth + 1
		}

		scatter, didScatter := hit.Material.Scatter(r, hit, random)
		if !didScatter {
			return black, pathAbsorbed, depth + 1
		}

		throughput = throughput.MultiplyVec(scatter.Attenuation)
		r = scatter.Scattered
	}
}

// toByte maps a gamma corrected channel in [0,1] to [0,255]
func toByte(c float32) uint8 {
	v := math32.Floor(255.99 * c)
	if !(v > 0) {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// renderRow renders image row j (0 = bottom) into out, which holds width*3 bytes
func (rt *Raytracer) renderRow(j int, out []byte) RenderStats {
	random := core.NewRowRandom(rt.config.Seed, j)
	stats := RenderStats{TotalPixels: rt.width}
	width := float32(rt.width)
	height := float32(rt.height)

	for i := 0; i < rt.width; i++ {
		var ps PixelStats
		for sample := 0; sample < rt.config.SamplesPerPixel; sample++ {
			// Convert pixel coordinates to normalized coordinates with jitter
			u := (float32(i) + random.Float32()) / width
			v := (float32(j) + random.Float32()) / height

			color, outcome, segments := rt.trace(rt.camera.GetRay(u, v, random), random)
			ps.AddSample(color)
			stats.record(outcome, segments)
		}

		pixel := ps.GetColor().Sqrt()
		out[3*i] = toByte(pixel.X)
		out[3*i+1] = toByte(pixel.Y)
		out[3*i+2] = toByte(pixel.Z)
	}

	return stats
}

// Render renders the full image. The buffer holds width*height RGB triples,
// row-major, starting with the top image row. A non-positive width or height
// yields an empty buffer.
func (rt *Raytracer) Render() ([]byte, RenderStats) {
	if rt.width <= 0 || rt.height <= 0 {
		rt.logger.Printf("Nothing to render at %dx%d", rt.width, rt.height)
		return []byte{}, RenderStats{SamplesPerPixel: rt.config.SamplesPerPixel}
	}

	start := time.Now()
	pixels := make([]byte, rt.width*rt.height*3)

	pool := NewWorkerPool(rt, rt.config.Workers)
	pool.Start()

	rowBytes := rt.width * 3
	for j := rt.height - 1; j >= 0; j-- {
		k := rt.height - 1 - j
		pool.SubmitTask(RowTask{Row: j, Out: pixels[k*rowBytes : (k+1)*rowBytes]})
	}
	pool.Stop()

	stats := RenderStats{
		SamplesPerPixel: rt.config.SamplesPerPixel,
		Workers:         pool.GetNumWorkers(),
	}
	for {
		result, ok := pool.GetResult()
		if !ok {
			break
		}
		stats.merge(result.Stats)
	}
	stats.Duration = time.Since(start)

	rt.logger.Printf("Rendered %dx%d at %d spp with %d workers in %v (%d segments, %d absorbed, %d depth capped)",
		rt.width, rt.height, stats.SamplesPerPixel, stats.Workers, stats.Duration,
		stats.Segments, stats.AbsorbedPaths, stats.DepthCappedPaths)

	return pixels, stats
}

// Render renders world through camera with the default sampling configuration
// and the given number of samples per pixel
func Render(world Hittable, camera *Camera, width, height, samplesPerPixel int) []byte {
	rt := NewRaytracer(world, camera, width, height)
	config := DefaultSamplingConfig()
	config.SamplesPerPixel = samplesPerPixel
	rt.SetSamplingConfig(config)
	pixels, _ := rt.Render()
	return pixels
}
