package renderer

import (
	"time"

	"github.com/df07/go-sphere-tracer/pkg/core"
)

// RenderStats contains statistics about the rendering process
type RenderStats struct {
	TotalPixels      int           // Total number of pixels rendered
	TotalSamples     int           // Total number of camera rays traced
	SamplesPerPixel  int           // Samples taken for every pixel
	Segments         int           // Ray segments intersected against the world
	EscapedPaths     int           // Paths that reached the sky
	AbsorbedPaths    int           // Paths terminated by a material
	DepthCappedPaths int           // Paths cut off at the bounce limit
	Workers          int           // Workers used
	Duration         time.Duration // Wall clock render time
}

// merge folds the counters of a single row into the totals
func (s *RenderStats) merge(row RenderStats) {
	s.TotalPixels += row.TotalPixels
	s.TotalSamples += row.TotalSamples
	s.Segments += row.Segments
	s.EscapedPaths += row.EscapedPaths
	s.AbsorbedPaths += row.AbsorbedPaths
	s.DepthCappedPaths += row.DepthCappedPaths
}

// record counts a single traced path
func (s *RenderStats) record(outcome pathOutcome, segments int) {
	s.TotalSamples++
	s.Segments += segments
	switch outcome {
	case pathEscaped:
		s.EscapedPaths++
	case pathAbsorbed:
		s.AbsorbedPaths++
	case pathDepthCapped:
		s.DepthCappedPaths++
	}
}

// PixelStats tracks sampling statistics for a single pixel
type PixelStats struct {
	ColorAccum       core.Vec3 // RGB accumulator for final result
	LuminanceAccum   float64   // Luminance accumulator
	LuminanceSqAccum float64   // Luminance squared for variance
	SampleCount      int       // Number of samples taken
}

// AddSample adds a new color sample to the pixel statistics
func (ps *PixelStats) AddSample(color core.Vec3) {
	ps.ColorAccum = ps.ColorAccum.Add(color)
	luminance := float64(color.Luminance())
	ps.LuminanceAccum += luminance
	ps.LuminanceSqAccum += luminance * luminance
	ps.SampleCount++
}

// GetColor returns the current average color for this pixel
func (ps *PixelStats) GetColor() core.Vec3 {
	if ps.SampleCount == 0 {
		return core.Vec3{X: 0, Y: 0, Z: 0}
	}
	return ps.ColorAccum.Divide(float32(ps.SampleCount))
}

// LuminanceVariance returns the sample variance of the luminance
func (ps *PixelStats) LuminanceVariance() float64 {
	if ps.SampleCount == 0 {
		return 0
	}
	n := float64(ps.SampleCount)
	mean := ps.LuminanceAccum / n
	return max(0, ps.LuminanceSqAccum/n-mean*mean)
}
