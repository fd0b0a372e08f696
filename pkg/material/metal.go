package material

import (
	"math/rand"

	"github.com/df07/go-sphere-tracer/pkg/core"
)

// NewMetal creates a new metal material
func NewMetal(albedo core.Vec3, fuzz float32) *Material {
	// Clamp fuzz to valid range
	if fuzz > 1.0 {
		fuzz = 1.0
	}
	if fuzz < 0.0 {
		fuzz = 0.0
	}
	return &Material{Kind: KindMetal, Albedo: albedo, Fuzz: fuzz}
}

func (m *Material) scatterMetal(rayIn core.Ray, hit HitRecord, random *rand.Rand) (ScatterResult, bool) {
	// Calculate perfect reflection direction
	reflected := Reflect(rayIn.Direction.Normalize(), hit.Normal)

	// Add fuzziness by perturbing the reflection direction
	if m.Fuzz > 0 {
		reflected = reflected.Add(core.RandomInUnitSphere(random).Multiply(m.Fuzz))
	}

	result := ScatterResult{
		Attenuation: m.Albedo,
		Scattered:   core.NewRay(hit.Point, reflected),
	}

	// Rays perturbed below the surface are absorbed
	return result, reflected.Dot(hit.Normal) > 0
}
