package material

import (
	"math/rand"

	"github.com/df07/go-sphere-tracer/pkg/core"
)

// NewLambertian creates a new perfectly diffuse material
func NewLambertian(albedo core.Vec3) *Material {
	return &Material{Kind: KindLambertian, Albedo: albedo}
}

// scatterLambertian bounces towards a random point in the unit sphere
// tangent to the hit point, an approximation of cosine-weighted sampling
func (m *Material) scatterLambertian(hit HitRecord, random *rand.Rand) (ScatterResult, bool) {
	target := hit.Point.Add(hit.Normal).Add(core.RandomInUnitSphere(random))
	return ScatterResult{
		Attenuation: m.Albedo,
		Scattered:   core.NewRay(hit.Point, target.Subtract(hit.Point)),
	}, true
}
