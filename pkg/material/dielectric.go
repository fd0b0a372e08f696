package material

import (
	"math/rand"

	"github.com/chewxy/math32"
	"github.com/df07/go-sphere-tracer/pkg/core"
)

// NewDielectric creates a new dielectric material
func NewDielectric(refractiveIndex float32) *Material {
	return &Material{Kind: KindDielectric, RefractiveIndex: refractiveIndex}
}

func (m *Material) scatterDielectric(rayIn core.Ray, hit HitRecord, random *rand.Rand) (ScatterResult, bool) {
	// Clear glass does not absorb
	attenuation := core.NewVec3(1.0, 1.0, 1.0)
	direction := rayIn.Direction
	dirDotNormal := direction.Dot(hit.Normal)

	var outwardNormal core.Vec3
	var niOverNt, cosine float32
	if dirDotNormal > 0 {
		// Travelling along the normal: leaving the medium
		outwardNormal = hit.Normal.Negate()
		niOverNt = m.RefractiveIndex
		cosine = m.RefractiveIndex * dirDotNormal / direction.Length()
	} else {
		outwardNormal = hit.Normal
		niOverNt = 1.0 / m.RefractiveIndex
		cosine = -dirDotNormal / direction.Length()
	}

	if refracted, ok := Refract(direction, outwardNormal, niOverNt); ok {
		if random.Float32() >= Schlick(cosine, m.RefractiveIndex) {
			return ScatterResult{
				Attenuation: attenuation,
				Scattered:   core.NewRay(hit.Point, refracted),
			}, true
		}
	}

	// Total internal reflection or the Fresnel draw chose reflection
	return ScatterResult{
		Attenuation: attenuation,
		Scattered:   core.NewRay(hit.Point, Reflect(direction, hit.Normal)),
	}, true
}

// Refract bends v through a surface with normal n using Snell's law.
// It returns false on total internal reflection.
func Refract(v, n core.Vec3, niOverNt float32) (core.Vec3, bool) {
	uv := v.Normalize()
	dt := uv.Dot(n)
	discriminant := 1.0 - niOverNt*niOverNt*(1.0-dt*dt)
	if discriminant <= 0 {
		return core.Vec3{}, false
	}
	return uv.Subtract(n.Multiply(dt)).Multiply(niOverNt).Subtract(n.Multiply(math32.Sqrt(discriminant))), true
}

// Schlick approximates the Fresnel reflectance at the given cosine
func Schlick(cosine, refractiveIndex float32) float32 {
	r0 := (1 - refractiveIndex) / (1 + refractiveIndex)
	r0 = r0 * r0
	return r0 + (1-r0)*math32.Pow(1-cosine, 5)
}
