package material

import (
	"fmt"
	"math/rand"

	"github.com/df07/go-sphere-tracer/pkg/core"
)

// Kind identifies one of the supported scattering models
type Kind uint8

const (
	KindLambertian Kind = iota
	KindMetal
	KindDielectric
)

// String returns the lowercase name of the kind
func (k Kind) String() string {
	switch k {
	case KindLambertian:
		return "lambertian"
	case KindMetal:
		return "metal"
	case KindDielectric:
		return "dielectric"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// ParseKind maps a material name to its Kind
func ParseKind(name string) (Kind, error) {
	switch name {
	case "lambertian", "diffuse":
		return KindLambertian, nil
	case "metal":
		return KindMetal, nil
	case "dielectric", "glass":
		return KindDielectric, nil
	}
	return 0, fmt.Errorf("unknown material type %q", name)
}

// Material is a closed set of scattering models selected by Kind.
// Only the fields relevant to the kind are meaningful.
type Material struct {
	Kind            Kind
	Albedo          core.Vec3 // Lambertian and Metal reflectance
	Fuzz            float32   // Metal roughness in [0, 1]
	RefractiveIndex float32   // Dielectric index of refraction
}

// ScatterResult contains the result of material scattering
type ScatterResult struct {
	Attenuation core.Vec3 // Color attenuation
	Scattered   core.Ray  // Outgoing ray, valid only when Scatter reports true
}

// HitRecord contains information about a ray-object intersection
type HitRecord struct {
	T        float32   // Parameter t along the ray
	Point    core.Vec3 // Point of intersection
	Normal   core.Vec3 // Outward surface normal; points inward for negative radii
	Material *Material // Material of the hit object
}

// Scatter computes the attenuation and outgoing ray for a ray hitting the
// surface. It returns false when the path is absorbed.
func (m *Material) Scatter(rayIn core.Ray, hit HitRecord, random *rand.Rand) (ScatterResult, bool) {
	switch m.Kind {
	case KindLambertian:
		return m.scatterLambertian(hit, random)
	case KindMetal:
		return m.scatterMetal(rayIn, hit, random)
	case KindDielectric:
		return m.scatterDielectric(rayIn, hit, random)
	}
	return ScatterResult{}, false
}

// Reflect calculates the reflection of a vector v off a surface with normal n
func Reflect(v, n core.Vec3) core.Vec3 {
	// r = v - 2*dot(v,n)*n
	return v.Subtract(n.Multiply(2 * v.Dot(n)))
}
