package geometry

import (
	"github.com/chewxy/math32"
	"github.com/df07/go-sphere-tracer/pkg/core"
	"github.com/df07/go-sphere-tracer/pkg/material"
)

// Sphere represents a sphere shape. A negative radius flips the normal
// inwards, which is how hollow glass shells are built.
type Sphere struct {
	Center   core.Vec3
	Radius   float32
	Material *material.Material
}

// NewSphere creates a new sphere
func NewSphere(center core.Vec3, radius float32, mat *material.Material) Sphere {
	return Sphere{
		Center:   center,
		Radius:   radius,
		Material: mat,
	}
}

// Hit tests if a ray intersects the sphere strictly inside (tMin, tMax)
func (s *Sphere) Hit(ray core.Ray, tMin, tMax float32) (material.HitRecord, bool) {
	// Vector from sphere center to ray origin
	oc := ray.Origin.Subtract(s.Center)

	// Quadratic equation coefficients: at² + 2bt + c = 0
	a := ray.Direction.Dot(ray.Direction)
	halfB := oc.Dot(ray.Direction)
	c := oc.Dot(oc) - s.Radius*s.Radius

	// Tangent rays count as misses
	discriminant := halfB*halfB - a*c
	if discriminant <= 0 {
		return material.HitRecord{}, false
	}

	sqrtD := math32.Sqrt(discriminant)

	// Try the closer intersection point first
	root := (-halfB - sqrtD) / a
	if root <= tMin || root >= tMax {
		root = (-halfB + sqrtD) / a
		if root <= tMin || root >= tMax {
			return material.HitRecord{}, false
		}
	}

	point := ray.At(root)
	return material.HitRecord{
		T:        root,
		Point:    point,
		Normal:   point.Subtract(s.Center).Divide(s.Radius),
		Material: s.Material,
	}, true
}
