package geometry

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/df07/go-sphere-tracer/pkg/core"
	"github.com/df07/go-sphere-tracer/pkg/material"
)

const tolerance = 1e-5

func vecNear(a, b core.Vec3) bool {
	return math32.Abs(a.X-b.X) <= tolerance &&
		math32.Abs(a.Y-b.Y) <= tolerance &&
		math32.Abs(a.Z-b.Z) <= tolerance
}

func TestSphere_Hit_Miss(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0, material.NewLambertian(core.NewVec3(1, 1, 1)))
	ray := core.NewRay(core.NewVec3(2, 0, 0), core.NewVec3(0, 1, 0))

	hit, isHit := sphere.Hit(ray, 0.001, 1000.0)
	if isHit {
		t.Errorf("Expected miss, but got hit at t=%f", hit.T)
	}
}

func TestSphere_Hit_OutsideAndInside(t *testing.T) {
	mat := material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0, mat)

	tests := []struct {
		name           string
		rayOrigin      core.Vec3
		rayDirection   core.Vec3
		expectedT      float32
		expectedNormal core.Vec3
	}{
		{
			name:           "hit from outside",
			rayOrigin:      core.NewVec3(0, 0, 2),
			rayDirection:   core.NewVec3(0, 0, -1),
			expectedT:      1.0,
			expectedNormal: core.NewVec3(0, 0, 1),
		},
		{
			// The normal stays outward, the material decides what that means
			name:           "hit from inside",
			rayOrigin:      core.NewVec3(0, 0, 0),
			rayDirection:   core.NewVec3(0, 0, 1),
			expectedT:      1.0,
			expectedNormal: core.NewVec3(0, 0, 1),
		},
		{
			name:           "unnormalized direction",
			rayOrigin:      core.NewVec3(0, 4, 0),
			rayDirection:   core.NewVec3(0, -2, 0),
			expectedT:      1.5,
			expectedNormal: core.NewVec3(0, 1, 0),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ray := core.NewRay(tt.rayOrigin, tt.rayDirection)
			hit, isHit := sphere.Hit(ray, 0.001, 1000.0)

			if !isHit {
				t.Fatal("Expected hit, but got miss")
			}
			if math32.Abs(hit.T-tt.expectedT) > tolerance {
				t.Errorf("Expected t=%f, got t=%f", tt.expectedT, hit.T)
			}
			if !vecNear(hit.Normal, tt.expectedNormal) {
				t.Errorf("Expected normal %v, got %v", tt.expectedNormal, hit.Normal)
			}
			if !vecNear(hit.Point, ray.At(hit.T)) {
				t.Errorf("Hit point %v does not lie on the ray", hit.Point)
			}
			if hit.Material != mat {
				t.Error("Hit record should reference the sphere's material")
			}
		})
	}
}

func TestSphere_Hit_Bounds(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0, material.NewDielectric(1.5))
	ray := core.NewRay(core.NewVec3(0, 0, 2), core.NewVec3(0, 0, -1))

	// Test tMax bound
	hit, isHit := sphere.Hit(ray, 0.001, 0.5)
	if isHit {
		t.Errorf("Expected miss due to tMax bound, but got hit at t=%f", hit.T)
	}

	// Test tMin bound
	hit, isHit = sphere.Hit(ray, 3.5, 1000.0)
	if isHit {
		t.Errorf("Expected miss due to tMin bound, but got hit at t=%f", hit.T)
	}

	// tMin between the roots selects the far side
	hit, isHit = sphere.Hit(ray, 1.5, 1000.0)
	if !isHit || math32.Abs(hit.T-3.0) > tolerance {
		t.Errorf("Expected far root t=3, got hit=%t t=%f", isHit, hit.T)
	}

	// Interval ends are exclusive
	if _, isHit = sphere.Hit(ray, 1.0, 2.0); isHit {
		t.Error("Roots exactly on the interval ends should be rejected")
	}
}

func TestSphere_Hit_SelfIntersectionEpsilon(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0, material.NewLambertian(core.NewVec3(1, 1, 1)))

	// A bounce leaving the surface outwards must not re-hit the same sphere
	ray := core.NewRay(core.NewVec3(0, 1, 0), core.NewVec3(0.3, 1, 0))
	if hit, isHit := sphere.Hit(ray, 0.001, math32.Inf(1)); isHit {
		t.Errorf("Expected no self-intersection, got hit at t=%g", hit.T)
	}
}

func TestSphere_Hit_Tangent(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0, material.NewLambertian(core.NewVec3(1, 1, 1)))

	origins := []core.Vec3{
		core.NewVec3(1, 0, 5),
		core.NewVec3(0.9999999, 0, 5),
		core.NewVec3(1.0000001, 0, 5),
	}
	for _, origin := range origins {
		ray := core.NewRay(origin, core.NewVec3(0, 0, -1))
		hit, isHit := sphere.Hit(ray, 0.001, math32.Inf(1))
		if isHit && (hit.Normal.HasNaN() || hit.Point.HasNaN() || math32.IsNaN(hit.T)) {
			t.Errorf("Tangent ray from %v produced NaN hit %+v", origin, hit)
		}
	}
}

func TestSphere_NegativeRadiusFlipsNormal(t *testing.T) {
	glass := material.NewDielectric(1.5)
	center := core.NewVec3(-0.5, 0.25, -0.5)
	outer := NewSphere(center, 0.25, glass)
	inner := NewSphere(center, -0.25, glass)

	directions := []core.Vec3{
		core.NewVec3(0, 0, -1),
		core.NewVec3(0.04, -0.03, -1),
		core.NewVec3(-0.05, 0.04, -1),
	}
	for _, d := range directions {
		ray := core.NewRay(core.NewVec3(-0.5, 0.25, 2), d)

		outerHit, ok1 := outer.Hit(ray, 0.001, math32.Inf(1))
		innerHit, ok2 := inner.Hit(ray, 0.001, math32.Inf(1))
		if !ok1 || !ok2 {
			t.Fatalf("Both shells should be hit by direction %v", d)
		}
		if outerHit.T != innerHit.T {
			t.Fatalf("Shells of equal |radius| should be hit at the same t: %f vs %f", outerHit.T, innerHit.T)
		}
		if innerHit.Normal != outerHit.Normal.Negate() {
			t.Errorf("Expected inner normal %v, got %v", outerHit.Normal.Negate(), innerHit.Normal)
		}
	}
}
