package geometry

import (
	"github.com/df07/go-sphere-tracer/pkg/core"
	"github.com/df07/go-sphere-tracer/pkg/material"
)

// World is an ordered collection of spheres intersected by linear scan
type World struct {
	Spheres []Sphere
}

// NewWorld creates a world from the given spheres, preserving their order
func NewWorld(spheres ...Sphere) *World {
	return &World{Spheres: spheres}
}

// Add appends a sphere to the world
func (w *World) Add(s Sphere) {
	w.Spheres = append(w.Spheres, s)
}

// Len returns the number of spheres in the world
func (w *World) Len() int {
	return len(w.Spheres)
}

// Hit returns the nearest intersection in (tMin, tMax). The first sphere in
// order wins exact ties.
func (w *World) Hit(ray core.Ray, tMin, tMax float32) (material.HitRecord, bool) {
	var closestHit material.HitRecord
	closestSoFar := tMax
	hitAnything := false

	for i := range w.Spheres {
		if hit, isHit := w.Spheres[i].Hit(ray, tMin, closestSoFar); isHit {
			hitAnything = true
			closestSoFar = hit.T
			closestHit = hit
		}
	}

	return closestHit, hitAnything
}
