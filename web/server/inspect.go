package server

import (
	"fmt"
	"math/rand"
	"net/http"
	"strconv"

	"github.com/chewxy/math32"
	"github.com/df07/go-sphere-tracer/pkg/geometry"
	"github.com/df07/go-sphere-tracer/pkg/material"
	"github.com/df07/go-sphere-tracer/pkg/scene"
)

// InspectResponse represents the JSON response for object inspection
type InspectResponse struct {
	Hit          bool                   `json:"hit"`
	MaterialType string                 `json:"materialType"`
	SphereIndex  int                    `json:"sphereIndex"`
	Point        [3]float32             `json:"point"`
	Normal       [3]float32             `json:"normal"`
	Distance     float32                `json:"distance"`
	Inward       bool                   `json:"inward"` // Hollow shell surface
	Properties   map[string]interface{} `json:"properties"`
}

// extractMaterialInfo extracts detailed material information
func extractMaterialInfo(mat *material.Material) (string, map[string]interface{}) {
	properties := make(map[string]interface{})

	switch mat.Kind {
	case material.KindLambertian:
		properties["albedo"] = [3]float32{mat.Albedo.X, mat.Albedo.Y, mat.Albedo.Z}
		properties["color"] = hexColor(mat.Albedo.X, mat.Albedo.Y, mat.Albedo.Z)
	case material.KindMetal:
		properties["albedo"] = [3]float32{mat.Albedo.X, mat.Albedo.Y, mat.Albedo.Z}
		properties["color"] = hexColor(mat.Albedo.X, mat.Albedo.Y, mat.Albedo.Z)
		properties["fuzz"] = mat.Fuzz
	case material.KindDielectric:
		properties["refractiveIndex"] = mat.RefractiveIndex
		properties["color"] = "#ffffff" // Clear glass
	}

	return mat.Kind.String(), properties
}

func hexColor(r, g, b float32) string {
	return fmt.Sprintf("#%02x%02x%02x", int(r*255), int(g*255), int(b*255))
}

// InspectResult contains information about the sphere hit by an inspection ray
type InspectResult struct {
	Hit       bool
	HitRecord material.HitRecord
	Index     int // Index of the hit sphere in the world
	Sphere    geometry.Sphere
}

// inspectPixel casts a ray through the center of pixel (pixelX, pixelY), counted
// from the top left, and returns the first sphere hit
func inspectPixel(sceneObj *scene.Scene, pixelX, pixelY int) InspectResult {
	camera := sceneObj.Camera()

	// Fixed lens sample so repeated inspections agree
	random := rand.New(rand.NewSource(0))
	u := (float32(pixelX) + 0.5) / float32(sceneObj.Width)
	v := (float32(sceneObj.Height-1-pixelY) + 0.5) / float32(sceneObj.Height)
	ray := camera.GetRay(u, v, random)

	hit, isHit := sceneObj.World.Hit(ray, sceneObj.SamplingConfig.TMin, math32.Inf(1))
	if !isHit {
		return InspectResult{Hit: false, Index: -1}
	}

	// The world does not report which sphere was hit, so find the one at the same distance
	for i := range sceneObj.World.Spheres {
		sphere := sceneObj.World.Spheres[i]
		if sphereHit, ok := sphere.Hit(ray, sceneObj.SamplingConfig.TMin, math32.Inf(1)); ok && sphereHit.T == hit.T {
			return InspectResult{Hit: true, HitRecord: hit, Index: i, Sphere: sphere}
		}
	}

	return InspectResult{Hit: true, HitRecord: hit, Index: -1}
}

// handleInspect handles ray casting inspection requests
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	sceneObj, _, err := s.createScene(r.URL.Query())
	if err != nil {
		writeError(w, statusFor(err), "Invalid scene parameters: "+err.Error())
		return
	}

	// Parse pixel coordinates
	pixelX, err := strconv.Atoi(r.URL.Query().Get("x"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid x coordinate")
		return
	}
	pixelY, err := strconv.Atoi(r.URL.Query().Get("y"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid y coordinate")
		return
	}

	// Validate pixel coordinates
	if pixelX < 0 || pixelX >= sceneObj.Width || pixelY < 0 || pixelY >= sceneObj.Height {
		writeError(w, http.StatusBadRequest, "Pixel coordinates out of bounds")
		return
	}

	result := inspectPixel(sceneObj, pixelX, pixelY)
	if !result.Hit {
		writeJSON(w, http.StatusOK, InspectResponse{Hit: false, SphereIndex: -1})
		return
	}

	materialType, materialProps := extractMaterialInfo(result.HitRecord.Material)
	hit := result.HitRecord
	response := InspectResponse{
		Hit:          true,
		MaterialType: materialType,
		SphereIndex:  result.Index,
		Point:        [3]float32{hit.Point.X, hit.Point.Y, hit.Point.Z},
		Normal:       [3]float32{hit.Normal.X, hit.Normal.Y, hit.Normal.Z},
		Distance:     hit.T,
		Inward:       result.Sphere.Radius < 0,
		Properties: map[string]interface{}{
			"material": materialProps,
			"geometry": map[string]interface{}{
				"center": [3]float32{result.Sphere.Center.X, result.Sphere.Center.Y, result.Sphere.Center.Z},
				"radius": result.Sphere.Radius,
			},
		},
	}

	writeJSON(w, http.StatusOK, response)
}
