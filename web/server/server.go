package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/df07/go-sphere-tracer/pkg/imageio"
	"github.com/df07/go-sphere-tracer/pkg/scene"
)

// Request limits
const (
	minSize    = 16
	maxSize    = 2000
	maxSamples = 10000
	maxDepth   = 1000
)

// Server handles web requests for the sphere tracer
type Server struct {
	port      int
	scenesDir string
	renders   atomic.Int64
}

// NewServer creates a new web server. Scene files are discovered in scenesDir.
func NewServer(port int, scenesDir string) *Server {
	return &Server{port: port, scenesDir: scenesDir}
}

// RenderRequest represents a render request from the client
type RenderRequest struct {
	Scene    string `json:"scene"`    // Scene ID (e.g., "simple")
	Width    int    `json:"width"`    // Image width
	Height   int    `json:"height"`   // Image height
	Samples  int    `json:"samples"`  // Samples per pixel
	MaxDepth int    `json:"maxDepth"` // Maximum bounces
	Seed     int64  `json:"seed"`     // Random seed
	Caption  bool   `json:"caption"`  // Draw stats onto the image
}

// Stats represents render statistics
type Stats struct {
	TotalPixels      int   `json:"totalPixels"`
	TotalSamples     int   `json:"totalSamples"`
	SamplesPerPixel  int   `json:"samplesPerPixel"`
	Segments         int   `json:"segments"`
	AbsorbedPaths    int   `json:"absorbedPaths"`
	DepthCappedPaths int   `json:"depthCappedPaths"`
	Workers          int   `json:"workers"`
	ElapsedMs        int64 `json:"elapsedMs"`
}

// Handler returns the HTTP routes of the server
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/render", s.handleRender)
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/scenes", s.handleScenes)
	mux.HandleFunc("/api/scene-config", s.handleSceneConfig)
	mux.HandleFunc("/api/inspect", s.handleInspect)
	return mux
}

// Start starts the web server
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	log.Printf("Starting web server on http://localhost%s", addr)

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScenes lists built-in scenes and scene files
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	response, err := scene.ListAllScenes(s.scenesDir)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, response)
}

// handleRender renders a scene synchronously and responds with a PNG
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "use GET")
		return
	}

	sceneObj, req, err := s.createScene(r.URL.Query())
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	renderID := fmt.Sprintf("render-%d", s.renders.Add(1))
	consoleChan := make(chan ConsoleMessage, 16)
	logger := NewWebLogger(renderID, consoleChan)
	logger.Printf("Rendering %s at %dx%d, %d spp, seed %d", sceneObj.Name, req.Width, req.Height, req.Samples, req.Seed)

	pixels, stats := sceneObj.NewRaytracer(logger).Render()

	var img image.Image
	img, err = imageio.ToImage(pixels, sceneObj.Width, sceneObj.Height)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if req.Caption {
		img = imageio.Caption(img, fmt.Sprintf("%s  %d spp  %v", sceneObj.Name, req.Samples, stats.Duration.Round(time.Millisecond)))
	}

	var buf bytes.Buffer
	if err := imageio.Encode(&buf, img, imageio.FormatPNG); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	statsJSON, err := json.Marshal(Stats{
		TotalPixels:      stats.TotalPixels,
		TotalSamples:     stats.TotalSamples,
		SamplesPerPixel:  stats.SamplesPerPixel,
		Segments:         stats.Segments,
		AbsorbedPaths:    stats.AbsorbedPaths,
		DepthCappedPaths: stats.DepthCappedPaths,
		Workers:          stats.Workers,
		ElapsedMs:        stats.Duration.Milliseconds(),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", imageio.FormatPNG.ContentType())
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("X-Render-Id", renderID)
	w.Header().Set("X-Render-Stats", string(statsJSON))
	w.Header().Set("X-Render-Console", strings.Join(drainConsole(consoleChan), " | "))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Printf("[%s] failed to write response: %v", renderID, err)
	}
}

// parseRenderRequest parses request parameters, filling gaps from the scene's defaults
func parseRenderRequest(values url.Values, sceneObj *scene.Scene) (*RenderRequest, error) {
	req := &RenderRequest{Scene: sceneObj.Name, Caption: values.Get("caption") == "true"}

	var err error
	if req.Width, err = parseIntParam(values, "width", sceneObj.Width, minSize, maxSize); err != nil {
		return nil, err
	}
	if req.Height, err = parseIntParam(values, "height", sceneObj.Height, minSize, maxSize); err != nil {
		return nil, err
	}
	if req.Samples, err = parseIntParam(values, "samples", sceneObj.SamplingConfig.SamplesPerPixel, 1, maxSamples); err != nil {
		return nil, err
	}
	if req.MaxDepth, err = parseIntParam(values, "maxDepth", sceneObj.SamplingConfig.MaxDepth, 0, maxDepth); err != nil {
		return nil, err
	}
	if seed := values.Get("seed"); seed != "" {
		if req.Seed, err = strconv.ParseInt(seed, 10, 64); err != nil {
			return nil, fmt.Errorf("invalid seed: %s", seed)
		}
	} else {
		req.Seed = sceneObj.SamplingConfig.Seed
	}

	// Performance warning
	if req.Width*req.Height > 800*600 && req.Samples > 100 {
		log.Printf("Render warning: Large image with high samples may render slowly")
	}

	return req, nil
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// createScene looks up the requested scene and applies the request overrides.
// Only built-in scenes and files discovered in the scenes directory are served.
func (s *Server) createScene(values url.Values) (*scene.Scene, *RenderRequest, error) {
	sceneID := values.Get("scene")
	if sceneID == "" {
		sceneID = "simple" // Default scene
	}

	sceneObj, err := s.lookupScene(sceneID)
	if err != nil {
		return nil, nil, err
	}

	req, err := parseRenderRequest(values, sceneObj)
	if err != nil {
		return nil, nil, err
	}

	sceneObj.Resize(req.Width, req.Height)
	sceneObj.SamplingConfig.SamplesPerPixel = req.Samples
	sceneObj.SamplingConfig.MaxDepth = req.MaxDepth
	sceneObj.SamplingConfig.Seed = req.Seed

	return sceneObj, req, nil
}

// lookupScene resolves a scene ID against the listing, so requests cannot load arbitrary paths
func (s *Server) lookupScene(sceneID string) (*scene.Scene, error) {
	listing, err := scene.ListAllScenes(s.scenesDir)
	if err != nil {
		return nil, err
	}
	for _, group := range listing.Groups {
		for _, info := range group.Scenes {
			if info.ID == sceneID {
				return scene.Create(info.ID)
			}
		}
	}
	return nil, fmt.Errorf("%w %q", scene.ErrUnknownScene, sceneID)
}

// handleSceneConfig returns the default configuration for a scene
func (s *Server) handleSceneConfig(w http.ResponseWriter, r *http.Request) {
	sceneID := r.URL.Query().Get("scene")
	if sceneID == "" {
		sceneID = "simple" // Default scene
	}

	sceneObj, err := s.lookupScene(sceneID)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	config := sceneObj.SamplingConfig
	response := map[string]interface{}{
		"scene": sceneID,
		"defaults": map[string]interface{}{
			"width":           sceneObj.Width,
			"height":          sceneObj.Height,
			"samplesPerPixel": config.SamplesPerPixel,
			"maxDepth":        config.MaxDepth,
			"seed":            config.Seed,
			"spheres":         sceneObj.GetPrimitiveCount(),
		},
		"limits": map[string]interface{}{
			"width":    map[string]int{"min": minSize, "max": maxSize},
			"height":   map[string]int{"min": minSize, "max": maxSize},
			"samples":  map[string]int{"min": 1, "max": maxSamples},
			"maxDepth": map[string]int{"min": 0, "max": maxDepth},
		},
	}

	writeJSON(w, http.StatusOK, response)
}

// statusFor maps lookup errors to HTTP status codes
func statusFor(err error) int {
	if errors.Is(err, scene.ErrUnknownScene) {
		return http.StatusNotFound
	}
	if errors.Is(err, scene.ErrInvalidScene) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusBadRequest
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
