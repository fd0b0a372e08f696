package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/df07/go-sphere-tracer/pkg/imageio"
	"github.com/df07/go-sphere-tracer/pkg/publish"
	"github.com/df07/go-sphere-tracer/pkg/renderer"
	"github.com/df07/go-sphere-tracer/pkg/scene"
	"github.com/joho/godotenv"
)

// options holds everything a single render needs
type options struct {
	Scene   string
	Width   int
	Height  int
	Samples int
	Depth   int
	Seed    int64
	Workers int
	Output  string
	Scale   float64
	Caption bool
	Upload  bool
	List    bool
	Help    bool
}

// envDefaults reads RENDER_* overrides for the flag defaults
func envDefaults(getenv func(string) string) (options, error) {
	opts := options{
		Scene:   "simple",
		Samples: 0,  // Scene default
		Depth:   -1, // Scene default, 0 is a valid bounce limit
		Seed:    42,
		Scale:   1,
	}

	if v := getenv("RENDER_SCENE"); v != "" {
		opts.Scene = v
	}
	if v := getenv("RENDER_OUTPUT"); v != "" {
		opts.Output = v
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"RENDER_WIDTH", &opts.Width},
		{"RENDER_HEIGHT", &opts.Height},
		{"RENDER_SAMPLES", &opts.Samples},
	}
	for _, entry := range ints {
		v := getenv(entry.key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, fmt.Errorf("invalid %s %q: %w", entry.key, v, err)
		}
		*entry.dst = n
	}

	if v := getenv("RENDER_SEED"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return opts, fmt.Errorf("invalid RENDER_SEED %q: %w", v, err)
		}
		opts.Seed = seed
	}

	return opts, nil
}

// newFlagSet registers every command line flag, using the current values of opts as defaults
func newFlagSet(opts *options) *flag.FlagSet {
	fs := flag.NewFlagSet("sphere-tracer", flag.ContinueOnError)
	fs.StringVar(&opts.Scene, "scene", opts.Scene, "Scene: built-in name, scene file name in scenes/, or path to a .json scene")
	fs.IntVar(&opts.Width, "width", opts.Width, "Image width (0 = scene default)")
	fs.IntVar(&opts.Height, "height", opts.Height, "Image height (0 = scene default)")
	fs.IntVar(&opts.Samples, "samples", opts.Samples, "Samples per pixel (0 = scene default)")
	fs.IntVar(&opts.Depth, "depth", opts.Depth, "Maximum bounces (-1 = scene default)")
	fs.Int64Var(&opts.Seed, "seed", opts.Seed, "Random seed")
	fs.IntVar(&opts.Workers, "workers", opts.Workers, "Parallel workers (0 = number of CPUs)")
	fs.StringVar(&opts.Output, "output", opts.Output, "Output file (.png, .ppm or .raw.gz); default output/<scene>/render_<timestamp>.png")
	fs.Float64Var(&opts.Scale, "scale", opts.Scale, "Rescale the final image by this factor")
	fs.BoolVar(&opts.Caption, "caption", opts.Caption, "Draw render statistics onto the image")
	fs.BoolVar(&opts.Upload, "upload", opts.Upload, "Upload the image to the S3_BUCKET bucket")
	fs.BoolVar(&opts.List, "list", opts.List, "List available scenes and exit")
	fs.BoolVar(&opts.Help, "help", opts.Help, "Show help information")
	return fs
}

// parseOptions parses command line flags on top of the environment defaults
func parseOptions(args []string, getenv func(string) string) (options, error) {
	opts, err := envDefaults(getenv)
	if err != nil {
		return opts, err
	}

	fs := newFlagSet(&opts)
	fs.SetOutput(io.Discard)
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if opts.Width < 0 || opts.Height < 0 || opts.Samples < 0 {
		return opts, fmt.Errorf("%w: width, height and samples must not be negative", renderer.ErrInvalidConfig)
	}
	if opts.Depth < -1 {
		return opts, fmt.Errorf("%w: depth %d must be -1 (scene default) or at least 0", renderer.ErrInvalidConfig, opts.Depth)
	}
	return opts, nil
}

// createScene resolves a scene name: built-in scenes and scene file paths first,
// then scenes/<name>.json
func createScene(name string) (*scene.Scene, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty scene name", scene.ErrUnknownScene)
	}

	s, err := scene.Create(name)
	if err == nil || !errors.Is(err, scene.ErrUnknownScene) {
		return s, err
	}

	if s, ok := tryLoadSceneFile(name); ok {
		return s, nil
	}
	return nil, err
}

// tryLoadSceneFile looks for scenes/<name>.json
func tryLoadSceneFile(name string) (*scene.Scene, bool) {
	for _, dir := range []string{"scenes", "../scenes"} {
		path := filepath.Join(dir, name+".json")
		if _, err := os.Stat(path); err != nil {
			continue
		}
		s, err := scene.Load(path)
		if err != nil {
			log.Printf("Warning: %v", err)
			return nil, false
		}
		return s, true
	}
	return nil, false
}

// configure applies the command line overrides to a scene
func configure(s *scene.Scene, opts options) {
	width, height := s.Width, s.Height
	if opts.Width > 0 {
		width = opts.Width
	}
	if opts.Height > 0 {
		height = opts.Height
	}
	s.Resize(width, height)

	if opts.Samples > 0 {
		s.SamplingConfig.SamplesPerPixel = opts.Samples
	}
	if opts.Depth >= 0 {
		s.SamplingConfig.MaxDepth = opts.Depth
	}
	s.SamplingConfig.Seed = opts.Seed
	s.SamplingConfig.Workers = opts.Workers
}

// statsCaption summarizes a render in one line
func statsCaption(s *scene.Scene, stats renderer.RenderStats) string {
	return fmt.Sprintf("%s %dx%d  %d spp  %d rays  %v",
		s.Name, s.Width, s.Height, stats.SamplesPerPixel, stats.Segments, stats.Duration.Round(time.Millisecond))
}

// render runs a full render and writes the result, returning the output path
func render(ctx context.Context, opts options, logger *log.Logger) (string, error) {
	selectedScene, err := createScene(opts.Scene)
	if err != nil {
		return "", err
	}
	configure(selectedScene, opts)
	if err := selectedScene.SamplingConfig.Validate(selectedScene.Width, selectedScene.Height); err != nil {
		return "", err
	}

	logger.Printf("Rendering scene %q (%d spheres) at %dx%d, %d spp, seed %d",
		selectedScene.Name, selectedScene.GetPrimitiveCount(), selectedScene.Width, selectedScene.Height,
		selectedScene.SamplingConfig.SamplesPerPixel, selectedScene.SamplingConfig.Seed)

	pixels, stats := selectedScene.NewRaytracer(logger).Render()

	var img image.Image
	img, err = imageio.ToImage(pixels, selectedScene.Width, selectedScene.Height)
	if err != nil {
		return "", err
	}
	if opts.Caption {
		img = imageio.Caption(img, statsCaption(selectedScene, stats))
	}
	img = imageio.Rescale(img, opts.Scale)

	finished := time.Now()
	output := opts.Output
	if output == "" {
		output = filepath.Join("output", selectedScene.Name, fmt.Sprintf("render_%s.png", finished.Format("20060102_150405")))
	}
	format, err := imageio.FormatFromPath(output)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := imageio.Encode(&buf, img, format); err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(output, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", output, err)
	}
	logger.Printf("Render saved as %s (%d paths escaped, %d absorbed, %d depth capped)",
		output, stats.EscapedPaths, stats.AbsorbedPaths, stats.DepthCappedPaths)

	if opts.Upload {
		uploader, err := publish.NewUploader(publish.ConfigFromEnv(), logger)
		if err != nil {
			return output, err
		}
		key := uploader.Key(selectedScene.Name, string(format), finished)
		location, err := uploader.Upload(ctx, buf.Bytes(), key, format.ContentType())
		if err != nil {
			return output, err
		}
		logger.Printf("Published %s", location)
	}

	return output, nil
}

func printHelp() {
	fmt.Println("Sphere Tracer")
	fmt.Println("Usage: sphere-tracer [options]")
	fmt.Println()
	fmt.Println("Options:")
	defaults, _ := envDefaults(os.Getenv)
	fs := newFlagSet(&defaults)
	fs.SetOutput(os.Stdout)
	fs.PrintDefaults()
	fmt.Println()
	fmt.Println("Environment (also read from .env): RENDER_SCENE, RENDER_WIDTH, RENDER_HEIGHT,")
	fmt.Println("RENDER_SAMPLES, RENDER_SEED, RENDER_OUTPUT, S3_BUCKET, S3_REGION, S3_ENDPOINT,")
	fmt.Println("S3_ACCESS_KEY, S3_SECRET_KEY, S3_PREFIX")
}

func main() {
	// Missing .env files are fine
	_ = godotenv.Load()

	opts, err := parseOptions(os.Args[1:], os.Getenv)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(2)
	}

	if opts.Help {
		printHelp()
		return
	}

	if opts.List {
		response, err := scene.ListAllScenes("scenes")
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		for _, group := range response.Groups {
			fmt.Printf("%s:\n", group.Name)
			for _, info := range group.Scenes {
				fmt.Printf("  %-24s %s\n", info.ID, info.Description)
			}
		}
		return
	}

	logger := log.New(os.Stdout, "", log.LstdFlags)
	if _, err := render(context.Background(), opts, logger); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}
