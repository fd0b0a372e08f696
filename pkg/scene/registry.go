package scene

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// ErrUnknownScene is returned when a scene name is neither built in nor a scene file
var ErrUnknownScene = errors.New("unknown scene")

// builtinScenes maps scene IDs to their constructors
var builtinScenes = map[string]func() *Scene{
	"simple":    func() *Scene { return NewSimpleScene() },
	"materials": func() *Scene { return NewMaterialsScene() },
	"random":    func() *Scene { return NewRandomScene(RandomSceneSeed) },
}

// Names returns the sorted IDs of all built-in scenes
func Names() []string {
	names := make([]string, 0, len(builtinScenes))
	for name := range builtinScenes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Create builds a scene by built-in ID. Names ending in .json, or prefixed
// with "file:", are loaded from disk instead.
func Create(name string) (*Scene, error) {
	if constructor, ok := builtinScenes[name]; ok {
		return constructor(), nil
	}

	if path, ok := strings.CutPrefix(name, "file:"); ok {
		return Load(path)
	}
	if filepath.Ext(name) == ".json" {
		return Load(name)
	}

	return nil, fmt.Errorf("%w %q (available: %s)", ErrUnknownScene, name, strings.Join(Names(), ", "))
}
