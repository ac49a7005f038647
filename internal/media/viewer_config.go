package media

import (
	_ "embed"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"slices"

	"github.com/pelletier/go-toml/v2"
)

//go:embed viewers.toml
var viewersTOML []byte

// ViewerDefinition describes how an image viewer is invoked.
type ViewerDefinition struct {
	Description string   `toml:"description"`
	Platforms   []string `toml:"platforms"`
	// Command overrides the executable, for viewers that are shell builtins.
	Command string   `toml:"command,omitempty"`
	Args    []string `toml:"args,omitempty"`
}

type viewersFile struct {
	Viewers map[string]ViewerDefinition `toml:"viewers"`
}

// ViewerRegistry maps viewer names to their invocation.
type ViewerRegistry struct {
	viewers map[string]ViewerDefinition
	goos    string
}

// NewViewerRegistry loads the built-in definitions.
func NewViewerRegistry() (*ViewerRegistry, error) {
	viewers, err := parseViewers(viewersTOML)
	if err != nil {
		return nil, fmt.Errorf("parsing viewers.toml: %w", err)
	}
	return &ViewerRegistry{viewers: viewers, goos: runtime.GOOS}, nil
}

func parseViewers(data []byte) (map[string]ViewerDefinition, error) {
	var file viewersFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	if file.Viewers == nil {
		file.Viewers = make(map[string]ViewerDefinition)
	}
	return file.Viewers, nil
}

// LoadOverrides merges definitions from a user file over the built-in ones.
// A missing file is not an error.
func (r *ViewerRegistry) LoadOverrides(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading %s: %w", path, err)
	}
	viewers, err := parseViewers(data)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	for name, def := range viewers {
		r.viewers[name] = def
	}
	return nil
}

// Definition returns the definition registered for name.
func (r *ViewerRegistry) Definition(name string) (ViewerDefinition, bool) {
	def, ok := r.viewers[name]
	return def, ok
}

// Command builds the process that shows url with the named viewer.
func (r *ViewerRegistry) Command(name, url string) (*exec.Cmd, error) {
	def, ok := r.viewers[name]
	if !ok {
		return exec.Command(name, url), nil
	}

	if len(def.Platforms) > 0 && !slices.Contains(def.Platforms, r.goos) {
		return nil, fmt.Errorf("%s not supported on %s", name, r.goos)
	}

	bin := name
	if def.Command != "" {
		bin = def.Command
	}
	args := append(slices.Clone(def.Args), url)
	return exec.Command(bin, args...), nil
}
