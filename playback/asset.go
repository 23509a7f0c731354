// Package playback plays frame-based assets (the eyeball loop and the eyelid
// sweep) without decoding image files. Assets are described by a manifest
// that gives each path a frame count and a per-frame delay.
package playback

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/sarchlab/roboeyes/timing"
	"gopkg.in/yaml.v3"
)

var (
	// ErrUnknownAsset is returned when a path is not in the catalog and the
	// catalog has no default entry.
	ErrUnknownAsset = errors.New("playback: unknown asset")

	// ErrInvalidAsset is returned for assets without a path, frames or a
	// frame delay.
	ErrInvalidAsset = errors.New("playback: invalid asset")
)

// Asset describes a frame-based animation.
type Asset struct {
	Path    string           `yaml:"path"`
	Frames  int              `yaml:"frames"`
	FrameMs timing.VTimeInMs `yaml:"frame_ms"`
}

// Duration returns the length of one playback cycle.
func (a Asset) Duration() timing.VTimeInMs {
	return timing.VTimeInMs(a.Frames) * a.FrameMs
}

func (a Asset) validate(requirePath bool) error {
	if requirePath && a.Path == "" {
		return fmt.Errorf("%w: empty path", ErrInvalidAsset)
	}

	if a.Frames <= 0 {
		return fmt.Errorf("%w: %q has %d frames", ErrInvalidAsset, a.Path, a.Frames)
	}

	if a.FrameMs == 0 {
		return fmt.Errorf("%w: %q has no frame delay", ErrInvalidAsset, a.Path)
	}

	return nil
}

// Catalog maps asset paths to their frame layout.
type Catalog struct {
	assets   map[string]Asset
	fallback *Asset
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{assets: make(map[string]Asset)}
}

// Add registers an asset, replacing an earlier one with the same path.
func (c *Catalog) Add(a Asset) error {
	if err := a.validate(true); err != nil {
		return err
	}

	c.assets[a.Path] = a

	return nil
}

// SetFallback sets the layout used for paths that were never added.
func (c *Catalog) SetFallback(a Asset) error {
	if err := a.validate(false); err != nil {
		return err
	}

	c.fallback = &a

	return nil
}

// Lookup finds the asset registered under path.
func (c *Catalog) Lookup(path string) (Asset, error) {
	if a, ok := c.assets[path]; ok {
		return a, nil
	}

	if c.fallback != nil && path != "" {
		a := *c.fallback
		a.Path = path

		return a, nil
	}

	return Asset{}, fmt.Errorf("%w: %q", ErrUnknownAsset, path)
}

// Paths lists the registered paths in order.
func (c *Catalog) Paths() []string {
	paths := make([]string, 0, len(c.assets))
	for p := range c.assets {
		paths = append(paths, p)
	}

	sort.Strings(paths)

	return paths
}

type manifest struct {
	Default *Asset  `yaml:"default"`
	Assets  []Asset `yaml:"assets"`
}

// LoadManifest reads a YAML manifest:
//
//	default:
//	  frames: 24
//	  frame_ms: 40
//	assets:
//	  - path: A:/eyeball.gif
//	    frames: 30
//	    frame_ms: 33
func LoadManifest(r io.Reader) (*Catalog, error) {
	var m manifest

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("playback: decoding manifest: %w", err)
	}

	c := NewCatalog()
	if m.Default != nil {
		if err := c.SetFallback(*m.Default); err != nil {
			return nil, err
		}
	}

	for _, a := range m.Assets {
		if err := c.Add(a); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// LoadManifestFile reads a manifest from disk.
func LoadManifestFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("playback: opening manifest: %w", err)
	}
	defer f.Close()

	return LoadManifest(f)
}
