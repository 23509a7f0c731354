package config

import (
	"fmt"

	"github.com/sarchlab/roboeyes/display"
	"github.com/sarchlab/roboeyes/eye"
	"github.com/sarchlab/roboeyes/hooking"
	"github.com/sarchlab/roboeyes/playback"
	"github.com/sarchlab/roboeyes/timing"
)

// FallbackAsset is the frame layout used for every asset when no manifest
// is configured.
var FallbackAsset = playback.Asset{Frames: 12, FrameMs: 25}

// System is a controller together with the screens it draws on.
type System struct {
	Config     Config
	Driver     *timing.Driver
	Catalog    *playback.Catalog
	Screens    [2]*display.Screen
	Controller *eye.Controller
}

// Screen returns the screen of one eye, or nil.
func (s *System) Screen(id eye.ID) *display.Screen {
	if id != eye.Left && id != eye.Right {
		return nil
	}

	return s.Screens[id]
}

// ScreenByName finds a screen by its display name.
func (s *System) ScreenByName(name string) *display.Screen {
	for _, scr := range s.Screens {
		if scr != nil && scr.Name() == name {
			return scr
		}
	}

	return nil
}

// Catalog loads the asset manifest, or builds a catalog that gives every
// path the FallbackAsset layout.
func (c Config) Catalog() (*playback.Catalog, error) {
	if c.Manifest != "" {
		return playback.LoadManifestFile(c.Manifest)
	}

	catalog := playback.NewCatalog()
	if err := catalog.SetFallback(FallbackAsset); err != nil {
		return nil, err
	}

	return catalog, nil
}

// Assemble builds the screens and the controller on the given driver and
// applies the start-up blink plan.
func (c Config) Assemble(driver *timing.Driver, hooks ...hooking.Hook) (*System, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	catalog, err := c.Catalog()
	if err != nil {
		return nil, err
	}

	mode, _ := eye.ParseMode(c.Mode)

	sys := &System{
		Config:  c,
		Driver:  driver,
		Catalog: catalog,
	}

	b := eye.MakeBuilder().
		WithDriver(driver).
		WithMode(mode).
		WithMaxOffset(c.MaxOffset).
		WithGazeDuration(timing.VTimeInMs(c.GazeDurationMs))

	for _, h := range hooks {
		b = b.WithHook(h)
	}

	for _, id := range eye.IDs {
		ec := c.Eye(id)
		if ec == nil {
			continue
		}

		rotation, err := display.ParseRotation(ec.Display.Rotation)
		if err != nil {
			return nil, fmt.Errorf("config: %s display: %w", id, err)
		}

		name := ec.Display.Name
		if name == "" {
			name = id.String()
		}

		sys.Screens[id] = display.NewScreen(
			name, ec.Display.Diameter, rotation, driver, catalog)
		b = b.WithSurface(id, sys.Screens[id]).WithAssets(id, ec.Assets)
	}

	sys.Controller = b.Build(c.Name)
	sys.Controller.SetBlinkPlan(
		timing.VTimeInMs(c.Blink.IntervalMs), c.Blink.Count)

	return sys, nil
}
