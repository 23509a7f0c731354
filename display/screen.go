package display

import (
	"github.com/sarchlab/roboeyes/playback"
	"github.com/sarchlab/roboeyes/timing"
)

// Driver is the part of the timing driver a Screen needs.
type Driver interface {
	timing.EventScheduler
	RegisterTicker(t timing.Ticker)
}

// LayerState is a copy of what a layer shows.
type LayerState struct {
	Name     string `json:"name"`
	Source   string `json:"source"`
	Frame    int    `json:"frame"`
	Frames   int    `json:"frames"`
	Playing  bool   `json:"playing"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Centered bool   `json:"centered"`
}

// ScreenState is a copy of what a screen shows, bottom layer first.
type ScreenState struct {
	Name     string       `json:"name"`
	Diameter int          `json:"diameter"`
	Rotation Rotation     `json:"rotation"`
	Layers   []LayerState `json:"layers"`
}

// Screen is an in-memory round display. It steps the players of its layers
// every frame.
type Screen struct {
	name     string
	diameter int
	rotation Rotation
	driver   Driver
	catalog  *playback.Catalog
	layers   []*ScreenLayer
}

// NewScreen creates a screen and registers it with the driver.
func NewScreen(
	name string,
	diameter int,
	rotation Rotation,
	driver Driver,
	catalog *playback.Catalog,
) *Screen {
	s := &Screen{
		name:     name,
		diameter: diameter,
		rotation: rotation,
		driver:   driver,
		catalog:  catalog,
	}

	driver.RegisterTicker(s)

	return s
}

// Name returns the screen name.
func (s *Screen) Name() string {
	return s.name
}

// Diameter returns the panel size in pixels.
func (s *Screen) Diameter() int {
	return s.diameter
}

// Rotation returns the panel rotation.
func (s *Screen) Rotation() Rotation {
	return s.rotation
}

// CreateLayer adds a layer on top of the existing ones.
func (s *Screen) CreateLayer(name string) Layer {
	l := &ScreenLayer{
		FramePlayer: playback.NewFramePlayer(
			s.name+"."+name, s.catalog, s.driver),
	}
	s.layers = append(s.layers, l)

	return l
}

// DeleteLayer removes a layer. Deleting a layer twice, or a layer of another
// screen, does nothing.
func (s *Screen) DeleteLayer(layer Layer) {
	for i, l := range s.layers {
		if Layer(l) != layer {
			continue
		}

		l.FramePlayer.Pause()
		l.deleted = true
		s.layers = append(s.layers[:i], s.layers[i+1:]...)

		return
	}
}

// Layers returns the live layers, bottom first.
func (s *Screen) Layers() []Layer {
	layers := make([]Layer, len(s.layers))
	for i, l := range s.layers {
		layers[i] = l
	}

	return layers
}

// Snapshot copies the current state of the screen.
func (s *Screen) Snapshot() ScreenState {
	state := ScreenState{
		Name:     s.name,
		Diameter: s.diameter,
		Rotation: s.rotation,
		Layers:   make([]LayerState, 0, len(s.layers)),
	}

	for _, l := range s.layers {
		state.Layers = append(state.Layers, l.state())
	}

	return state
}

// Tick steps every layer player.
func (s *Screen) Tick(now timing.VTimeInMs) bool {
	layers := make([]*ScreenLayer, len(s.layers))
	copy(layers, s.layers)

	progress := false
	for _, l := range layers {
		if l.deleted {
			continue
		}

		if l.FramePlayer.Tick(now) {
			progress = true
		}
	}

	return progress
}

// ScreenLayer is a layer of a Screen.
type ScreenLayer struct {
	*playback.FramePlayer

	x, y     int
	centered bool
	deleted  bool
}

// Translate returns the translation from the aligned position.
func (l *ScreenLayer) Translate() (x, y int) {
	return l.x, l.y
}

// SetTranslateX sets the horizontal translation.
func (l *ScreenLayer) SetTranslateX(x int) {
	l.x = x
}

// SetTranslateY sets the vertical translation.
func (l *ScreenLayer) SetTranslateY(y int) {
	l.y = y
}

// Center aligns the layer to the middle of the screen.
func (l *ScreenLayer) Center() {
	l.centered = true
}

// IsDeleted tells whether the layer was removed from its screen.
func (l *ScreenLayer) IsDeleted() bool {
	return l.deleted
}

func (l *ScreenLayer) state() LayerState {
	return LayerState{
		Name:     l.Name(),
		Source:   l.Source(),
		Frame:    l.Frame(),
		Frames:   l.Asset().Frames,
		Playing:  l.IsPlaying(),
		X:        l.x,
		Y:        l.y,
		Centered: l.centered,
	}
}
