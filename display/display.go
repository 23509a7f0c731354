// Package display defines the surfaces and layers the eyes draw on, and an
// in-memory screen that keeps layer state for previews and monitoring.
package display

import (
	"errors"
	"fmt"

	"github.com/sarchlab/roboeyes/timing"
)

// ErrInvalidRotation is returned for rotations that are not a multiple of
// 90 degrees.
var ErrInvalidRotation = errors.New("display: invalid rotation")

// Rotation is the panel rotation in degrees.
type Rotation int

// Supported rotations.
const (
	Rotation0   Rotation = 0
	Rotation90  Rotation = 90
	Rotation180 Rotation = 180
	Rotation270 Rotation = 270
)

// ParseRotation converts degrees into a Rotation.
func ParseRotation(deg int) (Rotation, error) {
	switch r := Rotation(deg); r {
	case Rotation0, Rotation90, Rotation180, Rotation270:
		return r, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrInvalidRotation, deg)
	}
}

// Layer is an image layer that plays an asset and can be translated.
type Layer interface {
	Name() string

	Source() string
	SetSource(path string) error
	Restart()
	Pause()
	Resume()
	SetLoopCount(n int)
	OnCycleComplete(handler timing.Handler, tag any)
	IsPlaying() bool
	Frame() int

	Translate() (x, y int)
	SetTranslateX(x int)
	SetTranslateY(y int)
	Center()
}

// Surface is one physical display that owns layers.
type Surface interface {
	Name() string
	CreateLayer(name string) Layer
	DeleteLayer(layer Layer)
}
