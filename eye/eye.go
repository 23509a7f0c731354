// Package eye implements the blink and gaze logic of a pair of round-display
// robot eyes.
//
// Each eye shows a looping eyeball layer with an eyelid layer above it. A
// blink is one playback cycle of the eyelid. Blink schedulers decide when
// blinks fire, the blink executor plays them, and the gaze animator eases the
// eyeball layer towards a clamped offset. The Controller owns all of them and
// is driven one frame at a time through Tick.
package eye

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sarchlab/roboeyes/display"
)

// ErrUnknownEye is returned when parsing an eye name fails.
var ErrUnknownEye = errors.New("eye: unknown eye")

// ID addresses one of the two eyes.
type ID int

// The two eyes.
const (
	Left ID = iota
	Right
)

// IDs lists both eyes in order.
var IDs = []ID{Left, Right}

func (id ID) String() string {
	switch id {
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return fmt.Sprintf("eye(%d)", int(id))
	}
}

func (id ID) valid() bool {
	return id == Left || id == Right
}

// ParseID converts "left"/"l" or "right"/"r" into an ID.
func ParseID(s string) (ID, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left", "l":
		return Left, nil
	case "right", "r":
		return Right, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownEye, s)
	}
}

// AssetPaths names the assets an eye plays.
type AssetPaths struct {
	Eyeball string `yaml:"eyeball"`
	Eyelid  string `yaml:"eyelid"`
}

type layerRole int

const (
	roleEyeball layerRole = iota
	roleEyelid
)

func (r layerRole) String() string {
	if r == roleEyelid {
		return "eyelid"
	}

	return "eyeball"
}

// layerTag travels with cycle-complete events so that the controller can
// find the eye by ID instead of by pointer.
type layerTag struct {
	id   ID
	role layerRole
}

// Eye is one physical eye.
type Eye struct {
	id         ID
	surface    display.Surface
	eyeball    display.Layer
	eyelid     display.Layer
	maxOffset  int
	isBlinking bool
}

// ID returns which eye this is.
func (e *Eye) ID() ID {
	return e.id
}

// MaxOffset returns the gaze clamp bound in pixels.
func (e *Eye) MaxOffset() int {
	return e.maxOffset
}

// IsBlinking tells whether the eyelid is playing a blink.
func (e *Eye) IsBlinking() bool {
	return e.isBlinking
}

// Offset returns the rendered gaze offset.
func (e *Eye) Offset() (x, y int) {
	if e.eyeball == nil {
		return 0, 0
	}

	return e.eyeball.Translate()
}

// Eyeball returns the eyeball layer.
func (e *Eye) Eyeball() display.Layer {
	return e.eyeball
}

// Eyelid returns the eyelid layer.
func (e *Eye) Eyelid() display.Layer {
	return e.eyelid
}
