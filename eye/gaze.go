package eye

import (
	"github.com/sarchlab/roboeyes/anim"
	"github.com/sarchlab/roboeyes/timing"
)

const (
	keyTranslateX = "translate_x"
	keyTranslateY = "translate_y"
)

// GazeAnimator eases the eyeball layer of an eye towards a gaze offset.
type GazeAnimator struct {
	animator *anim.Animator
	duration timing.VTimeInMs
	path     anim.EasingFunc
}

// NewGazeAnimator creates a GazeAnimator.
func NewGazeAnimator(
	animator *anim.Animator,
	duration timing.VTimeInMs,
	path anim.EasingFunc,
) GazeAnimator {
	return GazeAnimator{
		animator: animator,
		duration: duration,
		path:     path,
	}
}

// LookAt clamps the target to the eye's offset bound and starts one
// animation per axis from the rendered offset. Animations already running on
// the layer are replaced. It returns the clamped target.
func (g GazeAnimator) LookAt(e *Eye, tx, ty int) (x, y int) {
	if e == nil || e.eyeball == nil {
		return 0, 0
	}

	x = clamp(tx, e.maxOffset)
	y = clamp(ty, e.maxOffset)
	fromX, fromY := e.eyeball.Translate()

	layer := e.eyeball
	g.animator.Start(anim.Anim{
		Var:      layer,
		Key:      keyTranslateX,
		From:     fromX,
		To:       x,
		Duration: g.duration,
		Path:     g.path,
		OnStep:   layer.SetTranslateX,
	})
	g.animator.Start(anim.Anim{
		Var:      layer,
		Key:      keyTranslateY,
		From:     fromY,
		To:       y,
		Duration: g.duration,
		Path:     g.path,
		OnStep:   layer.SetTranslateY,
	})

	return x, y
}

// Stop cancels the gaze animations of an eye, leaving the offset where it is.
func (g GazeAnimator) Stop(e *Eye) {
	if e == nil || e.eyeball == nil {
		return
	}

	g.animator.DeleteVar(e.eyeball)
}

// Moving tells whether a gaze animation is running on the eye.
func (g GazeAnimator) Moving(e *Eye) bool {
	if e == nil || e.eyeball == nil {
		return false
	}

	return g.animator.Running(e.eyeball, keyTranslateX) ||
		g.animator.Running(e.eyeball, keyTranslateY)
}

func clamp(v, bound int) int {
	if v > bound {
		return bound
	}

	if v < -bound {
		return -bound
	}

	return v
}
