package anim

import "math"

// EasingFunc maps linear progress in [0, 1] to eased progress. Easing
// functions return 0 at 0 and 1 at 1.
type EasingFunc func(t float64) float64

// Linear moves at constant speed.
func Linear(t float64) float64 {
	return clampUnit(t)
}

// EaseIn starts slowly and speeds up.
func EaseIn(t float64) float64 {
	return bezier(clampUnit(t), 0.0498, 0.0977)
}

// EaseOut starts fast and settles slowly.
func EaseOut(t float64) float64 {
	return bezier(clampUnit(t), 0.8789, 0.9277)
}

// EaseInOut is slow at both ends.
func EaseInOut(t float64) float64 {
	return bezier(clampUnit(t), 0.0488, 0.9512)
}

// bezier evaluates a one dimensional cubic bezier with end points 0 and 1.
func bezier(t, p1, p2 float64) float64 {
	rem := 1 - t

	return 3*rem*rem*t*p1 + 3*rem*t*t*p2 + t*t*t
}

func clampUnit(t float64) float64 {
	return math.Max(0, math.Min(1, t))
}
