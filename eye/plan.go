package eye

import (
	"fmt"

	"github.com/sarchlab/roboeyes/timing"
)

// BlinkCount is how many blinks a plan has left. It is either a finite
// number or infinite.
type BlinkCount struct {
	n        int
	infinite bool
}

// Finite returns a finite count. Negative values count as zero.
func Finite(n int) BlinkCount {
	if n < 0 {
		n = 0
	}

	return BlinkCount{n: n}
}

// Infinite returns a count that never runs out.
func Infinite() BlinkCount {
	return BlinkCount{infinite: true}
}

// CountFromInt converts the conventional integer form, where any negative
// value (canonically -1) means infinite.
func CountFromInt(n int) BlinkCount {
	if n < 0 {
		return Infinite()
	}

	return Finite(n)
}

// IsInfinite tells whether the count never runs out.
func (c BlinkCount) IsInfinite() bool {
	return c.infinite
}

// IsZero tells whether no blinks remain.
func (c BlinkCount) IsZero() bool {
	return !c.infinite && c.n == 0
}

// Int returns the count in the conventional integer form, -1 for infinite.
func (c BlinkCount) Int() int {
	if c.infinite {
		return -1
	}

	return c.n
}

// Dec returns the count after one blink. Infinite and zero counts stay the
// same.
func (c BlinkCount) Dec() BlinkCount {
	if c.infinite || c.n == 0 {
		return c
	}

	return BlinkCount{n: c.n - 1}
}

func (c BlinkCount) String() string {
	if c.infinite {
		return "infinite"
	}

	return fmt.Sprintf("%d", c.n)
}

// BlinkPlan is the blink interval and the remaining blinks.
type BlinkPlan struct {
	Interval  timing.VTimeInMs
	Remaining BlinkCount
}

func (p BlinkPlan) String() string {
	return fmt.Sprintf("every %d ms, %s left", p.Interval, p.Remaining)
}
