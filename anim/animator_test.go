package anim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/roboeyes/timing"
)

type target struct {
	x, y int
}

var _ = Describe("Animator", func() {
	var (
		clock    *timing.ManualClock
		driver   *timing.Driver
		animator *Animator
		obj      *target
	)

	advance := func(ms timing.VTimeInMs) {
		clock.Advance(ms)
		driver.ProcessPendingWork()
	}

	moveX := func(from, to int, done func()) Anim {
		return Anim{
			Var:        obj,
			Key:        "x",
			From:       from,
			To:         to,
			Duration:   100,
			OnStep:     func(v int) { obj.x = v },
			OnComplete: done,
		}
	}

	BeforeEach(func() {
		clock = timing.NewManualClock(0)
		driver = timing.NewDriver(clock)
		animator = NewAnimator(driver)
		obj = &target{}
	})

	It("should apply the start value immediately", func() {
		animator.Start(moveX(10, 100, nil))

		Expect(obj.x).To(Equal(10))
		Expect(animator.Running(obj, "x")).To(BeTrue())
	})

	It("should step linearly by default", func() {
		completed := false
		animator.Start(moveX(0, 100, func() { completed = true }))

		advance(40)
		Expect(obj.x).To(Equal(40))
		Expect(completed).To(BeFalse())

		advance(60)
		Expect(obj.x).To(Equal(100))
		Expect(completed).To(BeTrue())
		Expect(animator.Count()).To(Equal(0))
	})

	It("should follow the easing path", func() {
		a := moveX(0, 100, nil)
		a.Path = EaseOut
		animator.Start(a)

		advance(50)
		Expect(obj.x).To(BeNumerically(">", 75))
		Expect(obj.x).To(BeNumerically("<", 100))
	})

	It("should land on the end value when a frame is late", func() {
		animator.Start(moveX(0, -28, nil))

		advance(500)

		Expect(obj.x).To(Equal(-28))
		Expect(animator.Count()).To(Equal(0))
	})

	It("should replace a running animation on the same var and key", func() {
		firstDone := false
		animator.Start(moveX(0, 100, func() { firstDone = true }))
		advance(50)

		current, ok := animator.Value(obj, "x")
		Expect(ok).To(BeTrue())
		Expect(current).To(Equal(50))

		secondDone := false
		animator.Start(moveX(current, 0, func() { secondDone = true }))
		Expect(obj.x).To(Equal(50))
		Expect(animator.Count()).To(Equal(1))

		advance(100)
		Expect(obj.x).To(Equal(0))
		Expect(firstDone).To(BeFalse())
		Expect(secondDone).To(BeTrue())
	})

	It("should keep animations on different keys independent", func() {
		animator.Start(moveX(0, 100, nil))
		animator.Start(Anim{
			Var: obj, Key: "y", From: 0, To: -100, Duration: 100,
			OnStep: func(v int) { obj.y = v },
		})

		advance(100)

		Expect(obj.x).To(Equal(100))
		Expect(obj.y).To(Equal(-100))
	})

	It("should jump to the end value when the duration is zero", func() {
		completed := false
		a := moveX(0, 28, func() { completed = true })
		a.Duration = 0
		animator.Start(a)

		Expect(obj.x).To(Equal(28))
		Expect(completed).To(BeTrue())
		Expect(animator.Count()).To(Equal(0))
	})

	It("should let a completion callback start the next animation", func() {
		animator.Start(moveX(0, 10, func() {
			animator.Start(moveX(10, 20, nil))
		}))

		advance(100)
		Expect(obj.x).To(Equal(10))
		Expect(animator.Running(obj, "x")).To(BeTrue())

		advance(100)
		Expect(obj.x).To(Equal(20))
	})

	It("should stop deleted animations", func() {
		animator.Start(moveX(0, 100, nil))
		animator.Start(Anim{Var: obj, Key: "y", To: 5, Duration: 100})

		Expect(animator.Delete(obj, "x")).To(BeTrue())
		Expect(animator.Delete(obj, "x")).To(BeFalse())
		Expect(animator.DeleteVar(obj)).To(Equal(1))

		advance(100)
		Expect(obj.x).To(Equal(0))
		Expect(animator.Count()).To(Equal(0))
	})
})
