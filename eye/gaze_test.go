package eye

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("GazeAnimator", func() {
	var r *rig

	BeforeEach(func() {
		r = newRig(Unified)
	})

	It("should settle on the clamped target", func() {
		r.ctrl.LookAt(Left, 1000, 1000)
		r.runTo(200)

		x, y := r.eye(Left).Offset()
		Expect(x).To(Equal(28))
		Expect(y).To(Equal(28))
		Expect(r.hooks.gazes[0].ToX).To(Equal(28))
		Expect(r.hooks.gazes[0].RequestX).To(Equal(1000))
	})

	It("should clamp each axis on its own", func() {
		r.ctrl.LookAt(Right, -1000, 5)
		r.runTo(200)

		x, y := r.eye(Right).Offset()
		Expect(x).To(Equal(-28))
		Expect(y).To(Equal(5))
	})

	It("should keep every rendered offset within the bound", func() {
		targets := [][2]int{
			{1000, -1000}, {-40, 3}, {28, 28}, {0, -29}, {-1 << 20, 1 << 20},
		}

		for _, t := range targets {
			r.ctrl.LookAt(Left, t[0], t[1])

			for i := 0; i < 12; i++ {
				r.runTo(r.clock.Now() + frameSlice)

				x, y := r.eye(Left).Offset()
				Expect(x).To(BeNumerically(">=", -28))
				Expect(x).To(BeNumerically("<=", 28))
				Expect(y).To(BeNumerically(">=", -28))
				Expect(y).To(BeNumerically("<=", 28))
			}
		}
	})

	It("should ease out", func() {
		r.ctrl.LookAt(Left, 28, 0)
		r.runTo(88)

		x, _ := r.eye(Left).Offset()
		Expect(x).To(BeNumerically(">", 14))
		Expect(x).To(BeNumerically("<", 28))
	})

	It("should continue from the in-flight offset when retargeted", func() {
		r.ctrl.LookAt(Left, 28, 0)
		r.runTo(88)
		midway, _ := r.eye(Left).Offset()

		r.ctrl.LookAt(Left, -28, 0)
		x, _ := r.eye(Left).Offset()
		Expect(x).To(Equal(midway))
		Expect(r.hooks.gazes[1].FromX).To(Equal(midway))

		r.runTo(96)
		x, _ = r.eye(Left).Offset()
		Expect(x).To(BeNumerically("<", midway))

		r.runTo(400)
		x, _ = r.eye(Left).Offset()
		Expect(x).To(Equal(-28))
	})

	It("should report movement in the status", func() {
		r.ctrl.LookAt(Left, 10, 10)

		Expect(r.ctrl.Status().Eyes[0].Moving).To(BeTrue())

		r.runTo(200)
		Expect(r.ctrl.Status().Eyes[0].Moving).To(BeFalse())
	})
})
