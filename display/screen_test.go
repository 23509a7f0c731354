package display

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/roboeyes/playback"
	"github.com/sarchlab/roboeyes/timing"
)

var _ = Describe("Rotation", func() {
	It("should accept quarter turns", func() {
		r, err := ParseRotation(270)

		Expect(err).NotTo(HaveOccurred())
		Expect(r).To(Equal(Rotation270))
	})

	It("should reject other angles", func() {
		_, err := ParseRotation(45)

		Expect(err).To(MatchError(ErrInvalidRotation))
	})
})

var _ = Describe("Screen", func() {
	var (
		clock  *timing.ManualClock
		driver *timing.Driver
		screen *Screen
	)

	BeforeEach(func() {
		clock = timing.NewManualClock(0)
		driver = timing.NewDriver(clock)

		catalog := playback.NewCatalog()
		Expect(catalog.Add(playback.Asset{
			Path: "ball.gif", Frames: 5, FrameMs: 10,
		})).To(Succeed())

		screen = NewScreen("left", 240, Rotation270, driver, catalog)
	})

	It("should stack layers in creation order", func() {
		ball := screen.CreateLayer("eyeball")
		lid := screen.CreateLayer("eyelid")

		Expect(screen.Layers()).To(Equal([]Layer{ball, lid}))
		Expect(ball.Name()).To(Equal("left.eyeball"))
	})

	It("should step the players of its layers", func() {
		ball := screen.CreateLayer("eyeball")
		Expect(ball.SetSource("ball.gif")).To(Succeed())
		ball.Restart()

		clock.Set(25)
		driver.ProcessPendingWork()

		Expect(ball.Frame()).To(Equal(2))
	})

	It("should stop stepping deleted layers", func() {
		ball := screen.CreateLayer("eyeball")
		Expect(ball.SetSource("ball.gif")).To(Succeed())
		ball.Restart()

		screen.DeleteLayer(ball)
		screen.DeleteLayer(ball)
		clock.Set(25)
		driver.ProcessPendingWork()

		Expect(ball.Frame()).To(Equal(0))
		Expect(ball.(*ScreenLayer).IsDeleted()).To(BeTrue())
		Expect(screen.Layers()).To(BeEmpty())
	})

	It("should report layer state in snapshots", func() {
		ball := screen.CreateLayer("eyeball")
		Expect(ball.SetSource("ball.gif")).To(Succeed())
		ball.Center()
		ball.SetTranslateX(-12)
		ball.SetTranslateY(7)

		state := screen.Snapshot()

		Expect(state.Diameter).To(Equal(240))
		Expect(state.Rotation).To(Equal(Rotation270))
		Expect(state.Layers).To(ConsistOf(LayerState{
			Name:     "left.eyeball",
			Source:   "ball.gif",
			Frames:   5,
			X:        -12,
			Y:        7,
			Centered: true,
		}))
	})
})
