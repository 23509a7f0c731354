package eye

import (
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/roboeyes/display"
	"github.com/sarchlab/roboeyes/playback"
	"github.com/sarchlab/roboeyes/timing"
)

var _ = Describe("Controller", func() {
	var r *rig

	BeforeEach(func() {
		r = newRig(Unified)
	})

	It("should play the eyeballs and hold the eyelids", func() {
		for _, id := range IDs {
			e := r.eye(id)

			Expect(e.MaxOffset()).To(Equal(DefaultMaxOffset))
			Expect(e.Eyeball().Source()).To(Equal("ball.gif"))
			Expect(e.Eyeball().IsPlaying()).To(BeTrue())
			Expect(e.Eyelid().Source()).To(Equal("lid.gif"))
			Expect(e.Eyelid().IsPlaying()).To(BeFalse())
		}

		layers := r.screens[Left].Snapshot().Layers
		Expect(layers).To(HaveLen(2))
		Expect(layers[0].Name).To(Equal("left.eyeball"))
		Expect(layers[1].Name).To(Equal("left.eyelid"))
		Expect(layers[1].Centered).To(BeTrue())
	})

	It("should resynchronize the eyeballs when one finishes a loop", func() {
		right := r.eye(Right).Eyeball()

		r.runTo(48)
		right.Pause()
		r.runTo(112)
		right.Resume()
		r.runTo(192)
		Expect(r.eye(Left).Eyeball().Frame()).NotTo(Equal(right.Frame()))

		r.runTo(200)
		Expect(r.hooks.resyncs).To(ContainElement(timing.VTimeInMs(200)))
		Expect(right.Frame()).To(Equal(0))
		Expect(r.eye(Left).Eyeball().Frame()).To(Equal(0))

		for r.clock.Now() < 1000 {
			r.runTo(r.clock.Now() + frameSlice)
			Expect(right.Frame()).To(Equal(r.eye(Left).Eyeball().Frame()))
		}
	})

	It("should resynchronize at most once per frame", func() {
		r.runTo(1000)

		Expect(r.hooks.resyncs).To(Equal([]timing.VTimeInMs{
			200, 400, 600, 800, 1000,
		}))
	})

	Context("when switching material", func() {
		It("should keep a running blink finishing cleanly", func() {
			r.ctrl.BlinkNow()
			r.runTo(64)
			Expect(r.eye(Left).Eyelid().Frame()).To(Equal(2))

			err := r.ctrl.SwitchMaterial(Left, "ball2.gif", "lid2.gif", 10)

			Expect(err).NotTo(HaveOccurred())
			lid := r.eye(Left).Eyelid()
			Expect(lid.Source()).To(Equal("lid2.gif"))
			Expect(lid.Frame()).To(Equal(0))
			Expect(lid.IsPlaying()).To(BeTrue())
			Expect(r.eye(Left).IsBlinking()).To(BeTrue())

			r.runTo(216)
			Expect(r.eye(Left).IsBlinking()).To(BeTrue())

			r.runTo(232)
			Expect(r.eye(Left).IsBlinking()).To(BeFalse())
			Expect(lid.IsPlaying()).To(BeFalse())
			Expect(r.ctrl.BlinkEyeNow(Left)).To(BeTrue())
		})

		It("should recenter and apply the new bound", func() {
			r.ctrl.LookAt(Left, 20, -20)
			r.runTo(100)

			Expect(r.ctrl.SwitchMaterial(Left, "", "", 10)).To(Succeed())

			x, y := r.eye(Left).Offset()
			Expect(x).To(Equal(0))
			Expect(y).To(Equal(0))
			Expect(r.eye(Left).MaxOffset()).To(Equal(10))
			Expect(r.eye(Left).Eyeball().Source()).To(Equal("ball.gif"))

			r.runTo(400)
			x, y = r.eye(Left).Offset()
			Expect(x).To(Equal(0))
			Expect(y).To(Equal(0))

			r.ctrl.LookAt(Left, 100, -100)
			r.runTo(700)
			x, y = r.eye(Left).Offset()
			Expect(x).To(Equal(10))
			Expect(y).To(Equal(-10))
		})

		It("should restart both eyeballs on a new eyeball", func() {
			r.runTo(96)

			Expect(r.ctrl.SwitchMaterial(Right, "ball2.gif", "", 28)).To(Succeed())

			Expect(r.hooks.resyncs).To(ContainElement(timing.VTimeInMs(96)))
			Expect(r.eye(Left).Eyeball().Frame()).To(Equal(0))
			Expect(r.hooks.materials).To(HaveLen(1))
		})

		It("should report assets that fail to load", func() {
			err := r.ctrl.SwitchMaterial(Left, "nope.gif", "", 20)

			Expect(err).To(MatchError(playback.ErrUnknownAsset))
			Expect(r.hooks.assetErrors).To(HaveLen(1))
			Expect(r.eye(Left).Eyeball().Source()).To(Equal("ball.gif"))
			Expect(r.eye(Left).MaxOffset()).To(Equal(20))
		})
	})

	Context("when an eyelid asset fails to load", func() {
		BeforeEach(func() {
			r = newRigWithAssets(Unified, map[ID]AssetPaths{
				Left: {Eyeball: "ball.gif", Eyelid: "missing.gif"},
			})
		})

		It("should keep blinking the healthy eye", func() {
			Expect(r.hooks.assetErrors).To(HaveLen(1))

			r.ctrl.SetBlinkPlan(500, -1)
			r.runTo(5000)

			Expect(r.hooks.blinkTimes()).To(HaveLen(11))
			Expect(r.hooks.suppressed).To(BeEmpty())
			Expect(r.eye(Left).IsBlinking()).To(BeFalse())
			for _, b := range r.hooks.blinks {
				Expect(b.Eyes).To(Equal([]ID{Right}))
			}
		})

		It("should blink the eye again once a valid eyelid is loaded", func() {
			Expect(r.ctrl.SwitchMaterial(Left, "", "lid.gif", DefaultMaxOffset)).
				To(Succeed())

			Expect(r.ctrl.BlinkNow()).To(BeTrue())
			Expect(r.eye(Left).IsBlinking()).To(BeTrue())
			Expect(r.eye(Right).IsBlinking()).To(BeTrue())
		})
	})

	It("should apply submitted work on the next tick", func() {
		var wg sync.WaitGroup
		for _, id := range IDs {
			wg.Add(1)
			go func(id ID) {
				defer wg.Done()
				r.ctrl.Submit(func(c *Controller) {
					c.LookAt(id, 28, 0)
				})
			}(id)
		}
		wg.Wait()

		Expect(r.hooks.gazes).To(BeEmpty())

		r.runTo(200)
		Expect(r.hooks.gazes).To(HaveLen(2))
		x, _ := r.eye(Right).Offset()
		Expect(x).To(Equal(28))
	})

	It("should ignore eyes that do not exist", func() {
		r = newRig(Unified, Left)

		r.ctrl.LookAt(Right, 10, 10)
		Expect(r.ctrl.SwitchMaterial(Right, "ball2.gif", "", 5)).To(Succeed())
		Expect(r.ctrl.BlinkEyeNow(Right)).To(BeFalse())
		Expect(r.ctrl.Eye(ID(7))).To(BeNil())

		Expect(r.hooks.missing).To(HaveLen(3))
		Expect(r.hooks.missing[0].Op).To(Equal("look_at"))
	})

	It("should reject unknown events", func() {
		Expect(r.ctrl.Handle("hello")).NotTo(Succeed())
	})

	It("should report its status", func() {
		r.ctrl.SetBlinkPlan(2000, -1)

		st := r.ctrl.Status()

		Expect(st.Mode).To(Equal("unified"))
		Expect(st.Pair.State).To(Equal("armed"))
		Expect(st.Pair.Remaining).To(Equal(-1))
		Expect(st.Eyes).To(HaveLen(2))
		Expect(st.Eyes[1].ID).To(Equal("right"))
		Expect(st.Eyes[1].Blinking).To(BeTrue())
	})

	Context("when shutting down", func() {
		It("should release the layers and stop the driver", func() {
			r.ctrl.SetBlinkPlan(2000, -1)
			r.ctrl.LookAt(Left, 10, 10)

			r.ctrl.Shutdown()

			Expect(r.ctrl.IsShutdown()).To(BeTrue())
			Expect(r.driver.IsShutdown()).To(BeTrue())
			Expect(r.ctrl.Eye(Left)).To(BeNil())
			Expect(r.ctrl.PairScheduler()).To(BeNil())
			Expect(r.screens[Left].Layers()).To(BeEmpty())
			Expect(r.screens[Right].Layers()).To(BeEmpty())
		})

		It("should ignore calls afterwards", func() {
			r.ctrl.Shutdown()
			r.ctrl.Shutdown()

			r.ctrl.SetBlinkPlan(100, -1)
			r.ctrl.LookAt(Left, 1, 1)
			r.ctrl.Tick()

			Expect(r.ctrl.BlinkNow()).To(BeFalse())
			Expect(r.hooks.blinks).To(BeEmpty())
		})

		It("should drop work submitted while shutting down", func() {
			r.ctrl.Submit(func(c *Controller) { c.SetBlinkPlan(100, -1) })

			r.ctrl.Shutdown()

			Expect(r.hooks.blinks).To(BeEmpty())
		})
	})
})

var _ = Describe("Controller with mocked surfaces", func() {
	var (
		mockCtrl *gomock.Controller
		surfaces [2]*MockSurface
		balls    [2]*MockLayer
		lids     [2]*MockLayer
		driver   *timing.Driver
		ctrl     *Controller
	)

	same := func(l display.Layer) gomock.Matcher {
		return gomock.Cond(func(x any) bool { return x == l })
	}

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		driver = timing.NewDriver(timing.NewManualClock(0))

		b := MakeBuilder().WithDriver(driver)
		for _, id := range IDs {
			surfaces[id] = NewMockSurface(mockCtrl)
			balls[id] = NewMockLayer(mockCtrl)
			lids[id] = NewMockLayer(mockCtrl)

			surfaces[id].EXPECT().CreateLayer("eyeball").Return(balls[id])
			surfaces[id].EXPECT().CreateLayer("eyelid").Return(lids[id])

			for _, l := range []*MockLayer{balls[id], lids[id]} {
				l.EXPECT().SetSource(gomock.Any()).Return(nil).AnyTimes()
				l.EXPECT().Center().AnyTimes()
				l.EXPECT().SetLoopCount(gomock.Any()).AnyTimes()
				l.EXPECT().OnCycleComplete(gomock.Any(), gomock.Any()).AnyTimes()
				l.EXPECT().Restart().AnyTimes()
				l.EXPECT().Pause().AnyTimes()
				l.EXPECT().Resume().AnyTimes()
				l.EXPECT().Translate().Return(0, 0).AnyTimes()
				l.EXPECT().Source().Return("lid.gif").AnyTimes()
			}

			b = b.WithSurface(id, surfaces[id]).WithAssets(id, defaultAssets)
		}

		ctrl = b.Build("mocked")
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should halt timers, then release eyelids before eyeballs", func() {
		ctrl.SetBlinkPlan(2000, -1)
		pair := ctrl.PairScheduler()
		Expect(pair.TimerRunning()).To(BeTrue())

		gomock.InOrder(
			surfaces[Left].EXPECT().DeleteLayer(same(lids[Left])).
				Do(func(display.Layer) {
					Expect(pair.TimerRunning()).To(BeFalse())
				}),
			surfaces[Left].EXPECT().DeleteLayer(same(balls[Left])),
			surfaces[Right].EXPECT().DeleteLayer(same(lids[Right])),
			surfaces[Right].EXPECT().DeleteLayer(same(balls[Right])),
		)

		ctrl.Shutdown()

		Expect(driver.IsShutdown()).To(BeTrue())
	})

	It("should load the configured assets", func() {
		Expect(ctrl.Eye(Left).Eyeball()).To(BeIdenticalTo(balls[Left]))
		Expect(ctrl.Eye(Right).Eyelid()).To(BeIdenticalTo(lids[Right]))
	})
})

var _ = Describe("Builder", func() {
	It("should require a driver", func() {
		Expect(func() { MakeBuilder().Build("x") }).To(Panic())
	})

	It("should reject a negative offset bound", func() {
		d := timing.NewDriver(timing.NewManualClock(0))

		Expect(func() {
			MakeBuilder().WithDriver(d).WithMaxOffset(-1).Build("x")
		}).To(Panic())
	})

	It("should reject assets for an eye without a surface", func() {
		d := timing.NewDriver(timing.NewManualClock(0))

		Expect(func() {
			MakeBuilder().WithDriver(d).WithAssets(Right, defaultAssets).Build("x")
		}).To(Panic())
	})
})
