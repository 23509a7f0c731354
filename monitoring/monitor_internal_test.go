package monitoring

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/roboeyes/config"
	"github.com/sarchlab/roboeyes/display"
	"github.com/sarchlab/roboeyes/eye"
	"github.com/sarchlab/roboeyes/timing"
)

var _ = Describe("Monitor", func() {
	var (
		clock  *timing.ManualClock
		sys    *config.System
		m      *Monitor
		router http.Handler
		stop   chan struct{}
		done   chan struct{}
	)

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		return rec
	}

	BeforeEach(func() {
		c := config.Default()
		c.Blink.Count = 0

		clock = timing.NewManualClock(0)
		var err error
		sys, err = c.Assemble(timing.NewDriver(clock))
		Expect(err).NotTo(HaveOccurred())

		m = NewMonitor().WithTimeout(time.Second)
		m.RegisterController(sys.Controller)
		for _, s := range sys.Screens {
			m.RegisterScreen(s)
		}

		meter := NewFPSMeter(nil)
		sys.Driver.AcceptHook(meter)
		m.RegisterFPSMeter(meter)

		router = m.Router()

		stop = make(chan struct{})
		done = make(chan struct{})

		go func() {
			defer close(done)

			for {
				select {
				case <-stop:
					return
				case <-time.After(time.Millisecond):
					clock.Advance(8)
					sys.Controller.Tick()
				}
			}
		}()
	})

	AfterEach(func() {
		close(stop)
		<-done
	})

	It("should fall back to a random port for reserved ports", func() {
		Expect(NewMonitor().WithPortNumber(80).portNumber).To(Equal(0))
		Expect(NewMonitor().WithPortNumber(32776).portNumber).To(Equal(32776))
	})

	It("should report the driver time", func() {
		rec := do(http.MethodGet, "/api/now", "")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(HavePrefix(`{"now":`))
	})

	It("should report the status", func() {
		rec := do(http.MethodGet, "/api/status", "")

		Expect(rec.Code).To(Equal(http.StatusOK))

		var st eye.Status
		Expect(json.Unmarshal(rec.Body.Bytes(), &st)).To(Succeed())
		Expect(st.Mode).To(Equal("unified"))
		Expect(st.Eyes).To(HaveLen(2))
		Expect(st.Pair.State).To(Equal("idle"))
	})

	It("should list and show screens", func() {
		rec := do(http.MethodGet, "/api/list_screens", "")
		Expect(rec.Body.String()).To(Equal(`["left","right"]`))

		rec = do(http.MethodGet, "/api/screen/left", "")
		Expect(rec.Code).To(Equal(http.StatusOK))

		var st display.ScreenState
		Expect(json.Unmarshal(rec.Body.Bytes(), &st)).To(Succeed())
		Expect(st.Diameter).To(Equal(240))
		Expect(st.Layers).To(HaveLen(2))
		Expect(st.Layers[0].Source).To(Equal("leye_tired.gif"))

		rec = do(http.MethodGet, "/api/screen/nose", "")
		Expect(rec.Code).To(Equal(http.StatusNotFound))
	})

	It("should serialize an eye", func() {
		rec := do(http.MethodGet, "/api/eye/left", "")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.Len()).To(BeNumerically(">", 0))

		rec = do(http.MethodGet, "/api/eye/middle", "")
		Expect(rec.Code).To(Equal(http.StatusNotFound))
	})

	It("should look through the JSON endpoint", func() {
		rec := do(http.MethodPost, "/api/look", `{"eye":"right","x":-50,"y":4}`)

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(Equal("looking at (-50, 4) with right\n"))

		Eventually(func() int {
			st := do(http.MethodGet, "/api/status", "")
			var s eye.Status
			Expect(json.Unmarshal(st.Body.Bytes(), &s)).To(Succeed())
			return s.Eyes[1].X
		}).Should(Equal(-28))
	})

	It("should set plans and blink", func() {
		rec := do(http.MethodPost, "/api/plan", `{"interval_ms":1000,"count":3}`)
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(Equal("plan every 1000 ms, 2 left\n"))

		rec = do(http.MethodPost, "/api/plan", `{"interval_ms":1000,"count":3,"eye":"left"}`)
		Expect(rec.Code).To(Equal(http.StatusBadRequest))

		rec = do(http.MethodPost, "/api/blink", `{}`)
		Expect(rec.Code).To(Equal(http.StatusOK))
	})

	It("should reject unknown JSON fields", func() {
		rec := do(http.MethodPost, "/api/blink", `{"eyes":"left"}`)

		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("should switch material", func() {
		rec := do(http.MethodPost, "/api/material",
			`{"eye":"left","eyeball":"leye_proud.gif","max_offset":20}`)

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(Equal("left material switched\n"))
	})

	It("should run text commands", func() {
		rec := do(http.MethodPost, "/api/cmd", "status")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("eyes: unified mode"))

		rec = do(http.MethodPost, "/api/cmd", "wink")
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("should report the frame rate", func() {
		Eventually(func() float64 {
			rec := do(http.MethodGet, "/api/fps", "")
			var rsp fpsRsp
			Expect(json.Unmarshal(rec.Body.Bytes(), &rsp)).To(Succeed())
			return rsp.FPS
		}, 5*time.Second).Should(BeNumerically("~", 125, 1))
	})

	It("should report the process resources", func() {
		rec := do(http.MethodGet, "/api/resource", "")

		Expect(rec.Code).To(Equal(http.StatusOK))

		var rsp resourceRsp
		Expect(json.Unmarshal(rec.Body.Bytes(), &rsp)).To(Succeed())
		Expect(rsp.MemorySize).To(BeNumerically(">", 0))
	})

	It("should serve the web page", func() {
		rec := do(http.MethodGet, "/", "")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(HavePrefix("<!DOCTYPE html>"))
	})

	It("should answer 503 when the render goroutine is gone", func() {
		sys.Controller.Submit(func(c *eye.Controller) { c.Shutdown() })
		m.WithTimeout(50 * time.Millisecond)

		Eventually(func() int {
			return do(http.MethodGet, "/api/status", "").Code
		}).Should(Equal(http.StatusServiceUnavailable))
	})
})

var _ = Describe("FPSMeter", func() {
	It("should measure frames per second of driver time", func() {
		clock := timing.NewManualClock(0)
		driver := timing.NewDriver(clock)
		meter := NewFPSMeter(nil)
		driver.AcceptHook(meter)

		for i := 0; i < 51; i++ {
			clock.Advance(20)
			driver.ProcessPendingWork()
		}

		Expect(meter.FPS()).To(BeNumerically("~", 50, 0.01))
	})
})
