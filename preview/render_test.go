package preview

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/roboeyes/display"
)

func screenState(x, y int, lid display.LayerState) display.ScreenState {
	lid.Name = "left.eyelid"

	return display.ScreenState{
		Name:     "left",
		Diameter: 240,
		Layers: []display.LayerState{
			{Name: "left.eyeball", X: x, Y: y, Frames: 10},
			lid,
		},
	}
}

func count(g Grid, r rune) int {
	n := 0
	for _, row := range g {
		for _, c := range row {
			if c == r {
				n++
			}
		}
	}

	return n
}

var _ = Describe("Render", func() {
	It("should draw a round screen with a centered iris", func() {
		g := Render(screenState(0, 0, display.LayerState{}), 21, 11)

		Expect(g).To(HaveLen(11))
		Expect(g[0][0]).To(Equal(CellOutside))
		Expect(g[5][10]).To(Equal(CellIris))
		Expect(g[5][1]).To(Equal(CellWhite))
		Expect(count(g, CellLid)).To(Equal(0))
	})

	It("should move the iris with the eyeball translation", func() {
		g := Render(screenState(60, 0, display.LayerState{}), 21, 11)

		Expect(g[5][12]).To(Equal(CellIris))
		Expect(g[5][15]).To(Equal(CellIris))
		Expect(g[5][8]).To(Equal(CellWhite))
	})

	It("should close the lid halfway through a blink", func() {
		half := Render(screenState(0, 0, display.LayerState{
			Playing: true, Frame: 2, Frames: 9,
		}), 21, 11)
		closed := Render(screenState(0, 0, display.LayerState{
			Playing: true, Frame: 4, Frames: 9,
		}), 21, 11)

		Expect(count(half, CellLid)).To(BeNumerically(">", 0))
		Expect(count(closed, CellLid)).To(BeNumerically(">", count(half, CellLid)))
		Expect(count(closed, CellIris)).To(Equal(0))
		Expect(count(closed, CellWhite)).To(Equal(0))
	})

	It("should leave a paused lid open", func() {
		g := Render(screenState(0, 0, display.LayerState{
			Playing: false, Frame: 8, Frames: 9,
		}), 21, 11)

		Expect(count(g, CellLid)).To(Equal(0))
	})
})
