// Package preview shows the eyes in a terminal and steers them with the
// keyboard.
package preview

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/sarchlab/roboeyes/command"
	"github.com/sarchlab/roboeyes/display"
	"github.com/sarchlab/roboeyes/eye"
)

const help = "arrows: look  c: center  b: blink  p: toggle blinking  q: quit"

// Preview draws the screens of a controller side by side. Run ticks the
// controller, so the preview owns the render goroutine.
type Preview struct {
	screen  tcell.Screen
	ctrl    *eye.Controller
	screens []*display.Screen
	slice   time.Duration

	step     int
	gazeX    int
	gazeY    int
	blinking bool
	message  string
}

// New creates a preview on an initialized tcell screen.
func New(
	screen tcell.Screen,
	ctrl *eye.Controller,
	screens []*display.Screen,
	slice time.Duration,
) *Preview {
	return &Preview{
		screen:   screen,
		ctrl:     ctrl,
		screens:  screens,
		slice:    slice,
		step:     8,
		blinking: true,
		message:  help,
	}
}

// Run ticks the controller and redraws every slice until the user quits or
// ctx ends.
func (p *Preview) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.slice)
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	quit := make(chan struct{})
	defer close(quit)

	go func() {
		for {
			ev := p.screen.PollEvent()
			if ev == nil {
				return
			}

			select {
			case events <- ev:
			case <-quit:
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			if !p.HandleEvent(ev) {
				return nil
			}
		case <-ticker.C:
			p.ctrl.Tick()
			p.Draw()
		}
	}
}

// HandleEvent applies a key press. It returns false when the user quits.
func (p *Preview) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return p.handleKey(ev)
	case *tcell.EventResize:
		p.screen.Sync()
	}

	return true
}

func (p *Preview) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyLeft:
		p.look(p.gazeX-p.step, p.gazeY)
	case tcell.KeyRight:
		p.look(p.gazeX+p.step, p.gazeY)
	case tcell.KeyUp:
		p.look(p.gazeX, p.gazeY-p.step)
	case tcell.KeyDown:
		p.look(p.gazeX, p.gazeY+p.step)
	case tcell.KeyRune:
		return p.handleRune(ev.Rune())
	}

	return true
}

func (p *Preview) handleRune(r rune) bool {
	switch r {
	case 'q':
		return false
	case 'c':
		p.look(0, 0)
	case 'b':
		p.apply(command.BlinkNow{})
	case 'p':
		p.blinking = !p.blinking
		if p.blinking {
			p.apply(command.BlinkPlan{Interval: 2000, Count: -1})
		} else {
			p.apply(command.BlinkPlan{})
		}
	}

	return true
}

func (p *Preview) look(x, y int) {
	e := p.ctrl.Eye(eye.Left)
	if e == nil {
		e = p.ctrl.Eye(eye.Right)
	}

	if e != nil {
		x = clamp(x, e.MaxOffset())
		y = clamp(y, e.MaxOffset())
	}

	p.gazeX, p.gazeY = x, y
	p.apply(command.Look{Eyes: eye.IDs, X: x, Y: y})
}

func (p *Preview) apply(cmd command.Command) {
	out, err := cmd.Apply(p.ctrl)
	if err != nil {
		p.message = err.Error()
		return
	}

	p.message = out
}

// Draw renders every screen next to each other with a status line.
func (p *Preview) Draw() {
	p.screen.Clear()

	width, height := p.screen.Size()
	rows := height - 3
	if rows < 3 || len(p.screens) == 0 {
		p.screen.Show()
		return
	}

	cols := width / len(p.screens)
	if cols > 2*rows {
		cols = 2 * rows
	}

	for i, s := range p.screens {
		st := s.Snapshot()
		left := i * cols

		p.drawText(left, 0, fmt.Sprintf("%s %d°", st.Name, int(st.Rotation)),
			tcell.StyleDefault.Bold(true))
		p.drawGrid(left, 1, Render(st, cols-1, rows))
	}

	st := p.ctrl.Status()
	p.drawText(0, height-2, fmt.Sprintf("%d ms  frame %d  gaze (%d, %d)",
		st.Time, st.Frame, p.gazeX, p.gazeY), tcell.StyleDefault)
	p.drawText(0, height-1, p.message, tcell.StyleDefault.Dim(true))

	p.screen.Show()
}

func (p *Preview) drawGrid(x, y int, g Grid) {
	for row, line := range g {
		for col, r := range line {
			p.screen.SetContent(x+col, y+row, r, nil, cellStyle(r))
		}
	}
}

func (p *Preview) drawText(x, y int, s string, style tcell.Style) {
	for i, r := range []rune(s) {
		p.screen.SetContent(x+i, y, r, nil, style)
	}
}

func cellStyle(r rune) tcell.Style {
	switch r {
	case CellIris:
		return tcell.StyleDefault.Foreground(tcell.ColorTeal)
	case CellLid:
		return tcell.StyleDefault.Foreground(tcell.ColorOlive)
	case CellWhite:
		return tcell.StyleDefault.Foreground(tcell.ColorWhite)
	default:
		return tcell.StyleDefault
	}
}

func clamp(v, bound int) int {
	switch {
	case v > bound:
		return bound
	case v < -bound:
		return -bound
	default:
		return v
	}
}
