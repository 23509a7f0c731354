package playback

import "github.com/sarchlab/roboeyes/timing"

// LoopForever makes a player repeat its asset until paused.
const LoopForever = 0

// CycleCompleteEvent is delivered to the player's handler each time the
// player reaches the end of its asset. Done is set on the last cycle of a
// finite loop count, after which the player stays paused on the last frame.
type CycleCompleteEvent struct {
	Player *FramePlayer
	Tag    any
	Loop   int
	Done   bool
}

// FramePlayer plays an asset frame by frame. A player is stepped by whoever
// owns it, normally the display it belongs to.
type FramePlayer struct {
	name      string
	catalog   *Catalog
	scheduler timing.EventScheduler

	asset    Asset
	hasAsset bool

	frame      int
	frameStart timing.VTimeInMs
	playing    bool

	loopCount int
	loopsDone int

	handler timing.Handler
	tag     any
}

// NewFramePlayer creates a paused player without a source.
func NewFramePlayer(
	name string,
	catalog *Catalog,
	scheduler timing.EventScheduler,
) *FramePlayer {
	return &FramePlayer{
		name:      name,
		catalog:   catalog,
		scheduler: scheduler,
		loopCount: LoopForever,
	}
}

// Name returns the player name.
func (p *FramePlayer) Name() string {
	return p.name
}

// SetSource switches to another asset and rewinds to the first frame. The
// play state and loop count are kept; the loops already played are reset.
func (p *FramePlayer) SetSource(path string) error {
	a, err := p.catalog.Lookup(path)
	if err != nil {
		return err
	}

	p.asset = a
	p.hasAsset = true
	p.rewind()

	return nil
}

// Source returns the current asset path.
func (p *FramePlayer) Source() string {
	return p.asset.Path
}

// Asset returns the current asset.
func (p *FramePlayer) Asset() Asset {
	return p.asset
}

// Restart rewinds to the first frame and starts playing.
func (p *FramePlayer) Restart() {
	p.rewind()
	p.playing = true
}

// Pause freezes the current frame.
func (p *FramePlayer) Pause() {
	p.playing = false
}

// Resume continues from the current frame, which is shown for a full frame
// delay.
func (p *FramePlayer) Resume() {
	if p.playing {
		return
	}

	p.playing = true
	p.frameStart = p.scheduler.CurrentTime()
}

// SetLoopCount sets how many cycles to play before stopping. LoopForever,
// or any value below it, repeats forever.
func (p *FramePlayer) SetLoopCount(n int) {
	if n < LoopForever {
		n = LoopForever
	}

	p.loopCount = n
	p.loopsDone = 0
}

// LoopCount returns the configured loop count.
func (p *FramePlayer) LoopCount() int {
	return p.loopCount
}

// OnCycleComplete sets the handler notified with a CycleCompleteEvent at the
// end of every cycle. The tag is copied into each event.
func (p *FramePlayer) OnCycleComplete(handler timing.Handler, tag any) {
	p.handler = handler
	p.tag = tag
}

// Frame returns the index of the frame on screen.
func (p *FramePlayer) Frame() int {
	return p.frame
}

// IsPlaying tells whether the player advances on Tick.
func (p *FramePlayer) IsPlaying() bool {
	return p.playing
}

// Tick advances the player to now.
func (p *FramePlayer) Tick(now timing.VTimeInMs) bool {
	if !p.playing || !p.hasAsset {
		return false
	}

	progress := false
	for p.playing && now >= p.frameStart && now-p.frameStart >= p.asset.FrameMs {
		p.frameStart += p.asset.FrameMs
		p.frame++
		progress = true

		if p.frame < p.asset.Frames {
			continue
		}

		p.completeCycle()
	}

	return progress
}

func (p *FramePlayer) completeCycle() {
	p.loopsDone++
	done := p.loopCount != LoopForever && p.loopsDone >= p.loopCount

	if done {
		p.frame = p.asset.Frames - 1
		p.playing = false
	} else {
		p.frame = 0
	}

	p.notify(done)
}

func (p *FramePlayer) notify(done bool) {
	if p.handler == nil {
		return
	}

	p.scheduler.Schedule(timing.ScheduledEvent{
		Event: &CycleCompleteEvent{
			Player: p,
			Tag:    p.tag,
			Loop:   p.loopsDone,
			Done:   done,
		},
		Time:    p.scheduler.CurrentTime(),
		Handler: p.handler,
	})
}

func (p *FramePlayer) rewind() {
	p.frame = 0
	p.loopsDone = 0
	p.frameStart = p.scheduler.CurrentTime()
}
