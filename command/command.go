// Package command parses the text commands accepted by the console and the
// monitor, and applies them to a controller.
//
//	look <left|right|both> <x> <y>
//	blink now [left|right]
//	blink plan <interval_ms> <count> [left|right]
//	material <left|right> <eyeball|-> <eyelid|-> <max_offset>
//	status
package command

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/shlex"

	"github.com/sarchlab/roboeyes/eye"
	"github.com/sarchlab/roboeyes/timing"
)

// Errors returned by Parse.
var (
	ErrEmpty          = errors.New("command: empty line")
	ErrUnknownCommand = errors.New("command: unknown command")
	ErrUsage          = errors.New("command: wrong arguments")
)

// Usage lists the accepted commands.
const Usage = `look <left|right|both> <x> <y>
blink now [left|right]
blink plan <interval_ms> <count> [left|right]
material <left|right> <eyeball|-> <eyelid|-> <max_offset>
status`

// A Command changes or reads a controller. Apply must run on the render
// goroutine.
type Command interface {
	Apply(c *eye.Controller) (string, error)
}

// Look moves the gaze of one or both eyes.
type Look struct {
	Eyes []eye.ID
	X, Y int
}

// Apply starts the gaze animations.
func (l Look) Apply(c *eye.Controller) (string, error) {
	var moved []string

	for _, id := range l.Eyes {
		e := c.Eye(id)
		if e == nil {
			continue
		}

		c.LookAt(id, l.X, l.Y)
		moved = append(moved, id.String())
	}

	if len(moved) == 0 {
		return "", fmt.Errorf("%w: no such eye", eye.ErrUnknownEye)
	}

	return fmt.Sprintf("looking at (%d, %d) with %s",
		l.X, l.Y, strings.Join(moved, ", ")), nil
}

// BlinkNow blinks once outside of the plan. A nil Eye blinks every eye.
type BlinkNow struct {
	Eye *eye.ID
}

// Apply blinks.
func (b BlinkNow) Apply(c *eye.Controller) (string, error) {
	var ok bool
	if b.Eye == nil {
		ok = c.BlinkNow()
	} else {
		ok = c.BlinkEyeNow(*b.Eye)
	}

	if !ok {
		return "blink skipped", nil
	}

	return "blinked", nil
}

// BlinkPlan replaces a blink plan. A nil Eye sets the plan of every
// scheduler.
type BlinkPlan struct {
	Interval timing.VTimeInMs
	Count    int
	Eye      *eye.ID
}

// Apply sets the plan and reports what is left of it after an immediate
// blink.
func (p BlinkPlan) Apply(c *eye.Controller) (string, error) {
	if p.Eye == nil {
		c.SetBlinkPlan(p.Interval, p.Count)

		if s := c.PairScheduler(); s != nil {
			return "plan " + s.Plan().String(), nil
		}

		return fmt.Sprintf("plan every %d ms, %s for each eye",
			p.Interval, eye.CountFromInt(p.Count)), nil
	}

	if !c.SetEyeBlinkPlan(*p.Eye, p.Interval, p.Count) {
		return "", fmt.Errorf(
			"%w: per-eye plans need an independent controller with a %s eye",
			ErrUsage, *p.Eye)
	}

	return fmt.Sprintf("%s plan %s", *p.Eye, c.EyeScheduler(*p.Eye).Plan()), nil
}

// Material switches the assets of one eye. An empty path keeps the current
// asset.
type Material struct {
	Eye       eye.ID
	Eyeball   string
	Eyelid    string
	MaxOffset int
}

// Apply switches the assets.
func (m Material) Apply(c *eye.Controller) (string, error) {
	if c.Eye(m.Eye) == nil {
		return "", fmt.Errorf("%w: %s", eye.ErrUnknownEye, m.Eye)
	}

	if err := c.SwitchMaterial(m.Eye, m.Eyeball, m.Eyelid, m.MaxOffset); err != nil {
		return "", err
	}

	return fmt.Sprintf("%s material switched", m.Eye), nil
}

// Status prints the controller state.
type Status struct{}

// Apply formats the status.
func (Status) Apply(c *eye.Controller) (string, error) {
	return FormatStatus(c.Status()), nil
}

// FormatStatus renders a status as text, one line per scheduler and eye.
func FormatStatus(st eye.Status) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s: %s mode, %d ms, frame %d\n",
		st.Name, st.Mode, st.Time, st.Frame)

	if st.Pair != nil {
		writeScheduler(&b, st.Pair)
	}

	for _, e := range st.Eyes {
		fmt.Fprintf(&b, "%s eye at (%d, %d) max %d, blinking %t, eyeball %q, eyelid %q\n",
			e.ID, e.X, e.Y, e.MaxOffset, e.Blinking, e.Eyeball, e.Eyelid)

		if e.Scheduler != nil {
			writeScheduler(&b, e.Scheduler)
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

func writeScheduler(b *strings.Builder, s *eye.SchedulerStatus) {
	plan := eye.BlinkPlan{
		Interval:  s.Interval,
		Remaining: eye.CountFromInt(s.Remaining),
	}

	fmt.Fprintf(b, "%s scheduler %s, %s, fired %d, suppressed %d\n",
		s.Name, s.State, plan, s.Fired, s.Suppressed)
}

// Parse turns a line into a Command. Arguments may be quoted.
func Parse(line string) (Command, error) {
	args, err := shlex.Split(line)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUsage, err)
	}

	if len(args) == 0 {
		return nil, ErrEmpty
	}

	switch strings.ToLower(args[0]) {
	case "look":
		return parseLook(args[1:])
	case "blink":
		return parseBlink(args[1:])
	case "material":
		return parseMaterial(args[1:])
	case "status":
		if len(args) != 1 {
			return nil, usageErr("status")
		}

		return Status{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, args[0])
	}
}

func parseLook(args []string) (Command, error) {
	if len(args) != 3 {
		return nil, usageErr("look <left|right|both> <x> <y>")
	}

	var l Look

	if strings.ToLower(args[0]) == "both" {
		l.Eyes = eye.IDs
	} else {
		id, err := eye.ParseID(args[0])
		if err != nil {
			return nil, err
		}

		l.Eyes = []eye.ID{id}
	}

	var err error
	if l.X, err = parseInt("x", args[1]); err != nil {
		return nil, err
	}

	if l.Y, err = parseInt("y", args[2]); err != nil {
		return nil, err
	}

	return l, nil
}

func parseBlink(args []string) (Command, error) {
	if len(args) == 0 {
		return nil, usageErr("blink now|plan ...")
	}

	switch strings.ToLower(args[0]) {
	case "now":
		return parseBlinkNow(args[1:])
	case "plan":
		return parseBlinkPlan(args[1:])
	default:
		return nil, usageErr("blink now|plan ...")
	}
}

func parseBlinkNow(args []string) (Command, error) {
	switch len(args) {
	case 0:
		return BlinkNow{}, nil
	case 1:
		id, err := eye.ParseID(args[0])
		if err != nil {
			return nil, err
		}

		return BlinkNow{Eye: &id}, nil
	default:
		return nil, usageErr("blink now [left|right]")
	}
}

func parseBlinkPlan(args []string) (Command, error) {
	if len(args) != 2 && len(args) != 3 {
		return nil, usageErr("blink plan <interval_ms> <count> [left|right]")
	}

	interval, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: interval %q: %w", ErrUsage, args[0], err)
	}

	count, err := parseInt("count", args[1])
	if err != nil {
		return nil, err
	}

	p := BlinkPlan{Interval: timing.VTimeInMs(interval), Count: count}

	if len(args) == 3 {
		id, err := eye.ParseID(args[2])
		if err != nil {
			return nil, err
		}

		p.Eye = &id
	}

	return p, nil
}

func parseMaterial(args []string) (Command, error) {
	if len(args) != 4 {
		return nil, usageErr(
			"material <left|right> <eyeball|-> <eyelid|-> <max_offset>")
	}

	id, err := eye.ParseID(args[0])
	if err != nil {
		return nil, err
	}

	maxOffset, err := parseInt("max_offset", args[3])
	if err != nil {
		return nil, err
	}

	if maxOffset < 0 {
		return nil, fmt.Errorf("%w: max_offset cannot be negative", ErrUsage)
	}

	return Material{
		Eye:       id,
		Eyeball:   keepDash(args[1]),
		Eyelid:    keepDash(args[2]),
		MaxOffset: maxOffset,
	}, nil
}

func keepDash(s string) string {
	if s == "-" {
		return ""
	}

	return s
}

func parseInt(name, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q: %w", ErrUsage, name, s, err)
	}

	return n, nil
}

func usageErr(usage string) error {
	return fmt.Errorf("%w: usage: %s", ErrUsage, usage)
}
