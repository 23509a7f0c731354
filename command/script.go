package command

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/sarchlab/roboeyes/timing"
)

// Step is a command scheduled at a point on the driver timeline.
type Step struct {
	At   timing.VTimeInMs
	Line string
	Cmd  Command
}

// ParseScript reads one step per line in the form
//
//	at <ms> <command>
//
// Blank lines and lines starting with # are skipped. Steps are returned in
// time order; steps at the same time keep their order in the script.
func ParseScript(r io.Reader) ([]Step, error) {
	var steps []Step

	scanner := bufio.NewScanner(r)
	lineNo := 0

	for scanner.Scan() {
		lineNo++

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		step, err := parseStep(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}

		steps = append(steps, step)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(steps, func(i, j int) bool {
		return steps[i].At < steps[j].At
	})

	return steps, nil
}

func parseStep(line string) (Step, error) {
	fields := strings.SplitN(line, " ", 3)
	if len(fields) != 3 || strings.ToLower(fields[0]) != "at" {
		return Step{}, usageErr("at <ms> <command>")
	}

	at, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		return Step{}, fmt.Errorf("%w: time %q: %w", ErrUsage, fields[1], err)
	}

	rest := strings.TrimSpace(fields[2])

	cmd, err := Parse(rest)
	if err != nil {
		return Step{}, err
	}

	return Step{At: timing.VTimeInMs(at), Line: rest, Cmd: cmd}, nil
}
