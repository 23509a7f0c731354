package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// EnvPrefix starts every environment variable the configuration reads.
const EnvPrefix = "ROBOEYES_"

type envVar struct {
	name  string
	apply func(c *Config, v string) error
}

func envVars() []envVar {
	return []envVar{
		{"MODE", func(c *Config, v string) error {
			c.Mode = v
			return nil
		}},
		{"MAX_OFFSET", func(c *Config, v string) error {
			return parseInt(v, &c.MaxOffset)
		}},
		{"GAZE_DURATION_MS", func(c *Config, v string) error {
			return parseUint(v, &c.GazeDurationMs)
		}},
		{"FRAME_SLICE_MS", func(c *Config, v string) error {
			return parseUint(v, &c.FrameSliceMs)
		}},
		{"BLINK_INTERVAL_MS", func(c *Config, v string) error {
			return parseUint(v, &c.Blink.IntervalMs)
		}},
		{"BLINK_COUNT", func(c *Config, v string) error {
			return parseInt(v, &c.Blink.Count)
		}},
		{"MANIFEST", func(c *Config, v string) error {
			c.Manifest = v
			return nil
		}},
		{"MONITOR_PORT", func(c *Config, v string) error {
			return parseInt(v, &c.MonitorPort)
		}},
		{"MONITOR_DEV", func(c *Config, v string) error {
			return parseBool(v, &c.MonitorDev)
		}},
		{"TRACE", func(c *Config, v string) error {
			c.Trace = strings.ToLower(v)
			return nil
		}},
		{"TRACE_PATH", func(c *Config, v string) error {
			c.TracePath = v
			return nil
		}},
		{"VERBOSE", func(c *Config, v string) error {
			return parseBool(v, &c.Verbose)
		}},
	}
}

// ApplyEnv overrides fields from ROBOEYES_* variables found by lookup. Pass
// nil to read the process environment.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	for _, ev := range envVars() {
		name := EnvPrefix + ev.name

		v, ok := lookup(name)
		if !ok || v == "" {
			continue
		}

		if err := ev.apply(c, v); err != nil {
			return fmt.Errorf("%w: %s=%q: %w", ErrInvalidEnv, name, v, err)
		}
	}

	return c.Validate()
}

func parseInt(v string, dst *int) error {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return err
	}

	*dst = n

	return nil
}

func parseUint(v string, dst *uint64) error {
	n, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
	if err != nil {
		return err
	}

	*dst = n

	return nil
}

func parseBool(v string, dst *bool) error {
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return err
	}

	*dst = b

	return nil
}
