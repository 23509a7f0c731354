// Package config loads the roboeyes configuration from a YAML file, a .env
// file and ROBOEYES_* environment variables.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/sarchlab/roboeyes/display"
	"github.com/sarchlab/roboeyes/eye"
)

// Errors returned while loading a configuration.
var (
	ErrInvalidConfig = errors.New("config: invalid configuration")
	ErrInvalidEnv    = errors.New("config: invalid environment variable")
)

// DefaultFile is the configuration file looked up when no path is given.
const DefaultFile = "roboeyes.yaml"

// Trace backends.
const (
	TraceNone   = ""
	TraceSQLite = "sqlite"
	TraceCSV    = "csv"
)

// Display describes one round screen.
type Display struct {
	Name     string `yaml:"name"`
	Diameter int    `yaml:"diameter"`
	Rotation int    `yaml:"rotation"`
}

// Eye configures one eye. A nil Eye in Config means the eye is not built.
type Eye struct {
	Display Display        `yaml:"display"`
	Assets  eye.AssetPaths `yaml:"assets"`
}

// Blink is the plan applied after start-up.
type Blink struct {
	IntervalMs uint64 `yaml:"interval_ms"`
	Count      int    `yaml:"count"`
}

// Config is the whole configuration.
type Config struct {
	Name           string `yaml:"name"`
	Mode           string `yaml:"mode"`
	MaxOffset      int    `yaml:"max_offset"`
	GazeDurationMs uint64 `yaml:"gaze_duration_ms"`
	FrameSliceMs   uint64 `yaml:"frame_slice_ms"`
	Blink          Blink  `yaml:"blink"`
	Left           *Eye   `yaml:"left"`
	Right          *Eye   `yaml:"right"`
	Manifest       string `yaml:"manifest"`
	MonitorPort    int    `yaml:"monitor_port"`
	MonitorDev     bool   `yaml:"monitor_dev"`
	Trace          string `yaml:"trace"`
	TracePath      string `yaml:"trace_path"`
	Verbose        bool   `yaml:"verbose"`
}

// Default returns the configuration of the stock robot: two 240 px screens
// mounted at 270 and 90 degrees, blinking every 2 s forever.
func Default() Config {
	return Config{
		Name:           "eyes",
		Mode:           eye.Unified.String(),
		MaxOffset:      eye.DefaultMaxOffset,
		GazeDurationMs: uint64(eye.DefaultGazeDuration),
		FrameSliceMs:   8,
		Blink:          Blink{IntervalMs: 2000, Count: -1},
		Left: &Eye{
			Display: Display{Name: "left", Diameter: 240, Rotation: 270},
			Assets: eye.AssetPaths{
				Eyeball: "leye_tired.gif",
				Eyelid:  "leyelid_tired.gif",
			},
		},
		Right: &Eye{
			Display: Display{Name: "right", Diameter: 240, Rotation: 90},
			Assets: eye.AssetPaths{
				Eyeball: "reye_tired.gif",
				Eyelid:  "reyelid_tired.gif",
			},
		},
	}
}

// Eye returns the configuration of one eye, or nil.
func (c Config) Eye(id eye.ID) *Eye {
	if id == eye.Right {
		return c.Right
	}

	return c.Left
}

// Decode reads YAML from r on top of the defaults. Unknown keys are errors.
func Decode(r io.Reader) (Config, error) {
	c := Default()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if err := c.Validate(); err != nil {
		return Config{}, err
	}

	return c, nil
}

// Load reads the configuration file at path. A missing DefaultFile yields the
// defaults; any other missing file is an error.
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) && path == DefaultFile {
		return Default(), nil
	}

	if err != nil {
		return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
	}

	c, err := Decode(bytes.NewReader(data))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}

	return c, nil
}

// LoadDotEnv loads variables from .env files into the process environment.
// Variables that are already set are kept. Missing files are skipped.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}

	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}

		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("config: loading %s: %w", f, err)
		}
	}

	return nil
}

// Validate checks that the configuration can build a controller.
func (c Config) Validate() error {
	var errs []error

	if _, err := eye.ParseMode(c.Mode); err != nil {
		errs = append(errs, err)
	}

	if c.MaxOffset < 0 {
		errs = append(errs, fmt.Errorf("max_offset %d is negative", c.MaxOffset))
	}

	if c.FrameSliceMs == 0 {
		errs = append(errs, errors.New("frame_slice_ms must be positive"))
	}

	if c.MonitorPort < 0 || c.MonitorPort > 65535 {
		errs = append(errs, fmt.Errorf("monitor_port %d is out of range", c.MonitorPort))
	}

	switch c.Trace {
	case TraceNone, TraceSQLite, TraceCSV:
	default:
		errs = append(errs, fmt.Errorf("unknown trace backend %q", c.Trace))
	}

	for _, id := range eye.IDs {
		e := c.Eye(id)
		if e == nil {
			continue
		}

		if e.Display.Diameter <= 0 {
			errs = append(errs,
				fmt.Errorf("%s display diameter must be positive", id))
		}

		if _, err := display.ParseRotation(e.Display.Rotation); err != nil {
			errs = append(errs, fmt.Errorf("%s display: %w", id, err))
		}
	}

	if len(errs) == 0 {
		return nil
	}

	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}
