package cmd

import (
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/sarchlab/roboeyes/config"
	"github.com/sarchlab/roboeyes/eye"
	"github.com/sarchlab/roboeyes/hooking"
	"github.com/sarchlab/roboeyes/timing"
	"github.com/sarchlab/roboeyes/tracing"
)

// session is an assembled controller with its logging and tracing.
type session struct {
	cfg    config.Config
	logger *log.Logger
	sys    *config.System
	tracer *tracing.Tracer
	closer io.Closer
}

func newLogger(w io.Writer) *log.Logger {
	return log.New(w, "roboeyes ", log.LstdFlags|log.Lmicroseconds)
}

func loadConfig() (config.Config, error) {
	if err := config.LoadDotEnv(envFiles...); err != nil {
		return config.Config{}, err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, err
	}

	if err := cfg.ApplyEnv(nil); err != nil {
		return config.Config{}, err
	}

	if verbose {
		cfg.Verbose = true
	}

	return cfg, nil
}

func newSession(
	cfg config.Config,
	driver *timing.Driver,
	logger *log.Logger,
) (*session, error) {
	s := &session{cfg: cfg, logger: logger}

	logHook := eye.NewLogHook(logger)
	logHook.Verbose = cfg.Verbose
	hooks := []hooking.Hook{logHook}

	if err := s.openTrace(); err != nil {
		return nil, err
	}

	if s.tracer != nil {
		hooks = append(hooks, s.tracer)
	}

	sys, err := cfg.Assemble(driver, hooks...)
	if err != nil {
		return nil, errors.Join(err, s.closeTrace())
	}

	s.sys = sys

	if cfg.Verbose {
		driver.AcceptHook(timing.NewEventLogger(logger))
	}

	return s, nil
}

func (s *session) openTrace() error {
	switch s.cfg.Trace {
	case config.TraceSQLite:
		w := tracing.NewSQLiteTraceWriter(s.cfg.TracePath)
		if err := w.Init(); err != nil {
			return err
		}

		s.tracer = tracing.NewTracer(w)
		s.closer = w
	case config.TraceCSV:
		w := tracing.NewCSVTraceWriter(s.cfg.TracePath)
		if err := w.Init(); err != nil {
			return err
		}

		s.tracer = tracing.NewTracer(w)
		s.closer = w
	}

	return nil
}

func (s *session) closeTrace() error {
	if s.closer == nil {
		return nil
	}

	err := s.closer.Close()
	s.closer = nil

	if err != nil {
		return fmt.Errorf("closing trace: %w", err)
	}

	return nil
}

// shutdown stops the controller and closes the trace.
func (s *session) shutdown() error {
	if s.sys != nil {
		s.sys.Controller.Shutdown()
	}

	return s.closeTrace()
}
