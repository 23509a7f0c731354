package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/sarchlab/roboeyes/command"
	"github.com/sarchlab/roboeyes/eye"
	"github.com/sarchlab/roboeyes/monitoring"
	"github.com/sarchlab/roboeyes/timing"
)

var (
	runMonitor     bool
	runMonitorPort int
	runOpen        bool
	runConsole     string
	runDuration    time.Duration
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Drive the eyes in real time",
	Long: `Drive the eyes in real time. The controller ticks once every frame ` +
		`slice until interrupted. Commands can be typed on an interactive ` +
		`console or sent to the monitor.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if cmd.Flags().Changed("monitor-port") {
			cfg.MonitorPort = runMonitorPort
		}

		ctx, stop := signal.NotifyContext(cmd.Context(),
			os.Interrupt, syscall.SIGTERM)
		defer stop()

		if runDuration > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, runDuration)
			defer cancel()
		}

		driver := timing.NewDriver(timing.NewMonotonicClock())

		s, err := newSession(cfg, driver, newLogger(os.Stderr))
		if err != nil {
			return err
		}

		return runRealTime(ctx, s)
	},
}

func init() {
	runCmd.Flags().BoolVar(&runMonitor, "monitor", false,
		"serve the monitor even if no port is configured")
	runCmd.Flags().IntVar(&runMonitorPort, "monitor-port", 0,
		"monitor port, overrides the configuration")
	runCmd.Flags().BoolVar(&runOpen, "open", false,
		"open the monitor in a browser")
	runCmd.Flags().StringVar(&runConsole, "console", "auto",
		"read commands from stdin: auto, on or off")
	runCmd.Flags().DurationVar(&runDuration, "duration", 0,
		"stop after this long (default: until interrupted)")

	rootCmd.AddCommand(runCmd)
}

func runRealTime(ctx context.Context, s *session) error {
	ctrl := s.sys.Controller
	driver := s.sys.Driver

	meter := monitoring.NewFPSMeter(s.logger)
	driver.AcceptHook(meter)

	monitor, err := startMonitor(s, meter)
	if err != nil {
		return errors.Join(err, s.shutdown())
	}

	if consoleEnabled() {
		go func() {
			err := command.Console(ctx, ctrl, os.Stdin, os.Stdout)
			if err != nil {
				s.logger.Printf("console: %v", err)
			}
		}()
	}

	slice := time.Duration(s.cfg.FrameSliceMs) * time.Millisecond
	ticker := time.NewTicker(slice)
	defer ticker.Stop()

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case <-ticker.C:
			ctrl.Tick()
		}
	}

	s.logger.Printf("shutting down after %d frames", driver.Frame())

	if monitor != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		err = monitor.Shutdown(shutdownCtx)
	}

	return errors.Join(err, s.shutdown())
}

func startMonitor(s *session, meter *monitoring.FPSMeter) (*monitoring.Monitor, error) {
	if !runMonitor && s.cfg.MonitorPort == 0 {
		return nil, nil
	}

	m := monitoring.NewMonitor().
		WithPortNumber(s.cfg.MonitorPort).
		WithDevAssets(s.cfg.MonitorDev)
	m.RegisterController(s.sys.Controller)
	m.RegisterFPSMeter(meter)

	for _, id := range eye.IDs {
		if scr := s.sys.Screen(id); scr != nil {
			m.RegisterScreen(scr)
		}
	}

	url, err := m.StartServer()
	if err != nil {
		return nil, err
	}

	if runOpen {
		if err := m.OpenInBrowser(url); err != nil {
			fmt.Fprintf(os.Stderr, "Cannot open browser: %v\n", err)
		}
	}

	return m, nil
}

func consoleEnabled() bool {
	switch runConsole {
	case "on":
		return true
	case "off":
		return false
	default:
		return term.IsTerminal(int(os.Stdin.Fd()))
	}
}
