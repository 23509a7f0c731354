package cmd

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/sarchlab/roboeyes/command"
	"github.com/sarchlab/roboeyes/config"
	"github.com/sarchlab/roboeyes/timing"
)

var (
	simDuration uint64
	simScript   string
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the eyes on a simulated timeline",
	Long: `Run the eyes on a simulated timeline as fast as possible, applying ` +
		`the commands of a script at their scheduled times. Every action is ` +
		`logged to stdout and the final status is printed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		var steps []command.Step
		if simScript != "" {
			steps, err = readScript(simScript)
			if err != nil {
				return err
			}
		}

		return simulate(cfg, steps, timing.VTimeInMs(simDuration), cmd.OutOrStdout())
	},
}

func init() {
	simulateCmd.Flags().Uint64Var(&simDuration, "duration", 10000,
		"simulated time to run, in ms")
	simulateCmd.Flags().StringVar(&simScript, "script", "",
		"script of timed commands, one \"at <ms> <command>\" per line")

	rootCmd.AddCommand(simulateCmd)
}

func readScript(path string) ([]command.Step, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	steps, err := command.ParseScript(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return steps, nil
}

// simulate ticks the controller on a manual clock. Steps run right after the
// first frame at or past their time.
func simulate(
	cfg config.Config,
	steps []command.Step,
	duration timing.VTimeInMs,
	out io.Writer,
) error {
	clock := timing.NewManualClock(0)
	driver := timing.NewDriver(clock)

	s, err := newSession(cfg, driver, log.New(out, "", 0))
	if err != nil {
		return err
	}

	ctrl := s.sys.Controller
	slice := timing.VTimeInMs(cfg.FrameSliceMs)

	for {
		ctrl.Tick()

		for len(steps) > 0 && steps[0].At <= clock.Now() {
			res, err := steps[0].Cmd.Apply(ctrl)
			if err != nil {
				res = "error: " + err.Error()
			}

			fmt.Fprintf(out, "%d ms> %s\n%s\n", clock.Now(), steps[0].Line, res)
			steps = steps[1:]
		}

		if clock.Now() >= duration {
			break
		}

		next := clock.Now() + slice
		if next > duration {
			next = duration
		}

		clock.Set(next)
	}

	fmt.Fprintln(out, command.FormatStatus(ctrl.Status()))

	return s.shutdown()
}
