package cmd

import (
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/sarchlab/roboeyes/display"
	"github.com/sarchlab/roboeyes/eye"
	"github.com/sarchlab/roboeyes/preview"
	"github.com/sarchlab/roboeyes/timing"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Show the eyes in the terminal",
	Long: `Show the eyes in the terminal and steer them with the keyboard. ` +
		`Log output is discarded while the preview is on screen.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		driver := timing.NewDriver(timing.NewMonotonicClock())

		s, err := newSession(cfg, driver, newLogger(io.Discard))
		if err != nil {
			return err
		}

		screen, err := tcell.NewScreen()
		if err != nil {
			return errors.Join(err, s.shutdown())
		}

		if err := screen.Init(); err != nil {
			return errors.Join(err, s.shutdown())
		}

		var screens []*display.Screen
		for _, id := range eye.IDs {
			if scr := s.sys.Screen(id); scr != nil {
				screens = append(screens, scr)
			}
		}

		ctx, stop := signal.NotifyContext(cmd.Context(),
			os.Interrupt, syscall.SIGTERM)
		defer stop()

		p := preview.New(screen, s.sys.Controller, screens,
			time.Duration(cfg.FrameSliceMs)*time.Millisecond)
		err = p.Run(ctx)

		screen.Fini()

		return errors.Join(err, s.shutdown())
	},
}

func init() {
	rootCmd.AddCommand(previewCmd)
}

