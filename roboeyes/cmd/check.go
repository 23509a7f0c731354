package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sarchlab/roboeyes/config"
	"github.com/sarchlab/roboeyes/eye"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the configuration and the asset manifest",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		return check(cfg, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

// check prints the effective configuration and looks up every configured
// asset in the catalog.
func check(cfg config.Config, out io.Writer) error {
	catalog, err := cfg.Catalog()
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s: %s mode, max offset %d, blink every %d ms, count %d\n",
		cfg.Name, cfg.Mode, cfg.MaxOffset, cfg.Blink.IntervalMs, cfg.Blink.Count)

	var errs []error

	for _, id := range eye.IDs {
		ec := cfg.Eye(id)
		if ec == nil {
			fmt.Fprintf(out, "%s: not configured\n", id)
			continue
		}

		fmt.Fprintf(out, "%s: display %q, %d px, %d°\n",
			id, ec.Display.Name, ec.Display.Diameter, ec.Display.Rotation)

		for _, path := range []string{ec.Assets.Eyeball, ec.Assets.Eyelid} {
			if path == "" {
				continue
			}

			a, err := catalog.Lookup(path)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", id, err))
				continue
			}

			fmt.Fprintf(out, "  %s: %d frames x %d ms\n", path, a.Frames, a.FrameMs)
		}
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}

	fmt.Fprintln(out, "ok")

	return nil
}
