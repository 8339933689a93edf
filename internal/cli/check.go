package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/arithprobe/internal/arith"
	"github.com/roach88/arithprobe/internal/failctl"
)

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Evaluate the conditional parity assertion once",
		Long: `Evaluate the conditional parity assertion with the failure control built
from the [failure] config table and the environment.

The force flag fails unconditionally. Otherwise a present marker expects
isEven(3) to be true, which fails, and an absent marker expects false.

Environment:
  ARITHPROBE_FORCE_FAIL   1/true forces the failure, 0/false clears a configured one
  ARITHPROBE_FAIL_MARKER  marker path, or "off" to disable the check

Exit codes:
  0 - assertion passed
  1 - assertion failed
  2 - command error`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rootOpts.loadConfig()
			if err != nil {
				return err
			}
			control := cfg.Control(os.LookupEnv)
			rootOpts.logger(cmd).Debug("evaluating parity check",
				"force_fail", control.ForceFail,
				"marker_path", control.MarkerPath,
			)
			return reportOutcome(cmd, rootOpts, control.Evaluate(arith.IsEven))
		},
	}
}

func reportOutcome(cmd *cobra.Command, opts *RootOptions, out failctl.Outcome) error {
	f := opts.formatter(cmd)
	if f.JSON() {
		if err := f.Result(out, !out.Pass, "E_CHECK_FAILED", out.String()); err != nil {
			return err
		}
	} else if err := f.Success(out.String()); err != nil {
		return err
	}

	if !out.Pass {
		return NewExitError(ExitFailure, out.String())
	}
	return nil
}
