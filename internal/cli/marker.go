package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/arithprobe/internal/failctl"
)

// MarkerOptions holds flags for the marker commands.
type MarkerOptions struct {
	*RootOptions
	Path string
}

// MarkerStatus is the JSON payload of the marker commands.
type MarkerStatus struct {
	Path    string `json:"path"`
	Present bool   `json:"present"`
}

// NewMarkerCommand creates the marker command group.
func NewMarkerCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MarkerOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "marker",
		Short: "Set, clear, inspect or watch the failure marker",
		Long: `Manage the failure marker file. Only its existence matters.

The path comes from --path, then ARITHPROBE_FAIL_MARKER, then the config
[failure] table, then $TMPDIR/arithprobe_fail_marker.`,
	}
	cmd.PersistentFlags().StringVar(&opts.Path, "path", "", "marker path")

	cmd.AddCommand(&cobra.Command{
		Use:   "set",
		Short: "Create the marker",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return markerAction(cmd, opts, failctl.SetMarker)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove the marker",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return markerAction(cmd, opts, failctl.ClearMarker)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Report whether the marker exists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return markerAction(cmd, opts, nil)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "watch",
		Short: "Print marker transitions until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return watchMarker(cmd, opts)
		},
	})

	return cmd
}

func (o *MarkerOptions) markerPath() (string, error) {
	if o.Path != "" {
		return o.Path, nil
	}
	cfg, err := o.loadConfig()
	if err != nil {
		return "", err
	}
	path := cfg.Control(os.LookupEnv).MarkerPath
	if path == "" {
		return "", NewExitError(ExitCommandError, "marker is disabled (path is \"off\")")
	}
	return path, nil
}

func markerAction(cmd *cobra.Command, opts *MarkerOptions, action func(string) error) error {
	path, err := opts.markerPath()
	if err != nil {
		return err
	}
	if action != nil {
		if err := action(path); err != nil {
			return WrapExitError(ExitCommandError, "marker", err)
		}
	}
	return printMarker(cmd, opts, MarkerStatus{Path: path, Present: failctl.MarkerPresent(path)})
}

func printMarker(cmd *cobra.Command, opts *MarkerOptions, status MarkerStatus) error {
	f := opts.formatter(cmd)
	if f.JSON() {
		return f.Success(status)
	}
	state := "absent"
	if status.Present {
		state = "present"
	}
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "marker %s: %s\n", state, status.Path)
	return err
}

func watchMarker(cmd *cobra.Command, opts *MarkerOptions) error {
	path, err := opts.markerPath()
	if err != nil {
		return err
	}

	ctx, stop := signalContext(cmd)
	defer stop()

	var printErr error
	err = failctl.Watch(ctx, path, func(present bool) {
		if printErr == nil {
			printErr = printMarker(cmd, opts, MarkerStatus{Path: path, Present: present})
		}
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "watch", err)
	}
	return printErr
}
