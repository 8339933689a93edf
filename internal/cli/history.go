package cli

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/arithprobe/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Limit    int
	Session  string
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded probe runs",
		Long: `List probe runs recorded by "arithprobe probe", newest first.

Examples:
  arithprobe history
  arithprobe history --limit 5 --format json
  arithprobe history --session 0192f0c4-...`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default from config)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum runs to list (0 for all)")
	cmd.Flags().StringVar(&opts.Session, "session", "", "list one session in run order")

	return cmd
}

// openExistingStore opens a database that must already exist, so a typo in
// --db does not silently create an empty file.
func openExistingStore(cmd *cobra.Command, opts *RootOptions, flagValue string) (*store.Store, error) {
	path := flagValue
	if !cmd.Flags().Changed("db") {
		cfg, err := opts.loadConfig()
		if err != nil {
			return nil, err
		}
		path = cfg.DB
	}
	if path == "" {
		return nil, NewExitError(ExitCommandError, "no database configured (--db or config db)")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, WrapExitError(ExitCommandError, fmt.Sprintf("database not found: %s", path), err)
	}

	st, err := store.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}

func runHistory(cmd *cobra.Command, opts *HistoryOptions) error {
	st, err := openExistingStore(cmd, opts.RootOptions, opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := cmd.Context()
	var runs []store.ProbeRun
	if opts.Session != "" {
		runs, err = st.ReadSession(ctx, opts.Session)
	} else {
		runs, err = st.ListProbeRuns(ctx, opts.Limit)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read probe runs", err)
	}

	f := opts.formatter(cmd)
	if f.JSON() {
		return f.Success(runs)
	}

	w := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(w, "No probe runs recorded.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tSESSION\tPROBE\tEXPECT\tOBSERVED\tVERDICT\tEXIT\tFAILED TESTS")
	for _, r := range runs {
		verdict := "ok"
		if !r.Verdict {
			verdict = "UNEXPECTED"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			r.ID, r.SessionID, r.Probe, r.Expect, r.Observed, verdict, r.ExitCode, strings.Join(r.FailedTests, ","))
	}
	return tw.Flush()
}
