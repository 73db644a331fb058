package commands

import (
	"context"
	"fmt"
	"os"

	"llreminder/internal/config"
	"llreminder/internal/console"
	"llreminder/internal/notify"
	"llreminder/internal/reminder"
	"llreminder/lib/telemetry"

	"github.com/spf13/cobra"
)

var (
	configPath  string
	recordDir   string
	verbose     bool
	interactive bool
	headless    bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.json5", "Path to the config file, config.local.json5 next to it is merged on top.")
	rootCmd.PersistentFlags().StringVar(&recordDir, "record-http", "", "Write a transcript of every notification http exchange to this directory.")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output.")

	rootCmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Drive the steps by hand from a menu.")
	rootCmd.Flags().BoolVarP(&headless, "headless", "H", false, "Run the browser without a window.")
	rootCmd.MarkFlagsMutuallyExclusive("interactive", "headless")
}

var rootCmd = &cobra.Command{
	Use:   "llreminder [-i | -H]",
	Short: "llreminder checks whether today's LearnedLeague answers were submitted and sends a reminder.",
	Long: `llreminder logs into LearnedLeague, checks whether today's answers were
submitted and sends the result over the configured notification transport.

Without flags it performs a single check with a visible browser window.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(verbose)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		tel := telemetry.SlogAPI{}
		r, err := newReminder(configPath, headless, tel)
		if err != nil {
			return err
		}
		if interactive {
			return console.New(r, os.Stdin, os.Stdout, tel).Run(cmd.Context())
		}
		return runOnce(cmd.Context(), r, tel)
	},
}

// newReminder loads the config and wires the browser launcher and notifier.
func newReminder(path string, headless bool, tel telemetry.API) (*reminder.Reminder, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if recordDir != "" {
		cfg.Notify.RecordDir = recordDir
	}
	notifier, err := notify.New(cfg.Notify, telemetry.NewScopedAPI("notify", tel))
	if err != nil {
		return nil, fmt.Errorf("setup notifier: %w", err)
	}
	return reminder.New(reminder.Options{
		Config:   cfg,
		Launch:   reminder.RodLauncher(cfg.Browser, headless, tel),
		Notifier: notifier,
		Tel:      tel,
	}), nil
}

// runOnce performs one check. Failing to start the browser, reach the site
// or log in is an error, a failed delivery is only reported.
func runOnce(ctx context.Context, r *reminder.Reminder, tel telemetry.API) error {
	res := r.Run(ctx)
	switch res.Outcome {
	case reminder.OutcomeSubmitted, reminder.OutcomeReminded:
		tel.ReportDebug("run finished", res.RunID, res.Outcome.String())
		return nil
	case reminder.OutcomeLoginFailed:
		if res.Err != nil {
			return fmt.Errorf("login failed: %w", res.Err)
		}
		return fmt.Errorf("login failed or page did not load properly")
	}
	return fmt.Errorf("%s: %w", res.Outcome, res.Err)
}

// ExecuteContext runs the command line and returns the process exit code.
func ExecuteContext(ctx context.Context) int {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
