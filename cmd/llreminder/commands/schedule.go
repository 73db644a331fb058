package commands

import (
	"context"
	"log/slog"
	"time"

	"llreminder/internal/chrono"
	"llreminder/internal/config"
	"llreminder/lib/telemetry"

	"github.com/spf13/cobra"
)

var scheduleSpec string

func init() {
	scheduleCmd.Flags().StringVar(&scheduleSpec, "cron", "", "Cron spec to run the check on, overrides schedule.cron.")
	rootCmd.AddCommand(scheduleCmd)
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule [--cron <spec>]",
	Short: "Runs the check headless on a cron schedule until interrupted.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tel := telemetry.SlogAPI{}
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		spec := cfg.Schedule.Cron
		if scheduleSpec != "" {
			spec = scheduleSpec
		}
		clock, err := chrono.NewStandardImpl(cfg.Schedule.Timezone)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		cronner := chrono.NewStandardCron(telemetry.NewScopedAPI("schedule", tel), clock.Location())
		err = cronner.Cron(spec, func() {
			r, err := newReminder(configPath, true, tel)
			if err != nil {
				tel.ReportBroken("schedule", err)
				return
			}
			err = runOnce(ctx, r, tel)
			if err != nil {
				tel.ReportBroken("schedule", err)
			}
		})
		if err != nil {
			return err
		}

		cronner.Start()
		slog.Info("scheduled check", "cron", spec, "now", clock.Now(), "next", cronner.Next())
		<-ctx.Done()

		slog.Info("stopping scheduler")
		stopCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		return cronner.Stop(stopCtx)
	},
}
