package commands

import (
	"fmt"

	"llreminder/internal/config"
	"llreminder/internal/notify"
	"llreminder/internal/site"
	"llreminder/lib/browser"
	"llreminder/lib/telemetry"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	inspectFile   string
	inspectMarker string
)

func init() {
	inspectCmd.Flags().StringVar(&inspectFile, "file", "", "A saved dashboard page.")
	inspectCmd.Flags().StringVar(&inspectMarker, "marker", config.DefaultMarker, "Text of the element that marks a rendered dashboard.")
	inspectCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect --file <page.html> [--marker <text>]",
	Short: "Decides the submission status of a saved page without a browser or sending anything.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := browser.LoadSnapshot(inspectFile)
		if err != nil {
			return err
		}
		defer snap.Close()

		status := site.Inspect(cmd.Context(), snap, inspectMarker, config.DefaultTimeout, telemetry.SlogAPI{})

		fault := "-"
		if status.Fault != nil {
			fault = status.Fault.Error()
		}
		t := table.NewWriter()
		t.SetStyle(table.StyleRounded)
		t.SetOutputMirror(cmd.OutOrStdout())
		t.AppendHeader(table.Row{"File", "Submitted", "Fault", "Message"})
		t.AppendRow(table.Row{inspectFile, fmt.Sprint(status.Submitted), fault, notify.Message(status.Submitted)})
		t.Render()
		return nil
	},
}
