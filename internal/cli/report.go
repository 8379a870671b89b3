package cli

import (
	"github.com/spf13/cobra"
)

func newReportCmd(a *App) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show the time worked per day across projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.planner(cmd)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("days") {
				days = a.cfg.Report.Days
			}
			totals, err := p.Report(cmd.Context(), days)
			if err != nil {
				return err
			}

			rows := make([]reportRow, len(totals))
			for i, d := range totals {
				rows[i] = reportRow{Date: d.Date.String(), Total: d.Total, Projects: d.Projects}
			}
			if a.JSON {
				return writeJSON(cmd, rows)
			}
			renderReport(cmd.OutOrStdout(), a.styles, rows)
			return nil
		},
	}

	cmd.Flags().IntVarP(&days, "days", "d", 7, "Number of days ending today (default from config)")
	return cmd
}
