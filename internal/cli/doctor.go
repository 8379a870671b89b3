package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// doctorOutput is the JSON form of a doctor run
type doctorOutput struct {
	OK        bool         `json:"ok"`
	Gaps      []doctorGap  `json:"gaps"`
	Fixed     int          `json:"fixed"`
	Malformed []doctorTask `json:"malformed"`
}

type doctorGap struct {
	Scope     string `json:"scope"`
	Positions []int  `json:"positions"`
}

type doctorTask struct {
	Task  int64  `json:"task"`
	Error string `json:"error"`
}

func newDoctorCmd(a *App) *cobra.Command {
	var fix bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check positions and time logs for damage",
		Long: `Check that every project, list and task scope is numbered 0..n-1 and
that every time log parses. With --fix, gappy scopes are renumbered in
their current order. Unreadable time logs are only reported.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.planner(cmd)
			if err != nil {
				return err
			}
			report, err := p.Doctor(cmd.Context(), fix)
			if err != nil {
				return err
			}

			out := doctorOutput{OK: report.OK(), Fixed: report.Fixed}
			for _, g := range report.Gaps {
				out.Gaps = append(out.Gaps, doctorGap{Scope: g.Scope.String(), Positions: g.Positions})
			}
			for _, m := range report.Malformed {
				out.Malformed = append(out.Malformed, doctorTask{Task: m.TaskID, Error: m.Err.Error()})
			}
			if a.JSON {
				return writeJSON(cmd, out)
			}

			st := a.styles
			if out.OK {
				writeLine(cmd, "%s", st.Status.Render("no problems found"))
				return nil
			}
			for _, g := range out.Gaps {
				writeLine(cmd, "%s %s", st.Warning.Render("gap"), fmt.Sprintf("%s has positions %v", g.Scope, g.Positions))
			}
			if fix {
				writeLine(cmd, "Renumbered %d item(s)", out.Fixed)
			} else if len(out.Gaps) > 0 {
				writeLine(cmd, "%s", st.Label.Render("run with --fix to renumber"))
			}
			for _, m := range out.Malformed {
				writeLine(cmd, "%s task #%d: %s", st.Warning.Render("bad log"), m.Task, m.Error)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&fix, "fix", false, "Renumber scopes with gaps")
	return cmd
}
