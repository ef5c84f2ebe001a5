package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show a learner's mastery report",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, _ := cmd.Flags().GetString("user")
		asJSON, _ := cmd.Flags().GetBool("json")

		a, _, cleanup, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		rep, err := a.MasteryReport(cmd.Context(), user)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(rep)
		}
		fmt.Fprint(out, renderMasteryReport(rep))

		sessions := a.Sessions(cmd.Context(), user)
		if len(sessions) > 0 {
			fmt.Fprintln(out)
			fmt.Fprintln(out, headingStyle.Render("Sessions"))
			for _, s := range sessions {
				fmt.Fprintf(out, "  %s  %-24s  %-11s  %d/%d correct\n",
					s.StartTime.Local().Format("2006-01-02 15:04"), truncate(s.ConceptName, 24),
					s.State, s.Correct, s.QuestionsTotal)
			}
		}
		return nil
	},
}

func init() {
	reportCmd.Flags().StringP("user", "u", "", "Learner id")
	reportCmd.Flags().Bool("json", false, "Print the report as JSON")
	_ = reportCmd.MarkFlagRequired("user")
}
