package keto

import (
	"database/sql"
	"fmt"

	"github.com/saadjs/keto-cli/internal/service"
	"github.com/spf13/cobra"
)

var doctorFix bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run data integrity checks",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			report, err := service.RunDoctor(sqldb, doctorFix)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Schema version: %d\n", report.SchemaVersion)
			fmt.Fprintf(out, "Blank ketone rows: %d\n", report.BlankKetoneRows)
			fmt.Fprintf(out, "Malformed reading times: %d\n", report.MalformedTimes)
			fmt.Fprintf(out, "Blank free-text entries: %d\n", report.BlankTextEntries)
			fmt.Fprintf(out, "Foreign recipe references: %d\n", report.ForeignRecipeRefs)
			fmt.Fprintf(out, "Integrity check failures: %d\n", report.IntegrityCheckFail)
			if doctorFix {
				fmt.Fprintf(out, "Fixed rows: %d\n", report.FixedRows)
				// Re-check after fixes so exit status reflects final state.
				report, err = service.RunDoctor(sqldb, false)
				if err != nil {
					return err
				}
			}
			if !report.Clean() {
				return fmt.Errorf("doctor found integrity issues")
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "Attempt safe auto-fixes")
}
