package keto

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/saadjs/keto-cli/internal/model"
	"github.com/saadjs/keto-cli/internal/plan"
	"github.com/saadjs/keto-cli/internal/service"
	"github.com/spf13/cobra"
)

var ketoneCmd = &cobra.Command{
	Use:   "ketone",
	Short: "Inspect and replace the ketone/glucose series",
}

var (
	ketoneFrom string
	ketoneTo   string
	ketoneFile string
)

var ketoneListCmd = &cobra.Command{
	Use:   "list",
	Short: "List ketone and glucose readings",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withUser(func(sqldb *sql.DB, u *model.User) error {
			readings, err := service.ListKetoneReadings(sqldb, u.ID, ketoneFrom, ketoneTo)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ID\tDATE\tTIME\tKETONE\tGLUCOSE")
			for _, r := range readings {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\t%s\t%s\n", r.ID, r.Date, r.Time, formatOptional(r.KetoneLevel), formatOptional(r.GlucoseLevel))
			}
			return nil
		})
	},
}

var ketoneSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Replace the whole series with a JSON list of readings",
	Long: `Sync reads a JSON array of {"date","time","ketone","glucose"} objects. It is
the complete series: stored readings missing from it are deleted, and rows
with neither value delete the reading at that date and time.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := openInput(cmd, ketoneFile)
		if err != nil {
			return err
		}
		defer in.Close()

		var rows []service.FormReading
		dec := json.NewDecoder(in)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&rows); err != nil {
			return fmt.Errorf("decode readings: %w", err)
		}
		readings := make([]plan.Reading, 0, len(rows))
		for _, r := range rows {
			readings = append(readings, plan.Reading{Date: r.Date, Time: r.Time, Ketone: r.Ketone, Glucose: r.Glucose})
		}
		return withUser(func(sqldb *sql.DB, u *model.User) error {
			res, err := service.SyncKetoneReadings(sqldb, u.ID, readings)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %d, inserted %d, deleted %d reading(s)\n", res.Updated, res.Inserted, res.Deleted)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(ketoneCmd)
	ketoneCmd.AddCommand(ketoneListCmd, ketoneSyncCmd)

	ketoneListCmd.Flags().StringVar(&ketoneFrom, "from", "", "First date (YYYY-MM-DD)")
	ketoneListCmd.Flags().StringVar(&ketoneTo, "to", "", "Last date (YYYY-MM-DD)")
	ketoneSyncCmd.Flags().StringVarP(&ketoneFile, "file", "f", "", "Readings file (- for stdin)")
}
