package keto

import (
	"database/sql"
	"fmt"
	"io"

	"github.com/saadjs/keto-cli/internal/service"
	"github.com/spf13/cobra"
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Record what was eaten and ketone readings",
}

func renderLog(w io.Writer, sqldb *sql.DB, userID int64, start string, days int) error {
	v, err := service.LoadLog(sqldb, userID, start, days)
	if err != nil {
		return err
	}
	f := v.Form()
	fmt.Fprintln(w, "DATE\tSLOT\tSELECTION\tMEAL\tEATEN%\tNOTES")
	for _, row := range f.Slots {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", row.Date, row.Slot, row.Selection, slotSummary(row), formatOptional(row.PercentEaten), row.Notes)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "DATE\tKCAL\tFAT\tPROTEIN\tCARBS\tRATIO\tREMAINING KCAL")
	for _, d := range v.DayTotals {
		remaining := "-"
		if d.HasGoal {
			remaining = fmt.Sprintf("%.0f", d.RemainingCalories)
		}
		fmt.Fprintf(w, "%s\t%.0f\t%.1f\t%.1f\t%.1f\t%s\t%s\n", d.Date, d.Calories, d.FatG, d.ProteinG, d.CarbsG, formatOptional(d.Ratio), remaining)
	}

	if len(v.Readings) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "DATE\tTIME\tKETONE\tGLUCOSE")
		for _, r := range v.Readings {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.Date, r.Time, formatOptional(r.KetoneLevel), formatOptional(r.GlucoseLevel))
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(logCmd)
	logCmd.AddCommand(
		newBookShowCmd(service.LogBook, renderLog),
		newBookSaveCmd(service.LogBook),
		newBookSetCmd(service.LogBook),
		newBookExtraCmd(service.LogBook),
	)
}
