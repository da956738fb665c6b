package keto

import (
	"database/sql"
	"fmt"
	"io"

	"github.com/saadjs/keto-cli/internal/service"
	"github.com/spf13/cobra"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Plan meals and snacks over a rolling window",
}

func renderPlanner(w io.Writer, sqldb *sql.DB, userID int64, start string, days int) error {
	v, err := service.LoadPlanner(sqldb, userID, start, days)
	if err != nil {
		return err
	}
	f := v.Form()
	fmt.Fprintf(w, "Target: ratio %.1f:1, %.0f kcal, %d meal(s), %d snack(s)\n", v.Target.Ratio, v.Target.Calories, v.Target.NumMainMeals, v.Target.NumSnacks)
	fmt.Fprintln(w, "DATE\tSLOT\tSELECTION\tMEAL\tNOTES")
	for _, row := range f.Slots {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", row.Date, row.Slot, row.Selection, slotSummary(row), row.Notes)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(planCmd)
	planCmd.AddCommand(
		newBookShowCmd(service.PlannerBook, renderPlanner),
		newBookSaveCmd(service.PlannerBook),
		newBookSetCmd(service.PlannerBook),
		newBookExtraCmd(service.PlannerBook),
	)
}
