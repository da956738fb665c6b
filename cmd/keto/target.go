package keto

import (
	"database/sql"
	"fmt"

	"github.com/saadjs/keto-cli/internal/model"
	"github.com/saadjs/keto-cli/internal/service"
	"github.com/spf13/cobra"
)

var targetCmd = &cobra.Command{
	Use:   "target",
	Short: "Manage daily macro targets",
}

var (
	targetInput service.SetTargetInput
	targetMeal  service.MacroInput
	targetSnack service.MacroInput
)

var targetSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Set a new target (earlier targets are kept as history)",
	RunE: func(cmd *cobra.Command, args []string) error {
		in := targetInput
		if anyChanged(cmd, "meal-calories", "meal-fat", "meal-protein", "meal-carbs") {
			m := targetMeal
			in.Meal = &m
		}
		if anyChanged(cmd, "snack-calories", "snack-fat", "snack-protein", "snack-carbs") {
			s := targetSnack
			in.Snack = &s
		}
		return withUser(func(sqldb *sql.DB, u *model.User) error {
			id, err := service.SetTarget(sqldb, u.ID, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Set target %d\n", id)
			return nil
		})
	},
}

var targetCurrentCmd = &cobra.Command{
	Use:   "current",
	Short: "Show the target in effect",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withUser(func(sqldb *sql.DB, u *model.User) error {
			t, err := service.LatestTarget(sqldb, u.ID)
			if err != nil {
				return err
			}
			if t == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "No target set")
				return nil
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ID: %d\nEffective: %s\nRatio: %.1f:1\nCalories: %.0f\nFat: %.1fg\nProtein: %.1fg\nCarbs: %.1fg\nMain meals: %d\nSnacks: %d\n",
				t.ID, t.EffectiveDate, t.Ratio, t.Calories, t.Fat, t.Protein, t.Carbs, t.NumMainMeals, t.NumSnacks)
			breakdowns, err := service.TargetBreakdowns(sqldb, t.ID)
			if err != nil {
				return err
			}
			for _, b := range breakdowns {
				fmt.Fprintf(out, "Per %s: %.0f kcal, %.1fg fat, %.1fg protein, %.1fg carbs\n", b.Item, b.Calories, b.Fat, b.Protein, b.Carbs)
			}
			return nil
		})
	},
}

var targetHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "List every target, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withUser(func(sqldb *sql.DB, u *model.User) error {
			items, err := service.TargetHistory(sqldb, u.ID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ID\tEFFECTIVE\tRATIO\tKCAL\tFAT\tPROTEIN\tCARBS\tMEALS\tSNACKS")
			for _, t := range items {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%.1f\t%.0f\t%.1f\t%.1f\t%.1f\t%d\t%d\n", t.ID, t.EffectiveDate, t.Ratio, t.Calories, t.Fat, t.Protein, t.Carbs, t.NumMainMeals, t.NumSnacks)
			}
			return nil
		})
	},
}

func anyChanged(cmd *cobra.Command, names ...string) bool {
	for _, name := range names {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}

func init() {
	rootCmd.AddCommand(targetCmd)
	targetCmd.AddCommand(targetSetCmd, targetCurrentCmd, targetHistoryCmd)

	f := targetSetCmd.Flags()
	f.Float64Var(&targetInput.Ratio, "ratio", 0, "Ketogenic ratio, fat to protein plus carbs")
	f.Float64Var(&targetInput.Calories, "calories", 0, "Daily calories")
	f.Float64Var(&targetInput.Fat, "fat", 0, "Daily fat grams")
	f.Float64Var(&targetInput.Protein, "protein", 0, "Daily protein grams")
	f.Float64Var(&targetInput.Carbs, "carbs", 0, "Daily carbs grams")
	f.IntVar(&targetInput.NumMainMeals, "meals", 3, "Main meals per day")
	f.IntVar(&targetInput.NumSnacks, "snacks", 0, "Snacks per day")
	f.StringVar(&targetInput.EffectiveDate, "effective", "", "Effective date in YYYY-MM-DD (default today)")
	f.Float64Var(&targetMeal.Calories, "meal-calories", 0, "Calories per main meal")
	f.Float64Var(&targetMeal.Fat, "meal-fat", 0, "Fat grams per main meal")
	f.Float64Var(&targetMeal.Protein, "meal-protein", 0, "Protein grams per main meal")
	f.Float64Var(&targetMeal.Carbs, "meal-carbs", 0, "Carbs grams per main meal")
	f.Float64Var(&targetSnack.Calories, "snack-calories", 0, "Calories per snack")
	f.Float64Var(&targetSnack.Fat, "snack-fat", 0, "Fat grams per snack")
	f.Float64Var(&targetSnack.Protein, "snack-protein", 0, "Protein grams per snack")
	f.Float64Var(&targetSnack.Carbs, "snack-carbs", 0, "Carbs grams per snack")
	_ = targetSetCmd.MarkFlagRequired("ratio")
	_ = targetSetCmd.MarkFlagRequired("calories")
}
