package keto

import (
	"database/sql"
	"fmt"

	"github.com/saadjs/keto-cli/internal/model"
	"github.com/saadjs/keto-cli/internal/service"
	"github.com/spf13/cobra"
)

var ingredientCmd = &cobra.Command{
	Use:     "ingredient",
	Aliases: []string{"ing"},
	Short:   "Manage ingredients",
}

var (
	ingName       string
	ingType       string
	ingUnits      string
	ingFat        float64
	ingCarbs      float64
	ingProtein    float64
	ingCalories   float64
	ingSource     string
	ingUnmeasured bool
)

var ingredientAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add an ingredient with macro percentages",
	RunE: func(cmd *cobra.Command, args []string) error {
		in := service.IngredientInput{
			Name:           ingName,
			Type:           ingType,
			Units:          ingUnits,
			PercentFat:     ingFat,
			PercentCarbs:   ingCarbs,
			PercentProtein: ingProtein,
			CaloriesPer100: ingCalories,
			Source:         ingSource,
			Unmeasured:     ingUnmeasured,
		}
		return withUser(func(sqldb *sql.DB, u *model.User) error {
			id, err := service.CreateIngredient(sqldb, u.ID, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created ingredient %d\n", id)
			return nil
		})
	},
}

var ingredientListCmd = &cobra.Command{
	Use:   "list",
	Short: "List ingredients",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withUser(func(sqldb *sql.DB, u *model.User) error {
			items, err := service.ListIngredients(sqldb, u.ID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ID\tNAME\tTYPE\tUNITS\tFAT%\tCARBS%\tPROTEIN%\tKCAL/100\tUNMEASURED")
			for _, it := range items {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\t%s\t%.1f\t%.1f\t%.1f\t%.0f\t%t\n", it.ID, it.Name, it.Type, it.Units, it.PercentFat, it.PercentCarbs, it.PercentProtein, it.CaloriesPer100, it.Unmeasured)
			}
			return nil
		})
	},
}

var ingredientSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Add the standard vegetable and fruit groups",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withUser(func(sqldb *sql.DB, u *model.User) error {
			added, err := service.SeedUnmeasuredIngredients(sqldb, u.ID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %d ingredient(s)\n", added)
			return nil
		})
	},
}

var ingredientDeleteCmd = &cobra.Command{
	Use:   "delete <id|name>",
	Short: "Delete an ingredient no recipe uses",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withUser(func(sqldb *sql.DB, u *model.User) error {
			if err := service.DeleteIngredient(sqldb, u.ID, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted ingredient %q\n", args[0])
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(ingredientCmd)
	ingredientCmd.AddCommand(ingredientAddCmd, ingredientListCmd, ingredientSeedCmd, ingredientDeleteCmd)

	ingredientAddCmd.Flags().StringVar(&ingName, "name", "", "Ingredient name")
	ingredientAddCmd.Flags().StringVar(&ingType, "type", "", "Ingredient type (dairy, fat, protein, vegetables, ...)")
	ingredientAddCmd.Flags().StringVar(&ingUnits, "units", "g", "Units: g or ml")
	ingredientAddCmd.Flags().Float64Var(&ingFat, "fat", 0, "Fat percent (0-100)")
	ingredientAddCmd.Flags().Float64Var(&ingCarbs, "carbs", 0, "Carbs percent (0-100)")
	ingredientAddCmd.Flags().Float64Var(&ingProtein, "protein", 0, "Protein percent (0-100)")
	ingredientAddCmd.Flags().Float64Var(&ingCalories, "calories", 0, "Calories per 100 units")
	ingredientAddCmd.Flags().StringVar(&ingSource, "source", "", "Where the values came from")
	ingredientAddCmd.Flags().BoolVar(&ingUnmeasured, "unmeasured", false, "Track by note on the shopping list instead of by amount")
	_ = ingredientAddCmd.MarkFlagRequired("name")
	_ = ingredientAddCmd.MarkFlagRequired("type")
}
