package keto

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/saadjs/keto-cli/internal/model"
	"github.com/saadjs/keto-cli/internal/service"
	"github.com/spf13/cobra"
)

var recipeCmd = &cobra.Command{
	Use:   "recipe",
	Short: "Manage recipes",
}

var (
	recipeName     string
	recipeAuthor   string
	recipeMealType string
	recipeNotes    string
	recipeLines    []string
	recipeListType string
)

var recipeAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a recipe from ingredient lines",
	Example: `  keto recipe add --name "Custard" --meal-type breakfast \
    --line "Heavy cream=50" --line "Group 1 Vegetables=20"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		lines, err := parseRecipeLines(recipeLines)
		if err != nil {
			return err
		}
		in := service.RecipeInput{
			Name:     recipeName,
			Author:   recipeAuthor,
			MealType: recipeMealType,
			Notes:    recipeNotes,
			Lines:    lines,
		}
		return withUser(func(sqldb *sql.DB, u *model.User) error {
			id, err := service.CreateRecipe(sqldb, u.ID, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created recipe %d\n", id)
			return nil
		})
	},
}

var recipeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recipes",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withUser(func(sqldb *sql.DB, u *model.User) error {
			recipes, err := service.ListRecipes(sqldb, u.ID, recipeListType)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ID\tNAME\tTYPE\tKCAL\tF\tP\tC\tRATIO")
			for _, r := range recipes {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\t%.0f\t%.1f\t%.1f\t%.1f\t%s\n", r.ID, r.Name, r.MealType, r.TotalCalories, r.TotalFat, r.TotalProtein, r.TotalCarbs, formatRatio(r.Ratio))
			}
			return nil
		})
	},
}

var recipeShowCmd = &cobra.Command{
	Use:   "show <id|name>",
	Short: "Show recipe details and ingredient lines",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withUser(func(sqldb *sql.DB, u *model.User) error {
			r, err := service.ResolveRecipe(sqldb, u.ID, args[0])
			if err != nil {
				return err
			}
			lines, err := service.ListRecipeLines(sqldb, u.ID, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ID: %d\nName: %s\nAuthor: %s\nMeal type: %s\nCalories: %.0f\nFat: %.1fg\nProtein: %.1fg\nCarbs: %.1fg\nRatio: %s\nNotes: %s\n",
				r.ID, r.Name, r.Author, r.MealType, r.TotalCalories, r.TotalFat, r.TotalProtein, r.TotalCarbs, formatRatio(r.Ratio), r.Notes)
			fmt.Fprintln(out, "INGREDIENT\tAMOUNT\tUNITS\tF\tP\tC\tKCAL")
			for _, l := range lines {
				fmt.Fprintf(out, "%s\t%.1f\t%s\t%.1f\t%.1f\t%.1f\t%.0f\n", l.IngredientName, l.Amount, l.Units, l.Fat, l.Protein, l.Carbs, l.Calories)
			}
			return nil
		})
	},
}

var recipeDeleteCmd = &cobra.Command{
	Use:   "delete <id|name>",
	Short: "Delete a recipe",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withUser(func(sqldb *sql.DB, u *model.User) error {
			if err := service.DeleteRecipe(sqldb, u.ID, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted recipe %q\n", args[0])
			return nil
		})
	},
}

// parseRecipeLines reads "ingredient=amount" pairs. The last "=" splits, so
// ingredient names may contain one.
func parseRecipeLines(raw []string) ([]service.RecipeLineInput, error) {
	lines := make([]service.RecipeLineInput, 0, len(raw))
	for _, item := range raw {
		i := strings.LastIndex(item, "=")
		if i <= 0 {
			return nil, fmt.Errorf("invalid --line %q (want ingredient=amount)", item)
		}
		amount, err := parseFloatArg("amount", item[i+1:])
		if err != nil {
			return nil, err
		}
		lines = append(lines, service.RecipeLineInput{Ingredient: strings.TrimSpace(item[:i]), Amount: amount})
	}
	return lines, nil
}

func formatRatio(r *float64) string {
	if r == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f:1", *r)
}

func init() {
	rootCmd.AddCommand(recipeCmd)
	recipeCmd.AddCommand(recipeAddCmd, recipeListCmd, recipeShowCmd, recipeDeleteCmd)

	recipeAddCmd.Flags().StringVar(&recipeName, "name", "", "Recipe name")
	recipeAddCmd.Flags().StringVar(&recipeAuthor, "author", "home", "Author: hospital or home")
	recipeAddCmd.Flags().StringVar(&recipeMealType, "meal-type", "main", "Meal type: breakfast, main or snack")
	recipeAddCmd.Flags().StringVar(&recipeNotes, "notes", "", "Recipe notes")
	recipeAddCmd.Flags().StringArrayVar(&recipeLines, "line", nil, "Ingredient line as ingredient=amount (repeatable)")
	_ = recipeAddCmd.MarkFlagRequired("name")
	_ = recipeAddCmd.MarkFlagRequired("line")

	recipeListCmd.Flags().StringVar(&recipeListType, "meal-type", "", "Only list recipes of this meal type")
}
