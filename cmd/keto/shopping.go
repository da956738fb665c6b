package keto

import (
	"database/sql"
	"fmt"

	"github.com/saadjs/keto-cli/internal/model"
	"github.com/saadjs/keto-cli/internal/service"
	"github.com/spf13/cobra"
)

var shoppingWindow bookWindow

var shoppingCmd = &cobra.Command{
	Use:   "shopping",
	Short: "Show the shopping list for the planned window",
	RunE: func(cmd *cobra.Command, args []string) error {
		start, days, err := shoppingWindow.resolve()
		if err != nil {
			return err
		}
		return withUser(func(sqldb *sql.DB, u *model.User) error {
			items, err := service.ShoppingList(sqldb, u.ID, start, days)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing planned")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "INGREDIENT\tAMOUNT\tUNITS\tNOTES")
			for _, it := range items {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%.1f\t%s\t%s\n", it.Name, it.TotalAmount, it.Units, it.NotesText())
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(shoppingCmd)
	shoppingWindow.bind(shoppingCmd)
}
