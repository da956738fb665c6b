package keto

import (
	"database/sql"
	"fmt"

	"github.com/saadjs/keto-cli/internal/service"
	"github.com/spf13/cobra"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage household members",
}

var userAddUse bool

var userAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a user and seed their unmeasured ingredients",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			id, err := service.CreateUser(sqldb, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created user %d\n", id)
			active, err := service.ActiveUser(sqldb)
			if err != nil {
				return err
			}
			if userAddUse || active == nil {
				if _, err := service.SetActiveUser(sqldb, fmt.Sprint(id)); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Active user is now %s\n", args[0])
			}
			return nil
		})
	},
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			users, err := service.ListUsers(sqldb)
			if err != nil {
				return err
			}
			active, err := service.ActiveUser(sqldb)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ID\tNAME\tACTIVE")
			for _, u := range users {
				mark := ""
				if active != nil && active.ID == u.ID {
					mark = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\n", u.ID, u.Name, mark)
			}
			return nil
		})
	},
}

var userUseCmd = &cobra.Command{
	Use:   "use <id|name>",
	Short: "Set the user commands act as by default",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			u, err := service.SetActiveUser(sqldb, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Active user is now %s\n", u.Name)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(userAddCmd, userListCmd, userUseCmd)

	userAddCmd.Flags().BoolVar(&userAddUse, "use", false, "Make the new user active")
}
