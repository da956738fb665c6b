package keto

import (
	"database/sql"
	"fmt"

	"github.com/saadjs/keto-cli/internal/db"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize local keto database",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveDBPath()
		if err != nil {
			return err
		}
		return withDB(func(sqldb *sql.DB) error {
			version, err := db.SchemaVersion(sqldb)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized keto database at %s (schema v%d)\n", path, version)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
