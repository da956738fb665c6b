package keto

import (
	"fmt"

	"github.com/saadjs/keto-cli/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect keto configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath, err := resolveDBPath()
		if err != nil {
			return err
		}
		file := cfgFile
		if file == "" {
			file = config.ConfigFile()
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "KEY\tVALUE")
		fmt.Fprintf(out, "config_file\t%s\n", file)
		fmt.Fprintf(out, "db_path\t%s\n", dbPath)
		fmt.Fprintf(out, "user\t%s\n", cfg.User)
		fmt.Fprintf(out, "window_days\t%d\n", cfg.WindowDays)
		fmt.Fprintf(out, "log.level\t%s\n", cfg.Log.Level)
		fmt.Fprintf(out, "log.development\t%t\n", cfg.Log.Development)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
}
