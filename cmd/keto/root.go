package keto

import (
	"fmt"
	"os"

	"github.com/saadjs/keto-cli/internal/apperr"
	"github.com/saadjs/keto-cli/internal/config"
	"github.com/saadjs/keto-cli/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	cfg     = config.Default()
)

var rootCmd = &cobra.Command{
	Use:   "keto",
	Short: "keto plans and logs ketogenic meals from your terminal",
	Long: `keto is a local-first CLI for a household on a ketogenic diet: ingredients,
recipes, daily targets, a rolling meal planner with a shopping list, and a
food and ketone log.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logging.Sync()
	},
}

// Execute runs the CLI. Errors the user can fix exit with status 2.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		if apperr.IsUserFacing(err) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

// loadConfig builds a fresh viper instance per run so flags bound in one
// invocation never leak into the next.
func loadConfig(cmd *cobra.Command) error {
	v := viper.New()
	flags := cmd.Root().PersistentFlags()
	for key, name := range map[string]string{
		"db_path":   "db",
		"user":      "user",
		"log.level": "log-level",
	} {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return fmt.Errorf("bind --%s: %w", name, err)
		}
	}
	if err := config.Setup(v, cfgFile); err != nil {
		return err
	}
	loaded, err := config.Load(v)
	if err != nil {
		return err
	}
	cfg = loaded
	return logging.Init(cfg.Log.Level, cfg.Log.Development)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Config file (default $XDG_CONFIG_HOME/keto/config.yaml)")
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database")
	rootCmd.PersistentFlags().StringP("user", "u", "", "User name or id to act as (default: active user)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
}
