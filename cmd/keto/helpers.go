package keto

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/saadjs/keto-cli/internal/app"
	"github.com/saadjs/keto-cli/internal/db"
	"github.com/saadjs/keto-cli/internal/model"
	"github.com/saadjs/keto-cli/internal/service"
	"github.com/spf13/cobra"
)

func withDB(run func(*sql.DB) error) error {
	path, err := resolveDBPath()
	if err != nil {
		return err
	}
	if err := app.EnsureDBDir(path); err != nil {
		return err
	}
	sqldb, err := db.Open(path)
	if err != nil {
		return err
	}
	defer sqldb.Close()

	if err := db.ApplyMigrations(sqldb); err != nil {
		return err
	}
	return run(sqldb)
}

// withUser resolves the user to act as from --user, the config file, or the
// remembered active user, in that order.
func withUser(run func(*sql.DB, *model.User) error) error {
	return withDB(func(sqldb *sql.DB) error {
		var (
			u   *model.User
			err error
		)
		if cfg.User != "" {
			u, err = service.ResolveUser(sqldb, cfg.User)
		} else {
			u, err = service.ActiveUser(sqldb)
		}
		if err != nil {
			return err
		}
		if u == nil {
			return fmt.Errorf("no user selected; run `keto user add <name> --use` or pass --user")
		}
		return run(sqldb, u)
	})
}

func resolveDBPath() (string, error) {
	if cfg.DBPath != "" {
		return cfg.DBPath, nil
	}
	return app.DefaultDBPath()
}

// windowDays returns the --days flag, or the configured window when unset.
func windowDays(days int) (int, error) {
	if days == 0 {
		return cfg.WindowDays, nil
	}
	if days < 0 {
		return 0, fmt.Errorf("--days must be > 0")
	}
	return days, nil
}

func parseFloatArg(name, value string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, value)
	}
	return v, nil
}

// openInput opens path for reading; "-" is stdin.
func openInput(cmd *cobra.Command, path string) (io.ReadCloser, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("--file is required (use - for stdin)")
	}
	if path == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, nil
}

func formatOptional(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
