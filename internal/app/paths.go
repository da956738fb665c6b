package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	appDirName    = "keto"
	dbFileName    = "keto.db"
	backupDirName = "backups"
)

// DefaultDBPath is $XDG_DATA_HOME/keto/keto.db, falling back to the user
// config directory.
func DefaultDBPath() (string, error) {
	base := strings.TrimSpace(os.Getenv("XDG_DATA_HOME"))
	if base == "" {
		var err error
		base, err = os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("resolve user config dir: %w", err)
		}
	}
	return filepath.Join(base, appDirName, dbFileName), nil
}

func EnsureDBDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create db directory: %w", err)
	}
	return nil
}

// BackupDir is where backups of dbPath go unless told otherwise.
func BackupDir(dbPath string) string {
	return filepath.Join(filepath.Dir(dbPath), backupDirName)
}

// BackupFileName names a backup taken at t.
func BackupFileName(t time.Time) string {
	return fmt.Sprintf("keto-%s.db", t.Format("20060102-150405"))
}
