package service

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	ketodb "github.com/saadjs/keto-cli/internal/db"
)

type BackupInfo struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	CreatedAt time.Time `json:"created_at"`
	SizeBytes int64     `json:"size_bytes"`
}

type DoctorReport struct {
	BlankKetoneRows    int `json:"blank_ketone_rows"`
	MalformedTimes     int `json:"malformed_times"`
	BlankTextEntries   int `json:"blank_text_entries"`
	ForeignRecipeRefs  int `json:"foreign_recipe_refs"`
	FixedRows          int `json:"fixed_rows,omitempty"`
	SchemaVersion      int `json:"schema_version"`
	IntegrityCheckFail int `json:"integrity_check_failures"`
}

func (r DoctorReport) Clean() bool {
	return r.BlankKetoneRows == 0 && r.MalformedTimes == 0 && r.BlankTextEntries == 0 && r.ForeignRecipeRefs == 0 && r.IntegrityCheckFail == 0
}

func CreateBackup(db *sql.DB, outPath string) (BackupInfo, error) {
	if strings.TrimSpace(outPath) == "" {
		return BackupInfo{}, fmt.Errorf("backup output path is required")
	}
	if _, err := os.Stat(outPath); err == nil {
		return BackupInfo{}, fmt.Errorf("backup %s already exists", outPath)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return BackupInfo{}, fmt.Errorf("create backup directory: %w", err)
	}
	if _, err := db.Exec(`VACUUM INTO ?`, outPath); err != nil {
		return BackupInfo{}, fmt.Errorf("snapshot database: %w", err)
	}
	checksum, err := fileSHA256(outPath)
	if err != nil {
		return BackupInfo{}, err
	}
	if err := os.WriteFile(outPath+".sha256", []byte(checksum+"\n"), 0o644); err != nil {
		return BackupInfo{}, fmt.Errorf("write checksum file: %w", err)
	}
	st, err := os.Stat(outPath)
	if err != nil {
		return BackupInfo{}, fmt.Errorf("stat backup: %w", err)
	}
	return BackupInfo{Path: outPath, Checksum: checksum, CreatedAt: st.ModTime(), SizeBytes: st.Size()}, nil
}

// RestoreBackup verifies the backup's checksum and that it opens as a keto
// database before copying it over dbPath.
func RestoreBackup(backupPath, dbPath string, force bool) error {
	if strings.TrimSpace(backupPath) == "" || strings.TrimSpace(dbPath) == "" {
		return fmt.Errorf("backup path and db path are required")
	}
	if !force {
		if _, err := os.Stat(dbPath); err == nil {
			return fmt.Errorf("target db already exists; use --force to overwrite")
		}
	}
	if expected, err := os.ReadFile(backupPath + ".sha256"); err == nil {
		actual, err := fileSHA256(backupPath)
		if err != nil {
			return err
		}
		if strings.TrimSpace(string(expected)) != actual {
			return fmt.Errorf("backup checksum mismatch")
		}
	}
	if err := verifyBackup(backupPath); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return fmt.Errorf("create db directory: %w", err)
	}
	tmp := dbPath + ".restore"
	if err := copyFile(backupPath, tmp); err != nil {
		return err
	}
	if err := os.Rename(tmp, dbPath); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace database: %w", err)
	}
	return nil
}

func verifyBackup(path string) error {
	sqldb, err := ketodb.Open(path)
	if err != nil {
		return fmt.Errorf("open backup: %w", err)
	}
	defer sqldb.Close()
	version, err := ketodb.SchemaVersion(sqldb)
	if err != nil {
		return fmt.Errorf("backup is not a keto database: %w", err)
	}
	if version == 0 {
		return fmt.Errorf("backup has no applied migrations")
	}
	var result string
	if err := sqldb.QueryRow(`PRAGMA integrity_check`).Scan(&result); err != nil {
		return fmt.Errorf("check backup integrity: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("backup failed integrity check: %s", result)
	}
	return nil
}

func ListBackups(dir string) ([]BackupInfo, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []BackupInfo{}, nil
		}
		return nil, fmt.Errorf("read backup dir: %w", err)
	}
	out := make([]BackupInfo, 0)
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".db") {
			continue
		}
		full := filepath.Join(dir, f.Name())
		st, err := os.Stat(full)
		if err != nil {
			continue
		}
		checksum := ""
		if b, err := os.ReadFile(full + ".sha256"); err == nil {
			checksum = strings.TrimSpace(string(b))
		}
		out = append(out, BackupInfo{Path: full, Checksum: checksum, CreatedAt: st.ModTime(), SizeBytes: st.Size()})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

type doctorCheck struct {
	name  string
	count string
	fix   []string
	into  func(*DoctorReport) *int
}

const (
	blankTextWhere = `(free_text IS NOT NULL AND TRIM(free_text) = '') OR (notes IS NOT NULL AND TRIM(notes) = '')`
	blankTextSet   = `free_text = NULLIF(TRIM(free_text), ''), notes = NULLIF(TRIM(notes), ''), updated_at = CURRENT_TIMESTAMP`
)

var doctorChecks = []doctorCheck{
	{
		name:  "blank ketone rows",
		count: `SELECT COUNT(1) FROM ketone_log_entries WHERE ketone_level IS NULL AND glucose_level IS NULL`,
		fix:   []string{`DELETE FROM ketone_log_entries WHERE ketone_level IS NULL AND glucose_level IS NULL`},
		into:  func(r *DoctorReport) *int { return &r.BlankKetoneRows },
	},
	{
		name:  "malformed reading times",
		count: `SELECT COUNT(1) FROM ketone_log_entries WHERE time NOT GLOB '[0-2][0-9]:[0-5][0-9]' OR date NOT GLOB '[0-9][0-9][0-9][0-9]-[0-1][0-9]-[0-3][0-9]'`,
		into:  func(r *DoctorReport) *int { return &r.MalformedTimes },
	},
	{
		name:  "blank text entries",
		count: `SELECT (SELECT COUNT(1) FROM planner_entries WHERE ` + blankTextWhere + `) + (SELECT COUNT(1) FROM log_entries WHERE ` + blankTextWhere + `)`,
		fix: []string{
			`UPDATE planner_entries SET ` + blankTextSet + ` WHERE ` + blankTextWhere,
			`UPDATE log_entries SET ` + blankTextSet + ` WHERE ` + blankTextWhere,
		},
		into: func(r *DoctorReport) *int { return &r.BlankTextEntries },
	},
	{
		name:  "foreign recipe references",
		count: `SELECT (SELECT COUNT(1) FROM planner_entries e JOIN recipes r ON r.id = e.recipe_id WHERE r.user_id <> e.user_id) + (SELECT COUNT(1) FROM log_entries e JOIN recipes r ON r.id = e.recipe_id WHERE r.user_id <> e.user_id)`,
		fix: []string{
			`UPDATE planner_entries SET recipe_id = NULL, updated_at = CURRENT_TIMESTAMP WHERE recipe_id IN (SELECT r.id FROM recipes r WHERE r.user_id <> planner_entries.user_id)`,
			`UPDATE log_entries SET recipe_id = NULL, updated_at = CURRENT_TIMESTAMP WHERE recipe_id IN (SELECT r.id FROM recipes r WHERE r.user_id <> log_entries.user_id)`,
		},
		into: func(r *DoctorReport) *int { return &r.ForeignRecipeRefs },
	},
}

// RunDoctor counts integrity problems. With fix, repairable rows are fixed
// in one transaction; malformed reading times are only reported.
func RunDoctor(db *sql.DB, fix bool) (DoctorReport, error) {
	report := DoctorReport{}
	version, err := ketodb.SchemaVersion(db)
	if err != nil {
		return report, err
	}
	report.SchemaVersion = version

	rows, err := db.Query(`PRAGMA integrity_check`)
	if err != nil {
		return report, fmt.Errorf("doctor integrity check: %w", err)
	}
	for rows.Next() {
		var line string
		if err := rows.Scan(&line); err != nil {
			_ = rows.Close()
			return report, fmt.Errorf("doctor integrity scan: %w", err)
		}
		if line != "ok" {
			report.IntegrityCheckFail++
		}
	}
	_ = rows.Close()

	for _, c := range doctorChecks {
		if err := db.QueryRow(c.count).Scan(c.into(&report)); err != nil {
			return report, fmt.Errorf("doctor %s check: %w", c.name, err)
		}
	}
	if !fix {
		return report, nil
	}

	err = inTx(db, "doctor fix", func(tx *sql.Tx) error {
		for _, c := range doctorChecks {
			for _, stmt := range c.fix {
				res, err := tx.Exec(stmt)
				if err != nil {
					return fmt.Errorf("doctor fix %s: %w", c.name, err)
				}
				if n, err := res.RowsAffected(); err == nil {
					report.FixedRows += int(n)
				}
			}
		}
		return nil
	})
	return report, err
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source file: %w", err)
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create destination file: %w", err)
	}
	defer out.Close()
	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy file: %w", err)
	}
	if err := out.Sync(); err != nil {
		return fmt.Errorf("sync destination file: %w", err)
	}
	return nil
}

func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open file for checksum: %w", err)
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash file: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
