package keto

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/saadjs/keto-cli/internal/apperr"
	"github.com/saadjs/keto-cli/internal/service"
)

// runCLI executes rootCmd in-process with fresh flag values. stdin may be
// empty.
func runCLI(t *testing.T, dbPath, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(stdin))
	if dbPath != "" {
		args = append([]string{"--db", dbPath}, args...)
	}
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func isolateEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	return filepath.Join(dir, "keto.db")
}

func mustRun(t *testing.T, dbPath string, args ...string) string {
	t.Helper()
	out, err := runCLI(t, dbPath, "", args...)
	if err != nil {
		t.Fatalf("keto %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

func TestRootHelp(t *testing.T) {
	isolateEnv(t)
	out, err := runCLI(t, "", "", "--help")
	if err != nil {
		t.Fatalf("execute root help: %v", err)
	}
	if !strings.Contains(out, "plan") || !strings.Contains(out, "ketone") {
		t.Fatalf("expected command list in help, got %q", out)
	}
}

func TestInitCommandIdempotent(t *testing.T) {
	path := isolateEnv(t)
	for i := 0; i < 2; i++ {
		out, err := runCLI(t, path, "", "init")
		if err != nil {
			t.Fatalf("init run %d failed: %v", i+1, err)
		}
		if !strings.Contains(out, "schema v") {
			t.Fatalf("unexpected init output %q", out)
		}
	}
}

func TestCommandsRequireUser(t *testing.T) {
	path := isolateEnv(t)
	mustRun(t, path, "init")
	if _, err := runCLI(t, path, "", "recipe", "list"); err == nil {
		t.Fatalf("expected error without a user")
	}
}

func TestPlanShowWithoutTargetIsUserFacing(t *testing.T) {
	path := isolateEnv(t)
	mustRun(t, path, "user", "add", "Bob")
	_, err := runCLI(t, path, "", "plan", "show", "--start", "2026-03-01", "--days", "1")
	if !errors.Is(err, apperr.ErrConfigurationMissing) {
		t.Fatalf("expected missing target error, got %v", err)
	}
	if !apperr.IsUserFacing(err) {
		t.Fatalf("expected user-facing error")
	}
}

func TestPlannerAndLogFlow(t *testing.T) {
	path := isolateEnv(t)

	out := mustRun(t, path, "user", "add", "Ada")
	if !strings.Contains(out, "Active user is now Ada") {
		t.Fatalf("first user should become active, got %q", out)
	}
	mustRun(t, path, "target", "set",
		"--ratio", "3", "--calories", "1500",
		"--fat", "140", "--protein", "35", "--carbs", "12",
		"--meals", "2", "--snacks", "1",
		"--effective", "2026-01-01",
		"--meal-calories", "600",
	)
	out = mustRun(t, path, "target", "current")
	if !strings.Contains(out, "Per Meal: 600 kcal") {
		t.Fatalf("expected meal breakdown, got %q", out)
	}

	mustRun(t, path, "ingredient", "add", "--name", "Cream", "--type", "dairy",
		"--fat", "36", "--carbs", "3", "--protein", "2", "--calories", "340")
	mustRun(t, path, "recipe", "add", "--name", "Custard", "--meal-type", "breakfast",
		"--line", "Cream=50", "--line", "Group 1 Vegetables=20")
	out = mustRun(t, path, "recipe", "show", "Custard")
	if !strings.Contains(out, "Group 1 Vegetables") {
		t.Fatalf("expected recipe lines, got %q", out)
	}

	mustRun(t, path, "plan", "set", "2026-03-01", "Breakfast", "Custard", "--notes", "no salt")
	mustRun(t, path, "plan", "set", "2026-03-01", "Lunch", "custom", "--text", "Leftovers")
	mustRun(t, path, "plan", "extra", "2026-03-01", "--kind", "snack")

	out = mustRun(t, path, "plan", "show", "--start", "2026-03-01", "--days", "1", "--json")
	f, err := service.ReadForm(strings.NewReader(out))
	if err != nil {
		t.Fatalf("read planner form: %v", err)
	}
	if len(f.Slots) != 4 {
		t.Fatalf("expected 4 slots with the extra snack, got %+v", f.Slots)
	}
	if f.Slots[0].Recipe != "Custard" || f.Slots[0].Notes != "no salt" {
		t.Fatalf("unexpected breakfast row %+v", f.Slots[0])
	}
	if f.Slots[1].Selection != "custom" || f.Slots[1].Text != "Leftovers" {
		t.Fatalf("unexpected lunch row %+v", f.Slots[1])
	}
	if f.Slots[3].Slot != "Extra Snack 1" {
		t.Fatalf("expected extra snack last, got %+v", f.Slots[3])
	}

	out = mustRun(t, path, "shopping", "--start", "2026-03-01", "--days", "1")
	if !strings.Contains(out, "Cream\t50.0\tg") {
		t.Fatalf("expected cream on the shopping list, got %q", out)
	}
	if !strings.Contains(out, "Group 1 Vegetables\t20.0\tg\tno salt") {
		t.Fatalf("expected unmeasured note on the shopping list, got %q", out)
	}

	// Saving the shown form back unchanged keeps every slot.
	out = mustRun(t, path, "plan", "show", "--start", "2026-03-01", "--days", "1", "--json")
	if _, err := runCLI(t, path, out, "plan", "save", "--file", "-"); err != nil {
		t.Fatalf("plan save: %v", err)
	}
	out = mustRun(t, path, "plan", "show", "--start", "2026-03-01", "--days", "1")
	if !strings.Contains(out, "Leftovers") || !strings.Contains(out, "Custard") {
		t.Fatalf("expected planner rows after save, got %q", out)
	}

	mustRun(t, path, "log", "set", "2026-03-01", "Breakfast", "Custard", "--percent", "50")
	out = mustRun(t, path, "log", "show", "--start", "2026-03-01", "--days", "1")
	if !strings.Contains(out, "Custard") || !strings.Contains(out, "\t50\t") {
		t.Fatalf("expected half-eaten custard in log, got %q", out)
	}

	out, err = runCLI(t, path, `[{"date":"2026-03-01","time":"08:00","ketone":1.5}]`, "ketone", "sync", "--file", "-")
	if err != nil {
		t.Fatalf("ketone sync: %v", err)
	}
	if !strings.Contains(out, "inserted 1") {
		t.Fatalf("unexpected sync output %q", out)
	}
	out = mustRun(t, path, "ketone", "list")
	if !strings.Contains(out, "2026-03-01\t08:00\t1.5") {
		t.Fatalf("expected reading in list, got %q", out)
	}
}

func TestPlanSaveRejectsLogForm(t *testing.T) {
	path := isolateEnv(t)
	mustRun(t, path, "user", "add", "Ada")
	form := `{"book":"log","start":"2026-03-01","days":1,"slots":[]}`
	if _, err := runCLI(t, path, form, "plan", "save", "--file", "-"); err == nil {
		t.Fatalf("expected plan save to reject a log form")
	}
}

func TestKetoneSyncRejectsBadTime(t *testing.T) {
	path := isolateEnv(t)
	mustRun(t, path, "user", "add", "Ada")
	_, err := runCLI(t, path, `[{"date":"2026-03-01","time":"8am","ketone":1.5}]`, "ketone", "sync", "--file", "-")
	if !errors.Is(err, apperr.ErrInvalidTimeFormat) {
		t.Fatalf("expected invalid time error, got %v", err)
	}
}

func TestConfigShowHonorsEnv(t *testing.T) {
	path := isolateEnv(t)
	t.Setenv("KETO_WINDOW_DAYS", "7")
	out := mustRun(t, path, "config", "show")
	if !strings.Contains(out, "window_days\t7") {
		t.Fatalf("expected env window, got %q", out)
	}
	if !strings.Contains(out, "db_path\t"+path) {
		t.Fatalf("expected --db path, got %q", out)
	}
}

func TestBackupCreateListRestore(t *testing.T) {
	path := isolateEnv(t)
	mustRun(t, path, "user", "add", "Ada")
	out := filepath.Join(t.TempDir(), "snap.db")
	mustRun(t, path, "backup", "create", "--out", out)

	listed := mustRun(t, path, "backup", "list", "--dir", filepath.Dir(out))
	if !strings.Contains(listed, "snap.db") {
		t.Fatalf("expected backup in list, got %q", listed)
	}
	if _, err := runCLI(t, path, "", "backup", "restore", out); err == nil {
		t.Fatalf("expected restore over an existing db to need --force")
	}
	mustRun(t, path, "backup", "restore", out, "--force")
	users := mustRun(t, path, "user", "list")
	if !strings.Contains(users, "Ada") {
		t.Fatalf("expected restored user, got %q", users)
	}
}

func TestKetoneSyncRejectsNegativeLevel(t *testing.T) {
	path := isolateEnv(t)
	mustRun(t, path, "user", "add", "Ada")
	_, err := runCLI(t, path, `[{"date":"2026-03-01","time":"08:00","ketone":-0.4}]`, "ketone", "sync", "--file", "-")
	if !errors.Is(err, apperr.ErrInvalidReading) {
		t.Fatalf("expected invalid reading error, got %v", err)
	}
}
