package keto

import (
	"database/sql"
	"fmt"
	"io"
	"strings"

	"github.com/saadjs/keto-cli/internal/model"
	"github.com/saadjs/keto-cli/internal/plan"
	"github.com/saadjs/keto-cli/internal/service"
	"github.com/spf13/cobra"
)

// The planner and the log share their show/save/set/extra commands; only
// the rendering differs.

type bookWindow struct {
	start string
	days  int
}

func (w *bookWindow) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&w.start, "start", "", "First date of the window in YYYY-MM-DD (default today)")
	cmd.Flags().IntVar(&w.days, "days", 0, "Window length in days (default from config)")
}

func (w *bookWindow) resolve() (string, int, error) {
	days, err := windowDays(w.days)
	if err != nil {
		return "", 0, err
	}
	return w.start, days, nil
}

func loadBookForm(sqldb *sql.DB, book service.Book, userID int64, start string, days int) (*service.Form, error) {
	switch book {
	case service.LogBook:
		v, err := service.LoadLog(sqldb, userID, start, days)
		if err != nil {
			return nil, err
		}
		return v.Form(), nil
	default:
		v, err := service.LoadPlanner(sqldb, userID, start, days)
		if err != nil {
			return nil, err
		}
		return v.Form(), nil
	}
}

func saveBookForm(sqldb *sql.DB, userID int64, f *service.Form) error {
	switch f.Book {
	case service.LogBook:
		_, err := service.SaveLogForm(sqldb, userID, f)
		return err
	default:
		_, err := service.SavePlannerForm(sqldb, userID, f)
		return err
	}
}

func newBookShowCmd(book service.Book, render func(io.Writer, *sql.DB, int64, string, int) error) *cobra.Command {
	var (
		win    bookWindow
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "show",
		Short: fmt.Sprintf("Show the %s window", book),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, days, err := win.resolve()
			if err != nil {
				return err
			}
			return withUser(func(sqldb *sql.DB, u *model.User) error {
				if !asJSON {
					return render(cmd.OutOrStdout(), sqldb, u.ID, start, days)
				}
				f, err := loadBookForm(sqldb, book, u.ID, start, days)
				if err != nil {
					return err
				}
				return service.WriteForm(cmd.OutOrStdout(), f)
			})
		},
	}
	win.bind(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the editable JSON form")
	return cmd
}

func newBookSaveCmd(book service.Book) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "save",
		Short: fmt.Sprintf("Save an edited %s form", book),
		Long: fmt.Sprintf(`Save reads a form printed by "%s show --json" and reconciles it with the
stored entries. Slots missing from the form are reset to unset.`, bookCommand(book)),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := openInput(cmd, file)
			if err != nil {
				return err
			}
			defer in.Close()
			f, err := service.ReadForm(in)
			if err != nil {
				return err
			}
			if f.Book != book {
				return fmt.Errorf("form is for the %s; use `keto %s save`", f.Book, bookCommand(f.Book))
			}
			return withUser(func(sqldb *sql.DB, u *model.User) error {
				if err := saveBookForm(sqldb, u.ID, f); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved %d slot(s) starting %s\n", len(f.Slots), f.Start)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Form file (- for stdin)")
	return cmd
}

func newBookSetCmd(book service.Book) *cobra.Command {
	var (
		text    string
		notes   string
		percent float64
	)
	cmd := &cobra.Command{
		Use:   "set <date> <slot> <recipe-id|custom|unset>",
		Short: fmt.Sprintf("Set one %s slot", book),
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, label, selection := args[0], args[1], args[2]
			return withUser(func(sqldb *sql.DB, u *model.User) error {
				f, err := loadBookForm(sqldb, book, u.ID, date, 1)
				if err != nil {
					return err
				}
				row := findFormSlot(f, date, label)
				if row == nil {
					return fmt.Errorf("no slot %q on %s", label, date)
				}
				selection, err = resolveSelection(sqldb, u.ID, selection)
				if err != nil {
					return err
				}
				row.Selection = selection
				if cmd.Flags().Changed("text") {
					row.Text = text
				}
				if cmd.Flags().Changed("notes") {
					row.Notes = notes
				}
				if cmd.Flags().Changed("percent") {
					row.PercentEaten = &percent
				}
				if err := saveBookForm(sqldb, u.ID, f); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Set %s %s to %s\n", date, row.Slot, row.Selection)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&text, "text", "", "Free text for a custom selection")
	cmd.Flags().StringVar(&notes, "notes", "", "Slot notes")
	if book == service.LogBook {
		cmd.Flags().Float64Var(&percent, "percent", plan.DefaultPercentEaten, "Percentage of the recipe eaten")
	}
	return cmd
}

func newBookExtraCmd(book service.Book) *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "extra <date>",
		Short: fmt.Sprintf("Add an extra meal or snack slot to the %s", book),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := plan.ParseExtraKind(kind)
			if err != nil {
				return err
			}
			return withUser(func(sqldb *sql.DB, u *model.User) error {
				label, err := service.AddExtraSlot(sqldb, book, u.ID, args[0], k)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s on %s\n", label, args[0])
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&kind, "kind", string(plan.ExtraMeal), "Extra slot kind: meal or snack")
	return cmd
}

// resolveSelection accepts a recipe name wherever a selector is expected.
func resolveSelection(sqldb *sql.DB, userID int64, raw string) (string, error) {
	if _, err := plan.ParseSelector(raw); err == nil {
		return raw, nil
	}
	r, err := service.ResolveRecipe(sqldb, userID, raw)
	if err != nil {
		return "", err
	}
	return fmt.Sprint(r.ID), nil
}

func findFormSlot(f *service.Form, date, label string) *service.FormSlot {
	for i := range f.Slots {
		row := &f.Slots[i]
		if row.Date == date && strings.EqualFold(row.Slot, strings.TrimSpace(label)) {
			return row
		}
	}
	return nil
}

func bookCommand(book service.Book) string {
	if book == service.LogBook {
		return "log"
	}
	return "plan"
}

// slotSummary renders what a slot holds for the text views.
func slotSummary(row service.FormSlot) string {
	switch {
	case row.Recipe != "":
		return row.Recipe
	case row.Text != "":
		return row.Text
	case row.Selection == "unset":
		return "-"
	default:
		return row.Selection
	}
}
