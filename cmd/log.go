package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/daylog/internal/classify"
	"github.com/Tiliavir/daylog/internal/model"
	"github.com/Tiliavir/daylog/internal/reconcile"
	"github.com/Tiliavir/daylog/internal/render"
	"github.com/Tiliavir/daylog/internal/report"
	"github.com/Tiliavir/daylog/internal/timecalc"
)

var (
	editProjects    string
	editToggle      []string
	editDefault     string
	editDescription string
	editAddFiles    []string
	editRemoveFiles []string
	editAssign      []string
	editCategory    []string
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show and edit day logs",
}

var logShowCmd = &cobra.Command{
	Use:   "show [date]",
	Short: "Show the log of a day (default today)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runLogShow,
}

var logEditCmd = &cobra.Command{
	Use:   "edit [date]",
	Short: "Edit the log of a day (default today)",
	Long: `Edit the log of a day. Changes are applied in this order: project
selection, default project, removed files, added files, file assignments,
categories, description. Nothing is saved when any change is rejected.
A day left without description, files and projects is deleted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogEdit,
}

var logDeleteCmd = &cobra.Command{
	Use:   "delete <date>",
	Short: "Delete the log of a day",
	Args:  cobra.ExactArgs(1),
	RunE:  runLogDelete,
}

var logDuplicateCmd = &cobra.Command{
	Use:   "duplicate <from> <to>",
	Short: "Copy a day's log, file assignments included, onto another date",
	Args:  cobra.ExactArgs(2),
	RunE:  runLogDuplicate,
}

func init() {
	f := logEditCmd.Flags()
	f.StringVar(&editProjects, "projects", "", "Replace the project selection (comma-separated, in order)")
	f.StringArrayVar(&editToggle, "toggle", nil, "Select or deselect a project (repeatable)")
	f.StringVar(&editDefault, "default", "", "Project new files are assigned to")
	f.StringVar(&editDescription, "description", "", "Replace the description")
	f.StringArrayVar(&editAddFiles, "add-file", nil, "Add a file (repeatable)")
	f.StringArrayVar(&editRemoveFiles, "remove-file", nil, "Remove a file (repeatable)")
	f.StringArrayVar(&editAssign, "assign", nil, "Assign a file to a project: file=project (repeatable)")
	f.StringArrayVar(&editCategory, "category", nil, "Override a file category: file=category, empty category clears (repeatable; built-in: "+categoryChoices()+")")

	logCmd.AddCommand(logShowCmd)
	logCmd.AddCommand(logEditCmd)
	logCmd.AddCommand(logDeleteCmd)
	logCmd.AddCommand(logDuplicateCmd)
}

func dayArg(args []string) string {
	s := ""
	if len(args) > 0 {
		s = args[0]
	}
	date, err := parseDay(s, time.Now())
	if err != nil {
		fail(err)
	}
	return date
}

func runLogShow(cmd *cobra.Command, args []string) error {
	e := mustEnv()
	uid := e.user().ID
	date := dayArg(args)

	l, found, err := e.logs.Get(cmd.Context(), uid, date)
	check(err)
	fmt.Println(render.DefaultStyles().Header.Render(timecalc.LongDate(date)))
	if !found {
		fmt.Println(render.EmptyDay)
		return nil
	}
	printDay(l)
	return nil
}

func runLogEdit(cmd *cobra.Command, args []string) error {
	e := mustEnv()
	uid := e.user().ID
	date := dayArg(args)

	ed, err := e.logs.Edit(cmd.Context(), uid, date)
	check(err)
	if err := applyEdits(ed, cmd); err != nil {
		fail(err)
	}
	known, err := e.logs.ProjectNames(cmd.Context())
	check(err)
	for _, p := range unknownProjects(ed.Projects(), known) {
		fmt.Fprintf(os.Stderr, "Warning: %q is not in the project list (see `daylog projects add`)\n", p)
	}
	stored, err := e.logs.Commit(cmd.Context(), uid, ed)
	check(err)
	if !stored {
		fmt.Printf("%s is empty; no entry kept.\n", ed.Date())
		return nil
	}
	fmt.Printf("Saved %s\n", ed.Date())
	printDay(ed.DayLog())
	return nil
}

// applyEdits replays the edit flags onto the draft. The first rejected
// change aborts, and the draft is then discarded unsaved.
func applyEdits(ed *reconcile.Editor, cmd *cobra.Command) error {
	flags := cmd.Flags()
	if flags.Changed("projects") {
		if err := ed.SetProjects(strings.Split(editProjects, ",")); err != nil {
			return err
		}
	}
	for _, p := range editToggle {
		if err := ed.ToggleProject(p); err != nil {
			return err
		}
	}
	if flags.Changed("default") {
		if err := ed.SetDefaultProject(strings.TrimSpace(editDefault)); err != nil {
			return err
		}
	}
	for _, f := range editRemoveFiles {
		if err := ed.RemoveFile(f); err != nil {
			return err
		}
	}
	for _, f := range editAddFiles {
		if err := ed.AddFile(f); err != nil {
			return err
		}
	}
	for _, a := range editAssign {
		file, project, err := splitPair(a)
		if err != nil {
			return err
		}
		if !model.FileList(ed.Files()).Contains(file) {
			return fmt.Errorf("%w: %q", reconcile.ErrUnknownFile, file)
		}
		if !ed.Selected(project) {
			return fmt.Errorf("project %q is not selected", project)
		}
		ed.AssignProject(file, project)
	}
	for _, c := range editCategory {
		file, category, err := splitPair(c)
		if err != nil {
			return err
		}
		if category == "" {
			ed.ClearCategory(file)
			continue
		}
		ed.AssignCategory(file, classify.Category(category))
	}
	if flags.Changed("description") {
		ed.SetDescription(editDescription)
	}
	return nil
}

// unknownProjects lists the selected projects missing from the shared list,
// in selection order.
func unknownProjects(selected, known []string) []string {
	listed := make(map[string]bool, len(known))
	for _, k := range known {
		listed[k] = true
	}
	var out []string
	for _, p := range selected {
		if !listed[p] {
			out = append(out, p)
		}
	}
	return out
}

// categoryChoices lists the built-in category keys for help text.
func categoryChoices() string {
	keys := make([]string, 0, len(classify.Known()))
	for _, c := range classify.Known() {
		keys = append(keys, string(c))
	}
	return strings.Join(keys, ", ")
}

// splitPair splits "key=value", trimming both sides. The key must not be
// empty; the value may be.
func splitPair(s string) (string, string, error) {
	k, v, ok := strings.Cut(s, "=")
	k, v = strings.TrimSpace(k), strings.TrimSpace(v)
	if !ok || k == "" {
		return "", "", fmt.Errorf("invalid pair %q, want file=value", s)
	}
	return k, v, nil
}

func runLogDelete(cmd *cobra.Command, args []string) error {
	e := mustEnv()
	uid := e.user().ID
	date := dayArg(args)
	check(e.logs.Delete(cmd.Context(), uid, date))
	fmt.Printf("Deleted %s\n", date)
	return nil
}

func runLogDuplicate(cmd *cobra.Command, args []string) error {
	e := mustEnv()
	uid := e.user().ID
	from := dayArg(args[:1])
	to := strings.TrimSpace(args[1])
	if to != "" {
		to = dayArg(args[1:])
	}
	dup, err := e.logs.Duplicate(cmd.Context(), uid, from, to)
	check(err)
	fmt.Printf("Copied %s to %s\n", from, dup.Date)
	return nil
}

// printDay prints the day card followed by the files grouped by project
// and category.
func printDay(l model.DayLog) {
	st := render.DefaultStyles()
	fmt.Println(st.DayCard(l))
	// Open synthesizes assignments for legacy logs without a map.
	groups := reconcile.Open(l.Date, l).Groups()
	if len(groups) == 0 {
		return
	}
	fmt.Println()
	for _, g := range groups {
		project := g.Project
		if project == "" {
			project = report.NoProject
		}
		fmt.Println(st.Header.Render(project))
		for _, c := range g.Categories {
			fmt.Printf("  %s: %s\n", c.Category.Name(), strings.Join(c.Files, ", "))
		}
	}
}
