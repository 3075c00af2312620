// Package main provides the CLI entrypoint for tenaday.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"tenaday/internal/clock"
	"tenaday/internal/config"
	"tenaday/internal/history"
	"tenaday/internal/historyui"
	"tenaday/internal/storage"
	"tenaday/internal/tracker"
	"tenaday/internal/tui"
)

const (
	defaultDeadline = "20:00"
	defaultTarget   = 10
)

var (
	flagDeadline string
	flagTarget   int
	flagDB       string

	historyTUI bool
	exportOut  string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tenaday",
		Short:         "Ten approaches a day or the streak resets",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runTrackCmd,
	}

	rootCmd.PersistentFlags().StringVar(&flagDeadline, "deadline", defaultDeadline, "daily deadline (HH:MM, local time)")
	rootCmd.PersistentFlags().IntVar(&flagTarget, "target", defaultTarget, "approaches per day")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "path to the database (default: XDG data dir)")

	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newLogCmd())
	rootCmd.AddCommand(newNoteCmd())
	rootCmd.AddCommand(newResetCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newNotesCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// openTracker resolves configuration, opens the store and loads the tracker.
// The caller must close the returned store.
func openTracker(cmd *cobra.Command, now time.Time) (*tracker.Tracker, *storage.Store, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "deadline", &flagDeadline, fileCfg.Tracker.Deadline)
	applyIntConfig(cmd, "target", &flagTarget, fileCfg.Tracker.Target)
	applyStringConfig(cmd, "db", &flagDB, fileCfg.Tracker.DB)

	clk, err := clock.ParseDeadline(flagDeadline)
	if err != nil {
		return nil, nil, err
	}
	if flagTarget <= 0 {
		return nil, nil, fmt.Errorf("--target must be > 0")
	}

	dbPath := flagDB
	if dbPath == "" {
		dbPath = config.DefaultDBPath()
	}
	st, err := storage.Open(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open db: %w", err)
	}

	tr := tracker.New(st, clk, flagTarget)
	if err := tr.Load(context.Background(), now); err != nil {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
		return nil, nil, fmt.Errorf("failed to load state: %w", err)
	}
	return tr, st, nil
}

func closeStore(st *storage.Store) {
	if cerr := st.Close(); cerr != nil {
		logErrf("failed to close db: %v\n", cerr)
	}
}

func runTrackCmd(cmd *cobra.Command, _ []string) error {
	tr, st, err := openTracker(cmd, time.Now())
	if err != nil {
		return err
	}
	defer closeStore(st)

	model := tui.NewModel(tr)
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print today's count, streak and countdown",
		Args:  cobra.NoArgs,
		RunE:  runStatusCmd,
	}
}

func runStatusCmd(cmd *cobra.Command, _ []string) error {
	now := time.Now()
	tr, st, err := openTracker(cmd, now)
	if err != nil {
		return err
	}
	defer closeStore(st)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Today:   %d/%d %s\n", tr.Count(now), tr.Target(), history.CountBar(tr.Count(now), tr.Target()))
	fmt.Fprintf(out, "Streak:  %d\n", tr.Streak())
	if tr.RolledOver(now) {
		fmt.Fprintln(out, "Deadline passed for today")
	} else {
		fmt.Fprintf(out, "Deadline in %s\n", tui.FormatCountdown(tr.Remaining(now)))
	}
	if tr.PunishmentActive() {
		fmt.Fprintln(out, "Yesterday fell short. The streak is gone.")
	}
	return nil
}

func newLogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "log",
		Short: "Record one approach",
		Args:  cobra.NoArgs,
		RunE:  runLogCmd,
	}
}

func runLogCmd(cmd *cobra.Command, _ []string) error {
	now := time.Now()
	tr, st, err := openTracker(cmd, now)
	if err != nil {
		return err
	}
	defer closeStore(st)

	if err := tr.RecordApproach(context.Background(), now); err != nil {
		if errors.Is(err, tracker.ErrDayComplete) {
			fmt.Fprintln(cmd.OutOrStdout(), "Today is already done.")
			return nil
		}
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Recorded: %d/%d", tr.Count(now), tr.Target())
	if tr.TodayComplete(now) {
		fmt.Fprintf(cmd.OutOrStdout(), " - goal reached, streak is now %d", tr.Streak())
	}
	fmt.Fprintln(cmd.OutOrStdout())
	return nil
}

func newNoteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "note <text>",
		Short: "Attach a note to today",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runNoteCmd,
	}
}

func runNoteCmd(cmd *cobra.Command, args []string) error {
	now := time.Now()
	tr, st, err := openTracker(cmd, now)
	if err != nil {
		return err
	}
	defer closeStore(st)

	note, err := tr.AddNote(context.Background(), now, strings.Join(args, " "))
	if err != nil {
		if errors.Is(err, tracker.ErrEmptyNote) {
			return fmt.Errorf("note text is empty")
		}
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Noted at %s\n", note.Timestamp)
	return nil
}

func newResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Reset today's count to zero",
		Args:  cobra.NoArgs,
		RunE:  runResetCmd,
	}
}

func runResetCmd(cmd *cobra.Command, _ []string) error {
	now := time.Now()
	tr, st, err := openTracker(cmd, now)
	if err != nil {
		return err
	}
	defer closeStore(st)

	if err := tr.ResetToday(context.Background(), now); err != nil {
		if errors.Is(err, tracker.ErrDayComplete) {
			fmt.Fprintln(cmd.OutOrStdout(), "Today is frozen, nothing to reset.")
			return nil
		}
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Count reset to zero.")
	return nil
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the day-by-day history",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().BoolVar(&historyTUI, "tui", false, "open the interactive history browser")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	now := time.Now()
	tr, st, err := openTracker(cmd, now)
	if err != nil {
		return err
	}
	defer closeStore(st)

	if historyTUI {
		model := historyui.NewModel(tr.History(), tr.Streak(), tr.Target())
		program := tea.NewProgram(model, tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("failed to run history TUI: %w", err)
		}
		return nil
	}

	report := history.BuildReport(tr.History(), tr.Streak(), tr.Target())
	fmt.Fprintln(cmd.OutOrStdout(), history.FormatTable(report))
	return nil
}

func newNotesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "notes [query]",
		Short: "List notes, optionally filtered by substring",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runNotesCmd,
	}
}

func runNotesCmd(cmd *cobra.Command, args []string) error {
	now := time.Now()
	tr, st, err := openTracker(cmd, now)
	if err != nil {
		return err
	}
	defer closeStore(st)

	query := ""
	if len(args) == 1 {
		query = args[0]
	}
	matches := history.SearchNotes(tr.History(), query)
	if len(matches) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No notes found.")
		return nil
	}

	width := 80
	if fd := int(os.Stdout.Fd()); term.IsTerminal(fd) {
		if w, _, err := term.GetSize(fd); err == nil && w > 20 {
			width = w
		}
	}
	for _, match := range matches {
		prefix := fmt.Sprintf("%s %s  ", match.Date, match.Note.Timestamp)
		text := history.Truncate(match.Note.Text, width-len(prefix))
		fmt.Fprintf(cmd.OutOrStdout(), "%s%s\n", prefix, text)
	}
	return nil
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the full history as plain text",
		Args:  cobra.NoArgs,
		RunE:  runExportCmd,
	}
	cmd.Flags().StringVar(&exportOut, "out", "", "write to file instead of stdout")
	return cmd
}

func runExportCmd(cmd *cobra.Command, _ []string) error {
	now := time.Now()
	tr, st, err := openTracker(cmd, now)
	if err != nil {
		return err
	}
	defer closeStore(st)

	text := history.ExportText(tr.History(), tr.Streak(), tr.Target())
	if exportOut == "" {
		fmt.Fprint(cmd.OutOrStdout(), text)
		return nil
	}
	if err := os.WriteFile(exportOut, []byte(text), 0o644); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", exportOut)
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# tenaday configuration
# Uncomment a value to enable it. CLI flags override config values.

[tracker]
# deadline = %q   # Daily deadline (HH:MM, local time)
# target = %d        # Approaches per day
# db = ""            # Database path (default: XDG data dir)
`,
		defaultDeadline,
		defaultTarget,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
