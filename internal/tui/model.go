// Package tui provides the Bubble Tea tracking interface.
package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"tenaday/internal/model"
	"tenaday/internal/tracker"
)

const statusTTL = 3 * time.Second

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F0F0F0"))
	streakStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#C89A3A")).
			Bold(true)
	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0"))
	doneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575")).
			Bold(true)
	punishStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF4D4F")).
			Bold(true).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#FF4D4F")).
			Padding(0, 1)
	countdownStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8C8C8C"))
	urgentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF4D4F"))
	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#C89A3A"))
	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6E6E6E"))
)

type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Model implements the Bubble Tea tracking UI.
type Model struct {
	tracker *tracker.Tracker

	width  int
	height int

	countdown model.Countdown
	bar       progress.Model

	noteMode  bool
	noteInput textinput.Model

	status   string
	statusAt time.Time
}

// NewModel constructs a tracking TUI model.
func NewModel(tr *tracker.Tracker) *Model {
	input := textinput.New()
	input.Placeholder = "note for today"
	input.CharLimit = 280
	input.Prompt = "> "

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 30

	return &Model{
		tracker:   tr,
		bar:       bar,
		noteInput: input,
		countdown: tr.Remaining(time.Now()),
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tickCmd()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		width := msg.Width / 2
		if width < 10 {
			width = 10
		}
		if width > 40 {
			width = 40
		}
		m.bar.Width = width
		m.noteInput.Width = msg.Width - 4
		return m, nil
	case tickMsg:
		now := time.Time(msg)
		countdown, rolled, err := m.tracker.Tick(context.Background(), now)
		if err != nil {
			logErrf("failed to handle tick: %v\n", err)
		}
		m.countdown = countdown
		if rolled {
			if m.tracker.PunishmentActive() {
				m.setStatus(now, "deadline passed short of the goal, streak reset")
			} else {
				m.setStatus(now, "day complete, see you tomorrow")
			}
		}
		if m.status != "" && now.Sub(m.statusAt) > statusTTL {
			m.status = ""
		}
		return m, tickCmd()
	case tea.KeyMsg:
		if m.noteMode {
			return m.updateNoteInput(msg)
		}
		return m.updateKeys(msg)
	default:
		return m, nil
	}
}

func (m *Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	now := time.Now()
	switch msg.String() {
	case "ctrl+c", "q", "esc":
		return m, tea.Quit
	case "a", " ":
		err := m.tracker.RecordApproach(context.Background(), now)
		switch {
		case errors.Is(err, tracker.ErrDayComplete):
			m.setStatus(now, "today is already done")
		case err != nil:
			logErrf("failed to record approach: %v\n", err)
		case m.tracker.TodayComplete(now):
			m.setStatus(now, fmt.Sprintf("goal reached, streak is now %d", m.tracker.Streak()))
		}
		return m, nil
	case "n":
		m.noteMode = true
		m.noteInput.Reset()
		m.noteInput.Focus()
		return m, textinput.Blink
	case "r":
		err := m.tracker.ResetToday(context.Background(), now)
		switch {
		case errors.Is(err, tracker.ErrDayComplete):
			m.setStatus(now, "today is frozen, nothing to reset")
		case err != nil:
			logErrf("failed to reset today: %v\n", err)
		default:
			m.setStatus(now, "count reset to zero")
		}
		return m, nil
	default:
		return m, nil
	}
}

func (m *Model) updateNoteInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	now := time.Now()
	switch msg.Type {
	case tea.KeyEsc:
		m.noteMode = false
		m.noteInput.Blur()
		return m, nil
	case tea.KeyEnter:
		_, err := m.tracker.AddNote(context.Background(), now, m.noteInput.Value())
		switch {
		case errors.Is(err, tracker.ErrEmptyNote):
			m.setStatus(now, "note text is empty")
		case err != nil:
			logErrf("failed to add note: %v\n", err)
		default:
			m.setStatus(now, "note saved")
		}
		m.noteMode = false
		m.noteInput.Blur()
		return m, nil
	default:
		var cmd tea.Cmd
		m.noteInput, cmd = m.noteInput.Update(msg)
		return m, cmd
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	now := time.Now()
	count := m.tracker.Count(now)
	target := m.tracker.Target()

	lines := []string{
		titleStyle.Render("tenaday"),
		"",
		streakStyle.Render(fmt.Sprintf("Streak: %d", m.tracker.Streak())),
	}
	if m.tracker.PunishmentActive() {
		lines = append(lines, punishStyle.Render("Yesterday fell short. The streak is gone."))
	}

	countLine := countStyle.Render(fmt.Sprintf("Today: %d/%d", count, target))
	if m.tracker.TodayComplete(now) {
		countLine += doneStyle.Render("  done")
	}
	lines = append(lines,
		"",
		countLine,
		m.bar.ViewAs(float64(count)/float64(target)),
		"",
		m.renderCountdown(now),
	)

	if m.noteMode {
		lines = append(lines, "", m.noteInput.View())
	} else if m.status != "" {
		lines = append(lines, "", statusStyle.Render(m.status))
	}

	lines = append(lines, "", footerStyle.Render("a approach · n note · r reset · q quit"))
	content := strings.Join(lines, "\n")
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m *Model) renderCountdown(now time.Time) string {
	if m.tracker.RolledOver(now) {
		return countdownStyle.Render("Deadline passed for today")
	}
	text := fmt.Sprintf("Deadline in %s", FormatCountdown(m.countdown))
	if m.countdown.Total > 0 && m.countdown.Total < time.Hour && !m.tracker.TodayComplete(now) {
		return urgentStyle.Render(text)
	}
	return countdownStyle.Render(text)
}

// FormatCountdown renders a countdown as HH:MM:SS.
func FormatCountdown(c model.Countdown) string {
	return fmt.Sprintf("%02d:%02d:%02d", c.Hours, c.Minutes, c.Seconds)
}

func (m *Model) setStatus(now time.Time, text string) {
	m.status = text
	m.statusAt = now
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
