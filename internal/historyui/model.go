// Package historyui provides the Bubble Tea history browser.
package historyui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"tenaday/internal/history"
	"tenaday/internal/model"
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	noteStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	noteTsStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	emptyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C")).Italic(true)
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	panelStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4A4A4A")).
			Padding(0, 1)
)

// Model implements the Bubble Tea history browser.
type Model struct {
	records []model.DayRecord
	target  int
	streak  int

	visible []model.DayRecord
	dayList table.Model
	notes   viewport.Model

	filterMode  bool
	filterInput textinput.Model
	query       string

	width  int
	height int
}

// NewModel constructs a history browser over date-ascending day records.
func NewModel(records []model.DayRecord, streak, target int) *Model {
	input := textinput.New()
	input.Placeholder = "filter notes"
	input.Prompt = "/ "

	m := &Model{
		records:     records,
		target:      target,
		streak:      streak,
		notes:       viewport.New(0, 0),
		filterInput: input,
	}
	m.initTable()
	m.applyFilter("")
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderNotes()
		return m, nil
	case tea.KeyMsg:
		if m.filterMode {
			return m.updateFilter(msg)
		}
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		case "/":
			m.filterMode = true
			m.filterInput.SetValue(m.query)
			m.filterInput.Focus()
			return m, textinput.Blink
		case "g", "home":
			m.dayList.GotoTop()
		case "G", "end":
			m.dayList.GotoBottom()
		default:
			var cmd tea.Cmd
			m.dayList, cmd = m.dayList.Update(msg)
			m.renderNotes()
			return m, cmd
		}
		m.renderNotes()
		return m, nil
	default:
		return m, nil
	}
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filterMode = false
		m.filterInput.Blur()
		m.applyFilter("")
		return m, nil
	case tea.KeyEnter:
		m.filterMode = false
		m.filterInput.Blur()
		m.applyFilter(m.filterInput.Value())
		return m, nil
	default:
		var cmd tea.Cmd
		m.filterInput, cmd = m.filterInput.Update(msg)
		return m, cmd
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	header := headerStyle.Render(fmt.Sprintf("History · %d days · streak %d", len(m.records), m.streak))
	if m.query != "" {
		header += headerStyle.Render(fmt.Sprintf(" · filter %q", m.query))
	}
	left := panelStyle.Render(m.dayList.View())
	right := panelStyle.Render(m.notes.View())
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, right)
	footer := m.renderFooter()
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) renderFooter() string {
	if m.filterMode {
		return m.filterInput.View()
	}
	return footerStyle.Render("↑/↓ select day · / filter notes · q quit")
}

func (m *Model) initTable() {
	columns := []table.Column{
		{Title: "Date", Width: 10},
		{Title: "Day", Width: 3},
		{Title: "Count", Width: 7},
		{Title: "Notes", Width: 5},
	}
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		BorderBottom(true).
		Bold(false)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("#F0F0F0")).
		Background(lipgloss.Color("#C89A3A")).
		Bold(false)
	m.dayList = table.New(table.WithColumns(columns), table.WithFocused(true))
	m.dayList.SetStyles(styles)
}

// applyFilter restricts the day list to days with a note matching query.
func (m *Model) applyFilter(query string) {
	m.query = strings.TrimSpace(query)
	if m.query == "" {
		m.visible = m.records
	} else {
		matched := map[string]struct{}{}
		for _, match := range history.SearchNotes(m.records, m.query) {
			matched[match.Date] = struct{}{}
		}
		m.visible = nil
		for _, rec := range m.records {
			if _, ok := matched[rec.Date]; ok {
				m.visible = append(m.visible, rec)
			}
		}
	}

	report := history.BuildReport(m.visible, m.streak, m.target)
	rows := make([]table.Row, 0, len(report.Rows))
	for i := len(report.Rows) - 1; i >= 0; i-- {
		row := report.Rows[i]
		mark := ""
		if row.Completed {
			mark = " ✓"
		}
		rows = append(rows, table.Row{
			row.Date,
			row.Weekday,
			fmt.Sprintf("%d/%d%s", row.Count, m.target, mark),
			fmt.Sprintf("%d", row.NoteCount),
		})
	}
	m.dayList.SetRows(rows)
	m.dayList.GotoTop()
	m.renderNotes()
}

// renderNotes fills the right panel with the selected day's notes.
func (m *Model) renderNotes() {
	selected := m.dayList.SelectedRow()
	if len(selected) == 0 {
		m.notes.SetContent(emptyStyle.Render("no days recorded"))
		return
	}
	date := selected[0]
	var rec model.DayRecord
	for _, candidate := range m.visible {
		if candidate.Date == date {
			rec = candidate
			break
		}
	}

	width := m.notes.Width
	if width <= 0 {
		width = 40
	}
	var lines []string
	for _, note := range rec.Notes {
		if m.query != "" && !strings.Contains(strings.ToLower(note.Text), strings.ToLower(m.query)) {
			continue
		}
		lines = append(lines, noteTsStyle.Render("["+note.Timestamp+"]"))
		lines = append(lines, noteStyle.Render(wrapText(note.Text, width)))
	}
	if len(lines) == 0 {
		m.notes.SetContent(emptyStyle.Render("no notes for " + date))
		return
	}
	m.notes.SetContent(strings.Join(lines, "\n"))
}

func (m *Model) updateLayout() {
	listWidth := 32
	notesWidth := m.width - listWidth - 8
	if notesWidth < 20 {
		notesWidth = 20
	}
	bodyHeight := m.height - 4
	if bodyHeight < 4 {
		bodyHeight = 4
	}
	m.dayList.SetHeight(bodyHeight)
	m.notes.Width = notesWidth
	m.notes.Height = bodyHeight
	m.filterInput.Width = m.width - 4
}
