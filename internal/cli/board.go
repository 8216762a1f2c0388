package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/inovacc/fleetroster/internal/fleet"
	"github.com/inovacc/fleetroster/internal/model"
)

const boardColumns = 10

var (
	boardTitleStyle = lipgloss.NewStyle().Bold(true).MarginLeft(2)
	cellStyle       = lipgloss.NewStyle().Width(5).Align(lipgloss.Center)
	freeStyle       = cellStyle.Foreground(lipgloss.Color("252"))
	repairStyle     = cellStyle.Foreground(lipgloss.Color("231")).Background(lipgloss.Color("160"))
	assignedStyle   = cellStyle.Foreground(lipgloss.Color("231")).Background(lipgloss.Color("25"))
	pendingStyle    = cellStyle.Foreground(lipgloss.Color("0")).Background(lipgloss.Color("220"))
	statusStyle     = lipgloss.NewStyle().MarginLeft(2).Foreground(lipgloss.Color("240"))
	errorStyle      = lipgloss.NewStyle().MarginLeft(2).Foreground(lipgloss.Color("196"))
)

type boardKeyMap struct {
	Up        key.Binding
	Down      key.Binding
	Left      key.Binding
	Right     key.Binding
	NextGroup key.Binding
	PrevGroup key.Binding
	Toggle    key.Binding
	Apply     key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func (k boardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Apply, k.NextGroup, k.Help, k.Quit}
}

func (k boardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.NextGroup, k.PrevGroup},
		{k.Toggle, k.Apply},
		{k.Help, k.Quit},
	}
}

var boardKeys = boardKeyMap{
	Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Left:      key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left")),
	Right:     key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right")),
	NextGroup: key.NewBinding(key.WithKeys("tab", "]"), key.WithHelp("tab", "next block")),
	PrevGroup: key.NewBinding(key.WithKeys("shift+tab", "["), key.WithHelp("shift+tab", "previous block")),
	Toggle:    key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space", "mark unit")),
	Apply:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "apply")),
	Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more")),
	Quit:      key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
}

// appliedMsg reports the outcome of applying the marked units.
type appliedMsg struct {
	reported int
	repaired int
	err      error
}

// BoardModel is the workshop board: a grid of the fleet, one block of a
// hundred units at a time, where units are marked and then sent to or
// returned from the workshop.
type BoardModel struct {
	ctx     context.Context
	session *fleet.Session

	groups  []fleet.UnitGroup
	group   int
	cursor  int
	pending map[int]bool

	keys   boardKeyMap
	help   help.Model
	status string
	err    error

	quitting bool
}

// NewBoard builds a board over the session's pool.
func NewBoard(ctx context.Context, session *fleet.Session) BoardModel {
	return BoardModel{
		ctx:     ctx,
		session: session,
		groups:  fleet.GroupByHundred(session.Ledger.Pool().Units()),
		pending: make(map[int]bool),
		keys:    boardKeys,
		help:    help.New(),
	}
}

func (m BoardModel) Init() tea.Cmd {
	return nil
}

func (m BoardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width

		return m, nil

	case appliedMsg:
		m.err = msg.err
		if msg.err == nil {
			m.pending = make(map[int]bool)
			m.status = fmt.Sprintf("%d reported, %d returned to service", msg.reported, msg.repaired)
		}

		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true

			return m, tea.Quit

		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll

		case key.Matches(msg, m.keys.Up):
			m.move(-boardColumns)

		case key.Matches(msg, m.keys.Down):
			m.move(boardColumns)

		case key.Matches(msg, m.keys.Left):
			m.move(-1)

		case key.Matches(msg, m.keys.Right):
			m.move(1)

		case key.Matches(msg, m.keys.NextGroup):
			m.switchGroup(1)

		case key.Matches(msg, m.keys.PrevGroup):
			m.switchGroup(-1)

		case key.Matches(msg, m.keys.Toggle):
			if u, ok := m.Selected(); ok {
				if m.pending[u] {
					delete(m.pending, u)
				} else {
					m.pending[u] = true
				}
			}

		case key.Matches(msg, m.keys.Apply):
			if len(m.pending) == 0 {
				m.status = "no units marked"
				return m, nil
			}

			return m, m.apply(m.Pending())
		}
	}

	return m, nil
}

func (m *BoardModel) move(delta int) {
	if len(m.groups) == 0 {
		return
	}

	next := m.cursor + delta
	if next < 0 || next >= len(m.groups[m.group].Units) {
		return
	}

	m.cursor = next
}

func (m *BoardModel) switchGroup(delta int) {
	if len(m.groups) == 0 {
		return
	}

	m.group = (m.group + delta + len(m.groups)) % len(m.groups)
	m.cursor = min(m.cursor, len(m.groups[m.group].Units)-1)
}

// apply sends marked free or assigned units to the workshop and returns
// marked units already there to service.
func (m BoardModel) apply(units []int) tea.Cmd {
	ctx, session := m.ctx, m.session

	return func() tea.Msg {
		var report, repair []int

		for _, u := range units {
			if session.Repairs.Contains(u) {
				repair = append(repair, u)
			} else {
				report = append(report, u)
			}
		}

		var out appliedMsg

		if len(report) > 0 {
			n, err := session.ReportUnits(ctx, report...)
			out.reported = n

			if err != nil {
				out.err = err
				return out
			}
		}

		if len(repair) > 0 {
			n, err := session.RepairUnits(ctx, repair...)
			out.repaired = n
			out.err = err
		}

		return out
	}
}

// Selected returns the unit under the cursor.
func (m BoardModel) Selected() (int, bool) {
	if len(m.groups) == 0 {
		return 0, false
	}

	return m.groups[m.group].Units[m.cursor], true
}

// Pending returns the marked units in ascending order.
func (m BoardModel) Pending() []int {
	out := make([]int, 0, len(m.pending))
	for u := range m.pending {
		out = append(out, u)
	}

	slices.Sort(out)

	return out
}

func (m BoardModel) View() string {
	if m.quitting {
		return ""
	}

	if len(m.groups) == 0 {
		return errorStyle.Render("No units configured. Add a range first.") + "\n"
	}

	var b strings.Builder

	g := m.groups[m.group]
	c := m.session.Ledger.Counts()

	b.WriteString(boardTitleStyle.Render(fmt.Sprintf("Workshop board %s  units %s  (%d/%d)",
		model.DateKey(m.session.Date), g.Label, m.group+1, len(m.groups))))
	b.WriteString("\n\n")

	for row := 0; row*boardColumns < len(g.Units); row++ {
		end := min((row+1)*boardColumns, len(g.Units))

		cells := make([]string, 0, boardColumns)
		for i := row * boardColumns; i < end; i++ {
			cells = append(cells, m.renderCell(g.Units[i], i == m.cursor))
		}

		b.WriteString("  " + lipgloss.JoinHorizontal(lipgloss.Top, cells...) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(statusStyle.Render(fmt.Sprintf("total %d  in repair %d  assigned %d  free %d  marked %d",
		c.Total, c.InRepair, c.Assigned, c.Free, len(m.pending))))
	b.WriteString("\n")

	switch {
	case m.err != nil:
		b.WriteString(errorStyle.Render("Error: "+m.err.Error()) + "\n")
	case m.status != "":
		b.WriteString(statusStyle.Render(m.status) + "\n")
	}

	b.WriteString("\n  " + m.help.View(m.keys) + "\n")

	return b.String()
}

func (m BoardModel) renderCell(unit int, selected bool) string {
	style := freeStyle

	switch {
	case m.pending[unit]:
		style = pendingStyle
	case m.session.Ledger.State(unit) == fleet.UnitInRepair:
		style = repairStyle
	case m.session.Ledger.State(unit) == fleet.UnitAssigned:
		style = assignedStyle
	}

	label := fmt.Sprintf("%02d", unit)
	if selected {
		label = "[" + label + "]"
		style = style.Bold(true)
	}

	return style.Render(label)
}
