package main

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/wippyai/tinyptr/errors"
	"github.com/wippyai/tinyptr/table"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	occupiedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	freeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	statsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

const (
	historyLimit = 12
	slotsPerRow  = 32
	slotLimit    = 512
)

type historyEntry struct {
	command string
	output  string
	failed  bool
}

type interactiveModel struct {
	session *session
	input   textinput.Model
	history []historyEntry
}

func newInteractiveModel(s *session) *interactiveModel {
	ti := textinput.New()
	ti.Placeholder = "alloc 42"
	ti.Prompt = "> "
	ti.Focus()

	return &interactiveModel{
		session: s,
		input:   ti,
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "enter":
			line := strings.TrimSpace(m.input.Value())
			m.input.SetValue("")
			if line == "quit" || line == "exit" {
				return m, tea.Quit
			}
			if line != "" {
				m.execute(line)
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// execute runs line against the session and records its output.
func (m *interactiveModel) execute(line string) {
	var buf bytes.Buffer
	out := m.session.out
	m.session.out = &buf
	err := m.session.Exec(line)
	m.session.out = out

	entry := historyEntry{command: line, output: strings.TrimRight(buf.String(), "\n")}
	if err != nil {
		entry.output = err.Error()
		entry.failed = true
	}

	m.history = append(m.history, entry)
	if len(m.history) > historyLimit {
		m.history = m.history[len(m.history)-historyLimit:]
	}
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("tinyptr"))
	b.WriteString("\n\n")
	b.WriteString(m.slotMap())
	b.WriteString("\n")

	st := m.session.table.Stats()
	b.WriteString(statsStyle.Render(fmt.Sprintf("capacity %d  allocated %d  free %d  resizes %d  load %.2f",
		st.Capacity, st.Allocated, st.Free, st.Resizes, st.LoadFactor)))
	b.WriteString("\n\n")

	for _, h := range m.history {
		b.WriteString("> ")
		b.WriteString(h.command)
		b.WriteString("\n")
		if h.output == "" {
			continue
		}
		if h.failed {
			b.WriteString(errorStyle.Render(h.output))
		} else {
			b.WriteString(resultStyle.Render(h.output))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("help: list commands • quit/esc: exit"))
	b.WriteString("\n")
	return b.String()
}

// slotMap draws one cell per slot, occupied or free.
func (m *interactiveModel) slotMap() string {
	t := m.session.table
	n := t.Capacity()
	if n > slotLimit {
		n = slotLimit
	}

	occupied := make([]bool, n)
	t.Each(func(h table.Handle, _ int64) bool {
		if int(h.Index()) >= n {
			return false
		}
		occupied[h.Index()] = true
		return true
	})

	var b strings.Builder
	for i := 0; i < n; i++ {
		if occupied[i] {
			b.WriteString(occupiedStyle.Render("■"))
		} else {
			b.WriteString(freeStyle.Render("□"))
		}
		if (i+1)%slotsPerRow == 0 {
			b.WriteString("\n")
		}
	}
	if n%slotsPerRow != 0 {
		b.WriteString("\n")
	}
	if t.Capacity() > n {
		b.WriteString(helpStyle.Render(fmt.Sprintf("… %d more slots", t.Capacity()-n)))
		b.WriteString("\n")
	}
	return b.String()
}

func runInteractive(s *session) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return errors.InvalidInput(errors.PhaseParse, "interactive mode requires a terminal on stdin")
	}

	p := tea.NewProgram(newInteractiveModel(s), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
