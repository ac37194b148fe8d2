// Package confirm is the interactive gate between impact analysis and
// mutation. On a TTY it runs a Bubble Tea chooser; otherwise it falls back to
// a line-oriented yes/no/details prompt so piped invocations still work.
package confirm

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/viraforge/viraforge/internal/analyze"
)

const destructiveWarning = "This operation set contains destructive changes (field removal). " +
	"Removed columns and their data cannot be recovered without the snapshot."

// Gate asks the operator to proceed, abort, or inspect details.
type Gate struct {
	In  io.Reader
	Out io.Writer

	// isTerminal is swappable for tests.
	isTerminal func() bool
}

// NewGate returns a Gate bound to stdin/stderr.
func NewGate() *Gate {
	return &Gate{
		In:  os.Stdin,
		Out: os.Stderr,
		isTerminal: func() bool {
			return term.IsTerminal(int(os.Stdin.Fd()))
		},
	}
}

// Confirm shows the analysis and blocks until the operator decides. Returns
// true to proceed. Show-details loops until an explicit yes or no.
func (g *Gate) Confirm(a analyze.Analysis, destructive bool) (bool, error) {
	if g.isTerminal() {
		return g.confirmTea(a, destructive)
	}
	return g.confirmPlain(a, destructive)
}

func (g *Gate) confirmTea(a analyze.Analysis, destructive bool) (bool, error) {
	model := newModel(a, destructive)
	program := tea.NewProgram(model, tea.WithInput(g.In), tea.WithOutput(g.Out))

	final, err := program.Run()
	if err != nil {
		return false, fmt.Errorf("confirmation prompt failed: %w", err)
	}
	m, ok := final.(Model)
	if !ok {
		return false, fmt.Errorf("confirmation prompt returned unexpected model")
	}
	return m.confirmed, nil
}

func (g *Gate) confirmPlain(a analyze.Analysis, destructive bool) (bool, error) {
	fmt.Fprintln(g.Out, RenderAnalysis(a))
	if destructive {
		fmt.Fprintln(g.Out, renderWarning(destructiveWarning))
	}

	scanner := bufio.NewScanner(g.In)
	for {
		fmt.Fprint(g.Out, "\nProceed with these operations? (yes/no/details): ")
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return false, fmt.Errorf("failed to read confirmation: %w", err)
			}
			// Input closed without an answer: abort.
			return false, nil
		}

		switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
		case "yes", "y":
			return true, nil
		case "no", "n":
			return false, nil
		case "details", "d":
			fmt.Fprintln(g.Out, RenderDetails(a))
		default:
			fmt.Fprintln(g.Out, "Please answer yes, no, or details.")
		}
	}
}

type gateState int

const (
	stateChoosing gateState = iota
	stateDetails
)

var choices = []string{"Proceed", "Show details", "Abort"}

// Model is the Bubble Tea model behind the confirmation gate.
type Model struct {
	analysis    analyze.Analysis
	destructive bool

	state    gateState
	cursor   int
	viewport viewport.Model
	ready    bool

	confirmed bool
}

func newModel(a analyze.Analysis, destructive bool) Model {
	return Model{analysis: a, destructive: destructive}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.confirmed = false
			return m, tea.Quit

		case "enter":
			return m.handleEnter()

		case "esc":
			if m.state == stateDetails {
				m.state = stateChoosing
			}
			return m, nil

		case "up", "k":
			if m.state == stateChoosing && m.cursor > 0 {
				m.cursor--
			} else if m.state == stateDetails {
				m.viewport.LineUp(1)
			}
			return m, nil

		case "down", "j":
			if m.state == stateChoosing && m.cursor < len(choices)-1 {
				m.cursor++
			} else if m.state == stateDetails {
				m.viewport.LineDown(1)
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-4)
			m.viewport.SetContent(RenderDetails(m.analysis))
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 4
		}
		return m, nil
	}

	if m.state == stateDetails {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	switch m.state {
	case stateChoosing:
		switch m.cursor {
		case 0: // Proceed
			m.confirmed = true
			return m, tea.Quit
		case 1: // Show details
			if !m.ready {
				m.viewport = viewport.New(80, 20)
				m.viewport.SetContent(RenderDetails(m.analysis))
				m.ready = true
			}
			m.state = stateDetails
			return m, nil
		case 2: // Abort
			m.confirmed = false
			return m, tea.Quit
		}

	case stateDetails:
		m.state = stateChoosing
		return m, nil
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if m.state == stateDetails {
		return m.viewport.View() + "\n" + renderStatusBar("↑/↓ scroll · enter/esc back")
	}

	var b strings.Builder
	b.WriteString(RenderAnalysis(m.analysis))
	if m.destructive {
		b.WriteString(renderWarning(destructiveWarning) + "\n")
	}
	b.WriteString("\n")
	for i, choice := range choices {
		b.WriteString(renderOption(i == m.cursor, choice) + "\n")
	}
	b.WriteString(renderStatusBar("↑/↓ move · enter select · q abort"))
	return b.String()
}
