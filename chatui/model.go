// Package chatui is the terminal chat front end. It owns rendering and
// input only; each submitted line is handed to a TurnFunc and the reply
// is appended to the conversation view.
package chatui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

var _ tea.Model = Model{}

// TurnFunc runs one chat turn and returns the assistant's reply plus the
// tools that ran during the turn.
type TurnFunc func(ctx context.Context, text string) (reply string, toolsUsed []string, err error)

type entryKind int

const (
	entryUser entryKind = iota
	entryAssistant
	entryError
)

type entry struct {
	kind  entryKind
	text  string
	tools []string
}

// turnResultMsg carries a finished turn back into Update.
type turnResultMsg struct {
	reply string
	tools []string
	err   error
}

// Model is the Bubble Tea model for the sales assistant chat.
type Model struct {
	// Input is the text input component. Exported for test access.
	Input textinput.Model
	// Viewport is the scrollable conversation area. Exported for test access.
	Viewport viewport.Model

	turn    TurnFunc
	spinner spinner.Model
	styles  Styles

	entries []entry
	waiting bool
	ready   bool
}

func New(turn TurnFunc) Model {
	ti := textinput.New()
	ti.Placeholder = "Ask about products, orders, or recommendations..."
	ti.Prompt = "> "
	ti.Focus()
	ti.CharLimit = 0

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		Input:   ti,
		turn:    turn,
		spinner: sp,
		styles:  NewStyles(),
	}
}

// Waiting reports whether a turn is in flight.
func (m Model) Waiting() bool { return m.waiting }

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowSize(msg), nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case turnResultMsg:
		m.waiting = false
		if msg.err != nil {
			m.entries = append(m.entries, entry{kind: entryError, text: msg.err.Error()})
		} else {
			m.entries = append(m.entries, entry{kind: entryAssistant, text: msg.reply, tools: msg.tools})
		}
		m.refreshViewport()
		cmd := m.Input.Focus()
		return m, cmd

	case spinner.TickMsg:
		if !m.waiting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	cmds = append(cmds, cmd)
	if !m.waiting {
		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit

	case "enter":
		if m.waiting {
			return m, nil
		}
		text := strings.TrimSpace(m.Input.Value())
		if text == "" {
			return m, nil
		}
		m.Input.SetValue("")
		m.Input.Blur()
		m.waiting = true
		m.entries = append(m.entries, entry{kind: entryUser, text: text})
		m.refreshViewport()
		return m, tea.Batch(m.spinner.Tick, m.runTurn(text))
	}

	var cmd tea.Cmd
	if m.waiting {
		m.Viewport, cmd = m.Viewport.Update(msg)
		return m, cmd
	}
	m.Input, cmd = m.Input.Update(msg)
	return m, cmd
}

func (m Model) runTurn(text string) tea.Cmd {
	turn := m.turn
	return func() tea.Msg {
		reply, tools, err := turn(context.Background(), text)
		return turnResultMsg{reply: reply, tools: tools, err: err}
	}
}

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) Model {
	headerHeight := 2
	footerHeight := 3
	height := msg.Height - headerHeight - footerHeight
	if height < 1 {
		height = 1
	}

	if !m.ready {
		m.Viewport = viewport.New(msg.Width, height)
		m.ready = true
	} else {
		m.Viewport.Width = msg.Width
		m.Viewport.Height = height
	}
	m.Input.Width = msg.Width - 4
	m.refreshViewport()
	return m
}

func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	m.Viewport.SetContent(m.renderConversation())
	m.Viewport.GotoBottom()
}

func (m Model) renderConversation() string {
	var b strings.Builder
	for _, e := range m.entries {
		switch e.kind {
		case entryUser:
			b.WriteString(m.styles.User.Render("You: "))
			b.WriteString(e.text)
		case entryAssistant:
			b.WriteString(m.styles.Assistant.Render("Max: " + e.text))
			if len(e.tools) > 0 {
				b.WriteString("\n")
				b.WriteString(m.styles.Tool.Render(fmt.Sprintf("  (used %s)", strings.Join(e.tools, ", "))))
			}
		case entryError:
			b.WriteString(m.styles.Error.Render("error: " + e.text))
		}
		b.WriteString("\n\n")
	}
	return b.String()
}

func (m Model) View() string {
	if !m.ready {
		return "starting..."
	}

	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Virtual Store"))
	b.WriteString("\n\n")
	b.WriteString(m.Viewport.View())
	b.WriteString("\n")
	if m.waiting {
		b.WriteString(m.spinner.View())
		b.WriteString(" thinking...")
	} else {
		b.WriteString(m.Input.View())
	}
	b.WriteString("\n")
	b.WriteString(m.styles.Help.Render("enter send · esc quit"))
	return b.String()
}
