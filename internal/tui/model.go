// Package tui provides the Bubble Tea game interface.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/AHARH1ST777/wordweave/internal/model"
	"github.com/AHARH1ST777/wordweave/internal/protocol"
	"github.com/AHARH1ST777/wordweave/internal/session"
	"github.com/AHARH1ST777/wordweave/internal/stats"
)

type serverMsg struct {
	msg protocol.Message
}

type serverClosedMsg struct{}

type tickMsg time.Time

// Model implements the Bubble Tea game UI. All session logic lives in the
// state machine; the model forwards intents and renders snapshots.
type Model struct {
	machine  *session.Machine
	ledger   *stats.Ledger
	timer    *stats.TimeAccumulator
	messages <-chan protocol.Message
	logger   zerolog.Logger

	input textinput.Model
	spin  spinner.Model

	width  int
	height int

	showRules bool
	showStats bool
}

// NewModel constructs the game UI model.
func NewModel(machine *session.Machine, ledger *stats.Ledger, timer *stats.TimeAccumulator, messages <-chan protocol.Message, logger zerolog.Logger) *Model {
	input := textinput.New()
	input.Placeholder = "Введите существительное..."
	input.CharLimit = 64
	input.Width = 40

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	return &Model{
		machine:  machine,
		ledger:   ledger,
		timer:    timer,
		messages: messages,
		logger:   logger,
		input:    input,
		spin:     spin,
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.waitForServer(), tickCmd(), m.spin.Tick, textinput.Blink)
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		if err := m.timer.Tick(context.Background()); err != nil {
			m.logger.Error().Err(err).Msg("failed to persist time counter")
		}
		return m, tickCmd()
	case serverMsg:
		m.machine.HandleMessage(context.Background(), msg.msg)
		if m.machine.Snapshot().Phase == model.PhasePlaying && !m.input.Focused() {
			m.input.Focus()
		}
		return m, m.waitForServer()
	case serverClosedMsg:
		m.machine.HandleDisconnect()
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	if m.showRules || m.showStats {
		m.showRules = false
		m.showStats = false
		return m, nil
	}

	switch m.machine.Snapshot().Phase {
	case model.PhaseMenu:
		return m.handleMenuKey(msg)
	case model.PhaseWaiting:
		switch msg.String() {
		case "esc", "q":
			m.machine.Reset()
		}
		return m, nil
	case model.PhasePlaying:
		return m.handlePlayingKey(msg)
	case model.PhaseFinished:
		switch msg.String() {
		case "enter", "n":
			m.machine.Reset()
			m.input.SetValue("")
			m.input.Blur()
		case "s":
			m.showStats = true
		case "q":
			return m, tea.Quit
		}
		return m, nil
	default:
		return m, nil
	}
}

func (m *Model) handleMenuKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "1":
		m.machine.RequestStart(model.ModeSolo)
	case "2":
		m.machine.RequestStart(model.ModeMultiplayer)
	case "r":
		m.showRules = true
	case "s":
		m.showStats = true
	case "q", "esc":
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) handlePlayingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		if m.machine.SubmitGuess(m.input.Value()) {
			m.input.SetValue("")
		}
		return m, nil
	case tea.KeyEsc:
		m.machine.Reset()
		m.input.SetValue("")
		m.input.Blur()
		return m, nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

// waitForServer delivers the next inbound message as a tea.Msg. The
// subscription is re-issued after each delivery, so messages are processed
// strictly in arrival order.
func (m *Model) waitForServer() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-m.messages
		if !ok {
			return serverClosedMsg{}
		}
		return serverMsg{msg: msg}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
