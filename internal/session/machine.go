// Package session implements the client-side game state machine: phase
// transitions, guess validation, and reconciliation of server events into
// session state.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/AHARH1ST777/wordweave/internal/model"
	"github.com/AHARH1ST777/wordweave/internal/protocol"
)

// Sender delivers an outbound intent to the server. Sends are
// fire-and-forget; an error means the channel is not open and the intent
// was dropped.
type Sender interface {
	Send(out protocol.Outbound) error
}

// Recorder records one finished game in the durable statistics.
type Recorder interface {
	RecordResult(ctx context.Context, result model.GameResult) error
}

const connectionLostMessage = "❌ Нет соединения с сервером"

// Machine owns one session's state from menu to a terminal outcome. It is
// mutated only from the single UI goroutine; server messages are delivered
// to HandleMessage in arrival order.
type Machine struct {
	clientID string
	lang     string
	sender   Sender
	recorder Recorder
	clock    clockwork.Clock
	logger   zerolog.Logger

	phase      model.Phase
	mode       model.Mode
	gameID     string
	startedAt  time.Time
	attempts   int
	history    []model.GuessRecord
	opponent   model.OpponentView
	targetWord string
	message    string
	recorded   bool
}

// New constructs a machine in the menu phase.
func New(clientID, lang string, sender Sender, recorder Recorder, clock clockwork.Clock, logger zerolog.Logger) *Machine {
	return &Machine{
		clientID: clientID,
		lang:     lang,
		sender:   sender,
		recorder: recorder,
		clock:    clock,
		logger:   logger,
		phase:    model.PhaseMenu,
	}
}

// Snapshot is a read-only projection of the session state for rendering.
type Snapshot struct {
	ClientID   string
	Phase      model.Phase
	Mode       model.Mode
	GameID     string
	Attempts   int
	History    []model.GuessRecord
	Opponent   model.OpponentView
	TargetWord string
	Message    string
}

// Snapshot returns the current session state by value.
func (m *Machine) Snapshot() Snapshot {
	history := make([]model.GuessRecord, len(m.history))
	copy(history, m.history)
	return Snapshot{
		ClientID:   m.clientID,
		Phase:      m.phase,
		Mode:       m.mode,
		GameID:     m.gameID,
		Attempts:   m.attempts,
		History:    history,
		Opponent:   m.opponent,
		TargetWord: m.targetWord,
		Message:    m.message,
	}
}

// RequestStart asks the server for a new game. Valid only from the menu;
// the phase changes on game_started or waiting_for_opponent, never here.
func (m *Machine) RequestStart(mode model.Mode) {
	if m.phase != model.PhaseMenu {
		m.logger.Debug().Str("phase", m.phase.String()).Msg("start request ignored outside menu")
		return
	}
	out := protocol.StartSolo()
	if mode == model.ModeMultiplayer {
		out = protocol.StartMultiplayer()
	}
	if err := m.sender.Send(out); err != nil {
		m.logger.Warn().Err(err).Str("action", string(out.Action)).Msg("start request dropped")
		m.message = connectionLostMessage
	}
}

// SubmitGuess validates the input and sends it as a guess. The returned
// flag tells the caller to clear the input field: cleared on a successful
// send and on the non-alphabetic rejection, kept on empty input.
func (m *Machine) SubmitGuess(raw string) bool {
	if m.phase != model.PhasePlaying {
		return false
	}
	word, err := NormalizeGuess(m.lang, raw)
	switch {
	case errors.Is(err, ErrEmptyWord):
		m.message = "⚠️ Введите слово"
		return false
	case errors.Is(err, ErrNotAlphabetic):
		m.message = "❌ Пожалуйста, вводите только русские слова"
		return true
	case err != nil:
		m.message = "❌ " + err.Error()
		return true
	}
	if err := m.sender.Send(protocol.Guess(m.gameID, word)); err != nil {
		m.logger.Warn().Err(err).Msg("guess dropped")
		m.message = connectionLostMessage
	}
	return true
}

// Reset clears all session-scoped state and returns to the menu. The
// statistics are untouched.
func (m *Machine) Reset() {
	m.phase = model.PhaseMenu
	m.mode = ""
	m.gameID = ""
	m.startedAt = time.Time{}
	m.attempts = 0
	m.history = nil
	m.opponent = model.OpponentView{}
	m.targetWord = ""
	m.message = ""
	m.recorded = false
}

// HandleMessage applies one inbound server message. Messages that are not
// valid in the current phase are logged and ignored; nothing here is fatal.
func (m *Machine) HandleMessage(ctx context.Context, msg protocol.Message) {
	switch msg := msg.(type) {
	case protocol.GameStarted:
		m.onGameStarted(msg)
	case protocol.WaitingForOpponent:
		m.onWaiting()
	case protocol.GuessResult:
		m.onGuessResult(ctx, msg)
	case protocol.OpponentGuess:
		m.onOpponentGuess(msg)
	case protocol.GameOver:
		m.onGameOver(ctx, msg)
	case protocol.ErrorMessage:
		m.message = "❌ " + msg.Message
	default:
		m.logger.Debug().Str("type", string(msg.Type())).Msg("unhandled message")
	}
}

// HandleDisconnect surfaces a closed channel as a transient message. No
// reconnect is attempted here.
func (m *Machine) HandleDisconnect() {
	m.message = connectionLostMessage
}

func (m *Machine) onGameStarted(msg protocol.GameStarted) {
	if !m.phase.CanTransitionTo(model.PhasePlaying) {
		m.logger.Debug().Str("phase", m.phase.String()).Msg("game_started ignored")
		return
	}
	if msg.Mode == model.ModeMultiplayer && msg.Opponent == "" {
		m.logger.Warn().Str("game_id", msg.GameID).Msg("multiplayer game without opponent id")
	}
	m.phase = model.PhasePlaying
	m.mode = msg.Mode
	m.gameID = msg.GameID
	m.startedAt = m.clock.Now()
	m.attempts = 0
	m.history = nil
	m.targetWord = ""
	m.recorded = false
	m.opponent = model.OpponentView{OpponentID: msg.Opponent}
	if msg.Mode == model.ModeMultiplayer {
		m.message = "⚔️ Соперник найден! Кто быстрее угадает слово."
	} else {
		m.message = "🎮 Игра началась! Угадайте слово."
	}
}

func (m *Machine) onWaiting() {
	if !m.phase.CanTransitionTo(model.PhaseWaiting) {
		m.logger.Debug().Str("phase", m.phase.String()).Msg("waiting_for_opponent ignored")
		return
	}
	m.phase = model.PhaseWaiting
	m.message = "⏳ Поиск соперника..."
}

func (m *Machine) onGuessResult(ctx context.Context, msg protocol.GuessResult) {
	if m.phase != model.PhasePlaying {
		m.logger.Debug().Str("phase", m.phase.String()).Msg("guess_result ignored")
		return
	}
	if msg.Error != "" {
		m.message = "❌ " + msg.Error
		return
	}
	// The server owns ordering and rank assignment: replace wholesale,
	// never append or increment locally.
	m.history = append([]model.GuessRecord(nil), msg.History...)
	m.attempts = msg.Attempts
	if msg.IsCorrect {
		m.targetWord = msg.Target()
		m.message = fmt.Sprintf("🎉 Победа! Вы угадали слово «%s» за %d попыток!", m.targetWord, m.attempts)
		m.finish(ctx, true)
		return
	}
	m.message = fmt.Sprintf("«%s» — %s (ранг %d)", msg.Word, Bucket(msg.Rank), msg.Rank)
}

func (m *Machine) onOpponentGuess(msg protocol.OpponentGuess) {
	if m.phase != model.PhasePlaying || m.mode != model.ModeMultiplayer {
		m.logger.Debug().Str("phase", m.phase.String()).Msg("opponent_guess ignored")
		return
	}
	m.opponent.Attempts = msg.Attempts
	if msg.LastWord != "" {
		m.opponent.LastWord = msg.LastWord
	}
}

func (m *Machine) onGameOver(ctx context.Context, msg protocol.GameOver) {
	if m.phase != model.PhasePlaying {
		m.logger.Debug().Str("phase", m.phase.String()).Msg("game_over ignored")
		return
	}
	m.targetWord = msg.Word
	won := msg.Winner == m.clientID
	if won {
		m.message = fmt.Sprintf("🎉 Победа! Слово: «%s»", msg.Word)
	} else {
		m.message = fmt.Sprintf("😔 Соперник победил. Слово было: «%s»", msg.Word)
	}
	m.finish(ctx, won)
}

// finish moves to the finished phase and records the outcome exactly once
// per session. Attempts is the locally-known count; game_over may arrive
// before a pending guess_result, in which case it is one step stale.
func (m *Machine) finish(ctx context.Context, won bool) {
	m.phase = model.PhaseFinished
	if m.recorded {
		return
	}
	m.recorded = true
	result := model.GameResult{
		Won:        won,
		Attempts:   m.attempts,
		Elapsed:    m.clock.Now().Sub(m.startedAt),
		Mode:       m.mode,
		TargetWord: m.targetWord,
	}
	if err := m.recorder.RecordResult(ctx, result); err != nil {
		m.logger.Error().Err(err).Msg("failed to record game result")
	}
}
