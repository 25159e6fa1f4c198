// Package protocol defines the wire messages exchanged with the game server.
package protocol

import "github.com/AHARH1ST777/wordweave/internal/model"

// MessageType discriminates inbound server frames.
type MessageType string

// Server → client message types.
const (
	MsgGameStarted        MessageType = "game_started"
	MsgWaitingForOpponent MessageType = "waiting_for_opponent"
	MsgGuessResult        MessageType = "guess_result"
	MsgOpponentGuess      MessageType = "opponent_guess"
	MsgGameOver           MessageType = "game_over"
	MsgError              MessageType = "error"
)

// Action discriminates outbound client intents.
type Action string

// Client → server actions.
const (
	ActionStartSolo        Action = "start_solo"
	ActionStartMultiplayer Action = "start_multiplayer"
	ActionGuess            Action = "guess"
)

// Message is one decoded inbound frame.
type Message interface {
	Type() MessageType
}

// GameStarted announces a new session. Opponent is set in multiplayer only.
type GameStarted struct {
	GameID   string     `json:"game_id"`
	Mode     model.Mode `json:"mode"`
	Opponent string     `json:"opponent,omitempty"`
}

// Type implements Message.
func (GameStarted) Type() MessageType { return MsgGameStarted }

// WaitingForOpponent reports the client is queued for a multiplayer match.
type WaitingForOpponent struct{}

// Type implements Message.
func (WaitingForOpponent) Type() MessageType { return MsgWaitingForOpponent }

// GuessResult is the authoritative feedback for the most recent guess. The
// server owns history ordering and rank assignment; History arrives sorted
// by ascending rank. A non-empty Error means the guess was rejected and no
// other field should be trusted.
type GuessResult struct {
	History    []model.GuessRecord `json:"history"`
	Attempts   int                 `json:"attempts"`
	IsCorrect  bool                `json:"is_correct"`
	Rank       int                 `json:"rank"`
	Similarity float64             `json:"similarity"`
	Word       string              `json:"word,omitempty"`
	TargetWord string              `json:"target_word,omitempty"`
	Error      string              `json:"error,omitempty"`
}

// Type implements Message.
func (GuessResult) Type() MessageType { return MsgGuessResult }

// Target returns the revealed word on a winning result. Older server
// revisions send it as "word", newer ones as "target_word".
func (r GuessResult) Target() string {
	if r.TargetWord != "" {
		return r.TargetWord
	}
	return r.Word
}

// OpponentGuess is a progress update for the other player.
type OpponentGuess struct {
	Attempts int    `json:"attempts"`
	LastWord string `json:"last_word,omitempty"`
}

// Type implements Message.
func (OpponentGuess) Type() MessageType { return MsgOpponentGuess }

// GameOver ends the session for both parties and reveals the target word.
type GameOver struct {
	Winner string `json:"winner"`
	Word   string `json:"word"`
}

// Type implements Message.
func (GameOver) Type() MessageType { return MsgGameOver }

// ErrorMessage is a non-fatal protocol-level error.
type ErrorMessage struct {
	Message string `json:"message"`
}

// Type implements Message.
func (ErrorMessage) Type() MessageType { return MsgError }

// Outbound is a client intent serialized onto the wire.
type Outbound struct {
	Action Action `json:"action"`
	GameID string `json:"game_id,omitempty"`
	Word   string `json:"word,omitempty"`
}

// StartSolo builds the start-solo intent.
func StartSolo() Outbound {
	return Outbound{Action: ActionStartSolo}
}

// StartMultiplayer builds the start-multiplayer intent.
func StartMultiplayer() Outbound {
	return Outbound{Action: ActionStartMultiplayer}
}

// Guess builds the submit-guess intent for a session.
func Guess(gameID, word string) Outbound {
	return Outbound{Action: ActionGuess, GameID: gameID, Word: word}
}
