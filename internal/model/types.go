// Package model defines shared data structures.
package model

import "time"

// Mode is the game mode chosen from the menu.
type Mode string

const (
	ModeSolo        Mode = "solo"
	ModeMultiplayer Mode = "multiplayer"
)

// Phase is the lifecycle phase of a session.
type Phase string

const (
	PhaseMenu     Phase = "menu"
	PhaseWaiting  Phase = "waiting"
	PhasePlaying  Phase = "playing"
	PhaseFinished Phase = "finished"
)

// String returns the string representation of the phase.
func (p Phase) String() string {
	return string(p)
}

// CanTransitionTo reports whether moving from p to target is a valid edge.
// The waiting phase is optional: the server may match an already-queued
// opponent and start the game straight from the menu.
func (p Phase) CanTransitionTo(target Phase) bool {
	validTransitions := map[Phase][]Phase{
		PhaseMenu:     {PhaseWaiting, PhasePlaying},
		PhaseWaiting:  {PhasePlaying, PhaseMenu},
		PhasePlaying:  {PhaseFinished, PhaseMenu},
		PhaseFinished: {PhaseMenu},
	}
	for _, allowed := range validTransitions[p] {
		if allowed == target {
			return true
		}
	}
	return false
}

// GuessRecord is one evaluated attempt. Rank and similarity are assigned by
// the server; smaller rank is closer.
type GuessRecord struct {
	Word       string  `json:"word"`
	Rank       int     `json:"rank"`
	Similarity float64 `json:"similarity"`
}

// OpponentView is the locally-derived view of the opponent's progress in a
// multiplayer session. It is built entirely from inbound events.
type OpponentView struct {
	OpponentID string
	Attempts   int
	LastWord   string
}

// LedgerRecord is the durable cross-session statistics aggregate. BestScore
// is nil until the first win.
type LedgerRecord struct {
	TotalGames    int   `json:"total_games"`
	TotalWins     int   `json:"total_wins"`
	TotalAttempts int   `json:"total_attempts"`
	BestScore     *int  `json:"best_score"`
	TotalPlayTime int64 `json:"total_play_time"`
}

// GameResult describes one finished game for recording.
type GameResult struct {
	Won        bool
	Attempts   int
	Elapsed    time.Duration
	Mode       Mode
	TargetWord string
}

// GameRecord is a persisted per-game history row.
type GameRecord struct {
	ID         int64
	FinishedAt time.Time
	Mode       Mode
	Won        bool
	Attempts   int
	DurationMs int64
	TargetWord string
}
