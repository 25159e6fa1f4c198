package protocol

import (
	"encoding/json"
	"fmt"
)

// ErrUnknownType marks a frame whose tag this client does not recognize.
// Callers log and skip such frames; the server protocol may evolve.
type ErrUnknownType struct {
	Tag string
}

func (e *ErrUnknownType) Error() string {
	return fmt.Sprintf("unknown message type %q", e.Tag)
}

// Decode parses one inbound frame into its typed message. It performs
// structural decoding only; domain validation is the session's concern.
func Decode(data []byte) (Message, error) {
	var envelope struct {
		Type MessageType `json:"type"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode frame: %w", err)
	}
	switch envelope.Type {
	case MsgGameStarted:
		var msg GameStarted
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("failed to decode game_started: %w", err)
		}
		return msg, nil
	case MsgWaitingForOpponent:
		return WaitingForOpponent{}, nil
	case MsgGuessResult:
		var msg GuessResult
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("failed to decode guess_result: %w", err)
		}
		return msg, nil
	case MsgOpponentGuess:
		var msg OpponentGuess
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("failed to decode opponent_guess: %w", err)
		}
		return msg, nil
	case MsgGameOver:
		var msg GameOver
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("failed to decode game_over: %w", err)
		}
		return msg, nil
	case MsgError:
		var msg ErrorMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("failed to decode error: %w", err)
		}
		return msg, nil
	default:
		return nil, &ErrUnknownType{Tag: string(envelope.Type)}
	}
}

// Encode serializes an outbound intent.
func Encode(out Outbound) ([]byte, error) {
	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", out.Action, err)
	}
	return data, nil
}
