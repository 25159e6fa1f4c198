package session

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/AHARH1ST777/wordweave/internal/model"
	"github.com/AHARH1ST777/wordweave/internal/protocol"
)

type fakeSender struct {
	sent   []protocol.Outbound
	broken bool
}

func (s *fakeSender) Send(out protocol.Outbound) error {
	if s.broken {
		return errors.New("connection closed")
	}
	s.sent = append(s.sent, out)
	return nil
}

type fakeRecorder struct {
	results []model.GameResult
}

func (r *fakeRecorder) RecordResult(_ context.Context, result model.GameResult) error {
	r.results = append(r.results, result)
	return nil
}

type harness struct {
	machine  *Machine
	sender   *fakeSender
	recorder *fakeRecorder
	clock    *clockwork.FakeClock
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	sender := &fakeSender{}
	recorder := &fakeRecorder{}
	clock := clockwork.NewFakeClock()
	machine := New("player_a1", "ru", sender, recorder, clock, zerolog.Nop())
	return &harness{machine: machine, sender: sender, recorder: recorder, clock: clock}
}

func (h *harness) startSolo(t *testing.T) {
	t.Helper()
	h.machine.HandleMessage(context.Background(), protocol.GameStarted{GameID: "g1", Mode: model.ModeSolo})
	if got := h.machine.Snapshot().Phase; got != model.PhasePlaying {
		t.Fatalf("expected playing, got %s", got)
	}
}

func (h *harness) startMultiplayer(t *testing.T) {
	t.Helper()
	h.machine.HandleMessage(context.Background(), protocol.GameStarted{GameID: "g1", Mode: model.ModeMultiplayer, Opponent: "player_b2"})
	if got := h.machine.Snapshot().Phase; got != model.PhasePlaying {
		t.Fatalf("expected playing, got %s", got)
	}
}

func TestRequestStartFromMenu(t *testing.T) {
	h := newHarness(t)
	h.machine.RequestStart(model.ModeSolo)
	if len(h.sender.sent) != 1 || h.sender.sent[0].Action != protocol.ActionStartSolo {
		t.Fatalf("unexpected outbound: %+v", h.sender.sent)
	}
	if got := h.machine.Snapshot().Phase; got != model.PhaseMenu {
		t.Fatalf("start request must not change phase, got %s", got)
	}

	h.machine.RequestStart(model.ModeMultiplayer)
	if len(h.sender.sent) != 2 || h.sender.sent[1].Action != protocol.ActionStartMultiplayer {
		t.Fatalf("unexpected outbound: %+v", h.sender.sent)
	}
}

func TestRequestStartIgnoredOutsideMenu(t *testing.T) {
	h := newHarness(t)
	h.startSolo(t)
	h.machine.RequestStart(model.ModeSolo)
	if len(h.sender.sent) != 0 {
		t.Fatalf("expected no outbound while playing, got %+v", h.sender.sent)
	}
}

func TestRequestStartOnClosedChannel(t *testing.T) {
	h := newHarness(t)
	h.sender.broken = true
	h.machine.RequestStart(model.ModeSolo)
	snap := h.machine.Snapshot()
	if snap.Phase != model.PhaseMenu {
		t.Fatalf("phase must stay menu, got %s", snap.Phase)
	}
	if !strings.Contains(snap.Message, "Нет соединения") {
		t.Fatalf("expected connection message, got %q", snap.Message)
	}
}

func TestWaitingIsOptional(t *testing.T) {
	h := newHarness(t)
	// game_started may arrive straight from the menu when an opponent was
	// already queued.
	h.startMultiplayer(t)
	snap := h.machine.Snapshot()
	if snap.Opponent.OpponentID != "player_b2" || snap.Mode != model.ModeMultiplayer {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

func TestWaitingThenStarted(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.machine.HandleMessage(ctx, protocol.WaitingForOpponent{})
	if got := h.machine.Snapshot().Phase; got != model.PhaseWaiting {
		t.Fatalf("expected waiting, got %s", got)
	}
	h.startMultiplayer(t)
}

func TestGameStartedResetsSessionState(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.startSolo(t)
	h.machine.HandleMessage(ctx, protocol.GuessResult{
		History:  []model.GuessRecord{{Word: "дом", Rank: 200, Similarity: 0.3}},
		Attempts: 1,
		Rank:     200,
		Word:     "дом",
	})
	h.machine.HandleMessage(ctx, protocol.GuessResult{IsCorrect: true, Attempts: 2, Word: "кот", History: []model.GuessRecord{{Word: "кот", Rank: 1}}})
	h.machine.Reset()

	h.startSolo(t)
	snap := h.machine.Snapshot()
	if snap.Attempts != 0 || len(snap.History) != 0 || snap.TargetWord != "" {
		t.Fatalf("expected fresh session, got %+v", snap)
	}
}

func TestSubmitGuessEmptyInput(t *testing.T) {
	h := newHarness(t)
	h.startSolo(t)
	clear := h.machine.SubmitGuess("   ")
	if clear {
		t.Fatalf("empty input must not clear the field")
	}
	snap := h.machine.Snapshot()
	if !strings.Contains(snap.Message, "Введите слово") {
		t.Fatalf("expected empty-input message, got %q", snap.Message)
	}
	if len(h.sender.sent) != 0 {
		t.Fatalf("empty input must not reach the network: %+v", h.sender.sent)
	}
	if snap.Attempts != 0 || len(snap.History) != 0 {
		t.Fatalf("attempts/history must be unchanged: %+v", snap)
	}
}

func TestSubmitGuessRejectsNonAlphabetic(t *testing.T) {
	h := newHarness(t)
	h.startSolo(t)
	clear := h.machine.SubmitGuess("дом1")
	if !clear {
		t.Fatalf("alphabetic rejection must clear the field")
	}
	snap := h.machine.Snapshot()
	if !strings.Contains(snap.Message, "только русские слова") {
		t.Fatalf("expected validation message, got %q", snap.Message)
	}
	if len(h.sender.sent) != 0 {
		t.Fatalf("invalid input must not reach the network: %+v", h.sender.sent)
	}
}

func TestSubmitGuessSendsTrimmedWord(t *testing.T) {
	h := newHarness(t)
	h.startSolo(t)
	clear := h.machine.SubmitGuess("  кошка  ")
	if !clear {
		t.Fatalf("successful send must clear the field")
	}
	if len(h.sender.sent) != 1 {
		t.Fatalf("expected one outbound, got %+v", h.sender.sent)
	}
	out := h.sender.sent[0]
	if out.Action != protocol.ActionGuess || out.GameID != "g1" || out.Word != "кошка" {
		t.Fatalf("unexpected outbound: %+v", out)
	}
	// No optimistic increment: attempts update only from guess_result.
	if got := h.machine.Snapshot().Attempts; got != 0 {
		t.Fatalf("expected attempts 0 before server reply, got %d", got)
	}
}

func TestSubmitGuessIgnoredOutsidePlaying(t *testing.T) {
	h := newHarness(t)
	if h.machine.SubmitGuess("кошка") {
		t.Fatalf("guess in menu must be a no-op")
	}
	if len(h.sender.sent) != 0 {
		t.Fatalf("expected no outbound, got %+v", h.sender.sent)
	}
}

func TestGuessResultReplacesStateWholesale(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.startSolo(t)
	result := protocol.GuessResult{
		History: []model.GuessRecord{
			{Word: "кошка", Rank: 37, Similarity: 0.43},
			{Word: "дом", Rank: 950, Similarity: 0.11},
		},
		Attempts: 2,
		Rank:     37,
		Word:     "кошка",
	}
	h.machine.HandleMessage(ctx, result)
	snap := h.machine.Snapshot()
	if snap.Attempts != 2 || len(snap.History) != 2 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}

	// Repeated identical messages are idempotent.
	h.machine.HandleMessage(ctx, result)
	snap = h.machine.Snapshot()
	if snap.Attempts != 2 || len(snap.History) != 2 {
		t.Fatalf("repeated message must be idempotent: %+v", snap)
	}
	if snap.Phase != model.PhasePlaying {
		t.Fatalf("wrong guess must not finish the game, got %s", snap.Phase)
	}
}

func TestGuessResultErrorMutatesNothing(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.startSolo(t)
	h.machine.HandleMessage(ctx, protocol.GuessResult{Error: "Слово не найдено в словаре"})
	snap := h.machine.Snapshot()
	if snap.Attempts != 0 || len(snap.History) != 0 || snap.Phase != model.PhasePlaying {
		t.Fatalf("error result must not mutate state: %+v", snap)
	}
	if !strings.Contains(snap.Message, "Слово не найдено") {
		t.Fatalf("expected surfaced error, got %q", snap.Message)
	}
}

func TestGuessResultWin(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.startSolo(t)
	h.clock.Advance(42 * time.Second)
	h.machine.HandleMessage(ctx, protocol.GuessResult{
		History:   []model.GuessRecord{{Word: "солнце", Rank: 0, Similarity: 1}},
		Attempts:  5,
		IsCorrect: true,
		Word:      "солнце",
	})
	snap := h.machine.Snapshot()
	if snap.Phase != model.PhaseFinished || snap.TargetWord != "солнце" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if len(h.recorder.results) != 1 {
		t.Fatalf("expected exactly one recorded result, got %d", len(h.recorder.results))
	}
	got := h.recorder.results[0]
	if !got.Won || got.Attempts != 5 || got.Elapsed != 42*time.Second || got.TargetWord != "солнце" {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestOpponentGuessUpdatesOpponentOnly(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.startMultiplayer(t)
	h.machine.HandleMessage(ctx, protocol.OpponentGuess{Attempts: 3, LastWord: "река"})
	snap := h.machine.Snapshot()
	if snap.Opponent.Attempts != 3 || snap.Opponent.LastWord != "река" {
		t.Fatalf("unexpected opponent view: %+v", snap.Opponent)
	}
	if snap.Attempts != 0 || snap.Phase != model.PhasePlaying {
		t.Fatalf("own state must be untouched: %+v", snap)
	}
}

func TestOpponentGuessIgnoredInSolo(t *testing.T) {
	h := newHarness(t)
	h.startSolo(t)
	h.machine.HandleMessage(context.Background(), protocol.OpponentGuess{Attempts: 3})
	if got := h.machine.Snapshot().Opponent.Attempts; got != 0 {
		t.Fatalf("expected no opponent update in solo, got %d", got)
	}
}

func TestGameOverUsesLocalAttempts(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.startMultiplayer(t)
	h.machine.HandleMessage(ctx, protocol.GuessResult{
		History:  []model.GuessRecord{{Word: "дом", Rank: 500}},
		Attempts: 4,
		Rank:     500,
		Word:     "дом",
	})
	h.machine.HandleMessage(ctx, protocol.GameOver{Winner: "player_a1", Word: "солнце"})
	snap := h.machine.Snapshot()
	if snap.Phase != model.PhaseFinished || snap.TargetWord != "солнце" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if len(h.recorder.results) != 1 {
		t.Fatalf("expected one recorded result, got %d", len(h.recorder.results))
	}
	got := h.recorder.results[0]
	if !got.Won || got.Attempts != 4 {
		t.Fatalf("expected win with locally-known attempts 4, got %+v", got)
	}
}

func TestGameOverLoss(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.startMultiplayer(t)
	h.machine.HandleMessage(ctx, protocol.GameOver{Winner: "player_b2", Word: "солнце"})
	snap := h.machine.Snapshot()
	if !strings.Contains(snap.Message, "Соперник победил") {
		t.Fatalf("expected loss message, got %q", snap.Message)
	}
	if len(h.recorder.results) != 1 || h.recorder.results[0].Won {
		t.Fatalf("expected recorded loss, got %+v", h.recorder.results)
	}
}

func TestTerminalTransitionRecordsExactlyOnce(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.startMultiplayer(t)
	h.machine.HandleMessage(ctx, protocol.GuessResult{
		History:   []model.GuessRecord{{Word: "солнце", Rank: 0}},
		Attempts:  5,
		IsCorrect: true,
		Word:      "солнце",
	})
	// The server also broadcasts game_over after a winning guess.
	h.machine.HandleMessage(ctx, protocol.GameOver{Winner: "player_a1", Word: "солнце"})
	if len(h.recorder.results) != 1 {
		t.Fatalf("expected exactly one recorded result, got %d", len(h.recorder.results))
	}
}

func TestResetClearsSessionNotStats(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.startSolo(t)
	h.machine.HandleMessage(ctx, protocol.GuessResult{IsCorrect: true, Attempts: 3, Word: "кот", History: []model.GuessRecord{{Word: "кот", Rank: 1}}})
	h.machine.Reset()
	snap := h.machine.Snapshot()
	if snap.Phase != model.PhaseMenu || snap.GameID != "" || snap.Message != "" || len(snap.History) != 0 {
		t.Fatalf("expected clean menu state: %+v", snap)
	}
	if len(h.recorder.results) != 1 {
		t.Fatalf("reset must not touch recorded results, got %d", len(h.recorder.results))
	}
}

func TestMessagesIgnoredInWrongPhase(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	// All of these arrive in the menu phase and must leave it untouched.
	h.machine.HandleMessage(ctx, protocol.GuessResult{Attempts: 7, History: []model.GuessRecord{{Word: "дом", Rank: 1}}})
	h.machine.HandleMessage(ctx, protocol.OpponentGuess{Attempts: 2})
	h.machine.HandleMessage(ctx, protocol.GameOver{Winner: "player_a1", Word: "дом"})
	snap := h.machine.Snapshot()
	if snap.Phase != model.PhaseMenu || snap.Attempts != 0 || len(snap.History) != 0 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if len(h.recorder.results) != 0 {
		t.Fatalf("no result may be recorded from the menu, got %+v", h.recorder.results)
	}
}

func TestServerErrorMessageSurfaced(t *testing.T) {
	h := newHarness(t)
	h.machine.HandleMessage(context.Background(), protocol.ErrorMessage{Message: "Игра не найдена"})
	snap := h.machine.Snapshot()
	if !strings.Contains(snap.Message, "Игра не найдена") {
		t.Fatalf("expected surfaced error, got %q", snap.Message)
	}
	if snap.Phase != model.PhaseMenu {
		t.Fatalf("error must not change phase, got %s", snap.Phase)
	}
}

func TestHandleDisconnect(t *testing.T) {
	h := newHarness(t)
	h.startSolo(t)
	h.machine.HandleDisconnect()
	snap := h.machine.Snapshot()
	if !strings.Contains(snap.Message, "Нет соединения") {
		t.Fatalf("expected connection message, got %q", snap.Message)
	}
	if snap.Phase != model.PhasePlaying {
		t.Fatalf("disconnect must not change phase, got %s", snap.Phase)
	}
}
