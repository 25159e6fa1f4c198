// Package stats contains the durable statistics ledger and reporting.
package stats

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/AHARH1ST777/wordweave/internal/model"
)

// Storage keys are namespaced so the database can host unrelated state.
const (
	ledgerKey   = "wordweave:stats"
	playtimeKey = "wordweave:playtime"
)

// Storage is the key-value persistence capability the ledger and the time
// accumulator are built on. A missing key reports ok=false, never an error.
type Storage interface {
	Load(ctx context.Context, key string) ([]byte, bool, error)
	Save(ctx context.Context, key string, value []byte) error
}

// Apply folds one finished game into the aggregate. Pure; the caller owns
// persistence.
func Apply(rec model.LedgerRecord, won bool, attempts int, elapsedSeconds int64) model.LedgerRecord {
	rec.TotalGames++
	if won {
		rec.TotalWins++
	}
	rec.TotalAttempts += attempts
	rec.TotalPlayTime += elapsedSeconds
	if won && (rec.BestScore == nil || attempts < *rec.BestScore) {
		best := attempts
		rec.BestScore = &best
	}
	return rec
}

// Ledger owns the persisted aggregate. It is loaded once at startup and
// saved synchronously after every mutation, so the stored value never lags
// the in-memory one on abrupt termination.
type Ledger struct {
	storage Storage
	rec     model.LedgerRecord
}

// LoadLedger reads the stored aggregate, defaulting to zeros when absent.
func LoadLedger(ctx context.Context, storage Storage) (*Ledger, error) {
	value, ok, err := storage.Load(ctx, ledgerKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load stats: %w", err)
	}
	ledger := &Ledger{storage: storage}
	if ok {
		if err := json.Unmarshal(value, &ledger.rec); err != nil {
			return nil, fmt.Errorf("failed to decode stats: %w", err)
		}
	}
	return ledger, nil
}

// Record folds one finished game into the aggregate and persists it.
func (l *Ledger) Record(ctx context.Context, result model.GameResult) error {
	next := Apply(l.rec, result.Won, result.Attempts, int64(result.Elapsed.Seconds()))
	value, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("failed to encode stats: %w", err)
	}
	if err := l.storage.Save(ctx, ledgerKey, value); err != nil {
		return fmt.Errorf("failed to save stats: %w", err)
	}
	l.rec = next
	return nil
}

// Snapshot returns the current aggregate by value.
func (l *Ledger) Snapshot() model.LedgerRecord {
	rec := l.rec
	if l.rec.BestScore != nil {
		best := *l.rec.BestScore
		rec.BestScore = &best
	}
	return rec
}
