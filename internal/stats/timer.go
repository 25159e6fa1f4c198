package stats

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// TimeAccumulator counts seconds spent with the application open, menu time
// included. Each tick is persisted immediately. It is independent of the
// ledger's TotalPlayTime, which counts active-game seconds only.
type TimeAccumulator struct {
	storage Storage
	seconds int64
}

// LoadTimeAccumulator reads the stored counter, defaulting to zero when
// absent.
func LoadTimeAccumulator(ctx context.Context, storage Storage) (*TimeAccumulator, error) {
	value, ok, err := storage.Load(ctx, playtimeKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load time counter: %w", err)
	}
	acc := &TimeAccumulator{storage: storage}
	if ok {
		seconds, err := strconv.ParseInt(strings.TrimSpace(string(value)), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse time counter: %w", err)
		}
		acc.seconds = seconds
	}
	return acc, nil
}

// Tick adds one second and persists the counter.
func (a *TimeAccumulator) Tick(ctx context.Context) error {
	next := a.seconds + 1
	if err := a.storage.Save(ctx, playtimeKey, []byte(strconv.FormatInt(next, 10))); err != nil {
		return fmt.Errorf("failed to save time counter: %w", err)
	}
	a.seconds = next
	return nil
}

// Seconds returns the accumulated total.
func (a *TimeAccumulator) Seconds() int64 {
	return a.seconds
}
