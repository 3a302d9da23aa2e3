package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type stubCleaner struct {
	n     int64
	err   error
	calls int
	at    time.Time
}

func (s *stubCleaner) ClearExpiredResetTokens(_ context.Context, now time.Time) (int64, error) {
	s.calls++
	s.at = now
	return s.n, s.err
}

func TestResetSweeper_SweepOnce(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	store := &stubCleaner{n: 2}
	sweeper := NewResetSweeper(store, time.Minute, zap.New(core))
	fixed := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	sweeper.now = func() time.Time { return fixed }

	assert.Equal(t, int64(2), sweeper.SweepOnce(context.Background()))
	assert.Equal(t, fixed, store.at)
	assert.Equal(t, 1, logs.FilterMessage("cleared expired reset tokens").Len())
}

func TestResetSweeper_SweepOnceError(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	sweeper := NewResetSweeper(&stubCleaner{err: errors.New("db down")}, time.Minute, zap.New(core))

	assert.Equal(t, int64(0), sweeper.SweepOnce(context.Background()))
	assert.Equal(t, 1, logs.FilterMessage("reset token sweep failed").Len())
}

func TestResetSweeper_RunStopsOnCancel(t *testing.T) {
	sweeper := NewResetSweeper(&stubCleaner{}, time.Hour, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		sweeper.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
