package repo

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakePurger struct {
	calls atomic.Int32
	n     int64
	err   error
}

func (f *fakePurger) PurgeExpired(context.Context, time.Time) (int64, error) {
	f.calls.Add(1)
	return f.n, f.err
}

func TestSweeper_Sweep(t *testing.T) {
	p := &fakePurger{n: 3}
	s := NewSweeper(p, time.Hour)

	assert.Equal(t, int64(3), s.sweep(context.Background()))

	p.err = errors.New("db down")
	assert.Equal(t, int64(0), s.sweep(context.Background()))
}

func TestSweeper_RunStopsOnCancel(t *testing.T) {
	p := &fakePurger{}
	s := NewSweeper(p, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return p.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}

func TestNewSweeper_NonPositiveInterval(t *testing.T) {
	for _, d := range []time.Duration{0, -time.Second} {
		s := NewSweeper(&fakePurger{}, d)
		assert.Equal(t, DefaultSweepInterval, s.interval)
	}

	s := NewSweeper(&fakePurger{}, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NotPanics(t, func() { s.Run(ctx) })
}
