package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakePruner struct {
	mu    sync.Mutex
	calls []int
	err   error
}

func (f *fakePruner) CleanOldLogs(days int) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, days)
	return 3, f.err
}

func (f *fakePruner) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func TestRun_PrunesAtStartupAndOnTick(t *testing.T) {
	p := &fakePruner{}
	s := New(p, 30)
	s.interval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return p.count() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done

	p.mu.Lock()
	defer p.mu.Unlock()
	for _, days := range p.calls {
		require.Equal(t, 30, days)
	}
}

func TestRun_DisabledReturnsImmediately(t *testing.T) {
	p := &fakePruner{}
	New(p, 0).Run(context.Background())
	require.Zero(t, p.count())
}

func TestRun_ErrorsDoNotStopLoop(t *testing.T) {
	p := &fakePruner{err: errors.New("database is locked")}
	s := New(p, 7)
	s.interval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	require.Eventually(t, func() bool { return p.count() >= 2 }, time.Second, 5*time.Millisecond)
}
