package chat

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerLifecycle(t *testing.T) {
	m := NewManager(Options{Delay: FixedDelay(0)})

	s := m.Create()
	assert.Equal(t, 1, m.Len())

	got, err := m.Get(s.ID())
	require.NoError(t, err)
	assert.Same(t, s, got)

	require.NoError(t, m.Close(s.ID()))
	assert.True(t, s.Closed())
	assert.Equal(t, 0, m.Len())

	_, err = m.Get(s.ID())
	require.ErrorIs(t, err, ErrSessionNotFound)
	require.ErrorIs(t, m.Close(s.ID()), ErrSessionNotFound)
}

func TestManagerSweepSkipsPendingSessions(t *testing.T) {
	clock := newFakeClock()
	m := NewManager(Options{Clock: clock, Delay: FixedDelay(time.Minute)})

	idle := m.Create()
	busy := m.Create()
	_, err := busy.SendMessage("hi")
	require.NoError(t, err)
	assert.Equal(t, 1, m.PendingCount())

	clock.Advance(2 * time.Hour)
	assert.Equal(t, 1, m.Sweep(time.Hour))
	assert.True(t, idle.Closed())
	assert.False(t, busy.Closed())

	m.CloseAll()
	assert.True(t, busy.Closed())
	assert.Equal(t, 0, m.Len())
}

func TestManagerSweepDoesNotBlockOnStuckListener(t *testing.T) {
	stuck := newStuckListener(t)
	m := NewManager(Options{Delay: FixedDelay(0)})
	t.Cleanup(m.CloseAll)

	s := m.Create()
	s.Subscribe(stuck.listen)
	_, err := s.SendMessage("hello")
	require.NoError(t, err)
	<-stuck.entered
	require.Eventually(t, func() bool { return !s.Pending() }, time.Second, 5*time.Millisecond)

	swept := make(chan int, 1)
	go func() { swept <- m.Sweep(time.Hour) }()

	returnsWithin(t, "Get", func() {
		_, err := m.Get(s.ID())
		assert.NoError(t, err)
	})
	returnsWithin(t, "Create", func() { m.Create() })
	returnsWithin(t, "Len", func() { assert.Equal(t, 2, m.Len()) })
	returnsWithin(t, "PendingCount", func() { assert.Equal(t, 0, m.PendingCount()) })

	select {
	case n := <-swept:
		assert.Zero(t, n)
	case <-time.After(time.Second):
		t.Fatal("Sweep blocked")
	}
}

type gaugeObserver struct {
	*countingObserver
	mu     sync.Mutex
	counts []int
}

func (g *gaugeObserver) SetActiveSessions(n int) {
	g.mu.Lock()
	g.counts = append(g.counts, n)
	g.mu.Unlock()
}

func TestManagerReportsActiveSessions(t *testing.T) {
	clock := newFakeClock()
	obs := &gaugeObserver{countingObserver: newCountingObserver()}
	m := NewManager(Options{Clock: clock, Delay: FixedDelay(0), Observer: obs})

	a := m.Create()
	m.Create()
	require.NoError(t, m.Close(a.ID()))
	clock.Advance(2 * time.Hour)
	assert.Equal(t, 1, m.Sweep(time.Hour))
	m.Create()
	m.CloseAll()

	obs.mu.Lock()
	defer obs.mu.Unlock()
	assert.Equal(t, []int{1, 2, 1, 0, 1, 0}, obs.counts)
}
