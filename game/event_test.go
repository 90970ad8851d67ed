package game

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventQueueBasic(t *testing.T) {
	eq := NewEventQueue()
	eq.Push(Event{Type: EventMerge, Tick: 1})
	eq.Push(Event{Type: EventScore, Tick: 1, Delta: 100})
	eq.Push(Event{Type: EventPhase, Tick: 2, Phase: PhaseWin})
	assert.Equal(t, 3, eq.Len())

	events := eq.Consume()
	require.Len(t, events, 3)
	assert.Equal(t, EventMerge, events[0].Type)
	assert.Equal(t, EventScore, events[1].Type)
	assert.Equal(t, PhaseWin, events[2].Phase)

	assert.Empty(t, eq.Consume())
}

func TestEventQueueConcurrent(t *testing.T) {
	eq := NewEventQueue()
	const goroutines, perGoroutine = 10, 10

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func(id int) {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				eq.Push(Event{Type: EventScore, Delta: id*100 + j})
			}
		}(i)
	}
	wg.Wait()

	assert.Len(t, eq.Consume(), goroutines*perGoroutine)
}

func TestDispatch_Order(t *testing.T) {
	var got []string
	a := SinkFunc(func(ev Event) { got = append(got, "a:"+ev.Type.String()) })
	b := SinkFunc(func(ev Event) { got = append(got, "b:"+ev.Type.String()) })

	Dispatch([]Event{{Type: EventMerge}, {Type: EventLevelStart}}, a, b)

	assert.Equal(t, []string{"a:merge", "b:merge", "a:level_start", "b:level_start"}, got)
}

func TestPhaseStrings(t *testing.T) {
	assert.Equal(t, "paused", PhasePaused.String())
	assert.True(t, PhasePlaying.Running())
	assert.False(t, PhaseWin.Running())
	assert.True(t, PhaseWin.Visible())
	assert.False(t, PhaseMenu.Visible())

	text, err := PhaseComplete.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "complete", string(text))
}
