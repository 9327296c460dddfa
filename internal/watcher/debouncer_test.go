package watcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, ch <-chan []Event, timeout time.Duration) []Event {
	t.Helper()
	select {
	case batch, ok := <-ch:
		require.True(t, ok, "channel closed")
		return batch
	case <-time.After(timeout):
		t.Fatal("timeout waiting for batch")
		return nil
	}
}

func TestDebouncer_SingleEvent_PassesThrough(t *testing.T) {
	// Given: a debouncer with short window
	d := NewDebouncer(50 * time.Millisecond)
	defer d.Stop()

	// When: a single event is added
	d.Add(Event{Path: "/w/.gitignore", Trigger: TriggerRules, Timestamp: time.Now()})

	// Then: it is emitted after the window
	batch := receive(t, d.Output(), time.Second)
	require.Len(t, batch, 1)
	assert.Equal(t, "/w/.gitignore", batch[0].Path)
	assert.Equal(t, TriggerRules, batch[0].Trigger)
}

func TestDebouncer_SamePath_Coalesces(t *testing.T) {
	// Given: a debouncer with short window
	d := NewDebouncer(100 * time.Millisecond)
	defer d.Stop()

	// When: the same file changes several times in a burst
	for i := 0; i < 5; i++ {
		d.Add(Event{Path: "/w/.tmbliss", Trigger: TriggerRules, Timestamp: time.Now()})
		time.Sleep(10 * time.Millisecond)
	}

	// Then: one event comes out
	batch := receive(t, d.Output(), time.Second)
	require.Len(t, batch, 1)
	assert.Equal(t, 0, d.Pending())
}

func TestDebouncer_BatchIsSortedByPath(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)
	defer d.Stop()

	d.Add(Event{Path: "/w/b", Trigger: TriggerNewDir})
	d.Add(Event{Path: "/w/a/.gitignore", Trigger: TriggerRules})
	d.Add(Event{Path: "/w/c", Trigger: TriggerNewDir})

	batch := receive(t, d.Output(), time.Second)
	require.Len(t, batch, 3)
	assert.Equal(t, "/w/a/.gitignore", batch[0].Path)
	assert.Equal(t, "/w/b", batch[1].Path)
	assert.Equal(t, "/w/c", batch[2].Path)
}

func TestDebouncer_RulesChangeIsSticky(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)
	defer d.Stop()

	d.Add(Event{Path: "/w/.tmbliss", Trigger: TriggerRules})
	d.Add(Event{Path: "/w/.tmbliss", Trigger: TriggerNewDir})

	batch := receive(t, d.Output(), time.Second)
	require.Len(t, batch, 1)
	assert.Equal(t, TriggerRules, batch[0].Trigger)
}

func TestDebouncer_WindowRestartsOnAdd(t *testing.T) {
	// Given: a 150ms window
	d := NewDebouncer(150 * time.Millisecond)
	defer d.Stop()

	// When: events keep arriving faster than the window
	for i := 0; i < 4; i++ {
		d.Add(Event{Path: "/w/x", Trigger: TriggerNewDir})
		time.Sleep(75 * time.Millisecond)
	}

	// Then: nothing was flushed during the burst
	assert.Equal(t, 1, d.Pending())
	batch := receive(t, d.Output(), time.Second)
	assert.Len(t, batch, 1)
}

func TestDebouncer_Stop(t *testing.T) {
	d := NewDebouncer(time.Hour)

	d.Add(Event{Path: "/w/x", Trigger: TriggerNewDir})
	d.Stop()
	d.Stop()

	// Adding after stop is ignored
	d.Add(Event{Path: "/w/y", Trigger: TriggerNewDir})

	_, ok := <-d.Output()
	assert.False(t, ok, "output should be closed")
}

func TestTrigger_String(t *testing.T) {
	assert.Equal(t, "RULES_CHANGE", TriggerRules.String())
	assert.Equal(t, "NEW_DIR", TriggerNewDir.String())
	assert.Equal(t, "UNKNOWN", Trigger(42).String())
}
