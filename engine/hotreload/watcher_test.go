package hotreload

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeWatcher replays a fixed list of records.
type fakeWatcher struct {
	events []Event
	polls  int
}

func (f *fakeWatcher) Poll() { f.polls++ }

func (f *fakeWatcher) TryRecv() (Event, bool) {
	if len(f.events) == 0 {
		return Event{}, false
	}
	ev := f.events[0]
	f.events = f.events[1:]
	return ev, true
}

func (f *fakeWatcher) Close() error { return nil }

func TestEventActionable(t *testing.T) {
	assert.True(t, Event{Path: "/s/ex01.wgsl", Kind: KindModify}.Actionable(".wgsl"))
	assert.True(t, Event{Path: "/s/EX01.WGSL", Kind: KindModify}.Actionable(".wgsl"))
	assert.False(t, Event{Path: "/s/ex01.wgsl", Kind: KindCreate}.Actionable(".wgsl"))
	assert.False(t, Event{Path: "/s/ex01.wgsl", Kind: KindRemove}.Actionable(".wgsl"))
	assert.False(t, Event{Path: "/s/ex01.wgsl.swp", Kind: KindModify}.Actionable(".wgsl"))
	assert.False(t, Event{Path: "/s/notes.txt", Kind: KindModify}.Actionable(".wgsl"))
}

func TestDrainCoalescesPerFile(t *testing.T) {
	boom := errors.New("boom")
	w := &fakeWatcher{events: []Event{
		{Path: "b.wgsl", Kind: KindModify},
		{Path: "a.wgsl", Kind: KindModify},
		{Path: "b.wgsl", Kind: KindModify},
		{Path: "c.wgsl", Kind: KindCreate},
		{Kind: KindError, Err: boom},
		{Path: "a.txt", Kind: KindModify},
		{Path: "a.wgsl", Kind: KindModify},
	}}

	paths, errs := Drain(w, ".wgsl")
	assert.Equal(t, []string{"b.wgsl", "a.wgsl"}, paths)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], boom)
	assert.Equal(t, 1, w.polls)

	paths, errs = Drain(w, ".wgsl")
	assert.Empty(t, paths)
	assert.Empty(t, errs)
}

func TestQueueOverflowReportsOnce(t *testing.T) {
	q := newQueue(2)
	q.push(Event{Path: "1", Kind: KindModify})
	q.push(Event{Path: "2", Kind: KindModify})
	q.push(Event{Path: "3", Kind: KindModify})
	q.push(Event{Path: "4", Kind: KindModify})

	// No room yet: the overflow count is kept.
	q.flushOverflow()

	ev, ok := q.tryRecv()
	require.True(t, ok)
	assert.Equal(t, "1", ev.Path)

	q.flushOverflow()
	ev, ok = q.tryRecv()
	require.True(t, ok)
	assert.Equal(t, "2", ev.Path)
	ev, ok = q.tryRecv()
	require.True(t, ok)
	assert.Equal(t, KindError, ev.Kind)
	assert.ErrorIs(t, ev.Err, ErrOverflow)
	assert.Contains(t, ev.Err.Error(), "2 records dropped")

	q.flushOverflow()
	_, ok = q.tryRecv()
	assert.False(t, ok)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "modify", KindModify.String())
	assert.Equal(t, "error", KindError.String())
	assert.Equal(t, "unknown", Kind(42).String())
}
