// Package watch delivers variable mutation events to a single observer.
// The engine reports every in-place mutation after it happens; the
// trace statement opts names into persistence, which the store-side
// recorder filters on.
package watch

import (
	"log/slog"

	"chalk/internal/object"
)

type Change string

const (
	Declare     Change = "declare"
	Assign      Change = "assign"
	IndexAssign Change = "index-assign"
	Append      Change = "append"
	Insert      Change = "insert"
	Remove      Change = "remove"
	Swap        Change = "swap"
	Unbind      Change = "unbind"
)

// Event describes one completed mutation. Affected is the cell that
// changed, New its post-change value (nil after an unbind) and Aux the
// kind-specific extras: the index written, the position inserted at or
// removed from, the two positions swapped.
type Event struct {
	Name     string
	Affected object.Value
	Kind     Change
	New      object.Value
	Aux      []object.Value
	Line     int
}

type Observer func(Event)

// Watcher hands mutation events to the observer. The freeze counter
// suppresses delivery while a compound mutation is mid-flight so it
// surfaces as a single event; freezes nest and never block the mutation
// itself. The marked set records trace-opted names for consumers that
// persist events; it does not gate delivery.
type Watcher struct {
	observer Observer
	marked   map[string]bool
	all      bool
	frozen   int
}

func New() *Watcher {
	return &Watcher{marked: map[string]bool{}}
}

// SetObserver installs the callback. A nil observer turns every Notify
// into a no-op.
func (w *Watcher) SetObserver(fn Observer) {
	w.observer = fn
}

// Mark adds name to the traced set.
func (w *Watcher) Mark(name string) {
	w.marked[name] = true
	slog.Debug("tracing variable", slog.String("name", name))
}

// MarkAll traces every name, marked or not.
func (w *Watcher) MarkAll() {
	w.all = true
}

// Marked reports whether name is opted into tracing.
func (w *Watcher) Marked(name string) bool {
	return w.all || w.marked[name]
}

func (w *Watcher) Freeze() {
	w.frozen++
}

func (w *Watcher) Unfreeze() {
	if w.frozen > 0 {
		w.frozen--
	}
}

func (w *Watcher) Frozen() bool {
	return w.frozen > 0
}

// Notify reports one mutation. Events raised while frozen, or without
// an observer installed, are dropped; name filtering is left to the
// consumer.
func (w *Watcher) Notify(ev Event) {
	if w.frozen > 0 || w.observer == nil {
		return
	}
	w.observer(ev)
}
