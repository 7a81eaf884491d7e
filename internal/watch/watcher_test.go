package watch

import (
	"testing"

	"chalk/internal/object"
)

func collect(w *Watcher) *[]Event {
	var got []Event
	w.SetObserver(func(ev Event) {
		got = append(got, ev)
	})
	return &got
}

func TestNotifyDeliversEveryName(t *testing.T) {
	w := New()
	got := collect(w)
	w.Mark("count")

	w.Notify(Event{Name: "count", Kind: Assign, New: object.NewInteger(1)})
	w.Notify(Event{Name: "other", Kind: Assign, New: object.NewInteger(2)})

	if len(*got) != 2 {
		t.Fatalf("expected both events regardless of marks, got %d", len(*got))
	}
	if (*got)[1].Name != "other" || (*got)[1].New.Inspect() != "2" {
		t.Errorf("wrong event delivered: %+v", (*got)[1])
	}
}

func TestMarkedSetTracksNamesAndAll(t *testing.T) {
	w := New()
	w.Mark("count")

	if !w.Marked("count") {
		t.Errorf("marked name not reported as traced")
	}
	if w.Marked("other") {
		t.Errorf("unmarked name reported as traced")
	}
	w.MarkAll()
	if !w.Marked("other") {
		t.Errorf("mark-all did not cover unmarked names")
	}
}

func TestFreezeSuppressesAndNests(t *testing.T) {
	w := New()
	got := collect(w)

	w.Freeze()
	w.Freeze()
	w.Notify(Event{Name: "x", Kind: Assign})
	w.Unfreeze()
	w.Notify(Event{Name: "x", Kind: Assign})
	w.Unfreeze()
	w.Notify(Event{Name: "x", Kind: Assign})

	if len(*got) != 1 {
		t.Fatalf("expected only the post-unfreeze event, got %d", len(*got))
	}
	if w.Frozen() {
		t.Errorf("watcher still frozen after balanced unfreezes")
	}
}

func TestUnbalancedUnfreezeClamps(t *testing.T) {
	w := New()
	got := collect(w)

	w.Unfreeze()
	w.Freeze()
	w.Unfreeze()
	w.Notify(Event{Name: "x", Kind: Assign})

	if len(*got) != 1 {
		t.Errorf("stray unfreeze should not leave the watcher frozen")
	}
}

func TestNilObserverIsNoOp(t *testing.T) {
	w := New()
	w.Notify(Event{Name: "x", Kind: Assign}) // must not panic
}
