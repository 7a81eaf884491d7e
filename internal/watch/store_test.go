package watch

import (
	"testing"

	"chalk/internal/object"
)

func openMemStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenStore("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStoreRoundTrip(t *testing.T) {
	s := openMemStore(t)

	runID, err := s.BeginRun("decl int $x = 1")
	if err != nil {
		t.Fatalf("begin run: %v", err)
	}

	events := []Event{
		{Name: "x", Kind: Declare, New: object.NewInteger(1), Line: 1},
		{Name: "x", Kind: Assign, New: object.NewInteger(2), Line: 2},
		{Name: "l", Kind: Swap, New: object.NewList([]object.Value{}),
			Aux: []object.Value{object.NewInteger(0), object.NewInteger(3)}, Line: 3},
	}
	for _, ev := range events {
		if err := s.Record(ev); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	stored, err := s.Events(runID)
	if err != nil {
		t.Fatalf("read events: %v", err)
	}
	if len(stored) != 3 {
		t.Fatalf("expected 3 events, got %d", len(stored))
	}
	for i, ev := range stored {
		if ev.Seq != int64(i+1) {
			t.Errorf("event %d: seq %d, want %d", i, ev.Seq, i+1)
		}
	}
	if stored[1].Name != "x" || stored[1].Kind != Assign || stored[1].Value != "2" {
		t.Errorf("second event wrong: %+v", stored[1])
	}
	if stored[2].Aux != "0,3" {
		t.Errorf("swap aux: got %q, want \"0,3\"", stored[2].Aux)
	}
}

func TestRecordWithoutRun(t *testing.T) {
	s := openMemStore(t)
	if err := s.Record(Event{Name: "x", Kind: Assign}); err == nil {
		t.Fatalf("expected an error recording outside a run")
	}
}

func TestRunsAreIsolated(t *testing.T) {
	s := openMemStore(t)

	first, _ := s.BeginRun("one")
	s.Record(Event{Name: "a", Kind: Declare, New: object.NewNull()})
	second, _ := s.BeginRun("two")
	s.Record(Event{Name: "b", Kind: Declare, New: object.NewNull()})

	evs, err := s.Events(first)
	if err != nil {
		t.Fatalf("read first run: %v", err)
	}
	if len(evs) != 1 || evs[0].Name != "a" {
		t.Errorf("first run events: %+v", evs)
	}
	evs, _ = s.Events(second)
	if len(evs) != 1 || evs[0].Name != "b" {
		t.Errorf("second run events: %+v", evs)
	}
}

func TestRecorderFiltersUntracedNames(t *testing.T) {
	s := openMemStore(t)
	runID, err := s.BeginRun("trace $x")
	if err != nil {
		t.Fatalf("begin run: %v", err)
	}

	w := New()
	w.Mark("x")
	rec := s.Recorder(w)
	rec(Event{Name: "x", Kind: Declare, New: object.NewInteger(1), Line: 1})
	rec(Event{Name: "y", Kind: Declare, New: object.NewInteger(2), Line: 2})

	stored, err := s.Events(runID)
	if err != nil {
		t.Fatalf("read events: %v", err)
	}
	if len(stored) != 1 || stored[0].Name != "x" {
		t.Fatalf("expected only the traced name to persist, got %+v", stored)
	}

	w.MarkAll()
	rec(Event{Name: "y", Kind: Assign, New: object.NewInteger(3), Line: 3})
	stored, err = s.Events(runID)
	if err != nil {
		t.Fatalf("read events: %v", err)
	}
	if len(stored) != 2 || stored[1].Name != "y" {
		t.Fatalf("expected the mark-all event to persist, got %+v", stored)
	}
}

func TestRebindForPostgres(t *testing.T) {
	s := &Store{driver: "postgres"}
	got := s.rebind("INSERT INTO t (a, b) VALUES (?, ?)")
	want := "INSERT INTO t (a, b) VALUES ($1, $2)"
	if got != want {
		t.Errorf("rebind: got %q, want %q", got, want)
	}

	s.driver = "sqlite3"
	q := "SELECT * FROM t WHERE a = ?"
	if got := s.rebind(q); got != q {
		t.Errorf("sqlite rebind should be identity, got %q", got)
	}
}
