package watch

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"chalk/internal/object"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Store persists trace events so a run can be inspected after the
// fact. Any database/sql driver works; the three above are compiled
// in. The DDL sticks to BIGINT and TEXT, which all three accept, and
// run ids are generated here rather than by the database.
type Store struct {
	db     *sql.DB
	driver string
	runID  int64
	seq    int64
}

var ddl = []string{
	`CREATE TABLE IF NOT EXISTS trace_runs (
		id BIGINT PRIMARY KEY,
		started_at TEXT NOT NULL,
		source TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS trace_events (
		run_id BIGINT NOT NULL,
		seq BIGINT NOT NULL,
		at TEXT NOT NULL,
		line BIGINT NOT NULL,
		name TEXT NOT NULL,
		kind TEXT NOT NULL,
		value TEXT NOT NULL,
		aux TEXT NOT NULL,
		PRIMARY KEY (run_id, seq)
	)`,
}

func OpenStore(driver, dsn string) (*Store, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open trace store: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping trace store: %w", err)
	}

	s := &Store{db: db, driver: driver}
	for _, stmt := range ddl {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("create trace schema: %w", err)
		}
	}
	return s, nil
}

// BeginRun opens a new run and returns its id. Subsequent Record calls
// attach to it.
func (s *Store) BeginRun(source string) (int64, error) {
	id := time.Now().UnixNano()
	if id <= s.runID {
		id = s.runID + 1
	}
	_, err := s.db.Exec(
		s.rebind(`INSERT INTO trace_runs (id, started_at, source) VALUES (?, ?, ?)`),
		id, time.Now().UTC().Format(time.RFC3339Nano), source)
	if err != nil {
		return 0, fmt.Errorf("begin trace run: %w", err)
	}
	s.runID = id
	s.seq = 0
	return id, nil
}

// Record appends one event to the open run.
func (s *Store) Record(ev Event) error {
	if s.runID == 0 {
		return fmt.Errorf("trace store has no open run")
	}
	s.seq++
	_, err := s.db.Exec(
		s.rebind(`INSERT INTO trace_events (run_id, seq, at, line, name, kind, value, aux)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		s.runID, s.seq, time.Now().UTC().Format(time.RFC3339Nano),
		ev.Line, ev.Name, string(ev.Kind), renderValue(ev.New), renderAux(ev.Aux))
	if err != nil {
		return fmt.Errorf("record trace event: %w", err)
	}
	return nil
}

// StoredEvent is one persisted row, values in their rendered text form.
type StoredEvent struct {
	RunID int64
	Seq   int64
	At    string
	Line  int
	Name  string
	Kind  Change
	Value string
	Aux   string
}

// Events returns the persisted events of a run in recording order.
func (s *Store) Events(runID int64) ([]StoredEvent, error) {
	rows, err := s.db.Query(
		s.rebind(`SELECT run_id, seq, at, line, name, kind, value, aux
			FROM trace_events WHERE run_id = ? ORDER BY seq`), runID)
	if err != nil {
		return nil, fmt.Errorf("read trace events: %w", err)
	}
	defer rows.Close()

	var out []StoredEvent
	for rows.Next() {
		var ev StoredEvent
		var kind string
		if err := rows.Scan(&ev.RunID, &ev.Seq, &ev.At, &ev.Line, &ev.Name, &kind, &ev.Value, &ev.Aux); err != nil {
			return nil, fmt.Errorf("scan trace event: %w", err)
		}
		ev.Kind = Change(kind)
		out = append(out, ev)
	}
	return out, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Recorder adapts the store into an observer. Only events for names
// traced on w persist; the rest are dropped here so the observer side
// stays unfiltered. Write failures are logged and the event dropped;
// tracing never fails the run.
func (s *Store) Recorder(w *Watcher) Observer {
	return func(ev Event) {
		if !w.Marked(ev.Name) {
			return
		}
		if err := s.Record(ev); err != nil {
			slog.Error("trace event dropped", slog.String("error", err.Error()))
		}
	}
}

// rebind rewrites ? placeholders to the $N form postgres expects.
func (s *Store) rebind(q string) string {
	if s.driver != "postgres" {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func renderValue(v object.Value) string {
	if v == nil {
		return ""
	}
	return v.Inspect()
}

func renderAux(aux []object.Value) string {
	parts := make([]string, len(aux))
	for i, v := range aux {
		parts[i] = v.Inspect()
	}
	return strings.Join(parts, ",")
}
