package object

import (
	"log/slog"
)

// frame is one block-level name table.
type frame struct {
	bindings map[string]Value
}

func newFrame() *frame {
	return &frame{bindings: make(map[string]Value)}
}

// mainScope is the frame stack of one program or function invocation.
type mainScope struct {
	frames []*frame
}

// Environment is a stack of main scopes, one per active invocation,
// over one flat global frame. Name lookup never crosses a main-scope
// boundary: callers see their own frames and the globals, nothing else.
//
// The environment is owned by exactly one interpreter run at a time and
// is not safe for concurrent use; the engine gates all access.
type Environment struct {
	scopes []*mainScope
	global *frame
}

func NewEnvironment() *Environment {
	return &Environment{
		scopes: []*mainScope{{frames: []*frame{newFrame()}}},
		global: newFrame(),
	}
}

func (e *Environment) current() *mainScope {
	return e.scopes[len(e.scopes)-1]
}

// EnterScope pushes a fresh main scope for a function invocation.
func (e *Environment) EnterScope() {
	e.scopes = append(e.scopes, &mainScope{frames: []*frame{newFrame()}})
	slog.Debug("enter scope", slog.Int("scopes", len(e.scopes)))
}

// ExitScope pops the current main scope. The base scope is never popped.
func (e *Environment) ExitScope() {
	if len(e.scopes) > 1 {
		e.scopes = e.scopes[:len(e.scopes)-1]
	}
	slog.Debug("exit scope", slog.Int("scopes", len(e.scopes)))
}

// EnterBlock pushes one local frame in the current main scope.
func (e *Environment) EnterBlock() {
	ms := e.current()
	ms.frames = append(ms.frames, newFrame())
}

// ExitBlock pops one local frame. The base frame is never popped.
func (e *Environment) ExitBlock() {
	ms := e.current()
	if len(ms.frames) > 1 {
		ms.frames = ms.frames[:len(ms.frames)-1]
	}
}

// Depth returns the local frame count of the current main scope. Loops,
// branches and calls record it on entry and restore it with UnwindTo on
// every exit path.
func (e *Environment) Depth() int {
	return len(e.current().frames)
}

// UnwindTo pops local frames until exactly depth remain.
func (e *Environment) UnwindTo(depth int) {
	ms := e.current()
	for len(ms.frames) > depth && len(ms.frames) > 1 {
		ms.frames = ms.frames[:len(ms.frames)-1]
	}
}

// Lookup resolves a name: local frames of the current main scope
// innermost to outermost, then the global frame.
func (e *Environment) Lookup(name string) (Value, bool) {
	ms := e.current()
	for i := len(ms.frames) - 1; i >= 0; i-- {
		if v, ok := ms.frames[i].bindings[name]; ok {
			return v, true
		}
	}
	if v, ok := e.global.bindings[name]; ok {
		return v, true
	}
	return nil, false
}

// Visible reports whether a plain declaration of name would collide
// with a binding the current scope can already see.
func (e *Environment) Visible(name string) bool {
	_, ok := e.Lookup(name)
	return ok
}

// Bind inserts into the innermost local frame, stamping the cell with
// its name for diagnostics.
func (e *Environment) Bind(name string, v Value) {
	v.Meta().Name = name
	ms := e.current()
	ms.frames[len(ms.frames)-1].bindings[name] = v
	slog.Debug("bind",
		slog.String("name", name),
		slog.String("kind", string(v.Kind())))
}

// BindGlobal inserts into the global frame.
func (e *Environment) BindGlobal(name string, v Value) {
	v.Meta().Name = name
	e.global.bindings[name] = v
	slog.Debug("bind global",
		slog.String("name", name),
		slog.String("kind", string(v.Kind())))
}

// Rebind replaces the binding in the frame that owns name, or inserts
// into the innermost frame when nothing owns it yet. Overwrite
// declarations go through here.
func (e *Environment) Rebind(name string, v Value) {
	v.Meta().Name = name
	ms := e.current()
	for i := len(ms.frames) - 1; i >= 0; i-- {
		if _, ok := ms.frames[i].bindings[name]; ok {
			ms.frames[i].bindings[name] = v
			return
		}
	}
	if _, ok := e.global.bindings[name]; ok {
		e.global.bindings[name] = v
		return
	}
	ms.frames[len(ms.frames)-1].bindings[name] = v
}

// Unbind removes name from the frame that owns it, reporting whether it
// existed. Cells shared elsewhere (list elements, aliased lists) live on.
func (e *Environment) Unbind(name string) bool {
	ms := e.current()
	for i := len(ms.frames) - 1; i >= 0; i-- {
		if _, ok := ms.frames[i].bindings[name]; ok {
			delete(ms.frames[i].bindings, name)
			return true
		}
	}
	if _, ok := e.global.bindings[name]; ok {
		delete(e.global.bindings, name)
		return true
	}
	return false
}
