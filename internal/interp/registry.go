package interp

import (
	"context"
	"fmt"
	"io"

	"chalk/internal/ast"
	"chalk/internal/fault"
	"chalk/internal/object"
	"chalk/internal/program"
	"chalk/internal/watch"
)

// Thunk is one unevaluated call argument. Natives decide when and
// whether to evaluate; Expr exposes the syntactic form for natives
// like unset that act on the argument itself rather than its value.
type Thunk struct {
	expr ast.Expression
	it   *Interp
}

func (t Thunk) Eval() (object.Value, error) {
	return t.it.eval(t.expr)
}

func (t Thunk) Expr() ast.Expression {
	return t.expr
}

// CallContext is what a native sees of the run.
type CallContext struct {
	Ctx     context.Context
	Out     io.Writer
	Env     *object.Environment
	Watcher *watch.Watcher
	Line    int
}

// Errf builds a fault positioned at the call site.
func (c CallContext) Errf(kind fault.Kind, format string, a ...any) error {
	return fault.Errorf(kind, c.Line, format, a...)
}

// NativeFn is the fixed calling convention for builtins: argument
// thunks in, value out.
type NativeFn func(ctx CallContext, args []Thunk) (object.Value, error)

// Native declares a builtin with its arity. MaxArgs of -1 means
// variadic beyond MinArgs.
type Native struct {
	Name    string
	MinArgs int
	MaxArgs int
	Fn      NativeFn
}

func (n *Native) checkArity(got, line int) error {
	if got < n.MinArgs || (n.MaxArgs >= 0 && got > n.MaxArgs) {
		return fault.Errorf(fault.Type, line, "%s expects %s, got %d", n.Name, n.arity(), got)
	}
	return nil
}

func (n *Native) arity() string {
	switch {
	case n.MaxArgs < 0 && n.MinArgs == 0:
		return "any number of arguments"
	case n.MaxArgs < 0:
		return fmt.Sprintf("at least %d argument(s)", n.MinArgs)
	case n.MinArgs == n.MaxArgs:
		return fmt.Sprintf("%d argument(s)", n.MinArgs)
	}
	return fmt.Sprintf("%d to %d arguments", n.MinArgs, n.MaxArgs)
}

// Registry maps names to callables, native and user-defined. One flat
// namespace; natives win on lookup and cannot be shadowed.
type Registry struct {
	natives map[string]*Native
	fns     map[string]*program.Function
}

func NewRegistry() *Registry {
	return &Registry{
		natives: map[string]*Native{},
		fns:     map[string]*program.Function{},
	}
}

// Register installs a native. The declared shape is validated here, at
// registration, not per call.
func (r *Registry) Register(n *Native) error {
	if err := checkShape(n); err != nil {
		return err
	}
	if _, ok := r.natives[n.Name]; ok {
		return fmt.Errorf("native %s already registered", n.Name)
	}
	if _, ok := r.fns[n.Name]; ok {
		return fmt.Errorf("%s already defined as a function", n.Name)
	}
	r.natives[n.Name] = n
	return nil
}

// Overwrite installs a native, replacing any same-named one.
func (r *Registry) Overwrite(n *Native) error {
	if err := checkShape(n); err != nil {
		return err
	}
	r.natives[n.Name] = n
	return nil
}

func checkShape(n *Native) error {
	if n.Name == "" {
		return fmt.Errorf("native has no name")
	}
	if n.Fn == nil {
		return fmt.Errorf("native %s has no implementation", n.Name)
	}
	if n.MinArgs < 0 || (n.MaxArgs >= 0 && n.MaxArgs < n.MinArgs) {
		return fmt.Errorf("native %s declares an impossible arity", n.Name)
	}
	return nil
}

// Define installs a user function; the name must be free.
func (r *Registry) Define(fn *program.Function) error {
	if _, ok := r.natives[fn.Name]; ok {
		return fmt.Errorf("%s is a builtin", fn.Name)
	}
	if _, ok := r.fns[fn.Name]; ok {
		return fmt.Errorf("function %s already defined", fn.Name)
	}
	r.fns[fn.Name] = fn
	return nil
}

// Redefine replaces a user function. Builtins stay untouchable.
func (r *Registry) Redefine(fn *program.Function) error {
	if _, ok := r.natives[fn.Name]; ok {
		return fmt.Errorf("%s is a builtin", fn.Name)
	}
	r.fns[fn.Name] = fn
	return nil
}

func (r *Registry) Native(name string) (*Native, bool) {
	n, ok := r.natives[name]
	return n, ok
}

func (r *Registry) Function(name string) (*program.Function, bool) {
	fn, ok := r.fns[name]
	return fn, ok
}
