// Package interp executes compiled programs: a synchronous, depth-first
// walk of the instruction tree against one environment, with control
// flow threaded back as explicit signals rather than unwinding.
package interp

import (
	"context"
	"io"
	"log/slog"
	"os"

	"chalk/internal/ast"
	"chalk/internal/fault"
	"chalk/internal/object"
	"chalk/internal/program"
	"chalk/internal/source"
	"chalk/internal/watch"
)

const DefaultMaxCallDepth = 1000

type Options struct {
	Out          io.Writer
	Env          *object.Environment
	Registry     *Registry
	Watcher      *watch.Watcher
	MaxCallDepth int

	// Redefine lets a function definition replace an earlier one with
	// the same name. The REPL turns this on; in a program it is an
	// error.
	Redefine bool
}

// Interp owns one run at a time. Reusing it across runs (the REPL
// does) keeps the environment and registry alive between them.
type Interp struct {
	ctx      context.Context
	env      *object.Environment
	reg      *Registry
	watcher  *watch.Watcher
	out      io.Writer
	maxDepth int
	depth    int
	redefine bool
}

func New(opts Options) *Interp {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Env == nil {
		opts.Env = object.NewEnvironment()
	}
	if opts.Watcher == nil {
		opts.Watcher = watch.New()
	}
	if opts.Registry == nil {
		opts.Registry = NewRegistry()
		installNatives(opts.Registry)
	}
	if opts.MaxCallDepth <= 0 {
		opts.MaxCallDepth = DefaultMaxCallDepth
	}
	return &Interp{
		env:      opts.Env,
		reg:      opts.Registry,
		watcher:  opts.Watcher,
		out:      opts.Out,
		maxDepth: opts.MaxCallDepth,
		redefine: opts.Redefine,
	}
}

func (it *Interp) Env() *object.Environment { return it.env }
func (it *Interp) Registry() *Registry      { return it.reg }
func (it *Interp) Watcher() *watch.Watcher  { return it.watcher }

// Run executes the program's top-level sequence. A top-level return
// becomes the result; falling off the end yields null. All faults are
// fatal to the run.
func (it *Interp) Run(ctx context.Context, prog *program.Program) (object.Value, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	it.ctx = ctx

	settings := source.Settings(prog.Settings)
	if settings.Bool("trace-all") || settings.Bool("trace") {
		it.watcher.MarkAll()
	}
	slog.Debug("run starting", slog.Int("instructions", len(prog.Body.Items)))

	ctl, err := it.execSequence(prog.Body)
	if err != nil {
		return nil, err
	}
	switch ctl.sig {
	case SigReturn:
		return ctl.val, nil
	case SigBreak, SigContinue:
		return nil, fault.Errorf(fault.Internal, 0, "%s signal escaped the program", ctl.sig)
	}
	return object.NewNull(), nil
}

// Eval evaluates one expression against the current environment, no
// instructions involved. The REPL uses this for bare expression input.
func (it *Interp) Eval(ctx context.Context, expr ast.Expression) (object.Value, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	it.ctx = ctx
	return it.eval(expr)
}

func (it *Interp) interrupted(line int) error {
	if it.ctx != nil && it.ctx.Err() != nil {
		return fault.New(fault.Interrupted, line, "run canceled")
	}
	return nil
}

func (it *Interp) exec(ins program.Instruction) (control, error) {
	switch node := ins.(type) {
	case *program.Sequence:
		return it.execSequence(node)
	case *program.Declaration:
		return it.execDeclaration(node)
	case *program.Assignment:
		return it.execAssignment(node)
	case *program.WhileLoop:
		return it.execWhile(node)
	case *program.ForLoop:
		return it.execFor(node)
	case *program.IfCondition:
		return it.execIf(node)
	case *program.VoidCall:
		return it.execVoidCall(node)
	case *program.FunctionDef:
		return it.execFunctionDef(node)
	case *program.Trace:
		return it.execTrace(node)
	}
	return normal, fault.Errorf(fault.Internal, ins.Pos(), "unknown instruction %T", ins)
}

// execSequence runs instructions in order, forwarding the first
// non-normal signal to the caller. Cancellation is honored between
// instructions, never inside one expression.
func (it *Interp) execSequence(seq *program.Sequence) (control, error) {
	for _, ins := range seq.Items {
		if err := it.interrupted(ins.Pos()); err != nil {
			return normal, err
		}
		ctl, err := it.exec(ins)
		if err != nil {
			return normal, err
		}
		if ctl.sig != SigNormal {
			return ctl, nil
		}
	}
	return normal, nil
}

func (it *Interp) execDeclaration(d *program.Declaration) (control, error) {
	for _, v := range d.Vars {
		if err := it.declareOne(d, v); err != nil {
			return normal, err
		}
	}
	return normal, nil
}

func (it *Interp) declareOne(d *program.Declaration, v program.DeclVar) error {
	exists := it.env.Visible(v.Name)
	switch {
	case exists && d.Safe:
		// Skip silently; the initializer is deliberately not evaluated.
		return nil
	case exists && !d.Overwrite:
		return fault.Errorf(fault.Name, d.Line, "$%s is already declared", v.Name)
	}

	var val object.Value
	if v.Init != nil {
		got, err := it.eval(v.Init)
		if err != nil {
			return err
		}
		if d.Type != "auto" {
			want, _ := object.KindOfType(d.Type)
			if got.Kind() != want {
				return fault.Errorf(fault.Type, d.Line,
					"cannot initialize %s $%s with %s", d.Type, v.Name, got.Kind())
			}
		}
		if d.Const && !constEligible(v.Init, got) {
			return fault.Errorf(fault.InvalidClassifier, d.Line,
				"const $%s needs a const initializer", v.Name)
		}
		val = object.Copy(got)
	} else {
		want, ok := object.KindOfType(d.Type)
		if !ok {
			return fault.Errorf(fault.Internal, d.Line, "unknown type %s", d.Type)
		}
		val = object.Unassigned(want)
	}
	if d.Const {
		val.Meta().Const = true
	}

	switch {
	case exists && d.Overwrite:
		it.env.Rebind(v.Name, val)
	case d.Global:
		it.env.BindGlobal(v.Name, val)
	default:
		it.env.Bind(v.Name, val)
	}

	it.notify(watch.Event{Name: v.Name, Affected: val, Kind: watch.Declare, New: val, Line: d.Line})
	if d.Implicit {
		// A synthesized declaration is a declaration and an assignment
		// in one; observers see both.
		it.notify(watch.Event{Name: v.Name, Affected: val, Kind: watch.Assign, New: val, Line: d.Line})
	}
	return nil
}

// constEligible reports whether an initializer may seed a const
// binding: anything freshly computed qualifies, a reference to an
// existing cell only when that cell is already const.
func constEligible(expr ast.Expression, val object.Value) bool {
	switch expr.(type) {
	case *ast.VarRef, *ast.IndexExpression:
		return val.Meta().Const
	}
	return true
}

func (it *Interp) execAssignment(a *program.Assignment) (control, error) {
	base, ok := it.env.Lookup(a.Name)
	if !ok {
		return normal, fault.Errorf(fault.Name, a.Line, "undeclared variable $%s", a.Name)
	}

	if len(a.Index) == 0 {
		return normal, it.assignVar(a, base)
	}
	return normal, it.assignElement(a, base)
}

func (it *Interp) assignVar(a *program.Assignment, target object.Value) error {
	if target.Meta().Const {
		return fault.Errorf(fault.InvalidClassifier, a.Line, "$%s is const", a.Name)
	}
	rhs, err := it.eval(a.Value)
	if err != nil {
		return err
	}
	// A binding's kind is immutable; mismatches fail before anything
	// is written.
	if rhs.Kind() != target.Kind() {
		return fault.Errorf(fault.Type, a.Line,
			"cannot assign %s to %s $%s", rhs.Kind(), target.Kind(), a.Name)
	}
	object.WriteInto(target, rhs)
	it.notify(watch.Event{Name: a.Name, Affected: target, Kind: watch.Assign, New: target, Line: a.Line})
	return nil
}

func (it *Interp) assignElement(a *program.Assignment, base object.Value) error {
	if !base.Meta().Assigned {
		return fault.Errorf(fault.Unassigned, a.Line, "$%s has not been assigned", a.Name)
	}

	cur := base
	aux := make([]object.Value, 0, len(a.Index))
	var list *object.List
	var slot int
	for hop, idxExpr := range a.Index {
		l, ok := cur.(*object.List)
		if !ok {
			return fault.Errorf(fault.Type, a.Line, "cannot index %s", cur.Kind())
		}
		if l.Meta().Const {
			return fault.Errorf(fault.InvalidClassifier, a.Line, "$%s is const", a.Name)
		}
		i, err := it.indexInto(idxExpr, len(l.Elements))
		if err != nil {
			return err
		}
		aux = append(aux, object.NewInteger(int64(i)))
		if hop == len(a.Index)-1 {
			list, slot = l, i
			break
		}
		cur = l.Elements[i]
	}

	elem := list.Elements[slot]
	if elem.Meta().Const {
		return fault.Errorf(fault.InvalidClassifier, a.Line,
			"element %d of $%s is const", slot, a.Name)
	}

	rhs, err := it.eval(a.Value)
	if err != nil {
		return err
	}
	if rhs.Kind() != elem.Kind() {
		return fault.Errorf(fault.Type, a.Line,
			"cannot assign %s to %s element of $%s", rhs.Kind(), elem.Kind(), a.Name)
	}
	object.WriteInto(elem, rhs)
	it.notify(watch.Event{Name: a.Name, Affected: elem, Kind: watch.IndexAssign, New: elem, Aux: aux, Line: a.Line})
	return nil
}

func (it *Interp) evalCondition(expr ast.Expression, line int) (bool, error) {
	v, err := it.eval(expr)
	if err != nil {
		return false, err
	}
	b, ok := v.(*object.Boolean)
	if !ok {
		return false, fault.Errorf(fault.Type, line, "condition must be bool, got %s", v.Kind())
	}
	return b.Value, nil
}

func (it *Interp) execWhile(loop *program.WhileLoop) (control, error) {
	entry := it.env.Depth()
	defer it.env.UnwindTo(entry)

	for {
		if err := it.interrupted(loop.Line); err != nil {
			return normal, err
		}
		cond, err := it.evalCondition(loop.Cond, loop.Line)
		if err != nil {
			return normal, err
		}
		if !cond {
			return normal, nil
		}

		it.env.EnterBlock()
		ctl, err := it.execSequence(loop.Body)
		it.env.UnwindTo(entry)
		if err != nil {
			return normal, err
		}
		switch ctl.sig {
		case SigBreak:
			return normal, nil
		case SigReturn:
			return ctl, nil
		}
	}
}

func (it *Interp) execFor(loop *program.ForLoop) (control, error) {
	entry := it.env.Depth()
	defer it.env.UnwindTo(entry)

	// The start clause runs once, in a frame the loop owns; its
	// variable stays visible to the condition, step and body.
	it.env.EnterBlock()
	ctl, err := it.exec(loop.Start)
	if err != nil {
		return normal, err
	}
	if ctl.sig != SigNormal {
		return normal, fault.Errorf(fault.Internal, loop.Line, "%s signal from for start clause", ctl.sig)
	}
	header := it.env.Depth()

	for {
		if err := it.interrupted(loop.Line); err != nil {
			return normal, err
		}
		cond, err := it.evalCondition(loop.Cond, loop.Line)
		if err != nil {
			return normal, err
		}
		if !cond {
			return normal, nil
		}

		it.env.EnterBlock()
		ctl, err := it.execSequence(loop.Body)
		it.env.UnwindTo(header)
		if err != nil {
			return normal, err
		}
		switch ctl.sig {
		case SigBreak:
			return normal, nil
		case SigReturn:
			return ctl, nil
		}

		// Continue still runs the step.
		ctl, err = it.exec(loop.Step)
		if err != nil {
			return normal, err
		}
		if ctl.sig != SigNormal {
			return normal, fault.Errorf(fault.Internal, loop.Line, "%s signal from for step clause", ctl.sig)
		}
	}
}

func (it *Interp) execIf(cond *program.IfCondition) (control, error) {
	take, err := it.evalCondition(cond.Cond, cond.Line)
	if err != nil {
		return normal, err
	}

	branch := cond.Then
	if !take {
		branch = cond.Else
	}
	if branch == nil {
		return normal, nil
	}

	entry := it.env.Depth()
	defer it.env.UnwindTo(entry)
	it.env.EnterBlock()
	return it.execSequence(branch)
}

func (it *Interp) execVoidCall(node *program.VoidCall) (control, error) {
	// break, continue and return are statements wearing call syntax;
	// they never reach the registry.
	switch node.Call.Name {
	case "break":
		return control{sig: SigBreak}, nil
	case "continue":
		return control{sig: SigContinue}, nil
	case "return":
		if len(node.Call.Arguments) == 0 {
			return control{sig: SigReturn, val: object.NewNull()}, nil
		}
		v, err := it.eval(node.Call.Arguments[0])
		if err != nil {
			return normal, err
		}
		return control{sig: SigReturn, val: v}, nil
	}

	if _, err := it.evalCall(node.Call); err != nil {
		return normal, err
	}
	return normal, nil
}

func (it *Interp) execFunctionDef(def *program.FunctionDef) (control, error) {
	err := it.reg.Define(def.Fn)
	if err != nil && it.redefine {
		err = it.reg.Redefine(def.Fn)
	}
	if err != nil {
		return normal, fault.Errorf(fault.Name, def.Line, "%s", err)
	}
	slog.Debug("function defined",
		slog.String("name", def.Fn.Name),
		slog.Int("params", len(def.Fn.Params)),
		slog.Bool("recursive", def.Fn.Recursive))
	return normal, nil
}

func (it *Interp) execTrace(tr *program.Trace) (control, error) {
	for _, name := range tr.Names {
		it.watcher.Mark(name)
	}
	return normal, nil
}

// evalCall resolves a callee, builtins first, then user functions.
func (it *Interp) evalCall(call *ast.CallExpression) (object.Value, error) {
	if native, ok := it.reg.Native(call.Name); ok {
		return it.callNative(native, call)
	}
	if fn, ok := it.reg.Function(call.Name); ok {
		return it.callFunction(fn, call)
	}
	return nil, fault.Errorf(fault.Name, call.Pos(), "unknown function %s", call.Name)
}

func (it *Interp) callNative(n *Native, call *ast.CallExpression) (object.Value, error) {
	if err := n.checkArity(len(call.Arguments), call.Pos()); err != nil {
		return nil, err
	}
	args := make([]Thunk, len(call.Arguments))
	for i, a := range call.Arguments {
		args[i] = Thunk{expr: a, it: it}
	}
	cc := CallContext{Ctx: it.ctx, Out: it.out, Env: it.env, Watcher: it.watcher, Line: call.Pos()}
	return n.Fn(cc, args)
}

func (it *Interp) callFunction(fn *program.Function, call *ast.CallExpression) (object.Value, error) {
	line := call.Pos()
	if len(call.Arguments) != len(fn.Params) {
		return nil, fault.Errorf(fault.Type, line,
			"%s expects %d argument(s), got %d", fn.Name, len(fn.Params), len(call.Arguments))
	}
	if fn.Active > 0 && !fn.Recursive {
		return nil, fault.Errorf(fault.Recursion, line, "%s is not marked recursive", fn.Name)
	}
	if it.depth >= it.maxDepth {
		return nil, fault.Errorf(fault.Recursion, line, "call depth exceeded %d", it.maxDepth)
	}

	// Arguments evaluate eagerly, in the caller's environment.
	args := make([]object.Value, len(call.Arguments))
	for i, a := range call.Arguments {
		v, err := it.eval(a)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}

	fn.Active++
	it.depth++
	it.env.EnterScope()
	defer func() {
		it.env.ExitScope()
		it.depth--
		fn.Active--
	}()

	for i, name := range fn.Params {
		it.env.Bind(name, object.Copy(args[i]))
	}

	ctl, err := it.execSequence(fn.Body)
	if err != nil {
		return nil, err
	}

	ret := object.Value(object.NewNull())
	switch ctl.sig {
	case SigReturn:
		ret = ctl.val
	case SigBreak, SigContinue:
		return nil, fault.Errorf(fault.Internal, line, "%s signal escaped function %s", ctl.sig, fn.Name)
	}

	if fn.ReturnType != "auto" {
		want, _ := object.KindOfType(fn.ReturnType)
		if ret.Kind() != want {
			return nil, fault.Errorf(fault.Type, line,
				"%s must return %s, got %s", fn.Name, fn.ReturnType, ret.Kind())
		}
	}
	return ret, nil
}

func (it *Interp) notify(ev watch.Event) {
	it.watcher.Notify(ev)
}
