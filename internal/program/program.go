package program

import (
	"chalk/internal/ast"
)

// Instruction is one executable node of a compiled program. Instructions
// are built once per source location and may run many times; they own
// their children and expressions but never the environment they run
// against.
type Instruction interface {
	Pos() int
	instruction()
}

type Sequence struct {
	Items []Instruction
}

func (s *Sequence) Pos() int {
	if len(s.Items) > 0 {
		return s.Items[0].Pos()
	}
	return 0
}
func (s *Sequence) instruction() {}

// DeclVar is one name within a declaration line. A nil Init leaves the
// cell holding its type default, still logically unassigned.
type DeclVar struct {
	Name string
	Init ast.Expression
}

type Declaration struct {
	Line      int
	Type      string // int, float, bool, list or auto
	Vars      []DeclVar
	Const     bool
	Safe      bool
	Overwrite bool
	Global    bool
	Implicit  bool // synthesized for an assignment to an unknown name
}

func (d *Declaration) Pos() int     { return d.Line }
func (d *Declaration) instruction() {}

// Assignment writes through a bare name or an index chain rooted at one.
type Assignment struct {
	Line  int
	Name  string
	Index []ast.Expression // empty for a bare-name target
	Value ast.Expression
}

func (a *Assignment) Pos() int     { return a.Line }
func (a *Assignment) instruction() {}

type WhileLoop struct {
	Line int
	Cond ast.Expression
	Body *Sequence
}

func (w *WhileLoop) Pos() int     { return w.Line }
func (w *WhileLoop) instruction() {}

type ForLoop struct {
	Line  int
	Start Instruction
	Cond  ast.Expression
	Step  Instruction
	Body  *Sequence
}

func (f *ForLoop) Pos() int     { return f.Line }
func (f *ForLoop) instruction() {}

type IfCondition struct {
	Line int
	Cond ast.Expression
	Then *Sequence
	Else *Sequence // nil when there is no else branch
}

func (i *IfCondition) Pos() int     { return i.Line }
func (i *IfCondition) instruction() {}

type VoidCall struct {
	Line int
	Call *ast.CallExpression
}

func (v *VoidCall) Pos() int     { return v.Line }
func (v *VoidCall) instruction() {}

type FunctionDef struct {
	Line int
	Fn   *Function
}

func (f *FunctionDef) Pos() int     { return f.Line }
func (f *FunctionDef) instruction() {}

// Trace marks variables whose mutations the watch subsystem should
// persist for this run.
type Trace struct {
	Line  int
	Names []string
}

func (t *Trace) Pos() int     { return t.Line }
func (t *Trace) instruction() {}

// Function is a user-defined function: compiled once by a FunctionDef,
// consulted by every call. Active counts live invocations so re-entry
// without the recursive flag is caught.
type Function struct {
	Name       string
	ReturnType string // int, float, bool, list or auto
	Params     []string
	Body       *Sequence
	Recursive  bool
	Active     int
}

// Program is a compiled top-level sequence plus the settings collected
// during source normalization.
type Program struct {
	Body     *Sequence
	Settings map[string]string
}
