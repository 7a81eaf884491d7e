package object

import (
	"bytes"
	"strconv"
	"strings"
)

type Kind string

const (
	INTEGER Kind = "int"
	FLOAT   Kind = "float"
	BOOLEAN Kind = "bool"
	LIST    Kind = "list"
	NULL    Kind = "null"
)

// KindOfType maps a declaration type word to a kind. auto is absent on
// purpose: its kind comes from the initializer.
func KindOfType(word string) (Kind, bool) {
	switch word {
	case "int":
		return INTEGER, true
	case "float":
		return FLOAT, true
	case "bool":
		return BOOLEAN, true
	case "list":
		return LIST, true
	}
	return "", false
}

// Attrs is the bookkeeping every cell carries: whether it has been given
// real content yet, whether it is const, and the name it was last bound
// under (diagnostic only; anonymous cells such as list elements have none).
type Attrs struct {
	Assigned bool
	Const    bool
	Name     string
}

// Value is a mutable cell. Bindings and list slots hold pointers to
// these structs; writing a payload in place means every holder of the
// cell observes the update.
type Value interface {
	Kind() Kind
	Inspect() string
	Meta() *Attrs
}

type Integer struct {
	Attrs
	Value int64
}

func (i *Integer) Kind() Kind      { return INTEGER }
func (i *Integer) Inspect() string { return strconv.FormatInt(i.Value, 10) }
func (i *Integer) Meta() *Attrs    { return &i.Attrs }

type Float struct {
	Attrs
	Value float64
}

func (f *Float) Kind() Kind { return FLOAT }
func (f *Float) Inspect() string {
	s := strconv.FormatFloat(f.Value, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eIN") {
		s += ".0"
	}
	return s
}
func (f *Float) Meta() *Attrs { return &f.Attrs }

type Boolean struct {
	Attrs
	Value bool
}

func (b *Boolean) Kind() Kind      { return BOOLEAN }
func (b *Boolean) Inspect() string { return strconv.FormatBool(b.Value) }
func (b *Boolean) Meta() *Attrs    { return &b.Attrs }

type List struct {
	Attrs
	Elements []Value
}

func (l *List) Kind() Kind { return LIST }
func (l *List) Inspect() string {
	var out bytes.Buffer

	elements := []string{}
	for _, e := range l.Elements {
		elements = append(elements, e.Inspect())
	}

	out.WriteString("[")
	out.WriteString(strings.Join(elements, ", "))
	out.WriteString("]")

	return out.String()
}
func (l *List) Meta() *Attrs { return &l.Attrs }

// Null carries Attrs like every other cell so holders never need a nil
// check, but the flags on it are inert.
type Null struct {
	Attrs
}

func (n *Null) Kind() Kind      { return NULL }
func (n *Null) Inspect() string { return "null" }
func (n *Null) Meta() *Attrs    { return &n.Attrs }

func NewInteger(v int64) *Integer {
	return &Integer{Attrs: Attrs{Assigned: true}, Value: v}
}

func NewFloat(v float64) *Float {
	return &Float{Attrs: Attrs{Assigned: true}, Value: v}
}

func NewBoolean(v bool) *Boolean {
	return &Boolean{Attrs: Attrs{Assigned: true}, Value: v}
}

func NewList(elements []Value) *List {
	return &List{Attrs: Attrs{Assigned: true}, Elements: elements}
}

func NewNull() *Null {
	return &Null{Attrs{Assigned: true}}
}

// Unassigned returns the declared-but-unset cell for a kind: the type's
// default payload with the assigned flag off. Reading it before a real
// assignment is an UnassignedValueError at the caller.
func Unassigned(kind Kind) Value {
	switch kind {
	case INTEGER:
		return &Integer{}
	case FLOAT:
		return &Float{}
	case BOOLEAN:
		return &Boolean{}
	case LIST:
		return &List{Elements: []Value{}}
	}
	return &Null{}
}

// Copy returns a fresh cell with the same payload for scalars. A list
// cell is shared, not copied: the cell itself is the value. Null gets a
// fresh cell so attrs never alias.
func Copy(v Value) Value {
	switch v := v.(type) {
	case *Integer:
		return NewInteger(v.Value)
	case *Float:
		return NewFloat(v.Value)
	case *Boolean:
		return NewBoolean(v.Value)
	case *Null:
		return NewNull()
	}
	return v
}

// WriteInto writes src's payload into dst in place and marks dst
// assigned. Kinds must already match; callers check before calling.
func WriteInto(dst, src Value) {
	switch d := dst.(type) {
	case *Integer:
		d.Value = src.(*Integer).Value
	case *Float:
		d.Value = src.(*Float).Value
	case *Boolean:
		d.Value = src.(*Boolean).Value
	case *List:
		d.Elements = src.(*List).Elements
	}
	dst.Meta().Assigned = true
}

// Equal reports deep equality. Callers guarantee both operands share a
// kind; list elements of differing kinds simply compare unequal.
func Equal(a, b Value) bool {
	switch a := a.(type) {
	case *Integer:
		return a.Value == b.(*Integer).Value
	case *Float:
		return a.Value == b.(*Float).Value
	case *Boolean:
		return a.Value == b.(*Boolean).Value
	case *Null:
		return true
	case *List:
		other := b.(*List)
		if len(a.Elements) != len(other.Elements) {
			return false
		}
		for i, el := range a.Elements {
			if el.Kind() != other.Elements[i].Kind() {
				return false
			}
			if !Equal(el, other.Elements[i]) {
				return false
			}
		}
		return true
	}
	return false
}
