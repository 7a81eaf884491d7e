package interp

import "chalk/internal/object"

// Signal is the control outcome of one executed instruction. Break and
// Continue are consumed by the nearest enclosing loop, Return by the
// nearest call boundary; one escaping past that is an internal fault.
type Signal int

const (
	SigNormal Signal = iota
	SigBreak
	SigContinue
	SigReturn
)

func (s Signal) String() string {
	switch s {
	case SigNormal:
		return "normal"
	case SigBreak:
		return "break"
	case SigContinue:
		return "continue"
	case SigReturn:
		return "return"
	}
	return "unknown"
}

// control pairs a signal with the value a return carries. It is never
// stored in the environment.
type control struct {
	sig Signal
	val object.Value
}

var normal = control{sig: SigNormal}
