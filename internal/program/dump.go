package program

import (
	"fmt"
	"strings"
)

// Dump produces an indented, source-like rendering of the compiled
// instruction tree. It is optimized for debugging block nesting,
// synthesized declarations and operator binding.
func (p *Program) Dump() string {
	return renderSequence(p.Body, 0)
}

func Render(ins Instruction, indent int) string {
	sp := strings.Repeat("  ", indent)

	switch n := ins.(type) {
	case *Sequence:
		return renderSequence(n, indent)

	case *Declaration:
		var sb strings.Builder
		sb.WriteString(sp)
		if n.Global {
			sb.WriteString("global ")
		}
		if n.Const {
			sb.WriteString("const ")
		}
		if n.Safe {
			sb.WriteString("safe ")
		}
		if n.Overwrite {
			sb.WriteString("overwrite ")
		}
		sb.WriteString("decl ")
		sb.WriteString(n.Type)
		sb.WriteString(" ")
		vars := []string{}
		for _, v := range n.Vars {
			if v.Init != nil {
				vars = append(vars, fmt.Sprintf("$%s = %s", v.Name, v.Init.String()))
			} else {
				vars = append(vars, "$"+v.Name)
			}
		}
		sb.WriteString(strings.Join(vars, ", "))
		if n.Implicit {
			sb.WriteString("  (implicit)")
		}
		return sb.String()

	case *Assignment:
		target := "$" + n.Name
		for _, idx := range n.Index {
			target += "[" + idx.String() + "]"
		}
		return fmt.Sprintf("%s%s = %s", sp, target, n.Value.String())

	case *WhileLoop:
		return fmt.Sprintf("%swhile (%s)\n%s\n%send-while",
			sp, n.Cond.String(), renderSequence(n.Body, indent+1), sp)

	case *ForLoop:
		return fmt.Sprintf("%sfor (%s; %s; %s)\n%s\n%send-for",
			sp, strings.TrimSpace(Render(n.Start, 0)), n.Cond.String(),
			strings.TrimSpace(Render(n.Step, 0)),
			renderSequence(n.Body, indent+1), sp)

	case *IfCondition:
		res := fmt.Sprintf("%sif (%s)\n%s", sp, n.Cond.String(), renderSequence(n.Then, indent+1))
		if n.Else != nil {
			res += fmt.Sprintf("\n%selse\n%s", sp, renderSequence(n.Else, indent+1))
		}
		return res + fmt.Sprintf("\n%send-if", sp)

	case *VoidCall:
		return sp + n.Call.String()

	case *FunctionDef:
		rec := ""
		if n.Fn.Recursive {
			rec = " recursive"
		}
		params := []string{}
		for _, p := range n.Fn.Params {
			params = append(params, "$"+p)
		}
		return fmt.Sprintf("%sfunction %s %s(%s)%s\n%s\n%send-function",
			sp, n.Fn.ReturnType, n.Fn.Name, strings.Join(params, ", "), rec,
			renderSequence(n.Fn.Body, indent+1), sp)

	case *Trace:
		names := []string{}
		for _, name := range n.Names {
			names = append(names, "$"+name)
		}
		return sp + "trace " + strings.Join(names, ", ")

	default:
		return fmt.Sprintf("%s<unknown:%T>", sp, n)
	}
}

func renderSequence(seq *Sequence, indent int) string {
	var sb strings.Builder
	for i, ins := range seq.Items {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(Render(ins, indent))
	}
	return sb.String()
}
