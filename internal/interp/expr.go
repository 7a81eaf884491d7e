package interp

import (
	"math"

	"chalk/internal/ast"
	"chalk/internal/fault"
	"chalk/internal/object"
)

// eval walks an expression tree against the current environment and
// yields a value. Variable references and index expressions yield the
// underlying cell so callers can share or copy as their semantics
// require.
func (it *Interp) eval(expr ast.Expression) (object.Value, error) {
	switch node := expr.(type) {
	case *ast.IntegerLiteral:
		return object.NewInteger(node.Value), nil
	case *ast.FloatLiteral:
		return object.NewFloat(node.Value), nil
	case *ast.BooleanLiteral:
		return object.NewBoolean(node.Value), nil
	case *ast.NullLiteral:
		return object.NewNull(), nil
	case *ast.VarRef:
		return it.evalVarRef(node)
	case *ast.ListLiteral:
		return it.evalListLiteral(node)
	case *ast.PrefixExpression:
		return it.evalPrefix(node)
	case *ast.InfixExpression:
		return it.evalInfix(node)
	case *ast.IndexExpression:
		return it.evalIndex(node)
	case *ast.CallExpression:
		return it.evalCall(node)
	}
	return nil, fault.Errorf(fault.Internal, expr.Pos(), "unknown expression node %T", expr)
}

func (it *Interp) evalVarRef(node *ast.VarRef) (object.Value, error) {
	v, ok := it.env.Lookup(node.Name)
	if !ok {
		return nil, fault.Errorf(fault.Name, node.Pos(), "undeclared variable $%s", node.Name)
	}
	if !v.Meta().Assigned {
		return nil, fault.Errorf(fault.Unassigned, node.Pos(), "$%s has not been assigned", node.Name)
	}
	return v, nil
}

func (it *Interp) evalListLiteral(node *ast.ListLiteral) (object.Value, error) {
	elems := make([]object.Value, len(node.Elements))
	for i, e := range node.Elements {
		v, err := it.eval(e)
		if err != nil {
			return nil, err
		}
		elems[i] = object.Copy(v)
	}
	return object.NewList(elems), nil
}

func (it *Interp) evalPrefix(node *ast.PrefixExpression) (object.Value, error) {
	right, err := it.eval(node.Right)
	if err != nil {
		return nil, err
	}

	switch node.Operator {
	case "!":
		b, ok := right.(*object.Boolean)
		if !ok {
			return nil, fault.Errorf(fault.Type, node.Pos(), "operator ! needs a bool, got %s", right.Kind())
		}
		return object.NewBoolean(!b.Value), nil
	case "-":
		switch r := right.(type) {
		case *object.Integer:
			return object.NewInteger(-r.Value), nil
		case *object.Float:
			return object.NewFloat(-r.Value), nil
		}
		return nil, fault.Errorf(fault.Type, node.Pos(), "operator - needs a number, got %s", right.Kind())
	}
	return nil, fault.Errorf(fault.Internal, node.Pos(), "unknown prefix operator %s", node.Operator)
}

func (it *Interp) evalInfix(node *ast.InfixExpression) (object.Value, error) {
	// & and | short-circuit on the left operand; every other operator
	// evaluates both sides first.
	switch node.Operator {
	case "&", "|":
		return it.evalShortCircuit(node)
	}

	left, err := it.eval(node.Left)
	if err != nil {
		return nil, err
	}
	right, err := it.eval(node.Right)
	if err != nil {
		return nil, err
	}
	return it.applyInfix(node, left, right)
}

func (it *Interp) evalShortCircuit(node *ast.InfixExpression) (object.Value, error) {
	left, err := it.eval(node.Left)
	if err != nil {
		return nil, err
	}
	lb, ok := left.(*object.Boolean)
	if !ok {
		return nil, fault.Errorf(fault.Type, node.Pos(),
			"operator %s needs bool operands, got %s", node.Operator, left.Kind())
	}

	if node.Operator == "&" && !lb.Value {
		return object.NewBoolean(false), nil
	}
	if node.Operator == "|" && lb.Value {
		return object.NewBoolean(true), nil
	}

	right, err := it.eval(node.Right)
	if err != nil {
		return nil, err
	}
	rb, ok := right.(*object.Boolean)
	if !ok {
		return nil, fault.Errorf(fault.Type, node.Pos(),
			"operator %s needs bool operands, got %s", node.Operator, right.Kind())
	}
	return object.NewBoolean(rb.Value), nil
}

func (it *Interp) applyInfix(node *ast.InfixExpression, left, right object.Value) (object.Value, error) {
	op := node.Operator
	line := node.Pos()

	switch l := left.(type) {
	case *object.Integer:
		if r, ok := right.(*object.Integer); ok {
			return intOp(op, l.Value, r.Value, line)
		}
	case *object.Float:
		if r, ok := right.(*object.Float); ok {
			return floatOp(op, l.Value, r.Value, line)
		}
	case *object.Boolean:
		if r, ok := right.(*object.Boolean); ok {
			switch op {
			case "^":
				return object.NewBoolean(l.Value != r.Value), nil
			case "~":
				return object.NewBoolean(l.Value == r.Value), nil
			case ":":
				return object.NewBoolean(l.Value != r.Value), nil
			}
			return nil, fault.Errorf(fault.Type, line, "operator %s not defined on bool", op)
		}
	case *object.List:
		if r, ok := right.(*object.List); ok {
			switch op {
			case "~":
				return object.NewBoolean(object.Equal(l, r)), nil
			case ":":
				return object.NewBoolean(!object.Equal(l, r)), nil
			}
			return nil, fault.Errorf(fault.Type, line, "operator %s not defined on list", op)
		}
	case *object.Null:
		if _, ok := right.(*object.Null); ok {
			switch op {
			case "~":
				return object.NewBoolean(true), nil
			case ":":
				return object.NewBoolean(false), nil
			}
			return nil, fault.Errorf(fault.Type, line, "operator %s not defined on null", op)
		}
	}
	return nil, fault.Errorf(fault.Type, line,
		"operator %s not defined on %s and %s", op, left.Kind(), right.Kind())
}

func intOp(op string, l, r int64, line int) (object.Value, error) {
	switch op {
	case "+":
		return object.NewInteger(l + r), nil
	case "-":
		return object.NewInteger(l - r), nil
	case "*":
		return object.NewInteger(l * r), nil
	case "/":
		if r == 0 {
			return nil, fault.New(fault.ZeroDivision, line, "division by zero")
		}
		// Go's integer division truncates toward zero, which is the
		// language rule too.
		return object.NewInteger(l / r), nil
	case "%":
		if r == 0 {
			return nil, fault.New(fault.ZeroDivision, line, "modulo by zero")
		}
		return object.NewInteger(l % r), nil
	case "<":
		return object.NewBoolean(l < r), nil
	case ">":
		return object.NewBoolean(l > r), nil
	case "{":
		return object.NewBoolean(l <= r), nil
	case "}":
		return object.NewBoolean(l >= r), nil
	case "~":
		return object.NewBoolean(l == r), nil
	case ":":
		return object.NewBoolean(l != r), nil
	}
	return nil, fault.Errorf(fault.Type, line, "operator %s not defined on int", op)
}

func floatOp(op string, l, r float64, line int) (object.Value, error) {
	switch op {
	case "+":
		return object.NewFloat(l + r), nil
	case "-":
		return object.NewFloat(l - r), nil
	case "*":
		return object.NewFloat(l * r), nil
	case "/":
		if r == 0 {
			return nil, fault.New(fault.ZeroDivision, line, "division by zero")
		}
		return object.NewFloat(l / r), nil
	case "%":
		if r == 0 {
			return nil, fault.New(fault.ZeroDivision, line, "modulo by zero")
		}
		return object.NewFloat(math.Mod(l, r)), nil
	case "<":
		return object.NewBoolean(l < r), nil
	case ">":
		return object.NewBoolean(l > r), nil
	case "{":
		return object.NewBoolean(l <= r), nil
	case "}":
		return object.NewBoolean(l >= r), nil
	case "~":
		return object.NewBoolean(l == r), nil
	case ":":
		return object.NewBoolean(l != r), nil
	}
	return nil, fault.Errorf(fault.Type, line, "operator %s not defined on float", op)
}

func (it *Interp) evalIndex(node *ast.IndexExpression) (object.Value, error) {
	left, err := it.eval(node.Left)
	if err != nil {
		return nil, err
	}
	list, ok := left.(*object.List)
	if !ok {
		return nil, fault.Errorf(fault.Type, node.Pos(), "cannot index %s", left.Kind())
	}

	i, err := it.indexInto(node.Index, len(list.Elements))
	if err != nil {
		return nil, err
	}
	// Shared reference: mutation through the element mutates the list.
	return list.Elements[i], nil
}

// indexInto evaluates an index expression and normalizes it against
// length.
func (it *Interp) indexInto(expr ast.Expression, length int) (int, error) {
	v, err := it.eval(expr)
	if err != nil {
		return 0, err
	}
	n, ok := v.(*object.Integer)
	if !ok {
		return 0, fault.Errorf(fault.Type, expr.Pos(), "index must be int, got %s", v.Kind())
	}
	return normalizeIndex(n.Value, length, expr.Pos())
}

// normalizeIndex maps idx onto [0, length). Negative indices address
// from the end; any index with |idx| >= length is out of range.
func normalizeIndex(idx int64, length int, line int) (int, error) {
	if length > 0 && idx <= int64(length-1) && idx >= -int64(length-1) {
		if idx < 0 {
			idx += int64(length)
		}
		return int(idx), nil
	}
	return 0, fault.Errorf(fault.InvalidIndex, line, "index %d out of range for length %d", idx, length)
}
