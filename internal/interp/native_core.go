package interp

import (
	"fmt"
	"strings"

	"chalk/internal/ast"
	"chalk/internal/fault"
	"chalk/internal/object"
	"chalk/internal/watch"
)

func installNatives(r *Registry) {
	installCore(r)
	installList(r)
	installMath(r)
	installPace(r)
}

func installCore(r *Registry) {
	mustRegister(r,
		nativePrint(),
		nativeLen(),
		nativeIsNull(),
		nativeToInt(),
		nativeToFloat(),
		nativeUnset(),
	)
}

// mustRegister panics on a bad builtin declaration; the shipped set is
// checked once, at construction.
func mustRegister(r *Registry, natives ...*Native) {
	for _, n := range natives {
		if err := r.Register(n); err != nil {
			panic("interp: " + err.Error())
		}
	}
}

func nativePrint() *Native {
	return &Native{
		Name:    "print",
		MinArgs: 0,
		MaxArgs: -1,
		Fn: func(ctx CallContext, args []Thunk) (object.Value, error) {
			parts := make([]string, len(args))
			for i, a := range args {
				v, err := a.Eval()
				if err != nil {
					return nil, err
				}
				parts[i] = v.Inspect()
			}
			fmt.Fprintln(ctx.Out, strings.Join(parts, " "))
			return object.NewNull(), nil
		},
	}
}

func nativeLen() *Native {
	return &Native{
		Name:    "len",
		MinArgs: 1,
		MaxArgs: 1,
		Fn: func(ctx CallContext, args []Thunk) (object.Value, error) {
			v, err := args[0].Eval()
			if err != nil {
				return nil, err
			}
			list, ok := v.(*object.List)
			if !ok {
				return nil, ctx.Errf(fault.Type, "len expects a list, got %s", v.Kind())
			}
			return object.NewInteger(int64(len(list.Elements))), nil
		},
	}
}

func nativeIsNull() *Native {
	return &Native{
		Name:    "isNull",
		MinArgs: 1,
		MaxArgs: 1,
		Fn: func(ctx CallContext, args []Thunk) (object.Value, error) {
			v, err := args[0].Eval()
			if err != nil {
				return nil, err
			}
			return object.NewBoolean(v.Kind() == object.NULL), nil
		},
	}
}

func nativeToInt() *Native {
	return &Native{
		Name:    "toInt",
		MinArgs: 1,
		MaxArgs: 1,
		Fn: func(ctx CallContext, args []Thunk) (object.Value, error) {
			v, err := args[0].Eval()
			if err != nil {
				return nil, err
			}
			switch x := v.(type) {
			case *object.Integer:
				return object.NewInteger(x.Value), nil
			case *object.Float:
				// Truncates toward zero, like integer division.
				return object.NewInteger(int64(x.Value)), nil
			case *object.Boolean:
				if x.Value {
					return object.NewInteger(1), nil
				}
				return object.NewInteger(0), nil
			}
			return nil, ctx.Errf(fault.Type, "toInt cannot convert %s", v.Kind())
		},
	}
}

func nativeToFloat() *Native {
	return &Native{
		Name:    "toFloat",
		MinArgs: 1,
		MaxArgs: 1,
		Fn: func(ctx CallContext, args []Thunk) (object.Value, error) {
			v, err := args[0].Eval()
			if err != nil {
				return nil, err
			}
			switch x := v.(type) {
			case *object.Float:
				return object.NewFloat(x.Value), nil
			case *object.Integer:
				return object.NewFloat(float64(x.Value)), nil
			case *object.Boolean:
				if x.Value {
					return object.NewFloat(1), nil
				}
				return object.NewFloat(0), nil
			}
			return nil, ctx.Errf(fault.Type, "toFloat cannot convert %s", v.Kind())
		},
	}
}

func nativeUnset() *Native {
	return &Native{
		Name:    "unset",
		MinArgs: 1,
		MaxArgs: 1,
		Fn: func(ctx CallContext, args []Thunk) (object.Value, error) {
			ref, ok := args[0].Expr().(*ast.VarRef)
			if !ok {
				return nil, ctx.Errf(fault.Type, "unset expects a variable")
			}
			v, ok := ctx.Env.Lookup(ref.Name)
			if !ok {
				return nil, ctx.Errf(fault.Name, "undeclared variable $%s", ref.Name)
			}
			if v.Meta().Const {
				return nil, ctx.Errf(fault.InvalidClassifier, "cannot unset const $%s", ref.Name)
			}
			ctx.Env.Unbind(ref.Name)
			ctx.Watcher.Notify(watch.Event{Name: ref.Name, Affected: v, Kind: watch.Unbind, Line: ctx.Line})
			return object.NewNull(), nil
		},
	}
}
