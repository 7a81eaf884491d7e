package interp

import (
	"chalk/internal/ast"
	"chalk/internal/fault"
	"chalk/internal/object"
	"chalk/internal/watch"
)

func installList(r *Registry) {
	mustRegister(r,
		nativeAppend(),
		nativeInsertAt(),
		nativeRemoveAt(),
		nativeSwap(),
	)
}

// listArg evaluates a thunk that must name a mutable list. The returned
// name feeds the change event; it is empty for anonymous lists.
func listArg(ctx CallContext, t Thunk, op string) (*object.List, string, error) {
	v, err := t.Eval()
	if err != nil {
		return nil, "", err
	}
	list, ok := v.(*object.List)
	if !ok {
		return nil, "", ctx.Errf(fault.Type, "%s expects a list, got %s", op, v.Kind())
	}
	if list.Meta().Const {
		return nil, "", ctx.Errf(fault.InvalidClassifier, "%s cannot mutate a const list", op)
	}
	name := list.Meta().Name
	if ref, ok := t.Expr().(*ast.VarRef); ok {
		name = ref.Name
	}
	return list, name, nil
}

func intArg(ctx CallContext, t Thunk, op string) (int64, error) {
	v, err := t.Eval()
	if err != nil {
		return 0, err
	}
	n, ok := v.(*object.Integer)
	if !ok {
		return 0, ctx.Errf(fault.Type, "%s expects an int index, got %s", op, v.Kind())
	}
	return n.Value, nil
}

func nativeAppend() *Native {
	return &Native{
		Name:    "append",
		MinArgs: 2,
		MaxArgs: -1,
		Fn: func(ctx CallContext, args []Thunk) (object.Value, error) {
			list, name, err := listArg(ctx, args[0], "append")
			if err != nil {
				return nil, err
			}
			added := make([]object.Value, 0, len(args)-1)
			for _, t := range args[1:] {
				v, err := t.Eval()
				if err != nil {
					return nil, err
				}
				elem := object.Copy(v)
				list.Elements = append(list.Elements, elem)
				added = append(added, elem)
			}
			ctx.Watcher.Notify(watch.Event{
				Name: name, Affected: list, Kind: watch.Append, New: list, Aux: added, Line: ctx.Line,
			})
			return object.NewNull(), nil
		},
	}
}

func nativeInsertAt() *Native {
	return &Native{
		Name:    "insertAt",
		MinArgs: 3,
		MaxArgs: 3,
		Fn: func(ctx CallContext, args []Thunk) (object.Value, error) {
			list, name, err := listArg(ctx, args[0], "insertAt")
			if err != nil {
				return nil, err
			}
			idx, err := intArg(ctx, args[1], "insertAt")
			if err != nil {
				return nil, err
			}
			v, err := args[2].Eval()
			if err != nil {
				return nil, err
			}

			// The position one past the end is valid here: it appends.
			pos := len(list.Elements)
			if idx != int64(pos) {
				pos, err = normalizeIndex(idx, len(list.Elements), ctx.Line)
				if err != nil {
					return nil, err
				}
			}

			elem := object.Copy(v)
			list.Elements = append(list.Elements, nil)
			copy(list.Elements[pos+1:], list.Elements[pos:])
			list.Elements[pos] = elem

			ctx.Watcher.Notify(watch.Event{
				Name: name, Affected: list, Kind: watch.Insert, New: list,
				Aux: []object.Value{object.NewInteger(int64(pos)), elem}, Line: ctx.Line,
			})
			return object.NewNull(), nil
		},
	}
}

func nativeRemoveAt() *Native {
	return &Native{
		Name:    "removeAt",
		MinArgs: 2,
		MaxArgs: 2,
		Fn: func(ctx CallContext, args []Thunk) (object.Value, error) {
			list, name, err := listArg(ctx, args[0], "removeAt")
			if err != nil {
				return nil, err
			}
			idx, err := intArg(ctx, args[1], "removeAt")
			if err != nil {
				return nil, err
			}
			pos, err := normalizeIndex(idx, len(list.Elements), ctx.Line)
			if err != nil {
				return nil, err
			}

			removed := list.Elements[pos]
			list.Elements = append(list.Elements[:pos], list.Elements[pos+1:]...)

			ctx.Watcher.Notify(watch.Event{
				Name: name, Affected: list, Kind: watch.Remove, New: list,
				Aux: []object.Value{object.NewInteger(int64(pos))}, Line: ctx.Line,
			})
			return removed, nil
		},
	}
}

func nativeSwap() *Native {
	return &Native{
		Name:    "swap",
		MinArgs: 3,
		MaxArgs: 3,
		Fn: func(ctx CallContext, args []Thunk) (object.Value, error) {
			list, name, err := listArg(ctx, args[0], "swap")
			if err != nil {
				return nil, err
			}
			i, err := intArg(ctx, args[1], "swap")
			if err != nil {
				return nil, err
			}
			j, err := intArg(ctx, args[2], "swap")
			if err != nil {
				return nil, err
			}
			pi, err := normalizeIndex(i, len(list.Elements), ctx.Line)
			if err != nil {
				return nil, err
			}
			pj, err := normalizeIndex(j, len(list.Elements), ctx.Line)
			if err != nil {
				return nil, err
			}

			// Two element writes, one observable change: the watcher is
			// frozen across the compound mutation and a single swap
			// event reported after.
			ctx.Watcher.Freeze()
			list.Elements[pi], list.Elements[pj] = list.Elements[pj], list.Elements[pi]
			ctx.Watcher.Unfreeze()

			ctx.Watcher.Notify(watch.Event{
				Name: name, Affected: list, Kind: watch.Swap, New: list,
				Aux: []object.Value{object.NewInteger(int64(pi)), object.NewInteger(int64(pj))}, Line: ctx.Line,
			})
			return object.NewNull(), nil
		},
	}
}
