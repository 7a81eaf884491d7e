package interp

import (
	"math"
	"math/rand"

	"chalk/internal/fault"
	"chalk/internal/object"
)

func installMath(r *Registry) {
	mustRegister(r,
		nativeAbs(),
		nativeMin(),
		nativeMax(),
		nativeRandom(),
	)
}

func nativeAbs() *Native {
	return &Native{
		Name:    "abs",
		MinArgs: 1,
		MaxArgs: 1,
		Fn: func(ctx CallContext, args []Thunk) (object.Value, error) {
			v, err := args[0].Eval()
			if err != nil {
				return nil, err
			}
			switch x := v.(type) {
			case *object.Integer:
				if x.Value < 0 {
					return object.NewInteger(-x.Value), nil
				}
				return object.NewInteger(x.Value), nil
			case *object.Float:
				return object.NewFloat(math.Abs(x.Value)), nil
			}
			return nil, ctx.Errf(fault.Type, "abs expects a number, got %s", v.Kind())
		},
	}
}

// numericPair evaluates two thunks that must share a numeric kind; no
// implicit widening, same as the operators.
func numericPair(ctx CallContext, a, b Thunk, op string) (object.Value, object.Value, error) {
	l, err := a.Eval()
	if err != nil {
		return nil, nil, err
	}
	r, err := b.Eval()
	if err != nil {
		return nil, nil, err
	}
	if l.Kind() != r.Kind() || (l.Kind() != object.INTEGER && l.Kind() != object.FLOAT) {
		return nil, nil, ctx.Errf(fault.Type, "%s expects two ints or two floats, got %s and %s", op, l.Kind(), r.Kind())
	}
	return l, r, nil
}

func nativeMin() *Native {
	return &Native{
		Name:    "min",
		MinArgs: 2,
		MaxArgs: 2,
		Fn: func(ctx CallContext, args []Thunk) (object.Value, error) {
			l, r, err := numericPair(ctx, args[0], args[1], "min")
			if err != nil {
				return nil, err
			}
			if li, ok := l.(*object.Integer); ok {
				ri := r.(*object.Integer)
				if li.Value <= ri.Value {
					return object.NewInteger(li.Value), nil
				}
				return object.NewInteger(ri.Value), nil
			}
			return object.NewFloat(math.Min(l.(*object.Float).Value, r.(*object.Float).Value)), nil
		},
	}
}

func nativeMax() *Native {
	return &Native{
		Name:    "max",
		MinArgs: 2,
		MaxArgs: 2,
		Fn: func(ctx CallContext, args []Thunk) (object.Value, error) {
			l, r, err := numericPair(ctx, args[0], args[1], "max")
			if err != nil {
				return nil, err
			}
			if li, ok := l.(*object.Integer); ok {
				ri := r.(*object.Integer)
				if li.Value >= ri.Value {
					return object.NewInteger(li.Value), nil
				}
				return object.NewInteger(ri.Value), nil
			}
			return object.NewFloat(math.Max(l.(*object.Float).Value, r.(*object.Float).Value)), nil
		},
	}
}

func nativeRandom() *Native {
	return &Native{
		Name:    "random",
		MinArgs: 1,
		MaxArgs: 1,
		Fn: func(ctx CallContext, args []Thunk) (object.Value, error) {
			v, err := args[0].Eval()
			if err != nil {
				return nil, err
			}
			n, ok := v.(*object.Integer)
			if !ok || n.Value <= 0 {
				return nil, ctx.Errf(fault.Type, "random expects a positive int")
			}
			return object.NewInteger(rand.Int63n(n.Value)), nil
		},
	}
}
