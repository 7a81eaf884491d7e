package interp

import (
	"time"

	"chalk/internal/fault"
	"chalk/internal/object"
)

func installPace(r *Registry) {
	mustRegister(r, nativeSleep())
}

func nativeSleep() *Native {
	return &Native{
		Name:    "sleep",
		MinArgs: 1,
		MaxArgs: 1,
		Fn: func(ctx CallContext, args []Thunk) (object.Value, error) {
			v, err := args[0].Eval()
			if err != nil {
				return nil, err
			}
			ms, ok := v.(*object.Integer)
			if !ok || ms.Value < 0 {
				return nil, ctx.Errf(fault.Type, "sleep expects a non-negative int of milliseconds")
			}

			timer := time.NewTimer(time.Duration(ms.Value) * time.Millisecond)
			defer timer.Stop()
			select {
			case <-ctx.Ctx.Done():
				return nil, ctx.Errf(fault.Interrupted, "run canceled")
			case <-timer.C:
			}
			return object.NewNull(), nil
		},
	}
}
