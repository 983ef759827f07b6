// schema_binary.go — the binary-reducer driver shared by every FUNC
// family operator (spec §4.3.5 "Binary reducer").
//
// Grounded on spec §4.3.5 (authoritative for the driver shape) and the
// teacher's RegisterNative/NativeImpl/CallCtx pattern (interpreter.go,
// runtime.go) for factoring "a family of operators sharing one calling
// convention" into one generic driver plus small per-operator
// callbacks. See DESIGN.md.
package bll

// reducerOps parameterises the binary-reducer driver for one opcode.
// init returns an owned s0 value. reduce consumes state and arg,
// returning either a new owned state or (NullRef, an owned ERROR
// value). idempotent is an optional fast path: when it reports true,
// the driver reuses the current closure unmodified and discards arg
// without calling reduce. finish consumes the final state and
// produces the operator's result.
type reducerOps struct {
	init       func(p *Program) Ref
	idempotent func(a *Allocator, state, arg Ref) bool
	reduce     func(p *Program, state, arg Ref) (newState, errVal Ref)
	finish     func(p *Program, state Ref) Ref
}

var binaryReducers = map[uint8]*reducerOps{}

func registerReducer(code uint8, ops *reducerOps) {
	binaryReducers[code] = ops
}

// currentState returns the closure's live state, or a freshly built
// s0 (owned=true) if the closure has not accumulated anything yet.
func (ops *reducerOps) currentState(p *Program, state Ref) (cur Ref, owned bool) {
	if !state.IsNull() {
		return state, false
	}
	return ops.init(p), true
}

func (p *Program) stepFunc(cont Continuation, fb Ref) {
	funcID, env, state := p.alloc.FuncInfo(cont.closure)
	if funcID == funcIDBLLEval {
		p.stepBLLEval(cont, env, fb)
		return
	}
	ops, known := binaryReducers[uint8(funcID)]
	if !known {
		p.alloc.Deref(fb)
		p.alloc.Deref(cont.closure)
		p.alloc.Deref(cont.args)
		p.setFeedback(p.failInternal(0))
		return
	}

	if !fb.IsNull() {
		curState, owned := ops.currentState(p, state)
		if ops.idempotent != nil && ops.idempotent(p.alloc, curState, fb) {
			if owned {
				p.alloc.Deref(curState)
			}
			p.alloc.Deref(fb)
			p.conts = append(p.conts, cont)
			return
		}
		// reduce takes full ownership of curState and fb, resolving
		// them internally; the closure's own state field (if that is
		// where curState came from) must never be touched again, so
		// the closure shell is freed directly rather than via a
		// generic Deref that would try to drop its children a second
		// time. env's ownership, untouched by reduce, transfers to us
		// for free the moment the shell is gone.
		newState, errv := ops.reduce(p, curState, fb)
		p.alloc.Deallocate(cont.closure)
		if !errv.IsNull() {
			p.alloc.Deref(env)
			p.alloc.Deref(cont.args)
			p.setFeedback(errv)
			return
		}
		newClosure := p.alloc.CreateFunc(funcID, env, newState)
		p.conts = append(p.conts, Continuation{closure: newClosure, args: cont.args})
		return
	}

	left, right, isCons, isEmpty := p.classifyArgs(cont.args)
	switch {
	case isCons:
		p.alloc.Bumpref(left)
		p.alloc.Bumpref(right)
		p.alloc.Deref(cont.args)
		p.pushEval(cont, right, env, left)
	case isEmpty:
		p.alloc.Deref(cont.args)
		curState, _ := ops.currentState(p, state)
		result := ops.finish(p, curState)
		p.alloc.Deallocate(cont.closure)
		p.alloc.Deref(env)
		p.setFeedback(result)
	default:
		p.alloc.Deref(cont.closure)
		p.alloc.Deref(cont.args)
		p.setFeedback(p.fail("bll/ops", 0))
	}
}
