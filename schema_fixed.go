// schema_fixed.go — the fixed-arity driver shared by every FUNC_COUNT
// family operator (spec §4.3.5 "Fixed-arity").
//
// Grounded on spec §4.3.5 (authoritative) and the teacher's ParamSpec/
// CallCtx convention for describing a native call's arity contract
// declaratively rather than by hand-rolled argument counting in each
// operator. See DESIGN.md.
package bll

// fixedOps parameterises the fixed-arity driver. maxArgs is the
// closure's argument tuple length; minArgs is the minimum that must
// have been supplied by the time args run out. defaultArg supplies a
// value (owned) for any slot beyond the caller-supplied count.
// fixop consumes every slot in args and produces the result,
// optionally pushing further continuations itself (e.g. APPLY
// re-entering BLLEVAL).
// fixop receives ownership of env (the operator's captured
// environment) and every slot of args. If it returns pushed=true it
// has already queued its own continuations (e.g. APPLY re-entering
// BLLEVAL) and result is ignored; otherwise result is written to
// feedback directly.
type fixedOps struct {
	minArgs, maxArgs int
	defaultArg       func(p *Program, slot int) Ref
	fixop            func(p *Program, env Ref, args []Ref) (result Ref, pushed bool)
}

var fixedArityOps = map[uint8]*fixedOps{}

func registerFixedArity(code uint8, ops *fixedOps) {
	fixedArityOps[code] = ops
}

// unstackState reverses a gathered-argument chain (built by repeated
// cons(feedback, state) pushes, most recent first) into a forward
// slice of length count. The chain is exclusively owned by this
// closure — never aliased — so its nodes are consumed by shell-only
// deallocation.
func (p *Program) unstackState(state Ref, count uint32) []Ref {
	out := make([]Ref, count)
	cur := state
	for i := int(count) - 1; i >= 0; i-- {
		left, right := p.alloc.ConsParts(cur)
		out[i] = left
		p.alloc.Deallocate(cur)
		cur = right
	}
	return out
}

func (p *Program) stepFuncCount(cont Continuation, fb Ref) {
	funcID, env, state, counter := p.alloc.FuncCountInfo(cont.closure)
	ops, known := fixedArityOps[uint8(funcID)]
	if !known {
		p.alloc.Deref(fb)
		p.alloc.Deref(cont.closure)
		p.alloc.Deref(cont.args)
		p.setFeedback(p.failInternal(0))
		return
	}

	if !fb.IsNull() {
		if int(counter) >= ops.maxArgs {
			p.alloc.Deref(fb)
			p.alloc.Deref(cont.closure)
			p.alloc.Deref(cont.args)
			p.setFeedback(p.fail("bll/ops", 0))
			return
		}
		p.alloc.Bumpref(env)
		if !state.IsNull() {
			p.alloc.Bumpref(state)
		}
		newState := p.alloc.CreateCons(fb, state)
		p.alloc.Deref(cont.closure)
		newClosure := p.alloc.CreateFuncCount(funcID, env, newState, counter+1)
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
		if int(counter) < ops.minArgs {
			p.alloc.Deref(cont.closure)
			p.setFeedback(p.fail("bll/ops", 0))
			return
		}
		// unstackState steals the gathered-argument chain's contents
		// directly; cont.closure's own state field is stale from this
		// point on, so it must be shell-freed, never generically
		// Deref'd, once this happens.
		gathered := p.unstackState(state, counter)
		full := make([]Ref, ops.maxArgs)
		copy(full, gathered)
		for i := int(counter); i < ops.maxArgs; i++ {
			full[i] = ops.defaultArg(p, i)
		}
		// env's ownership, never touched by unstackState, transfers to
		// fixop directly; it must Deref it exactly once unless it
		// hands that same ownership on to a pushed continuation.
		p.alloc.Deallocate(cont.closure)
		result, pushed := ops.fixop(p, env, full)
		if !pushed {
			p.setFeedback(result)
		}
	default:
		p.alloc.Deref(cont.closure)
		p.alloc.Deref(cont.args)
		p.setFeedback(p.fail("bll/ops", 0))
	}
}
