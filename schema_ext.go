// schema_ext.go — the extended-state driver shared by every FUNC_EXT
// family operator (spec §4.3.5 "Extended-state"). SHA256 is this
// repo's only such operator (spec §6.3, §11).
//
// Grounded on spec §4.3.5 (authoritative) and the teacher's
// builtin_crypto.go sha256 native for the shape of wrapping a
// standard-library hash.Hash behind a single-operator contract.
// Unlike FUNC/FUNC_COUNT, a FUNC_EXT closure's state is not itself a
// graph reference (spec §3.3: "state lives outside the refcounted
// graph"), so it never needs the shell-only deallocation trick the
// other two drivers use — env is the sole graph child, and it is
// always handled through ordinary Bumpref/Deref. See DESIGN.md.
package bll

// extOps parameterises the extended-state driver for one opcode.
// init returns a fresh native state value. extend consumes arg and
// produces either an updated state or an owned ERROR value. finish
// produces the operator's result from the final state; it does not
// consume or invalidate state itself (native state is plain Go memory,
// reclaimed by the garbage collector once the closure's side-table
// entry is dropped).
type extOps struct {
	init   func(p *Program) any
	extend func(p *Program, state any, arg Ref) (newState any, errVal Ref)
	finish func(p *Program, state any) Ref
}

var funcExtOps = map[uint8]*extOps{}

func registerExtOp(code uint8, ops *extOps) {
	funcExtOps[code] = ops
}

func (p *Program) stepFuncExt(cont Continuation, fb Ref) {
	funcID, env, state := p.alloc.FuncExtInfo(cont.closure)
	ops, known := funcExtOps[funcID]
	if !known {
		p.alloc.Deref(fb)
		p.alloc.Deref(cont.closure)
		p.alloc.Deref(cont.args)
		p.setFeedback(p.failInternal(0))
		return
	}

	if !fb.IsNull() {
		cur := state
		if cur == nil {
			cur = ops.init(p)
		}
		newState, errv := ops.extend(p, cur, fb)
		if !errv.IsNull() {
			p.alloc.Deref(cont.closure)
			p.alloc.Deref(cont.args)
			p.setFeedback(errv)
			return
		}
		p.alloc.Bumpref(env)
		p.alloc.Deref(cont.closure)
		newClosure := p.alloc.CreateFuncExt(funcID, env, newState)
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
		cur := state
		if cur == nil {
			cur = ops.init(p)
		}
		result := ops.finish(p, cur)
		p.alloc.Deref(cont.closure)
		p.setFeedback(result)
	default:
		p.alloc.Deref(cont.closure)
		p.alloc.Deref(cont.args)
		p.setFeedback(p.fail("bll/ops", 0))
	}
}
