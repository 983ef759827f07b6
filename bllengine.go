// bllengine.go — the BLLEVAL meta-evaluator and the shared helpers its
// "bll-eval helper" sub-step provides to all three operator schemas.
//
// Grounded on spec §4.3.3/§4.3.4 (authoritative pseudocode) plus the
// teacher's environment-walk handling in vm.go (opLoadGlobal) for how
// an index-addressed lookup is factored into a small helper rather
// than inlined at every call site. See DESIGN.md.
package bll

// classifyArgs inspects a continuation's remaining-args value and
// reports which of the bll-eval helper's three cases applies: a CONS
// to destructure, the canonical empty atom (nothing left), or
// something else (malformed).
func (p *Program) classifyArgs(args Ref) (left, right Ref, isCons, isEmpty bool) {
	if p.alloc.tagAt(args).Type == Cons {
		l, r := p.alloc.ConsParts(args)
		return l, r, true, false
	}
	if p.alloc.IsAtom(args) && len(p.alloc.AtomBytes(args)) == 0 {
		return NullRef, NullRef, false, true
	}
	return NullRef, NullRef, false, false
}

// pushEval queues a fresh (BLLEVAL, env, expr) continuation on top of
// cont (which keeps its own closure, now pointed at the remaining
// argument list `rest`). This is the push pair spec §4.3.3 describes:
// "push a continuation (current-closure, R)... then push a fresh
// (BLLEVAL, env, L)".
func (p *Program) pushEval(cont Continuation, rest, env, expr Ref) {
	p.alloc.Bumpref(env)
	evalClosure := p.alloc.CreateFunc(funcIDBLLEval, env, NullRef)
	p.conts = append(p.conts, Continuation{closure: cont.closure, args: rest})
	p.conts = append(p.conts, Continuation{closure: evalClosure, args: expr})
}

// stepBLLEval implements spec §4.3.4. cont.args is the expression to
// evaluate, env is BLLEVAL's captured environment. BLLEVAL never
// expects feedback; receiving any is an internal bug.
func (p *Program) stepBLLEval(cont Continuation, env Ref, fb Ref) {
	if !fb.IsNull() {
		p.alloc.Deref(fb)
		p.alloc.Deref(cont.closure)
		p.alloc.Deref(cont.args)
		p.setFeedback(p.failInternal(0))
		return
	}
	expr := cont.args

	if p.alloc.IsAtom(expr) {
		n, ok := DecodeInt(p.alloc.AtomBytes(expr))
		if !ok {
			p.alloc.Deref(cont.closure)
			p.alloc.Deref(expr)
			p.setFeedback(p.fail("bll/eval", 0))
			return
		}
		if n < 0 {
			p.alloc.Deref(cont.closure)
			p.alloc.Deref(expr)
			p.setFeedback(p.fail("bll/eval", 0))
			return
		}
		if n == 0 {
			p.alloc.Deref(cont.closure)
			p.alloc.Deref(expr)
			p.setFeedback(p.alloc.Copy(p.alloc.Nil()))
			return
		}
		result, ok := p.walkEnv(env, uint64(n))
		p.alloc.Deref(cont.closure)
		p.alloc.Deref(expr)
		if !ok {
			p.setFeedback(p.fail("bll/eval", 0))
			return
		}
		p.setFeedback(result)
		return
	}

	if p.alloc.tagAt(expr).Type == Cons {
		op, tail := p.alloc.ConsParts(expr)
		if !p.alloc.IsAtom(op) {
			p.alloc.Deref(cont.closure)
			p.alloc.Deref(expr)
			p.setFeedback(p.fail("bll/eval", 0))
			return
		}
		code, ok := DecodeInt(p.alloc.AtomBytes(op))
		if !ok || code < 0 || code > 255 {
			p.alloc.Deref(cont.closure)
			p.alloc.Deref(expr)
			p.setFeedback(p.fail("bll/eval", 0))
			return
		}
		entry, known := lookupOpcode(uint8(code))
		if !known {
			p.alloc.Deref(cont.closure)
			p.alloc.Deref(expr)
			p.setFeedback(p.fail("bll/eval", 0))
			return
		}
		p.alloc.Bumpref(tail)
		p.alloc.Bumpref(env)
		p.alloc.Deref(expr)
		p.alloc.Deref(cont.closure)
		opClosure := p.newOperatorClosure(entry, uint8(code), env)
		p.conts = append(p.conts, Continuation{closure: opClosure, args: tail})
		return
	}

	p.alloc.Deref(cont.closure)
	p.alloc.Deref(expr)
	p.setFeedback(p.fail("bll/eval", 0))
}

// newOperatorClosure builds the initial closure for a freshly dispatched
// operator call, in the chunk family its opcode family requires.
func (p *Program) newOperatorClosure(entry opcodeEntry, code uint8, env Ref) Ref {
	switch entry.family {
	case FamilyFunc:
		return p.alloc.CreateFunc(uint16(code), env, NullRef)
	case FamilyFuncCount:
		return p.alloc.CreateFuncCount(uint16(code), env, NullRef, 0)
	case FamilyFuncExt:
		return p.alloc.CreateFuncExt(code, env, nil)
	default:
		panic(&AllocError{Op: "newOperatorClosure", Msg: "unknown opcode family"})
	}
}

// walkEnv implements BLLEVAL's environment-index walk: bit 0 of n
// (just below n's own leading bit) selects left, bit 1 selects right,
// walking from the most significant selector bit down to the least.
func (p *Program) walkEnv(env Ref, n uint64) (Ref, bool) {
	depth := bitLen(n) - 1 // number of selector bits below the leading 1
	cur := env
	for i := depth - 1; i >= 0; i-- {
		if p.alloc.tagAt(cur).Type != Cons {
			return NullRef, false
		}
		left, right := p.alloc.ConsParts(cur)
		if (n>>uint(i))&1 == 0 {
			cur = left
		} else {
			cur = right
		}
	}
	p.alloc.Bumpref(cur)
	return cur, true
}

// reverseConsList reverses a cons list built exclusively for internal
// accumulation (QUOTE's reduce-state; FUNC_COUNT closures use
// unstackState instead) — never aliased elsewhere, so its
// nodes are safe to consume by shell-only deallocation rather than a
// full recursive deref.
func (p *Program) reverseConsList(lst Ref) Ref {
	result := p.alloc.Copy(p.alloc.Nil())
	cur := lst
	for p.alloc.tagAt(cur).Type == Cons {
		left, right := p.alloc.ConsParts(cur)
		result = p.alloc.CreateCons(left, result)
		p.alloc.Deallocate(cur)
		cur = right
	}
	return result
}
