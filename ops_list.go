// ops_list.go — the list-deconstruction and logical-aggregate
// operators: HEAD, TAIL, ALL, ANY, NOTALL (spec §6.3).
//
// vm.go has no cons-cell opcode at all (its data model is Go-native
// arrays/maps, not a CONS chunk), so HEAD/TAIL are grounded on spec
// §6.3's own description of the CONS layout plus the teacher's
// general per-operator registration style. ALL/ANY/NOTALL follow the
// binary-reducer short-circuit pattern spec §4.3.5 calls out
// explicitly ("idempotent lets a reducer stop doing real work once its
// answer is settled").
package bll

func init() {
	registerFixedArity(OpHead, &fixedOps{
		minArgs: 1,
		maxArgs: 1,
		fixop: func(p *Program, env Ref, args []Ref) (Ref, bool) {
			p.alloc.Deref(env)
			if p.alloc.tagAt(args[0]).Type != Cons {
				p.alloc.Deref(args[0])
				return p.fail("bll/ops", 0), false
			}
			left, right := p.alloc.ConsParts(args[0])
			p.alloc.Bumpref(left)
			p.alloc.Deref(args[0])
			_ = right
			return left, false
		},
	})

	registerFixedArity(OpTail, &fixedOps{
		minArgs: 1,
		maxArgs: 1,
		fixop: func(p *Program, env Ref, args []Ref) (Ref, bool) {
			p.alloc.Deref(env)
			if p.alloc.tagAt(args[0]).Type != Cons {
				p.alloc.Deref(args[0])
				return p.fail("bll/ops", 0), false
			}
			left, right := p.alloc.ConsParts(args[0])
			p.alloc.Bumpref(right)
			p.alloc.Deref(args[0])
			_ = left
			return right, false
		},
	})

	registerReducer(OpAll, &reducerOps{
		init: func(p *Program) Ref { return p.alloc.boolRef(true) },
		idempotent: func(a *Allocator, state, arg Ref) bool {
			return !a.isTruthy(state)
		},
		reduce: func(p *Program, state, arg Ref) (Ref, Ref) {
			ok := p.alloc.isTruthy(arg)
			p.alloc.Deref(state)
			p.alloc.Deref(arg)
			return p.alloc.boolRef(ok), NullRef
		},
		finish: func(p *Program, state Ref) Ref { return state },
	})

	registerReducer(OpAny, &reducerOps{
		init: func(p *Program) Ref { return p.alloc.boolRef(false) },
		idempotent: func(a *Allocator, state, arg Ref) bool {
			return a.isTruthy(state)
		},
		reduce: func(p *Program, state, arg Ref) (Ref, Ref) {
			ok := p.alloc.isTruthy(arg)
			p.alloc.Deref(state)
			p.alloc.Deref(arg)
			return p.alloc.boolRef(ok), NullRef
		},
		finish: func(p *Program, state Ref) Ref { return state },
	})

	registerReducer(OpNotAll, &reducerOps{
		init: func(p *Program) Ref { return p.alloc.boolRef(false) },
		idempotent: func(a *Allocator, state, arg Ref) bool {
			return a.isTruthy(state)
		},
		reduce: func(p *Program, state, arg Ref) (Ref, Ref) {
			notAll := !p.alloc.isTruthy(arg)
			p.alloc.Deref(state)
			p.alloc.Deref(arg)
			return p.alloc.boolRef(notAll), NullRef
		},
		finish: func(p *Program, state Ref) Ref { return state },
	})
}
