// ops_control.go — the control-flow and list-construction operators:
// QUOTE, PARTIAL, X, IF, APPLY, RCONS, LIST? (spec §6.3).
//
// vm.go has no opcode that matches any of these directly (its opJump/
// opJumpIfFalse/opCall operate on a compiled bytecode stream, not a
// gathered-argument closure), so these operators are grounded on spec
// §6.3/§8.2's worked examples alone, built with the teacher's general
// per-operator registration style (a doc comment above each handler,
// terse error-path returns).
package bll

func init() {
	registerReducer(OpQuote, &reducerOps{
		init: func(p *Program) Ref { return p.alloc.Copy(p.alloc.Nil()) },
		reduce: func(p *Program, state, arg Ref) (Ref, Ref) {
			return p.alloc.CreateCons(arg, state), NullRef
		},
		finish: func(p *Program, state Ref) Ref {
			return p.reverseConsList(state)
		},
	})

	registerReducer(OpRCons, &reducerOps{
		init: func(p *Program) Ref { return p.alloc.Copy(p.alloc.Nil()) },
		reduce: func(p *Program, state, arg Ref) (Ref, Ref) {
			return p.alloc.CreateCons(arg, state), NullRef
		},
		finish: func(p *Program, state Ref) Ref {
			return state
		},
	})

	registerReducer(OpPartial, &reducerOps{
		init: func(p *Program) Ref { return NullRef },
		reduce: func(p *Program, state, arg Ref) (Ref, Ref) {
			p.alloc.Deref(state)
			p.alloc.Deref(arg)
			return NullRef, p.fail("bll/ops", 0)
		},
		finish: func(p *Program, state Ref) Ref {
			return p.fail("bll/ops", 0)
		},
	})

	registerReducer(OpX, &reducerOps{
		init: func(p *Program) Ref { return NullRef },
		reduce: func(p *Program, state, arg Ref) (Ref, Ref) {
			p.alloc.Deref(state)
			p.alloc.Deref(arg)
			return NullRef, p.fail("bll/ops", 0)
		},
		finish: func(p *Program, state Ref) Ref {
			return p.fail("bll/ops", 0)
		},
	})

	registerFixedArity(OpListP, &fixedOps{
		minArgs: 1,
		maxArgs: 1,
		fixop: func(p *Program, env Ref, args []Ref) (Ref, bool) {
			p.alloc.Deref(env)
			isList := p.alloc.tagAt(args[0]).Type == Cons
			p.alloc.Deref(args[0])
			if isList {
				return p.alloc.Copy(p.alloc.One()), false
			}
			return p.alloc.Copy(p.alloc.Nil()), false
		},
	})

	registerFixedArity(OpIf, &fixedOps{
		minArgs: 1,
		maxArgs: 3,
		// slot 1 (onTrue) missing: echo the condition back as a bool.
		// slot 2 (onFalse) missing: nil.
		defaultArg: func(p *Program, slot int) Ref {
			if slot == 1 {
				return p.alloc.boolRef(true)
			}
			return p.alloc.boolRef(false)
		},
		fixop: func(p *Program, env Ref, args []Ref) (Ref, bool) {
			p.alloc.Deref(env)
			cond, onTrue, onFalse := args[0], args[1], args[2]
			truthy := p.alloc.isTruthy(cond)
			p.alloc.Deref(cond)
			if truthy {
				p.alloc.Deref(onFalse)
				return onTrue, false
			}
			p.alloc.Deref(onTrue)
			return onFalse, false
		},
	})

	registerFixedArity(OpApply, &fixedOps{
		minArgs: 1,
		maxArgs: 2,
		defaultArg: func(p *Program, slot int) Ref {
			return NullRef
		},
		fixop: func(p *Program, env Ref, args []Ref) (Ref, bool) {
			expr, altEnv := args[0], args[1]
			target := env
			if !altEnv.IsNull() {
				p.alloc.Deref(env)
				target = altEnv
			}
			closure := p.alloc.CreateFunc(funcIDBLLEval, target, NullRef)
			p.conts = append(p.conts, Continuation{closure: closure, args: expr})
			return NullRef, true
		},
	})
}
