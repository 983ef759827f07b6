// ops_bytes.go — the byte-string operators: STRLEN, SUBSTR, CAT,
// LT_STR (spec §6.3).
//
// vm.go's opGetIdx/opGetProp operate on Go strings and arrays, not the
// byte-atom chunk layout here, so there is no direct teacher opcode
// analog; SUBSTR's bounds-checked slicing and LT_STR's chained
// byte-for-byte comparison follow spec §6.3's own description, built
// in the teacher's general per-operator registration style (a doc
// comment above each handler, a fold over a varargs call for the
// reducers).
package bll

import "bytes"

func init() {
	registerReducer(OpStrlen, &reducerOps{
		init: func(p *Program) Ref { return p.alloc.CreateInt(0) },
		idempotent: func(a *Allocator, state, arg Ref) bool {
			return a.IsAtom(arg) && len(a.AtomBytes(arg)) == 0
		},
		reduce: func(p *Program, state, arg Ref) (Ref, Ref) {
			if !p.alloc.IsAtom(arg) {
				p.alloc.Deref(state)
				p.alloc.Deref(arg)
				return NullRef, p.fail("bll/ops", 0)
			}
			total, _ := DecodeInt(p.alloc.AtomBytes(state))
			total += int64(len(p.alloc.AtomBytes(arg)))
			p.alloc.Deref(state)
			p.alloc.Deref(arg)
			return p.alloc.CreateInt(total), NullRef
		},
		finish: func(p *Program, state Ref) Ref { return state },
	})

	registerReducer(OpCat, &reducerOps{
		init: func(p *Program) Ref { return p.alloc.CreateBytes(nil) },
		idempotent: func(a *Allocator, state, arg Ref) bool {
			return a.IsAtom(arg) && len(a.AtomBytes(arg)) == 0
		},
		reduce: func(p *Program, state, arg Ref) (Ref, Ref) {
			if !p.alloc.IsAtom(arg) {
				p.alloc.Deref(state)
				p.alloc.Deref(arg)
				return NullRef, p.fail("bll/ops", 0)
			}
			combined := append(append([]byte{}, p.alloc.AtomBytes(state)...), p.alloc.AtomBytes(arg)...)
			p.alloc.Deref(state)
			p.alloc.Deref(arg)
			return p.alloc.CreateBytes(combined), NullRef
		},
		finish: func(p *Program, state Ref) Ref { return state },
	})

	registerReducer(OpLtStr, &reducerOps{
		init: func(p *Program) Ref {
			return p.alloc.CreateCons(NullRef, p.alloc.boolRef(true))
		},
		idempotent: func(a *Allocator, state, arg Ref) bool {
			_, verdict := a.ConsParts(state)
			return !a.isTruthy(verdict)
		},
		reduce: func(p *Program, state, arg Ref) (Ref, Ref) {
			if !p.alloc.IsAtom(arg) {
				p.alloc.Deref(state)
				p.alloc.Deref(arg)
				return NullRef, p.fail("bll/ops", 0)
			}
			prev, _ := p.alloc.ConsParts(state)
			var less bool
			if prev.IsNull() {
				less = true
			} else {
				less = bytes.Compare(p.alloc.AtomBytes(prev), p.alloc.AtomBytes(arg)) < 0
			}
			newVerdict := p.alloc.boolRef(less)
			p.alloc.Deref(state)
			return p.alloc.CreateCons(arg, newVerdict), NullRef
		},
		finish: func(p *Program, state Ref) Ref {
			_, verdict := p.alloc.ConsParts(state)
			p.alloc.Bumpref(verdict)
			p.alloc.Deref(state)
			return verdict
		},
	})

	registerFixedArity(OpSubstr, &fixedOps{
		minArgs: 2,
		maxArgs: 3,
		defaultArg: func(p *Program, slot int) Ref {
			return NullRef
		},
		fixop: func(p *Program, env Ref, args []Ref) (Ref, bool) {
			p.alloc.Deref(env)
			str, startRef, endRef := args[0], args[1], args[2]
			if !p.alloc.IsAtom(str) || !p.alloc.IsAtom(startRef) || (!endRef.IsNull() && !p.alloc.IsAtom(endRef)) {
				p.alloc.Deref(str)
				p.alloc.Deref(startRef)
				if !endRef.IsNull() {
					p.alloc.Deref(endRef)
				}
				return p.fail("bll/ops", 0), false
			}
			data := p.alloc.AtomBytes(str)
			start, ok := DecodeInt(p.alloc.AtomBytes(startRef))
			p.alloc.Deref(startRef)
			end := int64(len(data))
			if !endRef.IsNull() {
				e, ok2 := DecodeInt(p.alloc.AtomBytes(endRef))
				p.alloc.Deref(endRef)
				if !ok2 {
					ok = false
				}
				end = e
			}
			if !ok || start < 0 || end < start || end > int64(len(data)) {
				p.alloc.Deref(str)
				return p.fail("bll/ops", 0), false
			}
			result := p.alloc.CreateBytes(data[start:end])
			p.alloc.Deref(str)
			return result, false
		},
	})
}
