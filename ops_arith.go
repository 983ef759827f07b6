// ops_arith.go — the arithmetic operator: ADD (spec §6.3, §8.3
// "i64 saturating overflow boundary" — this repo treats overflow as an
// error rather than a silent wrap, per spec §8.3's stated boundary
// behavior).
//
// vm.go's opSub/opMul/opDiv/opMod operate on Go int64/float64 values
// directly through the language runtime's own overflow-free numeric
// tower, with no add-then-compare-sign guard of its own to crib from;
// the overflow check here (comparing the sum's sign against the
// addend's) is grounded on spec §8.3's stated boundary behavior alone,
// written in the teacher's general per-operator registration style.
package bll

func init() {
	registerReducer(OpAdd, &reducerOps{
		init: func(p *Program) Ref { return p.alloc.CreateInt(0) },
		idempotent: func(a *Allocator, state, arg Ref) bool {
			if !a.IsAtom(arg) {
				return false
			}
			n, ok := DecodeInt(a.AtomBytes(arg))
			return ok && n == 0
		},
		reduce: func(p *Program, state, arg Ref) (Ref, Ref) {
			if !p.alloc.IsAtom(state) || !p.alloc.IsAtom(arg) {
				p.alloc.Deref(state)
				p.alloc.Deref(arg)
				return NullRef, p.fail("bll/ops", 0)
			}
			a, ok1 := DecodeInt(p.alloc.AtomBytes(state))
			b, ok2 := DecodeInt(p.alloc.AtomBytes(arg))
			p.alloc.Deref(state)
			p.alloc.Deref(arg)
			if !ok1 || !ok2 {
				return NullRef, p.fail("bll/ops", 0)
			}
			sum := a + b
			if (b > 0 && sum < a) || (b < 0 && sum > a) {
				return NullRef, p.fail("bll/ops", 0)
			}
			return p.alloc.CreateInt(sum), NullRef
		},
		finish: func(p *Program, state Ref) Ref { return state },
	})
}
