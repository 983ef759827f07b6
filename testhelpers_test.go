package bll

import "testing"

// envIndex computes the BLLEVAL environment-index selecting the value
// reached by walking path from the environment root, 0 for left, 1 for
// right (spec §4.3.4). An empty path selects the environment itself.
func envIndex(path ...int) int64 {
	n := int64(1)
	for _, bit := range path {
		n = n<<1 | int64(bit)
	}
	return n
}

// runExpr evaluates sexpr against env (both consumed) in allocator a,
// releases the program, and returns an owned reference to the final
// feedback value for the test to inspect and Deref.
func runExpr(t *testing.T, sexpr, env Ref, a *Allocator) Ref {
	t.Helper()
	p := NewProgram(a, sexpr, env)
	result := p.Run()
	a.Bumpref(result)
	p.Release()
	return result
}

func mustInt(t *testing.T, a *Allocator, ref Ref) int64 {
	t.Helper()
	if !a.IsAtom(ref) {
		t.Fatalf("expected atom, got tag %v", a.tagAt(ref).Type)
	}
	n, ok := DecodeInt(a.AtomBytes(ref))
	if !ok {
		t.Fatalf("not a canonical integer atom: %x", a.AtomBytes(ref))
	}
	return n
}

func mustBytes(t *testing.T, a *Allocator, ref Ref) []byte {
	t.Helper()
	if !a.IsAtom(ref) {
		t.Fatalf("expected atom, got tag %v", a.tagAt(ref).Type)
	}
	return a.AtomBytes(ref)
}

func mustError(t *testing.T, a *Allocator, ref Ref) {
	t.Helper()
	if a.tagAt(ref).Type != ErrorChunk {
		t.Fatalf("expected ERROR, got tag %v (%s)", a.tagAt(ref).Type, a.Print(ref))
	}
}

// call builds the expression (code arg0 arg1 ...), each arg already an
// expression (not a value) in BLLEVAL's sense.
func call(a *Allocator, code uint8, args ...Ref) Ref {
	return a.CreateCons(a.CreateInt(int64(code)), a.CreateList(args))
}

// pendingClosure steps p forward, without consuming the step, until a
// FUNC-family closure for funcID sits on top of the continuation stack
// with feedback waiting to be delivered to it. Used to capture a
// closure's Ref immediately before the step that will deliver its next
// argument, so a test can confirm whether that step rebuilt the closure
// or (per the idempotent-reducer fast path) reused it in place.
func pendingClosure(t *testing.T, p *Program, funcID uint16) Ref {
	t.Helper()
	for !p.Finished() {
		top := p.conts[len(p.conts)-1]
		if !p.feedback.IsNull() && p.alloc.tagAt(top.closure).Type == FuncChunk {
			if fid, _, _ := p.alloc.FuncInfo(top.closure); fid == funcID {
				return top.closure
			}
		}
		p.Step()
	}
	t.Fatalf("program finished without ever parking a pending closure for funcid %d", funcID)
	return NullRef
}
