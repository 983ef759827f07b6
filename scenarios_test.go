package bll

import "testing"

func Test_Scenario_Add(t *testing.T) {
	a := NewAllocator()
	env := a.CreateCons(a.CreateInt(100), a.CreateInt(23))
	sexpr := call(a, OpAdd, a.CreateInt(envIndex(0)), a.CreateInt(envIndex(1)))
	result := runExpr(t, sexpr, env, a)
	if n := mustInt(t, a, result); n != 123 {
		t.Fatalf("ADD(100,23) = %d, want 123", n)
	}
	a.Deref(result)
}

func Test_Scenario_Cat(t *testing.T) {
	a := NewAllocator()
	env := a.CreateCons(a.CreateBytes([]byte("foo")), a.CreateBytes([]byte("bar")))
	sexpr := call(a, OpCat, a.CreateInt(envIndex(0)), a.CreateInt(envIndex(1)))
	result := runExpr(t, sexpr, env, a)
	if got := string(mustBytes(t, a, result)); got != "foobar" {
		t.Fatalf("CAT(foo,bar) = %q, want foobar", got)
	}
	a.Deref(result)
}

func Test_Scenario_CatCrossesInlineThreshold(t *testing.T) {
	a := NewAllocator()
	left := make([]byte, 100)
	right := make([]byte, 100)
	for i := range left {
		left[i] = 'a'
	}
	for i := range right {
		right[i] = 'b'
	}
	env := a.CreateCons(a.CreateBytes(left), a.CreateBytes(right))
	sexpr := call(a, OpCat, a.CreateInt(envIndex(0)), a.CreateInt(envIndex(1)))
	result := runExpr(t, sexpr, env, a)
	want := append(append([]byte{}, left...), right...)
	got := mustBytes(t, a, result)
	if string(got) != string(want) {
		t.Fatalf("CAT across the inline threshold produced wrong bytes (len %d)", len(got))
	}
	if a.tagAt(result).Type != OwnedAtom {
		t.Fatalf("CAT result past the inline-atom size classes should be an OWNED_ATOM, got %v", a.tagAt(result).Type)
	}
	a.Deref(result)
}

func Test_Scenario_AddBoundary(t *testing.T) {
	a := NewAllocator()

	// math.MaxInt64 is the largest magnitude representable in an 8-byte
	// sign-magnitude atom; one past it overflows int64 arithmetic itself
	// and must be caught before an ERROR result is even attempted.
	const maxRepresentable = int64(1<<63 - 1)
	env := a.CreateCons(a.CreateInt(maxRepresentable), a.CreateInt(1))
	sexpr := call(a, OpAdd, a.CreateInt(envIndex(0)), a.CreateInt(envIndex(1)))
	result := runExpr(t, sexpr, env, a)
	mustError(t, a, result)
	a.Deref(result)

	// maxRepresentable plus its own negation is 0, not an overflow,
	// exercising the same boundary from the other side.
	env2 := a.CreateCons(a.CreateInt(maxRepresentable), a.CreateInt(-maxRepresentable))
	sexpr3 := call(a, OpAdd, a.CreateInt(envIndex(0)), a.CreateInt(envIndex(1)))
	result2 := runExpr(t, sexpr3, env2, a)
	if n := mustInt(t, a, result2); n != 0 {
		t.Fatalf("ADD(maxRepresentable, -maxRepresentable) = %d, want 0", n)
	}
	a.Deref(result2)

	env3 := a.CreateCons(a.CreateInt(0), a.CreateInt(1))
	sexpr4 := call(a, OpAdd, a.CreateInt(envIndex(0)), a.CreateInt(envIndex(1)))
	result3 := runExpr(t, sexpr4, env3, a)
	if n := mustInt(t, a, result3); n != 1 {
		t.Fatalf("ADD(0,1) = %d, want 1", n)
	}
	a.Deref(result3)
}

func Test_Scenario_HeadTail(t *testing.T) {
	a := NewAllocator()
	env := a.CreateCons(a.CreateInt(7), a.CreateInt(9))
	list := call(a, OpQuote, a.CreateInt(envIndex(0)), a.CreateInt(envIndex(1)))
	sexpr := call(a, OpHead, list)
	result := runExpr(t, sexpr, env, a)
	if n := mustInt(t, a, result); n != 7 {
		t.Fatalf("HEAD(quote(7,9)) = %d, want 7", n)
	}
	a.Deref(result)

	env2 := a.CreateCons(a.CreateInt(7), a.CreateInt(9))
	list2 := call(a, OpQuote, a.CreateInt(envIndex(0)), a.CreateInt(envIndex(1)))
	tailExpr := call(a, OpTail, list2)
	headOfTail := call(a, OpHead, tailExpr)
	result2 := runExpr(t, headOfTail, env2, a)
	if n := mustInt(t, a, result2); n != 9 {
		t.Fatalf("HEAD(TAIL(quote(7,9))) = %d, want 9", n)
	}
	a.Deref(result2)
}

func Test_Scenario_If(t *testing.T) {
	a := NewAllocator()
	env := a.CreateCons(a.CreateBytes([]byte("T")), a.CreateBytes([]byte("F")))
	cond := a.CreateInt(envIndex(0))
	sexpr := call(a, OpIf, cond, a.CreateInt(envIndex(0)), a.CreateInt(envIndex(1)))
	result := runExpr(t, sexpr, env, a)
	if got := string(mustBytes(t, a, result)); got != "T" {
		t.Fatalf("IF(truthy,T,F) = %q, want T", got)
	}
	a.Deref(result)

	env2 := a.CreateCons(a.Copy(a.Nil()), a.CreateBytes([]byte("F")))
	cond2 := a.CreateInt(envIndex(0))
	sexpr2 := call(a, OpIf, cond2, a.CreateInt(envIndex(0)), a.CreateInt(envIndex(1)))
	result2 := runExpr(t, sexpr2, env2, a)
	if got := string(mustBytes(t, a, result2)); got != "F" {
		t.Fatalf("IF(nil,T,F) = %q, want F", got)
	}
	a.Deref(result2)
}

func Test_Scenario_IfDefaultBranches(t *testing.T) {
	a := NewAllocator()
	env := a.CreateInt(1)
	sexpr := call(a, OpIf, a.CreateInt(envIndex()))
	result := runExpr(t, sexpr, env, a)
	if n := mustInt(t, a, result); n != 1 {
		t.Fatalf("IF(1) with no branches should echo the condition as a bool, got %s", a.Print(result))
	}
	a.Deref(result)

	env2 := a.Copy(a.Nil())
	sexpr2 := call(a, OpIf, a.CreateInt(envIndex()))
	result2 := runExpr(t, sexpr2, env2, a)
	if !(a.IsAtom(result2) && len(a.AtomBytes(result2)) == 0) {
		t.Fatalf("IF(nil) with no branches should default the false branch to nil, got %s", a.Print(result2))
	}
	a.Deref(result2)
}

func Test_Scenario_LtStr(t *testing.T) {
	a := NewAllocator()
	env := a.CreateCons(a.CreateCons(a.CreateBytes([]byte("a")), a.CreateBytes([]byte("b"))), a.CreateBytes([]byte("c")))
	sexpr := call(a, OpLtStr,
		a.CreateInt(envIndex(0, 0)),
		a.CreateInt(envIndex(0, 1)),
		a.CreateInt(envIndex(1)))
	result := runExpr(t, sexpr, env, a)
	if !a.isTruthy(result) {
		t.Fatalf("LT_STR(a,b,c) should be true, got %s", a.Print(result))
	}
	a.Deref(result)

	env2 := a.CreateCons(a.CreateBytes([]byte("b")), a.CreateBytes([]byte("a")))
	sexpr2 := call(a, OpLtStr, a.CreateInt(envIndex(0)), a.CreateInt(envIndex(1)))
	result2 := runExpr(t, sexpr2, env2, a)
	if a.isTruthy(result2) {
		t.Fatalf("LT_STR(b,a) should be false, got %s", a.Print(result2))
	}
	a.Deref(result2)
}

func Test_Scenario_Sha256(t *testing.T) {
	a := NewAllocator()
	env := a.CreateBytes([]byte("abc"))
	sexpr := call(a, OpSha256, a.CreateInt(envIndex()))
	result := runExpr(t, sexpr, env, a)
	data := mustBytes(t, a, result)
	if len(data) != 32 {
		t.Fatalf("SHA256 result should be 32 bytes, got %d", len(data))
	}
	want := []byte{
		0xba, 0x78, 0x16, 0xbf, 0x8f, 0x01, 0xcf, 0xea,
		0x41, 0x41, 0x40, 0xde, 0x5d, 0xae, 0x22, 0x23,
		0xb0, 0x03, 0x61, 0xa3, 0x96, 0x17, 0x7a, 0x9c,
		0xb4, 0x10, 0xff, 0x61, 0xf2, 0x00, 0x15, 0xad,
	}
	for i := range want {
		if data[i] != want[i] {
			t.Fatalf("SHA256(abc) = %x, want %x", data, want)
		}
	}
	a.Deref(result)
}

func Test_Scenario_AddErrorShortCircuit(t *testing.T) {
	a := NewAllocator()
	env := a.CreateInt(5)
	nonAtomArg := call(a, OpQuote, a.CreateInt(envIndex()))
	sexpr := call(a, OpAdd, nonAtomArg)
	result := runExpr(t, sexpr, env, a)
	mustError(t, a, result)
	a.Deref(result)
}

// Test_Scenario_AddNeverEvaluatesArgsAfterAnError instruments RCONS (an
// arbitrary, otherwise-unrelated reducer standing in for a third
// argument) to count how many times it actually runs, confirming
// (ADD 1 (X) (RCONS ...)), where 1 looks up the environment, never
// reaches the third argument once
// the second one has produced an error.
func Test_Scenario_AddNeverEvaluatesArgsAfterAnError(t *testing.T) {
	origRCons := binaryReducers[OpRCons]
	evalCount := 0
	instrumented := *origRCons
	instrumented.reduce = func(p *Program, state, arg Ref) (Ref, Ref) {
		evalCount++
		return origRCons.reduce(p, state, arg)
	}
	binaryReducers[OpRCons] = &instrumented
	defer func() { binaryReducers[OpRCons] = origRCons }()

	a := NewAllocator()
	env := a.CreateInt(9)
	first := a.CreateInt(envIndex())
	bad := call(a, OpX)
	third := call(a, OpRCons, a.CreateInt(envIndex()))
	sexpr := call(a, OpAdd, first, bad, third)
	result := runExpr(t, sexpr, env, a)
	mustError(t, a, result)
	a.Deref(result)

	if evalCount != 0 {
		t.Fatalf("RCONS ran %d times; the third ADD argument must never be evaluated once an earlier one errors", evalCount)
	}
}

func Test_Scenario_ListPredicate(t *testing.T) {
	a := NewAllocator()
	env := a.CreateInt(0)
	list := call(a, OpQuote, a.CreateInt(envIndex()))
	sexpr := call(a, OpListP, list)
	result := runExpr(t, sexpr, env, a)
	if !a.isTruthy(result) {
		t.Fatalf("LIST?(quote(0)) should be true, got %s", a.Print(result))
	}
	a.Deref(result)
}
