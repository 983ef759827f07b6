package bll

import "testing"

func Test_Op_Strlen(t *testing.T) {
	a := NewAllocator()
	env := a.CreateCons(a.CreateBytes([]byte("foo")), a.CreateBytes([]byte("bars")))
	sexpr := call(a, OpStrlen, a.CreateInt(envIndex(0)), a.CreateInt(envIndex(1)))
	result := runExpr(t, sexpr, env, a)
	if n := mustInt(t, a, result); n != 7 {
		t.Fatalf("STRLEN(foo,bars) = %d, want 7", n)
	}
	a.Deref(result)

	env2 := a.CreateInt(0)
	sexpr2 := call(a, OpStrlen)
	result2 := runExpr(t, sexpr2, env2, a)
	if n := mustInt(t, a, result2); n != 0 {
		t.Fatalf("STRLEN() with no arguments = %d, want 0", n)
	}
	a.Deref(result2)
}

func Test_Op_Substr(t *testing.T) {
	a := NewAllocator()

	env := a.CreateCons(a.CreateBytes([]byte("hello world")), a.CreateCons(a.CreateInt(6), a.CreateInt(11)))
	sexpr := call(a, OpSubstr, a.CreateInt(envIndex(0)), a.CreateInt(envIndex(1, 0)))
	result := runExpr(t, sexpr, env, a)
	if got := string(mustBytes(t, a, result)); got != "world" {
		t.Fatalf("SUBSTR(\"hello world\",6) with defaulted end = %q, want world", got)
	}
	a.Deref(result)

	env2 := a.CreateCons(a.CreateBytes([]byte("hello world")), a.CreateCons(a.CreateInt(0), a.CreateInt(5)))
	sexpr2 := call(a, OpSubstr, a.CreateInt(envIndex(0)), a.CreateInt(envIndex(1, 0)), a.CreateInt(envIndex(1, 1)))
	result2 := runExpr(t, sexpr2, env2, a)
	if got := string(mustBytes(t, a, result2)); got != "hello" {
		t.Fatalf("SUBSTR(\"hello world\",0,5) = %q, want hello", got)
	}
	a.Deref(result2)

	env3 := a.CreateCons(a.CreateBytes([]byte("hello")), a.CreateCons(a.CreateInt(3), a.CreateInt(1)))
	sexpr3 := call(a, OpSubstr, a.CreateInt(envIndex(0)), a.CreateInt(envIndex(1, 0)), a.CreateInt(envIndex(1, 1)))
	result3 := runExpr(t, sexpr3, env3, a)
	mustError(t, a, result3)
	a.Deref(result3)

	env4 := a.CreateCons(a.CreateBytes([]byte("hello")), a.CreateCons(a.CreateInt(0), a.CreateInt(10)))
	sexpr4 := call(a, OpSubstr, a.CreateInt(envIndex(0)), a.CreateInt(envIndex(1, 0)), a.CreateInt(envIndex(1, 1)))
	result4 := runExpr(t, sexpr4, env4, a)
	mustError(t, a, result4)
	a.Deref(result4)
}
