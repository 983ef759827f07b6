package bll

import "testing"

func Test_BllEngine_WalkEnvRoot(t *testing.T) {
	a := NewAllocator()
	env := a.CreateBytes([]byte("root"))
	got, ok := (&Program{alloc: a}).walkEnv(env, uint64(envIndex()))
	if !ok || string(a.AtomBytes(got)) != "root" {
		t.Fatalf("walkEnv index 1 should return the environment itself")
	}
	a.Deref(got)
	a.Deref(env)
}

func Test_BllEngine_WalkEnvBranches(t *testing.T) {
	a := NewAllocator()
	env := a.CreateCons(a.CreateBytes([]byte("L")), a.CreateBytes([]byte("R")))
	left, ok := (&Program{alloc: a}).walkEnv(env, uint64(envIndex(0)))
	if !ok || string(a.AtomBytes(left)) != "L" {
		t.Fatalf("walkEnv path [0] should reach the left child")
	}
	a.Deref(left)
	right, ok := (&Program{alloc: a}).walkEnv(env, uint64(envIndex(1)))
	if !ok || string(a.AtomBytes(right)) != "R" {
		t.Fatalf("walkEnv path [1] should reach the right child")
	}
	a.Deref(right)
	a.Deref(env)
}

func Test_BllEngine_WalkEnvPastLeafFails(t *testing.T) {
	a := NewAllocator()
	env := a.CreateBytes([]byte("leaf"))
	_, ok := (&Program{alloc: a}).walkEnv(env, uint64(envIndex(0)))
	if ok {
		t.Fatalf("walking past a non-CONS leaf should fail")
	}
	a.Deref(env)
}

func Test_BllEngine_ClassifyArgs(t *testing.T) {
	a := NewAllocator()
	p := &Program{alloc: a}

	cons := a.CreateCons(a.CreateInt(1), a.CreateInt(2))
	left, right, isCons, isEmpty := p.classifyArgs(cons)
	if !isCons || isEmpty || mustInt(t, a, left) != 1 || mustInt(t, a, right) != 2 {
		t.Fatalf("classifyArgs on a cons failed: left=%v right=%v isCons=%v isEmpty=%v", left, right, isCons, isEmpty)
	}
	a.Deref(cons)

	empty := a.Copy(a.Nil())
	_, _, isCons2, isEmpty2 := p.classifyArgs(empty)
	if isCons2 || !isEmpty2 {
		t.Fatalf("classifyArgs on nil should report isEmpty")
	}
	a.Deref(empty)

	malformed := a.CreateError("x", 1)
	_, _, isCons3, isEmpty3 := p.classifyArgs(malformed)
	if isCons3 || isEmpty3 {
		t.Fatalf("classifyArgs on an ERROR should report neither cons nor empty")
	}
	a.Deref(malformed)
}
