// dispatch.go — the tag-byte visitor dispatch: the sole point where a
// chunk's type code decides which typed accessor applies.
//
// The teacher has no tag-byte dispatch of its own; this follows the
// exhaustive switch-on-tag style of its value printer, restructured as
// a switch on the chunk's tag byte that calls out to a Visitor, since
// everything here lives in allocator chunks rather than behind a Go
// interface value. See DESIGN.md.
package bll

// Visitor accepts exactly one call per Dispatch, matching ref's chunk
// type. Implementations that only care about a subset of types embed
// UnsupportedVisitor and override the methods they need.
type Visitor interface {
	VisitAtom(ref Ref, data []byte)
	VisitCons(ref Ref, left, right Ref)
	VisitError(ref Ref, file string, line uint32)
	VisitFunc(ref Ref, funcID uint16, env, state Ref)
	VisitFuncCount(ref Ref, funcID uint16, env, state Ref, counter uint32)
	VisitFuncExt(ref Ref, funcID uint8, env Ref, state any)
}

// Dispatch reads ref's tag byte once and invokes the matching Visitor
// method. NOREFCOUNT, INPLACE_ATOM, OWNED_ATOM and EXT_ATOM all route
// to VisitAtom since they present the same logical view (a byte
// string); refcount.go and the operators that care about the
// distinction use the allocator's own tagAt when they need it.
func (a *Allocator) Dispatch(ref Ref, v Visitor) {
	switch a.tagAt(ref).Type {
	case NoRefcount, InplaceAtom, OwnedAtom, ExtAtom:
		v.VisitAtom(ref, a.AtomBytes(ref))
	case Cons:
		left, right := a.ConsParts(ref)
		v.VisitCons(ref, left, right)
	case ErrorChunk:
		file, line := a.ErrorInfo(ref)
		v.VisitError(ref, file, line)
	case FuncChunk:
		funcID, env, state := a.FuncInfo(ref)
		v.VisitFunc(ref, funcID, env, state)
	case FuncCountChunk:
		funcID, env, state, counter := a.FuncCountInfo(ref)
		v.VisitFuncCount(ref, funcID, env, state, counter)
	case FuncExtChunk:
		funcID, env, state := a.FuncExtInfo(ref)
		v.VisitFuncExt(ref, funcID, env, state)
	}
}

// UnsupportedVisitor panics on every method; embed it and override
// only the cases a particular Dispatch call site expects to see.
type UnsupportedVisitor struct{}

func (UnsupportedVisitor) VisitAtom(Ref, []byte)                         { panic(&AllocError{Op: "Dispatch", Msg: "unexpected atom"}) }
func (UnsupportedVisitor) VisitCons(Ref, Ref, Ref)                       { panic(&AllocError{Op: "Dispatch", Msg: "unexpected cons"}) }
func (UnsupportedVisitor) VisitError(Ref, string, uint32)                { panic(&AllocError{Op: "Dispatch", Msg: "unexpected error"}) }
func (UnsupportedVisitor) VisitFunc(Ref, uint16, Ref, Ref)               { panic(&AllocError{Op: "Dispatch", Msg: "unexpected func"}) }
func (UnsupportedVisitor) VisitFuncCount(Ref, uint16, Ref, Ref, uint32)  { panic(&AllocError{Op: "Dispatch", Msg: "unexpected func_count"}) }
func (UnsupportedVisitor) VisitFuncExt(Ref, uint8, Ref, any)            { panic(&AllocError{Op: "Dispatch", Msg: "unexpected func_ext"}) }

// childRefs returns the 0, 1, or 2 owned-reference children of ref's
// chunk, used by the iterative drop algorithm (refcount.go). Atoms and NOREFCOUNT
// chunks have none; CONS has two; the closure families have env and
// state (FUNC_EXT's state is opaque and not a graph reference).
func (a *Allocator) childRefs(ref Ref) (x, y Ref) {
	switch a.tagAt(ref).Type {
	case Cons:
		return a.ConsParts(ref)
	case FuncChunk:
		_, env, state := a.FuncInfo(ref)
		return env, state
	case FuncCountChunk:
		_, env, state, _ := a.FuncCountInfo(ref)
		return env, state
	case FuncExtChunk:
		_, env, _ := a.FuncExtInfo(ref)
		return env, NullRef
	default:
		return NullRef, NullRef
	}
}
