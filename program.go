// program.go — the step-driven evaluator's public surface: Program,
// Continuation, the feedback slot, and the host-facing constructors.
//
// Grounded on the teacher's vm.go (the vm struct holding stack/sp/iptr,
// runChunk's instruction loop) and interpreter.go's public-API
// convention (a public constructor plus thin methods delegating to
// private drivers). The continuation stack here plays the role of
// vm.stack; "feedback" plays the role of the VM's top-of-stack result
// threaded into the next instruction. See DESIGN.md.
package bll

// Value is a live, owned reference into a Program's allocator. It is
// the vocabulary spec.md uses for what this package otherwise calls a
// Ref once it is being handled as evaluator data rather than raw
// allocator plumbing.
type Value = Ref

// Continuation is a pending unit of work: a closure (FUNC / FUNC_COUNT
// / FUNC_EXT chunk) paired with the value it is still waiting to
// finish consuming.
type Continuation struct {
	closure Ref
	args    Ref
}

// Program holds the continuation stack, the single feedback slot, and
// a handle to the allocator backing every value it touches.
type Program struct {
	alloc    *Allocator
	conts    []Continuation
	feedback Ref
}

// funcIDBLLEval is BLLEVAL's sentinel funcid. It is deliberately
// outside the 0..255 opcode space (spec §6.3: "BLLEVAL is internal and
// has no opcode") so it can never collide with a real table entry.
const funcIDBLLEval uint16 = 0x100

// NewProgram constructs a Program that will evaluate sexpr against
// env. Both references are consumed (the Program becomes their sole
// owner); callers that need to retain their own copy must bumpref
// first.
func NewProgram(alloc *Allocator, sexpr, env Ref) *Program {
	closure := alloc.CreateFunc(funcIDBLLEval, env, NullRef)
	return &Program{
		alloc:    alloc,
		conts:    []Continuation{{closure: closure, args: sexpr}},
		feedback: NullRef,
	}
}

// Alloc returns the allocator backing this program.
func (p *Program) Alloc() *Allocator { return p.alloc }

// Finished reports whether the continuation stack is empty — feedback
// then holds the final result (spec §4.3.1).
func (p *Program) Finished() bool { return len(p.conts) == 0 }

// InspectFeedback returns the current feedback value without
// transferring ownership; the caller must bumpref it to keep a
// reference past the Program's own lifetime.
func (p *Program) InspectFeedback() Ref { return p.feedback }

// setFeedback replaces the feedback slot, dropping whatever was there.
func (p *Program) setFeedback(v Ref) {
	if !p.feedback.IsNull() {
		p.alloc.Deref(p.feedback)
	}
	p.feedback = v
}

// Step executes a single continuation-stack pop/dispatch cycle (spec
// §4.3.2). It does nothing if the program is already Finished. If
// feedback currently holds an ERROR, this call instead drains every
// remaining continuation (releasing their references) and returns,
// leaving the ERROR as the final result.
func (p *Program) Step() {
	if len(p.conts) == 0 {
		return
	}
	if !p.feedback.IsNull() && p.alloc.tagAt(p.feedback).Type == ErrorChunk {
		for _, c := range p.conts {
			p.alloc.Deref(c.closure)
			p.alloc.Deref(c.args)
		}
		p.conts = p.conts[:0]
		return
	}

	cont := p.conts[len(p.conts)-1]
	p.conts = p.conts[:len(p.conts)-1]
	fb := p.feedback
	p.feedback = NullRef

	switch p.alloc.tagAt(cont.closure).Type {
	case FuncChunk:
		p.stepFunc(cont, fb)
	case FuncCountChunk:
		p.stepFuncCount(cont, fb)
	case FuncExtChunk:
		p.stepFuncExt(cont, fb)
	default:
		p.alloc.Deref(cont.closure)
		p.alloc.Deref(cont.args)
		p.alloc.Deref(fb)
		p.setFeedback(p.failInternal(0))
	}
}

// Run drives the program to completion and returns the final feedback
// (still owned by the Program's allocator; callers wanting to keep it
// independently of the Program must bumpref it before dropping the
// Program). It is a convenience wrapper, not part of the spec's
// minimal host loop (§6.1), which callers are free to write inline.
func (p *Program) Run() Ref {
	for !p.Finished() {
		p.Step()
	}
	return p.InspectFeedback()
}

// Release drops every reference still owned by the program: the
// feedback slot and any unresolved continuations. A host that
// abandons a Program mid-run (cancellation, per spec §5) must call
// this to return chunks to the allocator's free pool.
func (p *Program) Release() {
	for _, c := range p.conts {
		p.alloc.Deref(c.closure)
		p.alloc.Deref(c.args)
	}
	p.conts = nil
	if !p.feedback.IsNull() {
		p.alloc.Deref(p.feedback)
		p.feedback = NullRef
	}
}
