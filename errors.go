// errors.go — the in-graph ERROR value kind and the programmer-facing
// AllocError type.
//
// Grounded on the teacher's errors.go (RuntimeError with Line/Col,
// origin-tracking via WrapErrorWithName) and runtime.go's fail()
// convention, adapted from a Go error-returning convention to an
// in-graph ERROR value per spec §7: operator failures never surface
// as Go errors from Step, they become feedback. See SPEC_FULL.md §10.1.
package bll

// internalOrigin is the origin file recorded for ERROR values raised
// by the engine itself rather than by an operator's own contract
// (spec §7: "programmer-level invariant violations within the
// engine... produce an ordinary ERROR").
const internalOrigin = "bll/internal"

// fail builds an ERROR value at the given origin. It does not touch
// p.conts; Step's own top-level shortcut (§4.3.2) drains the
// continuation stack the next time it is called with an ERROR in
// feedback.
func (p *Program) fail(file string, line uint32) Value {
	return Value(p.alloc.CreateError(file, line))
}

// failInternal raises an engine-internal ERROR: a continuation whose
// closure family or funcid should have been unreachable reached the
// dispatcher anyway.
func (p *Program) failInternal(line uint32) Value {
	return p.fail(internalOrigin, line)
}
