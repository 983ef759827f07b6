// refcount.go — reference counting and the iterative drop algorithm.
//
// Grounded on spec §4.2's drop pseudocode (authoritative for the
// node-processing rule: decrement when shared, else free the node and
// queue both children for the same rule) cast into Go control flow the way vm.go's
// runChunk is cast into a for loop over an instruction stream rather
// than recursive descent. The source's chunk-rewrite storage trick
// (reusing the freed chunk's own bytes as a deferred-work list node)
// depends on raw pointer reuse that has no safe Go equivalent; this
// repo substitutes an explicit slice-backed worklist, which gives the
// same guarantee the trick exists for — O(1) Go call-stack depth
// regardless of DAG depth — while letting Go's heap, not a fixed-size
// chunk, hold the pending work. See DESIGN.md.
package bll

// Bumpref records an additional owner of ref. NOREFCOUNT chunks (the
// interned nil/one atoms) are immutable and shared by value of the
// reference itself; bumping one is a no-op.
func (a *Allocator) Bumpref(ref Ref) {
	if ref.IsNull() {
		return
	}
	t := a.tagAt(ref)
	if !refcountedType(t.Type) {
		return
	}
	chunk := a.rawChunk(ref)
	writeRC(chunk, readRC(chunk)+1)
}

// Deref drops one owning reference to ref. If that was the last
// reference, ref's children are queued for the same treatment and the
// chunk is returned to the free pool; this repeats until the worklist
// is empty, so dropping a cons chain of any length never recurses.
func (a *Allocator) Deref(ref Ref) {
	if ref.IsNull() {
		return
	}
	work := []Ref{ref}
	for len(work) > 0 {
		r := work[len(work)-1]
		work = work[:len(work)-1]
		if r.IsNull() {
			continue
		}
		t := a.tagAt(r)
		if !refcountedType(t.Type) {
			continue
		}
		chunk := a.rawChunk(r)
		rc := readRC(chunk)
		if rc > 1 {
			writeRC(chunk, rc-1)
			continue
		}
		x, y := a.childRefs(r)
		a.Deallocate(r)
		if !x.IsNull() {
			work = append(work, x)
		}
		if !y.IsNull() {
			work = append(work, y)
		}
	}
}

// Copy returns a second owning reference to ref (bumpref then hand
// back the same Ref), matching the host-facing "copying requires an
// explicit copy()/bumpref()" contract of spec §6.1.
func (a *Allocator) Copy(ref Ref) Ref {
	a.Bumpref(ref)
	return ref
}
