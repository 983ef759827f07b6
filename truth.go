// truth.go — the one predicate every control and logic operator shares:
// spec §6.2's truthiness rule, "nil is the only false value".
package bll

// isTruthy reports whether ref counts as true: everything except the
// canonical empty atom (nil).
func (a *Allocator) isTruthy(ref Ref) bool {
	return !(a.IsAtom(ref) && len(a.AtomBytes(ref)) == 0)
}

// boolRef returns an owned reference to the canonical true (one) or
// false (nil) atom.
func (a *Allocator) boolRef(b bool) Ref {
	if b {
		return a.Copy(a.One())
	}
	return a.Copy(a.Nil())
}
