// ops_hash.go — the extended-state operator: SHA256 (spec §6.3, §11).
//
// Grounded on spec §11 (naming SHA256 as the sole FUNC_EXT-family
// operator) and the teacher's builtin_crypto.go wrapping of
// crypto/sha256 behind a native call. crypto/sha256 is this repo's one
// grounded third-party-equivalent dependency (see DESIGN.md): it is
// standard library, but is the idiomatic, and only sane, way to
// implement a fixed hash algorithm rather than hand-rolling one.
package bll

import (
	"crypto/sha256"
	"hash"
)

func init() {
	registerExtOp(OpSha256, &extOps{
		init: func(p *Program) any {
			return sha256.New()
		},
		extend: func(p *Program, state any, arg Ref) (any, Ref) {
			h := state.(hash.Hash)
			if !p.alloc.IsAtom(arg) {
				p.alloc.Deref(arg)
				return nil, p.fail("bll/ops", 0)
			}
			h.Write(p.alloc.AtomBytes(arg))
			p.alloc.Deref(arg)
			return h, NullRef
		},
		finish: func(p *Program, state any) Ref {
			h := state.(hash.Hash)
			return p.alloc.CreateBytes(h.Sum(nil))
		},
	})
}
