// value.go — typed views over allocator chunks: constructors, field
// accessors, and the small-integer codec.
//
// Grounded on the teacher's interpreter.go Value/ValueTag constructor
// style (NewInt, NewStr, ...), generalized from a tagged Go interface
// union to a tagged in-band-byte union over allocator chunks. See
// DESIGN.md "Value layer".
package bll

import (
	"bytes"
	"math/bits"
)

// Inline-atom capacity per allocator size class (spec §4.2 "Creation").
const (
	inlineCap16  = 11
	inlineCap32  = 27
	inlineCap64  = 59
	inlineCap128 = 123
)

// --- small-integer codec -------------------------------------------------

// magByteLen returns the minimal byte count that can hold mag as a
// sign-magnitude little-endian integer: every byte but the last
// contributes a full 8 magnitude bits, the last contributes 7 (its top
// bit is reserved for the sign). math.MinInt64 is the one int64
// magnitude (2^63) too large for any 8-byte encoding; for it this
// returns 9, and DecodeInt's 8-byte cap then refuses to recognise the
// resulting atom as canonical on the way back in.
func magByteLen(mag uint64) int {
	for l := 1; l <= 8; l++ {
		if mag < uint64(1)<<uint(8*(l-1)+7) {
			return l
		}
	}
	return 9
}

// EncodeInt returns the minimal sign-magnitude little-endian encoding of
// n: the sign lives in the top bit of the last byte, the magnitude fills
// every other bit of every byte, and there is no redundant leading
// all-zero magnitude byte. Zero encodes as the empty atom.
func EncodeInt(n int64) []byte {
	if n == 0 {
		return nil
	}
	neg := n < 0
	var mag uint64
	if neg {
		mag = uint64(-(n+1)) + 1 // avoids overflowing int64 at math.MinInt64
	} else {
		mag = uint64(n)
	}
	length := magByteLen(mag)
	buf := make([]byte, length)
	rem := mag
	for i := 0; i < length-1; i++ {
		buf[i] = byte(rem)
		rem >>= 8
	}
	buf[length-1] = byte(rem)
	if neg {
		buf[length-1] |= 0x80
	}
	return buf
}

// DecodeInt decodes b as a minimally-encoded sign-magnitude little-endian
// integer: the top bit of the last byte is the sign, the remaining bits
// (of the last byte and every other byte) are the magnitude. ok is false
// if b is not a canonical integer encoding — longer than 8 bytes, or
// carrying a redundant leading magnitude byte that EncodeInt would never
// produce (this includes every "negative zero" pattern such as 0x80:
// canonical zero is always the empty atom, never a signed zero
// magnitude).
func DecodeInt(b []byte) (n int64, ok bool) {
	if len(b) == 0 {
		return 0, true
	}
	if len(b) > 8 {
		return 0, false
	}
	last := len(b) - 1
	neg := b[last]&0x80 != 0
	var mag uint64
	for i := last; i >= 0; i-- {
		v := b[i]
		if i == last {
			v &^= 0x80
		}
		mag = mag<<8 | uint64(v)
	}
	if neg {
		n = -int64(mag)
	} else {
		n = int64(mag)
	}
	if !bytes.Equal(EncodeInt(n), b) {
		return 0, false
	}
	return n, true
}

// --- atoms ---------------------------------------------------------------

func sizeClassFor(n int) (sh uint8, ok bool) {
	switch {
	case n <= inlineCap16:
		return 0, true
	case n <= inlineCap32:
		return 1, true
	case n <= inlineCap64:
		return 2, true
	case n <= inlineCap128:
		return 3, true
	default:
		return 0, false
	}
}

// CreateBytes materialises data as an atom: inline (INPLACE_ATOM) when
// it fits one of the four size classes, else OWNED_ATOM holding a copy.
func (a *Allocator) CreateBytes(data []byte) Ref {
	if sh, ok := sizeClassFor(len(data)); ok {
		ref := a.Allocate(sh, InplaceAtom)
		chunk := a.rawChunk(ref)
		writeRC(chunk, 1)
		chunk[4] = uint8(len(data))
		copy(chunk[5:], data)
		return ref
	}
	ref := a.Allocate(0, OwnedAtom)
	chunk := a.rawChunk(ref)
	writeRC(chunk, 1)
	chunk[4] = byte(len(data))
	chunk[5] = byte(len(data) >> 8)
	chunk[6] = byte(len(data) >> 16)
	chunk[7] = byte(len(data) >> 24)
	owned := make([]byte, len(data))
	copy(owned, data)
	a.ownedBytes[ref] = owned
	return ref
}

// CreateExternalBytes wraps caller-owned bytes (EXT_ATOM): the
// allocator never copies or frees the backing array, only drops its
// own reference to the Go slice on deref.
func (a *Allocator) CreateExternalBytes(data []byte) Ref {
	ref := a.Allocate(0, ExtAtom)
	chunk := a.rawChunk(ref)
	writeRC(chunk, 1)
	chunk[4] = byte(len(data))
	chunk[5] = byte(len(data) >> 8)
	chunk[6] = byte(len(data) >> 16)
	chunk[7] = byte(len(data) >> 24)
	a.extBytes[ref] = data
	return ref
}

// CreateInt encodes n and materialises it as an atom.
func (a *Allocator) CreateInt(n int64) Ref {
	return a.CreateBytes(EncodeInt(n))
}

// AtomBytes returns the byte contents of any atom-family chunk
// (INPLACE_ATOM, OWNED_ATOM, EXT_ATOM, or the NOREFCOUNT interned
// nil/one atoms).
func (a *Allocator) AtomBytes(ref Ref) []byte {
	t := a.tagAt(ref)
	chunk := a.rawChunk(ref)
	switch t.Type {
	case NoRefcount, InplaceAtom:
		n := int(chunk[4])
		return chunk[5 : 5+n]
	case OwnedAtom:
		return a.ownedBytes[ref]
	case ExtAtom:
		return a.extBytes[ref]
	default:
		panic(&AllocError{Op: "AtomBytes", Msg: "not an atom chunk: " + t.Type.String()})
	}
}

// IsAtom reports whether ref's chunk is one of the atom types.
func (a *Allocator) IsAtom(ref Ref) bool {
	switch a.tagAt(ref).Type {
	case NoRefcount, InplaceAtom, OwnedAtom, ExtAtom:
		return true
	default:
		return false
	}
}

// --- cons ------------------------------------------------------------

// CreateCons builds a CONS cell taking ownership of the left/right
// references (the caller must already hold live refs to them; this
// call does not bump them).
func (a *Allocator) CreateCons(left, right Ref) Ref {
	ref := a.Allocate(0, Cons)
	chunk := a.rawChunk(ref)
	writeRC(chunk, 1)
	encodeShort(chunk[4:7], PackShort(left))
	encodeShort(chunk[7:10], PackShort(right))
	return ref
}

// CreateList builds a right-nested cons chain from items, taking
// ownership of every element reference, terminated by nil.
func (a *Allocator) CreateList(items []Ref) Ref {
	tail := a.Nil()
	a.Bumpref(tail)
	for i := len(items) - 1; i >= 0; i-- {
		tail = a.CreateCons(items[i], tail)
	}
	return tail
}

// ConsParts returns the left/right references of a CONS chunk.
func (a *Allocator) ConsParts(ref Ref) (left, right Ref) {
	chunk := a.rawChunk(ref)
	return decodeShort(chunk[4:7]).Unpack(), decodeShort(chunk[7:10]).Unpack()
}

func encodeShort(b []byte, s ShortRef) {
	b[0] = byte(s)
	b[1] = byte(s >> 8)
	b[2] = byte(s >> 16)
}

func decodeShort(b []byte) ShortRef {
	return ShortRef(b[0]) | ShortRef(b[1])<<8 | ShortRef(b[2])<<16
}

// --- error -------------------------------------------------------------

// CreateError builds an ERROR value carrying an origin file/line.
func (a *Allocator) CreateError(file string, line uint32) Ref {
	ref := a.Allocate(0, ErrorChunk)
	chunk := a.rawChunk(ref)
	writeRC(chunk, 1)
	chunk[4] = byte(line)
	chunk[5] = byte(line >> 8)
	chunk[6] = byte(line >> 16)
	chunk[7] = byte(line >> 24)
	a.errFile[ref] = file
	return ref
}

// ErrorInfo returns an ERROR chunk's origin file/line.
func (a *Allocator) ErrorInfo(ref Ref) (file string, line uint32) {
	chunk := a.rawChunk(ref)
	line = uint32(chunk[4]) | uint32(chunk[5])<<8 | uint32(chunk[6])<<16 | uint32(chunk[7])<<24
	return a.errFile[ref], line
}

// --- closures ------------------------------------------------------------

// CreateFunc builds a FUNC-family closure. env/state are owned by this
// call (NullRef for an empty state is valid).
func (a *Allocator) CreateFunc(funcID uint16, env, state Ref) Ref {
	ref := a.Allocate(0, FuncChunk)
	chunk := a.rawChunk(ref)
	writeRC(chunk, 1)
	chunk[4] = byte(funcID)
	chunk[5] = byte(funcID >> 8)
	encodeShort(chunk[6:9], PackShort(env))
	encodeShort(chunk[9:12], PackShort(state))
	return ref
}

// FuncInfo reads back a FUNC chunk's fields.
func (a *Allocator) FuncInfo(ref Ref) (funcID uint16, env, state Ref) {
	chunk := a.rawChunk(ref)
	funcID = uint16(chunk[4]) | uint16(chunk[5])<<8
	env = decodeShort(chunk[6:9]).Unpack()
	state = decodeShort(chunk[9:12]).Unpack()
	return
}

// CreateFuncCount builds a FUNC_COUNT closure with an explicit argument
// counter.
func (a *Allocator) CreateFuncCount(funcID uint16, env, state Ref, counter uint32) Ref {
	ref := a.Allocate(0, FuncCountChunk)
	chunk := a.rawChunk(ref)
	writeRC(chunk, 1)
	chunk[4] = byte(funcID)
	chunk[5] = byte(funcID >> 8)
	encodeShort(chunk[6:9], PackShort(env))
	encodeShort(chunk[9:12], PackShort(state))
	chunk[12] = byte(counter)
	chunk[13] = byte(counter >> 8)
	chunk[14] = byte(counter >> 16)
	chunk[15] = byte(counter >> 24)
	return ref
}

// FuncCountInfo reads back a FUNC_COUNT chunk's fields.
func (a *Allocator) FuncCountInfo(ref Ref) (funcID uint16, env, state Ref, counter uint32) {
	chunk := a.rawChunk(ref)
	funcID = uint16(chunk[4]) | uint16(chunk[5])<<8
	env = decodeShort(chunk[6:9]).Unpack()
	state = decodeShort(chunk[9:12]).Unpack()
	counter = uint32(chunk[12]) | uint32(chunk[13])<<8 | uint32(chunk[14])<<16 | uint32(chunk[15])<<24
	return
}

// CreateFuncExt builds a FUNC_EXT closure whose native state lives in
// the allocator's side table, keyed by this chunk's own Ref (the Go
// stand-in for the original's opaque state pointer; see DESIGN.md).
func (a *Allocator) CreateFuncExt(funcID uint8, env Ref, state any) Ref {
	ref := a.Allocate(0, FuncExtChunk)
	chunk := a.rawChunk(ref)
	writeRC(chunk, 1)
	chunk[4] = funcID
	encodeShort(chunk[5:8], PackShort(env))
	a.extState[ref] = state
	return ref
}

// FuncExtInfo reads back a FUNC_EXT chunk's fields.
func (a *Allocator) FuncExtInfo(ref Ref) (funcID uint8, env Ref, state any) {
	chunk := a.rawChunk(ref)
	funcID = chunk[4]
	env = decodeShort(chunk[5:8]).Unpack()
	state = a.extState[ref]
	return
}

// SetFuncExtState replaces ref's native state in place. The FUNC_EXT
// driver does not use it; it builds a fresh closure for each new state.
func (a *Allocator) SetFuncExtState(ref Ref, state any) {
	a.extState[ref] = state
}

// bitLen returns the number of bits needed to represent n (n > 0),
// used by BLLEVAL's environment-index walk (spec §4.3.4).
func bitLen(n uint64) int { return bits.Len64(n) }
