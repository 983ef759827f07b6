// allocator.go — the buddy allocator over fixed-size blocks.
//
// Grounded on original_source/buddy.cpp's NewBlock/TakeFree/MakeFree/
// FreeHalfChunk control flow, restructured the way the teacher restructures
// its VM's instruction stream (vm.go) as plain Go slices rather than the
// packed-struct encoding the C++ original uses. See DESIGN.md.
package bll

import "fmt"

const (
	chunkUnit      = 16               // bytes per unit; the smallest chunk size
	blockExp       = 14               // log2(chunksPerBlock); 16 << 14 == 256 KiB
	chunksPerBlock = 1 << blockExp    // 16384
	blockBytes     = chunksPerBlock * chunkUnit
	maxAllocExp    = 3 // allocated chunks are sized 16,32,64,128 bytes (sh 0..3)
)

// AllocError reports programmer-level misuse of the allocator API — an
// out-of-range size class, a double free, an atom accessor applied to a
// non-atom chunk, or similar. It is raised with panic, not returned; Refs
// themselves are not validated. It is distinct from the in-graph ERROR
// value kind the evaluator produces; see SPEC_FULL.md §10.1.
type AllocError struct {
	Op  string
	Msg string
}

func (e *AllocError) Error() string { return fmt.Sprintf("bll: %s: %s", e.Op, e.Msg) }

// freeLink is the bookkeeping record a free chunk carries in its first
// nine bytes: {tag, prev:Ref, next:Ref}.
type freeLink struct {
	prev, next Ref
}

// Allocator owns a growing sequence of 256 KiB blocks, each subdivided
// by recursive halving into chunks of size 16..256KiB, and the per-size
// circular free lists threaded through the free chunks themselves. It
// is a plain, unsynchronized owner of its memory — per spec §5, the
// engine is single-threaded and a higher-level "safe" wrapper (the
// Program/Value API in this package) is responsible for not aliasing a
// live reference across goroutines.
type Allocator struct {
	blocks [][]byte
	free   [blockExp + 1]Ref // free[sh] = head of the circular free list for size 16<<sh

	// Side tables for payload/state that does not fit in a 16-byte
	// chunk's in-band bytes. This is the idiomatic-Go stand-in for the
	// original's raw heap pointers (OWNED_ATOM/EXT_ATOM.data_ptr,
	// ERROR.file_ptr, FUNC_EXT.state) — see DESIGN.md "Value layer".
	ownedBytes map[Ref][]byte
	extBytes   map[Ref][]byte
	errFile    map[Ref]string
	extState   map[Ref]any

	// Interned, NOREFCOUNT singletons created at construction (spec §4.2).
	nilRef Ref
	oneRef Ref
}

// NewAllocator constructs an empty allocator and interns the canonical
// nil and one atoms.
func NewAllocator() *Allocator {
	a := &Allocator{
		ownedBytes: make(map[Ref][]byte),
		extBytes:   make(map[Ref][]byte),
		errFile:    make(map[Ref]string),
		extState:   make(map[Ref]any),
	}
	for i := range a.free {
		a.free[i] = NullRef
	}
	a.nilRef = a.internAtom(nil)
	a.oneRef = a.internAtom([]byte{0x01})
	return a
}

// Nil returns the interned empty-atom reference (the canonical false/nil value).
func (a *Allocator) Nil() Ref { return a.nilRef }

// One returns the interned one-byte 0x01 atom (the canonical true value).
func (a *Allocator) One() Ref { return a.oneRef }

func (a *Allocator) internAtom(data []byte) Ref {
	ref := a.Allocate(0, InplaceAtom)
	chunk := a.rawChunk(ref)
	writeRC(chunk, 1)
	chunk[4] = uint8(len(data))
	copy(chunk[5:], data)
	chunk[0] = Tag{Type: NoRefcount, SizeExp: 0}.Encode()
	return ref
}

func (a *Allocator) newBlock() {
	a.blocks = append(a.blocks, make([]byte, blockBytes))
	whole := Ref{Block: uint16(len(a.blocks) - 1), Idx: 0}
	a.pushFree(whole, blockExp)
}

// rawChunk returns the block's bytes from ref's chunk to the end of the
// block, not trimmed to the chunk's size — callers read byte 0 for the
// tag themselves when they need the size; Chunk does the trimming.
func (a *Allocator) rawChunk(ref Ref) []byte {
	blk := a.blocks[ref.Block]
	off := int(ref.Idx) * chunkUnit
	return blk[off:]
}

// Chunk returns the full byte slice for ref's current allocated size,
// as recorded in its own tag byte. This is the allocator's public
// "peek at raw bytes" primitive (spec §4.1 "chunk(ref)").
func (a *Allocator) Chunk(ref Ref) []byte {
	full := a.rawChunk(ref)
	t := DecodeTag(full[0])
	return full[:t.Size()]
}

func (a *Allocator) tagAt(ref Ref) Tag {
	return DecodeTag(a.rawChunk(ref)[0])
}

func (a *Allocator) setTagAt(ref Ref, t Tag) {
	a.rawChunk(ref)[0] = t.Encode()
}

// --- free list management ---------------------------------------------

func readFreeLink(chunk []byte) freeLink {
	return freeLink{
		prev: decodeRef(chunk[1:5]),
		next: decodeRef(chunk[5:9]),
	}
}

func writeFreeLink(chunk []byte, l freeLink) {
	encodeRef(chunk[1:5], l.prev)
	encodeRef(chunk[5:9], l.next)
}

func encodeRef(b []byte, r Ref) {
	b[0] = byte(r.Block)
	b[1] = byte(r.Block >> 8)
	b[2] = byte(r.Idx)
	b[3] = byte(r.Idx >> 8)
}

func decodeRef(b []byte) Ref {
	return Ref{
		Block: uint16(b[0]) | uint16(b[1])<<8,
		Idx:   uint16(b[2]) | uint16(b[3])<<8,
	}
}

// pushFree inserts ref (a chunk of size 16<<sh) as the new head of
// free[sh]'s circular doubly linked list.
func (a *Allocator) pushFree(ref Ref, sh uint8) {
	chunk := a.rawChunk(ref)
	chunk[0] = Tag{Free: true, SizeExp: sh}.Encode()
	head := a.free[sh]
	if head.IsNull() {
		writeFreeLink(chunk, freeLink{prev: ref, next: ref})
		a.free[sh] = ref
		return
	}
	headChunk := a.rawChunk(head)
	headLink := readFreeLink(headChunk)
	tail := headLink.prev
	tailChunk := a.rawChunk(tail)

	writeFreeLink(chunk, freeLink{prev: tail, next: head})
	tailLink := readFreeLink(tailChunk)
	tailLink.next = ref
	writeFreeLink(tailChunk, tailLink)
	headLink = readFreeLink(headChunk)
	headLink.prev = ref
	writeFreeLink(headChunk, headLink)

	a.free[sh] = ref
}

// unlinkFree removes ref (known to be free at size class sh) from its
// free list, patching neighbours and the list head as needed.
func (a *Allocator) unlinkFree(ref Ref, sh uint8) {
	chunk := a.rawChunk(ref)
	l := readFreeLink(chunk)
	if l.next == ref {
		// sole entry
		a.free[sh] = NullRef
		return
	}
	prevChunk := a.rawChunk(l.prev)
	nextChunk := a.rawChunk(l.next)
	prevLink := readFreeLink(prevChunk)
	prevLink.next = l.next
	writeFreeLink(prevChunk, prevLink)
	nextLink := readFreeLink(nextChunk)
	nextLink.prev = l.prev
	writeFreeLink(nextChunk, nextLink)
	if a.free[sh] == ref {
		a.free[sh] = l.next
	}
}

// takeFree pops and returns the head of free[sh], or NullRef if empty.
func (a *Allocator) takeFree(sh uint8) Ref {
	head := a.free[sh]
	if head.IsNull() {
		return NullRef
	}
	a.unlinkFree(head, sh)
	return head
}

// --- allocate / deallocate ----------------------------------------------

// Allocate returns a chunk of size 16<<sh (sh must be 0..3, one of the
// four value-layer size classes) tagged with typ. The caller must
// treat the chunk as uninitialised beyond the tag byte this call
// writes; it is responsible for filling in the rest of the layout.
func (a *Allocator) Allocate(sh uint8, typ ChunkType) Ref {
	if sh > maxAllocExp {
		panic(&AllocError{Op: "Allocate", Msg: "size class out of range"})
	}
	ref := a.allocateRaw(sh)
	a.setTagAt(ref, Tag{Type: typ, SizeExp: sh})
	return ref
}

// allocateRaw implements spec §4.1's Allocate(sh) without writing a
// final tag (the free-chunk tag written mid-algorithm is overwritten by
// the caller).
func (a *Allocator) allocateRaw(sh uint8) Ref {
	found := sh
	for found <= blockExp && a.free[found].IsNull() {
		found++
	}
	if found > blockExp {
		a.newBlock()
		found = blockExp
	}
	ref := a.takeFree(found)
	for found > sh {
		found--
		buddy := Ref{Block: ref.Block, Idx: ref.Idx ^ uint16(1<<found)}
		a.pushFree(buddy, found)
	}
	return ref
}

// Deallocate returns ref's chunk to the free pool, coalescing with its
// buddy at each size class as long as the buddy is itself free.
func (a *Allocator) Deallocate(ref Ref) {
	t := a.tagAt(ref)
	if t.Free {
		panic(&AllocError{Op: "Deallocate", Msg: "double free"})
	}
	a.releasePayload(ref, t.Type)
	sh := t.SizeExp
	for sh < blockExp {
		buddy := Ref{Block: ref.Block, Idx: ref.Idx ^ uint16(1<<sh)}
		bt := a.tagAt(buddy)
		if !bt.Free || bt.SizeExp != sh {
			break
		}
		a.unlinkFree(buddy, sh)
		if buddy.Idx < ref.Idx {
			ref = buddy
		}
		sh++
	}
	a.pushFree(ref, sh)
}

// releasePayload drops any side-table entry associated with ref before
// its chunk bytes are reused (owned-atom bytes, ext-atom binding,
// error origin file, or FUNC_EXT native state).
func (a *Allocator) releasePayload(ref Ref, typ ChunkType) {
	switch typ {
	case OwnedAtom:
		delete(a.ownedBytes, ref)
	case ExtAtom:
		delete(a.extBytes, ref)
	case ErrorChunk:
		delete(a.errFile, ref)
	case FuncExtChunk:
		delete(a.extState, ref)
	}
}

// --- refcount field (u24 little-endian at offset 1) ---------------------

func readRC(chunk []byte) uint32 {
	return uint32(chunk[1]) | uint32(chunk[2])<<8 | uint32(chunk[3])<<16
}

func writeRC(chunk []byte, v uint32) {
	chunk[1] = byte(v)
	chunk[2] = byte(v >> 8)
	chunk[3] = byte(v >> 16)
}
