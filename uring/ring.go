package uring

import (
	"sync/atomic"
	"unsafe"
)

// sqRing ...
type sqRing struct {
	head        *uint32
	tail        *uint32
	ringMask    *uint32
	ringEntries *uint32
	dropped     *uint32
	flags       *uint32
	array       uint32Array

	sqes sqeArray
}

type uint32Array struct{ p unsafe.Pointer }

func (a uint32Array) set(idx uint32, value uint32) {
	*(*uint32)(unsafe.Add(a.p, uintptr(idx)*4)) = value
}

func (a uint32Array) get(idx uint32) uint32 {
	return *(*uint32)(unsafe.Add(a.p, uintptr(idx)*4))
}

type sqeArray struct{ p unsafe.Pointer }

func (a sqeArray) at(idx uint32) *SQEntry {
	return (*SQEntry)(unsafe.Add(a.p, uintptr(idx)*sqeSize))
}

type cqRing struct {
	head        *uint32
	tail        *uint32
	ringMask    *uint32
	ringEntries *uint32
	overflow    *uint32
	cqes        cqeArray
}

type cqeArray struct{ p unsafe.Pointer }

func (a cqeArray) get(idx uint32) CQEntry {
	return *(*CQEntry)(unsafe.Add(a.p, uintptr(idx)*cqeSize))
}

// Ring is an interface to io_uring kernel framework.
// Not safe to use from multiple goroutines without additional synchronization.
//
// Application owns sq tail and cq head, kernel owns sq head and cq tail. Indices are
// free running counters, slot is always index & mask.
type Ring struct {
	// fd returned by IO_URING_SETUP
	fd     int
	params IOUringParams

	sq sqRing
	cq cqRing

	// pointers returned by mmap calls, used only for munmap
	sqData []byte
	// cqData is nil if kernel supports IORING_FEAT_SINGLE_MMAP
	cqData []byte
	// sqArrayData array mapped with Ring.fd at IORING_OFF_SQES offset
	sqArrayData []byte
}

// Fd returns ring descriptor.
func (r *Ring) Fd() int {
	return r.fd
}

// Params returns parameters negotiated with the kernel.
func (r *Ring) Params() IOUringParams {
	return r.params
}

func (r *Ring) CQSize() int {
	return int(r.params.CQEntries)
}

func (r *Ring) SQSize() int {
	return int(r.params.SQEntries)
}

// SQTail returns free running submission tail.
func (r *Ring) SQTail() uint32 {
	return atomic.LoadUint32(r.sq.tail)
}

// CQHead returns free running completion head.
func (r *Ring) CQHead() uint32 {
	return atomic.LoadUint32(r.cq.head)
}

// Ready returns number of completions that can be consumed without waiting.
func (r *Ring) Ready() uint32 {
	return atomic.LoadUint32(r.cq.tail) - *r.cq.head
}

// Prepare writes a single submission into the next slot and publishes it by advancing
// the tail. Kernel will see it on the next Enter call. Prepare never blocks.
func (r *Ring) Prepare(op uint8, fd int32, addr uint64, length uint32, userData uint64, opcodeFlags uint32) error {
	tail := *r.sq.tail
	if tail-atomic.LoadUint32(r.sq.head) >= *r.sq.ringEntries {
		return ErrQueueFull
	}
	idx := tail & *r.sq.ringMask

	sqe := r.sq.sqes.at(idx)
	sqe.Reset()
	sqe.opcode = op
	sqe.fd = fd
	sqe.addr = addr
	sqe.len = length
	sqe.userData = userData
	sqe.opcodeFlags = opcodeFlags

	// kernel dereferences entries through the index array
	r.sq.array.set(idx, idx)
	// seq-cst store: every field above is visible before the kernel observes new tail
	atomic.StoreUint32(r.sq.tail, tail+1)
	return nil
}

// Complete consumes a completion at the head of the completion queue.
// Must be called only if a preceding wait reported a completion (or Ready is non-zero),
// otherwise a stale slot is returned.
// CQE is copied from mmaped region, the slot is released to the kernel before returning.
func (r *Ring) Complete() CQEntry {
	head := *r.cq.head
	cqe := r.cq.cqes.get(head & *r.cq.ringMask)
	atomic.StoreUint32(r.cq.head, head+1)
	return cqe
}

// Peek copies completion at the head without consuming it.
func (r *Ring) Peek() (CQEntry, bool) {
	head := *r.cq.head
	if head == atomic.LoadUint32(r.cq.tail) {
		return CQEntry{}, false
	}
	return r.cq.cqes.get(head & *r.cq.ringMask), true
}

// Overflow returns number of completions dropped by the kernel because cq was full.
func (r *Ring) Overflow() uint32 {
	return atomic.LoadUint32(r.cq.overflow)
}
