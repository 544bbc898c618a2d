package uring

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// syscalls
const (
	IO_URING_SETUP    uintptr = unix.SYS_IO_URING_SETUP
	IO_URING_ENTER    uintptr = unix.SYS_IO_URING_ENTER
	IO_URING_REGISTER uintptr = unix.SYS_IO_URING_REGISTER
)

// operations
const (
	IORING_OP_NOP uint8 = iota
	IORING_OP_READV
	IORING_OP_WRITEV
	IORING_OP_FSYNC
	IORING_OP_READ_FIXED
	IORING_OP_WRITE_FIXED
	IORING_OP_POLL_ADD
	IORING_OP_POLL_REMOVE
	IORING_OP_SYNC_FILE_RANGE
	IORING_OP_SENDMSG
	IORING_OP_RECVMSG
	IORING_OP_TIMEOUT
	IORING_OP_TIMEOUT_REMOVE
	IORING_OP_ACCEPT
	IORING_OP_ASYNC_CANCEL
	IORING_OP_LINK_TIMEOUT
	IORING_OP_CONNECT
	IORING_OP_FALLOCATE
	IORING_OP_OPENAT
	IORING_OP_CLOSE
	IORING_OP_FILES_UPDATE
	IORING_OP_STATX
	IORING_OP_READ
	IORING_OP_WRITE
	IORING_OP_LAST
)

// sqe timeout flags
const (
	IORING_TIMEOUT_ABS uint32 = 1 << iota
	IORING_TIMEOUT_UPDATE
	IORING_TIMEOUT_BOOTTIME
	IORING_TIMEOUT_REALTIME
	IORING_LINK_TIMEOUT_UPDATE
	IORING_TIMEOUT_ETIME_SUCCESS
	// IORING_TIMEOUT_MULTISHOT keeps a single timeout submission firing every period
	// until it is cancelled. Requires linux 6.4.
	IORING_TIMEOUT_MULTISHOT
)

// cqe flags
const (
	// IORING_CQE_F_MORE is set while a multishot submission will post more completions.
	IORING_CQE_F_MORE uint32 = 1 << 1
)

// offsets for mmap
const (
	IORING_OFF_SQ_RING int64 = 0
	IORING_OFF_CQ_RING int64 = 0x8000000
	IORING_OFF_SQES    int64 = 0x10000000
)

// enter flags
const (
	IORING_ENTER_GETEVENTS uint32 = 1 << 0
)

// params feature flags
const (
	IORING_FEAT_SINGLE_MMAP uint32 = 1 << 0
)

// NoFD is the descriptor used by operations that don't target a file.
const NoFD int32 = -1

// sigsetSize is _NSIG / 8, the only sigmask size io_uring_enter accepts.
const sigsetSize = 8

var (
	sqeSize = unsafe.Sizeof(SQEntry{})
	cqeSize = unsafe.Sizeof(CQEntry{})
)

// IOUringParams is passed to IO_URING_SETUP. Kernel fills entry counts, features and
// both offsets structures.
type IOUringParams struct {
	SQEntries    uint32
	CQEntries    uint32
	Flags        uint32
	SQThreadCPU  uint32
	SQThreadIdle uint32
	Features     uint32
	WQFd         uint32
	resv         [3]uint32
	SQOff        SQRingOffsets
	CQOff        CQRingOffsets
}

type SQRingOffsets struct {
	Head        uint32
	Tail        uint32
	RingMask    uint32
	RingEntries uint32
	Flags       uint32
	Dropped     uint32
	Array       uint32
	Resv1       uint32
	Resv2       uint64
}

type CQRingOffsets struct {
	Head        uint32
	Tail        uint32
	RingMask    uint32
	RingEntries uint32
	Overflow    uint32
	CQEs        uint32
	Flags       uint32
	Resv1       uint32
	Resv2       uint64
}

// SQEntry mirrors struct io_uring_sqe.
type SQEntry struct {
	opcode      uint8
	flags       uint8
	ioprio      uint16
	fd          int32
	offset      uint64 // union {off,addr2}
	addr        uint64 // union {addr,splice_off_in}
	len         uint32
	opcodeFlags uint32 // union for opcode specific flags
	userData    uint64

	bufIG       uint16
	personality uint16
	spliceFdIn  int32
	pad2        [2]uint64
}

// Reset zeroes every field of the entry.
func (e *SQEntry) Reset() {
	*e = SQEntry{}
}

func (e *SQEntry) Opcode() uint8 {
	return e.opcode
}

func (e *SQEntry) FD() int32 {
	return e.fd
}

func (e *SQEntry) Addr() uint64 {
	return e.addr
}

func (e *SQEntry) Len() uint32 {
	return e.len
}

func (e *SQEntry) OpcodeFlags() uint32 {
	return e.opcodeFlags
}

func (e *SQEntry) UserData() uint64 {
	return e.userData
}

// CQEntry mirrors struct io_uring_cqe.
type CQEntry struct {
	userData uint64
	res      int32
	flags    uint32
}

func (e CQEntry) Result() int32 {
	return e.res
}

func (e CQEntry) Flags() uint32 {
	return e.flags
}

func (e CQEntry) UserData() uint64 {
	return e.userData
}

// Timespec mirrors struct __kernel_timespec. Timeouts reference it by address, it must
// stay valid and unmoved while the timeout is armed.
type Timespec struct {
	Sec  int64
	Nsec int64
}
