package uring

import (
	"os"
	"strconv"
	"unsafe"

	"github.com/brickingsoft/errors"
	"github.com/dshulyak/uclock/internal/syserr"
	"golang.org/x/sys/unix"
)

const (
	IORING_REGISTER_PROBE uintptr = 8
)

const (
	IO_URING_OP_SUPPORTED uint16 = 1 << 0
)

const (
	probeOpsSize = uintptr(IORING_OP_LAST) + 1
)

// ErrUnsupported returned by Probe.Require if the running kernel lacks an operation.
var ErrUnsupported = errors.Define("uring: operation is not supported")

type Probe struct {
	LastOp uint8
	OpsLen uint8
	resv   uint16
	resv2  [3]uint32
	Ops    [probeOpsSize]ProbeOp
}

func (p *Probe) IsSupported(op uint8) bool {
	for i := uint8(0); i < p.OpsLen && uintptr(i) < probeOpsSize; i++ {
		if p.Ops[i].Op != op {
			continue
		}
		return p.Ops[i].Flags&IO_URING_OP_SUPPORTED > 0
	}
	return false
}

// Require returns ErrUnsupported naming the first op the kernel doesn't support.
func (p *Probe) Require(ops ...uint8) error {
	for _, op := range ops {
		if !p.IsSupported(op) {
			return errors.From(ErrUnsupported, errors.WithMeta("opcode", strconv.Itoa(int(op))))
		}
	}
	return nil
}

type ProbeOp struct {
	Op    uint8
	resv  uint8
	Flags uint16
	resv2 uint32
}

// RegisterProbe fills probe with operations supported by the running kernel.
func (r *Ring) RegisterProbe(probe *Probe) error {
	_, _, errno := unix.Syscall6(
		IO_URING_REGISTER,
		uintptr(r.fd),
		IORING_REGISTER_PROBE,
		uintptr(unsafe.Pointer(probe)),
		probeOpsSize, 0, 0)
	if errno > 0 {
		return errors.New("register probe failed",
			errors.WithMeta(errMetaOpKey, errMetaOpRegist),
			syserr.Meta(errno),
			errors.WithWrap(os.NewSyscallError("io_uring_register", errno)))
	}
	return nil
}
