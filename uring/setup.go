package uring

import (
	"os"
	"unsafe"

	"github.com/brickingsoft/errors"
	"github.com/dshulyak/uclock/internal/syserr"
	"golang.org/x/sys/unix"
)

const (
	MinSize = 2
	MaxSize = 4096
)

// Setup creates a ring with at least size submission entries. If params is not nil it is
// used as a template for the request (flags, cq size), negotiated values are available
// with Params once Setup returns.
func Setup(size uint, params *IOUringParams) (*Ring, error) {
	var ring Ring
	if params != nil {
		ring.params = *params
	}
	if err := setup(&ring, size, &ring.params); err != nil {
		_ = ring.Close()
		return nil, err
	}
	return &ring, nil
}

func setup(ring *Ring, size uint, p *IOUringParams) error {
	fd, _, errno := unix.Syscall(IO_URING_SETUP, uintptr(size), uintptr(unsafe.Pointer(p)), 0)
	if errno != 0 {
		return errors.From(ErrSetup,
			errors.WithMeta(errMetaOpKey, errMetaOpSetup),
			syserr.Meta(errno),
			errors.WithWrap(os.NewSyscallError("io_uring_setup", errno)))
	}
	ring.fd = int(fd)

	// offsets are negotiated, never assume them
	sqsize := p.SQOff.Array + p.SQEntries*uint32(4)
	cqsize := p.CQOff.CQEs + p.CQEntries*uint32(cqeSize)
	isSingleMap := p.Features&IORING_FEAT_SINGLE_MMAP > 0
	if isSingleMap {
		if cqsize > sqsize {
			sqsize = cqsize
		}
	}

	data, err := mmap(ring.fd, IORING_OFF_SQ_RING, int(sqsize), "sq")
	if err != nil {
		return err
	}
	ring.sqData = data
	pointer := unsafe.Pointer(&data[0])

	ring.sq.head = (*uint32)(unsafe.Add(pointer, p.SQOff.Head))
	ring.sq.tail = (*uint32)(unsafe.Add(pointer, p.SQOff.Tail))
	ring.sq.ringMask = (*uint32)(unsafe.Add(pointer, p.SQOff.RingMask))
	ring.sq.ringEntries = (*uint32)(unsafe.Add(pointer, p.SQOff.RingEntries))
	ring.sq.flags = (*uint32)(unsafe.Add(pointer, p.SQOff.Flags))
	ring.sq.dropped = (*uint32)(unsafe.Add(pointer, p.SQOff.Dropped))
	ring.sq.array = uint32Array{unsafe.Add(pointer, p.SQOff.Array)}

	if !isSingleMap {
		data, err = mmap(ring.fd, IORING_OFF_CQ_RING, int(cqsize), "cq")
		if err != nil {
			return err
		}
		ring.cqData = data
		pointer = unsafe.Pointer(&data[0])
	}

	ring.cq.head = (*uint32)(unsafe.Add(pointer, p.CQOff.Head))
	ring.cq.tail = (*uint32)(unsafe.Add(pointer, p.CQOff.Tail))
	ring.cq.ringMask = (*uint32)(unsafe.Add(pointer, p.CQOff.RingMask))
	ring.cq.ringEntries = (*uint32)(unsafe.Add(pointer, p.CQOff.RingEntries))
	ring.cq.overflow = (*uint32)(unsafe.Add(pointer, p.CQOff.Overflow))
	ring.cq.cqes = cqeArray{unsafe.Add(pointer, p.CQOff.CQEs)}

	entries, err := mmap(ring.fd, IORING_OFF_SQES, int(p.SQEntries)*int(sqeSize), "sqes")
	if err != nil {
		return err
	}
	ring.sqArrayData = entries
	ring.sq.sqes = sqeArray{unsafe.Pointer(&entries[0])}
	return nil
}

func mmap(fd int, offset int64, size int, region string) ([]byte, error) {
	data, err := unix.Mmap(fd, offset, size,
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_SHARED|unix.MAP_POPULATE)
	if err != nil {
		return nil, errors.From(ErrMap,
			errors.WithMeta(errMetaOpKey, errMetaOpMmap),
			errors.WithMeta(errMetaRegionKey, region),
			syserr.Meta(err),
			errors.WithWrap(os.NewSyscallError("mmap", err)))
	}
	return data, nil
}

// Close unmaps shared regions and closes ring descriptor. Safe to call on a partially
// initialized ring.
func (r *Ring) Close() (err error) {
	if r.cqData != nil {
		ret := unix.Munmap(r.cqData)
		if err == nil {
			err = ret
		}
		if ret == nil {
			r.cqData = nil
		}
	}
	if r.sqData != nil {
		ret := unix.Munmap(r.sqData)
		if err == nil {
			err = ret
		}
		if ret == nil {
			r.sqData = nil
		}
	}
	if r.sqArrayData != nil {
		ret := unix.Munmap(r.sqArrayData)
		if err == nil {
			err = ret
		}
		if ret == nil {
			r.sqArrayData = nil
		}
	}
	if r.fd != 0 {
		ret := unix.Close(r.fd)
		if err == nil {
			err = ret
		}
		if ret == nil {
			r.fd = 0
		}
	}
	return
}
