package uring

import (
	"os"
	"unsafe"

	"github.com/brickingsoft/errors"
	"github.com/dshulyak/uclock/internal/syserr"
	"golang.org/x/sys/unix"
)

// Enter hands toSubmit staged entries to the kernel and, if IORING_ENTER_GETEVENTS is set,
// blocks until at least minComplete completions are available. If sigmask is not nil it
// replaces the thread signal mask for the duration of the wait.
//
// An interrupted wait is reported as ErrInterrupted, entries already staged remain in the
// queue and are consumed by the next Enter.
func (r *Ring) Enter(toSubmit, minComplete, flags uint32, sigmask *unix.Sigset_t) (uint32, error) {
	r1, _, errno := unix.Syscall6(IO_URING_ENTER,
		uintptr(r.fd),
		uintptr(toSubmit),
		uintptr(minComplete),
		uintptr(flags),
		uintptr(unsafe.Pointer(sigmask)),
		sigsetSize,
	)
	switch errno {
	case 0:
		return uint32(r1), nil
	case unix.EINTR:
		return 0, errors.From(ErrInterrupted, errors.WithWrap(errno))
	default:
		return 0, errors.From(ErrEnter,
			errors.WithMeta(errMetaOpKey, errMetaOpEnter),
			syserr.Meta(errno),
			errors.WithWrap(os.NewSyscallError("io_uring_enter", errno)))
	}
}

// Submit hands n staged entries to the kernel without waiting for completions.
func (r *Ring) Submit(n uint32) (uint32, error) {
	return r.Enter(n, 0, 0, nil)
}

// SubmitAndWait hands n staged entries to the kernel and blocks until at least one
// completion is available.
func (r *Ring) SubmitAndWait(n uint32) (uint32, error) {
	return r.Enter(n, 1, IORING_ENTER_GETEVENTS, nil)
}

// SubmitAndWaitMask is SubmitAndWait with the thread signal mask replaced by sigmask
// while blocked.
func (r *Ring) SubmitAndWaitMask(n uint32, sigmask *unix.Sigset_t) (uint32, error) {
	return r.Enter(n, 1, IORING_ENTER_GETEVENTS, sigmask)
}

// Wait blocks until at least one completion is available.
func (r *Ring) Wait() error {
	_, err := r.Enter(0, 1, IORING_ENTER_GETEVENTS, nil)
	return err
}
