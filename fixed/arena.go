package fixed

import (
	"unsafe"

	"github.com/brickingsoft/errors"
	"github.com/dshulyak/uclock/internal/syserr"
	"golang.org/x/sys/unix"
)

var (
	// ErrOverflow returned if requested allocation doesn't fit into the arena.
	ErrOverflow = errors.Define("fixed: arena overflow")
	// ErrClosed returned if arena was already unmapped.
	ErrClosed = errors.Define("fixed: arena closed")
)

// align of every allocation, enough for any kernel struct passed by pointer.
const align = 8

// Arena is a fixed size region mapped with MAP_ANON. Memory is invisible to the garbage
// collector and never moves, so addresses can be handed to the kernel for the lifetime
// of an in-flight operation. Allocation is a bump of the offset, nothing is ever freed
// individually.
type Arena struct {
	mem []byte
	off int
}

// New maps an arena with room for size bytes.
func New(size int) (*Arena, error) {
	if size <= 0 {
		return nil, errors.New("fixed: arena size must be positive")
	}
	prot := unix.PROT_READ | unix.PROT_WRITE
	flags := unix.MAP_ANON | unix.MAP_PRIVATE
	mem, err := unix.Mmap(-1, 0, size, prot, flags)
	if err != nil {
		return nil, errors.New("fixed: mmap failed", syserr.Meta(err), errors.WithWrap(err))
	}
	return &Arena{mem: mem}, nil
}

// Bytes returns a zeroed slice of n bytes from the arena.
func (a *Arena) Bytes(n int) ([]byte, error) {
	if a.mem == nil {
		return nil, ErrClosed
	}
	start := (a.off + align - 1) &^ (align - 1)
	if n <= 0 || start+n > len(a.mem) {
		return nil, ErrOverflow
	}
	a.off = start + n
	return a.mem[start : start+n : start+n], nil
}

// Pointer allocates size bytes and returns their address. Used to place kernel structs
// (e.g. timespec) in the arena.
func (a *Arena) Pointer(size uintptr) (unsafe.Pointer, error) {
	buf, err := a.Bytes(int(size))
	if err != nil {
		return nil, err
	}
	return unsafe.Pointer(&buf[0]), nil
}

// Len returns number of bytes allocated so far, including alignment padding.
func (a *Arena) Len() int {
	return a.off
}

// Cap returns size of the arena.
func (a *Arena) Cap() int {
	return len(a.mem)
}

// Close unmaps the arena. Caller must ensure that the kernel doesn't reference any of the
// allocated memory anymore, otherwise program will crash.
func (a *Arena) Close() error {
	if a.mem == nil {
		return nil
	}
	err := unix.Munmap(a.mem)
	a.mem = nil
	a.off = 0
	return err
}
