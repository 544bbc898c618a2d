package uring

import "github.com/brickingsoft/errors"

var (
	// ErrSetup returned if the kernel refused to create the ring or negotiate its parameters.
	ErrSetup = errors.Define("uring: setup failed")
	// ErrMap returned if one of the shared regions could not be mapped.
	ErrMap = errors.Define("uring: mmap failed")
	// ErrEnter returned for any IO_URING_ENTER failure except interruption.
	ErrEnter = errors.Define("uring: enter failed")
	// ErrInterrupted returned if IO_URING_ENTER was interrupted by a signal before any
	// completion became available. Staged submissions are not lost.
	ErrInterrupted = errors.Define("uring: interrupted")
	// ErrQueueFull returned by Prepare if every submission slot is still owned by the kernel.
	ErrQueueFull = errors.Define("uring: submission queue is full")
)

const (
	errMetaOpKey    = "op"
	errMetaOpSetup  = "setup"
	errMetaOpMmap   = "mmap"
	errMetaOpEnter  = "enter"
	errMetaOpRegist = "register"

	errMetaRegionKey = "region"
)

// IsInterrupted reports whether err is an interrupted wait.
func IsInterrupted(err error) bool {
	return errors.Is(err, ErrInterrupted)
}
