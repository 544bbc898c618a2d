package syserr

import (
	"fmt"
	"os"
	"syscall"
	"testing"

	"github.com/brickingsoft/errors"
	"github.com/stretchr/testify/require"
)

func TestErrnoSurvivesWrap(t *testing.T) {
	cause := os.NewSyscallError("read", syscall.EBADF)
	err := errors.New("read failed", Meta(cause), errors.WithWrap(cause))

	errno, ok := Errno(err)
	require.True(t, ok)
	require.Equal(t, syscall.EBADF, errno)
}

func TestErrnoFromDefined(t *testing.T) {
	defined := errors.Define("defined")
	err := errors.From(defined, Meta(syscall.EINVAL), errors.WithWrap(syscall.EINVAL))
	require.True(t, errors.Is(err, defined))

	errno, ok := Errno(err)
	require.True(t, ok)
	require.Equal(t, syscall.EINVAL, errno)

	// meta of a wrapped error is found too
	outer := errors.New("outer", errors.WithWrap(err))
	errno, ok = Errno(outer)
	require.True(t, ok)
	require.Equal(t, syscall.EINVAL, errno)
}

func TestErrnoPlainChains(t *testing.T) {
	errno, ok := Errno(fmt.Errorf("setup: %w", os.NewSyscallError("io_uring_setup", syscall.ENOMEM)))
	require.True(t, ok)
	require.Equal(t, syscall.ENOMEM, errno)

	_, ok = Errno(errors.New("no errno", Meta(errors.New("plain"))))
	require.False(t, ok)
	_, ok = Errno(nil)
	require.False(t, ok)
}
