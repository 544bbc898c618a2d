// Package syserr keeps errno of failed system calls reachable after wrapping.
package syserr

import (
	stderrors "errors"
	"strconv"
	"syscall"

	"github.com/brickingsoft/errors"
)

// MetaKey is the meta key holding the numeric errno.
const MetaKey = "errno"

// Meta records errno found in err as meta of the enhanced error being built.
// Wrapping flattens err into a message, the meta entry is what survives.
func Meta(err error) errors.Option {
	var errno syscall.Errno
	if !stderrors.As(err, &errno) || errno == 0 {
		return func(*errors.Options) {}
	}
	return errors.WithMeta(MetaKey, int(errno))
}

// Errno returns the first errno in the chain of err, either recorded as meta or
// wrapped directly.
func Errno(err error) (syscall.Errno, bool) {
	for ; err != nil; err = errors.Unwrap(err) {
		if errno, ok := err.(syscall.Errno); ok && errno != 0 {
			return errno, true
		}
		ee, ok := errors.AsEnhancedError(err)
		if !ok {
			continue
		}
		for _, m := range ee.Meta {
			if m.Key != MetaKey {
				continue
			}
			if n, perr := strconv.Atoi(m.Value); perr == nil && n > 0 {
				return syscall.Errno(n), true
			}
		}
	}
	return 0, false
}
