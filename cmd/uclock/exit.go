package main

import (
	"github.com/dshulyak/uclock/internal/syserr"
)

// exitCode maps err to the process exit code: 0 on success, errno found in the chain
// or 1.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	if errno, ok := syserr.Errno(err); ok {
		return int(errno)
	}
	return 1
}
