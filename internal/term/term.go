package term

import (
	"os"
	"sync/atomic"

	"github.com/brickingsoft/errors"
	"github.com/dshulyak/uclock/internal/syserr"
	"golang.org/x/sys/unix"
)

// ErrNotTerminal returned if descriptor doesn't refer to a terminal.
var ErrNotTerminal = errors.Define("term: not a terminal")

// Terminal keeps attributes captured before switching to raw mode. They are written once
// in Open and only read afterwards, Restore is safe to call from a signal goroutine.
type Terminal struct {
	fd    int
	saved unix.Termios
}

// Open disables echo and canonical mode on fd. Signals (ISIG) stay enabled so ctrl-c
// still delivers SIGINT.
func Open(fd int) (*Terminal, error) {
	saved, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		if err == unix.ENOTTY {
			return nil, ErrNotTerminal
		}
		return nil, errors.New("term: get attributes", syserr.Meta(err), errors.WithWrap(os.NewSyscallError("ioctl", err)))
	}
	raw := *saved
	raw.Lflag &^= unix.ECHO | unix.ICANON
	if err := unix.IoctlSetTermios(fd, unix.TCSETS, &raw); err != nil {
		return nil, errors.New("term: set attributes", syserr.Meta(err), errors.WithWrap(os.NewSyscallError("ioctl", err)))
	}
	return &Terminal{fd: fd, saved: *saved}, nil
}

// Restore applies attributes captured by Open.
func (t *Terminal) Restore() error {
	if err := unix.IoctlSetTermios(t.fd, unix.TCSETS, &t.saved); err != nil {
		return os.NewSyscallError("ioctl", err)
	}
	return nil
}

// Size returns number of rows and columns of the terminal.
func (t *Terminal) Size() (rows, cols uint16, err error) {
	return Size(t.fd)
}

// Size queries window size of the terminal referenced by fd.
func Size(fd int) (rows, cols uint16, err error) {
	ws, err := unix.IoctlGetWinsize(fd, unix.TIOCGWINSZ)
	if err != nil {
		if err == unix.ENOTTY {
			return 0, 0, ErrNotTerminal
		}
		return 0, 0, os.NewSyscallError("ioctl", err)
	}
	return ws.Row, ws.Col, nil
}

// marginCap fits the longest cursor move sequence: ESC [ 65535 C.
const marginCap = 16

// Layout centers a block of fixed size in the terminal. Margins are fixed capacity
// buffers owned by the goroutine that renders, other goroutines only flag a resize.
type Layout struct {
	width, height int

	resized atomic.Bool

	left, top       [marginCap]byte
	leftLen, topLen uint8
}

// NewLayout returns layout for a block of width columns and height rows. Margins are
// empty until Update is called.
func NewLayout(width, height int) *Layout {
	return &Layout{width: width, height: height}
}

// Resize flags that margins must be recomputed before the next render.
// Safe to call from any goroutine.
func (l *Layout) Resize() {
	l.resized.Store(true)
}

// Resized reports and clears the resize flag.
func (l *Layout) Resized() bool {
	return l.resized.Swap(false)
}

// Update recomputes margins for a terminal of rows x cols. If the terminal is smaller
// than the block margins are empty.
func (l *Layout) Update(rows, cols uint16) {
	left := AppendCursorMove(l.left[:0], half(int(cols), l.width), Right)
	top := AppendCursorMove(l.top[:0], half(int(rows), l.height), Down)
	l.leftLen = uint8(len(left))
	l.topLen = uint8(len(top))
}

// Left returns sequence moving the cursor to the first column of the block.
func (l *Layout) Left() []byte {
	return l.left[:l.leftLen]
}

// Top returns sequence moving the cursor to the first row of the block.
func (l *Layout) Top() []byte {
	return l.top[:l.topLen]
}

func half(total, size int) uint64 {
	if total <= size {
		return 0
	}
	return uint64((total - size) / 2)
}
