package loop

import (
	"bytes"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"sync/atomic"
	"syscall"
	"time"
	"unsafe"

	"github.com/brickingsoft/errors"
	"github.com/dshulyak/uclock/fixed"
	"github.com/dshulyak/uclock/internal/syserr"
	"github.com/dshulyak/uclock/uring"
	"golang.org/x/sys/unix"
)

// Token correlates submissions with completions.
type Token uint64

const (
	// TokenTimer marks completions of the multishot timeout.
	TokenTimer Token = iota + 1
	// TokenRead marks completions of the input read.
	TokenRead
)

func (t Token) String() string {
	switch t {
	case TokenTimer:
		return "timer"
	case TokenRead:
		return "read"
	}
	return "token(" + strconv.FormatUint(uint64(t), 10) + ")"
}

var (
	// ErrProtocol returned if a completion carries a token that was never submitted.
	ErrProtocol = errors.Define("loop: unexpected completion")
	// ErrRead returned if the input read completed with an error.
	ErrRead = errors.Define("loop: read failed")
	// ErrTimer returned if the kernel rejected or aborted the timeout.
	ErrTimer = errors.Define("loop: timer failed")
	// ErrNotRunning returned by Interrupt if no goroutine is blocked in Run.
	ErrNotRunning = errors.Define("loop: not running")
	// ErrStarted returned if Run is called more than once.
	ErrStarted = errors.Define("loop: already started")
)

// DefaultQuit are bytes that stop the loop when read alone: ETX (ctrl-c) and 'q'.
var DefaultQuit = []byte{0x03, 'q'}

// interruptSignal is delivered to the thread blocked in Run. Go runtime already
// handles it (async preemption), so it is safe to send at any time.
const interruptSignal = unix.SIGURG

// Handler receives loop events. Both methods run on the loop thread.
type Handler interface {
	// Tick is called when the periodic timeout fires, before Refresh.
	Tick() error
	// Refresh renders current state. Called after every Tick and after every
	// interrupted wait.
	Refresh() error
}

// Params ...
type Params struct {
	// Entries is requested size of the submission queue.
	Entries uint
	// Fd is read for input.
	Fd int
	// Period of the multishot timeout.
	Period time.Duration
	// BufferSize is the size of the input buffer.
	BufferSize int
	// Quit stops the loop if read as the only byte.
	Quit []byte
	Logger *slog.Logger
}

func defaultParams() *Params {
	return &Params{
		Entries:    uring.MinSize,
		Fd:         int(os.Stdin.Fd()),
		Period:     time.Second,
		BufferSize: 32,
		Quit:       DefaultQuit,
	}
}

// Loop owns exactly two operations: one multishot timeout and one read. Each of them has
// at most one submission in flight, so the submission queue never needs more than two
// slots.
type Loop struct {
	ring  *uring.Ring
	arena *fixed.Arena

	fd   int32
	quit []byte
	log  *slog.Logger

	// buf and ts live in the arena, kernel writes into buf and reads ts
	// while operations are in flight.
	buf []byte
	ts  *uring.Timespec

	staged  uint32
	dropped uint32
	started bool
	tid     atomic.Int32
}

// Setup creates the ring and the arena for the loop. If p is nil loop reads from stdin
// every second.
func Setup(p *Params) (_ *Loop, err error) {
	if p == nil {
		p = defaultParams()
	}
	if p.Entries < uring.MinSize || p.Entries > uring.MaxSize {
		return nil, errors.New("loop: entries out of range",
			errors.WithMeta("entries", strconv.FormatUint(uint64(p.Entries), 10)))
	}
	if p.Period <= 0 {
		return nil, errors.New("loop: period must be positive")
	}
	size := p.BufferSize
	if size <= 0 {
		size = defaultParams().BufferSize
	}
	quit := p.Quit
	if quit == nil {
		quit = DefaultQuit
	}
	log := p.Logger
	if log == nil {
		log = slog.Default()
	}

	l := &Loop{fd: int32(p.Fd), quit: quit, log: log}
	defer func() {
		if err != nil {
			_ = l.Close()
		}
	}()

	l.ring, err = uring.Setup(p.Entries, nil)
	if err != nil {
		return nil, err
	}
	var probe uring.Probe
	if err = l.ring.RegisterProbe(&probe); err != nil {
		return nil, err
	}
	if err = probe.Require(uring.IORING_OP_READ, uring.IORING_OP_TIMEOUT); err != nil {
		return nil, err
	}

	tsSize := unsafe.Sizeof(uring.Timespec{})
	l.arena, err = fixed.New(size + int(tsSize) + 8)
	if err != nil {
		return nil, err
	}
	ptr, err := l.arena.Pointer(tsSize)
	if err != nil {
		return nil, err
	}
	l.ts = (*uring.Timespec)(ptr)
	l.ts.Sec = int64(p.Period / time.Second)
	l.ts.Nsec = int64(p.Period % time.Second)
	l.buf, err = l.arena.Bytes(size)
	if err != nil {
		return nil, err
	}

	params := l.ring.Params()
	log.Info("ring ready",
		"sq_entries", params.SQEntries,
		"cq_entries", params.CQEntries,
		"features", params.Features,
		"period", p.Period,
	)
	return l, nil
}

// Ring returns underlying ring.
func (l *Loop) Ring() *uring.Ring {
	return l.ring
}

// Run arms the read and the timer and dispatches completions to h until the quit byte
// is read, input is closed or an error occurs. Run blocks the calling goroutine and
// pins it to its OS thread.
func (l *Loop) Run(h Handler) error {
	if l.started {
		return ErrStarted
	}
	l.started = true

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	l.tid.Store(int32(unix.Gettid()))
	defer l.tid.Store(0)

	if err := l.armRead(); err != nil {
		return err
	}
	if err := l.armTimer(); err != nil {
		return err
	}
	if err := l.submit(); err != nil {
		return err
	}
	for {
		if err := l.wait(h); err != nil {
			return err
		}
		if n := l.ring.Overflow(); n != l.dropped {
			l.log.Warn("completions dropped", "total", n)
			l.dropped = n
		}
		cqe := l.ring.Complete()
		done, err := l.handle(Token(cqe.UserData()), cqe.Result(), cqe.Flags(), h)
		if err != nil || done {
			return err
		}
		if err := l.submit(); err != nil {
			return err
		}
	}
}

// Interrupt wakes up the thread blocked in Run. The wait is reported as interrupted and
// Handler.Refresh is called before the loop blocks again. Safe to call from any goroutine.
func (l *Loop) Interrupt() error {
	tid := l.tid.Load()
	if tid == 0 {
		return ErrNotRunning
	}
	return unix.Tgkill(unix.Getpid(), int(tid), interruptSignal)
}

// Close releases the ring and the arena. Must not be called while Run is in progress.
func (l *Loop) Close() (err error) {
	if l.ring != nil {
		err = l.ring.Close()
		l.ring = nil
	}
	if l.arena != nil {
		if err2 := l.arena.Close(); err == nil {
			err = err2
		}
		l.arena = nil
	}
	return err
}

// wait blocks until a completion is available. Interruptions are not errors: state is
// rendered and the wait is retried, entries submitted earlier stay in flight.
func (l *Loop) wait(h Handler) error {
	for {
		err := l.ring.Wait()
		if err == nil {
			return nil
		}
		if !uring.IsInterrupted(err) {
			return err
		}
		l.log.Debug("wait interrupted")
		if err := h.Refresh(); err != nil {
			return err
		}
	}
}

func (l *Loop) submit() error {
	for l.staged > 0 {
		n, err := l.ring.Submit(l.staged)
		if err != nil {
			if uring.IsInterrupted(err) {
				continue
			}
			return err
		}
		if n == 0 {
			// kernel consumed nothing from a non-empty batch
			return errors.From(uring.ErrEnter,
				errors.WithMeta("submitted", 0),
				errors.WithMeta("staged", l.staged))
		}
		l.staged -= n
	}
	return nil
}

func (l *Loop) armRead() error {
	if err := l.ring.PrepareRead(l.fd, l.buf, uint64(TokenRead)); err != nil {
		return err
	}
	l.staged++
	return nil
}

func (l *Loop) armTimer() error {
	if err := l.ring.PrepareTimeout(l.ts, uint64(TokenTimer), uring.IORING_TIMEOUT_MULTISHOT); err != nil {
		return err
	}
	l.staged++
	return nil
}

// handle reacts on a single completion. done is true if loop should exit without error.
func (l *Loop) handle(token Token, res int32, flags uint32, h Handler) (done bool, err error) {
	switch token {
	case TokenTimer:
		if res < 0 && syscall.Errno(-res) != syscall.ETIME {
			errno := syscall.Errno(-res)
			return false, errors.From(ErrTimer, syserr.Meta(errno), errors.WithWrap(errno))
		}
		if flags&uring.IORING_CQE_F_MORE == 0 {
			// multishot was terminated by the kernel, it won't fire again unless rearmed
			l.log.Debug("timer rearmed")
			if err := l.armTimer(); err != nil {
				return false, err
			}
		}
		if err := h.Tick(); err != nil {
			return false, err
		}
		return false, h.Refresh()
	case TokenRead:
		switch {
		case res == 1 && bytes.IndexByte(l.quit, l.buf[0]) >= 0:
			return true, nil
		case res == 0:
			l.log.Info("input closed")
			return true, nil
		case res < 0:
			errno := syscall.Errno(-res)
			if errno != syscall.EINTR && errno != syscall.EAGAIN {
				return false, errors.From(ErrRead, syserr.Meta(errno), errors.WithWrap(os.NewSyscallError("read", errno)))
			}
		}
		l.log.Debug("read rearmed", "n", res)
		return false, l.armRead()
	}
	return false, errors.From(ErrProtocol, errors.WithMeta("token", token.String()))
}
