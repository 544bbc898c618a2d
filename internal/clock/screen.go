// Package clock draws the clock face on a terminal and implements loop.Handler.
package clock

import (
	"io"
	"time"

	"github.com/cloudwego/gopkg/bufiox"
	"github.com/dshulyak/uclock/internal/draw"
	"github.com/dshulyak/uclock/internal/term"
	"github.com/dshulyak/uclock/loop"
)

var _ loop.Handler = (*Screen)(nil)

// SizeFunc returns terminal size in rows and columns.
type SizeFunc func() (rows, cols uint16, err error)

type Options struct {
	// Offset is added to unix time, zero renders UTC.
	Offset time.Duration
	// Color is a foreground color sequence, may be empty.
	Color []byte
	// Now defaults to time.Now.
	Now func() time.Time
}

// Screen owns the render state. Tick and Refresh must be called from a single goroutine,
// Resize may be called from any.
type Screen struct {
	w      bufiox.Writer
	size   SizeFunc
	layout *term.Layout

	offset  int64
	color   []byte
	now     func() time.Time
	seconds int64
}

func New(w bufiox.Writer, size SizeFunc, opts Options) *Screen {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	s := &Screen{
		w:      w,
		size:   size,
		layout: term.NewLayout(draw.Width, draw.Height),
		offset: int64(opts.Offset / time.Second),
		color:  opts.Color,
		now:    now,
	}
	s.layout.Resize()
	s.seconds = s.clock()
	return s
}

func (s *Screen) clock() int64 {
	return s.now().Unix() + s.offset
}

// Seconds returns the time currently shown, offset applied.
func (s *Screen) Seconds() int64 {
	return s.seconds
}

// Resize schedules margins recomputation on the next Refresh.
func (s *Screen) Resize() {
	s.layout.Resize()
}

// Tick refreshes current time.
func (s *Screen) Tick() error {
	s.seconds = s.clock()
	return nil
}

// Refresh redraws the whole screen and flushes it.
func (s *Screen) Refresh() error {
	if s.layout.Resized() {
		rows, cols, err := s.size()
		if err != nil {
			return err
		}
		s.layout.Update(rows, cols)
	}
	for _, seq := range [][]byte{term.RestoreBuffer, term.SetBuffer, term.CursorHome, s.color, s.layout.Top()} {
		if len(seq) == 0 {
			continue
		}
		if _, err := s.w.WriteBinary(seq); err != nil {
			return err
		}
	}
	block := draw.Render(s.seconds)
	if err := draw.Draw(s.w, s.layout.Left(), &block); err != nil {
		return err
	}
	return s.w.Flush()
}

// Enter hides the cursor. Written directly, the screen buffer may be in use by the loop.
func Enter(out io.Writer) error {
	_, err := out.Write(term.HideCursor)
	return err
}

// Leave switches back to the main screen buffer and shows the cursor. Written directly,
// so it is safe to call from a signal goroutine.
func Leave(out io.Writer) error {
	seq := make([]byte, 0, len(term.ResetColor)+len(term.RestoreBuffer)+len(term.ShowCursor))
	seq = append(seq, term.ResetColor...)
	seq = append(seq, term.RestoreBuffer...)
	seq = append(seq, term.ShowCursor...)
	_, err := out.Write(seq)
	return err
}
