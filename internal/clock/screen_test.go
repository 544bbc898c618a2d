package clock

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/cloudwego/gopkg/bufiox"
	"github.com/dshulyak/uclock/internal/draw"
	"github.com/dshulyak/uclock/internal/term"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func newScreen(t *testing.T, clock *fakeClock, sizes *int) (*Screen, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	s := New(bufiox.NewDefaultWriter(&out), func() (uint16, uint16, error) {
		*sizes++
		return 25, 80, nil
	}, Options{
		Offset: 8 * time.Hour,
		Color:  term.Colors["br_blue"],
		Now:    clock.Now,
	})
	return s, &out
}

func TestRefresh(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	sizes := 0
	s, out := newScreen(t, clock, &sizes)
	require.Equal(t, int64(8*3600), s.Seconds())

	require.NoError(t, s.Refresh())
	require.Equal(t, 1, sizes)

	frame := out.String()
	prefix := "\x1b[?1049l\x1b[?1049h\x1b[H\x1b[94m\x1b[10B"
	require.True(t, strings.HasPrefix(frame, prefix), "%q", frame)
	rows := strings.Split(strings.TrimPrefix(frame, prefix), "\r\n")
	require.Len(t, rows, draw.Height+1)
	for _, row := range rows[:draw.Height] {
		require.True(t, strings.HasPrefix(row, "\x1b[20C"), "%q", row)
	}

	// margins are cached until the next resize
	out.Reset()
	require.NoError(t, s.Refresh())
	require.Equal(t, 1, sizes)
	require.Equal(t, frame, out.String())

	s.Resize()
	out.Reset()
	require.NoError(t, s.Refresh())
	require.Equal(t, 2, sizes)
}

func TestTickAdvancesFrame(t *testing.T) {
	clock := &fakeClock{now: time.Unix(59, 0)}
	sizes := 0
	s, out := newScreen(t, clock, &sizes)

	require.NoError(t, s.Refresh())
	before := out.String()

	clock.now = clock.now.Add(time.Second)
	out.Reset()
	// no tick, no change
	require.NoError(t, s.Refresh())
	require.Equal(t, before, out.String())

	require.NoError(t, s.Tick())
	require.Equal(t, int64(8*3600+60), s.Seconds())
	out.Reset()
	require.NoError(t, s.Refresh())
	require.NotEqual(t, before, out.String())

	expected := draw.Render(8*3600 + 60)
	var want bytes.Buffer
	w := bufiox.NewDefaultWriter(&want)
	require.NoError(t, draw.Draw(w, []byte("\x1b[20C"), &expected))
	require.NoError(t, w.Flush())
	require.True(t, strings.HasSuffix(out.String(), want.String()))
}

func TestRefreshSizeError(t *testing.T) {
	failure := errors.New("no tty")
	s := New(bufiox.NewDefaultWriter(&bytes.Buffer{}), func() (uint16, uint16, error) {
		return 0, 0, failure
	}, Options{})
	require.Equal(t, failure, s.Refresh())
}

func TestEnterLeave(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Enter(&out))
	require.Equal(t, "\x1b[?25l", out.String())
	out.Reset()
	require.NoError(t, Leave(&out))
	require.Equal(t, "\x1b[0m\x1b[?1049l\x1b[?25h", out.String())
}
