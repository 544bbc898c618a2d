package draw

import (
	"bytes"
	"strings"
	"testing"

	"github.com/cloudwego/gopkg/bufiox"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	// 12:34:56
	b := Render(12*3600 + 34*60 + 56)
	lines := strings.Split(strings.TrimSuffix(b.String(), "\n"), "\n")
	require.Len(t, lines, Height)
	for _, line := range lines {
		require.Len(t, line, Width)
	}
	// first glyph is '1'
	require.Equal(t, "  #  ", lines[0][:5])
	require.Equal(t, " ### ", lines[4][:5])
	// colon after the hours
	require.Equal(t, " ", lines[0][11:12])
	require.Equal(t, "#", lines[1][12:13])
	require.Equal(t, "#", lines[3][12:13])
	require.Equal(t, " ", lines[2][12:13])
}

func TestRenderWrapsDays(t *testing.T) {
	require.Equal(t, Render(0), Render(secondsPerDay))
	require.Equal(t, Render(secondsPerDay-1), Render(-1))
	require.NotEqual(t, Render(0), Render(1))
}

func TestRenderOneSecondLater(t *testing.T) {
	a, b := Render(59), Render(60)
	// hours and the first minutes digit stay the same
	for row := 0; row < Height; row++ {
		require.Equal(t, a[row][:20], b[row][:20])
	}
	require.NotEqual(t, a, b)
}

func TestDraw(t *testing.T) {
	var out bytes.Buffer
	w := bufiox.NewDefaultWriter(&out)
	b := Render(0)
	require.NoError(t, Draw(w, []byte("\x1b[4C"), &b))
	require.NoError(t, w.Flush())

	rows := strings.Split(out.String(), "\r\n")
	require.Len(t, rows, Height+1)
	require.Empty(t, rows[Height])
	for _, row := range rows[:Height] {
		require.True(t, strings.HasPrefix(row, "\x1b[4C"))
		require.Equal(t, Width, len([]rune(strings.TrimPrefix(row, "\x1b[4C"))))
	}
	require.Equal(t, strings.Repeat("█", digitWidth), string([]rune(strings.TrimPrefix(rows[0], "\x1b[4C"))[:digitWidth]))
}
