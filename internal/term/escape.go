package term

import "strconv"

const esc = "\x1b["

var (
	SetBuffer     = []byte(esc + "?1049h")
	RestoreBuffer = []byte(esc + "?1049l")
	HideCursor    = []byte(esc + "?25l")
	ShowCursor    = []byte(esc + "?25h")
	CursorHome    = []byte(esc + "H")
	ResetColor    = []byte(esc + "0m")
)

// Colors maps color names to foreground color sequences.
var Colors = map[string][]byte{
	"black":   []byte(esc + "30m"),
	"red":     []byte(esc + "31m"),
	"green":   []byte(esc + "32m"),
	"yellow":  []byte(esc + "33m"),
	"blue":    []byte(esc + "34m"),
	"magenta": []byte(esc + "35m"),
	"cyan":    []byte(esc + "36m"),
	"white":   []byte(esc + "37m"),

	"br_black":   []byte(esc + "90m"),
	"br_red":     []byte(esc + "91m"),
	"br_green":   []byte(esc + "92m"),
	"br_yellow":  []byte(esc + "93m"),
	"br_blue":    []byte(esc + "94m"),
	"br_magenta": []byte(esc + "95m"),
	"br_cyan":    []byte(esc + "96m"),
	"br_white":   []byte(esc + "97m"),
}

type Direction byte

const (
	Up    Direction = 'A'
	Down  Direction = 'B'
	Right Direction = 'C'
	Left  Direction = 'D'
)

// AppendCursorMove appends a sequence moving the cursor n cells in dir. Nothing is appended
// for n == 0, most terminals treat a zero argument as one.
func AppendCursorMove(dst []byte, n uint64, dir Direction) []byte {
	if n == 0 {
		return dst
	}
	dst = append(dst, esc...)
	dst = strconv.AppendUint(dst, n, 10)
	return append(dst, byte(dir))
}
