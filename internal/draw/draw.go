// Package draw renders wall clock time as a block of large glyphs.
package draw

import (
	"github.com/cloudwego/gopkg/bufiox"
)

const (
	// Height of the block in rows.
	Height = 5

	digitWidth = 5
	colonWidth = 1
	gap        = 1

	// Width of the block in columns: hh:mm:ss with a gap between glyphs.
	Width = 6*digitWidth + 2*colonWidth + 7*gap

	secondsPerDay = 24 * 60 * 60
)

var (
	filled = []byte("█")
	blank  = []byte(" ")
	eol    = []byte("\r\n")
)

// glyph rows are bit masks, most significant of the glyph width bits is the leftmost cell.
type glyph struct {
	width int
	rows  [Height]uint8
}

var digits = [10]glyph{
	{digitWidth, [Height]uint8{0b11111, 0b10001, 0b10001, 0b10001, 0b11111}},
	{digitWidth, [Height]uint8{0b00100, 0b01100, 0b00100, 0b00100, 0b01110}},
	{digitWidth, [Height]uint8{0b11111, 0b00001, 0b11111, 0b10000, 0b11111}},
	{digitWidth, [Height]uint8{0b11111, 0b00001, 0b01111, 0b00001, 0b11111}},
	{digitWidth, [Height]uint8{0b10001, 0b10001, 0b11111, 0b00001, 0b00001}},
	{digitWidth, [Height]uint8{0b11111, 0b10000, 0b11111, 0b00001, 0b11111}},
	{digitWidth, [Height]uint8{0b11111, 0b10000, 0b11111, 0b10001, 0b11111}},
	{digitWidth, [Height]uint8{0b11111, 0b00001, 0b00010, 0b00100, 0b00100}},
	{digitWidth, [Height]uint8{0b11111, 0b10001, 0b11111, 0b10001, 0b11111}},
	{digitWidth, [Height]uint8{0b11111, 0b10001, 0b11111, 0b00001, 0b11111}},
}

var colon = glyph{colonWidth, [Height]uint8{0b0, 0b1, 0b0, 0b1, 0b0}}

// Block is a rendered clock face, true cells are filled.
type Block [Height][Width]bool

// Render returns block showing time of day for seconds since epoch. Caller applies
// timezone offset. Render doesn't allocate.
func Render(seconds int64) Block {
	s := seconds % secondsPerDay
	if s < 0 {
		s += secondsPerDay
	}
	h, m, sec := s/3600, s/60%60, s%60
	glyphs := [8]*glyph{
		&digits[h/10], &digits[h%10], &colon,
		&digits[m/10], &digits[m%10], &colon,
		&digits[sec/10], &digits[sec%10],
	}

	var b Block
	col := 0
	for i, g := range glyphs {
		if i > 0 {
			col += gap
		}
		for row := 0; row < Height; row++ {
			for c := 0; c < g.width; c++ {
				b[row][col+c] = g.rows[row]&(1<<(g.width-1-c)) != 0
			}
		}
		col += g.width
	}
	return b
}

// Draw writes block to w row by row, each row prefixed with left margin. Cursor is
// expected at the top left corner of the block area.
func Draw(w bufiox.Writer, left []byte, b *Block) error {
	for row := range b {
		if _, err := w.WriteBinary(left); err != nil {
			return err
		}
		for _, cell := range b[row] {
			out := blank
			if cell {
				out = filled
			}
			if _, err := w.WriteBinary(out); err != nil {
				return err
			}
		}
		if _, err := w.WriteBinary(eol); err != nil {
			return err
		}
	}
	return nil
}

// String returns block as text with '#' for filled cells, rows separated by newlines.
func (b *Block) String() string {
	buf := make([]byte, 0, Height*(Width+1))
	for row := range b {
		for _, cell := range b[row] {
			if cell {
				buf = append(buf, '#')
			} else {
				buf = append(buf, ' ')
			}
		}
		buf = append(buf, '\n')
	}
	return string(buf)
}
