package fixed

import (
	"testing"
	"unsafe"

	"github.com/brickingsoft/errors"
	"github.com/stretchr/testify/require"
)

func TestArenaBytes(t *testing.T) {
	arena, err := New(64)
	require.NoError(t, err)
	defer arena.Close()

	a, err := arena.Bytes(3)
	require.NoError(t, err)
	require.Len(t, a, 3)
	require.Equal(t, 3, cap(a))
	require.Equal(t, []byte{0, 0, 0}, a)

	b, err := arena.Bytes(8)
	require.NoError(t, err)
	// second allocation is aligned
	require.Zero(t, uintptr(unsafe.Pointer(&b[0]))%align)
	require.Equal(t, 16, arena.Len())

	a[0] = 'q'
	require.Zero(t, b[0])
}

func TestArenaOverflow(t *testing.T) {
	arena, err := New(16)
	require.NoError(t, err)
	defer arena.Close()

	_, err = arena.Bytes(16)
	require.NoError(t, err)
	_, err = arena.Bytes(1)
	require.True(t, errors.Is(err, ErrOverflow))
	_, err = arena.Bytes(0)
	require.True(t, errors.Is(err, ErrOverflow))
}

func TestArenaPointer(t *testing.T) {
	type pair struct {
		a, b int64
	}
	arena, err := New(64)
	require.NoError(t, err)
	defer arena.Close()

	ptr, err := arena.Pointer(unsafe.Sizeof(pair{}))
	require.NoError(t, err)
	p := (*pair)(ptr)
	p.a, p.b = 1, 2
	require.Equal(t, pair{1, 2}, *p)
}

func TestArenaClose(t *testing.T) {
	arena, err := New(8)
	require.NoError(t, err)
	require.NoError(t, arena.Close())
	require.NoError(t, arena.Close())
	_, err = arena.Bytes(1)
	require.True(t, errors.Is(err, ErrClosed))

	_, err = New(0)
	require.Error(t, err)
}
