package uring

import (
	"testing"

	"github.com/brickingsoft/errors"
	"github.com/stretchr/testify/require"
)

func TestRegisterProbe(t *testing.T) {
	ring, err := Setup(4, nil)
	require.NoError(t, err)
	defer ring.Close()

	var probe Probe
	require.NoError(t, ring.RegisterProbe(&probe))
	require.True(t, probe.IsSupported(IORING_OP_READ))
	require.True(t, probe.IsSupported(IORING_OP_TIMEOUT))
	require.NoError(t, probe.Require(IORING_OP_READ, IORING_OP_TIMEOUT))
}

func TestProbeRequire(t *testing.T) {
	probe := Probe{OpsLen: 2}
	probe.Ops[0] = ProbeOp{Op: IORING_OP_NOP, Flags: IO_URING_OP_SUPPORTED}
	probe.Ops[1] = ProbeOp{Op: IORING_OP_READV}

	require.NoError(t, probe.Require(IORING_OP_NOP))
	require.True(t, errors.Is(probe.Require(IORING_OP_NOP, IORING_OP_READV), ErrUnsupported))
	require.True(t, errors.Is(probe.Require(IORING_OP_TIMEOUT), ErrUnsupported))
}
