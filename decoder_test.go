package gcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeCommandFraction(t *testing.T) {
	b := NewBuffer(nil)
	ready, err := b.PutCString("G92.1\n")
	require.NoError(t, err)
	require.True(t, ready)
	assert.EqualValues(t, 92, b.CommandNumber())
	assert.EqualValues(t, 1, b.CommandFraction())
	assert.Equal(t, "G92.1", b.PrintCommand())
}

func TestDecodeNegativeCommandNumber(t *testing.T) {
	b := NewBuffer(nil)
	ready, err := b.PutCString("T-1\n")
	require.NoError(t, err)
	require.True(t, ready)
	assert.Equal(t, byte('T'), b.CommandLetter())
	assert.EqualValues(t, -1, b.CommandNumber())
}

func TestDecodeInvalidCommandLetter(t *testing.T) {
	b := NewBuffer(nil)
	ready, err := b.PutCString("Q5\n")
	require.NoError(t, err)
	require.True(t, ready)
	assert.Equal(t, byte('Q'), b.CommandLetter())
	assert.False(t, b.HasCommandNumber())
}

func TestFindNextCommandStartSkipsQuotedContent(t *testing.T) {
	b := NewBuffer(nil)
	ready, err := b.PutCString(`M117 "G1 fake" G1 X1` + "\n")
	require.NoError(t, err)
	require.True(t, ready)
	assert.Equal(t, byte('M'), b.CommandLetter())

	b.SetFinished()
	require.Equal(t, Ready, b.State())
	assert.Equal(t, byte('G'), b.CommandLetter(), "the G1 inside the quoted string must not be treated as a second command")
	assert.EqualValues(t, 1, b.CommandNumber())
}

func TestFanucContinuationRepeatsPreviousMotionCommand(t *testing.T) {
	b := NewBuffer(nil, WithMachineType(MachineCNC))
	ready, err := b.PutCString("G1 X1 Y1\n")
	require.NoError(t, err)
	require.True(t, ready)
	b.SetFinished()

	ready, err = b.PutCString("X2 Y2\n")
	require.NoError(t, err)
	require.True(t, ready)
	assert.Equal(t, byte('G'), b.CommandLetter())
	assert.EqualValues(t, 1, b.CommandNumber())
}

func TestFanucContinuationDoesNotApplyOnGenericMachine(t *testing.T) {
	b := NewBuffer(nil, WithMachineType(MachineGeneric))
	ready, err := b.PutCString("G1 X1 Y1\n")
	require.NoError(t, err)
	require.True(t, ready)
	b.SetFinished()

	ready, err = b.PutCString("X2 Y2\n")
	require.NoError(t, err)
	require.True(t, ready)
	assert.Equal(t, byte('X'), b.CommandLetter(), "without a CNC machine type the bare axis word is an invalid command")
}

func TestFanucContinuationRequiresPreviousMotionCommand(t *testing.T) {
	b := NewBuffer(nil, WithMachineType(MachineCNC))
	ready, err := b.PutCString("X2 Y2\n")
	require.NoError(t, err)
	require.True(t, ready)
	assert.Equal(t, byte('X'), b.CommandLetter())
}
