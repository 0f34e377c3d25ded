package objmodel

import (
	"testing"

	"github.com/kestrelfw/gcode"
	"github.com/stretchr/testify/assert"
)

func TestResolveMissingNameFails(t *testing.T) {
	m := New()
	_, ok := m.Resolve("speed")
	assert.False(t, ok)
}

func TestSetFloat32RoundTrips(t *testing.T) {
	m := New()
	m.SetFloat32("speed", 12.5)
	v, ok := m.Resolve("speed")
	assert.True(t, ok)
	assert.Equal(t, gcode.ExprFloat32, v.Type)
	assert.InDelta(t, 12.5, v.F32, 0.0001)
}

func TestSetInt32RoundTrips(t *testing.T) {
	m := New()
	m.SetInt32("count", -7)
	v, ok := m.Resolve("count")
	assert.True(t, ok)
	assert.Equal(t, gcode.ExprInt32, v.Type)
	assert.EqualValues(t, -7, v.I32)
}

func TestSetUint32RoundTrips(t *testing.T) {
	m := New()
	m.SetUint32("flags", 0xFF)
	v, ok := m.Resolve("flags")
	assert.True(t, ok)
	assert.Equal(t, gcode.ExprUint32, v.Type)
	assert.EqualValues(t, 0xFF, v.U32)
}

func TestSetBoolRoundTrips(t *testing.T) {
	m := New()
	m.SetBool("homed", true)
	v, ok := m.Resolve("homed")
	assert.True(t, ok)
	assert.Equal(t, gcode.ExprBool, v.Type)
	assert.True(t, v.Bool)
}

func TestSetStringRoundTrips(t *testing.T) {
	m := New()
	m.SetString("job", "part.gcode")
	v, ok := m.Resolve("job")
	assert.True(t, ok)
	assert.Equal(t, gcode.ExprString, v.Type)
	assert.Equal(t, "part.gcode", v.Str)
}

func TestSetIPAddressRoundTrips(t *testing.T) {
	m := New()
	m.SetIPAddress("addr", gcode.IPAddress{10, 0, 0, 1})
	v, ok := m.Resolve("addr")
	assert.True(t, ok)
	assert.Equal(t, gcode.ExprIPAddress, v.Type)
	assert.Equal(t, gcode.IPAddress{10, 0, 0, 1}, v.IP)
}

func TestDeleteMakesNameUnresolvable(t *testing.T) {
	m := New()
	m.SetInt32("count", 3)
	m.Delete("count")
	_, ok := m.Resolve("count")
	assert.False(t, ok)
}

func TestSetOverwritesPreviousValue(t *testing.T) {
	m := New()
	m.SetInt32("n", 1)
	m.SetInt32("n", 2)
	v, ok := m.Resolve("n")
	assert.True(t, ok)
	assert.EqualValues(t, 2, v.I32)
}
