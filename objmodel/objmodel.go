// Package objmodel is a small in-memory implementation of gcode.Resolver,
// generalizing the teacher's numbered/named parameter maps (getNumParam,
// getNameParam in parameters.go) from LinuxCNC-style `#n` parameters to the
// spec's free-form `{identifier}` names.
package objmodel

import (
	"sync"

	"github.com/kestrelfw/gcode"
)

// Map is a concurrency-safe name -> value table (§5: "the object-model
// resolver... the host must render thread-safe if it exposes the same
// resolver to parallel channels").
type Map struct {
	mu     sync.RWMutex
	values map[string]gcode.ExpressionValue
}

// New returns an empty Map.
func New() *Map {
	return &Map{values: make(map[string]gcode.ExpressionValue)}
}

// Resolve implements gcode.Resolver.
func (m *Map) Resolve(name string) (gcode.ExpressionValue, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[name]
	return v, ok
}

func (m *Map) set(name string, v gcode.ExpressionValue) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[name] = v
}

// SetFloat32, SetInt32, SetUint32, SetBool, SetString, SetIPAddress set one
// named variable to a scalar value of the matching ExpressionValueType.
func (m *Map) SetFloat32(name string, v float32) {
	m.set(name, gcode.ExpressionValue{Type: gcode.ExprFloat32, F32: v})
}

func (m *Map) SetInt32(name string, v int32) {
	m.set(name, gcode.ExpressionValue{Type: gcode.ExprInt32, I32: v})
}

func (m *Map) SetUint32(name string, v uint32) {
	m.set(name, gcode.ExpressionValue{Type: gcode.ExprUint32, U32: v})
}

func (m *Map) SetBool(name string, v bool) {
	m.set(name, gcode.ExpressionValue{Type: gcode.ExprBool, Bool: v})
}

func (m *Map) SetString(name string, v string) {
	m.set(name, gcode.ExpressionValue{Type: gcode.ExprString, Str: v})
}

func (m *Map) SetIPAddress(name string, v gcode.IPAddress) {
	m.set(name, gcode.ExpressionValue{Type: gcode.ExprIPAddress, IP: v})
}

// Delete removes a variable, making it unresolvable again.
func (m *Map) Delete(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, name)
}
