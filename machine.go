package gcode

// Machine is the motion/machine subsystem that consumes a decoded command
// (§1: out of scope beyond its interface). It plays the same role the
// teacher's engine.Machine interface (SetFeed, RapidTo, LinearTo, ...) plays
// for its own arc/linear motion engine, generalized to the full decoded
// command rather than a fixed set of motion callbacks.
type Machine interface {
	// Handle receives a Buffer with a decoded command Ready. It reads
	// whatever parameters it needs off b, then calls b.SetFinished.
	Handle(b *Buffer) error
}
