// Package gcode implements a streaming, byte-at-a-time G-code line parser
// with an embedded conditional-block control layer.
//
// A Buffer accumulates one line at a time from any byte source (serial,
// USB, network, or a mounted file), validates line-number/checksum
// integrity, recognizes the if/else/while/break/var control mini-language,
// decodes the command letter/number/fraction and parameter region, and then
// answers typed queries against the parameter region through Seen/Get*.
//
// The parser is single-threaded and allocation-free in steady state: the
// line buffer is a fixed-capacity byte array reused across lines, and
// PutByte never blocks or suspends.
package gcode
