package gcode

import "strings"

func isAlpha(c byte) bool { return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') }

func lower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c - 'A' + 'a'
	}
	return c
}

// readQuotedBody reads a `"…"` body with read_pointer positioned just past
// the opening quote (§4.5 "Quoted"): `""` encodes a literal `"`, a `'`
// before an alphabetic lowercases the next character, `''` encodes a
// literal `'`, and any byte below 0x20 fails.
func (b *Buffer) readQuotedBody() (string, error) {
	var out []byte
	for {
		if b.readPointer >= b.commandEnd {
			return "", newParseError(b.readPointer, "unterminated string")
		}
		c := b.buffer[b.readPointer]
		if c < 0x20 {
			return "", newParseError(b.readPointer, "control character in string")
		}
		if c == '"' {
			b.readPointer++
			if b.readPointer < b.commandEnd && b.buffer[b.readPointer] == '"' {
				out = append(out, '"')
				b.readPointer++
				continue
			}
			break
		}
		if c == '\'' {
			b.readPointer++
			switch {
			case b.readPointer < b.commandEnd && b.buffer[b.readPointer] == '\'':
				out = append(out, '\'')
				b.readPointer++
			case b.readPointer < b.commandEnd && isAlpha(b.buffer[b.readPointer]):
				out = append(out, lower(b.buffer[b.readPointer]))
				b.readPointer++
			default:
				out = append(out, '\'')
			}
			continue
		}
		out = append(out, c)
		b.readPointer++
	}
	return string(out), nil
}

// GetQuotedString implements §4.5 "Quoted": the current byte must be `"`
// or `{`.
func (b *Buffer) GetQuotedString() (string, error) {
	defer b.resetReadPointer()
	if err := b.requireActiveReadPointer(); err != nil {
		return "", err
	}
	b.readPointer++

	switch {
	case b.readPointer < b.commandEnd && b.buffer[b.readPointer] == '"':
		b.readPointer++
		return b.readQuotedBody()
	case b.readPointer < b.commandEnd && b.buffer[b.readPointer] == '{':
		b.readPointer++
		val, err := b.evaluateExpression()
		if err != nil {
			return "", err
		}
		return stringifyExpressionValue(val), nil
	default:
		return "", newParseError(b.readPointer, "expected a string")
	}
}

// readPossiblyQuotedBody implements the shared body of §4.5 "Possibly
// quoted": `"…"`, `{…}`, or a bare run ending at the first control byte
// (which also claims the rest of the line for command_end). Per §9
// ambiguous note 1, the source unconditionally re-enters the bare loop even
// after a quoted/{…} branch already populated the string; that is
// reproduced here rather than "corrected".
func (b *Buffer) readPossiblyQuotedBody(allowEmpty bool) (string, error) {
	var s string
	switch {
	case b.readPointer < b.commandEnd && b.buffer[b.readPointer] == '"':
		b.readPointer++
		body, err := b.readQuotedBody()
		if err != nil {
			return "", err
		}
		s = body
	case b.readPointer < b.commandEnd && b.buffer[b.readPointer] == '{':
		b.readPointer++
		val, err := b.evaluateExpression()
		if err != nil {
			return "", err
		}
		s = stringifyExpressionValue(val)
	default:
		start := b.readPointer
		for b.readPointer < b.commandEnd && b.buffer[b.readPointer] >= 0x20 {
			b.readPointer++
		}
		s = string(b.buffer[start:b.readPointer])
		b.commandEnd = b.lineEnd
	}

	if b.readPointer < b.commandEnd {
		start := b.readPointer
		for b.readPointer < b.commandEnd && b.buffer[b.readPointer] >= 0x20 {
			b.readPointer++
		}
		s += string(b.buffer[start:b.readPointer])
	}

	s = strings.TrimRight(s, " ")
	if s == "" && !allowEmpty {
		return "", newParseError(b.readPointer, "expected a string")
	}
	return s, nil
}

// GetPossiblyQuotedString implements §4.5 "Possibly quoted".
func (b *Buffer) GetPossiblyQuotedString(allowEmpty bool) (string, error) {
	defer b.resetReadPointer()
	if err := b.requireActiveReadPointer(); err != nil {
		return "", err
	}
	b.readPointer++
	return b.readPossiblyQuotedBody(allowEmpty)
}

// GetUnprecedentedString implements §4.5's "get_unprecedented_string": it
// is not preceded by a Seen, so it positions itself at parameter_start,
// skips leading spaces/tabs, then behaves as possibly-quoted.
func (b *Buffer) GetUnprecedentedString(allowEmpty bool) (string, error) {
	defer b.resetReadPointer()
	b.readPointer = b.parameterStart
	for b.readPointer < b.commandEnd && isSpaceOrTab(b.buffer[b.readPointer]) {
		b.readPointer++
	}
	return b.readPossiblyQuotedBody(allowEmpty)
}

// GetReducedString implements §4.5 "Reduced": must start with `"`, copies
// the quoted body lowercased, dropping `_`, `-`, and SPACE.
func (b *Buffer) GetReducedString() (string, error) {
	defer b.resetReadPointer()
	if err := b.requireActiveReadPointer(); err != nil {
		return "", err
	}
	b.readPointer++
	if b.readPointer >= b.commandEnd || b.buffer[b.readPointer] != '"' {
		return "", newParseError(b.readPointer, "expected a quoted string")
	}
	b.readPointer++

	var out []byte
	for {
		if b.readPointer >= b.commandEnd {
			return "", newParseError(b.readPointer, "unterminated string")
		}
		c := b.buffer[b.readPointer]
		if c < 0x20 {
			return "", newParseError(b.readPointer, "control character in string")
		}
		if c == '"' {
			b.readPointer++
			if b.readPointer < b.commandEnd && b.buffer[b.readPointer] == '"' {
				out = append(out, '"')
				b.readPointer++
				continue
			}
			break
		}
		if c == '_' || c == '-' || c == ' ' {
			b.readPointer++
			continue
		}
		out = append(out, lower(c))
		b.readPointer++
	}
	return string(out), nil
}
