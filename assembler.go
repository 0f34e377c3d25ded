package gcode

// PutByte appends one byte to the line being assembled. It returns true
// exactly when a logical line has been completed and has passed the
// integrity gate, at which point the command decoder has already run and
// the decoded command is observable until SetFinished (§4.1, §6).
func (b *Buffer) PutByte(c byte) (bool, error) {
	if c != 0 {
		b.commandLength++
	}

	if c == 0 || c == '\n' || c == '\r' {
		return b.lineFinished()
	}

	if c == 0x7F && b.state != Discarding {
		// UART framing/overrun marker: resync on the next terminator.
		b.lineEnd = 0
		b.state = Discarding
		return false, nil
	}

	for {
		again, err := b.putByteOnce(c)
		if err != nil {
			return false, err
		}
		if !again {
			return false, nil
		}
	}
}

// putByteOnce runs one state-machine transition (§4.1's table). It returns
// again=true when the byte must be re-dispatched against the new state
// (the table's "re-dispatch same byte" actions).
func (b *Buffer) putByteOnce(c byte) (again bool, err error) {
	switch b.state {
	case ParseNotStarted:
		switch {
		case c == 'N' || c == 'n':
			b.hadLineNumber = true
			b.addChecksum(c)
			b.state = ParsingLineNumber
			b.receivedLineNumber = 0
		case isSpaceOrTab(c):
			b.addChecksum(c)
			b.commandIndent++
		default:
			b.state = ParsingGCode
			b.commandStart = 0
			return true, nil
		}

	case ParsingLineNumber:
		if isDigit(c) {
			b.addChecksum(c)
			b.receivedLineNumber = 10*b.receivedLineNumber + int(c-'0')
		} else {
			b.state = ParsingWhitespace
			return true, nil
		}

	case ParsingWhitespace:
		switch {
		case isSpaceOrTab(c):
			b.addChecksum(c)
		default:
			b.state = ParsingGCode
			b.commandStart = 0
			return true, nil
		}

	case ParsingGCode:
		switch c {
		case '*':
			b.declaredChecksum = 0
			b.hadChecksum = true
			b.state = ParsingChecksum
		case ';':
			b.state = Discarding
		case '(':
			b.state = ParsingBracketedComment
			b.addChecksum(c)
		case '"':
			b.state = ParsingQuotedString
			b.storeAndAddChecksum(c)
		default:
			b.storeAndAddChecksum(c)
		}

	case ParsingBracketedComment:
		if c == ')' {
			b.state = ParsingGCode
		}
		b.addChecksum(c)

	case ParsingQuotedString:
		if c == '"' {
			b.state = ParsingGCode
		}
		b.storeAndAddChecksum(c)

	case ParsingChecksum:
		if isDigit(c) {
			b.declaredChecksum = 10*b.declaredChecksum + int(c-'0')
		} else {
			b.state = Discarding
			return true, nil
		}

	case Discarding:
		// drop

	case Ready:
		// A byte arriving while Ready means the host has not called
		// SetFinished; treat it as a caller bug rather than silently
		// corrupting the buffer.
		return false, internalError()
	}

	return false, nil
}

func (b *Buffer) addChecksum(c byte) {
	b.computedChecksum ^= int(c)
}

func (b *Buffer) storeAndAddChecksum(c byte) {
	b.computedChecksum ^= int(c)
	if b.lineEnd < len(b.buffer) {
		b.buffer[b.lineEnd] = c
		b.lineEnd++
	}
}

// PutSlice feeds bytes then terminates with '\n' if the slice doesn't
// already end in one (§6 "counted slice"). It re-initializes the buffer
// first.
func (b *Buffer) PutSlice(s []byte) (bool, error) {
	b.init()
	var ready bool
	var err error
	for _, c := range s {
		ready, err = b.PutByte(c)
		if err != nil {
			return false, err
		}
	}
	if len(s) == 0 || s[len(s)-1] != '\n' {
		ready, err = b.PutByte('\n')
	}
	return ready, err
}

// PutCString feeds a NUL-terminated string the same way as PutSlice
// (§6 "null-terminated string").
func (b *Buffer) PutCString(s string) (bool, error) {
	return b.PutSlice([]byte(s))
}

// lineFinished fuses the integrity gate (§4.2) into line termination
// (§4.1 "Line finishing").
func (b *Buffer) lineFinished() (bool, error) {
	if b.lineEnd == 0 {
		b.init()
		return false, nil
	}

	if b.lineEnd == len(b.buffer) {
		logDropped(b.logger, "length overflow", "")
		b.init()
		return false, nil
	}

	b.buffer[b.lineEnd] = 0 // null-terminate (§4.1 step 3)

	badChecksum := b.hadChecksum && b.computedChecksum != b.declaredChecksum
	missingChecksum := b.config.ChecksumRequired && !b.hadChecksum && !b.inNestedMacro()

	if badChecksum {
		if b.hadLineNumber {
			b.rewriteAsResendRequest()
		} else {
			logDropped(b.logger, "bad checksum, no line number", string(b.buffer[:b.lineEnd]))
			b.init()
			return false, nil
		}
	} else if missingChecksum {
		logDropped(b.logger, "missing checksum", string(b.buffer[:b.lineEnd]))
		b.init()
		return false, nil
	}

	if b.machine != nil {
		if b.hadLineNumber {
			b.machine.LineNumber = b.receivedLineNumber
		} else {
			b.machine.LineNumber++
		}

		if b.machine.DoingFile {
			consumed, err := b.runBlockController()
			if err != nil {
				b.init()
				return false, err
			}
			if consumed {
				b.init()
				return false, nil
			}
		}
	}

	if err := b.decode(); err != nil {
		b.init()
		return false, err
	}
	return true, nil
}

func (b *Buffer) inNestedMacro() bool {
	return b.machine != nil && b.machine.inNestedMacro()
}

// rewriteAsResendRequest overwrites the buffer with "M998 P<n>" in place
// (§4.1 step 5).
func (b *Buffer) rewriteAsResendRequest() {
	req := "M998 P" + itoa32(int32(b.receivedLineNumber))
	copy(b.buffer, req)
	b.lineEnd = len(req)
	if b.lineEnd < len(b.buffer) {
		b.buffer[b.lineEnd] = 0
	}
	b.commandStart = 0
	b.commandIndent = 0
}

// SetFinished is called by the external executor after it has processed
// the decoded command (§4.4). It either advances to the next command on a
// multi-command line, or reinitializes for the next line.
func (b *Buffer) SetFinished() {
	if b.state != Ready {
		return
	}
	if b.commandEnd >= b.lineEnd {
		if b.machine != nil {
			b.machine.G53Active = false
		}
		b.init()
		return
	}

	b.commandStart = b.commandEnd
	if err := b.decode(); err != nil {
		b.init()
	}
}
