package gcode

// runBlockController is called only while executing from a file (§4.3
// "Contract"). It reconciles the line's indentation against the machine
// state's block stack, then recognizes one reserved word. It returns
// consumed=true when the line has been fully handled by the block layer
// (a reserved word matched, an indent change consumed it, or the line is
// still being skipped) and should never reach the command decoder.
//
// Reserved words are matched against the content starting at commandStart
// (always 0 per the assembler's table: leading whitespace is counted into
// commandIndent but never stored in the line buffer), not at commandIndent
// itself -- the one place this module deliberately reconciles spec.md's
// "buffer[command_indent..]" wording against the buffer layout the
// assembler's own state table actually produces (see DESIGN.md).
func (b *Buffer) runBlockController() (bool, error) {
	if b.machine == nil {
		return false, nil
	}

	if b.skippingBlock && b.indentToSkipTo < b.commandIndent {
		return true, nil // still skipping a not-taken block
	}

	skippedIfFalse := false
	if b.skippingBlock && b.indentToSkipTo >= b.commandIndent {
		if b.indentToSkipTo == b.commandIndent {
			if cur, ok := b.machine.CurrentBlock(); ok {
				skippedIfFalse = cur.IsIfFalse()
				b.machine.ReplaceCurrentBlock(BlockState{Tag: BlockPlain})
			}
		}
		b.skippingBlock = false
	}

	return b.processConditionalGCode(skippedIfFalse)
}

func (b *Buffer) processConditionalGCode(skippedIfFalse bool) (bool, error) {
	if b.commandIndent > b.machine.IndentLevel {
		b.createBlocks()
	} else if b.commandIndent < b.machine.IndentLevel {
		consumed, err := b.endBlocks()
		if err != nil || consumed {
			return consumed, err
		}
	}

	word, afterWord, ok := b.matchReservedWord()
	if !ok {
		return false, nil
	}

	switch word {
	case "if":
		return true, b.processIfCommand(afterWord)
	case "else":
		return true, b.processElseCommand(skippedIfFalse)
	case "while":
		return true, b.processWhileCommand(afterWord)
	case "break":
		return true, b.processBreakCommand()
	case "var":
		return true, newParseError(afterWord, "'var' not implemented")
	}
	return false, nil
}

var reservedWords = []string{"if", "var", "else", "while", "break"}

// matchReservedWord counts leading lowercase letters at commandStart up to
// 5 and matches one of the five keywords, requiring the next byte to be
// NUL/SPACE/TAB (§4.3 "Reserved-word recognition"). afterWord is the
// buffer offset immediately following the matched word.
func (b *Buffer) matchReservedWord() (word string, afterWord int, ok bool) {
	start := b.commandStart
	n := 0
	for n < 5 && start+n < b.lineEnd && b.buffer[start+n] >= 'a' && b.buffer[start+n] <= 'z' {
		n++
	}
	if n < 2 {
		return "", 0, false
	}
	var terminator byte
	if start+n < b.lineEnd {
		terminator = b.buffer[start+n]
	}
	if terminator != 0 && !isSpaceOrTab(terminator) {
		return "", 0, false
	}
	w := string(b.buffer[start : start+n])
	for _, kw := range reservedWords {
		if w == kw {
			return kw, start + n, true
		}
	}
	return "", 0, false
}

// createBlocks pushes Plain blocks until the indent level matches
// commandIndent (§4.3 "create_blocks").
func (b *Buffer) createBlocks() {
	for b.machine.IndentLevel < b.commandIndent {
		b.machine.PushBlock(BlockPlain)
	}
}

// endBlocks pops blocks until the indent level matches commandIndent. On
// popping a Loop frame it rewinds the file source and returns consumed=true
// immediately, per invariant 6: a loop restart re-executes the while line,
// which will push a fresh Loop frame if the condition is still true.
func (b *Buffer) endBlocks() (bool, error) {
	for b.machine.IndentLevel > b.commandIndent {
		top, ok := b.machine.PopBlock()
		if !ok {
			break
		}
		if top.IsLoop() {
			b.machine.LineNumber = top.LineNumber
			if b.machine.File != nil {
				if err := b.machine.File.SeekTo(top.FilePosition); err != nil {
					return false, wrapIOError(err, "rewinding loop")
				}
			}
			return true, nil
		}
	}
	return false, nil
}

func (b *Buffer) processIfCommand(afterWord int) error {
	cond, err := b.evaluateCondition("if", afterWord)
	if err != nil {
		return err
	}
	if cond {
		b.machine.ReplaceCurrentBlock(BlockState{Tag: BlockIfTrue})
	} else {
		b.machine.ReplaceCurrentBlock(BlockState{Tag: BlockIfFalse})
		b.indentToSkipTo = b.machine.IndentLevel
		b.skippingBlock = true
	}
	return nil
}

func (b *Buffer) processElseCommand(skippedIfFalse bool) error {
	if skippedIfFalse {
		b.machine.ReplaceCurrentBlock(BlockState{Tag: BlockPlain})
		return nil
	}
	cur, ok := b.machine.CurrentBlock()
	if ok && cur.Tag == BlockIfTrue {
		b.indentToSkipTo = b.machine.IndentLevel
		b.skippingBlock = true
		return nil
	}
	return newParseError(0, "'else' did not follow 'if'")
}

func (b *Buffer) processWhileCommand(afterWord int) error {
	cond, err := b.evaluateCondition("while", afterWord)
	if err != nil {
		return err
	}
	if cond {
		filePos := NoFilePosition
		if b.machine.File != nil {
			filePos = commandFilePosition(b.machine.File, b.commandLength, b.commandStart)
		}
		b.machine.ReplaceCurrentBlock(BlockState{
			Tag:          BlockLoop,
			FilePosition: filePos,
			LineNumber:   b.machine.LineNumber,
		})
	} else {
		b.indentToSkipTo = b.machine.IndentLevel
		b.skippingBlock = true
	}
	return nil
}

func (b *Buffer) processBreakCommand() error {
	for {
		if b.machine.IndentLevel == 0 {
			return newParseError(0, "'break' was not inside a loop")
		}
		b.machine.PopBlock()
		if cur, ok := b.machine.CurrentBlock(); ok && cur.IsLoop() {
			b.machine.ReplaceCurrentBlock(BlockState{Tag: BlockPlain})
			return nil
		}
	}
}

// evaluateCondition evaluates the boolean expression following "if" or
// "while", starting at buffer offset pos (§4.3). Block conditions are
// boolean combinations built from the same `{…}` identifier grammar §4.5
// locks down, generalized with the comparison/logical operators named in
// SPEC_FULL.md's DOMAIN STACK section; a bare `{identifier}` is also
// accepted and is true iff the resolved value is non-zero/non-empty/true.
func (b *Buffer) evaluateCondition(keyword string, pos int) (bool, error) {
	// commandEnd is only meaningful after decode has run; the block
	// controller runs first, on a still-undecoded line, so bound the
	// condition to the whole line here. decode overwrites commandEnd right
	// after this returns.
	b.commandEnd = b.lineEnd
	b.readPointer = pos
	b.skipSpacesAt()
	val, err := b.parseConditionExpr()
	if err != nil {
		b.readPointer = NoReadPointer
		return false, err
	}
	b.readPointer = NoReadPointer
	return val, nil
}

func (b *Buffer) skipSpacesAt() {
	for b.readPointer < b.lineEnd && isSpaceOrTab(b.buffer[b.readPointer]) {
		b.readPointer++
	}
}

func truthy(v ExpressionValue) bool {
	switch v.Type {
	case ExprBool:
		return v.Bool
	case ExprFloat32:
		return v.F32 != 0
	case ExprInt32:
		return v.I32 != 0
	case ExprUint32:
		return v.U32 != 0
	case ExprString:
		return v.Str != ""
	default:
		return false
	}
}
