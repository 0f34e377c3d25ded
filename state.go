package gcode

// BufferState is the line assembler's phase, advanced one byte at a time by
// PutByte. Ready means a completed, integrity-checked command is sitting in
// the line buffer and the command decoder has already run on it.
type BufferState byte

const (
	ParseNotStarted BufferState = iota
	ParsingLineNumber
	ParsingWhitespace
	ParsingGCode
	ParsingBracketedComment
	ParsingQuotedString
	ParsingChecksum
	Discarding
	Ready
)

func (s BufferState) String() string {
	switch s {
	case ParseNotStarted:
		return "ParseNotStarted"
	case ParsingLineNumber:
		return "ParsingLineNumber"
	case ParsingWhitespace:
		return "ParsingWhitespace"
	case ParsingGCode:
		return "ParsingGCode"
	case ParsingBracketedComment:
		return "ParsingBracketedComment"
	case ParsingQuotedString:
		return "ParsingQuotedString"
	case ParsingChecksum:
		return "ParsingChecksum"
	case Discarding:
		return "Discarding"
	case Ready:
		return "Ready"
	default:
		return "BufferState(?)"
	}
}

// NoCommandNumber marks command_number/command_fraction as absent.
const NoCommandNumber = -1

// NoReadPointer marks read_pointer as "no active parameter".
const NoReadPointer = -1

// MachineType distinguishes the handful of decoder behaviors that are
// machine-specific (the Fanuc axis-word continuation in particular only
// applies to CNC machines).
type MachineType byte

const (
	MachineGeneric MachineType = iota
	MachineCNC
)

// BlockTag is the kind of a stack frame the block controller pushes when
// indentation increases.
type BlockTag byte

const (
	BlockPlain BlockTag = iota
	BlockIfTrue
	BlockIfFalse
	BlockLoop
)

// BlockState is one frame of the indentation block stack (§3, §4.3).
type BlockState struct {
	Tag BlockTag

	// Valid only when Tag == BlockLoop: the file position and line number
	// of the "while" line this loop restarts to.
	FilePosition int64
	LineNumber   int
}

func (b BlockState) IsLoop() bool {
	return b.Tag == BlockLoop
}

func (b BlockState) IsIfFalse() bool {
	return b.Tag == BlockIfFalse
}

// MachineState is the per-channel, host-owned state that the block
// controller observes and mutates (§3). The parser never allocates a
// MachineState itself; the host constructs one and hands it to NewBuffer.
type MachineState struct {
	IndentLevel int
	LineNumber  int
	BlockStack  []BlockState

	File FileSource // nil unless executing from a file

	DoingFile     bool
	G53Active     bool
	Compatibility Compatibility

	// Previous is non-nil when this state is a nested macro invocation;
	// its presence suppresses the checksum-required rule (§4.1 step 4).
	Previous *MachineState
}

// Compatibility selects small behavioral dialect knobs; the spec does not
// enumerate values beyond "compatibility" existing as host state, so this
// is kept as an opaque host-assigned tag rather than invented semantics.
type Compatibility byte

// NewMachineState returns a fresh, file-less machine state at indent 0. The
// block stack starts with one Plain frame, mirroring the original firmware's
// fixed-size blockStack[0]: it is always valid, so a top-level if/while/else/
// break (command_indent 0, no enclosing block) has a real frame to retag
// instead of silently no-opping against an empty stack. PushBlock/PopBlock
// keep this invariant: the stack always holds IndentLevel+1 frames.
func NewMachineState() *MachineState {
	return &MachineState{BlockStack: []BlockState{{Tag: BlockPlain}}}
}

func (ms *MachineState) inNestedMacro() bool {
	return ms.Previous != nil
}

// PushBlock pushes one frame onto the block stack and increments the
// indent level (CreateBlocks in §4.3, one frame at a time).
func (ms *MachineState) PushBlock(tag BlockTag) {
	ms.BlockStack = append(ms.BlockStack, BlockState{Tag: tag})
	ms.IndentLevel++
}

// PushLoopBlock pushes a Loop frame remembering where to rewind to.
func (ms *MachineState) PushLoopBlock(filePosition int64, lineNumber int) {
	ms.BlockStack = append(ms.BlockStack, BlockState{
		Tag:          BlockLoop,
		FilePosition: filePosition,
		LineNumber:   lineNumber,
	})
	ms.IndentLevel++
}

// PopBlock pops one frame and decrements the indent level. A Loop frame is
// popped like any other; invariant 6's "loop restart" comes from the block
// controller re-executing the "while" line after the rewind, which pushes a
// fresh Loop frame of its own if the condition still holds.
func (ms *MachineState) PopBlock() (BlockState, bool) {
	if len(ms.BlockStack) == 0 {
		return BlockState{}, false
	}
	top := ms.BlockStack[len(ms.BlockStack)-1]
	ms.BlockStack = ms.BlockStack[:len(ms.BlockStack)-1]
	ms.IndentLevel--
	return top, true
}

// CurrentBlock returns the top of the block stack, if any.
func (ms *MachineState) CurrentBlock() (BlockState, bool) {
	if len(ms.BlockStack) == 0 {
		return BlockState{}, false
	}
	return ms.BlockStack[len(ms.BlockStack)-1], true
}

// ReplaceCurrentBlock overwrites the top frame in place (used by break:
// §4.3 "replace it with Plain").
func (ms *MachineState) ReplaceCurrentBlock(b BlockState) {
	if len(ms.BlockStack) == 0 {
		return
	}
	ms.BlockStack[len(ms.BlockStack)-1] = b
}
