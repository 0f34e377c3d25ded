package gcode

// DefaultCapacity is the line buffer size used when Config.Capacity is
// zero, matching the "typical 200-256" capacity named in §3.
const DefaultCapacity = 256

// Axes configures which letters the host machine recognizes as axis
// words, used by the Fanuc-continuation rule in the command decoder
// (§4.4). A typical Cartesian machine is "XYZ"; a machine with extra axes
// adds more letters.
type Axes string

// DefaultAxes is the common XYZ Cartesian set.
const DefaultAxes Axes = "XYZ"

func (a Axes) has(c byte) bool {
	for i := 0; i < len(a); i++ {
		if a[i] == c {
			return true
		}
	}
	return false
}

// Config configures a Buffer at construction time (§9 "Global state"
// design note: capabilities are passed in, never reached for globally).
type Config struct {
	// Capacity is the fixed line-buffer size. Zero means DefaultCapacity.
	Capacity int

	// ChecksumRequired enables the "missing checksum" rule of §4.1 step 4.
	ChecksumRequired bool

	// Axes are the axis letters the Fanuc-continuation rule recognizes
	// (§4.4). Zero value means DefaultAxes.
	Axes Axes

	// MachineType selects whether the Fanuc-continuation shortcut applies
	// at all (§4.4: "and the machine type is CNC").
	MachineType MachineType

	Logger   Logger
	Resolver Resolver
}

type configOption func(*Config)

func WithCapacity(n int) configOption {
	return func(c *Config) { c.Capacity = n }
}

func WithChecksumRequired(required bool) configOption {
	return func(c *Config) { c.ChecksumRequired = required }
}

func WithAxes(axes Axes) configOption {
	return func(c *Config) { c.Axes = axes }
}

func WithMachineType(t MachineType) configOption {
	return func(c *Config) { c.MachineType = t }
}

func WithLogger(l Logger) configOption {
	return func(c *Config) { c.Logger = l }
}

func WithResolver(r Resolver) configOption {
	return func(c *Config) { c.Resolver = r }
}

// Buffer is one parser instance, bound for life to one input channel (§3
// "Lifecycles"). It owns the fixed-capacity line buffer and all of the
// assembler/decoder/parameter-reader state; it holds only a non-owning
// reference to the MachineState the host constructs (§9 "Cyclic object
// graph" design note).
type Buffer struct {
	config Config

	logger   Logger
	resolver Resolver

	machine *MachineState

	// The line buffer and write index (§3 "Line buffer").
	buffer  []byte
	lineEnd int

	// Assembler phase and accounting (§3 "Parser state").
	state          BufferState
	commandIndent  int
	commandStart   int
	commandEnd     int
	parameterStart int

	commandLetter     byte
	hasCommandNumber  bool
	commandNumber     int32
	commandFraction   int8
	prevCommandLetter byte
	prevHasNumber     bool
	prevCommandNumber int32

	readPointer int

	receivedLineNumber int
	hadLineNumber      bool
	hadChecksum        bool
	declaredChecksum   int
	computedChecksum   int
	commandLength      int

	indentToSkipTo int
	skippingBlock  bool

	// writeSink is the in-progress file-write destination, if any (§6
	// "File writing").
	writeSink *writeSink
}

// NewBuffer constructs a Buffer bound to machine, configured by opts.
func NewBuffer(machine *MachineState, opts ...configOption) *Buffer {
	var cfg Config
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultCapacity
	}
	if cfg.Axes == "" {
		cfg.Axes = DefaultAxes
	}
	if cfg.Logger == nil {
		cfg.Logger = defaultLogger()
	}

	b := &Buffer{
		config:   cfg,
		logger:   cfg.Logger,
		resolver: cfg.Resolver,
		machine:  machine,
		buffer:   make([]byte, cfg.Capacity),
	}
	b.init()
	return b
}

// init resets per-line indices and flags. Entered at construction, after
// every completed or discarded line, and after a multi-command line's last
// command (§3 "Lifecycles"). The line buffer's bytes are not cleared; only
// lineEnd and the parse indices reset.
func (b *Buffer) init() {
	b.lineEnd = 0
	b.commandLength = 0
	b.readPointer = NoReadPointer
	b.hadLineNumber = false
	b.hadChecksum = false
	b.computedChecksum = 0
	b.state = ParseNotStarted
	b.commandIndent = 0
	b.commandStart = 0
	b.commandEnd = 0
	b.parameterStart = 0
}

// CommandLetter, CommandNumber, CommandFraction, and friends are observable
// once PutByte returns true, until SetFinished is called (§6 "Command
// output").
func (b *Buffer) CommandLetter() byte   { return b.commandLetter }
func (b *Buffer) HasCommandNumber() bool { return b.hasCommandNumber }
func (b *Buffer) CommandNumber() int32  { return b.commandNumber }
func (b *Buffer) CommandFraction() int8 { return b.commandFraction }
func (b *Buffer) State() BufferState    { return b.state }

// DataSlice returns [command_start, command_end) (§6 "data slice").
func (b *Buffer) DataSlice() []byte {
	return b.buffer[b.commandStart:b.commandEnd]
}

// AppendFullCommand returns the full command text, letter through the end
// of its parameters (§6 "append_full_command").
func (b *Buffer) AppendFullCommand() string {
	return string(b.buffer[b.commandStart:b.commandEnd])
}

// PrintCommand returns the short form, e.g. "G1" or "G92.1" (§6
// "print_command").
func (b *Buffer) PrintCommand() string {
	if !b.hasCommandNumber {
		return string(b.commandLetter)
	}
	s := string(b.commandLetter) + itoa32(b.commandNumber)
	if b.commandFraction >= 0 {
		s += "." + itoa32(int32(b.commandFraction))
	}
	return s
}

// FilePosition implements §6's "file position of the command start"
// formula, or NoFilePosition if not executing from a file.
func (b *Buffer) FilePosition() int64 {
	if b.machine == nil || b.machine.File == nil {
		return NoFilePosition
	}
	return commandFilePosition(b.machine.File, b.commandLength, b.commandStart)
}

func itoa32(n int32) string {
	neg := n < 0
	if neg {
		n = -n
	}
	if n == 0 {
		return "0"
	}
	var digits [12]byte
	i := len(digits)
	for n > 0 {
		i--
		digits[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		digits[i] = '-'
	}
	return string(digits[i:])
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func upper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - 'a' + 'A'
	}
	return c
}

func isSpaceOrTab(c byte) bool { return c == ' ' || c == '\t' }
