package gcode

// FileSource is the positionable handle onto the file being executed (§3,
// §6): "the file system that stores the source being executed" is an
// external collaborator: the parser only ever observes it through this
// interface, and the block controller is the only thing allowed to call
// SeekTo (loop restart, §4.3).
//
// Position and CachedUnreadBytes together let the parser compute the true
// file offset of a command's first byte (§6 "file position of the command
// start"): file_position_of_source - cached_unread_bytes - command_length +
// command_start. Position is the raw underlying stream position after the
// source's read-ahead cache was last filled; CachedUnreadBytes is how many
// of those bytes are still sitting in the cache, not yet handed to the
// assembler via ReadByte.
type FileSource interface {
	// ReadByte returns the next byte from the source, filling the
	// read-ahead cache as needed.
	ReadByte() (byte, error)

	// Position is the underlying stream's raw byte offset after the most
	// recent cache fill.
	Position() int64

	// CachedUnreadBytes is the number of bytes already pulled into the
	// read-ahead cache but not yet consumed by ReadByte.
	CachedUnreadBytes() int

	// SeekTo repositions the source, discarding any cached bytes. Used
	// only by the block controller's loop restart.
	SeekTo(pos int64) error
}

// NoFilePosition is the sentinel file position returned when the parser is
// not executing from a file (§6 "else a sentinel").
const NoFilePosition int64 = -1

// commandFilePosition implements the §6 formula. commandLength is the
// assembler's running count of non-null bytes seen on the current
// physical line (§4.1 "Line termination").
func commandFilePosition(src FileSource, commandLength, commandStart int) int64 {
	if src == nil {
		return NoFilePosition
	}
	return src.Position() - int64(src.CachedUnreadBytes()) - int64(commandLength) + int64(commandStart)
}
