package gcode

import (
	"hash/crc32"
	"path/filepath"

	"github.com/spf13/afero"
)

// defaultEOFTrailer stands in for the GLOSSARY's "EOF_STRING": a short
// fixed byte sequence that terminates a binary upload when the host didn't
// supply an explicit size. The original firmware's exact trailer bytes
// aren't in the retrieved sources; this is a deliberate placeholder a host
// can override via OpenForWrite's trailer parameter (see DESIGN.md).
var defaultEOFTrailer = []byte("EOF_STRING")

// writeSink is the file-write destination opened by open_for_write (§6
// "File writing", secondary mode sharing the same Buffer).
type writeSink struct {
	file afero.File

	binary  bool
	size    int64
	written int64

	trailer []byte
	// trailerBuf holds bytes tentatively matching a trailer prefix: not yet
	// written to the file, not yet folded into running_crc32, since they may
	// turn out to be the trailer itself (which is never written).
	trailerBuf []byte

	expectedCRC32 uint32
	runningCRC32  uint32

	closed bool
}

// OpenForWrite implements §6's "open_for_write(dir, name, size, binary,
// expected_crc32)". size <= 0 means "no explicit size": a binary upload
// ends instead when trailer has been seen as a contiguous run.
func (b *Buffer) OpenForWrite(fs afero.Fs, dir, name string, size int64, binary bool, expectedCRC32 uint32, trailer []byte) error {
	if trailer == nil {
		trailer = defaultEOFTrailer
	}
	f, err := fs.Create(filepath.Join(dir, name))
	if err != nil {
		return wrapIOError(err, "opening upload file")
	}
	b.writeSink = &writeSink{
		file:          f,
		binary:        binary,
		size:          size,
		trailer:       trailer,
		expectedCRC32: expectedCRC32,
	}
	return nil
}

// WriteBinary feeds raw upload bytes to an open binary write sink. It
// returns done=true once the trailer has been seen as a contiguous run (or
// size bytes have been written), at which point the sink is closed and its
// running CRC32 is compared against expected_crc32.
func (b *Buffer) WriteBinary(data []byte) (bool, error) {
	if b.writeSink == nil || !b.writeSink.binary {
		return false, internalError()
	}
	return b.writeSink.writeRaw(data)
}

// writeRaw implements the trailer-run detector: a byte that continues a
// partial trailer match is buffered, not written, since a completed match
// discards the trailer rather than writing it. A mismatching byte flushes
// whatever was buffered plus itself, verbatim, and the buffer resets to
// empty -- there is no backtracking to re-test the mismatching byte as the
// start of a new candidate match. Mirrors the original's
// WriteBinaryToFile/FinishWritingBinary (§4.5 supplement, DESIGN.md).
func (w *writeSink) writeRaw(data []byte) (bool, error) {
	for _, c := range data {
		if w.size <= 0 {
			if c == w.trailer[len(w.trailerBuf)] {
				w.trailerBuf = append(w.trailerBuf, c)
				if len(w.trailerBuf) == len(w.trailer) {
					w.trailerBuf = nil
					return true, w.finish()
				}
				continue
			}
			if len(w.trailerBuf) > 0 {
				if err := w.writeAndSum(w.trailerBuf); err != nil {
					return false, err
				}
				w.trailerBuf = nil
			}
		}

		if err := w.writeAndSum([]byte{c}); err != nil {
			return false, err
		}

		if w.size > 0 && w.written >= w.size {
			return true, w.finish()
		}
	}
	return false, nil
}

func (w *writeSink) writeAndSum(bs []byte) error {
	if _, err := w.file.Write(bs); err != nil {
		return wrapIOError(err, "writing upload data")
	}
	w.runningCRC32 = crc32.Update(w.runningCRC32, crc32.IEEETable, bs)
	w.written += int64(len(bs))
	return nil
}

func (w *writeSink) finish() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if err := w.file.Close(); err != nil {
		return wrapIOError(err, "closing upload file")
	}
	if w.runningCRC32 != w.expectedCRC32 {
		return newParseError(0, "CRC32 mismatch on upload")
	}
	return nil
}

// HandleTextUpload is called once a line is Ready while a text write sink
// is open (§6 "File writing", text mode): each line is written verbatim
// except M29 (closes the sink) and G998 P<n> (accepted without being
// written). It produces no reply itself; it returns done=true once M29
// closes the sink.
func (b *Buffer) HandleTextUpload() (bool, error) {
	if b.writeSink == nil || b.writeSink.binary {
		return false, internalError()
	}

	if b.commandLetter == 'M' && b.hasCommandNumber && b.commandNumber == 29 {
		err := b.writeSink.finish()
		b.writeSink = nil
		return true, err
	}
	if b.commandLetter == 'G' && b.hasCommandNumber && b.commandNumber == 998 {
		return false, nil
	}

	line := append(append([]byte{}, b.buffer[:b.lineEnd]...), '\n')
	if _, err := b.writeSink.file.Write(line); err != nil {
		return false, wrapIOError(err, "writing upload line")
	}
	return false, nil
}
