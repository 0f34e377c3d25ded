// Package filesrc implements gcode.FileSource on top of afero, giving the
// block controller's loop restart (§4.3) a real seek-back and the parser's
// file-position formula (§6) a real read-ahead cache to observe. The
// teacher's own CLI reads straight off a bare *os.File with no seek-back or
// cache accounting at all; this package fills that gap, backed by
// github.com/spf13/afero so tests can swap in afero.NewMemMapFs().
package filesrc

import (
	"io"

	"github.com/spf13/afero"
)

const readAheadSize = 256

// Source is a positionable, cached byte source over one afero.File.
type Source struct {
	file afero.File

	cache     []byte
	cachePos  int
	streamPos int64
}

// Open opens name on fs for reading.
func Open(fs afero.Fs, name string) (*Source, error) {
	f, err := fs.Open(name)
	if err != nil {
		return nil, err
	}
	return &Source{file: f}, nil
}

func (s *Source) fill() error {
	buf := make([]byte, readAheadSize)
	n, err := s.file.Read(buf)
	if n > 0 {
		s.cache = buf[:n]
		s.cachePos = 0
		if off, serr := s.file.Seek(0, io.SeekCurrent); serr == nil {
			s.streamPos = off
		}
	}
	if n == 0 && err != nil {
		return err
	}
	return nil
}

// ReadByte implements gcode.FileSource.
func (s *Source) ReadByte() (byte, error) {
	if s.cachePos >= len(s.cache) {
		if err := s.fill(); err != nil {
			return 0, err
		}
		if len(s.cache) == 0 {
			return 0, io.EOF
		}
	}
	c := s.cache[s.cachePos]
	s.cachePos++
	return c, nil
}

// Position implements gcode.FileSource: the underlying stream offset after
// the most recent cache fill.
func (s *Source) Position() int64 { return s.streamPos }

// CachedUnreadBytes implements gcode.FileSource.
func (s *Source) CachedUnreadBytes() int { return len(s.cache) - s.cachePos }

// SeekTo implements gcode.FileSource, discarding the read-ahead cache. Used
// by the block controller's loop restart.
func (s *Source) SeekTo(pos int64) error {
	s.cache = nil
	s.cachePos = 0
	off, err := s.file.Seek(pos, io.SeekStart)
	if err != nil {
		return err
	}
	s.streamPos = off
	return nil
}

// Close releases the underlying file.
func (s *Source) Close() error {
	return s.file.Close()
}
