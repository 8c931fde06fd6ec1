// Package buffer provides the spill-to-disk store behind repeatable request
// bodies. A Spool has a two-phase lifecycle: it is written exactly once
// while a one-shot source drains into it, sealed, and then served through
// any number of independent readers. Writes after sealing and reads before
// sealing are state errors, so a body can never observe a half-captured
// payload.
package buffer

import (
	"bytes"
	"io"
	"os"
	"sync"

	"github.com/brindlehttp/httpcore/pkg/errors"
)

// DefaultMemoryLimit is the default in-memory threshold before a Spool
// spills to a temp file.
const DefaultMemoryLimit = 4 * 1024 * 1024 // 4MB

// Spool captures one body's bytes, in memory up to a threshold and in a
// temp file beyond it. Construct with New; a zero-value Spool is not usable.
type Spool struct {
	mu     sync.Mutex
	mem    bytes.Buffer
	file   *os.File
	path   string
	size   int64
	limit  int64
	sealed bool
	closed bool
}

// New creates a Spool that spills to disk once it holds more than limit
// bytes in memory. A non-positive limit selects DefaultMemoryLimit.
func New(limit int64) *Spool {
	if limit <= 0 {
		limit = DefaultMemoryLimit
	}
	return &Spool{limit: limit}
}

// Write appends p during the capture phase. It fails once the spool is
// sealed or closed.
func (s *Spool) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, errors.NewStateError("buffer.Write", "spool is closed")
	}
	if s.sealed {
		return 0, errors.NewStateError("buffer.Write", "spool is sealed")
	}

	if s.file == nil && int64(s.mem.Len()+len(p)) > s.limit {
		if err := s.spillLocked(); err != nil {
			return 0, err
		}
	}

	var n int
	var err error
	if s.file != nil {
		n, err = s.file.Write(p)
	} else {
		n, err = s.mem.Write(p)
	}
	s.size += int64(n)
	if err != nil {
		return n, errors.NewIOError("buffer.Write", err)
	}
	return n, nil
}

// spillLocked moves the capture to a temp file, replaying whatever is
// already buffered in memory. Caller holds s.mu.
func (s *Spool) spillLocked() error {
	tmp, err := os.CreateTemp("", "httpcore-spool-*")
	if err != nil {
		return errors.NewIOError("buffer.spill", err)
	}

	// Record the file before replaying so Close can still clean it up if
	// the replay fails partway through.
	s.file = tmp
	s.path = tmp.Name()

	if s.mem.Len() > 0 {
		if _, err := tmp.Write(s.mem.Bytes()); err != nil {
			s.closeLocked()
			return errors.NewIOError("buffer.spill", err)
		}
		s.mem.Reset()
	}
	return nil
}

// Seal ends the capture phase, flushing any spilled bytes to stable
// storage. After Seal, the spool only serves readers. Idempotent.
func (s *Spool) Seal() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errors.NewStateError("buffer.Seal", "spool is closed")
	}
	if s.sealed {
		return nil
	}
	if s.file != nil {
		if err := s.file.Sync(); err != nil {
			return errors.NewIOError("buffer.Seal", err)
		}
	}
	s.sealed = true
	return nil
}

// Size returns the total number of bytes captured.
func (s *Spool) Size() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.size
}

// IsSpilled reports whether the capture crossed the memory threshold and
// now lives in a temp file.
func (s *Spool) IsSpilled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file != nil
}

// Reader returns a fresh, independent reader over the sealed capture. Each
// call serves the payload from the start; readers do not share position.
func (s *Spool) Reader() (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, errors.NewStateError("buffer.Reader", "spool is closed")
	}
	if !s.sealed {
		return nil, errors.NewStateError("buffer.Reader", "spool is not sealed")
	}

	if s.file != nil {
		f, err := os.Open(s.path)
		if err != nil {
			return nil, errors.NewIOError("buffer.Reader", err)
		}
		return f, nil
	}
	return io.NopCloser(bytes.NewReader(s.mem.Bytes())), nil
}

// Close releases the spool, deleting any temp file. Idempotent; open
// readers keep their own file handles and are unaffected.
func (s *Spool) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeLocked()
}

func (s *Spool) closeLocked() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.mem.Reset()

	if s.file != nil {
		err := s.file.Close()
		if removeErr := os.Remove(s.path); removeErr != nil && err == nil {
			err = removeErr
		}
		s.file = nil
		s.path = ""
		if err != nil {
			return errors.NewIOError("buffer.Close", err)
		}
	}
	return nil
}
