// Package gzipbody wraps an identity-byte request body as an on-the-fly
// gzip-compressed source, streamed to the transport without buffering the
// whole payload.
package gzipbody

import (
	"bytes"
	"compress/gzip"
	"io"

	"github.com/brindlehttp/httpcore/pkg/errors"
)

const (
	stagingSize  = 8 * 1024
	minPreBuffer = 16 * 1024
)

// source reads identity bytes from delegate in ≤8KiB chunks, feeds them
// through a gzip.Writer, and serves the resulting compressed bytes back to
// the caller. EOF is returned only once the compressed buffer has drained
// and delegate is exhausted.
type source struct {
	delegate    io.Reader
	staging     []byte
	compressed  bytes.Buffer
	zw          *gzip.Writer
	delegateEOF bool
}

func newSource(delegate io.Reader) *source {
	s := &source{delegate: delegate, staging: make([]byte, stagingSize)}
	s.zw = gzip.NewWriter(&s.compressed)
	return s
}

// Read drains compressed if it already covers the
// request, otherwise pull from delegate up to max(len(p), 16KiB), feeding
// the gzip encoder, then drain whatever became available.
func (s *source) Read(p []byte) (int, error) {
	n := len(p)

	needMore := s.compressed.Len() < n && !(s.delegateEOF && s.compressed.Len() > 0)
	if needMore {
		target := n
		if target < minPreBuffer {
			target = minPreBuffer
		}

		fed := 0
		for fed < target && !s.delegateEOF {
			rn, err := s.delegate.Read(s.staging)
			if rn > 0 {
				if _, werr := s.zw.Write(s.staging[:rn]); werr != nil {
					return 0, errors.NewIOError("gzipbody.Read", werr)
				}
				fed += rn
			}
			if err != nil {
				if err == io.EOF {
					s.delegateEOF = true
					if cerr := s.zw.Close(); cerr != nil {
						return 0, errors.NewIOError("gzipbody.Read", cerr)
					}
					break
				}
				return 0, errors.NewIOError("gzipbody.Read", err)
			}
		}
	}

	if s.compressed.Len() == 0 {
		if s.delegateEOF {
			return 0, io.EOF
		}
		return 0, nil
	}

	return s.compressed.Read(p)
}

type readCloser struct {
	*source
	delegateCloser io.Closer
}

func (r *readCloser) Close() error {
	if r.delegateCloser == nil {
		return nil
	}
	return r.delegateCloser.Close()
}

// Wrap returns an io.ReadCloser that streams gzip-compressed bytes pulled
// on demand from delegate, closing delegate when the wrapper is closed.
func Wrap(delegate io.ReadCloser) io.ReadCloser {
	return &readCloser{source: newSource(delegate), delegateCloser: delegate}
}
