package message

import (
	"bytes"
	"io"
	"sync/atomic"

	"github.com/brindlehttp/httpcore/pkg/errors"
)

// RequestBody is a polymorphic outgoing byte source: it reports a content
// type and length (either of which may be unknown) and may be one-shot,
// meaning OpenRead can be called at most once.
type RequestBody interface {
	ContentType() *MediaType
	ContentLength() int64 // -1 if unknown
	IsOneShot() bool
	OpenRead() (io.ReadCloser, error)
}

// bytesBody is an in-memory, repeatable RequestBody.
type bytesBody struct {
	data        []byte
	contentType *MediaType
}

// NewBytesBody wraps data as a repeatable RequestBody with the given
// content type (nil if none).
func NewBytesBody(data []byte, contentType *MediaType) RequestBody {
	return &bytesBody{data: data, contentType: contentType}
}

func (b *bytesBody) ContentType() *MediaType  { return b.contentType }
func (b *bytesBody) ContentLength() int64     { return int64(len(b.data)) }
func (b *bytesBody) IsOneShot() bool          { return false }
func (b *bytesBody) OpenRead() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(b.data)), nil
}

// streamBody is a one-shot RequestBody backed by an io.ReadCloser supplied
// once by the caller (e.g. a file or a network-fed pipe).
type streamBody struct {
	open          func() (io.ReadCloser, error)
	contentType   *MediaType
	contentLength int64
	opened        atomic.Bool
}

// NewStreamBody wraps open as a one-shot RequestBody. contentLength may be
// -1 if unknown.
func NewStreamBody(open func() (io.ReadCloser, error), contentType *MediaType, contentLength int64) RequestBody {
	return &streamBody{open: open, contentType: contentType, contentLength: contentLength}
}

func (b *streamBody) ContentType() *MediaType { return b.contentType }
func (b *streamBody) ContentLength() int64    { return b.contentLength }
func (b *streamBody) IsOneShot() bool         { return true }

func (b *streamBody) OpenRead() (io.ReadCloser, error) {
	if !b.opened.CompareAndSwap(false, true) {
		return nil, errors.NewStateError("message.RequestBody.OpenRead", "one-shot body already read")
	}
	return b.open()
}

// ResponseBody is a one-shot streaming byte source for an incoming response.
type ResponseBody interface {
	ContentType() *MediaType
	ContentLength() int64 // -1 if unknown
	Reader() io.ReadCloser
	Close() error
}

type responseBody struct {
	contentType   *MediaType
	contentLength int64
	reader        io.ReadCloser
	closed        atomic.Bool
}

// NewResponseBody wraps reader as a ResponseBody reporting contentType and
// contentLength (-1 if unknown).
func NewResponseBody(reader io.ReadCloser, contentType *MediaType, contentLength int64) ResponseBody {
	return &responseBody{reader: reader, contentType: contentType, contentLength: contentLength}
}

func (b *responseBody) ContentType() *MediaType   { return b.contentType }
func (b *responseBody) ContentLength() int64      { return b.contentLength }
func (b *responseBody) Reader() io.ReadCloser     { return b.reader }
func (b *responseBody) Close() error {
	if !b.closed.CompareAndSwap(false, true) {
		return nil
	}
	return b.reader.Close()
}

// unreadableResponseBody preserves content type/length but fails every read;
// used for a Response's networkResponse, cacheResponse, and priorResponse
// links, none of which may be read through the link.
type unreadableResponseBody struct {
	contentType   *MediaType
	contentLength int64
}

// NewUnreadableResponseBody wraps the metadata of a response that must not
// be read through this link.
func NewUnreadableResponseBody(contentType *MediaType, contentLength int64) ResponseBody {
	return &unreadableResponseBody{contentType: contentType, contentLength: contentLength}
}

func (b *unreadableResponseBody) ContentType() *MediaType { return b.contentType }
func (b *unreadableResponseBody) ContentLength() int64    { return b.contentLength }
func (b *unreadableResponseBody) Close() error            { return nil }

func (b *unreadableResponseBody) Reader() io.ReadCloser {
	return &failingReader{err: errors.NewStateError("message.ResponseBody.Reader", "body is not readable through a linked response")}
}

type failingReader struct{ err error }

func (r *failingReader) Read([]byte) (int, error) { return 0, r.err }
func (r *failingReader) Close() error              { return nil }
