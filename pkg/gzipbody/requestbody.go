package gzipbody

import (
	"io"
	"strings"

	"github.com/brindlehttp/httpcore/pkg/errors"
	"github.com/brindlehttp/httpcore/pkg/headers"
	"github.com/brindlehttp/httpcore/pkg/message"
)

// requestBody wraps a delegate RequestBody, streaming its bytes through
// gzip on read. Content length is always unknown, since the compressed
// size cannot be predicted in advance; one-shot-ness is inherited from the
// delegate, since the underlying source can only be drained once either way.
type requestBody struct {
	delegate message.RequestBody
}

// New wraps delegate so that OpenRead serves gzip-compressed bytes instead
// of the identity bytes delegate produces.
func New(delegate message.RequestBody) message.RequestBody {
	return &requestBody{delegate: delegate}
}

func (b *requestBody) ContentType() *message.MediaType { return b.delegate.ContentType() }
func (b *requestBody) ContentLength() int64             { return -1 }
func (b *requestBody) IsOneShot() bool                  { return b.delegate.IsOneShot() }

func (b *requestBody) OpenRead() (io.ReadCloser, error) {
	r, err := b.delegate.OpenRead()
	if err != nil {
		return nil, err
	}
	return Wrap(r), nil
}

// ApplyToRequest rebuilds req with its body gzip-wrapped and a
// Content-Encoding: gzip header set. A request without a body, or one
// already carrying Content-Encoding: gzip, cannot be wrapped.
func ApplyToRequest(req *message.Request) (*message.Request, error) {
	if req.Body() == nil {
		return nil, errors.NewProtocolError("gzipbody.ApplyToRequest", "cannot gzip a request without a body", nil)
	}
	if enc, ok := req.Headers().Get(headers.ContentEncoding); ok && strings.EqualFold(enc, "gzip") {
		return nil, errors.NewProtocolError("gzipbody.ApplyToRequest", "request body is already gzip-encoded", nil)
	}
	return req.ToBuilder().
		Body(New(req.Body())).
		SetHeader(headers.ContentEncoding, "gzip").
		Build()
}
