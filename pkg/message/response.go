package message

import (
	"sync"

	"github.com/brindlehttp/httpcore/pkg/cachecontrol"
	"github.com/brindlehttp/httpcore/pkg/headers"
)

// Response is an immutable, received HTTP response, uniquely owned by the
// caller after it is returned. Its body owns a transport handle that must
// be released exactly once via Close.
type Response struct {
	request  *Request
	protocol Protocol
	code     int
	message  string
	headers  *headers.Headers
	body     ResponseBody

	networkResponse *Response
	cacheResponse   *Response
	priorResponse   *Response

	sentRequestAtMillis      int64
	receivedResponseAtMillis int64

	cacheControlOnce sync.Once
	cacheControl     *cachecontrol.CacheControl
}

// Request returns the request that produced this response.
func (r *Response) Request() *Request { return r.request }

// Protocol returns the negotiated wire protocol.
func (r *Response) Protocol() Protocol { return r.protocol }

// Code returns the HTTP status code.
func (r *Response) Code() int { return r.code }

// Message returns the status line's reason phrase.
func (r *Response) Message() string { return r.message }

// Headers returns the response headers.
func (r *Response) Headers() *headers.Headers { return r.headers }

// Body returns the response body.
func (r *Response) Body() ResponseBody { return r.body }

// NetworkResponse returns the raw network response this response was
// derived from, or nil. Its body is unreadable.
func (r *Response) NetworkResponse() *Response { return r.networkResponse }

// CacheResponse returns the cache response consulted for this response, or
// nil. Its body is unreadable.
func (r *Response) CacheResponse() *Response { return r.cacheResponse }

// PriorResponse returns the response superseded by a redirect follow-up
// that produced this one, or nil. Its body is unreadable.
func (r *Response) PriorResponse() *Response { return r.priorResponse }

// SentRequestAtMillis is the epoch millis the request was sent.
func (r *Response) SentRequestAtMillis() int64 { return r.sentRequestAtMillis }

// ReceivedResponseAtMillis is the epoch millis the response was received.
func (r *Response) ReceivedResponseAtMillis() int64 { return r.receivedResponseAtMillis }

// CacheControl lazily parses and caches this response's Cache-Control header.
func (r *Response) CacheControl() *cachecontrol.CacheControl {
	r.cacheControlOnce.Do(func() {
		r.cacheControl = cachecontrol.Parse(r.headers)
	})
	return r.cacheControl
}

// IsRedirect reports whether Code() is one of the redirect statuses the
// follow-up interceptor recognizes.
func (r *Response) IsRedirect() bool {
	switch r.code {
	case 300, 301, 302, 303, 307, 308:
		return true
	}
	return false
}

// PromisesBody reports whether this response is expected to carry bytes per
// its method and status code.
func (r *Response) PromisesBody() bool {
	return headers.PromisesBody(r.headers, r.request.Method(), r.code)
}

// Close closes the response body. Idempotent.
func (r *Response) Close() error {
	return r.body.Close()
}

// ToBuilder returns a Builder preloaded with r's fields, for deriving a
// modified copy.
func (r *Response) ToBuilder() *ResponseBuilder {
	return &ResponseBuilder{
		request:                  r.request,
		protocol:                 r.protocol,
		code:                     r.code,
		message:                  r.message,
		headers:                  r.headers.ToBuilder(),
		body:                     r.body,
		networkResponse:          r.networkResponse,
		cacheResponse:            r.cacheResponse,
		priorResponse:            r.priorResponse,
		sentRequestAtMillis:      r.sentRequestAtMillis,
		receivedResponseAtMillis: r.receivedResponseAtMillis,
	}
}

// ResponseBuilder accumulates fields for Build.
type ResponseBuilder struct {
	request  *Request
	protocol Protocol
	code     int
	message  string
	headers  *headers.Builder
	body     ResponseBody

	networkResponse *Response
	cacheResponse   *Response
	priorResponse   *Response

	sentRequestAtMillis      int64
	receivedResponseAtMillis int64
}

// NewResponseBuilder returns an empty Builder with empty headers.
func NewResponseBuilder() *ResponseBuilder {
	return &ResponseBuilder{headers: headers.NewBuilder()}
}

func (b *ResponseBuilder) Request(r *Request) *ResponseBuilder   { b.request = r; return b }
func (b *ResponseBuilder) Protocol(p Protocol) *ResponseBuilder  { b.protocol = p; return b }
func (b *ResponseBuilder) Code(code int) *ResponseBuilder        { b.code = code; return b }
func (b *ResponseBuilder) Message(msg string) *ResponseBuilder   { b.message = msg; return b }
func (b *ResponseBuilder) Body(body ResponseBody) *ResponseBuilder { b.body = body; return b }

func (b *ResponseBuilder) Header(name, value string) *ResponseBuilder {
	b.headers.AddPair(name, value)
	return b
}

func (b *ResponseBuilder) SetHeader(name, value string) *ResponseBuilder {
	b.headers.Set(name, value)
	return b
}

func (b *ResponseBuilder) RemoveHeader(name string) *ResponseBuilder {
	b.headers.RemoveAll(name)
	return b
}

// NetworkResponse sets the linked network response, trimming its body to an
// unreadable placeholder that preserves content type and length.
func (b *ResponseBuilder) NetworkResponse(r *Response) *ResponseBuilder {
	b.networkResponse = stripBody(r)
	return b
}

// CacheResponse sets the linked cache response, trimming its body to an
// unreadable placeholder.
func (b *ResponseBuilder) CacheResponse(r *Response) *ResponseBuilder {
	b.cacheResponse = stripBody(r)
	return b
}

// PriorResponse sets the linked prior response, trimming its body to an
// unreadable placeholder. r's own prior-response link is kept, so a chain of
// redirects stays reachable hop by hop; its network and cache links are not.
func (b *ResponseBuilder) PriorResponse(r *Response) *ResponseBuilder {
	b.priorResponse = stripBody(r)
	if r != nil {
		b.priorResponse.priorResponse = r.priorResponse
	}
	return b
}

func stripBody(r *Response) *Response {
	if r == nil {
		return nil
	}
	var contentType *MediaType
	if ct, ok := r.headers.Get(headers.ContentType); ok {
		contentType = ParseMediaType(ct)
	}
	return &Response{
		request:                  r.request,
		protocol:                 r.protocol,
		code:                     r.code,
		message:                  r.message,
		headers:                  r.headers,
		body:                     NewUnreadableResponseBody(contentType, headers.ContentLengthOf(r.headers)),
		sentRequestAtMillis:      r.sentRequestAtMillis,
		receivedResponseAtMillis: r.receivedResponseAtMillis,
	}
}

func (b *ResponseBuilder) SentRequestAtMillis(ms int64) *ResponseBuilder {
	b.sentRequestAtMillis = ms
	return b
}

func (b *ResponseBuilder) ReceivedResponseAtMillis(ms int64) *ResponseBuilder {
	b.receivedResponseAtMillis = ms
	return b
}

// Build finalizes the response.
func (b *ResponseBuilder) Build() *Response {
	return &Response{
		request:                  b.request,
		protocol:                 b.protocol,
		code:                     b.code,
		message:                  b.message,
		headers:                  b.headers.Build(),
		body:                     b.body,
		networkResponse:          b.networkResponse,
		cacheResponse:            b.cacheResponse,
		priorResponse:            b.priorResponse,
		sentRequestAtMillis:      b.sentRequestAtMillis,
		receivedResponseAtMillis: b.receivedResponseAtMillis,
	}
}
