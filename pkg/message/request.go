package message

import (
	"strings"
	"sync"

	"github.com/brindlehttp/httpcore/pkg/cachecontrol"
	"github.com/brindlehttp/httpcore/pkg/errors"
	"github.com/brindlehttp/httpcore/pkg/headers"
	"github.com/brindlehttp/httpcore/pkg/httpurl"
)

var methodsRequiringBody = map[string]bool{
	"POST": true, "PUT": true, "PATCH": true, "PROPPATCH": true,
	"QUERY": true, "REPORT": true,
}

var methodsForbiddingBody = map[string]bool{
	"GET": true, "HEAD": true,
}

// Request is an immutable outgoing HTTP request.
type Request struct {
	url              *httpurl.HttpUrl
	method           string
	headers          *headers.Headers
	body             RequestBody
	cacheURLOverride *httpurl.HttpUrl

	cacheControlOnce sync.Once
	cacheControl     *cachecontrol.CacheControl
}

// URL returns the request's target.
func (r *Request) URL() *httpurl.HttpUrl { return r.url }

// Method returns the HTTP method, e.g. "GET".
func (r *Request) Method() string { return r.method }

// Headers returns the request's headers.
func (r *Request) Headers() *headers.Headers { return r.headers }

// Body returns the request body, nil if none.
func (r *Request) Body() RequestBody { return r.body }

// CacheURLOverride returns the URL to key cache lookups on, if different
// from URL(); nil if unset.
func (r *Request) CacheURLOverride() *httpurl.HttpUrl { return r.cacheURLOverride }

// CacheControl lazily parses and caches this request's Cache-Control header.
func (r *Request) CacheControl() *cachecontrol.CacheControl {
	r.cacheControlOnce.Do(func() {
		r.cacheControl = cachecontrol.Parse(r.headers)
	})
	return r.cacheControl
}

// ToBuilder returns a Builder preloaded with r's fields, for deriving a
// modified copy (e.g. for a redirect follow-up).
func (r *Request) ToBuilder() *RequestBuilder {
	return &RequestBuilder{
		url:              r.url,
		method:           r.method,
		headers:          r.headers.ToBuilder(),
		body:             r.body,
		cacheURLOverride: r.cacheURLOverride,
	}
}

// RequestBuilder accumulates fields for Build.
type RequestBuilder struct {
	url              *httpurl.HttpUrl
	method           string
	headers          *headers.Builder
	body             RequestBody
	cacheURLOverride *httpurl.HttpUrl
}

// NewRequestBuilder returns a Builder defaulted to method "GET" and empty
// headers.
func NewRequestBuilder() *RequestBuilder {
	return &RequestBuilder{method: "GET", headers: headers.NewBuilder()}
}

// URL sets the target URL as given; ws:/wss: normalization happens in
// URLString.
func (b *RequestBuilder) URL(u *httpurl.HttpUrl) *RequestBuilder {
	b.url = u
	return b
}

// URLString parses s (normalizing ws:/wss: to http:/https: first) and sets
// it as the target URL.
func (b *RequestBuilder) URLString(s string) (*RequestBuilder, error) {
	s = normalizeWebSocketScheme(s)
	u, err := httpurl.Parse(s)
	if err != nil {
		return nil, err
	}
	b.url = u
	return b, nil
}

func normalizeWebSocketScheme(s string) string {
	lower := strings.ToLower(s)
	switch {
	case strings.HasPrefix(lower, "ws:"):
		return "http:" + s[3:]
	case strings.HasPrefix(lower, "wss:"):
		return "https:" + s[4:]
	default:
		return s
	}
}

// Method sets the HTTP method.
func (b *RequestBuilder) Method(method string) *RequestBuilder {
	b.method = method
	return b
}

// Header appends a (name, value) pair.
func (b *RequestBuilder) Header(name, value string) *RequestBuilder {
	b.headers.AddPair(name, value)
	return b
}

// SetHeader replaces every existing entry named name with a single value.
func (b *RequestBuilder) SetHeader(name, value string) *RequestBuilder {
	b.headers.Set(name, value)
	return b
}

// RemoveHeader deletes every entry named name.
func (b *RequestBuilder) RemoveHeader(name string) *RequestBuilder {
	b.headers.RemoveAll(name)
	return b
}

// Body sets the request body. Pass nil to clear it.
func (b *RequestBuilder) Body(body RequestBody) *RequestBuilder {
	b.body = body
	return b
}

// CacheURLOverride sets the URL to key cache lookups on.
func (b *RequestBuilder) CacheURLOverride(u *httpurl.HttpUrl) *RequestBuilder {
	b.cacheURLOverride = u
	return b
}

// Build validates and finalizes the request.
func (b *RequestBuilder) Build() (*Request, error) {
	if b.url == nil {
		return nil, errors.NewStateError("message.RequestBuilder.Build", "url is required")
	}
	if b.method == "" {
		return nil, errors.NewStateError("message.RequestBuilder.Build", "method is required")
	}

	upper := strings.ToUpper(b.method)
	if methodsRequiringBody[upper] && b.body == nil {
		return nil, errors.NewStateError("message.RequestBuilder.Build", "method "+upper+" requires a body")
	}
	if methodsForbiddingBody[upper] && b.body != nil {
		return nil, errors.NewStateError("message.RequestBuilder.Build", "method "+upper+" forbids a body")
	}

	return &Request{
		url:              b.url,
		method:           b.method,
		headers:          b.headers.Build(),
		body:             b.body,
		cacheURLOverride: b.cacheURLOverride,
	}, nil
}
