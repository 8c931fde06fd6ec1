// Package httpcore is an embeddable HTTP/1.1 client core: URL and cookie
// parsers, header and cache-control models, an interceptor chain with
// bounded redirect follow-ups, and streaming request/response bodies, all
// dispatched through a caller-supplied wire transport.
package httpcore

import (
	"context"
	"time"

	"github.com/brindlehttp/httpcore/pkg/buffer"
	"github.com/brindlehttp/httpcore/pkg/cachecontrol"
	"github.com/brindlehttp/httpcore/pkg/chain"
	"github.com/brindlehttp/httpcore/pkg/cookie"
	"github.com/brindlehttp/httpcore/pkg/errors"
	"github.com/brindlehttp/httpcore/pkg/gzipbody"
	"github.com/brindlehttp/httpcore/pkg/headers"
	"github.com/brindlehttp/httpcore/pkg/httpclient"
	"github.com/brindlehttp/httpcore/pkg/httpurl"
	"github.com/brindlehttp/httpcore/pkg/message"
	"github.com/brindlehttp/httpcore/pkg/options"
	"github.com/brindlehttp/httpcore/pkg/publicsuffix"
	"github.com/brindlehttp/httpcore/pkg/timing"
)

// Version is the current version of the httpcore library
const Version = "1.0.0"

// GetVersion returns the current version of the library
func GetVersion() string {
	return Version
}

// Re-export key types for easier usage
type (
	// HttpUrl is a parsed, canonical http/https URL.
	HttpUrl = httpurl.HttpUrl

	// HttpUrlBuilder composes an HttpUrl from parts.
	HttpUrlBuilder = httpurl.Builder

	// Headers is an ordered, case-insensitively searchable header multimap.
	Headers = headers.Headers

	// HeadersBuilder accumulates header entries for Build.
	HeadersBuilder = headers.Builder

	// Cookie is a parsed RFC 6265 cookie.
	Cookie = cookie.Cookie

	// CookieBuilder composes a Cookie from parts.
	CookieBuilder = cookie.Builder

	// CookieJar stores cookies between calls.
	CookieJar = cookie.Jar

	// CacheControl is a parsed Cache-Control header.
	CacheControl = cachecontrol.CacheControl

	// CacheControlBuilder assembles request-side cache directives.
	CacheControlBuilder = cachecontrol.Builder

	// Request is an immutable outgoing request.
	Request = message.Request

	// RequestBuilder accumulates request fields for Build.
	RequestBuilder = message.RequestBuilder

	// RequestBody is a polymorphic outgoing byte source.
	RequestBody = message.RequestBody

	// Response is a received response with a one-shot streaming body.
	Response = message.Response

	// ResponseBuilder accumulates response fields for Build.
	ResponseBuilder = message.ResponseBuilder

	// ResponseBody is a one-shot streaming response byte source.
	ResponseBody = message.ResponseBody

	// MediaType is a parsed Content-Type value.
	MediaType = message.MediaType

	// Protocol is the wire protocol label a transport negotiated.
	Protocol = message.Protocol

	// Interceptor observes and may rewrite one step of a call.
	Interceptor = chain.Interceptor

	// Chain drives a request through the interceptor list to the transport.
	Chain = chain.Chain

	// HttpClient dispatches calls through the interceptor chain.
	HttpClient = httpclient.HttpClient

	// HttpClientBuilder accumulates client configuration for Build.
	HttpClientBuilder = httpclient.Builder

	// Transport is the caller-supplied wire dispatcher.
	Transport = httpclient.Transport

	// RequestOptions carries the per-call redirect policy.
	RequestOptions = options.RequestOptions

	// PublicSuffixList matches hosts against the Public Suffix List tables.
	PublicSuffixList = publicsuffix.List

	// Spool is the spill-to-disk capture store behind repeatable bodies.
	Spool = buffer.Spool

	// Metrics captures the sent/received instants of a dispatch.
	Metrics = timing.Metrics

	// Error is a structured error with context information.
	Error = errors.Error
)

// NoCookies is the built-in no-op cookie jar.
var NoCookies = cookie.NoCookies

// NewClientBuilder returns an HttpClientBuilder with library defaults.
func NewClientBuilder() *HttpClientBuilder {
	return httpclient.NewBuilder()
}

// NewRequestBuilder returns a RequestBuilder defaulted to GET.
func NewRequestBuilder() *RequestBuilder {
	return message.NewRequestBuilder()
}

// ParseUrl parses s into an HttpUrl, failing on malformed input.
func ParseUrl(s string) (*HttpUrl, error) {
	return httpurl.Parse(s)
}

// ParseUrlOrNil parses s into an HttpUrl, returning nil on malformed input.
func ParseUrlOrNil(s string) *HttpUrl {
	return httpurl.ParseOrNil(s)
}

// ParseCookie parses one Set-Cookie header value against url, returning nil
// when the cookie is malformed or not applicable to url.
func ParseCookie(nowMillis int64, url *HttpUrl, setCookie string, psl *PublicSuffixList) *Cookie {
	return cookie.Parse(nowMillis, url, setCookie, psl)
}

// ParseAllCookies parses every Set-Cookie header in h against url, dropping
// malformed entries.
func ParseAllCookies(nowMillis int64, url *HttpUrl, h *Headers, psl *PublicSuffixList) []*Cookie {
	return cookie.ParseAll(nowMillis, url, h, psl)
}

// Gzip rebuilds request with its body compressed on the fly and a
// Content-Encoding: gzip header. Fails if the request has no body or is
// already gzip-encoded.
func Gzip(request *Request) (*Request, error) {
	return gzipbody.ApplyToRequest(request)
}

// NewGzipRequestBody wraps delegate so reads serve gzip-compressed bytes.
func NewGzipRequestBody(delegate RequestBody) RequestBody {
	return gzipbody.New(delegate)
}

// Execute dispatches request on client, bounding the call with timeout when
// positive.
func Execute(ctx context.Context, client *HttpClient, request *Request, timeout time.Duration) (*Response, error) {
	return client.ExecuteWith(ctx, request, client.Options(), timeout)
}
