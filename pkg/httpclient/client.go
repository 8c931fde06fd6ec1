// Package httpclient assembles the interceptor chain and dispatches calls
// through the caller-supplied Transport, bounding each call with an
// execute timeout and propagating cancellation to the transport and to
// streaming body reads.
package httpclient

import (
	"context"
	"io"
	"time"

	"github.com/brindlehttp/httpcore/pkg/bridge"
	"github.com/brindlehttp/httpcore/pkg/chain"
	"github.com/brindlehttp/httpcore/pkg/constants"
	"github.com/brindlehttp/httpcore/pkg/cookie"
	"github.com/brindlehttp/httpcore/pkg/errors"
	"github.com/brindlehttp/httpcore/pkg/followup"
	"github.com/brindlehttp/httpcore/pkg/message"
	"github.com/brindlehttp/httpcore/pkg/options"
	"github.com/brindlehttp/httpcore/pkg/publicsuffix"
	"github.com/brindlehttp/httpcore/pkg/timing"
)

// Transport dispatches a single wire request and returns its response. It
// must honor ctx cancellation, must not follow redirects, and must not
// manage cookies; both of those are this package's job.
type Transport interface {
	Dispatch(ctx context.Context, request *message.Request, opts options.RequestOptions) (*message.Response, error)
}

// TransportFunc adapts a plain function to Transport.
type TransportFunc func(ctx context.Context, request *message.Request, opts options.RequestOptions) (*message.Response, error)

func (f TransportFunc) Dispatch(ctx context.Context, request *message.Request, opts options.RequestOptions) (*message.Response, error) {
	return f(ctx, request, opts)
}

// HttpClient is an immutable call dispatcher. Derive a modified copy with
// NewBuilder; the interceptor list is snapshotted on Build so later builder
// mutation never leaks into an existing client.
type HttpClient struct {
	interceptors []chain.Interceptor
	opts         options.RequestOptions
	timeout      time.Duration
	transport    Transport
	jar          cookie.Jar
	nowMillis    func() int64
	psl          *publicsuffix.List
}

// Execute runs request through the chain with the client's default options
// and timeout.
func (c *HttpClient) Execute(ctx context.Context, request *message.Request) (*message.Response, error) {
	return c.ExecuteWith(ctx, request, c.opts, c.timeout)
}

// ExecuteWith runs request with per-call options and timeout overriding the
// client defaults. A non-positive timeout means unbounded.
//
// The timeout bounds the whole call through response headers, including
// every redirect follow-up; it does not bound body reads the caller makes
// afterwards. Cancelling ctx aborts the transport dispatch and any
// outstanding body read.
func (c *HttpClient) ExecuteWith(ctx context.Context, request *message.Request, opts options.RequestOptions, timeout time.Duration) (*message.Response, error) {
	callCtx, cancel := context.WithCancelCause(ctx)

	var timedOut *errors.Error
	var timer *time.Timer
	if timeout > 0 {
		timedOut = errors.NewTimeoutError("httpclient.Execute", timeout)
		timer = time.AfterFunc(timeout, func() { cancel(timedOut) })
	}

	interceptors := make([]chain.Interceptor, 0, len(c.interceptors)+2)
	interceptors = append(interceptors, c.interceptors...)
	interceptors = append(interceptors, followup.New(opts))
	b := bridge.New(c.jar, c.nowMillis)
	b.PublicSuffix = c.psl
	interceptors = append(interceptors, b)

	terminal := func(req *message.Request) (*message.Response, error) {
		if err := callCtx.Err(); err != nil {
			return nil, callErr(callCtx, err)
		}
		tm := timing.NewTimer()
		resp, err := c.transport.Dispatch(callCtx, req, opts)
		if err != nil {
			return nil, errors.NewIOError("httpclient.dispatch", err)
		}
		tm.MarkReceived()
		m := tm.Metrics()
		return resp.ToBuilder().
			SentRequestAtMillis(m.SentRequestAtMillis).
			ReceivedResponseAtMillis(m.ReceivedResponseAtMillis).
			Build(), nil
	}

	type result struct {
		resp *message.Response
		err  error
	}
	done := make(chan result, 1)
	go func() {
		resp, err := chain.New(interceptors, terminal).Proceed(request)
		done <- result{resp, err}
	}()

	select {
	case r := <-done:
		if timer != nil {
			timer.Stop()
		}
		if r.err != nil {
			cancel(r.err)
			// A transport error caused by the elapsed timeout surfaces as
			// the timeout, not as an opaque i/o failure.
			if timedOut != nil && context.Cause(callCtx) == timedOut {
				return nil, timedOut
			}
			return nil, r.err
		}
		return attachCancel(r.resp, callCtx, cancel), nil

	case <-callCtx.Done():
		// Timeout elapsed or the caller cancelled. The transport is
		// contract-bound to observe cancellation, so the chain goroutine
		// finishes on its own; release its response without blocking here.
		go func() {
			if r := <-done; r.resp != nil {
				r.resp.Close()
			}
		}()
		return nil, callErr(callCtx, callCtx.Err())
	}
}

func callErr(ctx context.Context, err error) error {
	if cause := context.Cause(ctx); cause != nil {
		if e, ok := cause.(*errors.Error); ok {
			return e
		}
	}
	return errors.NewIOError("httpclient.Execute", err)
}

// attachCancel rewires the response body so that reads observe call
// cancellation and Close releases the call's cancel cause.
func attachCancel(resp *message.Response, ctx context.Context, cancel context.CancelCauseFunc) *message.Response {
	body := resp.Body()
	if body == nil {
		return resp
	}
	wrapped := message.NewResponseBody(
		&cancellableReader{ctx: ctx, cancel: cancel, delegate: body},
		body.ContentType(),
		body.ContentLength(),
	)
	return resp.ToBuilder().Body(wrapped).Build()
}

// cancellableReader fails reads once the call context is cancelled, so a
// caller cancellation propagates into an in-progress body read loop.
type cancellableReader struct {
	ctx      context.Context
	cancel   context.CancelCauseFunc
	delegate message.ResponseBody
	reader   io.ReadCloser
}

func (r *cancellableReader) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, callErr(r.ctx, err)
	}
	if r.reader == nil {
		r.reader = r.delegate.Reader()
	}
	return r.reader.Read(p)
}

func (r *cancellableReader) Close() error {
	r.cancel(nil)
	return r.delegate.Close()
}

// Transport returns the client's transport.
func (c *HttpClient) Transport() Transport { return c.transport }

// Options returns the client's default per-call options.
func (c *HttpClient) Options() options.RequestOptions { return c.opts }

// ExecuteTimeout returns the client's default call timeout. Zero means
// unbounded.
func (c *HttpClient) ExecuteTimeout() time.Duration { return c.timeout }

// NewBuilder returns a mutable copy carrying the same interceptor list,
// options, timeout, cookie jar, and transport.
func (c *HttpClient) NewBuilder() *Builder {
	return &Builder{
		interceptors: append([]chain.Interceptor(nil), c.interceptors...),
		opts:         c.opts,
		timeout:      c.timeout,
		transport:    c.transport,
		jar:          c.jar,
		nowMillis:    c.nowMillis,
		psl:          c.psl,
	}
}

// Builder accumulates client configuration for Build.
type Builder struct {
	interceptors []chain.Interceptor
	opts         options.RequestOptions
	timeout      time.Duration
	transport    Transport
	jar          cookie.Jar
	nowMillis    func() int64
	psl          *publicsuffix.List
}

// NewBuilder returns a Builder with the default options: follow same-scheme
// redirects, no timeout, the no-op cookie jar, and the wall clock.
func NewBuilder() *Builder {
	return &Builder{
		opts:      options.Default(),
		timeout:   constants.DefaultCallTimeout,
		jar:       cookie.NoCookies,
		nowMillis: func() int64 { return time.Now().UnixMilli() },
	}
}

// AddInterceptor appends i to the user interceptor list. User interceptors
// run in registration order, outermost first, before the library's
// follow-up and bridge interceptors.
func (b *Builder) AddInterceptor(i chain.Interceptor) *Builder {
	b.interceptors = append(b.interceptors, i)
	return b
}

// FollowRedirects sets whether redirects are chased at all.
func (b *Builder) FollowRedirects(follow bool) *Builder {
	b.opts.FollowRedirects = follow
	return b
}

// FollowSslRedirects sets whether redirects crossing http/https are chased.
func (b *Builder) FollowSslRedirects(follow bool) *Builder {
	b.opts.FollowSslRedirects = follow
	return b
}

// ExecuteTimeout sets the default per-call timeout. Non-positive means
// unbounded.
func (b *Builder) ExecuteTimeout(d time.Duration) *Builder {
	b.timeout = d
	return b
}

// Transport sets the wire transport. Required.
func (b *Builder) Transport(t Transport) *Builder {
	b.transport = t
	return b
}

// CookieJar sets the cookie jar consulted by the bridge interceptor.
func (b *Builder) CookieJar(jar cookie.Jar) *Builder {
	b.jar = jar
	return b
}

// Clock sets the millisecond clock used for Set-Cookie expiry arithmetic.
func (b *Builder) Clock(nowMillis func() int64) *Builder {
	b.nowMillis = nowMillis
	return b
}

// PublicSuffixList sets the list used to reject cookies whose domain is a
// public suffix. Nil disables that check.
func (b *Builder) PublicSuffixList(psl *publicsuffix.List) *Builder {
	b.psl = psl
	return b
}

// Build validates and freezes the client. The interceptor list is copied,
// so the builder may keep mutating without affecting the built client.
func (b *Builder) Build() (*HttpClient, error) {
	if b.transport == nil {
		return nil, errors.NewStateError("httpclient.Builder.Build", "transport is required")
	}
	return &HttpClient{
		interceptors: append([]chain.Interceptor(nil), b.interceptors...),
		opts:         b.opts,
		timeout:      b.timeout,
		transport:    b.transport,
		jar:          b.jar,
		nowMillis:    b.nowMillis,
		psl:          b.psl,
	}, nil
}
