// Package chain implements the recursive interceptor composition that
// drives one call through user interceptors, the library's built-in
// interceptors, and a terminal transport invocation.
package chain

import "github.com/brindlehttp/httpcore/pkg/message"

// Interceptor observes and may rewrite a single step of a call. It may
// rewrite request before calling chain.Proceed, call Proceed zero or more
// times (zero short-circuits the remaining chain), rewrite the response,
// or return an error to abort the call.
type Interceptor interface {
	Intercept(c *Chain, request *message.Request) (*message.Response, error)
}

// InterceptorFunc adapts a plain function to Interceptor.
type InterceptorFunc func(c *Chain, request *message.Request) (*message.Response, error)

func (f InterceptorFunc) Intercept(c *Chain, request *message.Request) (*message.Response, error) {
	return f(c, request)
}

// Chain composes a fixed, ordered list of interceptors plus a terminal
// function invoked once the list is exhausted. A Chain value is immutable;
// Proceed constructs the next step rather than mutating in place.
type Chain struct {
	interceptors []Interceptor
	index        int
	terminal     func(request *message.Request) (*message.Response, error)
}

// New builds a Chain whose terminal step is terminal, called once every
// interceptor in interceptors has run.
func New(interceptors []Interceptor, terminal func(request *message.Request) (*message.Response, error)) *Chain {
	return &Chain{interceptors: interceptors, terminal: terminal}
}

// Proceed invokes the next interceptor in the chain with request, or the
// terminal function if the chain is exhausted.
func (c *Chain) Proceed(request *message.Request) (*message.Response, error) {
	if c.index >= len(c.interceptors) {
		return c.terminal(request)
	}
	next := &Chain{interceptors: c.interceptors, index: c.index + 1, terminal: c.terminal}
	return c.interceptors[c.index].Intercept(next, request)
}
