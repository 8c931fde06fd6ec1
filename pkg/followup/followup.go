// Package followup implements the FollowUpInterceptor: the library's
// bounded redirect loop, rewriting method/headers/body per RFC 7231 §6.4
// and chaining prior responses.
package followup

import (
	"strconv"
	"strings"

	"github.com/brindlehttp/httpcore/pkg/chain"
	"github.com/brindlehttp/httpcore/pkg/constants"
	"github.com/brindlehttp/httpcore/pkg/errors"
	"github.com/brindlehttp/httpcore/pkg/headers"
	"github.com/brindlehttp/httpcore/pkg/message"
	"github.com/brindlehttp/httpcore/pkg/options"
)

// Interceptor is the FollowUpInterceptor, configured once per call with the
// redirect policy in effect for that call.
type Interceptor struct {
	opts options.RequestOptions
}

// New returns a FollowUpInterceptor honoring opts for the call it is used in.
func New(opts options.RequestOptions) *Interceptor {
	return &Interceptor{opts: opts}
}

func (i *Interceptor) Intercept(c *chain.Chain, request *message.Request) (*message.Response, error) {
	current := request
	var prior *message.Response
	count := 0

	for {
		resp, err := c.Proceed(current)
		if err != nil {
			return nil, err
		}
		if prior != nil {
			resp = resp.ToBuilder().PriorResponse(prior).Build()
		}

		nextReq, ok := i.followUp(current, resp)
		if !ok {
			return resp, nil
		}

		count++
		if count > constants.MaxFollowUps {
			return nil, errors.NewProtocolError("followup.Intercept", "Too many follow-up requests: "+strconv.Itoa(count), nil)
		}

		resp.Close()
		current = nextReq
		prior = resp
	}
}

// followUp decides whether resp triggers a redirect follow-up, returning
// the rewritten request if so.
func (i *Interceptor) followUp(req *message.Request, resp *message.Response) (next *message.Request, ok bool) {
	if !resp.IsRedirect() {
		return nil, false
	}
	if !i.opts.FollowRedirects {
		return nil, false
	}

	loc, hasLoc := resp.Headers().Get(headers.Location)
	if !hasLoc {
		return nil, false
	}
	target := req.URL().Resolve(loc)
	if target == nil {
		return nil, false
	}

	crossScheme := !strings.EqualFold(target.Scheme(), req.URL().Scheme())
	if crossScheme && !i.opts.FollowSslRedirects {
		return nil, false
	}

	if req.Body() != nil && req.Body().IsOneShot() {
		return nil, false
	}

	b := rewriteForRedirect(req, resp.Code())
	b.URL(target)

	crossOrigin := crossScheme ||
		!strings.EqualFold(target.Host(), req.URL().Host()) ||
		target.Port() != req.URL().Port()
	if crossOrigin {
		b.RemoveHeader(headers.Authorization)
	}

	rebuilt, err := b.Build()
	if err != nil {
		return nil, false
	}
	return rebuilt, true
}

func rewriteForRedirect(req *message.Request, status int) *message.RequestBuilder {
	b := req.ToBuilder()

	if req.Body() == nil {
		return b
	}

	maintainBody := strings.EqualFold(req.Method(), "PROPFIND") || status == 307 || status == 308
	if !maintainBody {
		b.Method("GET")
		b.Body(nil)
		b.RemoveHeader(headers.TransferEncoding)
		b.RemoveHeader(headers.ContentLength)
		b.RemoveHeader(headers.ContentType)
	}

	return b
}
