// Package bridge implements the BridgeInterceptor: the library's built-in
// step that normalizes an outgoing request (Content-Type, Content-Length,
// Host, Cookie, User-Agent) and integrates the cookie jar.
package bridge

import (
	"strconv"
	"strings"

	"github.com/brindlehttp/httpcore/pkg/chain"
	"github.com/brindlehttp/httpcore/pkg/constants"
	"github.com/brindlehttp/httpcore/pkg/cookie"
	"github.com/brindlehttp/httpcore/pkg/headers"
	"github.com/brindlehttp/httpcore/pkg/httpurl"
	"github.com/brindlehttp/httpcore/pkg/message"
	"github.com/brindlehttp/httpcore/pkg/publicsuffix"
)

// Interceptor is the BridgeInterceptor. It does not set Accept-Encoding;
// that remains the transport's or caller's decision.
type Interceptor struct {
	Jar          cookie.Jar
	NowMillis    func() int64
	PublicSuffix *publicsuffix.List
}

// New returns a BridgeInterceptor using jar for cookie persistence and
// nowMillis as the Clock collaborator for Set-Cookie parsing.
func New(jar cookie.Jar, nowMillis func() int64) *Interceptor {
	return &Interceptor{Jar: jar, NowMillis: nowMillis}
}

func (i *Interceptor) Intercept(c *chain.Chain, request *message.Request) (*message.Response, error) {
	b := request.ToBuilder()

	if body := request.Body(); body != nil {
		if ct := body.ContentType(); ct != nil {
			b.SetHeader(headers.ContentType, ct.String())
		}
		if length := body.ContentLength(); length >= 0 {
			b.SetHeader(headers.ContentLength, strconv.FormatInt(length, 10))
		} else {
			b.RemoveHeader(headers.ContentLength)
		}
	}

	if _, ok := request.Headers().Get(headers.Host); !ok {
		b.SetHeader(headers.Host, hostHeaderValue(request.URL()))
	}

	if i.Jar != nil {
		if cookies := i.Jar.LoadForRequest(request.URL()); len(cookies) > 0 {
			b.SetHeader(headers.Cookie, joinCookies(cookies))
		}
	}

	if _, ok := request.Headers().Get(headers.UserAgent); !ok {
		b.SetHeader(headers.UserAgent, constants.DefaultUserAgent)
	}

	networkRequest, err := b.Build()
	if err != nil {
		return nil, err
	}

	resp, err := c.Proceed(networkRequest)
	if err != nil {
		return nil, err
	}

	if i.Jar != nil {
		now := int64(0)
		if i.NowMillis != nil {
			now = i.NowMillis()
		}
		if parsed := cookie.ParseAll(now, networkRequest.URL(), resp.Headers(), i.PublicSuffix); len(parsed) > 0 {
			i.Jar.SaveFromResponse(networkRequest.URL(), parsed)
		}
	}

	return resp, nil
}

func hostHeaderValue(u *httpurl.HttpUrl) string {
	host := u.Host()
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}

	defaultPort := constants.DefaultHTTPPort
	if u.Scheme() == "https" {
		defaultPort = constants.DefaultHTTPSPort
	}
	if u.Port() == defaultPort {
		return host
	}
	return host + ":" + strconv.Itoa(u.Port())
}

func joinCookies(cookies []*cookie.Cookie) string {
	var b strings.Builder
	for idx, c := range cookies {
		if idx > 0 {
			b.WriteString("; ")
		}
		b.WriteString(c.Name)
		b.WriteByte('=')
		b.WriteString(c.Value)
	}
	return b.String()
}
