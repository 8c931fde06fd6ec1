package followup

import (
	"io"
	"strings"
	"testing"

	"github.com/brindlehttp/httpcore/pkg/chain"
	"github.com/brindlehttp/httpcore/pkg/headers"
	"github.com/brindlehttp/httpcore/pkg/message"
	"github.com/brindlehttp/httpcore/pkg/options"
)

func mustRequest(t *testing.T, method, url string, body message.RequestBody) *message.Request {
	t.Helper()
	b, err := message.NewRequestBuilder().URLString(url)
	if err != nil {
		t.Fatalf("URLString(): %v", err)
	}
	b = b.Method(method)
	if body != nil {
		b = b.Body(body)
	}
	req, err := b.Build()
	if err != nil {
		t.Fatalf("Build(): %v", err)
	}
	return req
}

func redirectTerminal(sequence []int) func(*message.Request) (*message.Response, error) {
	i := 0
	return func(req *message.Request) (*message.Response, error) {
		code := sequence[i]
		i++
		b := message.NewResponseBuilder().Request(req).Code(code).
			Body(message.NewUnreadableResponseBody(nil, -1))
		if code >= 300 && code < 400 {
			b.SetHeader(headers.Location, "/next")
		}
		return b.Build(), nil
	}
}

func TestFollowUpFollowsSingleRedirect(t *testing.T) {
	req := mustRequest(t, "GET", "https://example.com/a", nil)
	terminal := redirectTerminal([]int{302, 200})

	c := chain.New([]chain.Interceptor{New(options.RequestOptions{FollowRedirects: true})}, terminal)
	resp, err := c.Proceed(req)
	if err != nil {
		t.Fatalf("Proceed(): %v", err)
	}
	if resp.Code() != 200 {
		t.Fatalf("Code() = %d, want 200", resp.Code())
	}
	if resp.PriorResponse() == nil || resp.PriorResponse().Code() != 302 {
		t.Fatalf("expected prior response chain with code 302")
	}
}

func TestFollowUpChainsMultiplePriorResponses(t *testing.T) {
	req := mustRequest(t, "GET", "https://example.com/a", nil)
	terminal := redirectTerminal([]int{302, 302, 200})

	c := chain.New([]chain.Interceptor{New(options.RequestOptions{FollowRedirects: true})}, terminal)
	resp, err := c.Proceed(req)
	if err != nil {
		t.Fatalf("Proceed(): %v", err)
	}
	if resp.Code() != 200 {
		t.Fatalf("Code() = %d", resp.Code())
	}
	p1 := resp.PriorResponse()
	if p1 == nil || p1.Code() != 302 {
		t.Fatalf("expected first prior response code 302")
	}
	p2 := p1.PriorResponse()
	if p2 == nil || p2.Code() != 302 {
		t.Fatalf("expected second prior response code 302")
	}
	if p2.PriorResponse() != nil {
		t.Fatalf("expected chain to terminate at depth 2")
	}
}

func TestFollowUpDoesNotFollowWhenDisabled(t *testing.T) {
	req := mustRequest(t, "GET", "https://example.com/a", nil)
	terminal := redirectTerminal([]int{302, 200})

	c := chain.New([]chain.Interceptor{New(options.RequestOptions{FollowRedirects: false})}, terminal)
	resp, err := c.Proceed(req)
	if err != nil {
		t.Fatalf("Proceed(): %v", err)
	}
	if resp.Code() != 302 {
		t.Fatalf("Code() = %d, want 302", resp.Code())
	}
}

func TestFollowUpPOSTBecomesGETOn302(t *testing.T) {
	req := mustRequest(t, "POST", "https://example.com/a", message.NewBytesBody([]byte("x"), nil))

	var seenMethod string
	var seenBody message.RequestBody
	terminal := func(r *message.Request) (*message.Response, error) {
		if r.Method() == "POST" {
			return message.NewResponseBuilder().Request(r).Code(302).
				SetHeader(headers.Location, "/b").
				Body(message.NewUnreadableResponseBody(nil, -1)).Build(), nil
		}
		seenMethod = r.Method()
		seenBody = r.Body()
		return message.NewResponseBuilder().Request(r).Code(200).
			Body(message.NewUnreadableResponseBody(nil, -1)).Build(), nil
	}

	c := chain.New([]chain.Interceptor{New(options.RequestOptions{FollowRedirects: true})}, terminal)
	if _, err := c.Proceed(req); err != nil {
		t.Fatalf("Proceed(): %v", err)
	}
	if seenMethod != "GET" {
		t.Fatalf("method = %q, want GET", seenMethod)
	}
	if seenBody != nil {
		t.Fatalf("expected body to be dropped")
	}
}

func TestFollowUpRetainsMethodAndBodyOn307(t *testing.T) {
	req := mustRequest(t, "POST", "https://example.com/a", message.NewBytesBody([]byte("x"), nil))

	var seenMethod string
	var seenBody message.RequestBody
	first := true
	terminal := func(r *message.Request) (*message.Response, error) {
		if first {
			first = false
			return message.NewResponseBuilder().Request(r).Code(307).
				SetHeader(headers.Location, "/b").
				Body(message.NewUnreadableResponseBody(nil, -1)).Build(), nil
		}
		seenMethod = r.Method()
		seenBody = r.Body()
		return message.NewResponseBuilder().Request(r).Code(200).
			Body(message.NewUnreadableResponseBody(nil, -1)).Build(), nil
	}

	c := chain.New([]chain.Interceptor{New(options.RequestOptions{FollowRedirects: true})}, terminal)
	if _, err := c.Proceed(req); err != nil {
		t.Fatalf("Proceed(): %v", err)
	}
	if seenMethod != "POST" {
		t.Fatalf("method = %q, want POST", seenMethod)
	}
	if seenBody == nil {
		t.Fatalf("expected body to be retained on 307")
	}
}

func TestFollowUpStripsAuthorizationCrossOrigin(t *testing.T) {
	b, _ := message.NewRequestBuilder().URLString("https://example.com/a")
	req, err := b.Method("GET").SetHeader(headers.Authorization, "secret").Build()
	if err != nil {
		t.Fatalf("Build(): %v", err)
	}

	var sawAuth bool
	first := true
	terminal := func(r *message.Request) (*message.Response, error) {
		if first {
			first = false
			return message.NewResponseBuilder().Request(r).Code(302).
				SetHeader(headers.Location, "https://other.com/b").
				Body(message.NewUnreadableResponseBody(nil, -1)).Build(), nil
		}
		_, sawAuth = r.Headers().Get(headers.Authorization)
		return message.NewResponseBuilder().Request(r).Code(200).
			Body(message.NewUnreadableResponseBody(nil, -1)).Build(), nil
	}

	c := chain.New([]chain.Interceptor{New(options.RequestOptions{FollowRedirects: true})}, terminal)
	if _, err := c.Proceed(req); err != nil {
		t.Fatalf("Proceed(): %v", err)
	}
	if sawAuth {
		t.Fatalf("expected Authorization to be stripped across origins")
	}
}

func TestFollowUpRetainsAuthorizationSameOrigin(t *testing.T) {
	b, _ := message.NewRequestBuilder().URLString("https://example.com/a")
	req, err := b.Method("GET").SetHeader(headers.Authorization, "secret").Build()
	if err != nil {
		t.Fatalf("Build(): %v", err)
	}

	var sawAuth bool
	first := true
	terminal := func(r *message.Request) (*message.Response, error) {
		if first {
			first = false
			return message.NewResponseBuilder().Request(r).Code(302).
				SetHeader(headers.Location, "/b").
				Body(message.NewUnreadableResponseBody(nil, -1)).Build(), nil
		}
		_, sawAuth = r.Headers().Get(headers.Authorization)
		return message.NewResponseBuilder().Request(r).Code(200).
			Body(message.NewUnreadableResponseBody(nil, -1)).Build(), nil
	}

	c := chain.New([]chain.Interceptor{New(options.RequestOptions{FollowRedirects: true})}, terminal)
	if _, err := c.Proceed(req); err != nil {
		t.Fatalf("Proceed(): %v", err)
	}
	if !sawAuth {
		t.Fatalf("expected Authorization to be retained on same origin")
	}
}

func TestFollowUpDoesNotFollowCrossSchemeWithoutSslFlag(t *testing.T) {
	b, _ := message.NewRequestBuilder().URLString("http://example.com/a")
	req, err := b.Method("GET").Build()
	if err != nil {
		t.Fatalf("Build(): %v", err)
	}

	terminal := func(r *message.Request) (*message.Response, error) {
		return message.NewResponseBuilder().Request(r).Code(302).
			SetHeader(headers.Location, "https://example.com/b").
			Body(message.NewUnreadableResponseBody(nil, -1)).Build(), nil
	}

	c := chain.New([]chain.Interceptor{New(options.RequestOptions{FollowRedirects: true, FollowSslRedirects: false})}, terminal)
	resp, err := c.Proceed(req)
	if err != nil {
		t.Fatalf("Proceed(): %v", err)
	}
	if resp.Code() != 302 {
		t.Fatalf("Code() = %d, want 302 (redirect not followed)", resp.Code())
	}
}

func TestFollowUpDoesNotFollowOneShotBody(t *testing.T) {
	oneShot := message.NewStreamBody(func() (io.ReadCloser, error) {
		return nil, nil
	}, nil, -1)
	req := mustRequest(t, "POST", "https://example.com/a", oneShot)

	terminal := func(r *message.Request) (*message.Response, error) {
		return message.NewResponseBuilder().Request(r).Code(307).
			SetHeader(headers.Location, "/b").
			Body(message.NewUnreadableResponseBody(nil, -1)).Build(), nil
	}

	c := chain.New([]chain.Interceptor{New(options.RequestOptions{FollowRedirects: true})}, terminal)
	resp, err := c.Proceed(req)
	if err != nil {
		t.Fatalf("Proceed(): %v", err)
	}
	if resp.Code() != 307 {
		t.Fatalf("Code() = %d, want 307 (redirect not followed for one-shot body)", resp.Code())
	}
}

func TestFollowUpFailsAfterTooManyRedirects(t *testing.T) {
	req := mustRequest(t, "GET", "https://example.com/a", nil)
	terminal := func(r *message.Request) (*message.Response, error) {
		return message.NewResponseBuilder().Request(r).Code(302).
			SetHeader(headers.Location, "/next").
			Body(message.NewUnreadableResponseBody(nil, -1)).Build(), nil
	}

	c := chain.New([]chain.Interceptor{New(options.RequestOptions{FollowRedirects: true})}, terminal)
	_, err := c.Proceed(req)
	if err == nil {
		t.Fatalf("expected error after exceeding the follow-up cap")
	}
	if !strings.Contains(err.Error(), "Too many follow-up requests: 21") {
		t.Fatalf("err = %q, want it to name the 21st follow-up", err)
	}
}
