package httpcore

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/brindlehttp/httpcore/pkg/httpclient"
	"github.com/brindlehttp/httpcore/pkg/message"
	"github.com/brindlehttp/httpcore/pkg/options"
)

func TestFacadeEndToEndRedirectChain(t *testing.T) {
	sequence := []struct {
		code     int
		location string
	}{
		{302, "/b"},
		{302, "/c"},
		{200, ""},
	}
	i := 0
	transport := httpclient.TransportFunc(func(ctx context.Context, req *message.Request, _ options.RequestOptions) (*message.Response, error) {
		step := sequence[i]
		i++
		b := message.NewResponseBuilder().Request(req).Code(step.code).
			Body(message.NewResponseBody(io.NopCloser(strings.NewReader("done")), nil, 4))
		if step.location != "" {
			b.SetHeader("Location", step.location)
		}
		return b.Build(), nil
	})

	client, err := NewClientBuilder().Transport(transport).Build()
	if err != nil {
		t.Fatalf("Build(): %v", err)
	}

	b, err := NewRequestBuilder().URLString("https://example.com/a")
	if err != nil {
		t.Fatalf("URLString(): %v", err)
	}
	req, err := b.Build()
	if err != nil {
		t.Fatalf("Build() request: %v", err)
	}

	resp, err := client.Execute(context.Background(), req)
	if err != nil {
		t.Fatalf("Execute(): %v", err)
	}
	defer resp.Close()

	if resp.Code() != 200 {
		t.Fatalf("Code() = %d", resp.Code())
	}
	prior := resp.PriorResponse()
	if prior == nil || prior.Code() != 302 {
		t.Fatalf("expected prior response chain")
	}
	if prior.PriorResponse() == nil || prior.PriorResponse().PriorResponse() != nil {
		t.Fatalf("expected prior chain of depth exactly 2")
	}
}

func TestFacadeParseUrl(t *testing.T) {
	u, err := ParseUrl("https://example.com/a?x=1")
	if err != nil {
		t.Fatalf("ParseUrl(): %v", err)
	}
	if u.Host() != "example.com" {
		t.Fatalf("Host() = %q", u.Host())
	}
	if ParseUrlOrNil("not a url") != nil {
		t.Fatalf("expected nil for malformed input")
	}
}

func TestFacadeGzipRequiresBody(t *testing.T) {
	b, err := NewRequestBuilder().URLString("https://example.com/")
	if err != nil {
		t.Fatalf("URLString(): %v", err)
	}
	req, err := b.Build()
	if err != nil {
		t.Fatalf("Build(): %v", err)
	}
	if _, err := Gzip(req); err == nil {
		t.Fatalf("expected error gzipping a bodyless request")
	}
}
