package message

import (
	"io"
	"testing"
)

func mustBuildRequest(t *testing.T, method, url string) *Request {
	t.Helper()
	b, err := NewRequestBuilder().URLString(url)
	if err != nil {
		t.Fatalf("URLString(): %v", err)
	}
	req, err := b.Method(method).Build()
	if err != nil {
		t.Fatalf("Build(): %v", err)
	}
	return req
}

func TestResponseIsRedirectForRedirectCodes(t *testing.T) {
	req := mustBuildRequest(t, "GET", "https://example.com/")
	for _, code := range []int{300, 301, 302, 303, 307, 308} {
		resp := NewResponseBuilder().Request(req).Code(code).Body(NewUnreadableResponseBody(nil, -1)).Build()
		if !resp.IsRedirect() {
			t.Errorf("code %d: expected IsRedirect() true", code)
		}
	}
}

func TestResponseIsRedirectFalseForOK(t *testing.T) {
	req := mustBuildRequest(t, "GET", "https://example.com/")
	resp := NewResponseBuilder().Request(req).Code(200).Body(NewUnreadableResponseBody(nil, -1)).Build()
	if resp.IsRedirect() {
		t.Fatalf("expected IsRedirect() false for 200")
	}
}

func TestResponsePromisesBodyFalseForHEAD(t *testing.T) {
	req := mustBuildRequest(t, "HEAD", "https://example.com/")
	resp := NewResponseBuilder().Request(req).Code(200).Body(NewUnreadableResponseBody(nil, -1)).Build()
	if resp.PromisesBody() {
		t.Fatalf("expected PromisesBody() false for HEAD")
	}
}

func TestResponsePromisesBodyFalseFor204WithoutLength(t *testing.T) {
	req := mustBuildRequest(t, "GET", "https://example.com/")
	resp := NewResponseBuilder().Request(req).Code(204).Body(NewUnreadableResponseBody(nil, -1)).Build()
	if resp.PromisesBody() {
		t.Fatalf("expected PromisesBody() false for 204 without Content-Length")
	}
}

func TestResponseCacheControlIsCached(t *testing.T) {
	req := mustBuildRequest(t, "GET", "https://example.com/")
	resp := NewResponseBuilder().Request(req).Code(200).
		SetHeader("Cache-Control", "max-age=60").
		Body(NewUnreadableResponseBody(nil, -1)).Build()

	cc1 := resp.CacheControl()
	cc2 := resp.CacheControl()
	if cc1 != cc2 {
		t.Fatalf("expected CacheControl() to be cached")
	}
	if cc1.MaxAgeSeconds != 60 {
		t.Fatalf("MaxAgeSeconds = %d, want 60", cc1.MaxAgeSeconds)
	}
}

func TestResponseNetworkResponseLinkIsUnreadable(t *testing.T) {
	req := mustBuildRequest(t, "GET", "https://example.com/")
	network := NewResponseBuilder().Request(req).Code(200).
		SetHeader("Content-Type", "text/plain").
		Body(NewResponseBody(nil, ParseMediaType("text/plain"), 5)).Build()

	cached := NewResponseBuilder().Request(req).Code(200).NetworkResponse(network).
		Body(NewUnreadableResponseBody(nil, -1)).Build()

	linked := cached.NetworkResponse()
	if linked == nil {
		t.Fatalf("expected non-nil NetworkResponse()")
	}
	if linked.NetworkResponse() != nil || linked.CacheResponse() != nil || linked.PriorResponse() != nil {
		t.Fatalf("linked response must not itself carry further links")
	}
	if _, err := linked.Body().Reader().Read(make([]byte, 1)); err == nil {
		t.Fatalf("expected linked response body to be unreadable")
	}
	if linked.Body().ContentType().String() != "text/plain" {
		t.Fatalf("expected content type to be preserved on the stripped link")
	}
}

func TestResponseCloseDelegatesToBody(t *testing.T) {
	closed := false
	req := mustBuildRequest(t, "GET", "https://example.com/")
	resp := NewResponseBuilder().Request(req).Code(200).
		Body(&closeTrackingBody{onClose: func() { closed = true }}).Build()

	if err := resp.Close(); err != nil {
		t.Fatalf("Close(): %v", err)
	}
	if !closed {
		t.Fatalf("expected underlying body to be closed")
	}
}

type closeTrackingBody struct {
	onClose func()
}

func (b *closeTrackingBody) ContentType() *MediaType { return nil }
func (b *closeTrackingBody) ContentLength() int64    { return -1 }
func (b *closeTrackingBody) Reader() io.ReadCloser   { return nil }
func (b *closeTrackingBody) Close() error {
	b.onClose()
	return nil
}
