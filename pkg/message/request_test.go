package message

import "testing"

func TestRequestBuilderBuildsGET(t *testing.T) {
	b, err := NewRequestBuilder().URLString("https://example.com/")
	if err != nil {
		t.Fatalf("URLString(): %v", err)
	}
	req, err := b.Method("GET").Build()
	if err != nil {
		t.Fatalf("Build(): %v", err)
	}
	if req.Method() != "GET" {
		t.Fatalf("Method() = %q", req.Method())
	}
	if req.URL().String() != "https://example.com/" {
		t.Fatalf("URL() = %q", req.URL().String())
	}
}

func TestRequestBuilderRejectsMissingURL(t *testing.T) {
	_, err := NewRequestBuilder().Method("GET").Build()
	if err == nil {
		t.Fatalf("expected error for missing url")
	}
}

func TestRequestBuilderRejectsPOSTWithoutBody(t *testing.T) {
	b, _ := NewRequestBuilder().URLString("https://example.com/")
	_, err := b.Method("POST").Build()
	if err == nil {
		t.Fatalf("expected error for POST without body")
	}
}

func TestRequestBuilderRejectsGETWithBody(t *testing.T) {
	b, _ := NewRequestBuilder().URLString("https://example.com/")
	_, err := b.Method("GET").Body(NewBytesBody([]byte("x"), nil)).Build()
	if err == nil {
		t.Fatalf("expected error for GET with body")
	}
}

func TestRequestBuilderAcceptsPOSTWithBody(t *testing.T) {
	b, _ := NewRequestBuilder().URLString("https://example.com/")
	req, err := b.Method("POST").Body(NewBytesBody([]byte("x"), nil)).Build()
	if err != nil {
		t.Fatalf("Build(): %v", err)
	}
	if req.Body() == nil {
		t.Fatalf("expected body")
	}
}

func TestRequestBuilderNormalizesWebSocketScheme(t *testing.T) {
	b, err := NewRequestBuilder().URLString("wss://example.com/socket")
	if err != nil {
		t.Fatalf("URLString(): %v", err)
	}
	req, err := b.Method("GET").Build()
	if err != nil {
		t.Fatalf("Build(): %v", err)
	}
	if req.URL().Scheme() != "https" {
		t.Fatalf("Scheme() = %q, want https", req.URL().Scheme())
	}
}

func TestRequestCacheControlIsParsedOnce(t *testing.T) {
	b, _ := NewRequestBuilder().URLString("https://example.com/")
	req, err := b.Method("GET").SetHeader("Cache-Control", "no-cache").Build()
	if err != nil {
		t.Fatalf("Build(): %v", err)
	}
	cc1 := req.CacheControl()
	cc2 := req.CacheControl()
	if cc1 != cc2 {
		t.Fatalf("expected CacheControl() to be cached")
	}
	if !cc1.NoCache {
		t.Fatalf("expected NoCache to be set")
	}
}

func TestRequestToBuilderPreservesFields(t *testing.T) {
	b, _ := NewRequestBuilder().URLString("https://example.com/a")
	req, err := b.Method("GET").Header("X-Test", "1").Build()
	if err != nil {
		t.Fatalf("Build(): %v", err)
	}
	derived, err := req.ToBuilder().Method("GET").Build()
	if err != nil {
		t.Fatalf("Build() derived: %v", err)
	}
	if v, ok := derived.Headers().Get("X-Test"); !ok || v != "1" {
		t.Fatalf("X-Test header not preserved: %q, %v", v, ok)
	}
}
