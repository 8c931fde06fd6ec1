package gzipbody

import (
	"compress/gzip"
	"io"
	"testing"

	"github.com/brindlehttp/httpcore/pkg/headers"
	"github.com/brindlehttp/httpcore/pkg/message"
)

func TestRequestBodyContentLengthIsUnknown(t *testing.T) {
	delegate := message.NewBytesBody([]byte("payload"), nil)
	b := New(delegate)
	if b.ContentLength() != -1 {
		t.Fatalf("ContentLength() = %d, want -1", b.ContentLength())
	}
}

func TestRequestBodyInheritsOneShot(t *testing.T) {
	delegate := message.NewStreamBody(func() (io.ReadCloser, error) {
		return io.NopCloser(io.LimitReader(nil, 0)), nil
	}, nil, -1)
	b := New(delegate)
	if !b.IsOneShot() {
		t.Fatalf("expected one-shot to be inherited")
	}
}

func TestRequestBodyOpenReadCompresses(t *testing.T) {
	delegate := message.NewBytesBody([]byte("payload"), nil)
	b := New(delegate)
	r, err := b.OpenRead()
	if err != nil {
		t.Fatalf("OpenRead(): %v", err)
	}
	compressed, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll(): %v", err)
	}
	zr, err := gzip.NewReader(bytesReader(compressed))
	if err != nil {
		t.Fatalf("gzip.NewReader(): %v", err)
	}
	data, err := io.ReadAll(zr)
	if err != nil {
		t.Fatalf("ReadAll() decompressed: %v", err)
	}
	if string(data) != "payload" {
		t.Fatalf("got %q", data)
	}
}

func TestApplyToRequestSetsContentEncoding(t *testing.T) {
	b, _ := message.NewRequestBuilder().URLString("https://example.com/")
	req, err := b.Method("POST").Body(message.NewBytesBody([]byte("x"), nil)).Build()
	if err != nil {
		t.Fatalf("Build(): %v", err)
	}
	wrapped, err := ApplyToRequest(req)
	if err != nil {
		t.Fatalf("ApplyToRequest(): %v", err)
	}
	v, ok := wrapped.Headers().Get(headers.ContentEncoding)
	if !ok || v != "gzip" {
		t.Fatalf("Content-Encoding = %q, %v", v, ok)
	}
	if wrapped.Body().ContentLength() != -1 {
		t.Fatalf("expected unknown content length after gzip wrap")
	}
}

func TestApplyToRequestNoBodyFails(t *testing.T) {
	b, _ := message.NewRequestBuilder().URLString("https://example.com/")
	req, err := b.Method("GET").Build()
	if err != nil {
		t.Fatalf("Build(): %v", err)
	}
	if _, err := ApplyToRequest(req); err == nil {
		t.Fatalf("expected error for bodyless request")
	}
}

func TestApplyToRequestTwiceFails(t *testing.T) {
	b, _ := message.NewRequestBuilder().URLString("https://example.com/")
	req, err := b.Method("POST").Body(message.NewBytesBody([]byte("x"), nil)).Build()
	if err != nil {
		t.Fatalf("Build(): %v", err)
	}
	once, err := ApplyToRequest(req)
	if err != nil {
		t.Fatalf("ApplyToRequest(): %v", err)
	}
	if _, err := ApplyToRequest(once); err == nil {
		t.Fatalf("expected error for a second gzip wrap")
	}
}

func bytesReader(b []byte) io.Reader {
	return &staticReader{data: b}
}

type staticReader struct {
	data []byte
	pos  int
}

func (r *staticReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	n := copy(p, r.data[r.pos:])
	r.pos += n
	return n, nil
}
