package headers

import "testing"

func TestAddAndGetLastWins(t *testing.T) {
	b := NewBuilder()
	if _, err := b.AddPair("X-Test", "1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := b.AddPair("x-test", "2"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	h := b.Build()

	v, ok := h.Get("X-TEST")
	if !ok || v != "2" {
		t.Fatalf("Get = %q, %v, want 2, true", v, ok)
	}
	if vals := h.Values("x-test"); len(vals) != 2 || vals[0] != "1" || vals[1] != "2" {
		t.Fatalf("Values = %v", vals)
	}
}

func TestAddSplitsOnFirstColon(t *testing.T) {
	b := NewBuilder()
	if _, err := b.Add("Content-Type: text/plain"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	h := b.Build()
	v, _ := h.Get("content-type")
	if v != "text/plain" {
		t.Fatalf("got %q", v)
	}
}

func TestAddRejectsInvalidName(t *testing.T) {
	b := NewBuilder()
	if _, err := b.AddPair("Bad Name", "v"); err == nil {
		t.Fatalf("expected error for name with space")
	}
}

func TestAddRejectsControlInValue(t *testing.T) {
	b := NewBuilder()
	if _, err := b.AddPair("X", "bad\x01value"); err == nil {
		t.Fatalf("expected error for control byte in value")
	}
}

func TestSetReplacesAllMatching(t *testing.T) {
	b := NewBuilder()
	b.AddPair("X", "1")
	b.AddPair("x", "2")
	b.Set("X", "3")
	h := b.Build()
	if h.Size() != 1 {
		t.Fatalf("Size() = %d, want 1", h.Size())
	}
	v, _ := h.Get("x")
	if v != "3" {
		t.Fatalf("got %q", v)
	}
}

func TestRemoveAllCaseInsensitive(t *testing.T) {
	b := NewBuilder()
	b.AddPair("X", "1")
	b.AddPair("Y", "2")
	b.RemoveAll("x")
	h := b.Build()
	if h.Size() != 1 {
		t.Fatalf("Size() = %d", h.Size())
	}
}

func TestStringRedactsSensitiveHeaders(t *testing.T) {
	b := NewBuilder()
	b.AddPair("Authorization", "Bearer secret")
	h := b.Build()
	if got := h.String(); got == "Authorization: Bearer secret\n" {
		t.Fatalf("value was not redacted: %q", got)
	}
}

func TestEqualRequiresSameOrderAndCasing(t *testing.T) {
	b1 := NewBuilder()
	b1.AddPair("X", "1")
	h1 := b1.Build()

	b2 := NewBuilder()
	b2.AddPair("x", "1")
	h2 := b2.Build()

	if h1.Equal(h2) {
		t.Fatalf("expected inequality due to case difference")
	}
}

func TestPromisesBodyHeadIsFalse(t *testing.T) {
	h := NewBuilder().Build()
	if PromisesBody(h, "HEAD", 200) {
		t.Fatalf("HEAD must never promise a body")
	}
}

func TestPromisesBody204WithoutLengthIsFalse(t *testing.T) {
	h := NewBuilder().Build()
	if PromisesBody(h, "GET", 204) {
		t.Fatalf("204 without Content-Length must not promise a body")
	}
}

func TestPromisesBody204WithChunkedIsTrue(t *testing.T) {
	b := NewBuilder()
	b.AddPair(TransferEncoding, "chunked")
	h := b.Build()
	if !PromisesBody(h, "GET", 204) {
		t.Fatalf("204 with chunked Transfer-Encoding should promise a body")
	}
}
