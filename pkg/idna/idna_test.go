package idna

import "testing"

func TestToASCIIPlainASCII(t *testing.T) {
	got, err := ToASCII("example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "example.com" {
		t.Fatalf("got %q", got)
	}
}

func TestToASCIIUnicodeLabel(t *testing.T) {
	got, err := ToASCII("münchen.de")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "xn--mnchen-3ya.de" {
		t.Fatalf("got %q", got)
	}
}

func TestToASCIINFDInputIsNormalized(t *testing.T) {
	// Decomposed u + U+0308 combining diaeresis; the UTS#46 mapping must
	// normalize it to the same A-label as the precomposed spelling.
	got, err := ToASCII("mu\u0308nchen.de")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "xn--mnchen-3ya.de" {
		t.Fatalf("got %q, want %q", got, "xn--mnchen-3ya.de")
	}
}

func TestToASCIIPreservesTrailingDot(t *testing.T) {
	got, err := ToASCII("example.com.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "example.com." {
		t.Fatalf("got %q", got)
	}
}

func TestToASCIIEmptyIsError(t *testing.T) {
	if _, err := ToASCII(""); err == nil {
		t.Fatalf("expected error for empty domain")
	}
}

func TestToUnicodeRoundTrip(t *testing.T) {
	ascii, err := ToASCII("münchen.de")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := ToUnicode(ascii)
	if got != "münchen.de" {
		t.Fatalf("got %q", got)
	}
}

func TestToUnicodeNeverFailsOnGarbage(t *testing.T) {
	got := ToUnicode("xn--not-valid-punycode-!!!")
	if got == "" {
		t.Fatalf("expected a fallback string, got empty")
	}
}
