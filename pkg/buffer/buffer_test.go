package buffer

import (
	"io"
	"strings"
	"testing"
)

func TestSpoolWriteSealRead(t *testing.T) {
	s := New(0)
	defer s.Close()

	if _, err := io.Copy(s, strings.NewReader("payload")); err != nil {
		t.Fatalf("Copy(): %v", err)
	}
	if err := s.Seal(); err != nil {
		t.Fatalf("Seal(): %v", err)
	}
	if s.Size() != int64(len("payload")) {
		t.Fatalf("Size() = %d", s.Size())
	}

	for i := 0; i < 2; i++ {
		r, err := s.Reader()
		if err != nil {
			t.Fatalf("Reader() #%d: %v", i, err)
		}
		data, err := io.ReadAll(r)
		r.Close()
		if err != nil {
			t.Fatalf("ReadAll() #%d: %v", i, err)
		}
		if string(data) != "payload" {
			t.Fatalf("read #%d = %q", i, data)
		}
	}
}

func TestSpoolReaderBeforeSealFails(t *testing.T) {
	s := New(0)
	defer s.Close()

	if _, err := s.Write([]byte("x")); err != nil {
		t.Fatalf("Write(): %v", err)
	}
	if _, err := s.Reader(); err == nil {
		t.Fatalf("expected error reading an unsealed spool")
	}
}

func TestSpoolWriteAfterSealFails(t *testing.T) {
	s := New(0)
	defer s.Close()

	if err := s.Seal(); err != nil {
		t.Fatalf("Seal(): %v", err)
	}
	if _, err := s.Write([]byte("x")); err == nil {
		t.Fatalf("expected error writing a sealed spool")
	}
}

func TestSpoolSpillsPastLimit(t *testing.T) {
	s := New(16)
	defer s.Close()

	payload := strings.Repeat("z", 256)
	if _, err := io.Copy(s, strings.NewReader(payload)); err != nil {
		t.Fatalf("Copy(): %v", err)
	}
	if !s.IsSpilled() {
		t.Fatalf("expected spill past the 16-byte limit")
	}
	if err := s.Seal(); err != nil {
		t.Fatalf("Seal(): %v", err)
	}
	r, err := s.Reader()
	if err != nil {
		t.Fatalf("Reader(): %v", err)
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll(): %v", err)
	}
	if string(data) != payload {
		t.Fatalf("spilled payload mismatch: %d bytes", len(data))
	}
}

func TestSpoolCloseIsIdempotent(t *testing.T) {
	s := New(0)
	if err := s.Close(); err != nil {
		t.Fatalf("Close(): %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close(): %v", err)
	}
	if _, err := s.Write([]byte("x")); err == nil {
		t.Fatalf("expected error writing a closed spool")
	}
}
