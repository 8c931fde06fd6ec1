package message

import (
	"io"

	"github.com/brindlehttp/httpcore/pkg/buffer"
)

// SpooledBody is a repeatable RequestBody backed by a memory/disk-spilling
// buffer. Unlike a one-shot stream body it survives redirect follow-ups,
// since every OpenRead serves a fresh reader over the spooled bytes.
// Release the backing store with Close once the body is no longer needed.
type SpooledBody struct {
	store       *buffer.Spool
	contentType *MediaType
}

// SpoolBody drains r into a spool and returns a repeatable body over the
// sealed capture. A non-positive memLimit selects the buffer package's
// default threshold. r is fully consumed but not closed.
func SpoolBody(r io.Reader, contentType *MediaType, memLimit int64) (*SpooledBody, error) {
	store := buffer.New(memLimit)
	if _, err := io.Copy(store, r); err != nil {
		store.Close()
		return nil, err
	}
	if err := store.Seal(); err != nil {
		store.Close()
		return nil, err
	}
	return &SpooledBody{store: store, contentType: contentType}, nil
}

// SpoolRequestBody replays delegate through a spilling buffer, converting a
// one-shot body into a repeatable one.
func SpoolRequestBody(delegate RequestBody, memLimit int64) (*SpooledBody, error) {
	r, err := delegate.OpenRead()
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return SpoolBody(r, delegate.ContentType(), memLimit)
}

func (b *SpooledBody) ContentType() *MediaType { return b.contentType }
func (b *SpooledBody) ContentLength() int64    { return b.store.Size() }
func (b *SpooledBody) IsOneShot() bool         { return false }

func (b *SpooledBody) OpenRead() (io.ReadCloser, error) {
	return b.store.Reader()
}

// IsSpilled reports whether the payload crossed the memory threshold and
// now lives in a temp file.
func (b *SpooledBody) IsSpilled() bool { return b.store.IsSpilled() }

// Close releases the backing store. Idempotent.
func (b *SpooledBody) Close() error { return b.store.Close() }
