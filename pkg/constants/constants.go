// Package constants defines the default values and limits shared across httpcore.
package constants

import "time"

// Default ports, used when a URL omits an explicit port.
const (
	DefaultHTTPPort  = 80
	DefaultHTTPSPort = 443
)

// Follow-up (redirect) limits.
const (
	// MaxFollowUps bounds the number of redirect follow-ups a single
	// call will chase before giving up with a protocol error.
	MaxFollowUps = 20
)

// Call-level timeouts.
const (
	DefaultCallTimeout = 0 // no timeout by default; callers opt in
)

// HTTP limits.
const (
	// MaxContentLength is a 1TB Content-Length bound. No package in this
	// module checks Content-Length against it.
	MaxContentLength = 1024 * 1024 * 1024 * 1024 // 1TB
)

// Buffer sizes for spooled bodies. pkg/buffer uses its own
// DefaultMemoryLimit rather than these, and no in-memory cap is enforced.
const (
	DefaultBodyMemLimit = 4 * 1024 * 1024   // 4MB
	MaxRawBufferSize    = 100 * 1024 * 1024 // 100MB
)

// DefaultUserAgent is sent by the bridge interceptor when a request carries
// no User-Agent header of its own.
const DefaultUserAgent = "httpcore/1.0"

// GzipChunkSize is a 32KiB chunk size. pkg/gzipbody does not use it; its
// streaming source stages delegate reads in 8KiB chunks.
const GzipChunkSize = 32 * 1024

// ProducerIdleTimeout is a 30-second idle bound for a streaming body's
// producer. No package in this module applies it.
const ProducerIdleTimeout = 30 * time.Second
