// Package timing captures call-level timestamps for a dispatched request.
//
// DNS, TCP, and TLS phase timing belong to the transport implementation
// supplied by the caller; this package only tracks the two instants the
// core itself observes: when the request was handed to the transport and
// when the response headers came back.
package timing

import "time"

// Metrics reports the timestamps surrounding a single transport dispatch.
type Metrics struct {
	// SentRequestAtMillis is the Unix millisecond timestamp at which the
	// request was handed to the Transport.
	SentRequestAtMillis int64 `json:"sent_request_at_millis"`

	// ReceivedResponseAtMillis is the Unix millisecond timestamp at which
	// response headers were received from the Transport. Zero if no
	// response has been recorded yet.
	ReceivedResponseAtMillis int64 `json:"received_response_at_millis"`
}

// Timer records the sent/received instants for one dispatch.
type Timer struct {
	sentAt     time.Time
	receivedAt time.Time
}

// NewTimer starts a new timing session, recording the current instant as
// the sent-request timestamp.
func NewTimer() *Timer {
	return &Timer{sentAt: time.Now()}
}

// MarkSent records the instant the request was handed to the transport,
// overriding the instant captured at construction (useful when a retry or
// follow-up re-sends a request on an existing Timer).
func (t *Timer) MarkSent() {
	t.sentAt = time.Now()
}

// MarkReceived records the instant the response was received.
func (t *Timer) MarkReceived() {
	t.receivedAt = time.Now()
}

// Metrics returns the recorded timestamps in Unix milliseconds.
func (t *Timer) Metrics() Metrics {
	m := Metrics{SentRequestAtMillis: t.sentAt.UnixMilli()}
	if !t.receivedAt.IsZero() {
		m.ReceivedResponseAtMillis = t.receivedAt.UnixMilli()
	}
	return m
}

// Duration returns the elapsed time between the sent and received
// timestamps. Zero if no response has been recorded yet.
func (t *Timer) Duration() time.Duration {
	if t.receivedAt.IsZero() {
		return 0
	}
	return t.receivedAt.Sub(t.sentAt)
}
