// Package headers implements the ordered HTTP header multimap: Headers and
// its Builder, with RFC 7230 name/value validation.
package headers

import (
	"strconv"
	"strings"

	"github.com/brindlehttp/httpcore/pkg/errors"
)

// Canonical header name constants used internally by the bridge, follow-up,
// and cache-control components. Not a general-purpose public catalogue.
const (
	Authorization       = "Authorization"
	Cookie              = "Cookie"
	SetCookie           = "Set-Cookie"
	ProxyAuthorization  = "Proxy-Authorization"
	ContentType         = "Content-Type"
	ContentLength       = "Content-Length"
	ContentEncoding     = "Content-Encoding"
	TransferEncoding    = "Transfer-Encoding"
	Host                = "Host"
	UserAgent           = "User-Agent"
	Location            = "Location"
	Vary                = "Vary"
	ETag                = "ETag"
	CacheControl        = "Cache-Control"
	Pragma              = "Pragma"
	Expires             = "Expires"
	LastModified        = "Last-Modified"
	Date                = "Date"
	AcceptEncoding      = "Accept-Encoding"
)

// redactedNames lists headers whose values are hidden by String().
var redactedNames = map[string]bool{
	strings.ToLower(Authorization):      true,
	strings.ToLower(Cookie):             true,
	strings.ToLower(ProxyAuthorization): true,
	strings.ToLower(SetCookie):          true,
}

// Headers is an ordered, immutable sequence of (name, value) pairs.
type Headers struct {
	names  []string
	values []string
}

// Get returns the last value matching name case-insensitively.
func (h *Headers) Get(name string) (string, bool) {
	lower := strings.ToLower(name)
	for i := len(h.names) - 1; i >= 0; i-- {
		if strings.ToLower(h.names[i]) == lower {
			return h.values[i], true
		}
	}
	return "", false
}

// Values returns every value matching name, in insertion order.
func (h *Headers) Values(name string) []string {
	lower := strings.ToLower(name)
	var out []string
	for i := range h.names {
		if strings.ToLower(h.names[i]) == lower {
			out = append(out, h.values[i])
		}
	}
	return out
}

// Size returns the number of (name, value) pairs.
func (h *Headers) Size() int { return len(h.names) }

// Name returns the name at index i as it was inserted.
func (h *Headers) Name(i int) string { return h.names[i] }

// Value returns the value at index i.
func (h *Headers) Value(i int) string { return h.values[i] }

// Equal reports strict equality: same pairs, same order, same name casing.
func (h *Headers) Equal(o *Headers) bool {
	if o == nil || len(h.names) != len(o.names) {
		return false
	}
	for i := range h.names {
		if h.names[i] != o.names[i] || h.values[i] != o.values[i] {
			return false
		}
	}
	return true
}

// String renders "Name: value" lines, redacting sensitive header values.
func (h *Headers) String() string {
	var b strings.Builder
	for i := range h.names {
		b.WriteString(h.names[i])
		b.WriteString(": ")
		if redactedNames[strings.ToLower(h.names[i])] {
			b.WriteString("██")
		} else {
			b.WriteString(h.values[i])
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// ToBuilder returns a Builder preloaded with h's entries, for deriving a
// modified copy.
func (h *Headers) ToBuilder() *Builder {
	b := &Builder{}
	b.names = append(b.names, h.names...)
	b.values = append(b.values, h.values...)
	return b
}

// Builder is HeadersBuilder: mutable accumulator for building a Headers.
type Builder struct {
	names  []string
	values []string
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

func isValidName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c < 0x21 || c > 0x7E {
			return false
		}
	}
	return true
}

func isValidValue(value string) bool {
	for i := 0; i < len(value); i++ {
		c := value[i]
		if c == '\t' {
			continue
		}
		if c < 0x20 || c > 0x7E {
			return false
		}
	}
	return true
}

// Add splits line on its first ':' into a name/value pair and validates both.
func (b *Builder) Add(line string) (*Builder, error) {
	idx := strings.IndexByte(line, ':')
	if idx < 1 {
		return nil, errors.NewMalformedError("headers.Add", line, nil)
	}
	return b.AddPair(line[:idx], strings.TrimPrefix(line[idx+1:], " "))
}

// AddPair validates and appends a (name, value) pair.
func (b *Builder) AddPair(name, value string) (*Builder, error) {
	if !isValidName(name) {
		return nil, errors.NewMalformedError("headers.name", name, nil)
	}
	if !isValidValue(value) {
		return nil, errors.NewMalformedError("headers.value", value, nil)
	}
	b.names = append(b.names, name)
	b.values = append(b.values, value)
	return b, nil
}

// AddUnsafeNonAscii appends a pair skipping the value's ASCII-printable check.
func (b *Builder) AddUnsafeNonAscii(name, value string) *Builder {
	b.names = append(b.names, name)
	b.values = append(b.values, value)
	return b
}

// AddLenient appends a pair without validation, accepting empty names and
// colon-prefixed continuation lines — used when parsing wire input from a
// transport that may not itself be strict.
func (b *Builder) AddLenient(line string) *Builder {
	idx := strings.IndexByte(line, ':')
	if idx < 0 {
		b.names = append(b.names, "")
		b.values = append(b.values, line)
		return b
	}
	name := line[:idx]
	value := strings.TrimPrefix(line[idx+1:], " ")
	b.names = append(b.names, name)
	b.values = append(b.values, value)
	return b
}

// Set replaces every existing entry whose name matches case-insensitively
// with a single new entry.
func (b *Builder) Set(name, value string) *Builder {
	b.RemoveAll(name)
	b.names = append(b.names, name)
	b.values = append(b.values, value)
	return b
}

// RemoveAll deletes every entry whose name matches name case-insensitively.
func (b *Builder) RemoveAll(name string) *Builder {
	lower := strings.ToLower(name)
	names := b.names[:0:0]
	values := b.values[:0:0]
	for i := range b.names {
		if strings.ToLower(b.names[i]) == lower {
			continue
		}
		names = append(names, b.names[i])
		values = append(values, b.values[i])
	}
	b.names = names
	b.values = values
	return b
}

// Build finalizes the builder into an immutable Headers.
func (b *Builder) Build() *Headers {
	return &Headers{
		names:  append([]string(nil), b.names...),
		values: append([]string(nil), b.values...),
	}
}

// PromisesBody reports whether a response with the given method, status
// code, and headers is expected to carry a body: false for HEAD, and false
// for 1xx/204/304 responses that declare neither Content-Length nor
// chunked Transfer-Encoding.
func PromisesBody(h *Headers, method string, code int) bool {
	if strings.EqualFold(method, "HEAD") {
		return false
	}
	if (code >= 100 && code < 200) || code == 204 || code == 304 {
		_, hasLength := h.Get(ContentLength)
		te, hasTE := h.Get(TransferEncoding)
		chunked := hasTE && strings.EqualFold(te, "chunked")
		if !hasLength && !chunked {
			return false
		}
	}
	return true
}

// ContentLengthOf parses the Content-Length header, returning -1 if
// absent or malformed.
func ContentLengthOf(h *Headers) int64 {
	v, ok := h.Get(ContentLength)
	if !ok {
		return -1
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		return -1
	}
	return n
}
