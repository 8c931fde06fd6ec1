// Package httpurl implements an RFC 3986 (plus WHATWG-influenced leniency)
// HTTP URL parser, builder, and resolver: HttpUrl and HttpUrlBuilder.
package httpurl

import (
	"strconv"
	"strings"

	"github.com/brindlehttp/httpcore/pkg/percent"
	"github.com/brindlehttp/httpcore/pkg/publicsuffix"
)

// HttpUrl is an immutable, parsed HTTP or HTTPS URL.
type HttpUrl struct {
	scheme   string
	username string
	password string
	host     string
	port     int
	segments []string // decoded path segments; always starts empty-string-free except possibly trailing ""
	queryNamesAndValues []*string // alternating encoded name, encoded value (nil = bare name); empty for no query or an empty one, hasQuery tells them apart
	hasQuery bool
	fragment *string // decoded fragment; nil = absent

	// encoded forms retained for canonical string reconstruction
	encSegments []string
	encFragment *string
}

// Scheme returns "http" or "https".
func (u *HttpUrl) Scheme() string { return u.scheme }

// Username returns the decoded userinfo username, "" if absent.
func (u *HttpUrl) Username() string { return u.username }

// Password returns the decoded userinfo password, "" if absent.
func (u *HttpUrl) Password() string { return u.password }

// Host returns the canonical host.
func (u *HttpUrl) Host() string { return u.host }

// Port returns the port, defaulted per scheme if not explicit.
func (u *HttpUrl) Port() int { return u.port }

// PathSegments returns the decoded path segments.
func (u *HttpUrl) PathSegments() []string {
	out := make([]string, len(u.segments))
	copy(out, u.segments)
	return out
}

// PathSize returns the number of path segments.
func (u *HttpUrl) PathSize() int { return len(u.segments) }

// Encoded path as it appears on the wire, e.g. "/a/b/".
func (u *HttpUrl) EncodedPath() string {
	var b strings.Builder
	for _, s := range u.encSegments {
		b.WriteByte('/')
		b.WriteString(s)
	}
	if len(u.encSegments) == 0 {
		b.WriteByte('/')
	}
	return b.String()
}

// HasQuery reports whether the URL carries a query component at all
// (distinct from an empty query).
func (u *HttpUrl) HasQuery() bool { return u.hasQuery }

// QueryParameter returns the first decoded value for name, "" if absent.
func (u *HttpUrl) QueryParameter(name string) (string, bool) {
	for i := 0; i+1 < len(u.queryNamesAndValues); i += 2 {
		if percent.Decode(*u.queryNamesAndValues[i], true) == name {
			v := u.queryNamesAndValues[i+1]
			if v == nil {
				return "", true
			}
			return percent.Decode(*v, true), true
		}
	}
	return "", false
}

// Fragment returns the decoded fragment and whether one is present.
func (u *HttpUrl) Fragment() (string, bool) {
	if u.fragment == nil {
		return "", false
	}
	return *u.fragment, true
}

// DefaultPort returns the scheme's default port.
func DefaultPort(scheme string) int {
	if scheme == "https" {
		return 443
	}
	return 80
}

// String returns the canonical string form.
func (u *HttpUrl) String() string {
	var b strings.Builder
	b.WriteString(u.scheme)
	b.WriteString("://")

	if u.username != "" || u.password != "" {
		b.WriteString(percent.Canonicalize(u.username, percent.Username, false, false, false))
		if u.password != "" {
			b.WriteByte(':')
			b.WriteString(percent.Canonicalize(u.password, percent.Password, false, false, false))
		}
		b.WriteByte('@')
	}

	if strings.Contains(u.host, ":") {
		b.WriteByte('[')
		b.WriteString(u.host)
		b.WriteByte(']')
	} else {
		b.WriteString(u.host)
	}

	if u.port != DefaultPort(u.scheme) {
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(u.port))
	}

	b.WriteString(u.EncodedPath())

	if u.hasQuery {
		b.WriteByte('?')
		b.WriteString(u.encodedQuery())
	}

	if u.encFragment != nil {
		b.WriteByte('#')
		b.WriteString(*u.encFragment)
	}

	return b.String()
}

func (u *HttpUrl) encodedQuery() string {
	var b strings.Builder
	for i := 0; i+1 < len(u.queryNamesAndValues); i += 2 {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(*u.queryNamesAndValues[i])
		if v := u.queryNamesAndValues[i+1]; v != nil {
			b.WriteByte('=')
			b.WriteString(*v)
		}
	}
	return b.String()
}

// Redact returns "<scheme>://<host>/..." with userinfo and path stripped.
func (u *HttpUrl) Redact() string {
	return u.scheme + "://" + u.host + "/..."
}

// TopPrivateDomain returns the registrable domain (eTLD+1) of the host, or
// "" when the host is an IP literal or the public suffix list rejects it.
func (u *HttpUrl) TopPrivateDomain(list *publicsuffix.List) string {
	if isIPLiteral(u.host) {
		return ""
	}
	return list.EffectiveTLDPlusOne(u.host)
}

func isIPLiteral(host string) bool {
	return strings.Contains(host, ":") || looksLikeIPv4(host) || isDottedQuad(host)
}

func isDottedQuad(host string) bool {
	parts := strings.Split(host, ".")
	if len(parts) != 4 {
		return false
	}
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || n > 255 {
			return false
		}
	}
	return true
}

// ParseOrNil parses s, returning nil instead of an error on failure, per
// the toHttpUrlOrNull contract.
func ParseOrNil(s string) *HttpUrl {
	u, err := Parse(s)
	if err != nil {
		return nil
	}
	return u
}

// Parse parses s into an HttpUrl.
func Parse(s string) (*HttpUrl, error) {
	b := NewBuilder()
	if err := b.parse(nil, s); err != nil {
		return nil, err
	}
	return b.Build()
}

// Resolve resolves link against base per RFC 3986 §5, returning nil if
// link names an unsupported scheme.
func (u *HttpUrl) Resolve(link string) *HttpUrl {
	b := NewBuilder()
	if err := b.parse(u, link); err != nil {
		return nil
	}
	out, err := b.Build()
	if err != nil {
		return nil
	}
	return out
}
