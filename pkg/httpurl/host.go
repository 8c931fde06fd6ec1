package httpurl

import (
	"net/netip"
	"strconv"
	"strings"

	"github.com/brindlehttp/httpcore/pkg/errors"
	"github.com/brindlehttp/httpcore/pkg/idna"
)

// canonicalizeHost canonicalizes percent-decoded host text:
// canonical IPv4 dotted form, RFC 5952 canonical IPv6 (brackets
// stripped), or lower-cased IDNA A-label form.
func canonicalizeHost(host string) (string, error) {
	if host == "" {
		return "", errors.NewMalformedError("httpurl.host", host, nil)
	}

	if strings.HasPrefix(host, "[") && strings.HasSuffix(host, "]") {
		inner := host[1 : len(host)-1]
		addr, err := netip.ParseAddr(inner)
		if err != nil || !addr.Is6() {
			return "", errors.NewMalformedError("httpurl.host", host, err)
		}
		return addr.String(), nil
	}

	if addr, err := netip.ParseAddr(host); err == nil {
		if addr.Is4() {
			return addr.String(), nil
		}
		// A bare, unbracketed IPv6 literal is not valid host syntax.
		return "", errors.NewMalformedError("httpurl.host", host, nil)
	}

	if looksLikeIPv4(host) {
		return "", errors.NewMalformedError("httpurl.host", host, nil)
	}

	ascii, err := idna.ToASCII(host)
	if err != nil {
		return "", errors.NewMalformedError("httpurl.host", host, err)
	}
	return strings.ToLower(ascii), nil
}

// looksLikeIPv4 reports whether host has the dotted-quad shape (four
// numeric components) but failed strict parsing — such input should be
// rejected as a malformed host rather than silently treated as a domain
// name.
func looksLikeIPv4(host string) bool {
	parts := strings.Split(host, ".")
	if len(parts) != 4 {
		return false
	}
	for _, p := range parts {
		if p == "" {
			return false
		}
		if _, err := strconv.Atoi(p); err != nil {
			return false
		}
	}
	return true
}
