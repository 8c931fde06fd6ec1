// Package cookie implements RFC 6265 cookie parsing, matching, and
// serialization, plus the CookieJar contract the bridge interceptor uses to
// load and save cookies around a request.
package cookie

import (
	"net/netip"
	"strconv"
	"strings"
	"time"

	"github.com/brindlehttp/httpcore/pkg/headers"
	"github.com/brindlehttp/httpcore/pkg/httpdate"
	"github.com/brindlehttp/httpcore/pkg/httpurl"
	"github.com/brindlehttp/httpcore/pkg/idna"
	"github.com/brindlehttp/httpcore/pkg/percent"
	"github.com/brindlehttp/httpcore/pkg/publicsuffix"
)

const maxDate int64 = 253402300799999

// SameSite is the cookie's SameSite attribute.
type SameSite int

const (
	SameSiteNone SameSite = iota
	SameSiteDefault
	SameSiteStrict
	SameSiteLax
)

func (s SameSite) String() string {
	switch s {
	case SameSiteDefault:
		return "SameSite"
	case SameSiteStrict:
		return "Strict"
	case SameSiteLax:
		return "Lax"
	default:
		return ""
	}
}

// Cookie is an immutable, parsed HTTP cookie.
type Cookie struct {
	Name       string
	Value      string
	ExpiresAt  int64 // epoch millis, clamped to [math.MinInt64, maxDate]
	Domain     string
	Path       string
	Secure     bool
	HttpOnly   bool
	Persistent bool
	HostOnly   bool
	SameSite   SameSite
	hasSame    bool
}

// Equal compares every field.
func (c *Cookie) Equal(o *Cookie) bool {
	if o == nil {
		return false
	}
	return *c == *o
}

// Matches reports whether c should be sent on a request to url.
func (c *Cookie) Matches(u *httpurl.HttpUrl) bool {
	host := u.Host()
	if !domainMatches(c.Domain, c.HostOnly, host) {
		return false
	}
	if !pathMatches(c.Path, requestPath(u)) {
		return false
	}
	if c.Secure && u.Scheme() != "https" {
		return false
	}
	return true
}

func domainMatches(domain string, hostOnly bool, host string) bool {
	if domain == host {
		return true
	}
	if hostOnly {
		return false
	}
	if isIPHost(host) {
		return false
	}
	return hasDotSuffix(host, domain)
}

func pathMatches(cookiePath, requestPath string) bool {
	if requestPath == cookiePath {
		return true
	}
	if !strings.HasPrefix(requestPath, cookiePath) {
		return false
	}
	if cookiePath != "" && cookiePath[len(cookiePath)-1] == '/' {
		return true
	}
	return requestPath[len(cookiePath)] == '/'
}

func hasDotSuffix(s, suffix string) bool {
	return len(s) > len(suffix) && s[len(s)-len(suffix)-1] == '.' && s[len(s)-len(suffix):] == suffix
}

func isIPHost(host string) bool {
	_, err := netip.ParseAddr(host)
	return err == nil
}

func requestPath(u *httpurl.HttpUrl) string {
	p := u.EncodedPath()
	if p == "" {
		return "/"
	}
	return p
}

// String serializes c in Set-Cookie wire form.
func (c *Cookie) String() string {
	var b strings.Builder
	b.WriteString(c.Name)
	b.WriteByte('=')
	b.WriteString(c.Value)

	if c.ExpiresAt == minInt64 {
		b.WriteString("; max-age=0")
	} else if c.Persistent {
		b.WriteString("; expires=")
		b.WriteString(httpdate.Format(msToTime(c.ExpiresAt)))
	}
	if !c.HostOnly {
		b.WriteString("; domain=")
		b.WriteString(c.Domain)
	}
	b.WriteString("; path=")
	b.WriteString(c.Path)
	if c.Secure {
		b.WriteString("; secure")
	}
	if c.HttpOnly {
		b.WriteString("; httponly")
	}
	if c.hasSame {
		b.WriteString("; samesite=")
		b.WriteString(strings.ToLower(c.SameSite.String()))
	}
	return b.String()
}

// Parse parses a Set-Cookie header value received from u at currentTimeMillis,
// rejecting cookies whose domain fails validation per RFC 6265 §5.2.3/5.3.
// Returns nil on any rejection.
func Parse(currentTimeMillis int64, u *httpurl.HttpUrl, setCookie string, psl *publicsuffix.List) *Cookie {
	nameValue, rest, _ := cutFirst(setCookie, ';')
	name, value, ok := splitNameValue(nameValue)
	if !ok {
		return nil
	}

	c := &Cookie{Name: name, Value: value}

	var expiresSet, maxAgeSet bool
	var expiresAt int64
	var maxAgeExpiry int64
	var domainAttr string
	var pathAttr string

	for rest != "" {
		var attr string
		attr, rest, _ = cutFirst(rest, ';')
		attr = strings.TrimSpace(attr)
		if attr == "" {
			continue
		}
		attrName, attrValue, _ := cutFirst(attr, '=')
		attrName = strings.TrimSpace(attrName)
		attrValue = strings.TrimSpace(attrValue)

		switch {
		case strings.EqualFold(attrName, "Expires"):
			if t, ok := httpdate.Parse(attrValue); ok {
				expiresAt = clampDate(t.UnixMilli())
				expiresSet = true
			}
		case strings.EqualFold(attrName, "Max-Age"):
			n, err := strconv.ParseInt(attrValue, 10, 64)
			if err != nil {
				if strings.HasPrefix(attrValue, "-") {
					n = minInt64
				} else {
					n = maxInt64
				}
			}
			if n <= 0 {
				maxAgeExpiry = minInt64
			} else if n > maxDate/1000 {
				maxAgeExpiry = maxDate
			} else {
				maxAgeExpiry = clampDate(currentTimeMillis + n*1000)
			}
			maxAgeSet = true
		case strings.EqualFold(attrName, "Domain"):
			domainAttr = attrValue
		case strings.EqualFold(attrName, "Path"):
			pathAttr = attrValue
		case strings.EqualFold(attrName, "Secure"):
			c.Secure = true
		case strings.EqualFold(attrName, "HttpOnly"):
			c.HttpOnly = true
		case strings.EqualFold(attrName, "SameSite"):
			c.hasSame = true
			switch strings.ToLower(attrValue) {
			case "strict":
				c.SameSite = SameSiteStrict
			case "lax":
				c.SameSite = SameSiteLax
			default:
				c.SameSite = SameSiteDefault
			}
		}
	}

	host := u.Host()

	if maxAgeSet {
		c.ExpiresAt = maxAgeExpiry
		c.Persistent = true
	} else if expiresSet {
		c.ExpiresAt = expiresAt
		c.Persistent = true
	} else {
		c.ExpiresAt = maxDate
		c.Persistent = false
	}

	domain, hostOnly, ok := domainAndType(host, domainAttr, psl)
	if !ok {
		return nil
	}
	c.Domain = domain
	c.HostOnly = hostOnly

	if pathAttr != "" && strings.HasPrefix(pathAttr, "/") {
		c.Path = pathAttr
	} else {
		c.Path = defaultPath(requestPath(u))
	}

	return c
}

func domainAndType(host, domainAttr string, psl *publicsuffix.List) (domain string, hostOnly bool, ok bool) {
	if domainAttr == "" {
		return host, true, true
	}

	domainAttr = percent.Decode(domainAttr, false)
	domainAttr = strings.TrimPrefix(domainAttr, ".")
	if domainAttr == "" {
		return "", false, false
	}
	if strings.HasSuffix(domainAttr, ".") {
		return "", false, false
	}
	domainAttr = strings.ToLower(domainAttr)

	// The attribute is treated as an IP when it parses as one after
	// percent-decoding, before any Punycode conversion.
	if isIPHost(host) || isIPHost(domainAttr) {
		if host != domainAttr {
			return "", false, false
		}
		return host, true, true
	}

	// host is already canonical A-label form; bring the attribute to the
	// same form so Unicode spellings match their Punycode host.
	ascii, err := idna.ToASCII(domainAttr)
	if err != nil {
		return "", false, false
	}
	domainAttr = strings.ToLower(ascii)

	if psl != nil {
		if psl.EffectiveTLDPlusOne(domainAttr) == "" {
			if host == domainAttr {
				return host, true, true
			}
			return "", false, false
		}
	}

	if host != domainAttr && !hasDotSuffix(host, domainAttr) {
		return "", false, false
	}
	return domainAttr, false, true
}

func defaultPath(requestPath string) string {
	if requestPath == "" || requestPath[0] != '/' {
		return "/"
	}
	i := strings.LastIndex(requestPath, "/")
	if i == 0 {
		return "/"
	}
	return requestPath[:i]
}

func splitNameValue(s string) (name, value string, ok bool) {
	n, v, found := cutFirst(s, '=')
	if !found {
		return "", "", false
	}
	n = strings.TrimSpace(n)
	v = strings.TrimSpace(v)
	if n == "" || !isValidCookieToken(n) || !isValidCookieToken(v) {
		return "", "", false
	}
	return n, v, true
}

func isValidCookieToken(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < 0x20 || c == 0x7F {
			return false
		}
		if c > 0x7E {
			return false
		}
	}
	return true
}

func cutFirst(s string, sep byte) (before, after string, found bool) {
	idx := strings.IndexByte(s, sep)
	if idx < 0 {
		return s, "", false
	}
	return s[:idx], s[idx+1:], true
}

const minInt64 = -1 << 63
const maxInt64 = 1<<63 - 1

func clampDate(ms int64) int64 {
	if ms > maxDate {
		return maxDate
	}
	if ms < minInt64 {
		return minInt64
	}
	return ms
}

func msToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// ParseAll parses every Set-Cookie header in h against u, dropping entries
// that fail to parse.
func ParseAll(currentTimeMillis int64, u *httpurl.HttpUrl, h *headers.Headers, psl *publicsuffix.List) []*Cookie {
	lines := h.Values(headers.SetCookie)
	var cookies []*Cookie
	for _, line := range lines {
		if c := Parse(currentTimeMillis, u, line, psl); c != nil {
			cookies = append(cookies, c)
		}
	}
	return cookies
}
