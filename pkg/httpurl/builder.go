package httpurl

import (
	"strconv"
	"strings"

	"github.com/brindlehttp/httpcore/pkg/errors"
	"github.com/brindlehttp/httpcore/pkg/percent"
)

// Builder is HttpUrlBuilder: mutable scratch space used to parse and
// recompose URLs. A zero-value Builder is ready to use via NewBuilder.
type Builder struct {
	scheme   string
	username string
	password string
	host     string
	port     int // -1 = default for scheme

	encSegments []string // encoded path segments, always non-nil after parse

	hasQuery            bool
	queryNamesAndValues []*string // encoded name/value pairs

	encFragment *string
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{port: -1}
}

// Scheme sets the scheme; must be "http" or "https".
func (b *Builder) Scheme(scheme string) *Builder {
	b.scheme = scheme
	return b
}

// Username sets the decoded username.
func (b *Builder) Username(username string) *Builder {
	b.username = username
	return b
}

// Password sets the decoded password.
func (b *Builder) Password(password string) *Builder {
	b.password = password
	return b
}

// Host sets the host; it will be canonicalized at Build time.
func (b *Builder) Host(host string) *Builder {
	b.host = host
	return b
}

// Port sets an explicit port, or -1 to use the scheme default.
func (b *Builder) Port(port int) *Builder {
	b.port = port
	return b
}

// AddPathSegment appends a decoded path segment, percent-encoding it.
func (b *Builder) AddPathSegment(segment string) *Builder {
	b.push(percent.Canonicalize(segment, percent.PathSegment, false, false, false))
	return b
}

// AddEncodedPathSegment appends a pre-encoded path segment verbatim
// (re-canonicalized to guard against invalid escapes).
func (b *Builder) AddEncodedPathSegment(segment string) *Builder {
	b.push(percent.Canonicalize(segment, percent.PathSegment, true, false, false))
	return b
}

func (b *Builder) push(encoded string) {
	switch foldDotSegment(encoded) {
	case ".":
		return
	case "..":
		if len(b.encSegments) > 1 || (len(b.encSegments) == 1 && b.encSegments[0] != "") {
			b.encSegments = b.encSegments[:len(b.encSegments)-1]
		}
		if len(b.encSegments) == 0 || b.encSegments[len(b.encSegments)-1] != "" {
			b.encSegments = append(b.encSegments, "")
		}
		return
	}
	if len(b.encSegments) == 1 && b.encSegments[0] == "" {
		b.encSegments[0] = encoded
		return
	}
	b.encSegments = append(b.encSegments, encoded)
}

// SetPathSegment replaces the decoded segment at index.
func (b *Builder) SetPathSegment(index int, segment string) *Builder {
	if index >= 0 && index < len(b.encSegments) {
		b.encSegments[index] = percent.Canonicalize(segment, percent.PathSegment, false, false, false)
	}
	return b
}

// AddQueryParameter adds a query parameter, canonicalizing name and value
// with plusIsSpace semantics.
func (b *Builder) AddQueryParameter(name string, value string, hasValue bool) *Builder {
	b.hasQuery = true
	encName := percent.Canonicalize(name, percent.QueryComponent, false, true, false)
	b.queryNamesAndValues = append(b.queryNamesAndValues, &encName)
	if hasValue {
		encValue := percent.Canonicalize(value, percent.QueryComponent, false, true, false)
		b.queryNamesAndValues = append(b.queryNamesAndValues, &encValue)
	} else {
		b.queryNamesAndValues = append(b.queryNamesAndValues, nil)
	}
	return b
}

// RemoveAllQueryParameters removes every pair whose decoded name matches.
func (b *Builder) RemoveAllQueryParameters(name string) *Builder {
	encName := percent.Canonicalize(name, percent.QueryComponent, false, true, false)
	var kept []*string
	for i := 0; i+1 < len(b.queryNamesAndValues); i += 2 {
		if *b.queryNamesAndValues[i] != encName {
			kept = append(kept, b.queryNamesAndValues[i], b.queryNamesAndValues[i+1])
		}
	}
	b.queryNamesAndValues = kept
	return b
}

// Fragment sets the decoded fragment.
func (b *Builder) Fragment(fragment string) *Builder {
	enc := percent.Canonicalize(fragment, percent.Fragment, false, false, false)
	b.encFragment = &enc
	return b
}

// Build finalizes the builder into an immutable HttpUrl.
func (b *Builder) Build() (*HttpUrl, error) {
	if b.scheme == "" {
		return nil, errors.NewStateError("httpurl.Build", "missing scheme")
	}
	if b.host == "" {
		return nil, errors.NewStateError("httpurl.Build", "missing host")
	}

	canonHost, err := canonicalizeHost(b.host)
	if err != nil {
		return nil, err
	}

	port := b.port
	if port == -1 {
		port = DefaultPort(b.scheme)
	}
	if port < 1 || port > 65535 {
		return nil, errors.NewMalformedError("httpurl.port", strconv.Itoa(port), nil)
	}

	encSegments := b.encSegments
	if len(encSegments) == 0 {
		encSegments = []string{""}
	}
	decSegments := make([]string, len(encSegments))
	for i, s := range encSegments {
		decSegments[i] = percent.Decode(s, false)
	}

	u := &HttpUrl{
		scheme:              b.scheme,
		username:            b.username,
		password:            b.password,
		host:                canonHost,
		port:                port,
		segments:            decSegments,
		encSegments:         append([]string(nil), encSegments...),
		hasQuery:            b.hasQuery,
		queryNamesAndValues: append([]*string(nil), b.queryNamesAndValues...),
		encFragment:         b.encFragment,
	}
	if b.encFragment != nil {
		decoded := percent.Decode(*b.encFragment, false)
		u.fragment = &decoded
	}
	return u, nil
}

// parse populates the builder by parsing input, resolving against base
// when base is non-nil (relative reference resolution).
func (b *Builder) parse(base *HttpUrl, input string) error {
	s := strings.Trim(input, " \t\n\r\f")

	scheme, rest, hadScheme := scanScheme(s)
	if hadScheme {
		lower := strings.ToLower(scheme)
		if lower != "http" && lower != "https" {
			return errors.NewMalformedError("httpurl.scheme", scheme, nil)
		}
		b.scheme = lower
	} else {
		if base == nil {
			return errors.NewMalformedError("httpurl.scheme", s, nil)
		}
		b.scheme = base.scheme
		rest = s
	}

	rest = strings.ReplaceAll(rest, "\\", "/")

	if strings.HasPrefix(rest, "//") {
		// A run of more than two slashes still delimits the authority.
		authority, pathRest := splitAuthority(strings.TrimLeft(rest, "/"))
		if err := b.parseAuthority(authority); err != nil {
			return err
		}
		return b.parsePathQueryFragment(pathRest, true)
	}

	// No authority in this reference: inherit from base (relative ref) or
	// fail (an absolute http(s) URL always carries an authority).
	if base == nil {
		return errors.NewMalformedError("httpurl.host", s, nil)
	}
	b.username = base.username
	b.password = base.password
	b.host = base.host
	b.port = base.port

	if rest == "" {
		b.encSegments = append([]string(nil), base.encSegments...)
		b.hasQuery = base.hasQuery
		b.queryNamesAndValues = append([]*string(nil), base.queryNamesAndValues...)
		b.encFragment = nil
		return nil
	}

	if strings.HasPrefix(rest, "?") {
		b.encSegments = append([]string(nil), base.encSegments...)
		return b.parsePathQueryFragment(rest, false)
	}
	if strings.HasPrefix(rest, "#") {
		b.encSegments = append([]string(nil), base.encSegments...)
		b.hasQuery = base.hasQuery
		b.queryNamesAndValues = append([]*string(nil), base.queryNamesAndValues...)
		return b.parsePathQueryFragment(rest, false)
	}

	if strings.HasPrefix(rest, "/") {
		return b.parsePathQueryFragment(rest, true)
	}

	// Relative path reference: merge with base per RFC 3986 §5.3, replacing
	// the last segment of the base path. Query/fragment belong to this
	// reference, not the base, so split them off before merging the path.
	pathRest, queryRest, fragRest := splitPathQueryFragment(rest)
	b.encSegments = removeDotSegments(mergeRelativePath(base.encSegments, pathRest))
	if strings.Contains(rest, "?") {
		b.hasQuery = true
		b.queryNamesAndValues = parseQuery(queryRest)
	}
	if strings.Contains(rest, "#") {
		enc := percent.Canonicalize(fragRest, percent.Fragment, true, false, false)
		b.encFragment = &enc
	}
	return nil
}

// scanScheme looks for a valid scheme prefix terminated by ':' before any
// of '/', '\\', '?', '#'.
func scanScheme(s string) (scheme string, rest string, ok bool) {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == ':':
			if i == 0 {
				return "", s, false
			}
			return s[:i], s[i+1:], true
		case c == '/' || c == '\\' || c == '?' || c == '#':
			return "", s, false
		case !isSchemeChar(c, i == 0):
			return "", s, false
		}
	}
	return "", s, false
}

func isSchemeChar(c byte, first bool) bool {
	if first {
		return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
	}
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '+' || c == '-' || c == '.'
}

// splitAuthority separates the authority component from the remainder
// (path/query/fragment), being careful to skip over a bracketed IPv6
// literal when looking for the authority's end.
func splitAuthority(s string) (authority, rest string) {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
		case '/', '?', '#':
			if depth == 0 {
				return s[:i], s[i:]
			}
		}
	}
	return s, ""
}

func (b *Builder) parseAuthority(authority string) error {
	host := authority
	if at := strings.LastIndexByte(authority, '@'); at >= 0 {
		userinfo := authority[:at]
		host = authority[at+1:]
		name, pass, _ := strings.Cut(userinfo, ":")
		b.username = percent.Decode(name, false)
		b.password = percent.Decode(pass, false)
	}

	portColon := findPortColon(host)
	if portColon >= 0 {
		portStr := host[portColon+1:]
		host = host[:portColon]
		if portStr == "" {
			b.port = -1
		} else {
			p, err := strconv.Atoi(portStr)
			if err != nil || p < 1 || p > 65535 {
				return errors.NewMalformedError("httpurl.port", portStr, err)
			}
			b.port = p
		}
	} else {
		b.port = -1
	}

	if host == "" {
		return errors.NewMalformedError("httpurl.host", authority, nil)
	}
	b.host = percent.Decode(host, false)
	if strings.HasPrefix(authority, "[") {
		// Preserve brackets through to canonicalizeHost, which expects them.
		b.host = "[" + strings.Trim(b.host, "[]") + "]"
	}
	return nil
}

// findPortColon finds the ':' that separates host from port, skipping any
// bracketed IPv6 literal.
func findPortColon(host string) int {
	if strings.HasPrefix(host, "[") {
		end := strings.IndexByte(host, ']')
		if end < 0 {
			return -1
		}
		if end+1 < len(host) && host[end+1] == ':' {
			return end + 1
		}
		return -1
	}
	return strings.LastIndexByte(host, ':')
}

func (b *Builder) parsePathQueryFragment(s string, hasPath bool) error {
	pathPart, queryPart, fragPart := splitPathQueryFragment(s)

	if hasPath {
		var raw []string
		for _, seg := range strings.Split(strings.TrimPrefix(pathPart, "/"), "/") {
			raw = append(raw, percent.Canonicalize(seg, percent.PathSegment, true, false, false))
		}
		b.encSegments = removeDotSegments(raw)
	}

	if queryPart != "" || strings.HasPrefix(s, "?") || (hasPath && strings.Contains(s, "?")) {
		if idx := strings.IndexByte(s, '?'); idx >= 0 {
			b.hasQuery = true
			b.queryNamesAndValues = parseQuery(queryPart)
		}
	}

	if fragPart != "" || strings.Contains(s, "#") {
		enc := percent.Canonicalize(fragPart, percent.Fragment, true, false, false)
		b.encFragment = &enc
	}

	return nil
}

func splitPathQueryFragment(s string) (path, query, fragment string) {
	fragIdx := strings.IndexByte(s, '#')
	if fragIdx >= 0 {
		fragment = s[fragIdx+1:]
		s = s[:fragIdx]
	}
	queryIdx := strings.IndexByte(s, '?')
	if queryIdx >= 0 {
		query = s[queryIdx+1:]
		s = s[:queryIdx]
	}
	path = s
	return
}

func parseQuery(query string) []*string {
	if query == "" {
		return []*string{}
	}
	var out []*string
	for _, pair := range strings.Split(query, "&") {
		name, value, hasEq := strings.Cut(pair, "=")
		encName := percent.Canonicalize(name, percent.QueryComponent, true, true, false)
		out = append(out, &encName)
		if hasEq {
			encValue := percent.Canonicalize(value, percent.QueryComponent, true, true, false)
			out = append(out, &encValue)
		} else {
			out = append(out, nil)
		}
	}
	return out
}

// mergeRelativePath implements RFC 3986 §5.3's merge step: replace the
// last segment of the base path with the relative reference's segments.
// Dot segments are left in place; the caller runs removeDotSegments.
func mergeRelativePath(baseEncSegments []string, relative string) []string {
	base := append([]string(nil), baseEncSegments...)
	if len(base) > 0 {
		base = base[:len(base)-1]
	}
	relSegs := strings.Split(relative, "/")
	raw := make([]string, 0, len(base)+len(relSegs))
	raw = append(raw, base...)
	for _, seg := range relSegs {
		raw = append(raw, percent.Canonicalize(seg, percent.PathSegment, true, false, false))
	}
	return raw
}

// foldDotSegment recognizes the case-insensitive percent-encoded spellings
// of "." and ".." (e.g. "%2e", "%2E.") and
// folds them to their literal form so dot-segment removal treats them
// identically to unencoded dots.
func foldDotSegment(seg string) string {
	lower := strings.ToLower(seg)
	switch lower {
	case ".", "%2e":
		return "."
	case "..", "%2e.", ".%2e", "%2e%2e":
		return ".."
	default:
		return seg
	}
}

// removeDotSegments implements RFC 3986 §5.2.4 over a segment list instead
// of a raw path string: "." segments are dropped, ".." pops the previous
// output segment (no-op if none), everything else is kept. A trailing "."
// or ".." leaves a trailing empty segment so the result still denotes a
// directory (preserves the trailing slash).
func removeDotSegments(raw []string) []string {
	var out []string
	for _, seg := range raw {
		switch foldDotSegment(seg) {
		case ".":
		case "..":
			if len(out) > 0 {
				out = out[:len(out)-1]
			}
		default:
			out = append(out, seg)
		}
	}
	if len(raw) > 0 {
		switch foldDotSegment(raw[len(raw)-1]) {
		case ".", "..":
			out = append(out, "")
		}
	}
	if len(out) == 0 {
		out = []string{""}
	}
	return out
}
