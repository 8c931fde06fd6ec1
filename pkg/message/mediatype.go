package message

import "strings"

// MediaType is a parsed Content-Type value: type "/" subtype *(";" parameter)
// per RFC 2045, with case-insensitive type/subtype and quoted-string
// parameter values.
type MediaType struct {
	typ        string
	subtype    string
	paramNames []string
	paramVals  []string
}

// ParseMediaType parses s, returning nil if it is not shaped like
// type/subtype.
func ParseMediaType(s string) *MediaType {
	s = strings.TrimSpace(s)
	slash := strings.IndexByte(s, '/')
	if slash < 0 {
		return nil
	}
	typ := strings.ToLower(strings.TrimSpace(s[:slash]))
	if typ == "" {
		return nil
	}

	rest := s[slash+1:]
	semicolon := strings.IndexByte(rest, ';')
	subtype := rest
	if semicolon >= 0 {
		subtype = rest[:semicolon]
	}
	subtype = strings.ToLower(strings.TrimSpace(subtype))
	if subtype == "" {
		return nil
	}

	m := &MediaType{typ: typ, subtype: subtype}
	if semicolon >= 0 {
		m.parseParameters(rest[semicolon+1:])
	}
	return m
}

func (m *MediaType) parseParameters(s string) {
	for {
		s = strings.TrimLeft(s, " \t;")
		if s == "" {
			return
		}
		eq := strings.IndexByte(s, '=')
		if eq < 0 {
			return
		}
		name := strings.ToLower(strings.TrimSpace(s[:eq]))
		rest := s[eq+1:]

		var value string
		if strings.HasPrefix(rest, `"`) {
			value, rest = parseQuotedString(rest[1:])
		} else if semi := strings.IndexByte(rest, ';'); semi >= 0 {
			value = strings.TrimSpace(rest[:semi])
			rest = rest[semi:]
		} else {
			value = strings.TrimSpace(rest)
			rest = ""
		}
		m.paramNames = append(m.paramNames, name)
		m.paramVals = append(m.paramVals, value)
		s = rest
	}
}

// parseQuotedString consumes a quoted-string body (opening quote already
// stripped), returning the unescaped value and the unconsumed remainder
// after the closing quote.
func parseQuotedString(s string) (value, rest string) {
	var b strings.Builder
	i := 0
	for i < len(s) {
		c := s[i]
		if c == '\\' && i+1 < len(s) {
			b.WriteByte(s[i+1])
			i += 2
			continue
		}
		if c == '"' {
			i++
			break
		}
		b.WriteByte(c)
		i++
	}
	return b.String(), s[i:]
}

// Type returns the primary type, e.g. "text".
func (m *MediaType) Type() string { return m.typ }

// Subtype returns the subtype, e.g. "plain".
func (m *MediaType) Subtype() string { return m.subtype }

// Parameter returns the value of parameter name, case-insensitively.
func (m *MediaType) Parameter(name string) (string, bool) {
	lower := strings.ToLower(name)
	for i, n := range m.paramNames {
		if n == lower {
			return m.paramVals[i], true
		}
	}
	return "", false
}

// String renders m back to type/subtype;param=value form.
func (m *MediaType) String() string {
	var b strings.Builder
	b.WriteString(m.typ)
	b.WriteByte('/')
	b.WriteString(m.subtype)
	for i, n := range m.paramNames {
		b.WriteString("; ")
		b.WriteString(n)
		b.WriteByte('=')
		b.WriteString(m.paramVals[i])
	}
	return b.String()
}
