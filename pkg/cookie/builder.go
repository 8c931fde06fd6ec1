package cookie

import "strings"

// Builder builds a Cookie from trimmed, validated fields.
type Builder struct {
	c Cookie
}

// NewBuilder returns a Builder with Path "/" and no expiry.
func NewBuilder() *Builder {
	return &Builder{c: Cookie{Path: "/", ExpiresAt: maxDate}}
}

// Name sets the trimmed cookie name.
func (b *Builder) Name(name string) *Builder {
	b.c.Name = strings.TrimSpace(name)
	return b
}

// Value sets the trimmed cookie value.
func (b *Builder) Value(value string) *Builder {
	b.c.Value = strings.TrimSpace(value)
	return b
}

// Domain sets the domain and clears HostOnly.
func (b *Builder) Domain(domain string) *Builder {
	b.c.Domain = strings.ToLower(strings.TrimSpace(domain))
	b.c.HostOnly = false
	return b
}

// HostOnlyDomain sets domain as a host-only cookie bound to exactly one host.
func (b *Builder) HostOnlyDomain(host string) *Builder {
	b.c.Domain = host
	b.c.HostOnly = true
	return b
}

// Path sets the cookie path; it must start with "/".
func (b *Builder) Path(path string) *Builder {
	if !strings.HasPrefix(path, "/") {
		return b
	}
	b.c.Path = path
	return b
}

// ExpiresAt sets the expiry in epoch millis, clamped to (0, MAX_DATE]; values
// <= 0 force immediate expiry (math.MinInt64) and also mark persistent.
func (b *Builder) ExpiresAt(epochMillis int64) *Builder {
	if epochMillis <= 0 {
		b.c.ExpiresAt = minInt64
	} else {
		b.c.ExpiresAt = clampDate(epochMillis)
	}
	b.c.Persistent = true
	return b
}

func (b *Builder) Secure() *Builder   { b.c.Secure = true; return b }
func (b *Builder) HttpOnly() *Builder { b.c.HttpOnly = true; return b }

// SameSite sets the SameSite attribute.
func (b *Builder) SameSite(s SameSite) *Builder {
	b.c.SameSite = s
	b.c.hasSame = true
	return b
}

// Build finalizes the Cookie.
func (b *Builder) Build() *Cookie {
	c := b.c
	return &c
}
