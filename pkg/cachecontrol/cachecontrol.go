// Package cachecontrol parses and formats the Cache-Control header per RFC
// 7234 §5.2, with the saturating integer semantics and Pragma: no-cache
// fallback a private HTTP cache needs.
package cachecontrol

import (
	"math"
	"strconv"
	"strings"

	"github.com/brindlehttp/httpcore/pkg/headers"
)

const unset = -1

// MaxSeconds is the saturation ceiling for every integer directive.
const MaxSeconds = math.MaxInt32

// CacheControl holds the parsed directives of one or more Cache-Control
// header lines, folded together with a Pragma: no-cache fallback.
type CacheControl struct {
	NoCache        bool
	NoStore        bool
	IsPrivate      bool
	IsPublic       bool
	MustRevalidate bool
	OnlyIfCached   bool
	NoTransform    bool
	Immutable      bool

	MaxAgeSeconds   int
	SMaxAgeSeconds  int
	MaxStaleSeconds int
	MinFreshSeconds int

	headerValue string
}

// FORCE_NETWORK forces a request to bypass any cache and hit the network.
var FORCE_NETWORK = &CacheControl{
	NoCache:         true,
	MaxAgeSeconds:   unset,
	SMaxAgeSeconds:  unset,
	MaxStaleSeconds: unset,
	MinFreshSeconds: unset,
}

// FORCE_CACHE forces a request to be satisfied from cache, however stale,
// without ever contacting the network.
var FORCE_CACHE = &CacheControl{
	OnlyIfCached:    true,
	MaxAgeSeconds:   unset,
	SMaxAgeSeconds:  unset,
	MaxStaleSeconds: MaxSeconds,
	MinFreshSeconds: unset,
}

// Parse reads every Cache-Control header line in h, plus a Pragma: no-cache
// fallback when no Cache-Control line set NoCache. The original header text
// is preserved verbatim only when exactly one Cache-Control line was present
// and no Pragma fallback fired; otherwise String recomposes from the fields.
func Parse(h *headers.Headers) *CacheControl {
	cc := &CacheControl{
		MaxAgeSeconds:   unset,
		SMaxAgeSeconds:  unset,
		MaxStaleSeconds: unset,
		MinFreshSeconds: unset,
	}

	lines := h.Values(headers.CacheControl)
	for _, line := range lines {
		applyDirectives(cc, line)
	}

	usedPragma := false
	if !cc.NoCache {
		if pragma, ok := h.Get(headers.Pragma); ok && hasToken(pragma, "no-cache") {
			cc.NoCache = true
			usedPragma = true
		}
	}

	if len(lines) == 1 && !usedPragma {
		cc.headerValue = lines[0]
	}
	return cc
}

func hasToken(value, token string) bool {
	for _, part := range strings.Split(value, ",") {
		if strings.EqualFold(strings.TrimSpace(part), token) {
			return true
		}
	}
	return false
}

func applyDirectives(cc *CacheControl, line string) {
	for _, part := range strings.Split(line, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, value, hasValue := splitDirective(part)
		lower := strings.ToLower(name)
		switch lower {
		case "no-cache":
			cc.NoCache = true
		case "no-store":
			cc.NoStore = true
		case "private":
			cc.IsPrivate = true
		case "public":
			cc.IsPublic = true
		case "must-revalidate":
			cc.MustRevalidate = true
		case "only-if-cached":
			cc.OnlyIfCached = true
		case "no-transform":
			cc.NoTransform = true
		case "immutable":
			cc.Immutable = true
		case "max-age":
			cc.MaxAgeSeconds = parseSaturating(value, hasValue, unset)
		case "s-maxage":
			cc.SMaxAgeSeconds = parseSaturating(value, hasValue, unset)
		case "max-stale":
			if !hasValue {
				cc.MaxStaleSeconds = MaxSeconds
			} else {
				cc.MaxStaleSeconds = parseSaturating(value, hasValue, unset)
			}
		case "min-fresh":
			cc.MinFreshSeconds = parseSaturating(value, hasValue, unset)
		}
	}
}

func splitDirective(part string) (name, value string, hasValue bool) {
	idx := strings.IndexByte(part, '=')
	if idx < 0 {
		return part, "", false
	}
	name = strings.TrimSpace(part[:idx])
	value = strings.TrimSpace(part[idx+1:])
	value = strings.Trim(value, `"`)
	return name, value, true
}

func parseSaturating(value string, hasValue bool, missing int) int {
	if !hasValue || value == "" {
		return missing
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return missing
	}
	if n < 0 {
		return 0
	}
	if n > MaxSeconds {
		return MaxSeconds
	}
	return int(n)
}

// directiveOrder is the fixed emission order used by String.
var directiveOrder = []string{
	"no-cache", "no-store", "max-age", "s-maxage", "min-fresh", "max-stale",
	"only-if-cached", "no-transform", "must-revalidate", "public", "private",
	"immutable",
}

// String renders the directives in canonical fixed order, or returns the
// original header text if it was preserved verbatim by Parse. Returns "" if
// no directive is set.
func (cc *CacheControl) String() string {
	if cc.headerValue != "" {
		return cc.headerValue
	}

	var parts []string
	for _, name := range directiveOrder {
		switch name {
		case "no-cache":
			if cc.NoCache {
				parts = append(parts, "no-cache")
			}
		case "no-store":
			if cc.NoStore {
				parts = append(parts, "no-store")
			}
		case "max-age":
			if cc.MaxAgeSeconds != unset {
				parts = append(parts, "max-age="+strconv.Itoa(cc.MaxAgeSeconds))
			}
		case "s-maxage":
			if cc.SMaxAgeSeconds != unset {
				parts = append(parts, "s-maxage="+strconv.Itoa(cc.SMaxAgeSeconds))
			}
		case "min-fresh":
			if cc.MinFreshSeconds != unset {
				parts = append(parts, "min-fresh="+strconv.Itoa(cc.MinFreshSeconds))
			}
		case "max-stale":
			if cc.MaxStaleSeconds != unset {
				parts = append(parts, "max-stale="+strconv.Itoa(cc.MaxStaleSeconds))
			}
		case "only-if-cached":
			if cc.OnlyIfCached {
				parts = append(parts, "only-if-cached")
			}
		case "no-transform":
			if cc.NoTransform {
				parts = append(parts, "no-transform")
			}
		case "must-revalidate":
			if cc.MustRevalidate {
				parts = append(parts, "must-revalidate")
			}
		case "public":
			if cc.IsPublic {
				parts = append(parts, "public")
			}
		case "private":
			if cc.IsPrivate {
				parts = append(parts, "private")
			}
		case "immutable":
			if cc.Immutable {
				parts = append(parts, "immutable")
			}
		}
	}
	return strings.Join(parts, ", ")
}

// Builder accumulates CacheControl directives for an outgoing request.
type Builder struct {
	cc CacheControl
}

// NewBuilder returns a Builder with every field unset.
func NewBuilder() *Builder {
	return &Builder{cc: CacheControl{
		MaxAgeSeconds:   unset,
		SMaxAgeSeconds:  unset,
		MaxStaleSeconds: unset,
		MinFreshSeconds: unset,
	}}
}

func (b *Builder) NoCache() *Builder      { b.cc.NoCache = true; return b }
func (b *Builder) NoStore() *Builder      { b.cc.NoStore = true; return b }
func (b *Builder) OnlyIfCached() *Builder { b.cc.OnlyIfCached = true; return b }
func (b *Builder) Immutable() *Builder    { b.cc.Immutable = true; return b }

// MaxAge sets the max-age directive, saturating to [0, MaxSeconds].
func (b *Builder) MaxAge(seconds int) *Builder {
	b.cc.MaxAgeSeconds = saturate(seconds)
	return b
}

// MaxStale sets max-stale to the given ceiling in seconds, saturating to
// [0, MaxSeconds].
func (b *Builder) MaxStale(seconds int) *Builder {
	b.cc.MaxStaleSeconds = saturate(seconds)
	return b
}

// MinFresh sets min-fresh, saturating to [0, MaxSeconds].
func (b *Builder) MinFresh(seconds int) *Builder {
	b.cc.MinFreshSeconds = saturate(seconds)
	return b
}

func saturate(n int) int {
	if n < 0 {
		return 0
	}
	if n > MaxSeconds {
		return MaxSeconds
	}
	return n
}

// Build finalizes the directives into a CacheControl.
func (b *Builder) Build() *CacheControl {
	cc := b.cc
	return &cc
}
