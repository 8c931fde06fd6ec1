package cookie

import (
	"sort"
	"strings"
	"sync"

	"github.com/brindlehttp/httpcore/pkg/httpurl"
	"github.com/brindlehttp/httpcore/pkg/publicsuffix"
)

// Jar is the CookieJar contract: loadForRequest supplies cookies to attach
// to an outgoing request, saveFromResponse hands the jar cookies parsed from
// a response to keep or discard. Both must be safe to invoke serially
// within a single call; concurrent use across calls is implementation
// defined.
type Jar interface {
	LoadForRequest(u *httpurl.HttpUrl) []*Cookie
	SaveFromResponse(u *httpurl.HttpUrl, cookies []*Cookie)
}

type noCookieJar struct{}

// LoadForRequest always returns nil.
func (noCookieJar) LoadForRequest(*httpurl.HttpUrl) []*Cookie { return nil }

// SaveFromResponse is a no-op.
func (noCookieJar) SaveFromResponse(*httpurl.HttpUrl, []*Cookie) {}

// NoCookies is the built-in no-op jar.
var NoCookies Jar = noCookieJar{}

// MemoryJar is an in-memory Jar keyed by host, grouping entries the way a
// browser cookie store does: per-host submaps, evicting expired entries on
// read, and ordering sent cookies by longest path then earliest creation.
type MemoryJar struct {
	mu      sync.Mutex
	psl     *publicsuffix.List
	nowFunc func() int64
	entries map[string][]*storedCookie
	seq     uint64
}

type storedCookie struct {
	cookie   *Cookie
	created  uint64
	millisAt int64
}

// NewMemoryJar returns an empty MemoryJar. psl may be nil to skip
// public-suffix domain validation. nowFunc supplies the current time in
// epoch millis (an external Clock collaborator, not wall-clock time read
// directly by this package).
func NewMemoryJar(psl *publicsuffix.List, nowFunc func() int64) *MemoryJar {
	return &MemoryJar{psl: psl, nowFunc: nowFunc, entries: make(map[string][]*storedCookie)}
}

// LoadForRequest returns the cookies that match u, ordered by longest path
// first and then by earliest insertion, evicting any expired entries found
// along the way.
func (j *MemoryJar) LoadForRequest(u *httpurl.HttpUrl) []*Cookie {
	now := j.nowFunc()
	key := jarKey(u.Host(), j.psl)

	j.mu.Lock()
	defer j.mu.Unlock()

	bucket := j.entries[key]
	if len(bucket) == 0 {
		return nil
	}

	var kept []*storedCookie
	var selected []*storedCookie
	for _, e := range bucket {
		if e.cookie.Persistent && e.cookie.ExpiresAt <= now {
			continue
		}
		kept = append(kept, e)
		if e.cookie.Matches(u) {
			selected = append(selected, e)
		}
	}
	j.entries[key] = kept

	sort.SliceStable(selected, func(i, k int) bool {
		if len(selected[i].cookie.Path) != len(selected[k].cookie.Path) {
			return len(selected[i].cookie.Path) > len(selected[k].cookie.Path)
		}
		return selected[i].created < selected[k].created
	})

	out := make([]*Cookie, len(selected))
	for i, e := range selected {
		out[i] = e.cookie
	}
	return out
}

// SaveFromResponse stores each cookie, replacing any existing entry with the
// same name/domain/path and deleting entries whose ExpiresAt already passed.
func (j *MemoryJar) SaveFromResponse(u *httpurl.HttpUrl, cookies []*Cookie) {
	if len(cookies) == 0 {
		return
	}
	now := j.nowFunc()
	key := jarKey(u.Host(), j.psl)

	j.mu.Lock()
	defer j.mu.Unlock()

	bucket := j.entries[key]
	for _, c := range cookies {
		id := c.Domain + ";" + c.Path + ";" + c.Name

		idx := -1
		for i, e := range bucket {
			if entryID(e.cookie) == id {
				idx = i
				break
			}
		}

		if c.Persistent && c.ExpiresAt <= now {
			if idx >= 0 {
				bucket = append(bucket[:idx], bucket[idx+1:]...)
			}
			continue
		}

		created := j.seq
		if idx >= 0 {
			created = bucket[idx].created
			bucket = append(bucket[:idx], bucket[idx+1:]...)
		}
		j.seq++
		bucket = append(bucket, &storedCookie{cookie: c, created: created})
	}
	j.entries[key] = bucket
}

func entryID(c *Cookie) string {
	return c.Domain + ";" + c.Path + ";" + c.Name
}

// jarKey returns the storage key for host: its registrable domain when a
// public suffix list is available, else its last two labels, falling back to the
// bare host for IP literals or unrecognized suffixes.
func jarKey(host string, psl *publicsuffix.List) string {
	if isIPHost(host) {
		return host
	}
	if psl == nil {
		i := strings.LastIndex(host, ".")
		if i <= 0 {
			return host
		}
		j := strings.LastIndex(host[:i], ".")
		return host[j+1:]
	}
	etld1 := psl.EffectiveTLDPlusOne(host)
	if etld1 == "" {
		return host
	}
	return etld1
}
