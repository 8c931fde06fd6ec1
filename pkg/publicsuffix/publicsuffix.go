// Package publicsuffix matches hostnames against a Public Suffix List to
// compute the effective TLD+1 (the registrable domain).
//
// The caller supplies the list data at runtime (see PublicSuffixList in
// package transport-level terms, or directly via List here) rather than
// this package embedding a compiled-in table, so tests and callers can
// swap in arbitrary rule sets.
package publicsuffix

import (
	"bytes"
	"sort"
	"strings"

	"github.com/brindlehttp/httpcore/pkg/idna"
)

// List holds two sorted, newline-delimited tables of UTF-8 rule bytes:
// bytes (normal rules) and exceptionBytes (exception rules, "!"-prefixed
// rules with the "!" stripped). Each rule is a dot-joined label sequence,
// optionally with a leading "*" wildcard label. Both tables must already
// be sorted by line for the binary search below to work; List does not
// sort them itself.
type List struct {
	lines          [][]byte
	exceptionLines [][]byte
}

// NewList constructs a List from pre-sorted rule tables, splitting each
// into lines once so subsequent lookups are pure binary searches.
func NewList(bytes, exceptionBytes []byte) *List {
	return &List{
		lines:          splitLines(bytes),
		exceptionLines: splitLines(exceptionBytes),
	}
}

// EffectiveTLDPlusOne computes the registrable domain (effective TLD + one
// label) for host. Returns "" if host is itself a public suffix (or has no
// label preceding the matched suffix).
func (l *List) EffectiveTLDPlusOne(host string) string {
	host = strings.TrimSuffix(host, ".")
	host = idna.ToUnicode(host)
	if host == "" {
		return ""
	}

	labels := strings.Split(host, ".")

	suffixLabels := l.matchSuffix(labels)
	if suffixLabels == 0 || suffixLabels >= len(labels) {
		return ""
	}
	return strings.Join(labels[len(labels)-suffixLabels-1:], ".")
}

// PublicSuffix returns the matched public suffix for host. When no rule
// matches, the last label is returned as its own suffix; EffectiveTLDPlusOne
// instead returns "" in that case.
func (l *List) PublicSuffix(host string) string {
	host = strings.TrimSuffix(host, ".")
	host = idna.ToUnicode(host)
	labels := strings.Split(host, ".")

	n := l.matchSuffix(labels)
	if n == 0 {
		return labels[len(labels)-1]
	}
	return strings.Join(labels[len(labels)-n:], ".")
}

// matchSuffix returns the number of trailing labels that make up the
// matched public suffix, applying exception > longest-literal > wildcard
// precedence, searching from the rightmost label inward.
func (l *List) matchSuffix(labels []string) int {
	// Try progressively longer suffixes, rightmost-anchored, and remember
	// the best (highest-priority, then longest) match.
	bestLiteral := -1
	bestWildcard := -1

	for i := len(labels) - 1; i >= 0; i-- {
		suffix := strings.Join(labels[i:], ".")
		n := len(labels) - i

		if l.hasExceptionRule(suffix) {
			// Exception rules win outright; the matched suffix excludes
			// the leftmost (wildcard) label per RFC: "!www.ck" under
			// "*.ck" means "www.ck" is NOT a suffix, only "ck" is.
			return n - 1
		}
		// n grows as the loop walks inward, so overwriting keeps the
		// longest match of each kind.
		if l.hasLiteralRule(suffix) {
			bestLiteral = n
		}
		if i > 0 {
			// A wildcard rule "*.ck" covers one label beyond the literal
			// tail, so the matched suffix is n+1 labels deep.
			wildcardSuffix := "*." + strings.Join(labels[i:], ".")
			if l.hasLiteralRule(wildcardSuffix) {
				bestWildcard = n + 1
			}
		}
	}

	switch {
	case bestLiteral >= 0:
		return bestLiteral
	case bestWildcard >= 0:
		return bestWildcard
	default:
		return 0
	}
}

func (l *List) hasLiteralRule(rule string) bool {
	return binarySearchLine(l.lines, rule)
}

func (l *List) hasExceptionRule(rule string) bool {
	return binarySearchLine(l.exceptionLines, rule)
}

// binarySearchLine performs a binary search for target among lines, which
// must be sorted lexically.
func binarySearchLine(lines [][]byte, target string) bool {
	if len(lines) == 0 {
		return false
	}
	idx := sort.Search(len(lines), func(i int) bool {
		return string(lines[i]) >= target
	})
	return idx < len(lines) && string(lines[idx]) == target
}

// splitLines splits table on '\n', trimming a trailing '\r' from each line
// and dropping a final empty line caused by a trailing newline.
func splitLines(table []byte) [][]byte {
	lines := bytes.Split(table, []byte("\n"))
	if len(lines) > 0 && len(lines[len(lines)-1]) == 0 {
		lines = lines[:len(lines)-1]
	}
	for i, line := range lines {
		lines[i] = bytes.TrimSuffix(line, []byte("\r"))
	}
	return lines
}
