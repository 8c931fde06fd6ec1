// Package idna implements IDNA2008/UTS#46 hostname processing: conversion
// between Unicode ("U-label") and ASCII Punycode ("A-label") domain forms.
package idna

import (
	"strings"

	"golang.org/x/net/idna"
	"golang.org/x/text/unicode/norm"

	"github.com/brindlehttp/httpcore/pkg/errors"
)

// maxDomainLength is the RFC 1035 limit, excluding a trailing dot.
const maxDomainLength = 253

// profile selects UTS#46 processing for host lookup: UTS#46
// mapping, transitional processing off, DNS length checks, bidi rule,
// non-strict ASCII label rules (LDH relaxed to allow underscores, as the
// lenient host-parsing contract requires).
var profile = idna.New(
	idna.MapForLookup(),
	idna.Transitional(false),
	idna.VerifyDNSLength(true),
	idna.BidiRule(),
	idna.StrictDomainName(false),
)

// ToASCII converts domain to its all-ASCII Punycode form ("a-label" per
// label), applying UTS#46 mapping, NFC idempotence verification, and RFC
// 5893 bidi validation. Returns a *errors.Error on failure.
func ToASCII(domain string) (string, error) {
	if domain == "" {
		return "", errors.NewMalformedError("idna.ToASCII", domain, nil)
	}

	trailingDot := strings.HasSuffix(domain, ".")
	trimmed := strings.TrimSuffix(domain, ".")

	ascii, err := profile.ToASCII(trimmed)
	if err != nil {
		return "", errors.NewMalformedError("idna.ToASCII", domain, err)
	}

	// The idempotence check applies to the UTS#46-mapped form, not the raw
	// input: NFD input is legal and is normalized by the mapping itself, so
	// verify the Unicode form of the result instead.
	uni, uniErr := idna.ToUnicode(ascii)
	if uniErr != nil || !isNFCIdempotent(uni) {
		return "", errors.NewMalformedError("idna.ToASCII", domain, uniErr)
	}

	if len(ascii) > maxDomainLength {
		return "", errors.NewMalformedError("idna.ToASCII", domain, nil)
	}

	if trailingDot {
		ascii += "."
	}
	return ascii, nil
}

// ToUnicode converts domain to its Unicode form, decoding any "xn--"
// labels. Never fails: a label that cannot be decoded is returned as-is.
func ToUnicode(domain string) string {
	trailingDot := strings.HasSuffix(domain, ".")
	trimmed := strings.TrimSuffix(domain, ".")

	labels := strings.Split(trimmed, ".")
	for i, label := range labels {
		if strings.HasPrefix(strings.ToLower(label), "xn--") {
			if decoded, err := idna.ToUnicode(label); err == nil {
				labels[i] = decoded
			}
		}
	}

	result := strings.Join(labels, ".")
	if trailingDot {
		result += "."
	}
	return result
}

// isNFCIdempotent reports whether s is already in NFC form, i.e. applying
// NFC normalization to s reproduces s exactly. Called on the UTS#46-mapped
// form of a label, where IDNA2008 requires this to hold.
func isNFCIdempotent(s string) bool {
	return norm.NFC.String(s) == s
}
