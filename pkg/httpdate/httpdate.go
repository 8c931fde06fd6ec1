// Package httpdate parses the HTTP date formats in circulation (RFC 1123,
// RFC 850, asctime, and tolerant variants) and formats canonical RFC 1123
// dates.
package httpdate

import (
	"strings"
	"time"
)

// layouts is the ordered list of formats tried by Parse. Order matters:
// the more specific/common forms are tried first.
var layouts = []string{
	time.RFC1123,                      // Mon, 02 Jan 2006 15:04:05 MST
	"Mon, 02 Jan 2006 15:04:05 GMT",
	"Monday, 02-Jan-06 15:04:05 MST",   // RFC 850
	"Mon, 02-Jan-06 15:04:05 MST",
	time.ANSIC,                         // Mon Jan _2 15:04:05 2006 (asctime)
	"Mon Jan 2 15:04:05 2006",
	"Mon Jan  2 2006 15:04:05 MST",     // Yahoo-style
	"Mon Jan 2 2006 15:04:05 MST",
	"02 Jan 2006 15:04:05 MST",
	"02-Jan-2006 15:04:05 MST",
	"01/02/2006 15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00", // RFC 3339, accepted as a tolerant extra
}

// Parse parses s against every known layout in order, normalizing
// two-digit years (70..99 -> 1970..1999, 00..69 -> 2000..2069) and
// treating the instant as UTC when no zone is present. Returns the zero
// time and false if s matches no layout.
func Parse(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			if strings.Contains(layout, "06") && !strings.Contains(layout, "2006") {
				t = fixTwoDigitYearBoundary(t)
			}
			return t, true
		}
	}
	return time.Time{}, false
}

// fixTwoDigitYearBoundary corrects the single boundary year where Go's
// built-in two-digit-year window (00..68 -> 2000..2068, 69..99 ->
// 1969..1999) disagrees with RFC 6265's window (70..99 -> 1970..1999,
// 00..69 -> 2000..2069): the input "69" must land on 2069, not 1969.
func fixTwoDigitYearBoundary(t time.Time) time.Time {
	if t.Year() == 1969 {
		return time.Date(2069, t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	}
	return t
}

// Format renders t in canonical RFC 1123 GMT form, e.g.
// "Mon, 02 Jan 2006 15:04:05 GMT".
func Format(t time.Time) string {
	return t.UTC().Format("Mon, 02 Jan 2006 15:04:05 GMT")
}
